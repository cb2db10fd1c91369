package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/dberrors"
)

// SubjectRepository handles subject database operations
type SubjectRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: db, sb: statementBuilder()}
}

func scanSubject(row pgx.Row) (*models.Subject, error) {
	var s models.Subject
	if err := row.Scan(&s.ID, &s.DepartmentID, &s.Code, &s.Name, &s.Year, &s.Kind, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a subject
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO subjects (department_id, code, name, year, kind)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		subject.DepartmentID, subject.Code, subject.Name, subject.Year, subject.Kind,
	).Scan(&subject.ID, &subject.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "subjects_department_code_key") {
			return apperrors.ErrSubjectAlreadyExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("error creating subject: %w", err)
	}
	return nil
}

// GetByID retrieves a subject by ID
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	subject, err := scanSubject(r.db.QueryRow(ctx,
		`SELECT id, department_id, code, name, year, kind, created_at FROM subjects WHERE id = $1`, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error retrieving subject: %w", err)
	}
	return subject, nil
}

// List retrieves subjects ordered by year and code
func (r *SubjectRepository) List(ctx context.Context, filter SubjectFilter) ([]*models.Subject, error) {
	q := r.sb.Select("id", "department_id", "code", "name", "year", "kind", "created_at").
		From("subjects").
		OrderBy("year", "code")
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"department_id": *filter.DepartmentID})
	}
	if filter.Year != nil {
		q = q.Where(squirrel.Eq{"year": *filter.Year})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": string(*filter.Kind)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]*models.Subject, 0)
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// ExistsByCode checks the per-department code uniqueness rule
func (r *SubjectRepository) ExistsByCode(ctx context.Context, departmentID int64, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM subjects WHERE department_id = $1 AND code = $2 AND id <> $3)`,
		departmentID, code, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking subject existence: %w", err)
	}
	return exists, nil
}

// Update updates code, name, year and kind
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	tag, err := r.db.Exec(ctx, `UPDATE subjects SET code = $1, name = $2, year = $3, kind = $4 WHERE id = $5`,
		subject.Code, subject.Name, subject.Year, subject.Kind, subject.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "subjects_department_code_key") {
			return apperrors.ErrSubjectAlreadyExists
		}
		return fmt.Errorf("error updating subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}
	return nil
}

// Delete removes a subject without allocations
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrSubjectHasRelations
		}
		return fmt.Errorf("error deleting subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}
	return nil
}
