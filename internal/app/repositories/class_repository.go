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

// ClassRepository handles class database operations
type ClassRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{db: db, sb: statementBuilder()}
}

func scanClass(row pgx.Row) (*models.Class, error) {
	var c models.Class
	if err := row.Scan(&c.ID, &c.DepartmentID, &c.Name, &c.Year, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a class
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO classes (department_id, name, year)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		class.DepartmentID, class.Name, class.Year,
	).Scan(&class.ID, &class.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "classes_department_name_year_key") {
			return apperrors.ErrClassAlreadyExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentNotFound
		}
		return fmt.Errorf("error creating class: %w", err)
	}
	return nil
}

// GetByID retrieves a class by ID
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	class, err := scanClass(r.db.QueryRow(ctx,
		`SELECT id, department_id, name, year, created_at FROM classes WHERE id = $1`, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrClassNotFound
		}
		return nil, fmt.Errorf("error retrieving class: %w", err)
	}
	return class, nil
}

// List retrieves classes ordered by year and name
func (r *ClassRepository) List(ctx context.Context, filter ClassFilter) ([]*models.Class, error) {
	q := r.sb.Select("id", "department_id", "name", "year", "created_at").
		From("classes").
		OrderBy("year", "name")
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"department_id": *filter.DepartmentID})
	}
	if filter.Year != nil {
		q = q.Where(squirrel.Eq{"year": *filter.Year})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list classes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	defer rows.Close()

	classes := make([]*models.Class, 0)
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// ExistsByNameAndYear checks the (department, name, year) uniqueness rule
func (r *ClassRepository) ExistsByNameAndYear(ctx context.Context, departmentID int64, name string, year int, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM classes
		WHERE department_id = $1 AND LOWER(name) = LOWER($2) AND year = $3 AND id <> $4)`,
		departmentID, name, year, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking class existence: %w", err)
	}
	return exists, nil
}

// Update updates name and year
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	tag, err := r.db.Exec(ctx, `UPDATE classes SET name = $1, year = $2 WHERE id = $3`,
		class.Name, class.Year, class.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "classes_department_name_year_key") {
			return apperrors.ErrClassAlreadyExists
		}
		return fmt.Errorf("error updating class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}

// Delete removes a class without divisions
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrClassHasRelations
		}
		return fmt.Errorf("error deleting class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}
