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

// DivisionRepository handles division database operations
type DivisionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDivisionRepository creates a new DivisionRepository
func NewDivisionRepository(db *pgxpool.Pool) *DivisionRepository {
	return &DivisionRepository{db: db, sb: statementBuilder()}
}

func scanDivision(row pgx.Row) (*models.Division, error) {
	var d models.Division
	if err := row.Scan(&d.ID, &d.ClassID, &d.Name, &d.ClassTeacherID, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a division
func (r *DivisionRepository) Create(ctx context.Context, division *models.Division) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO divisions (class_id, name, class_teacher_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		division.ClassID, division.Name, division.ClassTeacherID,
	).Scan(&division.ID, &division.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "divisions_class_name_key") {
			return apperrors.ErrDivisionAlreadyExists
		}
		return fmt.Errorf("error creating division: %w", err)
	}
	return nil
}

// GetByID retrieves a division by ID
func (r *DivisionRepository) GetByID(ctx context.Context, id int64) (*models.Division, error) {
	division, err := scanDivision(r.db.QueryRow(ctx,
		`SELECT id, class_id, name, class_teacher_id, created_at FROM divisions WHERE id = $1`, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrDivisionNotFound
		}
		return nil, fmt.Errorf("error retrieving division: %w", err)
	}
	return division, nil
}

// List retrieves divisions ordered by name
func (r *DivisionRepository) List(ctx context.Context, filter DivisionFilter) ([]*models.Division, error) {
	q := r.sb.Select("dv.id", "dv.class_id", "dv.name", "dv.class_teacher_id", "dv.created_at").
		From("divisions dv").
		Join("classes c ON c.id = dv.class_id").
		OrderBy("c.year", "c.name", "dv.name")
	if filter.ClassID != nil {
		q = q.Where(squirrel.Eq{"dv.class_id": *filter.ClassID})
	}
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"c.department_id": *filter.DepartmentID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list divisions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing divisions: %w", err)
	}
	defer rows.Close()

	divisions := make([]*models.Division, 0)
	for rows.Next() {
		division, err := scanDivision(rows)
		if err != nil {
			return nil, err
		}
		divisions = append(divisions, division)
	}
	return divisions, rows.Err()
}

// ExistsByName checks whether the class already has a division with this name
func (r *DivisionRepository) ExistsByName(ctx context.Context, classID int64, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM divisions WHERE class_id = $1 AND LOWER(name) = LOWER($2) AND id <> $3)`,
		classID, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking division existence: %w", err)
	}
	return exists, nil
}

// Update updates name and class teacher
func (r *DivisionRepository) Update(ctx context.Context, division *models.Division) error {
	tag, err := r.db.Exec(ctx, `UPDATE divisions SET name = $1, class_teacher_id = $2 WHERE id = $3`,
		division.Name, division.ClassTeacherID, division.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "divisions_class_name_key") {
			return apperrors.ErrDivisionAlreadyExists
		}
		return fmt.Errorf("error updating division: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDivisionNotFound
	}
	return nil
}

// Delete removes a division without students, labs or allocations
func (r *DivisionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM divisions WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDivisionHasRelations
		}
		return fmt.Errorf("error deleting division: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrDivisionNotFound
	}
	return nil
}
