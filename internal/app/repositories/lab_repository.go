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

// LabRepository handles practical batch database operations
type LabRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLabRepository creates a new LabRepository
func NewLabRepository(db *pgxpool.Pool) *LabRepository {
	return &LabRepository{db: db, sb: statementBuilder()}
}

func scanLab(row pgx.Row) (*models.Lab, error) {
	var l models.Lab
	if err := row.Scan(&l.ID, &l.DivisionID, &l.Name, &l.InChargeID, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a lab
func (r *LabRepository) Create(ctx context.Context, lab *models.Lab) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO labs (division_id, name, in_charge_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		lab.DivisionID, lab.Name, lab.InChargeID,
	).Scan(&lab.ID, &lab.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "labs_division_name_key") {
			return apperrors.ErrLabAlreadyExists
		}
		return fmt.Errorf("error creating lab: %w", err)
	}
	return nil
}

// GetByID retrieves a lab by ID
func (r *LabRepository) GetByID(ctx context.Context, id int64) (*models.Lab, error) {
	lab, err := scanLab(r.db.QueryRow(ctx,
		`SELECT id, division_id, name, in_charge_id, created_at FROM labs WHERE id = $1`, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrLabNotFound
		}
		return nil, fmt.Errorf("error retrieving lab: %w", err)
	}
	return lab, nil
}

// List retrieves labs ordered by name
func (r *LabRepository) List(ctx context.Context, filter LabFilter) ([]*models.Lab, error) {
	q := r.sb.Select("l.id", "l.division_id", "l.name", "l.in_charge_id", "l.created_at").
		From("labs l").
		Join("divisions dv ON dv.id = l.division_id").
		Join("classes c ON c.id = dv.class_id").
		OrderBy("dv.id", "l.name")
	if filter.DivisionID != nil {
		q = q.Where(squirrel.Eq{"l.division_id": *filter.DivisionID})
	}
	if filter.ClassID != nil {
		q = q.Where(squirrel.Eq{"dv.class_id": *filter.ClassID})
	}
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"c.department_id": *filter.DepartmentID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list labs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing labs: %w", err)
	}
	defer rows.Close()

	labs := make([]*models.Lab, 0)
	for rows.Next() {
		lab, err := scanLab(rows)
		if err != nil {
			return nil, err
		}
		labs = append(labs, lab)
	}
	return labs, rows.Err()
}

// ExistsByName checks whether the division already has a lab with this name
func (r *LabRepository) ExistsByName(ctx context.Context, divisionID int64, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM labs WHERE division_id = $1 AND LOWER(name) = LOWER($2) AND id <> $3)`,
		divisionID, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking lab existence: %w", err)
	}
	return exists, nil
}

// Update updates name and in-charge
func (r *LabRepository) Update(ctx context.Context, lab *models.Lab) error {
	tag, err := r.db.Exec(ctx, `UPDATE labs SET name = $1, in_charge_id = $2 WHERE id = $3`,
		lab.Name, lab.InChargeID, lab.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "labs_division_name_key") {
			return apperrors.ErrLabAlreadyExists
		}
		return fmt.Errorf("error updating lab: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLabNotFound
	}
	return nil
}

// Delete removes a lab without students or allocations
func (r *LabRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM labs WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrLabHasRelations
		}
		return fmt.Errorf("error deleting lab: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLabNotFound
	}
	return nil
}
