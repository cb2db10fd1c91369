package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/dberrors"
)

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *pgxpool.Pool
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
	}
}

func scanDepartment(row pgx.Row) (*models.Department, error) {
	var d models.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Code, &d.HeadID, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	query := `
		INSERT INTO departments (name, code)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, department.Name, department.Code).Scan(&department.ID, &department.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "") {
			return apperrors.ErrDepartmentAlreadyExists
		}
		return fmt.Errorf("error creating department: %w", err)
	}

	return nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	query := `
		SELECT id, name, code, head_id, created_at
		FROM departments
		WHERE id = $1
	`

	department, err := scanDepartment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}

	return department, nil
}

// List retrieves all departments ordered by name
func (r *DepartmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	query := `
		SELECT id, name, code, head_id, created_at
		FROM departments
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	departments := make([]*models.Department, 0)
	for rows.Next() {
		department, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return departments, nil
}

// ExistsByNameOrCode checks if another department uses the name or code
func (r *DepartmentRepository) ExistsByNameOrCode(ctx context.Context, name, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM departments WHERE (LOWER(name) = LOWER($1) OR code = $2) AND id <> $3)`,
		name, code, excludeID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking department existence: %w", err)
	}

	return exists, nil
}

// Update updates name and code of an existing department
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	query := `
		UPDATE departments
		SET name = $1, code = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, department.Name, department.Code, department.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "") {
			return apperrors.ErrDepartmentAlreadyExists
		}
		return fmt.Errorf("error updating department: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}

// SetHead assigns or clears the department head
func (r *DepartmentRepository) SetHead(ctx context.Context, departmentID int64, headID *int64) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE departments SET head_id = $1 WHERE id = $2`, headID, departmentID)
	if err != nil {
		return fmt.Errorf("error setting department head: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}
	return nil
}

// Delete deletes a department by ID
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrDepartmentHasRelations
		}
		return fmt.Errorf("error deleting department: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}
