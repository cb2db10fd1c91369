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

// AllocationRepository handles teaching allocation database operations
type AllocationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAllocationRepository creates a new AllocationRepository
func NewAllocationRepository(db *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{db: db, sb: statementBuilder()}
}

func scanAllocation(row pgx.Row) (*models.Allocation, error) {
	var a models.Allocation
	if err := row.Scan(&a.ID, &a.FacultyID, &a.SubjectID, &a.DivisionID, &a.LabID, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an allocation
func (r *AllocationRepository) Create(ctx context.Context, allocation *models.Allocation) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO allocations (faculty_id, subject_id, division_id, lab_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		allocation.FacultyID, allocation.SubjectID, allocation.DivisionID, allocation.LabID,
	).Scan(&allocation.ID, &allocation.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "") {
			return apperrors.ErrAllocationAlreadyExists
		}
		return fmt.Errorf("error creating allocation: %w", err)
	}
	return nil
}

// GetByID retrieves an allocation by ID
func (r *AllocationRepository) GetByID(ctx context.Context, id int64) (*models.Allocation, error) {
	allocation, err := scanAllocation(r.db.QueryRow(ctx, `
		SELECT id, faculty_id, subject_id, division_id, lab_id, created_at
		FROM allocations WHERE id = $1`, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrAllocationNotFound
		}
		return nil, fmt.Errorf("error retrieving allocation: %w", err)
	}
	return allocation, nil
}

// List retrieves allocations matching the filter
func (r *AllocationRepository) List(ctx context.Context, filter AllocationFilter) ([]*models.Allocation, error) {
	q := r.sb.Select("a.id", "a.faculty_id", "a.subject_id", "a.division_id", "a.lab_id", "a.created_at").
		From("allocations a").
		OrderBy("a.id")
	if filter.FacultyID != nil {
		q = q.Where(squirrel.Eq{"a.faculty_id": *filter.FacultyID})
	}
	if filter.SubjectID != nil {
		q = q.Where(squirrel.Eq{"a.subject_id": *filter.SubjectID})
	}
	if filter.DivisionID != nil {
		q = q.Where(squirrel.Eq{"a.division_id": *filter.DivisionID})
	}
	if filter.DepartmentID != nil {
		q = q.Join("subjects sj ON sj.id = a.subject_id").
			Where(squirrel.Eq{"sj.department_id": *filter.DepartmentID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list allocations query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing allocations: %w", err)
	}
	defer rows.Close()

	allocations := make([]*models.Allocation, 0)
	for rows.Next() {
		allocation, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, allocation)
	}
	return allocations, rows.Err()
}

// Exists checks whether the exact (faculty, subject, division, lab) allocation exists
func (r *AllocationRepository) Exists(ctx context.Context, facultyID, subjectID, divisionID int64, labID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM allocations
		WHERE faculty_id = $1 AND subject_id = $2 AND division_id = $3
		  AND lab_id IS NOT DISTINCT FROM $4)`,
		facultyID, subjectID, divisionID, labID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking allocation existence: %w", err)
	}
	return exists, nil
}

// Delete removes an allocation without lectures
func (r *AllocationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM allocations WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrAllocationHasLectures
		}
		return fmt.Errorf("error deleting allocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAllocationNotFound
	}
	return nil
}
