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

// LectureRepository handles lecture database operations
type LectureRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLectureRepository creates a new LectureRepository
func NewLectureRepository(db *pgxpool.Pool) *LectureRepository {
	return &LectureRepository{db: db, sb: statementBuilder()}
}

func scanLecture(row pgx.Row) (*models.Lecture, error) {
	var l models.Lecture
	if err := row.Scan(&l.ID, &l.AllocationID, &l.HeldAt, &l.Topic, &l.CreatedBy, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a lecture
func (r *LectureRepository) Create(ctx context.Context, lecture *models.Lecture) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO lectures (allocation_id, held_at, topic, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		lecture.AllocationID, lecture.HeldAt, lecture.Topic, lecture.CreatedBy,
	).Scan(&lecture.ID, &lecture.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrAllocationNotFound
		}
		return fmt.Errorf("error creating lecture: %w", err)
	}
	return nil
}

// GetByID retrieves a lecture by ID
func (r *LectureRepository) GetByID(ctx context.Context, id int64) (*models.Lecture, error) {
	lecture, err := scanLecture(r.db.QueryRow(ctx, `
		SELECT id, allocation_id, held_at, topic, created_by, created_at
		FROM lectures WHERE id = $1`, id))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrLectureNotFound
		}
		return nil, fmt.Errorf("error retrieving lecture: %w", err)
	}
	return lecture, nil
}

// List retrieves lectures matching the filter, newest first
func (r *LectureRepository) List(ctx context.Context, filter LectureFilter) ([]*models.Lecture, error) {
	q := r.sb.Select("l.id", "l.allocation_id", "l.held_at", "l.topic", "l.created_by", "l.created_at").
		From("lectures l").
		Join("allocations a ON a.id = l.allocation_id").
		OrderBy("l.held_at DESC", "l.id DESC")
	if filter.AllocationID != nil {
		q = q.Where(squirrel.Eq{"l.allocation_id": *filter.AllocationID})
	}
	if filter.FacultyID != nil {
		q = q.Where(squirrel.Eq{"a.faculty_id": *filter.FacultyID})
	}
	if filter.DivisionID != nil {
		q = q.Where(squirrel.Eq{"a.division_id": *filter.DivisionID})
	}
	if filter.DepartmentID != nil {
		q = q.Join("subjects sj ON sj.id = a.subject_id").
			Where(squirrel.Eq{"sj.department_id": *filter.DepartmentID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"l.held_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"l.held_at": *filter.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list lectures query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing lectures: %w", err)
	}
	defer rows.Close()

	lectures := make([]*models.Lecture, 0)
	for rows.Next() {
		lecture, err := scanLecture(rows)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, lecture)
	}
	return lectures, rows.Err()
}

// Delete removes a lecture; its attendance records cascade
func (r *LectureRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM lectures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting lecture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLectureNotFound
	}
	return nil
}
