package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/db"
	"github.com/attendly/attendly/internal/pkg/logger"
)

// AttendanceRepository handles attendance record database operations
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{db: pool, sb: statementBuilder()}
}

// ReplaceForLecture deletes the lecture's records and copies in the new set
// inside a single transaction.
func (r *AttendanceRepository) ReplaceForLecture(ctx context.Context, lectureID int64, records []models.AttendanceRecord) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM attendance_records WHERE lecture_id = $1`, lectureID); err != nil {
			return fmt.Errorf("error clearing attendance: %w", err)
		}

		if len(records) == 0 {
			return nil
		}

		now := time.Now().UTC()
		rows := make([][]any, 0, len(records))
		for _, rec := range records {
			markedAt := rec.MarkedAt
			if markedAt.IsZero() {
				markedAt = now
			}
			rows = append(rows, []any{lectureID, rec.StudentID, string(rec.Status), markedAt})
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"attendance_records"},
			[]string{"lecture_id", "student_id", "status", "marked_at"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			logger.Error().Err(err).Int64("lectureId", lectureID).Msg("Error copying attendance records")
			return fmt.Errorf("error inserting attendance: %w", err)
		}
		return nil
	})
}

// ListByLecture returns the lecture's records ordered by student
func (r *AttendanceRepository) ListByLecture(ctx context.Context, lectureID int64) ([]models.AttendanceRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT lecture_id, student_id, status, marked_at
		FROM attendance_records
		WHERE lecture_id = $1
		ORDER BY student_id`, lectureID)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance: %w", err)
	}
	defer rows.Close()

	records := make([]models.AttendanceRecord, 0)
	for rows.Next() {
		var rec models.AttendanceRecord
		if err := rows.Scan(&rec.LectureID, &rec.StudentID, &rec.Status, &rec.MarkedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListFacts returns flattened attendance rows joined with their lecture and allocation
func (r *AttendanceRepository) ListFacts(ctx context.Context, filter FactFilter) ([]models.AttendanceFact, error) {
	q := r.sb.Select("ar.lecture_id", "ar.student_id", "a.subject_id", "a.id", "a.division_id", "l.held_at", "ar.status").
		From("attendance_records ar").
		Join("lectures l ON l.id = ar.lecture_id").
		Join("allocations a ON a.id = l.allocation_id").
		OrderBy("l.held_at", "ar.lecture_id", "ar.student_id")
	if filter.DepartmentID != nil {
		q = q.Join("subjects sj ON sj.id = a.subject_id").
			Where(squirrel.Eq{"sj.department_id": *filter.DepartmentID})
	}
	if filter.DivisionID != nil {
		q = q.Where(squirrel.Eq{"a.division_id": *filter.DivisionID})
	}
	if filter.SubjectID != nil {
		q = q.Where(squirrel.Eq{"a.subject_id": *filter.SubjectID})
	}
	if filter.StudentID != nil {
		q = q.Where(squirrel.Eq{"ar.student_id": *filter.StudentID})
	}
	if filter.AllocationID != nil {
		q = q.Where(squirrel.Eq{"a.id": *filter.AllocationID})
	}
	if filter.FacultyID != nil {
		q = q.Where(squirrel.Eq{"a.faculty_id": *filter.FacultyID})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"l.held_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"l.held_at": *filter.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance facts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing attendance facts query")
		return nil, fmt.Errorf("error listing attendance facts: %w", err)
	}
	defer rows.Close()

	facts := make([]models.AttendanceFact, 0)
	for rows.Next() {
		var f models.AttendanceFact
		if err := rows.Scan(&f.LectureID, &f.StudentID, &f.SubjectID, &f.AllocationID, &f.DivisionID, &f.HeldAt, &f.Status); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// CountByStudent counts the attendance records of a student
func (r *AttendanceRepository) CountByStudent(ctx context.Context, studentID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM attendance_records WHERE student_id = $1`, studentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting attendance: %w", err)
	}
	return count, nil
}
