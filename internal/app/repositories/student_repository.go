package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/dberrors"
	"github.com/attendly/attendly/internal/pkg/logger"
)

var studentColumns = []string{
	"s.id", "s.division_id", "s.lab_id", "s.roll_number", "s.enrollment_no",
	"s.first_name", "s.last_name", "s.email", "s.created_at",
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db, sb: statementBuilder()}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.DivisionID, &s.LabID, &s.RollNumber, &s.EnrollmentNo,
		&s.FirstName, &s.LastName, &s.Email, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func mapStudentWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "students_division_roll_key"):
		return apperrors.ErrRollNumberAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, "students_enrollment_no_key"):
		return apperrors.ErrEnrollmentAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrDivisionNotFound
	}
	return err
}

// Create inserts a student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO students (division_id, lab_id, roll_number, enrollment_no, first_name, last_name, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		student.DivisionID, student.LabID, student.RollNumber, student.EnrollmentNo,
		student.FirstName, student.LastName, student.Email,
	).Scan(&student.ID, &student.CreatedAt)
	if err != nil {
		if mapped := mapStudentWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students s").Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

func applyStudentFilter(q squirrel.SelectBuilder, filter StudentFilter) squirrel.SelectBuilder {
	if filter.ClassID != nil || filter.DepartmentID != nil {
		q = q.Join("divisions dv ON dv.id = s.division_id").
			Join("classes c ON c.id = dv.class_id")
	}
	if filter.DivisionID != nil {
		q = q.Where(squirrel.Eq{"s.division_id": *filter.DivisionID})
	}
	if filter.LabID != nil {
		q = q.Where(squirrel.Eq{"s.lab_id": *filter.LabID})
	}
	if filter.ClassID != nil {
		q = q.Where(squirrel.Eq{"dv.class_id": *filter.ClassID})
	}
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"c.department_id": *filter.DepartmentID})
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + term + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"s.first_name": pattern},
			squirrel.ILike{"s.last_name": pattern},
			squirrel.ILike{"s.enrollment_no": pattern},
			squirrel.Expr("CAST(s.roll_number AS TEXT) = ?", term),
		})
	}
	return q
}

// List retrieves students matching the filter ordered by division and roll number,
// along with the total number of matches.
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter) ([]*models.Student, int64, error) {
	countSQL, countArgs, err := applyStudentFilter(r.sb.Select("COUNT(*)").From("students s"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting students")
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	q := applyStudentFilter(r.sb.Select(studentColumns...).From("students s"), filter).
		OrderBy("s.division_id", "s.roll_number")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		q = q.Limit(uint64(filter.PageSize)).Offset(uint64((page - 1) * filter.PageSize))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// ExistsByRollNumber checks the per-division roll number rule
func (r *StudentRepository) ExistsByRollNumber(ctx context.Context, divisionID int64, roll int, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM students WHERE division_id = $1 AND roll_number = $2 AND id <> $3)`,
		divisionID, roll, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking roll number: %w", err)
	}
	return exists, nil
}

// ExistsByEnrollment checks the global enrollment number rule
func (r *StudentRepository) ExistsByEnrollment(ctx context.Context, enrollmentNo string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM students WHERE enrollment_no = $1 AND id <> $2)`,
		enrollmentNo, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking enrollment number: %w", err)
	}
	return exists, nil
}

// Update updates every mutable student field
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE students
		SET division_id = $1, lab_id = $2, roll_number = $3, enrollment_no = $4,
		    first_name = $5, last_name = $6, email = $7
		WHERE id = $8`,
		student.DivisionID, student.LabID, student.RollNumber, student.EnrollmentNo,
		student.FirstName, student.LastName, student.Email, student.ID)
	if err != nil {
		if mapped := mapStudentWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("error updating student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Delete removes a student without attendance records
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrStudentHasAttendance
		}
		return fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}
