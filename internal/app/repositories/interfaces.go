package repositories

import (
	"context"
	"time"

	"github.com/attendly/attendly/internal/app/models"
)

// Repository contracts shared by the PostgreSQL implementations in this package
// and the in-memory ones in repositories/memory. Lookups of a missing row return
// the matching apperrors.Err*NotFound value; deletes blocked by dependent rows
// return the matching apperrors.Err*HasRelations value.

// UserFilter narrows user listings
type UserFilter struct {
	RoleType     *models.RoleType
	DepartmentID *int64
	ActiveOnly   bool
}

// UserStore persists staff accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]*models.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// DepartmentStore persists departments
type DepartmentStore interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	ExistsByNameOrCode(ctx context.Context, name, code string, excludeID int64) (bool, error)
	Update(ctx context.Context, department *models.Department) error
	SetHead(ctx context.Context, departmentID int64, headID *int64) error
	Delete(ctx context.Context, id int64) error
}

// ClassFilter narrows class listings
type ClassFilter struct {
	DepartmentID *int64
	Year         *int
}

// ClassStore persists classes
type ClassStore interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id int64) (*models.Class, error)
	List(ctx context.Context, filter ClassFilter) ([]*models.Class, error)
	ExistsByNameAndYear(ctx context.Context, departmentID int64, name string, year int, excludeID int64) (bool, error)
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
}

// DivisionFilter narrows division listings
type DivisionFilter struct {
	ClassID      *int64
	DepartmentID *int64
}

// DivisionStore persists divisions
type DivisionStore interface {
	Create(ctx context.Context, division *models.Division) error
	GetByID(ctx context.Context, id int64) (*models.Division, error)
	List(ctx context.Context, filter DivisionFilter) ([]*models.Division, error)
	ExistsByName(ctx context.Context, classID int64, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, division *models.Division) error
	Delete(ctx context.Context, id int64) error
}

// LabFilter narrows lab listings
type LabFilter struct {
	DivisionID   *int64
	ClassID      *int64
	DepartmentID *int64
}

// LabStore persists practical batches
type LabStore interface {
	Create(ctx context.Context, lab *models.Lab) error
	GetByID(ctx context.Context, id int64) (*models.Lab, error)
	List(ctx context.Context, filter LabFilter) ([]*models.Lab, error)
	ExistsByName(ctx context.Context, divisionID int64, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, lab *models.Lab) error
	Delete(ctx context.Context, id int64) error
}

// SubjectFilter narrows subject listings
type SubjectFilter struct {
	DepartmentID *int64
	Year         *int
	Kind         *models.SubjectKind
}

// SubjectStore persists subjects
type SubjectStore interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	List(ctx context.Context, filter SubjectFilter) ([]*models.Subject, error)
	ExistsByCode(ctx context.Context, departmentID int64, code string, excludeID int64) (bool, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
}

// StudentFilter narrows student listings. Page and PageSize are 1-based; a zero
// PageSize returns every match.
type StudentFilter struct {
	DivisionID   *int64
	LabID        *int64
	ClassID      *int64
	DepartmentID *int64
	Search       string
	Page         int
	PageSize     int
}

// StudentStore persists students
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]*models.Student, int64, error)
	ExistsByRollNumber(ctx context.Context, divisionID int64, roll int, excludeID int64) (bool, error)
	ExistsByEnrollment(ctx context.Context, enrollmentNo string, excludeID int64) (bool, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// AllocationFilter narrows allocation listings
type AllocationFilter struct {
	FacultyID    *int64
	SubjectID    *int64
	DivisionID   *int64
	DepartmentID *int64
}

// AllocationStore persists teaching allocations
type AllocationStore interface {
	Create(ctx context.Context, allocation *models.Allocation) error
	GetByID(ctx context.Context, id int64) (*models.Allocation, error)
	List(ctx context.Context, filter AllocationFilter) ([]*models.Allocation, error)
	Exists(ctx context.Context, facultyID, subjectID, divisionID int64, labID *int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// LectureFilter narrows lecture listings. From is inclusive, To exclusive.
type LectureFilter struct {
	AllocationID *int64
	FacultyID    *int64
	DivisionID   *int64
	DepartmentID *int64
	From         *time.Time
	To           *time.Time
}

// LectureStore persists lectures
type LectureStore interface {
	Create(ctx context.Context, lecture *models.Lecture) error
	GetByID(ctx context.Context, id int64) (*models.Lecture, error)
	List(ctx context.Context, filter LectureFilter) ([]*models.Lecture, error)
	Delete(ctx context.Context, id int64) error
}

// FactFilter narrows the attendance facts used for aggregation
type FactFilter struct {
	DepartmentID *int64
	DivisionID   *int64
	SubjectID    *int64
	StudentID    *int64
	AllocationID *int64
	FacultyID    *int64
	From         *time.Time
	To           *time.Time
}

// AttendanceStore persists attendance marks
type AttendanceStore interface {
	// ReplaceForLecture atomically replaces every record of the lecture
	ReplaceForLecture(ctx context.Context, lectureID int64, records []models.AttendanceRecord) error
	ListByLecture(ctx context.Context, lectureID int64) ([]models.AttendanceRecord, error)
	ListFacts(ctx context.Context, filter FactFilter) ([]models.AttendanceFact, error)
	CountByStudent(ctx context.Context, studentID int64) (int64, error)
}
