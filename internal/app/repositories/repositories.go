package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	Users       UserStore
	Departments DepartmentStore
	Classes     ClassStore
	Divisions   DivisionStore
	Labs        LabStore
	Subjects    SubjectStore
	Students    StudentStore
	Allocations AllocationStore
	Lectures    LectureStore
	Attendance  AttendanceStore
}

// NewRepositories initializes the PostgreSQL-backed repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Departments: NewDepartmentRepository(db),
		Classes:     NewClassRepository(db),
		Divisions:   NewDivisionRepository(db),
		Labs:        NewLabRepository(db),
		Subjects:    NewSubjectRepository(db),
		Students:    NewStudentRepository(db),
		Allocations: NewAllocationRepository(db),
		Lectures:    NewLectureRepository(db),
		Attendance:  NewAttendanceRepository(db),
	}
}

// statementBuilder returns a squirrel builder using PostgreSQL placeholders
func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
