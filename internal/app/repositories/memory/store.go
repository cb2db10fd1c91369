// Package memory implements the repository contracts on top of process memory.
// It backs the "memory" database driver for demos and the service and API tests.
package memory

import (
	"sync"
	"time"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories"
)

type recordKey struct {
	lectureID int64
	studentID int64
}

// Store holds every table behind one lock so relation checks see a consistent view
type Store struct {
	mutex sync.RWMutex
	seq   int64
	now   func() time.Time

	users       map[int64]*models.User
	departments map[int64]*models.Department
	classes     map[int64]*models.Class
	divisions   map[int64]*models.Division
	labs        map[int64]*models.Lab
	subjects    map[int64]*models.Subject
	students    map[int64]*models.Student
	allocations map[int64]*models.Allocation
	lectures    map[int64]*models.Lecture
	records     map[recordKey]models.AttendanceRecord
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		users:       make(map[int64]*models.User),
		departments: make(map[int64]*models.Department),
		classes:     make(map[int64]*models.Class),
		divisions:   make(map[int64]*models.Division),
		labs:        make(map[int64]*models.Lab),
		subjects:    make(map[int64]*models.Subject),
		students:    make(map[int64]*models.Student),
		allocations: make(map[int64]*models.Allocation),
		lectures:    make(map[int64]*models.Lecture),
		records:     make(map[recordKey]models.AttendanceRecord),
	}
}

// NewRepositories wires every in-memory repository to a fresh store
func NewRepositories() *repositories.Repositories {
	return NewStore().Repositories()
}

// Repositories exposes the store through the repository contracts
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:       &userRepository{s},
		Departments: &departmentRepository{s},
		Classes:     &classRepository{s},
		Divisions:   &divisionRepository{s},
		Labs:        &labRepository{s},
		Subjects:    &subjectRepository{s},
		Students:    &studentRepository{s},
		Allocations: &allocationRepository{s},
		Lectures:    &lectureRepository{s},
		Attendance:  &attendanceRepository{s},
	}
}

// nextID must be called with the write lock held
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// departmentOfDivision must be called with the lock held
func (s *Store) departmentOfDivision(divisionID int64) int64 {
	dv, ok := s.divisions[divisionID]
	if !ok {
		return 0
	}
	if c, ok := s.classes[dv.ClassID]; ok {
		return c.DepartmentID
	}
	return 0
}

func matches(want *int64, got int64) bool {
	return want == nil || *want == got
}

func sameOptional(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clearRef(ref **int64, id int64) {
	if *ref != nil && **ref == id {
		*ref = nil
	}
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}
