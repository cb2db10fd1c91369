package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

type fixture struct {
	repos    *repositories.Repositories
	dept     *models.Department
	faculty  *models.User
	class    *models.Class
	division *models.Division
	lab      *models.Lab
	subject  *models.Subject
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{repos: NewRepositories()}

	f.dept = &models.Department{Name: "Computer Engineering", Code: "CE"}
	require.NoError(t, f.repos.Departments.Create(ctx, f.dept))

	f.faculty = &models.User{Email: "Faculty@College.edu", FirstName: "Asha", RoleType: models.RoleFaculty, DepartmentID: &f.dept.ID, IsActive: true}
	require.NoError(t, f.repos.Users.Create(ctx, f.faculty))

	f.class = &models.Class{DepartmentID: f.dept.ID, Name: "SE", Year: 2}
	require.NoError(t, f.repos.Classes.Create(ctx, f.class))

	f.division = &models.Division{ClassID: f.class.ID, Name: "A"}
	require.NoError(t, f.repos.Divisions.Create(ctx, f.division))

	f.lab = &models.Lab{DivisionID: f.division.ID, Name: "A1"}
	require.NoError(t, f.repos.Labs.Create(ctx, f.lab))

	f.subject = &models.Subject{DepartmentID: f.dept.ID, Code: "CE201", Name: "Data Structures", Year: 2, Kind: models.SubjectTheory}
	require.NoError(t, f.repos.Subjects.Create(ctx, f.subject))
	return f
}

func TestUserEmailIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.repos.Users.GetByEmail(ctx, "  faculty@college.EDU ")
	require.NoError(t, err)
	assert.Equal(t, f.faculty.ID, got.ID)

	dup := &models.User{Email: "FACULTY@college.edu", RoleType: models.RoleFaculty}
	assert.ErrorIs(t, f.repos.Users.Create(ctx, dup), apperrors.ErrEmailAlreadyExists)
}

func TestUniqueRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.repos.Classes.Create(ctx, &models.Class{DepartmentID: f.dept.ID, Name: "se", Year: 2}), apperrors.ErrClassAlreadyExists)
	assert.NoError(t, f.repos.Classes.Create(ctx, &models.Class{DepartmentID: f.dept.ID, Name: "SE", Year: 3}))
	assert.ErrorIs(t, f.repos.Divisions.Create(ctx, &models.Division{ClassID: f.class.ID, Name: "a"}), apperrors.ErrDivisionAlreadyExists)
	assert.ErrorIs(t, f.repos.Labs.Create(ctx, &models.Lab{DivisionID: f.division.ID, Name: "A1"}), apperrors.ErrLabAlreadyExists)
	assert.ErrorIs(t, f.repos.Subjects.Create(ctx, &models.Subject{DepartmentID: f.dept.ID, Code: "CE201", Year: 2, Kind: models.SubjectTheory}), apperrors.ErrSubjectAlreadyExists)

	s1 := &models.Student{DivisionID: f.division.ID, RollNumber: 1, EnrollmentNo: "EN1", FirstName: "Ravi"}
	require.NoError(t, f.repos.Students.Create(ctx, s1))
	assert.ErrorIs(t, f.repos.Students.Create(ctx, &models.Student{DivisionID: f.division.ID, RollNumber: 1, EnrollmentNo: "EN2"}), apperrors.ErrRollNumberAlreadyExists)
	assert.ErrorIs(t, f.repos.Students.Create(ctx, &models.Student{DivisionID: f.division.ID, RollNumber: 2, EnrollmentNo: "EN1"}), apperrors.ErrEnrollmentAlreadyExists)

	a := &models.Allocation{FacultyID: f.faculty.ID, SubjectID: f.subject.ID, DivisionID: f.division.ID}
	require.NoError(t, f.repos.Allocations.Create(ctx, a))
	assert.ErrorIs(t, f.repos.Allocations.Create(ctx, &models.Allocation{FacultyID: f.faculty.ID, SubjectID: f.subject.ID, DivisionID: f.division.ID}), apperrors.ErrAllocationAlreadyExists)
	assert.NoError(t, f.repos.Allocations.Create(ctx, &models.Allocation{FacultyID: f.faculty.ID, SubjectID: f.subject.ID, DivisionID: f.division.ID, LabID: &f.lab.ID}))
}

func TestDeleteBlockedByRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.repos.Departments.Delete(ctx, f.dept.ID), apperrors.ErrDepartmentHasRelations)
	assert.ErrorIs(t, f.repos.Classes.Delete(ctx, f.class.ID), apperrors.ErrClassHasRelations)
	assert.ErrorIs(t, f.repos.Divisions.Delete(ctx, f.division.ID), apperrors.ErrDivisionHasRelations)

	student := &models.Student{DivisionID: f.division.ID, LabID: &f.lab.ID, RollNumber: 7, EnrollmentNo: "EN7", FirstName: "Meera"}
	require.NoError(t, f.repos.Students.Create(ctx, student))
	assert.ErrorIs(t, f.repos.Labs.Delete(ctx, f.lab.ID), apperrors.ErrLabHasRelations)

	a := &models.Allocation{FacultyID: f.faculty.ID, SubjectID: f.subject.ID, DivisionID: f.division.ID}
	require.NoError(t, f.repos.Allocations.Create(ctx, a))
	assert.ErrorIs(t, f.repos.Subjects.Delete(ctx, f.subject.ID), apperrors.ErrSubjectHasRelations)
	assert.ErrorIs(t, f.repos.Users.Delete(ctx, f.faculty.ID), apperrors.ErrHasRelations)

	lecture := &models.Lecture{AllocationID: a.ID, HeldAt: time.Now(), CreatedBy: f.faculty.ID}
	require.NoError(t, f.repos.Lectures.Create(ctx, lecture))
	assert.ErrorIs(t, f.repos.Allocations.Delete(ctx, a.ID), apperrors.ErrAllocationHasLectures)

	require.NoError(t, f.repos.Attendance.ReplaceForLecture(ctx, lecture.ID, []models.AttendanceRecord{
		{StudentID: student.ID, Status: models.StatusPresent},
	}))
	assert.ErrorIs(t, f.repos.Students.Delete(ctx, student.ID), apperrors.ErrStudentHasAttendance)

	require.NoError(t, f.repos.Lectures.Delete(ctx, lecture.ID))
	count, err := f.repos.Attendance.CountByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, f.repos.Students.Delete(ctx, student.ID))
}

func TestStudentListFiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	names := []string{"Aarav", "Bhavna", "Chetan", "Divya", "Esha"}
	for i, name := range names {
		s := &models.Student{DivisionID: f.division.ID, RollNumber: len(names) - i, EnrollmentNo: "EN" + name, FirstName: name}
		if i%2 == 0 {
			s.LabID = &f.lab.ID
		}
		require.NoError(t, f.repos.Students.Create(ctx, s))
	}

	page, total, err := f.repos.Students.List(ctx, repositories.StudentFilter{DivisionID: &f.division.ID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].RollNumber)
	assert.Equal(t, 4, page[1].RollNumber)

	inLab, total, err := f.repos.Students.List(ctx, repositories.StudentFilter{LabID: &f.lab.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, inLab, 3)

	found, _, err := f.repos.Students.List(ctx, repositories.StudentFilter{DepartmentID: &f.dept.ID, Search: "div"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Divya", found[0].FirstName)

	byRoll, _, err := f.repos.Students.List(ctx, repositories.StudentFilter{Search: "5"})
	require.NoError(t, err)
	require.Len(t, byRoll, 1)
	assert.Equal(t, "Aarav", byRoll[0].FirstName)
}

func TestReplaceForLectureAndFacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s1 := &models.Student{DivisionID: f.division.ID, RollNumber: 1, EnrollmentNo: "E1", FirstName: "A"}
	s2 := &models.Student{DivisionID: f.division.ID, RollNumber: 2, EnrollmentNo: "E2", FirstName: "B"}
	require.NoError(t, f.repos.Students.Create(ctx, s1))
	require.NoError(t, f.repos.Students.Create(ctx, s2))

	a := &models.Allocation{FacultyID: f.faculty.ID, SubjectID: f.subject.ID, DivisionID: f.division.ID}
	require.NoError(t, f.repos.Allocations.Create(ctx, a))
	day := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	lecture := &models.Lecture{AllocationID: a.ID, HeldAt: day, CreatedBy: f.faculty.ID}
	require.NoError(t, f.repos.Lectures.Create(ctx, lecture))

	require.NoError(t, f.repos.Attendance.ReplaceForLecture(ctx, lecture.ID, []models.AttendanceRecord{
		{StudentID: s1.ID, Status: models.StatusPresent},
		{StudentID: s2.ID, Status: models.StatusPresent},
	}))
	require.NoError(t, f.repos.Attendance.ReplaceForLecture(ctx, lecture.ID, []models.AttendanceRecord{
		{StudentID: s1.ID, Status: models.StatusAbsent},
	}))

	records, err := f.repos.Attendance.ListByLecture(ctx, lecture.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusAbsent, records[0].Status)
	assert.False(t, records[0].MarkedAt.IsZero())

	facts, err := f.repos.Attendance.ListFacts(ctx, repositories.FactFilter{DepartmentID: &f.dept.ID})
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, f.subject.ID, facts[0].SubjectID)
	assert.Equal(t, f.division.ID, facts[0].DivisionID)

	to := day
	facts, err = f.repos.Attendance.ListFacts(ctx, repositories.FactFilter{To: &to})
	require.NoError(t, err)
	assert.Empty(t, facts)
}
