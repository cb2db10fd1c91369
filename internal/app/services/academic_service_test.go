package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

func TestHierarchyCounts(t *testing.T) {
	env := newTestEnv(t)

	tree, err := env.svc.Hierarchy.Hierarchy(env.ctx, env.lecturer, env.class.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, tree.StudentCount)
	require.Len(t, tree.Divisions, 1)
	assert.EqualValues(t, 6, tree.Divisions[0].StudentCount)
	require.Len(t, tree.Divisions[0].Labs, 2)
	for _, lab := range tree.Divisions[0].Labs {
		assert.EqualValues(t, 3, lab.StudentCount)
	}

	_, err = env.svc.Hierarchy.DepartmentTree(env.ctx, env.lecturer, env.otherDept.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	deptTree, err := env.svc.Hierarchy.DepartmentTree(env.ctx, env.developer, env.dept.ID)
	require.NoError(t, err)
	require.Len(t, deptTree.Classes, 1)
	assert.Equal(t, env.class.ID, deptTree.Classes[0].ID)
}

func TestHierarchyWrites(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Hierarchy.CreateClass(env.ctx, env.hod, &dto.CreateClassRequest{DepartmentID: env.dept.ID, Name: " Second Year ", Year: 2})
	assert.ErrorIs(t, err, apperrors.ErrClassAlreadyExists)

	third, err := env.svc.Hierarchy.CreateClass(env.ctx, env.hod, &dto.CreateClassRequest{DepartmentID: env.dept.ID, Name: "Third Year", Year: 3})
	require.NoError(t, err)

	_, err = env.svc.Hierarchy.CreateClass(env.ctx, env.lecturer, &dto.CreateClassRequest{DepartmentID: env.dept.ID, Name: "Fourth Year", Year: 4})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = env.svc.Hierarchy.CreateClass(env.ctx, env.hod, &dto.CreateClassRequest{DepartmentID: env.otherDept.ID, Name: "First Year", Year: 1})
	assert.ErrorIs(t, err, appauth.ErrOutsideDepartment)

	outsider := env.addUser(t, "outsider@college.edu", "Om", models.RoleFaculty, &env.otherDept.ID)
	_, err = env.svc.Hierarchy.CreateDivision(env.ctx, env.hod, &dto.CreateDivisionRequest{ClassID: third.ID, Name: "A", ClassTeacherID: &outsider.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	division, err := env.svc.Hierarchy.CreateDivision(env.ctx, env.hod, &dto.CreateDivisionRequest{ClassID: third.ID, Name: "A", ClassTeacherID: &env.faculty.ID})
	require.NoError(t, err)
	lab, err := env.svc.Hierarchy.CreateLab(env.ctx, env.hod, &dto.CreateLabRequest{DivisionID: division.ID, Name: "A1"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.Hierarchy.DeleteClass(env.ctx, env.hod, third.ID), apperrors.ErrClassHasRelations)
	require.NoError(t, env.svc.Hierarchy.DeleteLab(env.ctx, env.hod, lab.ID))
	require.NoError(t, env.svc.Hierarchy.DeleteDivision(env.ctx, env.hod, division.ID))
	require.NoError(t, env.svc.Hierarchy.DeleteClass(env.ctx, env.hod, third.ID))

	assert.ErrorIs(t, env.svc.Hierarchy.DeleteLab(env.ctx, env.hod, env.labA1.ID), apperrors.ErrLabHasRelations)
}

func TestSubjects(t *testing.T) {
	env := newTestEnv(t)

	subject, err := env.svc.Subjects.Create(env.ctx, env.hod, &dto.CreateSubjectRequest{
		DepartmentID: env.dept.ID, Code: " ce301 ", Name: "Operating Systems", Year: 3, Kind: models.SubjectTheory,
	})
	require.NoError(t, err)
	assert.Equal(t, "CE301", subject.Code)

	_, err = env.svc.Subjects.Create(env.ctx, env.hod, &dto.CreateSubjectRequest{
		DepartmentID: env.dept.ID, Code: "CE301", Name: "Duplicate", Year: 3, Kind: models.SubjectTheory,
	})
	assert.ErrorIs(t, err, apperrors.ErrSubjectAlreadyExists)

	year := 2
	list, err := env.svc.Subjects.List(env.ctx, env.lecturer, repositories.SubjectFilter{Year: &year})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	env.allocate(t, env.faculty, env.theory, nil)
	_, err = env.svc.Subjects.Update(env.ctx, env.hod, env.theory.ID, &dto.UpdateSubjectRequest{
		Code: env.theory.Code, Name: env.theory.Name, Year: 2, Kind: models.SubjectPractical,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.ErrorIs(t, env.svc.Subjects.Delete(env.ctx, env.hod, env.theory.ID), apperrors.ErrSubjectHasRelations)
}

func TestStudentRules(t *testing.T) {
	env := newTestEnv(t)

	other := &models.Division{ClassID: env.class.ID, Name: "B"}
	require.NoError(t, env.repos.Divisions.Create(env.ctx, other))

	_, err := env.svc.Students.Create(env.ctx, env.hod, &dto.CreateStudentRequest{
		DivisionID: other.ID,
		StudentInput: dto.StudentInput{
			LabID: &env.labA1.ID, RollNumber: 1, EnrollmentNo: "2023CE0100", FirstName: "Gauri",
		},
	})
	assert.ErrorIs(t, err, apperrors.ErrLabOutsideStudentDivision)

	_, err = env.svc.Students.Create(env.ctx, env.hod, &dto.CreateStudentRequest{
		DivisionID:   env.division.ID,
		StudentInput: dto.StudentInput{RollNumber: 1, EnrollmentNo: "2023CE0101", FirstName: "Gauri"},
	})
	assert.ErrorIs(t, err, apperrors.ErrRollNumberAlreadyExists)

	created, err := env.svc.Students.Create(env.ctx, env.hod, &dto.CreateStudentRequest{
		DivisionID:   other.ID,
		StudentInput: dto.StudentInput{RollNumber: 1, EnrollmentNo: "2023ce0101", FirstName: "Gauri"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2023CE0101", created.EnrollmentNo)

	_, err = env.svc.Students.Create(env.ctx, env.lecturer, &dto.CreateStudentRequest{
		DivisionID:   other.ID,
		StudentInput: dto.StudentInput{RollNumber: 2, EnrollmentNo: "2023CE0102", FirstName: "Hari"},
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	moved, err := env.svc.Students.Update(env.ctx, env.hod, created.ID, &dto.UpdateStudentRequest{
		DivisionID:   env.division.ID,
		StudentInput: dto.StudentInput{LabID: &env.labA2.ID, RollNumber: 7, EnrollmentNo: "2023CE0101", FirstName: "Gauri"},
	})
	require.NoError(t, err)
	assert.Equal(t, env.division.ID, moved.DivisionID)
	assert.Equal(t, created.CreatedAt, moved.CreatedAt)
}

func TestStudentListPages(t *testing.T) {
	env := newTestEnv(t)

	page, err := env.svc.Students.List(env.ctx, env.lecturer, StudentListParams{DivisionID: &env.division.ID, Page: 2, PageSize: 4})
	require.NoError(t, err)
	assert.EqualValues(t, 6, page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Students, 2)
	assert.Equal(t, 5, page.Students[0].RollNumber)

	_, err = env.svc.Students.List(env.ctx, env.lecturer, StudentListParams{DepartmentID: &env.otherDept.ID})
	assert.ErrorIs(t, err, appauth.ErrOutsideDepartment)
}

func TestBulkImportReportsRejectedRows(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.Students.BulkImport(env.ctx, env.hod, &dto.BulkImportRequest{
		DivisionID: env.division.ID,
		Students: []dto.StudentInput{
			{RollNumber: 10, EnrollmentNo: "2023CE0110", FirstName: "Ishaan", LabID: &env.labA1.ID},
			{RollNumber: 1, EnrollmentNo: "2023CE0111", FirstName: "Jaya"},
			{RollNumber: 11, EnrollmentNo: "x", FirstName: "Kabir"},
			{RollNumber: 12, EnrollmentNo: "2023CE0110", FirstName: "Lata"},
			{RollNumber: 13, EnrollmentNo: "2023CE0113", FirstName: "Manav"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 2)
	assert.Equal(t, "2023CE0110", result.Created[0].EnrollmentNo)
	assert.Equal(t, "2023CE0113", result.Created[1].EnrollmentNo)

	require.Len(t, result.Errors, 3)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "roll number")
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Message, "enrollmentNo")
	assert.Equal(t, 4, result.Errors[2].Row)
	assert.Contains(t, result.Errors[2].Message, "enrollment number")
}

func TestAllocationRules(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Allocations.Create(env.ctx, env.hod, &dto.CreateAllocationRequest{
		FacultyID: env.faculty.ID, SubjectID: env.theory.ID, DivisionID: env.division.ID, LabID: &env.labA1.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	firstYear := &models.Subject{DepartmentID: env.dept.ID, Code: "CE101", Name: "Maths", Year: 1, Kind: models.SubjectTheory}
	require.NoError(t, env.repos.Subjects.Create(env.ctx, firstYear))
	_, err = env.svc.Allocations.Create(env.ctx, env.hod, &dto.CreateAllocationRequest{
		FacultyID: env.faculty.ID, SubjectID: firstYear.ID, DivisionID: env.division.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	outsider := env.addUser(t, "outsider@college.edu", "Om", models.RoleFaculty, &env.otherDept.ID)
	_, err = env.svc.Allocations.Create(env.ctx, env.hod, &dto.CreateAllocationRequest{
		FacultyID: outsider.ID, SubjectID: env.theory.ID, DivisionID: env.division.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	alloc, err := env.svc.Allocations.Create(env.ctx, env.hod, &dto.CreateAllocationRequest{
		FacultyID: env.faculty.ID, SubjectID: env.practical.ID, DivisionID: env.division.ID, LabID: &env.labA1.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "A1", alloc.LabName)
	assert.Equal(t, "CE201L", alloc.SubjectCode)
	assert.Equal(t, "Second Year", alloc.ClassName)
	assert.Equal(t, "Anita", alloc.FacultyName)

	_, err = env.svc.Allocations.Create(env.ctx, env.hod, &dto.CreateAllocationRequest{
		FacultyID: env.faculty.ID, SubjectID: env.practical.ID, DivisionID: env.division.ID, LabID: &env.labA1.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrAllocationAlreadyExists)

	list, err := env.svc.Allocations.List(env.ctx, env.lecturer, repositories.AllocationFilter{FacultyID: &env.faculty.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	env.lecture(t, alloc.Allocation, env.class.CreatedAt)
	assert.ErrorIs(t, env.svc.Allocations.Delete(env.ctx, env.hod, alloc.ID), apperrors.ErrAllocationHasLectures)
}
