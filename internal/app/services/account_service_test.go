package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := env.svc.Auth.Login(env.ctx, &dto.LoginRequest{Email: " ANITA@college.edu", Password: testPassword})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token.AccessToken)
		assert.Equal(t, "Bearer", resp.Token.TokenType)
		assert.Equal(t, 3600, resp.Token.ExpiresIn)
		assert.Equal(t, env.faculty.ID, resp.User.ID)
		require.NotNil(t, resp.User.LastLoginAt)

		stored, err := env.repos.Users.GetByID(env.ctx, env.faculty.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLoginAt)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, err := env.svc.Auth.Login(env.ctx, &dto.LoginRequest{Email: "anita@college.edu", Password: "nope"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		_, err = env.svc.Auth.Login(env.ctx, &dto.LoginRequest{Email: "ghost@college.edu", Password: testPassword})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		env.colleague.IsActive = false
		require.NoError(t, env.repos.Users.Update(env.ctx, env.colleague))
		_, err := env.svc.Auth.Login(env.ctx, &dto.LoginRequest{Email: "rahul@college.edu", Password: testPassword})
		assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	})
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.Auth.ChangePassword(env.ctx, env.faculty.ID, &dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "another-pass"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	require.NoError(t, env.svc.Auth.ChangePassword(env.ctx, env.faculty.ID, &dto.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: "another-pass"}))
	_, err = env.svc.Auth.Login(env.ctx, &dto.LoginRequest{Email: "anita@college.edu", Password: "another-pass"})
	assert.NoError(t, err)
}

func TestUserManagementScope(t *testing.T) {
	env := newTestEnv(t)

	t.Run("hod creates faculty in own department", func(t *testing.T) {
		user, err := env.svc.Users.Create(env.ctx, env.hod, &dto.CreateUserRequest{
			Email: "New.Faculty@college.edu", Password: testPassword, FirstName: "Kiran",
			RoleType: models.RoleFaculty, DepartmentID: &env.dept.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "new.faculty@college.edu", user.Email)
		assert.True(t, user.IsActive)
	})

	t.Run("hod cannot create another hod or reach another department", func(t *testing.T) {
		_, err := env.svc.Users.Create(env.ctx, env.hod, &dto.CreateUserRequest{
			Email: "x@college.edu", Password: testPassword, FirstName: "X",
			RoleType: models.RoleHOD, DepartmentID: &env.dept.ID,
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		_, err = env.svc.Users.Create(env.ctx, env.hod, &dto.CreateUserRequest{
			Email: "y@college.edu", Password: testPassword, FirstName: "Y",
			RoleType: models.RoleFaculty, DepartmentID: &env.otherDept.ID,
		})
		assert.ErrorIs(t, err, appauth.ErrOutsideDepartment)
	})

	t.Run("developer is read-only", func(t *testing.T) {
		_, err := env.svc.Users.Create(env.ctx, env.developer, &dto.CreateUserRequest{
			Email: "z@college.edu", Password: testPassword, FirstName: "Z", RoleType: models.RoleDeveloper,
		})
		assert.ErrorIs(t, err, appauth.ErrReadOnlyRole)

		users, err := env.svc.Users.List(env.ctx, env.developer, UserListFilter{})
		require.NoError(t, err)
		assert.NotEmpty(t, users)
	})

	t.Run("role and department pairing", func(t *testing.T) {
		_, err := env.svc.Users.Create(env.ctx, env.admin, &dto.CreateUserRequest{
			Email: "dev@college.edu", Password: testPassword, FirstName: "Dev",
			RoleType: models.RoleDeveloper, DepartmentID: &env.dept.ID,
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

		_, err = env.svc.Users.Create(env.ctx, env.admin, &dto.CreateUserRequest{
			Email: "fac@college.edu", Password: testPassword, FirstName: "Fac", RoleType: models.RoleFaculty,
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.svc.Users.Create(env.ctx, env.admin, &dto.CreateUserRequest{
			Email: "ANITA@college.edu", Password: testPassword, FirstName: "Dup",
			RoleType: models.RoleFaculty, DepartmentID: &env.dept.ID,
		})
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	})

	t.Run("listing is scoped to the department", func(t *testing.T) {
		_, err := env.svc.Users.List(env.ctx, env.lecturer, UserListFilter{DepartmentID: &env.otherDept.ID})
		assert.ErrorIs(t, err, appauth.ErrOutsideDepartment)

		users, err := env.svc.Users.List(env.ctx, env.lecturer, UserListFilter{})
		require.NoError(t, err)
		for _, u := range users {
			require.NotNil(t, u.DepartmentID)
			assert.Equal(t, env.dept.ID, *u.DepartmentID)
		}
	})
}

func TestDeactivatingHeadClearsDepartmentHead(t *testing.T) {
	env := newTestEnv(t)
	inactive := false

	_, err := env.svc.Users.Update(env.ctx, env.admin, env.hodUser.ID, &dto.UpdateUserRequest{
		Email: env.hodUser.Email, FirstName: "Meena", DepartmentID: &env.dept.ID, IsActive: &inactive,
	})
	require.NoError(t, err)

	dept, err := env.repos.Departments.GetByID(env.ctx, env.dept.ID)
	require.NoError(t, err)
	assert.Nil(t, dept.HeadID)
}

func TestMovingUserToAnotherDepartment(t *testing.T) {
	env := newTestEnv(t)
	alloc := env.allocate(t, env.faculty, env.theory, nil)

	move := func(u *models.User) error {
		_, err := env.svc.Users.Update(env.ctx, env.admin, u.ID, &dto.UpdateUserRequest{
			Email: u.Email, FirstName: u.FirstName, DepartmentID: &env.otherDept.ID,
		})
		return err
	}

	t.Run("allocated faculty stays put", func(t *testing.T) {
		err := move(env.faculty)
		assert.ErrorIs(t, err, apperrors.ErrHasRelations)

		user, err := env.repos.Users.GetByID(env.ctx, env.faculty.ID)
		require.NoError(t, err)
		require.NotNil(t, user.DepartmentID)
		assert.Equal(t, env.dept.ID, *user.DepartmentID)

		_, err = env.svc.Lectures.Create(env.ctx, env.lecturer, &dto.CreateLectureRequest{AllocationID: alloc.ID, HeldAt: day(3)})
		assert.NoError(t, err)
	})

	t.Run("staff posts are released", func(t *testing.T) {
		env.division.ClassTeacherID = &env.colleague.ID
		require.NoError(t, env.repos.Divisions.Update(env.ctx, env.division))
		env.labA1.InChargeID = &env.colleague.ID
		require.NoError(t, env.repos.Labs.Update(env.ctx, env.labA1))

		require.NoError(t, move(env.colleague))

		division, err := env.repos.Divisions.GetByID(env.ctx, env.division.ID)
		require.NoError(t, err)
		assert.Nil(t, division.ClassTeacherID)
		lab, err := env.repos.Labs.GetByID(env.ctx, env.labA1.ID)
		require.NoError(t, err)
		assert.Nil(t, lab.InChargeID)
	})

	t.Run("same department keeps allocations", func(t *testing.T) {
		_, err := env.svc.Users.Update(env.ctx, env.admin, env.faculty.ID, &dto.UpdateUserRequest{
			Email: env.faculty.Email, FirstName: "Anita", LastName: "Patil", DepartmentID: &env.dept.ID,
		})
		assert.NoError(t, err)
	})
}

func TestDepartmentHead(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Departments.AssignHead(env.ctx, env.admin, env.dept.ID, &dto.AssignHeadRequest{HeadID: &env.faculty.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.svc.Departments.AssignHead(env.ctx, env.hod, env.dept.ID, &dto.AssignHeadRequest{HeadID: &env.hodUser.ID})
	assert.ErrorIs(t, err, appauth.ErrAdminOnly)

	dept, err := env.svc.Departments.AssignHead(env.ctx, env.admin, env.dept.ID, &dto.AssignHeadRequest{})
	require.NoError(t, err)
	assert.Nil(t, dept.HeadID)

	dept, err = env.svc.Departments.AssignHead(env.ctx, env.admin, env.dept.ID, &dto.AssignHeadRequest{HeadID: &env.hodUser.ID})
	require.NoError(t, err)
	require.NotNil(t, dept.Head)
	assert.Equal(t, env.hodUser.ID, dept.Head.ID)

	_, err = env.svc.Departments.Create(env.ctx, env.admin, &dto.CreateDepartmentRequest{Name: "Civil", Code: "ce"})
	assert.ErrorIs(t, err, apperrors.ErrDepartmentAlreadyExists)

	visible, err := env.svc.Departments.List(env.ctx, env.lecturer)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, env.dept.ID, visible[0].ID)
}
