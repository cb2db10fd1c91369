package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories/memory"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

func TestScopeRules(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	authz := NewAuthorizationService(repos)

	ce := &models.Department{Name: "Computer", Code: "CE"}
	me := &models.Department{Name: "Mechanical", Code: "ME"}
	require.NoError(t, repos.Departments.Create(ctx, ce))
	require.NoError(t, repos.Departments.Create(ctx, me))

	faculty := &models.User{Email: "f@x.edu", RoleType: models.RoleFaculty, DepartmentID: &ce.ID}
	other := &models.User{Email: "o@x.edu", RoleType: models.RoleFaculty, DepartmentID: &ce.ID}
	require.NoError(t, repos.Users.Create(ctx, faculty))
	require.NoError(t, repos.Users.Create(ctx, other))

	class := &models.Class{DepartmentID: ce.ID, Name: "FE", Year: 1}
	require.NoError(t, repos.Classes.Create(ctx, class))
	division := &models.Division{ClassID: class.ID, Name: "A"}
	require.NoError(t, repos.Divisions.Create(ctx, division))
	subject := &models.Subject{DepartmentID: ce.ID, Code: "CE101", Name: "Maths", Year: 1, Kind: models.SubjectTheory}
	require.NoError(t, repos.Subjects.Create(ctx, subject))
	allocation := &models.Allocation{FacultyID: faculty.ID, SubjectID: subject.ID, DivisionID: division.ID}
	require.NoError(t, repos.Allocations.Create(ctx, allocation))

	admin := Principal{UserID: 100, Role: models.RoleSuperAdmin}
	developer := Principal{UserID: 101, Role: models.RoleDeveloper}
	hod := Principal{UserID: 102, Role: models.RoleHOD, DepartmentID: &ce.ID}
	foreignHOD := Principal{UserID: 103, Role: models.RoleHOD, DepartmentID: &me.ID}
	owner := Principal{UserID: faculty.ID, Role: models.RoleFaculty, DepartmentID: &ce.ID}
	colleague := Principal{UserID: other.ID, Role: models.RoleFaculty, DepartmentID: &ce.ID}

	t.Run("read", func(t *testing.T) {
		assert.NoError(t, authz.CanRead(developer, ce.ID))
		assert.NoError(t, authz.CanRead(colleague, ce.ID))
		assert.ErrorIs(t, authz.CanRead(foreignHOD, ce.ID), apperrors.ErrPermissionDenied)
	})

	t.Run("manage", func(t *testing.T) {
		assert.NoError(t, authz.CanManage(admin, me.ID))
		assert.NoError(t, authz.CanManage(hod, ce.ID))
		assert.ErrorIs(t, authz.CanManage(hod, me.ID), ErrOutsideDepartment)
		assert.ErrorIs(t, authz.CanManage(developer, ce.ID), ErrReadOnlyRole)
		assert.ErrorIs(t, authz.CanManage(owner, ce.ID), apperrors.ErrPermissionDenied)
	})

	t.Run("conduct", func(t *testing.T) {
		assert.NoError(t, authz.CanConduct(ctx, owner, allocation))
		assert.NoError(t, authz.CanConduct(ctx, hod, allocation))
		assert.NoError(t, authz.CanConduct(ctx, admin, allocation))
		assert.ErrorIs(t, authz.CanConduct(ctx, colleague, allocation), ErrNotAllocationOwner)
		assert.ErrorIs(t, authz.CanConduct(ctx, foreignHOD, allocation), ErrOutsideDepartment)
		assert.ErrorIs(t, authz.CanConduct(ctx, developer, allocation), ErrReadOnlyRole)
	})

	t.Run("division report", func(t *testing.T) {
		assert.NoError(t, authz.CanViewDivisionReport(ctx, owner, division.ID))
		assert.NoError(t, authz.CanViewDivisionReport(ctx, developer, division.ID))
		assert.ErrorIs(t, authz.CanViewDivisionReport(ctx, colleague, division.ID), apperrors.ErrPermissionDenied)
		assert.ErrorIs(t, authz.CanViewDivisionReport(ctx, foreignHOD, division.ID), apperrors.ErrPermissionDenied)
		assert.ErrorIs(t, authz.CanViewDivisionReport(ctx, admin, 9999), apperrors.ErrResourceNotFound)
	})

	t.Run("feed", func(t *testing.T) {
		assert.NoError(t, authz.CanWatchFeed(developer, ce.ID))
		assert.NoError(t, authz.CanWatchFeed(hod, ce.ID))
		assert.ErrorIs(t, authz.CanWatchFeed(foreignHOD, ce.ID), apperrors.ErrPermissionDenied)
		assert.ErrorIs(t, authz.CanWatchFeed(owner, ce.ID), apperrors.ErrPermissionDenied)
	})

	t.Run("scope", func(t *testing.T) {
		assert.Nil(t, developer.DepartmentScope())
		require.NotNil(t, hod.DepartmentScope())
		assert.Equal(t, ce.ID, *hod.DepartmentScope())
	})
}
