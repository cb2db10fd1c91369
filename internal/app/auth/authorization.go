package auth

import (
	"context"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/logger"
)

// Authorization errors
var (
	ErrReadOnlyRole       = apperrors.NewForbiddenError("this role has read-only access")
	ErrOutsideDepartment  = apperrors.NewForbiddenError("resource belongs to another department")
	ErrNotAllocationOwner = apperrors.NewForbiddenError("only the allocated faculty member can do this")
	ErrAdminOnly          = apperrors.NewForbiddenError("only a super admin can do this")
)

// Principal is the authenticated caller of a request
type Principal struct {
	UserID       int64
	Email        string
	Role         models.RoleType
	DepartmentID *int64
}

// IsGlobal reports whether the principal sees every department
func (p Principal) IsGlobal() bool {
	return p.Role == models.RoleSuperAdmin || p.Role == models.RoleDeveloper
}

// InDepartment reports whether the principal belongs to the department
func (p Principal) InDepartment(departmentID int64) bool {
	return p.DepartmentID != nil && *p.DepartmentID == departmentID
}

// DepartmentScope returns the department a listing must be narrowed to, or nil
// when the principal may see all departments.
func (p Principal) DepartmentScope() *int64 {
	if p.IsGlobal() {
		return nil
	}
	if p.DepartmentID == nil {
		none := int64(-1)
		return &none
	}
	id := *p.DepartmentID
	return &id
}

// AuthorizationService resolves the department owning a resource and applies the
// role scope rules to it.
type AuthorizationService struct {
	repos *repositories.Repositories
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(repos *repositories.Repositories) *AuthorizationService {
	return &AuthorizationService{repos: repos}
}

// CanRead checks read access to a department's data
func (s *AuthorizationService) CanRead(p Principal, departmentID int64) error {
	if p.IsGlobal() || p.InDepartment(departmentID) {
		return nil
	}
	return ErrOutsideDepartment
}

// CanManage checks write access to a department's structure (classes, subjects,
// students, allocations). Only super admins and the department's HOD qualify.
func (s *AuthorizationService) CanManage(p Principal, departmentID int64) error {
	switch p.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleHOD:
		if p.InDepartment(departmentID) {
			return nil
		}
		return ErrOutsideDepartment
	case models.RoleDeveloper:
		return ErrReadOnlyRole
	}
	return apperrors.NewForbiddenError("insufficient role for this operation")
}

// RequireAdmin allows only super admins
func (s *AuthorizationService) RequireAdmin(p Principal) error {
	if p.Role == models.RoleSuperAdmin {
		return nil
	}
	if p.Role == models.RoleDeveloper {
		return ErrReadOnlyRole
	}
	return ErrAdminOnly
}

// DepartmentOfClass returns the department owning the class
func (s *AuthorizationService) DepartmentOfClass(ctx context.Context, classID int64) (int64, error) {
	class, err := s.repos.Classes.GetByID(ctx, classID)
	if err != nil {
		return 0, err
	}
	return class.DepartmentID, nil
}

// DepartmentOfDivision returns the department owning the division
func (s *AuthorizationService) DepartmentOfDivision(ctx context.Context, divisionID int64) (int64, error) {
	division, err := s.repos.Divisions.GetByID(ctx, divisionID)
	if err != nil {
		return 0, err
	}
	return s.DepartmentOfClass(ctx, division.ClassID)
}

// DepartmentOfLab returns the department owning the lab
func (s *AuthorizationService) DepartmentOfLab(ctx context.Context, labID int64) (int64, error) {
	lab, err := s.repos.Labs.GetByID(ctx, labID)
	if err != nil {
		return 0, err
	}
	return s.DepartmentOfDivision(ctx, lab.DivisionID)
}

// DepartmentOfAllocation returns the department of the allocation's subject
func (s *AuthorizationService) DepartmentOfAllocation(ctx context.Context, allocation *models.Allocation) (int64, error) {
	subject, err := s.repos.Subjects.GetByID(ctx, allocation.SubjectID)
	if err != nil {
		return 0, err
	}
	return subject.DepartmentID, nil
}

// CanConduct checks whether the principal may create lectures and mark attendance
// for the allocation: the allocated faculty member, the department's HOD or a
// super admin.
func (s *AuthorizationService) CanConduct(ctx context.Context, p Principal, allocation *models.Allocation) error {
	switch p.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleDeveloper:
		return ErrReadOnlyRole
	case models.RoleFaculty:
		if allocation.FacultyID == p.UserID {
			return nil
		}
		return ErrNotAllocationOwner
	case models.RoleHOD:
		if allocation.FacultyID == p.UserID {
			return nil
		}
		departmentID, err := s.DepartmentOfAllocation(ctx, allocation)
		if err != nil {
			return err
		}
		if p.InDepartment(departmentID) {
			return nil
		}
		return ErrOutsideDepartment
	}
	return ErrNotAllocationOwner
}

// CanViewAllocation checks read access to an allocation's lectures and attendance
func (s *AuthorizationService) CanViewAllocation(ctx context.Context, p Principal, allocation *models.Allocation) error {
	if p.IsGlobal() || allocation.FacultyID == p.UserID {
		return nil
	}
	if p.Role == models.RoleHOD {
		departmentID, err := s.DepartmentOfAllocation(ctx, allocation)
		if err != nil {
			return err
		}
		return s.CanRead(p, departmentID)
	}
	return ErrNotAllocationOwner
}

// CanViewDivisionReport allows global roles, the department's HOD and faculty
// members holding an allocation in the division.
func (s *AuthorizationService) CanViewDivisionReport(ctx context.Context, p Principal, divisionID int64) error {
	departmentID, err := s.DepartmentOfDivision(ctx, divisionID)
	if err != nil {
		return err
	}
	if p.IsGlobal() {
		return nil
	}
	if p.Role == models.RoleHOD {
		return s.CanRead(p, departmentID)
	}

	facultyID := p.UserID
	allocations, err := s.repos.Allocations.List(ctx, repositories.AllocationFilter{FacultyID: &facultyID, DivisionID: &divisionID})
	if err != nil {
		logger.Error().Err(err).Int64("userID", p.UserID).Int64("divisionID", divisionID).Msg("Error checking division allocations")
		return err
	}
	if len(allocations) == 0 {
		return apperrors.NewForbiddenError("you do not teach this division")
	}
	return nil
}

// CanWatchFeed allows super admins, developers and the department's HOD to
// subscribe to its live attendance feed.
func (s *AuthorizationService) CanWatchFeed(p Principal, departmentID int64) error {
	if p.IsGlobal() {
		return nil
	}
	if p.Role == models.RoleHOD && p.InDepartment(departmentID) {
		return nil
	}
	return apperrors.NewForbiddenError("only the department head can watch this feed")
}
