package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/auth"
)

// UserListFilter holds the optional user list filters of the API
type UserListFilter struct {
	RoleType     *models.RoleType
	DepartmentID *int64
	ActiveOnly   bool
}

// UserService manages staff accounts
type UserService struct {
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repos *repositories.Repositories, authz *appauth.AuthorizationService, logger zerolog.Logger) *UserService {
	return &UserService{
		repos:  repos,
		authz:  authz,
		logger: logger,
	}
}

// canManage checks whether p may edit an account of the given role and department.
// Super admins manage everyone; an HOD manages faculty of their own department.
func (s *UserService) canManage(p appauth.Principal, role models.RoleType, departmentID *int64) error {
	switch p.Role {
	case models.RoleSuperAdmin:
		return nil
	case models.RoleDeveloper:
		return appauth.ErrReadOnlyRole
	case models.RoleHOD:
		if role != models.RoleFaculty {
			return apperrors.NewForbiddenError("a department head can only manage faculty accounts")
		}
		if departmentID == nil || !p.InDepartment(*departmentID) {
			return appauth.ErrOutsideDepartment
		}
		return nil
	}
	return apperrors.NewForbiddenError("insufficient role for this operation")
}

// checkDepartment enforces the role/department pairing and that the department exists
func (s *UserService) checkDepartment(ctx context.Context, role models.RoleType, departmentID *int64) error {
	if !role.NeedsDepartment() {
		if departmentID != nil {
			return apperrors.NewValidationError(fmt.Sprintf("%s accounts cannot belong to a department", role))
		}
		return nil
	}
	if departmentID == nil {
		return apperrors.NewValidationError(fmt.Sprintf("%s accounts require a department", role))
	}
	if _, err := s.repos.Departments.GetByID(ctx, *departmentID); err != nil {
		return err
	}
	return nil
}

// Create creates a staff account
func (s *UserService) Create(ctx context.Context, p appauth.Principal, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !req.RoleType.Valid() {
		return nil, apperrors.NewValidationError("unknown role")
	}
	if err := s.canManage(p, req.RoleType, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, req.RoleType, req.DepartmentID); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repos.Users.ExistsByEmail(ctx, email, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Password:     hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		RoleType:     req.RoleType,
		DepartmentID: req.DepartmentID,
		IsActive:     true,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Int64("by", p.UserID).Str("role", string(user.RoleType)).Msg("User created")
	return dto.NewUserResponse(user), nil
}

// Get returns an account visible to the principal
func (s *UserService) Get(ctx context.Context, p appauth.Principal, id int64) (*dto.UserResponse, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canSee(p, user); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *UserService) canSee(p appauth.Principal, user *models.User) error {
	if p.IsGlobal() || p.UserID == user.ID {
		return nil
	}
	if user.DepartmentID != nil && p.InDepartment(*user.DepartmentID) {
		return nil
	}
	return apperrors.ErrUserNotFound
}

// List lists the accounts visible to the principal
func (s *UserService) List(ctx context.Context, p appauth.Principal, filter UserListFilter) ([]*dto.UserResponse, error) {
	departmentID, err := scopedDepartment(p, filter.DepartmentID)
	if err != nil {
		return nil, err
	}
	users, err := s.repos.Users.List(ctx, repositories.UserFilter{
		RoleType:     filter.RoleType,
		DepartmentID: departmentID,
		ActiveOnly:   filter.ActiveOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return dto.NewUserResponses(users), nil
}

// Update edits an account. Moving a department head out of their department
// clears the department's head.
func (s *UserService) Update(ctx context.Context, p appauth.Principal, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(p, user.RoleType, user.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.canManage(p, user.RoleType, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, user.RoleType, req.DepartmentID); err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive && id == p.UserID {
		return nil, apperrors.NewValidationError("you cannot deactivate your own account")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != user.Email {
		exists, err := s.repos.Users.ExistsByEmail(ctx, email, id)
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		if exists {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}

	previousDepartment := user.DepartmentID
	moved := !sameDepartment(previousDepartment, req.DepartmentID)
	if moved {
		facultyID := user.ID
		allocations, err := s.repos.Allocations.List(ctx, repositories.AllocationFilter{FacultyID: &facultyID})
		if err != nil {
			return nil, fmt.Errorf("error checking allocations: %w", err)
		}
		if len(allocations) > 0 {
			return nil, apperrors.ErrUserHasAllocations
		}
	}

	user.Email = email
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.DepartmentID = req.DepartmentID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, err
	}

	if user.RoleType == models.RoleHOD && previousDepartment != nil &&
		(user.DepartmentID == nil || *user.DepartmentID != *previousDepartment || !user.IsActive) {
		if err := s.releaseHeadship(ctx, *previousDepartment, user.ID); err != nil {
			return nil, err
		}
	}

	if moved && previousDepartment != nil {
		if err := s.releaseStaffRoles(ctx, *previousDepartment, user.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Int64("userID", user.ID).Int64("by", p.UserID).Msg("User updated")
	return dto.NewUserResponse(user), nil
}

func sameDepartment(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// releaseStaffRoles clears the class teacher and lab in-charge posts a user
// holds in the department they are leaving.
func (s *UserService) releaseStaffRoles(ctx context.Context, departmentID, userID int64) error {
	divisions, err := s.repos.Divisions.List(ctx, repositories.DivisionFilter{DepartmentID: &departmentID})
	if err != nil {
		return fmt.Errorf("error loading divisions: %w", err)
	}
	for _, d := range divisions {
		if d.ClassTeacherID == nil || *d.ClassTeacherID != userID {
			continue
		}
		d.ClassTeacherID = nil
		if err := s.repos.Divisions.Update(ctx, d); err != nil {
			return fmt.Errorf("error clearing class teacher: %w", err)
		}
	}

	labs, err := s.repos.Labs.List(ctx, repositories.LabFilter{DepartmentID: &departmentID})
	if err != nil {
		return fmt.Errorf("error loading labs: %w", err)
	}
	for _, l := range labs {
		if l.InChargeID == nil || *l.InChargeID != userID {
			continue
		}
		l.InChargeID = nil
		if err := s.repos.Labs.Update(ctx, l); err != nil {
			return fmt.Errorf("error clearing lab in-charge: %w", err)
		}
	}
	return nil
}

func (s *UserService) releaseHeadship(ctx context.Context, departmentID, userID int64) error {
	department, err := s.repos.Departments.GetByID(ctx, departmentID)
	if err != nil {
		return err
	}
	if department.HeadID != nil && *department.HeadID == userID {
		if err := s.repos.Departments.SetHead(ctx, departmentID, nil); err != nil {
			return fmt.Errorf("error clearing department head: %w", err)
		}
		s.logger.Info().Int64("departmentID", departmentID).Int64("userID", userID).Msg("Department head cleared")
	}
	return nil
}

// ResetPassword sets a new password on another account
func (s *UserService) ResetPassword(ctx context.Context, p appauth.Principal, id int64, req *dto.ResetPasswordRequest) error {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.canManage(p, user.RoleType, user.DepartmentID); err != nil {
		return err
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.repos.Users.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Int64("by", p.UserID).Msg("Password reset")
	return nil
}

// Delete removes an account without allocations or lectures
func (s *UserService) Delete(ctx context.Context, p appauth.Principal, id int64) error {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.canManage(p, user.RoleType, user.DepartmentID); err != nil {
		return err
	}
	if id == p.UserID {
		return apperrors.NewValidationError("you cannot delete your own account")
	}
	if err := s.repos.Users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Int64("by", p.UserID).Msg("User deleted")
	return nil
}
