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
	"github.com/attendly/attendly/internal/pkg/validation"
)

// DepartmentService handles department-related operations
type DepartmentService struct {
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewDepartmentService creates a new department service instance
func NewDepartmentService(repos *repositories.Repositories, authz *appauth.AuthorizationService, logger zerolog.Logger) *DepartmentService {
	return &DepartmentService{
		repos:  repos,
		authz:  authz,
		logger: logger,
	}
}

// Create creates a department; super admin only
func (s *DepartmentService) Create(ctx context.Context, p appauth.Principal, req *dto.CreateDepartmentRequest) (*models.Department, error) {
	if err := s.authz.RequireAdmin(p); err != nil {
		return nil, err
	}

	department := &models.Department{
		Name: strings.TrimSpace(req.Name),
		Code: validation.NormalizeCode(req.Code),
	}

	exists, err := s.repos.Departments.ExistsByNameOrCode(ctx, department.Name, department.Code, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking department: %w", err)
	}
	if exists {
		return nil, apperrors.ErrDepartmentAlreadyExists
	}

	if err := s.repos.Departments.Create(ctx, department); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("departmentID", department.ID).Str("code", department.Code).Msg("Department created")
	return department, nil
}

// Get returns a department with its head
func (s *DepartmentService) Get(ctx context.Context, p appauth.Principal, id int64) (*models.Department, error) {
	department, err := s.repos.Departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanRead(p, id); err != nil {
		return nil, err
	}
	s.attachHead(ctx, department)
	return department, nil
}

// List returns the departments visible to the principal
func (s *DepartmentService) List(ctx context.Context, p appauth.Principal) ([]*models.Department, error) {
	departments, err := s.repos.Departments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}

	visible := make([]*models.Department, 0, len(departments))
	for _, d := range departments {
		if s.authz.CanRead(p, d.ID) != nil {
			continue
		}
		s.attachHead(ctx, d)
		visible = append(visible, d)
	}
	return visible, nil
}

func (s *DepartmentService) attachHead(ctx context.Context, department *models.Department) {
	if department.HeadID == nil {
		return
	}
	head, err := s.repos.Users.GetByID(ctx, *department.HeadID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("departmentID", department.ID).Msg("Could not load department head")
		return
	}
	department.Head = head
}

// Update renames a department; super admin only
func (s *DepartmentService) Update(ctx context.Context, p appauth.Principal, id int64, req *dto.UpdateDepartmentRequest) (*models.Department, error) {
	if err := s.authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	department, err := s.repos.Departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	department.Name = strings.TrimSpace(req.Name)
	department.Code = validation.NormalizeCode(req.Code)

	exists, err := s.repos.Departments.ExistsByNameOrCode(ctx, department.Name, department.Code, id)
	if err != nil {
		return nil, fmt.Errorf("error checking department: %w", err)
	}
	if exists {
		return nil, apperrors.ErrDepartmentAlreadyExists
	}

	if err := s.repos.Departments.Update(ctx, department); err != nil {
		return nil, err
	}
	s.attachHead(ctx, department)
	return department, nil
}

// AssignHead sets or clears the head of a department. The head must be an
// active HOD account of that department.
func (s *DepartmentService) AssignHead(ctx context.Context, p appauth.Principal, id int64, req *dto.AssignHeadRequest) (*models.Department, error) {
	if err := s.authz.RequireAdmin(p); err != nil {
		return nil, err
	}
	department, err := s.repos.Departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.HeadID != nil {
		head, err := s.repos.Users.GetByID(ctx, *req.HeadID)
		if err != nil {
			return nil, err
		}
		if head.RoleType != models.RoleHOD {
			return nil, apperrors.NewValidationError("department head must have the HOD role")
		}
		if !head.InDepartment(id) {
			return nil, apperrors.NewValidationError("department head must belong to the department")
		}
		if !head.IsActive {
			return nil, apperrors.NewValidationError("department head account is disabled")
		}
	}

	if err := s.repos.Departments.SetHead(ctx, id, req.HeadID); err != nil {
		return nil, err
	}
	department.HeadID = req.HeadID
	s.attachHead(ctx, department)

	s.logger.Info().Int64("departmentID", id).Interface("headID", req.HeadID).Msg("Department head assigned")
	return department, nil
}

// Delete removes a department without classes, subjects or staff
func (s *DepartmentService) Delete(ctx context.Context, p appauth.Principal, id int64) error {
	if err := s.authz.RequireAdmin(p); err != nil {
		return err
	}
	if err := s.repos.Departments.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("departmentID", id).Msg("Department deleted")
	return nil
}
