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

// SubjectService handles subject-related operations
type SubjectService struct {
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewSubjectService creates a new subject service instance
func NewSubjectService(repos *repositories.Repositories, authz *appauth.AuthorizationService, logger zerolog.Logger) *SubjectService {
	return &SubjectService{
		repos:  repos,
		authz:  authz,
		logger: logger,
	}
}

// Create adds a subject to a department; the code is unique per department
func (s *SubjectService) Create(ctx context.Context, p appauth.Principal, req *dto.CreateSubjectRequest) (*models.Subject, error) {
	if _, err := s.repos.Departments.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.authz.CanManage(p, req.DepartmentID); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		DepartmentID: req.DepartmentID,
		Code:         validation.NormalizeCode(req.Code),
		Name:         strings.TrimSpace(req.Name),
		Year:         req.Year,
		Kind:         req.Kind,
	}
	exists, err := s.repos.Subjects.ExistsByCode(ctx, subject.DepartmentID, subject.Code, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking subject code: %w", err)
	}
	if exists {
		return nil, apperrors.ErrSubjectAlreadyExists
	}

	if err := s.repos.Subjects.Create(ctx, subject); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("subjectID", subject.ID).Str("code", subject.Code).Msg("Subject created")
	return subject, nil
}

// Get returns a subject
func (s *SubjectService) Get(ctx context.Context, p appauth.Principal, id int64) (*models.Subject, error) {
	subject, err := s.repos.Subjects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanRead(p, subject.DepartmentID); err != nil {
		return nil, err
	}
	return subject, nil
}

// List returns subjects filtered by department, year and kind
func (s *SubjectService) List(ctx context.Context, p appauth.Principal, filter repositories.SubjectFilter) ([]*models.Subject, error) {
	departmentID, err := scopedDepartment(p, filter.DepartmentID)
	if err != nil {
		return nil, err
	}
	filter.DepartmentID = departmentID

	subjects, err := s.repos.Subjects.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	return subjects, nil
}

// Update changes a subject. The kind of a subject with allocations cannot
// change, since practical allocations point at labs.
func (s *SubjectService) Update(ctx context.Context, p appauth.Principal, id int64, req *dto.UpdateSubjectRequest) (*models.Subject, error) {
	subject, err := s.repos.Subjects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManage(p, subject.DepartmentID); err != nil {
		return nil, err
	}

	if req.Kind != subject.Kind || req.Year != subject.Year {
		subjectID := id
		allocations, err := s.repos.Allocations.List(ctx, repositories.AllocationFilter{SubjectID: &subjectID})
		if err != nil {
			return nil, fmt.Errorf("error checking allocations: %w", err)
		}
		if len(allocations) > 0 {
			return nil, apperrors.NewConflictError("kind and year of an allocated subject cannot change")
		}
	}

	code := validation.NormalizeCode(req.Code)
	exists, err := s.repos.Subjects.ExistsByCode(ctx, subject.DepartmentID, code, id)
	if err != nil {
		return nil, fmt.Errorf("error checking subject code: %w", err)
	}
	if exists {
		return nil, apperrors.ErrSubjectAlreadyExists
	}

	subject.Code = code
	subject.Name = strings.TrimSpace(req.Name)
	subject.Year = req.Year
	subject.Kind = req.Kind
	if err := s.repos.Subjects.Update(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// Delete removes a subject without allocations
func (s *SubjectService) Delete(ctx context.Context, p appauth.Principal, id int64) error {
	subject, err := s.repos.Subjects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.CanManage(p, subject.DepartmentID); err != nil {
		return err
	}
	if err := s.repos.Subjects.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("subjectID", id).Msg("Subject deleted")
	return nil
}
