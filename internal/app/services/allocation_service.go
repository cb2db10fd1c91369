package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

// AllocationService assigns faculty members to subjects and divisions
type AllocationService struct {
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewAllocationService creates a new allocation service instance
func NewAllocationService(repos *repositories.Repositories, authz *appauth.AuthorizationService, logger zerolog.Logger) *AllocationService {
	return &AllocationService{
		repos:  repos,
		authz:  authz,
		logger: logger,
	}
}

// Create allocates a subject of a division (or one of its labs) to a faculty member
func (s *AllocationService) Create(ctx context.Context, p appauth.Principal, req *dto.CreateAllocationRequest) (*dto.AllocationResponse, error) {
	subject, err := s.repos.Subjects.GetByID(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManage(p, subject.DepartmentID); err != nil {
		return nil, err
	}

	faculty, err := s.repos.Users.GetByID(ctx, req.FacultyID)
	if err != nil {
		return nil, err
	}
	if faculty.RoleType != models.RoleFaculty && faculty.RoleType != models.RoleHOD {
		return nil, apperrors.NewValidationError("only faculty members and department heads can be allocated")
	}
	if !faculty.IsActive {
		return nil, apperrors.NewValidationError("faculty account is disabled")
	}
	if !faculty.InDepartment(subject.DepartmentID) {
		return nil, apperrors.NewValidationError("faculty member belongs to another department")
	}

	division, err := s.repos.Divisions.GetByID(ctx, req.DivisionID)
	if err != nil {
		return nil, err
	}
	class, err := s.repos.Classes.GetByID(ctx, division.ClassID)
	if err != nil {
		return nil, err
	}
	if class.DepartmentID != subject.DepartmentID {
		return nil, apperrors.NewValidationError("division belongs to another department")
	}
	if class.Year != subject.Year {
		return nil, apperrors.NewValidationError(fmt.Sprintf("subject is taught in year %d, the class is year %d", subject.Year, class.Year))
	}

	if req.LabID != nil {
		if subject.Kind != models.SubjectPractical {
			return nil, apperrors.NewValidationError("only practical subjects can be allocated to a lab")
		}
		lab, err := s.repos.Labs.GetByID(ctx, *req.LabID)
		if err != nil {
			return nil, err
		}
		if lab.DivisionID != division.ID {
			return nil, apperrors.NewValidationError("lab does not belong to the division")
		}
	}

	exists, err := s.repos.Allocations.Exists(ctx, faculty.ID, subject.ID, division.ID, req.LabID)
	if err != nil {
		return nil, fmt.Errorf("error checking allocation: %w", err)
	}
	if exists {
		return nil, apperrors.ErrAllocationAlreadyExists
	}

	allocation := &models.Allocation{
		FacultyID:  faculty.ID,
		SubjectID:  subject.ID,
		DivisionID: division.ID,
		LabID:      req.LabID,
	}
	if err := s.repos.Allocations.Create(ctx, allocation); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("allocationID", allocation.ID).
		Int64("facultyID", faculty.ID).
		Int64("subjectID", subject.ID).
		Int64("divisionID", division.ID).
		Msg("Allocation created")
	return s.describe(ctx, allocation)
}

// Get returns an allocation with its display names
func (s *AllocationService) Get(ctx context.Context, p appauth.Principal, id int64) (*dto.AllocationResponse, error) {
	allocation, err := s.repos.Allocations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	departmentID, err := s.authz.DepartmentOfAllocation(ctx, allocation)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanRead(p, departmentID); err != nil {
		return nil, err
	}
	return s.describe(ctx, allocation)
}

// List returns allocations filtered by faculty, subject, division and department
func (s *AllocationService) List(ctx context.Context, p appauth.Principal, filter repositories.AllocationFilter) ([]*dto.AllocationResponse, error) {
	departmentID, err := scopedDepartment(p, filter.DepartmentID)
	if err != nil {
		return nil, err
	}
	filter.DepartmentID = departmentID

	allocations, err := s.repos.Allocations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing allocations: %w", err)
	}
	return describeAllocations(ctx, s.repos, allocations)
}

// Delete removes an allocation without lectures
func (s *AllocationService) Delete(ctx context.Context, p appauth.Principal, id int64) error {
	allocation, err := s.repos.Allocations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	departmentID, err := s.authz.DepartmentOfAllocation(ctx, allocation)
	if err != nil {
		return err
	}
	if err := s.authz.CanManage(p, departmentID); err != nil {
		return err
	}
	if err := s.repos.Allocations.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("allocationID", id).Msg("Allocation deleted")
	return nil
}

func (s *AllocationService) describe(ctx context.Context, allocation *models.Allocation) (*dto.AllocationResponse, error) {
	described, err := describeAllocations(ctx, s.repos, []*models.Allocation{allocation})
	if err != nil {
		return nil, err
	}
	return described[0], nil
}

// describeAllocations resolves the names shown next to each allocation, loading
// each referenced row once.
func describeAllocations(ctx context.Context, repos *repositories.Repositories, allocations []*models.Allocation) ([]*dto.AllocationResponse, error) {
	users := make(map[int64]*models.User)
	subjects := make(map[int64]*models.Subject)
	divisions := make(map[int64]*models.Division)
	classes := make(map[int64]*models.Class)
	labs := make(map[int64]*models.Lab)

	out := make([]*dto.AllocationResponse, 0, len(allocations))
	for _, a := range allocations {
		faculty, ok := users[a.FacultyID]
		if !ok {
			u, err := repos.Users.GetByID(ctx, a.FacultyID)
			if err != nil {
				return nil, err
			}
			faculty = u
			users[a.FacultyID] = u
		}
		subject, ok := subjects[a.SubjectID]
		if !ok {
			sub, err := repos.Subjects.GetByID(ctx, a.SubjectID)
			if err != nil {
				return nil, err
			}
			subject = sub
			subjects[a.SubjectID] = sub
		}
		division, ok := divisions[a.DivisionID]
		if !ok {
			d, err := repos.Divisions.GetByID(ctx, a.DivisionID)
			if err != nil {
				return nil, err
			}
			division = d
			divisions[a.DivisionID] = d
		}
		class, ok := classes[division.ClassID]
		if !ok {
			c, err := repos.Classes.GetByID(ctx, division.ClassID)
			if err != nil {
				return nil, err
			}
			class = c
			classes[division.ClassID] = c
		}

		resp := &dto.AllocationResponse{
			Allocation:   a,
			FacultyName:  faculty.FullName(),
			SubjectCode:  subject.Code,
			SubjectName:  subject.Name,
			SubjectKind:  subject.Kind,
			DivisionName: division.Name,
			ClassName:    class.Name,
		}
		if a.LabID != nil {
			lab, ok := labs[*a.LabID]
			if !ok {
				l, err := repos.Labs.GetByID(ctx, *a.LabID)
				if err != nil {
					return nil, err
				}
				lab = l
				labs[*a.LabID] = l
			}
			resp.LabName = lab.Name
		}
		out = append(out, resp)
	}
	return out, nil
}
