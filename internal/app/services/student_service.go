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
	"github.com/attendly/attendly/internal/pkg/helpers"
	"github.com/attendly/attendly/internal/pkg/validation"
)

// StudentService handles student-related operations
type StudentService struct {
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewStudentService creates a new student service instance
func NewStudentService(repos *repositories.Repositories, authz *appauth.AuthorizationService, logger zerolog.Logger) *StudentService {
	return &StudentService{
		repos:  repos,
		authz:  authz,
		logger: logger,
	}
}

// StudentListParams are the query parameters of a student listing
type StudentListParams struct {
	DivisionID   *int64
	LabID        *int64
	ClassID      *int64
	DepartmentID *int64
	Search       string
	Page         int
	PageSize     int
}

// buildStudent checks the input against the division and the uniqueness rules
// and returns the student to store. excludeID is the id of the student being
// updated, 0 on create.
func (s *StudentService) buildStudent(ctx context.Context, divisionID int64, in *dto.StudentInput, excludeID int64) (*models.Student, error) {
	if in.LabID != nil {
		lab, err := s.repos.Labs.GetByID(ctx, *in.LabID)
		if err != nil {
			return nil, err
		}
		if lab.DivisionID != divisionID {
			return nil, apperrors.ErrLabOutsideStudentDivision
		}
	}

	student := &models.Student{
		DivisionID:   divisionID,
		LabID:        in.LabID,
		RollNumber:   in.RollNumber,
		EnrollmentNo: strings.ToUpper(strings.TrimSpace(in.EnrollmentNo)),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}
	if in.Email != nil {
		if email := strings.ToLower(strings.TrimSpace(*in.Email)); email != "" {
			student.Email = &email
		}
	}

	exists, err := s.repos.Students.ExistsByRollNumber(ctx, divisionID, student.RollNumber, excludeID)
	if err != nil {
		return nil, fmt.Errorf("error checking roll number: %w", err)
	}
	if exists {
		return nil, apperrors.ErrRollNumberAlreadyExists
	}
	exists, err = s.repos.Students.ExistsByEnrollment(ctx, student.EnrollmentNo, excludeID)
	if err != nil {
		return nil, fmt.Errorf("error checking enrollment number: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEnrollmentAlreadyExists
	}
	return student, nil
}

func (s *StudentService) manageDivision(ctx context.Context, p appauth.Principal, divisionID int64) error {
	departmentID, err := s.authz.DepartmentOfDivision(ctx, divisionID)
	if err != nil {
		return err
	}
	return s.authz.CanManage(p, departmentID)
}

// Create adds a student to a division
func (s *StudentService) Create(ctx context.Context, p appauth.Principal, req *dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.manageDivision(ctx, p, req.DivisionID); err != nil {
		return nil, err
	}

	student, err := s.buildStudent(ctx, req.DivisionID, &req.StudentInput, 0)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Students.Create(ctx, student); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("studentID", student.ID).Int64("divisionID", student.DivisionID).Msg("Student created")
	return student, nil
}

// Get returns a student
func (s *StudentService) Get(ctx context.Context, p appauth.Principal, id int64) (*models.Student, error) {
	student, err := s.repos.Students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	departmentID, err := s.authz.DepartmentOfDivision(ctx, student.DivisionID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanRead(p, departmentID); err != nil {
		return nil, err
	}
	return student, nil
}

// List returns one page of students ordered by division and roll number
func (s *StudentService) List(ctx context.Context, p appauth.Principal, params StudentListParams) (*dto.StudentListResponse, error) {
	departmentID, err := scopedDepartment(p, params.DepartmentID)
	if err != nil {
		return nil, err
	}

	filter := repositories.StudentFilter{
		DivisionID:   params.DivisionID,
		LabID:        params.LabID,
		ClassID:      params.ClassID,
		DepartmentID: departmentID,
		Search:       strings.TrimSpace(params.Search),
		Page:         params.Page,
		PageSize:     params.PageSize,
	}
	students, total, err := s.repos.Students.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}

	return &dto.StudentListResponse{
		Students:   students,
		Pagination: helpers.NewPaginationInfo(total, params.Page, params.PageSize),
	}, nil
}

// Update changes a student's details; the student may move to another division
func (s *StudentService) Update(ctx context.Context, p appauth.Principal, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	current, err := s.repos.Students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.manageDivision(ctx, p, current.DivisionID); err != nil {
		return nil, err
	}
	if req.DivisionID != current.DivisionID {
		if err := s.manageDivision(ctx, p, req.DivisionID); err != nil {
			return nil, err
		}
	}

	student, err := s.buildStudent(ctx, req.DivisionID, &req.StudentInput, id)
	if err != nil {
		return nil, err
	}
	student.ID = id
	student.CreatedAt = current.CreatedAt
	if err := s.repos.Students.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Delete removes a student without attendance records
func (s *StudentService) Delete(ctx context.Context, p appauth.Principal, id int64) error {
	student, err := s.repos.Students.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.manageDivision(ctx, p, student.DivisionID); err != nil {
		return err
	}
	if err := s.repos.Students.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

// BulkImport creates the listed students in one division. Each row is
// validated and stored on its own; rejected rows are reported with their
// 1-based position and do not stop the import.
func (s *StudentService) BulkImport(ctx context.Context, p appauth.Principal, req *dto.BulkImportRequest) (*dto.BulkImportResult, error) {
	if err := s.manageDivision(ctx, p, req.DivisionID); err != nil {
		return nil, err
	}

	result := &dto.BulkImportResult{
		Created: make([]*models.Student, 0, len(req.Students)),
		Errors:  make([]dto.BulkRowError, 0),
	}
	for i := range req.Students {
		in := &req.Students[i]
		rowErr := func(err error) {
			result.Errors = append(result.Errors, dto.BulkRowError{
				Row:          i + 1,
				EnrollmentNo: strings.TrimSpace(in.EnrollmentNo),
				Message:      validation.Summary(err),
			})
		}

		if err := validation.ValidateStruct(in); err != nil {
			rowErr(err)
			continue
		}
		student, err := s.buildStudent(ctx, req.DivisionID, in, 0)
		if err != nil {
			rowErr(err)
			continue
		}
		if err := s.repos.Students.Create(ctx, student); err != nil {
			rowErr(err)
			continue
		}
		result.Created = append(result.Created, student)
	}

	s.logger.Info().
		Int64("divisionID", req.DivisionID).
		Int("created", len(result.Created)).
		Int("rejected", len(result.Errors)).
		Msg("Students imported")
	return result, nil
}
