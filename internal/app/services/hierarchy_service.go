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
)

// HierarchyService manages classes, their divisions and the labs of each division
type HierarchyService struct {
	repos  *repositories.Repositories
	authz  *appauth.AuthorizationService
	logger zerolog.Logger
}

// NewHierarchyService creates a new HierarchyService
func NewHierarchyService(repos *repositories.Repositories, authz *appauth.AuthorizationService, logger zerolog.Logger) *HierarchyService {
	return &HierarchyService{
		repos:  repos,
		authz:  authz,
		logger: logger,
	}
}

// checkStaff verifies that an optional class teacher or lab in-charge is an
// active faculty member or HOD of the department.
func (s *HierarchyService) checkStaff(ctx context.Context, userID *int64, departmentID int64, what string) error {
	if userID == nil {
		return nil
	}
	user, err := s.repos.Users.GetByID(ctx, *userID)
	if err != nil {
		return err
	}
	if user.RoleType != models.RoleFaculty && user.RoleType != models.RoleHOD {
		return apperrors.NewValidationError(what + " must be a faculty member")
	}
	if !user.InDepartment(departmentID) {
		return apperrors.NewValidationError(what + " must belong to the department")
	}
	if !user.IsActive {
		return apperrors.NewValidationError(what + " account is disabled")
	}
	return nil
}

// CreateClass creates a class; (department, name, year) is unique
func (s *HierarchyService) CreateClass(ctx context.Context, p appauth.Principal, req *dto.CreateClassRequest) (*models.Class, error) {
	if _, err := s.repos.Departments.GetByID(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.authz.CanManage(p, req.DepartmentID); err != nil {
		return nil, err
	}

	class := &models.Class{
		DepartmentID: req.DepartmentID,
		Name:         strings.TrimSpace(req.Name),
		Year:         req.Year,
	}
	exists, err := s.repos.Classes.ExistsByNameAndYear(ctx, class.DepartmentID, class.Name, class.Year, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking class: %w", err)
	}
	if exists {
		return nil, apperrors.ErrClassAlreadyExists
	}

	if err := s.repos.Classes.Create(ctx, class); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("classID", class.ID).Int64("departmentID", class.DepartmentID).Msg("Class created")
	return class, nil
}

// GetClass returns a class
func (s *HierarchyService) GetClass(ctx context.Context, p appauth.Principal, id int64) (*models.Class, error) {
	class, err := s.repos.Classes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanRead(p, class.DepartmentID); err != nil {
		return nil, err
	}
	return class, nil
}

// ListClasses lists classes, limited to the principal's department when scoped
func (s *HierarchyService) ListClasses(ctx context.Context, p appauth.Principal, departmentID *int64, year *int) ([]*models.Class, error) {
	departmentID, err := scopedDepartment(p, departmentID)
	if err != nil {
		return nil, err
	}
	classes, err := s.repos.Classes.List(ctx, repositories.ClassFilter{DepartmentID: departmentID, Year: year})
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	return classes, nil
}

// UpdateClass renames a class or changes its year
func (s *HierarchyService) UpdateClass(ctx context.Context, p appauth.Principal, id int64, req *dto.UpdateClassRequest) (*models.Class, error) {
	class, err := s.repos.Classes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManage(p, class.DepartmentID); err != nil {
		return nil, err
	}

	class.Name = strings.TrimSpace(req.Name)
	class.Year = req.Year
	exists, err := s.repos.Classes.ExistsByNameAndYear(ctx, class.DepartmentID, class.Name, class.Year, id)
	if err != nil {
		return nil, fmt.Errorf("error checking class: %w", err)
	}
	if exists {
		return nil, apperrors.ErrClassAlreadyExists
	}
	if err := s.repos.Classes.Update(ctx, class); err != nil {
		return nil, err
	}
	return class, nil
}

// DeleteClass removes a class without divisions
func (s *HierarchyService) DeleteClass(ctx context.Context, p appauth.Principal, id int64) error {
	class, err := s.repos.Classes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.CanManage(p, class.DepartmentID); err != nil {
		return err
	}
	if err := s.repos.Classes.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("classID", id).Msg("Class deleted")
	return nil
}

// CreateDivision creates a division inside a class
func (s *HierarchyService) CreateDivision(ctx context.Context, p appauth.Principal, req *dto.CreateDivisionRequest) (*models.Division, error) {
	class, err := s.repos.Classes.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManage(p, class.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, req.ClassTeacherID, class.DepartmentID, "class teacher"); err != nil {
		return nil, err
	}

	division := &models.Division{
		ClassID:        class.ID,
		Name:           strings.TrimSpace(req.Name),
		ClassTeacherID: req.ClassTeacherID,
	}
	exists, err := s.repos.Divisions.ExistsByName(ctx, class.ID, division.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking division: %w", err)
	}
	if exists {
		return nil, apperrors.ErrDivisionAlreadyExists
	}

	if err := s.repos.Divisions.Create(ctx, division); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("divisionID", division.ID).Int64("classID", class.ID).Msg("Division created")
	return division, nil
}

// GetDivision returns a division
func (s *HierarchyService) GetDivision(ctx context.Context, p appauth.Principal, id int64) (*models.Division, error) {
	division, err := s.repos.Divisions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	departmentID, err := s.authz.DepartmentOfClass(ctx, division.ClassID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanRead(p, departmentID); err != nil {
		return nil, err
	}
	return division, nil
}

// ListDivisions lists divisions by class or department
func (s *HierarchyService) ListDivisions(ctx context.Context, p appauth.Principal, classID, departmentID *int64) ([]*models.Division, error) {
	departmentID, err := scopedDepartment(p, departmentID)
	if err != nil {
		return nil, err
	}
	divisions, err := s.repos.Divisions.List(ctx, repositories.DivisionFilter{ClassID: classID, DepartmentID: departmentID})
	if err != nil {
		return nil, fmt.Errorf("error listing divisions: %w", err)
	}
	return divisions, nil
}

// UpdateDivision renames a division or changes its class teacher
func (s *HierarchyService) UpdateDivision(ctx context.Context, p appauth.Principal, id int64, req *dto.UpdateDivisionRequest) (*models.Division, error) {
	division, err := s.repos.Divisions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	departmentID, err := s.authz.DepartmentOfClass(ctx, division.ClassID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManage(p, departmentID); err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, req.ClassTeacherID, departmentID, "class teacher"); err != nil {
		return nil, err
	}

	division.Name = strings.TrimSpace(req.Name)
	division.ClassTeacherID = req.ClassTeacherID
	exists, err := s.repos.Divisions.ExistsByName(ctx, division.ClassID, division.Name, id)
	if err != nil {
		return nil, fmt.Errorf("error checking division: %w", err)
	}
	if exists {
		return nil, apperrors.ErrDivisionAlreadyExists
	}
	if err := s.repos.Divisions.Update(ctx, division); err != nil {
		return nil, err
	}
	return division, nil
}

// DeleteDivision removes a division without students, labs or allocations
func (s *HierarchyService) DeleteDivision(ctx context.Context, p appauth.Principal, id int64) error {
	departmentID, err := s.authz.DepartmentOfDivision(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.CanManage(p, departmentID); err != nil {
		return err
	}
	if err := s.repos.Divisions.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("divisionID", id).Msg("Division deleted")
	return nil
}

// CreateLab creates a practical batch inside a division
func (s *HierarchyService) CreateLab(ctx context.Context, p appauth.Principal, req *dto.CreateLabRequest) (*models.Lab, error) {
	departmentID, err := s.authz.DepartmentOfDivision(ctx, req.DivisionID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManage(p, departmentID); err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, req.InChargeID, departmentID, "lab in-charge"); err != nil {
		return nil, err
	}

	lab := &models.Lab{
		DivisionID: req.DivisionID,
		Name:       strings.TrimSpace(req.Name),
		InChargeID: req.InChargeID,
	}
	exists, err := s.repos.Labs.ExistsByName(ctx, lab.DivisionID, lab.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking lab: %w", err)
	}
	if exists {
		return nil, apperrors.ErrLabAlreadyExists
	}

	if err := s.repos.Labs.Create(ctx, lab); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("labID", lab.ID).Int64("divisionID", lab.DivisionID).Msg("Lab created")
	return lab, nil
}

// GetLab returns a lab
func (s *HierarchyService) GetLab(ctx context.Context, p appauth.Principal, id int64) (*models.Lab, error) {
	lab, err := s.repos.Labs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	departmentID, err := s.authz.DepartmentOfDivision(ctx, lab.DivisionID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanRead(p, departmentID); err != nil {
		return nil, err
	}
	return lab, nil
}

// ListLabs lists labs by division, class or department
func (s *HierarchyService) ListLabs(ctx context.Context, p appauth.Principal, filter repositories.LabFilter) ([]*models.Lab, error) {
	departmentID, err := scopedDepartment(p, filter.DepartmentID)
	if err != nil {
		return nil, err
	}
	filter.DepartmentID = departmentID
	labs, err := s.repos.Labs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing labs: %w", err)
	}
	return labs, nil
}

// UpdateLab renames a lab or changes its in-charge
func (s *HierarchyService) UpdateLab(ctx context.Context, p appauth.Principal, id int64, req *dto.UpdateLabRequest) (*models.Lab, error) {
	lab, err := s.repos.Labs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	departmentID, err := s.authz.DepartmentOfDivision(ctx, lab.DivisionID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanManage(p, departmentID); err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, req.InChargeID, departmentID, "lab in-charge"); err != nil {
		return nil, err
	}

	lab.Name = strings.TrimSpace(req.Name)
	lab.InChargeID = req.InChargeID
	exists, err := s.repos.Labs.ExistsByName(ctx, lab.DivisionID, lab.Name, id)
	if err != nil {
		return nil, fmt.Errorf("error checking lab: %w", err)
	}
	if exists {
		return nil, apperrors.ErrLabAlreadyExists
	}
	if err := s.repos.Labs.Update(ctx, lab); err != nil {
		return nil, err
	}
	return lab, nil
}

// DeleteLab removes a lab without students or allocations
func (s *HierarchyService) DeleteLab(ctx context.Context, p appauth.Principal, id int64) error {
	departmentID, err := s.authz.DepartmentOfLab(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.CanManage(p, departmentID); err != nil {
		return err
	}
	if err := s.repos.Labs.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("labID", id).Msg("Lab deleted")
	return nil
}

// Hierarchy returns a class with its divisions, labs and student counts
func (s *HierarchyService) Hierarchy(ctx context.Context, p appauth.Principal, classID int64) (*dto.ClassHierarchy, error) {
	class, err := s.GetClass(ctx, p, classID)
	if err != nil {
		return nil, err
	}
	return s.buildHierarchy(ctx, class)
}

func (s *HierarchyService) buildHierarchy(ctx context.Context, class *models.Class) (*dto.ClassHierarchy, error) {
	classID := class.ID
	divisions, err := s.repos.Divisions.List(ctx, repositories.DivisionFilter{ClassID: &classID})
	if err != nil {
		return nil, fmt.Errorf("error listing divisions: %w", err)
	}
	labs, err := s.repos.Labs.List(ctx, repositories.LabFilter{ClassID: &classID})
	if err != nil {
		return nil, fmt.Errorf("error listing labs: %w", err)
	}
	students, err := listStudents(ctx, s.repos.Students, repositories.StudentFilter{ClassID: &classID})
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}

	perDivision := make(map[int64]int64)
	perLab := make(map[int64]int64)
	for _, st := range students {
		perDivision[st.DivisionID]++
		if st.LabID != nil {
			perLab[*st.LabID]++
		}
	}

	tree := &dto.ClassHierarchy{
		Class:        class,
		StudentCount: int64(len(students)),
		Divisions:    make([]*dto.DivisionNode, 0, len(divisions)),
	}
	for _, d := range divisions {
		node := &dto.DivisionNode{Division: d, StudentCount: perDivision[d.ID], Labs: make([]*dto.LabNode, 0)}
		for _, l := range labs {
			if l.DivisionID == d.ID {
				node.Labs = append(node.Labs, &dto.LabNode{Lab: l, StudentCount: perLab[l.ID]})
			}
		}
		tree.Divisions = append(tree.Divisions, node)
	}
	return tree, nil
}

// DepartmentTree returns every class hierarchy of a department
func (s *HierarchyService) DepartmentTree(ctx context.Context, p appauth.Principal, departmentID int64) (*dto.DepartmentTree, error) {
	department, err := s.repos.Departments.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanRead(p, departmentID); err != nil {
		return nil, err
	}

	classes, err := s.repos.Classes.List(ctx, repositories.ClassFilter{DepartmentID: &departmentID})
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}

	tree := &dto.DepartmentTree{Department: department, Classes: make([]*dto.ClassHierarchy, 0, len(classes))}
	for _, c := range classes {
		h, err := s.buildHierarchy(ctx, c)
		if err != nil {
			return nil, err
		}
		tree.Classes = append(tree.Classes, h)
	}
	return tree, nil
}
