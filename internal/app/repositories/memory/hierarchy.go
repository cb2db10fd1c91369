package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

type departmentRepository struct {
	db *Store
}

func (repo *departmentRepository) conflicts(name, code string, excludeID int64) bool {
	for _, d := range repo.db.departments {
		if d.ID != excludeID && (strings.EqualFold(d.Name, name) || d.Code == code) {
			return true
		}
	}
	return false
}

func (repo *departmentRepository) Create(_ context.Context, department *models.Department) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.conflicts(department.Name, department.Code, 0) {
		return apperrors.ErrDepartmentAlreadyExists
	}
	department.ID = repo.db.nextID()
	department.CreatedAt = repo.db.now()
	department.HeadID = nil
	stored := *department
	stored.Head = nil
	repo.db.departments[department.ID] = &stored
	return nil
}

func (repo *departmentRepository) GetByID(_ context.Context, id int64) (*models.Department, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if d, ok := repo.db.departments[id]; ok {
		dept := *d
		return &dept, nil
	}
	return nil, apperrors.ErrDepartmentNotFound
}

func (repo *departmentRepository) List(_ context.Context) ([]*models.Department, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	departments := make([]*models.Department, 0, len(repo.db.departments))
	for _, d := range repo.db.departments {
		dept := *d
		departments = append(departments, &dept)
	}
	sort.Slice(departments, func(i, j int) bool { return departments[i].Name < departments[j].Name })
	return departments, nil
}

func (repo *departmentRepository) ExistsByNameOrCode(_ context.Context, name, code string, excludeID int64) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.conflicts(name, code, excludeID), nil
}

func (repo *departmentRepository) Update(_ context.Context, department *models.Department) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.departments[department.ID]
	if !ok {
		return apperrors.ErrDepartmentNotFound
	}
	if repo.conflicts(department.Name, department.Code, department.ID) {
		return apperrors.ErrDepartmentAlreadyExists
	}
	orig.Name = department.Name
	orig.Code = department.Code
	return nil
}

func (repo *departmentRepository) SetHead(_ context.Context, departmentID int64, headID *int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	d, ok := repo.db.departments[departmentID]
	if !ok {
		return apperrors.ErrDepartmentNotFound
	}
	if headID != nil {
		if _, ok := repo.db.users[*headID]; !ok {
			return apperrors.ErrUserNotFound
		}
		id := *headID
		headID = &id
	}
	d.HeadID = headID
	return nil
}

func (repo *departmentRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.departments[id]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	for _, u := range repo.db.users {
		if u.InDepartment(id) {
			return apperrors.ErrDepartmentHasRelations
		}
	}
	for _, c := range repo.db.classes {
		if c.DepartmentID == id {
			return apperrors.ErrDepartmentHasRelations
		}
	}
	for _, s := range repo.db.subjects {
		if s.DepartmentID == id {
			return apperrors.ErrDepartmentHasRelations
		}
	}
	delete(repo.db.departments, id)
	return nil
}

type classRepository struct {
	db *Store
}

func (repo *classRepository) conflicts(departmentID int64, name string, year int, excludeID int64) bool {
	for _, c := range repo.db.classes {
		if c.ID != excludeID && c.DepartmentID == departmentID && c.Year == year && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (repo *classRepository) Create(_ context.Context, class *models.Class) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.departments[class.DepartmentID]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	if repo.conflicts(class.DepartmentID, class.Name, class.Year, 0) {
		return apperrors.ErrClassAlreadyExists
	}
	class.ID = repo.db.nextID()
	class.CreatedAt = repo.db.now()
	stored := *class
	repo.db.classes[class.ID] = &stored
	return nil
}

func (repo *classRepository) GetByID(_ context.Context, id int64) (*models.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		class := *c
		return &class, nil
	}
	return nil, apperrors.ErrClassNotFound
}

func (repo *classRepository) List(_ context.Context, filter repositories.ClassFilter) ([]*models.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]*models.Class, 0)
	for _, c := range repo.db.classes {
		if !matches(filter.DepartmentID, c.DepartmentID) {
			continue
		}
		if filter.Year != nil && c.Year != *filter.Year {
			continue
		}
		class := *c
		classes = append(classes, &class)
	}
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Year != classes[j].Year {
			return classes[i].Year < classes[j].Year
		}
		return classes[i].Name < classes[j].Name
	})
	return classes, nil
}

func (repo *classRepository) ExistsByNameAndYear(_ context.Context, departmentID int64, name string, year int, excludeID int64) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.conflicts(departmentID, name, year, excludeID), nil
}

func (repo *classRepository) Update(_ context.Context, class *models.Class) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.classes[class.ID]
	if !ok {
		return apperrors.ErrClassNotFound
	}
	if repo.conflicts(orig.DepartmentID, class.Name, class.Year, class.ID) {
		return apperrors.ErrClassAlreadyExists
	}
	orig.Name = class.Name
	orig.Year = class.Year
	return nil
}

func (repo *classRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return apperrors.ErrClassNotFound
	}
	for _, dv := range repo.db.divisions {
		if dv.ClassID == id {
			return apperrors.ErrClassHasRelations
		}
	}
	delete(repo.db.classes, id)
	return nil
}

type divisionRepository struct {
	db *Store
}

func (repo *divisionRepository) conflicts(classID int64, name string, excludeID int64) bool {
	for _, dv := range repo.db.divisions {
		if dv.ID != excludeID && dv.ClassID == classID && strings.EqualFold(dv.Name, name) {
			return true
		}
	}
	return false
}

func (repo *divisionRepository) Create(_ context.Context, division *models.Division) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[division.ClassID]; !ok {
		return apperrors.ErrClassNotFound
	}
	if repo.conflicts(division.ClassID, division.Name, 0) {
		return apperrors.ErrDivisionAlreadyExists
	}
	division.ID = repo.db.nextID()
	division.CreatedAt = repo.db.now()
	stored := *division
	repo.db.divisions[division.ID] = &stored
	return nil
}

func (repo *divisionRepository) GetByID(_ context.Context, id int64) (*models.Division, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if dv, ok := repo.db.divisions[id]; ok {
		division := *dv
		return &division, nil
	}
	return nil, apperrors.ErrDivisionNotFound
}

func (repo *divisionRepository) List(_ context.Context, filter repositories.DivisionFilter) ([]*models.Division, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	divisions := make([]*models.Division, 0)
	for _, dv := range repo.db.divisions {
		if !matches(filter.ClassID, dv.ClassID) || !matches(filter.DepartmentID, repo.db.departmentOfDivision(dv.ID)) {
			continue
		}
		division := *dv
		divisions = append(divisions, &division)
	}
	sort.Slice(divisions, func(i, j int) bool {
		if divisions[i].ClassID != divisions[j].ClassID {
			ci, cj := repo.db.classes[divisions[i].ClassID], repo.db.classes[divisions[j].ClassID]
			if ci.Year != cj.Year {
				return ci.Year < cj.Year
			}
			return ci.Name < cj.Name
		}
		return divisions[i].Name < divisions[j].Name
	})
	return divisions, nil
}

func (repo *divisionRepository) ExistsByName(_ context.Context, classID int64, name string, excludeID int64) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.conflicts(classID, name, excludeID), nil
}

func (repo *divisionRepository) Update(_ context.Context, division *models.Division) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.divisions[division.ID]
	if !ok {
		return apperrors.ErrDivisionNotFound
	}
	if repo.conflicts(orig.ClassID, division.Name, division.ID) {
		return apperrors.ErrDivisionAlreadyExists
	}
	orig.Name = division.Name
	orig.ClassTeacherID = division.ClassTeacherID
	return nil
}

func (repo *divisionRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.divisions[id]; !ok {
		return apperrors.ErrDivisionNotFound
	}
	for _, s := range repo.db.students {
		if s.DivisionID == id {
			return apperrors.ErrDivisionHasRelations
		}
	}
	for _, l := range repo.db.labs {
		if l.DivisionID == id {
			return apperrors.ErrDivisionHasRelations
		}
	}
	for _, a := range repo.db.allocations {
		if a.DivisionID == id {
			return apperrors.ErrDivisionHasRelations
		}
	}
	delete(repo.db.divisions, id)
	return nil
}

type labRepository struct {
	db *Store
}

func (repo *labRepository) conflicts(divisionID int64, name string, excludeID int64) bool {
	for _, l := range repo.db.labs {
		if l.ID != excludeID && l.DivisionID == divisionID && strings.EqualFold(l.Name, name) {
			return true
		}
	}
	return false
}

func (repo *labRepository) Create(_ context.Context, lab *models.Lab) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.divisions[lab.DivisionID]; !ok {
		return apperrors.ErrDivisionNotFound
	}
	if repo.conflicts(lab.DivisionID, lab.Name, 0) {
		return apperrors.ErrLabAlreadyExists
	}
	lab.ID = repo.db.nextID()
	lab.CreatedAt = repo.db.now()
	stored := *lab
	repo.db.labs[lab.ID] = &stored
	return nil
}

func (repo *labRepository) GetByID(_ context.Context, id int64) (*models.Lab, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if l, ok := repo.db.labs[id]; ok {
		lab := *l
		return &lab, nil
	}
	return nil, apperrors.ErrLabNotFound
}

func (repo *labRepository) List(_ context.Context, filter repositories.LabFilter) ([]*models.Lab, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	labs := make([]*models.Lab, 0)
	for _, l := range repo.db.labs {
		if !matches(filter.DivisionID, l.DivisionID) {
			continue
		}
		if filter.ClassID != nil {
			dv, ok := repo.db.divisions[l.DivisionID]
			if !ok || dv.ClassID != *filter.ClassID {
				continue
			}
		}
		if !matches(filter.DepartmentID, repo.db.departmentOfDivision(l.DivisionID)) {
			continue
		}
		lab := *l
		labs = append(labs, &lab)
	}
	sort.Slice(labs, func(i, j int) bool {
		if labs[i].DivisionID != labs[j].DivisionID {
			return labs[i].DivisionID < labs[j].DivisionID
		}
		return labs[i].Name < labs[j].Name
	})
	return labs, nil
}

func (repo *labRepository) ExistsByName(_ context.Context, divisionID int64, name string, excludeID int64) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.conflicts(divisionID, name, excludeID), nil
}

func (repo *labRepository) Update(_ context.Context, lab *models.Lab) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.labs[lab.ID]
	if !ok {
		return apperrors.ErrLabNotFound
	}
	if repo.conflicts(orig.DivisionID, lab.Name, lab.ID) {
		return apperrors.ErrLabAlreadyExists
	}
	orig.Name = lab.Name
	orig.InChargeID = lab.InChargeID
	return nil
}

func (repo *labRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.labs[id]; !ok {
		return apperrors.ErrLabNotFound
	}
	for _, s := range repo.db.students {
		if s.InLab(id) {
			return apperrors.ErrLabHasRelations
		}
	}
	for _, a := range repo.db.allocations {
		if a.LabID != nil && *a.LabID == id {
			return apperrors.ErrLabHasRelations
		}
	}
	delete(repo.db.labs, id)
	return nil
}
