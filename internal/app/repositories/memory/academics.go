package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

type subjectRepository struct {
	db *Store
}

func (repo *subjectRepository) conflicts(departmentID int64, code string, excludeID int64) bool {
	for _, s := range repo.db.subjects {
		if s.ID != excludeID && s.DepartmentID == departmentID && s.Code == code {
			return true
		}
	}
	return false
}

func (repo *subjectRepository) Create(_ context.Context, subject *models.Subject) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.departments[subject.DepartmentID]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	if repo.conflicts(subject.DepartmentID, subject.Code, 0) {
		return apperrors.ErrSubjectAlreadyExists
	}
	subject.ID = repo.db.nextID()
	subject.CreatedAt = repo.db.now()
	stored := *subject
	repo.db.subjects[subject.ID] = &stored
	return nil
}

func (repo *subjectRepository) GetByID(_ context.Context, id int64) (*models.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		subject := *s
		return &subject, nil
	}
	return nil, apperrors.ErrSubjectNotFound
}

func (repo *subjectRepository) List(_ context.Context, filter repositories.SubjectFilter) ([]*models.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]*models.Subject, 0)
	for _, s := range repo.db.subjects {
		if !matches(filter.DepartmentID, s.DepartmentID) {
			continue
		}
		if filter.Year != nil && s.Year != *filter.Year {
			continue
		}
		if filter.Kind != nil && s.Kind != *filter.Kind {
			continue
		}
		subject := *s
		subjects = append(subjects, &subject)
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Year != subjects[j].Year {
			return subjects[i].Year < subjects[j].Year
		}
		return subjects[i].Code < subjects[j].Code
	})
	return subjects, nil
}

func (repo *subjectRepository) ExistsByCode(_ context.Context, departmentID int64, code string, excludeID int64) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.conflicts(departmentID, code, excludeID), nil
}

func (repo *subjectRepository) Update(_ context.Context, subject *models.Subject) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.subjects[subject.ID]
	if !ok {
		return apperrors.ErrSubjectNotFound
	}
	if repo.conflicts(orig.DepartmentID, subject.Code, subject.ID) {
		return apperrors.ErrSubjectAlreadyExists
	}
	orig.Code = subject.Code
	orig.Name = subject.Name
	orig.Year = subject.Year
	orig.Kind = subject.Kind
	return nil
}

func (repo *subjectRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	for _, a := range repo.db.allocations {
		if a.SubjectID == id {
			return apperrors.ErrSubjectHasRelations
		}
	}
	delete(repo.db.subjects, id)
	return nil
}

type studentRepository struct {
	db *Store
}

func (repo *studentRepository) checkUnique(student *models.Student) error {
	for _, s := range repo.db.students {
		if s.ID == student.ID {
			continue
		}
		if s.DivisionID == student.DivisionID && s.RollNumber == student.RollNumber {
			return apperrors.ErrRollNumberAlreadyExists
		}
		if s.EnrollmentNo == student.EnrollmentNo {
			return apperrors.ErrEnrollmentAlreadyExists
		}
	}
	return nil
}

func (repo *studentRepository) checkRefs(student *models.Student) error {
	if _, ok := repo.db.divisions[student.DivisionID]; !ok {
		return apperrors.ErrDivisionNotFound
	}
	if student.LabID != nil {
		if _, ok := repo.db.labs[*student.LabID]; !ok {
			return apperrors.ErrLabNotFound
		}
	}
	return nil
}

func (repo *studentRepository) Create(_ context.Context, student *models.Student) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkRefs(student); err != nil {
		return err
	}
	student.ID = 0
	if err := repo.checkUnique(student); err != nil {
		return err
	}
	student.ID = repo.db.nextID()
	student.CreatedAt = repo.db.now()
	stored := *student
	repo.db.students[student.ID] = &stored
	return nil
}

func (repo *studentRepository) GetByID(_ context.Context, id int64) (*models.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		student := *s
		return &student, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (repo *studentRepository) List(_ context.Context, filter repositories.StudentFilter) ([]*models.Student, int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	term := strings.ToLower(strings.TrimSpace(filter.Search))
	students := make([]*models.Student, 0)
	for _, s := range repo.db.students {
		if !matches(filter.DivisionID, s.DivisionID) {
			continue
		}
		if filter.LabID != nil && !s.InLab(*filter.LabID) {
			continue
		}
		if filter.ClassID != nil {
			dv, ok := repo.db.divisions[s.DivisionID]
			if !ok || dv.ClassID != *filter.ClassID {
				continue
			}
		}
		if !matches(filter.DepartmentID, repo.db.departmentOfDivision(s.DivisionID)) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(s.FirstName), term) &&
			!strings.Contains(strings.ToLower(s.LastName), term) &&
			!strings.Contains(strings.ToLower(s.EnrollmentNo), term) &&
			strconv.Itoa(s.RollNumber) != term {
			continue
		}
		student := *s
		students = append(students, &student)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].DivisionID != students[j].DivisionID {
			return students[i].DivisionID < students[j].DivisionID
		}
		return students[i].RollNumber < students[j].RollNumber
	})

	total := int64(len(students))
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(students) {
			return []*models.Student{}, total, nil
		}
		end := start + filter.PageSize
		if end > len(students) {
			end = len(students)
		}
		students = students[start:end]
	}
	return students, total, nil
}

func (repo *studentRepository) ExistsByRollNumber(_ context.Context, divisionID int64, roll int, excludeID int64) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.students {
		if s.ID != excludeID && s.DivisionID == divisionID && s.RollNumber == roll {
			return true, nil
		}
	}
	return false, nil
}

func (repo *studentRepository) ExistsByEnrollment(_ context.Context, enrollmentNo string, excludeID int64) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.students {
		if s.ID != excludeID && s.EnrollmentNo == enrollmentNo {
			return true, nil
		}
	}
	return false, nil
}

func (repo *studentRepository) Update(_ context.Context, student *models.Student) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.students[student.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if err := repo.checkRefs(student); err != nil {
		return err
	}
	if err := repo.checkUnique(student); err != nil {
		return err
	}
	createdAt := orig.CreatedAt
	*orig = *student
	orig.CreatedAt = createdAt
	return nil
}

func (repo *studentRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	for key := range repo.db.records {
		if key.studentID == id {
			return apperrors.ErrStudentHasAttendance
		}
	}
	delete(repo.db.students, id)
	return nil
}
