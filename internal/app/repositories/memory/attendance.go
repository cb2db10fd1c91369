package memory

import (
	"context"
	"sort"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

type allocationRepository struct {
	db *Store
}

func (repo *allocationRepository) exists(facultyID, subjectID, divisionID int64, labID *int64) bool {
	for _, a := range repo.db.allocations {
		if a.FacultyID == facultyID && a.SubjectID == subjectID && a.DivisionID == divisionID && sameOptional(a.LabID, labID) {
			return true
		}
	}
	return false
}

func (repo *allocationRepository) Create(_ context.Context, allocation *models.Allocation) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[allocation.FacultyID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if _, ok := repo.db.subjects[allocation.SubjectID]; !ok {
		return apperrors.ErrSubjectNotFound
	}
	if _, ok := repo.db.divisions[allocation.DivisionID]; !ok {
		return apperrors.ErrDivisionNotFound
	}
	if allocation.LabID != nil {
		if _, ok := repo.db.labs[*allocation.LabID]; !ok {
			return apperrors.ErrLabNotFound
		}
	}
	if repo.exists(allocation.FacultyID, allocation.SubjectID, allocation.DivisionID, allocation.LabID) {
		return apperrors.ErrAllocationAlreadyExists
	}
	allocation.ID = repo.db.nextID()
	allocation.CreatedAt = repo.db.now()
	stored := *allocation
	repo.db.allocations[allocation.ID] = &stored
	return nil
}

func (repo *allocationRepository) GetByID(_ context.Context, id int64) (*models.Allocation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.allocations[id]; ok {
		allocation := *a
		return &allocation, nil
	}
	return nil, apperrors.ErrAllocationNotFound
}

func (repo *allocationRepository) List(_ context.Context, filter repositories.AllocationFilter) ([]*models.Allocation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	allocations := make([]*models.Allocation, 0)
	for _, a := range repo.db.allocations {
		if !matches(filter.FacultyID, a.FacultyID) || !matches(filter.SubjectID, a.SubjectID) || !matches(filter.DivisionID, a.DivisionID) {
			continue
		}
		if filter.DepartmentID != nil {
			s, ok := repo.db.subjects[a.SubjectID]
			if !ok || s.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		allocation := *a
		allocations = append(allocations, &allocation)
	}
	sort.Slice(allocations, func(i, j int) bool { return allocations[i].ID < allocations[j].ID })
	return allocations, nil
}

func (repo *allocationRepository) Exists(_ context.Context, facultyID, subjectID, divisionID int64, labID *int64) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.exists(facultyID, subjectID, divisionID, labID), nil
}

func (repo *allocationRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.allocations[id]; !ok {
		return apperrors.ErrAllocationNotFound
	}
	for _, l := range repo.db.lectures {
		if l.AllocationID == id {
			return apperrors.ErrAllocationHasLectures
		}
	}
	delete(repo.db.allocations, id)
	return nil
}

type lectureRepository struct {
	db *Store
}

func (repo *lectureRepository) Create(_ context.Context, lecture *models.Lecture) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.allocations[lecture.AllocationID]; !ok {
		return apperrors.ErrAllocationNotFound
	}
	lecture.ID = repo.db.nextID()
	lecture.CreatedAt = repo.db.now()
	stored := *lecture
	repo.db.lectures[lecture.ID] = &stored
	return nil
}

func (repo *lectureRepository) GetByID(_ context.Context, id int64) (*models.Lecture, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if l, ok := repo.db.lectures[id]; ok {
		lecture := *l
		return &lecture, nil
	}
	return nil, apperrors.ErrLectureNotFound
}

func (repo *lectureRepository) List(_ context.Context, filter repositories.LectureFilter) ([]*models.Lecture, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lectures := make([]*models.Lecture, 0)
	for _, l := range repo.db.lectures {
		a, ok := repo.db.allocations[l.AllocationID]
		if !ok {
			continue
		}
		if !matches(filter.AllocationID, l.AllocationID) || !matches(filter.FacultyID, a.FacultyID) || !matches(filter.DivisionID, a.DivisionID) {
			continue
		}
		if filter.DepartmentID != nil {
			s, ok := repo.db.subjects[a.SubjectID]
			if !ok || s.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		if !inRange(l.HeldAt, filter.From, filter.To) {
			continue
		}
		lecture := *l
		lectures = append(lectures, &lecture)
	}
	sort.Slice(lectures, func(i, j int) bool {
		if !lectures[i].HeldAt.Equal(lectures[j].HeldAt) {
			return lectures[i].HeldAt.After(lectures[j].HeldAt)
		}
		return lectures[i].ID > lectures[j].ID
	})
	return lectures, nil
}

func (repo *lectureRepository) Delete(_ context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lectures[id]; !ok {
		return apperrors.ErrLectureNotFound
	}
	for key := range repo.db.records {
		if key.lectureID == id {
			delete(repo.db.records, key)
		}
	}
	delete(repo.db.lectures, id)
	return nil
}

type attendanceRepository struct {
	db *Store
}

func (repo *attendanceRepository) ReplaceForLecture(_ context.Context, lectureID int64, records []models.AttendanceRecord) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lectures[lectureID]; !ok {
		return apperrors.ErrLectureNotFound
	}
	for _, rec := range records {
		if _, ok := repo.db.students[rec.StudentID]; !ok {
			return apperrors.ErrStudentNotFound
		}
	}

	for key := range repo.db.records {
		if key.lectureID == lectureID {
			delete(repo.db.records, key)
		}
	}
	now := repo.db.now()
	for _, rec := range records {
		rec.LectureID = lectureID
		if rec.MarkedAt.IsZero() {
			rec.MarkedAt = now
		}
		repo.db.records[recordKey{lectureID: lectureID, studentID: rec.StudentID}] = rec
	}
	return nil
}

func (repo *attendanceRepository) ListByLecture(_ context.Context, lectureID int64) ([]models.AttendanceRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]models.AttendanceRecord, 0)
	for key, rec := range repo.db.records {
		if key.lectureID == lectureID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].StudentID < records[j].StudentID })
	return records, nil
}

func (repo *attendanceRepository) ListFacts(_ context.Context, filter repositories.FactFilter) ([]models.AttendanceFact, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	facts := make([]models.AttendanceFact, 0)
	for key, rec := range repo.db.records {
		l, ok := repo.db.lectures[key.lectureID]
		if !ok {
			continue
		}
		a, ok := repo.db.allocations[l.AllocationID]
		if !ok {
			continue
		}
		if !matches(filter.DivisionID, a.DivisionID) || !matches(filter.SubjectID, a.SubjectID) ||
			!matches(filter.StudentID, key.studentID) || !matches(filter.AllocationID, a.ID) ||
			!matches(filter.FacultyID, a.FacultyID) {
			continue
		}
		if filter.DepartmentID != nil {
			s, ok := repo.db.subjects[a.SubjectID]
			if !ok || s.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		if !inRange(l.HeldAt, filter.From, filter.To) {
			continue
		}
		facts = append(facts, models.AttendanceFact{
			LectureID:    l.ID,
			StudentID:    key.studentID,
			SubjectID:    a.SubjectID,
			AllocationID: a.ID,
			DivisionID:   a.DivisionID,
			HeldAt:       l.HeldAt,
			Status:       rec.Status,
		})
	}
	sort.Slice(facts, func(i, j int) bool {
		if !facts[i].HeldAt.Equal(facts[j].HeldAt) {
			return facts[i].HeldAt.Before(facts[j].HeldAt)
		}
		if facts[i].LectureID != facts[j].LectureID {
			return facts[i].LectureID < facts[j].LectureID
		}
		return facts[i].StudentID < facts[j].StudentID
	})
	return facts, nil
}

func (repo *attendanceRepository) CountByStudent(_ context.Context, studentID int64) (int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int64
	for key := range repo.db.records {
		if key.studentID == studentID {
			count++
		}
	}
	return count, nil
}
