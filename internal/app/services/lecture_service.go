package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/domain/attendance"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/metrics"
	"github.com/attendly/attendly/internal/pkg/websocket"
)

// EventPublisher delivers live attendance events to feed subscribers
type EventPublisher interface {
	Publish(event *websocket.Event)
}

// LectureService handles lectures and attendance marking
type LectureService struct {
	repos     *repositories.Repositories
	authz     *appauth.AuthorizationService
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewLectureService creates a new lecture service instance. publisher and m may be nil.
func NewLectureService(
	repos *repositories.Repositories,
	authz *appauth.AuthorizationService,
	publisher EventPublisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *LectureService {
	return &LectureService{
		repos:     repos,
		authz:     authz,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// LectureListParams are the query parameters of a lecture listing
type LectureListParams struct {
	AllocationID *int64
	FacultyID    *int64
	DivisionID   *int64
	DepartmentID *int64
	From         *time.Time
	To           *time.Time
}

// Create records a conducted lecture for an allocation
func (s *LectureService) Create(ctx context.Context, p appauth.Principal, req *dto.CreateLectureRequest) (*models.Lecture, error) {
	allocation, err := s.repos.Allocations.GetByID(ctx, req.AllocationID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanConduct(ctx, p, allocation); err != nil {
		return nil, err
	}

	lecture := &models.Lecture{
		AllocationID: allocation.ID,
		HeldAt:       req.HeldAt.UTC(),
		Topic:        strings.TrimSpace(req.Topic),
		CreatedBy:    p.UserID,
	}
	if err := s.repos.Lectures.Create(ctx, lecture); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("lectureID", lecture.ID).Int64("allocationID", allocation.ID).Msg("Lecture created")
	return lecture, nil
}

// List returns lectures ordered by time. Faculty members only see their own.
func (s *LectureService) List(ctx context.Context, p appauth.Principal, params LectureListParams) ([]*models.Lecture, error) {
	filter := repositories.LectureFilter{
		AllocationID: params.AllocationID,
		FacultyID:    params.FacultyID,
		DivisionID:   params.DivisionID,
		DepartmentID: params.DepartmentID,
		From:         params.From,
		To:           params.To,
	}

	switch p.Role {
	case models.RoleFaculty:
		if params.FacultyID != nil && *params.FacultyID != p.UserID {
			return nil, apperrors.NewForbiddenError("faculty members can only list their own lectures")
		}
		own := p.UserID
		filter.FacultyID = &own
	default:
		departmentID, err := scopedDepartment(p, params.DepartmentID)
		if err != nil {
			return nil, err
		}
		filter.DepartmentID = departmentID
	}

	lectures, err := s.repos.Lectures.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing lectures: %w", err)
	}
	return lectures, nil
}

// lectureWithAllocation loads a lecture and its allocation
func (s *LectureService) lectureWithAllocation(ctx context.Context, id int64) (*models.Lecture, *models.Allocation, error) {
	lecture, err := s.repos.Lectures.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	allocation, err := s.repos.Allocations.GetByID(ctx, lecture.AllocationID)
	if err != nil {
		return nil, nil, err
	}
	return lecture, allocation, nil
}

// Get returns a lecture
func (s *LectureService) Get(ctx context.Context, p appauth.Principal, id int64) (*models.Lecture, error) {
	lecture, allocation, err := s.lectureWithAllocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanViewAllocation(ctx, p, allocation); err != nil {
		return nil, err
	}
	return lecture, nil
}

// Delete removes a lecture together with its attendance records
func (s *LectureService) Delete(ctx context.Context, p appauth.Principal, id int64) error {
	_, allocation, err := s.lectureWithAllocation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.CanConduct(ctx, p, allocation); err != nil {
		return err
	}
	if err := s.repos.Lectures.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("lectureID", id).Msg("Lecture deleted")
	return nil
}

// Roster returns the students an allocation is taught to, in roll order: the
// whole division, or only the allocation's lab when it has one.
func (s *LectureService) Roster(ctx context.Context, allocation *models.Allocation) ([]*models.Student, error) {
	return allocationRoster(ctx, s.repos.Students, allocation)
}

func allocationRoster(ctx context.Context, store repositories.StudentStore, allocation *models.Allocation) ([]*models.Student, error) {
	divisionID := allocation.DivisionID
	filter := repositories.StudentFilter{DivisionID: &divisionID}
	if allocation.LabID != nil {
		labID := *allocation.LabID
		filter.LabID = &labID
	}
	students, err := listStudents(ctx, store, filter)
	if err != nil {
		return nil, fmt.Errorf("error loading roster: %w", err)
	}
	sortStudentsByRoll(students)
	return students, nil
}

// MarkAttendance records the attendance of every roster student for a lecture.
// In PRESENT mode the listed students are present and the rest absent; ABSENT
// mode is the inverse. Marking again replaces the previous sheet.
func (s *LectureService) MarkAttendance(ctx context.Context, p appauth.Principal, lectureID int64, req *dto.MarkAttendanceRequest) (*dto.LectureAttendanceResponse, error) {
	lecture, allocation, err := s.lectureWithAllocation(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanConduct(ctx, p, allocation); err != nil {
		return nil, err
	}

	var listedStatus, otherStatus models.AttendanceStatus
	switch req.Mode {
	case models.StatusPresent:
		listedStatus, otherStatus = models.StatusPresent, models.StatusAbsent
	case models.StatusAbsent:
		listedStatus, otherStatus = models.StatusAbsent, models.StatusPresent
	default:
		return nil, apperrors.NewValidationError("mode must be PRESENT or ABSENT")
	}

	roster, err := s.Roster(ctx, allocation)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, apperrors.NewValidationError("the allocation has no students to mark")
	}
	onRoster := make(map[int64]bool, len(roster))
	for _, st := range roster {
		onRoster[st.ID] = true
	}

	listed := make(map[int64]bool, len(req.StudentIDs))
	var outside []string
	for _, id := range uniqueIDs(req.StudentIDs) {
		if !onRoster[id] {
			outside = append(outside, fmt.Sprint(id))
			continue
		}
		listed[id] = true
	}
	if len(outside) > 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "students are not on the lecture roster: "+strings.Join(outside, ", ")).
			WithDetails(map[string]interface{}{"studentIds": outside})
	}

	now := time.Now().UTC()
	records := make([]models.AttendanceRecord, 0, len(roster))
	present, absent := 0, 0
	for _, st := range roster {
		status := otherStatus
		if listed[st.ID] {
			status = listedStatus
		}
		if status == models.StatusPresent {
			present++
		} else {
			absent++
		}
		records = append(records, models.AttendanceRecord{
			LectureID: lecture.ID,
			StudentID: st.ID,
			Status:    status,
			MarkedAt:  now,
		})
	}

	if err := s.repos.Attendance.ReplaceForLecture(ctx, lecture.ID, records); err != nil {
		return nil, fmt.Errorf("error saving attendance: %w", err)
	}
	s.metrics.AddMarks(present, absent)

	s.logger.Info().
		Int64("lectureID", lecture.ID).
		Int64("markedBy", p.UserID).
		Int("present", present).
		Int("absent", absent).
		Msg("Attendance marked")

	s.publish(ctx, lecture, allocation, present, absent)
	return buildAttendanceSheet(lecture, roster, records), nil
}

func (s *LectureService) publish(ctx context.Context, lecture *models.Lecture, allocation *models.Allocation, present, absent int) {
	if s.publisher == nil {
		return
	}
	departmentID, err := s.authz.DepartmentOfAllocation(ctx, allocation)
	if err != nil {
		s.logger.Warn().Err(err).Int64("lectureID", lecture.ID).Msg("Could not resolve department for attendance event")
		return
	}
	s.publisher.Publish(&websocket.Event{
		Type:         websocket.EventAttendanceMarked,
		DepartmentID: departmentID,
		LectureID:    lecture.ID,
		DivisionID:   allocation.DivisionID,
		SubjectID:    allocation.SubjectID,
		Present:      present,
		Absent:       absent,
	})
}

// LectureAttendance returns the attendance sheet of a lecture
func (s *LectureService) LectureAttendance(ctx context.Context, p appauth.Principal, lectureID int64) (*dto.LectureAttendanceResponse, error) {
	lecture, allocation, err := s.lectureWithAllocation(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanViewAllocation(ctx, p, allocation); err != nil {
		return nil, err
	}

	records, err := s.repos.Attendance.ListByLecture(ctx, lecture.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading attendance: %w", err)
	}
	roster, err := s.Roster(ctx, allocation)
	if err != nil {
		return nil, err
	}

	// Students who left the roster after marking keep their records.
	known := make(map[int64]bool, len(roster))
	for _, st := range roster {
		known[st.ID] = true
	}
	for _, r := range records {
		if known[r.StudentID] {
			continue
		}
		st, err := s.repos.Students.GetByID(ctx, r.StudentID)
		if err != nil {
			return nil, err
		}
		known[st.ID] = true
		roster = append(roster, st)
	}

	return buildAttendanceSheet(lecture, roster, records), nil
}

// buildAttendanceSheet joins records with student details, ordered by roll number
func buildAttendanceSheet(lecture *models.Lecture, students []*models.Student, records []models.AttendanceRecord) *dto.LectureAttendanceResponse {
	byID := make(map[int64]*models.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	entries := make([]dto.AttendanceEntry, 0, len(records))
	for _, r := range records {
		entry := dto.AttendanceEntry{
			StudentID: r.StudentID,
			Status:    r.Status,
			MarkedAt:  r.MarkedAt,
		}
		if st, ok := byID[r.StudentID]; ok {
			entry.RollNumber = st.RollNumber
			entry.EnrollmentNo = st.EnrollmentNo
			entry.Name = st.FullName()
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RollNumber != entries[j].RollNumber {
			return entries[i].RollNumber < entries[j].RollNumber
		}
		return entries[i].StudentID < entries[j].StudentID
	})

	return &dto.LectureAttendanceResponse{
		Lecture: lecture,
		Entries: entries,
		Summary: attendance.SummarizeRecords(lecture.ID, records),
	}
}
