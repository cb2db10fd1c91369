package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/domain/attendance"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

// ReportService builds attendance reports from stored marks
type ReportService struct {
	repos     *repositories.Repositories
	authz     *appauth.AuthorizationService
	threshold float64
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReportService creates a new report service. threshold is the configured
// defaulter threshold used when a request does not override it.
func NewReportService(repos *repositories.Repositories, authz *appauth.AuthorizationService, threshold float64, logger zerolog.Logger) *ReportService {
	return &ReportService{
		repos:     repos,
		authz:     authz,
		threshold: threshold,
		logger:    logger,
		now:       time.Now,
	}
}

// Threshold returns the configured defaulter threshold
func (s *ReportService) Threshold() float64 {
	return resolveThreshold(nil, s.threshold)
}

// DivisionReport returns one row per student of the division, in roll order,
// with a column per subject taught to the division. from is inclusive and to
// exclusive; both are optional.
func (s *ReportService) DivisionReport(ctx context.Context, p appauth.Principal, divisionID int64, q dto.ReportQuery, from, to *time.Time) (*dto.DivisionReport, error) {
	if err := s.authz.CanViewDivisionReport(ctx, p, divisionID); err != nil {
		return nil, err
	}
	division, err := s.repos.Divisions.GetByID(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	class, err := s.repos.Classes.GetByID(ctx, division.ClassID)
	if err != nil {
		return nil, err
	}
	threshold := resolveThreshold(q.Threshold, s.threshold)

	subjects, err := s.divisionSubjects(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	if q.SubjectID != nil {
		subjects = filterSubjects(subjects, *q.SubjectID)
		if len(subjects) == 0 {
			return nil, apperrors.NewValidationError("subject is not taught to this division")
		}
	}

	roster, err := listStudents(ctx, s.repos.Students, repositories.StudentFilter{DivisionID: &divisionID})
	if err != nil {
		return nil, fmt.Errorf("error loading students: %w", err)
	}
	sortStudentsByRoll(roster)

	facts, err := s.repos.Attendance.ListFacts(ctx, repositories.FactFilter{
		DivisionID: &divisionID,
		SubjectID:  q.SubjectID,
		From:       from,
		To:         to,
	})
	if err != nil {
		return nil, fmt.Errorf("error loading attendance: %w", err)
	}

	studentIDs := make([]int64, 0, len(roster))
	onRoster := make(map[int64]bool, len(roster))
	for _, st := range roster {
		studentIDs = append(studentIDs, st.ID)
		onRoster[st.ID] = true
	}
	facts = filterFacts(facts, func(f models.AttendanceFact) bool { return onRoster[f.StudentID] })

	columns := reportSubjects(subjects, facts)
	summaries := attendance.SummarizeStudents(facts, studentIDs, threshold)

	report := &dto.DivisionReport{
		DivisionID:   division.ID,
		DivisionName: division.Name,
		ClassName:    class.Name,
		Year:         class.Year,
		Threshold:    threshold,
		From:         from,
		To:           inclusiveTo(to),
		Subjects:     columns,
		Rows:         make([]dto.ReportRow, 0, len(roster)),
		Overall:      attendance.Overall(facts),
		GeneratedAt:  s.now().UTC(),
	}
	for i, st := range roster {
		summary := summaries[i]
		row := dto.ReportRow{
			StudentID:    st.ID,
			RollNumber:   st.RollNumber,
			EnrollmentNo: st.EnrollmentNo,
			Name:         st.FullName(),
			LabID:        st.LabID,
			Subjects:     alignStats(columns, summary.Subjects),
			Overall:      summary.Overall,
			Defaulter:    summary.Defaulter,
		}
		if row.Defaulter {
			report.DefaulterCount++
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// StudentReport returns a student's attendance per subject
func (s *ReportService) StudentReport(ctx context.Context, p appauth.Principal, studentID int64, q dto.ReportQuery, from, to *time.Time) (*dto.StudentReport, error) {
	student, err := s.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanViewDivisionReport(ctx, p, student.DivisionID); err != nil {
		return nil, err
	}
	threshold := resolveThreshold(q.Threshold, s.threshold)

	subjects, err := s.divisionSubjects(ctx, student.DivisionID)
	if err != nil {
		return nil, err
	}
	facts, err := s.repos.Attendance.ListFacts(ctx, repositories.FactFilter{
		StudentID: &studentID,
		SubjectID: q.SubjectID,
		From:      from,
		To:        to,
	})
	if err != nil {
		return nil, fmt.Errorf("error loading attendance: %w", err)
	}

	// Subjects from a previous division still show up when they have marks.
	known := make(map[int64]bool, len(subjects))
	for _, sub := range subjects {
		known[sub.ID] = true
	}
	for _, f := range facts {
		if known[f.SubjectID] {
			continue
		}
		sub, err := s.repos.Subjects.GetByID(ctx, f.SubjectID)
		if err != nil {
			return nil, err
		}
		known[sub.ID] = true
		subjects = append(subjects, sub)
	}
	sortSubjects(subjects)
	if q.SubjectID != nil {
		subjects = filterSubjects(subjects, *q.SubjectID)
	}

	columns := reportSubjects(subjects, facts)
	summary := attendance.SummarizeStudents(facts, []int64{studentID}, threshold)[0]

	return &dto.StudentReport{
		Student:   student,
		Threshold: threshold,
		Subjects:  columns,
		Stats:     alignStats(columns, summary.Subjects),
		Overall:   summary.Overall,
		Defaulter: summary.Defaulter,
	}, nil
}

// divisionSubjects returns the subjects allocated to a division ordered by code
func (s *ReportService) divisionSubjects(ctx context.Context, divisionID int64) ([]*models.Subject, error) {
	allocations, err := s.repos.Allocations.List(ctx, repositories.AllocationFilter{DivisionID: &divisionID})
	if err != nil {
		return nil, fmt.Errorf("error loading allocations: %w", err)
	}

	seen := make(map[int64]bool)
	subjects := make([]*models.Subject, 0)
	for _, a := range allocations {
		if seen[a.SubjectID] {
			continue
		}
		seen[a.SubjectID] = true
		subject, err := s.repos.Subjects.GetByID(ctx, a.SubjectID)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	sortSubjects(subjects)
	return subjects, nil
}

func sortSubjects(subjects []*models.Subject) {
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].Code != subjects[j].Code {
			return subjects[i].Code < subjects[j].Code
		}
		return subjects[i].ID < subjects[j].ID
	})
}

func filterSubjects(subjects []*models.Subject, subjectID int64) []*models.Subject {
	for _, sub := range subjects {
		if sub.ID == subjectID {
			return []*models.Subject{sub}
		}
	}
	return nil
}

func filterFacts(facts []models.AttendanceFact, keep func(models.AttendanceFact) bool) []models.AttendanceFact {
	out := facts[:0:0]
	for _, f := range facts {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// reportSubjects builds the subject columns with the number of distinct
// lectures recorded for each.
func reportSubjects(subjects []*models.Subject, facts []models.AttendanceFact) []dto.ReportSubject {
	lectures := make(map[int64]map[int64]bool)
	for _, f := range facts {
		if lectures[f.SubjectID] == nil {
			lectures[f.SubjectID] = make(map[int64]bool)
		}
		lectures[f.SubjectID][f.LectureID] = true
	}

	columns := make([]dto.ReportSubject, 0, len(subjects))
	for _, sub := range subjects {
		columns = append(columns, dto.ReportSubject{
			ID:       sub.ID,
			Code:     sub.Code,
			Name:     sub.Name,
			Kind:     sub.Kind,
			Lectures: len(lectures[sub.ID]),
		})
	}
	return columns
}

// alignStats orders stats like the columns, with zero stats for subjects
// without marks.
func alignStats(columns []dto.ReportSubject, stats []attendance.SubjectStat) []attendance.SubjectStat {
	bySubject := make(map[int64]attendance.SubjectStat, len(stats))
	for _, st := range stats {
		bySubject[st.SubjectID] = st
	}
	out := make([]attendance.SubjectStat, 0, len(columns))
	for _, col := range columns {
		st, ok := bySubject[col.ID]
		if !ok {
			st = attendance.SubjectStat{SubjectID: col.ID}
		}
		out = append(out, st)
	}
	return out
}

// inclusiveTo converts the exclusive upper bound back to the last included day
func inclusiveTo(to *time.Time) *time.Time {
	if to == nil {
		return nil
	}
	day := to.AddDate(0, 0, -1)
	return &day
}
