package services

import (
	"context"
	"fmt"
	"runtime"
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

const recentLectureCount = 5

// FeedCounter reports the number of open live feed connections
type FeedCounter interface {
	TotalClients() int
}

// RuntimeInfo describes the running process for the developer dashboard
type RuntimeInfo struct {
	Version   string
	Driver    string
	StartedAt time.Time
	PoolStats func() *dto.PoolStats
	Feed      FeedCounter
}

// DashboardService builds the landing page data of each role
type DashboardService struct {
	repos     *repositories.Repositories
	authz     *appauth.AuthorizationService
	threshold float64
	runtime   RuntimeInfo
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDashboardService creates a new dashboard service instance
func NewDashboardService(repos *repositories.Repositories, authz *appauth.AuthorizationService, threshold float64, info RuntimeInfo, logger zerolog.Logger) *DashboardService {
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now()
	}
	return &DashboardService{
		repos:     repos,
		authz:     authz,
		threshold: resolveThreshold(nil, threshold),
		runtime:   info,
		logger:    logger,
		now:       time.Now,
	}
}

// Faculty returns the allocations of the calling faculty member with their
// attendance statistics.
func (s *DashboardService) Faculty(ctx context.Context, p appauth.Principal) (*dto.FacultyDashboard, error) {
	if p.Role != models.RoleFaculty && p.Role != models.RoleHOD {
		return nil, apperrors.NewForbiddenError("only teaching staff have a faculty dashboard")
	}
	user, err := s.repos.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}

	facultyID := p.UserID
	allocations, err := s.repos.Allocations.List(ctx, repositories.AllocationFilter{FacultyID: &facultyID})
	if err != nil {
		return nil, fmt.Errorf("error loading allocations: %w", err)
	}
	described, err := describeAllocations(ctx, s.repos, allocations)
	if err != nil {
		return nil, err
	}

	dashboard := &dto.FacultyDashboard{
		User:           dto.NewUserResponse(user),
		Allocations:    make([]dto.FacultyAllocationStats, 0, len(allocations)),
		RecentLectures: make([]*models.Lecture, 0),
	}
	var overall attendance.Tally
	for i, a := range allocations {
		stats, tally, err := s.allocationStats(ctx, a)
		if err != nil {
			return nil, err
		}
		stats.AllocationResponse = *described[i]
		dashboard.Allocations = append(dashboard.Allocations, stats)
		dashboard.TotalLectures += stats.LecturesHeld
		dashboard.DefaulterCount += stats.DefaulterCount
		overall.Merge(tally)
	}
	dashboard.AveragePercent = overall.Percent

	lectures, err := s.repos.Lectures.List(ctx, repositories.LectureFilter{FacultyID: &facultyID})
	if err != nil {
		return nil, fmt.Errorf("error loading lectures: %w", err)
	}
	sort.SliceStable(lectures, func(i, j int) bool { return lectures[i].HeldAt.After(lectures[j].HeldAt) })
	if len(lectures) > recentLectureCount {
		lectures = lectures[:recentLectureCount]
	}
	dashboard.RecentLectures = append(dashboard.RecentLectures, lectures...)
	return dashboard, nil
}

// allocationStats computes one allocation's dashboard line and its attendance tally
func (s *DashboardService) allocationStats(ctx context.Context, a *models.Allocation) (dto.FacultyAllocationStats, attendance.Tally, error) {
	var stats dto.FacultyAllocationStats

	allocationID := a.ID
	lectures, err := s.repos.Lectures.List(ctx, repositories.LectureFilter{AllocationID: &allocationID})
	if err != nil {
		return stats, attendance.Tally{}, fmt.Errorf("error loading lectures: %w", err)
	}
	stats.LecturesHeld = len(lectures)
	for _, l := range lectures {
		if stats.LastLectureAt == nil || l.HeldAt.After(*stats.LastLectureAt) {
			held := l.HeldAt
			stats.LastLectureAt = &held
		}
	}

	roster, err := allocationRoster(ctx, s.repos.Students, a)
	if err != nil {
		return stats, attendance.Tally{}, err
	}
	stats.RosterSize = len(roster)

	facts, err := s.repos.Attendance.ListFacts(ctx, repositories.FactFilter{AllocationID: &allocationID})
	if err != nil {
		return stats, attendance.Tally{}, fmt.Errorf("error loading attendance: %w", err)
	}
	tally := attendance.Overall(facts)
	stats.AveragePercent = tally.Percent
	stats.DefaulterCount = attendance.CountDefaulters(facts, s.threshold)
	return stats, tally, nil
}

// HOD returns the statistics of a department. A nil departmentID means the
// principal's own department.
func (s *DashboardService) HOD(ctx context.Context, p appauth.Principal, departmentID *int64) (*dto.HODDashboard, error) {
	if departmentID == nil {
		if p.DepartmentID == nil {
			return nil, apperrors.NewBadRequestError("departmentId is required")
		}
		departmentID = p.DepartmentID
	}
	if p.Role == models.RoleFaculty {
		return nil, apperrors.NewForbiddenError("only department heads and admins can view department statistics")
	}
	if err := s.authz.CanRead(p, *departmentID); err != nil {
		return nil, err
	}
	department, err := s.repos.Departments.GetByID(ctx, *departmentID)
	if err != nil {
		return nil, err
	}

	counts, err := s.departmentCounts(ctx, department.ID)
	if err != nil {
		return nil, err
	}
	deptID := department.ID
	facts, err := s.repos.Attendance.ListFacts(ctx, repositories.FactFilter{DepartmentID: &deptID})
	if err != nil {
		return nil, fmt.Errorf("error loading attendance: %w", err)
	}

	dashboard := &dto.HODDashboard{
		Department:     department,
		Counts:         counts,
		OverallPercent: attendance.Overall(facts).Percent,
		DefaulterCount: attendance.CountDefaulters(facts, s.threshold),
		Threshold:      s.threshold,
		Classes:        make([]dto.ClassBreakdown, 0),
	}

	classes, err := s.repos.Classes.List(ctx, repositories.ClassFilter{DepartmentID: &deptID})
	if err != nil {
		return nil, fmt.Errorf("error loading classes: %w", err)
	}
	divisions, err := s.repos.Divisions.List(ctx, repositories.DivisionFilter{DepartmentID: &deptID})
	if err != nil {
		return nil, fmt.Errorf("error loading divisions: %w", err)
	}
	classOf := make(map[int64]int64, len(divisions))
	divisionsPerClass := make(map[int64]int)
	for _, d := range divisions {
		classOf[d.ID] = d.ClassID
		divisionsPerClass[d.ClassID]++
	}
	factsPerClass := make(map[int64][]models.AttendanceFact)
	for _, f := range facts {
		classID := classOf[f.DivisionID]
		factsPerClass[classID] = append(factsPerClass[classID], f)
	}

	for _, c := range classes {
		classID := c.ID
		students, err := countStudents(ctx, s.repos.Students, repositories.StudentFilter{ClassID: &classID})
		if err != nil {
			return nil, fmt.Errorf("error counting students: %w", err)
		}
		classFacts := factsPerClass[c.ID]
		dashboard.Classes = append(dashboard.Classes, dto.ClassBreakdown{
			ClassID:        c.ID,
			Name:           c.Name,
			Year:           c.Year,
			Divisions:      divisionsPerClass[c.ID],
			Students:       students,
			AveragePercent: attendance.Overall(classFacts).Percent,
			DefaulterCount: attendance.CountDefaulters(classFacts, s.threshold),
		})
	}
	return dashboard, nil
}

// Admin returns per-department counts and global totals
func (s *DashboardService) Admin(ctx context.Context, p appauth.Principal) (*dto.AdminDashboard, error) {
	if !p.IsGlobal() {
		return nil, appauth.ErrAdminOnly
	}

	departments, err := s.repos.Departments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading departments: %w", err)
	}
	users, err := s.repos.Users.List(ctx, repositories.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("error loading users: %w", err)
	}

	dashboard := &dto.AdminDashboard{
		Departments: make([]dto.DepartmentSummary, 0, len(departments)),
		Users:       len(users),
	}
	for _, d := range departments {
		counts, err := s.departmentCounts(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		summary := dto.DepartmentSummary{Department: d, Counts: counts}
		if d.HeadID != nil {
			head, err := s.repos.Users.GetByID(ctx, *d.HeadID)
			if err == nil {
				summary.Head = dto.NewUserResponse(head)
			} else {
				s.logger.Warn().Err(err).Int64("departmentID", d.ID).Msg("Department head not found")
			}
		}
		addCounts(&dashboard.Totals, counts)
		dashboard.Departments = append(dashboard.Departments, summary)
	}
	return dashboard, nil
}

// Developer returns runtime and storage diagnostics
func (s *DashboardService) Developer(ctx context.Context, p appauth.Principal) (*dto.DeveloperDashboard, error) {
	if !p.IsGlobal() {
		return nil, apperrors.NewForbiddenError("only developers and admins can view diagnostics")
	}

	departments, err := s.repos.Departments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading departments: %w", err)
	}
	users, err := s.repos.Users.List(ctx, repositories.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("error loading users: %w", err)
	}

	now := s.now()
	dashboard := &dto.DeveloperDashboard{
		Version:       s.runtime.Version,
		GoVersion:     runtime.Version(),
		StartedAt:     s.runtime.StartedAt.UTC(),
		UptimeSeconds: int64(now.Sub(s.runtime.StartedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		Driver:        s.runtime.Driver,
		Departments:   len(departments),
		Users:         len(users),
	}
	if s.runtime.PoolStats != nil {
		dashboard.Pool = s.runtime.PoolStats()
	}
	if s.runtime.Feed != nil {
		dashboard.FeedConnections = s.runtime.Feed.TotalClients()
	}
	for _, d := range departments {
		counts, err := s.departmentCounts(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		addCounts(&dashboard.Totals, counts)
	}
	return dashboard, nil
}

// departmentCounts counts the entities of one department
func (s *DashboardService) departmentCounts(ctx context.Context, departmentID int64) (dto.DepartmentCounts, error) {
	var counts dto.DepartmentCounts
	deptID := departmentID

	classes, err := s.repos.Classes.List(ctx, repositories.ClassFilter{DepartmentID: &deptID})
	if err != nil {
		return counts, fmt.Errorf("error counting classes: %w", err)
	}
	divisions, err := s.repos.Divisions.List(ctx, repositories.DivisionFilter{DepartmentID: &deptID})
	if err != nil {
		return counts, fmt.Errorf("error counting divisions: %w", err)
	}
	labs, err := s.repos.Labs.List(ctx, repositories.LabFilter{DepartmentID: &deptID})
	if err != nil {
		return counts, fmt.Errorf("error counting labs: %w", err)
	}
	subjects, err := s.repos.Subjects.List(ctx, repositories.SubjectFilter{DepartmentID: &deptID})
	if err != nil {
		return counts, fmt.Errorf("error counting subjects: %w", err)
	}
	staff, err := s.repos.Users.List(ctx, repositories.UserFilter{DepartmentID: &deptID})
	if err != nil {
		return counts, fmt.Errorf("error counting staff: %w", err)
	}
	students, err := countStudents(ctx, s.repos.Students, repositories.StudentFilter{DepartmentID: &deptID})
	if err != nil {
		return counts, fmt.Errorf("error counting students: %w", err)
	}
	lectures, err := s.repos.Lectures.List(ctx, repositories.LectureFilter{DepartmentID: &deptID})
	if err != nil {
		return counts, fmt.Errorf("error counting lectures: %w", err)
	}

	counts.Classes = len(classes)
	counts.Divisions = len(divisions)
	counts.Labs = len(labs)
	counts.Subjects = len(subjects)
	for _, u := range staff {
		if u.RoleType == models.RoleFaculty || u.RoleType == models.RoleHOD {
			counts.Faculty++
		}
	}
	counts.Students = students
	counts.Lectures = len(lectures)
	return counts, nil
}

func addCounts(total *dto.DepartmentCounts, c dto.DepartmentCounts) {
	total.Classes += c.Classes
	total.Divisions += c.Divisions
	total.Labs += c.Labs
	total.Subjects += c.Subjects
	total.Faculty += c.Faculty
	total.Students += c.Students
	total.Lectures += c.Lectures
}
