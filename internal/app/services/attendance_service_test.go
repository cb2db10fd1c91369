package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/websocket"
)

func day(n int) time.Time {
	return time.Date(2024, 8, n, 9, 0, 0, 0, time.UTC)
}

func (env *testEnv) markAbsent(t *testing.T, lecture *models.Lecture, rolls ...int) *dto.LectureAttendanceResponse {
	t.Helper()
	ids := make([]int64, 0, len(rolls))
	for _, r := range rolls {
		ids = append(ids, env.byRoll(r).ID)
	}
	resp, err := env.svc.Lectures.MarkAttendance(env.ctx, env.lecturer, lecture.ID, &dto.MarkAttendanceRequest{Mode: models.StatusAbsent, StudentIDs: ids})
	require.NoError(t, err)
	return resp
}

// attendanceScenario gives the faculty member four theory lectures and one lab
// session. Roll 1 attends 1/4 theory lectures, roll 2 attends 3/4 and roll 6
// misses the only lab session of A1.
type attendanceScenario struct {
	theoryAlloc    *models.Allocation
	practicalAlloc *models.Allocation
	theory         []*models.Lecture
	lab            *models.Lecture
}

func newAttendanceScenario(t *testing.T, env *testEnv) *attendanceScenario {
	t.Helper()
	sc := &attendanceScenario{
		theoryAlloc:    env.allocate(t, env.faculty, env.theory, nil),
		practicalAlloc: env.allocate(t, env.faculty, env.practical, &env.labA1.ID),
	}
	for i := 0; i < 4; i++ {
		sc.theory = append(sc.theory, env.lecture(t, sc.theoryAlloc, day(5+i)))
	}
	sc.lab = env.lecture(t, sc.practicalAlloc, day(6))

	env.markAbsent(t, sc.theory[0], 1)
	env.markAbsent(t, sc.theory[1], 1, 2)
	env.markAbsent(t, sc.theory[2], 1)
	env.markAbsent(t, sc.theory[3])
	env.markAbsent(t, sc.lab, 6)
	return sc
}

func TestMarkAttendanceModes(t *testing.T) {
	env := newTestEnv(t)
	alloc := env.allocate(t, env.faculty, env.theory, nil)
	lecture := env.lecture(t, alloc, day(1))

	sheet := env.markAbsent(t, lecture, 1)
	assert.Equal(t, 5, sheet.Summary.Present)
	assert.Equal(t, 1, sheet.Summary.Absent)
	require.Len(t, sheet.Entries, 6)
	assert.Equal(t, 1, sheet.Entries[0].RollNumber)
	assert.Equal(t, models.StatusAbsent, sheet.Entries[0].Status)
	assert.Equal(t, "Farhan", sheet.Entries[0].Name)

	event := env.events.last()
	require.NotNil(t, event)
	assert.Equal(t, websocket.EventAttendanceMarked, event.Type)
	assert.Equal(t, env.dept.ID, event.DepartmentID)
	assert.Equal(t, lecture.ID, event.LectureID)
	assert.Equal(t, env.division.ID, event.DivisionID)
	assert.Equal(t, 5, event.Present)

	// Marking again replaces the sheet; duplicates are ignored.
	r1, r2 := env.byRoll(1).ID, env.byRoll(2).ID
	sheet, err := env.svc.Lectures.MarkAttendance(env.ctx, env.hod, lecture.ID, &dto.MarkAttendanceRequest{
		Mode: models.StatusPresent, StudentIDs: []int64{r1, r2, r2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sheet.Summary.Present)
	assert.Equal(t, 4, sheet.Summary.Absent)

	stored, err := env.svc.Lectures.LectureAttendance(env.ctx, env.lecturer, lecture.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.Summary.Total)
	assert.Equal(t, 2, stored.Summary.Present)
	assert.InDelta(t, 33.33, stored.Summary.Percent, 0.001)
}

func TestMarkAttendanceRejections(t *testing.T) {
	env := newTestEnv(t)
	lab := env.allocate(t, env.faculty, env.practical, &env.labA1.ID)
	lecture := env.lecture(t, lab, day(2))

	t.Run("student outside the lab roster", func(t *testing.T) {
		_, err := env.svc.Lectures.MarkAttendance(env.ctx, env.lecturer, lecture.ID, &dto.MarkAttendanceRequest{
			Mode: models.StatusAbsent, StudentIDs: []int64{env.byRoll(1).ID},
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("not the allocated faculty", func(t *testing.T) {
		_, err := env.svc.Lectures.MarkAttendance(env.ctx, env.peer, lecture.ID, &dto.MarkAttendanceRequest{Mode: models.StatusAbsent})
		assert.ErrorIs(t, err, appauth.ErrNotAllocationOwner)
	})

	t.Run("developer is read-only", func(t *testing.T) {
		_, err := env.svc.Lectures.MarkAttendance(env.ctx, env.developer, lecture.ID, &dto.MarkAttendanceRequest{Mode: models.StatusAbsent})
		assert.ErrorIs(t, err, appauth.ErrReadOnlyRole)
	})

	t.Run("lab roster only", func(t *testing.T) {
		sheet := env.markAbsent(t, lecture)
		assert.Equal(t, 3, sheet.Summary.Total)
		assert.Equal(t, 3, sheet.Summary.Present)
	})
}

func TestLectureVisibility(t *testing.T) {
	env := newTestEnv(t)
	sc := newAttendanceScenario(t, env)

	lectures, err := env.svc.Lectures.List(env.ctx, env.lecturer, LectureListParams{})
	require.NoError(t, err)
	assert.Len(t, lectures, 5)

	lectures, err = env.svc.Lectures.List(env.ctx, env.peer, LectureListParams{})
	require.NoError(t, err)
	assert.Empty(t, lectures)

	_, err = env.svc.Lectures.List(env.ctx, env.peer, LectureListParams{FacultyID: &env.faculty.ID})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	from, to := day(6), day(8)
	lectures, err = env.svc.Lectures.List(env.ctx, env.hod, LectureListParams{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, lectures, 3)

	_, err = env.svc.Lectures.LectureAttendance(env.ctx, env.peer, sc.theory[0].ID)
	assert.ErrorIs(t, err, appauth.ErrNotAllocationOwner)

	require.NoError(t, env.svc.Lectures.Delete(env.ctx, env.lecturer, sc.lab.ID))
	_, err = env.svc.Lectures.Get(env.ctx, env.lecturer, sc.lab.ID)
	assert.ErrorIs(t, err, apperrors.ErrLectureNotFound)
}

func TestDivisionReport(t *testing.T) {
	env := newTestEnv(t)
	newAttendanceScenario(t, env)

	report, err := env.svc.Reports.DivisionReport(env.ctx, env.lecturer, env.division.ID, dto.ReportQuery{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 75.0, report.Threshold)
	require.Len(t, report.Subjects, 2)
	assert.Equal(t, "CE201", report.Subjects[0].Code)
	assert.Equal(t, 4, report.Subjects[0].Lectures)
	assert.Equal(t, 1, report.Subjects[1].Lectures)

	require.Len(t, report.Rows, 6)
	for i, row := range report.Rows {
		assert.Equal(t, i+1, row.RollNumber)
		assert.Len(t, row.Subjects, 2)
	}

	roll1 := report.Rows[0]
	assert.Equal(t, 1, roll1.Overall.Attended)
	assert.Equal(t, 4, roll1.Overall.Total)
	assert.True(t, roll1.Defaulter)
	assert.Zero(t, roll1.Subjects[1].Total)

	roll2 := report.Rows[1]
	assert.Equal(t, 75.0, roll2.Overall.Percent)
	assert.False(t, roll2.Defaulter, "a student exactly at the threshold is not a defaulter")

	roll6 := report.Rows[5]
	assert.Equal(t, 80.0, roll6.Overall.Percent)
	assert.True(t, roll6.Subjects[1].Defaulter)
	assert.False(t, roll6.Defaulter)

	assert.Equal(t, 1, report.DefaulterCount)
	require.Len(t, report.Defaulters(), 1)
	assert.Equal(t, 27, report.Overall.Total)

	t.Run("threshold override", func(t *testing.T) {
		threshold := 80.0
		report, err := env.svc.Reports.DivisionReport(env.ctx, env.hod, env.division.ID, dto.ReportQuery{Threshold: &threshold}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, report.DefaulterCount)
	})

	t.Run("subject filter", func(t *testing.T) {
		report, err := env.svc.Reports.DivisionReport(env.ctx, env.hod, env.division.ID, dto.ReportQuery{SubjectID: &env.practical.ID}, nil, nil)
		require.NoError(t, err)
		require.Len(t, report.Subjects, 1)
		assert.Equal(t, 1, report.DefaulterCount)
		assert.True(t, report.Rows[5].Defaulter)
		assert.False(t, report.Rows[0].Defaulter)
	})

	t.Run("subject not taught to the division", func(t *testing.T) {
		other := &models.Subject{DepartmentID: env.dept.ID, Code: "CE205", Name: "Economics", Year: 2, Kind: models.SubjectTheory}
		require.NoError(t, env.repos.Subjects.Create(env.ctx, other))
		_, err := env.svc.Reports.DivisionReport(env.ctx, env.hod, env.division.ID, dto.ReportQuery{SubjectID: &other.ID}, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("date range", func(t *testing.T) {
		from := day(7)
		report, err := env.svc.Reports.DivisionReport(env.ctx, env.hod, env.division.ID, dto.ReportQuery{}, &from, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Rows[0].Overall.Total)
		assert.Equal(t, 50.0, report.Rows[0].Overall.Percent)
	})

	t.Run("faculty without an allocation in the division", func(t *testing.T) {
		_, err := env.svc.Reports.DivisionReport(env.ctx, env.peer, env.division.ID, dto.ReportQuery{}, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})
}

func TestStudentReport(t *testing.T) {
	env := newTestEnv(t)
	newAttendanceScenario(t, env)

	report, err := env.svc.Reports.StudentReport(env.ctx, env.lecturer, env.byRoll(1).ID, dto.ReportQuery{}, nil, nil)
	require.NoError(t, err)
	require.Len(t, report.Subjects, 2)
	require.Len(t, report.Stats, 2)
	assert.Equal(t, 25.0, report.Stats[0].Percent)
	assert.True(t, report.Stats[0].Defaulter)
	assert.Zero(t, report.Stats[1].Total)
	assert.True(t, report.Defaulter)

	_, err = env.svc.Reports.StudentReport(env.ctx, env.hod, env.byRoll(1).ID, dto.ReportQuery{}, nil, nil)
	assert.NoError(t, err)

	// Same department, but no allocation in the student's division
	_, err = env.svc.Reports.StudentReport(env.ctx, env.peer, env.byRoll(1).ID, dto.ReportQuery{}, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	foreign := appauth.Principal{UserID: 500, Role: models.RoleHOD, DepartmentID: &env.otherDept.ID}
	_, err = env.svc.Reports.StudentReport(env.ctx, foreign, env.byRoll(1).ID, dto.ReportQuery{}, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestConfiguredThresholdIsKept(t *testing.T) {
	env := newTestEnv(t)
	newAttendanceScenario(t, env)
	reports := NewReportService(env.repos, appauth.NewAuthorizationService(env.repos), 0, zerolog.Nop())
	assert.Zero(t, reports.Threshold())

	report, err := reports.DivisionReport(env.ctx, env.hod, env.division.ID, dto.ReportQuery{}, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, report.Threshold)
	assert.Zero(t, report.DefaulterCount)
}

func TestDashboards(t *testing.T) {
	env := newTestEnv(t)
	newAttendanceScenario(t, env)

	t.Run("faculty", func(t *testing.T) {
		d, err := env.svc.Dashboards.Faculty(env.ctx, env.lecturer)
		require.NoError(t, err)
		require.Len(t, d.Allocations, 2)
		assert.Equal(t, 5, d.TotalLectures)
		assert.Equal(t, 2, d.DefaulterCount)
		assert.InDelta(t, 81.48, d.AveragePercent, 0.001)
		assert.Len(t, d.RecentLectures, 5)
		assert.True(t, d.RecentLectures[0].HeldAt.Equal(day(8)))

		theory := d.Allocations[0]
		assert.Equal(t, "CE201", theory.SubjectCode)
		assert.Equal(t, 4, theory.LecturesHeld)
		assert.Equal(t, 6, theory.RosterSize)
		require.NotNil(t, theory.LastLectureAt)
		assert.True(t, theory.LastLectureAt.Equal(day(8)))
		assert.Equal(t, 3, d.Allocations[1].RosterSize)

		_, err = env.svc.Dashboards.Faculty(env.ctx, env.admin)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("department head", func(t *testing.T) {
		d, err := env.svc.Dashboards.HOD(env.ctx, env.hod, nil)
		require.NoError(t, err)
		assert.Equal(t, dto.DepartmentCounts{Classes: 1, Divisions: 1, Labs: 2, Subjects: 2, Faculty: 3, Students: 6, Lectures: 5}, d.Counts)
		assert.Equal(t, 1, d.DefaulterCount)
		require.Len(t, d.Classes, 1)
		assert.EqualValues(t, 6, d.Classes[0].Students)
		assert.Equal(t, 1, d.Classes[0].Divisions)
		assert.Equal(t, d.OverallPercent, d.Classes[0].AveragePercent)

		_, err = env.svc.Dashboards.HOD(env.ctx, env.lecturer, nil)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		_, err = env.svc.Dashboards.HOD(env.ctx, env.hod, &env.otherDept.ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("admin", func(t *testing.T) {
		d, err := env.svc.Dashboards.Admin(env.ctx, env.admin)
		require.NoError(t, err)
		assert.Len(t, d.Departments, 2)
		assert.EqualValues(t, 6, d.Totals.Students)
		assert.Equal(t, 3, d.Users)
		for _, dep := range d.Departments {
			if dep.Department.ID == env.dept.ID {
				require.NotNil(t, dep.Head)
				assert.Equal(t, env.hodUser.ID, dep.Head.ID)
			}
		}

		_, err = env.svc.Dashboards.Admin(env.ctx, env.hod)
		assert.ErrorIs(t, err, appauth.ErrAdminOnly)
	})

	t.Run("developer", func(t *testing.T) {
		d, err := env.svc.Dashboards.Developer(env.ctx, env.developer)
		require.NoError(t, err)
		assert.Equal(t, "memory", d.Driver)
		assert.Equal(t, 3, d.FeedConnections)
		assert.Equal(t, 2, d.Departments)
		assert.Equal(t, 5, d.Totals.Lectures)
		assert.NotEmpty(t, d.GoVersion)
		assert.GreaterOrEqual(t, d.UptimeSeconds, int64(60))
		assert.Nil(t, d.Pool)
	})
}
