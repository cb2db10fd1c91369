package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/app/repositories/memory"
	"github.com/attendly/attendly/internal/pkg/auth"
	"github.com/attendly/attendly/internal/pkg/metrics"
	"github.com/attendly/attendly/internal/pkg/websocket"
)

const testPassword = "s3cret-pass"

func init() {
	auth.BcryptCost = 4
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*websocket.Event
}

func (r *recordingPublisher) Publish(event *websocket.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingPublisher) last() *websocket.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

type fakeFeed int

func (f fakeFeed) TotalClients() int { return int(f) }

// testEnv is a department with one class (year 2), division A with labs A1
// and A2, a theory and a practical subject and six students.
type testEnv struct {
	ctx    context.Context
	repos  *repositories.Repositories
	svc    *Services
	events *recordingPublisher
	mtr    *metrics.Metrics

	dept      *models.Department
	otherDept *models.Department
	hodUser   *models.User
	faculty   *models.User
	colleague *models.User

	admin     appauth.Principal
	developer appauth.Principal
	hod       appauth.Principal
	lecturer  appauth.Principal
	peer      appauth.Principal

	class     *models.Class
	division  *models.Division
	labA1     *models.Lab
	labA2     *models.Lab
	theory    *models.Subject
	practical *models.Subject
	students  []*models.Student
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepositories()
	logger := zerolog.Nop()
	authz := appauth.NewAuthorizationService(repos)
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "attendly-test"})

	env := &testEnv{ctx: ctx, repos: repos, events: &recordingPublisher{}, mtr: metrics.New()}
	env.svc = &Services{
		Auth:        NewAuthService(repos.Users, jwtService, logger),
		Users:       NewUserService(repos, authz, logger),
		Departments: NewDepartmentService(repos, authz, logger),
		Hierarchy:   NewHierarchyService(repos, authz, logger),
		Subjects:    NewSubjectService(repos, authz, logger),
		Students:    NewStudentService(repos, authz, logger),
		Allocations: NewAllocationService(repos, authz, logger),
		Lectures:    NewLectureService(repos, authz, env.events, env.mtr, logger),
		Reports:     NewReportService(repos, authz, 75, logger),
		Dashboards: NewDashboardService(repos, authz, 75, RuntimeInfo{
			Version:   "test",
			Driver:    "memory",
			StartedAt: time.Now().Add(-time.Minute),
			Feed:      fakeFeed(3),
		}, logger),
	}

	env.dept = &models.Department{Name: "Computer Engineering", Code: "CE"}
	require.NoError(t, repos.Departments.Create(ctx, env.dept))
	env.otherDept = &models.Department{Name: "Mechanical Engineering", Code: "ME"}
	require.NoError(t, repos.Departments.Create(ctx, env.otherDept))

	env.hodUser = env.addUser(t, "hod@college.edu", "Meena", models.RoleHOD, &env.dept.ID)
	require.NoError(t, repos.Departments.SetHead(ctx, env.dept.ID, &env.hodUser.ID))
	env.faculty = env.addUser(t, "anita@college.edu", "Anita", models.RoleFaculty, &env.dept.ID)
	env.colleague = env.addUser(t, "rahul@college.edu", "Rahul", models.RoleFaculty, &env.dept.ID)

	env.admin = appauth.Principal{UserID: 9001, Role: models.RoleSuperAdmin}
	env.developer = appauth.Principal{UserID: 9002, Role: models.RoleDeveloper}
	env.hod = principalOf(env.hodUser)
	env.lecturer = principalOf(env.faculty)
	env.peer = principalOf(env.colleague)

	env.class = &models.Class{DepartmentID: env.dept.ID, Name: "Second Year", Year: 2}
	require.NoError(t, repos.Classes.Create(ctx, env.class))
	env.division = &models.Division{ClassID: env.class.ID, Name: "A"}
	require.NoError(t, repos.Divisions.Create(ctx, env.division))
	env.labA1 = &models.Lab{DivisionID: env.division.ID, Name: "A1"}
	require.NoError(t, repos.Labs.Create(ctx, env.labA1))
	env.labA2 = &models.Lab{DivisionID: env.division.ID, Name: "A2"}
	require.NoError(t, repos.Labs.Create(ctx, env.labA2))

	env.theory = &models.Subject{DepartmentID: env.dept.ID, Code: "CE201", Name: "Data Structures", Year: 2, Kind: models.SubjectTheory}
	require.NoError(t, repos.Subjects.Create(ctx, env.theory))
	env.practical = &models.Subject{DepartmentID: env.dept.ID, Code: "CE201L", Name: "Data Structures Lab", Year: 2, Kind: models.SubjectPractical}
	require.NoError(t, repos.Subjects.Create(ctx, env.practical))

	names := []string{"Aarav", "Bhavna", "Chetan", "Divya", "Esha", "Farhan"}
	for i, name := range names {
		st := &models.Student{
			DivisionID:   env.division.ID,
			RollNumber:   len(names) - i,
			EnrollmentNo: "2023CE00" + string(rune('A'+i)),
			FirstName:    name,
		}
		if i < 3 {
			st.LabID = &env.labA1.ID
		} else {
			st.LabID = &env.labA2.ID
		}
		require.NoError(t, repos.Students.Create(ctx, st))
		env.students = append(env.students, st)
	}
	return env
}

func (env *testEnv) addUser(t *testing.T, email, name string, role models.RoleType, departmentID *int64) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	user := &models.User{Email: email, Password: hash, FirstName: name, RoleType: role, DepartmentID: departmentID, IsActive: true}
	require.NoError(t, env.repos.Users.Create(env.ctx, user))
	return user
}

func (env *testEnv) allocate(t *testing.T, faculty *models.User, subject *models.Subject, labID *int64) *models.Allocation {
	t.Helper()
	a := &models.Allocation{FacultyID: faculty.ID, SubjectID: subject.ID, DivisionID: env.division.ID, LabID: labID}
	require.NoError(t, env.repos.Allocations.Create(env.ctx, a))
	return a
}

func (env *testEnv) lecture(t *testing.T, a *models.Allocation, heldAt time.Time) *models.Lecture {
	t.Helper()
	l := &models.Lecture{AllocationID: a.ID, HeldAt: heldAt, CreatedBy: a.FacultyID}
	require.NoError(t, env.repos.Lectures.Create(env.ctx, l))
	return l
}

// byRoll returns the student with the given roll number
func (env *testEnv) byRoll(roll int) *models.Student {
	for _, st := range env.students {
		if st.RollNumber == roll {
			return st
		}
	}
	return nil
}

func principalOf(u *models.User) appauth.Principal {
	return appauth.Principal{UserID: u.ID, Email: u.Email, Role: u.RoleType, DepartmentID: u.DepartmentID}
}
