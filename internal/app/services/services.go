// Package services holds the business rules of the API. Services receive the
// authenticated principal from the controllers, apply the scope rules of
// auth.AuthorizationService and talk to storage through the repository
// interfaces, so the same code runs on PostgreSQL and on the in-memory store.
package services

import (
	"context"
	"sort"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/repositories"
)

// Services groups every service used by the controllers
type Services struct {
	Auth        *AuthService
	Users       *UserService
	Departments *DepartmentService
	Hierarchy   *HierarchyService
	Subjects    *SubjectService
	Students    *StudentService
	Allocations *AllocationService
	Lectures    *LectureService
	Reports     *ReportService
	Dashboards  *DashboardService
}

// scopedDepartment narrows a requested department filter to what the principal
// may see. A global principal keeps the requested value.
func scopedDepartment(p appauth.Principal, requested *int64) (*int64, error) {
	scope := p.DepartmentScope()
	if scope == nil {
		return requested, nil
	}
	if requested != nil && *requested != *scope {
		return nil, appauth.ErrOutsideDepartment
	}
	return scope, nil
}

// resolveThreshold returns the override when set, the configured value otherwise
func resolveThreshold(override *float64, configured float64) float64 {
	if override != nil {
		return *override
	}
	return configured
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func sortStudentsByRoll(students []*models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].RollNumber != students[j].RollNumber {
			return students[i].RollNumber < students[j].RollNumber
		}
		return students[i].ID < students[j].ID
	})
}

// listStudents returns every student matching filter, ignoring paging
func listStudents(ctx context.Context, store repositories.StudentStore, filter repositories.StudentFilter) ([]*models.Student, error) {
	filter.Page = 0
	filter.PageSize = 0
	students, _, err := store.List(ctx, filter)
	return students, err
}

// countStudents returns the number of students matching filter
func countStudents(ctx context.Context, store repositories.StudentStore, filter repositories.StudentFilter) (int64, error) {
	filter.Page = 1
	filter.PageSize = 1
	_, total, err := store.List(ctx, filter)
	return total, err
}
