package bootstrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/internal/app/repositories/memory"
	"github.com/attendly/attendly/internal/config"
	"github.com/attendly/attendly/internal/pkg/auth"
	"github.com/attendly/attendly/internal/pkg/export"
	"github.com/attendly/attendly/internal/pkg/logger"
	"github.com/attendly/attendly/internal/seed"
)

const adminPassword = "admin-pass-123"

func init() {
	auth.BcryptCost = 4
	logger.Configure(logger.Config{Level: logger.Disabled})
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

// envelope mirrors dto.APIResponse with a typed data field
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	cfg.Database.Driver = config.DriverMemory
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.Issuer = "attendly-test"
	cfg.Attendance.DefaulterThreshold = 75
	cfg.Seed.AdminEmail = "admin@attendly.local"
	cfg.Seed.AdminPassword = adminPassword
	cfg.Seed.DemoData = true

	lgr := zerolog.Nop()
	repos := memory.NewRepositories()
	SeedDefaultData(cfg, repos, lgr)
	deps := BuildDependencies(cfg, repos, nil, "test", lgr)

	return &apiClient{t: t, router: SetupRouter(cfg, deps, lgr)}
}

func (c *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (c *apiClient) login(email, password string) string {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
	}](c.t, w)
	require.NotEmpty(c.t, resp.Data.Token.AccessToken)
	return resp.Data.Token.AccessToken
}

type idOnly struct {
	ID int64 `json:"id"`
}

func TestPublicEndpoints(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = api.do(http.MethodGet, "/api/v1/departments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@attendly.local", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "attendly_http_requests_total")
}

func TestRoleGuards(t *testing.T) {
	api := newAPI(t)
	dev := api.login("dev@attendly.local", seed.DemoPassword)
	faculty := api.login("anita.patil@attendly.local", seed.DemoPassword)
	admin := api.login("admin@attendly.local", adminPassword)

	w := api.do(http.MethodPost, "/api/v1/departments", dev, map[string]string{"name": "Civil", "code": "CV"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/dashboard/developer", dev, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"driver":"memory"`)

	w = api.do(http.MethodGet, "/api/v1/users", faculty, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/dashboard/admin", faculty, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/v1/departments", admin, map[string]string{"name": "Civil Engineering", "code": "CV"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/v1/departments", admin, map[string]string{"name": "Civil Engineering", "code": "CV"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAttendanceFlow(t *testing.T) {
	api := newAPI(t)
	hod := api.login("hod.ce@attendly.local", seed.DemoPassword)
	faculty := api.login("anita.patil@attendly.local", seed.DemoPassword)

	// Anita teaches the theory subject to both demo divisions
	w := api.do(http.MethodGet, "/api/v1/allocations", faculty, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	allocations := decode[[]struct {
		ID           int64  `json:"id"`
		DivisionID   int64  `json:"divisionId"`
		DivisionName string `json:"divisionName"`
		SubjectCode  string `json:"subjectCode"`
	}](t, w).Data
	require.NotEmpty(t, allocations)

	var allocationID, divisionID int64
	for _, a := range allocations {
		if a.DivisionName == "A" && a.SubjectCode == "CE201" {
			allocationID, divisionID = a.ID, a.DivisionID
		}
	}
	require.NotZero(t, allocationID)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/v1/students?divisionId=%d&size=100", divisionID), faculty, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	students := decode[struct {
		Students []struct {
			ID         int64 `json:"id"`
			RollNumber int   `json:"rollNumber"`
		} `json:"students"`
	}](t, w).Data.Students
	require.Len(t, students, 8)
	require.Equal(t, 1, students[0].RollNumber)

	w = api.do(http.MethodPost, "/api/v1/lectures", faculty, map[string]interface{}{
		"allocationId": allocationID,
		"heldAt":       time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC),
		"topic":        "Stacks",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lectureID := decode[idOnly](t, w).Data.ID

	path := fmt.Sprintf("/api/v1/lectures/%d/attendance", lectureID)

	w = api.do(http.MethodPut, path, faculty, map[string]interface{}{"mode": "ABSENT", "studentIds": []int64{999999}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, path, faculty, map[string]interface{}{"mode": "LATE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, path, faculty, map[string]interface{}{"mode": "ABSENT", "studentIds": []int64{students[0].ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, path, hod, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[struct {
		Summary struct {
			Present int `json:"present"`
			Absent  int `json:"absent"`
		} `json:"summary"`
	}](t, w).Data.Summary
	assert.Equal(t, 7, summary.Present)
	assert.Equal(t, 1, summary.Absent)

	report := fmt.Sprintf("/api/v1/divisions/%d/report", divisionID)
	w = api.do(http.MethodGet, report+"?from=2024-08-01&to=2024-08-01", hod, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sheet := decode[struct {
		DefaulterCount int `json:"defaulterCount"`
		Rows           []struct {
			RollNumber int  `json:"rollNumber"`
			Defaulter  bool `json:"defaulter"`
		} `json:"rows"`
	}](t, w).Data
	assert.Equal(t, 1, sheet.DefaulterCount)
	require.Len(t, sheet.Rows, 8)
	assert.True(t, sheet.Rows[0].Defaulter)

	w = api.do(http.MethodGet, report+"?from=2024-08-02", hod, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[struct {
		DefaulterCount int `json:"defaulterCount"`
	}](t, w).Data.DefaulterCount)

	w = api.do(http.MethodGet, report+"?threshold=120", hod, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/v1/divisions/%d/defaulters", divisionID), faculty, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	defaulters := decode[struct {
		Defaulters []struct {
			StudentID int64 `json:"studentId"`
		} `json:"defaulters"`
	}](t, w).Data.Defaulters
	require.Len(t, defaulters, 1)
	assert.Equal(t, students[0].ID, defaulters[0].StudentID)

	w = api.do(http.MethodGet, report+"/export", hod, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"))
	assert.NotZero(t, w.Body.Len())

	// Developers are read-only, so marking is refused before any service runs
	dev := api.login("dev@attendly.local", seed.DemoPassword)
	w = api.do(http.MethodPut, path, dev, map[string]interface{}{"mode": "PRESENT"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/dashboard/faculty", faculty, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestFeedRequiresDepartmentHead(t *testing.T) {
	api := newAPI(t)
	faculty := api.login("anita.patil@attendly.local", seed.DemoPassword)
	hod := api.login("hod.ce@attendly.local", seed.DemoPassword)

	w := api.do(http.MethodGet, "/api/v1/departments", hod, nil)
	require.Equal(t, http.StatusOK, w.Code)
	departments := decode[[]idOnly](t, w).Data
	require.Len(t, departments, 1)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/v1/ws/departments/%d/attendance", departments[0].ID), faculty, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/ws/departments/9999/attendance", hod, nil)
	assert.Contains(t, []int{http.StatusForbidden, http.StatusNotFound}, w.Code)
}
