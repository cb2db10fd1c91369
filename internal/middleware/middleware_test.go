package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories/memory"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/auth"
	"github.com/attendly/attendly/internal/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.ErrClassNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{apperrors.ErrSubjectAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{apperrors.ErrDivisionHasRelations, http.StatusConflict, dto.ErrorCodeHasRelations},
		{apperrors.NewConflictError("busy"), http.StatusConflict, dto.ErrorCodeConflict},
		{apperrors.NewForbiddenError("nope"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled},
		{apperrors.NewValidationError("bad roll"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{apperrors.NewBadRequestError("bad id"), http.StatusBadRequest, dto.ErrorCodeBadRequest},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		HandleAPIError(c, tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Error.Code)
	}
}

func TestHandleAPIErrorPassesCustomMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleAPIError(c, apperrors.ErrRollNumberAlreadyExists)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "roll number already exists in the division", body.Error.Message)
}

func TestJWTAuthAndGuards(t *testing.T) {
	auth.BcryptCost = 4
	repos := memory.NewRepositories()
	ctx := context.Background()

	dept := &models.Department{Name: "Computer", Code: "CE"}
	require.NoError(t, repos.Departments.Create(ctx, dept))
	hod := &models.User{Email: "hod@x.edu", RoleType: models.RoleHOD, DepartmentID: &dept.ID, IsActive: true}
	dev := &models.User{Email: "dev@x.edu", RoleType: models.RoleDeveloper, IsActive: true}
	off := &models.User{Email: "off@x.edu", RoleType: models.RoleFaculty, DepartmentID: &dept.ID}
	for _, u := range []*models.User{hod, dev, off} {
		require.NoError(t, repos.Users.Create(ctx, u))
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	m := NewAuthMiddleware(jwtService, repos.Users)

	r := gin.New()
	r.Use(RequestID())
	api := r.Group("/", m.JWTAuth(), m.ReadOnlyGuard())
	api.GET("/me", func(c *gin.Context) {
		p, err := helpers.GetPrincipal(c)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": p.Role, "dept": p.DepartmentID})
	})
	api.POST("/write", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.GET("/hod", m.RoleRequired(models.RoleHOD, models.RoleSuperAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	token := func(u *models.User) string {
		tok, _, err := jwtService.GenerateAccessToken(u)
		require.NoError(t, err)
		return "Bearer " + tok
	}
	do := func(method, path, authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/me", "Bearer nonsense").Code)

	rec := do(http.MethodGet, "/me", token(hod))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, rec.Body.String(), `"role":"HOD"`)

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/write", token(hod)).Code)
	assert.Equal(t, http.StatusForbidden, do(http.MethodPost, "/write", token(dev)).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/me", token(dev)).Code)

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/hod", token(hod)).Code)
	assert.Equal(t, http.StatusForbidden, do(http.MethodGet, "/hod", token(dev)).Code)

	assert.Equal(t, http.StatusForbidden, do(http.MethodGet, "/me", token(off)).Code)

	req := httptest.NewRequest(http.MethodGet, "/me?token="+token(hod)[len("Bearer "):], nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
