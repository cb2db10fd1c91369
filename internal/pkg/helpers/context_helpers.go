package helpers

import (
	"strconv"

	"github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// Context keys set by the JWT middleware
const (
	ContextUserID       = "userID"
	ContextEmail        = "email"
	ContextRoleType     = "roleType"
	ContextDepartmentID = "departmentID"
)

// GetPrincipal builds the authenticated principal from the request context
func GetPrincipal(c *gin.Context) (auth.Principal, error) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return auth.Principal{}, apperrors.ErrTokenInvalid
	}
	id, ok := userID.(int64)
	if !ok {
		return auth.Principal{}, apperrors.ErrTokenInvalid
	}

	p := auth.Principal{UserID: id, Email: c.GetString(ContextEmail)}
	if role, ok := c.Get(ContextRoleType); ok {
		p.Role, _ = role.(models.RoleType)
	}
	if dept, ok := c.Get(ContextDepartmentID); ok {
		p.DepartmentID, _ = dept.(*int64)
	}
	return p, nil
}

// ParseIDParam parses a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError("invalid " + name)
	}
	return id, nil
}

// ParseOptionalIDQuery parses an optional positive int64 query parameter
func ParseOptionalIDQuery(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.NewBadRequestError("invalid " + name)
	}
	return &id, nil
}
