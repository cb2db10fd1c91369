package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/auth"
	"github.com/attendly/attendly/internal/pkg/helpers"
	"github.com/attendly/attendly/internal/pkg/logger"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	users      repositories.UserStore
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, users repositories.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		users:      users,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication failed").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth validates the bearer token and stores the caller in the context.
// Browsers cannot set headers on WebSocket requests, so a "token" query
// parameter is accepted as well.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		// Deactivated or deleted accounts lose access before their token expires
		user, err := m.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.Debug().Err(err).Int64("userID", claims.UserID).Msg("Token subject not found")
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Account no longer exists")
			return
		}
		if !user.IsActive {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, "Account is disabled")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		// Role and department come from the stored account so that changes apply immediately
		c.Set(helpers.ContextUserID, user.ID)
		c.Set(helpers.ContextEmail, user.Email)
		c.Set(helpers.ContextRoleType, user.RoleType)
		c.Set(helpers.ContextDepartmentID, user.DepartmentID)

		c.Next()
	}
}

// RoleRequired lets the request through only for the given roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(helpers.ContextRoleType)
		if !exists {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		roleType, ok := role.(models.RoleType)
		if !ok || !slices.Contains(roles, roleType) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// ReadOnlyGuard rejects every non-safe method for the DEVELOPER role
func (m *AuthMiddleware) ReadOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if role, _ := c.Get(helpers.ContextRoleType); role == models.RoleDeveloper {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("this role has read-only access")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}
