package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/logger"
)

// HandleAPIError maps service errors to a status code and the standard error body.
// Messages of CustomError values are meant for clients and are passed through.
func HandleAPIError(c *gin.Context, err error) {
	status, code, fallback := classify(err)

	message := fallback
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		message = custom.Message
	}

	detail := dto.NewErrorDetail(code, message)
	if custom != nil && custom.Details != nil {
		detail = detail.WithDetails(custom.Details)
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("requestID", c.GetString(RequestIDKey)).
			Msg("Unhandled API error")
		detail = dto.NewErrorDetail(code, fallback)
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, dto.ErrorCode, string) {
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"
	case errors.Is(err, apperrors.ErrHasRelations):
		return http.StatusConflict, dto.ErrorCodeHasRelations, "Resource has dependent data"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeConflict, "Conflict"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
	}
}
