package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/pkg/validation"
)

// ValidationErrorDetails converts validator errors into per-field messages
func ValidationErrorDetails(err error) []dto.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]dto.FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, dto.FieldError{Field: e.Field(), Message: validation.FieldMessage(e)})
	}
	return out
}

// HandleBindingError answers 400 for a request that failed binding or validation
func HandleBindingError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request")
	if fields := ValidationErrorDetails(err); fields != nil {
		detail = detail.WithDetails(fields)
	} else {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			detail = detail.WithDetails("malformed JSON body")
		case errors.As(err, &typeErr):
			detail = detail.WithDetails(typeErr.Field + " has the wrong type")
		default:
			detail = detail.WithDetails(err.Error())
		}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
