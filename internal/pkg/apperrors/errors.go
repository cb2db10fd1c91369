package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
	ErrHasRelations          = errors.New("resource has dependent data")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Content errors
	ErrInvalidFormat = errors.New("invalid token format")
)

// User errors
var (
	ErrUserNotFound       = NewCustomError(ErrResourceNotFound, "user not found")
	ErrEmailAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "email already exists")
	ErrUserHasAllocations = NewCustomError(ErrHasRelations, "user has allocations and cannot change department")
)

// Department errors
var (
	ErrDepartmentNotFound      = NewCustomError(ErrResourceNotFound, "department not found")
	ErrDepartmentAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "department with this name or code already exists")
	ErrDepartmentHasRelations  = NewCustomError(ErrHasRelations, "department has classes, subjects or staff and cannot be deleted")
)

// Class hierarchy errors
var (
	ErrClassNotFound         = NewCustomError(ErrResourceNotFound, "class not found")
	ErrClassAlreadyExists    = NewCustomError(ErrResourceAlreadyExists, "class with this name and year already exists")
	ErrClassHasRelations     = NewCustomError(ErrHasRelations, "class has divisions and cannot be deleted")
	ErrDivisionNotFound      = NewCustomError(ErrResourceNotFound, "division not found")
	ErrDivisionAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "division with this name already exists in the class")
	ErrDivisionHasRelations  = NewCustomError(ErrHasRelations, "division has students, labs or allocations and cannot be deleted")
	ErrLabNotFound           = NewCustomError(ErrResourceNotFound, "lab not found")
	ErrLabAlreadyExists      = NewCustomError(ErrResourceAlreadyExists, "lab with this name already exists in the division")
	ErrLabHasRelations       = NewCustomError(ErrHasRelations, "lab has students or allocations and cannot be deleted")
)

// Subject errors
var (
	ErrSubjectNotFound      = NewCustomError(ErrResourceNotFound, "subject not found")
	ErrSubjectAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "subject with this code already exists in the department")
	ErrSubjectHasRelations  = NewCustomError(ErrHasRelations, "subject has allocations and cannot be deleted")
)

// Student errors
var (
	ErrStudentNotFound           = NewCustomError(ErrResourceNotFound, "student not found")
	ErrRollNumberAlreadyExists   = NewCustomError(ErrResourceAlreadyExists, "roll number already exists in the division")
	ErrEnrollmentAlreadyExists   = NewCustomError(ErrResourceAlreadyExists, "enrollment number already exists")
	ErrStudentHasAttendance      = NewCustomError(ErrHasRelations, "student has attendance records and cannot be deleted")
	ErrLabOutsideStudentDivision = NewCustomError(ErrValidationFailed, "lab does not belong to the student's division")
)

// Allocation and lecture errors
var (
	ErrAllocationNotFound      = NewCustomError(ErrResourceNotFound, "allocation not found")
	ErrAllocationAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "allocation already exists")
	ErrAllocationHasLectures   = NewCustomError(ErrHasRelations, "allocation has lectures and cannot be deleted")
	ErrLectureNotFound         = NewCustomError(ErrResourceNotFound, "lecture not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a new custom error for failed validation with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
