package dto

import "github.com/attendly/attendly/internal/app/models"

// StudentInput carries the editable fields of a student
type StudentInput struct {
	LabID        *int64  `json:"labId" binding:"omitempty,gt=0" example:"3"`
	RollNumber   int     `json:"rollNumber" binding:"required,min=1" example:"12"`
	EnrollmentNo string  `json:"enrollmentNo" binding:"required,enrollment" example:"2023CE0012"`
	FirstName    string  `json:"firstName" binding:"required,min=1,max=80" example:"Ravi"`
	LastName     string  `json:"lastName" binding:"max=80" example:"Kumar"`
	Email        *string `json:"email" binding:"omitempty,email"`
}

// CreateStudentRequest represents student creation data
type CreateStudentRequest struct {
	DivisionID int64 `json:"divisionId" binding:"required,gt=0" example:"1"`
	StudentInput
}

// UpdateStudentRequest represents student update data; the division may change
type UpdateStudentRequest struct {
	DivisionID int64 `json:"divisionId" binding:"required,gt=0"`
	StudentInput
}

// BulkImportRequest imports students into one division. Rows are validated one
// by one so that a bad row is reported without rejecting the rest.
type BulkImportRequest struct {
	DivisionID int64          `json:"divisionId" binding:"required,gt=0"`
	Students   []StudentInput `json:"students" binding:"required,min=1,max=500"`
}

// BulkRowError reports why one imported row was rejected
type BulkRowError struct {
	Row          int    `json:"row" example:"4"`
	EnrollmentNo string `json:"enrollmentNo" example:"2023CE0012"`
	Message      string `json:"message" example:"roll number already exists in the division"`
}

// BulkImportResult lists the created students and the rejected rows
type BulkImportResult struct {
	Created []*models.Student `json:"created"`
	Errors  []BulkRowError    `json:"errors"`
}

// StudentListResponse is one page of students
type StudentListResponse struct {
	Students   []*models.Student `json:"students"`
	Pagination PaginationInfo    `json:"pagination"`
}
