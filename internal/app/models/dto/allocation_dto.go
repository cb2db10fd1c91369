package dto

import (
	"time"

	"github.com/attendly/attendly/internal/app/models"
)

// CreateAllocationRequest assigns a faculty member to a subject and division
type CreateAllocationRequest struct {
	FacultyID  int64  `json:"facultyId" binding:"required,gt=0" example:"4"`
	SubjectID  int64  `json:"subjectId" binding:"required,gt=0" example:"2"`
	DivisionID int64  `json:"divisionId" binding:"required,gt=0" example:"1"`
	LabID      *int64 `json:"labId" binding:"omitempty,gt=0"`
}

// AllocationResponse is an allocation with display names resolved
type AllocationResponse struct {
	*models.Allocation
	FacultyName  string             `json:"facultyName" example:"Anita Patil"`
	SubjectCode  string             `json:"subjectCode" example:"CE201"`
	SubjectName  string             `json:"subjectName" example:"Data Structures"`
	SubjectKind  models.SubjectKind `json:"subjectKind" example:"THEORY"`
	DivisionName string             `json:"divisionName" example:"A"`
	ClassName    string             `json:"className" example:"Second Year"`
	LabName      string             `json:"labName,omitempty" example:"A1"`
}

// FacultyAllocationStats is one allocation row of the faculty dashboard
type FacultyAllocationStats struct {
	AllocationResponse
	LecturesHeld   int        `json:"lecturesHeld" example:"18"`
	LastLectureAt  *time.Time `json:"lastLectureAt,omitempty"`
	AveragePercent float64    `json:"averagePercent" example:"81.25"`
	DefaulterCount int        `json:"defaulterCount" example:"3"`
	RosterSize     int        `json:"rosterSize" example:"60"`
}
