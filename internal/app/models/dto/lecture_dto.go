package dto

import (
	"time"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/domain/attendance"
)

// CreateLectureRequest represents lecture creation data
type CreateLectureRequest struct {
	AllocationID int64     `json:"allocationId" binding:"required,gt=0" example:"1"`
	HeldAt       time.Time `json:"heldAt" binding:"required" example:"2024-08-01T09:00:00Z"`
	Topic        string    `json:"topic" binding:"max=255" example:"Linked lists"`
}

// MarkAttendanceRequest marks a lecture. Mode PRESENT marks the listed students
// present and everyone else on the roster absent; ABSENT is the inverse.
type MarkAttendanceRequest struct {
	Mode       models.AttendanceStatus `json:"mode" binding:"required,oneof=PRESENT ABSENT" example:"ABSENT"`
	StudentIDs []int64                 `json:"studentIds" binding:"dive,gt=0"`
}

// AttendanceEntry is one student's mark with the student's display fields
type AttendanceEntry struct {
	StudentID    int64                   `json:"studentId" example:"12"`
	RollNumber   int                     `json:"rollNumber" example:"12"`
	EnrollmentNo string                  `json:"enrollmentNo" example:"2023CE0012"`
	Name         string                  `json:"name" example:"Ravi Kumar"`
	Status       models.AttendanceStatus `json:"status" example:"PRESENT"`
	MarkedAt     time.Time               `json:"markedAt"`
}

// LectureAttendanceResponse is a lecture with its attendance sheet
type LectureAttendanceResponse struct {
	Lecture *models.Lecture           `json:"lecture"`
	Entries []AttendanceEntry         `json:"entries"`
	Summary attendance.LectureSummary `json:"summary"`
}
