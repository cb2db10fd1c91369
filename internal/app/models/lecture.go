package models

import "time"

// Lecture is one conducted session of an allocation
type Lecture struct {
	ID           int64     `json:"id" db:"id"`
	AllocationID int64     `json:"allocationId" db:"allocation_id"`
	HeldAt       time.Time `json:"heldAt" db:"held_at"`
	Topic        string    `json:"topic" db:"topic"`
	CreatedBy    int64     `json:"createdBy" db:"created_by"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// AttendanceRecord is a single student's mark for a lecture
type AttendanceRecord struct {
	LectureID int64            `json:"lectureId" db:"lecture_id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	Status    AttendanceStatus `json:"status" db:"status"`
	MarkedAt  time.Time        `json:"markedAt" db:"marked_at"`
}

// AttendanceFact is an attendance record joined with the lecture context needed for aggregation
type AttendanceFact struct {
	LectureID    int64
	StudentID    int64
	SubjectID    int64
	AllocationID int64
	DivisionID   int64
	HeldAt       time.Time
	Status       AttendanceStatus
}
