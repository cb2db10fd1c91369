package models

import "time"

// Allocation assigns a faculty member to teach a subject to a division (or one lab of it)
type Allocation struct {
	ID         int64     `json:"id" db:"id"`
	FacultyID  int64     `json:"facultyId" db:"faculty_id"`
	SubjectID  int64     `json:"subjectId" db:"subject_id"`
	DivisionID int64     `json:"divisionId" db:"division_id"`
	LabID      *int64    `json:"labId,omitempty" db:"lab_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
