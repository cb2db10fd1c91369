package models

import "time"

// Student belongs to exactly one division and optionally one of its labs
type Student struct {
	ID           int64     `json:"id" db:"id"`
	DivisionID   int64     `json:"divisionId" db:"division_id"`
	LabID        *int64    `json:"labId,omitempty" db:"lab_id"`
	RollNumber   int       `json:"rollNumber" db:"roll_number"`
	EnrollmentNo string    `json:"enrollmentNo" db:"enrollment_no"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        *string   `json:"email,omitempty" db:"email"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// FullName returns "First Last"
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// InLab reports whether the student is assigned to the given lab
func (s *Student) InLab(labID int64) bool {
	return s.LabID != nil && *s.LabID == labID
}
