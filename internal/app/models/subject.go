package models

import "time"

// Subject is a course offered by a department for a given year
type Subject struct {
	ID           int64       `json:"id" db:"id"`
	DepartmentID int64       `json:"departmentId" db:"department_id"`
	Code         string      `json:"code" db:"code"`
	Name         string      `json:"name" db:"name"`
	Year         int         `json:"year" db:"year"`
	Kind         SubjectKind `json:"kind" db:"kind"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
}
