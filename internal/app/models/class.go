package models

import "time"

// Class is a year of study inside a department, e.g. "Computer Engineering" year 2
type Class struct {
	ID           int64     `json:"id" db:"id"`
	DepartmentID int64     `json:"departmentId" db:"department_id"`
	Name         string    `json:"name" db:"name"`
	Year         int       `json:"year" db:"year"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Division is a section of a class that attends theory lectures together
type Division struct {
	ID             int64     `json:"id" db:"id"`
	ClassID        int64     `json:"classId" db:"class_id"`
	Name           string    `json:"name" db:"name"`
	ClassTeacherID *int64    `json:"classTeacherId,omitempty" db:"class_teacher_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// Lab is a practical batch inside a division
type Lab struct {
	ID         int64     `json:"id" db:"id"`
	DivisionID int64     `json:"divisionId" db:"division_id"`
	Name       string    `json:"name" db:"name"`
	InChargeID *int64    `json:"inChargeId,omitempty" db:"in_charge_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
