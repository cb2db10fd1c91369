package models

import (
	"time"
)

// User is a staff account: faculty member, department head, super admin or developer
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Email        string     `json:"email" db:"email" example:"a.patil@college.edu"`
	Password     string     `json:"-" db:"password"`
	FirstName    string     `json:"firstName" db:"first_name" example:"Anita"`
	LastName     string     `json:"lastName" db:"last_name" example:"Patil"`
	RoleType     RoleType   `json:"roleType" db:"role_type" example:"FACULTY"`
	DepartmentID *int64     `json:"departmentId,omitempty" db:"department_id" example:"1"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// InDepartment reports whether the user belongs to the given department
func (u *User) InDepartment(departmentID int64) bool {
	return u.DepartmentID != nil && *u.DepartmentID == departmentID
}
