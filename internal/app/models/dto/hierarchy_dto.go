package dto

import "github.com/attendly/attendly/internal/app/models"

// CreateClassRequest represents class creation data
type CreateClassRequest struct {
	DepartmentID int64  `json:"departmentId" binding:"required,gt=0" example:"1"`
	Name         string `json:"name" binding:"required,min=1,max=80" example:"Second Year"`
	Year         int    `json:"year" binding:"required,min=1,max=6" example:"2"`
}

// UpdateClassRequest represents class update data
type UpdateClassRequest struct {
	Name string `json:"name" binding:"required,min=1,max=80"`
	Year int    `json:"year" binding:"required,min=1,max=6"`
}

// CreateDivisionRequest represents division creation data
type CreateDivisionRequest struct {
	ClassID        int64  `json:"classId" binding:"required,gt=0" example:"1"`
	Name           string `json:"name" binding:"required,min=1,max=40" example:"A"`
	ClassTeacherID *int64 `json:"classTeacherId" binding:"omitempty,gt=0"`
}

// UpdateDivisionRequest represents division update data
type UpdateDivisionRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=40"`
	ClassTeacherID *int64 `json:"classTeacherId" binding:"omitempty,gt=0"`
}

// CreateLabRequest represents lab (practical batch) creation data
type CreateLabRequest struct {
	DivisionID int64  `json:"divisionId" binding:"required,gt=0" example:"1"`
	Name       string `json:"name" binding:"required,min=1,max=40" example:"A1"`
	InChargeID *int64 `json:"inChargeId" binding:"omitempty,gt=0"`
}

// UpdateLabRequest represents lab update data
type UpdateLabRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=40"`
	InChargeID *int64 `json:"inChargeId" binding:"omitempty,gt=0"`
}

// LabNode is a lab with its student count
type LabNode struct {
	*models.Lab
	StudentCount int64 `json:"studentCount" example:"20"`
}

// DivisionNode is a division with its labs and student count
type DivisionNode struct {
	*models.Division
	StudentCount int64      `json:"studentCount" example:"60"`
	Labs         []*LabNode `json:"labs"`
}

// ClassHierarchy is a class with its divisions and labs
type ClassHierarchy struct {
	*models.Class
	StudentCount int64           `json:"studentCount" example:"120"`
	Divisions    []*DivisionNode `json:"divisions"`
}

// DepartmentTree is a department with every class hierarchy in it
type DepartmentTree struct {
	*models.Department
	Classes []*ClassHierarchy `json:"classes"`
}
