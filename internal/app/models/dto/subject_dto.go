package dto

import "github.com/attendly/attendly/internal/app/models"

// CreateSubjectRequest represents subject creation data
type CreateSubjectRequest struct {
	DepartmentID int64              `json:"departmentId" binding:"required,gt=0" example:"1"`
	Code         string             `json:"code" binding:"required,subjectcode" example:"CE201"`
	Name         string             `json:"name" binding:"required,min=2,max=120" example:"Data Structures"`
	Year         int                `json:"year" binding:"required,min=1,max=6" example:"2"`
	Kind         models.SubjectKind `json:"kind" binding:"required,oneof=THEORY PRACTICAL" example:"THEORY"`
}

// UpdateSubjectRequest represents subject update data
type UpdateSubjectRequest struct {
	Code string             `json:"code" binding:"required,subjectcode"`
	Name string             `json:"name" binding:"required,min=2,max=120"`
	Year int                `json:"year" binding:"required,min=1,max=6"`
	Kind models.SubjectKind `json:"kind" binding:"required,oneof=THEORY PRACTICAL"`
}
