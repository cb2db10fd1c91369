package dto

// CreateDepartmentRequest represents department creation data
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required,min=2,max=120" example:"Computer Engineering"`
	Code string `json:"code" binding:"required,deptcode" example:"CE"`
}

// UpdateDepartmentRequest represents department update data
type UpdateDepartmentRequest struct {
	Name string `json:"name" binding:"required,min=2,max=120"`
	Code string `json:"code" binding:"required,deptcode"`
}

// AssignHeadRequest assigns or clears (null) a department head
type AssignHeadRequest struct {
	HeadID *int64 `json:"headId" binding:"omitempty,gt=0" example:"2"`
}
