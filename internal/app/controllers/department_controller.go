package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
)

// DepartmentController handles department related operations
type DepartmentController struct {
	departmentService *services.DepartmentService
	hierarchyService  *services.HierarchyService
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService *services.DepartmentService, hierarchyService *services.HierarchyService) *DepartmentController {
	return &DepartmentController{
		departmentService: departmentService,
		hierarchyService:  hierarchyService,
	}
}

// CreateDepartment handles department creation
// @Summary Create a new department
// @Description Creates a department. Only super admins may do this
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param department body dto.CreateDepartmentRequest true "Department data"
// @Success 201 {object} dto.APIResponse{data=models.Department} "Department created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Department name or code already exists"
// @Router /departments [post]
func (c *DepartmentController) CreateDepartment(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	department, err := c.departmentService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(department, "Department created successfully"))
}

// GetAllDepartments lists departments
// @Summary Get all departments
// @Description Global roles see every department, other staff only their own
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Department} "Departments"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /departments [get]
func (c *DepartmentController) GetAllDepartments(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	departments, err := c.departmentService.List(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(departments, ""))
}

// GetDepartmentByID returns a department with its head
// @Summary Get department by ID
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=models.Department} "Department"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /departments/{id} [get]
func (c *DepartmentController) GetDepartmentByID(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	department, err := c.departmentService.Get(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(department, ""))
}

// UpdateDepartment handles department update
// @Summary Update department
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param department body dto.UpdateDepartmentRequest true "Department data"
// @Success 200 {object} dto.APIResponse{data=models.Department} "Department updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Department name or code already exists"
// @Router /departments/{id} [put]
func (c *DepartmentController) UpdateDepartment(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateDepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	department, err := c.departmentService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(department, "Department updated successfully"))
}

// AssignHead sets or clears the department head
// @Summary Assign department head
// @Description The user must be an HOD of the department. A null headId clears the head
// @Tags departments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param request body dto.AssignHeadRequest true "Head user"
// @Success 200 {object} dto.APIResponse{data=models.Department} "Head assigned"
// @Failure 400 {object} dto.ErrorResponse "User cannot head this department"
// @Failure 404 {object} dto.ErrorResponse "Department or user not found"
// @Router /departments/{id}/head [put]
func (c *DepartmentController) AssignHead(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignHeadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	department, err := c.departmentService.AssignHead(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(department, "Head assigned"))
}

// DeleteDepartment handles department deletion
// @Summary Delete department
// @Tags departments
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 204 "Department deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Department has related records"
// @Router /departments/{id} [delete]
func (c *DepartmentController) DeleteDepartment(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.departmentService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetDepartmentTree returns every class of a department with divisions and labs
// @Summary Get department tree
// @Tags departments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Success 200 {object} dto.APIResponse{data=dto.DepartmentTree} "Department tree"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /departments/{id}/tree [get]
func (c *DepartmentController) GetDepartmentTree(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	tree, err := c.hierarchyService.DepartmentTree(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tree, ""))
}
