package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
)

// AllocationController handles teaching allocations
type AllocationController struct {
	allocationService *services.AllocationService
}

// NewAllocationController creates a new AllocationController
func NewAllocationController(allocationService *services.AllocationService) *AllocationController {
	return &AllocationController{allocationService: allocationService}
}

// CreateAllocation assigns a faculty member to teach a subject to a division or lab
// @Summary Create an allocation
// @Description Practical subjects may be allocated per lab. The class year must match the subject year
// @Tags allocations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAllocationRequest true "Allocation data"
// @Success 201 {object} dto.APIResponse{data=dto.AllocationResponse} "Allocation created"
// @Failure 400 {object} dto.ErrorResponse "Invalid allocation"
// @Failure 409 {object} dto.ErrorResponse "Allocation already exists"
// @Router /allocations [post]
func (c *AllocationController) CreateAllocation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateAllocationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	allocation, err := c.allocationService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(allocation, "Allocation created"))
}

// ListAllocations lists allocations
// @Summary List allocations
// @Tags allocations
// @Produce json
// @Security BearerAuth
// @Param facultyId query int false "Faculty user ID"
// @Param subjectId query int false "Subject ID"
// @Param divisionId query int false "Division ID"
// @Param departmentId query int false "Department ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.AllocationResponse} "Allocations"
// @Router /allocations [get]
func (c *AllocationController) ListAllocations(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var filter repositories.AllocationFilter
	if !queryIDs(ctx, []string{"facultyId", "subjectId", "divisionId", "departmentId"},
		&filter.FacultyID, &filter.SubjectID, &filter.DivisionID, &filter.DepartmentID) {
		return
	}

	allocations, err := c.allocationService.List(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(allocations, ""))
}

// GetAllocation returns an allocation
// @Summary Get allocation by ID
// @Tags allocations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Allocation ID"
// @Success 200 {object} dto.APIResponse{data=dto.AllocationResponse} "Allocation"
// @Failure 404 {object} dto.ErrorResponse "Allocation not found"
// @Router /allocations/{id} [get]
func (c *AllocationController) GetAllocation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	allocation, err := c.allocationService.Get(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(allocation, ""))
}

// DeleteAllocation removes an allocation without lectures
// @Summary Delete allocation
// @Tags allocations
// @Security BearerAuth
// @Param id path int true "Allocation ID"
// @Success 204 "Allocation deleted"
// @Failure 409 {object} dto.ErrorResponse "Allocation has lectures"
// @Router /allocations/{id} [delete]
func (c *AllocationController) DeleteAllocation(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.allocationService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
