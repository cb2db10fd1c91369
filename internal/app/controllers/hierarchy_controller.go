package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
)

// HierarchyController handles classes, divisions and labs
type HierarchyController struct {
	hierarchyService *services.HierarchyService
}

// NewHierarchyController creates a new HierarchyController
func NewHierarchyController(hierarchyService *services.HierarchyService) *HierarchyController {
	return &HierarchyController{hierarchyService: hierarchyService}
}

// CreateClass creates a class
// @Summary Create a class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateClassRequest true "Class data"
// @Success 201 {object} dto.APIResponse{data=models.Class} "Class created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Class already exists"
// @Router /classes [post]
func (c *HierarchyController) CreateClass(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	class, err := c.hierarchyService.CreateClass(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(class, "Class created"))
}

// ListClasses lists classes
// @Summary List classes
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Department ID"
// @Param year query int false "Year of study"
// @Success 200 {object} dto.APIResponse{data=[]models.Class} "Classes"
// @Router /classes [get]
func (c *HierarchyController) ListClasses(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var departmentID *int64
	if !queryIDs(ctx, []string{"departmentId"}, &departmentID) {
		return
	}
	year, ok := queryInt(ctx, "year")
	if !ok {
		return
	}

	classes, err := c.hierarchyService.ListClasses(ctx.Request.Context(), p, departmentID, year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(classes, ""))
}

// GetClass returns a class
// @Summary Get class by ID
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=models.Class} "Class"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [get]
func (c *HierarchyController) GetClass(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	class, err := c.hierarchyService.GetClass(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(class, ""))
}

// GetClassHierarchy returns a class with its divisions, labs and student counts
// @Summary Get class hierarchy
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClassHierarchy} "Class hierarchy"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/hierarchy [get]
func (c *HierarchyController) GetClassHierarchy(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	hierarchy, err := c.hierarchyService.Hierarchy(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(hierarchy, ""))
}

// UpdateClass edits a class
// @Summary Update class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.UpdateClassRequest true "Class data"
// @Success 200 {object} dto.APIResponse{data=models.Class} "Class updated"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Class already exists"
// @Router /classes/{id} [put]
func (c *HierarchyController) UpdateClass(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	class, err := c.hierarchyService.UpdateClass(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(class, "Class updated"))
}

// DeleteClass removes a class without divisions
// @Summary Delete class
// @Tags classes
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 204 "Class deleted"
// @Failure 409 {object} dto.ErrorResponse "Class has divisions"
// @Router /classes/{id} [delete]
func (c *HierarchyController) DeleteClass(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.hierarchyService.DeleteClass(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateDivision creates a division inside a class
// @Summary Create a division
// @Tags divisions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDivisionRequest true "Division data"
// @Success 201 {object} dto.APIResponse{data=models.Division} "Division created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Division already exists"
// @Router /divisions [post]
func (c *HierarchyController) CreateDivision(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateDivisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	division, err := c.hierarchyService.CreateDivision(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(division, "Division created"))
}

// ListDivisions lists divisions
// @Summary List divisions
// @Tags divisions
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Param departmentId query int false "Department ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Division} "Divisions"
// @Router /divisions [get]
func (c *HierarchyController) ListDivisions(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var classID, departmentID *int64
	if !queryIDs(ctx, []string{"classId", "departmentId"}, &classID, &departmentID) {
		return
	}

	divisions, err := c.hierarchyService.ListDivisions(ctx.Request.Context(), p, classID, departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(divisions, ""))
}

// GetDivision returns a division
// @Summary Get division by ID
// @Tags divisions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Division ID"
// @Success 200 {object} dto.APIResponse{data=models.Division} "Division"
// @Failure 404 {object} dto.ErrorResponse "Division not found"
// @Router /divisions/{id} [get]
func (c *HierarchyController) GetDivision(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	division, err := c.hierarchyService.GetDivision(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(division, ""))
}

// UpdateDivision edits a division
// @Summary Update division
// @Tags divisions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Division ID"
// @Param request body dto.UpdateDivisionRequest true "Division data"
// @Success 200 {object} dto.APIResponse{data=models.Division} "Division updated"
// @Failure 404 {object} dto.ErrorResponse "Division not found"
// @Router /divisions/{id} [put]
func (c *HierarchyController) UpdateDivision(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateDivisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	division, err := c.hierarchyService.UpdateDivision(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(division, "Division updated"))
}

// DeleteDivision removes a division without students
// @Summary Delete division
// @Tags divisions
// @Security BearerAuth
// @Param id path int true "Division ID"
// @Success 204 "Division deleted"
// @Failure 409 {object} dto.ErrorResponse "Division has students"
// @Router /divisions/{id} [delete]
func (c *HierarchyController) DeleteDivision(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.hierarchyService.DeleteDivision(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateLab creates a lab batch inside a division
// @Summary Create a lab
// @Tags labs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateLabRequest true "Lab data"
// @Success 201 {object} dto.APIResponse{data=models.Lab} "Lab created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Lab already exists"
// @Router /labs [post]
func (c *HierarchyController) CreateLab(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateLabRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	lab, err := c.hierarchyService.CreateLab(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(lab, "Lab created"))
}

// ListLabs lists labs
// @Summary List labs
// @Tags labs
// @Produce json
// @Security BearerAuth
// @Param divisionId query int false "Division ID"
// @Param classId query int false "Class ID"
// @Param departmentId query int false "Department ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Lab} "Labs"
// @Router /labs [get]
func (c *HierarchyController) ListLabs(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var filter repositories.LabFilter
	if !queryIDs(ctx, []string{"divisionId", "classId", "departmentId"}, &filter.DivisionID, &filter.ClassID, &filter.DepartmentID) {
		return
	}

	labs, err := c.hierarchyService.ListLabs(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(labs, ""))
}

// GetLab returns a lab
// @Summary Get lab by ID
// @Tags labs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lab ID"
// @Success 200 {object} dto.APIResponse{data=models.Lab} "Lab"
// @Failure 404 {object} dto.ErrorResponse "Lab not found"
// @Router /labs/{id} [get]
func (c *HierarchyController) GetLab(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	lab, err := c.hierarchyService.GetLab(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lab, ""))
}

// UpdateLab edits a lab
// @Summary Update lab
// @Tags labs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lab ID"
// @Param request body dto.UpdateLabRequest true "Lab data"
// @Success 200 {object} dto.APIResponse{data=models.Lab} "Lab updated"
// @Failure 404 {object} dto.ErrorResponse "Lab not found"
// @Router /labs/{id} [put]
func (c *HierarchyController) UpdateLab(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateLabRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	lab, err := c.hierarchyService.UpdateLab(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lab, "Lab updated"))
}

// DeleteLab removes a lab with no students assigned
// @Summary Delete lab
// @Tags labs
// @Security BearerAuth
// @Param id path int true "Lab ID"
// @Success 204 "Lab deleted"
// @Failure 409 {object} dto.ErrorResponse "Lab has students"
// @Router /labs/{id} [delete]
func (c *HierarchyController) DeleteLab(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.hierarchyService.DeleteLab(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
