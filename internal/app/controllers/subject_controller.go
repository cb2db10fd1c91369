package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

// SubjectController handles subject related operations
type SubjectController struct {
	subjectService *services.SubjectService
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(subjectService *services.SubjectService) *SubjectController {
	return &SubjectController{subjectService: subjectService}
}

// CreateSubject creates a subject
// @Summary Create a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSubjectRequest true "Subject data"
// @Success 201 {object} dto.APIResponse{data=models.Subject} "Subject created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Subject code already exists"
// @Router /subjects [post]
func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	subject, err := c.subjectService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(subject, "Subject created"))
}

// ListSubjects lists subjects
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Department ID"
// @Param year query int false "Year of study"
// @Param kind query string false "Subject kind" Enums(THEORY, PRACTICAL)
// @Success 200 {object} dto.APIResponse{data=[]models.Subject} "Subjects"
// @Router /subjects [get]
func (c *SubjectController) ListSubjects(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var filter repositories.SubjectFilter
	if !queryIDs(ctx, []string{"departmentId"}, &filter.DepartmentID) {
		return
	}
	if filter.Year, ok = queryInt(ctx, "year"); !ok {
		return
	}
	if raw := ctx.Query("kind"); raw != "" {
		kind := models.SubjectKind(raw)
		if kind != models.SubjectTheory && kind != models.SubjectPractical {
			middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("kind must be THEORY or PRACTICAL"))
			return
		}
		filter.Kind = &kind
	}

	subjects, err := c.subjectService.List(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subjects, ""))
}

// GetSubject returns a subject
// @Summary Get subject by ID
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=models.Subject} "Subject"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Router /subjects/{id} [get]
func (c *SubjectController) GetSubject(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	subject, err := c.subjectService.Get(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subject, ""))
}

// UpdateSubject edits a subject
// @Summary Update subject
// @Description Kind and year are locked while the subject has allocations
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Param request body dto.UpdateSubjectRequest true "Subject data"
// @Success 200 {object} dto.APIResponse{data=models.Subject} "Subject updated"
// @Failure 404 {object} dto.ErrorResponse "Subject not found"
// @Failure 409 {object} dto.ErrorResponse "Subject code exists or subject is allocated"
// @Router /subjects/{id} [put]
func (c *SubjectController) UpdateSubject(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	subject, err := c.subjectService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(subject, "Subject updated"))
}

// DeleteSubject removes a subject without allocations
// @Summary Delete subject
// @Tags subjects
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Success 204 "Subject deleted"
// @Failure 409 {object} dto.ErrorResponse "Subject has allocations"
// @Router /subjects/{id} [delete]
func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.subjectService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
