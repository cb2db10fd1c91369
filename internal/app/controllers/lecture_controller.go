package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
	"github.com/attendly/attendly/internal/pkg/helpers"
)

// LectureController handles lectures and attendance marking
type LectureController struct {
	lectureService *services.LectureService
}

// NewLectureController creates a new LectureController
func NewLectureController(lectureService *services.LectureService) *LectureController {
	return &LectureController{lectureService: lectureService}
}

// CreateLecture records a lecture for an allocation
// @Summary Create a lecture
// @Tags lectures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateLectureRequest true "Lecture data"
// @Success 201 {object} dto.APIResponse{data=models.Lecture} "Lecture created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Not allowed to teach this allocation"
// @Router /lectures [post]
func (c *LectureController) CreateLecture(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateLectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	lecture, err := c.lectureService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(lecture, "Lecture created"))
}

// ListLectures lists lectures, newest first
// @Summary List lectures
// @Description Faculty members only see their own lectures
// @Tags lectures
// @Produce json
// @Security BearerAuth
// @Param allocationId query int false "Allocation ID"
// @Param facultyId query int false "Faculty user ID"
// @Param divisionId query int false "Division ID"
// @Param departmentId query int false "Department ID"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=[]models.Lecture} "Lectures"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Router /lectures [get]
func (c *LectureController) ListLectures(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var params services.LectureListParams
	if !queryIDs(ctx, []string{"allocationId", "facultyId", "divisionId", "departmentId"},
		&params.AllocationID, &params.FacultyID, &params.DivisionID, &params.DepartmentID) {
		return
	}
	from, to, err := helpers.ParseDateRange(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	params.From, params.To = from, to

	lectures, err := c.lectureService.List(ctx.Request.Context(), p, params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lectures, ""))
}

// GetLecture returns a lecture
// @Summary Get lecture by ID
// @Tags lectures
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lecture ID"
// @Success 200 {object} dto.APIResponse{data=models.Lecture} "Lecture"
// @Failure 404 {object} dto.ErrorResponse "Lecture not found"
// @Router /lectures/{id} [get]
func (c *LectureController) GetLecture(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	lecture, err := c.lectureService.Get(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(lecture, ""))
}

// DeleteLecture removes a lecture and its attendance records
// @Summary Delete lecture
// @Tags lectures
// @Security BearerAuth
// @Param id path int true "Lecture ID"
// @Success 204 "Lecture deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Lecture not found"
// @Router /lectures/{id} [delete]
func (c *LectureController) DeleteLecture(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.lectureService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// MarkAttendance marks every roster student of a lecture
// @Summary Mark attendance
// @Description Mode PRESENT marks the listed students present and the rest absent, mode ABSENT the inverse. Marking again replaces the previous marks
// @Tags lectures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lecture ID"
// @Param request body dto.MarkAttendanceRequest true "Marking"
// @Success 200 {object} dto.APIResponse{data=dto.LectureAttendanceResponse} "Attendance marked"
// @Failure 400 {object} dto.ErrorResponse "Students outside the roster"
// @Failure 403 {object} dto.ErrorResponse "Not allowed to mark this lecture"
// @Failure 404 {object} dto.ErrorResponse "Lecture not found"
// @Router /lectures/{id}/attendance [put]
func (c *LectureController) MarkAttendance(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	sheet, err := c.lectureService.MarkAttendance(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sheet, "Attendance marked"))
}

// GetLectureAttendance returns the marks of a lecture
// @Summary Get lecture attendance
// @Tags lectures
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lecture ID"
// @Success 200 {object} dto.APIResponse{data=dto.LectureAttendanceResponse} "Attendance sheet"
// @Failure 404 {object} dto.ErrorResponse "Lecture not found"
// @Router /lectures/{id}/attendance [get]
func (c *LectureController) GetLectureAttendance(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	sheet, err := c.lectureService.LectureAttendance(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sheet, ""))
}
