package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
	"github.com/attendly/attendly/internal/pkg/helpers"
)

// StudentController handles student related operations
type StudentController struct {
	studentService *services.StudentService
	reportService  *services.ReportService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, reportService *services.ReportService) *StudentController {
	return &StudentController{
		studentService: studentService,
		reportService:  reportService,
	}
}

// CreateStudent adds a student to a division
// @Summary Create a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student data"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Student created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Roll or enrollment number already exists"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	student, err := c.studentService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(student, "Student created"))
}

// BulkImport adds many students to a division
// @Summary Bulk import students
// @Description Each row is validated on its own. Rejected rows are reported and do not stop the others
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkImportRequest true "Students to import"
// @Success 200 {object} dto.APIResponse{data=dto.BulkImportResult} "Import result"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /students/bulk [post]
func (c *StudentController) BulkImport(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.BulkImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	result, err := c.studentService.BulkImport(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, "Import finished"))
}

// ListStudents lists students page by page
// @Summary List students
// @Description Students are ordered by division and roll number
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param divisionId query int false "Division ID"
// @Param labId query int false "Lab ID"
// @Param classId query int false "Class ID"
// @Param departmentId query int false "Department ID"
// @Param search query string false "Name, enrollment or roll number"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse} "Students"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var params services.StudentListParams
	if !queryIDs(ctx, []string{"divisionId", "labId", "classId", "departmentId"},
		&params.DivisionID, &params.LabID, &params.ClassID, &params.DepartmentID) {
		return
	}
	params.Search = strings.TrimSpace(ctx.Query("search"))
	params.Page, params.PageSize = helpers.ParsePaginationParams(ctx)

	students, err := c.studentService.List(ctx.Request.Context(), p, params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(students, ""))
}

// GetStudent returns a student
// @Summary Get student by ID
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.Get(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, ""))
}

// UpdateStudent edits a student, possibly moving them to another division
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Student data"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student updated"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Roll or enrollment number already exists"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Student updated"))
}

// DeleteStudent removes a student without attendance records
// @Summary Delete student
// @Tags students
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 204 "Student deleted"
// @Failure 409 {object} dto.ErrorResponse "Student has attendance records"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.studentService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetStudentReport returns a student's attendance per subject
// @Summary Student attendance report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param subjectId query int false "Only this subject"
// @Param threshold query number false "Defaulter threshold (0-100)"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.StudentReport} "Student report"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/report [get]
func (c *StudentController) GetStudentReport(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	q, from, to, ok := bindReportQuery(ctx)
	if !ok {
		return
	}

	report, err := c.reportService.StudentReport(ctx.Request.Context(), p, id, q, from, to)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, ""))
}
