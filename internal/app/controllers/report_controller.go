package controllers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
	"github.com/attendly/attendly/internal/pkg/export"
	"github.com/attendly/attendly/internal/pkg/helpers"
)

// ReportController serves division attendance reports
type ReportController struct {
	reportService *services.ReportService
	logger        zerolog.Logger
}

// NewReportController creates a new ReportController
func NewReportController(reportService *services.ReportService, logger zerolog.Logger) *ReportController {
	return &ReportController{
		reportService: reportService,
		logger:        logger,
	}
}

// bindReportQuery reads the subject filter, the threshold override and the date range
func bindReportQuery(ctx *gin.Context) (dto.ReportQuery, *time.Time, *time.Time, bool) {
	var q dto.ReportQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindingError(ctx, err)
		return q, nil, nil, false
	}
	from, to, err := helpers.ParseDateRange(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return q, nil, nil, false
	}
	return q, from, to, true
}

func (c *ReportController) divisionReport(ctx *gin.Context) (*dto.DivisionReport, bool) {
	p, ok := principal(ctx)
	if !ok {
		return nil, false
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return nil, false
	}
	q, from, to, ok := bindReportQuery(ctx)
	if !ok {
		return nil, false
	}

	report, err := c.reportService.DivisionReport(ctx.Request.Context(), p, id, q, from, to)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return nil, false
	}
	return report, true
}

// GetDivisionReport returns the attendance sheet of a division
// @Summary Division attendance report
// @Description One row per student in roll order with per-subject and overall attendance
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Division ID"
// @Param subjectId query int false "Only this subject"
// @Param threshold query number false "Defaulter threshold (0-100)"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.DivisionReport} "Division report"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Division not found"
// @Router /divisions/{id}/report [get]
func (c *ReportController) GetDivisionReport(ctx *gin.Context) {
	report, ok := c.divisionReport(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report, ""))
}

// GetDefaulters returns the students of a division below the threshold
// @Summary Division defaulters
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Division ID"
// @Param subjectId query int false "Only this subject"
// @Param threshold query number false "Defaulter threshold (0-100)"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.DefaulterList} "Defaulters"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /divisions/{id}/defaulters [get]
func (c *ReportController) GetDefaulters(ctx *gin.Context) {
	report, ok := c.divisionReport(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewDefaulterList(report), ""))
}

// ExportDivisionReport downloads the division report as an xlsx workbook
// @Summary Export division report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path int true "Division ID"
// @Param subjectId query int false "Only this subject"
// @Param threshold query number false "Defaulter threshold (0-100)"
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Success 200 {file} file "Workbook"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /divisions/{id}/report/export [get]
func (c *ReportController) ExportDivisionReport(ctx *gin.Context) {
	report, ok := c.divisionReport(ctx)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteDivisionReport(&buf, report); err != nil {
		c.logger.Error().Err(err).Int64("divisionID", report.DivisionID).Msg("Failed to build report workbook")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+export.DivisionReportFileName(report)+`"`)
	ctx.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}
