package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
)

// DashboardController serves the role dashboards
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// Faculty returns the caller's teaching dashboard
// @Summary Faculty dashboard
// @Tags dashboards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.FacultyDashboard} "Faculty dashboard"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /dashboard/faculty [get]
func (c *DashboardController) Faculty(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	dashboard, err := c.dashboardService.Faculty(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, ""))
}

// HOD returns a department dashboard
// @Summary Department head dashboard
// @Description Defaults to the caller's department. Global roles pick one with departmentId
// @Tags dashboards
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Department ID"
// @Success 200 {object} dto.APIResponse{data=dto.HODDashboard} "Department dashboard"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /dashboard/hod [get]
func (c *DashboardController) HOD(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var departmentID *int64
	if !queryIDs(ctx, []string{"departmentId"}, &departmentID) {
		return
	}

	dashboard, err := c.dashboardService.HOD(ctx.Request.Context(), p, departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, ""))
}

// Admin returns the institution-wide dashboard
// @Summary Super admin dashboard
// @Tags dashboards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboard} "Admin dashboard"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /dashboard/admin [get]
func (c *DashboardController) Admin(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	dashboard, err := c.dashboardService.Admin(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, ""))
}

// Developer returns runtime and storage information
// @Summary Developer dashboard
// @Tags dashboards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DeveloperDashboard} "Developer dashboard"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /dashboard/developer [get]
func (c *DashboardController) Developer(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	dashboard, err := c.dashboardService.Developer(ctx.Request.Context(), p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, ""))
}
