package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appauth "github.com/attendly/attendly/internal/app/auth"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
	"github.com/attendly/attendly/internal/pkg/websocket"
)

// FeedController upgrades requests to the live attendance feed
type FeedController struct {
	hub               *websocket.Hub
	authz             *appauth.AuthorizationService
	departmentService *services.DepartmentService
	logger            zerolog.Logger
}

// NewFeedController creates a new FeedController
func NewFeedController(hub *websocket.Hub, authz *appauth.AuthorizationService, departmentService *services.DepartmentService, logger zerolog.Logger) *FeedController {
	return &FeedController{
		hub:               hub,
		authz:             authz,
		departmentService: departmentService,
		logger:            logger,
	}
}

// WatchDepartment streams attendance.marked events of a department
// @Summary Live attendance feed
// @Description WebSocket endpoint. Pass the access token in the token query parameter
// @Tags feed
// @Security BearerAuth
// @Param id path int true "Department ID"
// @Param token query string false "Access token"
// @Success 101 "Switching protocols"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /ws/departments/{id}/attendance [get]
func (c *FeedController) WatchDepartment(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if _, err := c.departmentService.Get(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.authz.CanWatchFeed(p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	// The upgrader has already answered the request when this fails
	if err := c.hub.ServeWS(ctx.Writer, ctx.Request, id, p.UserID); err != nil {
		c.logger.Debug().Err(err).Int64("departmentID", id).Msg("Feed subscription failed")
	}
}
