package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/services"
	"github.com/attendly/attendly/internal/middleware"
	"github.com/attendly/attendly/internal/pkg/apperrors"
)

// UserController handles staff account management
type UserController struct {
	userService *services.UserService
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

// CreateUser creates a staff account
// @Summary Create a user
// @Description Super admins create any account; department heads create faculty of their department
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "Account data"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse} "User created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	user, err := c.userService.Create(ctx.Request.Context(), p, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(user, "User created"))
}

// ListUsers lists staff accounts
// @Summary List users
// @Description Lists the accounts visible to the caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role" Enums(SUPER_ADMIN, DEVELOPER, HOD, FACULTY)
// @Param departmentId query int false "Filter by department"
// @Param active query bool false "Only active accounts"
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse} "Users"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var filter services.UserListFilter
	if !queryIDs(ctx, []string{"departmentId"}, &filter.DepartmentID) {
		return
	}
	if raw := ctx.Query("role"); raw != "" {
		role := models.RoleType(raw)
		if !role.Valid() {
			middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("invalid role"))
			return
		}
		filter.RoleType = &role
	}
	filter.ActiveOnly = ctx.Query("active") == "true"

	users, err := c.userService.List(ctx.Request.Context(), p, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users, ""))
}

// GetUser returns one account
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.userService.Get(ctx.Request.Context(), p, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, ""))
}

// UpdateUser edits an account
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.UpdateUserRequest true "Account data"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Email exists, or the user has allocations and cannot change department"
// @Router /users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	user, err := c.userService.Update(ctx.Request.Context(), p, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "User updated"))
}

// ResetPassword sets a new password on an account
// @Summary Reset user password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.APIResponse "Password reset"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /users/{id}/password [put]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	if err := c.userService.ResetPassword(ctx.Request.Context(), p, id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Password reset"))
}

// DeleteUser removes an account
// @Summary Delete user
// @Tags users
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204 "User deleted"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "User has allocations or lectures"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.userService.Delete(ctx.Request.Context(), p, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
