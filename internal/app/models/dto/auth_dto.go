package dto

import (
	"time"

	"github.com/attendly/attendly/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"hod.ce@attendly.local"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"43200"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *UserResponse `json:"user"`
}

// UserResponse represents a staff account without its password hash
type UserResponse struct {
	ID           int64           `json:"id" example:"3"`
	Email        string          `json:"email" example:"a.patil@college.edu"`
	FirstName    string          `json:"firstName" example:"Anita"`
	LastName     string          `json:"lastName" example:"Patil"`
	FullName     string          `json:"fullName" example:"Anita Patil"`
	RoleType     models.RoleType `json:"roleType" example:"FACULTY" enums:"SUPER_ADMIN,DEVELOPER,HOD,FACULTY"`
	DepartmentID *int64          `json:"departmentId,omitempty" example:"1"`
	IsActive     bool            `json:"isActive" example:"true"`
	LastLoginAt  *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// NewUserResponse converts a user model
func NewUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		FullName:     user.FullName(),
		RoleType:     user.RoleType,
		DepartmentID: user.DepartmentID,
		IsActive:     user.IsActive,
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
	}
}

// NewUserResponses converts a list of user models
func NewUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// CreateUserRequest represents staff account creation data
type CreateUserRequest struct {
	Email        string          `json:"email" binding:"required,email,max=255"`
	Password     string          `json:"password" binding:"required,min=8,max=72"`
	FirstName    string          `json:"firstName" binding:"required,min=1,max=80"`
	LastName     string          `json:"lastName" binding:"max=80"`
	RoleType     models.RoleType `json:"roleType" binding:"required,oneof=SUPER_ADMIN DEVELOPER HOD FACULTY"`
	DepartmentID *int64          `json:"departmentId" binding:"omitempty,gt=0"`
}

// UpdateUserRequest represents staff account update data
type UpdateUserRequest struct {
	Email        string `json:"email" binding:"required,email,max=255"`
	FirstName    string `json:"firstName" binding:"required,min=1,max=80"`
	LastName     string `json:"lastName" binding:"max=80"`
	DepartmentID *int64 `json:"departmentId" binding:"omitempty,gt=0"`
	IsActive     *bool  `json:"isActive"`
}

// ResetPasswordRequest sets a new password for another account
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

// ChangePasswordRequest changes the caller's own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}
