package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/app/repositories"
	"github.com/attendly/attendly/internal/pkg/apperrors"
	"github.com/attendly/attendly/internal/pkg/auth"
)

// Auth errors
var (
	ErrInvalidCredentials = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "invalid email or password")
	ErrAccountDisabled    = apperrors.NewCustomError(apperrors.ErrAccountDisabled, "account is disabled")
	ErrWrongPassword      = apperrors.NewCustomError(apperrors.ErrValidationFailed, "current password is incorrect")
)

// AuthService handles authentication operations
type AuthService struct {
	users      repositories.UserStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(users repositories.UserStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates a staff member and issues an access token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Info().Int64("userID", user.ID).Msg("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
	} else {
		user.LastLoginAt = &now
	}

	accessToken, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.RoleType)).Msg("User logged in")

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.NewUserResponse(user),
	}, nil
}

// Me returns the caller's account
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// ChangePassword replaces the caller's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return ErrWrongPassword
	}
	if req.CurrentPassword == req.NewPassword {
		return apperrors.NewValidationError("new password must differ from the current one")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	s.logger.Info().Int64("userID", userID).Msg("Password changed")
	return nil
}
