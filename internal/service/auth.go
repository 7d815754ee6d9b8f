// Package service implements the application's business logic on top of the
// store, catalog, and auth packages. Services validate input, enforce the
// domain rules, and translate storage errors into domain errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinelogapp/cinelog-server/internal/auth"
	"github.com/cinelogapp/cinelog-server/internal/domain"
	domainerrors "github.com/cinelogapp/cinelog-server/internal/errors"
	"github.com/cinelogapp/cinelog-server/internal/store"
	"github.com/cinelogapp/cinelog-server/internal/validation"
)

// AuthService handles registration, login, and token verification.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	st *store.Store,
	tokenService *auth.TokenService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:        st,
		tokenService: tokenService,
		validator:    validator,
		logger:       logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	// Role is optional and defaults to "user".
	Role string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token back to the client.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Role        domain.Role `json:"role"`
}

// Register creates a new user account and returns its safe profile.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.Profile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleUser
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrUsernameTaken):
			return nil, domainerrors.Conflict("username already registered")
		case errors.Is(err, store.ErrEmailTaken):
			return nil, domainerrors.Conflict("email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	}

	profile := user.Profile()
	return &profile, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.InvalidCredentials("incorrect username or password")
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("incorrect username or password")
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        user.Role,
	}, nil
}

// VerifyAccessToken validates a bearer token and resolves it to the current
// account. The account is looked up fresh so a role change takes effect on
// the holder's very next request.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, domainerrors.TokenExpired("token has expired")
		}
		return nil, domainerrors.Unauthorized("could not validate credentials")
	}

	user, err := s.store.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.Unauthorized("could not validate credentials")
		}
		return nil, fmt.Errorf("look up token subject: %w", err)
	}

	return user, nil
}

// ListUsers returns safe profiles of every account.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.Profile())
	}
	return profiles, nil
}

// UpdateRole overwrites a user's role.
func (s *AuthService) UpdateRole(ctx context.Context, userID int64, role domain.Role) (*domain.Profile, error) {
	if !role.Valid() {
		return nil, domainerrors.Validation("role must be one of: user moderator admin")
	}

	user, err := s.store.UpdateUserRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundf("user %d not found", userID)
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User role updated", "user_id", userID, "role", role)
	}

	profile := user.Profile()
	return &profile, nil
}
