package api

import (
	"github.com/go-json-experiment/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cinelogapp/cinelog-server/internal/domain"
	"github.com/cinelogapp/cinelog-server/internal/http/response"
	"github.com/cinelogapp/cinelog-server/internal/service"
)

// handleRegister creates a new user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	profile, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, profile, s.logger)
}

// handleLogin verifies credentials and issues a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleLogout acknowledges a logout. Session tokens are stateless and
// cannot be revoked; the client discards its copy.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"message": "logged out, discard your access token",
	}, s.logger)
}

// handleGetCurrentUser returns the authenticated user's profile.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	response.Success(w, user.Profile(), s.logger)
}

// handleGetCurrentUserStats returns the authenticated user's activity stats.
func (s *Server) handleGetCurrentUserStats(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	stats, err := s.statsService.GetUserStats(r.Context(), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, stats, s.logger)
}

// handleListUsers returns every account's safe profile.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.authService.ListUsers(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, profiles, s.logger)
}

// updateRoleRequest is the request body for a role change.
type updateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// handleUpdateUserRole overwrites a user's role.
func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "user id must be an integer", s.logger)
		return
	}

	var req updateRoleRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	profile, err := s.authService.UpdateRole(r.Context(), userID, req.Role)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, profile, s.logger)
}
