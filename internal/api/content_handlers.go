package api

import (
	"github.com/go-json-experiment/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cinelogapp/cinelog-server/internal/http/response"
	"github.com/cinelogapp/cinelog-server/internal/service"
)

// handleSubmitReview records a new review for a movie.
func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	var req service.SubmitReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	review, err := s.contentService.SubmitReview(r.Context(), user, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, review, s.logger)
}

// handleVoteOnReview records a helpfulness vote on a user-submitted review.
// A bare vote counts as helpful; the helpful query parameter opts out.
func (s *Server) handleVoteOnReview(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	helpful := true
	if raw := r.URL.Query().Get("helpful"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "helpful must be a boolean", s.logger)
			return
		}
		helpful = parsed
	}

	review, err := s.contentService.VoteOnReview(r.Context(), user, chi.URLParam(r, "id"), helpful)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, review, s.logger)
}

// handleReportReview files a report against a review.
func (s *Server) handleReportReview(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	var req service.ReportReviewRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	report, err := s.contentService.ReportReview(r.Context(), user, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, report, s.logger)
}

// handleListReports returns every filed report, for moderators.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.contentService.ListReports(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, reports, s.logger)
}

// handleGetWatchlist returns the user's enriched watchlist.
func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	entries, err := s.catalogService.GetWatchlist(r.Context(), user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entries, s.logger)
}

// handleAddToWatchlist puts a movie on the user's watchlist.
func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	movieID := chi.URLParam(r, "id")
	if err := s.contentService.AddToWatchlist(r.Context(), user, movieID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{
		"message": "movie added to watchlist",
	}, s.logger)
}

// handleRemoveFromWatchlist drops a movie from the user's watchlist.
func (s *Server) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	if err := s.contentService.RemoveFromWatchlist(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{
		"message": "movie removed from watchlist",
	}, s.logger)
}
