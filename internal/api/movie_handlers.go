package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cinelogapp/cinelog-server/internal/catalog"
	"github.com/cinelogapp/cinelog-server/internal/http/response"
)

const defaultSearchLimit = 20

// handleListMovies returns catalog movies passing the query filters.
func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies := s.catalogService.ListMovies(r.Context(), parseFilter(r))
	response.Success(w, movies, s.logger)
}

// handleSearchMovies runs a ranked full-text query against the movie index.
func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := defaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	result, err := s.catalogService.SearchMovies(r.Context(), query, limit)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleGetMovie returns a single movie by id.
func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.catalogService.GetMovie(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, movie, s.logger)
}

// handleGetReviews returns a movie's reviews, dataset reviews first.
func (s *Server) handleGetReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.catalogService.GetReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, reviews, s.logger)
}

// parseFilter builds a catalog filter from query parameters. Unparseable
// numeric values are ignored rather than rejected.
func parseFilter(r *http.Request) catalog.Filter {
	q := r.URL.Query()

	f := catalog.Filter{
		Text:  q.Get("search"),
		Genre: q.Get("genre"),
		Year:  q.Get("year"),
	}

	if ratingStr := q.Get("min_rating"); ratingStr != "" {
		if rating, err := strconv.ParseFloat(ratingStr, 64); err == nil {
			f.MinRating = rating
		}
	}

	return f
}
