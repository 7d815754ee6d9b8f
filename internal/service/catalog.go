package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinelogapp/cinelog-server/internal/catalog"
	"github.com/cinelogapp/cinelog-server/internal/domain"
	domainerrors "github.com/cinelogapp/cinelog-server/internal/errors"
	"github.com/cinelogapp/cinelog-server/internal/search"
	"github.com/cinelogapp/cinelog-server/internal/store"
)

// CatalogService answers read-only movie queries, merging dataset reviews
// with user-submitted ones.
type CatalogService struct {
	catalog *catalog.Catalog
	store   *store.Store
	index   *search.MovieIndex
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(cat *catalog.Catalog, st *store.Store, index *search.MovieIndex, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		catalog: cat,
		store:   st,
		index:   index,
		logger:  logger,
	}
}

// ListMovies returns the movies passing the filter, in catalog order.
func (s *CatalogService) ListMovies(_ context.Context, f catalog.Filter) []*domain.Movie {
	return s.catalog.Search(f)
}

// GetMovie returns a single movie by id.
func (s *CatalogService) GetMovie(_ context.Context, movieID string) (*domain.Movie, error) {
	movie, ok := s.catalog.Get(movieID)
	if !ok {
		return nil, domainerrors.NotFound("movie not found")
	}
	return movie, nil
}

// GetReviews returns a movie's reviews: dataset reviews first in file order,
// then user-submitted reviews in submission order. A movie with no reviews
// of either kind yields an empty list, not an error.
func (s *CatalogService) GetReviews(ctx context.Context, movieID string) ([]*domain.Review, error) {
	dataset := s.catalog.DatasetReviews(movieID)

	userReviews, err := s.store.ListReviewsByMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}

	merged := make([]*domain.Review, 0, len(dataset)+len(userReviews))
	merged = append(merged, dataset...)
	merged = append(merged, userReviews...)
	return merged, nil
}

// GetWatchlist returns the user's watchlist enriched with current catalog
// data. Entries whose movie has vanished from the catalog are dropped.
func (s *CatalogService) GetWatchlist(ctx context.Context, userID int64) ([]domain.EnrichedWatchlistEntry, error) {
	entries, err := s.store.GetWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get watchlist: %w", err)
	}

	enriched := make([]domain.EnrichedWatchlistEntry, 0, len(entries))
	for _, entry := range entries {
		movie, ok := s.catalog.Get(entry.MovieID)
		if !ok {
			if s.logger != nil {
				s.logger.Debug("Dropping watchlist entry for missing movie", "movie_id", entry.MovieID, "user_id", userID)
			}
			continue
		}

		entry.MovieTitle = movie.Title
		enriched = append(enriched, domain.EnrichedWatchlistEntry{
			WatchlistEntry: entry,
			MovieYear:      movie.Year(),
			MovieRating:    movie.IMDbRating,
		})
	}

	return enriched, nil
}

// SearchMovies runs a ranked full-text query against the movie index.
func (s *CatalogService) SearchMovies(ctx context.Context, query string, limit int) (*search.Result, error) {
	if query == "" {
		return nil, domainerrors.Validation("query must not be empty")
	}
	return s.index.Search(ctx, query, limit)
}

// RefreshIndex rebuilds the search index from the current catalog contents.
func (s *CatalogService) RefreshIndex(_ context.Context) error {
	return s.index.Rebuild(s.catalog.List())
}
