package service

import (
	"context"
	"fmt"
	"math"

	"github.com/cinelogapp/cinelog-server/internal/domain"
	"github.com/cinelogapp/cinelog-server/internal/store"
)

// StatsService derives per-user statistics from the content store.
type StatsService struct {
	store *store.Store
}

// NewStatsService creates a new stats service.
func NewStatsService(st *store.Store) *StatsService {
	return &StatsService{store: st}
}

// GetUserStats aggregates a user's review activity. Unknown users get
// zero-valued stats rather than an error.
func (s *StatsService) GetUserStats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	reviews, err := s.store.ListReviewsByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	watchlist, err := s.store.GetWatchlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get watchlist: %w", err)
	}

	stats := &domain.UserStats{
		TotalReviews:   len(reviews),
		WatchlistCount: len(watchlist),
	}

	if len(reviews) > 0 {
		var ratingSum int
		for _, r := range reviews {
			ratingSum += r.Rating
			stats.HelpfulVotesReceived += r.HelpfulVotes
		}
		stats.AverageRating = math.Round(float64(ratingSum)/float64(len(reviews))*10) / 10
	}

	return stats, nil
}
