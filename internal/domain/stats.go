package domain

// UserStats aggregates a user's review activity. Derived entirely from the
// content store at read time; unknown users get zero-valued stats.
type UserStats struct {
	TotalReviews         int     `json:"total_reviews"`
	AverageRating        float64 `json:"average_rating"` // rounded to one decimal, 0 with no reviews
	HelpfulVotesReceived int     `json:"helpful_votes_received"`
	WatchlistCount       int     `json:"watchlist_count"`
}
