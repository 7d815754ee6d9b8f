package domain

import "time"

// WatchlistEntry is one movie on a user's watchlist. The title is a
// snapshot taken when the entry was added; the catalog may drift.
type WatchlistEntry struct {
	MovieID    string    `json:"movie_id"`
	AddedAt    time.Time `json:"added_at"`
	MovieTitle string    `json:"movie_title"`
}

// EnrichedWatchlistEntry is a watchlist entry joined with current catalog
// data at read time. Entries whose movie no longer exists in the catalog
// are dropped from enriched results rather than surfaced as errors.
type EnrichedWatchlistEntry struct {
	WatchlistEntry
	MovieYear   string  `json:"movie_year"`
	MovieRating float64 `json:"movie_rating"`
}
