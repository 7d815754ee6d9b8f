package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinelogapp/cinelog-server/internal/catalog"
	"github.com/cinelogapp/cinelog-server/internal/domain"
	domainerrors "github.com/cinelogapp/cinelog-server/internal/errors"
)

func TestListMovies_Filtered(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	all := env.movies.ListMovies(ctx, catalog.Filter{})
	require.Len(t, all, 2)

	byTitle := env.movies.ListMovies(ctx, catalog.Filter{Text: "harbor"})
	require.Len(t, byTitle, 1)
	assert.Equal(t, "tt002", byTitle[0].ID)

	byRating := env.movies.ListMovies(ctx, catalog.Filter{MinRating: 8})
	require.Len(t, byRating, 1)
	assert.Equal(t, "Harbor Lights", byRating[0].Title)

	byYear := env.movies.ListMovies(ctx, catalog.Filter{Year: "1973"})
	require.Len(t, byYear, 1)
	assert.Equal(t, "tt001", byYear[0].ID)
}

func TestGetMovie(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	movie, err := env.movies.GetMovie(ctx, "tt001")
	require.NoError(t, err)
	assert.Equal(t, "The Long Goodbye", movie.Title)

	_, err = env.movies.GetMovie(ctx, "tt999")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestGetReviews_DatasetFirst(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice", domain.RoleUser)

	_, err := env.content.SubmitReview(ctx, alice, "tt001", SubmitReviewRequest{
		Rating: 7, Title: "Fresh take", Text: "x",
	})
	require.NoError(t, err)

	reviews, err := env.movies.GetReviews(ctx, "tt001")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "tt001_review_0", reviews[0].ID)
	assert.True(t, reviews[0].IsDatasetReview)
	assert.Equal(t, "user_review_1", reviews[1].ID)
	assert.False(t, reviews[1].IsDatasetReview)
}

func TestGetReviews_UnknownMovieIsEmpty(t *testing.T) {
	env := setupEnv(t)

	reviews, err := env.movies.GetReviews(context.Background(), "tt999")
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestGetWatchlist_Enriched(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice", domain.RoleUser)

	require.NoError(t, env.content.AddToWatchlist(ctx, alice, "tt002"))

	entries, err := env.movies.GetWatchlist(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Harbor Lights", entries[0].MovieTitle)
	assert.Equal(t, "1994", entries[0].MovieYear)
	assert.InDelta(t, 8.4, entries[0].MovieRating, 0.001)
}

func TestGetWatchlist_DropsVanishedMovie(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice", domain.RoleUser)

	// Recorded directly so the entry can point past the catalog.
	require.NoError(t, env.store.AddToWatchlist(ctx, alice.ID, domain.WatchlistEntry{
		MovieID:    "tt404",
		MovieTitle: "Gone Movie",
	}))
	require.NoError(t, env.content.AddToWatchlist(ctx, alice, "tt001"))

	entries, err := env.movies.GetWatchlist(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tt001", entries[0].MovieID)
}

func TestSearchMovies(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	result, err := env.movies.SearchMovies(ctx, "goodbye", 10)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "tt001", result.Hits[0].ID)

	_, err = env.movies.SearchMovies(ctx, "", 10)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
