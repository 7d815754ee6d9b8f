package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cinelogapp/cinelog-server/internal/domain"
)

// setupTestStore creates a store backed by a temp directory, cleaned up with
// the test.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func newTestUser(username string) *domain.User {
	return &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$argon2id$stub",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
}

func newTestReview(userID int64, username, movieID string, rating int) *domain.Review {
	return &domain.Review{
		MovieID:      movieID,
		UserID:       userID,
		Username:     username,
		Rating:       rating,
		Title:        "A fine picture",
		Text:         "Would watch again.",
		DateOfReview: time.Now().Format("2 January 2006"),
		CreatedAt:    time.Now(),
	}
}
