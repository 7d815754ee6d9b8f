package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cinelogapp/cinelog-server/internal/auth"
	"github.com/cinelogapp/cinelog-server/internal/catalog"
	"github.com/cinelogapp/cinelog-server/internal/domain"
	"github.com/cinelogapp/cinelog-server/internal/search"
	"github.com/cinelogapp/cinelog-server/internal/store"
	"github.com/cinelogapp/cinelog-server/internal/validation"
)

// testEnv bundles the services over a temp store and a two-movie catalog.
type testEnv struct {
	store   *store.Store
	catalog *catalog.Catalog
	index   *search.MovieIndex
	auth    *AuthService
	content *ContentService
	movies  *CatalogService
	stats   *StatsService
}

func movieMetadata(title string, rating float64, date string) string {
	return fmt.Sprintf(`{
		"title": %q,
		"movieIMDbRating": %g,
		"movieGenres": ["Drama"],
		"datePublished": %q,
		"directors": ["J. Doe"], "creators": [], "mainStars": [],
		"totalRatingCount": 100, "totalUserReviews": "10", "totalCriticReviews": "5",
		"description": "A film.", "duration": 120
	}`, title, rating, date)
}

const datasetCSV = `Date of Review,User,Usefulness Vote,Total Votes,User's Rating out of 10,Review Title,Review Text
12 May 2005,olduser,40,52,9,Still holds up,A classic.
`

func writeCatalogMovie(t *testing.T, base, movieID, metadata, reviews string) {
	t.Helper()
	dir := filepath.Join(base, movieID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(metadata), 0o644))
	if reviews != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "movieReviews.csv"), []byte(reviews), 0o644))
	}
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})

	catalogDir := t.TempDir()
	writeCatalogMovie(t, catalogDir, "tt001", movieMetadata("The Long Goodbye", 7.6, "1973-03-07"), datasetCSV)
	writeCatalogMovie(t, catalogDir, "tt002", movieMetadata("Harbor Lights", 8.4, "1994-10-14"), "")

	cat := catalog.New(catalogDir, nil)
	require.NoError(t, cat.Load())

	index, err := search.New("", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, index.Close())
	})
	require.NoError(t, index.Rebuild(cat.List()))

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 30*time.Minute)
	require.NoError(t, err)

	v := validation.New()

	return &testEnv{
		store:   st,
		catalog: cat,
		index:   index,
		auth:    NewAuthService(st, tokens, v, nil),
		content: NewContentService(st, cat, v, nil),
		movies:  NewCatalogService(cat, st, index, nil),
		stats:   NewStatsService(st),
	}
}

// registerUser creates an account and returns the stored user.
func (e *testEnv) registerUser(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	ctx := context.Background()

	_, err := e.auth.Register(ctx, RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
		Role:     string(role),
	})
	require.NoError(t, err)

	user, err := e.store.GetUserByUsername(ctx, username)
	require.NoError(t, err)
	return user
}
