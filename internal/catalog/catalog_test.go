package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetadata = `{
	"title": "The Quiet Harbor",
	"movieIMDbRating": 8.2,
	"totalRatingCount": 120000,
	"totalUserReviews": "1.1K",
	"totalCriticReviews": "300",
	"movieGenres": ["Drama", "Mystery"],
	"directors": ["J. Doe"],
	"datePublished": "1994-10-14",
	"creators": [],
	"mainStars": ["A. Star"],
	"description": "A harbor town keeps its secrets.",
	"duration": 142
}`

const sampleReviewsCSV = `Date of Review,User,Usefulness Vote,Total Votes,User's Rating out of 10,Review Title,Review Text
12 May 2005,olduser,40,52,9,Still holds up,A classic worth rewatching.
3 June 2009,critic99,12,30,"",Mixed feelings,Not for everyone.
`

// writeMovie creates a movie directory with metadata and optional reviews.
func writeMovie(t *testing.T, base, movieID, metadata, reviews string) {
	t.Helper()

	dir := filepath.Join(base, movieID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFile), []byte(metadata), 0o644))
	if reviews != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, reviewsFile), []byte(reviews), 0o644))
	}
}

func loadedCatalog(t *testing.T, base string) *Catalog {
	t.Helper()
	c := New(base, nil)
	require.NoError(t, c.Load())
	return c
}

func TestLoad(t *testing.T) {
	base := t.TempDir()
	writeMovie(t, base, "tt0111161", sampleMetadata, sampleReviewsCSV)

	c := loadedCatalog(t, base)
	assert.Equal(t, 1, c.Len())

	movie, ok := c.Get("tt0111161")
	require.True(t, ok)
	assert.Equal(t, "tt0111161", movie.ID)
	assert.Equal(t, "The Quiet Harbor", movie.Title)
	assert.Equal(t, 8.2, movie.IMDbRating)
	assert.Equal(t, "1994", movie.Year())
}

func TestLoad_SkipsMalformedMetadata(t *testing.T) {
	base := t.TempDir()
	writeMovie(t, base, "tt0000001", sampleMetadata, "")
	writeMovie(t, base, "tt0000002", "{broken json", "")

	c := loadedCatalog(t, base)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("tt0000002")
	assert.False(t, ok)
}

func TestLoad_MissingDirectoryIsEmptyCatalog(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, c.Load())
	assert.Equal(t, 0, c.Len())
}

func TestLoad_EmptyBasePathIsEmptyCatalog(t *testing.T) {
	c := New("", nil)
	require.NoError(t, c.Load())
	assert.Equal(t, 0, c.Len())
}

func TestDatasetReviews(t *testing.T) {
	base := t.TempDir()
	writeMovie(t, base, "tt0111161", sampleMetadata, sampleReviewsCSV)

	c := loadedCatalog(t, base)
	reviews := c.DatasetReviews("tt0111161")
	require.Len(t, reviews, 2)

	assert.Equal(t, "tt0111161_review_0", reviews[0].ID)
	assert.Equal(t, "olduser", reviews[0].Username)
	assert.Equal(t, 9, reviews[0].Rating)
	assert.Equal(t, 40, reviews[0].UsefulnessVote)
	assert.Equal(t, 52, reviews[0].TotalVotes)
	assert.True(t, reviews[0].IsDatasetReview)

	// Unparseable rating degrades to zero.
	assert.Equal(t, "tt0111161_review_1", reviews[1].ID)
	assert.Equal(t, 0, reviews[1].Rating)
}

func TestDatasetReviews_NoCSV(t *testing.T) {
	base := t.TempDir()
	writeMovie(t, base, "tt0111161", sampleMetadata, "")

	c := loadedCatalog(t, base)
	assert.Empty(t, c.DatasetReviews("tt0111161"))
}

func TestList_DirectoryOrder(t *testing.T) {
	base := t.TempDir()
	writeMovie(t, base, "tt0000002", sampleMetadata, "")
	writeMovie(t, base, "tt0000001", sampleMetadata, "")

	c := loadedCatalog(t, base)
	movies := c.List()
	require.Len(t, movies, 2)
	// os.ReadDir returns entries sorted by name.
	assert.Equal(t, "tt0000001", movies[0].ID)
	assert.Equal(t, "tt0000002", movies[1].ID)
}
