// Package catalog serves the read-only movie catalog from disk.
//
// The catalog directory holds one subdirectory per movie id, each containing
// a metadata.json and an optional movieReviews.csv of dataset reviews. The
// catalog is loaded into memory and swapped atomically on reload; API reads
// never touch the filesystem.
package catalog

import (
	"github.com/go-json-experiment/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/cinelogapp/cinelog-server/internal/domain"
)

const (
	metadataFile = "metadata.json"
	reviewsFile  = "movieReviews.csv"
)

// Catalog holds the in-memory movie catalog.
type Catalog struct {
	basePath string
	logger   *slog.Logger

	mu      sync.RWMutex
	movies  map[string]*domain.Movie
	order   []string // directory order, for stable listings
	reviews map[string][]*domain.Review
}

// New creates an empty catalog rooted at basePath. Call Load to populate it.
// An empty basePath yields a permanently empty catalog.
func New(basePath string, logger *slog.Logger) *Catalog {
	return &Catalog{
		basePath: basePath,
		logger:   logger,
		movies:   make(map[string]*domain.Movie),
		reviews:  make(map[string][]*domain.Review),
	}
}

// Load scans the catalog directory and replaces the in-memory catalog with
// what it finds. Individual malformed movies are skipped with a log line;
// a missing catalog directory degrades to an empty catalog.
func (c *Catalog) Load() error {
	movies := make(map[string]*domain.Movie)
	reviews := make(map[string][]*domain.Review)
	var order []string

	if c.basePath != "" {
		entries, err := os.ReadDir(c.basePath)
		if err != nil {
			if os.IsNotExist(err) {
				if c.logger != nil {
					c.logger.Warn("Catalog directory does not exist, serving empty catalog", "path", c.basePath)
				}
			} else {
				return fmt.Errorf("read catalog directory: %w", err)
			}
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			movieID := entry.Name()
			movie, err := c.loadMovie(movieID)
			if err != nil {
				if c.logger != nil {
					c.logger.Warn("Skipping movie with unreadable metadata", "movie_id", movieID, "error", err)
				}
				continue
			}

			movies[movieID] = movie
			order = append(order, movieID)
			reviews[movieID] = c.loadDatasetReviews(movieID)
		}
	}

	c.mu.Lock()
	c.movies = movies
	c.order = order
	c.reviews = reviews
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("Catalog loaded", "movies", len(movies))
	}
	return nil
}

// loadMovie reads and decodes one movie's metadata. The movie id is the
// directory name, not part of the metadata file.
func (c *Catalog) loadMovie(movieID string) (*domain.Movie, error) {
	path := filepath.Join(c.basePath, movieID, metadataFile)

	//#nosec G304 -- Path is derived from the configured catalog directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var movie domain.Movie
	if err := json.Unmarshal(data, &movie); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	movie.ID = movieID

	return &movie, nil
}

// loadDatasetReviews reads a movie's bundled review CSV. Any failure
// degrades to no dataset reviews for that movie.
func (c *Catalog) loadDatasetReviews(movieID string) []*domain.Review {
	path := filepath.Join(c.basePath, movieID, reviewsFile)

	//#nosec G304 -- Path is derived from the configured catalog directory
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	reviews, err := parseDatasetReviews(movieID, f)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("Failed to parse dataset reviews", "movie_id", movieID, "error", err)
		}
		return nil
	}
	return reviews
}

// List returns all movies in directory order.
func (c *Catalog) List() []*domain.Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()

	movies := make([]*domain.Movie, 0, len(c.order))
	for _, id := range c.order {
		movies = append(movies, c.movies[id])
	}
	return movies
}

// Get returns the movie with the given id.
func (c *Catalog) Get(movieID string) (*domain.Movie, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	movie, ok := c.movies[movieID]
	return movie, ok
}

// DatasetReviews returns the dataset-sourced reviews bundled with a movie.
func (c *Catalog) DatasetReviews(movieID string) []*domain.Review {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.reviews[movieID]
}

// Len returns the number of movies in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.movies)
}
