package search

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/cinelogapp/cinelog-server/internal/domain"
)

// MovieIndex wraps a Bleve index over the movie catalog.
//
// All public methods are safe for concurrent use; the mutex guards against
// searches running against an index mid-rebuild.
type MovieIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex
}

// New creates or opens a movie index under dataPath. An empty dataPath
// builds an in-memory index, which tests and catalog-less deployments use.
func New(dataPath string, logger *slog.Logger) (*MovieIndex, error) {
	var (
		index bleve.Index
		err   error
	)

	if dataPath == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &MovieIndex{index: index, logger: logger}, nil
	}

	indexPath := filepath.Join(dataPath, "movies.bleve")

	index, err = bleve.Open(indexPath)
	if err != nil {
		// Missing or unusable index, build a fresh one. The catalog is the
		// source of truth so nothing is lost by recreating.
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
	}

	return &MovieIndex{index: index, logger: logger}, nil
}

// Close releases the underlying index.
func (mi *MovieIndex) Close() error {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	return mi.index.Close()
}

// Rebuild reindexes the given movies in one batch, replacing prior contents.
// Documents for movies no longer in the catalog are deleted so searches
// cannot return ids the catalog no longer serves. Called at startup and
// after catalog reloads.
func (mi *MovieIndex) Rebuild(movies []*domain.Movie) error {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	batch := mi.index.NewBatch()
	keep := make(map[string]struct{}, len(movies))
	for _, movie := range movies {
		doc := NewMovieDocument(movie)
		keep[doc.ID] = struct{}{}
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("index movie %s: %w", doc.ID, err)
		}
	}

	stale, err := mi.staleIDs(keep)
	if err != nil {
		return err
	}
	for _, id := range stale {
		batch.Delete(id)
	}

	if err := mi.index.Batch(batch); err != nil {
		return fmt.Errorf("apply index batch: %w", err)
	}

	if mi.logger != nil {
		mi.logger.Info("Movie index rebuilt", "movies", len(movies))
	}
	return nil
}

// staleIDs lists indexed document ids absent from keep. Caller holds mi.mu.
func (mi *MovieIndex) staleIDs(keep map[string]struct{}) ([]string, error) {
	count, err := mi.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count indexed movies: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(count)
	result, err := mi.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("enumerate indexed movies: %w", err)
	}

	var stale []string
	for _, hit := range result.Hits {
		if _, ok := keep[hit.ID]; !ok {
			stale = append(stale, hit.ID)
		}
	}
	return stale, nil
}

// Hit is a single ranked search result.
type Hit struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
	Rating float64 `json:"rating"`
	Year   int     `json:"year"`
}

// Result holds ranked hits for a query.
type Result struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Search runs a ranked full-text query over titles, descriptions, genres,
// and people, with light fuzzy matching on the title for typo tolerance.
func (mi *MovieIndex) Search(ctx context.Context, q string, limit int) (*Result, error) {
	mi.mu.RLock()
	defer mi.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	titleMatch := bleve.NewMatchQuery(q)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)

	fuzzy := bleve.NewFuzzyQuery(q)
	fuzzy.SetField("title")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)

	rest := []query.Query{titleMatch, fuzzy}
	for _, field := range []string{"description", "genres", "directors", "main_stars"} {
		m := bleve.NewMatchQuery(q)
		m.SetField(field)
		rest = append(rest, m)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(rest...), limit, 0, false)
	req.Fields = []string{"title", "rating", "year"}

	res, err := mi.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query: q,
		Total: res.Total,
		Hits:  make([]Hit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		h := Hit{ID: hit.ID, Score: hit.Score}
		if title, ok := hit.Fields["title"].(string); ok {
			h.Title = title
		}
		if rating, ok := hit.Fields["rating"].(float64); ok {
			h.Rating = rating
		}
		if year, ok := hit.Fields["year"].(float64); ok {
			h.Year = int(year)
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}
