// Package search provides full-text movie search using Bleve.
package search

import (
	"strconv"

	"github.com/cinelogapp/cinelog-server/internal/domain"
)

// MovieDocument is the shape of a movie in the Bleve index.
type MovieDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Directors   []string `json:"directors"`
	MainStars   []string `json:"main_stars"`
	Rating      float64  `json:"rating"`
	Year        int      `json:"year"`
}

// NewMovieDocument projects a catalog movie into its index document.
func NewMovieDocument(m *domain.Movie) *MovieDocument {
	year, _ := strconv.Atoi(m.Year()) //nolint:errcheck // Unparseable year indexes as 0
	return &MovieDocument{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Genres:      m.Genres,
		Directors:   m.Directors,
		MainStars:   m.MainStars,
		Rating:      m.IMDbRating,
		Year:        year,
	}
}

// ToMap converts the document to a map with lowercase field names matching
// the index mapping. Bleve would otherwise index Go's capitalized field names.
func (d *MovieDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":     d.ID,
		"title":  d.Title,
		"rating": d.Rating,
		"year":   d.Year,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.Directors) > 0 {
		m["directors"] = d.Directors
	}
	if len(d.MainStars) > 0 {
		m["main_stars"] = d.MainStars
	}
	return m
}
