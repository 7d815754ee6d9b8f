package domain

// Movie is a catalog entry. The catalog is read-only: movies are sourced
// from per-movie metadata files and never mutated by the API. The ID is
// the movie's directory name in the catalog (an IMDb-style identifier).
//
// JSON field names follow the catalog's metadata.json schema.
type Movie struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	IMDbRating         float64  `json:"movieIMDbRating"`
	TotalRatingCount   int      `json:"totalRatingCount"`
	TotalUserReviews   string   `json:"totalUserReviews"`
	TotalCriticReviews string   `json:"totalCriticReviews"`
	MetaScore          string   `json:"metaScore,omitempty"`
	Genres             []string `json:"movieGenres"`
	Directors          []string `json:"directors"`
	DatePublished      string   `json:"datePublished"`
	Creators           []string `json:"creators"`
	MainStars          []string `json:"mainStars"`
	Description        string   `json:"description"`
	Duration           int      `json:"duration"`
}

// Year returns the four-digit year prefix of the publication date,
// or an empty string when the date is too short.
func (m *Movie) Year() string {
	if len(m.DatePublished) < 4 {
		return ""
	}
	return m.DatePublished[:4]
}
