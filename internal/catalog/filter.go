package catalog

import (
	"strings"

	"github.com/cinelogapp/cinelog-server/internal/domain"
)

// Filter narrows a movie listing. Zero values mean "no constraint";
// constraints combine conjunctively.
type Filter struct {
	// Text is a case-insensitive substring match against the title.
	Text string
	// Genre is a case-insensitive substring match against any genre tag.
	Genre string
	// MinRating is an inclusive lower bound on the IMDb rating.
	MinRating float64
	// Year is matched as a substring of the publication date string.
	Year string
}

// Search returns the movies passing every constraint, in directory order.
func (c *Catalog) Search(f Filter) []*domain.Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var matched []*domain.Movie
	for _, id := range c.order {
		if movie := c.movies[id]; f.matches(movie) {
			matched = append(matched, movie)
		}
	}
	return matched
}

func (f Filter) matches(m *domain.Movie) bool {
	if f.Text != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(f.Text)) {
		return false
	}

	if f.Genre != "" {
		want := strings.ToLower(f.Genre)
		found := false
		for _, g := range m.Genres {
			if strings.Contains(strings.ToLower(g), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.MinRating > 0 && m.IMDbRating < f.MinRating {
		return false
	}

	if f.Year != "" && !strings.Contains(m.DatePublished, f.Year) {
		return false
	}

	return true
}
