package providers

import (
	"github.com/samber/do/v2"

	"github.com/cinelogapp/cinelog-server/internal/catalog"
	"github.com/cinelogapp/cinelog-server/internal/config"
	"github.com/cinelogapp/cinelog-server/internal/logger"
	"github.com/cinelogapp/cinelog-server/internal/search"
)

// MovieIndexHandle wraps the search index with shutdown capability.
type MovieIndexHandle struct {
	*search.MovieIndex
}

// Shutdown implements do.Shutdownable.
func (h *MovieIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideMovieIndex opens the full-text movie index and fills it from the
// current catalog.
func ProvideMovieIndex(i do.Injector) (*MovieIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	cat := do.MustInvoke[*catalog.Catalog](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.New(cfg.Data.BasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	if err := index.Rebuild(cat.List()); err != nil {
		_ = index.Close() //nolint:errcheck // Already failing
		return nil, err
	}

	log.Info("Search index ready", "movies", cat.Len())

	return &MovieIndexHandle{MovieIndex: index}, nil
}
