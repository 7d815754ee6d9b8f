package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/cinelogapp/cinelog-server/internal/catalog"
	"github.com/cinelogapp/cinelog-server/internal/config"
	"github.com/cinelogapp/cinelog-server/internal/logger"
)

// ProvideCatalog loads the movie catalog from disk.
func ProvideCatalog(i do.Injector) (*catalog.Catalog, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cat := catalog.New(cfg.Catalog.BasePath, log.Logger)
	if err := cat.Load(); err != nil {
		return nil, err
	}

	log.Info("Movie catalog loaded", "path", cfg.Catalog.BasePath, "movies", cat.Len())

	return cat, nil
}

// CatalogWatcherHandle wraps the catalog watcher with its run loop.
// The watcher is nil when file watching is disabled.
type CatalogWatcherHandle struct {
	watcher *catalog.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogWatcherHandle) Shutdown() error {
	if h.watcher == nil {
		return nil
	}
	h.cancel()
	return h.watcher.Close()
}

// ProvideCatalogWatcher starts the catalog file watcher when enabled.
func ProvideCatalogWatcher(i do.Injector) (*CatalogWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	if !cfg.Catalog.WatchForChanges || cfg.Catalog.BasePath == "" {
		return &CatalogWatcherHandle{}, nil
	}

	cat := do.MustInvoke[*catalog.Catalog](i)
	log := do.MustInvoke[*logger.Logger](i)
	index := do.MustInvoke[*MovieIndexHandle](i)

	watcher, err := catalog.NewWatcher(cat, log.Logger)
	if err != nil {
		return nil, err
	}

	// Keep the search index in step with catalog reloads.
	watcher.OnReload = func() {
		if err := index.Rebuild(cat.List()); err != nil {
			log.Error("Search index rebuild failed", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go watcher.Run(ctx)

	log.Info("Catalog watcher started", "path", cfg.Catalog.BasePath)

	return &CatalogWatcherHandle{
		watcher: watcher,
		cancel:  cancel,
	}, nil
}
