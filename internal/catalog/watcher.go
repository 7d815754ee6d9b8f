package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce batches bursts of filesystem events (a catalog sync touches
// many files) into a single reload.
const reloadDebounce = 500 * time.Millisecond

// Watcher reloads the catalog when its directory changes on disk.
type Watcher struct {
	catalog *Catalog
	logger  *slog.Logger
	fsw     *fsnotify.Watcher

	// OnReload, if set, runs after each successful reload. Set before Run.
	OnReload func()
}

// NewWatcher creates a watcher over the catalog's base path and all movie
// subdirectories present at creation time.
func NewWatcher(c *Catalog, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{catalog: c, logger: logger, fsw: fsw}

	if err := fsw.Add(c.basePath); err != nil {
		_ = fsw.Close() //nolint:errcheck // Already failing
		return nil, fmt.Errorf("watch catalog directory: %w", err)
	}

	entries, err := os.ReadDir(c.basePath)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if err := fsw.Add(filepath.Join(c.basePath, entry.Name())); err != nil && logger != nil {
				logger.Warn("Failed to watch movie directory", "dir", entry.Name(), "error", err)
			}
		}
	}

	return w, nil
}

// Run processes filesystem events until the context is canceled, reloading
// the catalog after a debounced quiet period. New movie directories are
// added to the watch as they appear.
func (w *Watcher) Run(ctx context.Context) {
	var debounce *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.fsw.Add(event.Name); err != nil && w.logger != nil {
						w.logger.Warn("Failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := w.catalog.Load(); err != nil {
				if w.logger != nil {
					w.logger.Error("Catalog reload failed", "error", err)
				}
				continue
			}
			if w.OnReload != nil {
				w.OnReload()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("Catalog watcher error", "error", err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
