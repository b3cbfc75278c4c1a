package manifest

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"femcheck.openqed.org/internal/logging"
)

// Loader holds the current manifest and reloads it when the backing file
// changes, so a long-running server picks up edits without a restart.
type Loader struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	current *Manifest
}

// NewLoader returns a loader seeded with the manifest at path, or with the
// built-in defaults when path is empty.
func NewLoader(path string, logger *slog.Logger) (*Loader, error) {
	loader := &Loader{path: path, logger: logger}

	if path == "" {
		loader.current = Default()
		return loader, nil
	}

	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	loader.current = m
	return loader, nil
}

// Get returns the current manifest. Callers must treat it as read-only.
func (l *Loader) Get() *Manifest {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Reload re-reads the manifest file. An invalid file leaves the previous
// manifest in place.
func (l *Loader) Reload() error {
	if l.path == "" {
		return nil
	}

	m, err := Load(l.path)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.current = m
	l.mu.Unlock()

	logging.LogOperation(l.logger, "manifest_reloaded",
		slog.String("path", l.path),
		slog.Int("tools", len(m.Tools)))
	return nil
}

// Watch reloads the manifest whenever the file is rewritten, until ctx is
// cancelled. Editors replace files rather than writing in place, so the
// watch is on the directory and events are filtered by name.
func (l *Loader) Watch(ctx context.Context) error {
	if l.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		logging.SafeCloseWithLogging(watcher, l.logger, "manifest_watcher")
		return err
	}

	go func() {
		defer logging.SafeCloseWithLogging(watcher, l.logger, "manifest_watcher")

		// Debounce: editors fire several events per save.
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(l.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(100*time.Millisecond, func() {
					if err := l.Reload(); err != nil {
						logging.LogError(l.logger, "manifest reload failed", err,
							slog.String("path", l.path))
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.LogError(l.logger, "manifest watcher error", err,
					slog.String("path", l.path))
			}
		}
	}()

	return nil
}
