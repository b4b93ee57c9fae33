package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates cached tables when their files change on disk.
type Watcher struct {
	cache    *Cache
	dir      string
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration
}

// NewWatcher watches dir, the directory the cache's files live in.
func NewWatcher(cache *Cache, dir string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		cache:    cache,
		dir:      dir,
		watcher:  w,
		logger:   logger,
		debounce: 250 * time.Millisecond,
	}, nil
}

// Run processes file events until ctx is done. It closes the underlying
// watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timers := make(map[Resource]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			res, ok := w.cache.Files().Lookup(filepath.Base(event.Name))
			if !ok {
				continue
			}
			w.logger.Debug("data file changed",
				zap.String("file", event.Name), zap.String("op", event.Op.String()))

			if t, exists := timers[res]; exists {
				t.Reset(w.debounce)
				continue
			}
			timers[res] = time.AfterFunc(w.debounce, func() {
				w.cache.Invalidate(res)
				w.logger.Info("resource invalidated after file change", zap.String("resource", string(res)))
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}
