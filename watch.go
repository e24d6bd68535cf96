package sheetdb

import (
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates a backend's cached headers when its backing files
// change on disk, so a long-lived process sharing storage with other
// processes picks up schema changes on the next read. Only meaningful for
// file-backed media.
type Watcher struct {
	watcher   *fsnotify.Watcher
	cache     *HeaderCache
	backendID string
	logger    *slog.Logger
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWatcher starts watching paths on behalf of the backend identified by
// backendID. logger may be nil.
func NewWatcher(cache *HeaderCache, backendID string, logger *slog.Logger, paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if err := fsw.Add(path); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		watcher:   fsw,
		cache:     cache,
		backendID: backendID,
		logger:    logger,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.cache.InvalidateBackend(w.backendID)
				w.logger.Debug("invalidated cached headers",
					"backend", w.backendID, "path", event.Name, "op", event.Op.String())
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watch error", "backend", w.backendID, "error", err)
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
