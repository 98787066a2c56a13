package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lexsearch/internal/logger"
)

// debounceDuration coalesces rapid write events into one reload.
const debounceDuration = 100 * time.Millisecond

// Watcher watches the configuration file and invokes a reload callback
// when it changes. Editors often replace files on save, so the containing
// directory is watched rather than the file itself.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	reloadFn func() error
	done     chan struct{}
}

// NewWatcher creates a watcher for the configuration file at path.
func NewWatcher(path string, reloadFn func() error) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		filePath: filepath.Clean(path),
		reloadFn: reloadFn,
		done:     make(chan struct{}),
	}

	dir := filepath.Dir(w.filePath)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch directory %s: %w", dir, err)
	}
	return w, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watch()
}

// Stop stops watching.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}

func (w *Watcher) watch() {
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.filePath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDuration, func() {
					if err := w.reloadFn(); err != nil {
						logger.Warn("Config reload of %s failed: %v", w.filePath, err)
					} else {
						logger.Info("Config reloaded from %s", w.filePath)
					}
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error for %s: %v", w.filePath, err)

		case <-w.done:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}
