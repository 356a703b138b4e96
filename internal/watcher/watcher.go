// Package watcher reloads external providers when the plugin directory
// changes on disk.
package watcher

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// debounce coalesces the burst of filesystem events a single install or
// update produces into one reload.
const debounce = 500 * time.Millisecond

// Watcher observes the plugin root and fires a reload callback after
// changes settle.
type Watcher struct {
	dir    string
	reload func(ctx context.Context) error
	fs     *fsnotify.Watcher
}

// New creates a watcher over dir calling reload on changes.
func New(dir string, reload func(ctx context.Context) error) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}
	return &Watcher{dir: dir, reload: reload, fs: fs}, nil
}

// Run blocks until ctx is cancelled, reloading after each settled burst
// of changes.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: %s", event)
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)

		case <-fire:
			timer = nil
			fire = nil
			if err := w.reload(ctx); err != nil {
				logger.Warn("watcher: reload failed: %v", err)
			}
		}
	}
}
