package content

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce delays a reload until edits settle, since editors fire several
// events per save.
const debounce = 500 * time.Millisecond

// Watch reloads the library when files under the content root change.
// Blocks until ctx is cancelled. Errors from individual reloads are logged,
// not fatal: the previous index stays live.
func (l *Library) Watch(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	addAll := func() {
		err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // tolerate vanished directories
			}
			if d.IsDir() {
				_ = watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			logger.Warn("content watch walk failed", "error", err)
		}
	}
	addAll()

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := l.Reload(); err != nil {
				logger.Warn("content reload failed, keeping previous index", "error", err)
				continue
			}
			addAll() // new directories may have appeared
			logger.Info("content reloaded", "counts", l.Counts())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("content watcher error", "error", err)
		}
	}
}
