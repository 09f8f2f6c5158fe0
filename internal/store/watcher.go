package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the Watcher waits for file activity to settle
// before reloading.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a FileStore when files under its directories change.
type Watcher struct {
	store    *FileStore
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	// onReload, when set, is called after every reload attempt.
	onReload func(error)
}

// NewWatcher watches the task directory, the run directory and each
// per-task run directory of store.
func NewWatcher(store *FileStore, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		store:    store,
		debounce: debounce,
		logger:   store.logger,
		watcher:  fw,
	}

	tasksDir, runsDir := store.Paths()
	for _, dir := range []string{tasksDir, runsDir} {
		if err := w.add(dir); err != nil {
			fw.Close() //nolint:errcheck
			return nil, err
		}
	}
	entries, err := readDir(runsDir)
	if err != nil {
		fw.Close() //nolint:errcheck
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.add(filepath.Join(runsDir, e.Name())); err != nil {
				fw.Close() //nolint:errcheck
				return nil, err
			}
		}
	}
	return w, nil
}

func (w *Watcher) add(dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close() //nolint:errcheck

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.add(ev.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		case <-fire:
			fire = nil
			err := w.store.Reload(ctx)
			if err != nil {
				w.logger.Error("reloading benchmark data", "error", err)
			} else {
				w.logger.Info("benchmark data reloaded")
			}
			if w.onReload != nil {
				w.onReload(err)
			}
		}
	}
}
