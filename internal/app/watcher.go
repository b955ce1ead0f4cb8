package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// configWatcher reloads the app when its config file changes. The parent
// directory is watched so editors that replace the file are seen too.
type configWatcher struct {
	path     string
	debounce time.Duration
	reload   func() error
	logger   *slog.Logger
}

// Run watches until ctx is cancelled. A missing config directory disables
// watching without failing the app.
func (w *configWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		w.logger.Warn("config watching disabled", "dir", dir, "error", err)
		<-ctx.Done()
		return nil
	}
	w.logger.Info("config watcher started", "path", w.path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		case <-fire:
			fire = nil
			w.reloadNow()
		}
	}
}

func (w *configWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *configWatcher) reloadNow() {
	// A panicking reload must not take the app down.
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("config reload panic recovered", "error", r)
		}
	}()
	if err := w.reload(); err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "error", err)
	}
}
