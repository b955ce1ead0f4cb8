package app

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/1broseidon/deskrun/internal/desktop"
)

// registry tracks the windows the app created, by label.
type registry struct {
	mu      sync.RWMutex
	windows map[string]*desktop.Dispatcher
	logger  *slog.Logger
}

func newRegistry(logger *slog.Logger) *registry {
	return &registry{
		windows: make(map[string]*desktop.Dispatcher),
		logger:  logger,
	}
}

func (r *registry) add(label string, d *desktop.Dispatcher) {
	r.mu.Lock()
	r.windows[label] = d
	r.mu.Unlock()
	r.logger.Debug("window opened", "label", label, "window_id", d.WindowID())
}

// remove is called when a window is gone. Unknown labels are ignored.
func (r *registry) remove(label string) {
	r.mu.Lock()
	_, ok := r.windows[label]
	delete(r.windows, label)
	r.mu.Unlock()
	if ok {
		r.logger.Info("window closed", "label", label)
	}
}

func (r *registry) get(label string) (*desktop.Dispatcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.windows[label]
	return d, ok
}

// lookup is get with a desktop.ErrWindowNotFound error.
func (r *registry) lookup(label string) (*desktop.Dispatcher, error) {
	d, ok := r.get(label)
	if !ok {
		return nil, fmt.Errorf("%w: %s", desktop.ErrWindowNotFound, label)
	}
	return d, nil
}

// labels returns the tracked labels in sorted order.
func (r *registry) labels() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.windows))
	for label := range r.windows {
		out = append(out, label)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}
