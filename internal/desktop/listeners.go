package desktop

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type listener[H any] struct {
	id uuid.UUID
	fn H
}

// listenerRegistry holds per-window listeners. A window must be prepared
// before listeners can be added; once retired, additions are ignored.
type listenerRegistry[H any] struct {
	mu       sync.Mutex
	byWindow map[WindowID][]listener[H]
	retired  map[WindowID]struct{}
}

func newListenerRegistry[H any]() *listenerRegistry[H] {
	return &listenerRegistry[H]{
		byWindow: make(map[WindowID][]listener[H]),
		retired:  make(map[WindowID]struct{}),
	}
}

// prepare registers an empty listener list. It reports false when the id
// is or was already in use.
func (r *listenerRegistry[H]) prepare(id WindowID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byWindow[id]; ok {
		return false
	}
	if _, ok := r.retired[id]; ok {
		return false
	}
	r.byWindow[id] = nil
	return true
}

func (r *listenerRegistry[H]) prepared(id WindowID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byWindow[id]
	return ok
}

func (r *listenerRegistry[H]) add(id WindowID, lid uuid.UUID, fn H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, ok := r.byWindow[id]
	if !ok {
		if _, gone := r.retired[id]; gone {
			return
		}
		panic(fmt.Sprintf("desktop: listener registered on unknown window %s", id))
	}
	r.byWindow[id] = append(list, listener[H]{id: lid, fn: fn})
}

func (r *listenerRegistry[H]) remove(id WindowID, lid uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byWindow[id]
	for i, l := range list {
		if l.id == lid {
			r.byWindow[id] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot copies the handlers so they run without the lock held.
func (r *listenerRegistry[H]) snapshot(id WindowID) []H {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byWindow[id]
	out := make([]H, len(list))
	for i, l := range list {
		out[i] = l.fn
	}
	return out
}

func (r *listenerRegistry[H]) retire(id WindowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byWindow, id)
	r.retired[id] = struct{}{}
}

// globalListeners holds listeners that are not tied to a window.
type globalListeners[H any] struct {
	mu   sync.Mutex
	list []listener[H]
}

func (g *globalListeners[H]) add(fn H) uuid.UUID {
	id := uuid.New()
	g.mu.Lock()
	g.list = append(g.list, listener[H]{id: id, fn: fn})
	g.mu.Unlock()
	return id
}

func (g *globalListeners[H]) remove(id uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, l := range g.list {
		if l.id == id {
			g.list = append(g.list[:i:i], g.list[i+1:]...)
			return true
		}
	}
	return false
}

func (g *globalListeners[H]) snapshot() []H {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]H, len(g.list))
	for i, l := range g.list {
		out[i] = l.fn
	}
	return out
}
