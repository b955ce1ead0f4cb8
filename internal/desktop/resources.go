package desktop

import (
	"sort"
	"sync"

	"github.com/1broseidon/deskrun/internal/platform"
)

// windowWrapper owns the native handles of one window. Only the executor
// reads or writes it.
type windowWrapper struct {
	label     string
	window    platform.NativeWindow
	webview   platform.NativeWebview
	menuItems map[platform.MenuItemID]platform.MenuItemHandle
	ipc       IPCHandler
}

type resourceTable struct {
	mu      sync.Mutex
	windows map[WindowID]*windowWrapper
}

func newResourceTable() *resourceTable {
	return &resourceTable{windows: make(map[WindowID]*windowWrapper)}
}

func (t *resourceTable) get(id WindowID) (*windowWrapper, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.windows[id]
	return w, ok
}

func (t *resourceTable) insert(id WindowID, w *windowWrapper) {
	t.mu.Lock()
	t.windows[id] = w
	t.mu.Unlock()
}

func (t *resourceTable) remove(id WindowID) (*windowWrapper, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.windows[id]
	delete(t.windows, id)
	return w, ok
}

func (t *resourceTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}

// ids returns the window ids in ascending order.
func (t *resourceTable) ids() []WindowID {
	t.mu.Lock()
	out := make([]WindowID, 0, len(t.windows))
	for id := range t.windows {
		out = append(out, id)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// webviewIDMap resolves native window ids to window ids.
type webviewIDMap struct {
	mu sync.Mutex
	m  map[platform.NativeID]WindowID
}

func newWebviewIDMap() *webviewIDMap {
	return &webviewIDMap{m: make(map[platform.NativeID]WindowID)}
}

func (w *webviewIDMap) get(native platform.NativeID) (WindowID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.m[native]
	return id, ok
}

func (w *webviewIDMap) insert(native platform.NativeID, id WindowID) {
	w.mu.Lock()
	w.m[native] = id
	w.mu.Unlock()
}

func (w *webviewIDMap) remove(native platform.NativeID) {
	w.mu.Lock()
	delete(w.m, native)
	w.mu.Unlock()
}

// byLabel returns the id of the live window called label.
func (t *resourceTable) byLabel(label string) (WindowID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, w := range t.windows {
		if w.label == label {
			return id, true
		}
	}
	return 0, false
}

// labels maps every live window label to its id.
func (t *resourceTable) labels() map[string]WindowID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]WindowID, len(t.windows))
	for id, w := range t.windows {
		out[w.label] = id
	}
	return out
}
