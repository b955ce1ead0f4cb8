// Package headless is an in-memory window system. It behaves like a real
// backend toward the event loop and lets callers inject the native events a
// user would produce.
package headless

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/deskrun/internal/platform"
)

// DefaultMonitor is the single monitor of a backend built without WithMonitors.
var DefaultMonitor = platform.Monitor{
	Name:        "HEADLESS-1",
	Size:        platform.PhysicalSize{Width: 1920, Height: 1080},
	ScaleFactor: 1,
}

// Option configures a Backend.
type Option func(*Backend)

// WithMonitors replaces the monitor layout. The first monitor is primary.
// Passing none simulates a session without displays.
func WithMonitors(monitors ...platform.Monitor) Option {
	return func(b *Backend) {
		b.monitors = append([]platform.Monitor(nil), monitors...)
	}
}

// WithGuard calls fn with the operation name before every native call.
// Tests use it to assert thread affinity.
func WithGuard(fn func(op string)) Option {
	return func(b *Backend) {
		b.guard = fn
	}
}

// Backend is the headless window system.
type Backend struct {
	mu       sync.Mutex
	sink     platform.EventSink
	guard    func(op string)
	monitors []platform.Monitor
	nextID   platform.NativeID
	windows  map[platform.NativeID]*Window
	tray     *Tray
	closed   bool

	failWindow  error
	failWebview error

	shortcuts *shortcuts
	clipboard *clipboardStore
}

var _ platform.Backend = (*Backend)(nil)

// New creates a headless backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		monitors: []platform.Monitor{DefaultMonitor},
		windows:  make(map[platform.NativeID]*Window),
	}
	b.shortcuts = &shortcuts{backend: b, registered: make(map[platform.AcceleratorID]platform.Accelerator)}
	b.clipboard = &clipboardStore{backend: b}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Name() string { return "headless" }

func (b *Backend) Attach(sink platform.EventSink) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sink != nil {
		return errors.New("headless backend already attached")
	}
	b.sink = sink
	return nil
}

func (b *Backend) check(op string) {
	if b.guard != nil {
		b.guard(op)
	}
}

func (b *Backend) emit(ev platform.Event) {
	b.mu.Lock()
	sink := b.sink
	b.mu.Unlock()
	if sink != nil {
		sink.Emit(ev)
	}
}

// FailNextWindow makes the next CreateWindow call return err.
func (b *Backend) FailNextWindow(err error) {
	b.mu.Lock()
	b.failWindow = err
	b.mu.Unlock()
}

// FailNextWebview makes the next CreateWebview call return err.
func (b *Backend) FailNextWebview(err error) {
	b.mu.Lock()
	b.failWebview = err
	b.mu.Unlock()
}

func (b *Backend) CreateWindow(attrs platform.WindowAttributes) (platform.NativeWindow, error) {
	b.check("CreateWindow")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.New("headless backend closed")
	}
	if err := b.failWindow; err != nil {
		b.failWindow = nil
		return nil, err
	}
	b.nextID++
	w := newWindow(b, b.nextID, attrs)
	b.windows[w.id] = w
	return w, nil
}

func (b *Backend) CreateWebview(window platform.NativeWindow, attrs platform.WebviewAttributes) (platform.NativeWebview, error) {
	b.check("CreateWebview")
	w, ok := window.(*Window)
	if !ok || w.backend != b {
		return nil, fmt.Errorf("window %d does not belong to the headless backend", window.ID())
	}
	b.mu.Lock()
	err := b.failWebview
	b.failWebview = nil
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	wv := &Webview{window: w, attrs: attrs}
	w.mu.Lock()
	w.webview = wv
	w.mu.Unlock()
	return wv, nil
}

func (b *Backend) CreateTray(icon *platform.Icon, menu *platform.Menu) (platform.Tray, error) {
	b.check("CreateTray")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tray != nil {
		return nil, errors.New("tray already exists")
	}
	b.tray = newTray(b, icon, menu)
	return b.tray, nil
}

func (b *Backend) Monitors() ([]platform.Monitor, error) {
	b.check("Monitors")
	return b.monitorList(), nil
}

func (b *Backend) monitorList() []platform.Monitor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]platform.Monitor(nil), b.monitors...)
}

func (b *Backend) Shortcuts() platform.ShortcutManager { return b.shortcuts }

func (b *Backend) Clipboard() platform.Clipboard { return b.clipboard }

func (b *Backend) Close() error {
	b.mu.Lock()
	b.closed = true
	windows := make([]*Window, 0, len(b.windows))
	for _, w := range b.windows {
		windows = append(windows, w)
	}
	b.windows = make(map[platform.NativeID]*Window)
	b.mu.Unlock()

	for _, w := range windows {
		w.markDestroyed()
	}
	return nil
}

func (b *Backend) forget(id platform.NativeID) {
	b.mu.Lock()
	delete(b.windows, id)
	b.mu.Unlock()
}

// Window returns a live window by native id.
func (b *Backend) Window(id platform.NativeID) (*Window, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[id]
	return w, ok
}

// Windows returns the live windows ordered by native id.
func (b *Backend) Windows() []*Window {
	b.mu.Lock()
	out := make([]*Window, 0, len(b.windows))
	for _, w := range b.windows {
		out = append(out, w)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// WindowByTitle returns the first live window with the given title.
func (b *Backend) WindowByTitle(title string) (*Window, bool) {
	for _, w := range b.Windows() {
		if w.State().Title == title {
			return w, true
		}
	}
	return nil, false
}

// Tray returns the tray icon, if one was created.
func (b *Backend) Tray() (*Tray, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tray, b.tray != nil
}

func (b *Backend) dropTray(t *Tray) {
	b.mu.Lock()
	if b.tray == t {
		b.tray = nil
	}
	b.mu.Unlock()
}
