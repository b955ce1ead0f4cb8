//go:build linux

// Package x11backend drives native windows on an X11 display. Webviews and
// the system tray are not available on this backend.
package x11backend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/deskrun/internal/hotkeys"
	"github.com/1broseidon/deskrun/internal/platform"
	"github.com/1broseidon/deskrun/internal/x11"
)

// Backend is a platform.Backend on top of one X11 connection.
type Backend struct {
	conn      *x11.Connection
	shortcuts *hotkeys.Manager
	clipboard platform.SystemClipboard

	mu       sync.Mutex
	sink     platform.EventSink
	attached bool
	windows  map[platform.NativeID]*window
}

var _ platform.Backend = (*Backend)(nil)

// New connects to the display named by $DISPLAY.
func New() (platform.Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &Backend{
		conn:      conn,
		shortcuts: hotkeys.NewManager(conn.XUtil, conn.Root),
		windows:   make(map[platform.NativeID]*window),
	}, nil
}

func (b *Backend) Name() string { return "x11" }

// Attach starts the X11 event goroutine. Handlers connected by windows and
// shortcuts run there and only ever emit into sink.
func (b *Backend) Attach(sink platform.EventSink) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached {
		return errors.New("x11 backend already attached")
	}
	b.attached = true
	b.sink = sink
	b.shortcuts.SetSink(sink)
	go b.conn.EventLoop()
	return nil
}

func (b *Backend) emit(ev platform.Event) {
	b.mu.Lock()
	sink := b.sink
	b.mu.Unlock()
	if sink != nil {
		sink.Emit(ev)
	}
}

func (b *Backend) CreateWindow(attrs platform.WindowAttributes) (platform.NativeWindow, error) {
	size := platform.PhysicalSize{Width: 800, Height: 600}
	if attrs.InnerSize != nil {
		size = attrs.InnerSize.ToPhysical(scaleFactor)
	}
	var pos platform.PhysicalPosition
	if attrs.Position != nil {
		pos = attrs.Position.ToPhysical(scaleFactor)
	}

	xw, err := b.conn.CreateWindow(x11.WindowSpec{
		Title:  attrs.Title,
		X:      pos.X,
		Y:      pos.Y,
		Width:  int(size.Width),
		Height: int(size.Height),
	})
	if err != nil {
		return nil, err
	}

	w := &window{
		backend:   b,
		xw:        xw,
		resizable: attrs.Resizable,
		minSize:   attrs.MinInnerSize,
		maxSize:   attrs.MaxInnerSize,
		cursor:    platform.CursorDefault,
	}
	if err := w.applyAttributes(attrs, size); err != nil {
		xw.Destroy()
		return nil, err
	}
	w.listen()

	b.mu.Lock()
	b.windows[w.ID()] = w
	b.mu.Unlock()

	if attrs.Visible {
		xw.Map()
		if attrs.Focused {
			_ = xw.Activate()
		}
	}
	return w, nil
}

func (b *Backend) CreateWebview(platform.NativeWindow, platform.WebviewAttributes) (platform.NativeWebview, error) {
	return nil, fmt.Errorf("x11 webview: %w", platform.ErrNotSupported)
}

func (b *Backend) CreateTray(*platform.Icon, *platform.Menu) (platform.Tray, error) {
	return nil, fmt.Errorf("x11 tray: %w", platform.ErrNotSupported)
}

func (b *Backend) Monitors() ([]platform.Monitor, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	out := make([]platform.Monitor, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, platform.Monitor{
			Name:        m.Name,
			Position:    platform.PhysicalPosition{X: m.X, Y: m.Y},
			Size:        platform.PhysicalSize{Width: uint32(m.Width), Height: uint32(m.Height)},
			ScaleFactor: scaleFactor,
		})
	}
	return out, nil
}

func (b *Backend) Shortcuts() platform.ShortcutManager { return b.shortcuts }

func (b *Backend) Clipboard() platform.Clipboard { return b.clipboard }

// Close destroys the remaining windows, releases every grab and disconnects.
func (b *Backend) Close() error {
	b.mu.Lock()
	windows := make([]*window, 0, len(b.windows))
	for _, w := range b.windows {
		windows = append(windows, w)
	}
	b.windows = make(map[platform.NativeID]*window)
	b.mu.Unlock()

	for _, w := range windows {
		w.xw.Destroy()
	}
	err := b.shortcuts.UnregisterAll()
	b.conn.Quit()
	b.conn.Close()
	return err
}

func (b *Backend) forget(id platform.NativeID) {
	b.mu.Lock()
	delete(b.windows, id)
	b.mu.Unlock()
}
