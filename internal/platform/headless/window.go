package headless

import (
	"errors"
	"sync"

	"github.com/1broseidon/deskrun/internal/platform"
)

var errDestroyed = errors.New("window destroyed")

// WindowState is a point-in-time copy of a headless window.
type WindowState struct {
	Title         string
	Position      platform.PhysicalPosition
	Size          platform.PhysicalSize
	MinSize       *platform.PhysicalSize
	MaxSize       *platform.PhysicalSize
	ScaleFactor   float64
	Fullscreen    bool
	Maximized     bool
	Minimized     bool
	Decorated     bool
	Resizable     bool
	Visible       bool
	MenuVisible   bool
	AlwaysOnTop   bool
	Focused       bool
	SkipTaskbar   bool
	CursorGrab    bool
	CursorVisible bool
	CursorIcon    platform.CursorIcon
	Icon          *platform.Icon
	Theme         platform.Theme
	Attention     *platform.UserAttentionType
	Redraws       int
	Drags         int
	Destroyed     bool
	MenuItems     map[platform.MenuItemID]platform.MenuItemState
}

// Window is a headless native window.
type Window struct {
	id      platform.NativeID
	backend *Backend

	mu        sync.Mutex
	state     WindowState
	minSize   platform.Size
	maxSize   platform.Size
	menuItems map[platform.MenuItemID]*platform.MenuItemState
	webview   *Webview
}

var _ platform.NativeWindow = (*Window)(nil)

func newWindow(b *Backend, id platform.NativeID, attrs platform.WindowAttributes) *Window {
	scale := 1.0
	if len(b.monitors) > 0 && b.monitors[0].ScaleFactor > 0 {
		scale = b.monitors[0].ScaleFactor
	}
	w := &Window{
		id:        id,
		backend:   b,
		minSize:   attrs.MinInnerSize,
		maxSize:   attrs.MaxInnerSize,
		menuItems: platform.MenuItemStates(attrs.Menu),
	}
	w.state = WindowState{
		Title:         attrs.Title,
		ScaleFactor:   scale,
		Fullscreen:    attrs.Fullscreen,
		Maximized:     attrs.Maximized,
		Decorated:     attrs.Decorations,
		Resizable:     attrs.Resizable,
		Visible:       attrs.Visible,
		MenuVisible:   attrs.Menu != nil,
		AlwaysOnTop:   attrs.AlwaysOnTop,
		Focused:       attrs.Focused,
		SkipTaskbar:   attrs.SkipTaskbar,
		CursorVisible: true,
		CursorIcon:    platform.CursorDefault,
		Icon:          attrs.Icon,
	}
	if attrs.Theme != nil {
		w.state.Theme = *attrs.Theme
	}
	size := attrs.InnerSize
	if size == nil {
		size = platform.LogicalSize{Width: 800, Height: 600}
	}
	w.state.Size = w.constrain(size.ToPhysical(scale))
	if attrs.Position != nil {
		w.state.Position = attrs.Position.ToPhysical(scale)
	}
	return w
}

func (w *Window) ID() platform.NativeID { return w.id }

// State returns a copy of the window state.
func (w *Window) State() WindowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	if w.minSize != nil {
		lo := w.minSize.ToPhysical(s.ScaleFactor)
		s.MinSize = &lo
	}
	if w.maxSize != nil {
		hi := w.maxSize.ToPhysical(s.ScaleFactor)
		s.MaxSize = &hi
	}
	s.MenuItems = make(map[platform.MenuItemID]platform.MenuItemState, len(w.menuItems))
	for id, item := range w.menuItems {
		s.MenuItems[id] = *item
	}
	return s
}

// Webview returns the webview attached to the window, if any.
func (w *Window) Webview() (*Webview, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.webview, w.webview != nil
}

// constrain applies min and max sizes; callers hold w.mu.
func (w *Window) constrain(size platform.PhysicalSize) platform.PhysicalSize {
	if w.minSize != nil {
		lo := w.minSize.ToPhysical(w.state.ScaleFactor)
		size.Width = max(size.Width, lo.Width)
		size.Height = max(size.Height, lo.Height)
	}
	if w.maxSize != nil {
		hi := w.maxSize.ToPhysical(w.state.ScaleFactor)
		if hi.Width > 0 {
			size.Width = min(size.Width, hi.Width)
		}
		if hi.Height > 0 {
			size.Height = min(size.Height, hi.Height)
		}
	}
	return size
}

func (w *Window) update(op string, fn func(s *WindowState)) {
	w.backend.check(op)
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.state)
}

func (w *Window) read(op string) WindowState {
	w.backend.check(op)
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Window) Title() string                    { return w.read("Title").Title }
func (w *Window) ScaleFactor() float64             { return w.read("ScaleFactor").ScaleFactor }
func (w *Window) Theme() platform.Theme            { return w.read("Theme").Theme }
func (w *Window) InnerSize() platform.PhysicalSize { return w.read("InnerSize").Size }
func (w *Window) OuterSize() platform.PhysicalSize { return w.read("OuterSize").Size }
func (w *Window) IsFullscreen() bool               { return w.read("IsFullscreen").Fullscreen }
func (w *Window) IsMaximized() bool                { return w.read("IsMaximized").Maximized }
func (w *Window) IsDecorated() bool                { return w.read("IsDecorated").Decorated }
func (w *Window) IsResizable() bool                { return w.read("IsResizable").Resizable }
func (w *Window) IsVisible() bool                  { return w.read("IsVisible").Visible }
func (w *Window) IsMenuVisible() bool              { return w.read("IsMenuVisible").MenuVisible }

func (w *Window) InnerPosition() (platform.PhysicalPosition, error) {
	s := w.read("InnerPosition")
	if s.Destroyed {
		return platform.PhysicalPosition{}, errDestroyed
	}
	return s.Position, nil
}

func (w *Window) OuterPosition() (platform.PhysicalPosition, error) {
	s := w.read("OuterPosition")
	if s.Destroyed {
		return platform.PhysicalPosition{}, errDestroyed
	}
	return s.Position, nil
}

func (w *Window) SetTitle(title string) {
	w.update("SetTitle", func(s *WindowState) { s.Title = title })
}

func (w *Window) SetOuterPosition(pos platform.Position) {
	w.update("SetOuterPosition", func(s *WindowState) { s.Position = pos.ToPhysical(s.ScaleFactor) })
}

func (w *Window) SetInnerSize(size platform.Size) {
	w.update("SetInnerSize", func(s *WindowState) { s.Size = w.constrain(size.ToPhysical(s.ScaleFactor)) })
}

func (w *Window) SetMinInnerSize(size platform.Size) {
	w.update("SetMinInnerSize", func(s *WindowState) {
		w.minSize = size
		s.Size = w.constrain(s.Size)
	})
}

func (w *Window) SetMaxInnerSize(size platform.Size) {
	w.update("SetMaxInnerSize", func(s *WindowState) {
		w.maxSize = size
		s.Size = w.constrain(s.Size)
	})
}

func (w *Window) SetFullscreen(fullscreen bool) {
	w.update("SetFullscreen", func(s *WindowState) { s.Fullscreen = fullscreen })
}

func (w *Window) SetMaximized(maximized bool) {
	w.update("SetMaximized", func(s *WindowState) { s.Maximized = maximized })
}

func (w *Window) SetMinimized(minimized bool) {
	w.update("SetMinimized", func(s *WindowState) { s.Minimized = minimized })
}

func (w *Window) SetDecorations(decorations bool) {
	w.update("SetDecorations", func(s *WindowState) { s.Decorated = decorations })
}

func (w *Window) SetResizable(resizable bool) {
	w.update("SetResizable", func(s *WindowState) { s.Resizable = resizable })
}

func (w *Window) SetVisible(visible bool) {
	w.update("SetVisible", func(s *WindowState) { s.Visible = visible })
}

func (w *Window) SetMenuVisible(visible bool) {
	w.update("SetMenuVisible", func(s *WindowState) { s.MenuVisible = visible })
}

func (w *Window) SetAlwaysOnTop(alwaysOnTop bool) {
	w.update("SetAlwaysOnTop", func(s *WindowState) { s.AlwaysOnTop = alwaysOnTop })
}

func (w *Window) SetFocus() {
	w.update("SetFocus", func(s *WindowState) { s.Focused = true })
}

func (w *Window) SetSkipTaskbar(skip bool) {
	w.update("SetSkipTaskbar", func(s *WindowState) { s.SkipTaskbar = skip })
}

func (w *Window) SetIcon(icon platform.Icon) {
	w.update("SetIcon", func(s *WindowState) { s.Icon = &icon })
}

func (w *Window) RequestUserAttention(kind *platform.UserAttentionType) {
	w.update("RequestUserAttention", func(s *WindowState) { s.Attention = kind })
}

func (w *Window) RequestRedraw() {
	w.update("RequestRedraw", func(s *WindowState) { s.Redraws++ })
}

func (w *Window) SetCursorGrab(grab bool) error {
	w.update("SetCursorGrab", func(s *WindowState) { s.CursorGrab = grab })
	return nil
}

func (w *Window) SetCursorVisible(visible bool) {
	w.update("SetCursorVisible", func(s *WindowState) { s.CursorVisible = visible })
}

func (w *Window) SetCursorIcon(icon platform.CursorIcon) {
	w.update("SetCursorIcon", func(s *WindowState) { s.CursorIcon = icon })
}

func (w *Window) SetCursorPosition(platform.Position) error {
	w.backend.check("SetCursorPosition")
	return nil
}

func (w *Window) DragWindow() error {
	w.update("DragWindow", func(s *WindowState) { s.Drags++ })
	return nil
}

func (w *Window) CurrentMonitor() (platform.Monitor, bool) {
	s := w.read("CurrentMonitor")
	monitors := w.backend.monitorList()
	cx := s.Position.X + int(s.Size.Width)/2
	cy := s.Position.Y + int(s.Size.Height)/2
	if m, ok := platform.MonitorAt(monitors, cx, cy); ok {
		return m, true
	}
	if len(monitors) > 0 {
		return monitors[0], true
	}
	return platform.Monitor{}, false
}

func (w *Window) PrimaryMonitor() (platform.Monitor, bool) {
	w.backend.check("PrimaryMonitor")
	monitors := w.backend.monitorList()
	if len(monitors) == 0 {
		return platform.Monitor{}, false
	}
	return monitors[0], true
}

func (w *Window) AvailableMonitors() []platform.Monitor {
	w.backend.check("AvailableMonitors")
	return w.backend.monitorList()
}

func (w *Window) MenuItems() map[platform.MenuItemID]platform.MenuItemHandle {
	w.backend.check("MenuItems")
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[platform.MenuItemID]platform.MenuItemHandle, len(w.menuItems))
	for id, item := range w.menuItems {
		out[id] = &lockedItem{mu: &w.mu, item: item}
	}
	return out
}

// Destroy removes the window and reports WindowDestroyed to the loop.
func (w *Window) Destroy() {
	w.backend.check("Destroy")
	if !w.markDestroyed() {
		return
	}
	w.backend.forget(w.id)
	w.backend.emit(platform.WindowEvent{Window: w.id, Kind: platform.WindowDestroyed})
}

func (w *Window) markDestroyed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Destroyed {
		return false
	}
	w.state.Destroyed = true
	w.state.Visible = false
	return true
}

// lockedItem guards a menu item with its window's mutex.
type lockedItem struct {
	mu   *sync.Mutex
	item *platform.MenuItemState
}

func (l *lockedItem) SetEnabled(enabled bool) {
	l.mu.Lock()
	l.item.SetEnabled(enabled)
	l.mu.Unlock()
}

func (l *lockedItem) SetTitle(title string) {
	l.mu.Lock()
	l.item.SetTitle(title)
	l.mu.Unlock()
}

func (l *lockedItem) SetSelected(selected bool) {
	l.mu.Lock()
	l.item.SetSelected(selected)
	l.mu.Unlock()
}
