//go:build linux

package x11backend

import (
	"fmt"

	"github.com/1broseidon/deskrun/internal/platform"
	"github.com/1broseidon/deskrun/internal/x11"
)

// X11 reports device pixels; no per-monitor scaling is applied.
const scaleFactor = 1.0

var cursorShapes = map[platform.CursorIcon]uint16{
	platform.CursorDefault:    x11.CursorLeftPtr,
	platform.CursorPointer:    x11.CursorHand,
	platform.CursorText:       x11.CursorText,
	platform.CursorWait:       x11.CursorWait,
	platform.CursorCrosshair:  x11.CursorCrosshair,
	platform.CursorMove:       x11.CursorMove,
	platform.CursorNotAllowed: x11.CursorCircle,
}

type window struct {
	backend *Backend
	xw      *x11.Window

	resizable     bool
	minSize       platform.Size
	maxSize       platform.Size
	cursor        platform.CursorIcon
	cursorVisible bool
}

var _ platform.NativeWindow = (*window)(nil)

func (w *window) applyAttributes(attrs platform.WindowAttributes, size platform.PhysicalSize) error {
	w.cursorVisible = true
	if err := w.updateSizeHints(size); err != nil {
		return fmt.Errorf("failed to set size hints: %w", err)
	}
	if !attrs.Decorations {
		if err := w.xw.SetDecorations(false); err != nil {
			return fmt.Errorf("failed to disable decorations: %w", err)
		}
	}
	if attrs.Icon != nil {
		w.SetIcon(*attrs.Icon)
	}

	var states []string
	if attrs.Fullscreen {
		states = append(states, x11.StateFullscreen)
	}
	if attrs.Maximized {
		states = append(states, x11.StateMaximizedHorz, x11.StateMaximizedVert)
	}
	if attrs.AlwaysOnTop {
		states = append(states, x11.StateAbove)
	}
	if attrs.SkipTaskbar {
		states = append(states, x11.StateSkipTaskbar)
	}
	if len(states) > 0 {
		return w.xw.SetInitialStates(states...)
	}
	return nil
}

// listen forwards native events. The handlers run on the X11 event
// goroutine, so they only read their own captured state.
func (w *window) listen() {
	id := w.ID()
	var last struct {
		pos  platform.PhysicalPosition
		size platform.PhysicalSize
		seen bool
	}
	w.xw.Listen(x11.WindowHandlers{
		Configure: func(x, y, width, height int) {
			pos := platform.PhysicalPosition{X: x, Y: y}
			size := platform.PhysicalSize{Width: uint32(width), Height: uint32(height)}
			if !last.seen || size != last.size {
				w.backend.emit(platform.WindowEvent{Window: id, Kind: platform.WindowResized, Size: size})
			}
			if !last.seen || pos != last.pos {
				w.backend.emit(platform.WindowEvent{Window: id, Kind: platform.WindowMoved, Position: pos})
			}
			last.pos, last.size, last.seen = pos, size, true
		},
		CloseRequested: func() {
			w.backend.emit(platform.WindowEvent{Window: id, Kind: platform.WindowCloseRequested})
		},
		Destroyed: func() {
			w.backend.forget(id)
			w.backend.emit(platform.WindowEvent{Window: id, Kind: platform.WindowDestroyed})
		},
		Focus: func(focused bool) {
			w.backend.emit(platform.WindowEvent{Window: id, Kind: platform.WindowFocused, Focused: focused})
		},
	})
}

func (w *window) updateSizeHints(current platform.PhysicalSize) error {
	var hints x11.SizeHints
	if !w.resizable {
		hints.MinWidth, hints.MinHeight = int(current.Width), int(current.Height)
		hints.MaxWidth, hints.MaxHeight = int(current.Width), int(current.Height)
		return w.xw.SetSizeHints(hints)
	}
	if w.minSize != nil {
		s := w.minSize.ToPhysical(scaleFactor)
		hints.MinWidth, hints.MinHeight = int(s.Width), int(s.Height)
	}
	if w.maxSize != nil {
		s := w.maxSize.ToPhysical(scaleFactor)
		hints.MaxWidth, hints.MaxHeight = int(s.Width), int(s.Height)
	}
	return w.xw.SetSizeHints(hints)
}

func (w *window) ID() platform.NativeID { return platform.NativeID(w.xw.ID()) }

func (w *window) Title() string { return w.xw.Title() }

func (w *window) SetTitle(title string) { _ = w.xw.SetTitle(title) }

func (w *window) ScaleFactor() float64 { return scaleFactor }

func (w *window) Theme() platform.Theme { return platform.ThemeLight }

func (w *window) InnerPosition() (platform.PhysicalPosition, error) {
	x, y, _, _, err := w.xw.Geometry()
	if err != nil {
		return platform.PhysicalPosition{}, err
	}
	return platform.PhysicalPosition{X: x, Y: y}, nil
}

func (w *window) OuterPosition() (platform.PhysicalPosition, error) {
	pos, err := w.InnerPosition()
	if err != nil {
		return pos, err
	}
	left, _, top, _ := w.xw.FrameExtents()
	return platform.PhysicalPosition{X: pos.X - left, Y: pos.Y - top}, nil
}

func (w *window) SetOuterPosition(pos platform.Position) {
	p := pos.ToPhysical(scaleFactor)
	w.xw.Move(p.X, p.Y)
}

func (w *window) InnerSize() platform.PhysicalSize {
	_, _, width, height, err := w.xw.Geometry()
	if err != nil {
		return platform.PhysicalSize{}
	}
	return platform.PhysicalSize{Width: uint32(width), Height: uint32(height)}
}

func (w *window) OuterSize() platform.PhysicalSize {
	inner := w.InnerSize()
	left, right, top, bottom := w.xw.FrameExtents()
	return platform.PhysicalSize{
		Width:  inner.Width + uint32(left+right),
		Height: inner.Height + uint32(top+bottom),
	}
}

func (w *window) SetInnerSize(size platform.Size) {
	s := size.ToPhysical(scaleFactor)
	if !w.resizable {
		_ = w.updateSizeHints(s)
	}
	w.xw.Resize(int(s.Width), int(s.Height))
}

func (w *window) SetMinInnerSize(size platform.Size) {
	w.minSize = size
	_ = w.updateSizeHints(w.InnerSize())
}

func (w *window) SetMaxInnerSize(size platform.Size) {
	w.maxSize = size
	_ = w.updateSizeHints(w.InnerSize())
}

func (w *window) IsFullscreen() bool { return w.xw.HasState(x11.StateFullscreen) }

func (w *window) SetFullscreen(fullscreen bool) {
	_ = w.xw.SetState(x11.StateFullscreen, fullscreen)
}

func (w *window) IsMaximized() bool {
	return w.xw.HasState(x11.StateMaximizedHorz) && w.xw.HasState(x11.StateMaximizedVert)
}

func (w *window) SetMaximized(maximized bool) {
	_ = w.xw.SetState(x11.StateMaximizedHorz, maximized)
	_ = w.xw.SetState(x11.StateMaximizedVert, maximized)
}

func (w *window) SetMinimized(minimized bool) {
	if minimized {
		_ = w.xw.Iconify()
		return
	}
	w.xw.Map()
	_ = w.xw.Activate()
}

func (w *window) IsDecorated() bool { return w.xw.Decorated() }

func (w *window) SetDecorations(decorations bool) { _ = w.xw.SetDecorations(decorations) }

func (w *window) IsResizable() bool { return w.resizable }

func (w *window) SetResizable(resizable bool) {
	w.resizable = resizable
	_ = w.updateSizeHints(w.InnerSize())
}

func (w *window) IsVisible() bool { return w.xw.Mapped() }

func (w *window) SetVisible(visible bool) {
	if visible {
		w.xw.Map()
		return
	}
	w.xw.Unmap()
}

// X11 windows carry no native menu bar.
func (w *window) IsMenuVisible() bool   { return false }
func (w *window) SetMenuVisible(bool)   {}
func (w *window) RequestRedraw()        { w.xw.Redraw() }
func (w *window) SetFocus()             { _ = w.xw.Activate() }
func (w *window) DragWindow() error     { return w.xw.BeginMove() }
func (w *window) SetSkipTaskbar(s bool) { _ = w.xw.SetState(x11.StateSkipTaskbar, s) }

func (w *window) SetAlwaysOnTop(alwaysOnTop bool) {
	_ = w.xw.SetState(x11.StateAbove, alwaysOnTop)
}

func (w *window) SetIcon(icon platform.Icon) {
	_ = w.xw.SetIcon(icon.Width, icon.Height, icon.ARGB())
}

func (w *window) RequestUserAttention(kind *platform.UserAttentionType) {
	_ = w.xw.SetState(x11.StateAttention, kind != nil)
}

func (w *window) SetCursorGrab(grab bool) error { return w.xw.GrabPointer(grab) }

func (w *window) SetCursorVisible(visible bool) {
	w.cursorVisible = visible
	if !visible {
		_ = w.xw.HideCursor()
		return
	}
	w.SetCursorIcon(w.cursor)
}

func (w *window) SetCursorIcon(icon platform.CursorIcon) {
	w.cursor = icon
	if !w.cursorVisible {
		return
	}
	shape, ok := cursorShapes[icon]
	if !ok {
		shape = x11.CursorLeftPtr
	}
	_ = w.xw.SetCursorShape(shape)
}

func (w *window) SetCursorPosition(pos platform.Position) error {
	p := pos.ToPhysical(scaleFactor)
	return w.xw.WarpPointer(p.X, p.Y)
}

func (w *window) CurrentMonitor() (platform.Monitor, bool) {
	x, y, width, height, err := w.xw.Geometry()
	if err != nil {
		return platform.Monitor{}, false
	}
	if m, ok := platform.MonitorAt(w.AvailableMonitors(), x+width/2, y+height/2); ok {
		return m, true
	}
	return w.PrimaryMonitor()
}

// PrimaryMonitor relies on the RandR primary output being listed first.
func (w *window) PrimaryMonitor() (platform.Monitor, bool) {
	monitors := w.AvailableMonitors()
	if len(monitors) == 0 {
		return platform.Monitor{}, false
	}
	return monitors[0], true
}

func (w *window) AvailableMonitors() []platform.Monitor {
	monitors, err := w.backend.Monitors()
	if err != nil {
		return nil
	}
	return monitors
}

func (w *window) MenuItems() map[platform.MenuItemID]platform.MenuItemHandle {
	return map[platform.MenuItemID]platform.MenuItemHandle{}
}

func (w *window) Destroy() {
	w.backend.forget(w.ID())
	w.xw.Destroy()
}
