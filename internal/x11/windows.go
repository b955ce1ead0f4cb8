package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// EWMH state atoms used by the backend.
const (
	StateMaximizedHorz = "_NET_WM_STATE_MAXIMIZED_HORZ"
	StateMaximizedVert = "_NET_WM_STATE_MAXIMIZED_VERT"
	StateFullscreen    = "_NET_WM_STATE_FULLSCREEN"
	StateAbove         = "_NET_WM_STATE_ABOVE"
	StateSkipTaskbar   = "_NET_WM_STATE_SKIP_TASKBAR"
	StateHidden        = "_NET_WM_STATE_HIDDEN"
	StateAttention     = "_NET_WM_STATE_DEMANDS_ATTENTION"
)

// WindowSpec is the initial geometry of a top-level window.
type WindowSpec struct {
	Title  string
	X, Y   int
	Width  int
	Height int
}

// Window is a top-level window created by this connection.
type Window struct {
	conn *Connection
	win  *xwindow.Window
}

// CreateWindow creates an unmapped top-level window.
func (c *Connection) CreateWindow(spec WindowSpec) (*Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate window id: %w", err)
	}
	win.Create(c.Root, spec.X, spec.Y, max(spec.Width, 1), max(spec.Height, 1),
		xproto.CwBackPixel|xproto.CwEventMask,
		0xffffff,
		xproto.EventMaskStructureNotify|xproto.EventMaskFocusChange)

	w := &Window{conn: c, win: win}
	if err := w.SetTitle(spec.Title); err != nil {
		win.Destroy()
		return nil, err
	}
	return w, nil
}

// ID returns the X11 window id.
func (w *Window) ID() xproto.Window {
	return w.win.Id
}

func (w *Window) Map()   { w.win.Map() }
func (w *Window) Unmap() { w.win.Unmap() }

// Destroy destroys the window and detaches its event handlers.
func (w *Window) Destroy() {
	w.win.Destroy()
}

// SetTitle sets both the EWMH and the ICCCM window name.
func (w *Window) SetTitle(title string) error {
	if err := ewmh.WmNameSet(w.conn.XUtil, w.win.Id, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	return icccm.WmNameSet(w.conn.XUtil, w.win.Id, title)
}

// Title prefers _NET_WM_NAME and falls back to WM_NAME.
func (w *Window) Title() string {
	title, err := ewmh.WmNameGet(w.conn.XUtil, w.win.Id)
	if err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	title, err = icccm.WmNameGet(w.conn.XUtil, w.win.Id)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// Geometry returns the client area in root coordinates.
func (w *Window) Geometry() (x, y, width, height int, err error) {
	conn := w.conn.XUtil.Conn()
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(w.win.Id)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(conn, w.win.Id, w.conn.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// MoveResize moves and resizes the window, leaving maximized state first.
func (w *Window) MoveResize(x, y, width, height int) {
	_ = w.SetState(StateMaximizedHorz, false)
	_ = w.SetState(StateMaximizedVert, false)

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(w.conn.XUtil, w.win.Id, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		w.win.MoveResize(x, y, width, height)
	}
}

func (w *Window) Move(x, y int)            { w.win.Move(x, y) }
func (w *Window) Resize(width, height int) { w.win.Resize(width, height) }
func (w *Window) Activate() error          { return w.conn.Activate(w.win.Id) }
func (w *Window) Iconify() error           { return w.conn.Iconify(w.win.Id) }
func (w *Window) BeginMove() error         { return w.conn.BeginMove(w.win.Id) }
func (w *Window) SetIcon(width, height int, argb []uint) error {
	return ewmh.WmIconSet(w.conn.XUtil, w.win.Id, []ewmh.WmIcon{{
		Width:  uint(width),
		Height: uint(height),
		Data:   argb,
	}})
}

// SizeHints bounds the client size. Zero values leave a bound unset.
type SizeHints struct {
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
}

// SetSizeHints publishes WM_NORMAL_HINTS.
func (w *Window) SetSizeHints(h SizeHints) error {
	nh := &icccm.NormalHints{}
	if h.MinWidth > 0 || h.MinHeight > 0 {
		nh.Flags |= icccm.SizeHintPMinSize
		nh.MinWidth, nh.MinHeight = uint(h.MinWidth), uint(h.MinHeight)
	}
	if h.MaxWidth > 0 || h.MaxHeight > 0 {
		nh.Flags |= icccm.SizeHintPMaxSize
		nh.MaxWidth, nh.MaxHeight = uint(h.MaxWidth), uint(h.MaxHeight)
	}
	return icccm.WmNormalHintsSet(w.conn.XUtil, w.win.Id, nh)
}

// States returns the _NET_WM_STATE atoms of the window.
func (w *Window) States() []string {
	states, err := ewmh.WmStateGet(w.conn.XUtil, w.win.Id)
	if err != nil {
		return nil
	}
	return states
}

// HasState reports whether the window carries the given state atom.
func (w *Window) HasState(name string) bool {
	for _, s := range w.States() {
		if s == name {
			return true
		}
	}
	return false
}

// SetState asks the window manager to add or remove a state atom.
func (w *Window) SetState(name string, on bool) error {
	action := ewmh.StateRemove
	if on {
		action = ewmh.StateAdd
	}
	return ewmh.WmStateReq(w.conn.XUtil, w.win.Id, action, name)
}

// SetDecorations toggles window manager decorations through _MOTIF_WM_HINTS.
func (w *Window) SetDecorations(on bool) error {
	decor := uint(motif.DecorationNone)
	if on {
		decor = motif.DecorationAll
	}
	return motif.WmHintsSet(w.conn.XUtil, w.win.Id, &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: decor,
	})
}

// Decorated reports whether the window manager draws decorations.
func (w *Window) Decorated() bool {
	hints, err := motif.WmHintsGet(w.conn.XUtil, w.win.Id)
	if err != nil {
		return true
	}
	return motif.Decor(hints)
}

// FrameExtents returns the window decoration sizes (if available)
func (w *Window) FrameExtents() (left, right, top, bottom int) {
	extents, err := ewmh.FrameExtentsGet(w.conn.XUtil, w.win.Id)
	if err != nil {
		// No frame extents available, return zeros
		return 0, 0, 0, 0
	}
	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom)
}

// Mapped reports whether the window is viewable.
func (w *Window) Mapped() bool {
	attrs, err := xproto.GetWindowAttributes(w.conn.XUtil.Conn(), w.win.Id).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// SetInitialStates replaces _NET_WM_STATE on a window that is not mapped
// yet. Mapped windows must go through SetState.
func (w *Window) SetInitialStates(states ...string) error {
	return ewmh.WmStateSet(w.conn.XUtil, w.win.Id, states)
}

// Redraw asks the server for an Expose of the whole window.
func (w *Window) Redraw() {
	xproto.ClearArea(w.conn.XUtil.Conn(), true, w.win.Id, 0, 0, 0, 0)
}
