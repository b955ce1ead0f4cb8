package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xcursor"
)

// Cursor shapes from the X core cursor font.
const (
	CursorLeftPtr   = xcursor.LeftPtr
	CursorCrosshair = xcursor.Crosshair
	CursorText      = xcursor.XTerm
	CursorWait      = xcursor.Watch
	CursorMove      = xcursor.Fleur
	CursorHand      = xcursor.Hand2
	CursorCircle    = xcursor.Circle
)

// SetCursorShape sets the pointer shown over the window.
func (w *Window) SetCursorShape(shape uint16) error {
	cur, err := xcursor.CreateCursor(w.conn.XUtil, shape)
	if err != nil {
		return fmt.Errorf("failed to create cursor: %w", err)
	}
	return w.setCursor(cur)
}

// HideCursor replaces the pointer over the window with an empty cursor.
func (w *Window) HideCursor() error {
	conn := w.conn.XUtil.Conn()
	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return err
	}
	xproto.CreatePixmap(conn, 1, pix, xproto.Drawable(w.conn.Root), 1, 1)
	defer xproto.FreePixmap(conn, pix)

	cur, err := xproto.NewCursorId(conn)
	if err != nil {
		return err
	}
	xproto.CreateCursor(conn, cur, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0)
	return w.setCursor(cur)
}

func (w *Window) setCursor(cur xproto.Cursor) error {
	return xproto.ChangeWindowAttributesChecked(w.conn.XUtil.Conn(), w.win.Id,
		xproto.CwCursor, []uint32{uint32(cur)}).Check()
}

// WarpPointer moves the pointer to x, y relative to the window.
func (w *Window) WarpPointer(x, y int) error {
	return xproto.WarpPointerChecked(w.conn.XUtil.Conn(), 0, w.win.Id, 0, 0, 0, 0, int16(x), int16(y)).Check()
}

// GrabPointer confines the pointer to the window or releases it.
func (w *Window) GrabPointer(grab bool) error {
	conn := w.conn.XUtil.Conn()
	if !grab {
		return xproto.UngrabPointerChecked(conn, xproto.TimeCurrentTime).Check()
	}
	reply, err := xproto.GrabPointer(conn, true, w.win.Id,
		xproto.EventMaskPointerMotion|xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease,
		xproto.GrabModeAsync, xproto.GrabModeAsync, w.win.Id, 0, xproto.TimeCurrentTime).Reply()
	if err != nil {
		return err
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("pointer grab failed with status %d", reply.Status)
	}
	return nil
}
