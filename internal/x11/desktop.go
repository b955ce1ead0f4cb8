package x11

import (
	"github.com/BurntSushi/xgb/xproto"
)

// sourceIndication marks client messages as coming from a direct user action.
const sourceIndication = 2

// sendRootMessage delivers an EWMH client message about win to the window
// manager. The messages are built by hand because the xgbutil ewmh request
// helpers panic on this library version (uint vs int type assertion).
func (c *Connection) sendRootMessage(win xproto.Window, atomName string, data ...uint32) error {
	atom, err := c.Atom(atomName)
	if err != nil {
		return err
	}
	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// Activate raises and focuses win using _NET_ACTIVE_WINDOW.
func (c *Connection) Activate(win xproto.Window) error {
	return c.sendRootMessage(win, "_NET_ACTIVE_WINDOW", sourceIndication)
}

// Iconify minimizes win via WM_CHANGE_STATE.
func (c *Connection) Iconify(win xproto.Window) error {
	const iconicState = 3
	return c.sendRootMessage(win, "WM_CHANGE_STATE", iconicState)
}

// moveresizeMove is the _NET_WM_MOVERESIZE direction for a keyboard-less move.
const moveresizeMove = 8

// BeginMove hands an interactive move of win to the window manager,
// anchored at the pointer position.
func (c *Connection) BeginMove(win xproto.Window) error {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return err
	}
	xproto.UngrabPointer(c.XUtil.Conn(), xproto.TimeCurrentTime)
	return c.sendRootMessage(win, "_NET_WM_MOVERESIZE",
		uint32(pointer.RootX), uint32(pointer.RootY), moveresizeMove, uint32(xproto.ButtonIndex1), sourceIndication)
}
