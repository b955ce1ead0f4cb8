package x11

import (
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowHandlers receive the events of one window. They run on the
// goroutine executing EventLoop; nil handlers are skipped.
type WindowHandlers struct {
	// Configure reports the client geometry after every ConfigureNotify.
	Configure func(x, y, width, height int)
	// CloseRequested fires on WM_DELETE_WINDOW.
	CloseRequested func()
	Destroyed      func()
	Focus          func(focused bool)
}

// Listen connects h to the window.
func (w *Window) Listen(h WindowHandlers) {
	xu := w.conn.XUtil
	id := w.win.Id

	if h.Configure != nil {
		xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
			if x, y, width, height, err := w.Geometry(); err == nil {
				h.Configure(x, y, width, height)
				return
			}
			h.Configure(int(ev.X), int(ev.Y), int(ev.Width), int(ev.Height))
		}).Connect(xu, id)
	}
	if h.CloseRequested != nil {
		w.win.WMGracefulClose(func(*xwindow.Window) {
			h.CloseRequested()
		})
	}
	if h.Destroyed != nil {
		xevent.DestroyNotifyFun(func(*xgbutil.XUtil, xevent.DestroyNotifyEvent) {
			h.Destroyed()
		}).Connect(xu, id)
	}
	if h.Focus != nil {
		xevent.FocusInFun(func(*xgbutil.XUtil, xevent.FocusInEvent) {
			h.Focus(true)
		}).Connect(xu, id)
		xevent.FocusOutFun(func(*xgbutil.XUtil, xevent.FocusOutEvent) {
			h.Focus(false)
		}).Connect(xu, id)
	}
}
