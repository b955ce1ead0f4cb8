package desktop

import (
	"github.com/1broseidon/deskrun/internal/eventloop"
	"github.com/1broseidon/deskrun/internal/platform"
)

// Handle reaches the runtime from any goroutine without a window.
type Handle struct {
	ctx *Context
}

// EventProxy posts application payloads to the Run callback.
type EventProxy struct {
	proxy *eventloop.Proxy[Message]
}

// SendEvent queues payload for delivery as a UserEvent.
func (p *EventProxy) SendEvent(payload any) error {
	if err := p.proxy.SendEvent(UserEventMessage{Payload: payload}); err != nil {
		return ErrEventLoopClosed
	}
	return nil
}

// CreateProxy returns a proxy for application payloads.
func (h *Handle) CreateProxy() *EventProxy {
	return &EventProxy{proxy: h.ctx.proxy}
}

// CreateWindow queues construction of a window with a webview.
func (h *Handle) CreateWindow(p PendingWindow) (DetachedWindow, error) {
	return h.ctx.createWebview(p)
}

// CreateCoreWindow builds a plain window and waits until it exists. build
// runs on the main thread.
func (h *Handle) CreateCoreWindow(build func() (string, platform.WindowAttributes)) (*Dispatcher, error) {
	id := h.ctx.allocateWindowID()
	err := replyErr(request(h.ctx, func(r *Reply[error]) Message {
		return CreateWindowMessage{ID: id, Build: build, Reply: r}
	}))
	if err != nil {
		h.ctx.retireWindow(id)
		return nil, err
	}
	return h.ctx.dispatcher(id), nil
}

// WindowID resolves a native window id.
func (h *Handle) WindowID(native platform.NativeID) (WindowID, bool) {
	return h.ctx.webviewIDs.get(native)
}

// Window returns a dispatcher for the live window called label.
func (h *Handle) Window(label string) (*Dispatcher, bool) {
	id, ok := h.ctx.exec.windows.byLabel(label)
	if !ok {
		return nil, false
	}
	return h.ctx.dispatcher(id), true
}

// Windows returns a dispatcher for every live window keyed by label.
func (h *Handle) Windows() map[string]*Dispatcher {
	labels := h.ctx.exec.windows.labels()
	out := make(map[string]*Dispatcher, len(labels))
	for label, id := range labels {
		out[label] = h.ctx.dispatcher(id)
	}
	return out
}

// SendEvent queues m. Unlike the dispatcher calls it never runs inline.
func (h *Handle) SendEvent(m Message) error {
	if err := h.ctx.proxy.SendEvent(m); err != nil {
		return ErrFailedToSendMessage
	}
	return nil
}

// RunOnMainThread runs fn on the main thread, inline when already there.
func (h *Handle) RunOnMainThread(fn func()) error {
	return h.ctx.sendUserMessage(TaskMessage{Fn: fn})
}

// RemoveSystemTray destroys the tray icon, if any.
func (h *Handle) RemoveSystemTray() error {
	return h.SendEvent(TrayMessage{Op: TrayClose{}})
}

// Exit ends the event loop after the current iteration. No ExitRequested
// event is emitted.
func (h *Handle) Exit() error {
	return h.SendEvent(TaskMessage{Fn: func() {
		h.ctx.exec.exiting = true
	}})
}
