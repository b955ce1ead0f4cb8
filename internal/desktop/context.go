package desktop

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/deskrun/internal/eventloop"
	"github.com/1broseidon/deskrun/internal/mainthread"
	"github.com/1broseidon/deskrun/internal/platform"
)

// Context is the state shared by every Dispatcher and Handle of a runtime.
// It may be used from any goroutine; the executor it points to is only
// entered on the main thread.
type Context struct {
	mainThreadID mainthread.ID
	proxy        *eventloop.Proxy[Message]
	webviewIDs   *webviewIDMap

	windowListeners *listenerRegistry[WindowEventHandler]
	menuListeners   *listenerRegistry[MenuEventHandler]

	exec   *executor
	logger *slog.Logger
}

// OnMainThread reports whether the caller runs on the event loop thread.
func (c *Context) OnMainThread() bool {
	return mainthread.Current() == c.mainThreadID
}

// Handle returns a Handle backed by this context.
func (c *Context) Handle() *Handle {
	return &Handle{ctx: c}
}

// sendUserMessage executes m inline on the main thread and queues it
// through the proxy everywhere else.
func (c *Context) sendUserMessage(m Message) error {
	if c.OnMainThread() {
		if c.proxy.Closed() {
			m.discard()
			return ErrFailedToSendMessage
		}
		c.exec.handleUserMessage(m)
		return nil
	}
	if err := c.proxy.SendEvent(m); err != nil {
		return ErrFailedToSendMessage
	}
	return nil
}

// prepareWindow registers empty listener lists for id. It reports false
// when the id is or was in use.
func (c *Context) prepareWindow(id WindowID) bool {
	if !c.windowListeners.prepare(id) {
		return false
	}
	c.menuListeners.prepare(id)
	return true
}

func (c *Context) allocateWindowID() WindowID {
	for {
		if id := randomWindowID(); c.prepareWindow(id) {
			return id
		}
	}
}

func (c *Context) retireWindow(id WindowID) {
	c.windowListeners.retire(id)
	c.menuListeners.retire(id)
}

func (c *Context) dispatcher(id WindowID) *Dispatcher {
	return &Dispatcher{windowID: id, ctx: c}
}

// createWebview allocates an id and queues construction of the window. The
// returned Dispatcher is usable at once; calls made before the window exists
// are queued behind its construction.
func (c *Context) createWebview(p PendingWindow) (DetachedWindow, error) {
	id := c.allocateWindowID()
	build := func(backend platform.Backend) (Built, error) {
		return buildWebview(backend, p)
	}
	if err := c.sendUserMessage(CreateWebviewMessage{ID: id, Build: build}); err != nil {
		c.retireWindow(id)
		return DetachedWindow{}, err
	}
	return DetachedWindow{Label: p.Label, Dispatcher: c.dispatcher(id), MenuIDs: p.MenuIDs}, nil
}

func buildWebview(backend platform.Backend, p PendingWindow) (Built, error) {
	win, err := backend.CreateWindow(p.Window)
	if err != nil {
		return Built{}, fmt.Errorf("%w %q: %w", ErrCreateWindow, p.Label, err)
	}
	wv, err := backend.CreateWebview(win, p.Webview)
	if err != nil {
		win.Destroy()
		return Built{}, fmt.Errorf("%w %q: %w", ErrCreateWebview, p.Label, err)
	}
	return Built{Label: p.Label, Window: win, Webview: wv, IPC: p.IPC, Center: p.Center}, nil
}
