package desktop

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/deskrun/internal/eventloop"
	"github.com/1broseidon/deskrun/internal/platform"
)

// RunIteration summarizes one pass of the event loop.
type RunIteration struct {
	WindowCount int
	// ExitRequested is set once the loop was told to terminate.
	ExitRequested bool
}

// executor is the main-thread half of the runtime. It owns every native
// handle; nothing outside this file and closing.go dereferences them.
type executor struct {
	ctx     *Context
	backend platform.Backend
	windows *resourceTable

	shortcuts *shortcutState
	clipboard *clipboardState
	tray      *trayState

	exiting bool
	logger  *slog.Logger
}

func answer[T any](logger *slog.Logger, r *Reply[T], v T) {
	if r == nil {
		return
	}
	if !r.Send(v) {
		logger.Warn("reply already answered", "type", fmt.Sprintf("%T", v))
	}
}

// handleUserMessage executes m. It is the target of the same-thread fast
// path and of queued messages alike.
func (e *executor) handleUserMessage(m Message) {
	switch m := m.(type) {
	case TaskMessage:
		m.Fn()
	case WindowMessage:
		if _, ok := m.Op.(Close); ok {
			// Closing needs the loop callback; queue it for handleEvent.
			if err := e.ctx.proxy.SendEvent(m); err != nil {
				e.logger.Warn("close dropped, event loop closed", "window", m.ID)
			}
			return
		}
		e.handleWindowMessage(m.ID, m.Op)
	case WebviewMessage:
		e.handleWebviewMessage(m.ID, m.Op)
	case TrayMessage:
		e.tray.handle(m.Op, e.logger)
	case GlobalShortcutMessage:
		e.shortcuts.handle(m.Op, e.logger)
	case ClipboardMessage:
		e.clipboard.handle(m.Op, e.logger)
	case CreateWebviewMessage:
		built, err := m.Build(e.backend)
		if err != nil {
			e.logger.Error("failed to create webview", "window", m.ID, "err", err)
			e.ctx.retireWindow(m.ID)
			return
		}
		e.insertWindow(m.ID, built)
	case CreateWindowMessage:
		label, attrs := m.Build()
		win, err := e.backend.CreateWindow(attrs)
		if err != nil {
			e.ctx.retireWindow(m.ID)
			answer(e.logger, m.Reply, error(fmt.Errorf("%w %q: %w", ErrCreateWindow, label, err)))
			return
		}
		e.insertWindow(m.ID, Built{Label: label, Window: win})
		answer[error](e.logger, m.Reply, nil)
	case UserEventMessage:
		// Delivered to the application callback by handleEvent.
	}
}

func (e *executor) insertWindow(id WindowID, b Built) {
	e.ctx.webviewIDs.insert(b.Window.ID(), id)
	e.windows.insert(id, &windowWrapper{
		label:     b.Label,
		window:    b.Window,
		webview:   b.Webview,
		menuItems: b.Window.MenuItems(),
		ipc:       b.IPC,
	})
	if b.Center {
		if err := centerWindow(b.Window); err != nil {
			e.logger.Warn("failed to center window", "label", b.Label, "err", err)
		}
	}
	e.logger.Debug("window created", "window", id, "label", b.Label, "native", b.Window.ID())
}

func centerWindow(win platform.NativeWindow) error {
	m, ok := win.CurrentMonitor()
	if !ok {
		return ErrFailedToGetMonitor
	}
	size := win.OuterSize()
	x := (int(m.Size.Width) - int(size.Width)) / 2
	y := (int(m.Size.Height) - int(size.Height)) / 2
	win.SetOuterPosition(platform.PhysicalPosition{X: m.Position.X + x, Y: m.Position.Y + y})
	return nil
}

func monitorPtr(m platform.Monitor, ok bool) *platform.Monitor {
	if !ok {
		return nil
	}
	return &m
}

func (e *executor) handleWindowMessage(id WindowID, op WindowOp) {
	switch o := op.(type) {
	case AddEventListener:
		e.ctx.windowListeners.add(id, o.ID, o.Handler)
		return
	case AddMenuEventListener:
		e.ctx.menuListeners.add(id, o.ID, o.Handler)
		return
	}

	w, ok := e.windows.get(id)
	if !ok {
		e.logger.Debug("dropping message for unknown window", "window", id, "op", fmt.Sprintf("%T", op))
		dropReply(op)
		return
	}
	win, log := w.window, e.logger

	switch o := op.(type) {
	// Queries.
	case GetTitle:
		answer(log, o.Reply, win.Title())
	case GetScaleFactor:
		answer(log, o.Reply, win.ScaleFactor())
	case GetInnerPosition:
		pos, err := win.InnerPosition()
		answer(log, o.Reply, Result[platform.PhysicalPosition]{Value: pos, Err: err})
	case GetOuterPosition:
		pos, err := win.OuterPosition()
		answer(log, o.Reply, Result[platform.PhysicalPosition]{Value: pos, Err: err})
	case GetInnerSize:
		answer(log, o.Reply, win.InnerSize())
	case GetOuterSize:
		answer(log, o.Reply, win.OuterSize())
	case GetFullscreen:
		answer(log, o.Reply, win.IsFullscreen())
	case GetMaximized:
		answer(log, o.Reply, win.IsMaximized())
	case GetDecorated:
		answer(log, o.Reply, win.IsDecorated())
	case GetResizable:
		answer(log, o.Reply, win.IsResizable())
	case GetVisible:
		answer(log, o.Reply, win.IsVisible())
	case GetMenuVisible:
		answer(log, o.Reply, win.IsMenuVisible())
	case GetDevtoolsOpen:
		answer(log, o.Reply, w.webview != nil && w.webview.IsDevtoolsOpen())
	case GetCurrentMonitor:
		answer(log, o.Reply, monitorPtr(win.CurrentMonitor()))
	case GetPrimaryMonitor:
		answer(log, o.Reply, monitorPtr(win.PrimaryMonitor()))
	case GetAvailableMonitors:
		answer(log, o.Reply, win.AvailableMonitors())
	case GetTheme:
		answer(log, o.Reply, win.Theme())
	case Center:
		answer(log, o.Reply, centerWindow(win))

	// Commands.
	case RequestUserAttention:
		win.RequestUserAttention(o.Type)
	case SetResizable:
		win.SetResizable(o.Resizable)
	case SetTitle:
		win.SetTitle(o.Title)
	case Maximize:
		win.SetMaximized(true)
	case Unmaximize:
		win.SetMaximized(false)
	case Minimize:
		win.SetMinimized(true)
	case Unminimize:
		win.SetMinimized(false)
	case ShowMenu:
		win.SetMenuVisible(true)
	case HideMenu:
		win.SetMenuVisible(false)
	case Show:
		win.SetVisible(true)
	case Hide:
		win.SetVisible(false)
	case SetDecorations:
		win.SetDecorations(o.Decorations)
	case SetAlwaysOnTop:
		win.SetAlwaysOnTop(o.AlwaysOnTop)
	case SetSize:
		win.SetInnerSize(o.Size)
	case SetMinSize:
		win.SetMinInnerSize(o.Size)
	case SetMaxSize:
		win.SetMaxInnerSize(o.Size)
	case SetPosition:
		win.SetOuterPosition(o.Position)
	case SetFullscreen:
		win.SetFullscreen(o.Fullscreen)
	case SetFocus:
		win.SetFocus()
	case SetIcon:
		win.SetIcon(o.Icon)
	case SetSkipTaskbar:
		win.SetSkipTaskbar(o.Skip)
	case SetCursorGrab:
		if err := win.SetCursorGrab(o.Grab); err != nil {
			log.Warn("failed to grab cursor", "window", id, "err", err)
		}
	case SetCursorVisible:
		win.SetCursorVisible(o.Visible)
	case SetCursorIcon:
		win.SetCursorIcon(o.Icon)
	case SetCursorPosition:
		if err := win.SetCursorPosition(o.Position); err != nil {
			log.Warn("failed to set cursor position", "window", id, "err", err)
		}
	case DragWindow:
		if err := win.DragWindow(); err != nil {
			log.Warn("failed to drag window", "window", id, "err", err)
		}
	case RequestRedraw:
		win.RequestRedraw()
	case UpdateMenuItem:
		item, ok := w.menuItems[o.ID]
		if !ok {
			log.Warn("menu item not found", "window", id, "item", o.ID)
			return
		}
		o.Update.Apply(item)
	case OpenDevtools:
		if w.webview != nil {
			w.webview.OpenDevtools()
		}
	case CloseDevtools:
		if w.webview != nil {
			w.webview.CloseDevtools()
		}
	case WithWebview:
		if w.webview != nil {
			o.Fn(w.webview)
		}
	default:
		log.Error("unhandled window message", "op", fmt.Sprintf("%T", op))
		dropReply(op)
	}
}

func (e *executor) handleWebviewMessage(id WindowID, op WebviewOp) {
	if o, ok := op.(WebviewFocusChanged); ok {
		e.notifyWindow(id, WindowFocused{Focused: o.Focused})
		return
	}
	w, ok := e.windows.get(id)
	if !ok || w.webview == nil {
		e.logger.Debug("dropping webview message", "window", id, "op", fmt.Sprintf("%T", op))
		return
	}
	switch o := op.(type) {
	case EvaluateScript:
		if err := w.webview.EvaluateScript(o.Script); err != nil {
			e.logger.Warn("failed to evaluate script", "window", id, "err", err)
		}
	case Print:
		if err := w.webview.Print(); err != nil {
			e.logger.Warn("failed to print", "window", id, "err", err)
		}
	}
}

func (e *executor) notifyWindow(id WindowID, ev WindowEvent) {
	for _, h := range e.ctx.windowListeners.snapshot(id) {
		h(ev)
	}
}

// handleEvent is the loop callback shared by Run and RunIteration.
func (e *executor) handleEvent(ev eventloop.Event[Message], cf *eventloop.ControlFlow, callback func(RunEvent)) RunIteration {
	if *cf != eventloop.Exit {
		*cf = eventloop.Wait
	}

	switch ev.Kind {
	case eventloop.KindNewEvents:
		switch ev.Cause {
		case eventloop.StartInit:
			callback(Ready{})
		case eventloop.StartPoll:
			callback(Resumed{})
		}
	case eventloop.KindMainEventsCleared:
		callback(MainEventsCleared{})
	case eventloop.KindLoopDestroyed:
		callback(Exit{})
	case eventloop.KindNative:
		e.handleNativeEvent(ev.Native, cf, callback)
	case eventloop.KindUser:
		switch m := ev.User.(type) {
		case WindowMessage:
			if _, ok := m.Op.(Close); ok {
				e.closeWindow(m.ID, cf, callback, true)
				break
			}
			e.handleUserMessage(m)
		case UserEventMessage:
			callback(UserEvent{Payload: m.Payload})
		default:
			e.handleUserMessage(m)
		}
	}

	if e.exiting {
		*cf = eventloop.Exit
	}
	return RunIteration{WindowCount: e.windows.len(), ExitRequested: e.exiting}
}

func (e *executor) handleNativeEvent(ev platform.Event, cf *eventloop.ControlFlow, callback func(RunEvent)) {
	switch ne := ev.(type) {
	case platform.WindowEvent:
		e.handleWindowEvent(ne, cf, callback)
	case platform.MenuEvent:
		if ne.Origin == platform.ContextMenu {
			e.tray.notify(TrayMenuItemClick{ID: ne.ItemID})
			return
		}
		id, ok := e.ctx.webviewIDs.get(ne.Window)
		if !ok {
			return
		}
		for _, h := range e.ctx.menuListeners.snapshot(id) {
			h(MenuEvent{MenuItemID: ne.ItemID})
		}
	case platform.TrayEvent:
		e.tray.notify(trayEventFrom(ne))
	case platform.ShortcutEvent:
		if h, ok := e.shortcuts.handler(ne.ID); ok {
			h()
		}
	case platform.IPCEvent:
		id, ok := e.ctx.webviewIDs.get(ne.Window)
		if !ok {
			return
		}
		if w, ok := e.windows.get(id); ok && w.ipc != nil {
			w.ipc(e.ctx.dispatcher(id), ne.Payload)
		}
	}
}

func (e *executor) handleWindowEvent(ne platform.WindowEvent, cf *eventloop.ControlFlow, callback func(RunEvent)) {
	id, ok := e.ctx.webviewIDs.get(ne.Window)
	if !ok {
		return
	}
	w, ok := e.windows.get(id)
	if !ok {
		return
	}

	if ne.Kind == platform.WindowFocused && ne.Focused && w.webview != nil && w.window.IsVisible() {
		w.webview.Focus()
	}

	if we := windowEventFrom(ne); we != nil {
		callback(WindowEventReceived{Label: w.label, Event: we})
		e.notifyWindow(id, we)
	}

	switch ne.Kind {
	case platform.WindowCloseRequested:
		e.requestClose(id, cf, callback)
	case platform.WindowDestroyed:
		// Destroyed behind our back, by the window manager or the user.
		e.closeWindow(id, cf, callback, false)
	case platform.WindowResized:
		if w.webview != nil {
			w.webview.Resize()
		}
	}
}
