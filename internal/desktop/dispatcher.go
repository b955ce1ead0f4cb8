package desktop

import (
	"github.com/google/uuid"

	"github.com/1broseidon/deskrun/internal/platform"
)

// Dispatcher controls one window from any goroutine. Commands return once
// queued; queries block until the main thread answers. On the main thread
// both run inline.
type Dispatcher struct {
	windowID WindowID
	ctx      *Context
}

// WindowID returns the id of the window this dispatcher controls.
func (d *Dispatcher) WindowID() WindowID {
	return d.windowID
}

func (d *Dispatcher) send(op WindowOp) error {
	return d.ctx.sendUserMessage(WindowMessage{ID: d.windowID, Op: op})
}

func windowGetter[T any](d *Dispatcher, build func(*Reply[T]) WindowOp) (T, error) {
	return request(d.ctx, func(r *Reply[T]) Message {
		return WindowMessage{ID: d.windowID, Op: build(r)}
	})
}

// RunOnMainThread queues fn for the main thread, or runs it at once when
// called there.
func (d *Dispatcher) RunOnMainThread(fn func()) error {
	return d.ctx.sendUserMessage(TaskMessage{Fn: fn})
}

// OnWindowEvent registers a listener for this window's events.
func (d *Dispatcher) OnWindowEvent(h WindowEventHandler) uuid.UUID {
	id := uuid.New()
	d.ctx.windowListeners.add(d.windowID, id, h)
	return id
}

// OnMenuEvent registers a listener for this window's menu clicks.
func (d *Dispatcher) OnMenuEvent(h MenuEventHandler) uuid.UUID {
	id := uuid.New()
	d.ctx.menuListeners.add(d.windowID, id, h)
	return id
}

// RemoveWindowEventListener unregisters a listener returned by OnWindowEvent.
func (d *Dispatcher) RemoveWindowEventListener(id uuid.UUID) bool {
	return d.ctx.windowListeners.remove(d.windowID, id)
}

// RemoveMenuEventListener unregisters a listener returned by OnMenuEvent.
func (d *Dispatcher) RemoveMenuEventListener(id uuid.UUID) bool {
	return d.ctx.menuListeners.remove(d.windowID, id)
}

// CreateWindow creates another window through this window's runtime.
func (d *Dispatcher) CreateWindow(p PendingWindow) (DetachedWindow, error) {
	return d.ctx.createWebview(p)
}

// Queries

func (d *Dispatcher) Title() (string, error) {
	return windowGetter(d, func(r *Reply[string]) WindowOp { return GetTitle{Reply: r} })
}

func (d *Dispatcher) ScaleFactor() (float64, error) {
	return windowGetter(d, func(r *Reply[float64]) WindowOp { return GetScaleFactor{Reply: r} })
}

func (d *Dispatcher) InnerPosition() (platform.PhysicalPosition, error) {
	res, err := windowGetter(d, func(r *Reply[Result[platform.PhysicalPosition]]) WindowOp {
		return GetInnerPosition{Reply: r}
	})
	if err != nil {
		return platform.PhysicalPosition{}, err
	}
	return res.Value, res.Err
}

func (d *Dispatcher) OuterPosition() (platform.PhysicalPosition, error) {
	res, err := windowGetter(d, func(r *Reply[Result[platform.PhysicalPosition]]) WindowOp {
		return GetOuterPosition{Reply: r}
	})
	if err != nil {
		return platform.PhysicalPosition{}, err
	}
	return res.Value, res.Err
}

func (d *Dispatcher) InnerSize() (platform.PhysicalSize, error) {
	return windowGetter(d, func(r *Reply[platform.PhysicalSize]) WindowOp { return GetInnerSize{Reply: r} })
}

func (d *Dispatcher) OuterSize() (platform.PhysicalSize, error) {
	return windowGetter(d, func(r *Reply[platform.PhysicalSize]) WindowOp { return GetOuterSize{Reply: r} })
}

func (d *Dispatcher) IsFullscreen() (bool, error) {
	return windowGetter(d, func(r *Reply[bool]) WindowOp { return GetFullscreen{Reply: r} })
}

func (d *Dispatcher) IsMaximized() (bool, error) {
	return windowGetter(d, func(r *Reply[bool]) WindowOp { return GetMaximized{Reply: r} })
}

func (d *Dispatcher) IsDecorated() (bool, error) {
	return windowGetter(d, func(r *Reply[bool]) WindowOp { return GetDecorated{Reply: r} })
}

func (d *Dispatcher) IsResizable() (bool, error) {
	return windowGetter(d, func(r *Reply[bool]) WindowOp { return GetResizable{Reply: r} })
}

func (d *Dispatcher) IsVisible() (bool, error) {
	return windowGetter(d, func(r *Reply[bool]) WindowOp { return GetVisible{Reply: r} })
}

func (d *Dispatcher) IsMenuVisible() (bool, error) {
	return windowGetter(d, func(r *Reply[bool]) WindowOp { return GetMenuVisible{Reply: r} })
}

func (d *Dispatcher) IsDevtoolsOpen() (bool, error) {
	return windowGetter(d, func(r *Reply[bool]) WindowOp { return GetDevtoolsOpen{Reply: r} })
}

// CurrentMonitor returns nil when the window is on no monitor.
func (d *Dispatcher) CurrentMonitor() (*platform.Monitor, error) {
	return windowGetter(d, func(r *Reply[*platform.Monitor]) WindowOp { return GetCurrentMonitor{Reply: r} })
}

func (d *Dispatcher) PrimaryMonitor() (*platform.Monitor, error) {
	return windowGetter(d, func(r *Reply[*platform.Monitor]) WindowOp { return GetPrimaryMonitor{Reply: r} })
}

func (d *Dispatcher) AvailableMonitors() ([]platform.Monitor, error) {
	return windowGetter(d, func(r *Reply[[]platform.Monitor]) WindowOp { return GetAvailableMonitors{Reply: r} })
}

func (d *Dispatcher) Theme() (platform.Theme, error) {
	return windowGetter(d, func(r *Reply[platform.Theme]) WindowOp { return GetTheme{Reply: r} })
}

// Center moves the window to the middle of its current monitor.
func (d *Dispatcher) Center() error {
	return replyErr(windowGetter(d, func(r *Reply[error]) WindowOp { return Center{Reply: r} }))
}

// Commands

func (d *Dispatcher) RequestUserAttention(kind *platform.UserAttentionType) error {
	return d.send(RequestUserAttention{Type: kind})
}

func (d *Dispatcher) SetResizable(resizable bool) error {
	return d.send(SetResizable{Resizable: resizable})
}

func (d *Dispatcher) SetTitle(title string) error {
	return d.send(SetTitle{Title: title})
}

func (d *Dispatcher) Maximize() error   { return d.send(Maximize{}) }
func (d *Dispatcher) Unmaximize() error { return d.send(Unmaximize{}) }
func (d *Dispatcher) Minimize() error   { return d.send(Minimize{}) }
func (d *Dispatcher) Unminimize() error { return d.send(Unminimize{}) }
func (d *Dispatcher) ShowMenu() error   { return d.send(ShowMenu{}) }
func (d *Dispatcher) HideMenu() error   { return d.send(HideMenu{}) }
func (d *Dispatcher) Show() error       { return d.send(Show{}) }
func (d *Dispatcher) Hide() error       { return d.send(Hide{}) }
func (d *Dispatcher) SetFocus() error   { return d.send(SetFocus{}) }

// Close asks the event loop to close the window. It is always queued, even
// on the main thread, because closing may end the application.
func (d *Dispatcher) Close() error {
	if err := d.ctx.proxy.SendEvent(WindowMessage{ID: d.windowID, Op: Close{}}); err != nil {
		return ErrFailedToSendMessage
	}
	return nil
}

func (d *Dispatcher) SetDecorations(decorations bool) error {
	return d.send(SetDecorations{Decorations: decorations})
}

func (d *Dispatcher) SetAlwaysOnTop(alwaysOnTop bool) error {
	return d.send(SetAlwaysOnTop{AlwaysOnTop: alwaysOnTop})
}

func (d *Dispatcher) SetSize(size platform.Size) error {
	return d.send(SetSize{Size: size})
}

// SetMinSize sets or, with nil, clears the minimum inner size.
func (d *Dispatcher) SetMinSize(size platform.Size) error {
	return d.send(SetMinSize{Size: size})
}

// SetMaxSize sets or, with nil, clears the maximum inner size.
func (d *Dispatcher) SetMaxSize(size platform.Size) error {
	return d.send(SetMaxSize{Size: size})
}

func (d *Dispatcher) SetPosition(pos platform.Position) error {
	return d.send(SetPosition{Position: pos})
}

func (d *Dispatcher) SetFullscreen(fullscreen bool) error {
	return d.send(SetFullscreen{Fullscreen: fullscreen})
}

func (d *Dispatcher) SetIcon(icon platform.Icon) error {
	return d.send(SetIcon{Icon: icon})
}

func (d *Dispatcher) SetSkipTaskbar(skip bool) error {
	return d.send(SetSkipTaskbar{Skip: skip})
}

func (d *Dispatcher) SetCursorGrab(grab bool) error {
	return d.send(SetCursorGrab{Grab: grab})
}

func (d *Dispatcher) SetCursorVisible(visible bool) error {
	return d.send(SetCursorVisible{Visible: visible})
}

func (d *Dispatcher) SetCursorIcon(icon platform.CursorIcon) error {
	return d.send(SetCursorIcon{Icon: icon})
}

func (d *Dispatcher) SetCursorPosition(pos platform.Position) error {
	return d.send(SetCursorPosition{Position: pos})
}

func (d *Dispatcher) DragWindow() error    { return d.send(DragWindow{}) }
func (d *Dispatcher) RequestRedraw() error { return d.send(RequestRedraw{}) }
func (d *Dispatcher) OpenDevtools() error  { return d.send(OpenDevtools{}) }
func (d *Dispatcher) CloseDevtools() error { return d.send(CloseDevtools{}) }

func (d *Dispatcher) UpdateMenuItem(id platform.MenuItemID, update platform.MenuUpdate) error {
	return d.send(UpdateMenuItem{ID: id, Update: update})
}

// WithWebview runs fn with the native webview on the main thread.
func (d *Dispatcher) WithWebview(fn func(platform.NativeWebview)) error {
	return d.send(WithWebview{Fn: fn})
}

// Webview

func (d *Dispatcher) EvalScript(script string) error {
	return d.ctx.sendUserMessage(WebviewMessage{ID: d.windowID, Op: EvaluateScript{Script: script}})
}

func (d *Dispatcher) Print() error {
	return d.ctx.sendUserMessage(WebviewMessage{ID: d.windowID, Op: Print{}})
}
