package desktop

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/1broseidon/deskrun/internal/eventloop"
	"github.com/1broseidon/deskrun/internal/mainthread"
	"github.com/1broseidon/deskrun/internal/platform"
)

// Option configures a Runtime.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger of the runtime. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Runtime owns the event loop and every native resource. Its methods must
// be called on the goroutine that created it unless documented otherwise;
// use Handle and Dispatcher from other goroutines.
type Runtime struct {
	loop    *eventloop.EventLoop[Message]
	ctx     *Context
	exec    *executor
	backend platform.Backend
	plugins []Plugin
	logger  *slog.Logger
}

// New creates a runtime on the process main thread.
func New(backend platform.Backend, opts ...Option) (*Runtime, error) {
	if !mainthread.IsProcessMain() {
		return nil, fmt.Errorf("create runtime: %w", ErrNotMainThread)
	}
	return NewAnyThread(backend, opts...)
}

// NewAnyThread creates a runtime bound to the calling goroutine, which is
// locked to its OS thread for the life of the process.
func NewAnyThread(backend platform.Backend, opts ...Option) (*Runtime, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("component", "desktop")

	id := mainthread.Lock()
	loop := eventloop.New[Message](eventloop.WithDiscard(func(m Message) {
		m.discard()
	}))

	ctx := &Context{
		mainThreadID:    id,
		proxy:           loop.CreateProxy(),
		webviewIDs:      newWebviewIDMap(),
		windowListeners: newListenerRegistry[WindowEventHandler](),
		menuListeners:   newListenerRegistry[MenuEventHandler](),
		logger:          logger,
	}
	exec := &executor{
		ctx:       ctx,
		backend:   backend,
		windows:   newResourceTable(),
		shortcuts: newShortcutState(backend.Shortcuts()),
		clipboard: &clipboardState{clipboard: backend.Clipboard()},
		tray:      &trayState{},
		logger:    logger,
	}
	ctx.exec = exec

	if err := backend.Attach(loop); err != nil {
		loop.Close()
		return nil, fmt.Errorf("attach %s backend: %w", backend.Name(), err)
	}
	logger.Debug("runtime created", "backend", backend.Name(), "thread", id)

	return &Runtime{
		loop:    loop,
		ctx:     ctx,
		exec:    exec,
		backend: backend,
		logger:  logger,
	}, nil
}

// Context returns the shared runtime context.
func (r *Runtime) Context() *Context {
	return r.ctx
}

func (r *Runtime) Handle() *Handle {
	return r.ctx.Handle()
}

// CreateProxy returns a proxy for application payloads. Safe from any
// goroutine.
func (r *Runtime) CreateProxy() *EventProxy {
	return &EventProxy{proxy: r.ctx.proxy}
}

// GlobalShortcutManager returns a manager for system-wide shortcuts. Safe
// from any goroutine.
func (r *Runtime) GlobalShortcutManager() *GlobalShortcutManager {
	return &GlobalShortcutManager{ctx: r.ctx, state: r.exec.shortcuts}
}

// ClipboardManager returns a clipboard manager. Safe from any goroutine.
func (r *Runtime) ClipboardManager() *ClipboardManager {
	return &ClipboardManager{ctx: r.ctx}
}

// CreateWindow builds a window and its webview before returning.
func (r *Runtime) CreateWindow(p PendingWindow) (DetachedWindow, error) {
	if !r.ctx.OnMainThread() {
		return DetachedWindow{}, ErrNotMainThread
	}
	id := r.ctx.allocateWindowID()
	built, err := buildWebview(r.backend, p)
	if err != nil {
		r.ctx.retireWindow(id)
		return DetachedWindow{}, err
	}
	r.exec.insertWindow(id, built)
	return DetachedWindow{Label: p.Label, Dispatcher: r.ctx.dispatcher(id), MenuIDs: p.MenuIDs}, nil
}

// SystemTray creates the tray icon. Only one tray exists at a time; creating
// another replaces it.
func (r *Runtime) SystemTray(cfg SystemTray) (*TrayHandle, error) {
	if !r.ctx.OnMainThread() {
		return nil, &TrayError{Err: ErrNotMainThread}
	}
	if r.exec.tray.active() {
		r.exec.tray.handle(TrayClose{}, r.logger)
	}
	t, err := r.backend.CreateTray(cfg.Icon, cfg.Menu)
	if err != nil {
		return nil, &TrayError{Err: err}
	}
	r.exec.tray.set(t)
	return &TrayHandle{proxy: r.ctx.proxy}, nil
}

// OnSystemTrayEvent registers a tray listener. Safe from any goroutine.
func (r *Runtime) OnSystemTrayEvent(h TrayEventHandler) uuid.UUID {
	return r.exec.tray.listeners.add(h)
}

// RemoveSystemTrayListener unregisters a listener added by OnSystemTrayEvent.
func (r *Runtime) RemoveSystemTrayListener(id uuid.UUID) bool {
	return r.exec.tray.listeners.remove(id)
}

// Plugin builds and installs a plugin. Plugins see events in installation
// order.
func (r *Runtime) Plugin(b PluginBuilder) {
	r.plugins = append(r.plugins, b.Build(r.ctx))
}

// RunIteration processes the events queued right now and returns without
// waiting for more.
func (r *Runtime) RunIteration(callback func(RunEvent)) RunIteration {
	if r.loop.Closed() {
		return RunIteration{WindowCount: r.exec.windows.len(), ExitRequested: true}
	}
	var it RunIteration
	r.loop.RunReturn(func(ev eventloop.Event[Message], cf *eventloop.ControlFlow) {
		it = r.dispatch(ev, cf, callback)
		if ev.Kind == eventloop.KindMainEventsCleared {
			*cf = eventloop.Exit
		}
	})
	return it
}

// Run pumps events until the application exits. On return the loop is
// closed and every message still queued has been discarded.
func (r *Runtime) Run(callback func(RunEvent)) {
	r.loop.Run(func(ev eventloop.Event[Message], cf *eventloop.ControlFlow) {
		r.dispatch(ev, cf, callback)
	})
}

func (r *Runtime) dispatch(ev eventloop.Event[Message], cf *eventloop.ControlFlow, callback func(RunEvent)) RunIteration {
	if callback == nil {
		callback = func(RunEvent) {}
	}
	prevented := false
	ectx := EventContext{Callback: callback, Handle: r.Handle()}
	for _, p := range r.plugins {
		if p.OnEvent(ev, ectx, cf) {
			prevented = true
		}
	}
	if prevented {
		if ev.Kind == eventloop.KindUser {
			// Replies a plugin left unanswered must not block their caller.
			ev.User.discard()
		}
		return RunIteration{WindowCount: r.exec.windows.len(), ExitRequested: r.exec.exiting}
	}
	return r.exec.handleEvent(ev, cf, callback)
}

// Close tears the runtime down: queued messages are discarded, remaining
// windows and the tray are destroyed and the backend is released. It must
// run on the main thread.
func (r *Runtime) Close() error {
	r.loop.Close()
	for _, id := range r.exec.windows.ids() {
		w, ok := r.exec.windows.remove(id)
		if !ok {
			continue
		}
		r.ctx.webviewIDs.remove(w.window.ID())
		w.window.Destroy()
		r.ctx.retireWindow(id)
	}
	if r.exec.tray.active() {
		r.exec.tray.handle(TrayClose{}, r.logger)
	}
	if err := r.backend.Close(); err != nil {
		return fmt.Errorf("close %s backend: %w", r.backend.Name(), err)
	}
	return nil
}
