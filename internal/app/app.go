// Package app runs a deskrun application: it turns a config file into
// windows, global shortcuts and a tray icon, serves the control socket and
// reloads the config when it changes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/deskrun/internal/config"
	"github.com/1broseidon/deskrun/internal/desktop"
	"github.com/1broseidon/deskrun/internal/ipc"
	"github.com/1broseidon/deskrun/internal/platform"
	"github.com/1broseidon/deskrun/internal/platform/headless"
	"github.com/1broseidon/deskrun/internal/platform/x11backend"
	"github.com/1broseidon/deskrun/internal/runtimepath"
)

// Options configures New.
type Options struct {
	// ConfigPath is the config file; empty means config.DefaultConfigPath.
	ConfigPath string
	// Headless forces the in-memory backend.
	Headless bool
	// Backend overrides backend selection entirely.
	Backend platform.Backend
	// SocketPath overrides the ipc socket from the config.
	SocketPath string
	// PIDPath overrides the pid file location.
	PIDPath string
	Logger  *slog.Logger
	// AnyThread builds the runtime on the calling goroutine instead of
	// requiring the process main thread.
	AnyThread bool
	// WatchDebounce delays reloads after config file writes.
	WatchDebounce time.Duration
}

// App is a running deskrun application. New and Run must be called on the
// same goroutine; the ipc.Controller methods are safe from any goroutine.
type App struct {
	rt        *desktop.Runtime
	handle    *desktop.Handle
	shortcuts *desktop.GlobalShortcutManager
	backend   platform.Backend
	logger    *slog.Logger

	configPath string
	socketPath string
	pidPath    string
	debounce   time.Duration

	mu  sync.RWMutex
	res *config.LoadResult

	windows *registry
	tray    *desktop.TrayHandle
	trayIDs map[platform.MenuItemID]string

	started time.Time
	ready   chan struct{}
	stopped chan struct{}
}

// New loads the config and builds the runtime. No window exists until Run.
func New(opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	cfg := res.Config

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		}))
	}

	backend := opts.Backend
	if backend == nil {
		if backend, err = openBackend(cfg, opts.Headless, logger); err != nil {
			return nil, err
		}
	}

	build := desktop.New
	if opts.AnyThread {
		build = desktop.NewAnyThread
	}
	rt, err := build(backend, desktop.WithLogger(logger))
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	socketPath := opts.SocketPath
	if socketPath == "" && cfg.IPC.Enabled {
		if socketPath, err = runtimepath.SocketPath(cfg.IPC.Socket); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}
	pidPath := opts.PIDPath
	if pidPath == "" {
		if pidPath, err = runtimepath.PIDPath(); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}
	debounce := opts.WatchDebounce
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	return &App{
		rt:         rt,
		handle:     rt.Handle(),
		shortcuts:  rt.GlobalShortcutManager(),
		backend:    backend,
		logger:     logger,
		configPath: res.Path,
		socketPath: socketPath,
		pidPath:    pidPath,
		debounce:   debounce,
		res:        res,
		windows:    newRegistry(logger),
		trayIDs:    map[platform.MenuItemID]string{},
		ready:      make(chan struct{}),
		stopped:    make(chan struct{}),
	}, nil
}

// openBackend picks the native backend. auto falls back to headless when no
// X server is reachable.
func openBackend(cfg *config.Config, forceHeadless bool, logger *slog.Logger) (platform.Backend, error) {
	if forceHeadless || cfg.Backend == config.BackendHeadless {
		return headless.New(), nil
	}
	err := resolveX11Env(cfg, os.Getenv).export()
	if err == nil {
		var b platform.Backend
		if b, err = x11backend.New(); err == nil {
			return b, nil
		}
	}
	if cfg.Backend == config.BackendX11 {
		return nil, err
	}
	logger.Warn("x11 backend unavailable, using headless", "error", err)
	return headless.New(), nil
}

// Ready is closed once startup windows exist and the event loop runs.
func (a *App) Ready() <-chan struct{} { return a.ready }

// SocketPath returns the control socket, or "" when ipc is disabled.
func (a *App) SocketPath() string { return a.socketPath }

func (a *App) config() *config.LoadResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.res
}

func (a *App) setConfig(res *config.LoadResult) {
	a.mu.Lock()
	a.res = res
	a.mu.Unlock()
}

// Run creates the configured windows and pumps events until the app exits
// or ctx is cancelled. The runtime is closed when Run returns.
func (a *App) Run(ctx context.Context) error {
	defer close(a.stopped)
	a.started = time.Now()

	if err := writePIDFile(a.pidPath); err != nil {
		a.logger.Warn("failed to write pid file", "path", a.pidPath, "error", err)
	} else {
		defer removePIDFile(a.pidPath)
	}

	if err := a.start(); err != nil {
		return errors.Join(err, a.rt.Close())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if a.socketPath != "" {
		srv := ipc.NewServer(a.socketPath, a, a.logger)
		g.Go(func() error { return srv.Serve(gctx) })
	}
	watcher := &configWatcher{
		path:     a.configPath,
		debounce: a.debounce,
		reload:   a.Reload,
		logger:   a.logger.With("component", "watcher"),
	}
	g.Go(func() error { return watcher.Run(gctx) })
	g.Go(func() error { return a.handleSignals(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		// The loop may already be gone.
		_ = a.handle.Exit()
		return nil
	})

	a.logger.Info("deskrun started",
		"backend", a.backend.Name(),
		"windows", a.windows.len(),
		"config", a.configPath,
		"socket", a.socketPath)

	a.rt.Run(a.onEvent)

	cancel()
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if closeErr := a.rt.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	a.logger.Info("deskrun stopped")
	return err
}

// start runs on the main thread before the loop.
func (a *App) start() error {
	res := a.config()
	for _, w := range res.Config.Windows {
		if err := a.openWindow(w, res.BaseDir()); err != nil {
			return err
		}
	}
	if err := a.applyShortcuts(res.Config.Shortcuts); err != nil {
		a.logger.Warn("some shortcuts were not registered", "error", err)
	}
	if err := a.setupTray(res.Config.Tray, res); err != nil {
		if !errors.Is(err, platform.ErrNotSupported) {
			return err
		}
		a.logger.Warn("tray not supported by backend", "backend", a.backend.Name())
	}
	return nil
}

// openWindow builds w on the main thread and registers its label. Windows
// with content fall back to plain windows on backends without webviews.
func (a *App) openWindow(w config.WindowConfig, baseDir string) error {
	p, err := w.PendingWindow(baseDir)
	if err != nil {
		return fmt.Errorf("window %q: %w", w.Label, err)
	}
	if w.HasContent() {
		dw, err := a.rt.CreateWindow(p)
		if err == nil {
			a.windows.add(p.Label, dw.Dispatcher)
			return nil
		}
		if !errors.Is(err, platform.ErrNotSupported) {
			return err
		}
		a.logger.Warn("webview not supported, creating plain window",
			"label", p.Label, "backend", a.backend.Name())
	}
	d, err := a.handle.CreateCoreWindow(func() (string, platform.WindowAttributes) {
		return p.Label, p.Window
	})
	if err != nil {
		return err
	}
	if p.Center {
		if err := d.Center(); err != nil {
			a.logger.Warn("failed to center window", "label", p.Label, "error", err)
		}
	}
	a.windows.add(p.Label, d)
	return nil
}

func (a *App) onEvent(ev desktop.RunEvent) {
	switch e := ev.(type) {
	case desktop.Ready:
		close(a.ready)
	case desktop.CloseRequested:
		a.logger.Debug("close requested", "label", e.Label)
	case desktop.ExitRequested:
		if a.tray != nil {
			a.logger.Info("last window closed, staying in tray")
			e.Signal.Prevent()
			return
		}
		a.logger.Info("last window closed, exiting")
	case desktop.WindowClose:
		a.windows.remove(e.Label)
	case desktop.WindowEventReceived:
		if f, ok := e.Event.(desktop.WindowFocused); ok {
			a.logger.Debug("window focus changed", "label", e.Label, "focused", f.Focused)
		}
	case desktop.Exit:
		a.logger.Debug("event loop finished")
	}
}

// apply brings a running app in line with a reloaded config. Windows that
// left the config stay open.
func (a *App) apply(res *config.LoadResult) error {
	var errs []error
	if err := a.applyShortcuts(res.Config.Shortcuts); err != nil {
		errs = append(errs, err)
	}
	for _, w := range res.Config.Windows {
		d, ok := a.windows.get(w.Label)
		if !ok {
			if err := a.openWindow(w, res.BaseDir()); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if w.Title == "" {
			continue
		}
		if err := d.SetTitle(w.Title); err != nil {
			errs = append(errs, fmt.Errorf("window %q: %w", w.Label, err))
		}
	}
	a.setConfig(res)
	a.logger.Info("config reloaded",
		"path", res.Path,
		"windows", len(res.Config.Windows),
		"shortcuts", len(res.Config.Shortcuts))
	return errors.Join(errs...)
}
