package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/1broseidon/deskrun/internal/config"
	"github.com/1broseidon/deskrun/internal/desktop"
	"github.com/1broseidon/deskrun/internal/ipc"
)

var _ ipc.Controller = (*App)(nil)

// mainThreadTimeout bounds how long a controller call waits for the loop.
const mainThreadTimeout = 5 * time.Second

var errMainThreadTimeout = errors.New("timed out waiting for the main thread")

// onMain runs fn on the main thread and waits for its result.
func onMain[T any](a *App, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	var zero T
	ch := make(chan result, 1)
	if err := a.handle.RunOnMainThread(func() {
		v, err := fn()
		ch <- result{v: v, err: err}
	}); err != nil {
		return zero, err
	}

	timer := time.NewTimer(mainThreadTimeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-a.stopped:
		select {
		case r := <-ch:
			return r.v, r.err
		default:
			return zero, desktop.ErrEventLoopClosed
		}
	case <-timer.C:
		return zero, errMainThreadTimeout
	}
}

func (a *App) onMainErr(fn func() error) error {
	_, err := onMain(a, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

// Status reports process and runtime state.
func (a *App) Status() ipc.StatusData {
	return ipc.StatusData{
		PID:           os.Getpid(),
		Backend:       a.backend.Name(),
		WindowCount:   a.windows.len(),
		UptimeSeconds: int64(time.Since(a.started).Seconds()),
		ConfigPath:    a.configPath,
	}
}

// Monitors lists the monitors known to the backend.
func (a *App) Monitors() ([]ipc.MonitorInfo, error) {
	monitors, err := onMain(a, a.backend.Monitors)
	if err != nil {
		return nil, err
	}
	out := make([]ipc.MonitorInfo, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, ipc.MonitorInfo{
			Name:        m.Name,
			X:           m.Position.X,
			Y:           m.Position.Y,
			Width:       int(m.Size.Width),
			Height:      int(m.Size.Height),
			ScaleFactor: m.ScaleFactor,
		})
	}
	return out, nil
}

// Windows describes every tracked window. Windows that disappear while
// being described are left out.
func (a *App) Windows() ([]ipc.WindowInfo, error) {
	return onMain(a, func() ([]ipc.WindowInfo, error) {
		labels := a.windows.labels()
		out := make([]ipc.WindowInfo, 0, len(labels))
		for _, label := range labels {
			d, ok := a.windows.get(label)
			if !ok {
				continue
			}
			info, err := describe(label, d)
			if err != nil {
				a.logger.Debug("skipping window", "label", label, "error", err)
				continue
			}
			out = append(out, info)
		}
		return out, nil
	})
}

// WindowInfo describes the window called label.
func (a *App) WindowInfo(label string) (ipc.WindowInfo, error) {
	d, err := a.windows.lookup(label)
	if err != nil {
		return ipc.WindowInfo{}, err
	}
	return onMain(a, func() (ipc.WindowInfo, error) {
		return describe(label, d)
	})
}

// reader keeps the first error of a series of getter calls.
type reader struct{ err error }

func read[T any](r *reader, get func() (T, error)) T {
	var zero T
	if r.err != nil {
		return zero
	}
	v, err := get()
	if err != nil {
		r.err = err
		return zero
	}
	return v
}

// describe reads a window snapshot. On the main thread every getter runs
// inline, so the values are consistent.
func describe(label string, d *desktop.Dispatcher) (ipc.WindowInfo, error) {
	var r reader
	pos := read(&r, d.InnerPosition)
	size := read(&r, d.InnerSize)
	info := ipc.WindowInfo{
		Label:       label,
		Title:       read(&r, d.Title),
		X:           pos.X,
		Y:           pos.Y,
		Width:       int(size.Width),
		Height:      int(size.Height),
		ScaleFactor: read(&r, d.ScaleFactor),
		Visible:     read(&r, d.IsVisible),
		Maximized:   read(&r, d.IsMaximized),
		Fullscreen:  read(&r, d.IsFullscreen),
		Decorated:   read(&r, d.IsDecorated),
		Resizable:   read(&r, d.IsResizable),
	}
	if r.err != nil {
		return ipc.WindowInfo{}, fmt.Errorf("window %q: %w", label, r.err)
	}
	return info, nil
}

func (a *App) SetTitle(label, title string) error {
	d, err := a.windows.lookup(label)
	if err != nil {
		return err
	}
	return d.SetTitle(title)
}

func (a *App) Show(label string) error   { return a.perform(config.ActionShow, label) }
func (a *App) Hide(label string) error   { return a.perform(config.ActionHide, label) }
func (a *App) Focus(label string) error  { return a.perform(config.ActionFocus, label) }
func (a *App) Center(label string) error { return a.perform(config.ActionCenter, label) }

// Close removes the window. Close handlers get no chance to veto.
func (a *App) Close(label string) error { return a.perform(config.ActionClose, label) }

func (a *App) Eval(label, script string) error {
	d, err := a.windows.lookup(label)
	if err != nil {
		return err
	}
	return d.EvalScript(script)
}

// CreateWindow opens a window at runtime. The label must be unused.
func (a *App) CreateWindow(p ipc.CreateWindowPayload) error {
	w := config.WindowConfig{
		Label:  p.Label,
		Title:  p.Title,
		URL:    p.URL,
		HTML:   p.HTML,
		Width:  p.Width,
		Height: p.Height,
		Center: p.Center,
	}
	if w.Title == "" {
		w.Title = w.Label
	}
	return a.onMainErr(func() error {
		if _, ok := a.windows.get(w.Label); ok {
			return fmt.Errorf("window %q already exists", w.Label)
		}
		return a.openWindow(w, a.config().BaseDir())
	})
}

// Arrange tiles the visible windows of a monitor.
func (a *App) Arrange(p ipc.ArrangePayload) ([]string, error) {
	return onMain(a, func() ([]string, error) { return a.arrange(p) })
}

// Reload re-reads the config file and applies it.
func (a *App) Reload() error {
	res, err := config.LoadFromPath(a.configPath)
	if err != nil {
		return err
	}
	return a.onMainErr(func() error { return a.apply(res) })
}
