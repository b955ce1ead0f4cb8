package app

import (
	"errors"
	"fmt"

	"github.com/1broseidon/deskrun/internal/desktop"
	"github.com/1broseidon/deskrun/internal/ipc"
	"github.com/1broseidon/deskrun/internal/platform"
	"github.com/1broseidon/deskrun/internal/tiling"
)

// arrange tiles the visible windows on one monitor in label order and
// returns the labels it moved. It runs on the main thread.
func (a *App) arrange(p ipc.ArrangePayload) ([]string, error) {
	mode, err := tiling.ParseMode(p.Layout)
	if err != nil {
		return nil, err
	}
	monitor, err := a.pickMonitor(p.Monitor)
	if err != nil {
		return nil, err
	}

	var labels []string
	var targets []*desktop.Dispatcher
	for _, label := range a.windows.labels() {
		d, ok := a.windows.get(label)
		if !ok {
			continue
		}
		if visible, err := d.IsVisible(); err != nil || !visible {
			continue
		}
		labels = append(labels, label)
		targets = append(targets, d)
	}
	if len(targets) == 0 {
		return nil, nil
	}

	rects, err := tiling.Positions(len(targets), monitor.Bounds(), tiling.Layout{
		Mode:          mode,
		Gap:           p.Gap,
		MasterPercent: p.MasterPercent,
	})
	if err != nil {
		return nil, err
	}

	var errs []error
	for i, d := range targets {
		r := rects[i]
		err := errors.Join(
			d.Unmaximize(),
			d.SetPosition(platform.PhysicalPosition{X: r.X, Y: r.Y}),
			d.SetSize(platform.PhysicalSize{Width: uint32(r.Width), Height: uint32(r.Height)}),
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("window %q: %w", labels[i], err))
		}
	}
	a.logger.Debug("windows arranged", "layout", mode, "monitor", monitor.Name, "windows", len(labels))
	return labels, errors.Join(errs...)
}

// pickMonitor returns the named monitor, or the first one when name is empty.
func (a *App) pickMonitor(name string) (platform.Monitor, error) {
	monitors, err := a.backend.Monitors()
	if err != nil {
		return platform.Monitor{}, err
	}
	if len(monitors) == 0 {
		return platform.Monitor{}, errors.New("no monitors available")
	}
	if name == "" {
		return monitors[0], nil
	}
	for _, m := range monitors {
		if m.Name == name {
			return m, nil
		}
	}
	return platform.Monitor{}, fmt.Errorf("monitor %q not found", name)
}
