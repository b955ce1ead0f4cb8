package app

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/1broseidon/deskrun/internal/config"
	"github.com/1broseidon/deskrun/internal/desktop"
	"github.com/1broseidon/deskrun/internal/ipc"
	"github.com/1broseidon/deskrun/internal/platform"
)

// Tray menu entries the app understands besides window labels.
const (
	trayItemQuit = "quit"
)

// applyShortcuts replaces every registered shortcut with list. Shortcuts
// that fail to register are reported together; the rest stay active.
func (a *App) applyShortcuts(list []config.ShortcutConfig) error {
	if err := a.shortcuts.UnregisterAll(); err != nil {
		return err
	}
	var errs []error
	for _, s := range list {
		if err := a.shortcuts.Register(s.Accelerator, func() { a.runShortcut(s) }); err != nil {
			errs = append(errs, err)
			continue
		}
		a.logger.Debug("shortcut registered", "accelerator", s.Accelerator, "action", s.Action, "window", s.Window)
	}
	return errors.Join(errs...)
}

func (a *App) runShortcut(s config.ShortcutConfig) {
	if err := a.perform(s.Action, s.Window); err != nil {
		a.logger.Warn("shortcut action failed",
			"accelerator", s.Accelerator,
			"action", s.Action,
			"window", s.Window,
			"error", err)
	}
}

// perform runs a config action against the window called label. arrange
// must run on the main thread.
func (a *App) perform(action, label string) error {
	switch action {
	case config.ActionQuit:
		return a.handle.Exit()
	case config.ActionArrange:
		_, err := a.arrange(ipc.ArrangePayload{})
		return err
	}
	d, err := a.windows.lookup(label)
	if err != nil {
		return err
	}
	switch action {
	case config.ActionShow:
		return d.Show()
	case config.ActionHide:
		return d.Hide()
	case config.ActionToggle:
		visible, err := d.IsVisible()
		if err != nil {
			return err
		}
		if visible {
			return d.Hide()
		}
		return raise(d)
	case config.ActionFocus:
		return raise(d)
	case config.ActionCenter:
		return d.Center()
	case config.ActionClose:
		return d.Close()
	}
	return fmt.Errorf("unknown action %q", action)
}

// raise brings a window to the front, restoring it if needed.
func raise(d *desktop.Dispatcher) error {
	return errors.Join(d.Unminimize(), d.Show(), d.SetFocus())
}

// setupTray creates the tray icon. Without configured items the menu has
// one entry per window plus quit.
func (a *App) setupTray(tc *config.TrayConfig, res *config.LoadResult) error {
	if tc == nil {
		return nil
	}
	icon := defaultTrayIcon()
	if tc.Icon != "" {
		var err error
		if icon, err = platform.LoadIcon(res.Resolve(tc.Icon)); err != nil {
			return err
		}
	}

	items := tc.Items
	if len(items) == 0 {
		for _, w := range res.Config.Windows {
			title := w.Title
			if title == "" {
				title = w.Label
			}
			items = append(items, config.MenuItemConfig{ID: w.Label, Title: title})
		}
		items = append(items, config.MenuItemConfig{ID: trayItemQuit, Title: "Quit"})
	}
	menu := config.BuildMenu(items)

	tray, err := a.rt.SystemTray(desktop.SystemTray{Icon: &icon, Menu: menu})
	if err != nil {
		return err
	}
	a.tray = tray
	a.trayIDs = menu.IDs()
	a.rt.OnSystemTrayEvent(a.onTrayEvent)
	return nil
}

func (a *App) onTrayEvent(ev desktop.SystemTrayEvent) {
	switch e := ev.(type) {
	case desktop.TrayLeftClick:
		labels := a.windows.labels()
		if len(labels) == 0 {
			return
		}
		if err := a.perform(config.ActionToggle, labels[0]); err != nil {
			a.logger.Warn("tray click failed", "error", err)
		}
	case desktop.TrayMenuItemClick:
		key, ok := a.trayIDs[e.ID]
		if !ok {
			return
		}
		if key == trayItemQuit {
			_ = a.handle.Exit()
			return
		}
		if err := a.perform(config.ActionFocus, key); err != nil {
			a.logger.Warn("tray menu action failed", "item", key, "error", err)
		}
	}
}

// defaultTrayIcon is a plain square used when no icon file is configured.
func defaultTrayIcon() platform.Icon {
	return platform.IconFromImage(imaging.New(32, 32, color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}))
}
