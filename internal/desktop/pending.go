package desktop

import (
	"fmt"

	"github.com/1broseidon/deskrun/internal/platform"
)

// IPCHandler receives messages posted by the web content of a window.
type IPCHandler func(d *Dispatcher, payload string)

// PendingWindow describes a window that has not been built yet.
type PendingWindow struct {
	Label   string
	Window  platform.WindowAttributes
	Webview platform.WebviewAttributes
	// Center places the window in the middle of its monitor once built.
	Center bool
	// MenuIDs maps menu item ids back to their string keys.
	MenuIDs map[platform.MenuItemID]string
	IPC     IPCHandler
}

// WindowOption configures a PendingWindow.
type WindowOption func(*PendingWindow)

// NewPendingWindow validates label and applies opts over the default window
// attributes.
func NewPendingWindow(label string, opts ...WindowOption) (PendingWindow, error) {
	if err := validateLabel(label); err != nil {
		return PendingWindow{}, err
	}
	p := PendingWindow{
		Label:   label,
		Window:  platform.DefaultWindowAttributes(),
		MenuIDs: map[platform.MenuItemID]string{},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p, nil
}

// validateLabel allows alphanumerics and the characters - / : _.
func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidLabel)
	}
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '/', r == ':', r == '_':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidLabel, label, r)
		}
	}
	return nil
}

func WithTitle(title string) WindowOption {
	return func(p *PendingWindow) { p.Window.Title = title }
}

func WithURL(url string) WindowOption {
	return func(p *PendingWindow) { p.Webview.URL = url }
}

func WithHTML(html string) WindowOption {
	return func(p *PendingWindow) { p.Webview.HTML = html }
}

func WithInnerSize(width, height float64) WindowOption {
	return func(p *PendingWindow) { p.Window.InnerSize = platform.LogicalSize{Width: width, Height: height} }
}

func WithMinInnerSize(width, height float64) WindowOption {
	return func(p *PendingWindow) { p.Window.MinInnerSize = platform.LogicalSize{Width: width, Height: height} }
}

func WithMaxInnerSize(width, height float64) WindowOption {
	return func(p *PendingWindow) { p.Window.MaxInnerSize = platform.LogicalSize{Width: width, Height: height} }
}

func WithPosition(x, y float64) WindowOption {
	return func(p *PendingWindow) { p.Window.Position = platform.LogicalPosition{X: x, Y: y} }
}

func WithCenter() WindowOption {
	return func(p *PendingWindow) { p.Center = true }
}

func WithResizable(resizable bool) WindowOption {
	return func(p *PendingWindow) { p.Window.Resizable = resizable }
}

func WithFullscreen(fullscreen bool) WindowOption {
	return func(p *PendingWindow) { p.Window.Fullscreen = fullscreen }
}

func WithMaximized(maximized bool) WindowOption {
	return func(p *PendingWindow) { p.Window.Maximized = maximized }
}

func WithVisible(visible bool) WindowOption {
	return func(p *PendingWindow) { p.Window.Visible = visible }
}

func WithDecorations(decorations bool) WindowOption {
	return func(p *PendingWindow) { p.Window.Decorations = decorations }
}

func WithAlwaysOnTop(alwaysOnTop bool) WindowOption {
	return func(p *PendingWindow) { p.Window.AlwaysOnTop = alwaysOnTop }
}

func WithSkipTaskbar(skip bool) WindowOption {
	return func(p *PendingWindow) { p.Window.SkipTaskbar = skip }
}

func WithFocus(focused bool) WindowOption {
	return func(p *PendingWindow) { p.Window.Focused = focused }
}

func WithTransparent(transparent bool) WindowOption {
	return func(p *PendingWindow) {
		p.Window.Transparent = transparent
		p.Webview.Transparent = transparent
	}
}

func WithTheme(theme platform.Theme) WindowOption {
	return func(p *PendingWindow) { p.Window.Theme = &theme }
}

func WithIcon(icon platform.Icon) WindowOption {
	return func(p *PendingWindow) { p.Window.Icon = &icon }
}

// WithMenu attaches a menu bar and records its item ids.
func WithMenu(menu *platform.Menu) WindowOption {
	return func(p *PendingWindow) {
		p.Window.Menu = menu
		p.MenuIDs = menu.IDs()
	}
}

func WithInitScript(script string) WindowOption {
	return func(p *PendingWindow) {
		p.Webview.InitializationScripts = append(p.Webview.InitializationScripts, script)
	}
}

func WithUserAgent(ua string) WindowOption {
	return func(p *PendingWindow) { p.Webview.UserAgent = ua }
}

func WithFileDrop(enabled bool) WindowOption {
	return func(p *PendingWindow) { p.Webview.FileDropEnabled = enabled }
}

func WithDevtools(enabled bool) WindowOption {
	return func(p *PendingWindow) { p.Webview.Devtools = enabled }
}

func WithIPCHandler(h IPCHandler) WindowOption {
	return func(p *PendingWindow) { p.IPC = h }
}

// DetachedWindow is a window whose native resources may not exist yet.
type DetachedWindow struct {
	Label      string
	Dispatcher *Dispatcher
	MenuIDs    map[platform.MenuItemID]string
}
