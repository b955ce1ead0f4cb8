package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/deskrun/internal/desktop"
	"github.com/1broseidon/deskrun/internal/platform"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Backend names accepted by the backend key.
const (
	BackendAuto     = "auto"
	BackendX11      = "x11"
	BackendHeadless = "headless"
)

// Shortcut actions.
const (
	ActionShow   = "show"
	ActionHide   = "hide"
	ActionToggle = "toggle"
	ActionFocus  = "focus"
	ActionCenter = "center"
	ActionClose  = "close"
	ActionQuit   = "quit"
	// ActionArrange tiles every visible window in a grid; it takes no window.
	ActionArrange = "arrange"
)

// MenuItemConfig is one entry of a window menu or the tray menu.
type MenuItemConfig struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Accelerator string `yaml:"accelerator,omitempty"`
	Enabled     *bool  `yaml:"enabled,omitempty"`
}

// IsEnabled defaults to true.
func (m MenuItemConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// WindowConfig describes a window created at startup.
type WindowConfig struct {
	Label       string           `yaml:"label"`
	Title       string           `yaml:"title,omitempty"`
	URL         string           `yaml:"url,omitempty"`
	HTML        string           `yaml:"html,omitempty"`
	Width       float64          `yaml:"width,omitempty"`
	Height      float64          `yaml:"height,omitempty"`
	MinWidth    float64          `yaml:"min_width,omitempty"`
	MinHeight   float64          `yaml:"min_height,omitempty"`
	MaxWidth    float64          `yaml:"max_width,omitempty"`
	MaxHeight   float64          `yaml:"max_height,omitempty"`
	X           *float64         `yaml:"x,omitempty"`
	Y           *float64         `yaml:"y,omitempty"`
	Center      bool             `yaml:"center,omitempty"`
	Resizable   *bool            `yaml:"resizable,omitempty"`
	Fullscreen  bool             `yaml:"fullscreen,omitempty"`
	Maximized   bool             `yaml:"maximized,omitempty"`
	Visible     *bool            `yaml:"visible,omitempty"`
	Decorations *bool            `yaml:"decorations,omitempty"`
	AlwaysOnTop bool             `yaml:"always_on_top,omitempty"`
	SkipTaskbar bool             `yaml:"skip_taskbar,omitempty"`
	Focus       *bool            `yaml:"focus,omitempty"`
	Transparent bool             `yaml:"transparent,omitempty"`
	Devtools    bool             `yaml:"devtools,omitempty"`
	Theme       string           `yaml:"theme,omitempty"` // "", "light" or "dark"
	Icon        string           `yaml:"icon,omitempty"`
	Menu        []MenuItemConfig `yaml:"menu,omitempty"`
}

// HasContent reports whether the window hosts a webview.
func (w WindowConfig) HasContent() bool {
	return w.URL != "" || w.HTML != ""
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// PendingWindow converts the entry into a window description for the
// runtime. Relative icon paths are resolved against baseDir.
func (w WindowConfig) PendingWindow(baseDir string) (desktop.PendingWindow, error) {
	opts := []desktop.WindowOption{
		desktop.WithResizable(boolOr(w.Resizable, true)),
		desktop.WithVisible(boolOr(w.Visible, true)),
		desktop.WithDecorations(boolOr(w.Decorations, true)),
		desktop.WithFocus(boolOr(w.Focus, true)),
		desktop.WithFullscreen(w.Fullscreen),
		desktop.WithMaximized(w.Maximized),
		desktop.WithAlwaysOnTop(w.AlwaysOnTop),
		desktop.WithSkipTaskbar(w.SkipTaskbar),
		desktop.WithTransparent(w.Transparent),
		desktop.WithDevtools(w.Devtools),
	}
	if w.Title != "" {
		opts = append(opts, desktop.WithTitle(w.Title))
	}
	if w.URL != "" {
		opts = append(opts, desktop.WithURL(w.URL))
	}
	if w.HTML != "" {
		opts = append(opts, desktop.WithHTML(w.HTML))
	}
	if w.Width > 0 && w.Height > 0 {
		opts = append(opts, desktop.WithInnerSize(w.Width, w.Height))
	}
	if w.MinWidth > 0 || w.MinHeight > 0 {
		opts = append(opts, desktop.WithMinInnerSize(w.MinWidth, w.MinHeight))
	}
	if w.MaxWidth > 0 || w.MaxHeight > 0 {
		opts = append(opts, desktop.WithMaxInnerSize(w.MaxWidth, w.MaxHeight))
	}
	if w.X != nil && w.Y != nil {
		opts = append(opts, desktop.WithPosition(*w.X, *w.Y))
	}
	if w.Center {
		opts = append(opts, desktop.WithCenter())
	}
	switch w.Theme {
	case "light":
		opts = append(opts, desktop.WithTheme(platform.ThemeLight))
	case "dark":
		opts = append(opts, desktop.WithTheme(platform.ThemeDark))
	}
	if w.Icon != "" {
		icon, err := platform.LoadIcon(resolvePath(baseDir, w.Icon))
		if err != nil {
			return desktop.PendingWindow{}, err
		}
		opts = append(opts, desktop.WithIcon(icon))
	}
	if len(w.Menu) > 0 {
		opts = append(opts, desktop.WithMenu(BuildMenu(w.Menu)))
	}
	return desktop.NewPendingWindow(w.Label, opts...)
}

// BuildMenu converts menu entries into a platform menu.
func BuildMenu(items []MenuItemConfig) *platform.Menu {
	menu := platform.NewMenu()
	for _, it := range items {
		item := platform.NewCustomMenuItem(it.ID, it.Title)
		item.Accelerator = it.Accelerator
		item.Enabled = it.IsEnabled()
		menu.AddItem(item)
	}
	return menu
}

// ShortcutConfig binds a global accelerator to an action.
type ShortcutConfig struct {
	Accelerator string `yaml:"accelerator"`
	Action      string `yaml:"action"`
	// Window is the label the action applies to. Unused by quit.
	Window string `yaml:"window,omitempty"`
}

// TrayConfig enables the system tray icon.
type TrayConfig struct {
	Icon  string           `yaml:"icon,omitempty"`
	Items []MenuItemConfig `yaml:"items,omitempty"`
}

// IPCConfig configures the control socket.
type IPCConfig struct {
	Enabled bool `yaml:"enabled"`
	// Socket overrides the default socket path.
	Socket string `yaml:"socket,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Backend    string           `yaml:"backend"`
	Display    string           `yaml:"display,omitempty"`
	XAuthority string           `yaml:"xauthority,omitempty"`
	Windows    []WindowConfig   `yaml:"windows"`
	Shortcuts  []ShortcutConfig `yaml:"shortcuts,omitempty"`
	Tray       *TrayConfig      `yaml:"tray,omitempty"`
	IPC        IPCConfig        `yaml:"ipc"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Backend:  BackendAuto,
		Windows: []WindowConfig{
			{
				Label:  "main",
				Title:  "deskrun",
				Width:  800,
				Height: 600,
				Center: true,
			},
		},
		Shortcuts: []ShortcutConfig{
			{Accelerator: "Super+Alt+D", Action: ActionToggle, Window: "main"},
		},
		IPC: IPCConfig{Enabled: true},
	}
}

// Window returns the window entry with the given label.
func (c *Config) Window(label string) (WindowConfig, bool) {
	for _, w := range c.Windows {
		if w.Label == label {
			return w, true
		}
	}
	return WindowConfig{}, false
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save validates the config and atomically writes it to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var windowActions = map[string]bool{
	ActionShow:   true,
	ActionHide:   true,
	ActionToggle: true,
	ActionFocus:  true,
	ActionCenter: true,
	ActionClose:  true,
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	switch c.Backend {
	case BackendAuto, BackendX11, BackendHeadless:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: auto, x11, headless")}
	}

	labels := make(map[string]struct{}, len(c.Windows))
	for i, w := range c.Windows {
		path := fmt.Sprintf("windows.%d", i)
		if err := validateWindow(w); err != nil {
			return &ValidationError{Path: path, Err: err}
		}
		if _, dup := labels[w.Label]; dup {
			return &ValidationError{Path: path + ".label", Err: fmt.Errorf("duplicate window label %q", w.Label)}
		}
		labels[w.Label] = struct{}{}
	}

	accels := make(map[platform.AcceleratorID]string, len(c.Shortcuts))
	for i, s := range c.Shortcuts {
		path := fmt.Sprintf("shortcuts.%d", i)
		accel, err := platform.ParseAccelerator(s.Accelerator)
		if err != nil {
			return &ValidationError{Path: path + ".accelerator", Err: err}
		}
		if prev, dup := accels[accel.ID()]; dup {
			return &ValidationError{Path: path + ".accelerator", Err: fmt.Errorf("%q is already bound by %q", s.Accelerator, prev)}
		}
		accels[accel.ID()] = s.Accelerator

		switch {
		case s.Action == ActionQuit, s.Action == ActionArrange:
		case windowActions[s.Action]:
			if _, ok := labels[s.Window]; !ok {
				return &ValidationError{Path: path + ".window", Err: fmt.Errorf("window %q is not configured", s.Window)}
			}
		default:
			return &ValidationError{Path: path + ".action", Err: fmt.Errorf("action must be one of: show, hide, toggle, focus, center, close, quit, arrange")}
		}
	}

	if c.Tray != nil {
		if err := validateMenu(c.Tray.Items); err != nil {
			return &ValidationError{Path: "tray.items", Err: err}
		}
	}

	if c.IPC.Socket != "" && !filepath.IsAbs(c.IPC.Socket) {
		return &ValidationError{Path: "ipc.socket", Err: fmt.Errorf("socket path must be absolute")}
	}
	return nil
}

func validateWindow(w WindowConfig) error {
	if _, err := desktop.NewPendingWindow(w.Label); err != nil {
		return err
	}
	if w.URL != "" && w.HTML != "" {
		return fmt.Errorf("url and html are mutually exclusive")
	}
	if w.Width < 0 || w.Height < 0 || w.MinWidth < 0 || w.MinHeight < 0 || w.MaxWidth < 0 || w.MaxHeight < 0 {
		return fmt.Errorf("sizes must be >= 0")
	}
	if (w.Width > 0) != (w.Height > 0) {
		return fmt.Errorf("width and height must be set together")
	}
	if w.MaxWidth > 0 && w.MinWidth > w.MaxWidth {
		return fmt.Errorf("min_width exceeds max_width")
	}
	if w.MaxHeight > 0 && w.MinHeight > w.MaxHeight {
		return fmt.Errorf("min_height exceeds max_height")
	}
	if (w.X == nil) != (w.Y == nil) {
		return fmt.Errorf("x and y must be set together")
	}
	switch w.Theme {
	case "", "light", "dark":
	default:
		return fmt.Errorf("theme must be one of: light, dark")
	}
	return validateMenu(w.Menu)
}

func validateMenu(items []MenuItemConfig) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			return fmt.Errorf("menu item id must not be empty")
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("duplicate menu item id %q", it.ID)
		}
		seen[it.ID] = struct{}{}
		if it.Accelerator != "" {
			if _, err := platform.ParseAccelerator(it.Accelerator); err != nil {
				return err
			}
		}
	}
	return nil
}
