package platform

import "errors"

// ErrNotSupported is returned by backends for operations the window system
// cannot perform.
var ErrNotSupported = errors.New("operation not supported by this backend")

// NativeID is the window system's identifier for a top-level window.
type NativeID uint64

// WindowAttributes configures a native window at construction.
type WindowAttributes struct {
	Title        string
	InnerSize    Size
	MinInnerSize Size
	MaxInnerSize Size
	Position     Position
	Resizable    bool
	Fullscreen   bool
	Maximized    bool
	Visible      bool
	Transparent  bool
	Decorations  bool
	AlwaysOnTop  bool
	Focused      bool
	SkipTaskbar  bool
	Icon         *Icon
	Theme        *Theme
	Menu         *Menu
}

// DefaultWindowAttributes returns the attributes of a plain visible window.
func DefaultWindowAttributes() WindowAttributes {
	return WindowAttributes{
		Title:       "deskrun",
		InnerSize:   LogicalSize{Width: 800, Height: 600},
		Resizable:   true,
		Visible:     true,
		Decorations: true,
		Focused:     true,
	}
}

// WebviewAttributes configures the webview hosted by a window.
type WebviewAttributes struct {
	URL                   string
	HTML                  string
	UserAgent             string
	InitializationScripts []string
	DataDirectory         string
	Transparent           bool
	FileDropEnabled       bool
	Devtools              bool
}

// NativeWindow is a window owned by the window system. Every method must be
// called on the event loop thread.
type NativeWindow interface {
	ID() NativeID

	Title() string
	SetTitle(title string)
	ScaleFactor() float64
	Theme() Theme

	InnerPosition() (PhysicalPosition, error)
	OuterPosition() (PhysicalPosition, error)
	SetOuterPosition(pos Position)
	InnerSize() PhysicalSize
	OuterSize() PhysicalSize
	SetInnerSize(size Size)
	// SetMinInnerSize and SetMaxInnerSize clear the constraint when size is nil.
	SetMinInnerSize(size Size)
	SetMaxInnerSize(size Size)

	IsFullscreen() bool
	SetFullscreen(fullscreen bool)
	IsMaximized() bool
	SetMaximized(maximized bool)
	SetMinimized(minimized bool)
	IsDecorated() bool
	SetDecorations(decorations bool)
	IsResizable() bool
	SetResizable(resizable bool)
	IsVisible() bool
	SetVisible(visible bool)
	IsMenuVisible() bool
	SetMenuVisible(visible bool)

	SetAlwaysOnTop(alwaysOnTop bool)
	SetFocus()
	SetSkipTaskbar(skip bool)
	SetIcon(icon Icon)
	RequestUserAttention(kind *UserAttentionType)
	RequestRedraw()

	SetCursorGrab(grab bool) error
	SetCursorVisible(visible bool)
	SetCursorIcon(icon CursorIcon)
	SetCursorPosition(pos Position) error
	DragWindow() error

	CurrentMonitor() (Monitor, bool)
	PrimaryMonitor() (Monitor, bool)
	AvailableMonitors() []Monitor

	// MenuItems returns handles for the custom items of the window menu.
	MenuItems() map[MenuItemID]MenuItemHandle

	Destroy()
}

// NativeWebview is the web content surface of a window.
type NativeWebview interface {
	Window() NativeWindow
	EvaluateScript(script string) error
	Print() error
	Focus()
	// Resize fits the webview surface to the current window size.
	Resize()
	OpenDevtools()
	CloseDevtools()
	IsDevtoolsOpen() bool
}

// Shortcut is a global shortcut accepted by a ShortcutManager.
type Shortcut struct {
	ID          AcceleratorID
	Accelerator Accelerator
}

// ShortcutManager registers system-wide keyboard shortcuts.
type ShortcutManager interface {
	IsRegistered(accel Accelerator) bool
	Register(accel Accelerator) (Shortcut, error)
	Unregister(shortcut Shortcut) error
	UnregisterAll() error
}

// Clipboard reads and writes the system clipboard text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// Tray is a system tray icon with an optional context menu.
type Tray interface {
	SetIcon(icon Icon) error
	SetMenu(menu *Menu) error
	MenuItems() map[MenuItemID]MenuItemHandle
	Destroy()
}

// EventSink receives native events from any goroutine.
type EventSink interface {
	Emit(ev Event)
}

// Backend abstracts the window system the event loop drives.
type Backend interface {
	Name() string
	// Attach connects the backend to the event sink of the loop. It is called
	// once, before any window is created.
	Attach(sink EventSink) error
	CreateWindow(attrs WindowAttributes) (NativeWindow, error)
	CreateWebview(window NativeWindow, attrs WebviewAttributes) (NativeWebview, error)
	CreateTray(icon *Icon, menu *Menu) (Tray, error)
	Monitors() ([]Monitor, error)
	Shortcuts() ShortcutManager
	Clipboard() Clipboard
	Close() error
}
