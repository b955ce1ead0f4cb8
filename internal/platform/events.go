package platform

// Event is a native event delivered to an EventSink.
type Event interface {
	isNativeEvent()
}

// WindowEventKind identifies the change carried by a WindowEvent.
type WindowEventKind int

const (
	WindowResized WindowEventKind = iota
	WindowMoved
	WindowCloseRequested
	WindowDestroyed
	WindowFocused
	WindowScaleFactorChanged
	WindowThemeChanged
	WindowFileHovered
	WindowFileDropped
	WindowFileDropCancelled
)

var windowEventNames = map[WindowEventKind]string{
	WindowResized:            "resized",
	WindowMoved:              "moved",
	WindowCloseRequested:     "close-requested",
	WindowDestroyed:          "destroyed",
	WindowFocused:            "focused",
	WindowScaleFactorChanged: "scale-factor-changed",
	WindowThemeChanged:       "theme-changed",
	WindowFileHovered:        "file-hovered",
	WindowFileDropped:        "file-dropped",
	WindowFileDropCancelled:  "file-drop-cancelled",
}

func (k WindowEventKind) String() string {
	if name, ok := windowEventNames[k]; ok {
		return name
	}
	return "unknown"
}

// WindowEvent reports a change to a native window. Only the fields relevant
// to Kind are set.
type WindowEvent struct {
	Window      NativeID
	Kind        WindowEventKind
	Size        PhysicalSize
	Position    PhysicalPosition
	Focused     bool
	ScaleFactor float64
	Theme       Theme
	Paths       []string
}

// MenuOrigin tells which menu produced a MenuEvent.
type MenuOrigin int

const (
	MenuBar MenuOrigin = iota
	ContextMenu
)

// MenuEvent reports a click on a custom menu item. Window is only set for
// menu bar clicks.
type MenuEvent struct {
	Window NativeID
	ItemID MenuItemID
	Origin MenuOrigin
}

// TrayEventKind identifies a tray icon interaction.
type TrayEventKind int

const (
	TrayLeftClick TrayEventKind = iota
	TrayRightClick
	TrayDoubleClick
)

// TrayEvent reports a click on the tray icon.
type TrayEvent struct {
	Kind     TrayEventKind
	Position PhysicalPosition
	Size     PhysicalSize
}

// ShortcutEvent reports that a registered global shortcut was pressed.
type ShortcutEvent struct {
	ID AcceleratorID
}

// IPCEvent carries a message posted by web content.
type IPCEvent struct {
	Window  NativeID
	Payload string
}

func (WindowEvent) isNativeEvent()   {}
func (MenuEvent) isNativeEvent()     {}
func (TrayEvent) isNativeEvent()     {}
func (ShortcutEvent) isNativeEvent() {}
func (IPCEvent) isNativeEvent()      {}
