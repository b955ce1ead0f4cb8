package desktop

import "github.com/1broseidon/deskrun/internal/platform"

// WindowEvent is delivered to window event listeners on the main thread.
type WindowEvent interface {
	isWindowEvent()
}

type WindowResized struct {
	Size platform.PhysicalSize
}

type WindowMoved struct {
	Position platform.PhysicalPosition
}

// WindowCloseRequested asks listeners whether the window may close.
type WindowCloseRequested struct {
	Signal *CloseSignal
}

// WindowDestroyed is the last event a window's listeners receive.
type WindowDestroyed struct{}

type WindowFocused struct {
	Focused bool
}

type WindowScaleFactorChanged struct {
	ScaleFactor  float64
	NewInnerSize platform.PhysicalSize
}

type WindowThemeChanged struct {
	Theme platform.Theme
}

// FileDropKind tells the phase of a drag-and-drop gesture.
type FileDropKind int

const (
	FileDropHovered FileDropKind = iota
	FileDropDropped
	FileDropCancelled
)

type WindowFileDrop struct {
	Kind  FileDropKind
	Paths []string
}

func (WindowResized) isWindowEvent()            {}
func (WindowMoved) isWindowEvent()              {}
func (WindowCloseRequested) isWindowEvent()     {}
func (WindowDestroyed) isWindowEvent()          {}
func (WindowFocused) isWindowEvent()            {}
func (WindowScaleFactorChanged) isWindowEvent() {}
func (WindowThemeChanged) isWindowEvent()       {}
func (WindowFileDrop) isWindowEvent()           {}

// windowEventFrom converts a native window event. CloseRequested and
// Destroyed are produced by the close protocol instead, so they map to nil.
func windowEventFrom(ev platform.WindowEvent) WindowEvent {
	switch ev.Kind {
	case platform.WindowResized:
		return WindowResized{Size: ev.Size}
	case platform.WindowMoved:
		return WindowMoved{Position: ev.Position}
	case platform.WindowFocused:
		return WindowFocused{Focused: ev.Focused}
	case platform.WindowScaleFactorChanged:
		return WindowScaleFactorChanged{ScaleFactor: ev.ScaleFactor, NewInnerSize: ev.Size}
	case platform.WindowThemeChanged:
		return WindowThemeChanged{Theme: ev.Theme}
	case platform.WindowFileHovered:
		return WindowFileDrop{Kind: FileDropHovered, Paths: ev.Paths}
	case platform.WindowFileDropped:
		return WindowFileDrop{Kind: FileDropDropped, Paths: ev.Paths}
	case platform.WindowFileDropCancelled:
		return WindowFileDrop{Kind: FileDropCancelled}
	}
	return nil
}

// MenuEvent reports a click on a custom window menu item.
type MenuEvent struct {
	MenuItemID platform.MenuItemID
}

// SystemTrayEvent is delivered to tray listeners.
type SystemTrayEvent interface {
	isTrayEvent()
}

type TrayLeftClick struct {
	Position platform.PhysicalPosition
	Size     platform.PhysicalSize
}

type TrayRightClick struct {
	Position platform.PhysicalPosition
	Size     platform.PhysicalSize
}

type TrayDoubleClick struct {
	Position platform.PhysicalPosition
	Size     platform.PhysicalSize
}

type TrayMenuItemClick struct {
	ID platform.MenuItemID
}

func (TrayLeftClick) isTrayEvent()     {}
func (TrayRightClick) isTrayEvent()    {}
func (TrayDoubleClick) isTrayEvent()   {}
func (TrayMenuItemClick) isTrayEvent() {}

func trayEventFrom(ev platform.TrayEvent) SystemTrayEvent {
	switch ev.Kind {
	case platform.TrayRightClick:
		return TrayRightClick{Position: ev.Position, Size: ev.Size}
	case platform.TrayDoubleClick:
		return TrayDoubleClick{Position: ev.Position, Size: ev.Size}
	default:
		return TrayLeftClick{Position: ev.Position, Size: ev.Size}
	}
}

// RunEvent is delivered to the application callback of Run and RunIteration.
type RunEvent interface {
	isRunEvent()
}

// Ready is the first event of the loop.
type Ready struct{}

// Resumed starts a batch that followed a Poll iteration.
type Resumed struct{}

// MainEventsCleared ends every batch.
type MainEventsCleared struct{}

// Exit is the last event Run delivers.
type Exit struct{}

// CloseRequested asks the application whether a window may close.
type CloseRequested struct {
	Label  string
	Signal *CloseSignal
}

// ExitRequested asks the application whether to exit after its last
// window closed.
type ExitRequested struct {
	Label  string
	Signal *ExitSignal
}

// WindowEventReceived forwards every other window event.
type WindowEventReceived struct {
	Label string
	Event WindowEvent
}

// WindowClose reports that a window was removed.
type WindowClose struct {
	Label string
}

// UserEvent carries an application payload sent through an EventProxy.
type UserEvent struct {
	Payload any
}

func (Ready) isRunEvent()               {}
func (Resumed) isRunEvent()             {}
func (MainEventsCleared) isRunEvent()   {}
func (Exit) isRunEvent()                {}
func (CloseRequested) isRunEvent()      {}
func (ExitRequested) isRunEvent()       {}
func (WindowEventReceived) isRunEvent() {}
func (WindowClose) isRunEvent()         {}
func (UserEvent) isRunEvent()           {}
