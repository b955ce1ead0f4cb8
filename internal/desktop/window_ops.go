package desktop

import (
	"github.com/google/uuid"

	"github.com/1broseidon/deskrun/internal/platform"
)

// WindowOp is an operation on a window. Queries carry a Reply as their last
// field.
type WindowOp interface {
	isWindowOp()
}

// WindowEventHandler is called on the main thread for every window event.
type WindowEventHandler func(WindowEvent)

// MenuEventHandler is called on the main thread for every menu click.
type MenuEventHandler func(MenuEvent)

// Queries.
type (
	GetTitle         struct{ Reply *Reply[string] }
	GetScaleFactor   struct{ Reply *Reply[float64] }
	GetInnerPosition struct {
		Reply *Reply[Result[platform.PhysicalPosition]]
	}
	GetOuterPosition struct {
		Reply *Reply[Result[platform.PhysicalPosition]]
	}
	GetInnerSize         struct{ Reply *Reply[platform.PhysicalSize] }
	GetOuterSize         struct{ Reply *Reply[platform.PhysicalSize] }
	GetFullscreen        struct{ Reply *Reply[bool] }
	GetMaximized         struct{ Reply *Reply[bool] }
	GetDecorated         struct{ Reply *Reply[bool] }
	GetResizable         struct{ Reply *Reply[bool] }
	GetVisible           struct{ Reply *Reply[bool] }
	GetMenuVisible       struct{ Reply *Reply[bool] }
	GetDevtoolsOpen      struct{ Reply *Reply[bool] }
	GetCurrentMonitor    struct{ Reply *Reply[*platform.Monitor] }
	GetPrimaryMonitor    struct{ Reply *Reply[*platform.Monitor] }
	GetAvailableMonitors struct{ Reply *Reply[[]platform.Monitor] }
	GetTheme             struct{ Reply *Reply[platform.Theme] }
	// Center answers with ErrFailedToGetMonitor when the window is not on
	// any monitor.
	Center struct{ Reply *Reply[error] }
)

// Commands.
type (
	RequestUserAttention struct{ Type *platform.UserAttentionType }
	SetResizable         struct{ Resizable bool }
	SetTitle             struct{ Title string }
	Maximize             struct{}
	Unmaximize           struct{}
	Minimize             struct{}
	Unminimize           struct{}
	ShowMenu             struct{}
	HideMenu             struct{}
	Show                 struct{}
	Hide                 struct{}
	Close                struct{}
	SetDecorations       struct{ Decorations bool }
	SetAlwaysOnTop       struct{ AlwaysOnTop bool }
	SetSize              struct{ Size platform.Size }
	// SetMinSize and SetMaxSize clear the constraint when Size is nil.
	SetMinSize        struct{ Size platform.Size }
	SetMaxSize        struct{ Size platform.Size }
	SetPosition       struct{ Position platform.Position }
	SetFullscreen     struct{ Fullscreen bool }
	SetFocus          struct{}
	SetIcon           struct{ Icon platform.Icon }
	SetSkipTaskbar    struct{ Skip bool }
	SetCursorGrab     struct{ Grab bool }
	SetCursorVisible  struct{ Visible bool }
	SetCursorIcon     struct{ Icon platform.CursorIcon }
	SetCursorPosition struct{ Position platform.Position }
	DragWindow        struct{}
	RequestRedraw     struct{}
	OpenDevtools      struct{}
	CloseDevtools     struct{}
	UpdateMenuItem    struct {
		ID     platform.MenuItemID
		Update platform.MenuUpdate
	}
	// WithWebview runs Fn with the native webview; windows without a
	// webview ignore it.
	WithWebview      struct{ Fn func(platform.NativeWebview) }
	AddEventListener struct {
		ID      uuid.UUID
		Handler WindowEventHandler
	}
	AddMenuEventListener struct {
		ID      uuid.UUID
		Handler MenuEventHandler
	}
)

func (GetTitle) isWindowOp()             {}
func (GetScaleFactor) isWindowOp()       {}
func (GetInnerPosition) isWindowOp()     {}
func (GetOuterPosition) isWindowOp()     {}
func (GetInnerSize) isWindowOp()         {}
func (GetOuterSize) isWindowOp()         {}
func (GetFullscreen) isWindowOp()        {}
func (GetMaximized) isWindowOp()         {}
func (GetDecorated) isWindowOp()         {}
func (GetResizable) isWindowOp()         {}
func (GetVisible) isWindowOp()           {}
func (GetMenuVisible) isWindowOp()       {}
func (GetDevtoolsOpen) isWindowOp()      {}
func (GetCurrentMonitor) isWindowOp()    {}
func (GetPrimaryMonitor) isWindowOp()    {}
func (GetAvailableMonitors) isWindowOp() {}
func (GetTheme) isWindowOp()             {}
func (Center) isWindowOp()               {}
func (RequestUserAttention) isWindowOp() {}
func (SetResizable) isWindowOp()         {}
func (SetTitle) isWindowOp()             {}
func (Maximize) isWindowOp()             {}
func (Unmaximize) isWindowOp()           {}
func (Minimize) isWindowOp()             {}
func (Unminimize) isWindowOp()           {}
func (ShowMenu) isWindowOp()             {}
func (HideMenu) isWindowOp()             {}
func (Show) isWindowOp()                 {}
func (Hide) isWindowOp()                 {}
func (Close) isWindowOp()                {}
func (SetDecorations) isWindowOp()       {}
func (SetAlwaysOnTop) isWindowOp()       {}
func (SetSize) isWindowOp()              {}
func (SetMinSize) isWindowOp()           {}
func (SetMaxSize) isWindowOp()           {}
func (SetPosition) isWindowOp()          {}
func (SetFullscreen) isWindowOp()        {}
func (SetFocus) isWindowOp()             {}
func (SetIcon) isWindowOp()              {}
func (SetSkipTaskbar) isWindowOp()       {}
func (SetCursorGrab) isWindowOp()        {}
func (SetCursorVisible) isWindowOp()     {}
func (SetCursorIcon) isWindowOp()        {}
func (SetCursorPosition) isWindowOp()    {}
func (DragWindow) isWindowOp()           {}
func (RequestRedraw) isWindowOp()        {}
func (OpenDevtools) isWindowOp()         {}
func (CloseDevtools) isWindowOp()        {}
func (UpdateMenuItem) isWindowOp()       {}
func (WithWebview) isWindowOp()          {}
func (AddEventListener) isWindowOp()     {}
func (AddMenuEventListener) isWindowOp() {}

func (o GetTitle) dropReply()             { dropIfSet(o.Reply) }
func (o GetScaleFactor) dropReply()       { dropIfSet(o.Reply) }
func (o GetInnerPosition) dropReply()     { dropIfSet(o.Reply) }
func (o GetOuterPosition) dropReply()     { dropIfSet(o.Reply) }
func (o GetInnerSize) dropReply()         { dropIfSet(o.Reply) }
func (o GetOuterSize) dropReply()         { dropIfSet(o.Reply) }
func (o GetFullscreen) dropReply()        { dropIfSet(o.Reply) }
func (o GetMaximized) dropReply()         { dropIfSet(o.Reply) }
func (o GetDecorated) dropReply()         { dropIfSet(o.Reply) }
func (o GetResizable) dropReply()         { dropIfSet(o.Reply) }
func (o GetVisible) dropReply()           { dropIfSet(o.Reply) }
func (o GetMenuVisible) dropReply()       { dropIfSet(o.Reply) }
func (o GetDevtoolsOpen) dropReply()      { dropIfSet(o.Reply) }
func (o GetCurrentMonitor) dropReply()    { dropIfSet(o.Reply) }
func (o GetPrimaryMonitor) dropReply()    { dropIfSet(o.Reply) }
func (o GetAvailableMonitors) dropReply() { dropIfSet(o.Reply) }
func (o GetTheme) dropReply()             { dropIfSet(o.Reply) }
func (o Center) dropReply()               { dropIfSet(o.Reply) }
