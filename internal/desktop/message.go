package desktop

import (
	"fmt"

	"github.com/1broseidon/deskrun/internal/platform"
)

// Message is an operation executed on the main thread. The set of variants
// is closed.
type Message interface {
	// Clone copies the message. Task, window and construction messages
	// cannot be copied and panic.
	Clone() Message
	// discard releases the message unexecuted, dropping any reply so the
	// waiting caller fails instead of blocking.
	discard()
}

// TaskMessage runs Fn on the main thread.
type TaskMessage struct {
	Fn func()
}

// WindowMessage applies Op to a window.
type WindowMessage struct {
	ID WindowID
	Op WindowOp
}

// WebviewMessage applies Op to the webview of a window.
type WebviewMessage struct {
	ID WindowID
	Op WebviewOp
}

// TrayMessage applies Op to the system tray.
type TrayMessage struct {
	Op TrayOp
}

// GlobalShortcutMessage applies Op to the global shortcut manager.
type GlobalShortcutMessage struct {
	Op ShortcutOp
}

// ClipboardMessage applies Op to the clipboard.
type ClipboardMessage struct {
	Op ClipboardOp
}

// BuildFunc constructs native resources on the main thread.
type BuildFunc func(backend platform.Backend) (Built, error)

// Built is the outcome of a BuildFunc. Webview is nil for plain windows.
type Built struct {
	Label   string
	Window  platform.NativeWindow
	Webview platform.NativeWebview
	IPC     IPCHandler
	// Center moves the window to the middle of its monitor after insertion.
	Center bool
}

// CreateWebviewMessage builds a window and its webview under ID.
type CreateWebviewMessage struct {
	ID    WindowID
	Build BuildFunc
}

// CreateWindowMessage builds a plain window under ID and answers on Reply.
type CreateWindowMessage struct {
	ID    WindowID
	Build func() (label string, attrs platform.WindowAttributes)
	Reply *Reply[error]
}

// UserEventMessage carries an application payload to the Run callback.
type UserEventMessage struct {
	Payload any
}

func mustNotClone(m Message) {
	panic(fmt.Sprintf("desktop: %T cannot be cloned", m))
}

func (m TaskMessage) Clone() Message { mustNotClone(m); return nil }

func (m WindowMessage) Clone() Message { mustNotClone(m); return nil }

func (m WebviewMessage) Clone() Message { return m }

func (m TrayMessage) Clone() Message { return m }

func (m GlobalShortcutMessage) Clone() Message { return m }

func (m ClipboardMessage) Clone() Message { return m }

func (m CreateWebviewMessage) Clone() Message { mustNotClone(m); return nil }

func (m CreateWindowMessage) Clone() Message { mustNotClone(m); return nil }

func (m UserEventMessage) Clone() Message { return m }

func (TaskMessage) discard()             {}
func (m WindowMessage) discard()         { dropReply(m.Op) }
func (m WebviewMessage) discard()        { dropReply(m.Op) }
func (TrayMessage) discard()             {}
func (m GlobalShortcutMessage) discard() { dropReply(m.Op) }
func (m ClipboardMessage) discard()      { dropReply(m.Op) }
func (CreateWebviewMessage) discard()    {}
func (m CreateWindowMessage) discard()   { dropIfSet(m.Reply) }
func (UserEventMessage) discard()        {}

// replier is implemented by operations that carry a Reply.
type replier interface {
	dropReply()
}

func dropReply(op any) {
	if r, ok := op.(replier); ok {
		r.dropReply()
	}
}

func dropIfSet[T any](r *Reply[T]) {
	if r != nil {
		r.Drop()
	}
}

// WebviewOp is an operation on a webview.
type WebviewOp interface {
	isWebviewOp()
}

type EvaluateScript struct {
	Script string
}

type Print struct{}

// WebviewFocusChanged reports a focus change observed by the webview.
type WebviewFocusChanged struct {
	Focused bool
}

func (EvaluateScript) isWebviewOp()      {}
func (Print) isWebviewOp()               {}
func (WebviewFocusChanged) isWebviewOp() {}

// TrayOp is an operation on the system tray.
type TrayOp interface {
	isTrayOp()
}

type TrayUpdateItem struct {
	ID     platform.MenuItemID
	Update platform.MenuUpdate
}

type TrayUpdateMenu struct {
	Menu *platform.Menu
}

type TrayUpdateIcon struct {
	Icon platform.Icon
}

type TrayClose struct{}

func (TrayUpdateItem) isTrayOp() {}
func (TrayUpdateMenu) isTrayOp() {}
func (TrayUpdateIcon) isTrayOp() {}
func (TrayClose) isTrayOp()      {}

// ShortcutOp is an operation on the global shortcut manager.
type ShortcutOp interface {
	isShortcutOp()
}

type ShortcutIsRegistered struct {
	Accelerator platform.Accelerator
	Reply       *Reply[bool]
}

type ShortcutRegister struct {
	Accelerator platform.Accelerator
	Reply       *Reply[Result[platform.Shortcut]]
}

type ShortcutUnregister struct {
	Shortcut platform.Shortcut
	Reply    *Reply[error]
}

type ShortcutUnregisterAll struct {
	Reply *Reply[error]
}

func (ShortcutIsRegistered) isShortcutOp()  {}
func (ShortcutRegister) isShortcutOp()      {}
func (ShortcutUnregister) isShortcutOp()    {}
func (ShortcutUnregisterAll) isShortcutOp() {}

func (o ShortcutIsRegistered) dropReply()  { dropIfSet(o.Reply) }
func (o ShortcutRegister) dropReply()      { dropIfSet(o.Reply) }
func (o ShortcutUnregister) dropReply()    { dropIfSet(o.Reply) }
func (o ShortcutUnregisterAll) dropReply() { dropIfSet(o.Reply) }

// ClipboardOp is an operation on the clipboard.
type ClipboardOp interface {
	isClipboardOp()
}

type ClipboardWriteText struct {
	Text  string
	Reply *Reply[error]
}

type ClipboardReadText struct {
	Reply *Reply[Result[string]]
}

func (ClipboardWriteText) isClipboardOp() {}
func (ClipboardReadText) isClipboardOp()  {}

func (o ClipboardWriteText) dropReply() { dropIfSet(o.Reply) }
func (o ClipboardReadText) dropReply()  { dropIfSet(o.Reply) }
