package desktop

import (
	"errors"
	"fmt"
)

var (
	// ErrFailedToSendMessage means the event loop is gone.
	ErrFailedToSendMessage = errors.New("failed to send message to the event loop")
	// ErrFailedToReceiveMessage means the reply was dropped unanswered,
	// usually because the window closed while the call was in flight.
	ErrFailedToReceiveMessage = errors.New("failed to receive message from the event loop")
	// ErrEventLoopClosed is returned by EventProxy after loop teardown.
	ErrEventLoopClosed = errors.New("event loop closed")
	// ErrFailedToGetMonitor means the window has no monitor to center on.
	ErrFailedToGetMonitor = errors.New("failed to get monitor")
	ErrCreateWindow       = errors.New("failed to create window")
	ErrCreateWebview      = errors.New("failed to create webview")
	ErrInvalidLabel       = errors.New("invalid window label")
	// ErrNotMainThread is returned by operations that touch native
	// resources directly and were called off the event loop thread.
	ErrNotMainThread = errors.New("not on the main thread")
	// ErrWindowNotFound is returned when a label names no live window.
	ErrWindowNotFound = errors.New("window not found")
)

// GlobalShortcutError reports a failure of the global shortcut subsystem.
type GlobalShortcutError struct {
	Accelerator string
	Err         error
}

func (e *GlobalShortcutError) Error() string {
	return fmt.Sprintf("global shortcut %q: %v", e.Accelerator, e.Err)
}

func (e *GlobalShortcutError) Unwrap() error {
	return e.Err
}

// TrayError reports a failure of the system tray.
type TrayError struct {
	Err error
}

func (e *TrayError) Error() string {
	return fmt.Sprintf("system tray: %v", e.Err)
}

func (e *TrayError) Unwrap() error {
	return e.Err
}
