package desktop

import "github.com/1broseidon/deskrun/internal/eventloop"

// closeState tracks a window through the close protocol:
//
//	Open -> CloseRequested -> VetoedByWindow
//	                       -> Closing -> VetoedByApp
//	                                  -> Terminating
//
// Closing is final when other windows remain open.
type closeState int

const (
	stateOpen closeState = iota
	stateCloseRequested
	stateVetoedByWindow
	stateClosing
	stateVetoedByApp
	stateTerminating
)

func (s closeState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateCloseRequested:
		return "close-requested"
	case stateVetoedByWindow:
		return "vetoed-by-window"
	case stateClosing:
		return "closing"
	case stateVetoedByApp:
		return "vetoed-by-app"
	case stateTerminating:
		return "terminating"
	}
	return "unknown"
}

// requestClose asks the window's listeners and the application whether the
// window may close, then closes it unless one of them prevented it.
func (e *executor) requestClose(id WindowID, cf *eventloop.ControlFlow, callback func(RunEvent)) closeState {
	w, ok := e.windows.get(id)
	if !ok {
		return stateOpen
	}

	state := stateCloseRequested
	signal := newCloseSignal()
	e.notifyWindow(id, WindowCloseRequested{Signal: signal})
	callback(CloseRequested{Label: w.label, Signal: signal})
	if signal.prevented() {
		state = stateVetoedByWindow
		e.logger.Debug("close prevented", "label", w.label, "state", state)
		return state
	}
	return e.closeWindow(id, cf, callback, true)
}

// closeWindow removes a window. When it was the last one the application may
// still keep the loop alive through the ExitRequested signal.
func (e *executor) closeWindow(id WindowID, cf *eventloop.ControlFlow, callback func(RunEvent), destroy bool) closeState {
	w, ok := e.windows.remove(id)
	if !ok {
		return stateOpen
	}
	state := stateClosing

	e.ctx.webviewIDs.remove(w.window.ID())
	if destroy {
		w.window.Destroy()
	}
	e.notifyWindow(id, WindowDestroyed{})
	e.ctx.retireWindow(id)
	callback(WindowClose{Label: w.label})

	if e.windows.len() > 0 {
		e.logger.Debug("window closed", "label", w.label, "state", state)
		return state
	}

	signal := newExitSignal()
	callback(ExitRequested{Label: w.label, Signal: signal})
	if signal.prevented() {
		state = stateVetoedByApp
		e.logger.Debug("exit prevented", "label", w.label, "state", state)
		return state
	}

	state = stateTerminating
	e.exiting = true
	*cf = eventloop.Exit
	e.logger.Debug("last window closed", "label", w.label, "state", state)
	return state
}
