package desktop

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/1broseidon/deskrun/internal/platform"
)

// shortcutState is the executor side of global shortcuts.
type shortcutState struct {
	mu       sync.Mutex
	manager  platform.ShortcutManager
	handlers map[platform.AcceleratorID]func()
	// registered maps canonical accelerators to their native grabs. Every
	// manager of a runtime shares it.
	registered map[string]platform.Shortcut
}

func newShortcutState(m platform.ShortcutManager) *shortcutState {
	return &shortcutState{
		manager:    m,
		handlers:   make(map[platform.AcceleratorID]func()),
		registered: make(map[string]platform.Shortcut),
	}
}

func (s *shortcutState) handle(op ShortcutOp, log *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manager == nil {
		switch o := op.(type) {
		case ShortcutIsRegistered:
			answer(log, o.Reply, false)
		case ShortcutRegister:
			answer(log, o.Reply, Result[platform.Shortcut]{Err: platform.ErrNotSupported})
		case ShortcutUnregister:
			answer(log, o.Reply, platform.ErrNotSupported)
		case ShortcutUnregisterAll:
			answer(log, o.Reply, platform.ErrNotSupported)
		}
		return
	}
	switch o := op.(type) {
	case ShortcutIsRegistered:
		answer(log, o.Reply, s.manager.IsRegistered(o.Accelerator))
	case ShortcutRegister:
		sc, err := s.manager.Register(o.Accelerator)
		answer(log, o.Reply, Result[platform.Shortcut]{Value: sc, Err: err})
	case ShortcutUnregister:
		answer(log, o.Reply, s.manager.Unregister(o.Shortcut))
	case ShortcutUnregisterAll:
		answer(log, o.Reply, s.manager.UnregisterAll())
	}
}

func (s *shortcutState) handler(id platform.AcceleratorID) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handlers[id]
	return h, ok
}

func (s *shortcutState) setHandler(id platform.AcceleratorID, h func()) {
	s.mu.Lock()
	s.handlers[id] = h
	s.mu.Unlock()
}

func (s *shortcutState) removeHandler(id platform.AcceleratorID) {
	s.mu.Lock()
	delete(s.handlers, id)
	s.mu.Unlock()
}

func (s *shortcutState) markRegistered(accel string, sc platform.Shortcut) {
	s.mu.Lock()
	s.registered[accel] = sc
	s.mu.Unlock()
}

func (s *shortcutState) takeRegistered(accel string) (platform.Shortcut, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.registered[accel]
	delete(s.registered, accel)
	return sc, ok
}

func (s *shortcutState) registeredAccelerators() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.registered))
	for accel := range s.registered {
		out = append(out, accel)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}

// reset forgets every handler and registration.
func (s *shortcutState) reset() {
	s.mu.Lock()
	s.handlers = make(map[platform.AcceleratorID]func())
	s.registered = make(map[string]platform.Shortcut)
	s.mu.Unlock()
}

// GlobalShortcutManager registers system-wide shortcuts from any goroutine.
// Handlers run on the main thread. Managers of one runtime share their
// registrations.
type GlobalShortcutManager struct {
	ctx   *Context
	state *shortcutState
}

func request[T any](c *Context, build func(*Reply[T]) Message) (T, error) {
	r := NewReply[T]()
	if err := c.sendUserMessage(build(r)); err != nil {
		var zero T
		return zero, err
	}
	return r.Recv()
}

func parseShortcut(accelerator string) (platform.Accelerator, error) {
	accel, err := platform.ParseAccelerator(accelerator)
	if err != nil {
		return platform.Accelerator{}, &GlobalShortcutError{Accelerator: accelerator, Err: err}
	}
	return accel, nil
}

// IsRegistered asks the window system whether accelerator is taken.
func (m *GlobalShortcutManager) IsRegistered(accelerator string) (bool, error) {
	accel, err := parseShortcut(accelerator)
	if err != nil {
		return false, err
	}
	return request(m.ctx, func(r *Reply[bool]) Message {
		return GlobalShortcutMessage{Op: ShortcutIsRegistered{Accelerator: accel, Reply: r}}
	})
}

// Register binds handler to accelerator.
func (m *GlobalShortcutManager) Register(accelerator string, handler func()) error {
	accel, err := parseShortcut(accelerator)
	if err != nil {
		return err
	}
	prev, hadPrev := m.state.handler(accel.ID())
	m.state.setHandler(accel.ID(), handler)
	res, err := request(m.ctx, func(r *Reply[Result[platform.Shortcut]]) Message {
		return GlobalShortcutMessage{Op: ShortcutRegister{Accelerator: accel, Reply: r}}
	})
	if err == nil {
		err = res.Err
	}
	if err != nil {
		if hadPrev {
			m.state.setHandler(accel.ID(), prev)
		} else {
			m.state.removeHandler(accel.ID())
		}
		return &GlobalShortcutError{Accelerator: accelerator, Err: err}
	}
	m.state.markRegistered(accel.String(), res.Value)
	return nil
}

// Unregister releases accelerator. Releasing an accelerator nobody
// registered is an error.
func (m *GlobalShortcutManager) Unregister(accelerator string) error {
	accel, err := parseShortcut(accelerator)
	if err != nil {
		return err
	}
	sc, ok := m.state.takeRegistered(accel.String())
	if !ok {
		return &GlobalShortcutError{Accelerator: accelerator, Err: fmt.Errorf("not registered")}
	}

	err = replyErr(request(m.ctx, func(r *Reply[error]) Message {
		return GlobalShortcutMessage{Op: ShortcutUnregister{Shortcut: sc, Reply: r}}
	}))
	m.state.removeHandler(sc.ID)
	if err != nil {
		return &GlobalShortcutError{Accelerator: accelerator, Err: err}
	}
	return nil
}

// UnregisterAll releases every shortcut.
func (m *GlobalShortcutManager) UnregisterAll() error {
	err := replyErr(request(m.ctx, func(r *Reply[error]) Message {
		return GlobalShortcutMessage{Op: ShortcutUnregisterAll{Reply: r}}
	}))
	m.state.reset()
	if err != nil {
		return &GlobalShortcutError{Accelerator: "*", Err: err}
	}
	return nil
}

// Registered lists the registered accelerators in canonical form.
func (m *GlobalShortcutManager) Registered() []string {
	return m.state.registeredAccelerators()
}

// replyErr folds a dispatch error and an operation error into one.
func replyErr(opErr error, err error) error {
	if err != nil {
		return err
	}
	return opErr
}
