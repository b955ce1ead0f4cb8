package desktop

import (
	"sync"
	"sync/atomic"
)

// Reply is a one-shot response channel. The executor answers at most once
// with Send or gives up with Drop; the caller waits in Recv.
type Reply[T any] struct {
	ch   chan T
	once sync.Once
}

// NewReply returns an unanswered reply.
func NewReply[T any]() *Reply[T] {
	return &Reply[T]{ch: make(chan T, 1)}
}

// Send delivers v. It reports false when the reply was already used.
func (r *Reply[T]) Send(v T) bool {
	sent := false
	r.once.Do(func() {
		r.ch <- v
		close(r.ch)
		sent = true
	})
	return sent
}

// Drop closes the reply without a value.
func (r *Reply[T]) Drop() {
	r.once.Do(func() {
		close(r.ch)
	})
}

// Recv blocks until the reply is answered or dropped.
func (r *Reply[T]) Recv() (T, error) {
	v, ok := <-r.ch
	if !ok {
		var zero T
		return zero, ErrFailedToReceiveMessage
	}
	return v, nil
}

// Result pairs a value with the error of the operation that produced it.
type Result[T any] struct {
	Value T
	Err   error
}

// CloseSignal lets close-request handlers keep a window open. Any handler
// answering true keeps it open; a later false does not undo that.
type CloseSignal struct {
	prevent atomic.Bool
}

func newCloseSignal() *CloseSignal {
	return &CloseSignal{}
}

// Send answers the close request; true keeps the window open.
func (s *CloseSignal) Send(prevent bool) {
	if prevent {
		s.prevent.Store(true)
	}
}

// Prevent keeps the window open.
func (s *CloseSignal) Prevent() {
	s.Send(true)
}

func (s *CloseSignal) prevented() bool {
	return s.prevent.Load()
}

// ExitRequestedAction is the answer to an exit request.
type ExitRequestedAction int

const (
	ExitAllow ExitRequestedAction = iota
	ExitPrevent
)

// ExitSignal lets the application keep running after its last window
// closed. ExitPrevent from any handler wins over ExitAllow.
type ExitSignal struct {
	prevent atomic.Bool
}

func newExitSignal() *ExitSignal {
	return &ExitSignal{}
}

// Send answers the exit request.
func (s *ExitSignal) Send(action ExitRequestedAction) {
	if action == ExitPrevent {
		s.prevent.Store(true)
	}
}

// Prevent keeps the event loop running.
func (s *ExitSignal) Prevent() {
	s.Send(ExitPrevent)
}

func (s *ExitSignal) prevented() bool {
	return s.prevent.Load()
}
