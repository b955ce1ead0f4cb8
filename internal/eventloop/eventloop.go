// Package eventloop is the native event loop the desktop runtime pumps on
// its main thread.
//
// The loop merges two sources into one FIFO queue: native window-system
// events posted through Emit and user events posted through a Proxy from
// any goroutine. Only the goroutine that created the loop may run it.
package eventloop

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/deskrun/internal/mainthread"
	"github.com/1broseidon/deskrun/internal/platform"
)

// ErrEventLoopClosed is returned when sending to a loop that has terminated.
var ErrEventLoopClosed = errors.New("event loop closed")

// ControlFlow tells the loop what to do after the current event.
type ControlFlow int

const (
	// Wait blocks until the next event arrives.
	Wait ControlFlow = iota
	// Poll starts the next iteration immediately.
	Poll
	// Exit terminates the loop after the current iteration.
	Exit
)

func (c ControlFlow) String() string {
	switch c {
	case Wait:
		return "wait"
	case Poll:
		return "poll"
	case Exit:
		return "exit"
	}
	return fmt.Sprintf("ControlFlow(%d)", int(c))
}

// Handler receives every event of the loop on the owning goroutine.
type Handler[T any] func(ev Event[T], cf *ControlFlow)

// Option configures an EventLoop.
type Option[T any] func(*EventLoop[T])

// WithDiscard installs a hook for user events still queued when the loop
// terminates.
func WithDiscard[T any](fn func(T)) Option[T] {
	return func(l *EventLoop[T]) {
		l.onDiscard = fn
	}
}

type entry[T any] struct {
	native platform.Event
	user   T
	isUser bool
}

// EventLoop is an unbounded FIFO of native and user events bound to the
// OS thread that created it.
type EventLoop[T any] struct {
	owner mainthread.ID

	mu     sync.Mutex
	queue  []entry[T]
	closed bool
	// wake holds at most one pending wakeup.
	wake chan struct{}

	onDiscard func(T)

	running bool
	started bool
}

var _ platform.EventSink = (*EventLoop[int])(nil)

// New creates a loop owned by the calling goroutine, which must already be
// locked to its OS thread.
func New[T any](opts ...Option[T]) *EventLoop[T] {
	l := &EventLoop[T]{
		owner: mainthread.Current(),
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Owner returns the thread the loop is bound to.
func (l *EventLoop[T]) Owner() mainthread.ID {
	return l.owner
}

// CreateProxy returns a handle for posting user events from any goroutine.
func (l *EventLoop[T]) CreateProxy() *Proxy[T] {
	return &Proxy[T]{loop: l}
}

// Emit posts a native event. Events emitted after the loop terminated are
// dropped.
func (l *EventLoop[T]) Emit(ev platform.Event) {
	l.push(entry[T]{native: ev})
}

// Pending returns the number of queued events.
func (l *EventLoop[T]) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Closed reports whether the loop has terminated.
func (l *EventLoop[T]) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *EventLoop[T]) push(e entry[T]) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, e)
	l.mu.Unlock()
	l.wakeup()
	return true
}

func (l *EventLoop[T]) wakeup() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *EventLoop[T]) pop() (entry[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return entry[T]{}, false
	}
	e := l.queue[0]
	var zero entry[T]
	l.queue[0] = zero
	l.queue = l.queue[1:]
	return e, true
}

// Run pumps events until the handler sets Exit, then delivers LoopDestroyed
// and terminates the loop. Every queued user event left at that point goes
// to the discard hook and every later send fails.
func (l *EventLoop[T]) Run(handler Handler[T]) {
	l.enter()
	defer l.leave()

	cf := Wait
	for {
		l.iterate(handler, &cf)
		if cf == Exit {
			break
		}
		if cf == Wait {
			l.wait()
		}
	}
	handler(Event[T]{Kind: KindLoopDestroyed}, &cf)
	l.Close()
}

// RunReturn pumps events until the handler sets Exit and then returns with
// the loop still usable. A handler that sets Exit on MainEventsCleared
// processes exactly one batch of events.
func (l *EventLoop[T]) RunReturn(handler Handler[T]) {
	l.enter()
	defer l.leave()

	cf := Wait
	for {
		l.iterate(handler, &cf)
		if cf == Exit {
			return
		}
		if cf == Wait {
			l.wait()
		}
	}
}

// Close terminates the loop without running it. Queued user events go to the
// discard hook.
func (l *EventLoop[T]) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	pending := l.queue
	l.queue = nil
	l.mu.Unlock()

	if l.onDiscard == nil {
		return
	}
	for _, e := range pending {
		if e.isUser {
			l.onDiscard(e.user)
		}
	}
}

func (l *EventLoop[T]) enter() {
	if cur := mainthread.Current(); cur != l.owner {
		panic(fmt.Sprintf("eventloop: run on thread %d, loop is owned by thread %d", cur, l.owner))
	}
	if l.running {
		panic("eventloop: loop is already running")
	}
	if l.Closed() {
		panic("eventloop: loop has terminated")
	}
	l.running = true
}

func (l *EventLoop[T]) leave() {
	l.running = false
}

// iterate delivers NewEvents, every queued event including those posted
// while the batch runs, then MainEventsCleared.
func (l *EventLoop[T]) iterate(handler Handler[T], cf *ControlFlow) {
	cause := StartWaitCancelled
	switch {
	case !l.started:
		cause = StartInit
		l.started = true
	case *cf == Poll:
		cause = StartPoll
	}
	handler(Event[T]{Kind: KindNewEvents, Cause: cause}, cf)

	for {
		e, ok := l.pop()
		if !ok {
			break
		}
		if e.isUser {
			handler(Event[T]{Kind: KindUser, User: e.user}, cf)
		} else {
			handler(Event[T]{Kind: KindNative, Native: e.native}, cf)
		}
	}

	handler(Event[T]{Kind: KindMainEventsCleared}, cf)
}

func (l *EventLoop[T]) wait() {
	if l.Pending() > 0 {
		return
	}
	<-l.wake
}
