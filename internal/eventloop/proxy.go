package eventloop

// Proxy posts user events to an EventLoop from any goroutine.
type Proxy[T any] struct {
	loop *EventLoop[T]
}

// SendEvent enqueues ev and wakes the loop. It never blocks on the loop and
// fails with ErrEventLoopClosed once the loop has terminated.
func (p *Proxy[T]) SendEvent(ev T) error {
	if !p.loop.push(entry[T]{user: ev, isUser: true}) {
		return ErrEventLoopClosed
	}
	return nil
}

// Closed reports whether the loop behind the proxy has terminated.
func (p *Proxy[T]) Closed() bool {
	return p.loop.Closed()
}
