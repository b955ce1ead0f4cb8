package eventloop

import "github.com/1broseidon/deskrun/internal/platform"

// Kind identifies the shape of an Event.
type Kind int

const (
	KindNewEvents Kind = iota
	KindNative
	KindUser
	KindMainEventsCleared
	KindLoopDestroyed
)

func (k Kind) String() string {
	switch k {
	case KindNewEvents:
		return "new-events"
	case KindNative:
		return "native"
	case KindUser:
		return "user"
	case KindMainEventsCleared:
		return "main-events-cleared"
	case KindLoopDestroyed:
		return "loop-destroyed"
	}
	return "unknown"
}

// StartCause explains why a new batch of events started.
type StartCause int

const (
	// StartInit is the first batch ever delivered by the loop.
	StartInit StartCause = iota
	// StartPoll follows an iteration that asked for Poll.
	StartPoll
	// StartWaitCancelled follows a wait that an incoming event interrupted.
	StartWaitCancelled
)

// Event is delivered to the loop handler. Cause is set for KindNewEvents,
// Native for KindNative and User for KindUser.
type Event[T any] struct {
	Kind   Kind
	Cause  StartCause
	Native platform.Event
	User   T
}
