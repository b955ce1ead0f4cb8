// Package mainthread captures and compares OS thread identity.
//
// The desktop runtime pins its event loop to one OS thread. Code that must
// decide between running inline and queueing work for that thread compares
// Current against the identity returned by Lock.
package mainthread

import "runtime"

// ID identifies an OS thread for the lifetime of that thread.
type ID uint64

// Lock wires the calling goroutine to its OS thread and returns the thread's
// identity. No other goroutine runs on a locked thread, so a later Current
// call returns the same ID only on this goroutine.
func Lock() ID {
	runtime.LockOSThread()
	return Current()
}

// Current returns the identity of the calling OS thread.
func Current() ID {
	return current()
}

// IsProcessMain reports whether the caller runs on the thread the process
// started on. Platforms that cannot tell report true.
func IsProcessMain() bool {
	return isProcessMain()
}
