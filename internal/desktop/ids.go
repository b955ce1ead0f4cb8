package desktop

import (
	"math/rand/v2"
	"strconv"
)

// WindowID identifies a logical window for the lifetime of the runtime.
type WindowID uint64

func (id WindowID) String() string {
	return strconv.FormatUint(uint64(id), 16)
}

func randomWindowID() WindowID {
	for {
		if id := WindowID(rand.Uint64()); id != 0 {
			return id
		}
	}
}
