//go:build !linux && !windows

package mainthread

import (
	"bytes"
	"runtime"
	"strconv"
)

// Darwin and the BSDs expose no portable thread id through x/sys, so fall
// back to the goroutine id. On the locked goroutine the two are equivalent.
func current() ID {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(field, ' '); i > 0 {
		field = field[:i]
	}
	id, _ := strconv.ParseUint(string(field), 10, 64)
	return ID(id)
}

func isProcessMain() bool {
	return true
}
