//go:build linux

package mainthread

import "golang.org/x/sys/unix"

func current() ID {
	return ID(unix.Gettid())
}

func isProcessMain() bool {
	return unix.Gettid() == unix.Getpid()
}
