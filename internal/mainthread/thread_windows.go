//go:build windows

package mainthread

import "golang.org/x/sys/windows"

func current() ID {
	return ID(windows.GetCurrentThreadId())
}

func isProcessMain() bool {
	return true
}
