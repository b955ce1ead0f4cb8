//go:build !linux

package x11backend

import (
	"fmt"
	"runtime"

	"github.com/1broseidon/deskrun/internal/platform"
)

// New fails outside linux.
func New() (platform.Backend, error) {
	return nil, fmt.Errorf("x11 backend on %s: %w", runtime.GOOS, platform.ErrNotSupported)
}
