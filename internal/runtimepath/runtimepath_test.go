package runtimepath

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/deskrun-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath("")
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if socket != td+"/deskrun.sock" {
		t.Fatalf("SocketPath() = %q", socket)
	}

	socket, err = SocketPath("/var/run/custom.sock")
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if socket != "/var/run/custom.sock" {
		t.Fatalf("SocketPath() ignored override: %q", socket)
	}
}

func TestPIDPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	pid, err := PIDPath()
	if err != nil {
		t.Fatalf("PIDPath() error: %v", err)
	}
	if !strings.HasSuffix(pid, "/deskrun.pid") {
		t.Fatalf("PIDPath() = %q, missing suffix", pid)
	}
}
