package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/1broseidon/deskrun/internal/config"
)

// stubDiscovery disables session and socket discovery for a test.
func stubDiscovery(t *testing.T, session func(name string, args ...string) (string, error), sockets []string) {
	t.Helper()
	prevCmd, prevDir := commandOutputFn, readDirFn
	t.Cleanup(func() { commandOutputFn, readDirFn = prevCmd, prevDir })

	if session == nil {
		session = func(string, ...string) (string, error) { return "", errors.New("no logind") }
	}
	commandOutputFn = session

	fsys := fstest.MapFS{}
	for _, name := range sockets {
		fsys[name] = &fstest.MapFile{}
	}
	readDirFn = func(string) ([]os.DirEntry, error) { return fs.ReadDir(fsys, ".") }
}

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestResolveX11EnvConfigWins(t *testing.T) {
	stubDiscovery(t, nil, []string{"X9"})

	got := resolveX11Env(&config.Config{Display: ":1", XAuthority: "/tmp/cfg"},
		envOf(map[string]string{"DISPLAY": ":7", "XAUTHORITY": "/tmp/env"}))
	if got.Display != ":1" || got.XAuthority != "/tmp/cfg" {
		t.Fatalf("resolveX11Env = %+v, want config values", got)
	}
}

func TestResolveX11EnvUsesEnvironment(t *testing.T) {
	stubDiscovery(t, nil, nil)

	got := resolveX11Env(&config.Config{},
		envOf(map[string]string{"DISPLAY": ":7", "XAUTHORITY": "/tmp/env"}))
	if got.Display != ":7" || got.XAuthority != "/tmp/env" {
		t.Fatalf("resolveX11Env = %+v, want environment values", got)
	}
}

func TestResolveX11EnvFallsBackToSocketsAndHome(t *testing.T) {
	stubDiscovery(t, nil, []string{"X0", "X2", "X10", "not-a-display"})

	home := t.TempDir()
	xauth := filepath.Join(home, ".Xauthority")
	if err := os.WriteFile(xauth, []byte("cookie"), 0o600); err != nil {
		t.Fatalf("write xauthority: %v", err)
	}

	got := resolveX11Env(&config.Config{}, envOf(map[string]string{"HOME": home}))
	if got.Display != ":10" {
		t.Fatalf("Display = %q, want %q", got.Display, ":10")
	}
	if got.XAuthority != xauth {
		t.Fatalf("XAuthority = %q, want %q", got.XAuthority, xauth)
	}
}

func TestResolveX11EnvFromLoginSession(t *testing.T) {
	uid := strconv.Itoa(os.Getuid())
	stubDiscovery(t, func(name string, args ...string) (string, error) {
		switch {
		case len(args) > 0 && args[0] == "list-sessions":
			return "3 " + uid + " user seat0\n", nil
		case len(args) > 3 && args[3] == "Display":
			return ":4\n", nil
		default:
			return "0\n", nil
		}
	}, nil)

	got := resolveX11Env(&config.Config{}, envOf(map[string]string{"HOME": t.TempDir()}))
	if got.Display != ":4" {
		t.Fatalf("Display = %q, want %q", got.Display, ":4")
	}
}

func TestDisplayFromSocketsEmpty(t *testing.T) {
	stubDiscovery(t, nil, nil)
	if got := displayFromSockets(x11SocketDir); got != "" {
		t.Fatalf("displayFromSockets = %q, want empty", got)
	}
}

func TestUserSessions(t *testing.T) {
	out := "  1 1000 alice seat0\n 2 1001 bob\n\n 5 1000 alice\n"
	got := userSessions(out, "1000")
	if len(got) != 2 || got[0] != "1" || got[1] != "5" {
		t.Fatalf("userSessions = %v, want [1 5]", got)
	}
}

func TestExportRequiresDisplay(t *testing.T) {
	if err := (x11Env{}).export(); err == nil {
		t.Fatal("export without a display should fail")
	}
}
