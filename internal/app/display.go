package app

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/1broseidon/deskrun/internal/config"
)

const x11SocketDir = "/tmp/.X11-unix"

// Discovery hooks, replaced in tests.
var (
	commandOutputFn = commandOutput
	readFileFn      = os.ReadFile
	readDirFn       = os.ReadDir
)

// x11Env holds the settings the X11 backend connects with.
type x11Env struct {
	Display    string
	XAuthority string
}

// resolveX11Env fills DISPLAY and XAUTHORITY. Explicit config beats the
// environment; gaps are filled from the user's login session, the X socket
// directory and finally ~/.Xauthority.
func resolveX11Env(cfg *config.Config, getenv func(string) string) x11Env {
	e := x11Env{
		Display:    strings.TrimSpace(cfg.Display),
		XAuthority: strings.TrimSpace(cfg.XAuthority),
	}
	if e.Display == "" {
		e.Display = strings.TrimSpace(getenv("DISPLAY"))
	}
	if e.XAuthority == "" {
		e.XAuthority = strings.TrimSpace(getenv("XAUTHORITY"))
	}

	if e.Display == "" || e.XAuthority == "" {
		session := sessionX11Env()
		if e.Display == "" {
			e.Display = session.Display
		}
		if e.XAuthority == "" {
			e.XAuthority = session.XAuthority
		}
	}
	if e.Display == "" {
		e.Display = displayFromSockets(x11SocketDir)
	}
	if e.XAuthority == "" {
		home := getenv("HOME")
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		if home != "" {
			candidate := filepath.Join(home, ".Xauthority")
			if _, err := os.Stat(candidate); err == nil {
				e.XAuthority = candidate
			}
		}
	}
	return e
}

// export writes e into the process environment for xgb.
func (e x11Env) export() error {
	if e.Display == "" {
		return fmt.Errorf("no X display found; set display in the config or export DISPLAY")
	}
	if err := os.Setenv("DISPLAY", e.Display); err != nil {
		return err
	}
	if e.XAuthority != "" {
		return os.Setenv("XAUTHORITY", e.XAuthority)
	}
	return nil
}

func commandOutput(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	return string(out), err
}

// sessionX11Env asks logind for a graphical session of the current user and
// reads the session leader's environment.
func sessionX11Env() x11Env {
	out, err := commandOutputFn("loginctl", "list-sessions", "--no-legend")
	if err != nil {
		return x11Env{}
	}
	for _, id := range userSessions(out, strconv.Itoa(os.Getuid())) {
		display := sessionProperty(id, "Display")
		if display == "" || strings.EqualFold(display, "n/a") {
			continue
		}
		e := x11Env{Display: display}
		if leader := sessionProperty(id, "Leader"); leader != "" && leader != "0" {
			if env, err := procEnviron(leader); err == nil {
				if d := strings.TrimSpace(env["DISPLAY"]); d != "" {
					e.Display = d
				}
				e.XAuthority = strings.TrimSpace(env["XAUTHORITY"])
			}
		}
		return e
	}
	return x11Env{}
}

// userSessions picks the session ids owned by uid from loginctl output.
func userSessions(output, uid string) []string {
	var ids []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == uid {
			ids = append(ids, fields[0])
		}
	}
	return ids
}

func sessionProperty(id, prop string) string {
	out, err := commandOutputFn("loginctl", "show-session", id, "-p", prop, "--value")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func procEnviron(pid string) (map[string]string, error) {
	data, err := readFileFn(filepath.Join("/proc", pid, "environ"))
	if err != nil {
		return nil, err
	}
	env := make(map[string]string)
	for _, kv := range strings.Split(string(data), "\x00") {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

// displayFromSockets returns the highest numbered display with a socket in
// dir, or "".
func displayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}
	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "X") {
			continue
		}
		if n, err := strconv.Atoi(name[1:]); err == nil {
			displays = append(displays, n)
		}
	}
	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return ":" + strconv.Itoa(displays[len(displays)-1])
}
