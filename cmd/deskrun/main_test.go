package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/deskrun/internal/config"
	"github.com/1broseidon/deskrun/internal/ipc"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	cmd := newRootCmd()
	want := map[string][]string{
		"run":      nil,
		"status":   nil,
		"monitors": nil,
		"window":   {"list", "info", "title", "show", "hide", "focus", "center", "close", "eval", "create", "arrange", "pick"},
		"config":   {"init", "validate", "print", "explain"},
		"mcp":      {"serve"},
		"ui":       nil,
	}
	for name, subs := range want {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		require.Equal(t, name, sub.Name())
		assert.NotEmpty(t, sub.GroupID, name)
		for _, s := range subs {
			found, _, err := cmd.Find([]string{name, s})
			require.NoError(t, err, name+" "+s)
			assert.Equal(t, s, found.Name())
		}
	}
}

func TestConfigInitValidatePrint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskrun", "config.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	_, err = execute(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--force", "--config", path)
	require.NoError(t, err)

	out, err = execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "config: ok\n", out)

	out, err = execute(t, "config", "print", "--config", path)
	require.NoError(t, err)
	want, err := config.DefaultConfig().Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(want), out)
}

func TestConfigValidateReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))

	_, err := execute(t, "config", "validate", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestConfigExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("windows:\n  - label: main\n    title: Hello\n"), 0o644))

	out, err := execute(t, "config", "explain", "windows.main.title", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "path: windows.main.title\n")
	assert.Contains(t, out, "source: "+path+":3:")
	assert.Contains(t, out, "value:\nHello\n")

	out, err = execute(t, "config", "explain", "log_level", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "source: default\n")

	_, err = execute(t, "config", "explain", "nope.nothing", "--config", path)
	require.Error(t, err)
}

func TestPrintStatus(t *testing.T) {
	s := &ipc.StatusData{PID: 7, Backend: "headless", WindowCount: 2, UptimeSeconds: 90, ConfigPath: "/tmp/c.yaml"}

	var plain bytes.Buffer
	printStatus(&plain, s, false)
	assert.Equal(t, "pid: 7\nbackend: headless\nwindow_count: 2\nuptime_seconds: 90\nconfig_path: /tmp/c.yaml\n", plain.String())

	var pretty bytes.Buffer
	printStatus(&pretty, s, true)
	assert.Contains(t, pretty.String(), "Uptime   1m30s")
	assert.Contains(t, pretty.String(), "Windows  2")
}

// stubController serves a fixed set of windows and records mutations.
type stubController struct {
	mu      sync.Mutex
	windows map[string]ipc.WindowInfo
	calls   []string
}

func newStubController() *stubController {
	return &stubController{windows: map[string]ipc.WindowInfo{
		"main":  {Label: "main", Title: "Main", Width: 800, Height: 600, Visible: true},
		"about": {Label: "about", Title: "About", X: 10, Y: 20, Width: 300, Height: 200},
	}}
}

func (s *stubController) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubController) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubController) Status() ipc.StatusData {
	return ipc.StatusData{PID: 1, Backend: "headless", WindowCount: len(s.windows)}
}

func (s *stubController) Monitors() ([]ipc.MonitorInfo, error) {
	return []ipc.MonitorInfo{{Name: "HDMI-1", Width: 2560, Height: 1440, ScaleFactor: 1.5}}, nil
}

func (s *stubController) Windows() ([]ipc.WindowInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ipc.WindowInfo, 0, len(s.windows))
	for _, w := range s.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s *stubController) WindowInfo(label string) (ipc.WindowInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[label]
	if !ok {
		return ipc.WindowInfo{}, fmt.Errorf("window not found: %s", label)
	}
	return w, nil
}

func (s *stubController) SetTitle(label, title string) error {
	s.record("title:" + label + ":" + title)
	return nil
}

func (s *stubController) Show(label string) error   { s.record("show:" + label); return nil }
func (s *stubController) Hide(label string) error   { s.record("hide:" + label); return nil }
func (s *stubController) Focus(label string) error  { s.record("focus:" + label); return nil }
func (s *stubController) Center(label string) error { s.record("center:" + label); return nil }
func (s *stubController) Close(label string) error  { s.record("close:" + label); return nil }

func (s *stubController) Eval(label, script string) error {
	s.record("eval:" + label + ":" + script)
	return nil
}

func (s *stubController) CreateWindow(p ipc.CreateWindowPayload) error {
	s.record(fmt.Sprintf("create:%s:%s:%.0fx%.0f", p.Label, p.HTML, p.Width, p.Height))
	return nil
}

func (s *stubController) Reload() error { return nil }

func (s *stubController) Arrange(p ipc.ArrangePayload) ([]string, error) {
	s.record(fmt.Sprintf("arrange:%s:%d", p.Layout, p.Gap))
	return []string{"about", "main"}, nil
}

func startStub(t *testing.T) (*stubController, string) {
	t.Helper()
	ctrl := newStubController()
	socket := filepath.Join(t.TempDir(), "deskrun.sock")
	srv := ipc.NewServer(socket, ctrl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return ctrl, socket
}

func TestWindowList(t *testing.T) {
	_, socket := startStub(t)

	out, err := execute(t, "window", "list", "--socket", socket)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "LABEL"))
	assert.Contains(t, lines[1], "about")
	assert.Contains(t, lines[1], "10,20")
	assert.Contains(t, lines[2], "800x600")

	out, err = execute(t, "window", "ls", "--json", "--socket", socket)
	require.NoError(t, err)
	var windows []ipc.WindowInfo
	require.NoError(t, json.Unmarshal([]byte(out), &windows))
	assert.Len(t, windows, 2)
}

func TestWindowInfo(t *testing.T) {
	_, socket := startStub(t)

	out, err := execute(t, "window", "info", "main", "--socket", socket)
	require.NoError(t, err)
	var info ipc.WindowInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "Main", info.Title)

	_, err = execute(t, "window", "info", "missing", "--socket", socket)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window not found")
}

func TestWindowActions(t *testing.T) {
	ctrl, socket := startStub(t)

	for _, args := range [][]string{
		{"window", "title", "main", "Renamed"},
		{"window", "hide", "main"},
		{"window", "show", "main"},
		{"window", "focus", "about"},
		{"window", "center", "about"},
		{"window", "eval", "main", "1+1"},
		{"window", "create", "notes", "--html", "<p>hi</p>", "--width", "400", "--height", "300"},
		{"window", "close", "about"},
	} {
		_, err := execute(t, append(args, "--socket", socket)...)
		require.NoError(t, err, strings.Join(args, " "))
	}

	assert.Equal(t, []string{
		"title:main:Renamed",
		"hide:main",
		"show:main",
		"focus:about",
		"center:about",
		"eval:main:1+1",
		"create:notes:<p>hi</p>:400x300",
		"close:about",
	}, ctrl.recorded())
}

func TestWindowCreateRejectsURLAndHTML(t *testing.T) {
	ctrl, socket := startStub(t)

	_, err := execute(t, "window", "create", "x", "--url", "https://example.com", "--html", "<p/>", "--socket", socket)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
	assert.Empty(t, ctrl.recorded())
}

func TestStatusWithoutRunningApp(t *testing.T) {
	_, err := execute(t, "status", "--socket", filepath.Join(t.TempDir(), "none.sock"))
	require.Error(t, err)
}

func TestWindowArrange(t *testing.T) {
	ctrl, socket := startStub(t)

	out, err := execute(t, "window", "arrange", "--layout", "columns", "--gap", "6", "--socket", socket)
	require.NoError(t, err)
	assert.Equal(t, "arranged: about, main\n", out)

	_, err = execute(t, "window", "arrange", "--layout", "spiral", "--socket", socket)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown layout")

	assert.Equal(t, []string{"arrange:columns:6"}, ctrl.recorded())
}

func TestMonitorsCommand(t *testing.T) {
	_, socket := startStub(t)

	out, err := execute(t, "monitors", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "HDMI-1")
	assert.Contains(t, out, "2560x1440")
	assert.Contains(t, out, "1.5")
}
