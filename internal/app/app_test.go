package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/deskrun/internal/desktop"
	"github.com/1broseidon/deskrun/internal/ipc"
	"github.com/1broseidon/deskrun/internal/platform"
	"github.com/1broseidon/deskrun/internal/platform/headless"
)

const baseConfig = `log_level: debug
backend: headless
windows:
  - label: main
    title: Main
    width: 640
    height: 480
  - label: web
    title: Web
    html: "<p>hello</p>"
shortcuts:
  - accelerator: Ctrl+Alt+H
    action: toggle
    window: main
  - accelerator: Ctrl+Alt+Q
    action: quit
ipc:
  enabled: false
`

const singleWindowConfig = `backend: headless
windows:
  - label: main
    title: Main
ipc:
  enabled: false
`

type harness struct {
	t       *testing.T
	app     *App
	backend *headless.Backend
	dir     string
	path    string

	cancel   context.CancelFunc
	done     chan error
	stopOnce sync.Once
	stopErr  error
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startApp runs an app on its own goroutine and waits until it is ready.
func startApp(t *testing.T, cfg string) *harness {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		t:       t,
		backend: headless.New(),
		dir:     dir,
		path:    path,
		cancel:  cancel,
		done:    make(chan error, 1),
	}

	created := make(chan *App, 1)
	go func() {
		a, err := New(Options{
			ConfigPath:    path,
			Backend:       h.backend,
			PIDPath:       filepath.Join(dir, "deskrun.pid"),
			Logger:        quietLogger(),
			AnyThread:     true,
			WatchDebounce: 20 * time.Millisecond,
		})
		if err != nil {
			created <- nil
			h.done <- err
			return
		}
		created <- a
		h.done <- a.Run(ctx)
	}()

	h.app = <-created
	if h.app == nil {
		cancel()
		require.NoError(t, <-h.done)
	}
	select {
	case <-h.app.Ready():
	case err := <-h.done:
		cancel()
		t.Fatalf("app exited during startup: %v", err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("app did not become ready")
	}
	t.Cleanup(func() { _ = h.stop() })
	return h
}

// stop cancels the app and waits for Run to return.
func (h *harness) stop() error {
	h.stopOnce.Do(func() {
		h.cancel()
		select {
		case h.stopErr = <-h.done:
		case <-time.After(2 * time.Second):
			h.t.Error("app did not stop")
		}
	})
	return h.stopErr
}

// exited waits for Run to return on its own.
func (h *harness) exited(wait time.Duration) bool {
	select {
	case err := <-h.done:
		assert.NoError(h.t, err)
		h.stopOnce.Do(func() {})
		return true
	case <-time.After(wait):
		return false
	}
}

func (h *harness) native(title string) *headless.Window {
	h.t.Helper()
	w, ok := h.backend.WindowByTitle(title)
	require.True(h.t, ok, "no window titled %q", title)
	return w
}

func (h *harness) press(accelerator string) bool {
	h.t.Helper()
	accel, err := platform.ParseAccelerator(accelerator)
	require.NoError(h.t, err)
	return h.backend.PressShortcut(accel)
}

func (h *harness) rewrite(cfg string) {
	h.t.Helper()
	require.NoError(h.t, os.WriteFile(h.path, []byte(cfg), 0o644))
}

func TestStartupCreatesConfiguredWindows(t *testing.T) {
	h := startApp(t, baseConfig)

	infos, err := h.app.Windows()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "main", infos[0].Label)
	assert.Equal(t, "Main", infos[0].Title)
	assert.Equal(t, 640, infos[0].Width)
	assert.Equal(t, 480, infos[0].Height)
	assert.True(t, infos[0].Visible)
	assert.Equal(t, "web", infos[1].Label)

	_, hasWebview := h.native("Main").Webview()
	assert.False(t, hasWebview, "windows without content get no webview")
	_, hasWebview = h.native("Web").Webview()
	assert.True(t, hasWebview)

	status := h.app.Status()
	assert.Equal(t, "headless", status.Backend)
	assert.Equal(t, 2, status.WindowCount)
	assert.Equal(t, os.Getpid(), status.PID)
	assert.Equal(t, h.path, status.ConfigPath)
}

func TestMonitors(t *testing.T) {
	h := startApp(t, singleWindowConfig)

	monitors, err := h.app.Monitors()
	require.NoError(t, err)
	require.Len(t, monitors, 1)
	assert.Equal(t, headless.DefaultMonitor.Name, monitors[0].Name)
	assert.Equal(t, int(headless.DefaultMonitor.Size.Width), monitors[0].Width)
}

func TestToggleShortcut(t *testing.T) {
	h := startApp(t, baseConfig)
	main := h.native("Main")

	require.True(t, h.press("Ctrl+Alt+H"))
	require.Eventually(t, func() bool { return !main.State().Visible }, time.Second, 5*time.Millisecond)

	require.True(t, h.press("Ctrl+Alt+H"))
	require.Eventually(t, func() bool { return main.State().Visible }, time.Second, 5*time.Millisecond)
}

func TestQuitShortcutStopsApp(t *testing.T) {
	h := startApp(t, baseConfig)

	require.True(t, h.press("Ctrl+Alt+Q"))
	assert.True(t, h.exited(2*time.Second))
}

func TestControllerWindowOperations(t *testing.T) {
	h := startApp(t, baseConfig)

	require.NoError(t, h.app.SetTitle("main", "Renamed"))
	info, err := h.app.WindowInfo("main")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", info.Title)

	require.NoError(t, h.app.Hide("main"))
	info, err = h.app.WindowInfo("main")
	require.NoError(t, err)
	assert.False(t, info.Visible)

	require.NoError(t, h.app.Focus("main"))
	info, err = h.app.WindowInfo("main")
	require.NoError(t, err)
	assert.True(t, info.Visible)

	require.NoError(t, h.app.Center("main"))

	require.NoError(t, h.app.Eval("web", "document.title = 'x'"))
	webview, ok := h.native("Web").Webview()
	require.True(t, ok)
	require.Eventually(t, func() bool {
		scripts := webview.Scripts()
		return len(scripts) == 1 && scripts[0] == "document.title = 'x'"
	}, time.Second, 5*time.Millisecond)
}

func TestControllerUnknownWindow(t *testing.T) {
	h := startApp(t, singleWindowConfig)

	_, err := h.app.WindowInfo("nope")
	assert.ErrorIs(t, err, desktop.ErrWindowNotFound)
	assert.ErrorIs(t, h.app.SetTitle("nope", "x"), desktop.ErrWindowNotFound)
	assert.ErrorIs(t, h.app.Show("nope"), desktop.ErrWindowNotFound)
	assert.ErrorIs(t, h.app.Eval("nope", "1"), desktop.ErrWindowNotFound)
}

func TestCreateWindowAtRuntime(t *testing.T) {
	h := startApp(t, singleWindowConfig)

	require.NoError(t, h.app.CreateWindow(ipc.CreateWindowPayload{
		Label:  "extra",
		HTML:   "<b>extra</b>",
		Width:  300,
		Height: 200,
	}))
	info, err := h.app.WindowInfo("extra")
	require.NoError(t, err)
	assert.Equal(t, "extra", info.Title, "title defaults to the label")
	assert.Equal(t, 300, info.Width)
	assert.Equal(t, 2, h.app.Status().WindowCount)

	err = h.app.CreateWindow(ipc.CreateWindowPayload{Label: "extra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	err = h.app.CreateWindow(ipc.CreateWindowPayload{Label: ""})
	assert.ErrorIs(t, err, desktop.ErrInvalidLabel)
}

func TestCloseRemovesLabel(t *testing.T) {
	h := startApp(t, baseConfig)

	require.NoError(t, h.app.Close("web"))
	require.Eventually(t, func() bool { return h.app.Status().WindowCount == 1 }, time.Second, 5*time.Millisecond)

	_, err := h.app.WindowInfo("web")
	assert.ErrorIs(t, err, desktop.ErrWindowNotFound)
	assert.False(t, h.exited(50*time.Millisecond), "one window remains")
}

func TestLastWindowClosedExits(t *testing.T) {
	h := startApp(t, singleWindowConfig)

	h.backend.RequestClose(h.native("Main").ID())
	assert.True(t, h.exited(2*time.Second))
}

func TestTrayKeepsAppAlive(t *testing.T) {
	h := startApp(t, singleWindowConfig+`tray:
  items:
    - id: main
      title: Show main
    - id: quit
      title: Quit
`)
	tray, ok := h.backend.Tray()
	require.True(t, ok)
	require.NotNil(t, tray.Icon(), "a default icon is generated")

	h.backend.RequestClose(h.native("Main").ID())
	require.Eventually(t, func() bool { return h.app.Status().WindowCount == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, h.exited(100*time.Millisecond), "tray keeps the app running")

	h.backend.ClickTrayMenuItem(platform.MenuHash("quit"))
	assert.True(t, h.exited(2*time.Second))
}

func TestReloadAppliesTitlesAndShortcuts(t *testing.T) {
	h := startApp(t, baseConfig)

	h.rewrite(strings.NewReplacer(
		"title: Main", "title: Main v2",
		"Ctrl+Alt+H", "Ctrl+Alt+J",
	).Replace(baseConfig))
	require.NoError(t, h.app.Reload())

	info, err := h.app.WindowInfo("main")
	require.NoError(t, err)
	assert.Equal(t, "Main v2", info.Title)

	assert.False(t, h.press("Ctrl+Alt+H"))
	assert.True(t, h.press("Ctrl+Alt+J"))
}

func TestReloadRejectsInvalidConfig(t *testing.T) {
	h := startApp(t, baseConfig)

	h.rewrite("log_level: loud\n")
	require.Error(t, h.app.Reload())

	info, err := h.app.WindowInfo("main")
	require.NoError(t, err)
	assert.Equal(t, "Main", info.Title)
	assert.True(t, h.press("Ctrl+Alt+H"), "previous shortcuts stay registered")
}

func TestReloadOpensNewWindows(t *testing.T) {
	h := startApp(t, singleWindowConfig)

	h.rewrite(`backend: headless
windows:
  - label: main
    title: Main
  - label: second
    title: Second
ipc:
  enabled: false
`)
	require.NoError(t, h.app.Reload())
	assert.Equal(t, 2, h.app.Status().WindowCount)
	h.native("Second")
}

func TestConfigWatcherReloads(t *testing.T) {
	h := startApp(t, singleWindowConfig)

	h.rewrite(strings.Replace(singleWindowConfig, "title: Main", "title: Watched", 1))
	require.Eventually(t, func() bool {
		info, err := h.app.WindowInfo("main")
		return err == nil && info.Title == "Watched"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestIPCServesController(t *testing.T) {
	dir := t.TempDir()
	socket := filepath.Join(dir, "deskrun.sock")
	h := startApp(t, strings.Replace(singleWindowConfig,
		"ipc:\n  enabled: false\n",
		"ipc:\n  enabled: true\n  socket: "+socket+"\n", 1))
	assert.Equal(t, socket, h.app.SocketPath())

	client := ipc.NewClient(socket)
	require.Eventually(t, func() bool { return client.Ping() == nil }, 2*time.Second, 10*time.Millisecond)

	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "headless", status.Backend)
	assert.Equal(t, 1, status.WindowCount)

	require.NoError(t, client.SetTitle("main", "Over IPC"))
	windows, err := client.ListWindows()
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "Over IPC", windows[0].Title)

	err = client.Show("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window not found")

	require.NoError(t, h.stop())
	_, err = os.Stat(socket)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPIDFileLifecycle(t *testing.T) {
	h := startApp(t, singleWindowConfig)
	pidPath := filepath.Join(h.dir, "deskrun.pid")

	pid, err := ReadPID(pidPath)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, h.stop())
	_, err = ReadPID(pidPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadPIDRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskrun.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0o600))

	_, err := ReadPID(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pid file")
}

func TestArrangeTilesVisibleWindows(t *testing.T) {
	h := startApp(t, baseConfig)

	labels, err := h.app.Arrange(ipc.ArrangePayload{})
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "web"}, labels)

	main, err := h.app.WindowInfo("main")
	require.NoError(t, err)
	assert.Equal(t, [4]int{0, 0, 960, 1080}, [4]int{main.X, main.Y, main.Width, main.Height})
	web, err := h.app.WindowInfo("web")
	require.NoError(t, err)
	assert.Equal(t, 960, web.X)

	require.NoError(t, h.app.Hide("web"))
	labels, err = h.app.Arrange(ipc.ArrangePayload{Layout: "columns", Gap: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, labels)
	main, err = h.app.WindowInfo("main")
	require.NoError(t, err)
	assert.Equal(t, 10, main.X)
	assert.Equal(t, 1900, main.Width)
}

func TestArrangeRejectsBadInput(t *testing.T) {
	h := startApp(t, singleWindowConfig)

	_, err := h.app.Arrange(ipc.ArrangePayload{Layout: "spiral"})
	require.Error(t, err)
	_, err = h.app.Arrange(ipc.ArrangePayload{Monitor: "nope"})
	require.ErrorContains(t, err, `monitor "nope" not found`)
}
