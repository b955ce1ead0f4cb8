package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	mu      sync.Mutex
	windows map[string]*WindowInfo
	calls   []string
	created []CreateWindowPayload
	arrange []ArrangePayload
	reloads int
}

func newFakeController() *fakeController {
	return &fakeController{windows: map[string]*WindowInfo{
		"main": {Label: "main", Title: "Main", Width: 800, Height: 600, Visible: true, ScaleFactor: 1},
	}}
}

func (f *fakeController) window(label string) (*WindowInfo, error) {
	w, ok := f.windows[label]
	if !ok {
		return nil, fmt.Errorf("window %q not found", label)
	}
	return w, nil
}

func (f *fakeController) record(op, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.window(label); err != nil {
		return err
	}
	f.calls = append(f.calls, op+":"+label)
	return nil
}

func (f *fakeController) recorded() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...), f.reloads
}

func (f *fakeController) Status() StatusData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return StatusData{PID: 42, Backend: "headless", WindowCount: len(f.windows)}
}

func (f *fakeController) Monitors() ([]MonitorInfo, error) {
	return []MonitorInfo{{Name: "virtual-0", Width: 1920, Height: 1080, ScaleFactor: 1}}, nil
}

func (f *fakeController) Windows() ([]WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]WindowInfo, 0, len(f.windows))
	for _, w := range f.windows {
		out = append(out, *w)
	}
	return out, nil
}

func (f *fakeController) WindowInfo(label string) (WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.window(label)
	if err != nil {
		return WindowInfo{}, err
	}
	return *w, nil
}

func (f *fakeController) SetTitle(label, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, err := f.window(label)
	if err != nil {
		return err
	}
	w.Title = title
	return nil
}

func (f *fakeController) Show(label string) error   { return f.record("show", label) }
func (f *fakeController) Hide(label string) error   { return f.record("hide", label) }
func (f *fakeController) Focus(label string) error  { return f.record("focus", label) }
func (f *fakeController) Center(label string) error { return f.record("center", label) }
func (f *fakeController) Close(label string) error  { return f.record("close", label) }

func (f *fakeController) Eval(label, script string) error {
	return f.record("eval("+script+")", label)
}

func (f *fakeController) CreateWindow(p CreateWindowPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.windows[p.Label]; ok {
		return errors.New("label already in use")
	}
	f.created = append(f.created, p)
	f.windows[p.Label] = &WindowInfo{Label: p.Label, Title: p.Title}
	return nil
}

func (f *fakeController) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeController) Arrange(p ArrangePayload) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Layout == "spiral" {
		return nil, fmt.Errorf("unknown layout %q", p.Layout)
	}
	f.arrange = append(f.arrange, p)
	return []string{"main"}, nil
}

func startServer(t *testing.T, ctrl Controller) (*Server, *Client) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "deskrun.sock")
	srv := NewServer(socket, ctrl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv, NewClient(socket)
}

func TestServerWindowRoundTrip(t *testing.T) {
	ctrl := newFakeController()
	_, client := startServer(t, ctrl)

	status, err := client.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 42, status.PID)
	assert.Equal(t, 1, status.WindowCount)

	monitors, err := client.GetMonitors()
	require.NoError(t, err)
	require.Len(t, monitors, 1)
	assert.Equal(t, "virtual-0", monitors[0].Name)

	require.NoError(t, client.SetTitle("main", "Renamed"))
	info, err := client.WindowInfo("main")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", info.Title)
	assert.Equal(t, 800, info.Width)

	require.NoError(t, client.Show("main"))
	require.NoError(t, client.Hide("main"))
	require.NoError(t, client.Focus("main"))
	require.NoError(t, client.Center("main"))
	require.NoError(t, client.Eval("main", "1+1"))
	require.NoError(t, client.Close("main"))
	calls, _ := ctrl.recorded()
	assert.Equal(t, []string{"show:main", "hide:main", "focus:main", "center:main", "eval(1+1):main", "close:main"}, calls)

	require.NoError(t, client.CreateWindow(CreateWindowPayload{Label: "second", Title: "Second", URL: "https://example.com"}))
	windows, err := client.ListWindows()
	require.NoError(t, err)
	assert.Len(t, windows, 2)

	require.NoError(t, client.Reload())
	_, reloads := ctrl.recorded()
	assert.Equal(t, 1, reloads)
}

func TestServerReportsControllerErrors(t *testing.T) {
	_, client := startServer(t, newFakeController())

	err := client.Show("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `window "ghost" not found`)

	err = client.CreateWindow(CreateWindowPayload{Label: "main"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label already in use")
}

func TestServerValidatesPayloads(t *testing.T) {
	_, client := startServer(t, newFakeController())

	err := client.Show("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label is required")

	err = client.Eval("main", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script is required")

	_, err = client.sendRequest(CommandShow, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid SHOW payload")

	_, err = client.sendRequest("EXPLODE", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown command: EXPLODE")
}

func TestServerRejectsMalformedRequest(t *testing.T) {
	srv, _ := startServer(t, newFakeController())

	conn, err := net.Dial("unix", srv.SocketPath())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("not json\n"))
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	data, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"ERROR"`)
	assert.Contains(t, string(data), "Invalid request")
}

func TestServerSocketPermissions(t *testing.T) {
	srv, _ := startServer(t, newFakeController())

	info, err := os.Stat(srv.SocketPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestServerReplacesStaleSocket(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "deskrun.sock")
	require.NoError(t, os.WriteFile(socket, nil, 0600))

	srv := NewServer(socket, newFakeController(), nil)
	require.NoError(t, srv.Start())
	defer srv.Stop()
	require.NoError(t, NewClient(socket).Ping())
}

func TestServeStopsOnCancel(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "deskrun.sock")
	srv := NewServer(socket, newFakeController(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	client := NewClient(socket)
	require.Eventually(t, func() bool { return client.Ping() == nil }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	_, err := os.Stat(socket)
	assert.True(t, os.IsNotExist(err), "socket should be removed, stat err %v", err)
	assert.Error(t, client.Ping())
}

func TestServerArrange(t *testing.T) {
	ctrl := newFakeController()
	_, client := startServer(t, ctrl)

	labels, err := client.Arrange(ArrangePayload{Layout: "master", Gap: 8})
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, labels)

	_, err = client.sendRequest(CommandArrange, nil)
	require.NoError(t, err)

	_, err = client.Arrange(ArrangePayload{Layout: "spiral"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown layout "spiral"`)

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	assert.Equal(t, []ArrangePayload{{Layout: "master", Gap: 8}, {}}, ctrl.arrange)
}
