package tui

import (
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/deskrun/internal/ipc"
)

type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	failing error
}

func (f *fakeClient) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failing
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{PID: 9, Backend: "headless", WindowCount: 2}, nil
}

func (f *fakeClient) ListWindows() ([]ipc.WindowInfo, error) {
	return []ipc.WindowInfo{
		{Label: "main", Title: "Main", Width: 800, Height: 600, Visible: true},
		{Label: "about", Title: "About", Width: 300, Height: 200},
	}, nil
}

func (f *fakeClient) SetTitle(label, title string) error {
	return f.record("title:" + label + ":" + title)
}
func (f *fakeClient) Show(label string) error   { return f.record("show:" + label) }
func (f *fakeClient) Hide(label string) error   { return f.record("hide:" + label) }
func (f *fakeClient) Focus(label string) error  { return f.record("focus:" + label) }
func (f *fakeClient) Center(label string) error { return f.record("center:" + label) }
func (f *fakeClient) Close(label string) error  { return f.record("close:" + label) }
func (f *fakeClient) Reload() error             { return f.record("reload") }

func (f *fakeClient) Arrange(ipc.ArrangePayload) ([]string, error) {
	return []string{"main", "about"}, f.record("arrange")
}

func (f *fakeClient) CreateWindow(p ipc.CreateWindowPayload) error {
	return f.record("create:" + p.Label)
}

func (f *fakeClient) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loaded returns a sized model holding the fake client's windows.
func loaded(t *testing.T, client *fakeClient) model {
	t.Helper()
	var m tea.Model = newModel(client)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	snap := newModel(client).poll()()
	m, _ = m.Update(snap)
	return m.(model)
}

func TestSnapshotFillsList(t *testing.T) {
	m := loaded(t, &fakeClient{})

	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("items = %d, want 2", got)
	}
	view := m.View()
	for _, want := range []string{"backend:headless", "windows:2", "main", "about"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSnapshotErrorShowsHint(t *testing.T) {
	var m tea.Model = newModel(&fakeClient{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(snapshotMsg{err: errors.New("dial unix: no such file")})

	view := m.View()
	if !strings.Contains(view, "app not running") || !strings.Contains(view, "deskrun run") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestActionKeysTargetSelectedWindow(t *testing.T) {
	client := &fakeClient{}
	m := loaded(t, client)

	for _, key := range []string{"h", "s", "f", "c", "x", "a", "r"} {
		_, cmd := m.Update(runes(key))
		if cmd == nil {
			t.Fatalf("key %q produced no command", key)
		}
		msg, ok := cmd().(actionMsg)
		if !ok || msg.err != nil {
			t.Fatalf("key %q: got %#v", key, msg)
		}
	}

	want := []string{"hide:main", "show:main", "focus:main", "center:main", "close:main", "arrange", "reload"}
	got := client.recorded()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", got, want)
	}
}

func TestActionErrorIsReported(t *testing.T) {
	client := &fakeClient{failing: errors.New("window not found: main")}
	m := loaded(t, client)

	_, cmd := m.Update(runes("h"))
	next, _ := m.Update(cmd())
	got := next.(model)
	if !got.failed || got.message != "error: window not found: main" {
		t.Fatalf("message = %q failed = %v", got.message, got.failed)
	}
}

func TestRenameSelectedWindow(t *testing.T) {
	client := &fakeClient{}
	var m tea.Model = loaded(t, client)

	m, _ = m.Update(runes("t"))
	if m.(model).mode != modeRename {
		t.Fatalf("mode = %v, want rename", m.(model).mode)
	}
	m, _ = m.Update(runes("!"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.(model).mode != modeBrowse {
		t.Fatalf("mode = %v, want browse", m.(model).mode)
	}
	cmd()

	if got := client.recorded(); len(got) != 1 || got[0] != "title:main:Main!" {
		t.Fatalf("calls = %v", got)
	}
}

func TestRenameEscapeCancels(t *testing.T) {
	client := &fakeClient{}
	var m tea.Model = loaded(t, client)

	m, _ = m.Update(runes("t"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(model).mode != modeBrowse || cmd != nil {
		t.Fatalf("escape did not cancel")
	}
	if got := client.recorded(); len(got) != 0 {
		t.Fatalf("calls = %v", got)
	}
}

func TestNewOpensCreateForm(t *testing.T) {
	var m tea.Model = loaded(t, &fakeClient{})

	m, _ = m.Update(runes("n"))
	if m.(model).mode != modeCreate || m.(model).create == nil {
		t.Fatalf("create form not opened")
	}
	if !strings.Contains(m.View(), "Label") {
		t.Fatalf("form not rendered:\n%s", m.View())
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(model).mode != modeBrowse {
		t.Fatalf("escape did not close the form")
	}
}

func TestQuit(t *testing.T) {
	m := loaded(t, &fakeClient{})
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not quit")
	}
}

func TestStaleClearIgnored(t *testing.T) {
	m := loaded(t, &fakeClient{})
	m.setMessage("first", false)
	m.setMessage("second", false)

	next, _ := m.Update(clearMessageMsg{seq: 1})
	if next.(model).message != "second" {
		t.Fatalf("message = %q", next.(model).message)
	}
	next, _ = next.Update(clearMessageMsg{seq: 2})
	if next.(model).message != "" {
		t.Fatalf("message not cleared")
	}
}

func TestCreatePayload(t *testing.T) {
	tests := []struct {
		name    string
		form    createForm
		want    ipc.CreateWindowPayload
		wantErr string
	}{
		{
			name: "html",
			form: createForm{label: " notes ", source: sourceHTML, content: "<p>hi</p>", width: "400", height: "300", center: true},
			want: ipc.CreateWindowPayload{Label: "notes", HTML: "<p>hi</p>", Width: 400, Height: 300, Center: true},
		},
		{
			name: "url without size",
			form: createForm{label: "docs", title: "Docs", source: sourceURL, content: "https://example.com"},
			want: ipc.CreateWindowPayload{Label: "docs", Title: "Docs", URL: "https://example.com"},
		},
		{name: "missing label", form: createForm{source: sourceNone}, wantErr: "label is required"},
		{name: "empty content", form: createForm{label: "a", source: sourceURL}, wantErr: "url content is empty"},
		{name: "bad width", form: createForm{label: "a", source: sourceNone, width: "wide", height: "1"}, wantErr: "width"},
		{name: "half size", form: createForm{label: "a", source: sourceNone, width: "10"}, wantErr: "set together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.form.payload()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("payload = %+v, want %+v", got, tt.want)
			}
		})
	}
}
