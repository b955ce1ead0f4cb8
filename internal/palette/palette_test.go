package palette

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeRun struct {
	name  string
	args  []string
	stdin string
	res   result
}

func stubRun(t *testing.T, res result) *fakeRun {
	t.Helper()
	f := &fakeRun{res: res}
	prev := runFn
	runFn = func(_ context.Context, name string, args []string, stdin io.Reader) (result, error) {
		data, _ := io.ReadAll(stdin)
		f.name, f.args, f.stdin = name, args, string(data)
		return f.res, nil
	}
	t.Cleanup(func() { runFn = prev })
	return f
}

func stubPath(t *testing.T, available ...string) {
	t.Helper()
	prev := lookPath
	lookPath = func(file string) (string, error) {
		for _, a := range available {
			if a == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", errors.New("not found")
	}
	t.Cleanup(func() { lookPath = prev })
}

var items = []Item{
	{Label: "main  Main", Key: "main", Active: true},
	{Label: "about\nAbout", Key: "about"},
}

func TestFind(t *testing.T) {
	stubPath(t, "wofi", "dmenu")

	l, err := Find("auto")
	if err != nil || l.Name != "wofi" {
		t.Fatalf("Find(auto) = %v, %v", l, err)
	}
	if l, err = Find("DMENU"); err != nil || l.Name != "dmenu" {
		t.Fatalf("Find(dmenu) = %v, %v", l, err)
	}
	if _, err = Find("rofi"); err == nil || !strings.Contains(err.Error(), "not found in PATH") {
		t.Fatalf("Find(rofi) err = %v", err)
	}
	if _, err = Find("xmenu"); err == nil || !strings.Contains(err.Error(), "unknown palette launcher") {
		t.Fatalf("Find(xmenu) err = %v", err)
	}
}

func TestFindNothingInstalled(t *testing.T) {
	stubPath(t)
	if _, err := Find(""); err == nil || !strings.Contains(err.Error(), "no palette launcher found") {
		t.Fatalf("err = %v", err)
	}
}

func TestRofiPickByIndex(t *testing.T) {
	stubPath(t, "rofi")
	f := stubRun(t, result{out: []byte("1\n")})
	l, err := Find("rofi")
	if err != nil {
		t.Fatal(err)
	}

	sel, err := l.Pick(context.Background(), "window", items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Item.Key != "about" || sel.Action != ActionSelect {
		t.Fatalf("selection = %+v", sel)
	}
	if f.stdin != "main  Main\nabout About" {
		t.Fatalf("stdin = %q", f.stdin)
	}
	args := strings.Join(f.args, " ")
	for _, want := range []string{"-dmenu", "-format i", "-p window", "-a 0", "-kb-custom-1 Alt+Return"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
}

func TestRofiCustomKeys(t *testing.T) {
	stubPath(t, "rofi")
	l, _ := Find("rofi")

	stubRun(t, result{out: []byte("0"), code: exitCustom1})
	sel, err := l.Pick(context.Background(), "", items)
	if err != nil || sel.Action != ActionAlt || sel.Item.Key != "main" {
		t.Fatalf("alt: %+v, %v", sel, err)
	}

	stubRun(t, result{out: []byte("1"), code: exitCustom2})
	sel, err = l.Pick(context.Background(), "", items)
	if err != nil || sel.Action != ActionDelete || sel.Item.Key != "about" {
		t.Fatalf("delete: %+v, %v", sel, err)
	}
}

func TestDmenuPickByText(t *testing.T) {
	stubPath(t, "dmenu")
	f := stubRun(t, result{out: []byte("about About\n")})
	l, _ := Find("dmenu")

	sel, err := l.Pick(context.Background(), "go", items)
	if err != nil || sel.Item.Key != "about" {
		t.Fatalf("selection = %+v, %v", sel, err)
	}
	if strings.Join(f.args, " ") != "-i -p go" {
		t.Fatalf("args = %v", f.args)
	}

	stubRun(t, result{out: []byte("typed text")})
	if _, err := l.Pick(context.Background(), "", items); err == nil || !strings.Contains(err.Error(), "unknown selection") {
		t.Fatalf("err = %v", err)
	}
}

func TestPickCancelAndFailure(t *testing.T) {
	stubPath(t, "fuzzel")
	l, _ := Find("fuzzel")

	stubRun(t, result{code: 1})
	if _, err := l.Pick(context.Background(), "", items); !errors.Is(err, ErrCancelled) {
		t.Fatalf("escape: err = %v", err)
	}
	stubRun(t, result{})
	if _, err := l.Pick(context.Background(), "", items); !errors.Is(err, ErrCancelled) {
		t.Fatalf("empty: err = %v", err)
	}
	stubRun(t, result{code: 2, stderr: "cannot open display"})
	if _, err := l.Pick(context.Background(), "", items); err == nil || !strings.Contains(err.Error(), "cannot open display") {
		t.Fatalf("failure: err = %v", err)
	}
	stubRun(t, result{out: []byte("7")})
	if _, err := l.Pick(context.Background(), "", items); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("range: err = %v", err)
	}
	if _, err := l.Pick(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for no items")
	}
}
