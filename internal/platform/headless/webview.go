package headless

import (
	"sync"

	"github.com/1broseidon/deskrun/internal/platform"
)

// Webview records the scripts and commands a headless webview receives.
type Webview struct {
	window *Window
	attrs  platform.WebviewAttributes

	mu       sync.Mutex
	scripts  []string
	prints   int
	focused  bool
	resizes  int
	devtools bool
}

var _ platform.NativeWebview = (*Webview)(nil)

func (v *Webview) Window() platform.NativeWindow { return v.window }

// Attributes returns the attributes the webview was built with.
func (v *Webview) Attributes() platform.WebviewAttributes { return v.attrs }

func (v *Webview) EvaluateScript(script string) error {
	v.window.backend.check("EvaluateScript")
	if v.window.State().Destroyed {
		return errDestroyed
	}
	v.mu.Lock()
	v.scripts = append(v.scripts, script)
	v.mu.Unlock()
	return nil
}

func (v *Webview) Print() error {
	v.window.backend.check("Print")
	v.mu.Lock()
	v.prints++
	v.mu.Unlock()
	return nil
}

func (v *Webview) Focus() {
	v.window.backend.check("Focus")
	v.mu.Lock()
	v.focused = true
	v.mu.Unlock()
}

func (v *Webview) Resize() {
	v.window.backend.check("Resize")
	v.mu.Lock()
	v.resizes++
	v.mu.Unlock()
}

func (v *Webview) OpenDevtools() {
	v.window.backend.check("OpenDevtools")
	v.mu.Lock()
	v.devtools = true
	v.mu.Unlock()
}

func (v *Webview) CloseDevtools() {
	v.window.backend.check("CloseDevtools")
	v.mu.Lock()
	v.devtools = false
	v.mu.Unlock()
}

func (v *Webview) IsDevtoolsOpen() bool {
	v.window.backend.check("IsDevtoolsOpen")
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.devtools
}

// Scripts returns every script evaluated so far.
func (v *Webview) Scripts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.scripts...)
}

// Prints returns how many times the page was printed.
func (v *Webview) Prints() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.prints
}

// Focused reports whether the webview received focus.
func (v *Webview) Focused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.focused
}

// Resizes returns how many times the surface was fitted to the window.
func (v *Webview) Resizes() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resizes
}
