// Package hotkeys registers global keyboard shortcuts on the X11 root window.
package hotkeys

import (
	"fmt"
	"sync"

	"github.com/1broseidon/deskrun/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Manager grabs accelerators on the root window and reports presses to a
// platform.EventSink as platform.ShortcutEvent.
type Manager struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	mu         sync.Mutex
	sink       platform.EventSink
	registered map[platform.AcceleratorID]platform.Accelerator
}

var _ platform.ShortcutManager = (*Manager)(nil)

var ignoreModsOnce sync.Once

// NewManager creates a shortcut manager. keybind.Initialize must already
// have been called on xu.
func NewManager(xu *xgbutil.XUtil, root xproto.Window) *Manager {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Manager{
		xu:         xu,
		root:       root,
		registered: make(map[platform.AcceleratorID]platform.Accelerator),
	}
}

// SetSink routes shortcut presses to sink.
func (m *Manager) SetSink(sink platform.EventSink) {
	m.mu.Lock()
	m.sink = sink
	m.mu.Unlock()
}

func (m *Manager) IsRegistered(accel platform.Accelerator) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.registered[accel.ID()]
	return ok
}

// Register grabs accel on the root window.
func (m *Manager) Register(accel platform.Accelerator) (platform.Shortcut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := accel.ID()
	if _, ok := m.registered[id]; ok {
		return platform.Shortcut{}, fmt.Errorf("shortcut %s already registered", accel)
	}
	if err := m.connect(accel); err != nil {
		return platform.Shortcut{}, fmt.Errorf("failed to grab %s: %w", accel, err)
	}
	m.registered[id] = accel
	return platform.Shortcut{ID: id, Accelerator: accel}, nil
}

// Unregister releases the grab of one shortcut. xgbutil can only detach all
// key handlers of a window at once, so the remaining shortcuts are
// reconnected afterwards.
func (m *Manager) Unregister(shortcut platform.Shortcut) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.registered[shortcut.ID]; !ok {
		return fmt.Errorf("shortcut %s is not registered", shortcut.Accelerator)
	}
	m.ungrabAll()
	delete(m.registered, shortcut.ID)

	var firstErr error
	for _, accel := range m.registered {
		if err := m.connect(accel); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to re-grab %s: %w", accel, err)
		}
	}
	return firstErr
}

func (m *Manager) UnregisterAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ungrabAll()
	m.registered = make(map[platform.AcceleratorID]platform.Accelerator)
	return nil
}

func (m *Manager) connect(accel platform.Accelerator) error {
	id := accel.ID()
	return keybind.KeyPressFun(func(*xgbutil.XUtil, xevent.KeyPressEvent) {
		m.mu.Lock()
		sink := m.sink
		m.mu.Unlock()
		if sink != nil {
			sink.Emit(platform.ShortcutEvent{ID: id})
		}
	}).Connect(m.xu, m.root, accel.X11(), true)
}

func (m *Manager) ungrabAll() {
	for _, accel := range m.registered {
		mods, codes, err := keybind.ParseString(m.xu, accel.X11())
		if err != nil {
			continue
		}
		for _, code := range codes {
			keybind.Ungrab(m.xu, m.root, mods, code)
		}
	}
	keybind.Detach(m.xu, m.root)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
