package headless

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/deskrun/internal/platform"
)

type shortcuts struct {
	backend *Backend

	mu         sync.Mutex
	registered map[platform.AcceleratorID]platform.Accelerator
}

func (s *shortcuts) IsRegistered(accel platform.Accelerator) bool {
	s.backend.check("IsRegistered")
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.registered[accel.ID()]
	return ok
}

func (s *shortcuts) Register(accel platform.Accelerator) (platform.Shortcut, error) {
	s.backend.check("Register")
	s.mu.Lock()
	defer s.mu.Unlock()
	id := accel.ID()
	if _, ok := s.registered[id]; ok {
		return platform.Shortcut{}, fmt.Errorf("shortcut %s already registered", accel)
	}
	s.registered[id] = accel
	return platform.Shortcut{ID: id, Accelerator: accel}, nil
}

func (s *shortcuts) Unregister(shortcut platform.Shortcut) error {
	s.backend.check("Unregister")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registered[shortcut.ID]; !ok {
		return fmt.Errorf("shortcut %s is not registered", shortcut.Accelerator)
	}
	delete(s.registered, shortcut.ID)
	return nil
}

func (s *shortcuts) UnregisterAll() error {
	s.backend.check("UnregisterAll")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered = make(map[platform.AcceleratorID]platform.Accelerator)
	return nil
}

func (s *shortcuts) lookup(id platform.AcceleratorID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.registered[id]
	return ok
}

type clipboardStore struct {
	backend *Backend

	mu   sync.Mutex
	text string
}

func (c *clipboardStore) ReadText() (string, error) {
	c.backend.check("ReadText")
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *clipboardStore) WriteText(text string) error {
	c.backend.check("WriteText")
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	return nil
}

var errTrayDestroyed = errors.New("tray destroyed")

// Tray is a headless tray icon.
type Tray struct {
	backend *Backend

	mu        sync.Mutex
	icon      *platform.Icon
	menu      *platform.Menu
	items     map[platform.MenuItemID]*platform.MenuItemState
	destroyed bool
}

var _ platform.Tray = (*Tray)(nil)

func newTray(b *Backend, icon *platform.Icon, menu *platform.Menu) *Tray {
	return &Tray{backend: b, icon: icon, menu: menu, items: platform.MenuItemStates(menu)}
}

func (t *Tray) SetIcon(icon platform.Icon) error {
	t.backend.check("Tray.SetIcon")
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return errTrayDestroyed
	}
	t.icon = &icon
	return nil
}

func (t *Tray) SetMenu(menu *platform.Menu) error {
	t.backend.check("Tray.SetMenu")
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return errTrayDestroyed
	}
	t.menu = menu
	t.items = platform.MenuItemStates(menu)
	return nil
}

func (t *Tray) MenuItems() map[platform.MenuItemID]platform.MenuItemHandle {
	t.backend.check("Tray.MenuItems")
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[platform.MenuItemID]platform.MenuItemHandle, len(t.items))
	for id, item := range t.items {
		out[id] = &lockedItem{mu: &t.mu, item: item}
	}
	return out
}

func (t *Tray) Destroy() {
	t.backend.check("Tray.Destroy")
	t.mu.Lock()
	t.destroyed = true
	t.mu.Unlock()
	t.backend.dropTray(t)
}

// Icon returns the current tray icon.
func (t *Tray) Icon() *platform.Icon {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.icon
}

// Item returns the state of a tray menu item.
func (t *Tray) Item(id platform.MenuItemID) (platform.MenuItemState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	item, ok := t.items[id]
	if !ok {
		return platform.MenuItemState{}, false
	}
	return *item, true
}

// Destroyed reports whether the tray was removed.
func (t *Tray) Destroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}
