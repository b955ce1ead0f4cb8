package headless

import "github.com/1broseidon/deskrun/internal/platform"

// The methods below play the part of the user and the window manager: they
// change native state the way the OS would and post the matching event.

// RequestClose simulates the user clicking the close button.
func (b *Backend) RequestClose(id platform.NativeID) {
	b.emit(platform.WindowEvent{Window: id, Kind: platform.WindowCloseRequested})
}

// Resize simulates the user resizing the window.
func (b *Backend) Resize(id platform.NativeID, size platform.PhysicalSize) {
	if w, ok := b.Window(id); ok {
		w.mu.Lock()
		w.state.Size = size
		w.mu.Unlock()
	}
	b.emit(platform.WindowEvent{Window: id, Kind: platform.WindowResized, Size: size})
}

// Move simulates the user dragging the window.
func (b *Backend) Move(id platform.NativeID, pos platform.PhysicalPosition) {
	if w, ok := b.Window(id); ok {
		w.mu.Lock()
		w.state.Position = pos
		w.mu.Unlock()
	}
	b.emit(platform.WindowEvent{Window: id, Kind: platform.WindowMoved, Position: pos})
}

// Focus simulates the window gaining or losing keyboard focus.
func (b *Backend) Focus(id platform.NativeID, focused bool) {
	if w, ok := b.Window(id); ok {
		w.mu.Lock()
		w.state.Focused = focused
		w.mu.Unlock()
	}
	b.emit(platform.WindowEvent{Window: id, Kind: platform.WindowFocused, Focused: focused})
}

// ChangeTheme simulates a system color scheme switch.
func (b *Backend) ChangeTheme(id platform.NativeID, theme platform.Theme) {
	if w, ok := b.Window(id); ok {
		w.mu.Lock()
		w.state.Theme = theme
		w.mu.Unlock()
	}
	b.emit(platform.WindowEvent{Window: id, Kind: platform.WindowThemeChanged, Theme: theme})
}

// DropFiles simulates files dropped on the window.
func (b *Backend) DropFiles(id platform.NativeID, paths ...string) {
	b.emit(platform.WindowEvent{Window: id, Kind: platform.WindowFileDropped, Paths: paths})
}

// ClickMenuItem simulates a click on a window menu bar item.
func (b *Backend) ClickMenuItem(id platform.NativeID, item platform.MenuItemID) {
	b.emit(platform.MenuEvent{Window: id, ItemID: item, Origin: platform.MenuBar})
}

// ClickTray simulates a click on the tray icon.
func (b *Backend) ClickTray(kind platform.TrayEventKind) {
	b.emit(platform.TrayEvent{
		Kind:     kind,
		Position: platform.PhysicalPosition{X: 1900, Y: 0},
		Size:     platform.PhysicalSize{Width: 24, Height: 24},
	})
}

// ClickTrayMenuItem simulates a click on a tray context menu item.
func (b *Backend) ClickTrayMenuItem(item platform.MenuItemID) {
	b.emit(platform.MenuEvent{ItemID: item, Origin: platform.ContextMenu})
}

// PressShortcut simulates the user pressing a global shortcut. It reports
// false when the accelerator is not registered.
func (b *Backend) PressShortcut(accel platform.Accelerator) bool {
	if !b.shortcuts.lookup(accel.ID()) {
		return false
	}
	b.emit(platform.ShortcutEvent{ID: accel.ID()})
	return true
}

// PostIPC simulates web content posting a message to the host.
func (b *Backend) PostIPC(id platform.NativeID, payload string) {
	b.emit(platform.IPCEvent{Window: id, Payload: payload})
}
