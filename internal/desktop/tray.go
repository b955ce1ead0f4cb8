package desktop

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/deskrun/internal/eventloop"
	"github.com/1broseidon/deskrun/internal/platform"
)

// TrayEventHandler is called on the main thread for every tray event.
type TrayEventHandler func(SystemTrayEvent)

type trayState struct {
	mu    sync.Mutex
	tray  platform.Tray
	items map[platform.MenuItemID]platform.MenuItemHandle

	listeners globalListeners[TrayEventHandler]
}

func (s *trayState) set(t platform.Tray) {
	s.mu.Lock()
	s.tray = t
	s.items = t.MenuItems()
	s.mu.Unlock()
}

func (s *trayState) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tray != nil
}

func (s *trayState) handle(op TrayOp, log *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tray == nil {
		log.Debug("dropping tray message, no tray")
		return
	}
	switch o := op.(type) {
	case TrayUpdateItem:
		item, ok := s.items[o.ID]
		if !ok {
			log.Warn("tray menu item not found", "item", o.ID)
			return
		}
		o.Update.Apply(item)
	case TrayUpdateMenu:
		if err := s.tray.SetMenu(o.Menu); err != nil {
			log.Warn("failed to update tray menu", "err", err)
			return
		}
		s.items = s.tray.MenuItems()
	case TrayUpdateIcon:
		if err := s.tray.SetIcon(o.Icon); err != nil {
			log.Warn("failed to update tray icon", "err", err)
		}
	case TrayClose:
		s.tray.Destroy()
		s.tray = nil
		s.items = nil
	}
}

func (s *trayState) notify(ev SystemTrayEvent) {
	for _, h := range s.listeners.snapshot() {
		h(ev)
	}
}

// SystemTray configures the tray icon created by Runtime.SystemTray.
type SystemTray struct {
	Icon *platform.Icon
	Menu *platform.Menu
}

// TrayHandle changes the tray from any goroutine. Updates are always
// queued, even on the main thread.
type TrayHandle struct {
	proxy *eventloop.Proxy[Message]
}

func (h *TrayHandle) send(op TrayOp) error {
	if err := h.proxy.SendEvent(TrayMessage{Op: op}); err != nil {
		return ErrFailedToSendMessage
	}
	return nil
}

func (h *TrayHandle) SetIcon(icon platform.Icon) error {
	return h.send(TrayUpdateIcon{Icon: icon})
}

func (h *TrayHandle) SetMenu(menu *platform.Menu) error {
	return h.send(TrayUpdateMenu{Menu: menu})
}

func (h *TrayHandle) UpdateItem(id platform.MenuItemID, update platform.MenuUpdate) error {
	return h.send(TrayUpdateItem{ID: id, Update: update})
}

// Close removes the tray icon.
func (h *TrayHandle) Close() error {
	return h.send(TrayClose{})
}
