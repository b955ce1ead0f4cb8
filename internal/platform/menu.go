package platform

import "hash/fnv"

// MenuItemID identifies a custom menu item in native menu events.
type MenuItemID uint16

// MenuHash derives the item id from its string key.
func MenuHash(key string) MenuItemID {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	sum := h.Sum32()
	return MenuItemID(sum ^ sum>>16)
}

// MenuEntry is an element of a Menu: CustomMenuItem, NativeMenuItem or Submenu.
type MenuEntry interface {
	isMenuEntry()
}

// CustomMenuItem is an application-defined menu item.
type CustomMenuItem struct {
	ID          MenuItemID
	Key         string
	Title       string
	Accelerator string
	Enabled     bool
	Selected    bool
}

// NewCustomMenuItem returns an enabled item whose id is MenuHash(key).
func NewCustomMenuItem(key, title string) CustomMenuItem {
	return CustomMenuItem{ID: MenuHash(key), Key: key, Title: title, Enabled: true}
}

// NativeMenuItem is a menu item provided by the window system.
type NativeMenuItem int

const (
	MenuSeparator NativeMenuItem = iota
	MenuCopy
	MenuCut
	MenuPaste
	MenuSelectAll
	MenuUndo
	MenuRedo
	MenuMinimize
	MenuCloseWindow
	MenuQuit
)

// Submenu nests a menu under a title.
type Submenu struct {
	Title   string
	Enabled bool
	Menu    Menu
}

func (CustomMenuItem) isMenuEntry() {}
func (NativeMenuItem) isMenuEntry() {}
func (Submenu) isMenuEntry()        {}

// Menu is an ordered list of entries.
type Menu struct {
	Items []MenuEntry
}

// NewMenu returns an empty menu.
func NewMenu() *Menu {
	return &Menu{}
}

func (m *Menu) AddItem(item CustomMenuItem) *Menu {
	m.Items = append(m.Items, item)
	return m
}

func (m *Menu) AddNativeItem(item NativeMenuItem) *Menu {
	m.Items = append(m.Items, item)
	return m
}

func (m *Menu) AddSubmenu(title string, sub *Menu) *Menu {
	s := Submenu{Title: title, Enabled: true}
	if sub != nil {
		s.Menu = *sub
	}
	m.Items = append(m.Items, s)
	return m
}

// CustomItems returns every custom item, including those in submenus.
func (m *Menu) CustomItems() []CustomMenuItem {
	if m == nil {
		return nil
	}
	var out []CustomMenuItem
	for _, entry := range m.Items {
		switch e := entry.(type) {
		case CustomMenuItem:
			out = append(out, e)
		case Submenu:
			out = append(out, e.Menu.CustomItems()...)
		}
	}
	return out
}

// IDs maps item ids back to their string keys.
func (m *Menu) IDs() map[MenuItemID]string {
	ids := make(map[MenuItemID]string)
	for _, item := range m.CustomItems() {
		ids[item.ID] = item.Key
	}
	return ids
}

// MenuItemHandle mutates a live menu item.
type MenuItemHandle interface {
	SetEnabled(enabled bool)
	SetTitle(title string)
	SetSelected(selected bool)
}

// MenuUpdate is a change applied to a live menu item.
type MenuUpdate interface {
	Apply(h MenuItemHandle)
}

type SetMenuItemEnabled struct{ Enabled bool }

type SetMenuItemTitle struct{ Title string }

type SetMenuItemSelected struct{ Selected bool }

func (u SetMenuItemEnabled) Apply(h MenuItemHandle)  { h.SetEnabled(u.Enabled) }
func (u SetMenuItemTitle) Apply(h MenuItemHandle)    { h.SetTitle(u.Title) }
func (u SetMenuItemSelected) Apply(h MenuItemHandle) { h.SetSelected(u.Selected) }

// MenuItemState is a MenuItemHandle that only records state, for backends
// without native menus.
type MenuItemState struct {
	Title    string
	Enabled  bool
	Selected bool
}

func (s *MenuItemState) SetEnabled(enabled bool)   { s.Enabled = enabled }
func (s *MenuItemState) SetTitle(title string)     { s.Title = title }
func (s *MenuItemState) SetSelected(selected bool) { s.Selected = selected }

// MenuItemStates builds recording handles for every custom item of m.
func MenuItemStates(m *Menu) map[MenuItemID]*MenuItemState {
	states := make(map[MenuItemID]*MenuItemState)
	for _, item := range m.CustomItems() {
		states[item.ID] = &MenuItemState{Title: item.Title, Enabled: item.Enabled, Selected: item.Selected}
	}
	return states
}
