package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskrun/internal/ipc"
)

const (
	refreshInterval = 2 * time.Second
	messageTimeout  = 3 * time.Second
)

type mode int

const (
	modeBrowse mode = iota
	modeRename
	modeCreate
)

// windowItem implements list.Item for one window.
type windowItem struct {
	info ipc.WindowInfo
}

func (i windowItem) Title() string {
	mark := dimStyle.Render("○")
	if i.info.Visible {
		mark = statusOKStyle.Render("●")
	}
	return mark + " " + i.info.Label
}

func (i windowItem) Description() string {
	return fmt.Sprintf("%q  %dx%d at %d,%d", i.info.Title, i.info.Width, i.info.Height, i.info.X, i.info.Y)
}

func (i windowItem) FilterValue() string { return i.info.Label }

// snapshotMsg carries the result of one poll of the app.
type snapshotMsg struct {
	status  *ipc.StatusData
	windows []ipc.WindowInfo
	err     error
}

// actionMsg reports a finished control command.
type actionMsg struct {
	text string
	err  error
}

type tickMsg struct{}

type clearMessageMsg struct{ seq int }

type model struct {
	client Client

	list   list.Model
	status *ipc.StatusData
	err    error

	mode   mode
	input  textinput.Model
	create *createForm

	message string
	failed  bool
	seq     int

	width  int
	height int
}

func newModel(client Client) model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Prompt = "title: "
	ti.CharLimit = 256

	return model{client: client, list: l, input: ti}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.poll()
}

func (m model) poll() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		status, err := client.GetStatus()
		if err != nil {
			return snapshotMsg{err: err}
		}
		windows, err := client.ListWindows()
		return snapshotMsg{status: status, windows: windows, err: err}
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// run wraps a control command so its result comes back as an actionMsg.
func run(text string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{text: text, err: fn()}
	}
}

func (m model) selected() (ipc.WindowInfo, bool) {
	item, ok := m.list.SelectedItem().(windowItem)
	if !ok {
		return ipc.WindowInfo{}, false
	}
	return item.info, true
}

func (m *model) setMessage(text string, failed bool) tea.Cmd {
	m.message = text
	m.failed = failed
	m.seq++
	seq := m.seq
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg { return clearMessageMsg{seq: seq} })
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, m.listHeight())
		return m, nil

	case snapshotMsg:
		m.status = msg.status
		m.err = msg.err
		items := make([]list.Item, 0, len(msg.windows))
		for _, w := range msg.windows {
			items = append(items, windowItem{info: w})
		}
		return m, tea.Batch(m.list.SetItems(items), scheduleTick())

	case tickMsg:
		return m, m.poll()

	case actionMsg:
		if msg.err != nil {
			return m, tea.Batch(m.setMessage("error: "+msg.err.Error(), true), m.poll())
		}
		return m, tea.Batch(m.setMessage(msg.text, false), m.poll())

	case clearMessageMsg:
		if msg.seq == m.seq {
			m.message = ""
			m.failed = false
		}
		return m, nil
	}

	switch m.mode {
	case modeRename:
		return m.updateRename(msg)
	case modeCreate:
		return m.updateCreate(msg)
	}
	return m.updateBrowse(msg)
}

func (m model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		return m, run("config reloaded", m.client.Reload)
	case "a":
		return m, run("windows arranged", func() error {
			_, err := m.client.Arrange(ipc.ArrangePayload{})
			return err
		})
	case "n":
		m.mode = modeCreate
		m.create = newCreateForm(m.width)
		return m, m.create.form.Init()
	}

	w, ok := m.selected()
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	label := w.Label
	switch key.String() {
	case "enter", "f":
		return m, run("focused "+label, func() error { return m.client.Focus(label) })
	case "s":
		return m, run("shown "+label, func() error { return m.client.Show(label) })
	case "h":
		return m, run("hidden "+label, func() error { return m.client.Hide(label) })
	case "c":
		return m, run("centered "+label, func() error { return m.client.Center(label) })
	case "x":
		return m, run("closed "+label, func() error { return m.client.Close(label) })
	case "t":
		m.mode = modeRename
		m.input.SetValue(w.Title)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) updateRename(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.mode = modeBrowse
			m.input.Blur()
			return m, nil
		case "enter":
			m.mode = modeBrowse
			m.input.Blur()
			w, ok := m.selected()
			if !ok {
				return m, nil
			}
			label, title := w.Label, m.input.Value()
			return m, run("renamed "+label, func() error { return m.client.SetTitle(label, title) })
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.mode = modeBrowse
		m.create = nil
		return m, nil
	}

	form, cmd := m.create.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.create.form = f
	}

	switch m.create.form.State {
	case huh.StateCompleted:
		p, err := m.create.payload()
		m.mode = modeBrowse
		m.create = nil
		if err != nil {
			return m, m.setMessage("error: "+err.Error(), true)
		}
		return m, run("created "+p.Label, func() error { return m.client.CreateWindow(p) })
	case huh.StateAborted:
		m.mode = modeBrowse
		m.create = nil
		return m, nil
	}
	return m, cmd
}

// listHeight leaves room for the status bar, footer and title input.
func (m model) listHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) help() string {
	switch m.mode {
	case modeRename:
		return "enter:apply  esc:cancel"
	case modeCreate:
		return "tab:next  enter:submit  esc:cancel"
	}
	return "enter/f:focus  s:show  h:hide  c:center  x:close  t:title  n:new  a:arrange  r:reload  q:quit"
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	statusBar := renderStatusBar(m.status, m.err, m.width)
	footer := renderFooter(m.message, m.failed, m.help(), m.width)

	var body string
	switch m.mode {
	case modeCreate:
		body = lipgloss.NewStyle().
			Width(m.width).
			Height(m.listHeight()).
			Padding(1, 2).
			Render(m.create.form.View())
	default:
		body = m.list.View()
		if m.err != nil && len(m.list.Items()) == 0 {
			body = lipgloss.NewStyle().
				Width(m.width).
				Height(m.listHeight()).
				Foreground(lipgloss.Color("241")).
				Align(lipgloss.Center, lipgloss.Center).
				Render("start the app with: deskrun run")
		}
	}

	input := ""
	if m.mode == modeRename {
		input = " " + m.input.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, statusBar, body, input, footer)
}
