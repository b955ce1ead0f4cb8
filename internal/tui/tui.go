// Package tui is an interactive dashboard for a running deskrun app. It
// talks to the app over the control socket only.
package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/deskrun/internal/ipc"
)

// Client is the part of ipc.Client the dashboard uses.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() ([]ipc.WindowInfo, error)
	SetTitle(label, title string) error
	Show(label string) error
	Hide(label string) error
	Focus(label string) error
	Center(label string) error
	Close(label string) error
	CreateWindow(p ipc.CreateWindowPayload) error
	Reload() error
	Arrange(p ipc.ArrangePayload) ([]string, error)
}

var _ Client = (*ipc.Client)(nil)

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("ui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(client), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
