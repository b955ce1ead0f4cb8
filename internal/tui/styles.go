package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskrun/internal/ipc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderStatusBar shows whether the app answers and what it runs.
func renderStatusBar(status *ipc.StatusData, err error, width int) string {
	var text string
	if err != nil || status == nil {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		text = dot + " app not running"
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		text = strings.Join([]string{
			dot + " connected",
			fmt.Sprintf("pid:%d", status.PID),
			"backend:" + status.Backend,
			fmt.Sprintf("windows:%d", status.WindowCount),
		}, "  ")
	}
	return lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1).
		Render(text)
}

// renderFooter puts the last action result left and key help right.
func renderFooter(message string, failed bool, help string, width int) string {
	left := ""
	if message != "" {
		style := statusOKStyle
		if failed {
			style = statusErrStyle
		}
		left = style.Render(message)
	}
	right := dimStyle.Render(help)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}
