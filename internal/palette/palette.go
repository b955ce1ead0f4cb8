// Package palette shows a list in an external dmenu-style launcher (rofi,
// fuzzel, wofi or dmenu) and reports the user's pick.
package palette

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the launcher closes without a selection.
var ErrCancelled = errors.New("palette cancelled")

// Item is one selectable row.
type Item struct {
	Label string
	// Key is returned to the caller and never shown.
	Key    string
	Active bool
}

// Action says how the user accepted a row.
type Action int

const (
	ActionSelect Action = iota // Return
	ActionAlt                  // Alt+Return, rofi only
	ActionDelete               // Alt+d, rofi only
)

// rofi exit codes for -kb-custom-1 and -kb-custom-2.
const (
	exitCustom1 = 10
	exitCustom2 = 11
)

// Selection is the picked row.
type Selection struct {
	Item   Item
	Action Action
}

// Launcher is one supported program.
type Launcher struct {
	Name string
	// index reports that the program prints the row index instead of its text.
	index bool
	args  func(prompt string, items []Item) []string
}

var launchers = []Launcher{
	{Name: "rofi", index: true, args: rofiArgs},
	{Name: "fuzzel", index: true, args: func(prompt string, _ []Item) []string {
		return withPrompt([]string{"--dmenu", "--index"}, "--prompt", prompt)
	}},
	{Name: "wofi", args: func(prompt string, _ []Item) []string {
		return withPrompt([]string{"--dmenu"}, "--prompt", prompt)
	}},
	{Name: "dmenu", args: func(prompt string, _ []Item) []string {
		return withPrompt([]string{"-i"}, "-p", prompt)
	}},
}

// Names lists the supported launchers in detection order.
func Names() []string {
	out := make([]string, len(launchers))
	for i, l := range launchers {
		out[i] = l.Name
	}
	return out
}

var lookPath = exec.LookPath

// Find returns the named launcher, or the first one in PATH for "" and
// "auto".
func Find(name string) (*Launcher, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i := range launchers {
		l := &launchers[i]
		if name != "" && name != "auto" && l.Name != name {
			continue
		}
		if _, err := lookPath(l.Name); err != nil {
			if name == l.Name {
				return nil, fmt.Errorf("palette launcher %q not found in PATH", name)
			}
			continue
		}
		return l, nil
	}
	if name == "" || name == "auto" {
		return nil, fmt.Errorf("no palette launcher found in PATH (looked for: %s)", strings.Join(Names(), ", "))
	}
	return nil, fmt.Errorf("unknown palette launcher %q (expected: auto, %s)", name, strings.Join(Names(), ", "))
}

// result is what a launcher run produced.
type result struct {
	out    []byte
	code   int
	stderr string
}

// runFn runs the launcher. A non-zero exit is not an error here.
var runFn = func(ctx context.Context, name string, args []string, stdin io.Reader) (result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	res := result{out: out, stderr: strings.TrimSpace(stderr.String())}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.code = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}

// Pick shows items and waits for the user.
func (l *Launcher) Pick(ctx context.Context, prompt string, items []Item) (Selection, error) {
	if len(items) == 0 {
		return Selection{}, fmt.Errorf("palette: no items to show")
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = sanitize(it.Label)
	}

	res, err := runFn(ctx, l.Name, l.args(prompt, items), strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		return Selection{}, fmt.Errorf("failed to run %s: %w", l.Name, err)
	}
	choice := strings.TrimSpace(string(res.out))

	var action Action
	switch res.code {
	case 0:
		action = ActionSelect
	case exitCustom1:
		action = ActionAlt
	case exitCustom2:
		action = ActionDelete
	case 1, 130:
		// Escape and Ctrl+C.
		return Selection{}, ErrCancelled
	default:
		if res.stderr != "" {
			return Selection{}, fmt.Errorf("%s failed: %s", l.Name, res.stderr)
		}
		return Selection{}, fmt.Errorf("%s exited with status %d", l.Name, res.code)
	}
	if choice == "" {
		return Selection{}, ErrCancelled
	}

	item, err := l.match(choice, items, lines)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Item: item, Action: action}, nil
}

func (l *Launcher) match(choice string, items []Item, lines []string) (Item, error) {
	if l.index {
		if idx, err := strconv.Atoi(choice); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for i, line := range lines {
		if line == choice {
			return items[i], nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", choice)
}

func rofiArgs(prompt string, items []Item) []string {
	args := withPrompt([]string{"-dmenu", "-i", "-format", "i", "-no-custom"}, "-p", prompt)
	var active []string
	for i, it := range items {
		if it.Active {
			active = append(active, strconv.Itoa(i))
		}
	}
	if len(active) > 0 {
		args = append(args, "-a", strings.Join(active, ","))
	}
	return append(args,
		"-kb-custom-1", "Alt+Return",
		"-kb-custom-2", "Alt+d",
		"-mesg", "Return: focus   Alt+Return: hide   Alt+d: close",
	)
}

func withPrompt(args []string, flag, prompt string) []string {
	if prompt == "" {
		return args
	}
	return append(args, flag, prompt)
}

func sanitize(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}
