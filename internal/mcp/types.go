package mcp

import "github.com/1broseidon/deskrun/internal/ipc"

// WindowInput names the target window of a tool.
type WindowInput struct {
	Label string `json:"label" jsonschema:"Label of the target window (see list_windows)"`
}

// SetTitleInput is the input for the set_window_title tool.
type SetTitleInput struct {
	Label string `json:"label" jsonschema:"Label of the target window"`
	Title string `json:"title" jsonschema:"New window title"`
}

// EvalScriptInput is the input for the eval_script tool.
type EvalScriptInput struct {
	Label  string `json:"label" jsonschema:"Label of a window that hosts web content"`
	Script string `json:"script" jsonschema:"JavaScript to evaluate in the window's webview. The result is not returned."`
}

// CreateWindowInput is the input for the create_window tool.
type CreateWindowInput struct {
	Label  string  `json:"label" jsonschema:"Unique label for the new window (letters, digits, - / : _)"`
	Title  string  `json:"title,omitempty" jsonschema:"Window title (default: the label)"`
	URL    string  `json:"url,omitempty" jsonschema:"URL to load. Mutually exclusive with html."`
	HTML   string  `json:"html,omitempty" jsonschema:"Inline HTML to load. Mutually exclusive with url."`
	Width  float64 `json:"width,omitempty" jsonschema:"Logical width in pixels"`
	Height float64 `json:"height,omitempty" jsonschema:"Logical height in pixels"`
	Center bool    `json:"center,omitempty" jsonschema:"Center the window on its monitor"`
}

// ArrangeInput selects how arrange_windows tiles the visible windows.
type ArrangeInput struct {
	Layout        string `json:"layout,omitempty" jsonschema:"One of grid, columns, rows, master (default: grid)"`
	Gap           int    `json:"gap,omitempty" jsonschema:"Pixels around and between windows"`
	MasterPercent int    `json:"master_percent,omitempty" jsonschema:"Width share of the first window in master layout, 10-90 (default: 60)"`
	Monitor       string `json:"monitor,omitempty" jsonschema:"Monitor name (default: the first monitor)"`
}

// StatusInput is the empty input for get_status.
type StatusInput struct{}

// ListWindowsInput is the empty input for list_windows.
type ListWindowsInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	PID           int    `json:"pid"`
	Backend       string `json:"backend"`
	WindowCount   int    `json:"window_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ConfigPath    string `json:"config_path,omitempty"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []ipc.WindowInfo `json:"windows"`
}

// WindowOutput is the output for the window_info tool.
type WindowOutput struct {
	Window ipc.WindowInfo `json:"window"`
}

// ArrangeOutput lists the arranged windows in placement order.
type ArrangeOutput struct {
	Layout  string   `json:"layout"`
	Windows []string `json:"windows"`
}

// ActionOutput confirms a window operation.
type ActionOutput struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	OK     bool   `json:"ok"`
}
