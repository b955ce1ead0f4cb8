package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetMonitors  CommandType = "GET_MONITORS"
	CommandListWindows  CommandType = "LIST_WINDOWS"
	CommandWindowInfo   CommandType = "WINDOW_INFO"
	CommandSetTitle     CommandType = "SET_TITLE"
	CommandShow         CommandType = "SHOW"
	CommandHide         CommandType = "HIDE"
	CommandFocus        CommandType = "FOCUS"
	CommandCenter       CommandType = "CENTER"
	CommandClose        CommandType = "CLOSE"
	CommandEval         CommandType = "EVAL"
	CommandCreateWindow CommandType = "CREATE_WINDOW"
	CommandArrange      CommandType = "ARRANGE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PID           int    `json:"pid"`
	Backend       string `json:"backend"`
	WindowCount   int    `json:"window_count"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ConfigPath    string `json:"config_path,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	Name        string  `json:"name"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ScaleFactor float64 `json:"scale_factor"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// WindowInfo is a snapshot of one window.
type WindowInfo struct {
	Label       string  `json:"label"`
	Title       string  `json:"title"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ScaleFactor float64 `json:"scale_factor"`
	Visible     bool    `json:"visible"`
	Maximized   bool    `json:"maximized"`
	Fullscreen  bool    `json:"fullscreen"`
	Decorated   bool    `json:"decorated"`
	Resizable   bool    `json:"resizable"`
}

type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowPayload addresses a window by label.
type WindowPayload struct {
	Label string `json:"label"`
}

type SetTitlePayload struct {
	Label string `json:"label"`
	Title string `json:"title"`
}

type EvalPayload struct {
	Label  string `json:"label"`
	Script string `json:"script"`
}

type CreateWindowPayload struct {
	Label  string  `json:"label"`
	Title  string  `json:"title,omitempty"`
	URL    string  `json:"url,omitempty"`
	HTML   string  `json:"html,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Center bool    `json:"center,omitempty"`
}

// ArrangePayload lays out the visible windows of one monitor. Empty fields
// take the server defaults.
type ArrangePayload struct {
	Layout        string `json:"layout,omitempty"`
	Gap           int    `json:"gap,omitempty"`
	MasterPercent int    `json:"master_percent,omitempty"`
	Monitor       string `json:"monitor,omitempty"`
}

// ArrangeData lists the arranged windows in placement order.
type ArrangeData struct {
	Windows []string `json:"windows"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
