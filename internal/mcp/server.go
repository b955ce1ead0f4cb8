// Package mcp exposes a running deskrun app to MCP clients. Every tool is a
// thin call through the ipc client.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskrun/internal/ipc"
)

const (
	ServerName    = "deskrun"
	ServerVersion = "0.1.0"
)

// Client is the part of ipc.Client the tools use.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() ([]ipc.WindowInfo, error)
	WindowInfo(label string) (*ipc.WindowInfo, error)
	SetTitle(label, title string) error
	Show(label string) error
	Hide(label string) error
	Focus(label string) error
	Center(label string) error
	Close(label string) error
	Eval(label, script string) error
	CreateWindow(p ipc.CreateWindowPayload) error
	Arrange(p ipc.ArrangePayload) ([]string, error)
}

var _ Client = (*ipc.Client)(nil)

// Server is the MCP server for deskrun window control.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Client
	logger    *slog.Logger
}

// NewServer creates a server whose tools call client. A nil logger uses
// slog.Default.
func NewServer(client Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		client: client,
		logger: logger.With("component", "mcp"),
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP on stdio, blocking until the client disconnects or ctx is
// done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves a single session over t. Used to embed the server.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the running deskrun app: pid, backend, window count, uptime and config path.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every window of the running app with its label, title, geometry and state.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_info",
		Description: "Describe one window by label: title, position, size, scale factor, visibility, maximized, fullscreen, decorations and resizability.",
	}, s.handleWindowInfo)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_title",
		Description: "Change the title of a window.",
	}, s.handleSetTitle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_window",
		Description: "Show a hidden window.",
	}, s.windowAction("show", Client.Show))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hide_window",
		Description: "Hide a window without closing it.",
	}, s.windowAction("hide", Client.Hide))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Restore, show and focus a window.",
	}, s.windowAction("focus", Client.Focus))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "center_window",
		Description: "Center a window on its current monitor.",
	}, s.windowAction("center", Client.Center))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. Closing the last window exits the app unless a tray icon keeps it alive.",
	}, s.windowAction("close", Client.Close))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "eval_script",
		Description: "Evaluate JavaScript in a window's webview. Fire and forget: no result is returned.",
	}, s.handleEvalScript)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_window",
		Description: "Open a new window with a url or inline html. The label must not be in use.",
	}, s.handleCreateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange_windows",
		Description: "Tile every visible window on one monitor, in label order, as a grid, columns, rows or master/stack layout.",
	}, s.handleArrange)
}
