package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskrun/internal/ipc"
)

func requireLabel(tool, label string) error {
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%s: label is required", tool)
	}
	return nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		PID:           st.PID,
		Backend:       st.Backend,
		WindowCount:   st.WindowCount,
		UptimeSeconds: st.UptimeSeconds,
		ConfigPath:    st.ConfigPath,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.client.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	if windows == nil {
		windows = []ipc.WindowInfo{}
	}
	s.logger.Debug("list_windows", "count", len(windows))
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleWindowInfo(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if err := requireLabel("window_info", args.Label); err != nil {
		return nil, WindowOutput{}, err
	}
	info, err := s.client.WindowInfo(args.Label)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: *info}, nil
}

func (s *Server) handleSetTitle(_ context.Context, _ *mcpsdk.CallToolRequest, args SetTitleInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := requireLabel("set_window_title", args.Label); err != nil {
		return nil, ActionOutput{}, err
	}
	if err := s.client.SetTitle(args.Label, args.Title); err != nil {
		return nil, ActionOutput{}, err
	}
	s.logger.Info("window title set", "label", args.Label, "title", args.Title)
	return nil, ActionOutput{Label: args.Label, Action: "set_title", OK: true}, nil
}

// windowAction builds the handler of a tool that only needs a label.
func (s *Server) windowAction(action string, call func(Client, string) error) mcpsdk.ToolHandlerFor[WindowInput, ActionOutput] {
	tool := action + "_window"
	return func(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
		if err := requireLabel(tool, args.Label); err != nil {
			return nil, ActionOutput{}, err
		}
		if err := call(s.client, args.Label); err != nil {
			return nil, ActionOutput{}, err
		}
		s.logger.Info("window action", "action", action, "label", args.Label)
		return nil, ActionOutput{Label: args.Label, Action: action, OK: true}, nil
	}
}

func (s *Server) handleEvalScript(_ context.Context, _ *mcpsdk.CallToolRequest, args EvalScriptInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := requireLabel("eval_script", args.Label); err != nil {
		return nil, ActionOutput{}, err
	}
	if strings.TrimSpace(args.Script) == "" {
		return nil, ActionOutput{}, fmt.Errorf("eval_script: script is required")
	}
	if err := s.client.Eval(args.Label, args.Script); err != nil {
		return nil, ActionOutput{}, err
	}
	s.logger.Debug("script evaluated", "label", args.Label, "bytes", len(args.Script))
	return nil, ActionOutput{Label: args.Label, Action: "eval", OK: true}, nil
}

func (s *Server) handleCreateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateWindowInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := requireLabel("create_window", args.Label); err != nil {
		return nil, ActionOutput{}, err
	}
	if args.URL != "" && args.HTML != "" {
		return nil, ActionOutput{}, fmt.Errorf("create_window: url and html are mutually exclusive")
	}
	if (args.Width > 0) != (args.Height > 0) {
		return nil, ActionOutput{}, fmt.Errorf("create_window: width and height must be set together")
	}
	err := s.client.CreateWindow(ipc.CreateWindowPayload{
		Label:  args.Label,
		Title:  args.Title,
		URL:    args.URL,
		HTML:   args.HTML,
		Width:  args.Width,
		Height: args.Height,
		Center: args.Center,
	})
	if err != nil {
		return nil, ActionOutput{}, err
	}
	s.logger.Info("window created", "label", args.Label)
	return nil, ActionOutput{Label: args.Label, Action: "create", OK: true}, nil
}

func (s *Server) handleArrange(_ context.Context, _ *mcpsdk.CallToolRequest, args ArrangeInput) (*mcpsdk.CallToolResult, ArrangeOutput, error) {
	layout := args.Layout
	if layout == "" {
		layout = "grid"
	}
	windows, err := s.client.Arrange(ipc.ArrangePayload{
		Layout:        layout,
		Gap:           args.Gap,
		MasterPercent: args.MasterPercent,
		Monitor:       args.Monitor,
	})
	if err != nil {
		return nil, ArrangeOutput{}, err
	}
	if windows == nil {
		windows = []string{}
	}
	return nil, ArrangeOutput{Layout: layout, Windows: windows}, nil
}
