package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/deskrun/internal/runtimepath"
)

// Client handles IPC communication with a running app
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the socket at override, or the default
// socket when override is empty.
func NewClient(override string) *Client {
	socketPath, err := runtimepath.SocketPath(override)
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string { return c.socketPath }

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(command CommandType, payload any) (*Response, error) {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to deskrun: %w (is it running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("deskrun error: %s", resp.Error)
	}

	return &resp, nil
}

func call[T any](c *Client, command CommandType, payload any) (T, error) {
	var out T
	resp, err := c.sendRequest(command, payload)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		return out, fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return out, nil
}

// Reload asks the app to re-read its config file.
func (c *Client) Reload() error {
	_, err := c.sendRequest(CommandReload, nil)
	return err
}

func (c *Client) GetStatus() (*StatusData, error) {
	status, err := call[StatusData](c, CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) GetMonitors() ([]MonitorInfo, error) {
	data, err := call[MonitorsData](c, CommandGetMonitors, nil)
	return data.Monitors, err
}

func (c *Client) ListWindows() ([]WindowInfo, error) {
	data, err := call[WindowsData](c, CommandListWindows, nil)
	return data.Windows, err
}

func (c *Client) WindowInfo(label string) (*WindowInfo, error) {
	info, err := call[WindowInfo](c, CommandWindowInfo, WindowPayload{Label: label})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) SetTitle(label, title string) error {
	_, err := c.sendRequest(CommandSetTitle, SetTitlePayload{Label: label, Title: title})
	return err
}

func (c *Client) Show(label string) error   { return c.windowCommand(CommandShow, label) }
func (c *Client) Hide(label string) error   { return c.windowCommand(CommandHide, label) }
func (c *Client) Focus(label string) error  { return c.windowCommand(CommandFocus, label) }
func (c *Client) Center(label string) error { return c.windowCommand(CommandCenter, label) }
func (c *Client) Close(label string) error  { return c.windowCommand(CommandClose, label) }

func (c *Client) windowCommand(command CommandType, label string) error {
	_, err := c.sendRequest(command, WindowPayload{Label: label})
	return err
}

// Eval runs script in the webview of the window.
func (c *Client) Eval(label, script string) error {
	_, err := c.sendRequest(CommandEval, EvalPayload{Label: label, Script: script})
	return err
}

func (c *Client) CreateWindow(p CreateWindowPayload) error {
	_, err := c.sendRequest(CommandCreateWindow, p)
	return err
}

// Arrange tiles the visible windows and returns their labels in order.
func (c *Client) Arrange(p ArrangePayload) ([]string, error) {
	data, err := call[ArrangeData](c, CommandArrange, p)
	return data.Windows, err
}

// Ping checks if the app is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
