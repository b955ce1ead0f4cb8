package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
)

// Controller performs the operations the server exposes. Implementations
// must be safe for concurrent use; each connection is served on its own
// goroutine.
type Controller interface {
	Status() StatusData
	Monitors() ([]MonitorInfo, error)
	Windows() ([]WindowInfo, error)
	WindowInfo(label string) (WindowInfo, error)
	SetTitle(label, title string) error
	Show(label string) error
	Hide(label string) error
	Focus(label string) error
	Center(label string) error
	Close(label string) error
	Eval(label, script string) error
	CreateWindow(p CreateWindowPayload) error
	Reload() error
	Arrange(p ArrangePayload) ([]string, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	ctrl       Controller
	logger     *slog.Logger

	shutdownMu   sync.Mutex
	shuttingDown bool
}

// NewServer creates a server bound to socketPath once started.
func NewServer(socketPath string, ctrl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		logger:     logger.With("component", "ipc"),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a crashed instance.
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// Serve starts the server and stops it when ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("ipc accept failed", "err", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection serves one request per connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	// Read the request (expect JSON on a single line)
	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc read failed", "err", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.write(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	s.logger.Debug("ipc request", "command", req.Command)
	s.write(conn, s.handleCommand(req))
}

func (s *Server) write(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "err", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "err", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return reply(nil, s.ctrl.Reload())
	case CommandGetStatus:
		return reply(s.ctrl.Status(), nil)
	case CommandGetMonitors:
		monitors, err := s.ctrl.Monitors()
		return reply(MonitorsData{Monitors: monitors}, err)
	case CommandListWindows:
		windows, err := s.ctrl.Windows()
		return reply(WindowsData{Windows: windows}, err)
	case CommandWindowInfo:
		return withLabel(req, func(label string) (any, error) {
			return s.ctrl.WindowInfo(label)
		})
	case CommandShow:
		return withLabel(req, noData(s.ctrl.Show))
	case CommandHide:
		return withLabel(req, noData(s.ctrl.Hide))
	case CommandFocus:
		return withLabel(req, noData(s.ctrl.Focus))
	case CommandCenter:
		return withLabel(req, noData(s.ctrl.Center))
	case CommandClose:
		return withLabel(req, noData(s.ctrl.Close))
	case CommandSetTitle:
		var p SetTitlePayload
		if resp := decode(req, &p); resp != nil {
			return resp
		}
		return reply(nil, s.ctrl.SetTitle(p.Label, p.Title))
	case CommandEval:
		var p EvalPayload
		if resp := decode(req, &p); resp != nil {
			return resp
		}
		if p.Script == "" {
			return NewErrorResponse("script is required")
		}
		return reply(nil, s.ctrl.Eval(p.Label, p.Script))
	case CommandCreateWindow:
		var p CreateWindowPayload
		if resp := decode(req, &p); resp != nil {
			return resp
		}
		return reply(nil, s.ctrl.CreateWindow(p))
	case CommandArrange:
		var p ArrangePayload
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &p); err != nil {
				return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", req.Command, err))
			}
		}
		labels, err := s.ctrl.Arrange(p)
		return reply(ArrangeData{Windows: labels}, err)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func reply(data any, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// decode unmarshals the payload and requires a label. It returns a
// response only on failure.
func decode(req *Request, out any) *Response {
	if err := json.Unmarshal(req.Payload, out); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", req.Command, err))
	}
	var labeled WindowPayload
	_ = json.Unmarshal(req.Payload, &labeled)
	if labeled.Label == "" {
		return NewErrorResponse("label is required")
	}
	return nil
}

func withLabel(req *Request, fn func(label string) (any, error)) *Response {
	var p WindowPayload
	if resp := decode(req, &p); resp != nil {
		return resp
	}
	return reply(fn(p.Label))
}

func noData(fn func(label string) error) func(string) (any, error) {
	return func(label string) (any, error) {
		return nil, fn(label)
	}
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
