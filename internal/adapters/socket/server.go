package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Engine performs the batch operations served over the socket.
// Implementations must be safe for concurrent use.
type Engine interface {
	Clean(docs []string, minSize int) ([]string, error)
	StripPrefixes(docs []string, minSize int) ([]string, error)
}

// RateReporter is implemented by engines that track their throughput.
type RateReporter interface {
	CharsPerSecond() float64
}

// Server listens on a Unix socket and serves batch requests.
type Server struct {
	engine   Engine
	listener net.Listener
	sockPath string
	started  time.Time
	requests atomic.Int64

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a server backed by the given engine.
func NewServer(engine Engine, sockPath string) *Server {
	return &Server{
		engine:     engine,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first. If the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	// Handle stale socket
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("server already running at %s", s.sockPath)
		}
		// Stale socket, remove it
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent: safe to call multiple times (e.g., after remote shutdown + signal).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The serving goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the scanner when the server stops.
	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		select {
		case <-s.done:
			conn.Close()
		case <-connDone:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessage)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		s.requests.Add(1)
		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.writeResponse(conn, Response{Error: fmt.Sprintf("read request: %v", err)})
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodClean:
		return s.handleDocuments(req, s.engine.Clean)
	case MethodPrefix:
		return s.handleDocuments(req, s.engine.StripPrefixes)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// handleDocuments runs one batch operation. Errors come back as a single
// message; a failed batch returns no documents.
func (s *Server) handleDocuments(req Request, op func([]string, int) ([]string, error)) Response {
	// Re-marshal params to decode into DocumentsParams
	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return Response{ID: req.ID, Error: fmt.Sprintf("invalid %s params", req.Method)}
	}
	var params DocumentsParams
	if err := json.Unmarshal(paramsJSON, &params); err != nil {
		return Response{ID: req.ID, Error: fmt.Sprintf("invalid %s params", req.Method)}
	}

	start := time.Now()
	docs, err := op(params.Documents, params.MinimumSize)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	if docs == nil {
		docs = []string{}
	}
	return Response{
		ID: req.ID,
		Result: DocumentsResult{
			Documents: docs,
			Elapsed:   time.Since(start).String(),
		},
	}
}

func (s *Server) handleHealth(req Request) Response {
	result := HealthResult{
		Status:   "ok",
		Requests: s.requests.Load(),
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	}
	if r, ok := s.engine.(RateReporter); ok {
		result.CharsPerSec = r.CharsPerSecond()
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
