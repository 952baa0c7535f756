package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ironsheep/histopath-mcp/internal/logging"
	"github.com/ironsheep/histopath-mcp/internal/metrics"
	"github.com/ironsheep/histopath-mcp/internal/session"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "histopath-mcp"

	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// Server handles MCP protocol communication for one annotation session.
type Server struct {
	sess    *session.Session
	log     logging.Logger
	rec     *metrics.Recorder
	version string

	// notes are queued by the session renderer during a tool call and
	// written ahead of its response.
	notes []MCPNotification
}

// Options configures a Server. Zero values get a no-op logger, no metrics
// and version "dev".
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Recorder
	Version string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a server driving sess. The server becomes the session's
// renderer: annotation changes are sent to the client as log notifications.
func New(sess *session.Session, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		sess:    sess,
		log:     opts.Logger.Named("server"),
		rec:     opts.Metrics,
		version: opts.Version,
	}
	sess.SetRenderer(s)
	return s
}

// MarkersChanged queues a notification carrying the new counts and quick
// metrics.
func (s *Server) MarkersChanged(snap session.Snapshot) {
	s.notes = append(s.notes, MCPNotification{
		JSONRPC: "2.0",
		Method:  "notifications/message",
		Params: map[string]interface{}{
			"level":  "info",
			"logger": "annotations",
			"data":   snap,
		},
	})
}

// Serve reads one JSON-RPC message per line from r and writes replies to w.
// Each request runs to completion before the next is read.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", logging.Err(err))
			continue
		}

		resp := s.handleRequest(ctx, &req)
		for _, n := range s.notes {
			if err := encoder.Encode(n); err != nil {
				return fmt.Errorf("failed to write notification: %w", err)
			}
		}
		s.notes = s.notes[:0]
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools":   map[string]interface{}{},
				"logging": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": s.version,
			},
		},
	}
}
