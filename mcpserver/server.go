// Package mcpserver is the MCP surface (spec.md §6): a JSON-RPC 2.0
// transport exposing Mystic's Interception Engine, Inspector, Performance
// Tracker, and State Manager to an external AI client over stdio. Framing
// is grounded on ipc/frame.go's FrameDecoder — a buffered reader, explicit
// partial/too-large/decode error classification — adapted from length-
// prefixed binary msgpack frames to newline-delimited JSON text, since
// JSON-RPC 2.0 over stdio is conventionally line-oriented. The dispatch
// loop itself (one goroutine reading requests, handlers run inline, a
// method-name-to-handler map) is grounded on cli/cmd's urfave/cli command
// table: both resolve an incoming name to a registered handler before
// doing any work.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/kordless/mystic/correlate"
	"github.com/kordless/mystic/inspect"
	"github.com/kordless/mystic/logx"
	"github.com/kordless/mystic/metrics"
	"github.com/kordless/mystic/state"
)

// Handler answers one JSON-RPC method call. params is the raw JSON
// params object (possibly nil); the returned value is marshaled as the
// response's result.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Server dispatches JSON-RPC 2.0 requests against Mystic's core
// subsystems. The zero value is not usable; build one with NewServer.
type Server struct {
	Catalog   *Catalog
	Inspector *inspect.Inspector
	Tracker   *metrics.Tracker
	State     *state.Manager
	Logger    *logx.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewServer builds a Server wired to the given subsystems and registers
// spec.md §6's canonical tool set. Any of tracker/manager/logger may be
// nil; handlers degrade gracefully (empty metrics, no snapshots, no
// recent log events) rather than panicking, matching the rest of Mystic's
// nil-tracker/nil-logger conventions.
func NewServer(catalog *Catalog, inspector *inspect.Inspector, tracker *metrics.Tracker, manager *state.Manager, logger *logx.Logger) *Server {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if inspector == nil {
		inspector = inspect.New()
	}
	s := &Server{
		Catalog:   catalog,
		Inspector: inspector,
		Tracker:   tracker,
		State:     manager,
		Logger:    logger,
		handlers:  make(map[string]Handler),
	}
	s.registerBuiltinTools()
	return s
}

// RegisterHandler adds or replaces the handler for method. Used both by
// registerBuiltinTools and by hosts that want to expose additional
// methods beyond the canonical tool set.
func (s *Server) RegisterHandler(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

func (s *Server) handlerFor(method string) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[method]
	return h, ok
}

// Serve reads JSON-RPC requests from transport until ctx is canceled or
// the stream ends, dispatching each to its registered handler and
// writing the response. Notifications (no id) are handled but produce no
// reply, per JSON-RPC 2.0.
func (s *Server) Serve(ctx context.Context, transport *Transport) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := transport.ReadRequest()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("mcpserver: %w", err)
		}
		s.dispatch(ctx, transport, req)
	}
}

func (s *Server) dispatch(ctx context.Context, transport *Transport, req Request) {
	// Request ids are commonly numbers, not just strings; fall back to the
	// raw JSON text (e.g. "1") so a numeric id still becomes a usable
	// correlation id instead of silently staying empty.
	var requestID string
	if len(req.ID) > 0 {
		if err := json.Unmarshal(req.ID, &requestID); err != nil {
			requestID = strings.TrimSpace(string(req.ID))
		}
	}
	restore := correlate.EnterFrame(requestID)
	defer restore()

	if s.Logger != nil {
		s.Logger.LogMCPRequest(req.Method, req.Params, requestID)
	}

	resp := s.handle(ctx, req)

	if s.Logger != nil {
		var errForLog error
		if resp.Error != nil {
			errForLog = fmt.Errorf("%s", resp.Error.Message)
		}
		s.Logger.LogMCPResponse(resp.Result, requestID, errForLog)
	}

	if req.IsNotification() {
		return
	}
	_ = transport.WriteResponse(resp)
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		return newError(req.ID, ErrInvalidRequest, "jsonrpc must be \"2.0\"")
	}
	h, ok := s.handlerFor(req.Method)
	if !ok {
		return newError(req.ID, ErrMethodNotFound, fmt.Sprintf("unknown method %q", req.Method))
	}
	result, err := h(ctx, req.Params)
	if err != nil {
		return newError(req.ID, ErrServer, err.Error())
	}
	return newResult(req.ID, result)
}

// HandleOne decodes, dispatches, and returns a single request's Response
// without going through a Transport — useful for HTTP/SSE front ends that
// already have the request body as bytes (spec.md §6 names stdio, HTTP,
// and SSE as alternative transports for the same dispatch core).
func (s *Server) HandleOne(ctx context.Context, requestJSON []byte) Response {
	var req Request
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return newError(nil, ErrParse, err.Error())
	}
	return s.handle(ctx, req)
}
