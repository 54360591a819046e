// Package httpapi serves the route table as a plain HTTP API: POST / for
// the agent, POST /<tool> per tool.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"agentgate/internal/domain"
	"agentgate/internal/usecase"
)

// Server is the HTTP protocol adapter. It is built once from the immutable
// route table and never re-routes after Start.
type Server struct {
	srv       *http.Server
	logger    *slog.Logger
	addr      string
	boundAddr string
	declared  domain.InputDeclaration
	bridge    *usecase.Bridge
}

// New builds the HTTP adapter for the given route table.
func New(addr string, table domain.RouteTable, declared domain.InputDeclaration, bridge *usecase.Bridge, logger *slog.Logger) *Server {
	s := &Server{
		logger:   logger,
		addr:     addr,
		declared: declared,
		bridge:   bridge,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if agent, ok := table.Agent(); ok {
		logger.Info("creating agent endpoint", "path", agent.Path, "summary", agent.Summary)
		r.Post(agent.Path, s.handleAgent)
	}
	for _, route := range table.Tools() {
		logger.Info("creating tool endpoint", "path", route.Path, "summary", route.Summary)
		r.Post(route.Path, s.handleTool(route.Tool))
	}

	// No write timeout: agent runs are bounded by their own step, cost and
	// timeout limits, not by the transport.
	s.srv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
	}
	return s
}

// Start begins serving. Non-blocking; the server runs until Stop or context
// cancellation.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.boundAddr = ln.Addr().String()
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		s.logger.Info("http adapter started", "addr", s.boundAddr)
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// BoundAddr returns the actual listen address. Only valid after Start.
func (s *Server) BoundAddr() string { return s.boundAddr }

// handleAgent merges the request body through the input resolver and runs
// one isolated agent execution. The "full" query parameter selects between
// the entire output state and just its "output" value.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	full := strings.EqualFold(r.URL.Query().Get("full"), "true")

	supplied, err := decodeStringMap(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.logger.Info("agent request", "from", r.RemoteAddr, "inputs", len(supplied), "full", full)

	state, err := usecase.ResolveInputs(s.declared, supplied)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	output, err := s.bridge.InvokeAgent(r.Context(), state)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	if full {
		writeJSON(w, http.StatusOK, output)
		return
	}
	writeJSON(w, http.StatusOK, output.Output())
}

// handleTool forwards the request body verbatim as named arguments. Tool
// arguments are deliberately not validated against any schema here.
func (s *Server) handleTool(tool *domain.ToolDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		args, err := decodeArgs(r.Body)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		s.logger.Info("tool request", "tool", tool.Name, "from", r.RemoteAddr)

		result, err := s.bridge.InvokeTool(r.Context(), tool.Name, args)
		if err != nil {
			if errors.Is(err, domain.ErrToolNotFound) {
				writeDetail(w, http.StatusNotFound, err.Error())
				return
			}
			writeDetail(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// decodeStringMap reads a JSON object of string values. An empty body is an
// empty map.
func decodeStringMap(body io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// decodeArgs reads a JSON object of arbitrary named arguments. An empty or
// absent body yields nil arguments.
func decodeArgs(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are gone; nothing left to do but note it
		slog.Default().Warn("response encode failed", "error", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
