// Package mcpserve serves the route table over the MCP stream protocol,
// either on the process's standard pipes or tunneled over an HTTP SSE
// connection. Routes are advertised as callable MCP tools; dispatch
// semantics are identical on both carriers.
package mcpserve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"agentgate/internal/domain"
	"agentgate/internal/usecase"
)

// Server wraps the route table into one MCP server instance.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New builds the MCP adapter: the agent route becomes a tool named after the
// agent with a schema derived from its input declaration; each tool route is
// advertised with its own schema.
func New(agentName, version string, table domain.RouteTable, declared domain.InputDeclaration, bridge *usecase.Bridge, logger *slog.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(agentName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		logger: logger,
	}

	if agent, ok := table.Agent(); ok {
		logger.Info("advertising agent tool", "name", agent.Name)
		s.mcp.AddTool(
			mcp.NewToolWithRawSchema(agent.Name, agent.Summary, agentInputSchema(declared)),
			s.agentHandler(declared, bridge),
		)
	}

	for _, route := range table.Tools() {
		logger.Info("advertising tool", "name", route.Name)
		schema := route.Tool.Schema
		if schema == nil {
			schema = json.RawMessage(`{"type": "object"}`)
		}
		s.mcp.AddTool(
			mcp.NewToolWithRawSchema(route.Name, route.Summary, schema),
			s.toolHandler(route.Name, bridge),
		)
	}

	return s
}

// ServeStdio runs the stream session over the process's standard pipes,
// returning when the stream closes or the context is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("serving on stdio")
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// ServeSSE runs the stream protocol over an HTTP event stream bound to addr.
// Blocks until the context is cancelled or the server fails.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sse := server.NewSSEServer(s.mcp)
	s.logger.Info("serving on sse", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case <-ctx.Done():
		return sse.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// agentHandler resolves MCP call arguments through the input resolver and
// runs one isolated agent execution, returning the full output-state map.
func (s *Server) agentHandler(declared domain.InputDeclaration, bridge *usecase.Bridge) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		supplied := make(map[string]string)
		for name, value := range req.GetArguments() {
			supplied[name] = fmt.Sprint(value)
		}

		state, err := usecase.ResolveInputs(declared, supplied)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		output, err := bridge.InvokeAgent(ctx, state)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(output)
	}
}

// toolHandler forwards call arguments verbatim and returns the
// {"result": value} wrapper.
func (s *Server) toolHandler(name string, bridge *usecase.Bridge) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := bridge.InvokeTool(ctx, name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError("encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

// agentInputSchema converts the input declaration into the advertised JSON
// schema: every input a string property, those without defaults required.
func agentInputSchema(declared domain.InputDeclaration) json.RawMessage {
	properties := make(map[string]any, len(declared))
	var required []string
	for name, def := range declared {
		property := map[string]any{"type": "string"}
		if def != nil {
			property["default"] = *def
		} else {
			required = append(required, name)
		}
		properties[name] = property
	}
	sort.Strings(required)

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	encoded, _ := json.Marshal(schema)
	return encoded
}
