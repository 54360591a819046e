package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"agentgate/internal/domain"
	"agentgate/internal/infra/config"
)

// mcpCallTimeout is the default per-call timeout for MCP tool execution.
const mcpCallTimeout = 30 * time.Second

// MCPBridge manages connections to the MCP servers declared in the agent
// configuration and exposes their tools as descriptors.
type MCPBridge struct {
	servers []mcpServerConn
	tools   []domain.ToolDescriptor
	logger  *slog.Logger
}

type mcpServerConn struct {
	name   string
	client mcpClient
}

// mcpClient abstracts the MCP client interface for testability.
type mcpClient interface {
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// NewMCPBridge connects to every declared MCP server and discovers its
// tools. A connection failure tears down the already-connected servers and
// fails startup.
func NewMCPBridge(ctx context.Context, servers map[string]config.MCPServer, logger *slog.Logger) (*MCPBridge, error) {
	b := &MCPBridge{logger: logger}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		conn, err := b.connectServer(ctx, name, servers[name])
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("mcp server %q: %w", name, err)
		}
		b.servers = append(b.servers, *conn)
	}

	if err := b.discoverTools(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("discover tools: %w", err)
	}

	return b, nil
}

// newMCPBridgeWithClients creates an MCPBridge with pre-built clients (for testing).
func newMCPBridgeWithClients(ctx context.Context, servers []mcpServerConn, logger *slog.Logger) (*MCPBridge, error) {
	b := &MCPBridge{servers: servers, logger: logger}
	if err := b.discoverTools(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *MCPBridge) connectServer(ctx context.Context, name string, srv config.MCPServer) (*mcpServerConn, error) {
	var c mcpClient
	var err error

	if srv.URL != "" {
		t, tErr := transport.NewStreamableHTTP(srv.URL)
		if tErr != nil {
			return nil, fmt.Errorf("create http transport: %w", tErr)
		}
		httpClient := mcpclient.NewClient(t)
		if err = httpClient.Start(ctx); err != nil {
			return nil, fmt.Errorf("start http client: %w", err)
		}
		c = httpClient
	} else {
		c, err = mcpclient.NewStdioMCPClient(srv.Command, envSlice(srv.Env), srv.Args...)
		if err != nil {
			return nil, fmt.Errorf("create stdio client: %w", err)
		}
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "agentgate",
		Version: "1.0.0",
	}

	if ic, ok := c.(interface {
		Initialize(ctx context.Context, request mcp.InitializeRequest) (*mcp.InitializeResult, error)
	}); ok {
		if _, err = ic.Initialize(ctx, initReq); err != nil {
			c.Close()
			return nil, domain.WrapOp("initialize", err)
		}
	}

	b.logger.Info("mcp server connected", "name", name)

	return &mcpServerConn{name: name, client: c}, nil
}

func (b *MCPBridge) discoverTools(ctx context.Context) error {
	for _, srv := range b.servers {
		result, err := srv.client.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			return fmt.Errorf("%s: %w", srv.name, err)
		}

		for _, t := range result.Tools {
			b.tools = append(b.tools, b.adaptTool(srv, t))
			b.logger.Debug("mcp tool discovered", "server", srv.name, "tool", t.Name)
		}

		b.logger.Info("mcp tools discovered", "server", srv.name, "count", len(result.Tools))
	}
	return nil
}

// adaptTool wraps a remote MCP tool as a descriptor. The remote name is kept
// as-is; collisions across servers surface when the route table is built.
func (b *MCPBridge) adaptTool(srv mcpServerConn, t mcp.Tool) domain.ToolDescriptor {
	var schema json.RawMessage
	if data, err := json.Marshal(t.InputSchema); err == nil {
		schema = data
	}

	client := srv.client
	serverName := srv.name
	toolName := t.Name
	logger := b.logger

	return domain.ToolDescriptor{
		Name:        toolName,
		Description: t.Description,
		Schema:      schema,
		Call: func(ctx context.Context, args map[string]any) (any, error) {
			callReq := mcp.CallToolRequest{}
			callReq.Params.Name = toolName
			callReq.Params.Arguments = args

			logger.Debug("mcp tool call", "server", serverName, "tool", toolName)

			callCtx, cancel := context.WithTimeout(ctx, mcpCallTimeout)
			defer cancel()

			result, err := client.CallTool(callCtx, callReq)
			if err != nil {
				return nil, fmt.Errorf("mcp tool %s: %w", toolName, err)
			}

			content := extractMCPContent(result)
			if result.IsError {
				return nil, fmt.Errorf("mcp tool %s: %s", toolName, content)
			}
			return content, nil
		},
	}
}

// Tools returns all discovered MCP tools as descriptors.
func (b *MCPBridge) Tools() []domain.ToolDescriptor {
	return b.tools
}

// Close shuts down all MCP server connections.
func (b *MCPBridge) Close() {
	for _, srv := range b.servers {
		if err := srv.client.Close(); err != nil {
			b.logger.Warn("mcp server close error", "server", srv.name, "error", err)
		}
	}
}

// extractMCPContent converts MCP CallToolResult content to a string.
func extractMCPContent(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		switch v := c.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			// For non-text content, marshal to JSON.
			if data, err := json.Marshal(v); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// envSlice converts a map of env vars to KEY=VALUE slices.
func envSlice(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}
