// Package tool is the tool runtime: it discovers which functions the served
// agent may expose, from builtin namespaces, inline YAML declarations and
// external MCP servers, and holds them in a registry for the execution
// bridge.
package tool

import (
	"context"
	"fmt"
	"log/slog"

	"agentgate/internal/domain"
	"agentgate/internal/infra/config"
)

// Runtime owns the tool registry and the MCP connections backing part of it.
// It is constructed only when the resolved mode exposes tool endpoints.
type Runtime struct {
	registry *Registry
	bridge   *MCPBridge
	logger   *slog.Logger
}

// BuildRuntime assembles the tool registry for the given agent
// configuration: builtin namespaces listed under "using", inline tool
// declarations, and tools discovered from declared MCP servers.
func BuildRuntime(ctx context.Context, cfg *config.Agent, workDir string, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{registry: NewRegistry(), logger: logger}

	for _, namespace := range cfg.Using {
		descriptors, err := builtinNamespace(namespace, workDir, logger)
		if err != nil {
			return nil, err
		}
		for _, d := range descriptors {
			if err := rt.registry.Register(d); err != nil {
				return nil, err
			}
		}
	}

	for _, spec := range cfg.Tools {
		d, err := NewCommandTool(spec, workDir, logger)
		if err != nil {
			return nil, err
		}
		if err := rt.registry.Register(d); err != nil {
			return nil, err
		}
	}

	if len(cfg.MCP) > 0 {
		bridge, err := NewMCPBridge(ctx, cfg.MCP, logger)
		if err != nil {
			return nil, err
		}
		rt.bridge = bridge
		for _, d := range bridge.Tools() {
			if err := rt.registry.Register(d); err != nil {
				rt.Close()
				return nil, err
			}
		}
	}

	logger.Info("tool runtime ready", "tools", len(rt.registry.All()))
	return rt, nil
}

// builtinNamespace maps a "using" entry to its descriptors.
func builtinNamespace(name, workDir string, logger *slog.Logger) ([]domain.ToolDescriptor, error) {
	switch name {
	case "shell":
		return []domain.ToolDescriptor{NewShellTool(workDir, logger)}, nil
	case "time":
		return []domain.ToolDescriptor{NewTimeTool()}, nil
	default:
		return nil, domain.NewDomainError("BuildRuntime", domain.ErrNotFound, fmt.Sprintf("namespace %q", name))
	}
}

// Registry exposes the runtime's registry for the execution bridge.
func (rt *Runtime) Registry() *Registry { return rt.registry }

// Tools returns every registered descriptor, sorted by name.
func (rt *Runtime) Tools() []domain.ToolDescriptor { return rt.registry.All() }

// Close shuts down MCP connections, if any were established.
func (rt *Runtime) Close() {
	if rt.bridge != nil {
		rt.bridge.Close()
	}
}
