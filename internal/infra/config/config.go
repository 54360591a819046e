package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"agentgate/internal/domain"
)

// MCPServer describes an external MCP tool server the agent may use.
// A non-empty URL selects the streamable HTTP transport; otherwise the
// server is spawned as a subprocess and spoken to over stdio.
type MCPServer struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	URL     string            `yaml:"url"`
}

// ToolArg declares one named parameter of a YAML-declared tool.
type ToolArg struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Example     string `yaml:"example"`
}

// ToolSpec declares a custom tool inline in the agent configuration. The
// Tool field is a command template rendered with the call arguments and
// executed through the shell.
type ToolSpec struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Arguments   []ToolArg `yaml:"arguments"`
	Tool        string    `yaml:"tool"`
}

// Limits are optional execution bounds declared by the agent itself.
type Limits struct {
	MaxSteps int     `yaml:"max_steps"`
	MaxCost  float64 `yaml:"max_cost"`
	Timeout  int     `yaml:"timeout"`
}

// Agent is the declarative agent configuration, loaded once at startup and
// read-only for the process lifetime.
type Agent struct {
	Generator   string `yaml:"generator"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`

	// SystemPrompt is the legacy identity field; Agent and Task are its
	// successors. Presence of any of the three marks the configuration as
	// a servable agent rather than a bare tool collection.
	SystemPrompt string `yaml:"system_prompt"`
	Agent        string `yaml:"agent"`
	Task         string `yaml:"task"`

	// Defaults holds optional default values for declared inputs.
	Defaults map[string]any `yaml:"defaults"`

	// Using lists builtin tool namespaces to enable.
	Using []string `yaml:"using"`

	// MCP maps server names to external MCP tool servers.
	MCP map[string]MCPServer `yaml:"mcp"`

	Limits *Limits    `yaml:"limits"`
	Tools  []ToolSpec `yaml:"tools"`
}

// configFileNames are tried in order when the input path is a directory.
var configFileNames = []string{"task.yml", "agent.yml"}

// Load reads an agent configuration from path. A directory resolves to its
// task.yml or agent.yml. All failures wrap domain.ErrConfigLoad.
func Load(path string) (*Agent, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigLoad, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigLoad, err)
	}

	var agent Agent
	if err := yaml.Unmarshal(data, &agent); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfigLoad, resolved, err)
	}

	return &agent, nil
}

// ResolvePath resolves an agent path the same way Load does, returning the
// concrete configuration file.
func ResolvePath(path string) (string, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrConfigLoad, err)
	}
	return resolved, nil
}

func resolvePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range configFileNames {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no agent configuration found in %s", path)
}

// AgentName derives the served agent's name from its configuration path:
// the file stem, or the parent directory name when the stem is generic.
func AgentName(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch stem {
	case "agent", "task", "workflow":
		return filepath.Base(filepath.Dir(path))
	}
	return stem
}

// HasDirectives reports whether the configuration declares any of the three
// identity fields. Without them the agent cannot be invoked and the process
// serves tools only.
func (a *Agent) HasDirectives() bool {
	return a.SystemPrompt != "" || a.Agent != "" || a.Task != ""
}

// Inputs derives the agent's input declaration: every template variable
// referenced by the agent or task directives (and by tool command
// templates), minus tool and argument names, defaulted from the Defaults
// map. An agent with no task directive gains an implicit required "task"
// input.
func (a *Agent) Inputs() domain.InputDeclaration {
	toolNames := make(map[string]bool, len(a.Tools))
	for _, t := range a.Tools {
		toolNames[t.Name] = true
	}

	names := make(map[string]bool)
	collect := func(text string, exclude map[string]bool) {
		for _, v := range templateVariables(text) {
			if !toolNames[v] && !exclude[v] {
				names[v] = true
			}
		}
	}

	collect(a.Agent, nil)
	collect(a.Task, nil)

	for _, t := range a.Tools {
		if t.Tool == "" {
			continue
		}
		argNames := make(map[string]bool, len(t.Arguments))
		for _, arg := range t.Arguments {
			argNames[arg.Name] = true
		}
		collect(t.Tool, argNames)
	}

	if a.Task == "" {
		names["task"] = true
	}

	decl := make(domain.InputDeclaration, len(names))
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		if value, ok := a.Defaults[name]; ok && value != nil {
			s := fmt.Sprint(value)
			decl[name] = &s
		} else {
			decl[name] = nil
		}
	}
	return decl
}
