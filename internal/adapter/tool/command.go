package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"text/template"
	"time"

	"agentgate/internal/domain"
	"agentgate/internal/infra/config"
)

// commandTimeout bounds a single declared-tool command.
const commandTimeout = 60 * time.Second

// NewCommandTool adapts a YAML-declared tool into a descriptor. The
// declaration's command template is rendered with the call arguments and
// executed through the shell. The template is parsed once here so a broken
// declaration fails at startup, not per request.
func NewCommandTool(spec config.ToolSpec, workDir string, logger *slog.Logger) (domain.ToolDescriptor, error) {
	if spec.Name == "" {
		return domain.ToolDescriptor{}, domain.NewDomainError("NewCommandTool", domain.ErrInvalidInput, "tool name is empty")
	}
	if spec.Tool == "" {
		return domain.ToolDescriptor{}, domain.NewDomainError("NewCommandTool", domain.ErrInvalidInput, "tool "+spec.Name+" has no command")
	}

	tmpl, err := template.New(spec.Name).Option("missingkey=error").Parse(spec.Tool)
	if err != nil {
		return domain.ToolDescriptor{}, fmt.Errorf("tool %s: parse command template: %w", spec.Name, err)
	}

	return domain.ToolDescriptor{
		Name:        spec.Name,
		Description: spec.Description,
		Schema:      commandSchema(spec),
		Call: func(ctx context.Context, args map[string]any) (any, error) {
			data := make(map[string]string, len(args))
			for name, value := range args {
				data[name] = fmt.Sprint(value)
			}

			var rendered strings.Builder
			if err := tmpl.Execute(&rendered, data); err != nil {
				return nil, domain.NewDomainError("tool "+spec.Name, domain.ErrInvalidInput, err.Error())
			}

			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()

			logger.Debug("command tool call", "tool", spec.Name, "command", rendered.String())

			cmd := exec.CommandContext(ctx, "sh", "-c", rendered.String())
			cmd.Dir = workDir
			out, err := cmd.CombinedOutput()
			if ctx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("%w: tool %s", domain.ErrTimeout, spec.Name)
			}
			if err != nil {
				return fmt.Sprintf("%s\n[exit error: %v]", string(out), err), nil
			}
			return string(out), nil
		},
	}, nil
}

// commandSchema builds the advertised JSON schema from the declared
// arguments. Every declared argument is required; there is no per-argument
// typing beyond string.
func commandSchema(spec config.ToolSpec) json.RawMessage {
	properties := make(map[string]any, len(spec.Arguments))
	required := make([]string, 0, len(spec.Arguments))
	for _, arg := range spec.Arguments {
		description := arg.Description
		if arg.Example != "" {
			description = strings.TrimSpace(description + " Example: " + arg.Example)
		}
		properties[arg.Name] = map[string]any{
			"type":        "string",
			"description": description,
		}
		required = append(required, arg.Name)
	}

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
