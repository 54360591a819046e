package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"agentgate/internal/domain"
)

// shellTimeout bounds a single builtin shell command.
const shellTimeout = 60 * time.Second

var shellSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"command": {
			"type": "string",
			"description": "The shell command to execute."
		}
	},
	"required": ["command"]
}`)

// NewShellTool returns the builtin "shell" namespace tool: it executes one
// command through the shell in the agent's working directory and returns the
// combined output. Command failure is part of the result, not an error.
func NewShellTool(workDir string, logger *slog.Logger) domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        "execute_shell_command",
		Description: "Execute a shell command in the agent working directory and return its output.",
		Schema:      shellSchema,
		Call: func(ctx context.Context, args map[string]any) (any, error) {
			command, _ := args["command"].(string)
			if strings.TrimSpace(command) == "" {
				return nil, domain.NewDomainError("shell", domain.ErrInvalidInput, "'command' is required")
			}

			ctx, cancel := context.WithTimeout(ctx, shellTimeout)
			defer cancel()

			logger.Debug("shell tool call", "command", command)

			cmd := exec.CommandContext(ctx, "sh", "-c", command)
			cmd.Dir = workDir
			out, err := cmd.CombinedOutput()
			if ctx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("%w: shell command", domain.ErrTimeout)
			}
			if err != nil {
				// non-zero exit is still a result the caller can inspect
				return fmt.Sprintf("%s\n[exit error: %v]", string(out), err), nil
			}
			return string(out), nil
		},
	}
}
