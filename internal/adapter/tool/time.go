package tool

import (
	"context"
	"encoding/json"
	"time"

	"agentgate/internal/domain"
)

// NewTimeTool returns the builtin "time" namespace tool reporting the
// current date and time.
func NewTimeTool() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        "current_time_and_date",
		Description: "Get the current date and time.",
		Schema:      json.RawMessage(`{"type": "object", "properties": {}}`),
		Call: func(ctx context.Context, args map[string]any) (any, error) {
			return time.Now().Format(time.RFC1123), nil
		},
	}
}
