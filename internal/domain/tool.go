package domain

import (
	"context"
	"encoding/json"
)

// ToolFunc executes a tool with the caller-supplied named arguments and
// returns its result value. Arguments are forwarded verbatim; the serving
// layer performs no schema validation on them.
type ToolFunc func(ctx context.Context, args map[string]any) (any, error)

// ToolDescriptor identifies a callable tool supplied by the tool runtime.
type ToolDescriptor struct {
	Name        string
	Description string
	// Schema is the JSON schema advertised to stream-protocol peers.
	// May be nil, in which case a permissive object schema is advertised.
	Schema json.RawMessage
	Call   ToolFunc
}

// ToolResolver abstracts tool lookup for the execution bridge.
type ToolResolver interface {
	// Get returns the named descriptor or ErrToolNotFound.
	Get(name string) (*ToolDescriptor, error)
}
