package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"agentgate/internal/domain"
	"agentgate/internal/infra/tracer"
)

// Bridge turns inbound calls into isolated executions. Every agent
// invocation gets a fresh Runner from the factory; tool invocations resolve
// a descriptor and call it directly. The bridge holds no per-call state, so
// any number of invocations may be in flight concurrently.
type Bridge struct {
	factory domain.RunnerFactory
	tools   domain.ToolResolver
	logger  *slog.Logger
}

// NewBridge creates an execution bridge. tools may be nil when the resolved
// mode exposes no tool endpoints.
func NewBridge(factory domain.RunnerFactory, tools domain.ToolResolver, logger *slog.Logger) *Bridge {
	return &Bridge{factory: factory, tools: tools, logger: logger}
}

// InvokeAgent runs one isolated agent execution with the given resolved
// input state and returns the full output state. Failures are surfaced once
// and never retried.
func (b *Bridge) InvokeAgent(ctx context.Context, state domain.InputState) (domain.OutputState, error) {
	ctx, span := tracer.StartSpan(ctx, "Bridge.InvokeAgent",
		trace.WithAttributes(attribute.Int("inputs", len(state))))
	defer span.End()

	runner := b.factory.NewRunner(state)
	output, err := runner.Run(ctx)
	if err != nil {
		tracer.RecordError(span, err)
		b.logger.Error("agent invocation failed", "error", err)
		return nil, domain.WrapOp("invoke agent", err)
	}

	tracer.SetOK(span)
	b.logger.Debug("agent invocation complete", "output_keys", len(output))
	return output, nil
}

// InvokeTool looks up the named tool and calls it with the caller-supplied
// arguments, forwarded verbatim. The return value is wrapped as
// {"result": value}. An unknown name fails with ErrToolNotFound without
// touching the agent path.
func (b *Bridge) InvokeTool(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	ctx, span := tracer.StartSpan(ctx, "Bridge.InvokeTool",
		trace.WithAttributes(attribute.String("tool", name)))
	defer span.End()

	if b.tools == nil {
		err := domain.NewDomainError("Bridge.InvokeTool", domain.ErrToolNotFound, name)
		tracer.RecordError(span, err)
		return nil, err
	}

	descriptor, err := b.tools.Get(name)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	value, err := descriptor.Call(ctx, args)
	if err != nil {
		tracer.RecordError(span, err)
		b.logger.Error("tool invocation failed", "tool", name, "error", err)
		return nil, domain.WrapOp("invoke tool "+name, err)
	}

	tracer.SetOK(span)
	return map[string]any{"result": value}, nil
}
