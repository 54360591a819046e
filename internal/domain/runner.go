package domain

import (
	"context"
	"time"
)

// RunParams carries the execution limits fixed at process startup. Zero
// MaxSteps or MaxCost disables that limit; zero Timeout disables the
// deadline.
type RunParams struct {
	Generator            string
	ConversationStrategy string
	MaxSteps             int
	MaxCost              float64
	Timeout              time.Duration
	Quiet                bool
}

// Runner executes one isolated agent run to completion and returns the
// output state. Implementations must not share mutable state between runs.
type Runner interface {
	Run(ctx context.Context) (OutputState, error)
}

// RunnerFactory builds a fresh Runner per invocation, parameterized with the
// resolved input state for that call.
type RunnerFactory interface {
	NewRunner(inputs InputState) Runner
}
