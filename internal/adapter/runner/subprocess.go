// Package runner provides the production Runner: each agent invocation
// spawns one isolated execution of the runner binary's "run" command and
// derives the output state from its JSONL event trace.
package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"agentgate/internal/domain"
)

// Factory builds one subprocess runner per invocation, carrying the
// execution limits fixed at startup.
type Factory struct {
	binary    string
	agentPath string
	params    domain.RunParams
	logger    *slog.Logger
}

// NewFactory creates a runner factory. binary is the executable whose "run"
// command performs one agent execution; agentPath is the configuration
// served by this process.
func NewFactory(binary, agentPath string, params domain.RunParams, logger *slog.Logger) *Factory {
	return &Factory{binary: binary, agentPath: agentPath, params: params, logger: logger}
}

// NewRunner returns a fresh, independent runner for one invocation. Nothing
// is shared between runners except the immutable factory fields.
func (f *Factory) NewRunner(inputs domain.InputState) domain.Runner {
	id := newRunID()
	eventsPath := filepath.Join(os.TempDir(), "agentgate-runner-"+id+".jsonl")
	return &subprocessRunner{
		id:         id,
		binary:     f.binary,
		args:       buildArgs(f.agentPath, f.params, inputs, eventsPath),
		inputs:     inputs,
		eventsPath: eventsPath,
		logger:     f.logger,
	}
}

func newRunID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// buildArgs assembles the run command line. The "task" input travels as its
// own flag; everything else rides in the JSON start state.
func buildArgs(agentPath string, params domain.RunParams, inputs domain.InputState, eventsPath string) []string {
	args := []string{
		"run", agentPath,
		"--generator", params.Generator,
		"--conversation", params.ConversationStrategy,
		"--max-steps", strconv.Itoa(params.MaxSteps),
		"--max-cost", strconv.FormatFloat(params.MaxCost, 'f', -1, 64),
	}

	if params.Timeout > 0 {
		args = append(args, "--timeout", strconv.Itoa(int(params.Timeout.Seconds())))
	}
	if params.Quiet {
		args = append(args, "--quiet")
	}

	startState := make(map[string]string, len(inputs))
	for name, value := range inputs {
		startState[name] = value
	}
	if task, ok := startState["task"]; ok {
		args = append(args, "--task", task)
		delete(startState, "task")
	}

	encoded, _ := json.Marshal(startState)
	args = append(args, "--start-state", string(encoded))
	args = append(args, "--trace", eventsPath)
	return args
}

// subprocessRunner performs exactly one run. It is not reusable.
type subprocessRunner struct {
	id         string
	binary     string
	args       []string
	inputs     domain.InputState
	eventsPath string
	logger     *slog.Logger
}

// event is one entry of the JSONL trace the run command writes.
type event struct {
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

func (r *subprocessRunner) Run(ctx context.Context) (domain.OutputState, error) {
	r.logger.Info("spawning runner", "id", r.id, "inputs", len(r.inputs))

	cmd := exec.CommandContext(ctx, r.binary, r.args...)
	cmd.Env = os.Environ()

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", domain.ErrRunnerFailed, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stderr pipe: %v", domain.ErrRunnerFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start: %v", domain.ErrRunnerFailed, err)
	}

	var stdout, stderr []string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		stdout = readLines(stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		stderr = readLines(stderrPipe)
	}()

	wg.Wait()
	waitErr := cmd.Wait()
	exitCode := cmd.ProcessState.ExitCode()

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return nil, fmt.Errorf("%w: wait: %v", domain.ErrRunnerFailed, waitErr)
	}

	r.logger.Debug("runner exited", "id", r.id, "exit_code", exitCode)

	events, err := readEvents(r.eventsPath)
	if err != nil {
		r.logger.Warn("runner trace unreadable", "id", r.id, "error", err)
	}

	output := deriveOutput(r.inputs, events)
	if output == nil {
		r.logger.Warn("could not get raw output value from runner", "id", r.id)
		output = fallbackOutput(stdout, stderr)
	}

	commandLine := append([]string{r.binary}, r.args...)
	return domain.OutputState{
		"command_line": commandLine,
		"output":       output,
		"exit_code":    exitCode,
		"stdout":       stdout,
		"stderr":       stderr,
		"events":       events,
	}, nil
}

func readLines(r io.Reader) []string {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

func readEvents(path string) ([]event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev event
		if err := json.Unmarshal(line, &ev); err != nil {
			return events, fmt.Errorf("parse trace line: %w", err)
		}
		events = append(events, ev)
	}
	return events, scanner.Err()
}

// deriveOutput extracts the run's output object from the event trace:
// the reason of the last task_complete (or task_failed), else the non-input
// variables recorded by flow_complete, else the most recent text response or
// tool call result.
func deriveOutput(inputs domain.InputState, events []event) any {
	if ev := lastEvent(events, "task_complete"); ev != nil {
		if reason := nonEmpty(ev.Data["reason"]); reason != nil {
			return reason
		}
	}

	if ev := lastEvent(events, "task_failed"); ev != nil {
		if reason := nonEmpty(ev.Data["reason"]); reason != nil {
			return reason
		}
	}

	if ev := lastEvent(events, "flow_complete"); ev != nil {
		if state, ok := ev.Data["state"].(map[string]any); ok {
			if variables, ok := state["variables"].(map[string]any); ok {
				outputs := make(map[string]any)
				for name, value := range variables {
					if _, declared := inputs[name]; !declared {
						outputs[name] = value
					}
				}
				if len(outputs) > 0 {
					return outputs
				}
			}
		}
	}

	for i := len(events) - 1; i >= 0; i-- {
		switch events[i].Name {
		case "text_response":
			return map[string]any{"response": events[i].Data["response"]}
		case "tool_called":
			return map[string]any{"output": events[i].Data["result"]}
		}
	}

	return nil
}

func fallbackOutput(stdout, stderr []string) any {
	switch {
	case len(stderr) > 0:
		return map[string]any{"output": strings.Join(stderr, "\n")}
	case len(stdout) > 0:
		return map[string]any{"output": strings.Join(stdout, "\n")}
	default:
		return map[string]any{"output": "the tool did not write any output"}
	}
}

func lastEvent(events []event, name string) *event {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Name == name {
			return &events[i]
		}
	}
	return nil
}

// nonEmpty filters out absent reasons: nil, empty strings and empty maps.
func nonEmpty(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
	case map[string]any:
		if len(t) == 0 {
			return nil
		}
	}
	return v
}
