// Command agentgate serves a declaratively configured agent, and optionally
// its tools, over one of three transports: plain HTTP, MCP on stdio, or MCP
// over an HTTP SSE stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"agentgate/internal/adapter/httpapi"
	"agentgate/internal/adapter/mcpserve"
	"agentgate/internal/adapter/runner"
	"agentgate/internal/adapter/tool"
	"agentgate/internal/domain"
	"agentgate/internal/infra/config"
	"agentgate/internal/infra/logger"
	"agentgate/internal/infra/tracer"
	"agentgate/internal/usecase"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	inputPath     string
	host          string
	port          int
	generator     string
	conversation  string
	debug         bool
	quiet         bool
	maxSteps      int
	maxCost       float64
	timeout       int
	logPath       string
	logFormat     string
	traceExporter string
	mcp           bool
	mcpSSE        bool
	serveTools    bool
	toolsOnly     bool
	runnerBin     string
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("agentgate", flag.ContinueOnError)
	fs.StringVar(&f.host, "host", "127.0.0.1", "Bind host to serve the agent on.")
	fs.IntVar(&f.port, "port", 8000, "Bind port to serve the agent on.")
	fs.StringVar(&f.generator, "generator", "openai/gpt-4o", "If the agent generator field is not set, use this generator.")
	fs.StringVar(&f.conversation, "conversation", "full", "Conversation strategy to use.")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging.")
	fs.BoolVar(&f.quiet, "quiet", false, "Quiet mode.")
	fs.IntVar(&f.maxSteps, "max-steps", 100, "Maximum number of steps. Set to 0 to disable.")
	fs.Float64Var(&f.maxCost, "max-cost", 10.0, "Stop when the run cost exceeds this value in USD. Set to 0 to disable.")
	fs.IntVar(&f.timeout, "timeout", 0, "Per-run timeout in seconds. Set to 0 to disable.")
	fs.StringVar(&f.logPath, "log", "", "Log to a file instead of the console.")
	fs.StringVar(&f.logFormat, "log-format", "text", "Log format: text or json.")
	fs.StringVar(&f.traceExporter, "trace-exporter", "", "Span exporter for invocation traces (stdout). Empty disables tracing.")
	fs.BoolVar(&f.mcp, "mcp", false, "Start as MCP server on stdio.")
	fs.BoolVar(&f.mcpSSE, "mcp-sse", false, "Start as MCP server with SSE transport.")
	fs.BoolVar(&f.serveTools, "tools", false, "Serve tools alongside the agent. Automatically enabled if the agent has no system prompt.")
	fs.BoolVar(&f.toolsOnly, "tools-only", false, "Serve tools only.")
	fs.StringVar(&f.runnerBin, "runner", os.Args[0], "Runner binary whose 'run' command executes one agent run.")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: agentgate [flags] [agent path]\n\nServe an agent as a REST API or MCP server.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.inputPath = fs.Arg(0)
	if f.inputPath == "" {
		f.inputPath = "."
	}
	return f, nil
}

func run() error {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	// When the MCP stream rides on stdout, logs must go to stderr.
	logOutput := "stdout"
	if f.mcp && !f.mcpSSE {
		logOutput = "stderr"
	}
	if f.logPath != "" {
		logOutput = f.logPath
	}
	logLevel := "info"
	if f.debug {
		logLevel = "debug"
	}
	log, closeLog, err := logger.New(logger.Config{Level: logLevel, Format: f.logFormat, Output: logOutput})
	if err != nil {
		return err
	}
	defer closeLog()

	log.Info("agentgate", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, tracer.Config{
		Enabled:  f.traceExporter != "",
		Exporter: f.traceExporter,
	})
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	resolvedPath, err := config.ResolvePath(f.inputPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(resolvedPath)
	if err != nil {
		return err
	}
	agentName := config.AgentName(resolvedPath)
	log.Debug("agent loaded", "name", agentName, "description", cfg.Description)

	mode := usecase.ResolveEndpoints(f.toolsOnly, f.serveTools, cfg.HasDirectives())
	transport := usecase.ResolveTransport(f.mcp, f.mcpSSE)
	log.Info("resolved serving mode", "endpoints", mode.String(), "transport", transport.String())

	generator := f.generator
	if cfg.Generator != "" {
		generator = cfg.Generator
	}
	factory := runner.NewFactory(f.runnerBin, resolvedPath, domain.RunParams{
		Generator:            generator,
		ConversationStrategy: f.conversation,
		MaxSteps:             f.maxSteps,
		MaxCost:              f.maxCost,
		Timeout:              time.Duration(f.timeout) * time.Second,
		Quiet:                f.quiet,
	}, log)

	// The tool runtime is only constructed when tool endpoints are exposed.
	var resolver domain.ToolResolver
	var tools []domain.ToolDescriptor
	if mode.ServesTools() {
		rt, err := tool.BuildRuntime(ctx, cfg, filepath.Dir(resolvedPath), log)
		if err != nil {
			return err
		}
		defer rt.Close()
		resolver = rt.Registry()
		tools = rt.Tools()
	}

	declared := cfg.Inputs()
	table, err := usecase.BuildRouteTable(mode, agentName, cfg.Description, tools)
	if err != nil {
		return err
	}
	bridge := usecase.NewBridge(factory, resolver, log)

	addr := net.JoinHostPort(f.host, strconv.Itoa(f.port))

	switch transport {
	case usecase.TransportStdio:
		srv := mcpserve.New(agentName, version, table, declared, bridge, log)
		return srv.ServeStdio(ctx)

	case usecase.TransportSSE:
		srv := mcpserve.New(agentName, version, table, declared, bridge, log)
		log.Info("serving agent", "name", agentName, "url", "sse://"+addr+"/")
		return srv.ServeSSE(ctx, addr)

	default:
		srv := httpapi.New(addr, table, declared, bridge, log)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		log.Info("serving agent", "name", agentName, "url", "http://"+srv.BoundAddr()+"/")
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	}
}
