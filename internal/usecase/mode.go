package usecase

// EndpointMode selects which endpoint categories the process exposes.
type EndpointMode int

const (
	// ModeAgentOnly exposes the agent invocation endpoint and nothing else.
	ModeAgentOnly EndpointMode = iota
	// ModeCombined exposes the agent endpoint plus one endpoint per tool.
	ModeCombined
	// ModeToolsOnly suppresses the agent endpoint and forces tool endpoints.
	ModeToolsOnly
)

func (m EndpointMode) String() string {
	switch m {
	case ModeAgentOnly:
		return "agent"
	case ModeCombined:
		return "agent+tools"
	case ModeToolsOnly:
		return "tools-only"
	}
	return "unknown"
}

// ServesAgent reports whether the agent endpoint is exposed.
func (m EndpointMode) ServesAgent() bool { return m != ModeToolsOnly }

// ServesTools reports whether per-tool endpoints are exposed. When true the
// tool runtime must be constructed before the route table is built.
func (m EndpointMode) ServesTools() bool { return m != ModeAgentOnly }

// Transport is the single wire protocol serving the route table. Exactly one
// transport is active per process lifetime.
type Transport int

const (
	TransportHTTP Transport = iota
	TransportStdio
	TransportSSE
)

func (t Transport) String() string {
	switch t {
	case TransportHTTP:
		return "http"
	case TransportStdio:
		return "mcp-stdio"
	case TransportSSE:
		return "mcp-sse"
	}
	return "unknown"
}

// ResolveEndpoints evaluates the endpoint decision table once at startup.
// A configuration without any identity directive cannot be invoked as an
// agent, so it is served tools-only regardless of flags.
func ResolveEndpoints(toolsOnly, serveTools, hasDirectives bool) EndpointMode {
	switch {
	case toolsOnly || !hasDirectives:
		return ModeToolsOnly
	case serveTools:
		return ModeCombined
	default:
		return ModeAgentOnly
	}
}

// ResolveTransport maps the mcp / mcp_sse flags onto the closed transport
// enumeration. mcp_sse implies the MCP protocol even without the mcp flag.
func ResolveTransport(mcp, mcpSSE bool) Transport {
	switch {
	case mcpSSE:
		return TransportSSE
	case mcp:
		return TransportStdio
	default:
		return TransportHTTP
	}
}
