package domain

// RouteKind tags a route table entry as the agent endpoint or a tool
// endpoint.
type RouteKind int

const (
	RouteAgent RouteKind = iota
	RouteTool
)

// Route is one invocable endpoint. The route table is built once at startup
// and read-only from the point request handling begins.
type Route struct {
	Kind    RouteKind
	Name    string // agent name, or tool name
	Path    string // "/" for the agent, "/<name>" for tools
	Summary string
	Tool    *ToolDescriptor // nil for the agent route
}

// RouteTable is the immutable set of endpoints exposed by the process.
type RouteTable []Route

// Agent returns the agent route, if the table carries one.
func (t RouteTable) Agent() (Route, bool) {
	for _, r := range t {
		if r.Kind == RouteAgent {
			return r, true
		}
	}
	return Route{}, false
}

// Tools returns the tool routes in table order.
func (t RouteTable) Tools() []Route {
	var routes []Route
	for _, r := range t {
		if r.Kind == RouteTool {
			routes = append(routes, r)
		}
	}
	return routes
}
