package usecase

import (
	"agentgate/internal/domain"
)

// BuildRouteTable produces the immutable set of invocable endpoints for the
// resolved mode: at most one agent route (identity "/", summarized by the
// configuration description) plus one route per tool descriptor (identity
// "/" + name, summarized by the tool's documentation).
//
// Tool names must be unique; a collision fails the build rather than
// silently dropping a route.
func BuildRouteTable(mode EndpointMode, agentName, description string, tools []domain.ToolDescriptor) (domain.RouteTable, error) {
	var table domain.RouteTable

	if mode.ServesAgent() {
		table = append(table, domain.Route{
			Kind:    domain.RouteAgent,
			Name:    agentName,
			Path:    "/",
			Summary: description,
		})
	}

	if mode.ServesTools() {
		seen := make(map[string]bool, len(tools))
		for i := range tools {
			tool := &tools[i]
			if seen[tool.Name] {
				return nil, domain.NewDomainError("BuildRouteTable", domain.ErrDuplicate, "tool "+tool.Name)
			}
			seen[tool.Name] = true
			table = append(table, domain.Route{
				Kind:    domain.RouteTool,
				Name:    tool.Name,
				Path:    "/" + tool.Name,
				Summary: tool.Description,
				Tool:    tool,
			})
		}
	}

	return table, nil
}
