package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentgate/internal/domain"
)

func testTools() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{Name: "lookup", Description: "Look something up."},
		{Name: "submit", Description: "Submit a value."},
	}
}

func TestBuildRouteTableAgentOnly(t *testing.T) {
	table, err := BuildRouteTable(ModeAgentOnly, "demo", "a demo agent", testTools())
	require.NoError(t, err)

	require.Len(t, table, 1)
	agent, ok := table.Agent()
	require.True(t, ok)
	assert.Equal(t, "/", agent.Path)
	assert.Equal(t, "demo", agent.Name)
	assert.Equal(t, "a demo agent", agent.Summary)
	assert.Empty(t, table.Tools())
}

func TestBuildRouteTableCombined(t *testing.T) {
	table, err := BuildRouteTable(ModeCombined, "demo", "a demo agent", testTools())
	require.NoError(t, err)

	_, ok := table.Agent()
	require.True(t, ok)

	tools := table.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "/lookup", tools[0].Path)
	assert.Equal(t, "Look something up.", tools[0].Summary)
	assert.Equal(t, "/submit", tools[1].Path)
	assert.Equal(t, "Submit a value.", tools[1].Summary)
}

func TestBuildRouteTableToolsOnly(t *testing.T) {
	table, err := BuildRouteTable(ModeToolsOnly, "demo", "a demo agent", testTools())
	require.NoError(t, err)

	_, ok := table.Agent()
	assert.False(t, ok, "agent route must be absent in tools-only mode")
	assert.Len(t, table.Tools(), 2)
}

func TestBuildRouteTableRejectsDuplicateToolNames(t *testing.T) {
	tools := []domain.ToolDescriptor{
		{Name: "lookup"},
		{Name: "lookup"},
	}
	_, err := BuildRouteTable(ModeToolsOnly, "demo", "", tools)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestBuildRouteTableToolsCarryDescriptors(t *testing.T) {
	table, err := BuildRouteTable(ModeToolsOnly, "demo", "", testTools())
	require.NoError(t, err)

	for _, route := range table.Tools() {
		require.NotNil(t, route.Tool)
		assert.Equal(t, route.Name, route.Tool.Name)
	}
}
