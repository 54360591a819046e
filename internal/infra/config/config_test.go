package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentgate/internal/domain"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "assistant.yml", `
generator: openai/gpt-4o-mini
description: answers questions
agent: You are a helpful assistant.
task: 'Answer this: {{.question}}'
defaults:
  question: what time is it?
using:
  - time
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.Generator)
	assert.Equal(t, "answers questions", cfg.Description)
	assert.Equal(t, []string{"time"}, cfg.Using)
	assert.True(t, cfg.HasDirectives())
}

func TestLoadDirectoryPrefersTaskFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "task.yml", "task: from task file")
	writeConfig(t, dir, "agent.yml", "agent: from agent file")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from task file", cfg.Task)
	assert.Empty(t, cfg.Agent)
}

func TestLoadDirectoryFallsBackToAgentFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "agent.yml", "agent: from agent file")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from agent file", cfg.Agent)
}

func TestLoadErrorsWrapConfigLoad(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigLoad))

	path := writeConfig(t, t.TempDir(), "broken.yml", "agent: [unterminated")
	_, err = Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigLoad))

	_, err = Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigLoad))
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "task.yml", "task: hi")

	resolved, err := ResolvePath(dir)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)

	resolved, err = ResolvePath(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
}

func TestAgentName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/agents/translator.yml", "translator"},
		{"/agents/translator/agent.yml", "translator"},
		{"/agents/translator/task.yml", "translator"},
		{"/agents/translator/workflow.yml", "translator"},
		{"summarize.yaml", "summarize"},
	}
	for _, tt := range tests {
		if got := AgentName(tt.path); got != tt.want {
			t.Errorf("AgentName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestHasDirectives(t *testing.T) {
	assert.False(t, (&Agent{}).HasDirectives())
	assert.True(t, (&Agent{SystemPrompt: "x"}).HasDirectives())
	assert.True(t, (&Agent{Agent: "x"}).HasDirectives())
	assert.True(t, (&Agent{Task: "x"}).HasDirectives())
}

func TestInputsFromDirectives(t *testing.T) {
	cfg := &Agent{
		Agent: "You speak {{.language}}.",
		Task:  "Translate {{.text}} into {{.language}}.",
		Defaults: map[string]any{
			"language": "french",
		},
	}

	decl := cfg.Inputs()
	require.Len(t, decl, 2)

	require.Contains(t, decl, "language")
	require.NotNil(t, decl["language"])
	assert.Equal(t, "french", *decl["language"])

	require.Contains(t, decl, "text")
	assert.Nil(t, decl["text"])
}

func TestInputsImplicitTask(t *testing.T) {
	cfg := &Agent{Agent: "You are a helper."}

	decl := cfg.Inputs()
	require.Contains(t, decl, "task")
	assert.Nil(t, decl["task"])
}

func TestInputsNoImplicitTaskWhenTaskSet(t *testing.T) {
	cfg := &Agent{Task: "Summarize {{.document}}."}

	decl := cfg.Inputs()
	assert.NotContains(t, decl, "task")
	assert.Contains(t, decl, "document")
}

func TestInputsExcludeToolAndArgNames(t *testing.T) {
	cfg := &Agent{
		Task: "Look up {{.city}} with {{geocode}}.",
		Tools: []ToolSpec{
			{
				Name:      "geocode",
				Arguments: []ToolArg{{Name: "place"}},
				Tool:      "geo --place {{.place}} --key {{.api_key}}",
			},
		},
	}

	decl := cfg.Inputs()
	assert.Contains(t, decl, "city")
	assert.Contains(t, decl, "api_key")
	assert.NotContains(t, decl, "geocode")
	assert.NotContains(t, decl, "place")
	assert.NotContains(t, decl, "task")
}

func TestInputsDefaultsAreStringified(t *testing.T) {
	cfg := &Agent{
		Task: "Repeat {{.count}} times.",
		Defaults: map[string]any{
			"count": 3,
		},
	}

	decl := cfg.Inputs()
	require.NotNil(t, decl["count"])
	assert.Equal(t, "3", *decl["count"])
}

func TestTemplateVariables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no templates", "plain text", nil},
		{"field form", "hello {{.name}}", []string{"name"}},
		{"bare form", "hello {{name}}", []string{"name"}},
		{"mixed and deduped", "{{.a}} {{b}} {{.a}}", []string{"a", "b"}},
		{"inside if", "{{if .flag}}{{.value}}{{end}}", []string{"flag", "value"}},
		{"inside range", "{{range .items}}x{{end}}", []string{"items"}},
		{"unparsable is literal", "open {{ brace", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := templateVariables(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}
