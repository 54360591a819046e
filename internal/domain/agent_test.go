package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputDeclarationRequired(t *testing.T) {
	def := "fallback"
	decl := InputDeclaration{
		"task":  nil,
		"style": &def,
		"topic": nil,
	}

	required := decl.Required()
	sort.Strings(required)
	assert.Equal(t, []string{"task", "topic"}, required)
}

func TestInputDeclarationRequiredEmpty(t *testing.T) {
	assert.Empty(t, InputDeclaration{}.Required())
}

func TestOutputStateOutput(t *testing.T) {
	state := OutputState{"output": "done", "exit_code": 0}
	assert.Equal(t, "done", state.Output())

	assert.Nil(t, OutputState{}.Output())
}
