package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentgate/internal/domain"
)

func descriptor(name string) domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name: name,
		Call: func(context.Context, map[string]any) (any, error) { return name, nil },
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(descriptor("alpha")))

	d, err := r.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", d.Name)
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(descriptor("alpha")))

	err := r.Register(descriptor("alpha"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrToolNotFound))
}

func TestRegistryAllSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(descriptor("zeta")))
	require.NoError(t, r.Register(descriptor("alpha")))
	require.NoError(t, r.Register(descriptor("mid")))

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "mid", all[1].Name)
	assert.Equal(t, "zeta", all[2].Name)
}
