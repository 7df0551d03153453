package toolregistry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrt/baml-agent-runtime/rterr"
)

func echoExecutor(_ context.Context, args map[string]any) (any, error) {
	return args, nil
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Metadata{Name: "echo"}, echoExecutor))
	err := r.Register(Metadata{Name: "echo"}, echoExecutor)
	require.Error(t, err)
	assert.Equal(t, rterr.KindInvalidArgument, rterr.KindOf(err))
}

func TestExecuteUnknownToolReturnsFunctionNotFound(t *testing.T) {
	r := New()
	_, err := r.Execute(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Equal(t, rterr.KindFunctionNotFound, rterr.KindOf(err))
}

func TestExecuteDispatchesToRegisteredExecutor(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Metadata{Name: "echo"}, echoExecutor))

	out, err := r.Execute(context.Background(), "echo", map[string]any{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1}, out)
}

func TestListReturnsAllMetadata(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Metadata{Name: "a"}, echoExecutor))
	require.NoError(t, r.Register(Metadata{Name: "b"}, echoExecutor))

	names := map[string]bool{}
	for _, m := range r.List() {
		names[m.Name] = true
	}
	assert.True(t, names["a"])
	assert.True(t, names["b"])
}

func TestHasReflectsRegistrationState(t *testing.T) {
	r := New()
	assert.False(t, r.Has("echo"))
	require.NoError(t, r.Register(Metadata{Name: "echo"}, echoExecutor))
	assert.True(t, r.Has("echo"))
}
