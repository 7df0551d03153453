package provenance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrt/baml-agent-runtime/interceptor"
)

func TestInterceptorEmitsLlmStartedThenCompleted(t *testing.T) {
	w := NewMemoryWriter()
	i := NewInterceptor(w, nil)

	call := interceptor.LLMCallContext{Client: "openai", Model: "gpt", FunctionName: "greet", ContextID: "c1"}
	decision, err := i.InterceptLLMCall(context.Background(), call)
	require.NoError(t, err)
	assert.False(t, decision.Blocked)

	i.OnLLMCallComplete(context.Background(), call, interceptor.CallResult{Value: "ok"}, 12)

	events := w.Events()
	require.Len(t, events, 2)
	assert.Equal(t, LLMCallStarted, events[0].Type)
	assert.Equal(t, LLMCallCompleted, events[1].Type)
	data := events[1].Data.(LLMCallData)
	require.NotNil(t, data.Success)
	assert.True(t, *data.Success)
	require.NotNil(t, data.DurationMs)
	assert.Equal(t, int64(12), *data.DurationMs)
}

func TestInterceptorEmitsToolStartedThenCompleted(t *testing.T) {
	w := NewMemoryWriter()
	i := NewInterceptor(w, nil)

	call := interceptor.ToolCallContext{ToolName: "calculate", FunctionName: "greet", ContextID: "c1"}
	_, err := i.InterceptToolCall(context.Background(), call)
	require.NoError(t, err)
	i.OnToolCallComplete(context.Background(), call, interceptor.CallResult{Err: assert.AnError}, 5)

	events := w.Events()
	require.Len(t, events, 2)
	assert.Equal(t, ToolCallStarted, events[0].Type)
	assert.Equal(t, ToolCallCompleted, events[1].Type)
	data := events[1].Data.(ToolCallData)
	require.NotNil(t, data.Success)
	assert.False(t, *data.Success)
}
