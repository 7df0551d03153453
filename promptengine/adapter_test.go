package promptengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrt/baml-agent-runtime/interceptor"
	"github.com/agentrt/baml-agent-runtime/toolregistry"
)

type stubEngine struct {
	result      any
	execErr     error
	subCalls    []SubCall
	blockModel  string
}

func (s *stubEngine) ListFunctions() []string { return []string{"greet"} }

func (s *stubEngine) BuildRequestWithoutSending(_ context.Context, name string, _ map[string]any) (ResolvedRequest, error) {
	return ResolvedRequest{Client: "default", Model: s.blockModel, Prompt: name}, nil
}

func (s *stubEngine) Execute(_ context.Context, _ string, _ map[string]any, collector *Collector) (any, error) {
	collector.Calls = append(collector.Calls, s.subCalls...)
	return s.result, s.execErr
}

func (s *stubEngine) StreamFunction(_ context.Context, _ string, _ map[string]any) (<-chan any, error) {
	ch := make(chan any, 1)
	ch <- s.result
	close(ch)
	return ch, nil
}

type countingLLM struct{ completions int }

func (c *countingLLM) InterceptLLMCall(_ context.Context, call interceptor.LLMCallContext) (interceptor.Decision, error) {
	if call.Model == "blocked" {
		return interceptor.Block("model is blocked"), nil
	}
	return interceptor.Allow(), nil
}
func (c *countingLLM) OnLLMCallComplete(_ context.Context, _ interceptor.LLMCallContext, _ interceptor.CallResult, _ int64) {
	c.completions++
}

func newAdapter(engine Opaque) (*Adapter, *countingLLM) {
	reg := interceptor.NewRegistry(nil)
	llm := &countingLLM{}
	reg.RegisterLLMInterceptor(llm)
	return New(engine, reg, toolregistry.New(), toolregistry.NewVariantMapper(), nil), llm
}

func TestCallFunctionBlockedByInterceptor(t *testing.T) {
	engine := &stubEngine{blockModel: "blocked", result: map[string]any{"ok": true}}
	adapter, llm := newAdapter(engine)

	_, err := adapter.CallFunction(context.Background(), "greet", nil)
	require.Error(t, err)
	assert.Equal(t, 1, llm.completions)
}

func TestCallFunctionNotifiesOncePerSubCall(t *testing.T) {
	engine := &stubEngine{
		result:   map[string]any{"ok": true},
		subCalls: []SubCall{{Client: "a"}, {Client: "b"}},
	}
	adapter, llm := newAdapter(engine)

	_, err := adapter.CallFunction(context.Background(), "greet", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, llm.completions)
}

func TestCallFunctionNotifiesOnceWhenCollectorEmpty(t *testing.T) {
	engine := &stubEngine{result: map[string]any{"ok": true}}
	adapter, llm := newAdapter(engine)

	_, err := adapter.CallFunction(context.Background(), "greet", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, llm.completions)
}

func TestCallFunctionSurfacesExecutionError(t *testing.T) {
	engine := &stubEngine{execErr: errors.New("boom")}
	adapter, _ := newAdapter(engine)

	_, err := adapter.CallFunction(context.Background(), "greet", nil)
	require.Error(t, err)
}

func TestCallFunctionResolvesToolVariant(t *testing.T) {
	reg := interceptor.NewRegistry(nil)
	tools := toolregistry.New()
	mapper := toolregistry.NewVariantMapper()
	mapper.RegisterMapping("CalculatorTool", "calculate")
	require.NoError(t, tools.Register(toolregistry.Metadata{Name: "calculate"}, func(_ context.Context, args map[string]any) (any, error) {
		return map[string]any{"result": args["left"].(float64) + args["right"].(float64)}, nil
	}))

	engine := &stubEngine{result: map[string]any{
		"CalculatorTool": map[string]any{"left": 2.0, "right": 3.0},
	}}
	adapter := New(engine, reg, tools, mapper, nil)

	out, err := adapter.CallFunction(context.Background(), "greet", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"result": 5.0}, out)
}
