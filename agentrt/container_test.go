package agentrt

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrt/baml-agent-runtime/promptengine"
	"github.com/agentrt/baml-agent-runtime/provenance"
)

type stubEngine struct{}

func (stubEngine) ListFunctions() []string { return []string{"greet"} }
func (stubEngine) BuildRequestWithoutSending(_ context.Context, name string, _ map[string]any) (promptengine.ResolvedRequest, error) {
	return promptengine.ResolvedRequest{Client: "default", Model: "stub", Prompt: name}, nil
}
func (stubEngine) Execute(_ context.Context, _ string, _ map[string]any, _ *promptengine.Collector) (any, error) {
	return map[string]any{"ok": true}, nil
}
func (stubEngine) StreamFunction(_ context.Context, _ string, _ map[string]any) (<-chan any, error) {
	ch := make(chan any)
	close(ch)
	return ch, nil
}

const echoScript = `
function handle_a2a_request(envelope) {
  return { task: { id: "t1", contextId: "c1" } };
}
`

func buildTestContainer(t *testing.T) *Container {
	t.Helper()
	c, err := NewBuilder().
		WithPromptEngine(stubEngine{}).
		WithInitialScript(echoScript).
		Build()
	require.NoError(t, err)
	return c
}

func TestBuildRequiresPromptEngine(t *testing.T) {
	_, err := NewBuilder().Build()
	require.Error(t, err)
}

func TestBuildRegistersBuiltinToolsByDefault(t *testing.T) {
	c := buildTestContainer(t)
	assert.True(t, c.Tools().Has("calculate"))
}

func TestBuildWithBuiltinToolsDisabledOmitsCalculate(t *testing.T) {
	c, err := NewBuilder().
		WithPromptEngine(stubEngine{}).
		WithInitialScript(echoScript).
		WithBuiltinTools(false).
		Build()
	require.NoError(t, err)
	assert.False(t, c.Tools().Has("calculate"))
}

func TestHandleMessageSendReturnsSuccessResponse(t *testing.T) {
	c := buildTestContainer(t)
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"message.send","params":{}}`)

	responses := c.Handle(context.Background(), raw)
	require.Len(t, responses, 1)
	assert.Nil(t, responses[0].Error)
	assert.NotNil(t, responses[0].Result)
}

func TestHandleUnknownMethodReturnsMethodNotFound(t *testing.T) {
	c := buildTestContainer(t)
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"bogus.thing","params":{}}`)

	responses := c.Handle(context.Background(), raw)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, -32601, responses[0].Error.Code)
}

func TestHandleMalformedJSONReturnsParseError(t *testing.T) {
	c := buildTestContainer(t)
	responses := c.Handle(context.Background(), []byte(`not json`))
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
}

func TestHandleJSONMarshalsEveryResponse(t *testing.T) {
	c := buildTestContainer(t)
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"message.send","params":{}}`)

	out, err := c.HandleJSON(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, out, 1)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out[0], &decoded))
	assert.Equal(t, "2.0", decoded["jsonrpc"])
}

const llmCallingScript = `
function handle_a2a_request(envelope) {
  greet({});
  return { task: { id: "t1", contextId: "c1" } };
}
`

func TestBuildEmitsLlmCallProvenanceEventsInOrder(t *testing.T) {
	c, err := NewBuilder().
		WithPromptEngine(stubEngine{}).
		WithInitialScript(llmCallingScript).
		Build()
	require.NoError(t, err)

	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"message.send","params":{}}`)
	responses := c.Handle(context.Background(), raw)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	mw, ok := c.Provenance().(*provenance.MemoryWriter)
	require.True(t, ok)

	var types []provenance.EventType
	for _, e := range mw.Events() {
		if e.Type == provenance.LLMCallStarted || e.Type == provenance.LLMCallCompleted {
			types = append(types, e.Type)
		}
	}
	require.Len(t, types, 2)
	assert.Equal(t, provenance.LLMCallStarted, types[0])
	assert.Equal(t, provenance.LLMCallCompleted, types[1])
}

func TestHandleTasksGetAfterMessageSendFindsPersistedTask(t *testing.T) {
	c := buildTestContainer(t)
	sendRaw := []byte(`{"jsonrpc":"2.0","id":1,"method":"message.send","params":{}}`)
	c.Handle(context.Background(), sendRaw)

	getRaw := []byte(`{"jsonrpc":"2.0","id":2,"method":"tasks.get","params":{"id":"t1"}}`)
	responses := c.Handle(context.Background(), getRaw)
	require.Len(t, responses, 1)
	assert.Nil(t, responses[0].Error)
}
