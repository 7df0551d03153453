package a2acodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrt/baml-agent-runtime/rterr"
)

func TestParseRejectsBadJSON(t *testing.T) {
	_, err := Parse([]byte("not json"))
	require.Error(t, err)
	assert.Equal(t, rterr.KindJSON, rterr.KindOf(err))
}

func TestParseRejectsWrongVersion(t *testing.T) {
	_, err := Parse([]byte(`{"jsonrpc":"1.0","method":"tasks.get","params":{}}`))
	require.Error(t, err)
	assert.Equal(t, rterr.KindInvalidArgument, rterr.KindOf(err))
}

func TestParseNormalizesNullParams(t *testing.T) {
	req, err := Parse([]byte(`{"jsonrpc":"2.0","method":"tasks.get"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, req.Params)
}

func TestParseNormalizesArrayParams(t *testing.T) {
	req, err := Parse([]byte(`{"jsonrpc":"2.0","method":"tasks.get","params":["a","b"]}`))
	require.NoError(t, err)
	assert.Equal(t, "a", req.Params["arg0"])
	assert.Equal(t, "b", req.Params["arg1"])
}

func TestParseNormalizesScalarParams(t *testing.T) {
	req, err := Parse([]byte(`{"jsonrpc":"2.0","method":"tasks.get","params":42}`))
	require.NoError(t, err)
	assert.Equal(t, float64(42), req.Params["value"])
}

func TestParseStripsStreamSuffix(t *testing.T) {
	for _, method := range []string{"tasks.get/stream", "tasks.get.stream", "tasks.get:stream"} {
		req, err := Parse([]byte(`{"jsonrpc":"2.0","method":"` + method + `","params":{}}`))
		require.NoError(t, err)
		assert.Equal(t, "tasks.get", req.Method)
		assert.True(t, req.IsStream)
	}
}

func TestParseMessageSendStreamIsAlwaysStreaming(t *testing.T) {
	req, err := Parse([]byte(`{"jsonrpc":"2.0","method":"message.sendStream","params":{"message":{}}}`))
	require.NoError(t, err)
	assert.True(t, req.IsStream)
	assert.Equal(t, MethodMessageSendStream, req.Method)
}

func TestParseStreamFromMetadata(t *testing.T) {
	t.Run("top-level metadata", func(t *testing.T) {
		req, err := Parse([]byte(`{"jsonrpc":"2.0","method":"message.send","params":{"metadata":{"stream":true},"message":{}}}`))
		require.NoError(t, err)
		assert.True(t, req.IsStream)
	})
	t.Run("message metadata", func(t *testing.T) {
		req, err := Parse([]byte(`{"jsonrpc":"2.0","method":"message.send","params":{"message":{"metadata":{"stream":true}}}}`))
		require.NoError(t, err)
		assert.True(t, req.IsStream)
	})
}

func TestParseGeneratesContextIDForMessageSend(t *testing.T) {
	req, err := Parse([]byte(`{"jsonrpc":"2.0","method":"message.send","params":{"message":{}}}`))
	require.NoError(t, err)
	assert.NotEmpty(t, req.ContextID)

	msg := req.Params["message"].(map[string]any)
	assert.Equal(t, string(req.ContextID), msg["contextId"])
}

func TestParsePreservesExistingContextID(t *testing.T) {
	req, err := Parse([]byte(`{"jsonrpc":"2.0","method":"message.send","params":{"message":{"contextId":"existing"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(req.ContextID))
}

func TestIsA2AMethod(t *testing.T) {
	assert.True(t, IsA2AMethod(MethodTasksGet))
	assert.False(t, IsA2AMethod("mystery"))
}

func TestCodeForErrorMapping(t *testing.T) {
	code, msg := CodeForError(rterr.Blocked("nope"))
	assert.Equal(t, CodeBlocked, code)
	assert.Contains(t, msg, "blocked")

	code, _ = CodeForError(rterr.FunctionNotFound("x"))
	assert.Equal(t, CodeMethodNotFound, code)

	code, _ = CodeForError(rterr.InvalidArgument("x"))
	assert.Equal(t, CodeInvalidParams, code)
}
