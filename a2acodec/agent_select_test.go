package a2acodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAgentNamePrecedence(t *testing.T) {
	t.Run("message metadata wins over everything else", func(t *testing.T) {
		params := map[string]any{
			"agent":    "paramsAgent",
			"metadata": map[string]any{"agent": "topLevelAgent"},
			"message":  map[string]any{"metadata": map[string]any{"agent": "messageAgent"}},
		}
		agent, method := ExtractAgentName("message.send", params)
		assert.Equal(t, "messageAgent", agent)
		assert.Equal(t, "message.send", method)
	})

	t.Run("top-level params metadata next", func(t *testing.T) {
		params := map[string]any{
			"agent":    "paramsAgent",
			"metadata": map[string]any{"agent": "topLevelAgent"},
		}
		agent, _ := ExtractAgentName("message.send", params)
		assert.Equal(t, "topLevelAgent", agent)
	})

	t.Run("params.agent next", func(t *testing.T) {
		agent, _ := ExtractAgentName("message.send", map[string]any{"agent": "paramsAgent"})
		assert.Equal(t, "paramsAgent", agent)
	})

	t.Run("method prefix with double colon", func(t *testing.T) {
		agent, method := ExtractAgentName("A::message.send", map[string]any{})
		assert.Equal(t, "A", agent)
		assert.Equal(t, "message.send", method)
	})

	t.Run("no selection falls through with empty agent", func(t *testing.T) {
		agent, method := ExtractAgentName("message.send", map[string]any{})
		assert.Empty(t, agent)
		assert.Equal(t, "message.send", method)
	})
}
