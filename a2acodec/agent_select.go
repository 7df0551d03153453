package a2acodec

import "strings"

// ExtractAgentName resolves which loaded agent a request targets, trying
// in order: params.message.metadata.agent/.agent_name, then
// params.metadata.agent/.agent_name, then params.agent, then a method
// prefix "<agent>::<method>" / "<agent>/<method>" / "<agent>.<method>".
// The returned method has any matched prefix stripped. A method that is
// itself a recognized A2A method is never split into a prefix.
func ExtractAgentName(method string, params map[string]any) (agent string, strippedMethod string) {
	if msg, ok := params["message"].(map[string]any); ok {
		if meta, ok := msg["metadata"].(map[string]any); ok {
			if name := stringField(meta, "agent", "agent_name"); name != "" {
				return name, method
			}
		}
	}
	if meta, ok := params["metadata"].(map[string]any); ok {
		if name := stringField(meta, "agent", "agent_name"); name != "" {
			return name, method
		}
	}
	if name, ok := params["agent"].(string); ok && name != "" {
		return name, method
	}

	if IsA2AMethod(method) {
		return "", method
	}
	for _, sep := range []string{"::", "/", "."} {
		if idx := strings.Index(method, sep); idx > 0 {
			return method[:idx], method[idx+len(sep):]
		}
	}
	return "", method
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
