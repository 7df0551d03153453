// Package a2acodec parses and formats the A2A JSON-RPC 2.0 wire protocol:
// envelope validation, method classification, params normalization, stream
// detection, and response formatting. Grounded on the original runtime's
// crates/baml-rt-a2a/src/a2a.rs.
package a2acodec

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/rterr"
)

// Recognized A2A methods.
const (
	MethodMessageSend       = "message.send"
	MethodMessageSendStream = "message.sendStream"
	MethodTasksGet          = "tasks.get"
	MethodTasksList         = "tasks.list"
	MethodTasksCancel       = "tasks.cancel"
	MethodTasksSubscribe    = "tasks.subscribe"
)

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	CodeBlocked        = -32000
)

// Request is a parsed, normalized A2A request.
type Request struct {
	ID        json.RawMessage
	Method    string
	Params    map[string]any
	IsStream  bool
	ContextID ids.ContextID
}

type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Parse decodes one JSON-RPC line, validates jsonrpc=="2.0", normalizes
// params, detects stream intent, and (for message.* methods) generates and
// writes back a fresh ContextID when the message lacks one.
func Parse(raw []byte) (*Request, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, rterr.JSON("JSON parse error", err)
	}
	if env.JSONRPC != "2.0" {
		return nil, rterr.InvalidArgument("invalid request: jsonrpc must be \"2.0\"")
	}

	var rawParams any
	if len(env.Params) > 0 {
		if err := json.Unmarshal(env.Params, &rawParams); err != nil {
			return nil, rterr.JSON("invalid params", err)
		}
	}
	params := NormalizeParams(rawParams)

	method, isStream := stripStreamSuffix(env.Method)
	if paramsWantStream(params) {
		isStream = true
	}
	delete(params, "stream")

	isA2A := IsA2AMethod(method)
	if isA2A && (method == MethodMessageSend || method == MethodMessageSendStream) {
		if streamFromMessageRequest(params) {
			isStream = true
		}
	}
	if method == MethodMessageSendStream {
		isStream = true
	}

	req := &Request{ID: env.ID, Method: method, Params: params, IsStream: isStream}

	if method == MethodMessageSend || method == MethodMessageSendStream {
		req.ContextID = ensureContextID(params)
	}

	return req, nil
}

// IsA2AMethod reports whether method is one of the six recognized A2A
// methods.
func IsA2AMethod(method string) bool {
	switch method {
	case MethodMessageSend, MethodMessageSendStream, MethodTasksGet, MethodTasksList, MethodTasksCancel, MethodTasksSubscribe:
		return true
	default:
		return false
	}
}

// NormalizeParams maps null -> {}, an array -> {arg0, arg1, ...}, a scalar
// -> {value: ...}, and an object -> itself (copied).
func NormalizeParams(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	case []any:
		out := make(map[string]any, len(v))
		for i, val := range v {
			out["arg"+strconv.Itoa(i)] = val
		}
		return out
	default:
		return map[string]any{"value": v}
	}
}

// stripStreamSuffix removes a "/stream", ".stream", or ":stream" suffix
// from a non-A2A method, reporting whether it elevates the request to
// streaming.
func stripStreamSuffix(method string) (string, bool) {
	for _, suffix := range []string{"/stream", ".stream", ":stream"} {
		if strings.HasSuffix(method, suffix) && method != MethodMessageSendStream {
			return strings.TrimSuffix(method, suffix), true
		}
	}
	return method, false
}

func paramsWantStream(params map[string]any) bool {
	if v, ok := params["stream"].(bool); ok {
		return v
	}
	return false
}

// streamFromMessageRequest checks the three stream-intent locations for
// message.send: params.stream (already folded into IsStream by the
// caller), params.metadata.stream, message.metadata.stream.
func streamFromMessageRequest(params map[string]any) bool {
	if meta, ok := params["metadata"].(map[string]any); ok {
		if v, ok := meta["stream"].(bool); ok && v {
			return true
		}
	}
	if msg, ok := params["message"].(map[string]any); ok {
		if meta, ok := msg["metadata"].(map[string]any); ok {
			if v, ok := meta["stream"].(bool); ok && v {
				return true
			}
		}
	}
	return false
}

// ensureContextID returns the message's context_id if set, otherwise
// generates a fresh one and writes it back into params.message.contextId
// so the script sees it.
func ensureContextID(params map[string]any) ids.ContextID {
	msg, ok := params["message"].(map[string]any)
	if !ok {
		msg = map[string]any{}
		params["message"] = msg
	}
	for _, key := range []string{"contextId", "context_id"} {
		if v, ok := msg[key].(string); ok && v != "" {
			return ids.ContextID(v)
		}
	}
	fresh := ids.NewContextID()
	msg["contextId"] = string(fresh)
	return fresh
}
