package a2acodec

import (
	"encoding/json"

	"github.com/agentrt/baml-agent-runtime/rterr"
)

// RPCError is the JSON-RPC error object shape.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Response is the JSON-RPC response envelope: exactly one of Result or
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// SuccessResponse formats a single-value A2A result.
func SuccessResponse(id json.RawMessage, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

// StreamChunkResponse formats one element of a stream response:
// {stream:true, index, final, chunk}.
func StreamChunkResponse(id json.RawMessage, index int, final bool, chunk any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: map[string]any{
		"stream": true,
		"index":  index,
		"final":  final,
		"chunk":  chunk,
	}}
}

// ErrorResponse formats a JSON-RPC error response.
func ErrorResponse(id json.RawMessage, code int, message string, data any) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message, Data: data}}
}

// CodeForError maps a runtime error to its JSON-RPC error code and
// message, per the codec's failure-semantics table.
func CodeForError(err error) (int, string) {
	switch rterr.KindOf(err) {
	case rterr.KindInvalidArgument:
		return CodeInvalidParams, err.Error()
	case rterr.KindFunctionNotFound:
		return CodeMethodNotFound, err.Error()
	case rterr.KindBlocked:
		return CodeBlocked, "execution blocked: " + err.Error()
	case rterr.KindJSON:
		return CodeParseError, "JSON parse error"
	default:
		return CodeInternal, err.Error()
	}
}
