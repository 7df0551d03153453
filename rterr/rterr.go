// Package rterr is the runtime's error taxonomy: a small tagged sum of
// error kinds that every component reports through instead of ad-hoc
// fmt.Errorf strings, so the A2A codec can map failures to JSON-RPC codes
// without string sniffing.
package rterr

import "fmt"

// Kind classifies an Error.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindFunctionNotFound Kind = "function_not_found"
	KindIO               Kind = "io"
	KindJSON             Kind = "json"
	KindScriptHost       Kind = "script_host"
	KindPromptEngine     Kind = "prompt_engine"
	KindToolExecution    Kind = "tool_execution"
	KindBlocked          Kind = "blocked"
	KindInternal         Kind = "internal"
)

// Error is the runtime's tagged-sum error type.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func wrapErr(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Cause: cause}
}

func InvalidArgument(msg string) *Error      { return newErr(KindInvalidArgument, msg) }
func FunctionNotFound(msg string) *Error     { return newErr(KindFunctionNotFound, msg) }
func IO(msg string, cause error) *Error      { return wrapErr(KindIO, msg, cause) }
func JSON(msg string, cause error) *Error    { return wrapErr(KindJSON, msg, cause) }
func ScriptHost(msg string) *Error           { return newErr(KindScriptHost, msg) }
func PromptEngine(msg string, cause error) *Error {
	return wrapErr(KindPromptEngine, msg, cause)
}
func ToolExecution(msg string) *Error { return newErr(KindToolExecution, msg) }
func Blocked(msg string) *Error       { return newErr(KindBlocked, msg) }
func Internal(msg string, cause error) *Error {
	return wrapErr(KindInternal, msg, cause)
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, defaulting
// to KindInternal for anything else.
func KindOf(err error) Kind {
	var e *Error
	if asError(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
