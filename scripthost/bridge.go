// Package scripthost embeds a sandboxed JavaScript engine (via goja) and
// bridges it to the host's prompt engine and tool registry. Grounded on the
// sandboxing/wrapper-generation design of the original runtime's
// src/quickjs_bridge.rs, reimplemented against goja rather than QuickJS
// since no example repo in the pack embeds QuickJS while goja is the
// JS-engine dependency the retrieval pack actually grounds.
package scripthost

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dop251/goja"

	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/interceptor"
	"github.com/agentrt/baml-agent-runtime/rterr"
	"github.com/agentrt/baml-agent-runtime/toolregistry"
)

// PromptEngine is the subset of the opaque prompt engine the bridge calls
// into to run declarative functions on behalf of script wrappers.
type PromptEngine interface {
	ListFunctions() []string
	CallFunction(ctx context.Context, name string, args map[string]any) (any, error)
	StreamFunction(ctx context.Context, name string, args map[string]any) ([]any, error)
}

// Bridge owns one embedded-engine instance and mediates every call across
// the script/host boundary.
type Bridge struct {
	mu           sync.Mutex
	vm           *goja.Runtime
	engine       PromptEngine
	tools        *toolregistry.Registry
	interceptors *interceptor.Registry
	jsTools      map[string]bool
	logger       *slog.Logger
	activeCtx    context.Context
}

// New constructs a Bridge with a fresh sandboxed engine instance.
func New(engine PromptEngine, tools *toolregistry.Registry, interceptors *interceptor.Registry, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		vm:           goja.New(),
		engine:       engine,
		tools:        tools,
		interceptors: interceptors,
		jsTools:      make(map[string]bool),
		logger:       logger,
	}
	b.vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if err := b.initializeSandbox(); err != nil {
		return nil, err
	}
	if err := b.registerHostEntryPoints(); err != nil {
		return nil, err
	}
	return b, nil
}

// initializeSandbox replaces globalThis.console with a shim whose methods
// only log through the host logger; no filesystem, network, or timer
// escape hatches are exposed except through host-registered functions.
func (b *Bridge) initializeSandbox() error {
	console := b.vm.NewObject()
	logFn := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]any, len(call.Arguments))
			for i, a := range call.Arguments {
				args[i] = a.Export()
			}
			b.logger.Debug("script console", "level", level, "args", args)
			return goja.Undefined()
		}
	}
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		if err := console.Set(level, logFn(level)); err != nil {
			return rterr.ScriptHost(fmt.Sprintf("sandbox setup failed: %v", err))
		}
	}
	if err := b.vm.Set("console", console); err != nil {
		return rterr.ScriptHost(fmt.Sprintf("sandbox setup failed: %v", err))
	}
	return nil
}

// registerHostEntryPoints exposes __invoke_prompt, __invoke_prompt_stream,
// __invoke_tool, and invokeTool to script code.
func (b *Bridge) registerHostEntryPoints() error {
	set := func(name string, fn any) error {
		if err := b.vm.Set(name, fn); err != nil {
			return rterr.ScriptHost(fmt.Sprintf("failed to register %s: %v", name, err))
		}
		return nil
	}

	if err := set("__invoke_prompt", b.invokePromptJS); err != nil {
		return err
	}
	if err := set("__invoke_prompt_stream", b.invokePromptStreamJS); err != nil {
		return err
	}
	if err := set("__invoke_tool", b.invokeToolJS); err != nil {
		return err
	}
	if err := set("invokeTool", b.dispatchInvokeToolJS); err != nil {
		return err
	}
	if err := set("register_js_tool", b.RegisterJSTool); err != nil {
		return err
	}
	if err := set("awaitAndStringify", b.awaitAndStringifyJS); err != nil {
		return err
	}
	return nil
}

// awaitAndStringifyJS backs awaitAndStringify(promise): for callers that
// need a finished JSON string when a promise cannot be awaited
// synchronously by the embedder.
func (b *Bridge) awaitAndStringifyJS(value goja.Value) (string, error) {
	resolved := exportResolved(value)
	out, err := json.Marshal(resolved)
	if err != nil {
		return "", rterr.JSON("failed to stringify resolved value", err)
	}
	return string(out), nil
}

// currentContext returns the context bound for the duration of the active
// InvokeFunction call, or a background context before any request has
// been dispatched (e.g. while evaluating the package's initial script).
func (b *Bridge) currentContext() context.Context {
	if b.activeCtx != nil {
		return b.activeCtx
	}
	return context.Background()
}

// invokePromptJS backs __invoke_prompt(name, args_json). Args cross the
// boundary as a JSON string to avoid marshalling cost.
func (b *Bridge) invokePromptJS(name string, argsJSON string) *goja.Promise {
	promise, resolve, reject := b.vm.NewPromise()
	args, err := decodeArgs(argsJSON)
	if err != nil {
		reject(err.Error())
		return promise
	}
	value, err := b.engine.CallFunction(b.currentContext(), name, args)
	if err != nil {
		reject(err.Error())
		return promise
	}
	resolve(b.vm.ToValue(value))
	return promise
}

// invokePromptStreamJS backs __invoke_prompt_stream(name, args_json),
// resolving with an ordered list of emitted partial values.
func (b *Bridge) invokePromptStreamJS(name string, argsJSON string) *goja.Promise {
	promise, resolve, reject := b.vm.NewPromise()
	args, err := decodeArgs(argsJSON)
	if err != nil {
		reject(err.Error())
		return promise
	}
	chunks, err := b.engine.StreamFunction(b.currentContext(), name, args)
	if err != nil {
		reject(err.Error())
		return promise
	}
	resolve(b.vm.ToValue(chunks))
	return promise
}

// invokeToolJS backs __invoke_tool(name, args_json): it executes a
// host-registered tool through the interceptor pipeline.
func (b *Bridge) invokeToolJS(name string, argsJSON string) *goja.Promise {
	promise, resolve, reject := b.vm.NewPromise()
	args, err := decodeArgs(argsJSON)
	if err != nil {
		reject(err.Error())
		return promise
	}

	ctx := b.currentContext()
	call := interceptor.ToolCallContext{ToolName: name, Args: args, ContextID: contextIDFrom(ctx)}
	if err := b.interceptors.InterceptToolCall(ctx, call); err != nil {
		b.interceptors.NotifyToolCallComplete(ctx, call, interceptor.CallResult{Blocked: true, Err: err}, 0)
		reject(err.Error())
		return promise
	}

	value, err := b.tools.Execute(ctx, name, args)
	b.interceptors.NotifyToolCallComplete(ctx, call, interceptor.CallResult{Err: err, Value: value}, 0)
	if err != nil {
		reject(err.Error())
		return promise
	}
	resolve(b.vm.ToValue(value))
	return promise
}

// dispatchInvokeToolJS backs invokeTool(name, args): for script-defined
// tools it calls the in-engine function directly; for host tools it routes
// through __invoke_tool.
func (b *Bridge) dispatchInvokeToolJS(name string, args goja.Value) (goja.Value, error) {
	if b.jsTools[name] {
		fn, ok := goja.AssertFunction(b.vm.Get(name))
		if !ok {
			return nil, rterr.ScriptHost("script tool not callable: " + name)
		}
		return fn(goja.Undefined(), args)
	}
	argsJSON, err := json.Marshal(args.Export())
	if err != nil {
		return nil, rterr.JSON("failed to encode tool args", err)
	}
	return b.vm.ToValue(b.invokeToolJS(name, string(argsJSON))), nil
}

// contextIDFrom reads the current request's context id bound on ctx, so
// host-tool calls dispatched from script carry the same context id as the
// request that triggered them.
func contextIDFrom(ctx context.Context) ids.ContextID {
	id, _ := ids.CurrentContextID(ctx)
	return id
}

func decodeArgs(argsJSON string) (map[string]any, error) {
	if argsJSON == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, rterr.JSON("failed to decode args", err)
	}
	return args, nil
}
