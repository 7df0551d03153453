// Package promptengine wraps the opaque prompt engine (the BAML-like
// declarative-function executor) and gives the interceptor pipeline a real
// pre-execution hook via the engine's build-request-without-sending path.
// Grounded on the component contract in the specification and the
// collector-walk pattern of the original runtime's src/baml_execution.rs /
// baml_collector.rs.
package promptengine

import (
	"context"
	"log/slog"
	"time"

	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/interceptor"
	"github.com/agentrt/baml-agent-runtime/rterr"
	"github.com/agentrt/baml-agent-runtime/toolregistry"
)

// ResolvedRequest is what build-request-without-sending returns: the
// resolved client name, model, and prompt payload, without having sent
// anything over the network.
type ResolvedRequest struct {
	Client string
	Model  string
	Prompt string
}

// SubCall is one LLM sub-call observed on an engine-side trace collector
// after a function execution completes.
type SubCall struct {
	Client     string
	Model      string
	Prompt     string
	DurationMs int64
}

// Collector accumulates the sub-calls made during one function execution,
// mirroring the engine's trace/collector path.
type Collector struct {
	Calls []SubCall
}

// Opaque is the prompt engine's public contract: load-schema,
// list-functions, call-function, stream-function, and
// build-request-without-sending. The schema/model language itself is out
// of scope; only this interface matters.
type Opaque interface {
	ListFunctions() []string
	BuildRequestWithoutSending(ctx context.Context, name string, args map[string]any) (ResolvedRequest, error)
	Execute(ctx context.Context, name string, args map[string]any, collector *Collector) (any, error)
	StreamFunction(ctx context.Context, name string, args map[string]any) (<-chan any, error)
}

// Adapter wraps Opaque with interception and tool post-processing. It
// implements scripthost.PromptEngine so the script host bridge can call
// into it directly.
type Adapter struct {
	engine       Opaque
	interceptors *interceptor.Registry
	tools        *toolregistry.Registry
	mapper       *toolregistry.VariantMapper
	logger       *slog.Logger
}

// New constructs an Adapter.
func New(engine Opaque, interceptors *interceptor.Registry, tools *toolregistry.Registry, mapper *toolregistry.VariantMapper, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{engine: engine, interceptors: interceptors, tools: tools, mapper: mapper, logger: logger}
}

// ListFunctions delegates to the wrapped engine.
func (a *Adapter) ListFunctions() []string { return a.engine.ListFunctions() }

// CallFunction runs pre-execution interception via build-request-without-
// sending, executes the function with a trace collector attached,
// notifies LLM interceptors of every sub-call observed on the collector,
// and finally resolves an explicit tool choice in the result if present.
func (a *Adapter) CallFunction(ctx context.Context, name string, args map[string]any) (any, error) {
	contextID, _ := ids.CurrentContextID(ctx)

	resolved, err := a.engine.BuildRequestWithoutSending(ctx, name, args)
	if err != nil {
		return nil, rterr.PromptEngine("failed to resolve request", err)
	}

	call := interceptor.LLMCallContext{
		Client: resolved.Client, Model: resolved.Model,
		FunctionName: name, ContextID: contextID, Prompt: resolved.Prompt,
	}
	if err := a.interceptors.InterceptLLMCall(ctx, call); err != nil {
		a.interceptors.NotifyLLMCallComplete(ctx, call, interceptor.CallResult{Blocked: true, Err: err}, 0)
		return nil, err
	}

	collector := &Collector{}
	start := time.Now()
	result, execErr := a.engine.Execute(ctx, name, args, collector)
	a.notifyCollector(ctx, name, contextID, collector, execErr, time.Since(start).Milliseconds())

	if execErr != nil {
		return nil, rterr.PromptEngine("function execution failed", execErr)
	}

	value, _, err := toolregistry.ExecuteFromOutput(ctx, a.tools, a.mapper, a.interceptors, name, contextID, result)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// notifyCollector walks the collector's sub-call log and fires a
// completion notification per LLM sub-call. Collector-walk failures are
// logged, never surfaced.
func (a *Adapter) notifyCollector(ctx context.Context, name string, contextID ids.ContextID, collector *Collector, execErr error, totalDurationMs int64) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("collector walk failed", "panic", r)
		}
	}()

	if collector == nil || len(collector.Calls) == 0 {
		// No sub-calls observed: still notify once for the function-level
		// call so every CallFunction invocation produces a completion.
		call := interceptor.LLMCallContext{FunctionName: name, ContextID: contextID}
		a.interceptors.NotifyLLMCallComplete(ctx, call, interceptor.CallResult{Err: execErr}, totalDurationMs)
		return
	}

	for _, sub := range collector.Calls {
		call := interceptor.LLMCallContext{
			Client: sub.Client, Model: sub.Model, FunctionName: name, ContextID: contextID, Prompt: sub.Prompt,
		}
		a.interceptors.NotifyLLMCallComplete(ctx, call, interceptor.CallResult{Err: execErr}, sub.DurationMs)
	}
}

// StreamFunction exposes a stream iterator: each partial parse is
// collected in order, and a completion notification fires once the
// stream terminates.
func (a *Adapter) StreamFunction(ctx context.Context, name string, args map[string]any) ([]any, error) {
	contextID, _ := ids.CurrentContextID(ctx)

	resolved, err := a.engine.BuildRequestWithoutSending(ctx, name, args)
	if err != nil {
		return nil, rterr.PromptEngine("failed to resolve request", err)
	}
	call := interceptor.LLMCallContext{
		Client: resolved.Client, Model: resolved.Model,
		FunctionName: name, ContextID: contextID, Prompt: resolved.Prompt,
	}
	if err := a.interceptors.InterceptLLMCall(ctx, call); err != nil {
		a.interceptors.NotifyLLMCallComplete(ctx, call, interceptor.CallResult{Blocked: true, Err: err}, 0)
		return nil, err
	}

	start := time.Now()
	ch, err := a.engine.StreamFunction(ctx, name, args)
	if err != nil {
		a.interceptors.NotifyLLMCallComplete(ctx, call, interceptor.CallResult{Err: err}, time.Since(start).Milliseconds())
		return nil, rterr.PromptEngine("stream failed to start", err)
	}

	var chunks []any
	for chunk := range ch {
		chunks = append(chunks, chunk)
	}
	a.interceptors.NotifyLLMCallComplete(ctx, call, interceptor.CallResult{Value: chunks}, time.Since(start).Milliseconds())
	return chunks, nil
}
