// Package interceptor implements the two ordered LLM/Tool interceptor
// pipelines: pre-execution Allow/Block decisions and post-execution
// completion notifications. Grounded on the original runtime's
// crates/baml-rt-interceptor/src/interceptor.rs.
package interceptor

import (
	"context"
	"log/slog"

	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/rterr"
)

// Decision is the outcome of a pre-execution interceptor call.
type Decision struct {
	Blocked bool
	Message string
}

// Allow is the non-blocking Decision.
func Allow() Decision { return Decision{} }

// Block short-circuits the pipeline with an explanatory message.
func Block(message string) Decision { return Decision{Blocked: true, Message: message} }

// LLMCallContext describes an LLM call about to be (or having been) made.
type LLMCallContext struct {
	Client       string
	Model        string
	FunctionName string
	ContextID    ids.ContextID
	Prompt       string
	Metadata     map[string]any
}

// ToolCallContext describes a tool call about to be (or having been) made.
type ToolCallContext struct {
	ToolName     string
	FunctionName string
	Args         map[string]any
	ContextID    ids.ContextID
	Metadata     map[string]any
}

// CallResult is what a post-execution notification observes.
type CallResult struct {
	Blocked    bool
	BlockedMsg string
	Err        error
	Value      any
}

// LLMInterceptor observes and can block LLM calls.
type LLMInterceptor interface {
	InterceptLLMCall(ctx context.Context, call LLMCallContext) (Decision, error)
	OnLLMCallComplete(ctx context.Context, call LLMCallContext, result CallResult, durationMs int64)
}

// ToolInterceptor observes and can block tool calls.
type ToolInterceptor interface {
	InterceptToolCall(ctx context.Context, call ToolCallContext) (Decision, error)
	OnToolCallComplete(ctx context.Context, call ToolCallContext, result CallResult, durationMs int64)
}

// Pipeline is an ordered sequence of interceptors of one kind, run
// pre-execution in order with short-circuit on Block and interceptor
// errors treated as Allow (logged, not propagated).
type Pipeline[I any] struct {
	interceptors []I
	logger       *slog.Logger
}

// NewPipeline returns an empty Pipeline.
func NewPipeline[I any](logger *slog.Logger) *Pipeline[I] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline[I]{logger: logger}
}

// WithInterceptor appends one interceptor, preserving registration order.
func (p *Pipeline[I]) WithInterceptor(i I) *Pipeline[I] {
	p.interceptors = append(p.interceptors, i)
	return p
}

// AddAll appends every interceptor in is, preserving order.
func (p *Pipeline[I]) AddAll(is ...I) *Pipeline[I] {
	p.interceptors = append(p.interceptors, is...)
	return p
}

// Interceptors returns the registered interceptors in order.
func (p *Pipeline[I]) Interceptors() []I { return p.interceptors }

// Len reports how many interceptors are registered.
func (p *Pipeline[I]) Len() int { return len(p.interceptors) }

// IsEmpty reports whether no interceptors are registered.
func (p *Pipeline[I]) IsEmpty() bool { return len(p.interceptors) == 0 }

// Registry holds the separate LLM and Tool pipelines used by one agent
// container.
type Registry struct {
	LLM    *Pipeline[LLMInterceptor]
	Tool   *Pipeline[ToolInterceptor]
	logger *slog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		LLM:    NewPipeline[LLMInterceptor](logger),
		Tool:   NewPipeline[ToolInterceptor](logger),
		logger: logger,
	}
}

// RegisterLLMInterceptor appends i to the LLM pipeline.
func (r *Registry) RegisterLLMInterceptor(i LLMInterceptor) { r.LLM.WithInterceptor(i) }

// RegisterToolInterceptor appends i to the Tool pipeline.
func (r *Registry) RegisterToolInterceptor(i ToolInterceptor) { r.Tool.WithInterceptor(i) }

// MergeLLMPipeline appends every interceptor from other into the LLM
// pipeline, preserving their relative order.
func (r *Registry) MergeLLMPipeline(other *Pipeline[LLMInterceptor]) {
	r.LLM.AddAll(other.Interceptors()...)
}

// MergeToolPipeline appends every interceptor from other into the Tool
// pipeline, preserving their relative order.
func (r *Registry) MergeToolPipeline(other *Pipeline[ToolInterceptor]) {
	r.Tool.AddAll(other.Interceptors()...)
}

// InterceptLLMCall runs the LLM pipeline's pre-execution phase. A Block
// decision short-circuits and is surfaced as rterr.Blocked.
func (r *Registry) InterceptLLMCall(ctx context.Context, call LLMCallContext) error {
	for _, i := range r.LLM.Interceptors() {
		decision, err := safeInterceptLLM(ctx, i, call, r.logger)
		if err != nil {
			continue // interceptor-internal errors are logged and treated as Allow
		}
		if decision.Blocked {
			return rterr.Blocked(decision.Message)
		}
	}
	return nil
}

// InterceptToolCall runs the Tool pipeline's pre-execution phase.
func (r *Registry) InterceptToolCall(ctx context.Context, call ToolCallContext) error {
	for _, i := range r.Tool.Interceptors() {
		decision, err := safeInterceptTool(ctx, i, call, r.logger)
		if err != nil {
			continue
		}
		if decision.Blocked {
			return rterr.Blocked(decision.Message)
		}
	}
	return nil
}

// NotifyLLMCallComplete calls every registered LLM interceptor's
// completion hook unconditionally, regardless of outcome.
func (r *Registry) NotifyLLMCallComplete(ctx context.Context, call LLMCallContext, result CallResult, durationMs int64) {
	for _, i := range r.LLM.Interceptors() {
		func() {
			defer recoverAndLog(r.logger, "llm completion notification")
			i.OnLLMCallComplete(ctx, call, result, durationMs)
		}()
	}
}

// NotifyToolCallComplete calls every registered Tool interceptor's
// completion hook unconditionally, regardless of outcome.
func (r *Registry) NotifyToolCallComplete(ctx context.Context, call ToolCallContext, result CallResult, durationMs int64) {
	for _, i := range r.Tool.Interceptors() {
		func() {
			defer recoverAndLog(r.logger, "tool completion notification")
			i.OnToolCallComplete(ctx, call, result, durationMs)
		}()
	}
}

func safeInterceptLLM(ctx context.Context, i LLMInterceptor, call LLMCallContext, logger *slog.Logger) (decision Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("llm interceptor panicked, treating as allow", "panic", r)
			err = rterr.Internal("interceptor panic", nil)
		}
	}()
	decision, err = i.InterceptLLMCall(ctx, call)
	if err != nil {
		logger.Warn("llm interceptor failed, treating as allow", "error", err)
	}
	return
}

func safeInterceptTool(ctx context.Context, i ToolInterceptor, call ToolCallContext, logger *slog.Logger) (decision Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("tool interceptor panicked, treating as allow", "panic", r)
			err = rterr.Internal("interceptor panic", nil)
		}
	}()
	decision, err = i.InterceptToolCall(ctx, call)
	if err != nil {
		logger.Warn("tool interceptor failed, treating as allow", "error", err)
	}
	return
}

func recoverAndLog(logger *slog.Logger, what string) {
	if r := recover(); r != nil {
		logger.Warn("interceptor notification panicked", "phase", what, "panic", r)
	}
}
