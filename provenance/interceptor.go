package provenance

import (
	"context"
	"log/slog"

	"github.com/agentrt/baml-agent-runtime/interceptor"
)

// Interceptor emits LlmCall{Started,Completed} and ToolCall{Started,Completed}
// events to a Writer as the interceptor pipeline runs. Grounded on
// ProvenanceInterceptor in the original runtime
// (crates/baml-rt-a2a/src/a2a_transport.rs), which registers the same type
// as both an LLM and a tool interceptor.
type Interceptor struct {
	writer Writer
	logger *slog.Logger
}

var (
	_ interceptor.LLMInterceptor  = (*Interceptor)(nil)
	_ interceptor.ToolInterceptor = (*Interceptor)(nil)
)

// NewInterceptor returns a provenance-recording interceptor writing to writer.
func NewInterceptor(writer Writer, logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interceptor{writer: writer, logger: logger}
}

func (i *Interceptor) InterceptLLMCall(ctx context.Context, call interceptor.LLMCallContext) (interceptor.Decision, error) {
	AddEventWithLogging(ctx, i.writer, i.logger, LLMCallStartedEvent(call.ContextID, LLMCallData{
		Client:       call.Client,
		Model:        call.Model,
		FunctionName: call.FunctionName,
		Prompt:       call.Prompt,
		Metadata:     call.Metadata,
	}))
	return interceptor.Allow(), nil
}

func (i *Interceptor) OnLLMCallComplete(ctx context.Context, call interceptor.LLMCallContext, result interceptor.CallResult, durationMs int64) {
	success := result.Err == nil && !result.Blocked
	AddEventWithLogging(ctx, i.writer, i.logger, LLMCallCompletedEvent(call.ContextID, LLMCallData{
		Client:       call.Client,
		Model:        call.Model,
		FunctionName: call.FunctionName,
		Prompt:       call.Prompt,
		Metadata:     call.Metadata,
		DurationMs:   durationPtr(durationMs),
		Success:      &success,
	}))
}

func (i *Interceptor) InterceptToolCall(ctx context.Context, call interceptor.ToolCallContext) (interceptor.Decision, error) {
	AddEventWithLogging(ctx, i.writer, i.logger, ToolCallStartedEvent(call.ContextID, ToolCallData{
		ToolName:     call.ToolName,
		FunctionName: call.FunctionName,
		Args:         call.Args,
		Metadata:     call.Metadata,
	}))
	return interceptor.Allow(), nil
}

func (i *Interceptor) OnToolCallComplete(ctx context.Context, call interceptor.ToolCallContext, result interceptor.CallResult, durationMs int64) {
	success := result.Err == nil && !result.Blocked
	AddEventWithLogging(ctx, i.writer, i.logger, ToolCallCompletedEvent(call.ContextID, ToolCallData{
		ToolName:     call.ToolName,
		FunctionName: call.FunctionName,
		Args:         call.Args,
		Metadata:     call.Metadata,
		DurationMs:   durationPtr(durationMs),
		Success:      &success,
	}))
}

func durationPtr(ms int64) *int64 {
	d := ms
	return &d
}
