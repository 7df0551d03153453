package toolregistry

import (
	"context"
	"time"

	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/interceptor"
	"github.com/agentrt/baml-agent-runtime/rterr"
)

// ExecuteFromOutput detects an explicit tool choice in output via mapper
// and, if found, maps it through registry and executes it through the
// tool interceptor pipeline (pre-execution Allow/Block, unconditional
// completion notification), exactly as a script-initiated __invoke_tool
// call does. The second return reports whether a tool call was detected
// and executed at all; the caller should treat value as unchanged when it
// is false.
func ExecuteFromOutput(ctx context.Context, registry *Registry, mapper *VariantMapper, interceptors *interceptor.Registry, functionName string, contextID ids.ContextID, output any) (value any, handled bool, err error) {
	detection, ok := mapper.Detect(output)
	if !ok {
		return output, false, nil
	}

	toolName, ok := mapper.ToolName(detection.Variant)
	if !ok {
		return nil, true, rterr.FunctionNotFound("no tool mapped for variant: " + detection.Variant)
	}

	call := interceptor.ToolCallContext{
		ToolName: toolName, FunctionName: functionName, Args: detection.Args, ContextID: contextID,
	}
	if err := interceptors.InterceptToolCall(ctx, call); err != nil {
		interceptors.NotifyToolCallComplete(ctx, call, interceptor.CallResult{Blocked: true, Err: err}, 0)
		return nil, true, err
	}

	start := time.Now()
	result, execErr := registry.Execute(ctx, toolName, detection.Args)
	interceptors.NotifyToolCallComplete(ctx, call, interceptor.CallResult{Err: execErr, Value: result}, time.Since(start).Milliseconds())
	if execErr != nil {
		return nil, true, execErr
	}
	return result, true, nil
}
