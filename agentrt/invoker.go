package agentrt

import (
	"context"

	"github.com/agentrt/baml-agent-runtime/rterr"
	"github.com/agentrt/baml-agent-runtime/scripthost"
)

// bridgeInvoker adapts a scripthost.Bridge to router.JSInvoker by calling
// the well-known handle_a2a_request(envelope) global.
type bridgeInvoker struct {
	bridge *scripthost.Bridge
}

func (b *bridgeInvoker) InvokeHandler(ctx context.Context, envelope map[string]any) (any, error) {
	if !b.bridge.HasFunction("handle_a2a_request") {
		return nil, rterr.FunctionNotFound("handle_a2a_request is not defined by the loaded script")
	}
	return b.bridge.InvokeFunction(ctx, "handle_a2a_request", envelope)
}
