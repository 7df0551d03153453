// Package agentrt assembles the agent container: every component wired
// together behind a builder pattern, plus the handle(envelope) surface the
// multi-agent runner and CLI front-ends call into. Grounded on the
// original runtime's lib.rs / builder/mod.rs wiring and the teacher's
// cmd/hector/main.go construction style.
package agentrt

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/agentrt/baml-agent-runtime/a2acodec"
	"github.com/agentrt/baml-agent-runtime/events"
	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/interceptor"
	"github.com/agentrt/baml-agent-runtime/promptengine"
	"github.com/agentrt/baml-agent-runtime/provenance"
	"github.com/agentrt/baml-agent-runtime/resultpipe"
	"github.com/agentrt/baml-agent-runtime/router"
	"github.com/agentrt/baml-agent-runtime/rterr"
	"github.com/agentrt/baml-agent-runtime/scripthost"
	"github.com/agentrt/baml-agent-runtime/taskstore"
	"github.com/agentrt/baml-agent-runtime/toolregistry"
)

// Container owns every request-handling component for one loaded agent.
type Container struct {
	tasks        taskstore.Repository
	provenance   provenance.Writer
	emitter      *events.Emitter
	interceptors *interceptor.Registry
	tools        *toolregistry.Registry
	mapper       *toolregistry.VariantMapper
	engine       *promptengine.Adapter
	bridge       *scripthost.Bridge
	pipeline     *resultpipe.Pipeline
	router       *router.Router
	logger       *slog.Logger
}

// Handle accepts one raw JSON-RPC line and returns the formatted
// response(s): one value for a point response, N for a stream.
func (c *Container) Handle(ctx context.Context, raw []byte) []a2acodec.Response {
	req, err := a2acodec.Parse(raw)
	if err != nil {
		code, msg := a2acodec.CodeForError(err)
		return []a2acodec.Response{a2acodec.ErrorResponse(nil, code, msg, nil)}
	}
	if !a2acodec.IsA2AMethod(req.Method) {
		return []a2acodec.Response{a2acodec.ErrorResponse(req.ID, a2acodec.CodeMethodNotFound, "Method not found", nil)}
	}

	if req.ContextID != "" {
		ctx = ids.WithContextID(ctx, req.ContextID)
	}
	ctx = ids.WithCorrelationID(ctx, ids.NewCorrelationID())

	outcome, err := c.router.Route(ctx, req)
	if err != nil {
		code, msg := a2acodec.CodeForError(err)
		return []a2acodec.Response{a2acodec.ErrorResponse(req.ID, code, msg, nil)}
	}

	if outcome.IsStream {
		out := make([]a2acodec.Response, len(outcome.Stream))
		for i, chunk := range outcome.Stream {
			out[i] = a2acodec.StreamChunkResponse(req.ID, i, i == len(outcome.Stream)-1, chunk)
		}
		return out
	}
	return []a2acodec.Response{a2acodec.SuccessResponse(req.ID, outcome.Response)}
}

// HandleJSON is a convenience wrapper that also marshals each response.
func (c *Container) HandleJSON(ctx context.Context, raw []byte) ([][]byte, error) {
	responses := c.Handle(ctx, raw)
	out := make([][]byte, 0, len(responses))
	for _, r := range responses {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, rterr.JSON("failed to marshal response", err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Tools exposes the host tool registry for callers wiring up tools after
// construction. Build has already evaluated the initial script and
// generated tool wrappers by then, so tools added here get no generated
// wrapper.
func (c *Container) Tools() *toolregistry.Registry { return c.tools }

// VariantMapper exposes the variant mapper for registering mappings.
func (c *Container) VariantMapper() *toolregistry.VariantMapper { return c.mapper }

// Interceptors exposes the interceptor registry for registering
// interceptors after construction.
func (c *Container) Interceptors() *interceptor.Registry { return c.interceptors }

// Bridge exposes the script host bridge, e.g. to evaluate the package's
// compiled entry point.
func (c *Container) Bridge() *scripthost.Bridge { return c.bridge }

// Tasks exposes the task store/repository.
func (c *Container) Tasks() taskstore.Repository { return c.tasks }

// Provenance exposes the provenance sink, e.g. for inspecting emitted
// events in tests or wiring a custom consumer.
func (c *Container) Provenance() provenance.Writer { return c.provenance }
