// Package router dispatches parsed A2A requests to task handlers or to the
// script host's well-known handle_a2a_request hook. Grounded on the
// original runtime's crates/baml-rt-a2a/src/request_router.rs and
// handlers.rs.
package router

import (
	"context"
	"fmt"

	"github.com/agentrt/baml-agent-runtime/a2acodec"
	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/resultpipe"
	"github.com/agentrt/baml-agent-runtime/rterr"
	"github.com/agentrt/baml-agent-runtime/streamnorm"
	"github.com/agentrt/baml-agent-runtime/taskstore"
)

// JSInvoker calls into the script host. InvokeHandler is a single
// request/response call; an array result is expanded into stream chunks
// by the Router, not by the invoker.
type JSInvoker interface {
	InvokeHandler(ctx context.Context, envelope map[string]any) (any, error)
}

// Outcome is either a single response value or an ordered slice of stream
// chunks.
type Outcome struct {
	Response any
	Stream   []any
	IsStream bool
}

// Router dispatches parsed requests.
type Router struct {
	tasks    taskstore.Repository
	js       JSInvoker
	pipeline *resultpipe.Pipeline
}

// New constructs a Router.
func New(tasks taskstore.Repository, js JSInvoker, pipeline *resultpipe.Pipeline) *Router {
	return &Router{tasks: tasks, js: js, pipeline: pipeline}
}

// Route dispatches req, running every produced chunk through the result
// pipeline and stream normalizer before wrapping it.
func (r *Router) Route(ctx context.Context, req *a2acodec.Request) (Outcome, error) {
	switch req.Method {
	case a2acodec.MethodTasksGet:
		return r.handleGet(req.Params)
	case a2acodec.MethodTasksList:
		return r.handleList(req.Params)
	case a2acodec.MethodTasksCancel:
		return r.handleCancel(req.Params)
	case a2acodec.MethodTasksSubscribe:
		return r.handleSubscribe(req.Params, req.IsStream)
	case a2acodec.MethodMessageSend, a2acodec.MethodMessageSendStream:
		return r.handleMessage(ctx, req)
	default:
		return Outcome{}, rterr.FunctionNotFound("unknown method: " + req.Method)
	}
}

func (r *Router) handleGet(params map[string]any) (Outcome, error) {
	id, _ := params["id"].(string)
	historyLength := historyLengthOf(params)
	task, ok := r.tasks.Get(ids.TaskID(id), historyLength)
	if !ok {
		return Outcome{}, rterr.InvalidArgument("Task not found")
	}
	return Outcome{Response: map[string]any{"task": task}}, nil
}

func (r *Router) handleList(params map[string]any) (Outcome, error) {
	req := taskstore.ListRequest{HistoryLength: -1, PageSize: 50}
	if v, ok := params["contextId"].(string); ok {
		req.ContextID = ids.ContextID(v)
	}
	if v, ok := params["status"].(string); ok {
		req.Status = v
	}
	if v, ok := params["includeArtifacts"].(bool); ok {
		req.IncludeArtifacts = v
	}
	if h := historyLengthOf(params); h >= 0 {
		req.HistoryLength = h
	}
	if v, ok := params["pageToken"].(string); ok {
		req.PageToken = v
	}
	if v, ok := params["pageSize"].(float64); ok {
		req.PageSize = int(v)
	}

	resp := r.tasks.List(req)
	result := map[string]any{
		"tasks":     resp.Tasks,
		"totalSize": resp.TotalSize,
		"pageSize":  resp.PageSize,
	}
	if resp.NextPageToken != "" {
		result["nextPageToken"] = resp.NextPageToken
	}
	return Outcome{Response: result}, nil
}

func (r *Router) handleCancel(params map[string]any) (Outcome, error) {
	id, _ := params["id"].(string)
	task, ok := r.tasks.Cancel(ids.TaskID(id))
	if !ok {
		return Outcome{}, rterr.InvalidArgument("Task not found")
	}
	if task.Status != nil {
		r.tasks.RecordStatusUpdate(task.ID, task.ContextID, *task.Status, true)
	}
	return Outcome{Response: map[string]any{"task": task}}, nil
}

func (r *Router) handleSubscribe(params map[string]any, isStream bool) (Outcome, error) {
	id, _ := params["id"].(string)
	task, ok := r.tasks.Get(ids.TaskID(id), -1)
	if !ok {
		return Outcome{}, rterr.InvalidArgument("Task not found")
	}

	snapshot := map[string]any{"task": task}
	if task.Status != nil {
		snapshot["statusUpdate"] = task.Status
	}

	if !isStream {
		return Outcome{Response: snapshot}, nil
	}

	chunks := []any{snapshot}
	for _, update := range r.tasks.DrainUpdates(ids.TaskID(id)) {
		switch {
		case update.Status != nil:
			chunks = append(chunks, map[string]any{"statusUpdate": update.Status})
		case update.Artifact != nil:
			chunks = append(chunks, map[string]any{"artifactUpdate": update.Artifact})
		}
	}
	return Outcome{Stream: chunks, IsStream: true}, nil
}

// handleMessage calls the script's handle_a2a_request(envelope) hook. The
// return value may be a single response object, an array of chunk
// objects, or an object with an "error" field.
func (r *Router) handleMessage(ctx context.Context, req *a2acodec.Request) (Outcome, error) {
	envelope := map[string]any{
		"jsonrpc": "2.0",
		"method":  req.Method,
		"params":  req.Params,
	}

	result, err := r.js.InvokeHandler(ctx, envelope)
	if err != nil {
		return Outcome{}, rterr.ScriptHost(fmt.Sprintf("handle_a2a_request failed: %v", err))
	}

	if obj, ok := result.(map[string]any); ok {
		if msg, ok := obj["error"].(string); ok {
			return Outcome{}, rterr.ScriptHost(msg)
		}
	}

	if arr, ok := result.([]any); ok {
		chunks := make([]any, 0, len(arr))
		for _, item := range arr {
			chunk := streamnorm.Normalize(item)
			if r.pipeline != nil {
				if err := r.pipeline.Process(chunk); err != nil {
					return Outcome{}, err
				}
			}
			chunks = append(chunks, chunk.ToMap())
		}
		return Outcome{Stream: chunks, IsStream: true}, nil
	}

	chunk := streamnorm.Normalize(result)
	if r.pipeline != nil {
		if err := r.pipeline.Process(chunk); err != nil {
			return Outcome{}, err
		}
	}
	if req.IsStream {
		return Outcome{Stream: []any{chunk.ToMap()}, IsStream: true}, nil
	}
	return Outcome{Response: chunk.ToMap()}, nil
}

func historyLengthOf(params map[string]any) int {
	if v, ok := params["historyLength"].(float64); ok {
		return int(v)
	}
	return -1
}
