package taskstore

import (
	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/model"
)

// Repository is the task-store contract that the provenance decorator
// wraps and that the result pipeline and request router depend on, so
// either the plain Store or a provenance-wrapped Store can be injected.
type Repository interface {
	Upsert(task *model.Task) *model.Task
	Get(id ids.TaskID, historyLength int) (*model.Task, bool)
	List(req ListRequest) ListResponse
	Cancel(id ids.TaskID) (*model.Task, bool)
	InsertMessage(message model.Message) bool
	RecordStatusUpdate(taskID ids.TaskID, contextID ids.ContextID, status model.TaskStatus, final bool) model.TaskUpdateEvent
	RecordArtifactUpdate(taskID ids.TaskID, contextID ids.ContextID, artifact model.Artifact, appendChunk, lastChunk bool) model.TaskUpdateEvent
	DrainUpdates(taskID ids.TaskID) []model.TaskUpdateEvent
}

var _ Repository = (*Store)(nil)
