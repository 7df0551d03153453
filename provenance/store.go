package provenance

import (
	"context"
	"log/slog"

	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/model"
	"github.com/agentrt/baml-agent-runtime/taskstore"
)

// Store decorates a taskstore.Repository: on each write path it delegates
// to the inner store first and then writes the corresponding provenance
// event, only when the inner call took effect. Upsert writes TaskCreated
// for a new task only; replacing an existing task writes no event. Writes
// to the sink are fire-and-forget; failures are logged, never surfaced.
type Store struct {
	inner  taskstore.Repository
	writer Writer
	logger *slog.Logger
}

var _ taskstore.Repository = (*Store)(nil)

// Wrap returns a provenance-recording decorator around inner.
func Wrap(inner taskstore.Repository, writer Writer, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{inner: inner, writer: writer, logger: logger}
}

func (s *Store) Upsert(task *model.Task) *model.Task {
	_, existedBefore := s.inner.Get(task.ID, -1)
	out := s.inner.Upsert(task)
	if out == nil {
		return nil
	}
	ctx := context.Background()
	if !existedBefore {
		AddEventWithLogging(ctx, s.writer, s.logger, TaskCreatedEvent(out.ContextID, out.ID, ""))
	}
	return out
}

func (s *Store) Get(id ids.TaskID, historyLength int) (*model.Task, bool) {
	return s.inner.Get(id, historyLength)
}

func (s *Store) List(req taskstore.ListRequest) taskstore.ListResponse {
	return s.inner.List(req)
}

func (s *Store) Cancel(id ids.TaskID) (*model.Task, bool) {
	before, _ := s.inner.Get(id, -1)
	out, ok := s.inner.Cancel(id)
	if !ok {
		return nil, false
	}
	oldState := ""
	if before != nil && before.Status != nil {
		oldState = before.Status.State
	}
	AddEventWithLogging(context.Background(), s.writer, s.logger,
		TaskStatusChangedEvent(out.ContextID, out.ID, oldState, model.TaskStateCanceled))
	return out, true
}

func (s *Store) InsertMessage(message model.Message) bool {
	inserted := s.inner.InsertMessage(message)
	if !inserted {
		return false
	}
	data := MessageData{ID: message.MessageID, Role: message.Role, Content: textParts(message), Metadata: message.Metadata}
	if message.Role == model.RoleAgent {
		AddEventWithLogging(context.Background(), s.writer, s.logger, MessageSentEvent(message.ContextID, message.TaskID, data))
	} else {
		AddEventWithLogging(context.Background(), s.writer, s.logger, MessageReceivedEvent(message.ContextID, message.TaskID, data))
	}
	return true
}

func textParts(message model.Message) []string {
	var out []string
	for _, p := range message.Parts {
		if p.Text != "" {
			out = append(out, p.Text)
		}
	}
	return out
}

func (s *Store) RecordStatusUpdate(taskID ids.TaskID, contextID ids.ContextID, status model.TaskStatus, final bool) model.TaskUpdateEvent {
	before, _ := s.inner.Get(taskID, -1)
	ev := s.inner.RecordStatusUpdate(taskID, contextID, status, final)
	oldState := ""
	if before != nil && before.Status != nil {
		oldState = before.Status.State
	}
	AddEventWithLogging(context.Background(), s.writer, s.logger,
		TaskStatusChangedEvent(contextID, taskID, oldState, status.State))
	return ev
}

func (s *Store) RecordArtifactUpdate(taskID ids.TaskID, contextID ids.ContextID, artifact model.Artifact, appendChunk, lastChunk bool) model.TaskUpdateEvent {
	ev := s.inner.RecordArtifactUpdate(taskID, contextID, artifact, appendChunk, lastChunk)
	AddEventWithLogging(context.Background(), s.writer, s.logger,
		TaskArtifactGeneratedEvent(contextID, taskID, artifact.ArtifactID, ""))
	return ev
}

func (s *Store) DrainUpdates(taskID ids.TaskID) []model.TaskUpdateEvent {
	return s.inner.DrainUpdates(taskID)
}
