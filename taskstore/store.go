// Package taskstore is the in-memory TaskId->Task store: insertion-ordered
// listing with pagination and filters, a per-task FIFO of update events, and
// history truncation. Grounded on the original runtime's a2a_store.rs
// TaskStore/TaskRepository design; the teacher's SQL-backed v2/task/store.go
// was not reused because persistence across restarts is an explicit
// Non-goal here — only its map+order+mutex shape informed this rewrite.
package taskstore

import (
	"strconv"
	"sync"

	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/model"
)

const defaultPageSize = 50

// Store is a single-mutex, in-memory task store.
type Store struct {
	mu      sync.Mutex
	tasks   map[ids.TaskID]*model.Task
	order   []ids.TaskID
	updates map[ids.TaskID][]model.TaskUpdateEvent
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		tasks:   make(map[ids.TaskID]*model.Task),
		order:   nil,
		updates: make(map[ids.TaskID][]model.TaskUpdateEvent),
	}
}

// Upsert inserts or replaces by task.ID, appending to insertion order only
// if the id is new. Returns nil if task.ID is empty.
func (s *Store) Upsert(task *model.Task) *model.Task {
	if task == nil || task.ID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; !exists {
		s.order = append(s.order, task.ID)
	}
	stored := task.Clone()
	s.tasks[task.ID] = stored
	return stored.Clone()
}

// Get returns a copy of the task, truncating history to the last
// historyLength messages when historyLength >= 0.
func (s *Store) Get(id ids.TaskID, historyLength int) (*model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	out := t.Clone()
	if historyLength >= 0 {
		out.TruncateHistory(historyLength)
	}
	return out, true
}

// ListRequest filters and paginates List.
type ListRequest struct {
	ContextID       ids.ContextID
	Status          string
	IncludeArtifacts bool
	HistoryLength   int // -1 means "no truncation"
	PageToken       string
	PageSize        int
}

// ListResponse is the paginated result of List.
type ListResponse struct {
	Tasks         []*model.Task
	NextPageToken string
	TotalSize     int
	PageSize      int
}

// List filters by ContextID/Status, optionally clears artifacts, truncates
// history, and paginates with a cursor that is the stringified starting
// offset. Iteration order is insertion order.
func (s *Store) List(req ListRequest) ListResponse {
	s.mu.Lock()
	filtered := make([]*model.Task, 0, len(s.order))
	for _, id := range s.order {
		t := s.tasks[id]
		if req.ContextID != "" && t.ContextID != req.ContextID {
			continue
		}
		if req.Status != "" {
			if t.Status == nil || t.Status.State != req.Status {
				continue
			}
		}
		filtered = append(filtered, t)
	}
	s.mu.Unlock()

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	start := parseOffset(req.PageToken)
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	page := make([]*model.Task, 0, end-start)
	for _, t := range filtered[start:end] {
		out := t.Clone()
		if !req.IncludeArtifacts {
			out.Artifacts = nil
		}
		if req.HistoryLength >= 0 {
			out.TruncateHistory(req.HistoryLength)
		}
		page = append(page, out)
	}

	resp := ListResponse{
		Tasks:     page,
		TotalSize: len(filtered),
		PageSize:  pageSize,
	}
	if end < len(filtered) {
		resp.NextPageToken = strconv.Itoa(end)
	}
	return resp
}

// Cancel sets the task's status state to TASK_STATE_CANCELED and returns
// the updated copy, or false if the task is unknown.
func (s *Store) Cancel(id ids.TaskID) (*model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	if t.Status == nil {
		t.Status = &model.TaskStatus{}
	}
	t.Status.State = model.TaskStateCanceled
	return t.Clone(), true
}

// InsertMessage appends message to its task's history, only if
// message.TaskID references a known task.
func (s *Store) InsertMessage(message model.Message) bool {
	if message.TaskID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[message.TaskID]
	if !ok {
		return false
	}
	t.History = append(t.History, message)
	return true
}

// RecordStatusUpdate enqueues a status TaskUpdateEvent on the task's FIFO
// and returns it.
func (s *Store) RecordStatusUpdate(taskID ids.TaskID, contextID ids.ContextID, status model.TaskStatus, final bool) model.TaskUpdateEvent {
	ev := model.TaskUpdateEvent{Status: &model.TaskStatusUpdateEvent{
		TaskID: taskID, ContextID: contextID, Status: status, Final: final,
	}}
	s.mu.Lock()
	s.updates[taskID] = append(s.updates[taskID], ev)
	s.mu.Unlock()
	return ev
}

// RecordArtifactUpdate enqueues an artifact TaskUpdateEvent on the task's
// FIFO and returns it.
func (s *Store) RecordArtifactUpdate(taskID ids.TaskID, contextID ids.ContextID, artifact model.Artifact, appendChunk, lastChunk bool) model.TaskUpdateEvent {
	ev := model.TaskUpdateEvent{Artifact: &model.TaskArtifactUpdateEvent{
		TaskID: taskID, ContextID: contextID, Artifact: artifact, Append: appendChunk, LastChunk: lastChunk,
	}}
	s.mu.Lock()
	s.updates[taskID] = append(s.updates[taskID], ev)
	s.mu.Unlock()
	return ev
}

// DrainUpdates removes and returns the task's update FIFO.
func (s *Store) DrainUpdates(taskID ids.TaskID) []model.TaskUpdateEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.updates[taskID]
	delete(s.updates, taskID)
	return out
}

func parseOffset(token string) int {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
