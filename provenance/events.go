// Package provenance defines the runtime's append-only typed event log and
// the decorator that wraps a task store so every state change emits the
// matching event. Grounded on the original runtime's
// crates/baml-rt-provenance/src/events.rs.
package provenance

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/agentrt/baml-agent-runtime/ids"
)

// EventType classifies a ProvEvent.
type EventType string

const (
	LLMCallStarted         EventType = "LlmCallStarted"
	LLMCallCompleted       EventType = "LlmCallCompleted"
	ToolCallStarted        EventType = "ToolCallStarted"
	ToolCallCompleted      EventType = "ToolCallCompleted"
	TaskCreated            EventType = "TaskCreated"
	TaskStatusChanged      EventType = "TaskStatusChanged"
	TaskArtifactGenerated  EventType = "TaskArtifactGenerated"
	MessageReceived        EventType = "MessageReceived"
	MessageSent            EventType = "MessageSent"
)

var counter atomic.Uint64

func init() {
	counter.Store(1)
}

// NextEventID issues the next id from the process-wide monotonic counter,
// formatted "prov-<n>" as in the original runtime.
func NextEventID() ids.EventID {
	n := counter.Add(1) - 1
	return ids.EventID("prov-" + strconv.FormatUint(n, 10))
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// LLMCallData is the ProvEventData payload for LlmCall{Started,Completed}.
type LLMCallData struct {
	Client       string
	Model        string
	FunctionName string
	Prompt       string
	Metadata     map[string]any
	DurationMs   *int64
	Success      *bool
}

// ToolCallData is the ProvEventData payload for ToolCall{Started,Completed}.
type ToolCallData struct {
	ToolName     string
	FunctionName string
	Args         map[string]any
	Metadata     map[string]any
	DurationMs   *int64
	Success      *bool
}

// TaskCreatedData is the ProvEventData payload for TaskCreated.
type TaskCreatedData struct {
	TaskID    ids.TaskID
	AgentType string
}

// TaskStatusChangedData is the ProvEventData payload for TaskStatusChanged.
type TaskStatusChangedData struct {
	TaskID    ids.TaskID
	OldStatus string
	NewStatus string
}

// TaskArtifactGeneratedData is the ProvEventData payload for
// TaskArtifactGenerated.
type TaskArtifactGeneratedData struct {
	TaskID       ids.TaskID
	ArtifactID   ids.ArtifactID
	ArtifactType string
}

// MessageData is the ProvEventData payload for Message{Received,Sent}.
type MessageData struct {
	ID       ids.MessageID
	Role     string
	Content  []string
	Metadata map[string]any
}

// Event is one entry in the provenance log.
type Event struct {
	ID          ids.EventID
	Type        EventType
	ContextID   ids.ContextID
	TaskID      ids.TaskID
	TimestampMs int64
	Data        any
}

func newEvent(t EventType, contextID ids.ContextID, taskID ids.TaskID, data any) Event {
	return Event{
		ID:          NextEventID(),
		Type:        t,
		ContextID:   contextID,
		TaskID:      taskID,
		TimestampMs: nowMillis(),
		Data:        data,
	}
}

func LLMCallStartedEvent(contextID ids.ContextID, d LLMCallData) Event {
	return newEvent(LLMCallStarted, contextID, "", d)
}

func LLMCallCompletedEvent(contextID ids.ContextID, d LLMCallData) Event {
	return newEvent(LLMCallCompleted, contextID, "", d)
}

func ToolCallStartedEvent(contextID ids.ContextID, d ToolCallData) Event {
	return newEvent(ToolCallStarted, contextID, "", d)
}

func ToolCallCompletedEvent(contextID ids.ContextID, d ToolCallData) Event {
	return newEvent(ToolCallCompleted, contextID, "", d)
}

func TaskCreatedEvent(contextID ids.ContextID, taskID ids.TaskID, agentType string) Event {
	return newEvent(TaskCreated, contextID, taskID, TaskCreatedData{TaskID: taskID, AgentType: agentType})
}

func TaskStatusChangedEvent(contextID ids.ContextID, taskID ids.TaskID, oldStatus, newStatus string) Event {
	return newEvent(TaskStatusChanged, contextID, taskID, TaskStatusChangedData{taskID, oldStatus, newStatus})
}

func TaskArtifactGeneratedEvent(contextID ids.ContextID, taskID ids.TaskID, artifactID ids.ArtifactID, artifactType string) Event {
	return newEvent(TaskArtifactGenerated, contextID, taskID, TaskArtifactGeneratedData{taskID, artifactID, artifactType})
}

func MessageReceivedEvent(contextID ids.ContextID, taskID ids.TaskID, d MessageData) Event {
	return newEvent(MessageReceived, contextID, taskID, d)
}

func MessageSentEvent(contextID ids.ContextID, taskID ids.TaskID, d MessageData) Event {
	return newEvent(MessageSent, contextID, taskID, d)
}
