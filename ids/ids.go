// Package ids defines the runtime's typed identifiers and the task-local
// current-context/current-correlation propagation used across the request
// pipeline.
package ids

import "github.com/google/uuid"

// TaskID identifies a task in the task store.
type TaskID string

// ContextID groups tasks and messages that belong to the same conversation.
type ContextID string

// MessageID identifies a single message.
type MessageID string

// ArtifactID identifies an artifact produced by a script or tool.
type ArtifactID string

// EventID identifies a provenance event, issued from a monotonic counter.
type EventID string

// CorrelationID is a per-request tracing identifier attached to spans.
type CorrelationID string

// NewContextID generates a fresh, random ContextID.
func NewContextID() ContextID {
	return ContextID(uuid.NewString())
}

// NewMessageID generates a fresh, random MessageID.
func NewMessageID() MessageID {
	return MessageID(uuid.NewString())
}

// NewCorrelationID generates a fresh, random CorrelationID.
func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.NewString())
}
