// Package model is the runtime's wire data model for the A2A surface:
// messages, parts, artifacts, tasks, and task status, grounded directly on
// the original runtime's a2a_types rather than any third-party A2A SDK,
// because the SDK's real wire format (lowercase/kebab-case enums, renamed
// fields) does not match this contract's literal JSON shapes.
package model

import (
	"encoding/json"

	"github.com/agentrt/baml-agent-runtime/ids"
)

// Role is a message's sender role. Known values are ROLE_USER and
// ROLE_AGENT, but the field accepts any string or integer code and passes
// unrecognized values through opaquely.
type Role = string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAgent Role = "ROLE_AGENT"
)

// Known TaskStatus.State values. Any other string passes through opaquely.
const (
	TaskStateWorking      = "TASK_STATE_WORKING"
	TaskStateCanceled     = "TASK_STATE_CANCELED"
	TaskStateCompleted    = "TASK_STATE_COMPLETED"
	TaskStateFailed       = "TASK_STATE_FAILED"
	TaskStateSubmitted    = "TASK_STATE_SUBMITTED"
	TaskStateInputReqd    = "TASK_STATE_INPUT_REQUIRED"
)

// Part carries one piece of message/artifact content. Exactly the fields a
// caller sets are marshaled; unrecognized fields round-trip via Extra.
type Part struct {
	Text      string         `json:"text,omitempty"`
	Data      any            `json:"data,omitempty"`
	Bytes     []byte         `json:"bytes,omitempty"`
	URL       string         `json:"url,omitempty"`
	Filename  string         `json:"filename,omitempty"`
	MediaType string         `json:"mediaType,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Extra     map[string]any `json:"-"`
}

func (p Part) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(struct {
		Text      string         `json:"text,omitempty"`
		Data      any            `json:"data,omitempty"`
		Bytes     []byte         `json:"bytes,omitempty"`
		URL       string         `json:"url,omitempty"`
		Filename  string         `json:"filename,omitempty"`
		MediaType string         `json:"mediaType,omitempty"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{p.Text, p.Data, p.Bytes, p.URL, p.Filename, p.MediaType, p.Metadata}, p.Extra)
}

func (p *Part) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known := map[string]bool{"text": true, "data": true, "bytes": true, "url": true,
		"filename": true, "mediaType": true, "metadata": true}
	type alias Part
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Part(a)
	p.Extra = extraFields(raw, known)
	return nil
}

// Message is a single turn in a conversation.
type Message struct {
	MessageID        ids.MessageID  `json:"messageId,omitempty"`
	Role             Role           `json:"role,omitempty"`
	Parts            []Part         `json:"parts,omitempty"`
	ContextID        ids.ContextID  `json:"contextId,omitempty"`
	TaskID           ids.TaskID     `json:"taskId,omitempty"`
	ReferenceTaskIDs []ids.TaskID   `json:"referenceTaskIds,omitempty"`
	Extensions       []string       `json:"extensions,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// Text concatenates every text part with "\n", matching the original
// runtime's augment_message_params behavior.
func (m Message) Text() string {
	out := ""
	for i, p := range m.Parts {
		if p.Text == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		_ = i
		out += p.Text
	}
	return out
}

// Artifact is produced by the script host or a tool and attached to a task.
type Artifact struct {
	ArtifactID  ids.ArtifactID `json:"artifactId,omitempty"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       []Part         `json:"parts,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Extensions  []string       `json:"extensions,omitempty"`
}

// TaskStatus reflects a task's current lifecycle state.
type TaskStatus struct {
	State     string    `json:"state,omitempty"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Task is the runtime's central unit of work.
type Task struct {
	ID        ids.TaskID     `json:"id,omitempty"`
	ContextID ids.ContextID  `json:"contextId,omitempty"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	History   []Message      `json:"history,omitempty"`
	Status    *TaskStatus    `json:"status,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Clone returns a deep-enough copy for safe return from the task store:
// slices and the status pointer are copied, nested Extra maps are shared
// (treated as immutable once set).
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Artifacts != nil {
		c.Artifacts = append([]Artifact(nil), t.Artifacts...)
	}
	if t.History != nil {
		c.History = append([]Message(nil), t.History...)
	}
	if t.Status != nil {
		s := *t.Status
		c.Status = &s
	}
	if t.Metadata != nil {
		m := make(map[string]any, len(t.Metadata))
		for k, v := range t.Metadata {
			m[k] = v
		}
		c.Metadata = m
	}
	return &c
}

// TruncateHistory keeps only the last n messages; n == 0 clears History.
func (t *Task) TruncateHistory(n int) {
	if n <= 0 {
		t.History = nil
		return
	}
	if len(t.History) > n {
		t.History = t.History[len(t.History)-n:]
	}
}

// TaskStatusUpdateEvent and TaskArtifactUpdateEvent form the tagged union
// TaskUpdateEvent described in the data model.
type TaskStatusUpdateEvent struct {
	TaskID    ids.TaskID    `json:"taskId"`
	ContextID ids.ContextID `json:"contextId"`
	Status    TaskStatus    `json:"status"`
	Final     bool          `json:"final,omitempty"`
}

type TaskArtifactUpdateEvent struct {
	TaskID    ids.TaskID    `json:"taskId"`
	ContextID ids.ContextID `json:"contextId"`
	Artifact  Artifact      `json:"artifact"`
	Append    bool          `json:"append,omitempty"`
	LastChunk bool          `json:"lastChunk,omitempty"`
}

// TaskUpdateEvent is the tagged union {Status | Artifact}. Exactly one of
// Status or Artifact is non-nil.
type TaskUpdateEvent struct {
	Status   *TaskStatusUpdateEvent
	Artifact *TaskArtifactUpdateEvent
}

func extraFields(raw map[string]any, known map[string]bool) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	out := map[string]any{}
	for k, v := range raw {
		if !known[k] {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func marshalWithExtra(known any, extra map[string]any) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return b, nil
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range extra {
		m[k] = v
	}
	return json.Marshal(m)
}
