// Package resultpipe inspects normalized script output chunks for known
// task/status/artifact/message shapes, persists them into the task store,
// emits the corresponding update event, and de-duplicates repeated
// identical chunks per task-update stream.
package resultpipe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/agentrt/baml-agent-runtime/events"
	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/model"
	"github.com/agentrt/baml-agent-runtime/streamnorm"
	"github.com/agentrt/baml-agent-runtime/taskstore"
)

const dedupCapacity = 1024

// Pipeline persists normalized chunks and fans their effects out through
// the event emitter.
type Pipeline struct {
	store   taskstore.Repository
	emitter *events.Emitter
	dedup   *lru.Cache[string, struct{}]
}

// New returns a Pipeline backed by store and emitter.
func New(store taskstore.Repository, emitter *events.Emitter) *Pipeline {
	cache, _ := lru.New[string, struct{}](dedupCapacity)
	return &Pipeline{store: store, emitter: emitter, dedup: cache}
}

// Process ingests one chunk (already run through the stream normalizer)
// for the given task/context, persisting and emitting as appropriate.
// Deduplication keys on a stable hash of the chunk's task-update content
// (statusUpdate/artifactUpdate/task) and does not apply to pure message
// responses.
func (p *Pipeline) Process(chunk streamnorm.Chunk) error {
	isTaskUpdate := chunk.Task != nil || chunk.StatusUpdate != nil || chunk.ArtifactUpdate != nil
	if isTaskUpdate {
		key, err := stableHash(chunk)
		if err == nil {
			if _, seen := p.dedup.Get(key); seen {
				return nil
			}
			p.dedup.Add(key, struct{}{})
		}
	}

	if chunk.Task != nil {
		if err := p.processTask(chunk.Task); err != nil {
			return err
		}
	}
	if chunk.StatusUpdate != nil {
		if err := p.processStatusUpdate(chunk.StatusUpdate); err != nil {
			return err
		}
	}
	if chunk.ArtifactUpdate != nil {
		if err := p.processArtifactUpdate(chunk.ArtifactUpdate); err != nil {
			return err
		}
	}
	if chunk.Message != nil {
		p.processMessage(chunk.Message)
	}
	return nil
}

func (p *Pipeline) processTask(raw any) error {
	var t model.Task
	if err := decode(raw, &t); err != nil {
		return err
	}
	p.store.Upsert(&t)
	return nil
}

func (p *Pipeline) processStatusUpdate(raw any) error {
	var ev model.TaskStatusUpdateEvent
	if err := decode(raw, &ev); err != nil {
		return err
	}
	update := p.store.RecordStatusUpdate(ev.TaskID, ev.ContextID, ev.Status, ev.Final)
	p.emitter.Emit(events.Update{TaskID: ev.TaskID, Event: update})
	return nil
}

func (p *Pipeline) processArtifactUpdate(raw any) error {
	var ev model.TaskArtifactUpdateEvent
	if err := decode(raw, &ev); err != nil {
		return err
	}
	update := p.store.RecordArtifactUpdate(ev.TaskID, ev.ContextID, ev.Artifact, ev.Append, ev.LastChunk)
	p.emitter.Emit(events.Update{TaskID: ev.TaskID, Event: update})
	return nil
}

func (p *Pipeline) processMessage(raw any) {
	var m model.Message
	if err := decode(raw, &m); err != nil {
		return
	}
	if m.TaskID != ids.TaskID("") {
		p.store.InsertMessage(m)
	}
}

func decode(raw any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// stableHash produces a deterministic hash of a chunk's task-update
// content by marshaling a key-sorted JSON representation.
func stableHash(chunk streamnorm.Chunk) (string, error) {
	payload := map[string]any{}
	if chunk.Task != nil {
		payload["task"] = chunk.Task
	}
	if chunk.StatusUpdate != nil {
		payload["statusUpdate"] = chunk.StatusUpdate
	}
	if chunk.ArtifactUpdate != nil {
		payload["artifactUpdate"] = chunk.ArtifactUpdate
	}
	b, err := marshalSorted(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func marshalSorted(v any) ([]byte, error) {
	normalized := sortKeys(v)
	return json.Marshal(normalized)
}

func sortKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(map[string]any, len(val))
		for _, k := range keys {
			ordered[k] = sortKeys(val[k])
		}
		return ordered
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = sortKeys(e)
		}
		return out
	default:
		return v
	}
}
