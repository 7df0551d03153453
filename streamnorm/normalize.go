// Package streamnorm rewrites heterogeneous script-output chunk shapes
// into the single stream-chunk schema the rest of the pipeline consumes.
package streamnorm

import "encoding/json"

// Chunk is the canonical normalized shape: {task?, message?, statusUpdate?,
// artifactUpdate?}, with unrecognized top-level keys preserved in Extra.
type Chunk struct {
	Task           any
	Message        any
	StatusUpdate   any
	ArtifactUpdate any
	Extra          map[string]any
}

var knownKeys = map[string]bool{
	"task": true, "message": true, "statusUpdate": true, "artifactUpdate": true,
}

// Normalize classifies raw into a Chunk:
//   - an object with any known top-level key keeps those fields and moves
//     the rest into Extra.
//   - a bare message-shaped object (no known keys at all) is wrapped as
//     {message: raw}.
//   - a non-object value becomes {message: {parts: [{text: stringify(raw)}]}}.
func Normalize(raw any) Chunk {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Chunk{Message: map[string]any{
			"parts": []any{map[string]any{"text": stringify(raw)}},
		}}
	}

	hasKnown := false
	for k := range obj {
		if knownKeys[k] {
			hasKnown = true
			break
		}
	}
	if !hasKnown {
		return Chunk{Message: obj}
	}

	c := Chunk{}
	extra := map[string]any{}
	for k, v := range obj {
		switch k {
		case "task":
			c.Task = v
		case "message":
			c.Message = v
		case "statusUpdate":
			c.StatusUpdate = v
		case "artifactUpdate":
			c.ArtifactUpdate = v
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		c.Extra = extra
	}
	return c
}

// ToMap renders a Chunk back to the wire shape.
func (c Chunk) ToMap() map[string]any {
	out := map[string]any{}
	if c.Task != nil {
		out["task"] = c.Task
	}
	if c.Message != nil {
		out["message"] = c.Message
	}
	if c.StatusUpdate != nil {
		out["statusUpdate"] = c.StatusUpdate
	}
	if c.ArtifactUpdate != nil {
		out["artifactUpdate"] = c.ArtifactUpdate
	}
	for k, v := range c.Extra {
		out[k] = v
	}
	return out
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
