package toolregistry

import "sync"

// VariantMapper maintains variant_name -> tool_name and recognizes, in a
// structured prompt engine output, that the model has picked a tool.
type VariantMapper struct {
	mu     sync.RWMutex
	byName map[string]string
}

// NewVariantMapper returns an empty VariantMapper.
func NewVariantMapper() *VariantMapper {
	return &VariantMapper{byName: make(map[string]string)}
}

// RegisterMapping records that output variant matches tool toolName.
func (m *VariantMapper) RegisterMapping(variant, toolName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byName[variant] = toolName
}

// ToolName resolves a variant name to the tool it maps to.
func (m *VariantMapper) ToolName(variant string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.byName[variant]
	return name, ok
}

// isVariant reports whether name is a registered variant, without
// requiring the caller to hold the lock twice.
func (m *VariantMapper) isVariant(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byName[name]
	return ok
}

// Detection is the outcome of Detect: a recognized variant plus the tool
// arguments to pass it.
type Detection struct {
	Variant string
	Args    map[string]any
}

// Detect applies the recognition rules in order:
//  1. an object with exactly one key, where that key is a registered
//     variant -> the value is the tool arguments.
//  2. else an object with a "__type" field whose value is a registered
//     variant -> the remaining fields (minus "__type") are the arguments.
//  3. otherwise, no tool call is inferred.
func (m *VariantMapper) Detect(output any) (Detection, bool) {
	obj, ok := output.(map[string]any)
	if !ok {
		return Detection{}, false
	}

	if len(obj) == 1 {
		for k, v := range obj {
			if m.isVariant(k) {
				args, _ := v.(map[string]any)
				if args == nil {
					args = map[string]any{"value": v}
				}
				return Detection{Variant: k, Args: args}, true
			}
		}
	}

	if typ, ok := obj["__type"].(string); ok && m.isVariant(typ) {
		args := make(map[string]any, len(obj))
		for k, v := range obj {
			if k == "__type" {
				continue
			}
			args[k] = v
		}
		return Detection{Variant: typ, Args: args}, true
	}

	return Detection{}, false
}

// ListMappings returns every registered variant->tool mapping.
func (m *VariantMapper) ListMappings() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.byName))
	for k, v := range m.byName {
		out[k] = v
	}
	return out
}
