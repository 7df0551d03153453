// Package toolregistry implements the host-side tool catalog and the
// variant mapper that recognizes explicit tool-choice shapes in prompt
// engine output. Grounded on the original runtime's
// crates/baml-rt-tools/src/tool_mapper.rs, minus its example-specific
// field-name-inference fallback (not part of this contract's detection
// rules).
package toolregistry

import (
	"context"
	"sync"

	"github.com/agentrt/baml-agent-runtime/rterr"
)

// Metadata describes one registered tool for schema/discovery purposes.
type Metadata struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Executor invokes a tool with the given arguments.
type Executor func(ctx context.Context, args map[string]any) (any, error)

type entry struct {
	meta Metadata
	exec Executor
}

// Registry maps tool_name -> (metadata, executor).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool, rejecting duplicate names.
func (r *Registry) Register(meta Metadata, exec Executor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[meta.Name]; exists {
		return rterr.InvalidArgument("tool already registered: " + meta.Name)
	}
	r.entries[meta.Name] = entry{meta: meta, exec: exec}
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Metadata returns the metadata for name, if registered.
func (r *Registry) Metadata(name string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.meta, ok
}

// List returns the metadata of every registered tool.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Metadata, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.meta)
	}
	return out
}

// Execute looks up name and invokes it; a missing name yields
// rterr.FunctionNotFound.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, rterr.FunctionNotFound("tool not found: " + name)
	}
	return e.exec(ctx, args)
}
