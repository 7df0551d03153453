package scripthost

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/agentrt/baml-agent-runtime/rterr"
)

// RegisterPromptWrappers generates, for every function discovered in the
// loaded schema, a global async wrapper named after the function that
// packages its call arguments into an object and calls __invoke_prompt,
// plus a mirror "<name>Stream" wrapper for streaming.
func (b *Bridge) RegisterPromptWrappers() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, name := range b.engine.ListFunctions() {
		src := fmt.Sprintf(`
var %[1]s = async function(args) {
  return await __invoke_prompt(%[2]q, JSON.stringify(args || {}));
};
var %[1]sStream = async function(args) {
  return await __invoke_prompt_stream(%[2]q, JSON.stringify(args || {}));
};
`, jsIdentifier(name), name)
		if _, err := b.vm.RunString(src); err != nil {
			return rterr.ScriptHost(fmt.Sprintf("failed to register prompt wrapper %s: %v", name, err))
		}
	}
	return nil
}

// RegisterToolWrappers generates a global async wrapper for every host
// tool name, in the same pattern as prompt wrappers.
func (b *Bridge) RegisterToolWrappers(names []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, name := range names {
		src := fmt.Sprintf(`
var %[1]s = async function(args) {
  return await __invoke_tool(%[2]q, JSON.stringify(args || {}));
};
`, jsIdentifier(name), name)
		if _, err := b.vm.RunString(src); err != nil {
			return rterr.ScriptHost(fmt.Sprintf("failed to register tool wrapper %s: %v", name, err))
		}
	}
	return nil
}

// RegisterJSTool evaluates functionCode and binds it to the global name.
// It rejects duplicate script-tool names and names already registered as
// a host tool.
func (b *Bridge) RegisterJSTool(name, functionCode string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.jsTools[name] {
		return rterr.InvalidArgument("script tool already registered: " + name)
	}
	if b.tools.Has(name) {
		return rterr.InvalidArgument("name collides with a host tool: " + name)
	}

	src := fmt.Sprintf("var %s = (%s);", jsIdentifier(name), functionCode)
	if _, err := b.vm.RunString(src); err != nil {
		return rterr.ScriptHost(fmt.Sprintf("failed to register script tool %s: %v", name, err))
	}
	b.jsTools[name] = true
	return nil
}

// Eval evaluates arbitrary code in the sandbox, e.g. an agent's compiled
// entry point.
func (b *Bridge) Eval(code string) (goja.Value, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, err := b.vm.RunString(code)
	if err != nil {
		return nil, rterr.ScriptHost(fmt.Sprintf("script evaluation failed: %v", err))
	}
	return v, nil
}

// InvokeFunction calls a named global function with args and returns its
// exported Go value. It serializes engine access behind the bridge's
// mutex, since the embedded engine enforces single-threaded access, and
// binds ctx as the active context for any __invoke_prompt/__invoke_tool
// calls the function makes for the duration of the call.
func (b *Bridge) InvokeFunction(ctx context.Context, name string, args ...any) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activeCtx = ctx
	defer func() { b.activeCtx = nil }()

	fn, ok := goja.AssertFunction(b.vm.Get(name))
	if !ok {
		return nil, rterr.FunctionNotFound("script function not found: " + name)
	}
	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = b.vm.ToValue(a)
	}
	result, err := fn(goja.Undefined(), jsArgs...)
	if err != nil {
		return nil, rterr.ScriptHost(fmt.Sprintf("script function %s failed: %v", name, err))
	}
	return exportResolved(result), nil
}

// HasFunction reports whether name is a defined, callable global.
func (b *Bridge) HasFunction(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := goja.AssertFunction(b.vm.Get(name))
	return ok
}

// exportResolved exports a goja.Value, resolving a fulfilled Promise to
// its value (scripts may return promises directly for the host to await).
func exportResolved(v goja.Value) any {
	if p, ok := v.Export().(*goja.Promise); ok {
		switch p.State() {
		case goja.PromiseStateFulfilled:
			return p.Result().Export()
		case goja.PromiseStateRejected:
			return p.Result().Export()
		default:
			return nil
		}
	}
	return v.Export()
}

func jsIdentifier(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
