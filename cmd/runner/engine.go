package main

import (
	"context"
	"fmt"

	"github.com/agentrt/baml-agent-runtime/archive"
	"github.com/agentrt/baml-agent-runtime/promptengine"
)

// manifestEngine is the runner binary's concrete promptengine.Opaque: it
// reads the declarative function list from the package manifest's
// "functions" metadata and otherwise stands in for the real BAML executor,
// which is an external collaborator this runtime never implements (see
// spec.md's Non-goals/out-of-scope list). A production deployment plugs a
// real BAML client in at this seam.
type manifestEngine struct {
	functions []string
}

func newManifestEngine(pkg *archive.Package) *manifestEngine {
	var names []string
	if raw, ok := pkg.Manifest.Metadata["functions"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
	}
	return &manifestEngine{functions: names}
}

func (e *manifestEngine) ListFunctions() []string { return e.functions }

func (e *manifestEngine) BuildRequestWithoutSending(_ context.Context, name string, args map[string]any) (promptengine.ResolvedRequest, error) {
	return promptengine.ResolvedRequest{
		Client: "default",
		Model:  "default",
		Prompt: fmt.Sprintf("%s(%v)", name, args),
	}, nil
}

func (e *manifestEngine) Execute(_ context.Context, name string, args map[string]any, collector *promptengine.Collector) (any, error) {
	collector.Calls = append(collector.Calls, promptengine.SubCall{Client: "default", Model: "default", Prompt: name})
	return map[string]any{"function": name, "args": args}, nil
}

func (e *manifestEngine) StreamFunction(ctx context.Context, name string, args map[string]any) (<-chan any, error) {
	ch := make(chan any, 1)
	result, _ := e.Execute(ctx, name, args, &promptengine.Collector{})
	ch <- result
	close(ch)
	return ch, nil
}
