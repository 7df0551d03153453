package agentrt

import (
	"log/slog"

	"github.com/agentrt/baml-agent-runtime/builtintools"
	"github.com/agentrt/baml-agent-runtime/events"
	"github.com/agentrt/baml-agent-runtime/interceptor"
	"github.com/agentrt/baml-agent-runtime/promptengine"
	"github.com/agentrt/baml-agent-runtime/provenance"
	"github.com/agentrt/baml-agent-runtime/resultpipe"
	"github.com/agentrt/baml-agent-runtime/router"
	"github.com/agentrt/baml-agent-runtime/rterr"
	"github.com/agentrt/baml-agent-runtime/scripthost"
	"github.com/agentrt/baml-agent-runtime/taskstore"
	"github.com/agentrt/baml-agent-runtime/toolregistry"
)

// Builder configures and assembles a Container.
type Builder struct {
	engine           promptengine.Opaque
	bridgeScript     string
	tasks            taskstore.Repository
	provenanceWriter provenance.Writer
	registerWrappers bool
	builtinTools     bool
	logger           *slog.Logger
}

// NewBuilder starts a Builder; engine (the opaque prompt engine, required)
// must be supplied before Build.
func NewBuilder() *Builder {
	return &Builder{registerWrappers: true, builtinTools: true}
}

// WithBuiltinTools toggles registration of the host-native tool set
// (e.g. calculate) before the package's entry point runs (default true).
func (b *Builder) WithBuiltinTools(enabled bool) *Builder {
	b.builtinTools = enabled
	return b
}

// WithPromptEngine sets the opaque prompt engine handle (required).
func (b *Builder) WithPromptEngine(engine promptengine.Opaque) *Builder {
	b.engine = engine
	return b
}

// WithInitialScript sets script code to evaluate once the bridge is ready,
// e.g. the package's compiled entry point.
func (b *Builder) WithInitialScript(code string) *Builder {
	b.bridgeScript = code
	return b
}

// WithTaskStore injects a custom task store implementation instead of the
// default in-memory Store.
func (b *Builder) WithTaskStore(store taskstore.Repository) *Builder {
	b.tasks = store
	return b
}

// WithProvenanceWriter injects a custom provenance sink instead of the
// default in-memory MemoryWriter.
func (b *Builder) WithProvenanceWriter(writer provenance.Writer) *Builder {
	b.provenanceWriter = writer
	return b
}

// WithRegisterWrappers toggles whether prompt-function wrappers are
// generated in the script context (default true).
func (b *Builder) WithRegisterWrappers(enabled bool) *Builder {
	b.registerWrappers = enabled
	return b
}

// WithLogger sets the logger threaded through every component.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build assembles the Container.
func (b *Builder) Build() (*Container, error) {
	if b.engine == nil {
		return nil, rterr.InvalidArgument("a prompt engine handle is required")
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	tasks := b.tasks
	if tasks == nil {
		tasks = taskstore.New()
	}
	writer := b.provenanceWriter
	if writer == nil {
		writer = provenance.NewMemoryWriter()
	}
	provStore := provenance.Wrap(tasks, writer, logger)

	emitter := events.New()
	interceptors := interceptor.NewRegistry(logger)
	provInterceptor := provenance.NewInterceptor(writer, logger)
	interceptors.RegisterLLMInterceptor(provInterceptor)
	interceptors.RegisterToolInterceptor(provInterceptor)
	tools := toolregistry.New()
	mapper := toolregistry.NewVariantMapper()
	if b.builtinTools {
		if err := builtintools.RegisterCalculate(tools, mapper); err != nil {
			return nil, err
		}
	}

	adapter := promptengine.New(b.engine, interceptors, tools, mapper, logger)
	bridge, err := scripthost.New(adapter, tools, interceptors, logger)
	if err != nil {
		return nil, err
	}

	if b.registerWrappers {
		if err := bridge.RegisterPromptWrappers(); err != nil {
			return nil, err
		}
		names := make([]string, 0, len(tools.List()))
		for _, m := range tools.List() {
			names = append(names, m.Name)
		}
		if err := bridge.RegisterToolWrappers(names); err != nil {
			return nil, err
		}
	}

	if b.bridgeScript != "" {
		if _, err := bridge.Eval(b.bridgeScript); err != nil {
			return nil, err
		}
	}

	pipeline := resultpipe.New(provStore, emitter)
	r := router.New(provStore, &bridgeInvoker{bridge: bridge}, pipeline)

	return &Container{
		tasks:        provStore,
		provenance:   writer,
		emitter:      emitter,
		interceptors: interceptors,
		tools:        tools,
		mapper:       mapper,
		engine:       adapter,
		bridge:       bridge,
		pipeline:     pipeline,
		router:       r,
		logger:       logger,
	}, nil
}
