// Package runner implements the multi-agent runner: it reads JSON-RPC
// lines from an input stream, picks a target agent by the A2A codec's
// selection rules, and writes line-delimited responses. Grounded on the
// original runtime's src/bin/baml-agent-runner.rs and the agent-selection
// rules in crates/baml-rt-a2a/src/a2a.rs.
package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/agentrt/baml-agent-runtime/a2acodec"
	"github.com/agentrt/baml-agent-runtime/agentrt"
)

// Runner routes stdin JSON-RPC lines to the right agent by name.
type Runner struct {
	agents map[string]*agentrt.Container
	logger *slog.Logger
}

// New constructs a Runner over a set of loaded agents indexed by name.
func New(agents map[string]*agentrt.Container, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{agents: agents, logger: logger}
}

// Run reads newline-delimited JSON-RPC requests from in, dispatches each,
// and writes newline-delimited JSON-RPC responses to out, flushing after
// every line. A failure for one request does not affect subsequent
// requests or other agents.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	writer := bufio.NewWriter(out)
	var mu sync.Mutex

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		lineCopy := append([]byte(nil), line...)
		r.dispatchLine(ctx, lineCopy, writer, &mu)
	}
	return scanner.Err()
}

func (r *Runner) dispatchLine(ctx context.Context, line []byte, writer *bufio.Writer, mu *sync.Mutex) {
	agentName, container, req, parseErr := r.resolve(line)
	if parseErr != nil {
		r.writeResponses(writer, mu, []a2acodec.Response{
			a2acodec.ErrorResponse(nil, a2acodec.CodeParseError, "JSON parse error", nil),
		})
		return
	}
	if container == nil {
		r.writeResponses(writer, mu, []a2acodec.Response{
			a2acodec.ErrorResponse(req.ID, a2acodec.CodeMethodNotFound, "unknown agent: "+agentName, nil),
		})
		return
	}

	rewritten, err := rewriteEnvelope(line, req)
	if err != nil {
		r.writeResponses(writer, mu, []a2acodec.Response{
			a2acodec.ErrorResponse(req.ID, a2acodec.CodeInternal, err.Error(), nil),
		})
		return
	}

	responses := container.Handle(ctx, rewritten)
	r.writeResponses(writer, mu, responses)
}

// resolve parses line once to determine the target agent without
// consuming the original request shape, per §4.7's selection rules with a
// single-agent fallback.
func (r *Runner) resolve(line []byte) (agentName string, container *agentrt.Container, req *a2acodec.Request, err error) {
	req, err = a2acodec.Parse(line)
	if err != nil {
		return "", nil, nil, err
	}

	agentName, stripped := a2acodec.ExtractAgentName(req.Method, req.Params)
	req.Method = stripped

	if agentName == "" {
		if len(r.agents) == 1 {
			for name, c := range r.agents {
				return name, c, req, nil
			}
		}
		return "", nil, req, nil
	}
	return agentName, r.agents[agentName], req, nil
}

// rewriteEnvelope strips any agent prefix and streaming suffix from the
// method and sets params.stream = true when the request was elevated to
// streaming, then re-serializes the envelope for the container to parse
// again (the container is the single source of truth for A2A semantics).
func rewriteEnvelope(original []byte, req *a2acodec.Request) ([]byte, error) {
	var raw map[string]any
	if err := json.Unmarshal(original, &raw); err != nil {
		return nil, err
	}
	raw["method"] = req.Method
	if req.IsStream {
		params, ok := raw["params"].(map[string]any)
		if !ok {
			params = map[string]any{}
		}
		params["stream"] = true
		raw["params"] = params
	}
	return json.Marshal(raw)
}

func (r *Runner) writeResponses(writer *bufio.Writer, mu *sync.Mutex, responses []a2acodec.Response) {
	mu.Lock()
	defer mu.Unlock()
	for _, resp := range responses {
		b, err := json.Marshal(resp)
		if err != nil {
			r.logger.Warn("failed to marshal response", "error", err)
			continue
		}
		writer.Write(b)
		writer.WriteByte('\n')
	}
	writer.Flush()
}
