// Command runner loads one or more agent packages and serves them over
// the A2A JSON-RPC protocol, either via a single --invoke call or by
// reading stdin/stdout JSON-RPC lines in --a2a-stdio mode.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/agentrt/baml-agent-runtime/agentrt"
	"github.com/agentrt/baml-agent-runtime/archive"
	"github.com/agentrt/baml-agent-runtime/runner"
)

// CLI mirrors the teacher's kong-based command struct convention
// (cmd/hector/main.go) rather than a hand-rolled flag.FlagSet.
type CLI struct {
	Packages []string `arg:"" optional:"" help:"Agent package archives (.tar.gz) to load."`
	Invoke   []string `help:"Invoke <agent> <function> <json-args> once and exit." placeholder:"AGENT FUNCTION ARGS"`
	A2AStdio bool     `name:"a2a-stdio" help:"Serve JSON-RPC lines over stdin/stdout."`
}

func main() {
	var cli CLI
	kong.Parse(&cli, kong.Name("runner"), kong.Description("Agent execution runtime"))

	_ = godotenv.Load()
	logger := slog.Default()

	if len(cli.Packages) == 0 {
		fmt.Fprintln(os.Stderr, "runner: at least one package is required")
		os.Exit(1)
	}

	agents := make(map[string]*agentrt.Container, len(cli.Packages))
	for _, path := range cli.Packages {
		pkg, err := archive.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "runner: failed to load %s: %v\n", path, err)
			os.Exit(1)
		}
		container, err := agentrt.NewBuilder().
			WithPromptEngine(newManifestEngine(pkg)).
			WithInitialScript(pkg.ScriptCode).
			WithLogger(logger).
			Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "runner: failed to build agent %s: %v\n", pkg.Manifest.Name, err)
			os.Exit(1)
		}
		agents[pkg.Manifest.Name] = container
		logger.Info("loaded agent", "name", pkg.Manifest.Name, "version", pkg.Manifest.Version)
	}

	ctx := context.Background()

	if len(cli.Invoke) == 3 {
		agentName, function, argsJSON := cli.Invoke[0], cli.Invoke[1], cli.Invoke[2]
		container, ok := agents[agentName]
		if !ok {
			fmt.Fprintf(os.Stderr, "runner: unknown agent: %s\n", agentName)
			os.Exit(1)
		}
		var args map[string]any
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			fmt.Fprintf(os.Stderr, "runner: invalid args: %v\n", err)
			os.Exit(1)
		}
		result, err := container.Bridge().InvokeFunction(ctx, function, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "runner: invocation failed: %v\n", err)
			os.Exit(1)
		}
		b, _ := json.Marshal(result)
		fmt.Println(string(b))
		return
	}

	if cli.A2AStdio {
		r := runner.New(agents, logger)
		if err := r.Run(ctx, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "runner: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintln(os.Stderr, "runner: nothing to do; pass --invoke or --a2a-stdio")
	os.Exit(1)
}
