// Command builder validates, packages, and test-invokes agent directories,
// mirroring the teacher's cmd/hector/main.go command-tree layout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/agentrt/baml-agent-runtime/agentrt"
	"github.com/agentrt/baml-agent-runtime/archive"
)

type lintCmd struct {
	AgentDir string `name:"agent-dir" required:"" help:"Directory containing manifest.json, baml_src/, and the entry point."`
}

func (c *lintCmd) Run() error {
	if err := archive.Lint(c.AgentDir); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

type packageCmd struct {
	AgentDir string `name:"agent-dir" required:"" help:"Directory containing manifest.json, baml_src/, and the entry point."`
	Output   string `required:"" help:"Output archive path."`
	SkipLint bool   `name:"skip-lint" help:"Skip validation before packaging."`
}

func (c *packageCmd) Run() error {
	if !c.SkipLint {
		if err := archive.Lint(c.AgentDir); err != nil {
			return err
		}
	}
	if err := archive.Write(c.AgentDir, c.Output); err != nil {
		return err
	}
	fmt.Println(c.Output)
	return nil
}

type runCmd struct {
	Package  string `required:"" help:"Packaged agent archive (.tar.gz) to load."`
	Function string `required:"" help:"Prompt function to invoke."`
	Args     string `default:"{}" help:"JSON-encoded function arguments."`
}

func (c *runCmd) Run() error {
	pkg, err := archive.Load(c.Package)
	if err != nil {
		return err
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(c.Args), &args); err != nil {
		return fmt.Errorf("invalid args: %w", err)
	}

	logger := slog.Default()
	container, err := agentrt.NewBuilder().
		WithPromptEngine(newManifestEngine(pkg)).
		WithInitialScript(pkg.ScriptCode).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}

	result, err := container.Bridge().InvokeFunction(context.Background(), c.Function, args)
	if err != nil {
		return err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

var cli struct {
	Lint    lintCmd    `cmd:"" help:"Validate an agent directory without packaging it."`
	Package packageCmd `cmd:"" help:"Package an agent directory into a distributable archive."`
	Run     runCmd     `cmd:"" help:"Load a package and invoke one prompt function."`
}

func main() {
	ctx := kong.Parse(&cli, kong.Name("builder"), kong.Description("Agent package lint/package/run tool"))
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "builder: %v\n", err)
		os.Exit(1)
	}
}
