// Command flowgraph runs and draws graph files locally.
//
//	flowgraph run -f graph.yaml [-state state.json] [-max-steps N] [-json] [-v]
//	flowgraph draw -f graph.yaml [-format mermaid|dot|ascii]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/smallnest/flowgraph/builtins"
	"github.com/smallnest/flowgraph/graph"
	"github.com/smallnest/flowgraph/graphfile"
	"github.com/smallnest/flowgraph/log"
)

const usage = `usage:
  flowgraph run -f graph.yaml [-state state.json] [-max-steps N] [-json] [-v]
  flowgraph draw -f graph.yaml [-format mermaid|dot|ascii]`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "flowgraph:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "run":
		return runCommand(ctx, args[1:], stdout, stderr)
	case "draw":
		return drawCommand(args[1:], stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func runCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("f", "", "graph file (YAML or JSON)")
	statePath := fs.String("state", "", "initial state file, merged over the graph file's initial_state")
	maxSteps := fs.Int("max-steps", 0, "step cap (default from graph file, else 100)")
	asJSON := fs.Bool("json", false, "print the run record as JSON")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("run: -f is required")
	}

	level := log.LogLevelWarn
	if *verbose {
		level = log.LogLevelDebug
	}
	logger := log.New(stderr, level)

	gf, err := graphfile.LoadFile(*file)
	if err != nil {
		return err
	}
	if err := gf.Validate(); err != nil {
		logger.Warn("graph file %s: %v", *file, err)
	}

	state := maps.Clone(gf.InitialState)
	if *statePath != "" {
		extra, err := graphfile.LoadState(*statePath)
		if err != nil {
			return err
		}
		graph.MergeState(state, extra)
	}

	steps := *maxSteps
	if steps == 0 {
		steps = gf.MaxSteps
	}

	tools, err := builtins.NewToolRegistry()
	if err != nil {
		return err
	}
	engine := graph.NewEngine(tools, builtins.NewNodeRegistry(),
		graph.WithMaxSteps(steps),
		graph.WithLogger(logger),
	)

	graphID, err := engine.CreateGraph(ctx, gf.Nodes, gf.Edges, gf.StartNode)
	if err != nil {
		return err
	}
	rec, err := engine.RunGraph(ctx, graphID, state)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return err
		}
	} else {
		name := gf.Name
		if name == "" {
			name = *file
		}
		fmt.Fprintln(stdout, renderReport(name, state, rec))
	}
	if rec.Status == graph.StatusFailed {
		return errors.New("run failed")
	}
	return nil
}

func drawCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("draw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("f", "", "graph file (YAML or JSON)")
	format := fs.String("format", "mermaid", "output format: mermaid, dot or ascii")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("draw: -f is required")
	}

	gf, err := graphfile.LoadFile(*file)
	if err != nil {
		return err
	}
	g := gf.Definition()

	switch *format {
	case "mermaid":
		fmt.Fprint(stdout, graph.DrawMermaid(g))
	case "dot":
		fmt.Fprint(stdout, graph.DrawDOT(g))
	case "ascii":
		fmt.Fprint(stdout, graph.NewExporter(g).DrawASCII())
	default:
		return fmt.Errorf("draw: unknown format %q", *format)
	}
	return nil
}
