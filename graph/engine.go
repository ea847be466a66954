package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smallnest/flowgraph/log"
)

// DefaultMaxSteps bounds the number of steps a single run may execute.
const DefaultMaxSteps = 100

// Engine owns the graph and run stores and drives runs to a terminal status.
type Engine struct {
	tools    Tools
	nodes    *NodeRegistry
	graphs   GraphStore
	runs     RunStore
	maxSteps int
	logger   log.Logger
	tracer   *Tracer
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithGraphStore replaces the in-memory graph store.
func WithGraphStore(s GraphStore) Option {
	return func(e *Engine) { e.graphs = s }
}

// WithRunStore replaces the in-memory run store.
func WithRunStore(s RunStore) Option {
	return func(e *Engine) { e.runs = s }
}

// WithMaxSteps sets the step cap. Values below 1 keep the default.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithLogger sets the logger used for run lifecycle messages.
func WithLogger(l log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTracer attaches a tracer that receives run, node and edge spans.
func WithTracer(t *Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine creates an engine over the given capability registries.
// Without store options both graphs and runs live in one MemoryStore.
func NewEngine(tools Tools, nodes *NodeRegistry, opts ...Option) *Engine {
	e := &Engine{
		tools:    tools,
		nodes:    nodes,
		maxSteps: DefaultMaxSteps,
		logger:   log.GetDefaultLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.graphs == nil || e.runs == nil {
		mem := NewMemoryStore()
		if e.graphs == nil {
			e.graphs = mem
		}
		if e.runs == nil {
			e.runs = mem
		}
	}
	if e.tools == nil {
		e.tools = &ToolRegistry{}
	}
	if e.logger == nil {
		e.logger = log.NoOpLogger{}
	}
	return e
}

// MaxSteps returns the configured step cap.
func (e *Engine) MaxSteps() int {
	return e.maxSteps
}

// CreateGraph registers a graph and returns its generated id.
// Node and edge consistency is not checked here; problems surface when a run reaches them.
func (e *Engine) CreateGraph(ctx context.Context, nodes, edges map[string]string, startNode string) (string, error) {
	g := &GraphDefinition{
		ID:        uuid.NewString(),
		Nodes:     nodes,
		Edges:     edges,
		StartNode: startNode,
		CreatedAt: e.now().UTC(),
	}
	if g.Nodes == nil {
		g.Nodes = map[string]string{}
	}
	if g.Edges == nil {
		g.Edges = map[string]string{}
	}

	if err := e.graphs.SaveGraph(ctx, g); err != nil {
		return "", fmt.Errorf("save graph: %w", err)
	}
	e.logger.Debug("graph %s created with %d nodes, start %q", g.ID, len(g.Nodes), startNode)
	return g.ID, nil
}

// GetGraph returns a graph definition; errors wrap ErrNotFound when absent.
func (e *Engine) GetGraph(ctx context.Context, graphID string) (*GraphDefinition, error) {
	return e.graphs.LoadGraph(ctx, graphID)
}

// GetRun returns a run record; errors wrap ErrNotFound when absent.
func (e *Engine) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	return e.runs.LoadRun(ctx, runID)
}

// ListRuns returns the IDs of a graph's runs. The graph must exist, and the
// run store must implement RunLister; otherwise ErrListUnsupported is returned.
func (e *Engine) ListRuns(ctx context.Context, graphID string) ([]string, error) {
	if _, err := e.graphs.LoadGraph(ctx, graphID); err != nil {
		return nil, err
	}
	lister, ok := e.runs.(RunLister)
	if !ok {
		return nil, ErrListUnsupported
	}
	return lister.ListRuns(ctx, graphID)
}

// RunGraph executes a graph against a copy of initialState and returns the
// terminal run record.
//
// Only store errors are returned. Failures inside the step loop are recorded
// on the run (status failed, error message) and the returned error is nil.
func (e *Engine) RunGraph(ctx context.Context, graphID string, initialState map[string]any) (*RunRecord, error) {
	g, err := e.graphs.LoadGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}

	run := &RunRecord{
		ID:        uuid.NewString(),
		GraphID:   g.ID,
		State:     CloneState(initialState),
		Log:       []StepLog{},
		Status:    StatusRunning,
		StartedAt: e.now().UTC(),
	}
	if err := e.runs.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	var runSpan *TraceSpan
	if e.tracer != nil {
		runSpan = e.tracer.StartSpan(ctx, TraceEventRunStart, run.ID, "")
		runSpan.Metadata["graph_id"] = g.ID
		ctx = ContextWithSpan(ctx, runSpan)
	}

	e.logger.Info("run %s started on graph %s at node %q", run.ID, g.ID, g.StartNode)
	saveErr := e.execute(ctx, g, run)

	run.FinishedAt = e.now().UTC()
	if err := e.runs.SaveRun(ctx, run); err != nil && saveErr == nil {
		saveErr = fmt.Errorf("save run: %w", err)
	}

	if runSpan != nil {
		var runErr error
		if run.Status == StatusFailed {
			runErr = fmt.Errorf("%s", run.Error)
		}
		runSpan.Metadata["status"] = string(run.Status)
		runSpan.Metadata["steps"] = len(run.Log)
		e.tracer.EndSpan(ctx, runSpan, CloneState(run.State), runErr)
	}

	return run, saveErr
}

// execute drives the step loop. It returns a store error only; step failures
// are recorded on run.
func (e *Engine) execute(ctx context.Context, g *GraphDefinition, run *RunRecord) error {
	current := g.StartNode

	for i := 0; i < e.maxSteps; i++ {
		if current == "" {
			break
		}

		next, err := e.step(ctx, g, run, current)
		if err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
			e.logger.Error("run %s failed at node %q after %d steps: %v", run.ID, current, len(run.Log), err)
			return nil
		}

		// Progress is published after every step so GetRun observes it mid-run.
		if err := e.runs.SaveRun(ctx, run); err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
			return fmt.Errorf("save run: %w", err)
		}
		current = next
	}

	// The cap reports completed even when a node was still pending.
	if current != "" {
		e.logger.Warn("run %s stopped at step cap %d with node %q pending", run.ID, e.maxSteps, current)
	}
	run.Status = StatusCompleted
	e.logger.Info("run %s completed after %d steps", run.ID, len(run.Log))
	return nil
}

// step executes one node, merges its output, logs it and resolves the next node.
func (e *Engine) step(ctx context.Context, g *GraphDefinition, run *RunRecord, node string) (string, error) {
	function, ok := g.Nodes[node]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, node)
	}

	fn, ok := e.nodes.Lookup(function)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnregisteredFunction, function)
	}

	e.logger.Debug("run %s step %d: node %q function %q", run.ID, len(run.Log)+1, node, function)

	result, err := e.invoke(ctx, run.ID, node, fn, run.State)
	if err != nil {
		return "", err
	}
	if result == nil {
		result = &Result{}
	}

	MergeState(run.State, result.State)
	run.Log = append(run.Log, StepLog{
		Node:          node,
		Function:      function,
		StateSnapshot: CloneState(run.State),
	})

	next := result.Next
	override := next != ""
	if !override {
		next = g.Next(node)
	}
	if e.tracer != nil {
		e.tracer.TraceEdgeTraversal(ctx, run.ID, node, next, override)
	}
	return next, nil
}

// invoke calls a node function on a private snapshot of state, turning panics into errors.
func (e *Engine) invoke(ctx context.Context, runID, node string, fn NodeFunction, state map[string]any) (result *Result, err error) {
	var span *TraceSpan
	if e.tracer != nil {
		span = e.tracer.StartSpan(ctx, TraceEventNodeStart, runID, node)
		ctx = ContextWithSpan(ctx, span)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic in node %s: %v", node, r)
		}
		if span != nil {
			var delta map[string]any
			if result != nil {
				delta = result.State
			}
			e.tracer.EndSpan(ctx, span, delta, err)
		}
	}()

	return fn.Invoke(ctx, CloneState(state), e.tools)
}
