package graph

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smallnest/flowgraph/log"
)

// TraceEvent represents different types of events in run execution
type TraceEvent string

const (
	// TraceEventRunStart indicates the start of a run
	TraceEventRunStart TraceEvent = "run_start"

	// TraceEventRunEnd indicates the end of a run, successful or not
	TraceEventRunEnd TraceEvent = "run_end"

	// TraceEventNodeStart indicates the start of node execution
	TraceEventNodeStart TraceEvent = "node_start"

	// TraceEventNodeEnd indicates the end of node execution
	TraceEventNodeEnd TraceEvent = "node_end"

	// TraceEventNodeError indicates an error occurred in node execution
	TraceEventNodeError TraceEvent = "node_error"

	// TraceEventEdgeTraversal indicates traversal from one node to another
	TraceEventEdgeTraversal TraceEvent = "edge_traversal"
)

// TraceSpan represents a span of execution with timing and metadata
type TraceSpan struct {
	// ID is a unique identifier for this span
	ID string

	// ParentID is the ID of the parent span (empty for root spans)
	ParentID string

	// RunID is the run this span belongs to
	RunID string

	// Event indicates the type of event this span represents
	Event TraceEvent

	// NodeName is the name of the node being executed (if applicable)
	NodeName string

	// FromNode is the source node for edge traversals
	FromNode string

	// ToNode is the destination node for edge traversals; empty means terminal
	ToNode string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// State is a snapshot of the state at this point (optional)
	State map[string]any

	// Error contains any error that occurred during execution
	Error error

	// Metadata contains additional key-value pairs for observability
	Metadata map[string]any
}

// TraceHook defines the interface for trace event handlers
type TraceHook interface {
	// OnEvent is called when a trace event occurs
	OnEvent(ctx context.Context, span *TraceSpan)
}

// TraceHookFunc is a function adapter for TraceHook
type TraceHookFunc func(ctx context.Context, span *TraceSpan)

// OnEvent implements the TraceHook interface
func (f TraceHookFunc) OnEvent(ctx context.Context, span *TraceSpan) {
	f(ctx, span)
}

// Tracer manages trace collection and hooks.
// It is safe for use by concurrent runs.
type Tracer struct {
	hooks  []TraceHook
	spans  map[string]*TraceSpan
	retain bool
	mutex  sync.RWMutex
}

// NewTracer creates a new tracer instance that keeps every span for GetSpans
func NewTracer() *Tracer {
	return &Tracer{
		hooks:  make([]TraceHook, 0),
		spans:  make(map[string]*TraceSpan),
		retain: true,
	}
}

// NewHookTracer creates a tracer that only forwards spans to hooks.
// Long-running processes use it so spans are not accumulated.
func NewHookTracer(hooks ...TraceHook) *Tracer {
	return &Tracer{
		hooks: hooks,
		spans: make(map[string]*TraceSpan),
	}
}

// AddHook registers a new trace hook
func (t *Tracer) AddHook(hook TraceHook) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.hooks = append(t.hooks, hook)
}

// StartSpan creates a new trace span
func (t *Tracer) StartSpan(ctx context.Context, event TraceEvent, runID, nodeName string) *TraceSpan {
	span := &TraceSpan{
		ID:        generateSpanID(),
		RunID:     runID,
		Event:     event,
		NodeName:  nodeName,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
	}

	// Extract parent ID from context if available
	if parentSpan := SpanFromContext(ctx); parentSpan != nil {
		span.ParentID = parentSpan.ID
	}

	t.record(ctx, span)
	return span
}

// EndSpan completes a trace span
func (t *Tracer) EndSpan(ctx context.Context, span *TraceSpan, state map[string]any, err error) {
	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	span.State = state
	span.Error = err

	switch span.Event {
	case TraceEventNodeStart:
		if err != nil {
			span.Event = TraceEventNodeError
		} else {
			span.Event = TraceEventNodeEnd
		}
	case TraceEventRunStart:
		span.Event = TraceEventRunEnd
	}

	t.record(ctx, span)
}

// TraceEdgeTraversal records an edge traversal event
func (t *Tracer) TraceEdgeTraversal(ctx context.Context, runID, fromNode, toNode string, override bool) {
	now := time.Now()
	span := &TraceSpan{
		ID:        generateSpanID(),
		RunID:     runID,
		Event:     TraceEventEdgeTraversal,
		FromNode:  fromNode,
		ToNode:    toNode,
		StartTime: now,
		EndTime:   now,
		Metadata:  map[string]any{"override": override},
	}

	if parentSpan := SpanFromContext(ctx); parentSpan != nil {
		span.ParentID = parentSpan.ID
	}

	t.record(ctx, span)
}

func (t *Tracer) record(ctx context.Context, span *TraceSpan) {
	t.mutex.Lock()
	if t.retain {
		t.spans[span.ID] = span
	}
	hooks := make([]TraceHook, len(t.hooks))
	copy(hooks, t.hooks)
	t.mutex.Unlock()

	for _, hook := range hooks {
		hook.OnEvent(ctx, span)
	}
}

// GetSpans returns a copy of the collected spans keyed by ID
func (t *Tracer) GetSpans() map[string]*TraceSpan {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	spans := make(map[string]*TraceSpan, len(t.spans))
	for id, span := range t.spans {
		spans[id] = span
	}
	return spans
}

// Clear removes all collected spans
func (t *Tracer) Clear() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.spans = make(map[string]*TraceSpan)
}

// LogHook returns a hook that writes finished spans to logger at debug level.
func LogHook(logger log.Logger) TraceHook {
	return TraceHookFunc(func(ctx context.Context, span *TraceSpan) {
		switch span.Event {
		case TraceEventRunEnd:
			logger.Debug("trace run %s ended in %s: %v", span.RunID, span.Duration, span.Metadata["status"])
		case TraceEventNodeEnd:
			logger.Debug("trace run %s node %s took %s", span.RunID, span.NodeName, span.Duration)
		case TraceEventNodeError:
			logger.Debug("trace run %s node %s failed after %s: %v", span.RunID, span.NodeName, span.Duration, span.Error)
		case TraceEventEdgeTraversal:
			to := span.ToNode
			if to == "" {
				to = "END"
			}
			logger.Debug("trace run %s edge %s -> %s (override=%v)", span.RunID, span.FromNode, to, span.Metadata["override"])
		}
	})
}

// Context keys for span storage
type contextKey string

const spanContextKey contextKey = "flowgraph_span"

// ContextWithSpan returns a new context with the span stored
func ContextWithSpan(ctx context.Context, span *TraceSpan) context.Context {
	return context.WithValue(ctx, spanContextKey, span)
}

// SpanFromContext extracts a span from context
func SpanFromContext(ctx context.Context) *TraceSpan {
	if span, ok := ctx.Value(spanContextKey).(*TraceSpan); ok {
		return span
	}
	return nil
}

// generateSpanID creates a unique span identifier
func generateSpanID() string {
	return uuid.NewString()
}
