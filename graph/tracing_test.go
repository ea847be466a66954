package graph

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/smallnest/flowgraph/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracer_SpanLifecycle(t *testing.T) {
	tracer := NewTracer()
	ctx := context.Background()

	runSpan := tracer.StartSpan(ctx, TraceEventRunStart, "run-1", "")
	ctx = ContextWithSpan(ctx, runSpan)
	assert.Same(t, runSpan, SpanFromContext(ctx))

	nodeSpan := tracer.StartSpan(ctx, TraceEventNodeStart, "run-1", "a")
	assert.Equal(t, runSpan.ID, nodeSpan.ParentID)

	tracer.EndSpan(ctx, nodeSpan, map[string]any{"x": 1}, nil)
	assert.Equal(t, TraceEventNodeEnd, nodeSpan.Event)
	assert.Equal(t, map[string]any{"x": 1}, nodeSpan.State)

	failed := tracer.StartSpan(ctx, TraceEventNodeStart, "run-1", "b")
	tracer.EndSpan(ctx, failed, nil, errors.New("boom"))
	assert.Equal(t, TraceEventNodeError, failed.Event)

	tracer.TraceEdgeTraversal(ctx, "run-1", "a", "b", true)
	tracer.EndSpan(ctx, runSpan, nil, nil)
	assert.Equal(t, TraceEventRunEnd, runSpan.Event)
	assert.False(t, runSpan.EndTime.Before(runSpan.StartTime))

	spans := tracer.GetSpans()
	assert.Len(t, spans, 4)

	tracer.Clear()
	assert.Empty(t, tracer.GetSpans())
}

func TestHookTracer_DoesNotRetain(t *testing.T) {
	var events []TraceEvent
	tracer := NewHookTracer(TraceHookFunc(func(ctx context.Context, span *TraceSpan) {
		events = append(events, span.Event)
	}))

	span := tracer.StartSpan(context.Background(), TraceEventNodeStart, "r", "a")
	tracer.EndSpan(context.Background(), span, nil, nil)

	assert.Equal(t, []TraceEvent{TraceEventNodeStart, TraceEventNodeEnd}, events)
	assert.Empty(t, tracer.GetSpans())
}

func TestLogHook(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, log.LogLevelDebug)

	nodes := NewNodeRegistry(map[string]NodeFunction{
		"f": NodeFunc(func(ctx context.Context, state map[string]any, _ Tools) (*Result, error) {
			return Update(map[string]any{"ok": true}), nil
		}),
	})
	engine := NewEngine(nil, nodes,
		WithLogger(log.NoOpLogger{}),
		WithTracer(NewHookTracer(LogHook(logger))),
	)

	ctx := context.Background()
	id, err := engine.CreateGraph(ctx, map[string]string{"a": "f"}, nil, "a")
	require.NoError(t, err)
	run, err := engine.RunGraph(ctx, id, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "trace run "+run.ID+" node a took")
	assert.Contains(t, out, "edge a -> END (override=false)")
	assert.Contains(t, out, "ended in")
	assert.Contains(t, out, "completed")
}
