package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smallnest/flowgraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	// Start miniredis
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := NewRedisStore(RedisOptions{
		Addr: mr.Addr(),
	})
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	g := &graph.GraphDefinition{
		ID:        "g-1",
		Nodes:     map[string]string{"a": "fa", "b": "fb"},
		Edges:     map[string]string{"a": "b"},
		StartNode: "a",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveGraph(ctx, g))
	assert.True(t, mr.Exists("flowgraph:graph:g-1"))

	loaded, err := store.LoadGraph(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, g.Nodes, loaded.Nodes)
	assert.Equal(t, "b", loaded.Next("a"))

	_, err = store.LoadGraph(ctx, "missing")
	assert.ErrorIs(t, err, graph.ErrNotFound)

	run := &graph.RunRecord{
		ID:      "r-1",
		GraphID: "g-1",
		State:   map[string]any{"foo": "bar"},
		Log: []graph.StepLog{
			{Node: "a", Function: "fa", StateSnapshot: map[string]any{"foo": "bar"}},
		},
		Status: graph.StatusFailed,
		Error:  "boom",
	}
	require.NoError(t, store.SaveRun(ctx, run))

	loadedRun, err := store.LoadRun(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, graph.StatusFailed, loadedRun.Status)
	assert.Equal(t, "boom", loadedRun.Error)
	assert.Equal(t, "bar", loadedRun.State["foo"])
	require.Len(t, loadedRun.Log, 1)
	assert.Equal(t, "fa", loadedRun.Log[0].Function)

	ids, err := store.ListRuns(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r-1"}, ids)

	_, err = store.LoadRun(ctx, "missing")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestRedisStore_TTLAndPrefix(t *testing.T) {
	mr := miniredis.RunT(t)

	store := NewRedisStore(RedisOptions{Addr: mr.Addr(), Prefix: "test:", TTL: time.Minute})
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, &graph.RunRecord{ID: "r-1", GraphID: "g-1", Status: graph.StatusRunning}))
	assert.Equal(t, time.Minute, mr.TTL("test:run:r-1"))
	assert.Equal(t, time.Minute, mr.TTL("test:graph:g-1:runs"))

	mr.FastForward(2 * time.Minute)
	_, err := store.LoadRun(ctx, "r-1")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestRedisStore_BacksEngine(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(RedisOptions{Addr: mr.Addr()})
	ctx := context.Background()

	nodes := graph.NewNodeRegistry(map[string]graph.NodeFunction{
		"count": graph.NodeFunc(func(ctx context.Context, state map[string]any, tools graph.Tools) (*graph.Result, error) {
			return graph.Update(map[string]any{"count": 1}), nil
		}),
	})
	e := graph.NewEngine(nil, nodes, graph.WithGraphStore(store), graph.WithRunStore(store))

	graphID, err := e.CreateGraph(ctx, map[string]string{"n": "count"}, nil, "n")
	require.NoError(t, err)

	run, err := e.RunGraph(ctx, graphID, nil)
	require.NoError(t, err)
	assert.Equal(t, graph.StatusCompleted, run.Status)

	stored, err := e.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, graph.StatusCompleted, stored.Status)
	// JSON round trip turns numbers into float64.
	assert.Equal(t, float64(1), stored.State["count"])
	assert.Len(t, stored.Log, 1)
}
