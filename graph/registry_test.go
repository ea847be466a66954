package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) Tool {
	return NewTool(name, func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return map[string]any{name: args["in"]}, nil
	})
}

func TestToolRegistry(t *testing.T) {
	r, err := NewToolRegistry(echoTool("b"), echoTool("a"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, r.Names())

	out, err := r.Call(context.Background(), "a", map[string]any{"in": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, out)

	_, err = r.Tool("missing")
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = r.Call(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestToolRegistry_Duplicate(t *testing.T) {
	_, err := NewToolRegistry(echoTool("a"), echoTool("a"))
	assert.ErrorIs(t, err, ErrDuplicateTool)
}

func TestNodeRegistry_IsImmutableCopy(t *testing.T) {
	funcs := map[string]NodeFunction{"f": set("k", 1)}
	r := NewNodeRegistry(funcs)

	funcs["g"] = set("k", 2)
	delete(funcs, "f")

	_, ok := r.Lookup("f")
	assert.True(t, ok)
	_, ok = r.Lookup("g")
	assert.False(t, ok)
	assert.Equal(t, []string{"f"}, r.Names())

	var nilRegistry *NodeRegistry
	_, ok = nilRegistry.Lookup("f")
	assert.False(t, ok)
	assert.Nil(t, nilRegistry.Names())
}

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    *Result
		wantErr error
	}{
		{name: "nil", in: nil, want: &Result{}},
		{name: "nil result pointer", in: (*Result)(nil), want: &Result{}},
		{name: "result value", in: Result{Next: "x"}, want: &Result{Next: "x"}},
		{name: "empty map", in: map[string]any{}, want: &Result{}},
		{
			name: "state and next",
			in:   map[string]any{"state": map[string]any{"a": 1}, "next_node": "b"},
			want: &Result{State: map[string]any{"a": 1}, Next: "b"},
		},
		{name: "null next", in: map[string]any{"next_node": nil}, want: &Result{}},
		{name: "empty next", in: map[string]any{"next_node": ""}, want: &Result{}},
		{name: "null state", in: map[string]any{"state": nil, "next_node": nil}, wantErr: ErrInvalidState},
		{name: "nil typed state", in: map[string]any{"state": map[string]int(nil)}, wantErr: ErrInvalidState},
		{
			name: "string map state",
			in:   map[string]any{"state": map[string]string{"a": "b"}},
			want: &Result{State: map[string]any{"a": "b"}},
		},
		{
			name: "int map state",
			in:   map[string]any{"state": map[string]int{"n": 2}, "next_node": "c"},
			want: &Result{State: map[string]any{"n": 2}, Next: "c"},
		},
		{name: "int keyed state", in: map[string]any{"state": map[int]any{1: "x"}}, wantErr: ErrInvalidState},
		{name: "state list", in: map[string]any{"state": []any{1}}, wantErr: ErrInvalidState},
		{name: "next number", in: map[string]any{"next_node": 1.5}, wantErr: ErrInvalidResult},
		{name: "string", in: "done", wantErr: ErrInvalidResult},
		{name: "slice", in: []any{}, wantErr: ErrInvalidResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResult(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResultHelpers(t *testing.T) {
	assert.Equal(t, &Result{State: map[string]any{"a": 1}}, Update(map[string]any{"a": 1}))
	assert.Equal(t, &Result{State: map[string]any{"a": 1}, Next: "n"}, Goto("n", map[string]any{"a": 1}))
}
