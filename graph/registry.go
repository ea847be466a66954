package graph

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Tool is a domain computation that node functions call with explicit arguments.
// It returns a partial state mapping.
type Tool interface {
	Name() string
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// ToolFunc is the function form of a tool body.
type ToolFunc func(ctx context.Context, args map[string]any) (map[string]any, error)

type namedTool struct {
	name string
	fn   ToolFunc
}

func (t namedTool) Name() string { return t.name }

func (t namedTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	return t.fn(ctx, args)
}

// NewTool wraps fn as a Tool called name.
func NewTool(name string, fn ToolFunc) Tool {
	return namedTool{name: name, fn: fn}
}

// Tools is the read-only view of the tool registry handed to node functions.
type Tools interface {
	Tool(name string) (Tool, error)
}

// ToolRegistry is an immutable set of tools keyed by name.
type ToolRegistry struct {
	tools map[string]Tool
}

var _ Tools = (*ToolRegistry)(nil)

// NewToolRegistry builds a registry from tools. Names must be unique.
func NewToolRegistry(tools ...Tool) (*ToolRegistry, error) {
	r := &ToolRegistry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Name()
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}
		r.tools[name] = t
	}
	return r, nil
}

// Tool returns the tool registered under name.
func (r *ToolRegistry) Tool(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t, nil
}

// Call looks up a tool and invokes it.
func (r *ToolRegistry) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	t, err := r.Tool(name)
	if err != nil {
		return nil, err
	}
	return t.Call(ctx, args)
}

// Names returns the registered tool names in sorted order.
func (r *ToolRegistry) Names() []string {
	return slices.Sorted(maps.Keys(r.tools))
}

// CallTool is a convenience for node functions holding a Tools view.
func CallTool(ctx context.Context, tools Tools, name string, args map[string]any) (map[string]any, error) {
	t, err := tools.Tool(name)
	if err != nil {
		return nil, err
	}
	return t.Call(ctx, args)
}

// Result is what a node function hands back to the engine.
type Result struct {
	// State is merged into the run state, overwriting on key.
	State map[string]any

	// Next overrides the default edge when not empty.
	Next string
}

// Update returns a result carrying only a state delta.
func Update(state map[string]any) *Result {
	return &Result{State: state}
}

// Goto returns a result that also overrides the next node.
func Goto(next string, state map[string]any) *Result {
	return &Result{State: state, Next: next}
}

// NodeFunction is the executable unit bound to graph nodes.
// state is a private snapshot of the run state; changes to it are discarded,
// only the returned Result is merged.
type NodeFunction interface {
	Invoke(ctx context.Context, state map[string]any, tools Tools) (*Result, error)
}

// NodeFunc adapts a plain function to NodeFunction.
type NodeFunc func(ctx context.Context, state map[string]any, tools Tools) (*Result, error)

// Invoke implements NodeFunction.
func (f NodeFunc) Invoke(ctx context.Context, state map[string]any, tools Tools) (*Result, error) {
	return f(ctx, state, tools)
}

// UntypedNodeFunc adapts a function returning a loosely typed result,
// typically a map with "state" and "next_node" keys. See DecodeResult.
type UntypedNodeFunc func(ctx context.Context, state map[string]any, tools Tools) (any, error)

// Invoke implements NodeFunction.
func (f UntypedNodeFunc) Invoke(ctx context.Context, state map[string]any, tools Tools) (*Result, error) {
	v, err := f(ctx, state, tools)
	if err != nil {
		return nil, err
	}
	return DecodeResult(v)
}

// DecodeResult converts a loosely typed node result into a Result.
//
// nil decodes to an empty result. A map is read through its "state" and
// "next_node" keys. A present "state" must be a string-keyed map; a nil
// "next_node" counts as absent, and so does an empty one.
func DecodeResult(v any) (*Result, error) {
	switch res := v.(type) {
	case nil:
		return &Result{}, nil
	case *Result:
		if res == nil {
			return &Result{}, nil
		}
		return res, nil
	case Result:
		return &res, nil
	case map[string]any:
		out := &Result{}
		if raw, ok := res["state"]; ok {
			state, err := decodeState(raw)
			if err != nil {
				return nil, err
			}
			out.State = state
		}
		if raw, ok := res["next_node"]; ok && raw != nil {
			next, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%w: next_node must be a string, got %T", ErrInvalidResult, raw)
			}
			out.Next = next
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w, got %T", ErrInvalidResult, v)
	}
}

// decodeState accepts any map keyed by strings as a state update.
func decodeState(raw any) (map[string]any, error) {
	switch state := raw.(type) {
	case nil:
		return nil, fmt.Errorf("%w, got nil", ErrInvalidState)
	case map[string]any:
		return state, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, fmt.Errorf("%w, got %T", ErrInvalidState, raw)
	}
	state := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		state[iter.Key().String()] = iter.Value().Interface()
	}
	return state, nil
}

// NodeRegistry is an immutable lookup of node functions by identifier.
type NodeRegistry struct {
	funcs map[string]NodeFunction
}

// NewNodeRegistry copies funcs into a new registry.
func NewNodeRegistry(funcs map[string]NodeFunction) *NodeRegistry {
	return &NodeRegistry{funcs: maps.Clone(funcs)}
}

// Lookup returns the node function registered under name.
func (r *NodeRegistry) Lookup(name string) (NodeFunction, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered identifiers in sorted order.
func (r *NodeRegistry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.funcs))
}
