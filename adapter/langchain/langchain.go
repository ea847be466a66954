package langchain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smallnest/flowgraph/graph"
	"github.com/tmc/langchaingo/tools"
)

// DefaultOutputKey is the result key used when no WithOutputKey option is given.
const DefaultOutputKey = "output"

// Tool adapts a langchaingo tool to graph.Tool.
type Tool struct {
	tool      tools.Tool
	name      string
	outputKey string
}

var _ graph.Tool = (*Tool)(nil)

// Option configures a Tool.
type Option func(*Tool)

// WithName registers the tool under a different name.
func WithName(name string) Option {
	return func(t *Tool) {
		t.name = name
	}
}

// WithOutputKey sets the key the tool output is returned under.
func WithOutputKey(key string) Option {
	return func(t *Tool) {
		t.outputKey = key
	}
}

// FromTool wraps a langchaingo tool. Calls take their input from args["input"]
// when it is a string; otherwise the whole argument map is sent as JSON.
func FromTool(t tools.Tool, opts ...Option) *Tool {
	adapted := &Tool{
		tool:      t,
		name:      t.Name(),
		outputKey: DefaultOutputKey,
	}
	for _, opt := range opts {
		opt(adapted)
	}
	return adapted
}

// FromTools wraps several langchaingo tools with their own names.
func FromTools(ts ...tools.Tool) []graph.Tool {
	out := make([]graph.Tool, 0, len(ts))
	for _, t := range ts {
		out = append(out, FromTool(t))
	}
	return out
}

// Name returns the registered tool name.
func (t *Tool) Name() string {
	return t.name
}

// Description returns the wrapped tool's description.
func (t *Tool) Description() string {
	return t.tool.Description()
}

// Call runs the wrapped tool.
func (t *Tool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	input, err := toolInput(args)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", t.name, err)
	}

	output, err := t.tool.Call(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", t.name, err)
	}
	return map[string]any{t.outputKey: output}, nil
}

func toolInput(args map[string]any) (string, error) {
	if s, ok := args["input"].(string); ok {
		return s, nil
	}
	if len(args) == 0 {
		return "", nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to encode arguments: %w", err)
	}
	return string(data), nil
}

// ToolNode returns a node function that sends state[inputKey] to the named
// tool and stores the tool's output under outputKey.
func ToolNode(toolName, inputKey, outputKey string) graph.NodeFunction {
	return graph.NodeFunc(func(ctx context.Context, state map[string]any, ts graph.Tools) (*graph.Result, error) {
		value, ok := state[inputKey]
		if !ok {
			return nil, fmt.Errorf("state key %q missing for tool %s", inputKey, toolName)
		}

		input, ok := value.(string)
		if !ok {
			input = fmt.Sprint(value)
		}

		res, err := graph.CallTool(ctx, ts, toolName, map[string]any{"input": input})
		if err != nil {
			return nil, err
		}

		output, ok := res[DefaultOutputKey]
		if !ok {
			// adapted tools with a custom output key
			for _, v := range res {
				output = v
				break
			}
		}
		return graph.Update(map[string]any{outputKey: output}), nil
	})
}
