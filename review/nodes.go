package review

import (
	"context"

	"github.com/smallnest/flowgraph/graph"
)

// Node function identifiers registered by Nodes.
const (
	FuncExtractFunctions    = "node_extract_functions"
	FuncCheckComplexity     = "node_check_complexity"
	FuncDetectIssues        = "node_detect_issues"
	FuncSuggestImprovements = "node_suggest_improvements"
	FuncEvaluateQuality     = "node_evaluate_quality"
)

// DefaultQualityThreshold is used when the state carries no quality_threshold.
const DefaultQualityThreshold = 0.8

// Nodes returns the review node functions keyed by identifier.
func Nodes() map[string]graph.NodeFunction {
	return map[string]graph.NodeFunction{
		FuncExtractFunctions:    graph.NodeFunc(extractFunctions),
		FuncCheckComplexity:     graph.NodeFunc(checkComplexity),
		FuncDetectIssues:        graph.NodeFunc(detectIssues),
		FuncSuggestImprovements: graph.NodeFunc(suggestImprovements),
		FuncEvaluateQuality:     graph.NodeFunc(evaluateQuality),
	}
}

func callInto(ctx context.Context, tools graph.Tools, tool string, args map[string]any) (*graph.Result, error) {
	out, err := graph.CallTool(ctx, tools, tool, args)
	if err != nil {
		return nil, err
	}
	return graph.Update(out), nil
}

// pick copies the keys present in state.
func pick(state map[string]any, keys ...string) map[string]any {
	args := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := state[k]; ok {
			args[k] = v
		}
	}
	return args
}

func extractFunctions(ctx context.Context, state map[string]any, tools graph.Tools) (*graph.Result, error) {
	return callInto(ctx, tools, ToolExtractFunctions, map[string]any{"code": asString(state["code"])})
}

func checkComplexity(ctx context.Context, state map[string]any, tools graph.Tools) (*graph.Result, error) {
	return callInto(ctx, tools, ToolCheckComplexity, map[string]any{"functions": state["functions"]})
}

func detectIssues(ctx context.Context, state map[string]any, tools graph.Tools) (*graph.Result, error) {
	return callInto(ctx, tools, ToolDetectBasicIssues, map[string]any{"code": asString(state["code"])})
}

func suggestImprovements(ctx context.Context, state map[string]any, tools graph.Tools) (*graph.Result, error) {
	return callInto(ctx, tools, ToolSuggestImprovements, pick(state, "complexity_score", "issue_count"))
}

// evaluateQuality loops back to suggest_improvements while the score is below the threshold.
func evaluateQuality(ctx context.Context, state map[string]any, tools graph.Tools) (*graph.Result, error) {
	out, err := graph.CallTool(ctx, tools, ToolEvaluateQuality,
		pick(state, "complexity_score", "issue_count", "suggestions"))
	if err != nil {
		return nil, err
	}

	threshold := asFloat(state["quality_threshold"], DefaultQualityThreshold)
	if asFloat(out["quality_score"], 0) < threshold {
		return graph.Goto(NodeSuggestImprovements, out), nil
	}
	return graph.Update(out), nil
}
