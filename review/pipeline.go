package review

import (
	"context"
	"fmt"

	"github.com/smallnest/flowgraph/graph"
)

// Node names of the review pipeline.
const (
	NodeExtractFunctions    = "extract_functions"
	NodeCheckComplexity     = "check_complexity"
	NodeDetectIssues        = "detect_issues"
	NodeSuggestImprovements = "suggest_improvements"
	NodeEvaluateQuality     = "evaluate_quality"
)

// GraphCreator is the part of the engine needed to register the pipeline.
type GraphCreator interface {
	CreateGraph(ctx context.Context, nodes, edges map[string]string, startNode string) (string, error)
}

// PipelineNodes maps pipeline node names to node function identifiers.
func PipelineNodes() map[string]string {
	return map[string]string{
		NodeExtractFunctions:    FuncExtractFunctions,
		NodeCheckComplexity:     FuncCheckComplexity,
		NodeDetectIssues:        FuncDetectIssues,
		NodeSuggestImprovements: FuncSuggestImprovements,
		NodeEvaluateQuality:     FuncEvaluateQuality,
	}
}

// PipelineEdges chains the nodes; evaluate_quality has no default edge,
// its looping is decided by the node function.
func PipelineEdges() map[string]string {
	return map[string]string{
		NodeExtractFunctions:    NodeCheckComplexity,
		NodeCheckComplexity:     NodeDetectIssues,
		NodeDetectIssues:        NodeSuggestImprovements,
		NodeSuggestImprovements: NodeEvaluateQuality,
	}
}

// RegisterPipeline creates the code review graph and returns its id.
func RegisterPipeline(ctx context.Context, engine GraphCreator) (string, error) {
	graphID, err := engine.CreateGraph(ctx, PipelineNodes(), PipelineEdges(), NodeExtractFunctions)
	if err != nil {
		return "", fmt.Errorf("register review pipeline: %w", err)
	}
	return graphID, nil
}

// NewToolRegistry returns a registry holding the review tools plus extra.
func NewToolRegistry(extra ...graph.Tool) (*graph.ToolRegistry, error) {
	return graph.NewToolRegistry(append(Tools(), extra...)...)
}
