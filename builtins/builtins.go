// Package builtins assembles the tools and node functions shipped with flowgraph:
// the code review pipeline and the langchaingo calculator.
package builtins

import (
	"time"

	"github.com/smallnest/flowgraph/adapter/langchain"
	"github.com/smallnest/flowgraph/graph"
	"github.com/smallnest/flowgraph/review"
	"github.com/tmc/langchaingo/tools"
)

// Calculator registration names.
const (
	ToolCalculator = "calculator"
	FuncCalculate  = "node_calculate"
)

// CalculateTimeout bounds a single calculator evaluation.
const CalculateTimeout = 5 * time.Second

// NewToolRegistry returns the review tools plus the calculator.
func NewToolRegistry() (*graph.ToolRegistry, error) {
	return review.NewToolRegistry(langchain.FromTool(tools.Calculator{}, langchain.WithName(ToolCalculator)))
}

// NewNodeRegistry returns the review node functions plus node_calculate, which
// evaluates state["expression"] into state["result"].
func NewNodeRegistry() *graph.NodeRegistry {
	fns := review.Nodes()
	fns[FuncCalculate] = graph.NewTimeoutNode(FuncCalculate,
		langchain.ToolNode(ToolCalculator, "expression", "result"), CalculateTimeout)
	return graph.NewNodeRegistry(fns)
}
