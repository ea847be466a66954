// Package langchain connects langchaingo tools to flowgraph.
//
// FromTool wraps any github.com/tmc/langchaingo/tools.Tool so it can be
// registered in a graph.ToolRegistry. ToolNode builds a node function that
// feeds one state key into a registered tool and writes the result back:
//
//	registry, _ := graph.NewToolRegistry(langchain.FromTool(tools.Calculator{}))
//	nodes := graph.NewNodeRegistry(map[string]graph.NodeFunction{
//		"node_calculate": langchain.ToolNode("calculator", "expression", "result"),
//	})
package langchain
