// Package graph provides the graph execution engine for flowgraph.
//
// A graph is a set of named nodes, each bound to a node function by
// identifier, plus at most one default edge per node and a start node.
// A run executes a graph against a mutable state bag, one node at a time:
//
//  1. the current node's function is looked up in the NodeRegistry,
//  2. it is invoked with a private snapshot of the state and the read-only Tools,
//  3. the returned delta is merged into the state, overwriting on key,
//  4. a StepLog with an independent state snapshot is appended,
//  5. the next node is the function's override, or else the default edge.
//
// A run ends when there is no next node, or after the step cap
// (DefaultMaxSteps unless WithMaxSteps is given). Reaching the cap still
// reports StatusCompleted. A node function cannot end a run early on its own:
// an empty override falls through to the default edge.
//
// Any failure inside the loop, including a panic in a node function, marks
// the run StatusFailed and keeps the state and log accumulated so far.
// Only store errors, such as ErrNotFound for an unknown graph, are returned
// to the caller of RunGraph.
//
// # Example Usage
//
//	tools, _ := graph.NewToolRegistry(graph.NewTool("upper", upperFn))
//	nodes := graph.NewNodeRegistry(map[string]graph.NodeFunction{
//		"shout": graph.NodeFunc(func(ctx context.Context, state map[string]any, tools graph.Tools) (*graph.Result, error) {
//			out, err := graph.CallTool(ctx, tools, "upper", map[string]any{"text": state["text"]})
//			if err != nil {
//				return nil, err
//			}
//			return graph.Update(out), nil
//		}),
//	})
//
//	engine := graph.NewEngine(tools, nodes)
//	graphID, _ := engine.CreateGraph(ctx, map[string]string{"shout": "shout"}, nil, "shout")
//	run, err := engine.RunGraph(ctx, graphID, map[string]any{"text": "hi"})
//
// # Stores
//
// Graphs and runs live in a MemoryStore unless WithGraphStore or
// WithRunStore supply another backend (see the store/redis, store/sqlite
// and store/postgres packages).
//
// # Observability
//
// WithLogger routes lifecycle messages to a log.Logger. WithTracer emits
// TraceSpans for run start/end, node execution and edge traversal.
// Exporter renders a definition as Mermaid, DOT or an ASCII path.
package graph
