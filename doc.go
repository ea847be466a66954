// Package flowgraph runs user-defined directed graphs of named nodes against a
// shared state.
//
// A graph maps node names to registered node functions and carries one
// optional default edge per node. A run starts at the graph's start node and
// repeats one step until it has no next node or hits the step cap. Each step
// calls the node's function with a snapshot of the state, merges the returned
// keys into the state (overwrite on key), logs a snapshot and picks the next
// node. The node's own choice wins over the default edge.
//
// # Quick Start
//
//	tools, _ := graph.NewToolRegistry(graph.NewTool("double", func(ctx context.Context, args map[string]any) (map[string]any, error) {
//		return map[string]any{"n": args["n"].(int) * 2}, nil
//	}))
//
//	nodes := graph.NewNodeRegistry(map[string]graph.NodeFunction{
//		"node_double": graph.NodeFunc(func(ctx context.Context, state map[string]any, tools graph.Tools) (*graph.Result, error) {
//			out, err := graph.CallTool(ctx, tools, "double", map[string]any{"n": state["n"]})
//			if err != nil {
//				return nil, err
//			}
//			return graph.Update(out), nil
//		}),
//	})
//
//	engine := graph.NewEngine(tools, nodes)
//	id, _ := engine.CreateGraph(ctx, map[string]string{"a": "node_double", "b": "node_double"},
//		map[string]string{"a": "b"}, "a")
//	run, _ := engine.RunGraph(ctx, id, map[string]any{"n": 1})
//	fmt.Println(run.Status, run.State["n"]) // completed 4
//
// # Packages
//
//   - graph: data model, registries, the execution engine, in-memory store,
//     tracing, retry and timeout wrappers, Mermaid/DOT rendering
//   - store/redis, store/sqlite, store/postgres: persistent graph and run stores
//   - adapter/langchain: langchaingo tools as flowgraph tools and nodes
//   - review: the code review pipeline (tools, node functions, graph)
//   - builtins: the tool and node registries shipped with the binaries
//   - server: the HTTP API
//   - config: FLOWGRAPH_* environment configuration
//   - graphfile: YAML graph files
//   - log: the logging interface and its golog backend
//
// The cmd/flowgraphd daemon serves the HTTP API; cmd/flowgraph runs and draws
// graph files from the command line.
package flowgraph // import "github.com/smallnest/flowgraph"
