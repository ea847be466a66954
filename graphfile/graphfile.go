// Package graphfile reads graph definitions from YAML documents.
//
// JSON is a subset of YAML, so JSON files are accepted as well. A minimal file:
//
//	start_node: a
//	nodes:
//	  a: node_a
//	  b: node_b
//	edges:
//	  a: b
//	  b: null
//	initial_state:
//	  counter: 3
package graphfile

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/smallnest/flowgraph/graph"
	"gopkg.in/yaml.v3"
)

// File is a graph definition plus an optional initial state.
type File struct {
	Name         string            `yaml:"name,omitempty"`
	StartNode    string            `yaml:"start_node"`
	Nodes        map[string]string `yaml:"nodes"`
	Edges        map[string]string `yaml:"edges,omitempty"`
	InitialState map[string]any    `yaml:"initial_state,omitempty"`
	MaxSteps     int               `yaml:"max_steps,omitempty"`
}

// LoadFile reads and parses a graph file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a graph document. Null edge targets become "" (no default edge).
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if f.Nodes == nil {
		f.Nodes = map[string]string{}
	}
	if f.Edges == nil {
		f.Edges = map[string]string{}
	}
	if f.InitialState == nil {
		f.InitialState = map[string]any{}
	}
	return &f, nil
}

// LoadState reads a state mapping from a YAML or JSON file.
func LoadState(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var state map[string]any
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if state == nil {
		state = map[string]any{}
	}
	return state, nil
}

// Definition converts the file into a graph definition without an id.
func (f *File) Definition() *graph.GraphDefinition {
	g := &graph.GraphDefinition{
		ID:        f.Name,
		Nodes:     f.Nodes,
		Edges:     f.Edges,
		StartNode: f.StartNode,
	}
	return g.Clone()
}

// Validate reports references to nodes that do not exist. The engine itself
// never validates, so callers decide whether these are fatal.
func (f *File) Validate() error {
	var errs []error
	if f.StartNode == "" {
		errs = append(errs, errors.New("start_node is empty"))
	} else if _, ok := f.Nodes[f.StartNode]; !ok {
		errs = append(errs, fmt.Errorf("start_node %q is not a node", f.StartNode))
	}

	froms := make([]string, 0, len(f.Edges))
	for from := range f.Edges {
		froms = append(froms, from)
	}
	slices.Sort(froms)
	for _, from := range froms {
		to := f.Edges[from]
		if _, ok := f.Nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("edge source %q is not a node", from))
		}
		if to != "" {
			if _, ok := f.Nodes[to]; !ok {
				errs = append(errs, fmt.Errorf("edge %s -> %s targets an unknown node", from, to))
			}
		}
	}
	return errors.Join(errs...)
}

// Marshal encodes the file back to YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
