package graph

import (
	"maps"
	"time"
)

// RunStatus is the lifecycle status of a run.
type RunStatus string

const (
	// StatusRunning is set while the engine is driving the run.
	StatusRunning RunStatus = "running"

	// StatusCompleted is set when the run reached the terminal state or the step cap.
	StatusCompleted RunStatus = "completed"

	// StatusFailed is set when a step aborted the run.
	StatusFailed RunStatus = "failed"
)

// GraphDefinition is an immutable graph of named nodes.
type GraphDefinition struct {
	// ID is the generated identifier of the graph.
	ID string `json:"id"`

	// Nodes maps a node name to the identifier of its node function.
	Nodes map[string]string `json:"nodes"`

	// Edges maps a node name to its default next node.
	// An empty value or a missing entry means the node has no default edge.
	Edges map[string]string `json:"edges"`

	// StartNode is the node executed first.
	StartNode string `json:"start_node"`

	// CreatedAt is when the graph was registered.
	CreatedAt time.Time `json:"created_at"`
}

// Next returns the default edge of a node, or "" when there is none.
func (g *GraphDefinition) Next(node string) string {
	return g.Edges[node]
}

// Clone returns a copy that shares no maps with g.
func (g *GraphDefinition) Clone() *GraphDefinition {
	if g == nil {
		return nil
	}
	c := *g
	c.Nodes = maps.Clone(g.Nodes)
	c.Edges = maps.Clone(g.Edges)
	return &c
}

// StepLog records one executed step.
type StepLog struct {
	Node     string `json:"node"`
	Function string `json:"function"`

	// StateSnapshot is an independent copy of the run state right after the step merged.
	StateSnapshot map[string]any `json:"state_snapshot"`
}

// RunRecord is one execution of a graph.
type RunRecord struct {
	ID         string         `json:"id"`
	GraphID    string         `json:"graph_id"`
	State      map[string]any `json:"state"`
	Log        []StepLog      `json:"log"`
	Status     RunStatus      `json:"status"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at,omitzero"`
}

// Clone returns a deep copy of the record, including state and snapshots.
func (r *RunRecord) Clone() *RunRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.State = CloneState(r.State)
	c.Log = make([]StepLog, len(r.Log))
	for i, step := range r.Log {
		c.Log[i] = StepLog{
			Node:          step.Node,
			Function:      step.Function,
			StateSnapshot: CloneState(step.StateSnapshot),
		}
	}
	return &c
}

// Done reports whether the run left the running status.
func (r *RunRecord) Done() bool {
	return r.Status != StatusRunning
}
