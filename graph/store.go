package graph

import (
	"context"
	"fmt"
	"sync"
)

// GraphStore persists graph definitions.
type GraphStore interface {
	// SaveGraph stores a graph definition
	SaveGraph(ctx context.Context, g *GraphDefinition) error

	// LoadGraph retrieves a graph by ID
	LoadGraph(ctx context.Context, graphID string) (*GraphDefinition, error)
}

// RunStore persists run records.
type RunStore interface {
	// SaveRun stores or replaces a run record
	SaveRun(ctx context.Context, run *RunRecord) error

	// LoadRun retrieves a run by ID
	LoadRun(ctx context.Context, runID string) (*RunRecord, error)
}

// RunLister is implemented by run stores that can enumerate a graph's runs.
type RunLister interface {
	// ListRuns returns the IDs of the runs recorded for a graph.
	// A graph without runs yields an empty list, not an error.
	ListRuns(ctx context.Context, graphID string) ([]string, error)
}

// GraphNotFound wraps ErrNotFound for a graph id.
func GraphNotFound(graphID string) error {
	return fmt.Errorf("graph %w: %s", ErrNotFound, graphID)
}

// RunNotFound wraps ErrNotFound for a run id.
func RunNotFound(runID string) error {
	return fmt.Errorf("run %w: %s", ErrNotFound, runID)
}

// MemoryStore keeps graphs and runs in process memory.
// Records are cloned on the way in and out.
type MemoryStore struct {
	graphs    map[string]*GraphDefinition
	runs      map[string]*RunRecord
	graphRuns map[string][]string
	mutex     sync.RWMutex
}

var (
	_ GraphStore = (*MemoryStore)(nil)
	_ RunStore   = (*MemoryStore)(nil)
	_ RunLister  = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		graphs:    make(map[string]*GraphDefinition),
		runs:      make(map[string]*RunRecord),
		graphRuns: make(map[string][]string),
	}
}

// SaveGraph implements GraphStore.
func (m *MemoryStore) SaveGraph(_ context.Context, g *GraphDefinition) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.graphs[g.ID] = g.Clone()
	return nil
}

// LoadGraph implements GraphStore.
func (m *MemoryStore) LoadGraph(_ context.Context, graphID string) (*GraphDefinition, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	g, ok := m.graphs[graphID]
	if !ok {
		return nil, GraphNotFound(graphID)
	}
	return g.Clone(), nil
}

// SaveRun implements RunStore.
func (m *MemoryStore) SaveRun(_ context.Context, run *RunRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.runs[run.ID]; !ok {
		m.graphRuns[run.GraphID] = append(m.graphRuns[run.GraphID], run.ID)
	}
	m.runs[run.ID] = run.Clone()
	return nil
}

// LoadRun implements RunStore.
func (m *MemoryStore) LoadRun(_ context.Context, runID string) (*RunRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, RunNotFound(runID)
	}
	return run.Clone(), nil
}

// ListRuns implements RunLister. IDs come back in the order runs were first saved.
func (m *MemoryStore) ListRuns(_ context.Context, graphID string) ([]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return append([]string{}, m.graphRuns[graphID]...), nil
}
