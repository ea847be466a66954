package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/smallnest/flowgraph/graph"
)

// SqliteStore implements graph.GraphStore and graph.RunStore using SQLite
type SqliteStore struct {
	db          *sql.DB
	graphsTable string
	runsTable   string
}

var (
	_ graph.GraphStore = (*SqliteStore)(nil)
	_ graph.RunStore   = (*SqliteStore)(nil)
	_ graph.RunLister  = (*SqliteStore)(nil)
)

// SqliteOptions configuration for SQLite connection
type SqliteOptions struct {
	Path        string
	TablePrefix string // Default "flowgraph_"
}

// NewSqliteStore opens the database and creates the tables if needed
func NewSqliteStore(opts SqliteOptions) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	// A single connection keeps in-memory databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	prefix := opts.TablePrefix
	if prefix == "" {
		prefix = "flowgraph_"
	}

	store := &SqliteStore{
		db:          db,
		graphsTable: prefix + "graphs",
		runsTable:   prefix + "runs",
	}

	if err := store.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// InitSchema creates the necessary tables if they don't exist
func (s *SqliteStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			definition TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			graph_id TEXT NOT NULL,
			status TEXT NOT NULL,
			record TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_%s_graph_id ON %s (graph_id);
	`, s.graphsTable, s.runsTable, s.runsTable, s.runsTable)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// SaveGraph stores a graph definition
func (s *SqliteStore) SaveGraph(ctx context.Context, g *graph.GraphDefinition) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, definition, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			definition = excluded.definition,
			created_at = excluded.created_at
	`, s.graphsTable)

	if _, err := s.db.ExecContext(ctx, query, g.ID, string(data), g.CreatedAt); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	return nil
}

// LoadGraph retrieves a graph by ID
func (s *SqliteStore) LoadGraph(ctx context.Context, graphID string) (*graph.GraphDefinition, error) {
	query := fmt.Sprintf("SELECT definition FROM %s WHERE id = ?", s.graphsTable)

	var data string
	if err := s.db.QueryRowContext(ctx, query, graphID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, graph.GraphNotFound(graphID)
		}
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	var g graph.GraphDefinition
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return &g, nil
}

// SaveRun stores or replaces a run record
func (s *SqliteStore) SaveRun(ctx context.Context, run *graph.RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, graph_id, status, record, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			record = excluded.record,
			updated_at = CURRENT_TIMESTAMP
	`, s.runsTable)

	if _, err := s.db.ExecContext(ctx, query, run.ID, run.GraphID, string(run.Status), string(data)); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// LoadRun retrieves a run by ID
func (s *SqliteStore) LoadRun(ctx context.Context, runID string) (*graph.RunRecord, error) {
	query := fmt.Sprintf("SELECT record FROM %s WHERE id = ?", s.runsTable)

	var data string
	if err := s.db.QueryRowContext(ctx, query, runID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, graph.RunNotFound(runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var run graph.RunRecord
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the IDs of a graph's runs, oldest update first
func (s *SqliteStore) ListRuns(ctx context.Context, graphID string) ([]string, error) {
	query := fmt.Sprintf("SELECT id FROM %s WHERE graph_id = ? ORDER BY updated_at ASC, id ASC", s.runsTable)

	rows, err := s.db.QueryContext(ctx, query, graphID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return ids, nil
}
