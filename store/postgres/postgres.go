package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smallnest/flowgraph/graph"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements graph.GraphStore and graph.RunStore using PostgreSQL
type PostgresStore struct {
	pool        DBPool
	graphsTable string
	runsTable   string
}

var (
	_ graph.GraphStore = (*PostgresStore)(nil)
	_ graph.RunStore   = (*PostgresStore)(nil)
	_ graph.RunLister  = (*PostgresStore)(nil)
)

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString  string
	TablePrefix string // Default "flowgraph_"
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(ctx context.Context, opts PostgresOptions) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewPostgresStoreWithPool(pool, opts.TablePrefix), nil
}

// NewPostgresStoreWithPool creates a new Postgres store with an existing pool
// Useful for testing with mocks
func NewPostgresStoreWithPool(pool DBPool, tablePrefix string) *PostgresStore {
	if tablePrefix == "" {
		tablePrefix = "flowgraph_"
	}
	return &PostgresStore{
		pool:        pool,
		graphsTable: tablePrefix + "graphs",
		runsTable:   tablePrefix + "runs",
	}
}

// InitSchema creates the necessary tables if they don't exist
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			definition JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			graph_id TEXT NOT NULL,
			status TEXT NOT NULL,
			record JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_%s_graph_id ON %s (graph_id);
	`, s.graphsTable, s.runsTable, s.runsTable, s.runsTable)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// SaveGraph stores a graph definition
func (s *PostgresStore) SaveGraph(ctx context.Context, g *graph.GraphDefinition) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, definition, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			definition = EXCLUDED.definition,
			created_at = EXCLUDED.created_at
	`, s.graphsTable)

	if _, err := s.pool.Exec(ctx, query, g.ID, data, g.CreatedAt); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	return nil
}

// LoadGraph retrieves a graph by ID
func (s *PostgresStore) LoadGraph(ctx context.Context, graphID string) (*graph.GraphDefinition, error) {
	query := fmt.Sprintf("SELECT definition FROM %s WHERE id = $1", s.graphsTable)

	var data []byte
	if err := s.pool.QueryRow(ctx, query, graphID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, graph.GraphNotFound(graphID)
		}
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	var g graph.GraphDefinition
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return &g, nil
}

// SaveRun stores or replaces a run record
func (s *PostgresStore) SaveRun(ctx context.Context, run *graph.RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, graph_id, status, record, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			record = EXCLUDED.record,
			updated_at = NOW()
	`, s.runsTable)

	if _, err := s.pool.Exec(ctx, query, run.ID, run.GraphID, string(run.Status), data); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// LoadRun retrieves a run by ID
func (s *PostgresStore) LoadRun(ctx context.Context, runID string) (*graph.RunRecord, error) {
	query := fmt.Sprintf("SELECT record FROM %s WHERE id = $1", s.runsTable)

	var data []byte
	if err := s.pool.QueryRow(ctx, query, runID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, graph.RunNotFound(runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	var run graph.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the IDs of a graph's runs, oldest update first
func (s *PostgresStore) ListRuns(ctx context.Context, graphID string) ([]string, error) {
	query := fmt.Sprintf("SELECT id FROM %s WHERE graph_id = $1 ORDER BY updated_at ASC", s.runsTable)

	rows, err := s.pool.Query(ctx, query, graphID)
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
