package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/flowgraph/graph"
)

// RedisStore implements graph.GraphStore and graph.RunStore using Redis
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var (
	_ graph.GraphStore = (*RedisStore)(nil)
	_ graph.RunStore   = (*RedisStore)(nil)
	_ graph.RunLister  = (*RedisStore)(nil)
)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "flowgraph:"
	TTL      time.Duration // Expiration for graphs and runs, default 0 (no expiration)
}

// NewRedisStore creates a new Redis store
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisStoreWithClient(client, opts.Prefix, opts.TTL)
}

// NewRedisStoreWithClient creates a store over an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "flowgraph:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Ping checks connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) graphKey(id string) string {
	return fmt.Sprintf("%sgraph:%s", s.prefix, id)
}

func (s *RedisStore) runKey(id string) string {
	return fmt.Sprintf("%srun:%s", s.prefix, id)
}

func (s *RedisStore) graphRunsKey(graphID string) string {
	return fmt.Sprintf("%sgraph:%s:runs", s.prefix, graphID)
}

// SaveGraph stores a graph definition
func (s *RedisStore) SaveGraph(ctx context.Context, g *graph.GraphDefinition) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	if err := s.client.Set(ctx, s.graphKey(g.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save graph to redis: %w", err)
	}
	return nil
}

// LoadGraph retrieves a graph by ID
func (s *RedisStore) LoadGraph(ctx context.Context, graphID string) (*graph.GraphDefinition, error) {
	data, err := s.client.Get(ctx, s.graphKey(graphID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, graph.GraphNotFound(graphID)
		}
		return nil, fmt.Errorf("failed to load graph from redis: %w", err)
	}

	var g graph.GraphDefinition
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return &g, nil
}

// SaveRun stores a run record and indexes it under its graph
func (s *RedisStore) SaveRun(ctx context.Context, run *graph.RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.runKey(run.ID), data, s.ttl)

	indexKey := s.graphRunsKey(run.GraphID)
	pipe.SAdd(ctx, indexKey, run.ID)
	if s.ttl > 0 {
		pipe.Expire(ctx, indexKey, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}
	return nil
}

// LoadRun retrieves a run by ID
func (s *RedisStore) LoadRun(ctx context.Context, runID string) (*graph.RunRecord, error) {
	data, err := s.client.Get(ctx, s.runKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, graph.RunNotFound(runID)
		}
		return nil, fmt.Errorf("failed to load run from redis: %w", err)
	}

	var run graph.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the IDs of the runs recorded for a graph, sorted
func (s *RedisStore) ListRuns(ctx context.Context, graphID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.graphRunsKey(graphID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for graph %s: %w", graphID, err)
	}
	if ids == nil {
		ids = []string{}
	}
	slices.Sort(ids)
	return ids, nil
}
