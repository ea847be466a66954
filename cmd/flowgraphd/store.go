package main

import (
	"context"
	"fmt"

	"github.com/smallnest/flowgraph/config"
	"github.com/smallnest/flowgraph/graph"
	"github.com/smallnest/flowgraph/log"
	"github.com/smallnest/flowgraph/store/postgres"
	"github.com/smallnest/flowgraph/store/redis"
	"github.com/smallnest/flowgraph/store/sqlite"
)

type storeSet struct {
	graphs graph.GraphStore
	runs   graph.RunStore
	close  func()
}

func openStores(ctx context.Context, cfg config.Config, logger log.Logger) (*storeSet, error) {
	switch cfg.Store {
	case config.StoreRedis:
		s := redis.NewRedisStore(redis.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.RedisTTL,
		})
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("using redis store at %s", cfg.RedisAddr)
		return &storeSet{graphs: s, runs: s, close: func() { _ = s.Close() }}, nil

	case config.StoreSqlite:
		s, err := sqlite.NewSqliteStore(sqlite.SqliteOptions{Path: cfg.SqlitePath})
		if err != nil {
			return nil, err
		}
		logger.Info("using sqlite store at %s", cfg.SqlitePath)
		return &storeSet{graphs: s, runs: s, close: func() { _ = s.Close() }}, nil

	case config.StorePostgres:
		s, err := postgres.NewPostgresStore(ctx, postgres.PostgresOptions{ConnString: cfg.PostgresDSN})
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
		logger.Info("using postgres store")
		return &storeSet{graphs: s, runs: s, close: s.Close}, nil

	default:
		s := graph.NewMemoryStore()
		logger.Info("using in-memory store")
		return &storeSet{graphs: s, runs: s, close: func() {}}, nil
	}
}
