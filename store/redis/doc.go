// Package redis provides a Redis-backed graph and run store for flowgraph.
//
// Graphs and runs are stored as JSON strings under "<prefix>graph:<id>" and
// "<prefix>run:<id>"; run IDs are also indexed in a set per graph. A TTL,
// when set, applies to every key written.
//
// Values decoded from JSON come back with JSON types: numbers in state are
// float64 and lists are []any.
//
//	store := redis.NewRedisStore(redis.RedisOptions{Addr: "localhost:6379", TTL: time.Hour})
//	engine := graph.NewEngine(tools, nodes,
//		graph.WithGraphStore(store),
//		graph.WithRunStore(store),
//	)
package redis
