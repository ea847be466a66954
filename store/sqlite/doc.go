// Package sqlite provides a SQLite-backed graph and run store for flowgraph,
// built on github.com/mattn/go-sqlite3 (cgo).
//
// Each graph and run is kept as one JSON document. Runs also record their
// graph ID and status in columns so they can be listed per graph.
//
// The default daemon path "file::memory:?cache=shared" keeps everything in
// process memory; point Path at a file to share records between processes.
//
//	store, err := sqlite.NewSqliteStore(sqlite.SqliteOptions{Path: "./flowgraph.db"})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
package sqlite
