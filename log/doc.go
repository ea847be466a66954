// Package log provides the leveled logging interface used by flowgraph.
//
// The engine, the HTTP server and the command line tools log through Logger,
// a printf-style interface. GologLogger backs it with github.com/kataras/golog;
// NoOpLogger discards everything and is handy in tests.
//
//	logger := log.New(os.Stderr, log.LogLevelDebug)
//	logger.Info("run %s completed after %d steps", runID, steps)
//
// ParseLevel turns the textual levels used in configuration ("debug",
// "info", "warn", "error", "none") into a LogLevel.
//
// Engines built without a logger use GetDefaultLogger, an info-level
// GologLogger on stderr until SetDefaultLogger replaces it.
package log
