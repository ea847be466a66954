// Command flowgraphd serves the graph engine over HTTP.
//
// Configuration comes from FLOWGRAPH_* environment variables, see package config.
// On start the code review pipeline is registered and its graph id is logged.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/smallnest/flowgraph/builtins"
	"github.com/smallnest/flowgraph/config"
	"github.com/smallnest/flowgraph/graph"
	"github.com/smallnest/flowgraph/log"
	"github.com/smallnest/flowgraph/review"
	"github.com/smallnest/flowgraph/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "flowgraphd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, cfg.Level())
	log.SetDefaultLogger(logger)

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.close()

	engine, err := newEngine(cfg, stores, logger)
	if err != nil {
		return err
	}

	graphID, err := review.RegisterPipeline(ctx, engine)
	if err != nil {
		return err
	}
	logger.Info("pre-registered code review graph: %s", graphID)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.New(engine, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s (store %s, max steps %d)", cfg.HTTPAddr, cfg.Store, engine.MaxSteps())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newEngine(cfg config.Config, stores *storeSet, logger log.Logger) (*graph.Engine, error) {
	tools, err := builtins.NewToolRegistry()
	if err != nil {
		return nil, err
	}

	opts := []graph.Option{
		graph.WithGraphStore(stores.graphs),
		graph.WithRunStore(stores.runs),
		graph.WithMaxSteps(cfg.MaxSteps),
		graph.WithLogger(logger),
	}
	if cfg.Level() == log.LogLevelDebug {
		opts = append(opts, graph.WithTracer(graph.NewHookTracer(graph.LogHook(logger))))
	}
	return graph.NewEngine(tools, builtins.NewNodeRegistry(), opts...), nil
}
