// Package server exposes a graph.Engine over HTTP with JSON bodies.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/smallnest/flowgraph/graph"
	"github.com/smallnest/flowgraph/log"
)

const maxBodyBytes = 4 << 20

// Server routes HTTP requests to an engine.
type Server struct {
	engine *graph.Engine
	logger log.Logger
	mux    *http.ServeMux
}

// New creates a server. A nil logger discards request logs.
func New(engine *graph.Engine, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NoOpLogger{}
	}
	s := &Server{
		engine: engine,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.register(s.mux)
	return s
}

func (s *Server) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /graph/create", s.handleCreateGraph)
	mux.HandleFunc("POST /graph/run", s.handleRunGraph)
	mux.HandleFunc("GET /graph/state/{run_id}", s.handleRunState)
	mux.HandleFunc("GET /graph/runs/{graph_id}", s.handleListRuns)
	mux.HandleFunc("GET /graph/{graph_id}", s.handleGetGraph)
}

// ServeHTTP logs each request and dispatches it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
}

type createGraphRequest struct {
	Nodes     map[string]string `json:"nodes"`
	Edges     map[string]string `json:"edges"`
	StartNode *string           `json:"start_node"`
}

type createGraphResponse struct {
	GraphID string `json:"graph_id"`
}

type runGraphRequest struct {
	GraphID      string         `json:"graph_id"`
	InitialState map[string]any `json:"initial_state"`
}

type runGraphResponse struct {
	RunID      string          `json:"run_id"`
	Status     graph.RunStatus `json:"status"`
	FinalState map[string]any  `json:"final_state"`
	Log        []graph.StepLog `json:"log"`
	Error      *string         `json:"error"`
}

type runStateResponse struct {
	RunID     string          `json:"run_id"`
	Status    graph.RunStatus `json:"status"`
	State     map[string]any  `json:"state"`
	LogLength int             `json:"log_length"`
	Error     *string         `json:"error"`
}

type listRunsResponse struct {
	GraphID string   `json:"graph_id"`
	RunIDs  []string `json:"run_ids"`
}

type graphResponse struct {
	*graph.GraphDefinition
	Mermaid string `json:"mermaid"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var req createGraphRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Nodes == nil || req.StartNode == nil {
		writeError(w, http.StatusBadRequest, "nodes and start_node are required")
		return
	}

	id, err := s.engine.CreateGraph(r.Context(), req.Nodes, req.Edges, *req.StartNode)
	if err != nil {
		s.internalError(w, "create graph", err)
		return
	}
	s.logger.Info("created graph %s (%d nodes)", id, len(req.Nodes))
	writeJSON(w, http.StatusOK, createGraphResponse{GraphID: id})
}

func (s *Server) handleRunGraph(w http.ResponseWriter, r *http.Request) {
	var req runGraphRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.engine.RunGraph(r.Context(), req.GraphID, req.InitialState)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) && run == nil {
			writeError(w, http.StatusNotFound, "Graph not found")
			return
		}
		s.internalError(w, "run graph", err)
		return
	}

	writeJSON(w, http.StatusOK, runGraphResponse{
		RunID:      run.ID,
		Status:     run.Status,
		FinalState: run.State,
		Log:        run.Log,
		Error:      optional(run.Error),
	})
}

func (s *Server) handleRunState(w http.ResponseWriter, r *http.Request) {
	run, err := s.engine.GetRun(r.Context(), r.PathValue("run_id"))
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Run not found")
			return
		}
		s.internalError(w, "load run", err)
		return
	}

	writeJSON(w, http.StatusOK, runStateResponse{
		RunID:     run.ID,
		Status:    run.Status,
		State:     run.State,
		LogLength: len(run.Log),
		Error:     optional(run.Error),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	graphID := r.PathValue("graph_id")
	ids, err := s.engine.ListRuns(r.Context(), graphID)
	switch {
	case errors.Is(err, graph.ErrNotFound):
		writeError(w, http.StatusNotFound, "Graph not found")
		return
	case errors.Is(err, graph.ErrListUnsupported):
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	case err != nil:
		s.internalError(w, "list runs", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, listRunsResponse{GraphID: graphID, RunIDs: ids})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.engine.GetGraph(r.Context(), r.PathValue("graph_id"))
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Graph not found")
			return
		}
		s.internalError(w, "load graph", err)
		return
	}
	writeJSON(w, http.StatusOK, graphResponse{GraphDefinition: g, Mermaid: graph.DrawMermaid(g)})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("invalid JSON: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
