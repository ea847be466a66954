package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/smallnest/flowgraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_InitSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStoreWithPool(mock, "")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS flowgraph_graphs")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, store.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveGraph(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStoreWithPool(mock, "fg_")

	g := &graph.GraphDefinition{
		ID:        "g-1",
		Nodes:     map[string]string{"a": "fa"},
		Edges:     map[string]string{"a": ""},
		StartNode: "a",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, _ := json.Marshal(g)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fg_graphs")).
		WithArgs(g.ID, data, g.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, store.SaveGraph(context.Background(), g))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadGraph(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStoreWithPool(mock, "")

	data, _ := json.Marshal(&graph.GraphDefinition{
		ID:        "g-1",
		Nodes:     map[string]string{"a": "fa"},
		StartNode: "a",
	})
	rows := pgxmock.NewRows([]string{"definition"}).AddRow(data)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT definition FROM flowgraph_graphs WHERE id = $1")).
		WithArgs("g-1").
		WillReturnRows(rows)

	loaded, err := store.LoadGraph(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.StartNode)
	assert.Equal(t, "fa", loaded.Nodes["a"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadGraph_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStoreWithPool(mock, "")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT definition FROM flowgraph_graphs WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	loaded, err := store.LoadGraph(context.Background(), "missing")
	assert.Nil(t, loaded)
	assert.ErrorIs(t, err, graph.ErrNotFound)
	assert.Contains(t, err.Error(), "graph not found: missing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStoreWithPool(mock, "")

	run := &graph.RunRecord{
		ID:      "r-1",
		GraphID: "g-1",
		State:   map[string]any{"x": 1},
		Log:     []graph.StepLog{},
		Status:  graph.StatusRunning,
	}
	data, _ := json.Marshal(run)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO flowgraph_runs")).
		WithArgs("r-1", "g-1", "running", data).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, store.SaveRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRun_DatabaseError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStoreWithPool(mock, "")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO flowgraph_runs")).
		WillReturnError(errors.New("connection reset"))

	err = store.SaveRun(context.Background(), &graph.RunRecord{ID: "r-1", Status: graph.StatusRunning})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStoreWithPool(mock, "")

	data, _ := json.Marshal(&graph.RunRecord{
		ID:      "r-1",
		GraphID: "g-1",
		State:   map[string]any{"x": 2},
		Log:     []graph.StepLog{{Node: "a", Function: "fa", StateSnapshot: map[string]any{"x": 2}}},
		Status:  graph.StatusFailed,
		Error:   "boom",
	})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT record FROM flowgraph_runs WHERE id = $1")).
		WithArgs("r-1").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(data))

	loaded, err := store.LoadRun(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, graph.StatusFailed, loaded.Status)
	assert.Equal(t, "boom", loaded.Error)
	assert.Len(t, loaded.Log, 1)
	assert.Equal(t, float64(2), loaded.State["x"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadRun_Errors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStoreWithPool(mock, "")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT record FROM flowgraph_runs WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT record FROM flowgraph_runs WHERE id = $1")).
		WithArgs("r-1").
		WillReturnError(errors.New("database connection failed"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT record FROM flowgraph_runs WHERE id = $1")).
		WithArgs("r-2").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow([]byte("{not json")))

	_, err = store.LoadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, graph.ErrNotFound)

	_, err = store.LoadRun(context.Background(), "r-1")
	assert.Contains(t, err.Error(), "failed to load run")

	_, err = store.LoadRun(context.Background(), "r-2")
	assert.Contains(t, err.Error(), "failed to unmarshal run")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStoreWithPool(mock, "")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM flowgraph_runs WHERE graph_id = $1")).
		WithArgs("g-1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("r-1").AddRow("r-2"))

	ids, err := store.ListRuns(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r-1", "r-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
