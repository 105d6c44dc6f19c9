package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestConnect(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	db, err := Connect(ctx, dbPath)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"invocations", "goose_db_version"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
	for _, idx := range []string{"idx_invocations_workflow", "idx_invocations_started"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&name)
		if err != nil {
			t.Errorf("index %s not found: %v", idx, err)
		}
	}
}

func TestConnectTwiceIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		db, err := Connect(ctx, dbPath)
		if err != nil {
			t.Fatalf("Connect #%d failed: %v", i+1, err)
		}
		db.Close()
	}
}

func TestConnectRequiresPath(t *testing.T) {
	if _, err := Connect(context.Background(), ""); err == nil {
		t.Fatal("Connect with empty path should fail")
	}
}

func TestInvocationQueries(t *testing.T) {
	ctx := context.Background()
	db, q, err := ConnectWithQueries(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("ConnectWithQueries failed: %v", err)
	}
	defer db.Close()

	rows := []Invocation{
		{ID: "a1", Workflow: "deploy", ArgumentsJson: "{}", Status: "ok", Source: "mcp", StartedAt: 100},
		{ID: "a2", Workflow: "deploy", ArgumentsJson: `{"env":"prod"}`, Status: "ok", Source: "cli", StartedAt: 200, DurationMs: 5},
		{ID: "b1", Workflow: "nope", ArgumentsJson: "{}", Status: "not_found", Source: "mcp", StartedAt: 300,
			ErrorMessage: sql.NullString{String: "Workflow not found: nope", Valid: true}},
	}
	for _, r := range rows {
		if err := q.CreateInvocation(ctx, r); err != nil {
			t.Fatalf("CreateInvocation(%s) failed: %v", r.ID, err)
		}
	}

	got, err := q.GetInvocation(ctx, "b1")
	if err != nil {
		t.Fatalf("GetInvocation failed: %v", err)
	}
	if got.Status != "not_found" || got.ErrorMessage.String != "Workflow not found: nope" {
		t.Errorf("GetInvocation = %+v", got)
	}
	if _, err := q.GetInvocation(ctx, "zz"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetInvocation(missing) error = %v, want sql.ErrNoRows", err)
	}

	all, err := q.ListInvocations(ctx, 10)
	if err != nil {
		t.Fatalf("ListInvocations failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "b1" {
		t.Errorf("ListInvocations = %+v, want newest first", all)
	}

	deploys, err := q.ListInvocationsByWorkflow(ctx, ListInvocationsByWorkflowParams{Workflow: "deploy", Limit: 1})
	if err != nil {
		t.Fatalf("ListInvocationsByWorkflow failed: %v", err)
	}
	if len(deploys) != 1 || deploys[0].ID != "a2" {
		t.Errorf("ListInvocationsByWorkflow = %+v", deploys)
	}

	prefixed, err := q.GetInvocationsByPrefix(ctx, "a")
	if err != nil {
		t.Fatalf("GetInvocationsByPrefix failed: %v", err)
	}
	if len(prefixed) != 2 {
		t.Errorf("GetInvocationsByPrefix = %+v", prefixed)
	}

	pruned, err := q.PruneInvocations(ctx, 250)
	if err != nil {
		t.Fatalf("PruneInvocations failed: %v", err)
	}
	if pruned != 2 {
		t.Errorf("PruneInvocations removed %d rows, want 2", pruned)
	}
}
