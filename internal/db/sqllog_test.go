package db

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu    sync.Mutex
	attrs []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := map[string]slog.Value{
		"msg":   slog.StringValue(r.Message),
		"level": slog.StringValue(r.Level.String()),
	}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.attrs = append(h.attrs, m)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) last(t *testing.T) map[string]slog.Value {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.attrs) == 0 {
		t.Fatal("expected at least one sql log record")
	}
	return h.attrs[len(h.attrs)-1]
}

func (h *captureHandler) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attrs = nil
}

func openLogged(t *testing.T) (*sql.DB, *captureHandler) {
	t.Helper()
	h := &captureHandler{}
	db := sql.OpenDB(NewLoggingConnector(":memory:", slog.New(h)))
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db, h
}

func TestLoggingConnector_ExecAndQueryLogged(t *testing.T) {
	db, h := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	got := h.last(t)
	if got["op"].String() != "exec" || got["sql"].String() != `CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)` {
		t.Errorf("exec record = %v", got)
	}

	h.reset()
	var one int
	if err := db.QueryRow(`SELECT 1`).Scan(&one); err != nil {
		t.Fatalf("query row: %v", err)
	}
	got = h.last(t)
	if got["op"].String() != "query" || got["sql"].String() != `SELECT 1` {
		t.Errorf("query record = %v", got)
	}
	if got["level"].String() != slog.LevelDebug.String() {
		t.Errorf("level = %s, want DEBUG", got["level"])
	}
}

func TestLoggingConnector_ArgsFormatted(t *testing.T) {
	db, h := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER, name TEXT, blob BLOB)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	h.reset()

	if _, err := db.Exec(`INSERT INTO t (id, name, blob) VALUES (?, ?, ?)`, 1, nil, []byte("raw")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	args, ok := h.last(t)["args"].Any().([]string)
	if !ok {
		t.Fatalf("args attr has type %T, want []string", h.last(t)["args"].Any())
	}
	want := []string{"1", "NULL", "raw"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestLoggingConnector_PreparedStatementLogged(t *testing.T) {
	db, h := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	stmt, err := db.Prepare(`INSERT INTO t (id) VALUES (?)`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer stmt.Close()
	h.reset()

	if _, err := stmt.Exec(42); err != nil {
		t.Fatalf("stmt exec: %v", err)
	}
	got := h.last(t)
	if got["sql"].String() != `INSERT INTO t (id) VALUES (?)` {
		t.Errorf("sql = %q", got["sql"].String())
	}
}

func TestLoggingConnector_ErrorLoggedAtWarn(t *testing.T) {
	db, h := openLogged(t)

	if _, err := db.Exec(`SELECT * FROM missing_table`); err == nil {
		t.Fatal("expected error for missing table")
	}
	got := h.last(t)
	if got["level"].String() != slog.LevelWarn.String() {
		t.Errorf("level = %s, want WARN", got["level"])
	}
	if _, ok := got["error"]; !ok {
		t.Error("expected error attribute")
	}
}

func TestLoggingConnector_TransactionsWork(t *testing.T) {
	db, _ := openLogged(t)

	if _, err := db.Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := tx.Exec(`INSERT INTO t (id) VALUES (1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("count after rollback = %d, want 0", n)
	}
}

func TestNewLoggingConnector_NilLoggerUsesDefault(t *testing.T) {
	c := NewLoggingConnector(":memory:", nil)
	if c.(*loggingConnector).logger != slog.Default() {
		t.Error("nil logger should fall back to slog.Default()")
	}
}
