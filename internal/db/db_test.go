package db

import (
	"path/filepath"
	"strings"
	"testing"

	"meteo-server/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  config.Config{SQLiteDSN: "file:x.db?mode=ro", SQLitePath: "ignored.db"},
			want: "file:x.db?mode=ro",
		},
		{
			name: "plain path",
			cfg:  config.Config{SQLitePath: filepath.Join(dir, "sub", "meteo.db")},
			want: "file:" + filepath.Join(dir, "sub", "meteo.db") + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
		{
			name: "file uri with params",
			cfg:  config.Config{SQLitePath: "file:meteo.db?cache=shared"},
			want: "file:meteo.db?cache=shared&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("buildDSN() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("buildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDSN_EmptyPath(t *testing.T) {
	if _, err := buildDSN(config.Config{}); err == nil {
		t.Fatal("buildDSN() error = nil, want non-nil")
	}
}

func TestOpen(t *testing.T) {
	for _, logSQL := range []bool{false, true} {
		name := "plain"
		if logSQL {
			name = "logging"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data", "meteo.db")
			cfg := config.Config{
				SQLiteDriver:       "sqlite3",
				SQLitePath:         path,
				SQLiteMaxOpenConns: 1,
				SQLiteMaxIdleConns: 1,
				SQLiteLogSQL:       logSQL,
			}

			conn, err := Open(cfg, nil)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer func() { _ = Close(conn) }()

			var mode string
			if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
				t.Fatalf("pragma: %v", err)
			}
			if !strings.EqualFold(mode, "wal") {
				t.Errorf("journal_mode = %q, want wal", mode)
			}
		})
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v, want nil", err)
	}
}
