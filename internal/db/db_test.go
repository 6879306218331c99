package db

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"esp8266-web/internal/config"
)

func TestBuildDSN(t *testing.T) {
	t.Run("explicit DSN wins", func(t *testing.T) {
		got, err := buildDSN(config.Config{DBDriver: DriverSQLite, DBDSN: "file::memory:?cache=shared", SQLitePath: "ignored.db"})
		if err != nil {
			t.Fatalf("buildDSN: %v", err)
		}
		if got != "file::memory:?cache=shared" {
			t.Errorf("dsn = %q", got)
		}
	})

	t.Run("plain path gets file prefix and params", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "app.db")
		got, err := buildDSN(config.Config{DBDriver: DriverSQLite, SQLitePath: path})
		if err != nil {
			t.Fatalf("buildDSN: %v", err)
		}
		want := "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
		if got != want {
			t.Errorf("dsn = %q; want %q", got, want)
		}
	})

	t.Run("file URI with query appends", func(t *testing.T) {
		got, err := buildDSN(config.Config{DBDriver: DriverSQLite, SQLitePath: "file:app.db?mode=rwc"})
		if err != nil {
			t.Fatalf("buildDSN: %v", err)
		}
		if !strings.HasPrefix(got, "file:app.db?mode=rwc&_foreign_keys=on") {
			t.Errorf("dsn = %q", got)
		}
	})

	t.Run("pgx without DSN fails", func(t *testing.T) {
		if _, err := buildDSN(config.Config{DBDriver: DriverPostgres}); err == nil {
			t.Error("buildDSN error = nil; want non-nil")
		}
	})
}

func TestRebind(t *testing.T) {
	q := `SELECT id FROM readings WHERE timestamp >= ? AND timestamp <= ? LIMIT ? OFFSET ?`

	if got := Rebind(DriverSQLite, q); got != q {
		t.Errorf("sqlite3 rebind changed query: %q", got)
	}
	want := `SELECT id FROM readings WHERE timestamp >= $1 AND timestamp <= $2 LIMIT $3 OFFSET $4`
	if got := Rebind(DriverPostgres, q); got != want {
		t.Errorf("pgx rebind = %q; want %q", got, want)
	}
}

func TestOpen_SQLiteFile(t *testing.T) {
	for _, logSQL := range []bool{false, true} {
		cfg := config.Config{
			DBDriver:       DriverSQLite,
			SQLitePath:     filepath.Join(t.TempDir(), "app.db"),
			DBMaxOpenConns: 1,
			DBMaxIdleConns: 1,
			DBLogSQL:       logSQL,
		}
		conn, err := Open(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
		if err != nil {
			t.Fatalf("Open(logSQL=%v): %v", logSQL, err)
		}
		var one int
		if err := conn.QueryRow(`SELECT 1`).Scan(&one); err != nil || one != 1 {
			t.Errorf("SELECT 1 = %d, %v", one, err)
		}
		if err := Close(conn); err != nil {
			t.Errorf("Close: %v", err)
		}
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v; want nil", err)
	}
}
