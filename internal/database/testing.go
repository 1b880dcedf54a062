package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

// OpenTest opens a migrated SQLite database in a temp dir, closed on cleanup.
func OpenTest(tb testing.TB) *DB {
	tb.Helper()
	ctx := context.Background()

	db, err := Open(ctx, Config{Driver: DriverSQLite, DSN: filepath.Join(tb.TempDir(), "spendlens.db")}, zerolog.Nop())
	if err != nil {
		tb.Fatalf("opening test database: %v", err)
	}
	tb.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		tb.Fatalf("migrating test database: %v", err)
	}
	return db
}
