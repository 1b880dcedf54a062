package database

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	lite := &DB{driver: DriverSQLite}

	q := "SELECT id FROM t WHERE a = ? AND b = '?' AND c = ?"
	assert.Equal(t, "SELECT id FROM t WHERE a = $1 AND b = '?' AND c = $2", pg.Rebind(q))
	assert.Equal(t, q, lite.Rebind(q))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"}, zerolog.Nop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_SQLiteRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverSQLite}, zerolog.Nop())
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := OpenTest(t)
	require.NoError(t, db.Migrate(context.Background()))
}

func TestExecuteAndFetch(t *testing.T) {
	db := OpenTest(t)
	ctx := context.Background()

	res, err := db.Execute(ctx, "INSERT INTO categories (name, description) VALUES (?, ?) RETURNING id", "Food", "")
	require.NoError(t, err)
	assert.Positive(t, res.GeneratedID)

	_, err = db.Execute(ctx, "INSERT INTO categories (name, parent_id) VALUES (?, ?) RETURNING id", "Groceries", res.GeneratedID)
	require.NoError(t, err)

	var name string
	require.NoError(t, db.FetchOne(ctx, "SELECT name FROM categories WHERE id = ?", res.GeneratedID).Scan(&name))
	assert.Equal(t, "Food", name)

	rows, err := db.FetchMany(ctx, "SELECT name FROM categories ORDER BY id")
	require.NoError(t, err)
	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	rows.Close()
	assert.Equal(t, []string{"Food", "Groceries"}, names)

	upd, err := db.Execute(ctx, "UPDATE categories SET description = ?", "x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), upd.RowsAffected)
}

func TestIsUniqueViolation(t *testing.T) {
	db := OpenTest(t)
	ctx := context.Background()

	_, err := db.Execute(ctx, "INSERT INTO categories (name) VALUES (?) RETURNING id", "Food")
	require.NoError(t, err)
	_, err = db.Execute(ctx, "INSERT INTO categories (name) VALUES (?) RETURNING id", "Food")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(assert.AnError))
}

func TestTimestampScan(t *testing.T) {
	var ts Timestamp
	require.NoError(t, ts.Scan("2025-01-03 09:01:12"))
	assert.Equal(t, 2025, ts.Year())

	now := time.Now()
	require.NoError(t, ts.Scan(now))
	assert.True(t, ts.Equal(now))

	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}

func TestNullID(t *testing.T) {
	assert.Nil(t, NullID(0))
	assert.Equal(t, int64(7), NullID(7))
}
