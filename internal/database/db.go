// Package database wraps database/sql with the three storage primitives the
// repositories use: fetch many, fetch one and execute.
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// Config selects the driver and connection string. For SQLite the DSN is a
// file path.
type Config struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Result is what Execute reports back.
type Result struct {
	GeneratedID  int64
	RowsAffected int64
}

// DB wraps the database connection.
type DB struct {
	conn   *sql.DB
	driver string
	log    zerolog.Logger
}

// Open connects to the configured database.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.DSN == "" {
			return nil, errors.New("sqlite database path is required")
		}
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		// WAL for concurrent readers while the importer writes
		conn, err = sql.Open("sqlite", cfg.DSN+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
		cfg.Driver = DriverSQLite
	case DriverPostgres:
		conn, err = sql.Open("pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{conn: conn, driver: cfg.Driver, log: log.With().Str("component", "database").Logger()}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver returns the dialect in use.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate applies the embedded schema. Every statement is create-if-missing,
// so it is safe to run on each start.
func (db *DB) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if db.driver == DriverPostgres {
		schema = postgresSchema
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	db.log.Debug().Str("driver", db.driver).Msg("Schema up to date")
	return nil
}

// FetchMany runs a query returning zero or more rows. The caller closes rows.
func (db *DB) FetchMany(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := db.conn.QueryContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

// FetchOne runs a query returning at most one row.
func (db *DB) FetchOne(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.Rebind(query), args...)
}

// Execute runs a statement. Statements ending in RETURNING id report the
// generated id.
func (db *DB) Execute(ctx context.Context, query string, args ...any) (Result, error) {
	q := db.Rebind(query)

	if returnsID(q) {
		var id int64
		if err := db.conn.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
			return Result{}, err
		}
		return Result{GeneratedID: id, RowsAffected: 1}, nil
	}

	res, err := db.conn.ExecContext(ctx, q, args...)
	if err != nil {
		return Result{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("rows affected: %w", err)
	}
	return Result{RowsAffected: n}, nil
}

// Rebind rewrites ? placeholders to $n for Postgres. Quoted literals are
// left alone.
func (db *DB) Rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func returnsID(q string) bool {
	return strings.HasSuffix(strings.ToUpper(strings.TrimSpace(q)), "RETURNING ID")
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}

// NullID maps the zero id to SQL NULL.
func NullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
