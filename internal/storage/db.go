package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("storage: not found")

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DB is the local record store shared by the repositories
type DB struct {
	db     *sql.DB
	driver string
	logger *logrus.Logger
}

// Open opens (or creates) the database and initialises the schema
func Open(driver, dsn string, logger *logrus.Logger) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("storage: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// sqlite allows a single writer at a time
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA synchronous=NORMAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("storage: %s: %w", pragma, err)
			}
		}
	}

	s := &DB{db: db, driver: driver, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Infof("Local store ready (driver: %s)", driver)
	return s, nil
}

// Close closes the underlying database
func (s *DB) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *DB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *DB) initSchema() error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS vpn_proxies (
  id ` + idColumn + `,
  url TEXT NOT NULL,
  token TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  max_connection INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'ACTIVE'
)`,
		`CREATE TABLE IF NOT EXISTS users (
  id ` + idColumn + `,
  chat_id TEXT NOT NULL UNIQUE,
  user_name TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'ACTIVE'
)`,
		`CREATE TABLE IF NOT EXISTS accounts (
  id ` + idColumn + `,
  chat_id TEXT NOT NULL,
  id_on_server TEXT NOT NULL DEFAULT '',
  server_name TEXT NOT NULL DEFAULT '',
  vpn_proxy_id BIGINT NOT NULL REFERENCES vpn_proxies(id),
  user_id BIGINT REFERENCES users(id),
  country TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'ACTIVE'
)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_chat_server ON accounts (chat_id, vpn_proxy_id)`,
	}

	for _, stmt := range ddl {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("storage: init schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $N for PostgreSQL
func (s *DB) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id statement
func (s *DB) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// affected turns a zero-row update or delete into ErrNotFound
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
