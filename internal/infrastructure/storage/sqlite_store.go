package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/avast/retry-go/v4"

	"PublicationIndex/internal/domain"
	apperr "PublicationIndex/internal/errors"
	"PublicationIndex/internal/ports"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Options tunes how the store connects.
type Options struct {
	// ConnectAttempts is the number of open/ping attempts before giving up.
	ConnectAttempts uint
	ConnectDelay    time.Duration
}

// SQLiteStore implements ports.PublicationStore on top of modernc.org/sqlite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.PublicationStore = (*SQLiteStore)(nil)

// Open connects to the database file, enables foreign keys and creates the schema.
// A store that cannot be reached yields a ConnectionFailure.
func Open(ctx context.Context, path string, opts Options, logger *slog.Logger) (*SQLiteStore, error) {
	if opts.ConnectAttempts == 0 {
		opts.ConnectAttempts = 1
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	var db *sql.DB
	err := retry.Do(
		func() error {
			conn, err := sql.Open("sqlite", dsn)
			if err != nil {
				return err
			}
			if err := conn.PingContext(ctx); err != nil {
				conn.Close()
				return err
			}
			db = conn
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(opts.ConnectAttempts),
		retry.Delay(opts.ConnectDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if logger != nil {
				logger.Warn("store connect failed, retrying", "attempt", n+1, "path", path, "error", err)
			}
		}),
	)
	if err != nil {
		return nil, apperr.ConnectionFailure("open store "+path, err)
	}

	// One owner per connection; pragmas are per-connection in SQLite.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, apperr.ConnectionFailure("enable foreign keys", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.ExecScript(ctx, Schema()); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return s, nil
}

// Schema renders the table definitions with the current valid year range.
func Schema() string {
	return strings.NewReplacer(
		"{{MIN_YEAR}}", strconv.Itoa(domain.MinYear),
		"{{MAX_YEAR}}", strconv.Itoa(domain.MaxYear()),
	).Replace(schemaSQL)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ExecContext runs a statement outside any explicit transaction.
func (s *SQLiteStore) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// QueryContext runs a query outside any explicit transaction.
func (s *SQLiteStore) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// ExecScript runs a multi-statement script inside one transaction.
func (s *SQLiteStore) ExecScript(ctx context.Context, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin script: %w", err)
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec script: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit script: %w", err)
	}
	return nil
}

// Begin opens a transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (ports.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return tx, nil
}

// MaxID returns the largest id in the table, zero when it is empty.
func (s *SQLiteStore) MaxID(ctx context.Context, table domain.Table) (int64, error) {
	if !table.Valid() || table == domain.TableWrittenBy {
		return 0, fmt.Errorf("table %q has no id column", table)
	}
	return s.scalar(ctx, sq.Select("COALESCE(MAX(id), 0)").From(string(table)))
}

// Count returns the number of rows in the table.
func (s *SQLiteStore) Count(ctx context.Context, table domain.Table) (int64, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	return s.scalar(ctx, sq.Select("COUNT(*)").From(string(table)))
}

func (s *SQLiteStore) scalar(ctx context.Context, builder sq.SelectBuilder) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var value int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		return 0, fmt.Errorf("query %q: %w", query, err)
	}
	return value, nil
}
