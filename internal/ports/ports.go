package ports

import (
	"context"
	"database/sql"

	"PublicationIndex/internal/domain"
)

// CorpusSource loads and parses a tag-delimited corpus.
type CorpusSource interface {
	Load(ctx context.Context, path string) (domain.ParsedCorpus, error)
}

// Execer runs single statements; both the store and its transactions satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Tx is an open storage transaction.
type Tx interface {
	Execer
	Commit() error
	Rollback() error
}

// PublicationStore is the narrow statement-execution surface of the relational store.
type PublicationStore interface {
	Execer
	// ExecScript runs several statements atomically.
	ExecScript(ctx context.Context, script string) error
	Begin(ctx context.Context) (Tx, error)
	// MaxID returns the largest id in the table, zero when it is empty.
	MaxID(ctx context.Context, table domain.Table) (int64, error)
	// Count returns the number of rows in the table.
	Count(ctx context.Context, table domain.Table) (int64, error)
	Close() error
}
