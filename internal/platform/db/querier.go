package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NextSequence increments the named counter in document_sequences and returns the new value.
// It must run inside the transaction that inserts the numbered row, so a rollback releases the number.
func NextSequence(ctx context.Context, q Querier, key string) (int64, error) {
	var n int64
	err := q.QueryRow(ctx, `INSERT INTO document_sequences (key, last_value) VALUES ($1, 1)
ON CONFLICT (key) DO UPDATE SET last_value = document_sequences.last_value + 1
RETURNING last_value`, key).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("platform/db: next sequence %s: %w", key, err)
	}
	return n, nil
}
