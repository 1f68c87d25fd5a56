package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/books"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/store/memory"
	"github.com/odyssey-erp/odyssey-books/internal/store/postgres"
)

// OpenedStore is the store selected by STORE_DRIVER. Pool is nil for the memory store.
type OpenedStore struct {
	books.Store
	Pool *pgxpool.Pool
}

// Close releases the connection pool, if any.
func (s OpenedStore) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStore opens the configured store. The postgres schema is applied before
// the store is returned.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (OpenedStore, error) {
	if cfg.StoreDriver == StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		return OpenedStore{Store: memory.New()}, nil
	}
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		return OpenedStore{}, err
	}
	if err := db.ApplySchema(ctx, pool); err != nil {
		pool.Close()
		return OpenedStore{}, fmt.Errorf("open store: %w", err)
	}
	return OpenedStore{Store: postgres.New(pool), Pool: pool}, nil
}
