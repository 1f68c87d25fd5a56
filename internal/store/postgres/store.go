// Package postgres exposes the pgx repositories of every domain package behind
// one value so the composition root can swap it for the memory store.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-books/internal/ap"
	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
)

// Store hands out repositories sharing one pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Accounts() accounts.Repository     { return accounts.NewRepository(s.pool) }
func (s *Store) Journals() journals.Repository     { return journals.NewRepository(s.pool) }
func (s *Store) Reports() reports.Repository       { return reports.NewRepository(s.pool) }
func (s *Store) MasterData() masterdata.Repository { return masterdata.NewRepository(s.pool) }
func (s *Store) Inventory() inventory.Repository   { return inventory.NewRepository(s.pool) }
func (s *Store) Payments() payments.Repository     { return payments.NewRepository(s.pool) }
func (s *Store) Sales() ar.Repository              { return ar.NewRepository(s.pool) }
func (s *Store) Purchases() ap.Repository          { return ap.NewRepository(s.pool) }
