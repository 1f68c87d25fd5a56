// Package memory keeps the whole ledger in process. A unit of work runs against
// a copy of the state which replaces the live state only when it succeeds, so a
// failed operation leaves nothing behind and consumes no document number.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-books/internal/ap"
	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

type positionKey struct {
	item     int64
	location int64
}

// state is copied on every unit of work. Rows are stored by value and
// appended, never updated through shared slices, so a shallow slice copy
// is enough to isolate a transaction.
type state struct {
	sequences    map[shared.Sequence]int64
	accounts     []accounts.Account
	entries      []journals.Entry
	lines        []journals.Line
	customers    []masterdata.Customer
	suppliers    []masterdata.Supplier
	items        []masterdata.Item
	locations    []masterdata.Location
	positions    map[positionKey]inventory.Position
	movements    []inventory.Transaction
	invoices     []ar.Invoice
	invoiceLines []ar.InvoiceLine
	bills        []ap.Bill
	billLines    []ap.BillLine
	payments     []payments.Payment
}

func newState() *state {
	return &state{
		sequences: map[shared.Sequence]int64{},
		positions: map[positionKey]inventory.Position{},
	}
}

func (s *state) clone() *state {
	c := *s
	c.sequences = make(map[shared.Sequence]int64, len(s.sequences))
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	c.positions = make(map[positionKey]inventory.Position, len(s.positions))
	for k, v := range s.positions {
		c.positions[k] = v
	}
	c.accounts = append([]accounts.Account(nil), s.accounts...)
	c.entries = append([]journals.Entry(nil), s.entries...)
	c.lines = append([]journals.Line(nil), s.lines...)
	c.customers = append([]masterdata.Customer(nil), s.customers...)
	c.suppliers = append([]masterdata.Supplier(nil), s.suppliers...)
	c.items = append([]masterdata.Item(nil), s.items...)
	c.locations = append([]masterdata.Location(nil), s.locations...)
	c.movements = append([]inventory.Transaction(nil), s.movements...)
	c.invoices = append([]ar.Invoice(nil), s.invoices...)
	c.invoiceLines = append([]ar.InvoiceLine(nil), s.invoiceLines...)
	c.bills = append([]ap.Bill(nil), s.bills...)
	c.billLines = append([]ap.BillLine(nil), s.billLines...)
	c.payments = append([]payments.Payment(nil), s.payments...)
	return &c
}

// Store is the in-memory ledger store. Writers are serialised.
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{state: newState(), now: time.Now}
}

// WithClock overrides the timestamp source; used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) withTx(ctx context.Context, fn func(*tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(&tx{st: work, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) read(fn func(*state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Accounts returns the chart of accounts repository.
func (s *Store) Accounts() accounts.Repository { return accountRepo{s} }

// Journals returns the journal repository.
func (s *Store) Journals() journals.Repository { return journalRepo{s} }

// Reports returns the read-only reporting repository.
func (s *Store) Reports() reports.Repository { return reportRepo{s} }

// MasterData returns the master data repository.
func (s *Store) MasterData() masterdata.Repository { return masterRepo{s} }

// Inventory returns the stock repository.
func (s *Store) Inventory() inventory.Repository { return inventoryRepo{s} }

// Payments returns the payment repository.
func (s *Store) Payments() payments.Repository { return paymentRepo{s} }

// Sales returns the sales invoice repository.
func (s *Store) Sales() ar.Repository { return salesRepo{s} }

// Purchases returns the purchase bill repository.
func (s *Store) Purchases() ap.Repository { return purchaseRepo{s} }
