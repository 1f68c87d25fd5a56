// Package bookstest builds a seeded in-memory ledger for tests.
package bookstest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/books"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	"github.com/odyssey-erp/odyssey-books/internal/store/memory"
)

// BankCode is the asset account receipts and payments go through.
const BankCode = "1112"

// Fixture is a ledger with one customer, one supplier, a stocked item and a
// service item.
type Fixture struct {
	*books.Books
	Store    *memory.Store
	Audit    *Auditor
	Customer masterdata.Customer
	Supplier masterdata.Supplier
	Widget   masterdata.Item
	Labour   masterdata.Item
}

// New opens books over a fresh memory store with the default chart.
func New(t testing.TB) *Fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	audit := &Auditor{}
	b, err := books.Open(ctx, store, books.Options{
		BaseCurrency:        "GBP",
		DefaultLocationCode: "MAIN",
		SeedDefaults:        true,
		Audit:               audit,
	})
	require.NoError(t, err)

	f := &Fixture{Books: b, Store: store, Audit: audit}
	f.Customer, err = b.MasterData.CreateCustomer(ctx, masterdata.PartyInput{Code: "ACME", Name: "Acme Ltd", PaymentTermsDays: 30})
	require.NoError(t, err)
	f.Supplier, err = b.MasterData.CreateSupplier(ctx, masterdata.PartyInput{Code: "NORTH", Name: "Northwind Supplies", PaymentTermsDays: 30})
	require.NoError(t, err)
	f.Widget, err = b.MasterData.CreateItem(ctx, masterdata.ItemInput{
		Code:          "WIDGET",
		Name:          "Widget",
		UnitOfMeasure: "each",
		SalesPrice:    D("50"),
		PurchasePrice: D("30"),
		VATRate:       D("20"),
		TrackStock:    true,
		ReorderLevel:  D("5"),
	})
	require.NoError(t, err)
	f.Labour, err = b.MasterData.CreateItem(ctx, masterdata.ItemInput{
		Code:       "LABOUR",
		Name:       "Fitting labour",
		SalesPrice: D("40"),
		VATRate:    D("20"),
	})
	require.NoError(t, err)
	return f
}

// Stock receives qty of the widget at the default location without a journal entry.
func (f *Fixture) Stock(t testing.TB, qty, unitCost string) inventory.ReceiptResult {
	t.Helper()
	res, err := f.Inventory.Receive(context.Background(), inventory.ReceiptInput{
		ItemID:     f.Widget.ID,
		LocationID: f.DefaultLocation.ID,
		Quantity:   D(qty),
		UnitCost:   D(unitCost),
		Date:       Date("2024-01-01"),
		Reference:  "opening",
	})
	require.NoError(t, err)
	return res
}

// WidgetLine is a stock line for qty widgets at price with 20% VAT.
func (f *Fixture) WidgetLine(qty, price string) shared.DocumentLine {
	id := f.Widget.ID
	return shared.DocumentLine{ItemID: &id, Quantity: D(qty), UnitPrice: D(price), VATRate: D("20")}
}

// Balance returns the signed balance of code over everything posted.
func (f *Fixture) Balance(t testing.TB, code string) decimal.Decimal {
	t.Helper()
	bal, err := f.Reports.BalanceOf(context.Background(), code, nil)
	require.NoError(t, err)
	return bal
}

// D parses a decimal literal.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date parses an ISO date.
func Date(s string) time.Time {
	t, err := time.ParseInLocation(shared.DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// Auditor keeps audit records in memory.
type Auditor struct {
	mu   sync.Mutex
	logs []shared.AuditLog
}

// Record appends log.
func (a *Auditor) Record(_ context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

// Actions lists the recorded actions in order.
func (a *Auditor) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.logs))
	for i, l := range a.logs {
		out[i] = l.Action
	}
	return out
}
