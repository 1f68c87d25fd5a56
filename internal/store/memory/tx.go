package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/ap"
	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// tx satisfies every domain TxRepository over one working copy of the state.
type tx struct {
	st  *state
	now func() time.Time
}

var (
	_ accounts.TxRepository  = (*tx)(nil)
	_ journals.TxRepository  = (*tx)(nil)
	_ inventory.TxRepository = (*tx)(nil)
	_ payments.TxRepository  = (*tx)(nil)
	_ ar.TxRepository        = (*tx)(nil)
	_ ap.TxRepository        = (*tx)(nil)
)

func (t *tx) NextNumber(_ context.Context, seq shared.Sequence) (int64, error) {
	t.st.sequences[seq]++
	return t.st.sequences[seq], nil
}

// Accounts

func (t *tx) InsertAccount(_ context.Context, a accounts.Account) (accounts.Account, error) {
	if _, ok := findAccountByCode(t.st, a.Code); ok {
		return accounts.Account{}, shared.DuplicateKey("account", a.Code)
	}
	a.ID = int64(len(t.st.accounts) + 1)
	a.CreatedAt = t.now()
	a.UpdatedAt = a.CreatedAt
	t.st.accounts = append(t.st.accounts, a)
	return a, nil
}

func (t *tx) GetAccount(_ context.Context, id int64) (accounts.Account, error) {
	return accountByID(t.st, id)
}

func (t *tx) GetAccountByCode(_ context.Context, code string) (accounts.Account, error) {
	if a, ok := findAccountByCode(t.st, code); ok {
		return a, nil
	}
	return accounts.Account{}, shared.NotFound("account", code)
}

func (t *tx) UpdateAccount(_ context.Context, a accounts.Account) error {
	if a.ID < 1 || int(a.ID) > len(t.st.accounts) {
		return shared.NotFound("account", a.ID)
	}
	a.UpdatedAt = t.now()
	t.st.accounts[a.ID-1] = a
	return nil
}

func (t *tx) AccountHasLines(_ context.Context, id int64) (bool, error) {
	for _, l := range t.st.lines {
		if l.AccountID == id {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) AccountHasChildren(_ context.Context, id int64) (bool, error) {
	for _, a := range t.st.accounts {
		if a.ParentID != nil && *a.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

// Journals

func (t *tx) InsertEntry(_ context.Context, e journals.Entry) (journals.Entry, error) {
	for _, existing := range t.st.entries {
		if existing.Number == e.Number {
			return journals.Entry{}, shared.DuplicateKey("journal entry", e.Number)
		}
	}
	e.ID = int64(len(t.st.entries) + 1)
	e.CreatedAt = t.now()
	e.Lines = nil
	t.st.entries = append(t.st.entries, e)
	return e, nil
}

func (t *tx) InsertLines(_ context.Context, entryID int64, lines []journals.Line) ([]journals.Line, error) {
	out := make([]journals.Line, len(lines))
	for i, l := range lines {
		l.ID = int64(len(t.st.lines) + 1)
		l.EntryID = entryID
		t.st.lines = append(t.st.lines, l)
		out[i] = l
	}
	return out, nil
}

// Inventory

func (t *tx) GetItem(_ context.Context, id int64) (masterdata.Item, error) {
	return byID(t.st.items, id, "item")
}

func (t *tx) GetLocation(_ context.Context, id int64) (masterdata.Location, error) {
	return byID(t.st.locations, id, "location")
}

func (t *tx) GetPositionForUpdate(_ context.Context, itemID, locationID int64) (inventory.Position, bool, error) {
	p, ok := t.st.positions[positionKey{itemID, locationID}]
	return p, ok, nil
}

func (t *tx) UpsertPosition(_ context.Context, p inventory.Position) error {
	t.st.positions[positionKey{p.ItemID, p.LocationID}] = p
	return nil
}

func (t *tx) InsertTransaction(_ context.Context, m inventory.Transaction) (inventory.Transaction, error) {
	for _, existing := range t.st.movements {
		if existing.Number == m.Number {
			return inventory.Transaction{}, shared.DuplicateKey("inventory transaction", m.Number)
		}
	}
	m.ID = int64(len(t.st.movements) + 1)
	m.CreatedAt = t.now()
	t.st.movements = append(t.st.movements, m)
	return m, nil
}

// Payments

func (t *tx) InsertPayment(_ context.Context, p payments.Payment) (payments.Payment, error) {
	for _, existing := range t.st.payments {
		if existing.Number == p.Number {
			return payments.Payment{}, shared.DuplicateKey("payment", p.Number)
		}
	}
	p.ID = int64(len(t.st.payments) + 1)
	p.CreatedAt = t.now()
	t.st.payments = append(t.st.payments, p)
	return p, nil
}

// Sales

func (t *tx) GetCustomer(_ context.Context, id int64) (masterdata.Customer, error) {
	return byID(t.st.customers, id, "customer")
}

func (t *tx) InsertInvoice(_ context.Context, inv ar.Invoice) (ar.Invoice, error) {
	if _, ok := findInvoice(t.st, inv.Number); ok {
		return ar.Invoice{}, shared.DuplicateKey("invoice", inv.Number)
	}
	inv.ID = int64(len(t.st.invoices) + 1)
	inv.CreatedAt = t.now()
	inv.Lines = nil
	t.st.invoices = append(t.st.invoices, inv)
	return inv, nil
}

func (t *tx) InsertInvoiceLine(_ context.Context, l ar.InvoiceLine) (ar.InvoiceLine, error) {
	l.ID = int64(len(t.st.invoiceLines) + 1)
	t.st.invoiceLines = append(t.st.invoiceLines, l)
	return l, nil
}

func (t *tx) GetInvoiceForUpdate(_ context.Context, number string) (ar.Invoice, error) {
	if inv, ok := findInvoice(t.st, number); ok {
		return inv, nil
	}
	return ar.Invoice{}, shared.NotFound("invoice", number)
}

func (t *tx) UpdateInvoicePayment(_ context.Context, id int64, amountPaid decimal.Decimal, status payments.Status) error {
	if id < 1 || int(id) > len(t.st.invoices) {
		return shared.NotFound("invoice", id)
	}
	inv := t.st.invoices[id-1]
	inv.AmountPaid = amountPaid
	inv.Status = status
	t.st.invoices[id-1] = inv
	return nil
}

// Purchases

func (t *tx) GetSupplier(_ context.Context, id int64) (masterdata.Supplier, error) {
	return byID(t.st.suppliers, id, "supplier")
}

func (t *tx) InsertBill(_ context.Context, b ap.Bill) (ap.Bill, error) {
	if _, ok := findBill(t.st, b.Number); ok {
		return ap.Bill{}, shared.DuplicateKey("bill", b.Number)
	}
	b.ID = int64(len(t.st.bills) + 1)
	b.CreatedAt = t.now()
	b.Lines = nil
	t.st.bills = append(t.st.bills, b)
	return b, nil
}

func (t *tx) InsertBillLine(_ context.Context, l ap.BillLine) (ap.BillLine, error) {
	l.ID = int64(len(t.st.billLines) + 1)
	t.st.billLines = append(t.st.billLines, l)
	return l, nil
}

func (t *tx) GetBillForUpdate(_ context.Context, number string) (ap.Bill, error) {
	if b, ok := findBill(t.st, number); ok {
		return b, nil
	}
	return ap.Bill{}, shared.NotFound("bill", number)
}

func (t *tx) UpdateBillPayment(_ context.Context, id int64, amountPaid decimal.Decimal, status payments.Status) error {
	if id < 1 || int(id) > len(t.st.bills) {
		return shared.NotFound("bill", id)
	}
	b := t.st.bills[id-1]
	b.AmountPaid = amountPaid
	b.Status = status
	t.st.bills[id-1] = b
	return nil
}

// lookups shared by tx and the read repositories

type identified interface {
	masterdata.Customer | masterdata.Supplier | masterdata.Item | masterdata.Location
}

// byID relies on ids being dense and 1-based; rows are never deleted.
func byID[T identified](rows []T, id int64, entity string) (T, error) {
	var zero T
	if id < 1 || int(id) > len(rows) {
		return zero, shared.NotFound(entity, id)
	}
	return rows[id-1], nil
}

func accountByID(st *state, id int64) (accounts.Account, error) {
	if id < 1 || int(id) > len(st.accounts) {
		return accounts.Account{}, shared.NotFound("account", id)
	}
	return st.accounts[id-1], nil
}

func findAccountByCode(st *state, code string) (accounts.Account, bool) {
	for _, a := range st.accounts {
		if a.Code == code {
			return a, true
		}
	}
	return accounts.Account{}, false
}

func findInvoice(st *state, number string) (ar.Invoice, bool) {
	for _, inv := range st.invoices {
		if inv.Number == number {
			return inv, true
		}
	}
	return ar.Invoice{}, false
}

func findBill(st *state, number string) (ap.Bill, bool) {
	for _, b := range st.bills {
		if b.Number == number {
			return b, true
		}
	}
	return ap.Bill{}, false
}

func positionLabel(itemID, locationID int64) string {
	return fmt.Sprintf("%d@%d", itemID, locationID)
}
