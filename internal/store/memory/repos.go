package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-books/internal/ap"
	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

type accountRepo struct{ s *Store }

func (r accountRepo) List(context.Context) ([]accounts.Account, error) {
	var out []accounts.Account
	r.s.read(func(st *state) {
		out = append(out, st.accounts...)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r accountRepo) GetByCode(_ context.Context, code string) (accounts.Account, error) {
	var (
		a  accounts.Account
		ok bool
	)
	r.s.read(func(st *state) { a, ok = findAccountByCode(st, code) })
	if !ok {
		return accounts.Account{}, shared.NotFound("account", code)
	}
	return a, nil
}

func (r accountRepo) WithTx(ctx context.Context, fn func(context.Context, accounts.TxRepository) error) error {
	return r.s.withTx(ctx, func(t *tx) error { return fn(ctx, t) })
}

type journalRepo struct{ s *Store }

func (r journalRepo) WithTx(ctx context.Context, fn func(context.Context, journals.TxRepository) error) error {
	return r.s.withTx(ctx, func(t *tx) error { return fn(ctx, t) })
}

func (r journalRepo) GetByNumber(_ context.Context, number string) (journals.Entry, error) {
	var (
		entry journals.Entry
		found bool
	)
	r.s.read(func(st *state) {
		for _, e := range st.entries {
			if e.Number != number {
				continue
			}
			entry, found = e, true
			for _, l := range st.lines {
				if l.EntryID == e.ID {
					entry.Lines = append(entry.Lines, l)
				}
			}
			return
		}
	})
	if !found {
		return journals.Entry{}, shared.NotFound("journal entry", number)
	}
	return entry, nil
}

func (r journalRepo) List(_ context.Context, filter journals.ListFilter) ([]journals.Entry, error) {
	var out []journals.Entry
	r.s.read(func(st *state) {
		for _, e := range st.entries {
			if filter.From != nil && e.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && e.Date.After(*filter.To) {
				continue
			}
			if filter.Type != nil && e.Type.String() != filter.Type.String() {
				continue
			}
			out = append(out, e)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Sequence < out[j].Sequence
	})
	if filter.Limit > 0 {
		out = shared.Window(out, shared.Pagination{Page: filter.Offset/filter.Limit + 1, PerPage: filter.Limit})
	}
	return out, nil
}

func (r journalRepo) FindUnbalanced(context.Context) ([]journals.Imbalance, error) {
	var out []journals.Imbalance
	r.s.read(func(st *state) {
		sums := make(map[int64][2]decimal.Decimal, len(st.entries))
		for _, l := range st.lines {
			s := sums[l.EntryID]
			s[0] = s[0].Add(l.DebitBase)
			s[1] = s[1].Add(l.CreditBase)
			sums[l.EntryID] = s
		}
		for _, e := range st.entries {
			s := sums[e.ID]
			if !s[0].Equal(s[1]) {
				out = append(out, journals.Imbalance{Number: e.Number, DebitBase: s[0], CreditBase: s[1]})
			}
		}
	})
	return out, nil
}

type reportRepo struct{ s *Store }

func (r reportRepo) GetAccountByCode(ctx context.Context, code string) (accounts.Account, error) {
	return accountRepo(r).GetByCode(ctx, code)
}

// postedLines returns lines of entries dated inside period together with their entry.
func postedLines(st *state, period reports.Period, accountID *int64) []struct {
	entry journals.Entry
	line  journals.Line
} {
	var out []struct {
		entry journals.Entry
		line  journals.Line
	}
	for _, l := range st.lines {
		if accountID != nil && l.AccountID != *accountID {
			continue
		}
		e := st.entries[l.EntryID-1]
		if !period.Contains(e.Date) {
			continue
		}
		out = append(out, struct {
			entry journals.Entry
			line  journals.Line
		}{e, l})
	}
	return out
}

func (r reportRepo) AccountTotals(_ context.Context, period reports.Period) ([]reports.AccountBalance, error) {
	var out []reports.AccountBalance
	r.s.read(func(st *state) {
		index := make(map[int64]int, len(st.accounts))
		for _, a := range st.accounts {
			index[a.ID] = len(out)
			out = append(out, reports.AccountBalance{
				AccountID: a.ID,
				Code:      a.Code,
				Name:      a.Name,
				Type:      a.Type,
				Category:  a.ExpenseCategory,
				Active:    a.IsActive,
				Debit:     decimal.Zero,
				Credit:    decimal.Zero,
			})
		}
		for _, pl := range postedLines(st, period, nil) {
			b := &out[index[pl.line.AccountID]]
			b.Debit = b.Debit.Add(pl.line.DebitBase)
			b.Credit = b.Credit.Add(pl.line.CreditBase)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r reportRepo) AccountTotal(_ context.Context, accountID int64, period reports.Period) (decimal.Decimal, decimal.Decimal, error) {
	debit, credit := decimal.Zero, decimal.Zero
	r.s.read(func(st *state) {
		for _, pl := range postedLines(st, period, &accountID) {
			debit = debit.Add(pl.line.DebitBase)
			credit = credit.Add(pl.line.CreditBase)
		}
	})
	return debit, credit, nil
}

func (r reportRepo) AccountLines(_ context.Context, accountID int64, period reports.Period) ([]reports.LedgerLine, error) {
	var out []reports.LedgerLine
	r.s.read(func(st *state) {
		for _, pl := range postedLines(st, period, &accountID) {
			description := pl.line.Description
			if description == "" {
				description = pl.entry.Description
			}
			out = append(out, reports.LedgerLine{
				Date:        pl.entry.Date,
				EntryNumber: pl.entry.Number,
				Sequence:    pl.entry.Sequence,
				LineID:      pl.line.ID,
				EntryType:   pl.entry.Type.String(),
				Reference:   pl.entry.Reference,
				Description: description,
				Currency:    pl.entry.Currency,
				Debit:       pl.line.Debit,
				Credit:      pl.line.Credit,
				DebitBase:   pl.line.DebitBase,
				CreditBase:  pl.line.CreditBase,
			})
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.LineID < b.LineID
	})
	return out, nil
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) GetByNumber(_ context.Context, number string) (payments.Payment, error) {
	var (
		p     payments.Payment
		found bool
	)
	r.s.read(func(st *state) {
		for _, candidate := range st.payments {
			if candidate.Number == number {
				p, found = candidate, true
				return
			}
		}
	})
	if !found {
		return payments.Payment{}, shared.NotFound("payment", number)
	}
	return p, nil
}

func (r paymentRepo) List(_ context.Context, filter payments.Filter) ([]payments.Payment, error) {
	var out []payments.Payment
	r.s.read(func(st *state) {
		for _, p := range st.payments {
			if filter.Direction != "" && p.Direction != filter.Direction {
				continue
			}
			if filter.DocumentNumber != "" && p.DocumentNumber != filter.DocumentNumber {
				continue
			}
			if filter.From != nil && p.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && p.Date.After(*filter.To) {
				continue
			}
			out = append(out, p)
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type salesRepo struct{ s *Store }

func (r salesRepo) WithTx(ctx context.Context, fn func(context.Context, ar.TxRepository) error) error {
	return r.s.withTx(ctx, func(t *tx) error { return fn(ctx, t) })
}

func (r salesRepo) GetInvoice(_ context.Context, number string) (ar.Invoice, error) {
	var (
		inv   ar.Invoice
		found bool
	)
	r.s.read(func(st *state) {
		if inv, found = findInvoice(st, number); !found {
			return
		}
		for _, l := range st.invoiceLines {
			if l.InvoiceID == inv.ID {
				inv.Lines = append(inv.Lines, l)
			}
		}
	})
	if !found {
		return ar.Invoice{}, shared.NotFound("invoice", number)
	}
	return inv, nil
}

func (r salesRepo) ListInvoices(_ context.Context, filter ar.InvoiceFilter) ([]ar.Invoice, error) {
	var out []ar.Invoice
	r.s.read(func(st *state) {
		for _, inv := range st.invoices {
			if filter.CustomerID != nil && inv.CustomerID != *filter.CustomerID {
				continue
			}
			if filter.Status != "" && inv.Status != filter.Status {
				continue
			}
			if filter.From != nil && inv.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && inv.Date.After(*filter.To) {
				continue
			}
			out = append(out, inv)
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type purchaseRepo struct{ s *Store }

func (r purchaseRepo) WithTx(ctx context.Context, fn func(context.Context, ap.TxRepository) error) error {
	return r.s.withTx(ctx, func(t *tx) error { return fn(ctx, t) })
}

func (r purchaseRepo) GetBill(_ context.Context, number string) (ap.Bill, error) {
	var (
		bill  ap.Bill
		found bool
	)
	r.s.read(func(st *state) {
		if bill, found = findBill(st, number); !found {
			return
		}
		for _, l := range st.billLines {
			if l.BillID == bill.ID {
				bill.Lines = append(bill.Lines, l)
			}
		}
	})
	if !found {
		return ap.Bill{}, shared.NotFound("bill", number)
	}
	return bill, nil
}

func (r purchaseRepo) ListBills(_ context.Context, filter ap.BillFilter) ([]ap.Bill, error) {
	var out []ap.Bill
	r.s.read(func(st *state) {
		for _, b := range st.bills {
			if filter.SupplierID != nil && b.SupplierID != *filter.SupplierID {
				continue
			}
			if filter.Status != "" && b.Status != filter.Status {
				continue
			}
			if filter.From != nil && b.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && b.Date.After(*filter.To) {
				continue
			}
			out = append(out, b)
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) WithTx(ctx context.Context, fn func(context.Context, inventory.TxRepository) error) error {
	return r.s.withTx(ctx, func(t *tx) error { return fn(ctx, t) })
}

func (r inventoryRepo) GetPosition(_ context.Context, itemID, locationID int64) (inventory.Position, error) {
	var (
		p  inventory.Position
		ok bool
	)
	r.s.read(func(st *state) { p, ok = st.positions[positionKey{itemID, locationID}] })
	if !ok {
		return inventory.Position{}, shared.NotFound("stock position", positionLabel(itemID, locationID))
	}
	return p, nil
}

func (r inventoryRepo) ListPositions(_ context.Context, locationID *int64) ([]inventory.StockLine, error) {
	var out []inventory.StockLine
	r.s.read(func(st *state) {
		for key, p := range st.positions {
			if locationID != nil && key.location != *locationID {
				continue
			}
			item := st.items[key.item-1]
			loc := st.locations[key.location-1]
			out = append(out, inventory.StockLine{Position: p, ItemCode: item.Code, ItemName: item.Name, LocationCode: loc.Code})
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationCode != out[j].LocationCode {
			return out[i].LocationCode < out[j].LocationCode
		}
		return out[i].ItemCode < out[j].ItemCode
	})
	return out, nil
}

func (r inventoryRepo) ListItemStock(context.Context) ([]inventory.ItemStock, error) {
	var out []inventory.ItemStock
	r.s.read(func(st *state) {
		for _, item := range st.items {
			if !item.TrackStock {
				continue
			}
			stock := inventory.ItemStock{Item: item, Quantity: decimal.Zero, Value: decimal.Zero}
			for key, p := range st.positions {
				if key.item == item.ID {
					stock.Quantity = stock.Quantity.Add(p.Quantity)
					stock.Value = stock.Value.Add(p.TotalValue)
				}
			}
			out = append(out, stock)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Code < out[j].Item.Code })
	return out, nil
}

func (r inventoryRepo) ListMovements(_ context.Context, filter inventory.MovementFilter) ([]inventory.Transaction, error) {
	var out []inventory.Transaction
	r.s.read(func(st *state) {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if filter.ItemID != nil && m.ItemID != *filter.ItemID {
				continue
			}
			if filter.LocationID != nil && !touches(m, *filter.LocationID) {
				continue
			}
			if filter.From != nil && m.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && m.Date.After(*filter.To) {
				continue
			}
			out = append(out, m)
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if filter.Limit > 0 {
		out = shared.Window(out, shared.Pagination{Page: filter.Offset/filter.Limit + 1, PerPage: filter.Limit})
	}
	return out, nil
}

func touches(m inventory.Transaction, locationID int64) bool {
	return (m.FromLocationID != nil && *m.FromLocationID == locationID) ||
		(m.ToLocationID != nil && *m.ToLocationID == locationID)
}
