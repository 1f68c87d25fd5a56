package ar_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/books/bookstest"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

var (
	d    = bookstest.D
	date = bookstest.Date
)

func widgetInvoice(f *bookstest.Fixture, qty, price string) ar.InvoiceInput {
	return ar.InvoiceInput{
		CustomerID: f.Customer.ID,
		Date:       date("2024-03-01"),
		Lines:      []shared.DocumentLine{f.WidgetLine(qty, price)},
	}
}

func TestPostInvoicePostsRevenueStockAndCOGS(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	f.Stock(t, "10", "30")

	inv, err := f.Sales.PostInvoice(ctx, widgetInvoice(f, "2", "50"))
	require.NoError(t, err)

	require.Equal(t, "INV-000001", inv.Number)
	require.Equal(t, payments.StatusUnpaid, inv.Status)
	require.Equal(t, "GBP", inv.Currency)
	require.True(t, inv.Subtotal.Equal(d("100")))
	require.True(t, inv.VATAmount.Equal(d("20")))
	require.True(t, inv.Total.Equal(d("120")))
	require.Equal(t, date("2024-03-31"), inv.DueDate, "due date follows customer terms")
	require.Equal(t, "JE-000001", inv.JournalNumber)

	require.Len(t, inv.Lines, 1)
	line := inv.Lines[0]
	require.True(t, line.CostBasis.Equal(d("30")))
	require.True(t, line.CostValue.Equal(d("60")))
	require.Equal(t, "STK-OUT-000002", line.StockTxNumber)
	require.Equal(t, "JE-000002", line.COGSEntryNumber)
	require.NotNil(t, line.LocationID)
	require.Equal(t, f.DefaultLocation.ID, *line.LocationID)

	revenue, err := f.Journals.Get(ctx, inv.JournalNumber)
	require.NoError(t, err)
	require.Equal(t, journals.TypeSalesInvoice, revenue.Type)
	require.Len(t, revenue.Lines, 3)

	cogs, err := f.Journals.Get(ctx, line.COGSEntryNumber)
	require.NoError(t, err)
	require.Equal(t, journals.TypeCOGS, cogs.Type)
	require.Equal(t, inv.Number, cogs.Reference)
	require.Equal(t, "COGS - INV-000001 - WIDGET", cogs.Description)

	require.True(t, f.Balance(t, "1121").Equal(d("120")))
	require.True(t, f.Balance(t, "4110").Equal(d("100")))
	require.True(t, f.Balance(t, "2121").Equal(d("20")))
	require.True(t, f.Balance(t, "5100").Equal(d("60")))

	pos, err := f.Inventory.Position(ctx, f.Widget.ID, f.DefaultLocation.ID)
	require.NoError(t, err)
	require.True(t, pos.Quantity.Equal(d("8")))
	require.True(t, pos.TotalValue.Equal(d("240")))

	got, err := f.Sales.GetInvoice(ctx, "inv-000001")
	require.NoError(t, err)
	require.Equal(t, inv.Number, got.Number)
	require.Len(t, got.Lines, 1)

	require.Contains(t, f.Audit.Actions(), "invoice.post")
}

func TestPostInvoiceServiceLineSkipsStock(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	labour := f.Labour.ID

	inv, err := f.Sales.PostInvoice(ctx, ar.InvoiceInput{
		CustomerID: f.Customer.ID,
		Date:       date("2024-03-01"),
		Lines: []shared.DocumentLine{
			{ItemID: &labour, Quantity: d("1.5"), UnitPrice: d("40"), VATRate: d("20")},
			{Description: "Call-out fee", Quantity: d("1"), UnitPrice: d("15"), VATRate: d("0")},
		},
	})
	require.NoError(t, err)
	require.True(t, inv.Total.Equal(d("87")), inv.Total.String())
	require.Equal(t, "Fitting labour", inv.Lines[0].Description)
	require.Empty(t, inv.Lines[0].StockTxNumber)
	require.Empty(t, inv.Lines[0].COGSEntryNumber)

	entries, err := f.Journals.List(ctx, journals.ListFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1, "no COGS entry for service lines")
}

func TestPostInvoiceStockShortfallRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	f.Stock(t, "1", "30")

	_, err := f.Sales.PostInvoice(ctx, widgetInvoice(f, "2", "50"))
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrInsufficientStock))
	var short *shared.InsufficientStockError
	require.True(t, errors.As(err, &short))
	require.True(t, short.Available.Equal(d("1")))
	require.True(t, short.Requested.Equal(d("2")))

	invoices, err := f.Sales.ListInvoices(ctx, ar.InvoiceFilter{})
	require.NoError(t, err)
	require.Empty(t, invoices)
	entries, err := f.Journals.List(ctx, journals.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, entries)
	require.True(t, f.Balance(t, "1121").IsZero())
	pos, err := f.Inventory.Position(ctx, f.Widget.ID, f.DefaultLocation.ID)
	require.NoError(t, err)
	require.True(t, pos.Quantity.Equal(d("1")))

	// nothing was consumed by the failed attempt
	inv, err := f.Sales.PostInvoice(ctx, widgetInvoice(f, "1", "50"))
	require.NoError(t, err)
	require.Equal(t, "INV-000001", inv.Number)
	require.Equal(t, "JE-000001", inv.JournalNumber)
}

func TestPostInvoiceValidation(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)

	cases := map[string]struct {
		mutate func(*ar.InvoiceInput)
		want   error
	}{
		"no lines":         {func(in *ar.InvoiceInput) { in.Lines = nil }, shared.ErrValidation},
		"no date":          {func(in *ar.InvoiceInput) { in.Date = date("0001-01-01") }, shared.ErrValidation},
		"unknown customer": {func(in *ar.InvoiceInput) { in.CustomerID = 999 }, shared.ErrNotFound},
		"bad currency":     {func(in *ar.InvoiceInput) { in.Currency = "XXQ" }, shared.ErrValidation},
		"due before date":  {func(in *ar.InvoiceInput) { due := date("2024-02-01"); in.DueDate = &due }, shared.ErrValidation},
		"zero quantity":    {func(in *ar.InvoiceInput) { in.Lines[0].Quantity = d("0") }, shared.ErrValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := widgetInvoice(f, "1", "50")
			tc.mutate(&in)
			_, err := f.Sales.PostInvoice(ctx, in)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestApplyReceiptTracksCumulativeStatus(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	f.Stock(t, "10", "30")
	inv, err := f.Sales.PostInvoice(ctx, widgetInvoice(f, "2", "50"))
	require.NoError(t, err)

	receipt := func(amount string) payments.ApplyInput {
		return payments.ApplyInput{
			DocumentNumber: inv.Number,
			Date:           date("2024-03-10"),
			Amount:         d(amount),
			BankAccount:    bookstest.BankCode,
		}
	}

	first, err := f.Sales.ApplyReceipt(ctx, receipt("50"))
	require.NoError(t, err)
	require.Equal(t, "PMT-IN-000001", first.Number)
	require.Equal(t, payments.DirectionReceipt, first.Direction)
	require.Equal(t, payments.PartyCustomer, first.PartyType)
	require.Equal(t, payments.DefaultMethod, first.Method)

	got, err := f.Sales.GetInvoice(ctx, inv.Number)
	require.NoError(t, err)
	require.Equal(t, payments.StatusPartiallyPaid, got.Status)
	require.True(t, got.AmountPaid.Equal(d("50")))

	_, err = f.Sales.ApplyReceipt(ctx, receipt("80"))
	require.ErrorIs(t, err, shared.ErrInvalidState, "over-payment is rejected")

	_, err = f.Sales.ApplyReceipt(ctx, receipt("70"))
	require.NoError(t, err)
	got, err = f.Sales.GetInvoice(ctx, inv.Number)
	require.NoError(t, err)
	require.Equal(t, payments.StatusPaid, got.Status)
	require.True(t, got.Outstanding().IsZero())

	_, err = f.Sales.ApplyReceipt(ctx, receipt("1"))
	require.ErrorIs(t, err, shared.ErrInvalidState, "a paid invoice takes no more money")

	require.True(t, f.Balance(t, "1121").IsZero())
	require.True(t, f.Balance(t, bookstest.BankCode).Equal(d("120")))
}

func TestApplyReceiptRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	f.Stock(t, "10", "30")
	inv, err := f.Sales.PostInvoice(ctx, widgetInvoice(f, "1", "50"))
	require.NoError(t, err)

	_, err = f.Sales.ApplyReceipt(ctx, payments.ApplyInput{DocumentNumber: inv.Number, Date: date("2024-03-10"), Amount: d("0"), BankAccount: bookstest.BankCode})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.Sales.ApplyReceipt(ctx, payments.ApplyInput{DocumentNumber: inv.Number, Date: date("2024-03-10"), Amount: d("10"), BankAccount: "4110"})
	require.ErrorIs(t, err, shared.ErrValidation, "revenue account is not a bank")

	_, err = f.Sales.ApplyReceipt(ctx, payments.ApplyInput{DocumentNumber: "INV-000099", Date: date("2024-03-10"), Amount: d("10"), BankAccount: bookstest.BankCode})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestForeignCurrencyInvoicePostsAtRate(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)

	inv, err := f.Sales.PostInvoice(ctx, ar.InvoiceInput{
		CustomerID:   f.Customer.ID,
		Date:         date("2024-03-01"),
		Currency:     "eur",
		ExchangeRate: d("0.85"),
		Lines:        []shared.DocumentLine{{Description: "Consulting", Quantity: d("1"), UnitPrice: d("100")}},
	})
	require.NoError(t, err)
	require.Equal(t, "EUR", inv.Currency)
	require.True(t, inv.Total.Equal(d("100")))
	require.True(t, f.Balance(t, "1121").Equal(d("85")))

	pmt, err := f.Sales.ApplyReceipt(ctx, payments.ApplyInput{
		DocumentNumber: inv.Number, Date: date("2024-03-05"), Amount: d("100"), BankAccount: bookstest.BankCode,
	})
	require.NoError(t, err)
	require.Equal(t, "EUR", pmt.Currency)
	require.True(t, pmt.ExchangeRate.Equal(d("0.85")))
	require.True(t, f.Balance(t, "1121").IsZero())
	require.True(t, f.Balance(t, bookstest.BankCode).Equal(d("85")))
}

func TestAgingBucketsOutstandingInvoices(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	consult := func(on string, amount string) ar.InvoiceInput {
		return ar.InvoiceInput{
			CustomerID: f.Customer.ID,
			Date:       date(on),
			Lines:      []shared.DocumentLine{{Description: "Consulting", Quantity: d("1"), UnitPrice: d(amount)}},
		}
	}
	old, err := f.Sales.PostInvoice(ctx, consult("2024-01-01", "100")) // due 2024-01-31
	require.NoError(t, err)
	_, err = f.Sales.PostInvoice(ctx, consult("2024-03-10", "40")) // due 2024-04-09
	require.NoError(t, err)
	_, err = f.Sales.PostInvoice(ctx, consult("2024-04-01", "999")) // after as-of
	require.NoError(t, err)
	_, err = f.Sales.ApplyReceipt(ctx, payments.ApplyInput{DocumentNumber: old.Number, Date: date("2024-02-01"), Amount: d("30"), BankAccount: bookstest.BankCode})
	require.NoError(t, err)

	report, err := f.Sales.Aging(ctx, date("2024-03-15"))
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	require.Equal(t, "ACME", row.CustomerCode)
	require.True(t, row.Days60.Equal(d("70")), row.Days60.String())
	require.True(t, row.Current.Equal(d("40")))
	require.True(t, row.Total.Equal(d("110")))
	require.True(t, report.Totals.Total.Equal(d("110")))
}
