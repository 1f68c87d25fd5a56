package books_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/ap"
	"github.com/odyssey-erp/odyssey-books/internal/ar"
	"github.com/odyssey-erp/odyssey-books/internal/books"
	"github.com/odyssey-erp/odyssey-books/internal/books/bookstest"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	"github.com/odyssey-erp/odyssey-books/internal/store/memory"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

var (
	d    = bookstest.D
	date = bookstest.Date
)

func TestOpenRequiresChart(t *testing.T) {
	_, err := books.Open(context.Background(), memory.New(), books.Options{BaseCurrency: "GBP"})
	require.ErrorIs(t, err, shared.ErrConfigurationMissing)
}

func TestOpenRejectsUnknownCurrency(t *testing.T) {
	_, err := books.Open(context.Background(), memory.New(), books.Options{BaseCurrency: "XYZ", SeedDefaults: true})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestOpenIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	first, err := books.Open(ctx, store, books.Options{BaseCurrency: "gbp", SeedDefaults: true})
	require.NoError(t, err)
	require.Equal(t, "GBP", first.BaseCurrency)
	require.Equal(t, "MAIN", first.DefaultLocation.Code)

	second, err := books.Open(ctx, store, books.Options{BaseCurrency: "GBP", SeedDefaults: true})
	require.NoError(t, err)
	require.Equal(t, first.Chart, second.Chart)
	require.Equal(t, first.DefaultLocation.ID, second.DefaultLocation.ID)
}

func TestPurchaseSellAndSettle(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)

	bill, err := f.Purchases.PostBill(ctx, ap.BillInput{
		SupplierID: f.Supplier.ID,
		Date:       date("2024-01-10"),
		Lines:      []shared.DocumentLine{f.WidgetLine("10", "30")},
	})
	require.NoError(t, err)
	inv, err := f.Sales.PostInvoice(ctx, ar.InvoiceInput{
		CustomerID: f.Customer.ID,
		Date:       date("2024-01-20"),
		Lines:      []shared.DocumentLine{f.WidgetLine("2", "50")},
	})
	require.NoError(t, err)

	receipt, err := f.Payments.Apply(ctx, payments.ApplyInput{
		DocumentNumber: inv.Number, Date: date("2024-02-01"), Amount: d("120"), BankAccount: bookstest.BankCode,
	})
	require.NoError(t, err)
	require.Equal(t, "PMT-IN-000001", receipt.Number)
	require.Equal(t, payments.DirectionReceipt, receipt.Direction)

	paid, err := f.Payments.Apply(ctx, payments.ApplyInput{
		DocumentNumber: bill.Number, Date: date("2024-02-05"), Amount: d("360"), BankAccount: bookstest.BankCode,
	})
	require.NoError(t, err)
	require.Equal(t, "PMT-OUT-000001", paid.Number)

	tb, err := f.Reports.TrialBalance(ctx, nil)
	require.NoError(t, err)
	require.True(t, tb.TotalDebit.Equal(tb.TotalCredit), "debits %s credits %s", tb.TotalDebit, tb.TotalCredit)

	unbalanced, err := f.Journals.FindUnbalanced(ctx)
	require.NoError(t, err)
	require.Empty(t, unbalanced)

	valuation, err := f.Inventory.Valuation(ctx)
	require.NoError(t, err)
	require.True(t, valuation.TotalValue.Equal(d("240")))
	require.True(t, f.Balance(t, "1131").Equal(valuation.TotalValue), "stock ledger agrees with positions")
	require.True(t, f.Balance(t, "1121").IsZero())
	require.True(t, f.Balance(t, "2111").IsZero())
	require.True(t, f.Balance(t, bookstest.BankCode).Equal(d("-240")))

	pl, err := f.Reports.ProfitAndLoss(ctx, date("2024-01-01"), date("2024-12-31"))
	require.NoError(t, err)
	require.True(t, pl.TotalRevenue.Equal(d("100")))
	require.True(t, pl.TotalCOGS.Equal(d("60")))
	require.True(t, pl.NetProfit.Equal(d("40")))

	bs, err := f.Reports.BalanceSheet(ctx, date("2024-12-31"))
	require.NoError(t, err)
	require.True(t, bs.CurrentEarnings.Equal(d("40")))
	require.True(t, bs.TotalAssets.Equal(bs.TotalLiabilitiesAndEquity.Add(bs.CurrentEarnings)))
}
