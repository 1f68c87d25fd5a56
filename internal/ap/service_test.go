package ap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/ap"
	"github.com/odyssey-erp/odyssey-books/internal/books/bookstest"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

var (
	d    = bookstest.D
	date = bookstest.Date
)

func widgetBill(f *bookstest.Fixture, qty, price string) ap.BillInput {
	return ap.BillInput{
		SupplierID:      f.Supplier.ID,
		SupplierInvoice: "NW-7781",
		Date:            date("2024-02-01"),
		Lines:           []shared.DocumentLine{f.WidgetLine(qty, price)},
	}
}

func TestPostBillReceivesStockAndPostsPurchase(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)

	bill, err := f.Purchases.PostBill(ctx, widgetBill(f, "10", "30"))
	require.NoError(t, err)
	require.Equal(t, "BILL-000001", bill.Number)
	require.Equal(t, "NORTH", bill.SupplierCode)
	require.True(t, bill.Subtotal.Equal(d("300")))
	require.True(t, bill.VATAmount.Equal(d("60")))
	require.True(t, bill.Total.Equal(d("360")))
	require.Equal(t, payments.StatusUnpaid, bill.Status)
	require.Equal(t, date("2024-03-02"), bill.DueDate)
	require.Len(t, bill.Lines, 1)
	require.Equal(t, "STK-IN-000001", bill.Lines[0].StockTxNumber)

	entry, err := f.Journals.Get(ctx, bill.JournalNumber)
	require.NoError(t, err)
	require.Equal(t, journals.TypePurchaseBill, entry.Type)
	require.Equal(t, "BILL-000001 / NW-7781", entry.Reference)

	require.True(t, f.Balance(t, "1131").Equal(d("300")))
	// VAT input sits under liabilities, so a debit shows as a negative balance
	require.True(t, f.Balance(t, "2122").Equal(d("-60")))
	require.True(t, f.Balance(t, "2111").Equal(d("360")))

	pos, err := f.Inventory.Position(ctx, f.Widget.ID, f.DefaultLocation.ID)
	require.NoError(t, err)
	require.True(t, pos.Quantity.Equal(d("10")))
	require.True(t, pos.AvgCost.Equal(d("30")))
	require.True(t, pos.TotalValue.Equal(d("300")))

	got, err := f.Purchases.GetBill(ctx, bill.Number)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	require.Contains(t, f.Audit.Actions(), "bill.post")
}

func TestPostBillForeignCurrencyCostsStockInBase(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)

	in := widgetBill(f, "4", "25")
	in.Currency = "USD"
	in.ExchangeRate = d("0.8")
	in.Lines[0].VATRate = d("0")
	bill, err := f.Purchases.PostBill(ctx, in)
	require.NoError(t, err)
	require.True(t, bill.Total.Equal(d("100")))

	pos, err := f.Inventory.Position(ctx, f.Widget.ID, f.DefaultLocation.ID)
	require.NoError(t, err)
	require.True(t, pos.AvgCost.Equal(d("20")))
	require.True(t, pos.TotalValue.Equal(d("80")))
	require.True(t, f.Balance(t, "1131").Equal(d("80")))
	require.True(t, f.Balance(t, "2111").Equal(d("80")))
}

func TestWeightedAverageAcrossBills(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)

	_, err := f.Purchases.PostBill(ctx, widgetBill(f, "10", "30"))
	require.NoError(t, err)
	_, err = f.Purchases.PostBill(ctx, widgetBill(f, "5", "36"))
	require.NoError(t, err)

	pos, err := f.Inventory.Position(ctx, f.Widget.ID, f.DefaultLocation.ID)
	require.NoError(t, err)
	require.True(t, pos.Quantity.Equal(d("15")))
	require.True(t, pos.TotalValue.Equal(d("480")))
	require.True(t, pos.AvgCost.Equal(d("32")))
}

func TestApplyPaymentSettlesBill(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	bill, err := f.Purchases.PostBill(ctx, widgetBill(f, "10", "30"))
	require.NoError(t, err)

	pay := func(amount string) payments.ApplyInput {
		return payments.ApplyInput{
			DocumentNumber: bill.Number,
			Date:           date("2024-02-20"),
			Amount:         d(amount),
			Method:         "Cheque",
			BankAccount:    bookstest.BankCode,
		}
	}

	first, err := f.Purchases.ApplyPayment(ctx, pay("160"))
	require.NoError(t, err)
	require.Equal(t, "PMT-OUT-000001", first.Number)
	require.Equal(t, payments.DirectionPayment, first.Direction)
	require.Equal(t, payments.PartySupplier, first.PartyType)
	require.Equal(t, "Cheque", first.Method)

	got, err := f.Purchases.GetBill(ctx, bill.Number)
	require.NoError(t, err)
	require.Equal(t, payments.StatusPartiallyPaid, got.Status)

	_, err = f.Purchases.ApplyPayment(ctx, pay("200.01"))
	require.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.Purchases.ApplyPayment(ctx, pay("200"))
	require.NoError(t, err)
	got, err = f.Purchases.GetBill(ctx, bill.Number)
	require.NoError(t, err)
	require.Equal(t, payments.StatusPaid, got.Status)

	require.True(t, f.Balance(t, "2111").IsZero())
	require.True(t, f.Balance(t, bookstest.BankCode).Equal(d("-360")))
	require.Contains(t, f.Audit.Actions(), "payment.make")
}

func TestPostBillRejectsUnknownSupplier(t *testing.T) {
	f := bookstest.New(t)
	in := widgetBill(f, "1", "30")
	in.SupplierID = 42
	_, err := f.Purchases.PostBill(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrNotFound)

	bills, err := f.Purchases.ListBills(context.Background(), ap.BillFilter{})
	require.NoError(t, err)
	require.Empty(t, bills)
}
