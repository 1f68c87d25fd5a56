package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/books/bookstest"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

var (
	dec  = bookstest.D
	date = bookstest.Date
)

func post(t *testing.T, f *bookstest.Fixture, day, debit, credit, amount string) string {
	t.Helper()
	ctx := context.Background()
	dr, err := f.Accounts.GetByCode(ctx, debit)
	require.NoError(t, err)
	cr, err := f.Accounts.GetByCode(ctx, credit)
	require.NoError(t, err)
	entry, err := f.Journals.Post(ctx, journals.PostingInput{
		Date:         date(day),
		Type:         journals.TypeManual,
		Currency:     "GBP",
		ExchangeRate: dec("1"),
		Lines: []journals.LineInput{
			{AccountID: dr.ID, Debit: dec(amount)},
			{AccountID: cr.ID, Credit: dec(amount)},
		},
	})
	require.NoError(t, err)
	return entry.Number
}

// ledger posts out of date order:
//
//	JE-000001 2024-03-31 Dr bank 300
//	JE-000002 2024-01-31 Dr bank 100
//	JE-000003 2024-02-01 Cr bank 40
//	JE-000004 2024-02-01 Dr bank 7
//	JE-000005 2024-04-01 Dr bank 1000
func ledger(t *testing.T) *bookstest.Fixture {
	f := bookstest.New(t)
	post(t, f, "2024-03-31", bookstest.BankCode, "3100", "300")
	post(t, f, "2024-01-31", bookstest.BankCode, "3100", "100")
	post(t, f, "2024-02-01", "6120", bookstest.BankCode, "40")
	post(t, f, "2024-02-01", bookstest.BankCode, "3100", "7")
	post(t, f, "2024-04-01", bookstest.BankCode, "3100", "1000")
	return f
}

func TestGeneralLedgerOpeningAndBounds(t *testing.T) {
	f := ledger(t)
	from, to := date("2024-02-01"), date("2024-03-31")

	gl, err := f.Reports.GeneralLedger(context.Background(), bookstest.BankCode, &from, &to)
	require.NoError(t, err)
	require.True(t, gl.OpeningBalance.Equal(dec("100")), "only lines strictly before from")

	var numbers []string
	var running []string
	for _, line := range gl.Transactions {
		numbers = append(numbers, line.EntryNumber)
		running = append(running, line.RunningBalance.StringFixed(2))
	}
	require.Equal(t, []string{"JE-000003", "JE-000004", "JE-000001"}, numbers)
	require.Equal(t, []string{"60.00", "67.00", "367.00"}, running)
	require.True(t, gl.ClosingBalance.Equal(dec("367")))
}

func TestGeneralLedgerOrdersByDateThenSequence(t *testing.T) {
	f := ledger(t)

	gl, err := f.Reports.GeneralLedger(context.Background(), bookstest.BankCode, nil, nil)
	require.NoError(t, err)
	require.True(t, gl.OpeningBalance.IsZero())
	var numbers []string
	for _, line := range gl.Transactions {
		numbers = append(numbers, line.EntryNumber)
	}
	require.Equal(t, []string{"JE-000002", "JE-000003", "JE-000004", "JE-000001", "JE-000005"}, numbers)
	require.True(t, gl.ClosingBalance.Equal(dec("1367")))
}

func TestGeneralLedgerRejections(t *testing.T) {
	f := ledger(t)
	from, to := date("2024-03-01"), date("2024-02-01")

	_, err := f.Reports.GeneralLedger(context.Background(), bookstest.BankCode, &from, &to)
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = f.Reports.GeneralLedger(context.Background(), "9999", nil, nil)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBalancesAsOf(t *testing.T) {
	ctx := context.Background()
	f := ledger(t)

	cases := map[string]struct {
		asOf *time.Time
		want string
	}{
		"before any entry": {asOf: ptr(date("2024-01-30")), want: "0"},
		"inclusive day":    {asOf: ptr(date("2024-02-01")), want: "67"},
		"quarter end":      {asOf: ptr(date("2024-03-31")), want: "367"},
		"everything":       {want: "1367"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			bal, err := f.Reports.BalanceOf(ctx, bookstest.BankCode, tc.asOf)
			require.NoError(t, err)
			require.True(t, bal.Equal(dec(tc.want)), bal.String())
		})
	}

	asOf := date("2024-03-31")
	tb, err := f.Reports.TrialBalance(ctx, &asOf)
	require.NoError(t, err)
	require.True(t, tb.TotalDebit.Equal(dec("407")))
	require.True(t, tb.TotalCredit.Equal(dec("407")))
	require.NotNil(t, tb.AsOf)
	for _, row := range tb.Rows {
		if row.Code == bookstest.BankCode {
			require.True(t, row.Debit.Equal(dec("367")))
		}
	}
}

func ptr(t time.Time) *time.Time { return &t }
