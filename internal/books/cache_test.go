package books_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/books"
	"github.com/odyssey-erp/odyssey-books/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-books/internal/store/memory"
)

func openCached(t *testing.T) *books.Books {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	b, err := books.Open(context.Background(), memory.New(), books.Options{
		BaseCurrency: "GBP",
		SeedDefaults: true,
		ReportCache:  cache.NewReportCache(client, time.Hour),
	})
	require.NoError(t, err)
	return b
}

func postRent(t *testing.T, b *books.Books, amount string) {
	t.Helper()
	ctx := context.Background()
	rent, err := b.Accounts.GetByCode(ctx, "6120")
	require.NoError(t, err)
	bank, err := b.Accounts.GetByCode(ctx, "1112")
	require.NoError(t, err)
	_, err = b.Journals.Post(ctx, journals.PostingInput{
		Date:         date("2024-03-15"),
		Type:         journals.TypeManual,
		Currency:     "GBP",
		ExchangeRate: d("1"),
		Lines: []journals.LineInput{
			{AccountID: rent.ID, Debit: d(amount)},
			{AccountID: bank.ID, Credit: d(amount)},
		},
	})
	require.NoError(t, err)
}

func TestCachedReportsFollowPostings(t *testing.T) {
	ctx := context.Background()
	b := openCached(t)
	from, to := date("2024-01-01"), date("2024-12-31")

	postRent(t, b, "40")
	pl, err := b.Reports.ProfitAndLoss(ctx, from, to)
	require.NoError(t, err)
	require.True(t, pl.TotalExpenses.Equal(d("40")))

	postRent(t, b, "10")
	pl, err = b.Reports.ProfitAndLoss(ctx, from, to)
	require.NoError(t, err)
	require.True(t, pl.TotalExpenses.Equal(d("50")))
}

func TestCachedReportsFollowAccountChanges(t *testing.T) {
	ctx := context.Background()
	b := openCached(t)
	from, to := date("2024-01-01"), date("2024-12-31")

	postRent(t, b, "40")
	pl, err := b.Reports.ProfitAndLoss(ctx, from, to)
	require.NoError(t, err)
	require.True(t, pl.TotalCOGS.IsZero())
	require.True(t, pl.TotalExpenses.Equal(d("40")))

	cogs := accounts.ExpenseCategoryCOGS
	_, err = b.Accounts.Update(ctx, "6120", accounts.UpdateInput{ExpenseCategory: &cogs})
	require.NoError(t, err)
	pl, err = b.Reports.ProfitAndLoss(ctx, from, to)
	require.NoError(t, err)
	require.True(t, pl.TotalCOGS.Equal(d("40")))
	require.True(t, pl.TotalExpenses.IsZero())

	name := "Premises Rent"
	_, err = b.Accounts.Update(ctx, "6120", accounts.UpdateInput{Name: &name})
	require.NoError(t, err)
	tb, err := b.Reports.TrialBalance(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, row := range tb.Rows {
		names = append(names, row.Name)
	}
	require.Contains(t, names, "Premises Rent")
}
