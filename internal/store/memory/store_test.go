package memory_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/books/bookstest"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

func capitalEntry(t *testing.T, f *bookstest.Fixture, amount string) journals.PostingInput {
	t.Helper()
	ctx := context.Background()
	bank, err := f.Accounts.GetByCode(ctx, bookstest.BankCode)
	require.NoError(t, err)
	capital, err := f.Accounts.GetByCode(ctx, "3100")
	require.NoError(t, err)
	return journals.PostingInput{
		Date:         bookstest.Date("2024-01-01"),
		Type:         journals.TypeManual,
		Currency:     "GBP",
		ExchangeRate: decimal.NewFromInt(1),
		Lines: []journals.LineInput{
			{AccountID: bank.ID, Debit: bookstest.D(amount)},
			{AccountID: capital.ID, Credit: bookstest.D(amount)},
		},
	}
}

func TestConcurrentPostsGetDistinctNumbers(t *testing.T) {
	f := bookstest.New(t)

	const n = 20
	inputs := make([]journals.PostingInput, n)
	for i := range inputs {
		inputs[i] = capitalEntry(t, f, "10")
	}
	numbers := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := f.Journals.Post(context.Background(), inputs[i])
			if err == nil {
				numbers[i] = e.Number
			}
		}(i)
	}
	wg.Wait()

	sort.Strings(numbers)
	for i, number := range numbers {
		require.Equal(t, shared.FormatNumber(shared.PrefixJournal, int64(i+1)), number)
	}
	require.True(t, f.Balance(t, bookstest.BankCode).Equal(bookstest.D("200")))
}

func TestCancelledContextCommitsNothing(t *testing.T) {
	f := bookstest.New(t)
	in := capitalEntry(t, f, "10")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Journals.Post(ctx, in)
	require.ErrorIs(t, err, context.Canceled)

	e, err := f.Journals.Post(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "JE-000001", e.Number)
}

func TestCountersAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	f.Stock(t, "1", "1")
	f.Stock(t, "1", "1")

	e, err := f.Journals.Post(ctx, capitalEntry(t, f, "5"))
	require.NoError(t, err)
	require.Equal(t, "JE-000001", e.Number, "stock movements do not use the journal counter")

	moves, err := f.Inventory.Movements(ctx, inventory.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, moves, 2)
}
