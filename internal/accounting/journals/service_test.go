package journals_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/books/bookstest"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

var d = bookstest.D

func accountID(t *testing.T, f *bookstest.Fixture, code string) int64 {
	t.Helper()
	a, err := f.Accounts.GetByCode(context.Background(), code)
	require.NoError(t, err)
	return a.ID
}

func capital(t *testing.T, f *bookstest.Fixture, amount string) journals.PostingInput {
	return journals.PostingInput{
		Date:         bookstest.Date("2024-01-01"),
		Type:         journals.TypeManual,
		Reference:    "OPEN",
		Description:  "Share capital introduced",
		Currency:     "gbp",
		ExchangeRate: d("1"),
		Lines: []journals.LineInput{
			{AccountID: accountID(t, f, bookstest.BankCode), Debit: d(amount)},
			{AccountID: accountID(t, f, "3100"), Credit: d(amount)},
		},
	}
}

func TestPostBalancedEntry(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	var seen []string
	f.Journals.Observe(journals.ObserverFunc(func(_ context.Context, entries []journals.Entry) {
		for _, e := range entries {
			seen = append(seen, e.Number)
		}
	}))

	entry, err := f.Journals.Post(ctx, capital(t, f, "1000"))
	require.NoError(t, err)
	require.Equal(t, "JE-000001", entry.Number)
	require.Equal(t, int64(1), entry.Sequence)
	require.Equal(t, "GBP", entry.Currency)
	require.Equal(t, journals.StatusPosted, entry.Status)
	require.Len(t, entry.Lines, 2)
	require.Equal(t, []string{"JE-000001"}, seen)

	got, err := f.Journals.Get(ctx, "je-000001")
	require.NoError(t, err)
	require.Equal(t, "Share capital introduced", got.Description)
	require.True(t, f.Balance(t, bookstest.BankCode).Equal(d("1000")))
	require.True(t, f.Balance(t, "3100").Equal(d("1000")))
}

func TestUnbalancedEntryConsumesNoNumber(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)

	in := capital(t, f, "1000")
	in.Lines[1].Credit = d("999.99")
	_, err := f.Journals.Post(ctx, in)
	require.True(t, errors.Is(err, shared.ErrUnbalancedEntry))
	var unbalanced *shared.UnbalancedEntryError
	require.True(t, errors.As(err, &unbalanced))
	require.True(t, unbalanced.Debits.Equal(d("1000")))
	require.True(t, unbalanced.Credits.Equal(d("999.99")))

	entry, err := f.Journals.Post(ctx, capital(t, f, "1000"))
	require.NoError(t, err)
	require.Equal(t, "JE-000001", entry.Number)
}

func TestAmountsRoundBeforeBalanceCheck(t *testing.T) {
	f := bookstest.New(t)
	in := capital(t, f, "10.004")
	in.Lines[1].Credit = d("10.001")
	entry, err := f.Journals.Post(context.Background(), in)
	require.NoError(t, err)
	require.True(t, entry.Lines[0].Debit.Equal(d("10")))
}

func TestSubCentLinesMustBalanceOnceRounded(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	bank, equity := accountID(t, f, bookstest.BankCode), accountID(t, f, "3100")

	in := capital(t, f, "0.01")
	in.Lines = []journals.LineInput{
		{AccountID: bank, Debit: d("0.005")},
		{AccountID: bank, Debit: d("0.005")},
		{AccountID: equity, Credit: d("0.01")},
	}
	_, err := f.Journals.Post(ctx, in)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.NotErrorIs(t, err, shared.ErrUnbalancedEntry)

	in.Lines = []journals.LineInput{
		{AccountID: bank, Debit: d("0.004")},
		{AccountID: equity, Credit: d("0.013")},
	}
	_, err = f.Journals.Post(ctx, in)
	var unbalanced *shared.UnbalancedEntryError
	require.ErrorAs(t, err, &unbalanced)
	require.True(t, unbalanced.Debits.Equal(d("0")))
	require.True(t, unbalanced.Credits.Equal(d("0.01")))

	entries, err := f.Journals.List(ctx, journals.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPostRejections(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)

	cases := map[string]struct {
		mutate func(*journals.PostingInput)
		want   error
	}{
		"no lines":        {func(in *journals.PostingInput) { in.Lines = nil }, shared.ErrValidation},
		"unknown account": {func(in *journals.PostingInput) { in.Lines[0].AccountID = 9999 }, shared.ErrNotFound},
		"negative amount": {func(in *journals.PostingInput) { in.Lines[0].Debit = d("-5") }, shared.ErrValidation},
		"zero rate":       {func(in *journals.PostingInput) { in.ExchangeRate = d("0") }, shared.ErrValidation},
		"rate too fine":   {func(in *journals.PostingInput) { in.ExchangeRate = d("1.0000001") }, shared.ErrValidation},
		"bad currency":    {func(in *journals.PostingInput) { in.Currency = "POUND" }, shared.ErrValidation},
		"empty other":     {func(in *journals.PostingInput) { in.Type = journals.Other(" ") }, shared.ErrValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := capital(t, f, "100")
			tc.mutate(&in)
			_, err := f.Journals.Post(ctx, in)
			require.ErrorIs(t, err, tc.want)
		})
	}

	entries, err := f.Journals.List(ctx, journals.ListFilter{})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPostToInactiveAccountFails(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	_, err := f.Accounts.Create(ctx, accounts.CreateInput{Code: "1113", Name: "Old Bank", Type: accounts.AccountTypeAsset})
	require.NoError(t, err)
	inactive := false
	_, err = f.Accounts.Update(ctx, "1113", accounts.UpdateInput{IsActive: &inactive})
	require.NoError(t, err)

	in := capital(t, f, "50")
	in.Lines[0].AccountID = accountID(t, f, "1113")
	_, err = f.Journals.Post(ctx, in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestForeignEntryCarriesBaseAmounts(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	in := capital(t, f, "100.01")
	in.Currency = "USD"
	in.ExchangeRate = d("0.789123")
	in.Type = journals.Other("Revaluation")

	entry, err := f.Journals.Post(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "Revaluation", entry.Type.String())
	require.True(t, entry.Lines[0].DebitBase.Equal(d("78.92019123")), entry.Lines[0].DebitBase.String())
	debit, credit := entry.BaseTotals()
	require.True(t, debit.Equal(credit))

	unbalanced, err := f.Journals.FindUnbalanced(ctx)
	require.NoError(t, err)
	require.Empty(t, unbalanced)
	require.True(t, f.Balance(t, bookstest.BankCode).Equal(d("78.92019123")))
}

func TestListFiltersByType(t *testing.T) {
	ctx := context.Background()
	f := bookstest.New(t)
	_, err := f.Journals.Post(ctx, capital(t, f, "10"))
	require.NoError(t, err)
	other := capital(t, f, "20")
	other.Type = journals.Other("Accrual")
	_, err = f.Journals.Post(ctx, other)
	require.NoError(t, err)

	manual := journals.TypeManual
	list, err := f.Journals.List(ctx, journals.ListFilter{Type: &manual})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "JE-000001", list[0].Number)
}
