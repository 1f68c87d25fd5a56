package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Cache stores rendered reports keyed by ledger version.
type Cache interface {
	Key(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// Service is the account balance calculator. Every figure is replayed from posted lines.
type Service struct {
	repo  Repository
	cache Cache
}

// NewService builds the calculator; cache may be nil.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Invalidate drops every cached report. It runs after a ledger or chart change commits.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Bump(ctx)
}

// BalanceOf returns the signed balance of the account identified by code,
// including every line dated on or before asOf when given.
func (s *Service) BalanceOf(ctx context.Context, code string, asOf *time.Time) (decimal.Decimal, error) {
	account, err := s.repo.GetAccountByCode(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	debit, credit, err := s.repo.AccountTotal(ctx, account.ID, Period{To: asOf})
	if err != nil {
		return decimal.Zero, err
	}
	return account.Type.SignedBalance(debit, credit), nil
}

// TrialBalance lists active accounts with a non-zero balance as of the given date.
func (s *Service) TrialBalance(ctx context.Context, asOf *time.Time) (TrialBalance, error) {
	return fetch(ctx, s.cache, func(ctx context.Context) (TrialBalance, error) {
		balances, err := s.repo.AccountTotals(ctx, Period{To: asOf})
		if err != nil {
			return TrialBalance{}, err
		}
		report := BuildTrialBalance(balances)
		report.AsOf = asOf
		return report, nil
	}, "tb", dayKey(asOf))
}

// ProfitAndLoss reports revenue and expense movements between from and to inclusive.
func (s *Service) ProfitAndLoss(ctx context.Context, from, to time.Time) (ProfitAndLoss, error) {
	from, to = shared.Day(from), shared.Day(to)
	if to.Before(from) {
		return ProfitAndLoss{}, shared.Invalid("to", "must not be before from")
	}
	return fetch(ctx, s.cache, func(ctx context.Context) (ProfitAndLoss, error) {
		balances, err := s.repo.AccountTotals(ctx, Period{From: &from, To: &to})
		if err != nil {
			return ProfitAndLoss{}, err
		}
		report := BuildProfitAndLoss(balances)
		report.From, report.To = from, to
		return report, nil
	}, "pl", dayKey(&from), dayKey(&to))
}

// BalanceSheet reports asset, liability and equity balances as of a date.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheet, error) {
	asOf = shared.Day(asOf)
	return fetch(ctx, s.cache, func(ctx context.Context) (BalanceSheet, error) {
		balances, err := s.repo.AccountTotals(ctx, Period{To: &asOf})
		if err != nil {
			return BalanceSheet{}, err
		}
		report := BuildBalanceSheet(balances)
		report.AsOf = asOf
		return report, nil
	}, "bs", dayKey(&asOf))
}

// GeneralLedger returns the account's lines in the period with running balances.
// The opening balance covers every line strictly before from.
func (s *Service) GeneralLedger(ctx context.Context, code string, from, to *time.Time) (GeneralLedger, error) {
	if from != nil && to != nil && to.Before(*from) {
		return GeneralLedger{}, shared.Invalid("to", "must not be before from")
	}
	account, err := s.repo.GetAccountByCode(ctx, code)
	if err != nil {
		return GeneralLedger{}, err
	}
	opening := decimal.Zero
	if from != nil {
		before := from.AddDate(0, 0, -1)
		debit, credit, err := s.repo.AccountTotal(ctx, account.ID, Period{To: &before})
		if err != nil {
			return GeneralLedger{}, err
		}
		opening = account.Type.SignedBalance(debit, credit)
	}
	lines, err := s.repo.AccountLines(ctx, account.ID, Period{From: from, To: to})
	if err != nil {
		return GeneralLedger{}, err
	}
	gl := BuildGeneralLedger(account, opening, lines)
	gl.From, gl.To = from, to
	return gl, nil
}

// fetch serves a report through the cache when one is configured.
func fetch[T any](ctx context.Context, cache Cache, load func(context.Context) (T, error), parts ...string) (T, error) {
	if cache == nil {
		return load(ctx)
	}
	var out T
	key, err := cache.Key(ctx, parts...)
	if err != nil {
		return out, err
	}
	err = cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	return out, err
}

func dayKey(t *time.Time) string {
	if t == nil {
		return "all"
	}
	return t.Format(shared.DateLayout)
}
