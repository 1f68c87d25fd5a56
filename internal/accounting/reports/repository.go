package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
)

// Period bounds a query by entry date; both ends are inclusive and optional.
type Period struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether day lies inside the period.
func (p Period) Contains(day time.Time) bool {
	if p.From != nil && day.Before(*p.From) {
		return false
	}
	if p.To != nil && day.After(*p.To) {
		return false
	}
	return true
}

// Repository reads posted lines for reporting. It never writes.
type Repository interface {
	GetAccountByCode(ctx context.Context, code string) (accounts.Account, error)
	// AccountTotals returns every account with base-currency sums over period.
	AccountTotals(ctx context.Context, period Period) ([]AccountBalance, error)
	AccountTotal(ctx context.Context, accountID int64, period Period) (debit, credit decimal.Decimal, err error)
	// AccountLines returns lines ordered by entry date, entry sequence, then line.
	AccountLines(ctx context.Context, accountID int64, period Period) ([]LedgerLine, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the PostgreSQL reporting repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetAccountByCode(ctx context.Context, code string) (accounts.Account, error) {
	return accounts.LoadAccountByCode(ctx, r.pool, code)
}

const postedInPeriod = `e.status = 'Posted' AND ($1::date IS NULL OR e.entry_date >= $1) AND ($2::date IS NULL OR e.entry_date <= $2)`

func (r *repository) AccountTotals(ctx context.Context, period Period) ([]AccountBalance, error) {
	rows, err := r.pool.Query(ctx, `SELECT a.id, a.code, a.name, a.type, a.expense_category, a.is_active,
       COALESCE(SUM(t.debit_base), 0), COALESCE(SUM(t.credit_base), 0)
FROM accounts a
LEFT JOIN (
    SELECT l.account_id, l.debit_base, l.credit_base
    FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id
    WHERE `+postedInPeriod+`
) t ON t.account_id = a.id
GROUP BY a.id, a.code, a.name, a.type, a.expense_category, a.is_active
ORDER BY a.code`, period.From, period.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.Type, &b.Category, &b.Active, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *repository) AccountTotal(ctx context.Context, accountID int64, period Period) (decimal.Decimal, decimal.Decimal, error) {
	var debit, credit decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(l.debit_base), 0), COALESCE(SUM(l.credit_base), 0)
FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id
WHERE `+postedInPeriod+` AND l.account_id = $3`, period.From, period.To, accountID).Scan(&debit, &credit)
	return debit, credit, err
}

func (r *repository) AccountLines(ctx context.Context, accountID int64, period Period) ([]LedgerLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT e.entry_date, e.number, e.sequence, l.id, e.entry_type, e.reference,
       COALESCE(NULLIF(l.description, ''), e.description), e.currency,
       l.debit, l.credit, l.debit_base, l.credit_base
FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id
WHERE `+postedInPeriod+` AND l.account_id = $3
ORDER BY e.entry_date, e.sequence, l.id`, period.From, period.To, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []LedgerLine
	for rows.Next() {
		var l LedgerLine
		if err := rows.Scan(&l.Date, &l.EntryNumber, &l.Sequence, &l.LineID, &l.EntryType, &l.Reference,
			&l.Description, &l.Currency, &l.Debit, &l.Credit, &l.DebitBase, &l.CreditBase); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
