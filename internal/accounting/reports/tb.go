package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
)

// AccountBalance models an account with its aggregated base-currency movements.
type AccountBalance struct {
	AccountID int64
	Code      string
	Name      string
	Type      accounts.AccountType
	Category  accounts.ExpenseCategory
	Active    bool
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Balance is the signed balance under the account type's convention.
func (a AccountBalance) Balance() decimal.Decimal {
	return a.Type.SignedBalance(a.Debit, a.Credit)
}

// TrialBalanceRow places an account balance on its natural side.
type TrialBalanceRow struct {
	Code   string               `json:"code"`
	Name   string               `json:"name"`
	Type   accounts.AccountType `json:"type"`
	Debit  decimal.Decimal      `json:"debit"`
	Credit decimal.Decimal      `json:"credit"`
}

// TrialBalance is the structured trial balance report.
type TrialBalance struct {
	AsOf        *time.Time        `json:"as_of,omitempty"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
}

// BuildTrialBalance lists every active account with a non-zero balance. A positive
// balance sits on the natural side; a negative one moves to the opposite column.
func BuildTrialBalance(balances []AccountBalance) TrialBalance {
	tb := TrialBalance{Rows: []TrialBalanceRow{}, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, acc := range balances {
		if !acc.Active {
			continue
		}
		balance := acc.Balance()
		if balance.IsZero() {
			continue
		}
		row := TrialBalanceRow{Code: acc.Code, Name: acc.Name, Type: acc.Type, Debit: decimal.Zero, Credit: decimal.Zero}
		onDebit := acc.Type.DebitNormal() == balance.IsPositive()
		if onDebit {
			row.Debit = balance.Abs()
		} else {
			row.Credit = balance.Abs()
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })
	return tb
}
