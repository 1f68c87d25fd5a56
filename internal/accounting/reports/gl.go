package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
)

// LedgerLine is a posted line against one account, joined with its entry header.
type LedgerLine struct {
	Date           time.Time       `json:"date"`
	EntryNumber    string          `json:"entry_number"`
	Sequence       int64           `json:"-"`
	LineID         int64           `json:"-"`
	EntryType      string          `json:"entry_type"`
	Reference      string          `json:"reference"`
	Description    string          `json:"description"`
	Currency       string          `json:"currency"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	DebitBase      decimal.Decimal `json:"debit_base"`
	CreditBase     decimal.Decimal `json:"credit_base"`
	RunningBalance decimal.Decimal `json:"balance"`
}

// GeneralLedger is the account statement with running balances.
type GeneralLedger struct {
	Account        accounts.Account `json:"account"`
	From           *time.Time       `json:"from,omitempty"`
	To             *time.Time       `json:"to,omitempty"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	Transactions   []LedgerLine     `json:"transactions"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
}

// BuildGeneralLedger accumulates the running balance from opening over lines that
// must already be ordered by date then entry sequence.
func BuildGeneralLedger(account accounts.Account, opening decimal.Decimal, lines []LedgerLine) GeneralLedger {
	gl := GeneralLedger{Account: account, OpeningBalance: opening, Transactions: make([]LedgerLine, 0, len(lines))}
	balance := opening
	for _, line := range lines {
		balance = balance.Add(account.Type.SignedBalance(line.DebitBase, line.CreditBase))
		line.RunningBalance = balance
		gl.Transactions = append(gl.Transactions, line)
	}
	gl.ClosingBalance = balance
	return gl
}
