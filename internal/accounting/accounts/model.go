package accounts

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// ParseAccountType accepts the canonical form case-insensitively ("Asset", "ASSET").
func ParseAccountType(s string) (AccountType, bool) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether the natural balance of t sits on the debit side.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// SignedBalance applies the sign convention for t: debits − credits for debit-normal
// types, credits − debits otherwise. Every report derives balances through it.
func (t AccountType) SignedBalance(debit, credit decimal.Decimal) decimal.Decimal {
	if t.DebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// ExpenseCategory splits expense accounts between cost of sales and operating expenses.
type ExpenseCategory string

const (
	ExpenseCategoryNone      ExpenseCategory = ""
	ExpenseCategoryCOGS      ExpenseCategory = "COGS"
	ExpenseCategoryOperating ExpenseCategory = "OPERATING"
)

// DefaultExpenseCategory derives the category for a new expense account from the
// chart's numbering convention: codes starting with 5 are cost of sales.
func DefaultExpenseCategory(t AccountType, code string) ExpenseCategory {
	if t != AccountTypeExpense {
		return ExpenseCategoryNone
	}
	if strings.HasPrefix(code, "5") {
		return ExpenseCategoryCOGS
	}
	return ExpenseCategoryOperating
}

// Account models a chart of accounts node.
type Account struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Type            AccountType     `json:"type"`
	ParentID        *int64          `json:"parent_id,omitempty"`
	ExpenseCategory ExpenseCategory `json:"expense_category,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateInput describes a new account.
type CreateInput struct {
	Code            string
	Name            string
	Type            AccountType
	ParentCode      string
	ExpenseCategory ExpenseCategory
}

// UpdateInput changes mutable attributes; nil fields are left untouched.
type UpdateInput struct {
	Name            *string
	Type            *AccountType
	ParentCode      *string
	ExpenseCategory *ExpenseCategory
	IsActive        *bool
}
