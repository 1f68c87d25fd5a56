package payments

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Direction distinguishes money received from money paid out.
type Direction string

const (
	DirectionReceipt Direction = "RECEIPT"
	DirectionPayment Direction = "PAYMENT"
)

// PartyType identifies the counterparty table.
type PartyType string

const (
	PartyCustomer PartyType = "CUSTOMER"
	PartySupplier PartyType = "SUPPLIER"
)

// Status of an invoice or bill, derived from the cumulative amount paid.
type Status string

const (
	StatusUnpaid        Status = "Unpaid"
	StatusPartiallyPaid Status = "Partially Paid"
	StatusPaid          Status = "Paid"
)

// StatusFor derives the document status from its total and the amount paid so far.
func StatusFor(total, paid decimal.Decimal) Status {
	switch {
	case !paid.IsPositive():
		return StatusUnpaid
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	default:
		return StatusPartiallyPaid
	}
}

// Payment records money moving against one invoice or bill.
type Payment struct {
	ID             int64           `json:"id"`
	Number         string          `json:"number"`
	Date           time.Time       `json:"date"`
	Direction      Direction       `json:"direction"`
	PartyType      PartyType       `json:"party_type"`
	PartyID        int64           `json:"party_id"`
	DocumentNumber string          `json:"document_number"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	Method         string          `json:"method"`
	BankAccountID  int64           `json:"bank_account_id"`
	Reference      string          `json:"reference,omitempty"`
	Description    string          `json:"description,omitempty"`
	JournalEntryID int64           `json:"journal_entry_id"`
	JournalNumber  string          `json:"journal_number"`
	CreatedAt      time.Time       `json:"created_at"`
}

// DefaultMethod is used when a payment names no method.
const DefaultMethod = "Bank Transfer"

// ApplyInput applies money against a document identified by its number.
type ApplyInput struct {
	DocumentNumber string
	Date           time.Time
	Amount         decimal.Decimal
	Method         string
	BankAccount    string
	Reference      string
	Description    string
}

// Normalize validates the input and rounds the amount to two decimals.
func (in *ApplyInput) Normalize() error {
	in.DocumentNumber = strings.ToUpper(strings.TrimSpace(in.DocumentNumber))
	if in.DocumentNumber == "" {
		return shared.Invalid("document_number", "is required")
	}
	if in.Date.IsZero() {
		return shared.Invalid("date", "is required")
	}
	in.Date = shared.Day(in.Date)
	in.Amount = shared.Round2(in.Amount)
	if !in.Amount.IsPositive() {
		return shared.Invalid("amount", "must be positive")
	}
	in.BankAccount = strings.TrimSpace(in.BankAccount)
	if in.BankAccount == "" {
		return shared.Invalid("bank_account", "is required")
	}
	in.Method = strings.TrimSpace(in.Method)
	if in.Method == "" {
		in.Method = DefaultMethod
	}
	in.Reference = strings.TrimSpace(in.Reference)
	in.Description = strings.TrimSpace(in.Description)
	return nil
}

// CheckApplicable rejects payments on settled documents and over-payments.
func CheckApplicable(number string, status Status, total, paid, amount decimal.Decimal) error {
	if status == StatusPaid {
		return shared.InvalidState("%s is already paid", number)
	}
	outstanding := total.Sub(paid)
	if amount.GreaterThan(outstanding) {
		return shared.InvalidState("payment %s exceeds the outstanding balance %s of %s",
			amount.StringFixed(shared.MoneyScale), outstanding.StringFixed(shared.MoneyScale), number)
	}
	return nil
}

// Filter narrows payment listings.
type Filter struct {
	Direction      Direction
	DocumentNumber string
	From           *time.Time
	To             *time.Time
}

// AccountLookup resolves bank account codes.
type AccountLookup interface {
	GetByCode(ctx context.Context, code string) (accounts.Account, error)
}

// ResolveBank checks the receiving or paying account is an active asset.
func ResolveBank(ctx context.Context, lookup AccountLookup, code string) (accounts.Account, error) {
	account, err := lookup.GetByCode(ctx, code)
	if err != nil {
		return accounts.Account{}, err
	}
	if account.Type != accounts.AccountTypeAsset {
		return accounts.Account{}, shared.Invalid("bank_account", "account "+account.Code+" is not an asset account")
	}
	if !account.IsActive {
		return accounts.Account{}, shared.Invalid("bank_account", "account "+account.Code+" is inactive")
	}
	return account, nil
}
