package journals

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// LineInput describes a journal line for a posting request.
type LineInput struct {
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Source links an entry to the document that produced it.
type Source struct {
	Module string
	Number string
}

// PostingInput groups fields required to create a journal entry.
type PostingInput struct {
	Date         time.Time
	Type         EntryType
	Reference    string
	Description  string
	Currency     string
	ExchangeRate decimal.Decimal
	Lines        []LineInput
	Source       *Source
}

// Normalize validates the preconditions and the balance rule: the debit and credit
// sums must agree at two decimals, and so must the lines once rounded for storage.
// It runs before any number is allocated.
func (in *PostingInput) Normalize() error {
	if len(in.Lines) == 0 {
		return shared.Invalid("lines", "must not be empty")
	}
	if in.Date.IsZero() {
		return shared.Invalid("date", "is required")
	}
	in.Date = shared.Day(in.Date)
	if !in.Type.Valid() {
		return shared.Invalid("type", "is not a known entry type")
	}
	currency, err := shared.NormalizeCurrency(in.Currency)
	if err != nil {
		return err
	}
	in.Currency = currency
	if err := shared.ValidateRate(in.ExchangeRate); err != nil {
		return err
	}
	in.Reference = strings.TrimSpace(in.Reference)
	in.Description = strings.TrimSpace(in.Description)

	rawDebits, rawCredits := decimal.Zero, decimal.Zero
	debits, credits := decimal.Zero, decimal.Zero
	for idx := range in.Lines {
		line := &in.Lines[idx]
		if line.AccountID == 0 {
			return shared.Invalid(fmt.Sprintf("lines[%d].account", idx), "is required")
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.Invalid(fmt.Sprintf("lines[%d]", idx), "amounts must not be negative")
		}
		rawDebits = rawDebits.Add(line.Debit)
		rawCredits = rawCredits.Add(line.Credit)
		line.Debit = shared.Round2(line.Debit)
		line.Credit = shared.Round2(line.Credit)
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	if d, c := shared.Round2(rawDebits), shared.Round2(rawCredits); !d.Equal(c) {
		return shared.UnbalancedEntry(d, c)
	}
	// lines are stored at two decimals, so sub-cent amounts must still net to zero there
	if !debits.Equal(credits) {
		return shared.Invalid("lines", "amounts do not balance once each line is rounded to two decimals")
	}
	return nil
}

func (in PostingInput) sourceID() *uuid.UUID {
	if in.Source == nil || in.Source.Number == "" {
		return nil
	}
	id := SourceID(in.Source.Module, in.Source.Number)
	return &id
}

func (in PostingInput) sourceModule() string {
	if in.Source == nil {
		return ""
	}
	return in.Source.Module
}
