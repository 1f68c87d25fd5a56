package journals

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind is the closed set of entry types produced by the core.
type EntryKind string

const (
	KindManual       EntryKind = "Manual"
	KindSalesInvoice EntryKind = "Sales Invoice"
	KindPurchaseBill EntryKind = "Purchase Bill"
	KindPayment      EntryKind = "Payment"
	KindCOGS         EntryKind = "COGS"
	KindOther        EntryKind = "Other"
)

// EntryType tags an entry. Only KindOther carries a free-form label.
type EntryType struct {
	Kind  EntryKind
	Label string
}

var (
	TypeManual       = EntryType{Kind: KindManual}
	TypeSalesInvoice = EntryType{Kind: KindSalesInvoice}
	TypePurchaseBill = EntryType{Kind: KindPurchaseBill}
	TypePayment      = EntryType{Kind: KindPayment}
	TypeCOGS         = EntryType{Kind: KindCOGS}
)

// Other builds the escape-hatch type for callers outside the core.
func Other(label string) EntryType {
	return EntryType{Kind: KindOther, Label: strings.TrimSpace(label)}
}

// ParseEntryType maps a stored tag back to its type; unknown tags become Other.
func ParseEntryType(s string) EntryType {
	switch k := EntryKind(strings.TrimSpace(s)); k {
	case KindManual, KindSalesInvoice, KindPurchaseBill, KindPayment, KindCOGS:
		return EntryType{Kind: k}
	default:
		return Other(s)
	}
}

func (t EntryType) String() string {
	if t.Kind == KindOther {
		return t.Label
	}
	return string(t.Kind)
}

// Valid reports whether t is a known kind, or Other with a non-empty label
// that does not shadow a known kind.
func (t EntryType) Valid() bool {
	switch t.Kind {
	case KindManual, KindSalesInvoice, KindPurchaseBill, KindPayment, KindCOGS:
		return t.Label == ""
	case KindOther:
		return t.Label != "" && ParseEntryType(t.Label).Kind == KindOther
	}
	return false
}

func (t EntryType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *EntryType) UnmarshalText(b []byte) error {
	*t = ParseEntryType(string(b))
	return nil
}

// Status of a journal entry. Only Posted exists.
type Status string

const StatusPosted Status = "Posted"

// Entry is a posted journal entry header with its lines.
type Entry struct {
	ID           int64           `json:"id"`
	Number       string          `json:"number"`
	Sequence     int64           `json:"sequence"`
	Date         time.Time       `json:"date"`
	Type         EntryType       `json:"type"`
	Reference    string          `json:"reference"`
	Description  string          `json:"description"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Status       Status          `json:"status"`
	SourceModule string          `json:"source_module,omitempty"`
	SourceID     *uuid.UUID      `json:"source_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Lines        []Line          `json:"lines,omitempty"`
}

// Line is one side of an entry. Base amounts are amount × exchange rate.
type Line struct {
	ID          int64           `json:"id"`
	EntryID     int64           `json:"entry_id"`
	AccountID   int64           `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	DebitBase   decimal.Decimal `json:"debit_base"`
	CreditBase  decimal.Decimal `json:"credit_base"`
	Description string          `json:"description"`
}

// Totals returns the debit and credit sums in transaction currency.
func (e Entry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// BaseTotals returns the debit and credit sums in base currency.
func (e Entry) BaseTotals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.DebitBase)
		credit = credit.Add(l.CreditBase)
	}
	return debit, credit
}

// ListFilter narrows entry listings. Dates are inclusive.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Type   *EntryType
	Limit  int
	Offset int
}

// Imbalance reports an entry whose base-currency lines do not net to zero.
type Imbalance struct {
	Number     string          `json:"number"`
	DebitBase  decimal.Decimal `json:"debit_base"`
	CreditBase decimal.Decimal `json:"credit_base"`
}

// sourceNamespace seeds deterministic source ids for documents.
var sourceNamespace = uuid.MustParse("8f7c1f52-8f4e-4d5e-9a39-3f0b5f1c2a10")

// SourceID derives the stable id linking entries to a business document.
func SourceID(module, documentNumber string) uuid.UUID {
	return uuid.NewSHA1(sourceNamespace, []byte(module+":"+documentNumber))
}
