package ap

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Bill is a posted purchase bill.
type Bill struct {
	ID              int64           `json:"id"`
	Number          string          `json:"number"`
	SupplierID      int64           `json:"supplier_id"`
	SupplierCode    string          `json:"supplier_code,omitempty"`
	SupplierInvoice string          `json:"supplier_invoice,omitempty"`
	Date            time.Time       `json:"date"`
	DueDate         time.Time       `json:"due_date"`
	Currency        string          `json:"currency"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	Notes           string          `json:"notes,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	Total           decimal.Decimal `json:"total"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Status          payments.Status `json:"status"`
	JournalEntryID  int64           `json:"journal_entry_id"`
	JournalNumber   string          `json:"journal_number"`
	CreatedAt       time.Time       `json:"created_at"`
	Lines           []BillLine      `json:"lines,omitempty"`
}

// Outstanding is the unpaid part of the bill in its own currency.
func (b Bill) Outstanding() decimal.Decimal {
	return b.Total.Sub(b.AmountPaid)
}

// BillLine is one purchased line; stock lines reference their receipt.
type BillLine struct {
	ID            int64           `json:"id"`
	BillID        int64           `json:"bill_id"`
	ItemID        *int64          `json:"item_id,omitempty"`
	LocationID    *int64          `json:"location_id,omitempty"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	VATRate       decimal.Decimal `json:"vat_rate"`
	LineNet       decimal.Decimal `json:"line_net"`
	LineVAT       decimal.Decimal `json:"line_vat"`
	StockTxNumber string          `json:"stock_tx_number,omitempty"`
}

// BillInput carries everything needed to post a bill.
type BillInput struct {
	SupplierID      int64
	SupplierInvoice string
	Date            time.Time
	DueDate         *time.Time
	Currency        string
	ExchangeRate    decimal.Decimal
	Notes           string
	Lines           []shared.DocumentLine
}

func (in *BillInput) normalize(baseCurrency string) (shared.DocumentTotals, error) {
	if in.SupplierID == 0 {
		return shared.DocumentTotals{}, shared.Invalid("supplier", "is required")
	}
	if in.Date.IsZero() {
		return shared.DocumentTotals{}, shared.Invalid("date", "is required")
	}
	in.Date = shared.Day(in.Date)
	if in.DueDate != nil {
		due := shared.Day(*in.DueDate)
		if due.Before(in.Date) {
			return shared.DocumentTotals{}, shared.Invalid("due_date", "must not be before the bill date")
		}
		in.DueDate = &due
	}
	var err error
	if in.Currency, in.ExchangeRate, err = shared.NormalizeCurrencyAndRate(in.Currency, in.ExchangeRate, baseCurrency); err != nil {
		return shared.DocumentTotals{}, err
	}
	in.SupplierInvoice = strings.TrimSpace(in.SupplierInvoice)
	in.Notes = strings.TrimSpace(in.Notes)
	return shared.NormalizeDocumentLines(in.Lines)
}

// BillFilter narrows bill listings.
type BillFilter struct {
	SupplierID *int64
	Status     payments.Status
	From       *time.Time
	To         *time.Time
}
