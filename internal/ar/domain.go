package ar

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Invoice is a posted sales invoice. Its financial effect is JournalNumber.
type Invoice struct {
	ID             int64           `json:"id"`
	Number         string          `json:"number"`
	CustomerID     int64           `json:"customer_id"`
	CustomerCode   string          `json:"customer_code,omitempty"`
	Date           time.Time       `json:"date"`
	DueDate        time.Time       `json:"due_date"`
	Currency       string          `json:"currency"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	Terms          string          `json:"terms,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Status         payments.Status `json:"status"`
	JournalEntryID int64           `json:"journal_entry_id"`
	JournalNumber  string          `json:"journal_number"`
	CreatedAt      time.Time       `json:"created_at"`
	Lines          []InvoiceLine   `json:"lines,omitempty"`
}

// Outstanding is the unpaid part of the invoice in its own currency.
func (i Invoice) Outstanding() decimal.Decimal {
	return i.Total.Sub(i.AmountPaid)
}

// InvoiceLine is one billed line. Stock lines also carry their cost basis.
type InvoiceLine struct {
	ID              int64           `json:"id"`
	InvoiceID       int64           `json:"invoice_id"`
	ItemID          *int64          `json:"item_id,omitempty"`
	LocationID      *int64          `json:"location_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	VATRate         decimal.Decimal `json:"vat_rate"`
	LineNet         decimal.Decimal `json:"line_net"`
	LineVAT         decimal.Decimal `json:"line_vat"`
	CostBasis       decimal.Decimal `json:"cost_basis"`
	CostValue       decimal.Decimal `json:"cost_value"`
	StockTxNumber   string          `json:"stock_tx_number,omitempty"`
	COGSEntryNumber string          `json:"cogs_entry_number,omitempty"`
}

// InvoiceInput carries everything needed to post an invoice.
type InvoiceInput struct {
	CustomerID   int64
	Date         time.Time
	DueDate      *time.Time
	Currency     string
	ExchangeRate decimal.Decimal
	Terms        string
	Notes        string
	Lines        []shared.DocumentLine
}

func (in *InvoiceInput) normalize(baseCurrency string) (shared.DocumentTotals, error) {
	if in.CustomerID == 0 {
		return shared.DocumentTotals{}, shared.Invalid("customer", "is required")
	}
	if in.Date.IsZero() {
		return shared.DocumentTotals{}, shared.Invalid("date", "is required")
	}
	in.Date = shared.Day(in.Date)
	if in.DueDate != nil {
		due := shared.Day(*in.DueDate)
		if due.Before(in.Date) {
			return shared.DocumentTotals{}, shared.Invalid("due_date", "must not be before the invoice date")
		}
		in.DueDate = &due
	}
	var err error
	if in.Currency, in.ExchangeRate, err = shared.NormalizeCurrencyAndRate(in.Currency, in.ExchangeRate, baseCurrency); err != nil {
		return shared.DocumentTotals{}, err
	}
	in.Terms = strings.TrimSpace(in.Terms)
	in.Notes = strings.TrimSpace(in.Notes)
	return shared.NormalizeDocumentLines(in.Lines)
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	CustomerID *int64
	Status     payments.Status
	From       *time.Time
	To         *time.Time
}

// AgingBucket names a days-past-due range.
type AgingBucket string

const (
	BucketCurrent AgingBucket = "current"
	Bucket30      AgingBucket = "1-30"
	Bucket60      AgingBucket = "31-60"
	Bucket90      AgingBucket = "61-90"
	BucketOver90  AgingBucket = "90+"
)

// BucketFor places a due date relative to asOf.
func BucketFor(due, asOf time.Time) AgingBucket {
	days := int(shared.Day(asOf).Sub(shared.Day(due)).Hours() / 24)
	switch {
	case days <= 0:
		return BucketCurrent
	case days <= 30:
		return Bucket30
	case days <= 60:
		return Bucket60
	case days <= 90:
		return Bucket90
	default:
		return BucketOver90
	}
}

// AgingRow is the outstanding balance of one customer, in base currency.
type AgingRow struct {
	CustomerID   int64           `json:"customer_id"`
	CustomerCode string          `json:"customer_code"`
	Current      decimal.Decimal `json:"current"`
	Days30       decimal.Decimal `json:"days_1_30"`
	Days60       decimal.Decimal `json:"days_31_60"`
	Days90       decimal.Decimal `json:"days_61_90"`
	Over90       decimal.Decimal `json:"days_over_90"`
	Total        decimal.Decimal `json:"total"`
}

func (r *AgingRow) add(bucket AgingBucket, amount decimal.Decimal) {
	switch bucket {
	case BucketCurrent:
		r.Current = r.Current.Add(amount)
	case Bucket30:
		r.Days30 = r.Days30.Add(amount)
	case Bucket60:
		r.Days60 = r.Days60.Add(amount)
	case Bucket90:
		r.Days90 = r.Days90.Add(amount)
	default:
		r.Over90 = r.Over90.Add(amount)
	}
	r.Total = r.Total.Add(amount)
}

// AgingReport groups outstanding invoices by customer and bucket.
type AgingReport struct {
	AsOf   time.Time  `json:"as_of"`
	Rows   []AgingRow `json:"rows"`
	Totals AgingRow   `json:"totals"`
}

// BuildAging ages open invoices at asOf. Amounts are converted to base currency
// at each invoice's exchange rate.
func BuildAging(invoices []Invoice, asOf time.Time) AgingReport {
	report := AgingReport{AsOf: shared.Day(asOf), Rows: []AgingRow{}, Totals: zeroRow(0, "")}
	index := map[int64]int{}
	for _, inv := range invoices {
		open := inv.Outstanding()
		if !open.IsPositive() || inv.Date.After(asOf) {
			continue
		}
		amount := shared.Round2(open.Mul(inv.ExchangeRate))
		bucket := BucketFor(inv.DueDate, asOf)
		pos, ok := index[inv.CustomerID]
		if !ok {
			pos = len(report.Rows)
			index[inv.CustomerID] = pos
			report.Rows = append(report.Rows, zeroRow(inv.CustomerID, inv.CustomerCode))
		}
		report.Rows[pos].add(bucket, amount)
		report.Totals.add(bucket, amount)
	}
	return report
}

func zeroRow(id int64, code string) AgingRow {
	z := decimal.Zero
	return AgingRow{CustomerID: id, CustomerCode: code, Current: z, Days30: z, Days60: z, Days90: z, Over90: z, Total: z}
}
