package shared

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DocumentLine is a requested line on an invoice or bill.
type DocumentLine struct {
	ItemID      *int64
	LocationID  *int64
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
}

// DocumentTotals holds the computed amounts of an invoice or bill.
type DocumentTotals struct {
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// LineAmounts returns the rounded net and VAT of one line.
func LineAmounts(qty, price, vatRate decimal.Decimal) (net, vat decimal.Decimal) {
	net = Round2(qty.Mul(price))
	vat = Round2(Percent(net, vatRate))
	return net, vat
}

// NormalizeDocumentLines validates lines in place and returns the document totals.
// Non-stock lines need a description; the total must be positive.
func NormalizeDocumentLines(lines []DocumentLine) (DocumentTotals, error) {
	if len(lines) == 0 {
		return DocumentTotals{}, Invalid("lines", "at least one line is required")
	}
	t := DocumentTotals{Subtotal: decimal.Zero, VAT: decimal.Zero}
	for i := range lines {
		l := &lines[i]
		field := func(name string) string { return fmt.Sprintf("lines[%d].%s", i, name) }
		l.Description = strings.TrimSpace(l.Description)
		l.Quantity = l.Quantity.Round(QuantityScale)
		if !l.Quantity.IsPositive() {
			return DocumentTotals{}, Invalid(field("quantity"), "must be positive")
		}
		if l.UnitPrice.IsNegative() {
			return DocumentTotals{}, Invalid(field("unit_price"), "must not be negative")
		}
		if l.VATRate.IsNegative() || l.VATRate.GreaterThan(hundred) {
			return DocumentTotals{}, Invalid(field("vat_rate"), "must be between 0 and 100")
		}
		if l.ItemID == nil && l.Description == "" {
			return DocumentTotals{}, Invalid(field("description"), "is required for non-stock lines")
		}
		net, vat := LineAmounts(l.Quantity, l.UnitPrice, l.VATRate)
		t.Subtotal = t.Subtotal.Add(net)
		t.VAT = t.VAT.Add(vat)
	}
	t.Total = t.Subtotal.Add(t.VAT)
	if !t.Total.IsPositive() {
		return DocumentTotals{}, Invalid("lines", "total must be positive")
	}
	return t, nil
}

// NormalizeCurrencyAndRate defaults an empty currency to base and a zero rate to 1.
func NormalizeCurrencyAndRate(currency string, rate decimal.Decimal, base string) (string, decimal.Decimal, error) {
	if strings.TrimSpace(currency) == "" {
		currency = base
	}
	code, err := NormalizeCurrency(currency)
	if err != nil {
		return "", decimal.Zero, err
	}
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	if err := ValidateRate(rate); err != nil {
		return "", decimal.Zero, err
	}
	return code, rate, nil
}
