package shared

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	// MoneyScale is the number of decimals kept for monetary values.
	MoneyScale int32 = 2
	// QuantityScale is the number of decimals kept for stock quantities.
	QuantityScale int32 = 4
	// CostScale is the number of decimals kept for unit costs.
	CostScale int32 = 6
	// RateScale is the maximum number of decimals accepted on exchange rates.
	RateScale int32 = 6

	// DateLayout is the ISO-8601 calendar date accepted at the boundary.
	DateLayout = "2006-01-02"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds a monetary value half away from zero to two decimals.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Percent returns amount × rate / 100.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// Sum adds values together.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// ParseDate parses an ISO-8601 date (YYYY-MM-DD) in UTC.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, Invalid(field, "must be an ISO-8601 date (YYYY-MM-DD)")
	}
	return t, nil
}

// ParseOptionalDate parses value when present; an empty string yields nil.
func ParseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeCurrency validates an ISO 4217 code and returns it upper-cased.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", Invalid("currency", "must be a 3-letter ISO 4217 code")
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", Invalid("currency", "unknown ISO 4217 code "+code)
	}
	return unit.String(), nil
}

// ValidateRate checks an exchange rate is positive with at most RateScale decimals.
func ValidateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return Invalid("exchange_rate", "must be positive")
	}
	if !rate.Equal(rate.Round(RateScale)) {
		return Invalid("exchange_rate", "must have at most 6 decimal places")
	}
	return nil
}
