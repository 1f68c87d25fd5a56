package shared

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomyMatchesSentinels(t *testing.T) {
	err := fmt.Errorf("post: %w", UnbalancedEntry(decimal.NewFromInt(100), decimal.NewFromInt(90)))
	require.ErrorIs(t, err, ErrUnbalancedEntry)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Equal(t, CodeUnbalancedEntry, CodeOf(err))
	require.Equal(t, "unbalanced entry: debits=100.00 credits=90.00", errors.Unwrap(err).Error())

	var stock *InsufficientStockError
	require.True(t, errors.As(fmt.Errorf("issue: %w", InsufficientStock(1, 2, decimal.NewFromInt(20), decimal.NewFromInt(25))), &stock))
	require.True(t, stock.Available.Equal(decimal.NewFromInt(20)))

	require.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	require.Equal(t, CodeNotFound, CodeOf(NotFound("customer", 7)))
	require.Equal(t, "customer 7 not found", NotFound("customer", 7).Error())
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "JE-000001", FormatNumber(PrefixJournal, 1))
	require.Equal(t, "STK-TRF-000042", FormatNumber(PrefixStockTransf, 42))
	require.Equal(t, "PMT-OUT-1234567", FormatNumber(PrefixPaymentOut, 1234567))
	require.True(t, HasPrefix("inv-000003", PrefixInvoice))
	require.False(t, HasPrefix("INVX-1", PrefixInvoice))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("date", "2025-03-31")
	require.NoError(t, err)
	require.Equal(t, 2025, d.Year())
	_, err = ParseDate("date", "31/03/2025")
	require.ErrorIs(t, err, ErrValidation)

	opt, err := ParseOptionalDate("to", "")
	require.NoError(t, err)
	require.Nil(t, opt)
}

func TestNormalizeCurrency(t *testing.T) {
	code, err := NormalizeCurrency(" usd ")
	require.NoError(t, err)
	require.Equal(t, "USD", code)
	_, err = NormalizeCurrency("XYZ1")
	require.ErrorIs(t, err, ErrValidation)
	_, err = NormalizeCurrency("QQQ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestValidateRate(t *testing.T) {
	require.NoError(t, ValidateRate(decimal.RequireFromString("1.270000")))
	require.ErrorIs(t, ValidateRate(decimal.Zero), ErrValidation)
	require.ErrorIs(t, ValidateRate(decimal.RequireFromString("1.0000001")), ErrValidation)
}

func TestRoundingAndPercent(t *testing.T) {
	require.Equal(t, "0.13", Round2(decimal.RequireFromString("0.125")).StringFixed(2))
	require.Equal(t, "20", Percent(decimal.NewFromInt(100), decimal.NewFromInt(20)).String())
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	require.Equal(t, []int{3, 4}, Window(items, NewPagination(2, 2)))
	require.Empty(t, Window(items, NewPagination(9, 2)))
	require.Equal(t, 3, NewPagination(1, 2).TotalPages(len(items)))
}

type failingAudit struct{ calls int }

func (f *failingAudit) Record(context.Context, AuditLog) error {
	f.calls++
	return errors.New("audit_logs unavailable")
}

func TestAuditTrailLogsFailedWrites(t *testing.T) {
	var buf bytes.Buffer
	port := &failingAudit{}
	trail := NewAuditTrail(port, slog.New(slog.NewTextHandler(&buf, nil)))

	trail.Record(context.Background(), AuditLog{Action: "journal.post", Entity: "journal_entry", EntityID: "JE-000001"})
	require.Equal(t, 1, port.calls)
	require.Contains(t, buf.String(), "audit record failed")
	require.Contains(t, buf.String(), "entity_id=JE-000001")
	require.Contains(t, buf.String(), "audit_logs unavailable")

	NewAuditTrail(nil, nil).Record(context.Background(), AuditLog{Action: "noop"})
}
