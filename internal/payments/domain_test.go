package payments

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStatusFor(t *testing.T) {
	cases := []struct {
		total, paid string
		want        Status
	}{
		{"120", "0", StatusUnpaid},
		{"120", "0.01", StatusPartiallyPaid},
		{"120", "119.99", StatusPartiallyPaid},
		{"120", "120", StatusPaid},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, StatusFor(d(tc.total), d(tc.paid)), "%s/%s", tc.total, tc.paid)
	}
}

func TestCheckApplicable(t *testing.T) {
	require.NoError(t, CheckApplicable("INV-000001", StatusUnpaid, d("120"), d("0"), d("120")))
	require.NoError(t, CheckApplicable("INV-000001", StatusPartiallyPaid, d("120"), d("50"), d("70")))
	require.ErrorIs(t, CheckApplicable("INV-000001", StatusPartiallyPaid, d("120"), d("50"), d("70.01")), shared.ErrInvalidState)
	require.ErrorIs(t, CheckApplicable("INV-000001", StatusPaid, d("120"), d("120"), d("1")), shared.ErrInvalidState)
}

func TestApplyInputNormalize(t *testing.T) {
	in := ApplyInput{
		DocumentNumber: " inv-000001 ",
		Date:           time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC),
		Amount:         d("10.005"),
		BankAccount:    " 1112 ",
	}
	require.NoError(t, in.Normalize())
	require.Equal(t, "INV-000001", in.DocumentNumber)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), in.Date)
	require.True(t, in.Amount.Equal(d("10.01")))
	require.Equal(t, "1112", in.BankAccount)
	require.Equal(t, DefaultMethod, in.Method)

	missing := ApplyInput{DocumentNumber: "INV-000001", Date: in.Date, Amount: d("0.004"), BankAccount: "1112"}
	require.ErrorIs(t, missing.Normalize(), shared.ErrValidation, "rounds to zero")
}

func TestApplyRoutesByPrefix(t *testing.T) {
	var routed []string
	receipts := ApplierFunc(func(_ context.Context, in ApplyInput) (Payment, error) {
		routed = append(routed, "receipt:"+in.DocumentNumber)
		return Payment{Direction: DirectionReceipt}, nil
	})
	disbursements := ApplierFunc(func(_ context.Context, in ApplyInput) (Payment, error) {
		routed = append(routed, "payment:"+in.DocumentNumber)
		return Payment{Direction: DirectionPayment}, nil
	})
	svc := NewService(nil, receipts, disbursements)
	ctx := context.Background()

	p, err := svc.Apply(ctx, ApplyInput{DocumentNumber: "inv-000003"})
	require.NoError(t, err)
	require.Equal(t, DirectionReceipt, p.Direction)
	p, err = svc.Apply(ctx, ApplyInput{DocumentNumber: "BILL-000001"})
	require.NoError(t, err)
	require.Equal(t, DirectionPayment, p.Direction)

	_, err = svc.Apply(ctx, ApplyInput{DocumentNumber: "PO-000001"})
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Apply(ctx, ApplyInput{DocumentNumber: "INVOICE"})
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.Equal(t, []string{"receipt:inv-000003", "payment:BILL-000001"}, routed)
}
