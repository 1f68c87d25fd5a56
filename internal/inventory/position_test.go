package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPositionWeightedAverage(t *testing.T) {
	var p Position
	p = p.Receive(dec("10"), dec("50"))
	p = p.Receive(dec("10"), dec("70"))

	require.True(t, p.Quantity.Equal(dec("20")))
	require.True(t, p.AvgCost.Equal(dec("6")))
	require.True(t, p.TotalValue.Equal(dec("120")))

	next, value, err := p.Issue(dec("15"))
	require.NoError(t, err)
	require.True(t, value.Equal(dec("90")))
	require.True(t, next.Quantity.Equal(dec("5")))
	require.True(t, next.TotalValue.Equal(dec("30")))
	require.True(t, next.AvgCost.Equal(dec("6")), "issues never move the average")
}

func TestPositionIssueBeyondAvailable(t *testing.T) {
	p := Position{ItemID: 3, LocationID: 1}.Receive(dec("20"), dec("120"))

	after, value, err := p.Issue(dec("25"))
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	var stockErr *shared.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.True(t, stockErr.Available.Equal(dec("20")))
	require.True(t, stockErr.Requested.Equal(dec("25")))
	require.True(t, value.IsZero())
	require.Equal(t, p, after)
}

func TestPositionFullDepletionReleasesRemainingValue(t *testing.T) {
	p := Position{}.Receive(dec("3"), dec("10"))
	require.True(t, p.AvgCost.Equal(dec("3.333333")))

	p, first, err := p.Issue(dec("2"))
	require.NoError(t, err)
	require.True(t, first.Equal(dec("6.67")))

	p, last, err := p.Issue(dec("1"))
	require.NoError(t, err)
	require.True(t, last.Equal(dec("3.33")))
	require.True(t, p.Quantity.IsZero())
	require.True(t, p.TotalValue.IsZero())
	require.True(t, first.Add(last).Equal(dec("10")))
}

func TestPositionReceiveAfterDepletion(t *testing.T) {
	p := Position{}.Receive(dec("4"), dec("20"))
	p, _, err := p.Issue(dec("4"))
	require.NoError(t, err)
	p = p.Receive(dec("2"), dec("14"))
	require.True(t, p.AvgCost.Equal(dec("7")))
	require.True(t, p.TotalValue.Equal(dec("14")))
}

func TestBuildValuationAndReorderAlerts(t *testing.T) {
	stock := []ItemStock{
		{Item: masterdata.Item{ID: 1, Code: "WIDGET", ReorderLevel: dec("10")}, Quantity: dec("5"), Value: dec("30")},
		{Item: masterdata.Item{ID: 2, Code: "GADGET", ReorderLevel: dec("2")}, Quantity: dec("8"), Value: dec("100")},
		{Item: masterdata.Item{ID: 3, Code: "SPARE"}, Quantity: dec("0"), Value: dec("0")},
	}

	v := BuildValuation(stock)
	require.Len(t, v.Items, 3)
	require.True(t, v.TotalValue.Equal(dec("130")))
	require.True(t, v.Items[0].AvgCost.Equal(dec("6")))
	require.True(t, v.Items[2].AvgCost.IsZero())

	alerts := BuildReorderAlerts(stock)
	require.Len(t, alerts, 1)
	require.Equal(t, "WIDGET", alerts[0].Code)
}
