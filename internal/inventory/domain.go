package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// TransactionType enumerates supported inventory movements.
type TransactionType string

const (
	// TransactionTypeReceipt represents an inbound movement.
	TransactionTypeReceipt TransactionType = "RECEIPT"
	// TransactionTypeIssue represents an outbound movement.
	TransactionTypeIssue TransactionType = "ISSUE"
	// TransactionTypeTransfer is the summary record of a move between locations.
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Position is the stock held for one item at one location.
type Position struct {
	ItemID     int64           `json:"item_id"`
	LocationID int64           `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	AvgCost    decimal.Decimal `json:"avg_cost"`
	TotalValue decimal.Decimal `json:"total_value"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Receive adds quantity valued at value and recomputes the weighted average.
func (p Position) Receive(quantity, value decimal.Decimal) Position {
	p.Quantity = p.Quantity.Add(quantity)
	p.TotalValue = p.TotalValue.Add(value)
	if p.Quantity.IsZero() {
		p.AvgCost = decimal.Zero
		return p
	}
	p.AvgCost = p.TotalValue.Div(p.Quantity).Round(shared.CostScale)
	return p
}

// Issue removes quantity at the current average cost and returns the value released.
// The average itself is unchanged. Emptying the position releases the whole
// remaining value so no residual cents stay behind.
func (p Position) Issue(quantity decimal.Decimal) (Position, decimal.Decimal, error) {
	if quantity.GreaterThan(p.Quantity) {
		return p, decimal.Zero, shared.InsufficientStock(p.ItemID, p.LocationID, p.Quantity, quantity)
	}
	value := shared.Round2(quantity.Mul(p.AvgCost))
	if quantity.Equal(p.Quantity) || value.GreaterThan(p.TotalValue) {
		value = p.TotalValue
	}
	p.Quantity = p.Quantity.Sub(quantity)
	p.TotalValue = p.TotalValue.Sub(value)
	if p.Quantity.IsZero() {
		p.TotalValue = decimal.Zero
	}
	return p, value, nil
}

// Transaction is an immutable inventory log record.
type Transaction struct {
	ID             int64           `json:"id"`
	Number         string          `json:"number"`
	Date           time.Time       `json:"date"`
	Type           TransactionType `json:"type"`
	ItemID         int64           `json:"item_id"`
	FromLocationID *int64          `json:"from_location_id,omitempty"`
	ToLocationID   *int64          `json:"to_location_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Reference      string          `json:"reference"`
	JournalEntryID *int64          `json:"journal_entry_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ReceiptInput describes stock arriving at a location.
type ReceiptInput struct {
	ItemID         int64
	LocationID     int64
	Quantity       decimal.Decimal
	UnitCost       decimal.Decimal
	Date           time.Time
	Reference      string
	JournalEntryID *int64
}

// IssueInput describes stock leaving a location.
type IssueInput struct {
	ItemID         int64
	LocationID     int64
	Quantity       decimal.Decimal
	Date           time.Time
	Reference      string
	JournalEntryID *int64
}

// TransferInput describes a move between two locations.
type TransferInput struct {
	ItemID         int64
	FromLocationID int64
	ToLocationID   int64
	Quantity       decimal.Decimal
	Date           time.Time
	Reference      string
}

// ReceiptResult carries the logged receipt and the position after it.
type ReceiptResult struct {
	Transaction Transaction `json:"transaction"`
	Position    Position    `json:"position"`
}

// IssueResult carries the cost basis used so callers can post matching COGS.
type IssueResult struct {
	Transaction Transaction     `json:"transaction"`
	Position    Position        `json:"position"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Value       decimal.Decimal `json:"value"`
}

// TransferResult holds the three log records a transfer produces.
type TransferResult struct {
	Issue    IssueResult   `json:"issue"`
	Receipt  ReceiptResult `json:"receipt"`
	Transfer Transaction   `json:"transfer"`
}

// StockLine is a position joined with item and location details.
type StockLine struct {
	Position
	ItemCode     string `json:"item_code"`
	ItemName     string `json:"item_name"`
	LocationCode string `json:"location_code"`
}

// ItemStock aggregates an item's positions across locations.
type ItemStock struct {
	Item     masterdata.Item
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// ItemValuation is one row of the valuation report.
type ItemValuation struct {
	ItemID   int64           `json:"item_id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
	AvgCost  decimal.Decimal `json:"avg_cost"`
}

// Valuation sums stock value over every tracked item.
type Valuation struct {
	Items      []ItemValuation `json:"items"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// ReorderAlert flags an item at or below its reorder level.
type ReorderAlert struct {
	ItemID       int64           `json:"item_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

// MovementFilter narrows the transaction log. Dates are inclusive.
type MovementFilter struct {
	ItemID     *int64
	LocationID *int64
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
