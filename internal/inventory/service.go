package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Service is the inventory cost engine.
type Service struct {
	repo  Repository
	audit shared.AuditTrail
	now   func() time.Time
}

// NewService builds Service; audit and logger may be nil.
func NewService(repo Repository, audit shared.AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: shared.NewAuditTrail(audit, logger), now: time.Now}
}

// Receive adds stock at a location in its own transaction.
func (s *Service) Receive(ctx context.Context, in ReceiptInput) (ReceiptResult, error) {
	var res ReceiptResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		res, err = s.ReceiveInTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return ReceiptResult{}, err
	}
	s.Notify(ctx, res.Transaction)
	return res, nil
}

// Issue removes stock at the weighted-average cost in its own transaction.
func (s *Service) Issue(ctx context.Context, in IssueInput) (IssueResult, error) {
	var res IssueResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		res, err = s.IssueInTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return IssueResult{}, err
	}
	s.Notify(ctx, res.Transaction)
	return res, nil
}

// Transfer moves stock between locations in its own transaction.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (TransferResult, error) {
	var res TransferResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		res, err = s.TransferInTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return TransferResult{}, err
	}
	s.Notify(ctx, res.Issue.Transaction, res.Receipt.Transaction, res.Transfer)
	return res, nil
}

// ReceiveInTx records a receipt within the caller's transaction.
func (s *Service) ReceiveInTx(ctx context.Context, tx TxRepository, in ReceiptInput) (ReceiptResult, error) {
	qty, err := normalizeQuantity(in.Quantity)
	if err != nil {
		return ReceiptResult{}, err
	}
	if in.UnitCost.IsNegative() {
		return ReceiptResult{}, shared.Invalid("unit_cost", "must not be negative")
	}
	cost := in.UnitCost.Round(shared.CostScale)
	in.Date = s.day(in.Date)
	if err := checkItemAndLocation(ctx, tx, in.ItemID, in.LocationID); err != nil {
		return ReceiptResult{}, err
	}
	return receive(ctx, tx, in.ItemID, in.LocationID, qty, cost, shared.Round2(qty.Mul(cost)), movement{
		date: in.Date, reference: in.Reference, journalEntryID: in.JournalEntryID, now: s.now(),
	})
}

// IssueInTx records an issue within the caller's transaction. The returned unit
// cost and value are the basis for the matching COGS entry.
func (s *Service) IssueInTx(ctx context.Context, tx TxRepository, in IssueInput) (IssueResult, error) {
	qty, err := normalizeQuantity(in.Quantity)
	if err != nil {
		return IssueResult{}, err
	}
	in.Date = s.day(in.Date)
	if err := checkItemAndLocation(ctx, tx, in.ItemID, in.LocationID); err != nil {
		return IssueResult{}, err
	}
	return issue(ctx, tx, in.ItemID, in.LocationID, qty, movement{
		date: in.Date, reference: in.Reference, journalEntryID: in.JournalEntryID, now: s.now(),
	})
}

// TransferInTx issues at the source and receives at the destination at the source's
// pre-issue average cost, then logs a transfer record. The issue leg runs first so
// a shortfall fails before anything is received.
func (s *Service) TransferInTx(ctx context.Context, tx TxRepository, in TransferInput) (TransferResult, error) {
	qty, err := normalizeQuantity(in.Quantity)
	if err != nil {
		return TransferResult{}, err
	}
	if in.FromLocationID == in.ToLocationID {
		return TransferResult{}, shared.Invalid("to_location", "must differ from the source location")
	}
	in.Date = s.day(in.Date)
	if err := checkItemAndLocation(ctx, tx, in.ItemID, in.FromLocationID); err != nil {
		return TransferResult{}, err
	}
	if err := checkItemAndLocation(ctx, tx, in.ItemID, in.ToLocationID); err != nil {
		return TransferResult{}, err
	}
	mv := movement{date: in.Date, reference: in.Reference, now: s.now()}

	out, err := issue(ctx, tx, in.ItemID, in.FromLocationID, qty, mv)
	if err != nil {
		return TransferResult{}, err
	}
	received, err := receive(ctx, tx, in.ItemID, in.ToLocationID, qty, out.UnitCost, out.Value, mv)
	if err != nil {
		return TransferResult{}, err
	}
	from, to := in.FromLocationID, in.ToLocationID
	summary, err := logTransaction(ctx, tx, shared.PrefixStockTransf, Transaction{
		Date:           mv.date,
		Type:           TransactionTypeTransfer,
		ItemID:         in.ItemID,
		FromLocationID: &from,
		ToLocationID:   &to,
		Quantity:       qty,
		UnitCost:       out.UnitCost,
		TotalValue:     out.Value,
		Reference:      mv.reference,
	})
	if err != nil {
		return TransferResult{}, err
	}
	return TransferResult{Issue: out, Receipt: received, Transfer: summary}, nil
}

type movement struct {
	date           time.Time
	reference      string
	journalEntryID *int64
	now            time.Time
}

func receive(ctx context.Context, tx TxRepository, itemID, locationID int64, qty, unitCost, value decimal.Decimal, mv movement) (ReceiptResult, error) {
	pos, err := loadPosition(ctx, tx, itemID, locationID)
	if err != nil {
		return ReceiptResult{}, err
	}
	pos = pos.Receive(qty, value)
	pos.UpdatedAt = mv.now
	if err := tx.UpsertPosition(ctx, pos); err != nil {
		return ReceiptResult{}, err
	}
	to := locationID
	logged, err := logTransaction(ctx, tx, shared.PrefixStockIn, Transaction{
		Date:           mv.date,
		Type:           TransactionTypeReceipt,
		ItemID:         itemID,
		ToLocationID:   &to,
		Quantity:       qty,
		UnitCost:       unitCost,
		TotalValue:     value,
		Reference:      mv.reference,
		JournalEntryID: mv.journalEntryID,
	})
	if err != nil {
		return ReceiptResult{}, err
	}
	return ReceiptResult{Transaction: logged, Position: pos}, nil
}

func issue(ctx context.Context, tx TxRepository, itemID, locationID int64, qty decimal.Decimal, mv movement) (IssueResult, error) {
	pos, err := loadPosition(ctx, tx, itemID, locationID)
	if err != nil {
		return IssueResult{}, err
	}
	unitCost := pos.AvgCost
	next, value, err := pos.Issue(qty)
	if err != nil {
		return IssueResult{}, err
	}
	next.UpdatedAt = mv.now
	if err := tx.UpsertPosition(ctx, next); err != nil {
		return IssueResult{}, err
	}
	from := locationID
	logged, err := logTransaction(ctx, tx, shared.PrefixStockOut, Transaction{
		Date:           mv.date,
		Type:           TransactionTypeIssue,
		ItemID:         itemID,
		FromLocationID: &from,
		Quantity:       qty,
		UnitCost:       unitCost,
		TotalValue:     value,
		Reference:      mv.reference,
		JournalEntryID: mv.journalEntryID,
	})
	if err != nil {
		return IssueResult{}, err
	}
	return IssueResult{Transaction: logged, Position: next, UnitCost: unitCost, Value: value}, nil
}

// loadPosition returns the locked position, or an empty one for a first receipt.
func loadPosition(ctx context.Context, tx TxRepository, itemID, locationID int64) (Position, error) {
	pos, found, err := tx.GetPositionForUpdate(ctx, itemID, locationID)
	if err != nil {
		return Position{}, err
	}
	if !found {
		return Position{ItemID: itemID, LocationID: locationID, Quantity: decimal.Zero, AvgCost: decimal.Zero, TotalValue: decimal.Zero}, nil
	}
	return pos, nil
}

func logTransaction(ctx context.Context, tx TxRepository, prefix string, t Transaction) (Transaction, error) {
	seq, err := tx.NextNumber(ctx, shared.SeqInventory)
	if err != nil {
		return Transaction{}, err
	}
	t.Number = shared.FormatNumber(prefix, seq)
	t.Reference = strings.TrimSpace(t.Reference)
	return tx.InsertTransaction(ctx, t)
}

func checkItemAndLocation(ctx context.Context, tx TxRepository, itemID, locationID int64) error {
	item, err := tx.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !item.TrackStock {
		return shared.Invalid("item", fmt.Sprintf("item %s does not track stock", item.Code))
	}
	loc, err := tx.GetLocation(ctx, locationID)
	if err != nil {
		return err
	}
	if !loc.IsActive {
		return shared.Invalid("location", fmt.Sprintf("location %s is inactive", loc.Code))
	}
	return nil
}

func normalizeQuantity(q decimal.Decimal) (decimal.Decimal, error) {
	q = q.Round(shared.QuantityScale)
	if !q.IsPositive() {
		return decimal.Zero, shared.Invalid("quantity", "must be positive")
	}
	return q, nil
}

// day defaults a missing movement date to today.
func (s *Service) day(date time.Time) time.Time {
	if date.IsZero() {
		return shared.Day(s.now())
	}
	return shared.Day(date)
}

// Notify records audit entries for committed movements.
func (s *Service) Notify(ctx context.Context, txns ...Transaction) {
	for _, t := range txns {
		s.audit.Record(ctx, shared.AuditLog{
			Action:   "inventory." + strings.ToLower(string(t.Type)),
			Entity:   "inventory_transaction",
			EntityID: t.Number,
			Meta: map[string]any{
				"item_id":  t.ItemID,
				"quantity": t.Quantity.String(),
				"value":    t.TotalValue.StringFixed(shared.MoneyScale),
			},
		})
	}
}

// Position returns the stock position for an item at a location.
func (s *Service) Position(ctx context.Context, itemID, locationID int64) (Position, error) {
	return s.repo.GetPosition(ctx, itemID, locationID)
}

// StockByLocation lists positions, optionally for one location.
func (s *Service) StockByLocation(ctx context.Context, locationID *int64) ([]StockLine, error) {
	return s.repo.ListPositions(ctx, locationID)
}

// Valuation reports quantity and value per tracked item.
func (s *Service) Valuation(ctx context.Context) (Valuation, error) {
	stock, err := s.repo.ListItemStock(ctx)
	if err != nil {
		return Valuation{}, err
	}
	return BuildValuation(stock), nil
}

// BuildValuation turns aggregated item stock into the valuation report.
func BuildValuation(stock []ItemStock) Valuation {
	v := Valuation{Items: []ItemValuation{}, TotalValue: decimal.Zero}
	for _, st := range stock {
		row := ItemValuation{
			ItemID:   st.Item.ID,
			Code:     st.Item.Code,
			Name:     st.Item.Name,
			Quantity: st.Quantity,
			Value:    st.Value,
			AvgCost:  decimal.Zero,
		}
		if st.Quantity.IsPositive() {
			row.AvgCost = st.Value.Div(st.Quantity).Round(shared.CostScale)
		}
		v.Items = append(v.Items, row)
		v.TotalValue = v.TotalValue.Add(st.Value)
	}
	return v
}

// ReorderAlerts lists items whose total quantity is at or below a positive reorder level.
func (s *Service) ReorderAlerts(ctx context.Context) ([]ReorderAlert, error) {
	stock, err := s.repo.ListItemStock(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReorderAlerts(stock), nil
}

// BuildReorderAlerts filters aggregated stock down to items needing reorder.
func BuildReorderAlerts(stock []ItemStock) []ReorderAlert {
	alerts := []ReorderAlert{}
	for _, st := range stock {
		level := st.Item.ReorderLevel
		if !level.IsPositive() || st.Quantity.GreaterThan(level) {
			continue
		}
		alerts = append(alerts, ReorderAlert{
			ItemID:       st.Item.ID,
			Code:         st.Item.Code,
			Name:         st.Item.Name,
			Quantity:     st.Quantity,
			ReorderLevel: level,
		})
	}
	return alerts
}

// Movements lists the transaction log newest first.
func (s *Service) Movements(ctx context.Context, filter MovementFilter) ([]Transaction, error) {
	return s.repo.ListMovements(ctx, filter)
}
