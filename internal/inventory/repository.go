package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Repository persists inventory data.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPosition(ctx context.Context, itemID, locationID int64) (Position, error)
	ListPositions(ctx context.Context, locationID *int64) ([]StockLine, error)
	// ListItemStock aggregates every stock-tracked item across locations.
	ListItemStock(ctx context.Context) ([]ItemStock, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]Transaction, error)
}

// TxRepository exposes transactional operations used by the cost engine.
type TxRepository interface {
	NextNumber(ctx context.Context, seq shared.Sequence) (int64, error)
	GetItem(ctx context.Context, id int64) (masterdata.Item, error)
	GetLocation(ctx context.Context, id int64) (masterdata.Location, error)
	// GetPositionForUpdate locks the position row; found is false before the first receipt.
	GetPositionForUpdate(ctx context.Context, itemID, locationID int64) (pos Position, found bool, err error)
	UpsertPosition(ctx context.Context, pos Position) error
	InsertTransaction(ctx context.Context, t Transaction) (Transaction, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewTxRepository(tx))
	})
}

const positionColumns = `item_id, location_id, quantity, avg_cost, total_value, updated_at`

func scanPosition(row pgx.Row) (Position, error) {
	var p Position
	err := row.Scan(&p.ItemID, &p.LocationID, &p.Quantity, &p.AvgCost, &p.TotalValue, &p.UpdatedAt)
	return p, err
}

func (r *repository) GetPosition(ctx context.Context, itemID, locationID int64) (Position, error) {
	p, err := scanPosition(r.pool.QueryRow(ctx, `SELECT `+positionColumns+` FROM stock_positions WHERE item_id=$1 AND location_id=$2`, itemID, locationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Position{}, shared.NotFound("stock position", fmt.Sprintf("%d@%d", itemID, locationID))
	}
	return p, err
}

func (r *repository) ListPositions(ctx context.Context, locationID *int64) ([]StockLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.item_id, p.location_id, p.quantity, p.avg_cost, p.total_value, p.updated_at,
       i.code, i.name, l.code
FROM stock_positions p
JOIN items i ON i.id = p.item_id
JOIN locations l ON l.id = p.location_id
WHERE ($1::bigint IS NULL OR p.location_id = $1)
ORDER BY l.code, i.code`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []StockLine
	for rows.Next() {
		var s StockLine
		if err := rows.Scan(&s.ItemID, &s.LocationID, &s.Quantity, &s.AvgCost, &s.TotalValue, &s.UpdatedAt,
			&s.ItemCode, &s.ItemName, &s.LocationCode); err != nil {
			return nil, err
		}
		lines = append(lines, s)
	}
	return lines, rows.Err()
}

func (r *repository) ListItemStock(ctx context.Context) ([]ItemStock, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.code, i.name, i.reorder_level,
       COALESCE(SUM(p.quantity), 0), COALESCE(SUM(p.total_value), 0)
FROM items i
LEFT JOIN stock_positions p ON p.item_id = i.id
WHERE i.track_stock
GROUP BY i.id, i.code, i.name, i.reorder_level
ORDER BY i.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ItemStock
	for rows.Next() {
		st := ItemStock{Item: masterdata.Item{TrackStock: true}}
		if err := rows.Scan(&st.Item.ID, &st.Item.Code, &st.Item.Name, &st.Item.ReorderLevel, &st.Quantity, &st.Value); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

const transactionColumns = `id, number, tx_date, tx_type, item_id, from_location_id, to_location_id, quantity, unit_cost, total_value, reference, journal_entry_id, created_at`

func (r *repository) ListMovements(ctx context.Context, filter MovementFilter) ([]Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM inventory_transactions WHERE 1=1`
	var args []any
	if filter.ItemID != nil {
		args = append(args, *filter.ItemID)
		query += fmt.Sprintf(" AND item_id = $%d", len(args))
	}
	if filter.LocationID != nil {
		args = append(args, *filter.LocationID)
		query += fmt.Sprintf(" AND (from_location_id = $%d OR to_location_id = $%d)", len(args), len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND tx_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND tx_date <= $%d", len(args))
	}
	query += " ORDER BY tx_date DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Number, &t.Date, &t.Type, &t.ItemID, &t.FromLocationID, &t.ToLocationID,
			&t.Quantity, &t.UnitCost, &t.TotalValue, &t.Reference, &t.JournalEntryID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// NewTxRepository wraps tx so orchestrators can move stock inside their own transaction.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepo{tx: tx}
}

type txRepo struct {
	tx pgx.Tx
}

func (r *txRepo) NextNumber(ctx context.Context, seq shared.Sequence) (int64, error) {
	return db.NextSequence(ctx, r.tx, string(seq))
}

func (r *txRepo) GetItem(ctx context.Context, id int64) (masterdata.Item, error) {
	return masterdata.LoadItem(ctx, r.tx, id)
}

func (r *txRepo) GetLocation(ctx context.Context, id int64) (masterdata.Location, error) {
	return masterdata.LoadLocation(ctx, r.tx, id)
}

func (r *txRepo) GetPositionForUpdate(ctx context.Context, itemID, locationID int64) (Position, bool, error) {
	p, err := scanPosition(r.tx.QueryRow(ctx, `SELECT `+positionColumns+` FROM stock_positions
WHERE item_id=$1 AND location_id=$2 FOR UPDATE`, itemID, locationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Position{}, false, nil
	}
	if err != nil {
		return Position{}, false, err
	}
	return p, true, nil
}

func (r *txRepo) UpsertPosition(ctx context.Context, p Position) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_positions (item_id, location_id, quantity, avg_cost, total_value, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (item_id, location_id) DO UPDATE
SET quantity = EXCLUDED.quantity, avg_cost = EXCLUDED.avg_cost, total_value = EXCLUDED.total_value, updated_at = EXCLUDED.updated_at`,
		p.ItemID, p.LocationID, p.Quantity, p.AvgCost, p.TotalValue, p.UpdatedAt)
	return err
}

func (r *txRepo) InsertTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO inventory_transactions (number, tx_date, tx_type, item_id, from_location_id, to_location_id, quantity, unit_cost, total_value, reference, journal_entry_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id, created_at`,
		t.Number, t.Date, t.Type, t.ItemID, t.FromLocationID, t.ToLocationID, t.Quantity, t.UnitCost, t.TotalValue, t.Reference, t.JournalEntryID,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return Transaction{}, shared.DuplicateKey("inventory transaction", t.Number)
		}
		return Transaction{}, err
	}
	return t, nil
}

