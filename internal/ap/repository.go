package ap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	"github.com/odyssey-erp/odyssey-books/internal/masterdata"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Repository persists purchase bills.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetBill(ctx context.Context, number string) (Bill, error)
	ListBills(ctx context.Context, filter BillFilter) ([]Bill, error)
}

// TxRepository spans the journal, inventory and payment stores for one purchase operation.
type TxRepository interface {
	journals.TxRepository
	inventory.TxRepository
	payments.TxRepository

	GetSupplier(ctx context.Context, id int64) (masterdata.Supplier, error)
	InsertBill(ctx context.Context, bill Bill) (Bill, error)
	InsertBillLine(ctx context.Context, line BillLine) (BillLine, error)
	GetBillForUpdate(ctx context.Context, number string) (Bill, error)
	UpdateBillPayment(ctx context.Context, id int64, amountPaid decimal.Decimal, status payments.Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewTxRepository(tx))
	})
}

const billColumns = `b.id, b.number, b.supplier_id, s.code, b.supplier_invoice, b.bill_date, b.due_date, b.currency, b.exchange_rate, b.notes,
b.subtotal, b.vat_amount, b.total, b.amount_paid, b.status, b.journal_entry_id, e.number, b.created_at`

const billFrom = ` FROM purchase_bills b
JOIN suppliers s ON s.id = b.supplier_id
JOIN journal_entries e ON e.id = b.journal_entry_id`

func scanBill(row pgx.Row) (Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.Number, &b.SupplierID, &b.SupplierCode, &b.SupplierInvoice, &b.Date, &b.DueDate, &b.Currency, &b.ExchangeRate, &b.Notes,
		&b.Subtotal, &b.VATAmount, &b.Total, &b.AmountPaid, &b.Status, &b.JournalEntryID, &b.JournalNumber, &b.CreatedAt)
	return b, err
}

func (r *repository) GetBill(ctx context.Context, number string) (Bill, error) {
	bill, err := scanBill(r.pool.QueryRow(ctx, `SELECT `+billColumns+billFrom+` WHERE b.number=$1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, shared.NotFound("bill", number)
	}
	if err != nil {
		return Bill{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, bill_id, item_id, location_id, description, quantity, unit_price, vat_rate,
line_net, line_vat, stock_tx_number FROM purchase_bill_lines WHERE bill_id=$1 ORDER BY id`, bill.ID)
	if err != nil {
		return Bill{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l BillLine
		if err := rows.Scan(&l.ID, &l.BillID, &l.ItemID, &l.LocationID, &l.Description, &l.Quantity, &l.UnitPrice, &l.VATRate,
			&l.LineNet, &l.LineVAT, &l.StockTxNumber); err != nil {
			return Bill{}, err
		}
		bill.Lines = append(bill.Lines, l)
	}
	return bill, rows.Err()
}

func (r *repository) ListBills(ctx context.Context, filter BillFilter) ([]Bill, error) {
	query := `SELECT ` + billColumns + billFrom + ` WHERE 1=1`
	var args []any
	if filter.SupplierID != nil {
		args = append(args, *filter.SupplierID)
		query += fmt.Sprintf(" AND b.supplier_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND b.status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND b.bill_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND b.bill_date <= $%d", len(args))
	}
	query += " ORDER BY b.bill_date, b.id"
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type (
	journalTx = journals.TxRepository
	stockTx   = inventory.TxRepository
	paymentTx = payments.TxRepository
)

// NewTxRepository composes the journal, inventory and payment tx stores over tx.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{
		journalTx: journals.NewTxRepository(tx),
		stockTx:   inventory.NewTxRepository(tx),
		paymentTx: payments.NewTxRepository(tx),
		tx:        tx,
	}
}

type txRepository struct {
	journalTx
	stockTx
	paymentTx

	tx pgx.Tx
}

func (r *txRepository) NextNumber(ctx context.Context, seq shared.Sequence) (int64, error) {
	return db.NextSequence(ctx, r.tx, string(seq))
}

func (r *txRepository) GetSupplier(ctx context.Context, id int64) (masterdata.Supplier, error) {
	return masterdata.LoadSupplier(ctx, r.tx, id)
}

func (r *txRepository) InsertBill(ctx context.Context, b Bill) (Bill, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_bills (number, supplier_id, supplier_invoice, bill_date, due_date, currency, exchange_rate, notes,
subtotal, vat_amount, total, amount_paid, status, journal_entry_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14) RETURNING id, created_at`,
		b.Number, b.SupplierID, b.SupplierInvoice, b.Date, b.DueDate, b.Currency, b.ExchangeRate, b.Notes,
		b.Subtotal, b.VATAmount, b.Total, b.AmountPaid, b.Status, b.JournalEntryID,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return Bill{}, shared.DuplicateKey("bill", b.Number)
		}
		return Bill{}, err
	}
	return b, nil
}

func (r *txRepository) InsertBillLine(ctx context.Context, l BillLine) (BillLine, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO purchase_bill_lines (bill_id, item_id, location_id, description, quantity, unit_price, vat_rate,
line_net, line_vat, stock_tx_number)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		l.BillID, l.ItemID, l.LocationID, l.Description, l.Quantity, l.UnitPrice, l.VATRate, l.LineNet, l.LineVAT, l.StockTxNumber,
	).Scan(&l.ID)
	return l, err
}

func (r *txRepository) GetBillForUpdate(ctx context.Context, number string) (Bill, error) {
	bill, err := scanBill(r.tx.QueryRow(ctx, `SELECT `+billColumns+billFrom+` WHERE b.number=$1 FOR UPDATE OF b`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, shared.NotFound("bill", number)
	}
	return bill, err
}

func (r *txRepository) UpdateBillPayment(ctx context.Context, id int64, amountPaid decimal.Decimal, status payments.Status) error {
	_, err := r.tx.Exec(ctx, `UPDATE purchase_bills SET amount_paid=$2, status=$3 WHERE id=$1`, id, amountPaid, status)
	return err
}
