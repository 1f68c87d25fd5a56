package ar

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

// Repository persists sales invoices.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetInvoice(ctx context.Context, number string) (Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
}

// TxRepository is the single unit of work behind every sales operation. It spans
// the journal, inventory and payment stores so one commit covers them all.
type TxRepository interface {
	journals.TxRepository
	inventory.TxRepository
	payments.TxRepository

	GetCustomer(ctx context.Context, id int64) (masterdata.Customer, error)
	InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error)
	InsertInvoiceLine(ctx context.Context, line InvoiceLine) (InvoiceLine, error)
	// GetInvoiceForUpdate locks the invoice row until commit.
	GetInvoiceForUpdate(ctx context.Context, number string) (Invoice, error)
	UpdateInvoicePayment(ctx context.Context, id int64, amountPaid decimal.Decimal, status payments.Status) error
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

const invoiceColumns = `i.id, i.number, i.customer_id, c.code, i.invoice_date, i.due_date, i.currency, i.exchange_rate, i.terms, i.notes,
i.subtotal, i.vat_amount, i.total, i.amount_paid, i.status, i.journal_entry_id, e.number, i.created_at`

const invoiceFrom = ` FROM sales_invoices i
JOIN customers c ON c.id = i.customer_id
JOIN journal_entries e ON e.id = i.journal_entry_id`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var i Invoice
	err := row.Scan(&i.ID, &i.Number, &i.CustomerID, &i.CustomerCode, &i.Date, &i.DueDate, &i.Currency, &i.ExchangeRate, &i.Terms, &i.Notes,
		&i.Subtotal, &i.VATAmount, &i.Total, &i.AmountPaid, &i.Status, &i.JournalEntryID, &i.JournalNumber, &i.CreatedAt)
	return i, err
}

func (r *repository) GetInvoice(ctx context.Context, number string) (Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+invoiceFrom+` WHERE i.number=$1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.NotFound("invoice", number)
	}
	if err != nil {
		return Invoice{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, invoice_id, item_id, location_id, description, quantity, unit_price, vat_rate,
line_net, line_vat, cost_basis, cost_value, stock_tx_number, cogs_entry_number
FROM sales_invoice_lines WHERE invoice_id=$1 ORDER BY id`, inv.ID)
	if err != nil {
		return Invoice{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ItemID, &l.LocationID, &l.Description, &l.Quantity, &l.UnitPrice, &l.VATRate,
			&l.LineNet, &l.LineVAT, &l.CostBasis, &l.CostValue, &l.StockTxNumber, &l.COGSEntryNumber); err != nil {
			return Invoice{}, err
		}
		inv.Lines = append(inv.Lines, l)
	}
	return inv, rows.Err()
}

func (r *repository) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error) {
	query := `SELECT ` + invoiceColumns + invoiceFrom + ` WHERE 1=1`
	var args []any
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND i.customer_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND i.status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND i.invoice_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND i.invoice_date <= $%d", len(args))
	}
	query += " ORDER BY i.invoice_date, i.id"
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
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

// NextNumber is shared by the embedded stores; every sequence lives in one table.
func (r *txRepository) NextNumber(ctx context.Context, seq shared.Sequence) (int64, error) {
	return db.NextSequence(ctx, r.tx, string(seq))
}

func (r *txRepository) GetCustomer(ctx context.Context, id int64) (masterdata.Customer, error) {
	return masterdata.LoadCustomer(ctx, r.tx, id)
}

func (r *txRepository) InsertInvoice(ctx context.Context, inv Invoice) (Invoice, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO sales_invoices (number, customer_id, invoice_date, due_date, currency, exchange_rate, terms, notes,
subtotal, vat_amount, total, amount_paid, status, journal_entry_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14) RETURNING id, created_at`,
		inv.Number, inv.CustomerID, inv.Date, inv.DueDate, inv.Currency, inv.ExchangeRate, inv.Terms, inv.Notes,
		inv.Subtotal, inv.VATAmount, inv.Total, inv.AmountPaid, inv.Status, inv.JournalEntryID,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return Invoice{}, shared.DuplicateKey("invoice", inv.Number)
		}
		return Invoice{}, err
	}
	return inv, nil
}

func (r *txRepository) InsertInvoiceLine(ctx context.Context, l InvoiceLine) (InvoiceLine, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO sales_invoice_lines (invoice_id, item_id, location_id, description, quantity, unit_price, vat_rate,
line_net, line_vat, cost_basis, cost_value, stock_tx_number, cogs_entry_number)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13) RETURNING id`,
		l.InvoiceID, l.ItemID, l.LocationID, l.Description, l.Quantity, l.UnitPrice, l.VATRate,
		l.LineNet, l.LineVAT, l.CostBasis, l.CostValue, l.StockTxNumber, l.COGSEntryNumber,
	).Scan(&l.ID)
	return l, err
}

func (r *txRepository) GetInvoiceForUpdate(ctx context.Context, number string) (Invoice, error) {
	inv, err := scanInvoice(r.tx.QueryRow(ctx, `SELECT `+invoiceColumns+invoiceFrom+` WHERE i.number=$1 FOR UPDATE OF i`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.NotFound("invoice", number)
	}
	return inv, err
}

func (r *txRepository) UpdateInvoicePayment(ctx context.Context, id int64, amountPaid decimal.Decimal, status payments.Status) error {
	_, err := r.tx.Exec(ctx, `UPDATE sales_invoices SET amount_paid=$2, status=$3 WHERE id=$1`, id, amountPaid, status)
	return err
}
