package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Repository reads payment records.
type Repository interface {
	GetByNumber(ctx context.Context, number string) (Payment, error)
	List(ctx context.Context, filter Filter) ([]Payment, error)
}

// TxRepository writes payment records inside an orchestrator's transaction.
type TxRepository interface {
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const paymentColumns = `p.id, p.number, p.payment_date, p.direction, p.party_type, p.party_id, p.document_number, p.amount,
p.currency, p.exchange_rate, p.method, p.bank_account_id, p.reference, p.description, p.journal_entry_id, e.number, p.created_at`

const paymentFrom = ` FROM payments p JOIN journal_entries e ON e.id = p.journal_entry_id`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.Number, &p.Date, &p.Direction, &p.PartyType, &p.PartyID, &p.DocumentNumber, &p.Amount,
		&p.Currency, &p.ExchangeRate, &p.Method, &p.BankAccountID, &p.Reference, &p.Description, &p.JournalEntryID, &p.JournalNumber, &p.CreatedAt)
	return p, err
}

func (r *repository) GetByNumber(ctx context.Context, number string) (Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+paymentFrom+` WHERE p.number=$1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, shared.NotFound("payment", number)
	}
	return p, err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + paymentFrom + ` WHERE 1=1`
	var args []any
	if filter.Direction != "" {
		args = append(args, filter.Direction)
		query += fmt.Sprintf(" AND p.direction = $%d", len(args))
	}
	if filter.DocumentNumber != "" {
		args = append(args, filter.DocumentNumber)
		query += fmt.Sprintf(" AND p.document_number = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND p.payment_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND p.payment_date <= $%d", len(args))
	}
	query += " ORDER BY p.payment_date, p.id"
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// NewTxRepository wraps tx for use inside an orchestrator's unit of work.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO payments (number, payment_date, direction, party_type, party_id, document_number, amount,
currency, exchange_rate, method, bank_account_id, reference, description, journal_entry_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14) RETURNING id, created_at`,
		p.Number, p.Date, p.Direction, p.PartyType, p.PartyID, p.DocumentNumber, p.Amount,
		p.Currency, p.ExchangeRate, p.Method, p.BankAccountID, p.Reference, p.Description, p.JournalEntryID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return Payment{}, shared.DuplicateKey("payment", p.Number)
		}
		return Payment{}, err
	}
	return p, nil
}
