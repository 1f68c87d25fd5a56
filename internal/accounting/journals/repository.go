package journals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Repository exposes journal persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetByNumber(ctx context.Context, number string) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	FindUnbalanced(ctx context.Context) ([]Imbalance, error)
}

// TxRepository is the unit of work used by the poster. Any store that composes a
// wider transaction (orchestrators) satisfies it as well.
type TxRepository interface {
	NextNumber(ctx context.Context, seq shared.Sequence) (int64, error)
	GetAccount(ctx context.Context, id int64) (accounts.Account, error)
	InsertEntry(ctx context.Context, entry Entry) (Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []Line) ([]Line, error)
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

const entryColumns = `id, number, sequence, entry_date, entry_type, reference, description, currency, exchange_rate, status, source_module, source_id, created_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e      Entry
		tag    string
		srcMod *string
	)
	if err := row.Scan(&e.ID, &e.Number, &e.Sequence, &e.Date, &tag, &e.Reference, &e.Description,
		&e.Currency, &e.ExchangeRate, &e.Status, &srcMod, &e.SourceID, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	e.Type = ParseEntryType(tag)
	if srcMod != nil {
		e.SourceModule = *srcMod
	}
	return e, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (Entry, error) {
	entry, err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE number=$1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, shared.NotFound("journal entry", number)
	}
	if err != nil {
		return Entry{}, err
	}
	entry.Lines, err = loadLines(ctx, r.pool, entry.ID)
	return entry, err
}

func loadLines(ctx context.Context, q db.Querier, entryID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, debit_base, credit_base, description
FROM journal_lines WHERE entry_id=$1 ORDER BY id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.DebitBase, &l.CreditBase, &l.Description); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE 1=1`
	var args []any
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}
	if filter.Type != nil {
		args = append(args, filter.Type.String())
		query += fmt.Sprintf(" AND entry_type = $%d", len(args))
	}
	query += " ORDER BY entry_date, sequence"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) FindUnbalanced(ctx context.Context) ([]Imbalance, error) {
	rows, err := r.pool.Query(ctx, `SELECT e.number, COALESCE(SUM(l.debit_base),0), COALESCE(SUM(l.credit_base),0)
FROM journal_entries e LEFT JOIN journal_lines l ON l.entry_id = e.id
GROUP BY e.id, e.number
HAVING COALESCE(SUM(l.debit_base),0) <> COALESCE(SUM(l.credit_base),0)
ORDER BY e.number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Imbalance
	for rows.Next() {
		var im Imbalance
		if err := rows.Scan(&im.Number, &im.DebitBase, &im.CreditBase); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}

// NewTxRepository wraps tx so orchestrators can post inside their own transaction.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) NextNumber(ctx context.Context, seq shared.Sequence) (int64, error) {
	return db.NextSequence(ctx, r.tx, string(seq))
}

func (r *txRepository) GetAccount(ctx context.Context, id int64) (accounts.Account, error) {
	return accounts.LoadAccount(ctx, r.tx, id)
}

func (r *txRepository) InsertEntry(ctx context.Context, e Entry) (Entry, error) {
	var source *string
	if e.SourceModule != "" {
		source = &e.SourceModule
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (number, sequence, entry_date, entry_type, reference, description, currency, exchange_rate, status, source_module, source_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id, created_at`,
		e.Number, e.Sequence, e.Date, e.Type.String(), e.Reference, e.Description, e.Currency, e.ExchangeRate, e.Status, source, e.SourceID,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return Entry{}, shared.DuplicateKey("journal entry", e.Number)
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []Line) ([]Line, error) {
	out := make([]Line, len(lines))
	for i, l := range lines {
		l.EntryID = entryID
		err := r.tx.QueryRow(ctx, `INSERT INTO journal_lines (entry_id, account_id, debit, credit, debit_base, credit_base, description)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
			entryID, l.AccountID, l.Debit, l.Credit, l.DebitBase, l.CreditBase, l.Description,
		).Scan(&l.ID)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}
