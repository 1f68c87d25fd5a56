package journals

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Observer is told about entries once the transaction that created them has committed.
type Observer interface {
	EntriesPosted(ctx context.Context, entries []Entry)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, entries []Entry)

func (f ObserverFunc) EntriesPosted(ctx context.Context, entries []Entry) { f(ctx, entries) }

// Service is the journal poster. It is the only writer of entries and lines.
type Service struct {
	repo      Repository
	audit     shared.AuditTrail
	observers []Observer
}

// NewService constructs the poster; audit and logger may be nil.
func NewService(repo Repository, audit shared.AuditPort, logger *slog.Logger, observers ...Observer) *Service {
	return &Service{repo: repo, audit: shared.NewAuditTrail(audit, logger), observers: observers}
}

// Observe registers an observer after construction.
func (s *Service) Observe(o Observer) {
	s.observers = append(s.observers, o)
}

// Post validates and commits a balanced entry in its own transaction.
func (s *Service) Post(ctx context.Context, in PostingInput) (Entry, error) {
	if err := in.Normalize(); err != nil {
		return Entry{}, err
	}
	var posted Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := s.PostInTx(ctx, tx, in)
		if err != nil {
			return err
		}
		posted = entry
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.Notify(ctx, posted)
	return posted, nil
}

// PostInTx posts within the caller's transaction. The caller must invoke Notify
// after its commit succeeds.
func (s *Service) PostInTx(ctx context.Context, tx TxRepository, in PostingInput) (Entry, error) {
	if err := in.Normalize(); err != nil {
		return Entry{}, err
	}
	for idx, line := range in.Lines {
		account, err := tx.GetAccount(ctx, line.AccountID)
		if err != nil {
			return Entry{}, err
		}
		if !account.IsActive {
			return Entry{}, shared.Invalid(fmt.Sprintf("lines[%d].account", idx), "account "+account.Code+" is inactive")
		}
	}

	seq, err := tx.NextNumber(ctx, shared.SeqJournal)
	if err != nil {
		return Entry{}, err
	}
	entry, err := tx.InsertEntry(ctx, Entry{
		Number:       shared.FormatNumber(shared.PrefixJournal, seq),
		Sequence:     seq,
		Date:         in.Date,
		Type:         in.Type,
		Reference:    in.Reference,
		Description:  in.Description,
		Currency:     in.Currency,
		ExchangeRate: in.ExchangeRate,
		Status:       StatusPosted,
		SourceModule: in.sourceModule(),
		SourceID:     in.sourceID(),
	})
	if err != nil {
		return Entry{}, err
	}

	lines := make([]Line, len(in.Lines))
	for i, l := range in.Lines {
		lines[i] = Line{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			DebitBase:   l.Debit.Mul(in.ExchangeRate),
			CreditBase:  l.Credit.Mul(in.ExchangeRate),
			Description: strings.TrimSpace(l.Description),
		}
	}
	entry.Lines, err = tx.InsertLines(ctx, entry.ID, lines)
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Notify records audit logs and fans committed entries out to observers.
func (s *Service) Notify(ctx context.Context, entries ...Entry) {
	if len(entries) == 0 {
		return
	}
	for _, e := range entries {
		debit, credit := e.Totals()
		s.audit.Record(ctx, shared.AuditLog{
			Action:   "journal.post",
			Entity:   "journal_entry",
			EntityID: e.Number,
			Meta: map[string]any{
				"type":     e.Type.String(),
				"currency": e.Currency,
				"debit":    debit.StringFixed(shared.MoneyScale),
				"credit":   credit.StringFixed(shared.MoneyScale),
			},
		})
	}
	for _, o := range s.observers {
		o.EntriesPosted(ctx, entries)
	}
}

// Get returns an entry with its lines.
func (s *Service) Get(ctx context.Context, number string) (Entry, error) {
	return s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

// List returns entry headers ordered by date and sequence.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	return s.repo.List(ctx, filter)
}

// FindUnbalanced lists entries whose base-currency lines do not net to zero.
func (s *Service) FindUnbalanced(ctx context.Context) ([]Imbalance, error) {
	return s.repo.FindUnbalanced(ctx)
}
