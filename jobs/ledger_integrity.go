package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/reports"
	jobmetrics "github.com/odyssey-erp/odyssey-books/internal/jobs"
)

// ErrLedgerOutOfBalance is returned when the integrity check finds a difference.
var ErrLedgerOutOfBalance = errors.New("ledger out of balance")

// TrialBalancer computes the trial balance.
type TrialBalancer interface {
	TrialBalance(ctx context.Context, asOf *time.Time) (reports.TrialBalance, error)
}

// UnbalancedFinder lists entries whose base lines do not net to zero.
type UnbalancedFinder interface {
	FindUnbalanced(ctx context.Context) ([]journals.Imbalance, error)
}

// IntegrityReport summarises one ledger integrity run.
type IntegrityReport struct {
	AsOf        *time.Time
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Unbalanced  []journals.Imbalance
}

// Difference is debits minus credits.
func (r IntegrityReport) Difference() decimal.Decimal {
	return r.TotalDebit.Sub(r.TotalCredit)
}

// Balanced reports whether the trial balance agrees and no entry is unbalanced.
func (r IntegrityReport) Balanced() bool {
	return r.Difference().IsZero() && len(r.Unbalanced) == 0
}

// LedgerIntegrityJob recomputes the trial balance from posted lines.
type LedgerIntegrityJob struct {
	Reports  TrialBalancer
	Journals UnbalancedFinder
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewLedgerIntegrityJob wires the job.
func NewLedgerIntegrityJob(reports TrialBalancer, journals UnbalancedFinder, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{Reports: reports, Journals: journals, Logger: logger, Metrics: metrics}
}

// Handle executes ledger:integrity tasks.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil || j.Journals == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	asOf, err := decodeCheck(t)
	if err != nil {
		return fmt.Errorf("ledger integrity: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskLedgerIntegrity)
	_, err = j.Check(ctx, asOf)
	return tracker.End(err)
}

// Check runs the integrity check and records the imbalance gauge.
func (j *LedgerIntegrityJob) Check(ctx context.Context, asOf *time.Time) (IntegrityReport, error) {
	tb, err := j.Reports.TrialBalance(ctx, asOf)
	if err != nil {
		return IntegrityReport{}, fmt.Errorf("ledger integrity: trial balance: %w", err)
	}
	unbalanced, err := j.Journals.FindUnbalanced(ctx)
	if err != nil {
		return IntegrityReport{}, fmt.Errorf("ledger integrity: unbalanced entries: %w", err)
	}
	report := IntegrityReport{AsOf: asOf, TotalDebit: tb.TotalDebit, TotalCredit: tb.TotalCredit, Unbalanced: unbalanced}
	j.Metrics.SetImbalance(report.Difference())

	logger := logOrDefault(j.Logger).With(slog.String("job", TaskLedgerIntegrity))
	if !report.Balanced() {
		for _, u := range unbalanced {
			logger.Error("unbalanced entry",
				slog.String("number", u.Number),
				slog.String("debit_base", u.DebitBase.String()),
				slog.String("credit_base", u.CreditBase.String()),
			)
		}
		return report, fmt.Errorf("%w: debits %s credits %s, %d unbalanced entries",
			ErrLedgerOutOfBalance, tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2), len(unbalanced))
	}
	logger.Info("ledger balanced", slog.String("total", tb.TotalDebit.StringFixed(2)))
	return report, nil
}

func logOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
