package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/inventory"
	jobmetrics "github.com/odyssey-erp/odyssey-books/internal/jobs"
)

// Valuer reports the current stock valuation.
type Valuer interface {
	Valuation(ctx context.Context) (inventory.Valuation, error)
}

// BalanceReader returns the signed balance of an account.
type BalanceReader interface {
	BalanceOf(ctx context.Context, code string, asOf *time.Time) (decimal.Decimal, error)
}

// Reconciliation compares the two sides of the inventory control account.
type Reconciliation struct {
	Valuation decimal.Decimal
	Ledger    decimal.Decimal
}

// Difference is the valuation minus the ledger balance.
func (r Reconciliation) Difference() decimal.Decimal {
	return r.Valuation.Sub(r.Ledger)
}

// InventoryReconcileJob checks the perpetual inventory against account 1131.
type InventoryReconcileJob struct {
	Inventory Valuer
	Reports   BalanceReader
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewInventoryReconcileJob wires the job.
func NewInventoryReconcileJob(inv Valuer, reports BalanceReader, logger *slog.Logger, metrics *jobmetrics.Metrics) *InventoryReconcileJob {
	return &InventoryReconcileJob{Inventory: inv, Reports: reports, Logger: logger, Metrics: metrics}
}

// Handle executes inventory:reconcile tasks. A difference is logged and
// recorded, it does not fail the task.
func (j *InventoryReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Inventory == nil || j.Reports == nil {
		return errors.New("inventory reconcile: handler not configured")
	}
	asOf, err := decodeCheck(t)
	if err != nil {
		return fmt.Errorf("inventory reconcile: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskInventoryReconcile)
	_, err = j.Reconcile(ctx, asOf)
	return tracker.End(err)
}

// Reconcile loads the valuation and the ledger balance concurrently.
// The valuation is always the current one; asOf bounds the ledger side.
func (j *InventoryReconcileJob) Reconcile(ctx context.Context, asOf *time.Time) (Reconciliation, error) {
	var rec Reconciliation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := j.Inventory.Valuation(gctx)
		if err != nil {
			return fmt.Errorf("valuation: %w", err)
		}
		rec.Valuation = v.TotalValue
		return nil
	})
	g.Go(func() error {
		b, err := j.Reports.BalanceOf(gctx, accounts.CodeInventory, asOf)
		if err != nil {
			return fmt.Errorf("ledger balance: %w", err)
		}
		rec.Ledger = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return Reconciliation{}, fmt.Errorf("inventory reconcile: %w", err)
	}

	diff := rec.Difference()
	j.Metrics.SetInventoryDifference(diff)
	logger := logOrDefault(j.Logger).With(
		slog.String("job", TaskInventoryReconcile),
		slog.String("valuation", rec.Valuation.StringFixed(2)),
		slog.String("ledger", rec.Ledger.StringFixed(2)),
	)
	if !diff.IsZero() {
		logger.Warn("inventory differs from ledger", slog.String("difference", diff.StringFixed(2)))
	} else {
		logger.Info("inventory reconciled")
	}
	return rec, nil
}
