package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity recomputes the trial balance and looks for unbalanced entries.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskInventoryReconcile compares the stock valuation with the inventory account.
	TaskInventoryReconcile = "inventory:reconcile"
)

// CheckPayload pins a check to a calendar date. An empty AsOf means "everything posted".
type CheckPayload struct {
	AsOf string `json:"as_of,omitempty"`
}

func (p CheckPayload) date() (*time.Time, error) {
	return shared.ParseOptionalDate("as_of", p.AsOf)
}

func newCheckTask(taskType string, asOf *time.Time) (*asynq.Task, error) {
	var payload CheckPayload
	if asOf != nil {
		payload.AsOf = asOf.Format(shared.DateLayout)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// NewLedgerIntegrityTask builds a ledger:integrity task.
func NewLedgerIntegrityTask(asOf *time.Time) (*asynq.Task, error) {
	return newCheckTask(TaskLedgerIntegrity, asOf)
}

// NewInventoryReconcileTask builds an inventory:reconcile task.
func NewInventoryReconcileTask(asOf *time.Time) (*asynq.Task, error) {
	return newCheckTask(TaskInventoryReconcile, asOf)
}

func decodeCheck(t *asynq.Task) (*time.Time, error) {
	var payload CheckPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return nil, err
		}
	}
	return payload.date()
}
