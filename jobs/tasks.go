package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskInventoryReconcile replays the inventory log and repairs snapshot drift.
	TaskInventoryReconcile = "inventory:reconcile"
	// TaskLedgerIntegrity verifies posted entries and account balances agree.
	TaskLedgerIntegrity = "ledger:integrity"
)

// InventoryReconcilePayload scopes a reconcile run. CompanyID zero means
// every company with inventory activity.
type InventoryReconcilePayload struct {
	CompanyID    int64     `json:"company_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewInventoryReconcileTask constructs an Asynq task for snapshot reconciliation.
func NewInventoryReconcileTask(companyID int64, at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(InventoryReconcilePayload{CompanyID: companyID, ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryReconcile, body, asynq.Queue(QueueDefault)), nil
}

// LedgerIntegrityPayload scopes an integrity run. CompanyID zero means every
// company with a chart of accounts.
type LedgerIntegrityPayload struct {
	CompanyID    int64     `json:"company_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLedgerIntegrityTask constructs an Asynq task for ledger verification.
func NewLedgerIntegrityTask(companyID int64, at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(LedgerIntegrityPayload{CompanyID: companyID, ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, body, asynq.Queue(QueueDefault)), nil
}
