package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const integrityEpsilon = 0.01

// LedgerIntegrityJob verifies that posted journal entries balance and that
// account running balances agree with the posted line items. Discrepancies
// are logged, never auto-corrected.
type LedgerIntegrityJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewLedgerIntegrityJob constructs the job.
func NewLedgerIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{pool: pool, logger: logger}
}

// Handle processes TaskLedgerIntegrity tasks. Companies are checked
// concurrently, capped to avoid saturating the pool.
func (j *LedgerIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	companies := []int64{payload.CompanyID}
	if payload.CompanyID == 0 {
		var err error
		companies, err = j.ledgerCompanies(ctx)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, companyID := range companies {
		companyID := companyID
		g.Go(func() error {
			return j.checkCompany(gctx, companyID)
		})
	}
	return g.Wait()
}

func (j *LedgerIntegrityJob) checkCompany(ctx context.Context, companyID int64) error {
	// Reversed entries stay applied; their effect is offset by the posted
	// reversal entry. Both count toward applied totals.
	var totalDebit, totalCredit float64
	err := j.pool.QueryRow(ctx, `SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM journal_entry_line_items l
JOIN journal_entries e ON e.id = l.entry_id
WHERE e.company_id=$1 AND e.status IN ('POSTED','REVERSED')`, companyID).Scan(&totalDebit, &totalCredit)
	if err != nil {
		return err
	}
	if math.Abs(totalDebit-totalCredit) > integrityEpsilon {
		j.logger.Error("ledger out of balance",
			slog.Int64("company_id", companyID),
			slog.Float64("total_debit", totalDebit),
			slog.Float64("total_credit", totalCredit))
	}

	// Running balances keep the debit convention, so each account must equal
	// the signed sum of its posted lines.
	rows, err := j.pool.Query(ctx, `SELECT a.id, a.code, a.current_balance,
	COALESCE(SUM(CASE WHEN e.status IN ('POSTED','REVERSED') THEN l.debit - l.credit ELSE 0 END), 0)
FROM chart_of_accounts a
LEFT JOIN journal_entry_line_items l ON l.account_id = a.id
LEFT JOIN journal_entries e ON e.id = l.entry_id
WHERE a.company_id=$1
GROUP BY a.id, a.code, a.current_balance`, companyID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var accountID int64
		var code string
		var balance, lineSum float64
		if err := rows.Scan(&accountID, &code, &balance, &lineSum); err != nil {
			return err
		}
		if math.Abs(balance-lineSum) > integrityEpsilon {
			j.logger.Error("account balance drift",
				slog.Int64("company_id", companyID),
				slog.Int64("account_id", accountID),
				slog.String("code", code),
				slog.Float64("current_balance", balance),
				slog.Float64("line_sum", lineSum))
		}
	}
	return rows.Err()
}

func (j *LedgerIntegrityJob) ledgerCompanies(ctx context.Context) ([]int64, error) {
	rows, err := j.pool.Query(ctx, `SELECT DISTINCT company_id FROM chart_of_accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
