package shared

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Document types with per-company sequential numbering.
const (
	DocTypeJournalEntry  = "journal_entry"
	DocTypeStockTransfer = "stock_transfer"
	DocTypeProduct       = "product"
	DocTypeWarehouse     = "warehouse"
)

// Querier is satisfied by pgxpool.Pool and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NextDocumentNumber allocates the next monotonically increasing number for
// a (company, document type) pair. The upsert is atomic at the store level,
// so concurrent callers never observe duplicate numbers.
func NextDocumentNumber(ctx context.Context, q Querier, companyID int64, docType string) (int64, error) {
	if q == nil {
		return 0, errors.New("shared: querier required")
	}
	if docType == "" {
		return 0, errors.New("shared: document type required")
	}
	var number int64
	err := q.QueryRow(ctx, `INSERT INTO document_sequences (company_id, doc_type, next_value)
VALUES ($1, $2, 2)
ON CONFLICT (company_id, doc_type)
DO UPDATE SET next_value = document_sequences.next_value + 1
RETURNING next_value - 1`, companyID, docType).Scan(&number)
	if err != nil {
		return 0, err
	}
	return number, nil
}
