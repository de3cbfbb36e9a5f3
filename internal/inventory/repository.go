package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// ErrLevelNotFound indicates no snapshot row exists for the pair yet.
var ErrLevelNotFound = fmt.Errorf("inventory: stock level %w", shared.ErrNotFound)

// ValuationRow is one product/warehouse pair with product metadata joined in.
type ValuationRow struct {
	ProductID    int64   `json:"product_id"`
	SKU          string  `json:"sku"`
	ProductName  string  `json:"product_name"`
	WarehouseID  int64   `json:"warehouse_id"`
	Warehouse    string  `json:"warehouse"`
	Quantity     float64 `json:"quantity"`
	UnitCost     float64 `json:"unit_cost"`
	TotalValue   float64 `json:"total_value"`
	ReorderLevel float64 `json:"reorder_level"`
}

// LevelTotal pairs a snapshot quantity with the replayed log total for the
// same product/warehouse. Used by reconciliation.
type LevelTotal struct {
	ProductID   int64
	WarehouseID int64
	Snapshot    float64
	Replayed    float64
	HasSnapshot bool
}

// Repository encapsulates DB operations for inventory.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetLevel(ctx context.Context, companyID, productID, warehouseID int64) (StockLevel, error)
	ListLevels(ctx context.Context, filter LevelFilter) ([]StockLevel, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]StockTransaction, error)
	SumDeltaBefore(ctx context.Context, companyID, productID, warehouseID int64, before time.Time) (float64, error)
	SumDeltaRange(ctx context.Context, companyID, productID, warehouseID int64, from, to time.Time) (in, out float64, err error)
	ValuationRows(ctx context.Context, companyID int64) ([]ValuationRow, error)
}

// TxRepository exposes operations available within a transaction.
type TxRepository interface {
	GetLevelForUpdate(ctx context.Context, companyID, productID, warehouseID int64) (StockLevel, error)
	UpsertLevel(ctx context.Context, level StockLevel) error
	InsertTransaction(ctx context.Context, tx StockTransaction) (int64, error)
	NextTransferNumber(ctx context.Context, companyID int64) (int64, error)
	LevelTotals(ctx context.Context, companyID int64) ([]LevelTotal, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const levelColumns = `id, company_id, product_id, warehouse_id, quantity, reserved, updated_at`

func scanLevel(row pgx.Row) (StockLevel, error) {
	var l StockLevel
	err := row.Scan(&l.ID, &l.CompanyID, &l.ProductID, &l.WarehouseID, &l.Quantity, &l.Reserved, &l.UpdatedAt)
	return l, err
}

func (r *repository) GetLevel(ctx context.Context, companyID, productID, warehouseID int64) (StockLevel, error) {
	level, err := scanLevel(r.db.QueryRow(ctx, `SELECT `+levelColumns+` FROM current_inventory WHERE company_id=$1 AND product_id=$2 AND warehouse_id=$3`,
		companyID, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockLevel{}, ErrLevelNotFound
		}
		return StockLevel{}, err
	}
	return level, nil
}

func (r *repository) ListLevels(ctx context.Context, filter LevelFilter) ([]StockLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM current_inventory WHERE company_id=$1`
	args := []any{filter.CompanyID}
	if filter.ProductID != 0 {
		args = append(args, filter.ProductID)
		query += fmt.Sprintf(` AND product_id=$%d`, len(args))
	}
	if filter.WarehouseID != 0 {
		args = append(args, filter.WarehouseID)
		query += fmt.Sprintf(` AND warehouse_id=$%d`, len(args))
	}
	query += ` ORDER BY product_id, warehouse_id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var levels []StockLevel
	for rows.Next() {
		var l StockLevel
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.ProductID, &l.WarehouseID, &l.Quantity, &l.Reserved, &l.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

const txColumns = `id, company_id, product_id, warehouse_id, type, quantity, delta, target_qty, unit_cost, reference_type, reference_id, batch_number, expiry_date, notes, created_by, created_at`

func (r *repository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]StockTransaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT ` + txColumns + ` FROM inventory_transactions WHERE company_id=$1`
	args := []any{filter.CompanyID}
	if filter.ProductID != 0 {
		args = append(args, filter.ProductID)
		query += fmt.Sprintf(` AND product_id=$%d`, len(args))
	}
	if filter.WarehouseID != 0 {
		args = append(args, filter.WarehouseID)
		query += fmt.Sprintf(` AND warehouse_id=$%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(` AND type=$%d`, len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	query += fmt.Sprintf(` ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txs []StockTransaction
	for rows.Next() {
		var t StockTransaction
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.ProductID, &t.WarehouseID, &t.Type, &t.Quantity, &t.Delta, &t.TargetQty, &t.UnitCost, &t.ReferenceType, &t.ReferenceID, &t.BatchNumber, &t.ExpiryDate, &t.Notes, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *repository) SumDeltaBefore(ctx context.Context, companyID, productID, warehouseID int64, before time.Time) (float64, error) {
	var total float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(delta), 0) FROM inventory_transactions
WHERE company_id=$1 AND product_id=$2 AND warehouse_id=$3 AND created_at < $4`,
		companyID, productID, warehouseID, before).Scan(&total)
	return total, err
}

// SumDeltaRange totals inbound and outbound movement over a date range in
// SQL, so period totals never depend on listing page size.
func (r *repository) SumDeltaRange(ctx context.Context, companyID, productID, warehouseID int64, from, to time.Time) (float64, float64, error) {
	query := `SELECT
	COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0)
FROM inventory_transactions
WHERE company_id=$1 AND product_id=$2 AND warehouse_id=$3`
	args := []any{companyID, productID, warehouseID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	var in, out float64
	err := r.db.QueryRow(ctx, query, args...).Scan(&in, &out)
	return in, out, err
}

func (r *repository) ValuationRows(ctx context.Context, companyID int64) ([]ValuationRow, error) {
	rows, err := r.db.Query(ctx, `SELECT ci.product_id, p.sku, p.name, ci.warehouse_id, w.name, ci.quantity, p.unit_cost, ci.quantity * p.unit_cost, p.reorder_level
FROM current_inventory ci
JOIN products p ON p.id = ci.product_id
JOIN warehouses w ON w.id = ci.warehouse_id
WHERE ci.company_id=$1
ORDER BY p.sku, w.code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ValuationRow
	for rows.Next() {
		var v ValuationRow
		if err := rows.Scan(&v.ProductID, &v.SKU, &v.ProductName, &v.WarehouseID, &v.Warehouse, &v.Quantity, &v.UnitCost, &v.TotalValue, &v.ReorderLevel); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetLevelForUpdate(ctx context.Context, companyID, productID, warehouseID int64) (StockLevel, error) {
	level, err := scanLevel(r.tx.QueryRow(ctx, `SELECT `+levelColumns+` FROM current_inventory WHERE company_id=$1 AND product_id=$2 AND warehouse_id=$3 FOR UPDATE`,
		companyID, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockLevel{}, ErrLevelNotFound
		}
		return StockLevel{}, err
	}
	return level, nil
}

func (r *txRepository) UpsertLevel(ctx context.Context, level StockLevel) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO current_inventory (company_id, product_id, warehouse_id, quantity, reserved, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW())
ON CONFLICT (company_id, product_id, warehouse_id)
DO UPDATE SET quantity = EXCLUDED.quantity, reserved = EXCLUDED.reserved, updated_at = NOW()`,
		level.CompanyID, level.ProductID, level.WarehouseID, level.Quantity, level.Reserved)
	return err
}

func (r *txRepository) InsertTransaction(ctx context.Context, t StockTransaction) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO inventory_transactions (company_id, product_id, warehouse_id, type, quantity, delta, target_qty, unit_cost, reference_type, reference_id, batch_number, expiry_date, notes, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15) RETURNING id`,
		t.CompanyID, t.ProductID, t.WarehouseID, t.Type, t.Quantity, t.Delta, t.TargetQty, t.UnitCost, t.ReferenceType, t.ReferenceID, t.BatchNumber, t.ExpiryDate, t.Notes, t.CreatedBy, t.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// NextTransferNumber allocates the next document number for transfers.
func (r *txRepository) NextTransferNumber(ctx context.Context, companyID int64) (int64, error) {
	return shared.NextDocumentNumber(ctx, r.tx, companyID, shared.DocTypeStockTransfer)
}

// LevelTotals joins the snapshot against the replayed log so reconciliation
// sees pairs present in either side. Both sides are company-scoped before
// the join, so another company's snapshot for the same pair cannot consume
// this company's log row.
func (r *txRepository) LevelTotals(ctx context.Context, companyID int64) ([]LevelTotal, error) {
	rows, err := r.tx.Query(ctx, `SELECT
	COALESCE(ci.product_id, log.product_id),
	COALESCE(ci.warehouse_id, log.warehouse_id),
	COALESCE(ci.quantity, 0),
	COALESCE(log.total, 0),
	ci.product_id IS NOT NULL
FROM (
	SELECT product_id, warehouse_id, quantity
	FROM current_inventory
	WHERE company_id=$1
) ci
FULL OUTER JOIN (
	SELECT product_id, warehouse_id, SUM(delta) AS total
	FROM inventory_transactions
	WHERE company_id=$1
	GROUP BY product_id, warehouse_id
) log ON log.product_id = ci.product_id AND log.warehouse_id = ci.warehouse_id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var totals []LevelTotal
	for rows.Next() {
		var t LevelTotal
		if err := rows.Scan(&t.ProductID, &t.WarehouseID, &t.Snapshot, &t.Replayed, &t.HasSnapshot); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
