package inventory

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// ValuationReport totals stock value across a company.
type ValuationReport struct {
	Rows       []ValuationRow `json:"rows"`
	TotalValue float64        `json:"total_value"`
}

// Valuation prices every snapshot row at the product unit cost.
func (s *Service) Valuation(ctx context.Context, companyID int64) (ValuationReport, error) {
	if companyID == 0 {
		return ValuationReport{}, errors.New("inventory: company required")
	}
	rows, err := s.repo.ValuationRows(ctx, companyID)
	if err != nil {
		return ValuationReport{}, err
	}
	report := ValuationReport{Rows: rows}
	for _, row := range rows {
		report.TotalValue += row.TotalValue
	}
	return report, nil
}

// MovementFilter scopes a movement report to one pair and date range.
type MovementFilter struct {
	CompanyID   int64
	ProductID   int64
	WarehouseID int64
	From        time.Time
	To          time.Time
}

// MovementReport shows activity for one product/warehouse pair over a range.
// Opening is replayed from log rows strictly before the range start, so the
// report is consistent with the log even if the snapshot has drifted.
type MovementReport struct {
	ProductID    int64              `json:"product_id"`
	WarehouseID  int64              `json:"warehouse_id"`
	From         time.Time          `json:"from"`
	To           time.Time          `json:"to"`
	Opening      float64            `json:"opening"`
	TotalIn      float64            `json:"total_in"`
	TotalOut     float64            `json:"total_out"`
	Closing      float64            `json:"closing"`
	Transactions []StockTransaction `json:"transactions"`
}

// Movement builds the movement report. Opening replay, period totals and the
// range listing are independent queries and run concurrently. Totals are
// aggregated in SQL over every row in the range; the transaction listing is
// a bounded page, so a busy period cannot skew TotalIn, TotalOut or Closing.
func (s *Service) Movement(ctx context.Context, filter MovementFilter) (MovementReport, error) {
	if filter.CompanyID == 0 || filter.ProductID == 0 || filter.WarehouseID == 0 {
		return MovementReport{}, errors.New("inventory: company, product and warehouse required")
	}
	report := MovementReport{
		ProductID:   filter.ProductID,
		WarehouseID: filter.WarehouseID,
		From:        filter.From,
		To:          filter.To,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if filter.From.IsZero() {
			return nil
		}
		opening, err := s.repo.SumDeltaBefore(gctx, filter.CompanyID, filter.ProductID, filter.WarehouseID, filter.From)
		if err != nil {
			return err
		}
		report.Opening = opening
		return nil
	})
	g.Go(func() error {
		in, out, err := s.repo.SumDeltaRange(gctx, filter.CompanyID, filter.ProductID, filter.WarehouseID, filter.From, filter.To)
		if err != nil {
			return err
		}
		report.TotalIn = in
		report.TotalOut = out
		return nil
	})
	g.Go(func() error {
		txs, err := s.repo.ListTransactions(gctx, TransactionFilter{
			CompanyID:   filter.CompanyID,
			ProductID:   filter.ProductID,
			WarehouseID: filter.WarehouseID,
			From:        filter.From,
			To:          filter.To,
		})
		if err != nil {
			return err
		}
		report.Transactions = txs
		return nil
	})
	if err := g.Wait(); err != nil {
		return MovementReport{}, err
	}

	report.Closing = report.Opening + report.TotalIn - report.TotalOut
	return report, nil
}

// StockAlert flags one snapshot at or below its reorder level.
type StockAlert struct {
	ProductID    int64   `json:"product_id"`
	SKU          string  `json:"sku"`
	ProductName  string  `json:"product_name"`
	WarehouseID  int64   `json:"warehouse_id"`
	Warehouse    string  `json:"warehouse"`
	Quantity     float64 `json:"quantity"`
	ReorderLevel float64 `json:"reorder_level"`
}

// LowStock lists pairs whose quantity sits at or below the product reorder
// level. Zero-reorder products are skipped so untracked items do not flood
// the report.
func (s *Service) LowStock(ctx context.Context, companyID int64) ([]StockAlert, error) {
	rows, err := s.repo.ValuationRows(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var alerts []StockAlert
	for _, row := range rows {
		if row.ReorderLevel <= 0 || row.Quantity > row.ReorderLevel {
			continue
		}
		alerts = append(alerts, alertFromRow(row))
	}
	return alerts, nil
}

// OutOfStock lists pairs with nothing on hand.
func (s *Service) OutOfStock(ctx context.Context, companyID int64) ([]StockAlert, error) {
	rows, err := s.repo.ValuationRows(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var alerts []StockAlert
	for _, row := range rows {
		if row.Quantity > 0 {
			continue
		}
		alerts = append(alerts, alertFromRow(row))
	}
	return alerts, nil
}

func alertFromRow(row ValuationRow) StockAlert {
	return StockAlert{
		ProductID:    row.ProductID,
		SKU:          row.SKU,
		ProductName:  row.ProductName,
		WarehouseID:  row.WarehouseID,
		Warehouse:    row.Warehouse,
		Quantity:     row.Quantity,
		ReorderLevel: row.ReorderLevel,
	}
}
