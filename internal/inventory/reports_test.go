package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMovementReplaysOpeningBeforeRange(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	clock := base
	svc.WithNow(func() time.Time { return clock })

	record := func(txType TransactionType, qty float64) {
		t.Helper()
		_, err := svc.RecordTransaction(ctx, RecordTransactionRequest{
			CompanyID: 1, ProductID: 10, WarehouseID: 20,
			Type: txType, Quantity: qty,
		})
		require.NoError(t, err)
	}

	record(TransactionTypeIn, 100)
	clock = base.AddDate(0, 0, 10)
	record(TransactionTypeOut, 20)
	clock = base.AddDate(0, 0, 12)
	record(TransactionTypeIn, 5)

	report, err := svc.Movement(ctx, MovementFilter{
		CompanyID:   1,
		ProductID:   10,
		WarehouseID: 20,
		From:        base.AddDate(0, 0, 5),
		To:          base.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	require.InDelta(t, 100, report.Opening, 0.0001)
	require.InDelta(t, 5, report.TotalIn, 0.0001)
	require.InDelta(t, 20, report.TotalOut, 0.0001)
	require.InDelta(t, 85, report.Closing, 0.0001)
	require.Len(t, report.Transactions, 2)
}

func TestMovementTotalsCoverFullRangeBeyondListingPage(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < 205; i++ {
		_, err := svc.RecordTransaction(ctx, RecordTransactionRequest{
			CompanyID: 1, ProductID: 10, WarehouseID: 20,
			Type: TransactionTypeIn, Quantity: 1,
		})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := svc.RecordTransaction(ctx, RecordTransactionRequest{
			CompanyID: 1, ProductID: 10, WarehouseID: 20,
			Type: TransactionTypeOut, Quantity: 1,
		})
		require.NoError(t, err)
	}

	report, err := svc.Movement(ctx, MovementFilter{
		CompanyID: 1, ProductID: 10, WarehouseID: 20,
	})
	require.NoError(t, err)
	require.Len(t, report.Transactions, 200, "listing stays a bounded page")
	require.InDelta(t, 205, report.TotalIn, 0.0001)
	require.InDelta(t, 3, report.TotalOut, 0.0001)
	require.InDelta(t, 202, report.Closing, 0.0001)
}

func TestValuationTotalsRows(t *testing.T) {
	repo := newMemoryRepo()
	repo.valuation = []ValuationRow{
		{ProductID: 10, SKU: "SKU-10", Quantity: 4, UnitCost: 25, TotalValue: 100, ReorderLevel: 10},
		{ProductID: 11, SKU: "SKU-11", Quantity: 2, UnitCost: 50, TotalValue: 100},
	}
	svc := newTestService(repo)

	report, err := svc.Valuation(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	require.InDelta(t, 200, report.TotalValue, 0.0001)
}

func TestLowStockSkipsUntrackedProducts(t *testing.T) {
	repo := newMemoryRepo()
	repo.valuation = []ValuationRow{
		{ProductID: 10, SKU: "SKU-10", Quantity: 3, ReorderLevel: 10},
		{ProductID: 11, SKU: "SKU-11", Quantity: 50, ReorderLevel: 10},
		{ProductID: 12, SKU: "SKU-12", Quantity: 0, ReorderLevel: 0},
	}
	svc := newTestService(repo)

	alerts, err := svc.LowStock(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, int64(10), alerts[0].ProductID)
}

func TestOutOfStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.valuation = []ValuationRow{
		{ProductID: 10, SKU: "SKU-10", Quantity: 3},
		{ProductID: 11, SKU: "SKU-11", Quantity: 0},
		{ProductID: 12, SKU: "SKU-12", Quantity: -1},
	}
	svc := newTestService(repo)

	alerts, err := svc.OutOfStock(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
}
