package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// driftEpsilon tolerates float accumulation noise when comparing the
// snapshot against a replayed log total.
const driftEpsilon = 0.0001

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates inventory operations.
type Service struct {
	repo        Repository
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	allowNeg    bool
	now         func() time.Time
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	AllowNegativeStock bool
}

// NewService builds Service. audit and idem may be nil.
func NewService(repo Repository, audit AuditPort, idem *shared.IdempotencyStore, cfg ServiceConfig) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, allowNeg: cfg.AllowNegativeStock, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// RecordTransaction appends one movement to the log and applies its effect
// to the stock level snapshot in the same transaction. Inbound adds the
// quantity, outbound and transfer subtract it, adjustment sets the level to
// the quantity as an absolute target.
func (s *Service) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (StockTransaction, error) {
	if err := req.Validate(); err != nil {
		return StockTransaction{}, err
	}
	key := ""
	if req.ReferenceID != "" {
		key = fmt.Sprintf("%s:%s:%s:%d:%d", req.Type, req.ReferenceType, req.ReferenceID, req.ProductID, req.WarehouseID)
		if s.idempotency != nil {
			if err := s.idempotency.CheckAndInsert(ctx, "inventory", key); err != nil {
				return StockTransaction{}, err
			}
		}
	}
	var out StockTransaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		out, err = s.applyMovementTx(ctx, tx, req)
		return err
	})
	if err != nil {
		if key != "" && s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, "inventory", key)
		}
		return StockTransaction{}, err
	}
	s.recordAudit(ctx, req.ActorID, fmt.Sprintf("inventory.%s", req.Type), out)
	return out, nil
}

// applyMovementTx locks the level row, derives the signed delta from the
// movement type, guards availability and writes both the log row and the
// updated snapshot.
func (s *Service) applyMovementTx(ctx context.Context, tx TxRepository, req RecordTransactionRequest) (StockTransaction, error) {
	level, err := tx.GetLevelForUpdate(ctx, req.CompanyID, req.ProductID, req.WarehouseID)
	if err != nil && !errors.Is(err, ErrLevelNotFound) {
		return StockTransaction{}, err
	}
	if errors.Is(err, ErrLevelNotFound) {
		level = StockLevel{CompanyID: req.CompanyID, ProductID: req.ProductID, WarehouseID: req.WarehouseID}
	}

	var delta float64
	var target *float64
	switch req.Type {
	case TransactionTypeIn:
		delta = req.Quantity
	case TransactionTypeOut, TransactionTypeTransfer:
		if !s.allowNeg && level.Available() < req.Quantity {
			return StockTransaction{}, &InsufficientStockError{
				ProductID:   req.ProductID,
				WarehouseID: req.WarehouseID,
				Requested:   req.Quantity,
				Available:   level.Available(),
			}
		}
		delta = -req.Quantity
	case TransactionTypeAdjustment:
		t := req.Quantity
		target = &t
		delta = t - level.Quantity
	default:
		return StockTransaction{}, ErrUnknownTransactionType
	}

	now := s.now().UTC()
	record := StockTransaction{
		CompanyID:     req.CompanyID,
		ProductID:     req.ProductID,
		WarehouseID:   req.WarehouseID,
		Type:          req.Type,
		Quantity:      req.Quantity,
		Delta:         delta,
		TargetQty:     target,
		UnitCost:      req.UnitCost,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		BatchNumber:   req.BatchNumber,
		ExpiryDate:    req.ExpiryDate,
		Notes:         req.Notes,
		CreatedBy:     req.ActorID,
		CreatedAt:     now,
	}
	id, err := tx.InsertTransaction(ctx, record)
	if err != nil {
		return StockTransaction{}, err
	}
	record.ID = id

	level.Quantity += delta
	if math.Abs(level.Quantity) < driftEpsilon {
		level.Quantity = 0
	}
	level.UpdatedAt = now
	if err := tx.UpsertLevel(ctx, level); err != nil {
		return StockTransaction{}, err
	}
	return record, nil
}

// CreateAdjustment translates a semantic correction into an adjustment
// transaction. The stored transaction carries the resulting absolute
// quantity as target, so replaying the log with signed deltas reproduces
// the same level. Setting the level to its current value is a no-op that
// still leaves an audit trail row.
func (s *Service) CreateAdjustment(ctx context.Context, req AdjustmentRequest) (StockTransaction, error) {
	if err := req.Validate(); err != nil {
		return StockTransaction{}, err
	}
	var out StockTransaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		level, err := tx.GetLevelForUpdate(ctx, req.CompanyID, req.ProductID, req.WarehouseID)
		if err != nil && !errors.Is(err, ErrLevelNotFound) {
			return err
		}
		if errors.Is(err, ErrLevelNotFound) {
			level = StockLevel{CompanyID: req.CompanyID, ProductID: req.ProductID, WarehouseID: req.WarehouseID}
		}

		var target float64
		switch req.Mode {
		case AdjustmentIncrease:
			target = level.Quantity + req.Quantity
		case AdjustmentDecrease:
			target = level.Quantity - req.Quantity
			if !s.allowNeg && target < -driftEpsilon {
				return &InsufficientStockError{
					ProductID:   req.ProductID,
					WarehouseID: req.WarehouseID,
					Requested:   req.Quantity,
					Available:   level.Quantity,
				}
			}
		case AdjustmentSet:
			target = req.Quantity
		default:
			return ErrUnknownAdjustmentMode
		}

		now := s.now().UTC()
		record := StockTransaction{
			CompanyID:   req.CompanyID,
			ProductID:   req.ProductID,
			WarehouseID: req.WarehouseID,
			Type:        TransactionTypeAdjustment,
			Quantity:    math.Abs(target - level.Quantity),
			Delta:       target - level.Quantity,
			TargetQty:   &target,
			Notes:       req.Reason,
			CreatedBy:   req.ActorID,
			CreatedAt:   now,
		}
		id, err := tx.InsertTransaction(ctx, record)
		if err != nil {
			return err
		}
		record.ID = id

		level.Quantity = target
		level.UpdatedAt = now
		if err := tx.UpsertLevel(ctx, level); err != nil {
			return err
		}
		out = record
		return nil
	})
	if err != nil {
		return StockTransaction{}, err
	}
	s.recordAudit(ctx, req.ActorID, fmt.Sprintf("inventory.adjust.%s", req.Mode), out)
	return out, nil
}

// CreateTransfer moves several products between two warehouses. Every item
// is validated against source availability before any write, so a failing
// item leaves no partial transfer behind. Each item produces an out-leg and
// an in-leg sharing one transfer id.
func (s *Service) CreateTransfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	if err := req.Validate(); err != nil {
		return TransferResult{}, err
	}
	transferID := uuid.NewString()
	var result TransferResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		seq, err := tx.NextTransferNumber(ctx, req.CompanyID)
		if err != nil {
			return err
		}
		result.TransferNumber = fmt.Sprintf("TRF%06d", seq)
		// Validation pass locks every source level first. Only after the
		// whole batch checks out do the legs get written.
		for _, item := range req.Items {
			level, err := tx.GetLevelForUpdate(ctx, req.CompanyID, item.ProductID, req.FromWarehouse)
			if err != nil && !errors.Is(err, ErrLevelNotFound) {
				return err
			}
			if !s.allowNeg && level.Available() < item.Quantity {
				return &InsufficientStockError{
					ProductID:   item.ProductID,
					WarehouseID: req.FromWarehouse,
					Requested:   item.Quantity,
					Available:   level.Available(),
				}
			}
		}
		for _, item := range req.Items {
			outLeg, err := s.applyMovementTx(ctx, tx, RecordTransactionRequest{
				CompanyID:     req.CompanyID,
				ProductID:     item.ProductID,
				WarehouseID:   req.FromWarehouse,
				Type:          TransactionTypeTransfer,
				Quantity:      item.Quantity,
				ReferenceType: ReferenceTypeTransfer,
				ReferenceID:   transferID,
				Notes:         fmt.Sprintf("%s to warehouse %d. %s", result.TransferNumber, req.ToWarehouse, req.Notes),
				ActorID:       req.ActorID,
			})
			if err != nil {
				return err
			}
			inLeg, err := s.applyMovementTx(ctx, tx, RecordTransactionRequest{
				CompanyID:     req.CompanyID,
				ProductID:     item.ProductID,
				WarehouseID:   req.ToWarehouse,
				Type:          TransactionTypeIn,
				Quantity:      item.Quantity,
				ReferenceType: ReferenceTypeTransfer,
				ReferenceID:   transferID,
				Notes:         fmt.Sprintf("%s from warehouse %d. %s", result.TransferNumber, req.FromWarehouse, req.Notes),
				ActorID:       req.ActorID,
			})
			if err != nil {
				return err
			}
			result.Transactions = append(result.Transactions, outLeg, inLeg)
		}
		result.TransferID = transferID
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			CompanyID: req.CompanyID,
			ActorID:   req.ActorID,
			Action:    "inventory.transfer",
			Entity:    "stock_transfer",
			EntityID:  transferID,
			Meta: map[string]any{
				"transfer_number": result.TransferNumber,
				"from_warehouse":  req.FromWarehouse,
				"to_warehouse":    req.ToWarehouse,
				"items":           len(req.Items),
			},
			At: s.now(),
		})
	}
	return result, nil
}

// DriftRepair reports one snapshot repaired by reconciliation.
type DriftRepair struct {
	ProductID   int64   `json:"product_id"`
	WarehouseID int64   `json:"warehouse_id"`
	Snapshot    float64 `json:"snapshot"`
	Replayed    float64 `json:"replayed"`
}

// Reconcile replays the movement log per product/warehouse pair and rewrites
// any snapshot that disagrees with the replayed total. Pairs with log rows
// but no snapshot get one created. Returns the repairs made.
func (s *Service) Reconcile(ctx context.Context, companyID int64) ([]DriftRepair, error) {
	if companyID == 0 {
		return nil, errors.New("inventory: company required")
	}
	var repairs []DriftRepair
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		totals, err := tx.LevelTotals(ctx, companyID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		for _, t := range totals {
			if t.HasSnapshot && math.Abs(t.Snapshot-t.Replayed) <= driftEpsilon {
				continue
			}
			if err := tx.UpsertLevel(ctx, StockLevel{
				CompanyID:   companyID,
				ProductID:   t.ProductID,
				WarehouseID: t.WarehouseID,
				Quantity:    t.Replayed,
				UpdatedAt:   now,
			}); err != nil {
				return err
			}
			repairs = append(repairs, DriftRepair{
				ProductID:   t.ProductID,
				WarehouseID: t.WarehouseID,
				Snapshot:    t.Snapshot,
				Replayed:    t.Replayed,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(repairs) > 0 && s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			CompanyID: companyID,
			Action:    "inventory.reconcile",
			Entity:    "current_inventory",
			EntityID:  fmt.Sprintf("%d", companyID),
			Meta:      map[string]any{"repairs": len(repairs)},
			At:        s.now(),
		})
	}
	return repairs, nil
}

// GetLevel fetches the snapshot for one product/warehouse pair.
func (s *Service) GetLevel(ctx context.Context, companyID, productID, warehouseID int64) (StockLevel, error) {
	return s.repo.GetLevel(ctx, companyID, productID, warehouseID)
}

// ListLevels lists snapshot rows.
func (s *Service) ListLevels(ctx context.Context, filter LevelFilter) ([]StockLevel, error) {
	if filter.CompanyID == 0 {
		return nil, errors.New("inventory: company required")
	}
	return s.repo.ListLevels(ctx, filter)
}

// ListTransactions lists movement log rows.
func (s *Service) ListTransactions(ctx context.Context, filter TransactionFilter) ([]StockTransaction, error) {
	if filter.CompanyID == 0 {
		return nil, errors.New("inventory: company required")
	}
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, tx StockTransaction) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		CompanyID: tx.CompanyID,
		ActorID:   actorID,
		Action:    action,
		Entity:    "inventory_tx",
		EntityID:  fmt.Sprintf("%d", tx.ID),
		Meta: map[string]any{
			"product_id":   tx.ProductID,
			"warehouse_id": tx.WarehouseID,
			"delta":        tx.Delta,
		},
		At: s.now(),
	})
}
