package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// TransactionType enumerates supported inventory movements.
type TransactionType string

const (
	// TransactionTypeIn represents an inbound movement.
	TransactionTypeIn TransactionType = "IN"
	// TransactionTypeOut represents an outbound movement.
	TransactionTypeOut TransactionType = "OUT"
	// TransactionTypeTransfer marks the legs of a warehouse transfer.
	TransactionTypeTransfer TransactionType = "TRANSFER"
	// TransactionTypeAdjustment indicates manual corrections.
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// Valid reports whether the type is one of the enumerated movements.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIn, TransactionTypeOut, TransactionTypeTransfer, TransactionTypeAdjustment:
		return true
	}
	return false
}

// ReferenceTypeTransfer links the two legs of a warehouse transfer.
const ReferenceTypeTransfer = "stock_transfer"

// StockLevel is the live snapshot of quantity on hand for one product in
// one warehouse. Rows are created lazily on first movement.
type StockLevel struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	ProductID   int64     `json:"product_id"`
	WarehouseID int64     `json:"warehouse_id"`
	Quantity    float64   `json:"quantity"`
	Reserved    float64   `json:"reserved"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Available is the quantity not held by reservations.
func (l StockLevel) Available() float64 {
	return l.Quantity - l.Reserved
}

// StockTransaction is one immutable row of the movement log. Quantity holds
// the positive magnitude as entered; Delta holds the signed amount actually
// applied to the snapshot. Adjustments additionally record TargetQty, the
// absolute quantity the snapshot was set to.
type StockTransaction struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"company_id"`
	ProductID     int64           `json:"product_id"`
	WarehouseID   int64           `json:"warehouse_id"`
	Type          TransactionType `json:"type"`
	Quantity      float64         `json:"quantity"`
	Delta         float64         `json:"delta"`
	TargetQty     *float64        `json:"target_qty,omitempty"`
	UnitCost      float64         `json:"unit_cost"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	BatchNumber   string          `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     int64           `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InsufficientStockError names the product that could not cover a requested
// outbound quantity.
type InsufficientStockError struct {
	ProductID   int64
	WarehouseID int64
	Requested   float64
	Available   float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for product %d in warehouse %d: requested %.2f, available %.2f",
		e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

// ErrInsufficientStock matches any InsufficientStockError via errors.Is.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// Is lets callers test with errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Input sentinels wrap shared.ErrValidation so the transport layer resolves
// them to 400 responses without per-sentinel branches.
var (
	// ErrInvalidQuantity indicates a non-positive movement quantity.
	ErrInvalidQuantity = fmt.Errorf("inventory: quantity must be positive: %w", shared.ErrValidation)
	// ErrUnknownTransactionType indicates an unsupported movement type.
	ErrUnknownTransactionType = fmt.Errorf("inventory: unknown transaction type: %w", shared.ErrValidation)
	// ErrSameWarehouse indicates a transfer where source and destination match.
	ErrSameWarehouse = fmt.Errorf("inventory: source and destination warehouse must differ: %w", shared.ErrValidation)
	// ErrUnknownAdjustmentMode indicates an unsupported adjustment mode.
	ErrUnknownAdjustmentMode = fmt.Errorf("inventory: unknown adjustment mode: %w", shared.ErrValidation)
)
