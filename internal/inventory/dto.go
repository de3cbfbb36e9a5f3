package inventory

import (
	"errors"
	"time"
)

// AdjustmentMode selects how an adjustment interprets its quantity.
type AdjustmentMode string

const (
	// AdjustmentIncrease adds the quantity to the current level.
	AdjustmentIncrease AdjustmentMode = "increase"
	// AdjustmentDecrease subtracts the quantity from the current level.
	AdjustmentDecrease AdjustmentMode = "decrease"
	// AdjustmentSet replaces the level with the quantity.
	AdjustmentSet AdjustmentMode = "set"
)

// RecordTransactionRequest appends one movement to the log.
type RecordTransactionRequest struct {
	CompanyID     int64           `json:"company_id" validate:"required,gt=0"`
	ProductID     int64           `json:"product_id" validate:"required,gt=0"`
	WarehouseID   int64           `json:"warehouse_id" validate:"required,gt=0"`
	Type          TransactionType `json:"type" validate:"required,oneof=IN OUT TRANSFER ADJUSTMENT"`
	Quantity      float64         `json:"quantity" validate:"required,gt=0"`
	UnitCost      float64         `json:"unit_cost" validate:"gte=0"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	BatchNumber   string          `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	ActorID       int64           `json:"-"`
}

// Validate checks structural requirements before persistence.
func (r RecordTransactionRequest) Validate() error {
	if r.CompanyID == 0 || r.ProductID == 0 || r.WarehouseID == 0 {
		return errors.New("inventory: company, product and warehouse required")
	}
	if !r.Type.Valid() {
		return ErrUnknownTransactionType
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.UnitCost < 0 {
		return errors.New("inventory: unit cost must be >= 0")
	}
	return nil
}

// AdjustmentRequest corrects a stock level semantically.
type AdjustmentRequest struct {
	CompanyID   int64          `json:"company_id" validate:"required,gt=0"`
	ProductID   int64          `json:"product_id" validate:"required,gt=0"`
	WarehouseID int64          `json:"warehouse_id" validate:"required,gt=0"`
	Mode        AdjustmentMode `json:"mode" validate:"required,oneof=increase decrease set"`
	Quantity    float64        `json:"quantity" validate:"gte=0"`
	Reason      string         `json:"reason" validate:"required"`
	ActorID     int64          `json:"-"`
}

// Validate checks adjustment semantics. Set accepts zero, the other modes
// require a positive quantity.
func (r AdjustmentRequest) Validate() error {
	if r.CompanyID == 0 || r.ProductID == 0 || r.WarehouseID == 0 {
		return errors.New("inventory: company, product and warehouse required")
	}
	switch r.Mode {
	case AdjustmentSet:
		if r.Quantity < 0 {
			return ErrInvalidQuantity
		}
	case AdjustmentIncrease, AdjustmentDecrease:
		if r.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	default:
		return ErrUnknownAdjustmentMode
	}
	return nil
}

// TransferItem is one product line inside a transfer.
type TransferItem struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  float64 `json:"quantity" validate:"required,gt=0"`
}

// TransferRequest moves several products between two warehouses atomically.
type TransferRequest struct {
	CompanyID     int64          `json:"company_id" validate:"required,gt=0"`
	FromWarehouse int64          `json:"from_warehouse_id" validate:"required,gt=0"`
	ToWarehouse   int64          `json:"to_warehouse_id" validate:"required,gt=0"`
	Items         []TransferItem `json:"items" validate:"required,min=1,dive"`
	Notes         string         `json:"notes,omitempty"`
	ActorID       int64          `json:"-"`
}

// Validate checks transfer structure.
func (r TransferRequest) Validate() error {
	if r.CompanyID == 0 || r.FromWarehouse == 0 || r.ToWarehouse == 0 {
		return errors.New("inventory: company and both warehouses required")
	}
	if r.FromWarehouse == r.ToWarehouse {
		return ErrSameWarehouse
	}
	if len(r.Items) == 0 {
		return errors.New("inventory: transfer requires at least one item")
	}
	for _, item := range r.Items {
		if item.ProductID == 0 {
			return errors.New("inventory: transfer item missing product")
		}
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// TransferResult reports the outcome of a transfer. TransferID is the
// machine reference shared by every leg; TransferNumber is the sequential
// document number shown to users.
type TransferResult struct {
	TransferID     string             `json:"transfer_id"`
	TransferNumber string             `json:"transfer_number"`
	Transactions   []StockTransaction `json:"transactions"`
}

// LevelFilter narrows stock level listings.
type LevelFilter struct {
	CompanyID   int64
	ProductID   int64
	WarehouseID int64
}

// TransactionFilter narrows movement log listings.
type TransactionFilter struct {
	CompanyID   int64
	ProductID   int64
	WarehouseID int64
	Type        TransactionType
	From        time.Time
	To          time.Time
	Limit       int
	Offset      int
}
