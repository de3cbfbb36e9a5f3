package products

import (
	"fmt"
	"time"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// Product is a sellable or stockable item.
type Product struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Category     string    `json:"category,omitempty"`
	UnitCost     float64   `json:"unit_cost"`
	Price        float64   `json:"price"`
	ReorderLevel float64   `json:"reorder_level"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest carries fields to register a product. SKU is generated from
// the company document sequence when left blank.
type CreateRequest struct {
	CompanyID    int64   `json:"company_id" validate:"required,gt=0"`
	SKU          string  `json:"sku" validate:"omitempty,max=50"`
	Name         string  `json:"name" validate:"required,max=200"`
	Category     string  `json:"category,omitempty" validate:"omitempty,max=100"`
	UnitCost     float64 `json:"unit_cost" validate:"gte=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	ReorderLevel float64 `json:"reorder_level" validate:"gte=0"`
}

// UpdateRequest carries mutable product fields.
type UpdateRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Category     string  `json:"category,omitempty" validate:"omitempty,max=100"`
	UnitCost     float64 `json:"unit_cost" validate:"gte=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	ReorderLevel float64 `json:"reorder_level" validate:"gte=0"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// ListFilter narrows product listings.
type ListFilter struct {
	CompanyID  int64
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ErrNotFound indicates a missing product.
var ErrNotFound = fmt.Errorf("products: %w", shared.ErrNotFound)

// ErrDuplicateSKU indicates the SKU is already taken within the company.
var ErrDuplicateSKU = fmt.Errorf("products: sku already exists: %w", shared.ErrDuplicate)
