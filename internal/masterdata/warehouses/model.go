package warehouses

import (
	"fmt"
	"time"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// Warehouse is a physical stock location.
type Warehouse struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest carries fields to register a warehouse. Code is generated
// from the company document sequence when left blank.
type CreateRequest struct {
	CompanyID int64  `json:"company_id" validate:"required,gt=0"`
	Code      string `json:"code" validate:"omitempty,max=20"`
	Name      string `json:"name" validate:"required,max=200"`
	Location  string `json:"location,omitempty" validate:"omitempty,max=300"`
}

// UpdateRequest carries mutable warehouse fields.
type UpdateRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location,omitempty" validate:"omitempty,max=300"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// ErrNotFound indicates a missing warehouse.
var ErrNotFound = fmt.Errorf("warehouses: %w", shared.ErrNotFound)

// ErrDuplicateCode indicates the code is already taken within the company.
var ErrDuplicateCode = fmt.Errorf("warehouses: code already exists: %w", shared.ErrDuplicate)
