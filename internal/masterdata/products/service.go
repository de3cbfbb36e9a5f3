package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service coordinates product master data.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a product. Blank SKUs get a generated "PRD" document
// number from the company sequence.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Product, error) {
	if req.CompanyID == 0 {
		return Product{}, errors.New("products: company required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return Product{}, errors.New("products: name required")
	}
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		seq, err := s.repo.NextSKUNumber(ctx, req.CompanyID)
		if err != nil {
			return Product{}, err
		}
		sku = fmt.Sprintf("PRD%05d", seq)
	}
	return s.repo.Create(ctx, Product{
		CompanyID:    req.CompanyID,
		SKU:          sku,
		Name:         req.Name,
		Category:     req.Category,
		UnitCost:     req.UnitCost,
		Price:        req.Price,
		ReorderLevel: req.ReorderLevel,
		IsActive:     true,
	})
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// List returns products for a company.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	if filter.CompanyID == 0 {
		return nil, errors.New("products: company required")
	}
	return s.repo.List(ctx, filter)
}

// Update mutates product fields. A nil IsActive keeps the current flag.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return Product{}, errors.New("products: name required")
	}
	current.Name = req.Name
	current.Category = req.Category
	current.UnitCost = req.UnitCost
	current.Price = req.Price
	current.ReorderLevel = req.ReorderLevel
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Product{}, err
	}
	return current, nil
}

// Deactivate retires a product without deleting it. Inventory history keeps
// referencing the row.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	current.IsActive = false
	return s.repo.Update(ctx, current)
}
