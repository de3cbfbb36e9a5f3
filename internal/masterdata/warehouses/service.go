package warehouses

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service coordinates warehouse master data.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a warehouse. Blank codes get a generated "WH" document
// number from the company sequence.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Warehouse, error) {
	if req.CompanyID == 0 {
		return Warehouse{}, errors.New("warehouses: company required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return Warehouse{}, errors.New("warehouses: name required")
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		seq, err := s.repo.NextCodeNumber(ctx, req.CompanyID)
		if err != nil {
			return Warehouse{}, err
		}
		code = fmt.Sprintf("WH%03d", seq)
	}
	return s.repo.Create(ctx, Warehouse{
		CompanyID: req.CompanyID,
		Code:      code,
		Name:      req.Name,
		Location:  req.Location,
		IsActive:  true,
	})
}

// Get fetches one warehouse.
func (s *Service) Get(ctx context.Context, id int64) (Warehouse, error) {
	if id <= 0 {
		return Warehouse{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// List returns warehouses for a company ordered by code.
func (s *Service) List(ctx context.Context, companyID int64) ([]Warehouse, error) {
	if companyID == 0 {
		return nil, errors.New("warehouses: company required")
	}
	return s.repo.List(ctx, companyID)
}

// Update mutates warehouse fields. A nil IsActive keeps the current flag.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Warehouse, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Warehouse{}, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return Warehouse{}, errors.New("warehouses: name required")
	}
	current.Name = req.Name
	current.Location = req.Location
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Warehouse{}, err
	}
	return current, nil
}

// Deactivate retires a warehouse without deleting it.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	current.IsActive = false
	return s.repo.Update(ctx, current)
}
