package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products map[int64]*Product
	seq      map[int64]int64
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]*Product), seq: make(map[int64]int64)}
}

func (r *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	for _, existing := range r.products {
		if existing.CompanyID == product.CompanyID && existing.SKU == product.SKU {
			return Product{}, ErrDuplicateSKU
		}
	}
	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = &product
	return product, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if p.CompanyID != filter.CompanyID {
			continue
		}
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryRepo) Update(ctx context.Context, product Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return ErrNotFound
	}
	r.products[product.ID] = &product
	return nil
}

func (r *memoryRepo) NextSKUNumber(ctx context.Context, companyID int64) (int64, error) {
	r.seq[companyID]++
	return r.seq[companyID], nil
}

func TestCreateGeneratesSKUWhenBlank(t *testing.T) {
	svc := NewService(newMemoryRepo())

	first, err := svc.Create(context.Background(), CreateRequest{CompanyID: 1, Name: "Widget"})
	require.NoError(t, err)
	require.Equal(t, "PRD00001", first.SKU)
	require.True(t, first.IsActive)

	second, err := svc.Create(context.Background(), CreateRequest{CompanyID: 1, Name: "Gadget"})
	require.NoError(t, err)
	require.Equal(t, "PRD00002", second.SKU)
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateRequest{CompanyID: 1, SKU: "W-1", Name: "Widget"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateRequest{CompanyID: 1, SKU: "W-1", Name: "Copy"})
	require.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestDeactivateKeepsRow(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), CreateRequest{CompanyID: 1, Name: "Widget"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	active, err := svc.List(context.Background(), ListFilter{CompanyID: 1, ActiveOnly: true})
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestUpdatePreservesActiveFlagWhenOmitted(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(context.Background(), CreateRequest{CompanyID: 1, Name: "Widget", UnitCost: 2})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{Name: "Widget v2", UnitCost: 3})
	require.NoError(t, err)
	require.Equal(t, "Widget v2", updated.Name)
	require.InDelta(t, 3, updated.UnitCost, 0.0001)
	require.True(t, updated.IsActive)
}
