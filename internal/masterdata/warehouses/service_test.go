package warehouses

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	warehouses map[int64]*Warehouse
	seq        map[int64]int64
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{warehouses: make(map[int64]*Warehouse), seq: make(map[int64]int64)}
}

func (r *memoryRepo) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	for _, existing := range r.warehouses {
		if existing.CompanyID == warehouse.CompanyID && existing.Code == warehouse.Code {
			return Warehouse{}, ErrDuplicateCode
		}
	}
	r.nextID++
	warehouse.ID = r.nextID
	r.warehouses[warehouse.ID] = &warehouse
	return warehouse, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok {
		return Warehouse{}, ErrNotFound
	}
	return *w, nil
}

func (r *memoryRepo) List(ctx context.Context, companyID int64) ([]Warehouse, error) {
	var out []Warehouse
	for _, w := range r.warehouses {
		if w.CompanyID == companyID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *memoryRepo) Update(ctx context.Context, warehouse Warehouse) error {
	if _, ok := r.warehouses[warehouse.ID]; !ok {
		return ErrNotFound
	}
	r.warehouses[warehouse.ID] = &warehouse
	return nil
}

func (r *memoryRepo) NextCodeNumber(ctx context.Context, companyID int64) (int64, error) {
	r.seq[companyID]++
	return r.seq[companyID], nil
}

func TestCreateGeneratesCodeWhenBlank(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(context.Background(), CreateRequest{CompanyID: 1, Name: "Main"})
	require.NoError(t, err)
	require.Equal(t, "WH001", created.Code)
	require.True(t, created.IsActive)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateRequest{CompanyID: 1, Code: "MAIN", Name: "Main"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateRequest{CompanyID: 1, Code: "MAIN", Name: "Copy"})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestDeactivate(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(context.Background(), CreateRequest{CompanyID: 1, Name: "Main"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}
