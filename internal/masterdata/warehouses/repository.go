package warehouses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// Repository persists warehouses in PostgreSQL.
type Repository interface {
	Create(ctx context.Context, warehouse Warehouse) (Warehouse, error)
	Get(ctx context.Context, id int64) (Warehouse, error)
	List(ctx context.Context, companyID int64) ([]Warehouse, error)
	Update(ctx context.Context, warehouse Warehouse) error
	NextCodeNumber(ctx context.Context, companyID int64) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, company_id, code, name, location, is_active, created_at, updated_at`

func scanWarehouse(row pgx.Row) (Warehouse, error) {
	var w Warehouse
	err := row.Scan(&w.ID, &w.CompanyID, &w.Code, &w.Name, &w.Location, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func (r *repository) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	created, err := scanWarehouse(r.db.QueryRow(ctx, `INSERT INTO warehouses (company_id, code, name, location, is_active)
VALUES ($1,$2,$3,$4,$5) RETURNING `+columns,
		warehouse.CompanyID, warehouse.Code, warehouse.Name, warehouse.Location, warehouse.IsActive))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Warehouse{}, ErrDuplicateCode
		}
		return Warehouse{}, err
	}
	return created, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Warehouse, error) {
	warehouse, err := scanWarehouse(r.db.QueryRow(ctx, `SELECT `+columns+` FROM warehouses WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Warehouse{}, ErrNotFound
		}
		return Warehouse{}, err
	}
	return warehouse, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Warehouse, error) {
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM warehouses WHERE company_id=$1 ORDER BY code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.CompanyID, &w.Code, &w.Name, &w.Location, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, warehouse Warehouse) error {
	cmd, err := r.db.Exec(ctx, `UPDATE warehouses SET name=$2, location=$3, is_active=$4, updated_at=NOW() WHERE id=$1`,
		warehouse.ID, warehouse.Name, warehouse.Location, warehouse.IsActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) NextCodeNumber(ctx context.Context, companyID int64) (int64, error) {
	return shared.NextDocumentNumber(ctx, r.db, companyID, shared.DocTypeWarehouse)
}
