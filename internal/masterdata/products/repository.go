package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-erp/atlas-erp/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository interface {
	Create(ctx context.Context, product Product) (Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Update(ctx context.Context, product Product) error
	NextSKUNumber(ctx context.Context, companyID int64) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, company_id, sku, name, category, unit_cost, price, reorder_level, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Category, &p.UnitCost, &p.Price, &p.ReorderLevel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	created, err := scanProduct(r.db.QueryRow(ctx, `INSERT INTO products (company_id, sku, name, category, unit_cost, price, reorder_level, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING `+columns,
		product.CompanyID, product.SKU, product.Name, product.Category, product.UnitCost, product.Price, product.ReorderLevel, product.IsActive))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, ErrDuplicateSKU
		}
		return Product{}, err
	}
	return created, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	product, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return product, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + columns + ` FROM products WHERE company_id=$1`
	args := []any{filter.CompanyID}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(` AND (name ILIKE $%d OR sku ILIKE $%d)`, len(args), len(args))
	}
	if filter.ActiveOnly {
		query += ` AND is_active`
	}
	query += fmt.Sprintf(` ORDER BY sku LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Category, &p.UnitCost, &p.Price, &p.ReorderLevel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, product Product) error {
	cmd, err := r.db.Exec(ctx, `UPDATE products SET name=$2, category=$3, unit_cost=$4, price=$5, reorder_level=$6, is_active=$7, updated_at=NOW() WHERE id=$1`,
		product.ID, product.Name, product.Category, product.UnitCost, product.Price, product.ReorderLevel, product.IsActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) NextSKUNumber(ctx context.Context, companyID int64) (int64, error) {
	return shared.NextDocumentNumber(ctx, r.db, companyID, shared.DocTypeProduct)
}
