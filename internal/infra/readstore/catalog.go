package readstore

import (
	"context"

	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
)

type CatalogReadStore struct {
	db db.DBTX
}

func NewCatalogReadStore(dbtx db.DBTX) *CatalogReadStore {
	return &CatalogReadStore{db: dbtx}
}

const productColumns = `
	p.id, p.title, p.brand, p.price_cents, p.image_url, p.organic,
	COALESCE(i.quantity, p.inventory_quantity) AS available,
	p.size_value, p.size_unit`

func (r *CatalogReadStore) Search(ctx context.Context, search string, limit int) ([]*queries.ProductView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE $1 = '' OR p.title ILIKE '%' || $1 || '%' OR p.brand ILIKE '%' || $1 || '%'
		ORDER BY p.title
		LIMIT $2`, search, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to search products", err)
	}
	defer rows.Close()

	var views []*queries.ProductView
	for rows.Next() {
		v, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate products", err)
	}
	return views, nil
}

func (r *CatalogReadStore) FindByID(ctx context.Context, id string) (*queries.ProductView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE p.id = $1`, id)
	v, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func scanProduct(row pgx.Row) (*queries.ProductView, error) {
	var v queries.ProductView
	err := row.Scan(&v.ID, &v.Title, &v.Brand, &v.PriceCents, &v.ImageURL, &v.Organic,
		&v.Available, &v.SizeValue, &v.SizeUnit)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan product", err)
	}
	return &v, nil
}
