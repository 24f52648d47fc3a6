package repository

import (
	"context"

	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"

	"github.com/jackc/pgx/v5"
)

// InventoryRepository owns physical stock counts. Reservation is a single
// conditional decrement, so concurrent checkouts can never oversell.
type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(dbtx db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: dbtx}
}

// Quantity returns current stock. Unknown products are lazily seeded at
// the default level so ad-hoc SKUs behave like catalog ones.
func (r *InventoryRepository) Quantity(ctx context.Context, tx db.DBTX, productID string) (int, error) {
	var qty int
	err := tx.QueryRow(ctx, `SELECT quantity FROM inventory WHERE product_id = $1`, productID).Scan(&qty)
	if err == pgx.ErrNoRows {
		return r.seedDefault(ctx, tx, productID)
	}
	if err != nil {
		return 0, infra.WrapRepoErr("failed to read inventory", err)
	}
	return qty, nil
}

// Reserve atomically decrements stock if enough is on hand. Returns false
// without error when stock is insufficient.
func (r *InventoryRepository) Reserve(ctx context.Context, tx db.DBTX, productID string, units int) (bool, error) {
	if _, err := r.Quantity(ctx, tx, productID); err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE inventory
		SET quantity = quantity - $2
		WHERE product_id = $1 AND quantity >= $2`,
		productID, units)
	if err != nil {
		return false, infra.WrapRepoErr("failed to reserve stock", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Restock returns previously reserved units, used when a checkout attempt
// is rolled back after partial reservation.
func (r *InventoryRepository) Restock(ctx context.Context, tx db.DBTX, productID string, units int) error {
	_, err := tx.Exec(ctx, `
		UPDATE inventory SET quantity = quantity + $2 WHERE product_id = $1`,
		productID, units)
	if err != nil {
		return infra.WrapRepoErr("failed to restock", err)
	}
	return nil
}

// SetQuantity overwrites stock, used by scenario setup endpoints.
func (r *InventoryRepository) SetQuantity(ctx context.Context, tx db.DBTX, productID string, qty int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO inventory (product_id, quantity)
		VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		productID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to set inventory", err)
	}
	return nil
}

const defaultSeedQuantity = 100

func (r *InventoryRepository) seedDefault(ctx context.Context, tx db.DBTX, productID string) (int, error) {
	var qty int
	err := tx.QueryRow(ctx, `
		INSERT INTO inventory (product_id, quantity)
		VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE SET quantity = inventory.quantity
		RETURNING quantity`,
		productID, defaultSeedQuantity).Scan(&qty)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to seed inventory", err)
	}
	return qty, nil
}
