// Package merchant is the simulated merchant boundary. Every answer it
// gives is a pure function of the request seed plus real inventory, so a
// retried run negotiates against the same world it failed in.
package merchant

import (
	"context"

	"github.com/Fresh-Industries/pantrypal/internal/domain/simulation"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/infra/repository"
)

type Gateway struct {
	inventory *repository.InventoryRepository
}

func NewGateway(inventory *repository.InventoryRepository) *Gateway {
	return &Gateway{inventory: inventory}
}

func (g *Gateway) QuotePrice(seed string, stage simulation.Stage, productID string, baseCents int, cfg simulation.Config) int {
	return simulation.PriceDrift(seed, stage, productID, baseCents, cfg.Drift)
}

// ReserveStock decrements real stock unless the simulator declares the
// product unavailable first. Returns false on either failure mode.
func (g *Gateway) ReserveStock(ctx context.Context, tx db.DBTX, seed string, stage simulation.Stage, productID string, units int, cfg simulation.Config) (bool, error) {
	available, err := g.inventory.Quantity(ctx, tx, productID)
	if err != nil {
		return false, err
	}
	if simulation.OutOfStock(seed, stage, productID, available, cfg) {
		return false, nil
	}
	return g.inventory.Reserve(ctx, tx, productID, units)
}

// InStock answers whether the merchant could fill the product right
// now, without touching stock. Used to scope a rejection to the
// replacements the merchant will accept.
func (g *Gateway) InStock(ctx context.Context, tx db.DBTX, seed string, stage simulation.Stage, productID string, cfg simulation.Config) (bool, error) {
	available, err := g.inventory.Quantity(ctx, tx, productID)
	if err != nil {
		return false, err
	}
	return !simulation.OutOfStock(seed, stage, productID, available, cfg), nil
}

func (g *Gateway) RestockItems(ctx context.Context, tx db.DBTX, items map[string]int) error {
	for productID, units := range items {
		if err := g.inventory.Restock(ctx, tx, productID, units); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) SlotExpires(seed, slotID string, cfg simulation.Config) bool {
	return simulation.SlotExpires(seed, slotID, cfg.SlotExpiryRate)
}
