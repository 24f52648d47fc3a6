package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type seedProduct struct {
	ID         string
	Title      string
	Brand      string
	PriceCents int
	Organic    bool
	Quantity   int
	SizeValue  float64
	SizeUnit   string
}

var seedProducts = []seedProduct{
	{"sku-chicken-breast", "Chicken Breast Fillets", "Harvest Farms", 899, false, 40, 1.0, "lb"},
	{"sku-chicken-thigh", "Chicken Thighs Boneless", "Harvest Farms", 649, false, 35, 1.0, "lb"},
	{"sku-chicken-breast-org", "Organic Chicken Breast", "Green Pasture", 1299, true, 18, 1.0, "lb"},
	{"sku-basmati-rice", "Basmati Rice", "Golden Grain", 549, false, 60, 2.0, "lb"},
	{"sku-jasmine-rice", "Jasmine Rice", "Golden Grain", 499, false, 55, 2.0, "lb"},
	{"sku-olive-oil", "Extra Virgin Olive Oil", "Cala Verde", 1099, false, 30, 500, "ml"},
	{"sku-olive-oil-org", "Organic Olive Oil", "Cala Verde", 1499, true, 12, 500, "ml"},
	{"sku-yellow-onion", "Yellow Onion", "", 89, false, 120, 1.0, "each"},
	{"sku-garlic", "Garlic Bulb", "", 79, false, 90, 1.0, "each"},
	{"sku-roma-tomato", "Roma Tomatoes", "", 249, false, 80, 1.0, "lb"},
	{"sku-tomato-org", "Organic Vine Tomatoes", "Sunfield", 399, true, 25, 1.0, "lb"},
	{"sku-heavy-cream", "Heavy Whipping Cream", "Meadow Dairy", 429, false, 28, 16, "oz"},
	{"sku-parmesan", "Parmesan Wedge", "Casa Bella", 799, false, 22, 8, "oz"},
	{"sku-penne", "Penne Pasta", "Molino", 199, false, 70, 16, "oz"},
	{"sku-spaghetti", "Spaghetti", "Molino", 189, false, 75, 16, "oz"},
	{"sku-baby-spinach", "Baby Spinach", "Sunfield", 349, false, 45, 5, "oz"},
	{"sku-baby-spinach-org", "Organic Baby Spinach", "Sunfield", 449, true, 20, 5, "oz"},
	{"sku-lemon", "Lemon", "", 69, false, 100, 1.0, "each"},
	{"sku-butter", "Salted Butter", "Meadow Dairy", 519, false, 32, 16, "oz"},
	{"sku-flour-ap", "All-Purpose Flour", "Golden Grain", 379, false, 48, 5.0, "lb"},
}

// SeedCatalog loads the default grocery catalog. Existing rows win so a
// scenario that mutated inventory keeps its state across restarts.
func SeedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	const insertProduct = `
		INSERT INTO products (id, title, brand, price_cents, organic, inventory_quantity, size_value, size_unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
	const insertInventory = `
		INSERT INTO inventory (product_id, quantity)
		VALUES ($1, $2)
		ON CONFLICT (product_id) DO NOTHING`

	for _, p := range seedProducts {
		if _, err := pool.Exec(ctx, insertProduct,
			p.ID, p.Title, p.Brand, p.PriceCents, p.Organic, p.Quantity, p.SizeValue, p.SizeUnit); err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, insertInventory, p.ID, p.Quantity); err != nil {
			return err
		}
	}
	return nil
}
