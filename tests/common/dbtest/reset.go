//go:build e2e

// Package dbtest resets transactional state between e2e subtests.
// Catalog tables are reference data seeded once and left untouched.
package dbtest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var transactionalTables = []string{
	"pickup_reservations",
	"idempotency_records",
	"checkouts",
	"orders",
	"request_logs",
	"agent_run_step_logs",
	"cart_draft_alternatives",
	"cart_draft_line_items",
	"cart_drafts",
	"approvals",
	"agent_runs",
}

// ResetDB truncates every transactional table so each subtest starts
// from seeded catalog data only.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range transactionalTables {
		if _, err := pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return err
		}
	}

	// Stock reservations from completed checkouts decrement live
	// inventory; restore it to the catalog baseline.
	_, err := pool.Exec(ctx, `
		UPDATE inventory i
		SET quantity = p.inventory_quantity
		FROM products p
		WHERE p.id = i.product_id`)
	return err
}

// BackdateReservation pushes a reservation's hold window into the past
// so the lazy expiry sweep sees it as lapsed.
func BackdateReservation(pool *pgxpool.Pool, reservationID string, by time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := pool.Exec(ctx,
		"UPDATE pickup_reservations SET expires_at = now() - make_interval(secs => $2) WHERE id = $1",
		reservationID, by.Seconds())
	return err
}
