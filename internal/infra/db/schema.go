package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema bootstrap mirrors the catalog/transaction split of the original
// sandbox: catalog tables hold seedable reference data, the rest is
// transactional state owned by the ledger, the guard, and the healer.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id                 TEXT PRIMARY KEY,
		title              TEXT NOT NULL,
		brand              TEXT NOT NULL DEFAULT '',
		price_cents        INTEGER NOT NULL,
		image_url          TEXT,
		organic            BOOLEAN NOT NULL DEFAULT FALSE,
		inventory_quantity INTEGER NOT NULL DEFAULT 100,
		size_value         DOUBLE PRECISION,
		size_unit          TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		product_id TEXT PRIMARY KEY,
		quantity   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS pickup_reservations (
		id           UUID PRIMARY KEY,
		slot_id      TEXT NOT NULL,
		checkout_id  TEXT NOT NULL,
		order_id     TEXT,
		status       TEXT NOT NULL,
		reserved_at  TIMESTAMPTZ NOT NULL,
		expires_at   TIMESTAMPTZ NOT NULL,
		confirmed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pickup_reservations_slot_status
		ON pickup_reservations (slot_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_pickup_reservations_checkout
		ON pickup_reservations (checkout_id)`,
	`CREATE TABLE IF NOT EXISTS idempotency_records (
		key             TEXT PRIMARY KEY,
		request_hash    TEXT NOT NULL,
		response_status INTEGER NOT NULL,
		response_body   JSONB NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS checkouts (
		id     TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		data   JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id   TEXT PRIMARY KEY,
		data JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS request_logs (
		id          BIGSERIAL PRIMARY KEY,
		logged_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		method      TEXT NOT NULL,
		url         TEXT NOT NULL,
		checkout_id TEXT,
		payload     JSONB
	)`,
	`CREATE TABLE IF NOT EXISTS agent_runs (
		id             UUID PRIMARY KEY,
		user_id        TEXT,
		device_id      TEXT,
		recipe_id      TEXT,
		store_id       TEXT,
		state          TEXT NOT NULL,
		failure_code   TEXT,
		failure_detail TEXT,
		cart_draft_id  UUID,
		order_id       TEXT,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS agent_run_step_logs (
		id              UUID PRIMARY KEY,
		agent_run_id    UUID NOT NULL REFERENCES agent_runs (id),
		step_name       TEXT NOT NULL,
		request_id      TEXT,
		idempotency_key TEXT,
		started_at      TIMESTAMPTZ NOT NULL,
		finished_at     TIMESTAMPTZ,
		duration_ms     INTEGER,
		success         BOOLEAN NOT NULL DEFAULT FALSE,
		error_summary   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS cart_drafts (
		id                  UUID PRIMARY KEY,
		agent_run_id        UUID,
		recipe_id           TEXT,
		servings            INTEGER,
		pantry_items_removed JSONB,
		policy              JSONB,
		quote_summary       JSONB,
		checkout_session_id TEXT,
		cart_hash           TEXT NOT NULL DEFAULT '',
		quote_hash          TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cart_draft_line_items (
		id                   UUID PRIMARY KEY,
		cart_draft_id        UUID NOT NULL REFERENCES cart_drafts (id) ON DELETE CASCADE,
		ingredient_key       TEXT NOT NULL,
		canonical_ingredient JSONB,
		primary_sku          JSONB NOT NULL,
		quantity             DOUBLE PRECISION NOT NULL,
		unit                 TEXT,
		confidence           DOUBLE PRECISION,
		chosen_reason        TEXT,
		substitution_policy  JSONB,
		line_total_cents     INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cart_draft_line_items_draft
		ON cart_draft_line_items (cart_draft_id)`,
	`CREATE TABLE IF NOT EXISTS cart_draft_alternatives (
		id              UUID PRIMARY KEY,
		line_item_id    UUID NOT NULL REFERENCES cart_draft_line_items (id) ON DELETE CASCADE,
		rank            INTEGER NOT NULL,
		sku             JSONB NOT NULL,
		score_breakdown JSONB,
		reason          TEXT,
		confidence      DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS approvals (
		id                   UUID PRIMARY KEY,
		agent_run_id         UUID NOT NULL,
		cart_hash            TEXT NOT NULL,
		quote_hash           TEXT NOT NULL,
		approved_total_cents INTEGER,
		approved_at          TIMESTAMPTZ,
		signature            TEXT,
		status               TEXT NOT NULL,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates every table the sandbox needs. Statements are
// idempotent so repeated startup is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
