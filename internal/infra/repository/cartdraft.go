package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/cart"
	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CartDraftRepository persists drafts with their line items and ranked
// alternatives. Line updates are wholesale: delete and reinsert under the
// draft, so a healed cart always matches what the healer computed.
type CartDraftRepository struct {
	db db.DBTX
}

func NewCartDraftRepository(dbtx db.DBTX) *CartDraftRepository {
	return &CartDraftRepository{db: dbtx}
}

func (r *CartDraftRepository) Create(ctx context.Context, tx db.DBTX, d *cart.Draft) error {
	policy, err := json.Marshal(d.Policy)
	if err != nil {
		return infra.WrapRepoErr("failed to marshal policy", err)
	}
	pantry, err := json.Marshal(d.PantryItemsRemoved)
	if err != nil {
		return infra.WrapRepoErr("failed to marshal pantry items", err)
	}
	var quote []byte
	if d.QuoteSummary != nil {
		if quote, err = json.Marshal(d.QuoteSummary); err != nil {
			return infra.WrapRepoErr("failed to marshal quote summary", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO cart_drafts (id, agent_run_id, recipe_id, servings, pantry_items_removed,
			policy, quote_summary, checkout_session_id, cart_hash, quote_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.AgentRunID, d.RecipeID, d.Servings, pantry,
		policy, quote, d.CheckoutSessionID, d.CartHash, d.QuoteHash, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to create cart draft", err)
	}

	return r.insertLines(ctx, tx, d.ID, d.Lines)
}

// Save updates the draft head row and replaces all lines.
func (r *CartDraftRepository) Save(ctx context.Context, tx db.DBTX, d *cart.Draft) error {
	var quote []byte
	var err error
	if d.QuoteSummary != nil {
		if quote, err = json.Marshal(d.QuoteSummary); err != nil {
			return infra.WrapRepoErr("failed to marshal quote summary", err)
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE cart_drafts
		SET agent_run_id = $2, quote_summary = $3, checkout_session_id = $4,
			cart_hash = $5, quote_hash = $6, updated_at = $7
		WHERE id = $1`,
		d.ID, d.AgentRunID, quote, d.CheckoutSessionID, d.CartHash, d.QuoteHash, time.Now().UTC())
	if err != nil {
		return infra.WrapRepoErr("failed to save cart draft", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("cart draft not found", nil, infra.KindNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_draft_line_items WHERE cart_draft_id = $1`, d.ID); err != nil {
		return infra.WrapRepoErr("failed to clear cart lines", err)
	}
	return r.insertLines(ctx, tx, d.ID, d.Lines)
}

func (r *CartDraftRepository) insertLines(ctx context.Context, tx db.DBTX, draftID uuid.UUID, lines []cart.LineItem) error {
	for i := range lines {
		li := &lines[i]
		if li.ID == uuid.Nil {
			li.ID = uuid.New()
		}
		ing, err := json.Marshal(li.Ingredient)
		if err != nil {
			return infra.WrapRepoErr("failed to marshal ingredient", err)
		}
		sku, err := json.Marshal(li.Primary)
		if err != nil {
			return infra.WrapRepoErr("failed to marshal primary sku", err)
		}
		policy, err := json.Marshal(li.Policy)
		if err != nil {
			return infra.WrapRepoErr("failed to marshal line policy", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO cart_draft_line_items (id, cart_draft_id, ingredient_key, canonical_ingredient,
				primary_sku, quantity, unit, confidence, chosen_reason, substitution_policy, line_total_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			li.ID, draftID, li.IngredientKey, ing,
			sku, li.Quantity, li.Unit, li.Confidence, li.ChosenReason, policy, li.LineTotalCents)
		if err != nil {
			return infra.WrapRepoErr("failed to insert cart line", err)
		}

		for _, alt := range li.Alternatives {
			altSKU, err := json.Marshal(alt.Product)
			if err != nil {
				return infra.WrapRepoErr("failed to marshal alternative sku", err)
			}
			breakdown, err := json.Marshal(alt.ScoreBreakdown)
			if err != nil {
				return infra.WrapRepoErr("failed to marshal score breakdown", err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO cart_draft_alternatives (id, line_item_id, rank, sku, score_breakdown, reason, confidence)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				uuid.New(), li.ID, alt.Rank, altSKU, breakdown, alt.Reason, alt.Confidence)
			if err != nil {
				return infra.WrapRepoErr("failed to insert alternative", err)
			}
		}
	}
	return nil
}

func (r *CartDraftRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*cart.Draft, error) {
	var (
		d      cart.Draft
		pantry []byte
		policy []byte
		quote  []byte
	)
	err := tx.QueryRow(ctx, `
		SELECT id, agent_run_id, recipe_id, servings, pantry_items_removed,
			policy, quote_summary, checkout_session_id, cart_hash, quote_hash, created_at, updated_at
		FROM cart_drafts
		WHERE id = $1`, id).
		Scan(&d.ID, &d.AgentRunID, &d.RecipeID, &d.Servings, &pantry,
			&policy, &quote, &d.CheckoutSessionID, &d.CartHash, &d.QuoteHash, &d.CreatedAt, &d.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("cart draft not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart draft", err)
	}

	if len(pantry) > 0 {
		if err := json.Unmarshal(pantry, &d.PantryItemsRemoved); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal pantry items", err)
		}
	}
	if len(policy) > 0 {
		if err := json.Unmarshal(policy, &d.Policy); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal policy", err)
		}
	}
	if len(quote) > 0 {
		d.QuoteSummary = &cart.QuoteSummary{}
		if err := json.Unmarshal(quote, d.QuoteSummary); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal quote summary", err)
		}
	}

	lines, err := r.loadLines(ctx, tx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Lines = lines
	return &d, nil
}

// FindByCheckoutSession resolves a merchant checkout session back to its
// draft, which is how the healer locates the cart mid-checkout.
func (r *CartDraftRepository) FindByCheckoutSession(ctx context.Context, tx db.DBTX, sessionID string) (*cart.Draft, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM cart_drafts WHERE checkout_session_id = $1`, sessionID).Scan(&id)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("cart draft not found for checkout session", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart draft by session", err)
	}
	return r.FindByID(ctx, tx, id)
}

func (r *CartDraftRepository) loadLines(ctx context.Context, tx db.DBTX, draftID uuid.UUID) ([]cart.LineItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, ingredient_key, canonical_ingredient, primary_sku, quantity, unit,
			confidence, chosen_reason, substitution_policy, line_total_cents
		FROM cart_draft_line_items
		WHERE cart_draft_id = $1
		ORDER BY ingredient_key`, draftID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart lines", err)
	}
	defer rows.Close()

	var lines []cart.LineItem
	for rows.Next() {
		var (
			li     cart.LineItem
			ing    []byte
			sku    []byte
			policy []byte
		)
		if err := rows.Scan(&li.ID, &li.IngredientKey, &ing, &sku, &li.Quantity, &li.Unit,
			&li.Confidence, &li.ChosenReason, &policy, &li.LineTotalCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		if len(ing) > 0 {
			if err := json.Unmarshal(ing, &li.Ingredient); err != nil {
				return nil, infra.WrapRepoErr("failed to unmarshal ingredient", err)
			}
		}
		if err := json.Unmarshal(sku, &li.Primary); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal primary sku", err)
		}
		if len(policy) > 0 {
			if err := json.Unmarshal(policy, &li.Policy); err != nil {
				return nil, infra.WrapRepoErr("failed to unmarshal line policy", err)
			}
		}
		lines = append(lines, li)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart lines", err)
	}

	for i := range lines {
		alts, err := r.loadAlternatives(ctx, tx, lines[i].ID)
		if err != nil {
			return nil, err
		}
		lines[i].Alternatives = alts
	}
	return lines, nil
}

func (r *CartDraftRepository) loadAlternatives(ctx context.Context, tx db.DBTX, lineID uuid.UUID) ([]catalog.Candidate, error) {
	rows, err := tx.Query(ctx, `
		SELECT rank, sku, score_breakdown, reason, confidence
		FROM cart_draft_alternatives
		WHERE line_item_id = $1
		ORDER BY rank`, lineID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load alternatives", err)
	}
	defer rows.Close()

	var alts []catalog.Candidate
	for rows.Next() {
		var (
			c         catalog.Candidate
			sku       []byte
			breakdown []byte
		)
		if err := rows.Scan(&c.Rank, &sku, &breakdown, &c.Reason, &c.Confidence); err != nil {
			return nil, infra.WrapRepoErr("failed to scan alternative", err)
		}
		if err := json.Unmarshal(sku, &c.Product); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal alternative sku", err)
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &c.ScoreBreakdown); err != nil {
				return nil, infra.WrapRepoErr("failed to unmarshal score breakdown", err)
			}
		}
		alts = append(alts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate alternatives", err)
	}
	return alts, nil
}
