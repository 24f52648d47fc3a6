package readstore

import (
	"context"
	"encoding/json"

	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CartDraftReadStore struct {
	db db.DBTX
}

func NewCartDraftReadStore(dbtx db.DBTX) *CartDraftReadStore {
	return &CartDraftReadStore{db: dbtx}
}

func (r *CartDraftReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.CartDraftDetailView, error) {
	var v queries.CartDraftDetailView
	err := r.db.QueryRow(ctx, `
		SELECT id, agent_run_id, recipe_id, servings, checkout_session_id,
			cart_hash, quote_hash, created_at, updated_at
		FROM cart_drafts
		WHERE id = $1`, id).
		Scan(&v.ID, &v.AgentRunID, &v.RecipeID, &v.Servings, &v.CheckoutSessionID,
			&v.CartHash, &v.QuoteHash, &v.CreatedAt, &v.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("cart draft not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart draft", err)
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Lines = lines
	for _, li := range lines {
		v.SubtotalCents += li.LineTotalCents
	}
	return &v, nil
}

func (r *CartDraftReadStore) loadLines(ctx context.Context, draftID uuid.UUID) ([]queries.DraftLineView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, ingredient_key, primary_sku, quantity, unit,
			confidence, chosen_reason, line_total_cents
		FROM cart_draft_line_items
		WHERE cart_draft_id = $1
		ORDER BY ingredient_key`, draftID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart lines", err)
	}
	defer rows.Close()

	var (
		lines   []queries.DraftLineView
		lineIDs []uuid.UUID
	)
	for rows.Next() {
		var (
			lineID uuid.UUID
			li     queries.DraftLineView
			sku    []byte
		)
		if err := rows.Scan(&lineID, &li.IngredientKey, &sku, &li.Quantity, &li.Unit,
			&li.Confidence, &li.ChosenReason, &li.LineTotalCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		if err := json.Unmarshal(sku, &li.Primary); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal primary sku", err)
		}
		lines = append(lines, li)
		lineIDs = append(lineIDs, lineID)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart lines", err)
	}

	for i, lineID := range lineIDs {
		alts, err := r.loadAlternatives(ctx, lineID)
		if err != nil {
			return nil, err
		}
		lines[i].Alternatives = alts
	}
	return lines, nil
}

func (r *CartDraftReadStore) loadAlternatives(ctx context.Context, lineID uuid.UUID) ([]catalog.Candidate, error) {
	rows, err := r.db.Query(ctx, `
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
			alt       catalog.Candidate
			sku       []byte
			breakdown []byte
		)
		if err := rows.Scan(&alt.Rank, &sku, &breakdown, &alt.Reason, &alt.Confidence); err != nil {
			return nil, infra.WrapRepoErr("failed to scan alternative", err)
		}
		if err := json.Unmarshal(sku, &alt.Product); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal alternative sku", err)
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &alt.ScoreBreakdown); err != nil {
				return nil, infra.WrapRepoErr("failed to unmarshal score breakdown", err)
			}
		}
		alts = append(alts, alt)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate alternatives", err)
	}
	return alts, nil
}
