package queries

import (
	"context"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"

	"github.com/google/uuid"
)

// CartDraftDetailView is the read model for one draft with its resolved
// lines and ranked alternatives.
type CartDraftDetailView struct {
	ID                uuid.UUID       `json:"id"`
	AgentRunID        *uuid.UUID      `json:"agent_run_id,omitempty"`
	RecipeID          string          `json:"recipe_id,omitempty"`
	Servings          int             `json:"servings"`
	SubtotalCents     int             `json:"subtotal_cents"`
	CartHash          string          `json:"cart_hash"`
	QuoteHash         string          `json:"quote_hash"`
	CheckoutSessionID *string         `json:"checkout_session_id,omitempty"`
	Lines             []DraftLineView `json:"lines"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type DraftLineView struct {
	IngredientKey  string              `json:"ingredient_key"`
	Primary        catalog.Product     `json:"primary"`
	Quantity       float64             `json:"quantity"`
	Unit           string              `json:"unit,omitempty"`
	Confidence     float64             `json:"confidence"`
	ChosenReason   string              `json:"chosen_reason,omitempty"`
	LineTotalCents int                 `json:"line_total_cents"`
	Alternatives   []catalog.Candidate `json:"alternatives,omitempty"`
}

type CartDraftViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CartDraftDetailView, error)
}

type CartDraftQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*CartDraftDetailView, error)
}

type cartDraftQueriesImpl struct {
	drafts CartDraftViewRepo
}

func NewCartDraftQueries(drafts CartDraftViewRepo) CartDraftQueries {
	return &cartDraftQueriesImpl{drafts: drafts}
}

func (q *cartDraftQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*CartDraftDetailView, error) {
	return q.drafts.FindByID(ctx, id)
}
