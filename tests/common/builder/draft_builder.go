//go:build unit || e2e

package builder

import (
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/cart"
	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"

	"github.com/google/uuid"
)

// DraftBuilder assembles a cart draft with one resolved line by default.
type DraftBuilder struct {
	AgentRunID *uuid.UUID
	RecipeID   string
	Servings   int
	Policy     cart.SubstitutionPolicy
	Lines      []cart.LineItem
	CreatedAt  time.Time
}

func NewDraftBuilder() *DraftBuilder {
	runID := uuid.New()
	now := time.Now()
	return &DraftBuilder{
		AgentRunID: &runID,
		RecipeID:   "recipe-weeknight-stirfry",
		Servings:   2,
		Policy: cart.SubstitutionPolicy{
			AllowSubs:                   true,
			MaxDeltaPerItemCents:        300,
			MaxCartIncreaseCents:        1000,
			RequireReapprovalAboveCents: 500,
		},
		Lines: []cart.LineItem{
			NewLineItem("chicken_breast", NewProduct("sku-chicken-breast", 899), 1),
		},
		CreatedAt: now,
	}
}

func (b *DraftBuilder) WithPolicy(mutate func(*cart.SubstitutionPolicy)) *DraftBuilder {
	mutate(&b.Policy)
	return b
}

func (b *DraftBuilder) WithLines(lines ...cart.LineItem) *DraftBuilder {
	b.Lines = lines
	return b
}

func (b *DraftBuilder) Build() *cart.Draft {
	lines := make([]cart.LineItem, len(b.Lines))
	copy(lines, b.Lines)
	for i := range lines {
		lines[i].Policy = b.Policy
		lines[i].RecalcTotal()
	}
	subtotal := 0
	for i := range lines {
		subtotal += lines[i].LineTotalCents
	}
	return &cart.Draft{
		ID:         uuid.New(),
		AgentRunID: b.AgentRunID,
		RecipeID:   b.RecipeID,
		Servings:   b.Servings,
		Policy:     b.Policy,
		QuoteSummary: &cart.QuoteSummary{
			SubtotalCents: subtotal,
			TotalCents:    subtotal,
			ItemCount:     len(lines),
		},
		Lines:     lines,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.CreatedAt,
	}
}

// NewProduct returns an in-stock catalog product with sane defaults.
func NewProduct(id string, priceCents int) catalog.Product {
	return catalog.Product{
		ID:                id,
		Title:             id,
		Brand:             "FreshMart",
		PriceCents:        priceCents,
		InventoryQuantity: 50,
	}
}

// NewCandidate wraps a product as a ranked matching candidate.
func NewCandidate(p catalog.Product, rank int) catalog.Candidate {
	return catalog.Candidate{
		Product:        p,
		Rank:           rank,
		Score:          1.0 - float64(rank-1)*0.1,
		Confidence:     0.9,
		Reason:         "title_match",
		ScoreBreakdown: catalog.ScoreBreakdown{NameMatch: 1.0 - float64(rank-1)*0.1},
	}
}

// NewLineItem builds a resolved line with its total already computed.
func NewLineItem(key string, primary catalog.Product, quantity float64) cart.LineItem {
	li := cart.LineItem{
		ID:            uuid.New(),
		IngredientKey: key,
		Ingredient: catalog.CanonicalIngredient{
			Key:      key,
			Name:     key,
			Quantity: quantity,
		},
		Primary:  primary,
		Quantity: quantity,
		Unit:     "each",
	}
	li.RecalcTotal()
	return li
}
