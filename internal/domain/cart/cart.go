// Package cart models the agent's draft cart: resolved line items, their
// ranked alternatives, and the substitution policy governing healing.
// Nested metadata stays strongly typed here; it becomes jsonb only at
// the storage boundary.
package cart

import (
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"

	"github.com/google/uuid"
)

// SubstitutionPolicy governs which replacements may be applied without a
// human in the loop.
type SubstitutionPolicy struct {
	AllowSubs                  bool `json:"allowSubs"`
	BrandLock                  bool `json:"brandLock"`
	OrganicOnly                bool `json:"organicOnly"`
	MaxDeltaPerItemCents       int  `json:"maxDeltaPerItemCents"`
	MaxCartIncreaseCents       int  `json:"maxCartIncreaseCents"`
	RequireReapprovalAboveCents int `json:"requireReapprovalAboveCents"`
}

// LineItem is one resolved ingredient with its chosen primary product and
// the matching service's ranked alternatives.
type LineItem struct {
	ID             uuid.UUID
	IngredientKey  string
	Ingredient     catalog.CanonicalIngredient
	Primary        catalog.Product
	Quantity       float64
	Unit           string
	Confidence     float64
	ChosenReason   string
	Policy         SubstitutionPolicy
	Alternatives   []catalog.Candidate
	LineTotalCents int
}

// RecalcTotal recomputes the line total from the primary price. Quantity
// is in purchase units, so fractional quantities round up to whole SKUs.
func (li *LineItem) RecalcTotal() {
	units := int(li.Quantity)
	if float64(units) < li.Quantity {
		units++
	}
	if units < 1 {
		units = 1
	}
	li.LineTotalCents = li.Primary.PriceCents * units
}

// ApplyReplacement swaps the primary product for a chosen candidate and
// recomputes the line total.
func (li *LineItem) ApplyReplacement(c catalog.Candidate, reason string) {
	li.Primary = c.Product
	li.Confidence = c.Confidence
	li.ChosenReason = reason
	li.RecalcTotal()
}

// Draft is the persisted cart-in-progress for one agent run.
type Draft struct {
	ID                uuid.UUID
	AgentRunID        *uuid.UUID
	RecipeID          string
	Servings          int
	PantryItemsRemoved []string
	Policy            SubstitutionPolicy
	QuoteSummary      *QuoteSummary
	CheckoutSessionID *string
	CartHash          string
	QuoteHash         string
	Lines             []LineItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type QuoteSummary struct {
	SubtotalCents int `json:"subtotalCents"`
	DiscountCents int `json:"discountCents,omitempty"`
	TotalCents    int `json:"totalCents"`
	ItemCount     int `json:"itemCount"`
}

// SubtotalCents sums the resolved line totals.
func (d *Draft) SubtotalCents() int {
	total := 0
	for i := range d.Lines {
		total += d.Lines[i].LineTotalCents
	}
	return total
}

// LineByIngredient returns the line for an ingredient key, or nil.
func (d *Draft) LineByIngredient(key string) *LineItem {
	for i := range d.Lines {
		if d.Lines[i].IngredientKey == key {
			return &d.Lines[i]
		}
	}
	return nil
}

// LineByProduct returns the line whose primary product matches id, or nil.
func (d *Draft) LineByProduct(productID string) *LineItem {
	for i := range d.Lines {
		if d.Lines[i].Primary.ID == productID {
			return &d.Lines[i]
		}
	}
	return nil
}
