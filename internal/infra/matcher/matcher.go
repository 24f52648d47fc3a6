// Package matcher resolves free-text ingredients to ranked catalog
// candidates. Ranking is deliberately simple: token overlap against the
// title, cheaper first on ties. Downstream consumers treat the order as
// authoritative.
package matcher

import (
	"context"
	"sort"
	"strings"

	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
)

type CatalogMatcher struct {
	db db.DBTX
}

func NewCatalogMatcher(dbtx db.DBTX) *CatalogMatcher {
	return &CatalogMatcher{db: dbtx}
}

func (m *CatalogMatcher) ResolveCandidates(ctx context.Context, ingredient string, limit int) ([]catalog.Candidate, error) {
	if limit <= 0 {
		limit = 5
	}
	tokens := strings.Fields(strings.ToLower(ingredient))
	if len(tokens) == 0 {
		return nil, nil
	}

	rows, err := m.db.Query(ctx, `
		SELECT p.id, p.title, p.brand, p.price_cents, p.image_url, p.organic,
			COALESCE(i.quantity, p.inventory_quantity), p.size_value, p.size_unit
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE p.title ILIKE '%' || $1 || '%'
		ORDER BY p.price_cents`, tokens[len(tokens)-1])
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query candidates", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var (
			p         catalog.Product
			imageURL  *string
			sizeValue *float64
			sizeUnit  *string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Brand, &p.PriceCents, &imageURL, &p.Organic,
			&p.InventoryQuantity, &sizeValue, &sizeUnit); err != nil {
			return nil, infra.WrapRepoErr("failed to scan candidate", err)
		}
		if imageURL != nil {
			p.ImageURL = *imageURL
		}
		if sizeValue != nil {
			p.SizeValue = *sizeValue
		}
		if sizeUnit != nil {
			p.SizeUnit = *sizeUnit
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate candidates", err)
	}

	scored := make([]catalog.Candidate, 0, len(products))
	for _, p := range products {
		score := tokenOverlap(tokens, strings.ToLower(p.Title))
		scored = append(scored, catalog.Candidate{
			Product:    p,
			Score:      score,
			Confidence: score,
			Reason:     "title_match",
			ScoreBreakdown: catalog.ScoreBreakdown{
				NameMatch: score,
			},
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored, nil
}

func tokenOverlap(tokens []string, title string) float64 {
	hits := 0
	for _, t := range tokens {
		if strings.Contains(title, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}
