package catalog

// Product is one catalog SKU. Prices are cents; InventoryQuantity is the
// merchant-reported stock level at match time, not a live count.
type Product struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Brand             string  `json:"brand,omitempty"`
	PriceCents        int     `json:"priceCents"`
	ImageURL          string  `json:"imageUrl,omitempty"`
	Organic           bool    `json:"organic,omitempty"`
	InventoryQuantity int     `json:"inventoryQuantity"`
	SizeValue         float64 `json:"sizeValue,omitempty"`
	SizeUnit          string  `json:"sizeUnit,omitempty"`
}

// Candidate is one ranked alternative supplied by the external matching
// service. The ranking is the collaborator's; the negotiator consumes
// candidates strictly in the given order.
type Candidate struct {
	Product        Product        `json:"product"`
	Rank           int            `json:"rank"`
	Score          float64        `json:"score"`
	Confidence     float64        `json:"confidence"`
	Reason         string         `json:"reason,omitempty"`
	ScoreBreakdown ScoreBreakdown `json:"scoreBreakdown,omitzero"`
}

// ScoreBreakdown explains how the matching service ranked a candidate.
// Opaque to the negotiator; persisted for audit.
type ScoreBreakdown struct {
	NameMatch  float64 `json:"nameMatch,omitempty"`
	SizeMatch  float64 `json:"sizeMatch,omitempty"`
	PriceMatch float64 `json:"priceMatch,omitempty"`
	BrandMatch float64 `json:"brandMatch,omitempty"`
}

// CanonicalIngredient is the normalized recipe ingredient a line item
// was resolved from.
type CanonicalIngredient struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}
