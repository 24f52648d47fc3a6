package queries

import (
	"time"

	"github.com/google/uuid"
)

// ProductView represents read-optimized catalog data with live stock
type ProductView struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Brand         string   `json:"brand,omitempty"`
	PriceCents    int      `json:"price_cents"`
	ImageURL      *string  `json:"image_url,omitempty"`
	Organic       bool     `json:"organic"`
	Available     int      `json:"available"`
	SizeValue     *float64 `json:"size_value,omitempty"`
	SizeUnit      *string  `json:"size_unit,omitempty"`
}

// SlotView is one derived pickup slot with remaining capacity
type SlotView struct {
	SlotID      string    `json:"slot_id"`
	StoreID     string    `json:"store_id"`
	Date        string    `json:"date"`
	Window      string    `json:"window"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity"`
	Available   int       `json:"available"`
	HoldMinutes int       `json:"hold_minutes"`
}

// AgentRunView represents read-optimized run state with step telemetry
type AgentRunView struct {
	ID            uuid.UUID     `json:"id"`
	RecipeID      *string       `json:"recipe_id,omitempty"`
	StoreID       *string       `json:"store_id,omitempty"`
	State         string        `json:"state"`
	FailureCode   *string       `json:"failure_code,omitempty"`
	FailureDetail *string       `json:"failure_detail,omitempty"`
	CartDraftID   *uuid.UUID    `json:"cart_draft_id,omitempty"`
	OrderID       *string       `json:"order_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Steps         []StepLogView `json:"steps,omitempty"`
}

type StepLogView struct {
	StepName     string     `json:"step_name"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	DurationMs   *int       `json:"duration_ms,omitempty"`
	Success      bool       `json:"success"`
	ErrorSummary *string    `json:"error_summary,omitempty"`
}

// OrderView represents a settled order
type OrderView struct {
	ID         string    `json:"id"`
	CheckoutID string    `json:"checkout_id"`
	TotalCents int       `json:"total_cents"`
	SlotID     *string   `json:"slot_id,omitempty"`
	PlacedAt   time.Time `json:"placed_at"`
}
