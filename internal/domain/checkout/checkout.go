// Package checkout models the merchant-side checkout session an agent
// drives to completion, and the order it settles into.
package checkout

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

type Session struct {
	ID            string     `json:"id"`
	Status        Status     `json:"status"`
	CartDraftID   uuid.UUID  `json:"cartDraftId"`
	AgentRunID    *uuid.UUID `json:"agentRunId,omitempty"`
	SubtotalCents int        `json:"subtotalCents"`
	TotalCents    int        `json:"totalCents"`
	Currency      string     `json:"currency"`
	SlotID        *string    `json:"slotId,omitempty"`
	OrderID       *string    `json:"orderId,omitempty"`
	Attempts      int        `json:"attempts"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func NewSession(cartDraftID uuid.UUID, agentRunID *uuid.UUID, subtotalCents int, now time.Time) *Session {
	return &Session{
		ID:            fmt.Sprintf("chk_%s", uuid.NewString()),
		Status:        StatusOpen,
		CartDraftID:   cartDraftID,
		AgentRunID:    agentRunID,
		SubtotalCents: subtotalCents,
		TotalCents:    subtotalCents,
		Currency:      "USD",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Order is the terminal record of a completed checkout.
type Order struct {
	ID         string     `json:"id"`
	CheckoutID string     `json:"checkoutId"`
	AgentRunID *uuid.UUID `json:"agentRunId,omitempty"`
	TotalCents int        `json:"totalCents"`
	SlotID     *string    `json:"slotId,omitempty"`
	PlacedAt   time.Time  `json:"placedAt"`
}

func NewOrder(s *Session, now time.Time) *Order {
	return &Order{
		ID:         fmt.Sprintf("order_%s", uuid.NewString()),
		CheckoutID: s.ID,
		AgentRunID: s.AgentRunID,
		TotalCents: s.TotalCents,
		SlotID:     s.SlotID,
		PlacedAt:   now,
	}
}
