// Package agentrun tracks one autonomous checkout attempt end to end:
// the run's state machine, its per-step telemetry, and the append-only
// approval audit trail.
package agentrun

import (
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateDiscoverMerchant   State = "DISCOVER_MERCHANT"
	StateCheckCapabilities  State = "CHECK_CAPABILITIES"
	StateResolveIngredients State = "RESOLVE_INGREDIENTS"
	StateBuildCartDraft     State = "BUILD_CART_DRAFT"
	StateQuoteCart          State = "QUOTE_CART"
	StateAwaitingApproval   State = "AWAITING_APPROVAL"
	StateCheckout           State = "CHECKOUT"
	StateOrderCreated       State = "ORDER_CREATED"
	StateOrderTracking      State = "ORDER_TRACKING"
	StateFailed             State = "FAILED"
)

func (s State) IsValid() bool {
	switch s {
	case StateDiscoverMerchant, StateCheckCapabilities, StateResolveIngredients,
		StateBuildCartDraft, StateQuoteCart, StateAwaitingApproval,
		StateCheckout, StateOrderCreated, StateOrderTracking, StateFailed:
		return true
	default:
		return false
	}
}

type Run struct {
	ID            uuid.UUID
	UserID        *string
	DeviceID      *string
	RecipeID      *string
	StoreID       *string
	State         State
	FailureCode   *string
	FailureDetail *string
	CartDraftID   *uuid.UUID
	OrderID       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type StepLog struct {
	ID             uuid.UUID
	AgentRunID     uuid.UUID
	StepName       string
	RequestID      *string
	IdempotencyKey *string
	StartedAt      time.Time
	FinishedAt     *time.Time
	DurationMs     *int
	Success        bool
	ErrorSummary   *string
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval is one append-only audit entry. A new approval is required
// whenever the quoted total moves past the policy's re-approval bound
// relative to the latest approved total.
type Approval struct {
	ID                 uuid.UUID
	AgentRunID         uuid.UUID
	CartHash           string
	QuoteHash          string
	ApprovedTotalCents *int
	ApprovedAt         *time.Time
	Signature          *string
	Status             ApprovalStatus
}

// CoversTotal reports whether this approval still covers a quote that
// now totals totalCents, given the policy's re-approval threshold.
func (a Approval) CoversTotal(totalCents, reapprovalAboveCents int) bool {
	if a.Status != ApprovalApproved || a.ApprovedTotalCents == nil {
		return false
	}
	return totalCents-*a.ApprovedTotalCents <= reapprovalAboveCents
}
