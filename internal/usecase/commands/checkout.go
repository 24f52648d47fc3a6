package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/agentrun"
	"github.com/Fresh-Industries/pantrypal/internal/domain/cart"
	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"
	"github.com/Fresh-Industries/pantrypal/internal/domain/checkout"
	"github.com/Fresh-Industries/pantrypal/internal/domain/pickup"
	"github.com/Fresh-Industries/pantrypal/internal/domain/replacement"
	"github.com/Fresh-Industries/pantrypal/internal/domain/simulation"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/clock"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/errs"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/metrics"

	"github.com/google/uuid"
)

// Machine-readable error codes agents dispatch on.
const (
	CodeOutOfStock          = "OUT_OF_STOCK"
	CodePickupSlotFull      = "PICKUP_SLOT_FULL"
	CodePickupSlotExpired   = "PICKUP_SLOT_EXPIRED"
	CodePickupSlotRequired  = "PICKUP_SLOT_REQUIRED"
	CodePickupSlotNotFound  = "PICKUP_SLOT_NOT_FOUND"
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	CodeApprovalRequired    = "APPROVAL_REQUIRED"
)

// ErrorBody is the failure envelope guarded operations record and replay.
// Alternatives, when present, names the replacement ids the merchant
// will accept for the rejected item.
type ErrorBody struct {
	Detail       string              `json:"detail"`
	Code         string              `json:"code"`
	ItemID       string              `json:"itemId,omitempty"`
	Alternatives []catalog.Candidate `json:"alternatives,omitempty"`
	Negotiation  *replacement.Plan   `json:"negotiation,omitempty"`
	ApprovalID   string              `json:"approvalId,omitempty"`
	CartDraft    *CartDraftView      `json:"cartDraft,omitempty"`
}

var ErrRunHasNoDraft = errs.New("agent run has no cart draft")

type StartCheckoutRequest struct {
	Simulation SimulationInput `json:"simulation,omitzero"`
}

type CheckoutSessionView struct {
	CheckoutID    string  `json:"checkoutId"`
	Status        string  `json:"status"`
	CartDraftID   string  `json:"cartDraftId"`
	SubtotalCents int     `json:"subtotalCents"`
	TotalCents    int     `json:"totalCents"`
	Currency      string  `json:"currency"`
	SlotID        *string `json:"slotId,omitempty"`
}

type CompleteCheckoutRequest struct {
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Simulation    SimulationInput `json:"simulation,omitzero"`
}

type CompleteCheckoutResult struct {
	OrderID    string             `json:"orderId"`
	CheckoutID string             `json:"checkoutId"`
	Status     string             `json:"status"`
	TotalCents int                `json:"totalCents"`
	SlotID     *string            `json:"slotId,omitempty"`
	Attempts   int                `json:"attempts"`
	Healed     []replacement.Plan `json:"healed,omitempty"`
}

type CheckoutCommands interface {
	StartCheckout(ctx context.Context, runID uuid.UUID, req StartCheckoutRequest, idempotencyKey string) (*GuardResult, error)
	Complete(ctx context.Context, checkoutID string, req CompleteCheckoutRequest, idempotencyKey string) (*GuardResult, error)
}

type checkoutCommandsImpl struct {
	checkouts    CheckoutRepo
	drafts       CartDraftRepo
	runs         AgentRunRepo
	approvals    ApprovalRepo
	reservations PickupReservationRepo
	merchant     MerchantGateway
	guard        *IdempotencyGuard
	pickupCfg    config.PickupConfig
	simCfg       config.SimulationConfig
	maxAttempts  int
	clock        clock.Clock
}

func NewCheckoutCommands(
	checkouts CheckoutRepo,
	drafts CartDraftRepo,
	runs AgentRunRepo,
	approvals ApprovalRepo,
	reservations PickupReservationRepo,
	merchant MerchantGateway,
	guard *IdempotencyGuard,
	pickupCfg config.PickupConfig,
	simCfg config.SimulationConfig,
	healerCfg config.HealerConfig,
	clk clock.Clock,
) CheckoutCommands {
	maxAttempts := healerCfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &checkoutCommandsImpl{
		checkouts:    checkouts,
		drafts:       drafts,
		runs:         runs,
		approvals:    approvals,
		reservations: reservations,
		merchant:     merchant,
		guard:        guard,
		pickupCfg:    pickupCfg,
		simCfg:       simCfg,
		maxAttempts:  maxAttempts,
		clock:        clk,
	}
}

// StartCheckout opens a merchant checkout session for the run's draft.
func (h *checkoutCommandsImpl) StartCheckout(ctx context.Context, runID uuid.UUID, req StartCheckoutRequest, idempotencyKey string) (*GuardResult, error) {
	return h.guard.Execute(ctx, idempotencyKey, req, func(ctx context.Context, tx db.DBTX) (int, any, error) {
		run, err := h.runs.FindByID(ctx, tx, runID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return 0, nil, ErrRunNotFound
			}
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if run.CartDraftID == nil {
			return 0, nil, ErrRunHasNoDraft
		}

		draft, err := h.drafts.FindByID(ctx, tx, *run.CartDraftID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return 0, nil, ErrDraftNotFound
			}
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		now := h.clock.Now()
		session := checkout.NewSession(draft.ID, &run.ID, draft.SubtotalCents(), now)
		if err := h.checkouts.CreateSession(ctx, tx, session); err != nil {
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		draft.CheckoutSessionID = &session.ID
		if err := h.drafts.Save(ctx, tx, draft); err != nil {
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		run.State = agentrun.StateCheckout
		run.UpdatedAt = now
		if err := h.runs.Save(ctx, tx, run); err != nil {
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		return http.StatusCreated, sessionToView(session), nil
	})
}

// Complete drives the bounded healing loop: reserve stock for every line,
// negotiate a replacement when the merchant rejects one, persist the
// healed cart, and retry. State changes from failed outcomes commit too,
// so a FAILED run and its recorded error response survive the rollback
// of nothing.
func (h *checkoutCommandsImpl) Complete(ctx context.Context, checkoutID string, req CompleteCheckoutRequest, idempotencyKey string) (*GuardResult, error) {
	seed := req.Simulation.Seed
	simCfg := req.Simulation.Resolve(h.simCfg)

	return h.guard.Execute(ctx, idempotencyKey, req, func(ctx context.Context, tx db.DBTX) (int, any, error) {
		session, err := h.checkouts.FindSession(ctx, tx, checkoutID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return 0, nil, ErrCheckoutNotFound
			}
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if session.Status != checkout.StatusOpen {
			return 0, nil, ErrCheckoutClosed
		}

		draft, err := h.drafts.FindByID(ctx, tx, session.CartDraftID)
		if err != nil {
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		var run *agentrun.Run
		if draft.AgentRunID != nil {
			run, err = h.runs.FindByID(ctx, tx, *draft.AgentRunID)
			if err != nil && !infra.IsKind(err, infra.KindNotFound) {
				return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}
		if run != nil && run.State == agentrun.StateAwaitingApproval {
			return http.StatusConflict, &ErrorBody{
				Detail: "checkout is blocked on a pending approval",
				Code:   CodeApprovalRequired,
			}, nil
		}

		var (
			healed       []replacement.Plan
			lastRejected *cart.LineItem
		)

		for attempt := 1; attempt <= h.maxAttempts; attempt++ {
			metrics.HealerAttemptsTotal.Inc()
			session.Attempts++

			outcome, err := h.attemptComplete(ctx, tx, session, draft, run, seed, simCfg)
			if err != nil {
				return 0, nil, err
			}

			switch {
			case outcome.result != nil:
				outcome.result.Attempts = session.Attempts
				outcome.result.Healed = healed
				return http.StatusCreated, outcome.result, nil

			case outcome.healPlan != nil:
				healed = append(healed, *outcome.healPlan)
				lastRejected = outcome.rejected
				continue

			default:
				// Non-healable failure: commit state, record the error.
				if run != nil && outcome.failRun {
					h.failRun(run, outcome.failure.Code, outcome.failure.Detail)
					run.UpdatedAt = h.clock.Now()
					if err := h.runs.Save(ctx, tx, run); err != nil {
						return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
					}
				}
				if err := h.checkouts.SaveSession(ctx, tx, session); err != nil {
					return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
				}
				return outcome.failStatus, outcome.failure, nil
			}
		}

		// Healing exhausted. The last persisted draft rides along and the
		// session stays open, so the agent can adjust policy or wait for
		// stock and complete again with a fresh key.
		metrics.HealerExhaustedTotal.Inc()
		failure := &ErrorBody{
			Detail:    fmt.Sprintf("checkout healing exhausted after %d attempts", h.maxAttempts),
			Code:      CodeOutOfStock,
			CartDraft: draftToView(draft, nil),
		}
		if lastRejected != nil {
			failure.ItemID = lastRejected.Primary.ID
			failure.Alternatives = boundCandidates(lastRejected.Alternatives, simCfg.MaxFallbacks)
		}
		session.UpdatedAt = h.clock.Now()
		if err := h.checkouts.SaveSession(ctx, tx, session); err != nil {
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return http.StatusConflict, failure, nil
	})
}

// attemptOutcome is one pass through the healing loop. Exactly one of
// result, healPlan, or failure is set. rejected keeps the line as the
// merchant saw it before a heal was applied.
type attemptOutcome struct {
	result     *CompleteCheckoutResult
	healPlan   *replacement.Plan
	rejected   *cart.LineItem
	failure    *ErrorBody
	failStatus int
	failRun    bool
}

func (h *checkoutCommandsImpl) attemptComplete(
	ctx context.Context,
	tx db.DBTX,
	session *checkout.Session,
	draft *cart.Draft,
	run *agentrun.Run,
	seed string,
	simCfg simulation.Config,
) (*attemptOutcome, error) {
	now := h.clock.Now()
	reserved := make(map[string]int)

	restock := func() error {
		return h.merchant.RestockItems(ctx, tx, reserved)
	}

	// Pass 1: reserve physical stock for every line at pick stage.
	for i := range draft.Lines {
		line := &draft.Lines[i]
		units := wholeUnits(line.Quantity)
		ok, err := h.merchant.ReserveStock(ctx, tx, seed, simulation.StagePick, line.Primary.ID, units, simCfg)
		if err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !ok {
			metrics.SimulatedOOSTotal.WithLabelValues(string(simulation.StagePick)).Inc()
			if restockErr := restock(); restockErr != nil {
				return nil, errs.Mark(restockErr, ErrDatabaseOperationFailed)
			}
			return h.healLine(ctx, tx, draft, run, line, seed, simCfg, now)
		}
		reserved[line.Primary.ID] += units
	}

	// Pass 2: the pickup slot must still be live.
	if outcome, err := h.confirmGate(ctx, tx, session, seed, simCfg, now, restock); outcome != nil || err != nil {
		return outcome, err
	}

	// Pass 3: final quote with pick-stage price drift.
	total := 0
	for i := range draft.Lines {
		line := &draft.Lines[i]
		price := h.merchant.QuotePrice(seed, simulation.StagePick, line.Primary.ID, line.Primary.PriceCents, simCfg)
		total += price * wholeUnits(line.Quantity)
	}

	// Re-approval gate on the final total.
	if run != nil {
		escalate, err := h.needsReapproval(ctx, tx, run, draft, total)
		if err != nil {
			return nil, err
		}
		if escalate != nil {
			if restockErr := restock(); restockErr != nil {
				return nil, errs.Mark(restockErr, ErrDatabaseOperationFailed)
			}
			return escalate, nil
		}
	}

	return h.settle(ctx, tx, session, draft, run, total, now)
}

// healLine negotiates a replacement for one rejected line. An auto plan
// is applied and persisted before the next attempt; anything else
// escalates or fails. The rejection is scoped to the alternatives the
// merchant can actually fill, and the negotiator may only pick from
// that set.
func (h *checkoutCommandsImpl) healLine(
	ctx context.Context,
	tx db.DBTX,
	draft *cart.Draft,
	run *agentrun.Run,
	line *cart.LineItem,
	seed string,
	simCfg simulation.Config,
	now time.Time,
) (*attemptOutcome, error) {
	rejected := *line

	offered := boundCandidates(line.Alternatives, simCfg.MaxFallbacks)
	var allowed []string
	for _, c := range offered {
		ok, err := h.merchant.InStock(ctx, tx, seed, simulation.StagePick, c.Product.ID, simCfg)
		if err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if ok {
			allowed = append(allowed, c.Product.ID)
		}
	}
	if len(allowed) > 0 {
		kept := make([]catalog.Candidate, 0, len(allowed))
		for _, c := range offered {
			for _, id := range allowed {
				if c.Product.ID == id {
					kept = append(kept, c)
					break
				}
			}
		}
		offered = kept
	}

	need := replacement.Need{Line: *line, Candidates: line.Alternatives, AllowedIDs: allowed}
	plan := replacement.Evaluate(draft, []replacement.Need{need}, draft.Policy, simCfg.MaxFallbacks, replacement.ReasonMerchantReject)
	metrics.SubstitutionsTotal.WithLabelValues(string(plan.Action)).Inc()

	if plan.Action == replacement.ActionAuto {
		for _, item := range plan.Items {
			if target := draft.LineByIngredient(item.IngredientKey); target != nil {
				target.ApplyReplacement(item.Candidate(), item.Reason)
			}
		}
		draft.UpdatedAt = now
		if err := h.drafts.Save(ctx, tx, draft); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return &attemptOutcome{healPlan: &plan, rejected: &rejected}, nil
	}

	// Approval path: park the run behind a pending approval.
	failure := &ErrorBody{
		Detail:       "replacement for " + line.IngredientKey + " needs approval",
		Code:         CodeApprovalRequired,
		ItemID:       line.Primary.ID,
		Alternatives: offered,
		Negotiation:  &plan,
	}
	if run != nil {
		approval := &agentrun.Approval{
			ID:         uuid.New(),
			AgentRunID: run.ID,
			CartHash:   draft.CartHash,
			QuoteHash:  draft.QuoteHash,
			Status:     agentrun.ApprovalPending,
		}
		if err := h.approvals.Create(ctx, tx, approval); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		failure.ApprovalID = approval.ID.String()
		run.State = agentrun.StateAwaitingApproval
		run.UpdatedAt = now
		if err := h.runs.Save(ctx, tx, run); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}
	if len(plan.Unresolved) > 0 && len(plan.Items) == 0 {
		// Nothing to propose at all: plain out-of-stock failure.
		failure.Code = CodeOutOfStock
		failure.Detail = "no acceptable replacement for " + line.IngredientKey
		return &attemptOutcome{failure: failure, failStatus: http.StatusConflict, failRun: true}, nil
	}
	return &attemptOutcome{failure: failure, failStatus: http.StatusConflict}, nil
}

// confirmGate verifies the checkout's slot hold survives both wall-clock
// and simulated expiry. Returns a failure outcome or nil to proceed.
func (h *checkoutCommandsImpl) confirmGate(
	ctx context.Context,
	tx db.DBTX,
	session *checkout.Session,
	seed string,
	simCfg simulation.Config,
	now time.Time,
	restock func() error,
) (*attemptOutcome, error) {
	fail := func(code, detail string) (*attemptOutcome, error) {
		metrics.SlotConflictsTotal.WithLabelValues(code).Inc()
		if err := restock(); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return &attemptOutcome{
			failure:    &ErrorBody{Detail: detail, Code: code},
			failStatus: http.StatusConflict,
		}, nil
	}

	res, err := h.reservations.FindActiveByCheckout(ctx, tx, session.ID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return fail(CodePickupSlotRequired, "a pickup slot must be reserved before completing checkout")
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if res.Status() != pickup.StatusReserved {
		return fail(CodePickupSlotRequired, "a pickup slot must be reserved before completing checkout")
	}

	if err := h.reservations.LockSlot(ctx, tx, res.SlotID()); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if _, err := h.reservations.ExpireLapsed(ctx, tx, res.SlotID(), now); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	expired := res.LapsedAt(now)
	if !expired && h.merchant.SlotExpires(seed, res.SlotID(), simCfg) {
		expired = true
	}
	if expired {
		if err := res.Expire(); err == nil {
			if saveErr := h.reservations.Save(ctx, tx, res); saveErr != nil {
				return nil, errs.Mark(saveErr, ErrDatabaseOperationFailed)
			}
		}

		// One automatic retry: re-list the store's slots and take the
		// next open hold before surfacing the conflict.
		next, err := h.reselectSlot(ctx, tx, session, res.SlotID(), now)
		if err != nil {
			return nil, err
		}
		if next != nil {
			if !h.merchant.SlotExpires(seed, next.SlotID(), simCfg) {
				return nil, nil
			}
			// The retry slot lost the capacity race as well.
			if expireErr := next.Expire(); expireErr == nil {
				if saveErr := h.reservations.Save(ctx, tx, next); saveErr != nil {
					return nil, errs.Mark(saveErr, ErrDatabaseOperationFailed)
				}
			}
		}
		return fail(CodePickupSlotExpired, "pickup slot reservation expired; reserve a slot again")
	}
	return nil, nil
}

// reselectSlot reserves the next open slot the store offers after a
// hold lapsed mid-completion. Returns nil when every remaining slot is
// full or already over.
func (h *checkoutCommandsImpl) reselectSlot(
	ctx context.Context,
	tx db.DBTX,
	session *checkout.Session,
	lapsedSlotID string,
	now time.Time,
) (*pickup.Reservation, error) {
	profile := pickup.DefaultProfile(storeFromSlotID(lapsedSlotID), h.pickupCfg.HoldMinutes, h.pickupCfg.DaysAhead)
	for _, slot := range profile.SlotsFor(now) {
		if slot.ID == lapsedSlotID || slot.End.Before(now) {
			continue
		}
		res, err := reserveSlot(ctx, tx, h.reservations, slot, session.ID, now)
		if err != nil {
			if errors.Is(err, ErrSlotFull) {
				continue
			}
			return nil, err
		}
		session.SlotID = &slot.ID
		session.UpdatedAt = now
		if err := h.checkouts.SaveSession(ctx, tx, session); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return res, nil
	}
	return nil, nil
}

// needsReapproval compares the final total against the latest approved
// total, or the originally quoted total when nothing was ever approved.
func (h *checkoutCommandsImpl) needsReapproval(ctx context.Context, tx db.DBTX, run *agentrun.Run, draft *cart.Draft, total int) (*attemptOutcome, error) {
	threshold := draft.Policy.RequireReapprovalAboveCents

	latest, err := h.approvals.LatestApproved(ctx, tx, run.ID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	covered := false
	switch {
	case latest != nil:
		covered = latest.CoversTotal(total, threshold)
	case draft.QuoteSummary != nil:
		covered = total-draft.QuoteSummary.TotalCents <= threshold
	default:
		covered = true
	}
	if covered {
		return nil, nil
	}

	now := h.clock.Now()
	approval := &agentrun.Approval{
		ID:         uuid.New(),
		AgentRunID: run.ID,
		CartHash:   draft.CartHash,
		QuoteHash:  draft.QuoteHash,
		Status:     agentrun.ApprovalPending,
	}
	if err := h.approvals.Create(ctx, tx, approval); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	run.State = agentrun.StateAwaitingApproval
	run.UpdatedAt = now
	if err := h.runs.Save(ctx, tx, run); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return &attemptOutcome{
		failure: &ErrorBody{
			Detail:     fmt.Sprintf("final total %d exceeds the approved amount; re-approval required", total),
			Code:       CodeApprovalRequired,
			ApprovalID: approval.ID.String(),
		},
		failStatus: http.StatusConflict,
	}, nil
}

// settle writes the terminal records: order, confirmed reservation,
// completed session, advanced run.
func (h *checkoutCommandsImpl) settle(
	ctx context.Context,
	tx db.DBTX,
	session *checkout.Session,
	draft *cart.Draft,
	run *agentrun.Run,
	total int,
	now time.Time,
) (*attemptOutcome, error) {
	res, err := h.reservations.FindActiveByCheckout(ctx, tx, session.ID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	session.TotalCents = total
	order := checkout.NewOrder(session, now)
	order.SlotID = ptr(res.SlotID())
	if err := h.checkouts.CreateOrder(ctx, tx, order); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if err := res.Confirm(order.ID, now); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := h.reservations.Save(ctx, tx, res); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	session.Status = checkout.StatusCompleted
	session.OrderID = &order.ID
	session.SlotID = ptr(res.SlotID())
	session.UpdatedAt = now
	if err := h.checkouts.SaveSession(ctx, tx, session); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	draft.UpdatedAt = now
	if err := h.drafts.Save(ctx, tx, draft); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if run != nil {
		run.State = agentrun.StateOrderCreated
		run.OrderID = &order.ID
		run.UpdatedAt = now
		if err := h.runs.Save(ctx, tx, run); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	return &attemptOutcome{result: &CompleteCheckoutResult{
		OrderID:    order.ID,
		CheckoutID: session.ID,
		Status:     string(session.Status),
		TotalCents: total,
		SlotID:     order.SlotID,
	}}, nil
}

func (h *checkoutCommandsImpl) failRun(run *agentrun.Run, code, detail string) {
	run.State = agentrun.StateFailed
	run.FailureCode = &code
	run.FailureDetail = &detail
}

func sessionToView(s *checkout.Session) *CheckoutSessionView {
	return &CheckoutSessionView{
		CheckoutID:    s.ID,
		Status:        string(s.Status),
		CartDraftID:   s.CartDraftID.String(),
		SubtotalCents: s.SubtotalCents,
		TotalCents:    s.TotalCents,
		Currency:      s.Currency,
		SlotID:        s.SlotID,
	}
}

// wholeUnits rounds a fractional purchase quantity up to whole SKUs.
func wholeUnits(quantity float64) int {
	units := int(quantity)
	if float64(units) < quantity {
		units++
	}
	if units < 1 {
		units = 1
	}
	return units
}

// boundCandidates caps an alternatives list at the profile's fallback
// limit.
func boundCandidates(list []catalog.Candidate, max int) []catalog.Candidate {
	if max > 0 && len(list) > max {
		return list[:max]
	}
	return list
}

func ptr[T any](v T) *T { return &v }
