//go:build e2e

package checkout_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/cart"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/commands"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"
	"github.com/Fresh-Industries/pantrypal/tests/common/dbtest"
	"github.com/Fresh-Industries/pantrypal/tests/common/httptest"
	"github.com/Fresh-Industries/pantrypal/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	agentRunsURL     = "/api/agent-runs"
	cartDraftsURL    = "/api/cart-drafts"
	startCheckoutURL = "/api/agent-runs/%s/checkout"
	pickupSlotsURL   = "/api/stores/%s/pickup-slots"
	selectSlotURL    = "/api/checkouts/%s/pickup-slot"
	completeURL      = "/api/checkouts/%s/complete"
	ordersURL        = "/api/orders/%s"

	storeID = "store-001"
)

type CheckoutSuite struct {
	e2e.SharedSuite
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(CheckoutSuite))
}

// =============================================================================
// TestAgentCheckoutFlow - run -> draft -> checkout -> slot -> order
// =============================================================================

func (s *CheckoutSuite) TestAgentCheckoutFlow() {
	s.Run("agent completes a full checkout run", func() {
		t := s.T()

		runID := s.createRun(t)
		draft := s.createDraft(t, runID)
		require.NotEmpty(t, draft.CartHash)
		require.NotEmpty(t, draft.QuoteHash)
		require.Positive(t, draft.SubtotalCents)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, cartDraftsURL+"/"+draft.ID, nil, "")
		var detail queries.CartDraftDetailView
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &detail)
		require.Equal(t, draft.SubtotalCents, detail.SubtotalCents)

		session := s.startCheckout(t, runID)
		require.Equal(t, "OPEN", session.Status)

		slot := s.pickSlot(t, "evening")
		reservation := s.selectSlot(t, session.CheckoutID, slot.SlotID, uuid.NewString())
		require.Equal(t, "RESERVED", reservation.Status)
		require.WithinDuration(t, time.Now().Add(15*time.Minute), reservation.ExpiresAt, time.Minute)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(completeURL, session.CheckoutID), nil, uuid.NewString())
		var result commands.CompleteCheckoutResult
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &result)
		require.NotEmpty(t, result.OrderID)
		require.Equal(t, "COMPLETED", result.Status)
		require.Equal(t, draft.SubtotalCents, result.TotalCents, "no simulation seed means no price drift")
		require.NotNil(t, result.SlotID)
		require.Equal(t, slot.SlotID, *result.SlotID)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf(ordersURL, result.OrderID), nil, "")
		var order queries.OrderView
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &order)
		require.Equal(t, result.TotalCents, order.TotalCents)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			agentRunsURL+"/"+runID, nil, "")
		var run queries.AgentRunView
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &run)
		require.Equal(t, "ORDER_CREATED", run.State)
		require.NotNil(t, run.OrderID)
	})

	s.Run("completing without a reserved slot is refused", func() {
		t := s.T()

		runID := s.createRun(t)
		s.createDraft(t, runID)
		session := s.startCheckout(t, runID)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(completeURL, session.CheckoutID), nil, uuid.NewString())
		httptest.AssertErrorCode(t, w, http.StatusConflict, "PICKUP_SLOT_REQUIRED")
	})
}

// =============================================================================
// TestSlotContention - concurrent holds never exceed slot capacity
// =============================================================================

func (s *CheckoutSuite) TestSlotContention() {
	s.Run("concurrent reservations stop at slot capacity", func() {
		t := s.T()

		const contenders = 8
		slot := s.pickSlot(t, "evening")
		require.Equal(t, 3, slot.Capacity, "evening window capacity")

		checkoutIDs := make([]string, contenders)
		for i := range contenders {
			runID := s.createRun(t)
			s.createDraft(t, runID)
			checkoutIDs[i] = s.startCheckout(t, runID).CheckoutID
		}

		codes := make(chan int, contenders)
		var wg sync.WaitGroup
		for i := range contenders {
			wg.Add(1)
			go func(checkoutID string) {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost,
					fmt.Sprintf(selectSlotURL, checkoutID),
					commands.SelectPickupSlotRequest{SlotID: slot.SlotID}, uuid.NewString())
				codes <- w.Code
			}(checkoutIDs[i])
		}
		wg.Wait()
		close(codes)

		var reserved, refused int
		for code := range codes {
			switch code {
			case http.StatusCreated:
				reserved++
			case http.StatusConflict:
				refused++
			default:
				t.Fatalf("unexpected status %d", code)
			}
		}
		require.Equal(t, slot.Capacity, reserved, "winners must match capacity exactly")
		require.Equal(t, contenders-slot.Capacity, refused)

		after := s.findSlot(t, slot.SlotID)
		require.Equal(t, 0, after.Available, "slot should be fully held")
	})
}

// =============================================================================
// TestSlotExpiry - lapsed holds are swapped for an open slot at completion
// =============================================================================

func (s *CheckoutSuite) TestSlotExpiry() {
	s.Run("lapsed hold moves to another open slot and capacity recovers", func() {
		t := s.T()

		runID := s.createRun(t)
		s.createDraft(t, runID)
		session := s.startCheckout(t, runID)

		slot := s.pickSlot(t, "morning")
		reservation := s.selectSlot(t, session.CheckoutID, slot.SlotID, uuid.NewString())

		held := s.findSlot(t, slot.SlotID)
		require.Equal(t, slot.Capacity-1, held.Available)

		require.NoError(t, dbtest.BackdateReservation(s.DB, reservation.ReservationID, time.Minute))

		// Completion notices the lapsed hold, takes the next open slot
		// automatically, and still creates the order.
		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(completeURL, session.CheckoutID), nil, uuid.NewString())
		var result commands.CompleteCheckoutResult
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &result)
		require.Equal(t, "COMPLETED", result.Status)
		require.NotNil(t, result.SlotID)
		require.NotEqual(t, slot.SlotID, *result.SlotID, "a different slot carries the order")

		freed := s.findSlot(t, slot.SlotID)
		require.Empty(t, cmp.Diff(slot, freed), "the lapsed slot must return to its pre-hold state")
	})
}

// =============================================================================
// TestIdempotency - replay and conflict semantics over the wire
// =============================================================================

func (s *CheckoutSuite) TestIdempotency() {
	s.Run("retrying with the same key replays the recorded response", func() {
		t := s.T()

		runID := s.createRun(t)
		s.createDraft(t, runID)
		session := s.startCheckout(t, runID)
		slot := s.pickSlot(t, "afternoon")

		key := uuid.NewString()
		req := commands.SelectPickupSlotRequest{SlotID: slot.SlotID}

		first := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(selectSlotURL, session.CheckoutID), req, key)
		require.Equal(t, http.StatusCreated, first.Code)
		require.Empty(t, first.Header().Get("Idempotency-Replayed"))

		second := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(selectSlotURL, session.CheckoutID), req, key)
		require.Equal(t, http.StatusCreated, second.Code)
		require.Equal(t, "true", second.Header().Get("Idempotency-Replayed"))
		require.Equal(t, first.Body.String(), second.Body.String(), "replay must be byte identical")

		held := s.findSlot(t, slot.SlotID)
		require.Equal(t, slot.Capacity-1, held.Available, "replay must not hold a second seat")
	})

	s.Run("reusing a key with a different payload conflicts", func() {
		t := s.T()

		runID := s.createRun(t)
		s.createDraft(t, runID)
		session := s.startCheckout(t, runID)

		key := uuid.NewString()
		morning := s.pickSlot(t, "morning")
		afternoon := s.pickSlot(t, "afternoon")

		first := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(selectSlotURL, session.CheckoutID),
			commands.SelectPickupSlotRequest{SlotID: morning.SlotID}, key)
		require.Equal(t, http.StatusCreated, first.Code)

		second := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(selectSlotURL, session.CheckoutID),
			commands.SelectPickupSlotRequest{SlotID: afternoon.SlotID}, key)
		httptest.AssertErrorCode(t, second, http.StatusConflict, "IDEMPOTENCY_CONFLICT")
	})

	s.Run("guarded mutations without a key are rejected", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, cartDraftsURL, nil, "")
		httptest.AssertErrorCode(t, w, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED")
	})
}

// =============================================================================
// Flow helpers
// =============================================================================

func (s *CheckoutSuite) createRun(t *testing.T) string {
	t.Helper()

	store := storeID
	recipe := "recipe-weeknight-stirfry"
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, agentRunsURL,
		commands.CreateAgentRunRequest{StoreID: &store, RecipeID: &recipe}, "")
	var result commands.AgentRunResult
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &result)
	require.NotEqual(t, uuid.Nil, result.ID)
	return result.ID.String()
}

func (s *CheckoutSuite) createDraft(t *testing.T, runID string) commands.CartDraftView {
	t.Helper()

	id, err := uuid.Parse(runID)
	require.NoError(t, err)

	req := commands.CreateCartDraftRequest{
		AgentRunID: &id,
		RecipeID:   "recipe-weeknight-stirfry",
		Servings:   2,
		Ingredients: []commands.IngredientInput{
			{Key: "rice", Name: "basmati rice", Quantity: 1, Unit: "bag"},
			{Key: "chicken_breast", Name: "chicken breast", Quantity: 1, Unit: "lb"},
		},
		Policy: cart.SubstitutionPolicy{
			AllowSubs:                   true,
			MaxDeltaPerItemCents:        300,
			MaxCartIncreaseCents:        1000,
			RequireReapprovalAboveCents: 500,
		},
	}

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, cartDraftsURL, req, uuid.NewString())
	var draft commands.CartDraftView
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &draft)
	require.Len(t, draft.Lines, 2)
	return draft
}

func (s *CheckoutSuite) startCheckout(t *testing.T, runID string) commands.CheckoutSessionView {
	t.Helper()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost,
		fmt.Sprintf(startCheckoutURL, runID), nil, uuid.NewString())
	var session commands.CheckoutSessionView
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &session)
	require.NotEmpty(t, session.CheckoutID)
	return session
}

func (s *CheckoutSuite) listSlots(t *testing.T) []queries.SlotView {
	t.Helper()

	w := httptest.PerformRequest(t, s.Router, http.MethodGet,
		fmt.Sprintf(pickupSlotsURL, storeID), nil, "")
	var body struct {
		Slots []queries.SlotView `json:"slots"`
	}
	httptest.AssertSuccessResponse(t, w, http.StatusOK, &body)
	require.NotEmpty(t, body.Slots)
	return body.Slots
}

// pickSlot returns the last slot for a window, which is always in the
// future regardless of the wall-clock time the suite runs at.
func (s *CheckoutSuite) pickSlot(t *testing.T, window string) queries.SlotView {
	t.Helper()

	slots := s.listSlots(t)
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i].Window == window {
			return slots[i]
		}
	}
	t.Fatalf("no %s slot found", window)
	return queries.SlotView{}
}

func (s *CheckoutSuite) findSlot(t *testing.T, slotID string) queries.SlotView {
	t.Helper()

	for _, slot := range s.listSlots(t) {
		if slot.SlotID == slotID {
			return slot
		}
	}
	t.Fatalf("slot %s not found", slotID)
	return queries.SlotView{}
}

func (s *CheckoutSuite) selectSlot(t *testing.T, checkoutID, slotID, key string) commands.ReservationView {
	t.Helper()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost,
		fmt.Sprintf(selectSlotURL, checkoutID),
		commands.SelectPickupSlotRequest{SlotID: slotID}, key)
	var reservation commands.ReservationView
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &reservation)
	require.NotEmpty(t, reservation.ReservationID)
	return reservation
}
