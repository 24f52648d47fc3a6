package api

import (
	"errors"
	"net/http"

	"github.com/Fresh-Industries/pantrypal/internal/handler/httperr"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/metrics"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

var errMissingField = errors.New("missing required field")

// requireIdempotencyKey aborts with 400 when the header is absent.
// Guarded mutations are meaningless without a client-chosen key.
func requireIdempotencyKey(c *gin.Context) (string, bool) {
	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		httperr.AbortWithError(c, http.StatusBadRequest,
			errors.New("missing Idempotency-Key header"),
			"IDEMPOTENCY_KEY_REQUIRED", "Idempotency-Key header is required")
		return "", false
	}
	return key, true
}

// writeGuardResult emits the recorded body verbatim so a replay is byte
// identical to the original response.
func writeGuardResult(c *gin.Context, res *commands.GuardResult) {
	if res.Replayed {
		metrics.IdempotencyReplaysTotal.Inc()
		c.Header("Idempotency-Replayed", "true")
	}
	c.Data(res.Status, "application/json; charset=utf-8", res.Body)
}

// abortCommandError maps command sentinels onto the wire error envelope.
func abortCommandError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrSlotNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			commands.CodePickupSlotNotFound, "pickup slot not found")
	case errors.Is(err, commands.ErrSlotFull):
		metrics.SlotConflictsTotal.WithLabelValues(commands.CodePickupSlotFull).Inc()
		httperr.AbortWithError(c, http.StatusConflict, err,
			commands.CodePickupSlotFull, "pickup slot is at capacity")
	case errors.Is(err, commands.ErrSlotExpired):
		httperr.AbortWithError(c, http.StatusConflict, err,
			commands.CodePickupSlotExpired, "pickup slot reservation expired")
	case errors.Is(err, commands.ErrSlotRequired):
		httperr.AbortWithError(c, http.StatusConflict, err,
			commands.CodePickupSlotRequired, "a pickup slot must be reserved first")
	case errors.Is(err, commands.ErrIdempotencyConflict):
		httperr.AbortWithError(c, http.StatusConflict, err,
			commands.CodeIdempotencyConflict, "idempotency key reused with a different payload")
	case errors.Is(err, commands.ErrCheckoutNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"CHECKOUT_NOT_FOUND", "checkout session not found")
	case errors.Is(err, commands.ErrCheckoutClosed):
		httperr.AbortWithError(c, http.StatusConflict, err,
			"CHECKOUT_CLOSED", "checkout session is no longer open")
	case errors.Is(err, commands.ErrRunNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"AGENT_RUN_NOT_FOUND", "agent run not found")
	case errors.Is(err, commands.ErrDraftNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"CART_DRAFT_NOT_FOUND", "cart draft not found")
	case errors.Is(err, commands.ErrRunHasNoDraft):
		httperr.AbortWithError(c, http.StatusConflict, err,
			"CART_DRAFT_REQUIRED", "agent run has no cart draft")
	case errors.Is(err, commands.ErrDraftLocked):
		httperr.AbortWithError(c, http.StatusConflict, err,
			"CART_DRAFT_LOCKED", "cart draft is bound to a checkout session")
	case errors.Is(err, commands.ErrApprovalNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err,
			"APPROVAL_NOT_FOUND", "approval not found")
	case errors.Is(err, commands.ErrInvalidDecision):
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"INVALID_DECISION", "decision must be approve or reject")
	case errors.Is(err, commands.ErrInvalidRunState):
		httperr.AbortWithError(c, http.StatusBadRequest, err,
			"INVALID_RUN_STATE", "unknown agent run state")
	case errors.Is(err, commands.ErrNoCandidates):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
			"NO_CANDIDATES", "no catalog candidates found for an ingredient")
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err,
			"INTERNAL_ERROR", "internal server error")
	}
}
