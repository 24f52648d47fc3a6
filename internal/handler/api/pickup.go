package api

import (
	"net/http"

	"github.com/Fresh-Industries/pantrypal/internal/handler/httperr"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/commands"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PickupHandler struct {
	pickupQueries  queries.PickupQueries
	pickupCommands commands.PickupCommands
}

func NewPickupHandler(pickupQueries queries.PickupQueries, pickupCommands commands.PickupCommands) *PickupHandler {
	return &PickupHandler{
		pickupQueries:  pickupQueries,
		pickupCommands: pickupCommands,
	}
}

// @Summary List pickup slots
// @Description Derived slots for a store with remaining capacity
// @Tags pickup
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {array} queries.SlotView
// @Router /api/stores/{id}/pickup-slots [get]
func (h *PickupHandler) ListSlots(c *gin.Context) {
	slots, err := h.pickupQueries.ListSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// @Summary Select pickup slot
// @Description Reserve a pickup slot for a checkout session
// @Tags pickup
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key"
// @Param id path string true "Checkout ID"
// @Param request body commands.SelectPickupSlotRequest true "Slot selection"
// @Success 201 {object} commands.ReservationView
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/checkouts/{id}/pickup-slot [post]
func (h *PickupHandler) SelectSlot(c *gin.Context) {
	key, ok := requireIdempotencyKey(c)
	if !ok {
		return
	}

	var req commands.SelectPickupSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request format")
		return
	}
	if req.SlotID == "" {
		httperr.AbortWithError(c, http.StatusBadRequest,
			errMissingField, "INVALID_REQUEST", "slotId is required")
		return
	}

	result, err := h.pickupCommands.SelectSlot(c.Request.Context(), c.Param("id"), req, key)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	writeGuardResult(c, result)
}
