package api

import (
	"net/http"

	"github.com/Fresh-Industries/pantrypal/internal/handler/httperr"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/commands"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	checkoutCommands commands.CheckoutCommands
	orderQueries     queries.OrderQueries
}

func NewCheckoutHandler(checkoutCommands commands.CheckoutCommands, orderQueries queries.OrderQueries) *CheckoutHandler {
	return &CheckoutHandler{checkoutCommands: checkoutCommands, orderQueries: orderQueries}
}

// @Summary Start checkout
// @Description Open a merchant checkout session for a run's cart draft
// @Tags checkout
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key"
// @Param id path string true "Agent run ID"
// @Param request body commands.StartCheckoutRequest false "Checkout parameters"
// @Success 201 {object} commands.CheckoutSessionView
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/agent-runs/{id}/checkout [post]
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	key, ok := requireIdempotencyKey(c)
	if !ok {
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid agent run id")
		return
	}

	var req commands.StartCheckoutRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "INVALID_REQUEST", "invalid request format")
			return
		}
	}

	result, err := h.checkoutCommands.StartCheckout(c.Request.Context(), runID, req, key)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	writeGuardResult(c, result)
}

// @Summary Complete checkout
// @Description Place the order, healing replaceable failures along the way
// @Tags checkout
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key"
// @Param id path string true "Checkout ID"
// @Param request body commands.CompleteCheckoutRequest false "Completion parameters"
// @Success 201 {object} commands.CompleteCheckoutResult
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} commands.ErrorBody
// @Router /api/checkouts/{id}/complete [post]
func (h *CheckoutHandler) Complete(c *gin.Context) {
	key, ok := requireIdempotencyKey(c)
	if !ok {
		return
	}

	var req commands.CompleteCheckoutRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "INVALID_REQUEST", "invalid request format")
			return
		}
	}

	result, err := h.checkoutCommands.Complete(c.Request.Context(), c.Param("id"), req, key)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	writeGuardResult(c, result)
}

// @Summary Get order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} queries.OrderView
// @Failure 404 {object} httperr.Response
// @Router /api/orders/{id} [get]
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	order, err := h.orderQueries.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "ORDER_NOT_FOUND", "order not found")
			return
		}
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
