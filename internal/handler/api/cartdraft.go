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

type CartDraftHandler struct {
	draftCommands commands.CartDraftCommands
	draftQueries  queries.CartDraftQueries
}

func NewCartDraftHandler(draftCommands commands.CartDraftCommands, draftQueries queries.CartDraftQueries) *CartDraftHandler {
	return &CartDraftHandler{draftCommands: draftCommands, draftQueries: draftQueries}
}

// @Summary Create cart draft
// @Description Resolve ingredients to products and run the availability precheck
// @Tags cart-drafts
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body commands.CreateCartDraftRequest true "Draft parameters"
// @Success 201 {object} commands.CartDraftView
// @Success 202 {object} commands.CartDraftView
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/cart-drafts [post]
func (h *CartDraftHandler) CreateDraft(c *gin.Context) {
	key, ok := requireIdempotencyKey(c)
	if !ok {
		return
	}

	var req commands.CreateCartDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request format")
		return
	}
	if len(req.Ingredients) == 0 {
		httperr.AbortWithError(c, http.StatusBadRequest, errMissingField, "INVALID_REQUEST", "ingredients are required")
		return
	}

	result, err := h.draftCommands.CreateDraft(c.Request.Context(), req, key)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	writeGuardResult(c, result)
}

// @Summary Update cart draft
// @Description Replace the mutable parts of a draft and re-run the availability precheck
// @Tags cart-drafts
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key"
// @Param id path string true "Cart draft ID"
// @Param request body commands.UpdateCartDraftRequest true "Fields to update"
// @Success 200 {object} commands.CartDraftView
// @Success 202 {object} commands.CartDraftView
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/cart-drafts/{id} [patch]
func (h *CartDraftHandler) UpdateDraft(c *gin.Context) {
	key, ok := requireIdempotencyKey(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid cart draft id")
		return
	}

	var req commands.UpdateCartDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request format")
		return
	}

	result, err := h.draftCommands.UpdateDraft(c.Request.Context(), id, req, key)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	writeGuardResult(c, result)
}

// @Summary Get cart draft
// @Tags cart-drafts
// @Produce json
// @Param id path string true "Cart draft ID"
// @Success 200 {object} queries.CartDraftDetailView
// @Failure 404 {object} httperr.Response
// @Router /api/cart-drafts/{id} [get]
func (h *CartDraftHandler) GetDraft(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid cart draft id")
		return
	}

	draft, err := h.draftQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "CART_DRAFT_NOT_FOUND", "cart draft not found")
			return
		}
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}
