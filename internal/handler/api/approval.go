package api

import (
	"net/http"

	"github.com/Fresh-Industries/pantrypal/internal/handler/httperr"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApprovalHandler struct {
	approvalCommands commands.ApprovalCommands
}

func NewApprovalHandler(approvalCommands commands.ApprovalCommands) *ApprovalHandler {
	return &ApprovalHandler{approvalCommands: approvalCommands}
}

// @Summary Settle approval
// @Description Approve or reject a pending human approval
// @Tags approvals
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body commands.SettleApprovalRequest true "Decision"
// @Success 200 {object} commands.ApprovalResult
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/approvals [post]
func (h *ApprovalHandler) Settle(c *gin.Context) {
	key, ok := requireIdempotencyKey(c)
	if !ok {
		return
	}

	var req commands.SettleApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request format")
		return
	}
	if req.ApprovalID == uuid.Nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errMissingField, "INVALID_REQUEST", "approvalId is required")
		return
	}

	result, err := h.approvalCommands.Settle(c.Request.Context(), req, key)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	writeGuardResult(c, result)
}
