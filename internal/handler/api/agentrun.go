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

type AgentRunHandler struct {
	runCommands commands.AgentRunCommands
	runQueries  queries.AgentRunQueries
}

func NewAgentRunHandler(runCommands commands.AgentRunCommands, runQueries queries.AgentRunQueries) *AgentRunHandler {
	return &AgentRunHandler{runCommands: runCommands, runQueries: runQueries}
}

// @Summary Create agent run
// @Tags agent-runs
// @Accept json
// @Produce json
// @Param request body commands.CreateAgentRunRequest true "Run parameters"
// @Success 201 {object} commands.AgentRunResult
// @Router /api/agent-runs [post]
func (h *AgentRunHandler) CreateRun(c *gin.Context) {
	var req commands.CreateAgentRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request format")
		return
	}

	result, err := h.runCommands.CreateRun(c.Request.Context(), req)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Update agent run
// @Description Apply a partial update to a run: state, store, recipe, failure info
// @Tags agent-runs
// @Accept json
// @Produce json
// @Param id path string true "Agent run ID"
// @Param request body commands.UpdateAgentRunRequest true "Fields to update"
// @Success 200 {object} commands.AgentRunResult
// @Failure 404 {object} httperr.Response
// @Router /api/agent-runs/{id} [patch]
func (h *AgentRunHandler) UpdateRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid agent run id")
		return
	}

	var req commands.UpdateAgentRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request format")
		return
	}

	result, err := h.runCommands.UpdateRun(c.Request.Context(), id, req)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Create agent session
// @Description Issue a session token bound to an agent run and device
// @Tags agent-runs
// @Accept json
// @Produce json
// @Param request body commands.CreateSessionRequest true "Session parameters"
// @Success 201 {object} commands.SessionResult
// @Failure 404 {object} httperr.Response
// @Router /api/agent-sessions [post]
func (h *AgentRunHandler) CreateSession(c *gin.Context) {
	var req commands.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request format")
		return
	}
	if req.AgentRunID == uuid.Nil {
		httperr.AbortWithError(c, http.StatusBadRequest, errMissingField, "INVALID_REQUEST", "agentRunId is required")
		return
	}

	result, err := h.runCommands.CreateSession(c.Request.Context(), req)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Append step log
// @Description Record one step of an agent run's telemetry
// @Tags agent-runs
// @Accept json
// @Produce json
// @Param request body commands.AppendStepRequest true "Step log"
// @Success 201 {object} map[string]int
// @Failure 404 {object} httperr.Response
// @Router /api/agent-run-steps [post]
func (h *AgentRunHandler) AppendStep(c *gin.Context) {
	var req commands.AppendStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid request format")
		return
	}

	durationMs, err := h.runCommands.AppendStep(c.Request.Context(), req)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"durationMs": durationMs})
}

// @Summary Get agent run
// @Tags agent-runs
// @Produce json
// @Param id path string true "Agent run ID"
// @Success 200 {object} queries.AgentRunView
// @Failure 404 {object} httperr.Response
// @Router /api/agent-runs/{id} [get]
func (h *AgentRunHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "INVALID_REQUEST", "invalid agent run id")
		return
	}

	run, err := h.runQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "AGENT_RUN_NOT_FOUND", "agent run not found")
			return
		}
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
