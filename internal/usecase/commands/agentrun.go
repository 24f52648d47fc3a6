package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/agentrun"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/clock"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/errs"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidRunState = errs.New("invalid agent run state")

type CreateAgentRunRequest struct {
	UserID   *string `json:"userId,omitempty"`
	DeviceID *string `json:"deviceId,omitempty"`
	RecipeID *string `json:"recipeId,omitempty"`
	StoreID  *string `json:"storeId,omitempty"`
}

type AgentRunResult struct {
	ID        uuid.UUID `json:"id"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateSessionRequest struct {
	AgentRunID uuid.UUID `json:"agentRunId"`
	DeviceID   string    `json:"deviceId"`
}

type SessionResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AppendStepRequest struct {
	AgentRunID     uuid.UUID  `json:"agentRunId"`
	StepName       string     `json:"stepName"`
	RequestID      *string    `json:"requestId,omitempty"`
	IdempotencyKey *string    `json:"idempotencyKey,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
	Success        bool       `json:"success"`
	ErrorSummary   *string    `json:"errorSummary,omitempty"`
	NextState      *string    `json:"nextState,omitempty"`
}

type UpdateAgentRunRequest struct {
	State         *string `json:"state,omitempty"`
	StoreID       *string `json:"storeId,omitempty"`
	RecipeID      *string `json:"recipeId,omitempty"`
	FailureCode   *string `json:"failureCode,omitempty"`
	FailureDetail *string `json:"failureDetail,omitempty"`
}

type AgentRunCommands interface {
	CreateRun(ctx context.Context, req CreateAgentRunRequest) (*AgentRunResult, error)
	UpdateRun(ctx context.Context, runID uuid.UUID, req UpdateAgentRunRequest) (*AgentRunResult, error)
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResult, error)
	AppendStep(ctx context.Context, req AppendStepRequest) (int, error)
}

type agentRunCommandsImpl struct {
	runs  AgentRunRepo
	jwt   *jwt.Service
	db    *pgxpool.Pool
	clock clock.Clock
}

func NewAgentRunCommands(runs AgentRunRepo, jwtSvc *jwt.Service, pool *pgxpool.Pool, clk clock.Clock) AgentRunCommands {
	return &agentRunCommandsImpl{runs: runs, jwt: jwtSvc, db: pool, clock: clk}
}

func (a *agentRunCommandsImpl) CreateRun(ctx context.Context, req CreateAgentRunRequest) (*AgentRunResult, error) {
	now := a.clock.Now()
	run := &agentrun.Run{
		ID:        uuid.New(),
		UserID:    req.UserID,
		DeviceID:  req.DeviceID,
		RecipeID:  req.RecipeID,
		StoreID:   req.StoreID,
		State:     agentrun.StateDiscoverMerchant,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.runs.Create(ctx, a.db, run); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return &AgentRunResult{ID: run.ID, State: string(run.State), CreatedAt: run.CreatedAt}, nil
}

// UpdateRun applies a partial update to the run head row. State changes
// go through the same validity check the step log path uses.
func (a *agentRunCommandsImpl) UpdateRun(ctx context.Context, runID uuid.UUID, req UpdateAgentRunRequest) (*AgentRunResult, error) {
	run, err := a.runs.FindByID(ctx, a.db, runID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if req.State != nil {
		next := agentrun.State(*req.State)
		if !next.IsValid() {
			return nil, ErrInvalidRunState
		}
		run.State = next
	}
	if req.StoreID != nil {
		run.StoreID = req.StoreID
	}
	if req.RecipeID != nil {
		run.RecipeID = req.RecipeID
	}
	if req.FailureCode != nil {
		run.FailureCode = req.FailureCode
	}
	if req.FailureDetail != nil {
		run.FailureDetail = req.FailureDetail
	}

	run.UpdatedAt = a.clock.Now()
	if err := a.runs.Save(ctx, a.db, run); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return &AgentRunResult{ID: run.ID, State: string(run.State), CreatedAt: run.CreatedAt}, nil
}

func (a *agentRunCommandsImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResult, error) {
	if _, err := a.runs.FindByID(ctx, a.db, req.AgentRunID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	token, err := a.jwt.GenerateToken(req.AgentRunID, req.DeviceID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to generate session token")
	}
	return &SessionResult{Token: token, ExpiresAt: a.clock.Now().Add(a.jwt.TokenDuration())}, nil
}

// AppendStep records one telemetry entry and optionally advances the run
// state machine. Returns the step's duration in milliseconds.
func (a *agentRunCommandsImpl) AppendStep(ctx context.Context, req AppendStepRequest) (int, error) {
	tx, err := a.db.Begin(ctx)
	if err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
			slog.Warn("failed to rollback transaction", "error", rollbackErr)
		}
	}()

	run, err := a.runs.FindByID(ctx, tx, req.AgentRunID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return 0, ErrRunNotFound
		}
		return 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	var durationMs *int
	if req.FinishedAt != nil {
		d := int(req.FinishedAt.Sub(req.StartedAt).Milliseconds())
		durationMs = &d
	}
	step := &agentrun.StepLog{
		ID:             uuid.New(),
		AgentRunID:     run.ID,
		StepName:       req.StepName,
		RequestID:      req.RequestID,
		IdempotencyKey: req.IdempotencyKey,
		StartedAt:      req.StartedAt,
		FinishedAt:     req.FinishedAt,
		DurationMs:     durationMs,
		Success:        req.Success,
		ErrorSummary:   req.ErrorSummary,
	}
	if err := a.runs.AppendStepLog(ctx, tx, step); err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if req.NextState != nil {
		next := agentrun.State(*req.NextState)
		if !next.IsValid() {
			return 0, ErrInvalidRunState
		}
		run.State = next
		run.UpdatedAt = a.clock.Now()
		if err := a.runs.Save(ctx, tx, run); err != nil {
			return 0, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if durationMs != nil {
		return *durationMs, nil
	}
	return 0, nil
}
