package repository

import (
	"context"

	"github.com/Fresh-Industries/pantrypal/internal/domain/agentrun"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AgentRunRepository struct {
	db db.DBTX
}

func NewAgentRunRepository(dbtx db.DBTX) *AgentRunRepository {
	return &AgentRunRepository{db: dbtx}
}

func (r *AgentRunRepository) Create(ctx context.Context, tx db.DBTX, run *agentrun.Run) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO agent_runs (id, user_id, device_id, recipe_id, store_id, state,
			failure_code, failure_detail, cart_draft_id, order_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID, run.UserID, run.DeviceID, run.RecipeID, run.StoreID, string(run.State),
		run.FailureCode, run.FailureDetail, run.CartDraftID, run.OrderID, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to create agent run", err)
	}
	return nil
}

func (r *AgentRunRepository) Save(ctx context.Context, tx db.DBTX, run *agentrun.Run) error {
	tag, err := tx.Exec(ctx, `
		UPDATE agent_runs
		SET state = $2, failure_code = $3, failure_detail = $4,
			cart_draft_id = $5, order_id = $6, updated_at = $7
		WHERE id = $1`,
		run.ID, string(run.State), run.FailureCode, run.FailureDetail,
		run.CartDraftID, run.OrderID, run.UpdatedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to save agent run", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("agent run not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *AgentRunRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*agentrun.Run, error) {
	var (
		run   agentrun.Run
		state string
	)
	err := tx.QueryRow(ctx, `
		SELECT id, user_id, device_id, recipe_id, store_id, state,
			failure_code, failure_detail, cart_draft_id, order_id, created_at, updated_at
		FROM agent_runs
		WHERE id = $1`, id).
		Scan(&run.ID, &run.UserID, &run.DeviceID, &run.RecipeID, &run.StoreID, &state,
			&run.FailureCode, &run.FailureDetail, &run.CartDraftID, &run.OrderID, &run.CreatedAt, &run.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("agent run not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find agent run", err)
	}
	run.State = agentrun.State(state)
	return &run, nil
}

func (r *AgentRunRepository) AppendStepLog(ctx context.Context, tx db.DBTX, step *agentrun.StepLog) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO agent_run_step_logs (id, agent_run_id, step_name, request_id, idempotency_key,
			started_at, finished_at, duration_ms, success, error_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		step.ID, step.AgentRunID, step.StepName, step.RequestID, step.IdempotencyKey,
		step.StartedAt, step.FinishedAt, step.DurationMs, step.Success, step.ErrorSummary)
	if err != nil {
		return infra.WrapRepoErr("failed to append step log", err)
	}
	return nil
}

func (r *AgentRunRepository) StepLogs(ctx context.Context, tx db.DBTX, runID uuid.UUID) ([]agentrun.StepLog, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, agent_run_id, step_name, request_id, idempotency_key,
			started_at, finished_at, duration_ms, success, error_summary
		FROM agent_run_step_logs
		WHERE agent_run_id = $1
		ORDER BY started_at`, runID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load step logs", err)
	}
	defer rows.Close()

	var steps []agentrun.StepLog
	for rows.Next() {
		var s agentrun.StepLog
		if err := rows.Scan(&s.ID, &s.AgentRunID, &s.StepName, &s.RequestID, &s.IdempotencyKey,
			&s.StartedAt, &s.FinishedAt, &s.DurationMs, &s.Success, &s.ErrorSummary); err != nil {
			return nil, infra.WrapRepoErr("failed to scan step log", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate step logs", err)
	}
	return steps, nil
}
