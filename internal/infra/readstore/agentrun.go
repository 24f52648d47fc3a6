package readstore

import (
	"context"

	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AgentRunReadStore struct {
	db db.DBTX
}

func NewAgentRunReadStore(dbtx db.DBTX) *AgentRunReadStore {
	return &AgentRunReadStore{db: dbtx}
}

func (r *AgentRunReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AgentRunView, error) {
	var v queries.AgentRunView
	err := r.db.QueryRow(ctx, `
		SELECT id, recipe_id, store_id, state, failure_code, failure_detail,
			cart_draft_id, order_id, created_at, updated_at
		FROM agent_runs
		WHERE id = $1`, id).
		Scan(&v.ID, &v.RecipeID, &v.StoreID, &v.State, &v.FailureCode, &v.FailureDetail,
			&v.CartDraftID, &v.OrderID, &v.CreatedAt, &v.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("agent run not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find agent run", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT step_name, started_at, finished_at, duration_ms, success, error_summary
		FROM agent_run_step_logs
		WHERE agent_run_id = $1
		ORDER BY started_at`, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load step logs", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s queries.StepLogView
		if err := rows.Scan(&s.StepName, &s.StartedAt, &s.FinishedAt, &s.DurationMs, &s.Success, &s.ErrorSummary); err != nil {
			return nil, infra.WrapRepoErr("failed to scan step log", err)
		}
		v.Steps = append(v.Steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate step logs", err)
	}
	return &v, nil
}
