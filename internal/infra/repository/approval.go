package repository

import (
	"context"

	"github.com/Fresh-Industries/pantrypal/internal/domain/agentrun"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ApprovalRepository appends to the approval audit trail. Rows are never
// updated in place except to settle a pending approval.
type ApprovalRepository struct {
	db db.DBTX
}

func NewApprovalRepository(dbtx db.DBTX) *ApprovalRepository {
	return &ApprovalRepository{db: dbtx}
}

func (r *ApprovalRepository) Create(ctx context.Context, tx db.DBTX, a *agentrun.Approval) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO approvals (id, agent_run_id, cart_hash, quote_hash, approved_total_cents,
			approved_at, signature, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.AgentRunID, a.CartHash, a.QuoteHash, a.ApprovedTotalCents,
		a.ApprovedAt, a.Signature, string(a.Status))
	if err != nil {
		return infra.WrapRepoErr("failed to create approval", err)
	}
	return nil
}

func (r *ApprovalRepository) Settle(ctx context.Context, tx db.DBTX, a *agentrun.Approval) error {
	tag, err := tx.Exec(ctx, `
		UPDATE approvals
		SET status = $2, approved_total_cents = $3, approved_at = $4, signature = $5
		WHERE id = $1 AND status = 'pending'`,
		a.ID, string(a.Status), a.ApprovedTotalCents, a.ApprovedAt, a.Signature)
	if err != nil {
		return infra.WrapRepoErr("failed to settle approval", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("pending approval not found", nil, infra.KindNotFound)
	}
	return nil
}

// LatestApproved returns the most recent approved entry for the run, the
// baseline the negotiator compares healed totals against.
func (r *ApprovalRepository) LatestApproved(ctx context.Context, tx db.DBTX, runID uuid.UUID) (*agentrun.Approval, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, agent_run_id, cart_hash, quote_hash, approved_total_cents, approved_at, signature, status
		FROM approvals
		WHERE agent_run_id = $1 AND status = 'approved'
		ORDER BY approved_at DESC NULLS LAST, created_at DESC
		LIMIT 1`, runID)
	return scanApproval(row)
}

func (r *ApprovalRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*agentrun.Approval, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, agent_run_id, cart_hash, quote_hash, approved_total_cents, approved_at, signature, status
		FROM approvals
		WHERE id = $1`, id)
	return scanApproval(row)
}

func scanApproval(row pgx.Row) (*agentrun.Approval, error) {
	var (
		a      agentrun.Approval
		status string
	)
	err := row.Scan(&a.ID, &a.AgentRunID, &a.CartHash, &a.QuoteHash,
		&a.ApprovedTotalCents, &a.ApprovedAt, &a.Signature, &status)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("approval not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan approval", err)
	}
	a.Status = agentrun.ApprovalStatus(status)
	return &a, nil
}
