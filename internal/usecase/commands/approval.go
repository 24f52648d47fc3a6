package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/agentrun"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/clock"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrApprovalNotFound = errs.New("approval not found")
	ErrInvalidDecision  = errs.New("invalid approval decision")
)

type SettleApprovalRequest struct {
	ApprovalID         uuid.UUID `json:"approvalId"`
	Decision           string    `json:"decision"`
	ApprovedTotalCents *int      `json:"approvedTotalCents,omitempty"`
	Signature          *string   `json:"signature,omitempty"`
}

type ApprovalResult struct {
	ApprovalID uuid.UUID  `json:"approvalId"`
	AgentRunID uuid.UUID  `json:"agentRunId"`
	Status     string     `json:"status"`
	RunState   string     `json:"runState"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
}

type ApprovalCommands interface {
	Settle(ctx context.Context, req SettleApprovalRequest, idempotencyKey string) (*GuardResult, error)
}

type approvalCommandsImpl struct {
	approvals ApprovalRepo
	runs      AgentRunRepo
	guard     *IdempotencyGuard
	clock     clock.Clock
}

func NewApprovalCommands(approvals ApprovalRepo, runs AgentRunRepo, guard *IdempotencyGuard, clk clock.Clock) ApprovalCommands {
	return &approvalCommandsImpl{approvals: approvals, runs: runs, guard: guard, clock: clk}
}

// Settle records the human decision on a pending approval and moves the
// run forward (approve) or terminates it (reject).
func (a *approvalCommandsImpl) Settle(ctx context.Context, req SettleApprovalRequest, idempotencyKey string) (*GuardResult, error) {
	if req.Decision != "approve" && req.Decision != "reject" {
		return nil, ErrInvalidDecision
	}

	return a.guard.Execute(ctx, idempotencyKey, req, func(ctx context.Context, tx db.DBTX) (int, any, error) {
		approval, err := a.approvals.FindByID(ctx, tx, req.ApprovalID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return 0, nil, ErrApprovalNotFound
			}
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		run, err := a.runs.FindByID(ctx, tx, approval.AgentRunID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return 0, nil, ErrRunNotFound
			}
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		now := a.clock.Now()
		if req.Decision == "approve" {
			approval.Status = agentrun.ApprovalApproved
			approval.ApprovedTotalCents = req.ApprovedTotalCents
			approval.ApprovedAt = &now
			approval.Signature = req.Signature
			run.State = agentrun.StateCheckout
		} else {
			approval.Status = agentrun.ApprovalRejected
			code := "APPROVAL_REJECTED"
			run.State = agentrun.StateFailed
			run.FailureCode = &code
		}

		if err := a.approvals.Settle(ctx, tx, approval); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return 0, nil, ErrApprovalNotFound
			}
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		run.UpdatedAt = now
		if err := a.runs.Save(ctx, tx, run); err != nil {
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		return http.StatusOK, &ApprovalResult{
			ApprovalID: approval.ID,
			AgentRunID: approval.AgentRunID,
			Status:     string(approval.Status),
			RunState:   string(run.State),
			ApprovedAt: approval.ApprovedAt,
		}, nil
	})
}
