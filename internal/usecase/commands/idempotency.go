package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/canonical"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrIdempotencyConflict     = errs.New("idempotency key reused with a different payload")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// GuardResult is what a guarded operation ultimately sent: an HTTP-ish
// status plus the serialized body, and whether it was replayed verbatim
// from a previous execution.
type GuardResult struct {
	Status   int
	Body     []byte
	Replayed bool
}

// GuardedFn runs the business operation inside the guard's transaction.
// Returning err != nil rolls everything back and records nothing;
// returning a status and body, including a failure status, commits the
// state changes and records the response for replay.
type GuardedFn func(ctx context.Context, tx db.DBTX) (int, any, error)

// IdempotencyGuard serializes executions per key and replays recorded
// outcomes. A key is bound to the canonical hash of its first payload;
// reuse with a different payload is a conflict.
type IdempotencyGuard struct {
	repo IdempotencyRepo
	db   txBeginner
}

// txBeginner is the slice of pgxpool.Pool the guard needs.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

func NewIdempotencyGuard(repo IdempotencyRepo, pool *pgxpool.Pool) *IdempotencyGuard {
	return &IdempotencyGuard{repo: repo, db: pool}
}

func (g *IdempotencyGuard) Execute(ctx context.Context, key string, payload any, fn GuardedFn) (*GuardResult, error) {
	requestHash, err := canonical.Hash(payload)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	tx, err := g.db.Begin(ctx)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			slog.Warn("failed to rollback transaction", "error", rollbackErr)
		}
	}()

	if err := g.repo.LockKey(ctx, tx, key); err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	existing, err := g.repo.Find(ctx, tx, key)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if existing != nil {
		if existing.RequestHash != requestHash {
			return nil, ErrIdempotencyConflict
		}
		return &GuardResult{
			Status:   existing.ResponseStatus,
			Body:     existing.ResponseBody,
			Replayed: true,
		}, nil
	}

	status, body, err := fn(ctx, tx)
	if err != nil {
		return nil, err
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := g.repo.Store(ctx, tx, key, requestHash, status, bodyJSON); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	return &GuardResult{Status: status, Body: bodyJSON}, nil
}
