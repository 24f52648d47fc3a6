package repository

import (
	"context"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"

	"github.com/jackc/pgx/v5"
)

// IdempotencyRecord is a completed mutation's stored outcome, replayed
// verbatim on retries of the same key and payload.
type IdempotencyRecord struct {
	Key            string
	RequestHash    string
	ResponseStatus int
	ResponseBody   []byte
	CreatedAt      time.Time
}

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

// LockKey serializes concurrent requests carrying the same key so that
// exactly one executes and the rest observe its stored record.
func (r *IdempotencyRepository) LockKey(ctx context.Context, tx db.DBTX, key string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return infra.WrapRepoErr("failed to lock idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) Find(ctx context.Context, tx db.DBTX, key string) (*IdempotencyRecord, error) {
	var rec IdempotencyRecord
	err := tx.QueryRow(ctx, `
		SELECT key, request_hash, response_status, response_body, created_at
		FROM idempotency_records
		WHERE key = $1`, key).
		Scan(&rec.Key, &rec.RequestHash, &rec.ResponseStatus, &rec.ResponseBody, &rec.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("idempotency record not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find idempotency record", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) Store(ctx context.Context, tx db.DBTX, key, requestHash string, status int, body []byte) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO idempotency_records (key, request_hash, response_status, response_body)
		VALUES ($1, $2, $3, $4)`,
		key, requestHash, status, body)
	if err != nil {
		return infra.WrapRepoErr("failed to store idempotency record", err)
	}
	return nil
}
