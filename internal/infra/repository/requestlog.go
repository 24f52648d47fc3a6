package repository

import (
	"context"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
)

// RequestLogRepository records every mutating API call so scenario runs
// can be replayed and audited. Best effort: callers log write failures
// instead of failing the request.
type RequestLogRepository struct {
	db db.DBTX
}

func NewRequestLogRepository(dbtx db.DBTX) *RequestLogRepository {
	return &RequestLogRepository{db: dbtx}
}

func (r *RequestLogRepository) Append(ctx context.Context, method, url string, checkoutID *string, payload []byte) error {
	if len(payload) == 0 {
		payload = []byte("null")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO request_logs (logged_at, method, url, checkout_id, payload)
		VALUES ($1, $2, $3, $4, $5)`,
		time.Now().UTC(), method, url, checkoutID, payload)
	if err != nil {
		return infra.WrapRepoErr("failed to append request log", err)
	}
	return nil
}
