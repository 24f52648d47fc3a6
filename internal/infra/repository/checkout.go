package repository

import (
	"context"
	"encoding/json"

	"github.com/Fresh-Industries/pantrypal/internal/domain/checkout"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"

	"github.com/jackc/pgx/v5"
)

// CheckoutRepository stores sessions and orders as documents with the
// status lifted into its own column for querying.
type CheckoutRepository struct {
	db db.DBTX
}

func NewCheckoutRepository(dbtx db.DBTX) *CheckoutRepository {
	return &CheckoutRepository{db: dbtx}
}

func (r *CheckoutRepository) CreateSession(ctx context.Context, tx db.DBTX, s *checkout.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return infra.WrapRepoErr("failed to marshal checkout session", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO checkouts (id, status, data) VALUES ($1, $2, $3)`,
		s.ID, string(s.Status), data)
	if err != nil {
		return infra.WrapRepoErr("failed to create checkout session", err)
	}
	return nil
}

func (r *CheckoutRepository) SaveSession(ctx context.Context, tx db.DBTX, s *checkout.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return infra.WrapRepoErr("failed to marshal checkout session", err)
	}
	tag, err := tx.Exec(ctx, `
		UPDATE checkouts SET status = $2, data = $3 WHERE id = $1`,
		s.ID, string(s.Status), data)
	if err != nil {
		return infra.WrapRepoErr("failed to save checkout session", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("checkout session not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *CheckoutRepository) FindSession(ctx context.Context, tx db.DBTX, id string) (*checkout.Session, error) {
	var data []byte
	err := tx.QueryRow(ctx, `SELECT data FROM checkouts WHERE id = $1`, id).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("checkout session not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find checkout session", err)
	}
	var s checkout.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, infra.WrapRepoErr("failed to unmarshal checkout session", err)
	}
	return &s, nil
}

func (r *CheckoutRepository) CreateOrder(ctx context.Context, tx db.DBTX, o *checkout.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return infra.WrapRepoErr("failed to marshal order", err)
	}
	_, err = tx.Exec(ctx, `INSERT INTO orders (id, data) VALUES ($1, $2)`, o.ID, data)
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}
	return nil
}

func (r *CheckoutRepository) FindOrder(ctx context.Context, tx db.DBTX, id string) (*checkout.Order, error) {
	var data []byte
	err := tx.QueryRow(ctx, `SELECT data FROM orders WHERE id = $1`, id).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order", err)
	}
	var o checkout.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, infra.WrapRepoErr("failed to unmarshal order", err)
	}
	return &o, nil
}
