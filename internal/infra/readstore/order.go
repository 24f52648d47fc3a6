package readstore

import (
	"context"
	"encoding/json"

	"github.com/Fresh-Industries/pantrypal/internal/domain/checkout"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"

	"github.com/jackc/pgx/v5"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id string) (*queries.OrderView, error) {
	var data []byte
	err := r.db.QueryRow(ctx, `SELECT data FROM orders WHERE id = $1`, id).Scan(&data)
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
	return &queries.OrderView{
		ID:         o.ID,
		CheckoutID: o.CheckoutID,
		TotalCents: o.TotalCents,
		SlotID:     o.SlotID,
		PlacedAt:   o.PlacedAt,
	}, nil
}
