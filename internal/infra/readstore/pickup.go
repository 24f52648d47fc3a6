package readstore

import (
	"context"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
)

// PickupReadStore serves slot availability without mutating state. Lapsed
// RESERVED rows are filtered out of the count; settling them to EXPIRED
// is the write path's job.
type PickupReadStore struct {
	db db.DBTX
}

func NewPickupReadStore(dbtx db.DBTX) *PickupReadStore {
	return &PickupReadStore{db: dbtx}
}

func (r *PickupReadStore) ActiveCounts(ctx context.Context, slotIDs []string, now time.Time) (map[string]int, error) {
	counts := make(map[string]int, len(slotIDs))
	if len(slotIDs) == 0 {
		return counts, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT slot_id, count(*)
		FROM pickup_reservations
		WHERE slot_id = ANY($1)
			AND (status = 'CONFIRMED' OR (status = 'RESERVED' AND expires_at > $2))
		GROUP BY slot_id`, slotIDs, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count slot usage", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			slotID string
			count  int
		)
		if err := rows.Scan(&slotID, &count); err != nil {
			return nil, infra.WrapRepoErr("failed to scan slot usage", err)
		}
		counts[slotID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate slot usage", err)
	}
	return counts, nil
}
