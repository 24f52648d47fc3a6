package queries

import (
	"context"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/pickup"
)

type PickupQueries interface {
	ListSlots(ctx context.Context, storeID string) ([]*SlotView, error)
}

// SlotUsageRepo reports how many non-lapsed reservations occupy each
// slot. Lapsed RESERVED rows are excluded from the count rather than
// mutated; the write path sweeps them.
type SlotUsageRepo interface {
	ActiveCounts(ctx context.Context, slotIDs []string, now time.Time) (map[string]int, error)
}

type pickupQueriesImpl struct {
	usage   SlotUsageRepo
	profile func(storeID string) pickup.StoreProfile
	now     func() time.Time
}

func NewPickupQueries(usage SlotUsageRepo, profile func(storeID string) pickup.StoreProfile) PickupQueries {
	return &pickupQueriesImpl{
		usage:   usage,
		profile: profile,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (q *pickupQueriesImpl) ListSlots(ctx context.Context, storeID string) ([]*SlotView, error) {
	now := q.now()
	slots := q.profile(storeID).SlotsFor(now)

	ids := make([]string, len(slots))
	for i, s := range slots {
		ids[i] = s.ID
	}
	counts, err := q.usage.ActiveCounts(ctx, ids, now)
	if err != nil {
		return nil, err
	}

	views := make([]*SlotView, 0, len(slots))
	for _, s := range slots {
		available := s.Capacity - counts[s.ID]
		if available < 0 {
			available = 0
		}
		views = append(views, &SlotView{
			SlotID:      s.ID,
			StoreID:     s.StoreID,
			Date:        s.Date,
			Window:      s.Window,
			StartTime:   s.Start,
			EndTime:     s.End,
			Capacity:    s.Capacity,
			Available:   available,
			HoldMinutes: s.HoldMinutes,
		})
	}
	return views, nil
}
