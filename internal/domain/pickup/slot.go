package pickup

import (
	"fmt"
	"strings"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/pkg/errs"
)

var ErrUnknownSlot = errs.New("unknown pickup slot")

// Window is one time-of-day pickup band in a store's profile.
type Window struct {
	Name      string
	StartHour int
	EndHour   int
	Capacity  int
}

// StoreProfile describes how a store offers pickup. Slots are never
// stored; they are generated deterministically from the profile and a
// reference date, so every caller derives the identical slot set.
type StoreProfile struct {
	StoreID     string
	Windows     []Window
	HoldMinutes int
	DaysAhead   int
}

func DefaultProfile(storeID string, holdMinutes, daysAhead int) StoreProfile {
	return StoreProfile{
		StoreID: storeID,
		Windows: []Window{
			{Name: "morning", StartHour: 9, EndHour: 12, Capacity: 4},
			{Name: "afternoon", StartHour: 12, EndHour: 17, Capacity: 6},
			{Name: "evening", StartHour: 17, EndHour: 21, Capacity: 3},
		},
		HoldMinutes: holdMinutes,
		DaysAhead:   daysAhead,
	}
}

// Slot is a derived pickup window instance for a concrete date.
type Slot struct {
	ID          string
	StoreID     string
	Date        string // YYYY-MM-DD
	Window      string
	Start       time.Time
	End         time.Time
	Capacity    int
	HoldMinutes int
}

func slotID(storeID, date, window string) string {
	return fmt.Sprintf("%s:%s:%s", storeID, date, window)
}

// SlotsFor expands the profile into every slot from referenceDate through
// DaysAhead days, in chronological order.
func (p StoreProfile) SlotsFor(referenceDate time.Time) []Slot {
	days := p.DaysAhead
	if days < 1 {
		days = 1
	}

	slots := make([]Slot, 0, days*len(p.Windows))
	day := time.Date(referenceDate.Year(), referenceDate.Month(), referenceDate.Day(), 0, 0, 0, 0, referenceDate.Location())
	for i := 0; i < days; i++ {
		date := day.AddDate(0, 0, i)
		dateStr := date.Format("2006-01-02")
		for _, w := range p.Windows {
			slots = append(slots, Slot{
				ID:          slotID(p.StoreID, dateStr, w.Name),
				StoreID:     p.StoreID,
				Date:        dateStr,
				Window:      w.Name,
				Start:       date.Add(time.Duration(w.StartHour) * time.Hour),
				End:         date.Add(time.Duration(w.EndHour) * time.Hour),
				Capacity:    w.Capacity,
				HoldMinutes: p.HoldMinutes,
			})
		}
	}
	return slots
}

// SlotByID re-derives a single slot from its identifier. Fails with
// ErrUnknownSlot when the id does not name a window this profile offers.
func (p StoreProfile) SlotByID(id string) (Slot, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != p.StoreID {
		return Slot{}, ErrUnknownSlot
	}

	date, err := time.Parse("2006-01-02", parts[1])
	if err != nil {
		return Slot{}, ErrUnknownSlot
	}

	for _, w := range p.Windows {
		if w.Name == parts[2] {
			return Slot{
				ID:          id,
				StoreID:     p.StoreID,
				Date:        parts[1],
				Window:      w.Name,
				Start:       date.Add(time.Duration(w.StartHour) * time.Hour),
				End:         date.Add(time.Duration(w.EndHour) * time.Hour),
				Capacity:    w.Capacity,
				HoldMinutes: p.HoldMinutes,
			}, nil
		}
	}
	return Slot{}, ErrUnknownSlot
}
