//go:build unit

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/checkout"
	"github.com/Fresh-Industries/pantrypal/internal/domain/pickup"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/clock"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pickupFixture struct {
	commands     PickupCommands
	checkouts    *fakeCheckoutRepo
	reservations *fakeReservationRepo
	clock        *clock.MockClock
	session      *checkout.Session
	profile      pickup.StoreProfile
}

func newPickupFixture(t *testing.T) *pickupFixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock := clock.NewMockClock(now)

	f := &pickupFixture{
		checkouts:    newFakeCheckoutRepo(),
		reservations: &fakeReservationRepo{},
		clock:        mock,
		profile:      pickup.DefaultProfile("store-1", 15, 3),
	}

	draftID := uuid.New()
	f.session = checkout.NewSession(draftID, nil, 899, now)
	f.checkouts.sessions[f.session.ID] = f.session

	guard := &IdempotencyGuard{repo: newFakeIdempotencyRepo(), db: &fakeBeginner{}}
	f.commands = NewPickupCommands(
		f.reservations, f.checkouts, guard,
		config.PickupConfig{HoldMinutes: 15, DaysAhead: 3},
		mock,
	)
	return f
}

func (f *pickupFixture) morningSlot(t *testing.T) pickup.Slot {
	t.Helper()
	return f.profile.SlotsFor(f.clock.Now())[0]
}

func TestSelectSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves a derived slot and stamps the session", func(t *testing.T) {
		f := newPickupFixture(t)
		slot := f.morningSlot(t)

		result, err := f.commands.SelectSlot(ctx, f.session.ID, SelectPickupSlotRequest{SlotID: slot.ID}, "key-1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		var view ReservationView
		require.NoError(t, json.Unmarshal(result.Body, &view))
		assert.Equal(t, slot.ID, view.SlotID)
		assert.Equal(t, string(pickup.StatusReserved), view.Status)
		assert.Equal(t, f.clock.Now().Add(15*time.Minute), view.ExpiresAt)

		require.NotNil(t, f.session.SlotID)
		assert.Equal(t, slot.ID, *f.session.SlotID)
	})

	t.Run("re-selecting releases the previous hold", func(t *testing.T) {
		f := newPickupFixture(t)
		slots := f.profile.SlotsFor(f.clock.Now())

		_, err := f.commands.SelectSlot(ctx, f.session.ID, SelectPickupSlotRequest{SlotID: slots[0].ID}, "key-1")
		require.NoError(t, err)
		_, err = f.commands.SelectSlot(ctx, f.session.ID, SelectPickupSlotRequest{SlotID: slots[1].ID}, "key-2")
		require.NoError(t, err)

		assert.Equal(t, pickup.StatusReleased, f.reservations.reservations[0].Status())
		assert.Equal(t, pickup.StatusReserved, f.reservations.reservations[1].Status())
		n, err := f.reservations.CountActive(ctx, nil, slots[0].ID)
		require.NoError(t, err)
		assert.Zero(t, n, "the first slot's capacity is freed")
	})

	t.Run("selecting the held slot again returns the hold unchanged", func(t *testing.T) {
		f := newPickupFixture(t)
		slot := f.morningSlot(t)

		first, err := f.commands.SelectSlot(ctx, f.session.ID, SelectPickupSlotRequest{SlotID: slot.ID}, "key-1")
		require.NoError(t, err)
		f.clock.Add(10 * time.Minute)
		second, err := f.commands.SelectSlot(ctx, f.session.ID, SelectPickupSlotRequest{SlotID: slot.ID}, "key-2")
		require.NoError(t, err)

		var firstView, secondView ReservationView
		require.NoError(t, json.Unmarshal(first.Body, &firstView))
		require.NoError(t, json.Unmarshal(second.Body, &secondView))
		assert.Equal(t, firstView.ReservationID, secondView.ReservationID)
		assert.Equal(t, firstView.ExpiresAt, secondView.ExpiresAt, "the hold window is not extended")
		assert.Len(t, f.reservations.reservations, 1, "no second hold is created")
	})

	t.Run("full slot rejects further checkouts", func(t *testing.T) {
		f := newPickupFixture(t)
		slot := f.morningSlot(t)

		// Fill the slot's capacity with other checkouts.
		for i := 0; i < slot.Capacity; i++ {
			f.reservations.reservations = append(f.reservations.reservations,
				pickup.NewReservation(slot, fmt.Sprintf("chk_other_%d", i), f.clock.Now()))
		}

		_, err := f.commands.SelectSlot(ctx, f.session.ID, SelectPickupSlotRequest{SlotID: slot.ID}, "key-1")
		assert.ErrorIs(t, err, ErrSlotFull)
		assert.Empty(t, f.checkouts.sessions[f.session.ID].SlotID, "session is untouched on rejection")
	})

	t.Run("lapsed holds free capacity before the check", func(t *testing.T) {
		f := newPickupFixture(t)
		slot := f.morningSlot(t)

		for i := 0; i < slot.Capacity; i++ {
			f.reservations.reservations = append(f.reservations.reservations,
				pickup.NewReservation(slot, fmt.Sprintf("chk_other_%d", i), f.clock.Now()))
		}
		f.clock.Add(16 * time.Minute) // all holds lapse

		result, err := f.commands.SelectSlot(ctx, f.session.ID, SelectPickupSlotRequest{SlotID: slot.ID}, "key-1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		for i := 0; i < slot.Capacity; i++ {
			assert.Equal(t, pickup.StatusExpired, f.reservations.reservations[i].Status())
		}
	})

	t.Run("unknown slot id", func(t *testing.T) {
		f := newPickupFixture(t)

		_, err := f.commands.SelectSlot(ctx, f.session.ID, SelectPickupSlotRequest{SlotID: "store-1:2026-03-01:midnight"}, "key-1")
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("unknown checkout", func(t *testing.T) {
		f := newPickupFixture(t)
		slot := f.morningSlot(t)

		_, err := f.commands.SelectSlot(ctx, "chk_missing", SelectPickupSlotRequest{SlotID: slot.ID}, "key-1")
		assert.ErrorIs(t, err, ErrCheckoutNotFound)
	})

	t.Run("closed checkout", func(t *testing.T) {
		f := newPickupFixture(t)
		slot := f.morningSlot(t)
		f.session.Status = checkout.StatusCompleted

		_, err := f.commands.SelectSlot(ctx, f.session.ID, SelectPickupSlotRequest{SlotID: slot.ID}, "key-1")
		assert.ErrorIs(t, err, ErrCheckoutClosed)
	})

	t.Run("replay returns the original reservation", func(t *testing.T) {
		f := newPickupFixture(t)
		slot := f.morningSlot(t)
		req := SelectPickupSlotRequest{SlotID: slot.ID}

		first, err := f.commands.SelectSlot(ctx, f.session.ID, req, "key-1")
		require.NoError(t, err)
		second, err := f.commands.SelectSlot(ctx, f.session.ID, req, "key-1")
		require.NoError(t, err)

		assert.True(t, second.Replayed)
		assert.Equal(t, first.Body, second.Body)
		assert.Len(t, f.reservations.reservations, 1, "no second hold is created")
	})
}
