package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/checkout"
	"github.com/Fresh-Industries/pantrypal/internal/domain/pickup"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/clock"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/errs"
)

var (
	ErrSlotNotFound     = errs.New("pickup slot not found")
	ErrSlotFull         = errs.New("pickup slot is at capacity")
	ErrSlotExpired      = errs.New("pickup slot reservation expired")
	ErrSlotRequired     = errs.New("checkout has no pickup slot reserved")
	ErrCheckoutNotFound = errs.New("checkout session not found")
	ErrCheckoutClosed   = errs.New("checkout session is not open")
)

type SelectPickupSlotRequest struct {
	SlotID     string          `json:"slotId"`
	Simulation SimulationInput `json:"simulation,omitzero"`
}

type ReservationView struct {
	ReservationID string    `json:"reservationId"`
	SlotID        string    `json:"slotId"`
	CheckoutID    string    `json:"checkoutId"`
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type PickupCommands interface {
	SelectSlot(ctx context.Context, checkoutID string, req SelectPickupSlotRequest, idempotencyKey string) (*GuardResult, error)
}

type pickupCommandsImpl struct {
	reservations PickupReservationRepo
	checkouts    CheckoutRepo
	guard        *IdempotencyGuard
	profile      func(storeID string) pickup.StoreProfile
	clock        clock.Clock
}

func NewPickupCommands(
	reservations PickupReservationRepo,
	checkouts CheckoutRepo,
	guard *IdempotencyGuard,
	cfg config.PickupConfig,
	clk clock.Clock,
) PickupCommands {
	return &pickupCommandsImpl{
		reservations: reservations,
		checkouts:    checkouts,
		guard:        guard,
		profile: func(storeID string) pickup.StoreProfile {
			return pickup.DefaultProfile(storeID, cfg.HoldMinutes, cfg.DaysAhead)
		},
		clock: clk,
	}
}

// SelectSlot reserves a pickup slot for a checkout. The whole operation
// runs under the idempotency guard and the slot's advisory lock, so
// capacity can never be oversold even under concurrent selection.
func (p *pickupCommandsImpl) SelectSlot(ctx context.Context, checkoutID string, req SelectPickupSlotRequest, idempotencyKey string) (*GuardResult, error) {
	return p.guard.Execute(ctx, idempotencyKey, req, func(ctx context.Context, tx db.DBTX) (int, any, error) {
		session, err := p.checkouts.FindSession(ctx, tx, checkoutID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return 0, nil, ErrCheckoutNotFound
			}
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if session.Status != checkout.StatusOpen {
			return 0, nil, ErrCheckoutClosed
		}

		storeID := storeFromSlotID(req.SlotID)
		slot, err := p.profile(storeID).SlotByID(req.SlotID)
		if err != nil {
			return 0, nil, ErrSlotNotFound
		}

		res, err := reserveSlot(ctx, tx, p.reservations, slot, checkoutID, p.clock.Now())
		if err != nil {
			return 0, nil, err
		}

		session.SlotID = &slot.ID
		session.UpdatedAt = p.clock.Now()
		if err := p.checkouts.SaveSession(ctx, tx, session); err != nil {
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		return http.StatusCreated, &ReservationView{
			ReservationID: res.ID().String(),
			SlotID:        res.SlotID(),
			CheckoutID:    res.CheckoutID(),
			Status:        string(res.Status()),
			ExpiresAt:     res.ExpiresAt(),
		}, nil
	})
}

// reserveSlot is the capacity-bounded reserve step shared by slot
// selection and the healer's internals. Caller must be inside a
// transaction; the advisory lock serializes writers per slot.
func reserveSlot(ctx context.Context, tx db.DBTX, repo PickupReservationRepo, slot pickup.Slot, checkoutID string, now time.Time) (*pickup.Reservation, error) {
	if err := repo.LockSlot(ctx, tx, slot.ID); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if _, err := repo.ExpireLapsed(ctx, tx, slot.ID, now); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Selecting the slot the checkout already holds is a no-op: the
	// existing reservation comes back unchanged, hold window included.
	// A hold on a different slot is freed before the capacity check.
	existing, err := repo.FindActiveByCheckout(ctx, tx, checkoutID)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if existing != nil && existing.Status() == pickup.StatusReserved {
		if existing.SlotID() == slot.ID {
			return existing, nil
		}
		if err := repo.ReleaseActiveByCheckout(ctx, tx, checkoutID); err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	active, err := repo.CountActive(ctx, tx, slot.ID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if active >= slot.Capacity {
		return nil, ErrSlotFull
	}

	res := pickup.NewReservation(slot, checkoutID, now)
	if err := repo.Create(ctx, tx, res); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return res, nil
}

// storeFromSlotID pulls the store segment off a "store:date:window" id.
func storeFromSlotID(slotID string) string {
	for i := 0; i < len(slotID); i++ {
		if slotID[i] == ':' {
			return slotID[:i]
		}
	}
	return slotID
}
