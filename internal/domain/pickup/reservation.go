package pickup

import (
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrNotReserved     = errs.New("reservation is not in reserved state")
	ErrAlreadyTerminal = errs.New("reservation already in a terminal state")
)

type Status string

const (
	StatusReserved  Status = "RESERVED"
	StatusConfirmed Status = "CONFIRMED"
	StatusExpired   Status = "EXPIRED"
	StatusReleased  Status = "RELEASED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusReserved, StatusConfirmed, StatusExpired, StatusReleased:
		return true
	default:
		return false
	}
}

// Active means the reservation occupies slot capacity.
func (s Status) Active() bool {
	return s == StatusReserved || s == StatusConfirmed
}

// Reservation is one checkout's hold on a pickup slot. Lifecycle is
// RESERVED -> {CONFIRMED, EXPIRED, RELEASED}; only RESERVED rows may
// transition, and expiry transitions are idempotent.
type Reservation struct {
	id          uuid.UUID
	slotID      string
	checkoutID  string
	orderID     *string
	status      Status
	reservedAt  time.Time
	expiresAt   time.Time
	confirmedAt *time.Time
}

func NewReservation(slot Slot, checkoutID string, now time.Time) *Reservation {
	return &Reservation{
		id:         uuid.New(),
		slotID:     slot.ID,
		checkoutID: checkoutID,
		status:     StatusReserved,
		reservedAt: now,
		expiresAt:  now.Add(time.Duration(slot.HoldMinutes) * time.Minute),
	}
}

func ReconstructReservation(
	id uuid.UUID,
	slotID, checkoutID string,
	orderID *string,
	status Status,
	reservedAt, expiresAt time.Time,
	confirmedAt *time.Time,
) *Reservation {
	return &Reservation{
		id:          id,
		slotID:      slotID,
		checkoutID:  checkoutID,
		orderID:     orderID,
		status:      status,
		reservedAt:  reservedAt,
		expiresAt:   expiresAt,
		confirmedAt: confirmedAt,
	}
}

// LapsedAt reports whether the hold window has passed at now.
func (r *Reservation) LapsedAt(now time.Time) bool {
	return r.status == StatusReserved && !now.Before(r.expiresAt)
}

// Expire marks the row EXPIRED. Re-applying to an already expired row is
// a no-op, which lets wall-clock and simulated expiry stack safely.
func (r *Reservation) Expire() error {
	switch r.status {
	case StatusExpired:
		return nil
	case StatusReserved:
		r.status = StatusExpired
		return nil
	default:
		return ErrAlreadyTerminal
	}
}

func (r *Reservation) Release() error {
	if r.status != StatusReserved {
		return ErrNotReserved
	}
	r.status = StatusReleased
	return nil
}

func (r *Reservation) Confirm(orderID string, now time.Time) error {
	if r.status != StatusReserved {
		return ErrNotReserved
	}
	r.status = StatusConfirmed
	r.orderID = &orderID
	t := now
	r.confirmedAt = &t
	return nil
}

func (r *Reservation) ID() uuid.UUID          { return r.id }
func (r *Reservation) SlotID() string         { return r.slotID }
func (r *Reservation) CheckoutID() string     { return r.checkoutID }
func (r *Reservation) OrderID() *string       { return r.orderID }
func (r *Reservation) Status() Status         { return r.status }
func (r *Reservation) ReservedAt() time.Time  { return r.reservedAt }
func (r *Reservation) ExpiresAt() time.Time   { return r.expiresAt }
func (r *Reservation) ConfirmedAt() *time.Time { return r.confirmedAt }
