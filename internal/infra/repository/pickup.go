package repository

import (
	"context"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/pickup"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PickupReservationRepository persists slot holds. Capacity checks are
// races unless the caller serializes per slot, so every reserve path must
// take LockSlot first inside its transaction.
type PickupReservationRepository struct {
	db db.DBTX
}

func NewPickupReservationRepository(dbtx db.DBTX) *PickupReservationRepository {
	return &PickupReservationRepository{db: dbtx}
}

// LockSlot takes a transaction-scoped advisory lock keyed by slot ID.
// Released automatically at commit or rollback.
func (r *PickupReservationRepository) LockSlot(ctx context.Context, tx db.DBTX, slotID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, slotID); err != nil {
		return infra.WrapRepoErr("failed to lock pickup slot", err)
	}
	return nil
}

// ExpireLapsed sweeps RESERVED rows whose hold window passed. Expiry is
// lazy: it runs at the head of every reserve and confirm, never on a timer.
func (r *PickupReservationRepository) ExpireLapsed(ctx context.Context, tx db.DBTX, slotID string, now time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE pickup_reservations
		SET status = 'EXPIRED'
		WHERE slot_id = $1 AND status = 'RESERVED' AND expires_at <= $2`,
		slotID, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire lapsed reservations", err)
	}
	return tag.RowsAffected(), nil
}

// CountActive counts reservations occupying slot capacity.
func (r *PickupReservationRepository) CountActive(ctx context.Context, tx db.DBTX, slotID string) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
		SELECT count(*) FROM pickup_reservations
		WHERE slot_id = $1 AND status IN ('RESERVED', 'CONFIRMED')`,
		slotID).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count active reservations", err)
	}
	return count, nil
}

func (r *PickupReservationRepository) Create(ctx context.Context, tx db.DBTX, res *pickup.Reservation) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO pickup_reservations (id, slot_id, checkout_id, order_id, status, reserved_at, expires_at, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		res.ID(), res.SlotID(), res.CheckoutID(), res.OrderID(),
		string(res.Status()), res.ReservedAt(), res.ExpiresAt(), res.ConfirmedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

// Save persists the current state of an existing reservation.
func (r *PickupReservationRepository) Save(ctx context.Context, tx db.DBTX, res *pickup.Reservation) error {
	tag, err := tx.Exec(ctx, `
		UPDATE pickup_reservations
		SET status = $2, order_id = $3, confirmed_at = $4
		WHERE id = $1`,
		res.ID(), string(res.Status()), res.OrderID(), res.ConfirmedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to save reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *PickupReservationRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*pickup.Reservation, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, slot_id, checkout_id, order_id, status, reserved_at, expires_at, confirmed_at
		FROM pickup_reservations
		WHERE id = $1`, id)
	return scanReservation(row)
}

// FindActiveByCheckout returns the checkout's live hold, if any. A
// checkout keeps at most one active reservation.
func (r *PickupReservationRepository) FindActiveByCheckout(ctx context.Context, tx db.DBTX, checkoutID string) (*pickup.Reservation, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, slot_id, checkout_id, order_id, status, reserved_at, expires_at, confirmed_at
		FROM pickup_reservations
		WHERE checkout_id = $1 AND status IN ('RESERVED', 'CONFIRMED')
		ORDER BY reserved_at DESC
		LIMIT 1`, checkoutID)
	return scanReservation(row)
}

// ReleaseActiveByCheckout releases a checkout's RESERVED holds, used when
// the agent re-selects a different slot for the same checkout.
func (r *PickupReservationRepository) ReleaseActiveByCheckout(ctx context.Context, tx db.DBTX, checkoutID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE pickup_reservations
		SET status = 'RELEASED'
		WHERE checkout_id = $1 AND status = 'RESERVED'`, checkoutID)
	if err != nil {
		return infra.WrapRepoErr("failed to release reservations", err)
	}
	return nil
}

func scanReservation(row pgx.Row) (*pickup.Reservation, error) {
	var (
		id          uuid.UUID
		slotID      string
		checkoutID  string
		orderID     *string
		status      string
		reservedAt  time.Time
		expiresAt   time.Time
		confirmedAt *time.Time
	)
	err := row.Scan(&id, &slotID, &checkoutID, &orderID, &status, &reservedAt, &expiresAt, &confirmedAt)
	if err == pgx.ErrNoRows {
		return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
	}
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan reservation", err)
	}
	return pickup.ReconstructReservation(id, slotID, checkoutID, orderID, pickup.Status(status), reservedAt, expiresAt, confirmedAt), nil
}
