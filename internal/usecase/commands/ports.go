package commands

import (
	"context"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/agentrun"
	"github.com/Fresh-Industries/pantrypal/internal/domain/cart"
	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"
	"github.com/Fresh-Industries/pantrypal/internal/domain/checkout"
	"github.com/Fresh-Industries/pantrypal/internal/domain/pickup"
	"github.com/Fresh-Industries/pantrypal/internal/domain/simulation"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/infra/repository"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"

	"github.com/google/uuid"
)

// SimulationInput is the optional per-request simulation block. Zero
// values fall back to the server-side defaults.
type SimulationInput struct {
	Seed                       string `json:"seed"`
	Volatility                 string `json:"volatility"`
	DriftMagnitude             string `json:"driftMagnitude"`
	SubstitutionAggressiveness string `json:"substitutionAggressiveness"`
}

func (s SimulationInput) Resolve(defaults config.SimulationConfig) simulation.Config {
	return simulation.Profile{
		Volatility:     s.Volatility,
		DriftMagnitude: s.DriftMagnitude,
		Aggressiveness: s.SubstitutionAggressiveness,
	}.Resolve(simulation.Profile{
		Volatility:     defaults.Volatility,
		DriftMagnitude: defaults.DriftMagnitude,
		Aggressiveness: defaults.Aggressiveness,
	})
}

// MerchantGateway is the simulated merchant boundary: quoted prices may
// drift and reservations may fail, both deterministically per seed.
type MerchantGateway interface {
	QuotePrice(seed string, stage simulation.Stage, productID string, baseCents int, cfg simulation.Config) int
	ReserveStock(ctx context.Context, tx db.DBTX, seed string, stage simulation.Stage, productID string, units int, cfg simulation.Config) (bool, error)
	InStock(ctx context.Context, tx db.DBTX, seed string, stage simulation.Stage, productID string, cfg simulation.Config) (bool, error)
	RestockItems(ctx context.Context, tx db.DBTX, items map[string]int) error
	SlotExpires(seed, slotID string, cfg simulation.Config) bool
}

// Matcher resolves an ingredient to ranked product candidates. The rank
// order is binding downstream; the negotiator never re-sorts it.
type Matcher interface {
	ResolveCandidates(ctx context.Context, ingredient string, limit int) ([]catalog.Candidate, error)
}

type PickupReservationRepo interface {
	LockSlot(ctx context.Context, tx db.DBTX, slotID string) error
	ExpireLapsed(ctx context.Context, tx db.DBTX, slotID string, now time.Time) (int64, error)
	CountActive(ctx context.Context, tx db.DBTX, slotID string) (int, error)
	Create(ctx context.Context, tx db.DBTX, res *pickup.Reservation) error
	Save(ctx context.Context, tx db.DBTX, res *pickup.Reservation) error
	FindActiveByCheckout(ctx context.Context, tx db.DBTX, checkoutID string) (*pickup.Reservation, error)
	ReleaseActiveByCheckout(ctx context.Context, tx db.DBTX, checkoutID string) error
}

type IdempotencyRepo interface {
	LockKey(ctx context.Context, tx db.DBTX, key string) error
	Find(ctx context.Context, tx db.DBTX, key string) (*repository.IdempotencyRecord, error)
	Store(ctx context.Context, tx db.DBTX, key, requestHash string, status int, body []byte) error
}

type CartDraftRepo interface {
	Create(ctx context.Context, tx db.DBTX, d *cart.Draft) error
	Save(ctx context.Context, tx db.DBTX, d *cart.Draft) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*cart.Draft, error)
}

type AgentRunRepo interface {
	Create(ctx context.Context, tx db.DBTX, run *agentrun.Run) error
	Save(ctx context.Context, tx db.DBTX, run *agentrun.Run) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*agentrun.Run, error)
	AppendStepLog(ctx context.Context, tx db.DBTX, step *agentrun.StepLog) error
}

type ApprovalRepo interface {
	Create(ctx context.Context, tx db.DBTX, a *agentrun.Approval) error
	Settle(ctx context.Context, tx db.DBTX, a *agentrun.Approval) error
	LatestApproved(ctx context.Context, tx db.DBTX, runID uuid.UUID) (*agentrun.Approval, error)
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*agentrun.Approval, error)
}

type CheckoutRepo interface {
	CreateSession(ctx context.Context, tx db.DBTX, s *checkout.Session) error
	SaveSession(ctx context.Context, tx db.DBTX, s *checkout.Session) error
	FindSession(ctx context.Context, tx db.DBTX, id string) (*checkout.Session, error)
	CreateOrder(ctx context.Context, tx db.DBTX, o *checkout.Order) error
}
