//go:build unit

package commands

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/agentrun"
	"github.com/Fresh-Industries/pantrypal/internal/domain/cart"
	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"
	"github.com/Fresh-Industries/pantrypal/internal/domain/checkout"
	"github.com/Fresh-Industries/pantrypal/internal/domain/pickup"
	"github.com/Fresh-Industries/pantrypal/internal/domain/simulation"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/infra/repository"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/clock"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"
	"github.com/Fresh-Industries/pantrypal/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// In-memory fakes for the command ports. The guard's transaction is a
// stub; state lives in the fakes themselves, so "committed" simply means
// the guarded function returned without error.
// ---------------------------------------------------------------------------

type fakeTx struct {
	pgx.Tx
	committed bool
}

func (t *fakeTx) Commit(context.Context) error { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	return nil
}

type fakeBeginner struct{ tx *fakeTx }

func (b *fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	b.tx = &fakeTx{}
	return b.tx, nil
}

func notFound() error {
	return infra.WrapRepoErr("no rows", pgx.ErrNoRows, infra.KindNotFound)
}

type fakeIdempotencyRepo struct {
	records map[string]*repository.IdempotencyRecord
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{records: map[string]*repository.IdempotencyRecord{}}
}

func (f *fakeIdempotencyRepo) LockKey(context.Context, db.DBTX, string) error { return nil }

func (f *fakeIdempotencyRepo) Find(_ context.Context, _ db.DBTX, key string) (*repository.IdempotencyRecord, error) {
	rec, ok := f.records[key]
	if !ok {
		return nil, notFound()
	}
	return rec, nil
}

func (f *fakeIdempotencyRepo) Store(_ context.Context, _ db.DBTX, key, requestHash string, status int, body []byte) error {
	f.records[key] = &repository.IdempotencyRecord{
		Key:            key,
		RequestHash:    requestHash,
		ResponseStatus: status,
		ResponseBody:   body,
		CreatedAt:      time.Now(),
	}
	return nil
}

type fakeCheckoutRepo struct {
	sessions map[string]*checkout.Session
	orders   map[string]*checkout.Order
}

func newFakeCheckoutRepo() *fakeCheckoutRepo {
	return &fakeCheckoutRepo{sessions: map[string]*checkout.Session{}, orders: map[string]*checkout.Order{}}
}

func (f *fakeCheckoutRepo) CreateSession(_ context.Context, _ db.DBTX, s *checkout.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeCheckoutRepo) SaveSession(_ context.Context, _ db.DBTX, s *checkout.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeCheckoutRepo) FindSession(_ context.Context, _ db.DBTX, id string) (*checkout.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, notFound()
	}
	return s, nil
}

func (f *fakeCheckoutRepo) CreateOrder(_ context.Context, _ db.DBTX, o *checkout.Order) error {
	f.orders[o.ID] = o
	return nil
}

type fakeDraftRepo struct {
	drafts map[uuid.UUID]*cart.Draft
	saves  int
}

func newFakeDraftRepo() *fakeDraftRepo { return &fakeDraftRepo{drafts: map[uuid.UUID]*cart.Draft{}} }

func (f *fakeDraftRepo) Create(_ context.Context, _ db.DBTX, d *cart.Draft) error {
	f.drafts[d.ID] = d
	return nil
}

func (f *fakeDraftRepo) Save(_ context.Context, _ db.DBTX, d *cart.Draft) error {
	f.drafts[d.ID] = d
	f.saves++
	return nil
}

func (f *fakeDraftRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*cart.Draft, error) {
	d, ok := f.drafts[id]
	if !ok {
		return nil, notFound()
	}
	return d, nil
}

type fakeRunRepo struct {
	runs map[uuid.UUID]*agentrun.Run
}

func newFakeRunRepo() *fakeRunRepo { return &fakeRunRepo{runs: map[uuid.UUID]*agentrun.Run{}} }

func (f *fakeRunRepo) Create(_ context.Context, _ db.DBTX, run *agentrun.Run) error {
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRunRepo) Save(_ context.Context, _ db.DBTX, run *agentrun.Run) error {
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRunRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*agentrun.Run, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, notFound()
	}
	return run, nil
}

func (f *fakeRunRepo) AppendStepLog(context.Context, db.DBTX, *agentrun.StepLog) error { return nil }

type fakeApprovalRepo struct {
	approvals []*agentrun.Approval
}

func (f *fakeApprovalRepo) Create(_ context.Context, _ db.DBTX, a *agentrun.Approval) error {
	f.approvals = append(f.approvals, a)
	return nil
}

func (f *fakeApprovalRepo) Settle(_ context.Context, _ db.DBTX, a *agentrun.Approval) error {
	for i, existing := range f.approvals {
		if existing.ID == a.ID && existing.Status == agentrun.ApprovalPending {
			f.approvals[i] = a
			return nil
		}
	}
	return notFound()
}

func (f *fakeApprovalRepo) LatestApproved(_ context.Context, _ db.DBTX, runID uuid.UUID) (*agentrun.Approval, error) {
	for i := len(f.approvals) - 1; i >= 0; i-- {
		a := f.approvals[i]
		if a.AgentRunID == runID && a.Status == agentrun.ApprovalApproved {
			return a, nil
		}
	}
	return nil, notFound()
}

func (f *fakeApprovalRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*agentrun.Approval, error) {
	for _, a := range f.approvals {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, notFound()
}

type fakeReservationRepo struct {
	reservations []*pickup.Reservation
}

func (f *fakeReservationRepo) LockSlot(context.Context, db.DBTX, string) error { return nil }

func (f *fakeReservationRepo) ExpireLapsed(_ context.Context, _ db.DBTX, slotID string, now time.Time) (int64, error) {
	var n int64
	for _, r := range f.reservations {
		if r.SlotID() == slotID && r.LapsedAt(now) {
			_ = r.Expire()
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationRepo) CountActive(_ context.Context, _ db.DBTX, slotID string) (int, error) {
	n := 0
	for _, r := range f.reservations {
		if r.SlotID() == slotID && r.Status().Active() {
			n++
		}
	}
	return n, nil
}

func (f *fakeReservationRepo) Create(_ context.Context, _ db.DBTX, res *pickup.Reservation) error {
	f.reservations = append(f.reservations, res)
	return nil
}

func (f *fakeReservationRepo) Save(_ context.Context, _ db.DBTX, res *pickup.Reservation) error {
	for i, r := range f.reservations {
		if r.ID() == res.ID() {
			f.reservations[i] = res
			return nil
		}
	}
	return notFound()
}

func (f *fakeReservationRepo) FindActiveByCheckout(_ context.Context, _ db.DBTX, checkoutID string) (*pickup.Reservation, error) {
	for i := len(f.reservations) - 1; i >= 0; i-- {
		r := f.reservations[i]
		if r.CheckoutID() == checkoutID && r.Status().Active() {
			return r, nil
		}
	}
	return nil, notFound()
}

func (f *fakeReservationRepo) ReleaseActiveByCheckout(_ context.Context, _ db.DBTX, checkoutID string) error {
	for _, r := range f.reservations {
		if r.CheckoutID() == checkoutID && r.Status() == pickup.StatusReserved {
			_ = r.Release()
		}
	}
	return nil
}

// fakeMerchant rejects the product ids in reject and quotes base price
// plus quoteDelta for everything.
type fakeMerchant struct {
	reject      map[string]bool
	rejectAll   bool
	expireSlots bool
	quoteDelta  int
	restocked   []map[string]int
	reserveCnt  int
}

func (m *fakeMerchant) QuotePrice(_ string, _ simulation.Stage, _ string, baseCents int, _ simulation.Config) int {
	return baseCents + m.quoteDelta
}

func (m *fakeMerchant) ReserveStock(_ context.Context, _ db.DBTX, _ string, _ simulation.Stage, productID string, _ int, _ simulation.Config) (bool, error) {
	m.reserveCnt++
	if m.rejectAll || m.reject[productID] {
		return false, nil
	}
	return true, nil
}

func (m *fakeMerchant) InStock(_ context.Context, _ db.DBTX, _ string, _ simulation.Stage, productID string, _ simulation.Config) (bool, error) {
	return !(m.rejectAll || m.reject[productID]), nil
}

func (m *fakeMerchant) RestockItems(_ context.Context, _ db.DBTX, items map[string]int) error {
	if len(items) > 0 {
		m.restocked = append(m.restocked, items)
	}
	return nil
}

func (m *fakeMerchant) SlotExpires(string, string, simulation.Config) bool { return m.expireSlots }

// ---------------------------------------------------------------------------

type checkoutFixture struct {
	commands     CheckoutCommands
	checkouts    *fakeCheckoutRepo
	drafts       *fakeDraftRepo
	runs         *fakeRunRepo
	approvals    *fakeApprovalRepo
	reservations *fakeReservationRepo
	merchant     *fakeMerchant
	clock        *clock.MockClock
	session      *checkout.Session
	draft        *cart.Draft
	run          *agentrun.Run
}

func newCheckoutFixture(t *testing.T, draft *cart.Draft, merchant *fakeMerchant) *checkoutFixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock := clock.NewMockClock(now)

	f := &checkoutFixture{
		checkouts:    newFakeCheckoutRepo(),
		drafts:       newFakeDraftRepo(),
		runs:         newFakeRunRepo(),
		approvals:    &fakeApprovalRepo{},
		reservations: &fakeReservationRepo{},
		merchant:     merchant,
		clock:        mock,
		draft:        draft,
	}

	run := &agentrun.Run{ID: *draft.AgentRunID, State: agentrun.StateCheckout, CreatedAt: now, UpdatedAt: now}
	f.run = run
	f.runs.runs[run.ID] = run
	f.drafts.drafts[draft.ID] = draft

	session := checkout.NewSession(draft.ID, &run.ID, draft.SubtotalCents(), now)
	f.session = session
	f.checkouts.sessions[session.ID] = session

	profile := pickup.DefaultProfile("store-1", 15, 3)
	slot := profile.SlotsFor(now)[0]
	res := pickup.NewReservation(slot, session.ID, now)
	f.reservations.reservations = append(f.reservations.reservations, res)

	guard := &IdempotencyGuard{repo: newFakeIdempotencyRepo(), db: &fakeBeginner{}}
	f.commands = NewCheckoutCommands(
		f.checkouts, f.drafts, f.runs, f.approvals, f.reservations, f.merchant, guard,
		config.PickupConfig{HoldMinutes: 15, DaysAhead: 3},
		config.SimulationConfig{Volatility: "medium", DriftMagnitude: "medium", Aggressiveness: "balanced"},
		config.HealerConfig{MaxAttempts: 3},
		mock,
	)
	return f
}

func completeBody(t *testing.T, result *GuardResult) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(result.Body, &body))
	return body
}

func TestCompleteCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("clean run completes on the first attempt", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{})

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		body := completeBody(t, result)
		assert.Equal(t, "COMPLETED", body["status"])
		assert.EqualValues(t, 1, body["attempts"])
		assert.NotEmpty(t, body["orderId"])

		assert.Equal(t, checkout.StatusCompleted, f.session.Status)
		assert.Equal(t, agentrun.StateOrderCreated, f.run.State)
		assert.Equal(t, pickup.StatusConfirmed, f.reservations.reservations[0].Status())
		require.Len(t, f.checkouts.orders, 1)
	})

	t.Run("out-of-stock line heals automatically then succeeds", func(t *testing.T) {
		primary := builder.NewProduct("sku-rejected", 899)
		alt := builder.NewCandidate(builder.NewProduct("sku-alt", 949), 1)
		line := builder.NewLineItem("chicken_breast", primary, 1)
		line.Alternatives = []catalog.Candidate{alt}
		draft := builder.NewDraftBuilder().WithLines(line).Build()

		f := newCheckoutFixture(t, draft, &fakeMerchant{reject: map[string]bool{"sku-rejected": true}})

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-2")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		body := completeBody(t, result)
		assert.EqualValues(t, 2, body["attempts"])
		healed, _ := body["healed"].([]any)
		require.Len(t, healed, 1)

		assert.Equal(t, "sku-alt", f.draft.Lines[0].Primary.ID, "healed primary persists on the draft")
		assert.GreaterOrEqual(t, f.drafts.saves, 1, "healed draft is persisted before the retry")
	})

	t.Run("rejection is healed only with replacements the merchant can fill", func(t *testing.T) {
		primary := builder.NewProduct("sku-gone", 899)
		stale := builder.NewCandidate(builder.NewProduct("sku-listed-but-empty", 899), 1)
		onShelf := builder.NewCandidate(builder.NewProduct("sku-on-shelf", 949), 2)
		line := builder.NewLineItem("chicken_breast", primary, 1)
		line.Alternatives = []catalog.Candidate{stale, onShelf}
		draft := builder.NewDraftBuilder().WithLines(line).Build()

		// The best-ranked alternative reads as in stock on the draft but
		// the merchant cannot fill it either.
		f := newCheckoutFixture(t, draft, &fakeMerchant{reject: map[string]bool{
			"sku-gone":             true,
			"sku-listed-but-empty": true,
		}})

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-12")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		body := completeBody(t, result)
		assert.EqualValues(t, 2, body["attempts"], "the stale candidate is never attempted")
		assert.Equal(t, "sku-on-shelf", f.draft.Lines[0].Primary.ID)
	})

	t.Run("healing exhausts after max attempts and surfaces the draft", func(t *testing.T) {
		primary := builder.NewProduct("sku-cursed", 899)
		alt := builder.NewCandidate(builder.NewProduct("sku-also-cursed", 899), 1)
		line := builder.NewLineItem("chicken_breast", primary, 1)
		line.Alternatives = []catalog.Candidate{alt}
		draft := builder.NewDraftBuilder().WithLines(line).Build()

		f := newCheckoutFixture(t, draft, &fakeMerchant{rejectAll: true})

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-3")
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, result.Status)

		body := completeBody(t, result)
		assert.Equal(t, CodeOutOfStock, body["code"])
		assert.NotEmpty(t, body["itemId"])
		cartDraft, _ := body["cartDraft"].(map[string]any)
		require.NotNil(t, cartDraft, "the last persisted draft rides along")
		assert.Equal(t, draft.ID.String(), cartDraft["id"])
		draftLines, _ := cartDraft["lines"].([]any)
		require.Len(t, draftLines, 1)

		assert.Equal(t, checkout.StatusOpen, f.session.Status, "session stays open for another try")
		assert.Equal(t, 3, f.session.Attempts)
		assert.Equal(t, 3, f.merchant.reserveCnt, "checkout creation is attempted at most three times")
		assert.Equal(t, agentrun.StateCheckout, f.run.State, "run is not failed")
		assert.Empty(t, f.checkouts.orders, "no order on exhaustion")

		// Stock comes back; the agent retries with a fresh key.
		f.merchant.rejectAll = false
		retry, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-3b")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, retry.Status)
	})

	t.Run("lapsed reservation is replaced with the next open slot", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{})
		original := f.reservations.reservations[0]
		f.clock.Add(20 * time.Minute) // past the 15 minute hold

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-4")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		body := completeBody(t, result)
		assert.Equal(t, "COMPLETED", body["status"])
		assert.NotEqual(t, original.SlotID(), body["slotId"], "completion moved to a different slot")

		assert.Equal(t, pickup.StatusExpired, original.Status())
		require.Len(t, f.reservations.reservations, 2)
		assert.Equal(t, pickup.StatusConfirmed, f.reservations.reservations[1].Status())
		require.NotNil(t, f.session.SlotID)
		assert.Equal(t, f.reservations.reservations[1].SlotID(), *f.session.SlotID)
		assert.Empty(t, f.merchant.restocked, "stock stays reserved through the retry")
	})

	t.Run("simulated expiry on the retry slot surfaces the conflict", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{expireSlots: true})

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{Simulation: SimulationInput{Seed: "run-42"}}, "key-5")
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, result.Status)
		assert.Equal(t, CodePickupSlotExpired, completeBody(t, result)["code"])

		require.Len(t, f.reservations.reservations, 2, "one automatic retry, no more")
		assert.Equal(t, pickup.StatusExpired, f.reservations.reservations[0].Status())
		assert.Equal(t, pickup.StatusExpired, f.reservations.reservations[1].Status())
		assert.Equal(t, checkout.StatusOpen, f.session.Status)
		require.Len(t, f.merchant.restocked, 1, "reserved stock is returned")
	})

	t.Run("missing reservation fails with slot required", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{})
		f.reservations.reservations = nil

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-6")
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, result.Status)
		assert.Equal(t, CodePickupSlotRequired, completeBody(t, result)["code"])
	})

	t.Run("run awaiting approval blocks completion", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{})
		f.run.State = agentrun.StateAwaitingApproval

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-7")
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, result.Status)
		assert.Equal(t, CodeApprovalRequired, completeBody(t, result)["code"])
	})

	t.Run("price drift past the approved total escalates", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build() // one line, 899, threshold 500
		f := newCheckoutFixture(t, draft, &fakeMerchant{quoteDelta: 600})

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-8")
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, result.Status)

		body := completeBody(t, result)
		assert.Equal(t, CodeApprovalRequired, body["code"])
		assert.NotEmpty(t, body["approvalId"])
		assert.Equal(t, agentrun.StateAwaitingApproval, f.run.State)
		require.Len(t, f.approvals.approvals, 1)
		assert.Equal(t, agentrun.ApprovalPending, f.approvals.approvals[0].Status)
	})

	t.Run("price drift inside the approved bound completes", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{quoteDelta: 400})

		result, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-9")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		body := completeBody(t, result)
		assert.EqualValues(t, draft.SubtotalCents()+400, body["totalCents"])
	})

	t.Run("unknown checkout id", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{})

		_, err := f.commands.Complete(ctx, "chk_missing", CompleteCheckoutRequest{}, "key-10")
		assert.ErrorIs(t, err, ErrCheckoutNotFound)
	})

	t.Run("closed checkout rejects completion", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{})
		f.session.Status = checkout.StatusCompleted

		_, err := f.commands.Complete(ctx, f.session.ID, CompleteCheckoutRequest{}, "key-11")
		assert.ErrorIs(t, err, ErrCheckoutClosed)
	})
}

func TestStartCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a session bound to the run's draft", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{})
		f.run.State = agentrun.StateQuoteCart
		f.run.CartDraftID = &draft.ID

		result, err := f.commands.StartCheckout(ctx, f.run.ID, StartCheckoutRequest{}, "key-start-1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		body := completeBody(t, result)
		assert.Equal(t, "OPEN", body["status"])
		assert.EqualValues(t, draft.SubtotalCents(), body["subtotalCents"])
		assert.Equal(t, agentrun.StateCheckout, f.run.State)
		require.NotNil(t, f.draft.CheckoutSessionID)
	})

	t.Run("run without a draft is rejected", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{})
		f.run.CartDraftID = nil

		_, err := f.commands.StartCheckout(ctx, f.run.ID, StartCheckoutRequest{}, "key-start-2")
		assert.ErrorIs(t, err, ErrRunHasNoDraft)
	})

	t.Run("unknown run", func(t *testing.T) {
		draft := builder.NewDraftBuilder().Build()
		f := newCheckoutFixture(t, draft, &fakeMerchant{})

		_, err := f.commands.StartCheckout(ctx, uuid.New(), StartCheckoutRequest{}, "key-start-3")
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}
