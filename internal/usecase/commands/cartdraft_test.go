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
	"github.com/Fresh-Industries/pantrypal/internal/pkg/clock"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"
	"github.com/Fresh-Industries/pantrypal/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatcher struct {
	candidates map[string][]catalog.Candidate
}

func (m *fakeMatcher) ResolveCandidates(_ context.Context, ingredient string, limit int) ([]catalog.Candidate, error) {
	cs := m.candidates[ingredient]
	if len(cs) > limit {
		cs = cs[:limit]
	}
	return cs, nil
}

type draftFixture struct {
	commands  CartDraftCommands
	drafts    *fakeDraftRepo
	runs      *fakeRunRepo
	approvals *fakeApprovalRepo
	matcher   *fakeMatcher
	run       *agentrun.Run
}

func newDraftFixture(t *testing.T) *draftFixture {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	f := &draftFixture{
		drafts:    newFakeDraftRepo(),
		runs:      newFakeRunRepo(),
		approvals: &fakeApprovalRepo{},
		matcher:   &fakeMatcher{candidates: map[string][]catalog.Candidate{}},
	}

	f.run = &agentrun.Run{ID: uuid.New(), State: agentrun.StateResolveIngredients, CreatedAt: now, UpdatedAt: now}
	f.runs.runs[f.run.ID] = f.run

	guard := &IdempotencyGuard{repo: newFakeIdempotencyRepo(), db: &fakeBeginner{}}
	f.commands = NewCartDraftCommands(
		f.drafts, f.runs, f.approvals, f.matcher, guard,
		config.SimulationConfig{Volatility: "medium", DriftMagnitude: "medium", Aggressiveness: "balanced"},
		clock.NewMockClock(now),
	)
	return f
}

func defaultPolicy() cart.SubstitutionPolicy {
	return cart.SubstitutionPolicy{
		AllowSubs:                   true,
		MaxDeltaPerItemCents:        300,
		MaxCartIncreaseCents:        1000,
		RequireReapprovalAboveCents: 500,
	}
}

func TestCreateDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves every ingredient and binds the run", func(t *testing.T) {
		f := newDraftFixture(t)
		f.matcher.candidates["chicken breast"] = []catalog.Candidate{
			builder.NewCandidate(builder.NewProduct("sku-chicken", 899), 1),
			builder.NewCandidate(builder.NewProduct("sku-chicken-thigh", 799), 2),
		}

		req := CreateCartDraftRequest{
			AgentRunID: &f.run.ID,
			RecipeID:   "recipe-1",
			Servings:   2,
			Ingredients: []IngredientInput{
				{Key: "chicken_breast", Name: "chicken breast", Quantity: 1, Unit: "lb"},
			},
			Policy: defaultPolicy(),
		}

		result, err := f.commands.CreateDraft(ctx, req, "key-1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		var view CartDraftView
		require.NoError(t, json.Unmarshal(result.Body, &view))
		require.Len(t, view.Lines, 1)
		assert.Equal(t, "sku-chicken", view.Lines[0].Primary.ID)
		assert.Len(t, view.Lines[0].Alternatives, 1)
		assert.Equal(t, 899, view.SubtotalCents)
		assert.NotEmpty(t, view.CartHash)
		assert.NotEmpty(t, view.QuoteHash)
		assert.NotEqual(t, view.CartHash, view.QuoteHash)

		assert.Equal(t, agentrun.StateBuildCartDraft, f.run.State)
		require.NotNil(t, f.run.CartDraftID)
		require.Len(t, f.drafts.drafts, 1)
	})

	t.Run("identical carts produce identical hashes", func(t *testing.T) {
		f := newDraftFixture(t)
		f.matcher.candidates["milk"] = []catalog.Candidate{
			builder.NewCandidate(builder.NewProduct("sku-milk", 400), 1),
		}

		req := CreateCartDraftRequest{
			RecipeID:    "recipe-1",
			Ingredients: []IngredientInput{{Key: "milk", Name: "milk", Quantity: 2}},
			Policy:      defaultPolicy(),
		}

		first, err := f.commands.CreateDraft(ctx, req, "key-1")
		require.NoError(t, err)
		second, err := f.commands.CreateDraft(ctx, req, "key-2")
		require.NoError(t, err)

		var a, b CartDraftView
		require.NoError(t, json.Unmarshal(first.Body, &a))
		require.NoError(t, json.Unmarshal(second.Body, &b))
		assert.Equal(t, a.CartHash, b.CartHash)
		assert.Equal(t, a.QuoteHash, b.QuoteHash)
	})

	t.Run("zero-inventory primary heals in the precheck", func(t *testing.T) {
		f := newDraftFixture(t)
		gone := builder.NewProduct("sku-gone", 899)
		gone.InventoryQuantity = 0
		f.matcher.candidates["eggs"] = []catalog.Candidate{
			builder.NewCandidate(gone, 1),
			builder.NewCandidate(builder.NewProduct("sku-eggs-alt", 949), 2),
		}

		req := CreateCartDraftRequest{
			AgentRunID:  &f.run.ID,
			RecipeID:    "recipe-1",
			Ingredients: []IngredientInput{{Key: "eggs", Name: "eggs", Quantity: 1}},
			Policy:      defaultPolicy(),
		}

		result, err := f.commands.CreateDraft(ctx, req, "key-1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, result.Status)

		var view CartDraftView
		require.NoError(t, json.Unmarshal(result.Body, &view))
		assert.Equal(t, "sku-eggs-alt", view.Lines[0].Primary.ID)
		require.NotNil(t, view.Negotiation)
		assert.Equal(t, "auto", string(view.Negotiation.Action))
		assert.Equal(t, "inventory_precheck", view.Negotiation.Reason)
	})

	t.Run("unhealable precheck escalates to approval", func(t *testing.T) {
		f := newDraftFixture(t)
		gone := builder.NewProduct("sku-gone", 899)
		gone.InventoryQuantity = 0
		pricey := builder.NewProduct("sku-pricey", 899+5000)
		f.matcher.candidates["saffron"] = []catalog.Candidate{
			builder.NewCandidate(gone, 1),
			builder.NewCandidate(pricey, 2),
		}

		req := CreateCartDraftRequest{
			AgentRunID:  &f.run.ID,
			RecipeID:    "recipe-1",
			Ingredients: []IngredientInput{{Key: "saffron", Name: "saffron", Quantity: 1}},
			Policy:      defaultPolicy(),
		}

		result, err := f.commands.CreateDraft(ctx, req, "key-1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, result.Status)

		assert.Equal(t, agentrun.StateAwaitingApproval, f.run.State)
		require.Len(t, f.approvals.approvals, 1)
		assert.Equal(t, agentrun.ApprovalPending, f.approvals.approvals[0].Status)
	})

	t.Run("ingredient without candidates is rejected", func(t *testing.T) {
		f := newDraftFixture(t)

		req := CreateCartDraftRequest{
			RecipeID:    "recipe-1",
			Ingredients: []IngredientInput{{Key: "unobtainium", Name: "unobtainium", Quantity: 1}},
			Policy:      defaultPolicy(),
		}

		_, err := f.commands.CreateDraft(ctx, req, "key-1")
		assert.ErrorIs(t, err, ErrNoCandidates)
	})

	t.Run("update re-resolves lines and restamps hashes", func(t *testing.T) {
		f := newDraftFixture(t)
		f.matcher.candidates["milk"] = []catalog.Candidate{
			builder.NewCandidate(builder.NewProduct("sku-milk", 400), 1),
		}
		f.matcher.candidates["eggs"] = []catalog.Candidate{
			builder.NewCandidate(builder.NewProduct("sku-eggs", 299), 1),
		}

		created, err := f.commands.CreateDraft(ctx, CreateCartDraftRequest{
			RecipeID:    "recipe-1",
			Ingredients: []IngredientInput{{Key: "milk", Name: "milk", Quantity: 1}},
			Policy:      defaultPolicy(),
		}, "key-1")
		require.NoError(t, err)
		var before CartDraftView
		require.NoError(t, json.Unmarshal(created.Body, &before))

		draftID, err := uuid.Parse(before.ID)
		require.NoError(t, err)

		updated, err := f.commands.UpdateDraft(ctx, draftID, UpdateCartDraftRequest{
			Ingredients: []IngredientInput{{Key: "eggs", Name: "eggs", Quantity: 2}},
		}, "key-2")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, updated.Status)

		var after CartDraftView
		require.NoError(t, json.Unmarshal(updated.Body, &after))
		require.Len(t, after.Lines, 1)
		assert.Equal(t, "sku-eggs", after.Lines[0].Primary.ID)
		assert.NotEqual(t, before.CartHash, after.CartHash)
	})

	t.Run("draft bound to a checkout session is locked", func(t *testing.T) {
		f := newDraftFixture(t)
		sessionID := "chk_123"
		draft := builder.NewDraftBuilder().Build()
		draft.CheckoutSessionID = &sessionID
		require.NoError(t, f.drafts.Create(ctx, nil, draft))

		_, err := f.commands.UpdateDraft(ctx, draft.ID, UpdateCartDraftRequest{}, "key-1")
		assert.ErrorIs(t, err, ErrDraftLocked)
	})

	t.Run("updating an unknown draft is rejected", func(t *testing.T) {
		f := newDraftFixture(t)

		_, err := f.commands.UpdateDraft(ctx, uuid.New(), UpdateCartDraftRequest{}, "key-1")
		assert.ErrorIs(t, err, ErrDraftNotFound)
	})

	t.Run("unknown run is rejected", func(t *testing.T) {
		f := newDraftFixture(t)
		f.matcher.candidates["milk"] = []catalog.Candidate{
			builder.NewCandidate(builder.NewProduct("sku-milk", 400), 1),
		}
		missing := uuid.New()

		req := CreateCartDraftRequest{
			AgentRunID:  &missing,
			RecipeID:    "recipe-1",
			Ingredients: []IngredientInput{{Key: "milk", Name: "milk", Quantity: 1}},
			Policy:      defaultPolicy(),
		}

		_, err := f.commands.CreateDraft(ctx, req, "key-1")
		assert.ErrorIs(t, err, ErrRunNotFound)
	})
}
