package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/Fresh-Industries/pantrypal/internal/domain/agentrun"
	"github.com/Fresh-Industries/pantrypal/internal/domain/cart"
	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"
	"github.com/Fresh-Industries/pantrypal/internal/domain/replacement"
	"github.com/Fresh-Industries/pantrypal/internal/domain/simulation"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/canonical"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/clock"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrRunNotFound   = errs.New("agent run not found")
	ErrNoCandidates  = errs.New("no candidates found for ingredient")
	ErrDraftNotFound = errs.New("cart draft not found")
	ErrDraftLocked   = errs.New("cart draft is bound to a checkout session")
)

type IngredientInput struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

type CreateCartDraftRequest struct {
	AgentRunID         *uuid.UUID              `json:"agentRunId,omitempty"`
	RecipeID           string                  `json:"recipeId"`
	Servings           int                     `json:"servings"`
	Ingredients        []IngredientInput       `json:"ingredients"`
	PantryItemsRemoved []string                `json:"pantryItemsRemoved,omitempty"`
	Policy             cart.SubstitutionPolicy `json:"policy"`
	Simulation         SimulationInput         `json:"simulation,omitzero"`
}

type CartDraftView struct {
	ID                string             `json:"id"`
	RecipeID          string             `json:"recipeId"`
	Servings          int                `json:"servings"`
	SubtotalCents     int                `json:"subtotalCents"`
	CartHash          string             `json:"cartHash"`
	QuoteHash         string             `json:"quoteHash"`
	Lines             []CartLineView     `json:"lines"`
	Negotiation       *replacement.Plan  `json:"negotiation,omitempty"`
	CheckoutSessionID *string            `json:"checkoutSessionId,omitempty"`
}

type CartLineView struct {
	IngredientKey  string              `json:"ingredientKey"`
	Primary        catalog.Product     `json:"primary"`
	Quantity       float64             `json:"quantity"`
	Unit           string              `json:"unit,omitempty"`
	Confidence     float64             `json:"confidence"`
	ChosenReason   string              `json:"chosenReason,omitempty"`
	LineTotalCents int                 `json:"lineTotalCents"`
	Alternatives   []catalog.Candidate `json:"alternatives,omitempty"`
}

type UpdateCartDraftRequest struct {
	Servings           *int                     `json:"servings,omitempty"`
	Ingredients        []IngredientInput        `json:"ingredients,omitempty"`
	PantryItemsRemoved []string                 `json:"pantryItemsRemoved,omitempty"`
	Policy             *cart.SubstitutionPolicy `json:"policy,omitempty"`
	Simulation         SimulationInput          `json:"simulation,omitzero"`
}

type CartDraftCommands interface {
	CreateDraft(ctx context.Context, req CreateCartDraftRequest, idempotencyKey string) (*GuardResult, error)
	UpdateDraft(ctx context.Context, draftID uuid.UUID, req UpdateCartDraftRequest, idempotencyKey string) (*GuardResult, error)
}

type cartDraftCommandsImpl struct {
	drafts    CartDraftRepo
	runs      AgentRunRepo
	approvals ApprovalRepo
	matcher   Matcher
	guard     *IdempotencyGuard
	simCfg    config.SimulationConfig
	clock     clock.Clock
}

func NewCartDraftCommands(
	drafts CartDraftRepo,
	runs AgentRunRepo,
	approvals ApprovalRepo,
	matcher Matcher,
	guard *IdempotencyGuard,
	simCfg config.SimulationConfig,
	clk clock.Clock,
) CartDraftCommands {
	return &cartDraftCommandsImpl{
		drafts:    drafts,
		runs:      runs,
		approvals: approvals,
		matcher:   matcher,
		guard:     guard,
		simCfg:    simCfg,
		clock:     clk,
	}
}

// CreateDraft resolves every ingredient to a primary product, runs the
// cart-stage availability precheck, and negotiates replacements for
// anything that reads as unavailable before the draft is persisted.
func (c *cartDraftCommandsImpl) CreateDraft(ctx context.Context, req CreateCartDraftRequest, idempotencyKey string) (*GuardResult, error) {
	return c.guard.Execute(ctx, idempotencyKey, req, func(ctx context.Context, tx db.DBTX) (int, any, error) {
		now := c.clock.Now()
		simCfg := req.Simulation.Resolve(c.simCfg)

		draft := &cart.Draft{
			ID:                 uuid.New(),
			AgentRunID:         req.AgentRunID,
			RecipeID:           req.RecipeID,
			Servings:           req.Servings,
			PantryItemsRemoved: req.PantryItemsRemoved,
			Policy:             req.Policy,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		for _, ing := range req.Ingredients {
			line, err := c.resolveLine(ctx, ing, req.Policy)
			if err != nil {
				return 0, nil, err
			}
			draft.Lines = append(draft.Lines, *line)
		}

		plan := c.precheckAvailability(draft, req.Simulation.Seed, simCfg)
		if plan != nil && plan.Action == replacement.ActionAuto {
			for _, item := range plan.Items {
				if line := draft.LineByIngredient(item.IngredientKey); line != nil {
					line.ApplyReplacement(item.Candidate(), item.Reason)
				}
			}
		}

		if err := c.stampHashes(draft); err != nil {
			return 0, nil, err
		}
		if err := c.drafts.Create(ctx, tx, draft); err != nil {
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		status := http.StatusCreated
		if plan != nil && plan.Action == replacement.ActionApproval {
			if err := c.escalate(ctx, tx, draft, now); err != nil {
				return 0, nil, err
			}
			status = http.StatusAccepted
		} else if req.AgentRunID != nil {
			if err := c.bindRun(ctx, tx, draft, agentrun.StateBuildCartDraft, now); err != nil {
				return 0, nil, err
			}
		}

		return status, draftToView(draft, plan), nil
	})
}

// UpdateDraft replaces the mutable parts of a draft wholesale. A draft
// already bound to a checkout session is locked: its quote is what the
// merchant priced, so edits must go through a fresh draft.
func (c *cartDraftCommandsImpl) UpdateDraft(ctx context.Context, draftID uuid.UUID, req UpdateCartDraftRequest, idempotencyKey string) (*GuardResult, error) {
	return c.guard.Execute(ctx, idempotencyKey, req, func(ctx context.Context, tx db.DBTX) (int, any, error) {
		draft, err := c.drafts.FindByID(ctx, tx, draftID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return 0, nil, ErrDraftNotFound
			}
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if draft.CheckoutSessionID != nil {
			return 0, nil, ErrDraftLocked
		}

		now := c.clock.Now()
		simCfg := req.Simulation.Resolve(c.simCfg)

		if req.Servings != nil {
			draft.Servings = *req.Servings
		}
		if req.Policy != nil {
			draft.Policy = *req.Policy
			for i := range draft.Lines {
				draft.Lines[i].Policy = *req.Policy
			}
		}
		if req.PantryItemsRemoved != nil {
			draft.PantryItemsRemoved = req.PantryItemsRemoved
		}
		if len(req.Ingredients) > 0 {
			draft.Lines = draft.Lines[:0]
			for _, ing := range req.Ingredients {
				line, err := c.resolveLine(ctx, ing, draft.Policy)
				if err != nil {
					return 0, nil, err
				}
				draft.Lines = append(draft.Lines, *line)
			}
		}

		plan := c.precheckAvailability(draft, req.Simulation.Seed, simCfg)
		if plan != nil && plan.Action == replacement.ActionAuto {
			for _, item := range plan.Items {
				if line := draft.LineByIngredient(item.IngredientKey); line != nil {
					line.ApplyReplacement(item.Candidate(), item.Reason)
				}
			}
		}

		if err := c.stampHashes(draft); err != nil {
			return 0, nil, err
		}
		draft.UpdatedAt = now
		if err := c.drafts.Save(ctx, tx, draft); err != nil {
			return 0, nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}

		status := http.StatusOK
		if plan != nil && plan.Action == replacement.ActionApproval {
			if err := c.escalate(ctx, tx, draft, now); err != nil {
				return 0, nil, err
			}
			status = http.StatusAccepted
		}
		return status, draftToView(draft, plan), nil
	})
}

func (c *cartDraftCommandsImpl) resolveLine(ctx context.Context, ing IngredientInput, policy cart.SubstitutionPolicy) (*cart.LineItem, error) {
	candidates, err := c.matcher.ResolveCandidates(ctx, ing.Name, 6)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if len(candidates) == 0 {
		return nil, errs.Mark(errs.New("ingredient "+ing.Key), ErrNoCandidates)
	}

	line := &cart.LineItem{
		ID:            uuid.New(),
		IngredientKey: ing.Key,
		Ingredient: catalog.CanonicalIngredient{
			Key:      ing.Key,
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		},
		Primary:      candidates[0].Product,
		Quantity:     ing.Quantity,
		Unit:         ing.Unit,
		Confidence:   candidates[0].Confidence,
		ChosenReason: candidates[0].Reason,
		Policy:       policy,
		Alternatives: candidates[1:],
	}
	line.RecalcTotal()
	return line, nil
}

// precheckAvailability runs the cart-stage simulator over every line and
// negotiates the ones that read as out of stock.
func (c *cartDraftCommandsImpl) precheckAvailability(draft *cart.Draft, seed string, simCfg simulation.Config) *replacement.Plan {
	var needs []replacement.Need
	for i := range draft.Lines {
		line := draft.Lines[i]
		if simulation.OutOfStock(seed, simulation.StageCart, line.Primary.ID, line.Primary.InventoryQuantity, simCfg) {
			needs = append(needs, replacement.Need{
				Line:       line,
				Candidates: line.Alternatives,
			})
		}
	}
	if len(needs) == 0 {
		return nil
	}
	plan := replacement.Evaluate(draft, needs, draft.Policy, simCfg.MaxFallbacks, replacement.ReasonInventoryPrecheck)
	return &plan
}

func (c *cartDraftCommandsImpl) stampHashes(draft *cart.Draft) error {
	lineDigest := make(map[string]any, len(draft.Lines))
	for i := range draft.Lines {
		li := &draft.Lines[i]
		lineDigest[li.IngredientKey] = map[string]any{
			"productId": li.Primary.ID,
			"quantity":  li.Quantity,
		}
	}
	cartHash, err := canonical.Hash(lineDigest)
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	quoteHash, err := canonical.Hash(map[string]any{
		"cart":          cartHash,
		"subtotalCents": draft.SubtotalCents(),
	})
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	draft.CartHash = cartHash
	draft.QuoteHash = quoteHash
	subtotal := draft.SubtotalCents()
	draft.QuoteSummary = &cart.QuoteSummary{
		SubtotalCents: subtotal,
		TotalCents:    subtotal,
		ItemCount:     len(draft.Lines),
	}
	return nil
}

func (c *cartDraftCommandsImpl) escalate(ctx context.Context, tx db.DBTX, draft *cart.Draft, now time.Time) error {
	if draft.AgentRunID == nil {
		return nil
	}
	approval := &agentrun.Approval{
		ID:         uuid.New(),
		AgentRunID: *draft.AgentRunID,
		CartHash:   draft.CartHash,
		QuoteHash:  draft.QuoteHash,
		Status:     agentrun.ApprovalPending,
	}
	if err := c.approvals.Create(ctx, tx, approval); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return c.bindRun(ctx, tx, draft, agentrun.StateAwaitingApproval, now)
}

func (c *cartDraftCommandsImpl) bindRun(ctx context.Context, tx db.DBTX, draft *cart.Draft, state agentrun.State, now time.Time) error {
	run, err := c.runs.FindByID(ctx, tx, *draft.AgentRunID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrRunNotFound
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	run.State = state
	run.CartDraftID = &draft.ID
	run.UpdatedAt = now
	if err := c.runs.Save(ctx, tx, run); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func draftToView(draft *cart.Draft, plan *replacement.Plan) *CartDraftView {
	view := &CartDraftView{
		ID:                draft.ID.String(),
		RecipeID:          draft.RecipeID,
		Servings:          draft.Servings,
		SubtotalCents:     draft.SubtotalCents(),
		CartHash:          draft.CartHash,
		QuoteHash:         draft.QuoteHash,
		Negotiation:       plan,
		CheckoutSessionID: draft.CheckoutSessionID,
	}
	for i := range draft.Lines {
		li := &draft.Lines[i]
		view.Lines = append(view.Lines, CartLineView{
			IngredientKey:  li.IngredientKey,
			Primary:        li.Primary,
			Quantity:       li.Quantity,
			Unit:           li.Unit,
			Confidence:     li.Confidence,
			ChosenReason:   li.ChosenReason,
			LineTotalCents: li.LineTotalCents,
			Alternatives:   li.Alternatives,
		})
	}
	return view
}
