// Package replacement decides how unavailable line items get healed:
// automatically, behind a human approval, or not at all. It consumes the
// matching service's ranked candidates strictly in the given order and
// never re-ranks them.
package replacement

import (
	"github.com/Fresh-Industries/pantrypal/internal/domain/cart"
	"github.com/Fresh-Industries/pantrypal/internal/domain/catalog"
)

type Action string

const (
	ActionNone     Action = "none"
	ActionAuto     Action = "auto"
	ActionApproval Action = "approval"
)

// Reasons a line entered negotiation.
const (
	ReasonInventoryPrecheck = "inventory_precheck"
	ReasonMerchantReject    = "merchant_reject"
)

// Need is one line item requiring replacement, with its candidate list.
// AllowedIDs, when non-empty, restricts which candidates may be picked
// (a merchant rejection names the replacements it will accept).
type Need struct {
	Line       cart.LineItem
	Candidates []catalog.Candidate
	AllowedIDs []string
}

// Item is one proposed substitution inside a plan.
type Item struct {
	IngredientKey   string          `json:"ingredientKey"`
	Current         catalog.Product `json:"current"`
	Proposed        catalog.Product `json:"proposed"`
	DeltaCents      int             `json:"deltaCents"`
	Reason          string          `json:"reason"`
	PolicyDecision  string          `json:"policyDecision"`
	PolicyViolation bool            `json:"policyViolation"`

	candidate catalog.Candidate
}

// Candidate returns the chosen candidate so callers can apply the item.
func (i Item) Candidate() catalog.Candidate { return i.candidate }

// Plan is the negotiation outcome for one batch of needs.
type Plan struct {
	Action             Action   `json:"action"`
	Reason             string   `json:"reason"`
	BaseTotalCents     int      `json:"baseTotalCents"`
	ProposedTotalCents int      `json:"proposedTotalCents"`
	DeltaCents         int      `json:"deltaCents"`
	Items              []Item   `json:"items"`
	Unresolved         []string `json:"unresolved,omitempty"`
}

// Evaluate runs the two-pass policy scan over every need. The first pass
// enforces the per-item and cart budget limits; lines it cannot satisfy
// get a second, relaxed pass whose pick exists only to build an approval
// proposal and is flagged policyViolation=true.
func Evaluate(draft *cart.Draft, needs []Need, policy cart.SubstitutionPolicy, maxFallbacks int, reason string) Plan {
	plan := Plan{
		Action:         ActionNone,
		Reason:         reason,
		BaseTotalCents: draft.SubtotalCents(),
	}
	if len(needs) == 0 {
		plan.ProposedTotalCents = plan.BaseTotalCents
		return plan
	}

	runningIncrease := 0
	anyViolation := false

	for _, need := range needs {
		candidates := need.Candidates
		if maxFallbacks > 0 && len(candidates) > maxFallbacks {
			candidates = candidates[:maxFallbacks]
		}

		chosen, ok := firstSurvivor(need.Line, candidates, need.AllowedIDs, policy, true, runningIncrease)
		violation := false
		if !ok {
			chosen, ok = firstSurvivor(need.Line, candidates, need.AllowedIDs, policy, false, 0)
			violation = ok
		}
		if !ok {
			plan.Unresolved = append(plan.Unresolved, need.Line.IngredientKey)
			continue
		}

		delta := lineTotalWith(need.Line, chosen.Product) - need.Line.LineTotalCents
		if delta > 0 {
			runningIncrease += delta
		}
		anyViolation = anyViolation || violation

		decision := "auto"
		if violation {
			decision = "fallback"
		}
		plan.Items = append(plan.Items, Item{
			IngredientKey:   need.Line.IngredientKey,
			Current:         need.Line.Primary,
			Proposed:        chosen.Product,
			DeltaCents:      delta,
			Reason:          chosen.Reason,
			PolicyDecision:  decision,
			PolicyViolation: violation,
			candidate:       chosen,
		})
	}

	plan.ProposedTotalCents = plan.BaseTotalCents
	for _, item := range plan.Items {
		plan.ProposedTotalCents += item.DeltaCents
	}
	plan.DeltaCents = plan.ProposedTotalCents - plan.BaseTotalCents

	switch {
	case !policy.AllowSubs,
		anyViolation,
		len(plan.Unresolved) > 0,
		plan.DeltaCents > policy.RequireReapprovalAboveCents:
		plan.Action = ActionApproval
	default:
		plan.Action = ActionAuto
	}
	return plan
}

// firstSurvivor scans candidates in collaborator order and returns the
// first one the policy admits. In the budget pass, enforceBudget applies
// the per-item cap and the running cart-increase cap.
func firstSurvivor(
	line cart.LineItem,
	candidates []catalog.Candidate,
	allowedIDs []string,
	policy cart.SubstitutionPolicy,
	enforceBudget bool,
	runningIncrease int,
) (catalog.Candidate, bool) {
	for _, c := range candidates {
		if c.Product.InventoryQuantity <= 0 {
			continue
		}
		if len(allowedIDs) > 0 && !containsID(allowedIDs, c.Product.ID) {
			continue
		}
		if policy.OrganicOnly && !c.Product.Organic {
			continue
		}
		if policy.BrandLock && line.Primary.Brand != "" && c.Product.Brand != line.Primary.Brand {
			continue
		}
		if enforceBudget {
			delta := lineTotalWith(line, c.Product) - line.LineTotalCents
			if delta > policy.MaxDeltaPerItemCents {
				continue
			}
			if delta > 0 && runningIncrease+delta > policy.MaxCartIncreaseCents {
				continue
			}
		}
		return c, true
	}
	return catalog.Candidate{}, false
}

func lineTotalWith(line cart.LineItem, p catalog.Product) int {
	clone := line
	clone.Primary = p
	clone.RecalcTotal()
	return clone.LineTotalCents
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
