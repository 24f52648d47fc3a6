//go:build unit

package agentrun_test

import (
	"testing"

	"github.com/Fresh-Industries/pantrypal/internal/domain/agentrun"

	"github.com/stretchr/testify/assert"
)

func TestApprovalCoversTotal(t *testing.T) {
	approved := func(totalCents int) agentrun.Approval {
		return agentrun.Approval{
			Status:             agentrun.ApprovalApproved,
			ApprovedTotalCents: &totalCents,
		}
	}

	t.Run("within the re-approval bound stays covered", func(t *testing.T) {
		a := approved(1000)
		assert.True(t, a.CoversTotal(1400, 500), "delta 400 is inside the bound")
		assert.True(t, a.CoversTotal(1500, 500), "delta exactly at the bound is covered")
		assert.True(t, a.CoversTotal(900, 500), "cheaper carts never need re-approval")
	})

	t.Run("past the bound needs a new approval", func(t *testing.T) {
		a := approved(1000)
		assert.False(t, a.CoversTotal(1600, 500), "delta 600 exceeds the bound")
		assert.False(t, a.CoversTotal(1501, 500))
	})

	t.Run("only approved entries cover anything", func(t *testing.T) {
		total := 1000
		pending := agentrun.Approval{Status: agentrun.ApprovalPending, ApprovedTotalCents: &total}
		rejected := agentrun.Approval{Status: agentrun.ApprovalRejected, ApprovedTotalCents: &total}
		unset := agentrun.Approval{Status: agentrun.ApprovalApproved}

		assert.False(t, pending.CoversTotal(1000, 500))
		assert.False(t, rejected.CoversTotal(1000, 500))
		assert.False(t, unset.CoversTotal(1000, 500))
	})
}

func TestStateIsValid(t *testing.T) {
	valid := []agentrun.State{
		agentrun.StateDiscoverMerchant, agentrun.StateCheckCapabilities,
		agentrun.StateResolveIngredients, agentrun.StateBuildCartDraft,
		agentrun.StateQuoteCart, agentrun.StateAwaitingApproval,
		agentrun.StateCheckout, agentrun.StateOrderCreated,
		agentrun.StateOrderTracking, agentrun.StateFailed,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "state %s", s)
	}
	assert.False(t, agentrun.State("SHOPPING").IsValid())
	assert.False(t, agentrun.State("").IsValid())
}
