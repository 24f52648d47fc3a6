package components

import (
	"github.com/Fresh-Industries/pantrypal/internal/handler"
	"github.com/Fresh-Industries/pantrypal/internal/handler/api"
	"github.com/Fresh-Industries/pantrypal/internal/handler/middleware"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/metrics"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCatalogHandler,
		api.NewPickupHandler,
		api.NewAgentRunHandler,
		api.NewCartDraftHandler,
		api.NewCheckoutHandler,
		api.NewApprovalHandler,
		middleware.NewAuthMiddleware,
		newHandlers,
	),
	fx.Invoke(
		metrics.Register,
		handler.NewRouter,
	),
)

func newHandlers(
	catalog *api.CatalogHandler,
	pickup *api.PickupHandler,
	agentRun *api.AgentRunHandler,
	cartDraft *api.CartDraftHandler,
	checkout *api.CheckoutHandler,
	approval *api.ApprovalHandler,
) handler.Handlers {
	return handler.Handlers{
		Catalog:   catalog,
		Pickup:    pickup,
		AgentRun:  agentRun,
		CartDraft: cartDraft,
		Checkout:  checkout,
		Approval:  approval,
	}
}
