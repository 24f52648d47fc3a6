package components

import (
	"github.com/Fresh-Industries/pantrypal/internal/domain/pickup"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/clock"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/commands"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	commands.NewIdempotencyGuard,
	func(cfg config.PickupConfig) func(storeID string) pickup.StoreProfile {
		return func(storeID string) pickup.StoreProfile {
			return pickup.DefaultProfile(storeID, cfg.HoldMinutes, cfg.DaysAhead)
		}
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAgentRunCommands,
		commands.NewCartDraftCommands,
		commands.NewPickupCommands,
		commands.NewCheckoutCommands,
		commands.NewApprovalCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCatalogQueries,
		queries.NewCartDraftQueries,
		queries.NewPickupQueries,
		queries.NewAgentRunQueries,
		queries.NewOrderQueries,
	),
)
