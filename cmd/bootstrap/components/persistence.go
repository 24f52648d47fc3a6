package components

import (
	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/infra/matcher"
	"github.com/Fresh-Industries/pantrypal/internal/infra/merchant"
	"github.com/Fresh-Industries/pantrypal/internal/infra/readstore"
	"github.com/Fresh-Industries/pantrypal/internal/infra/repository"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/commands"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	repositoryModule,
	readstoreModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		repository.NewInventoryRepository,
		repository.NewRequestLogRepository,
		fx.Annotate(
			repository.NewPickupReservationRepository,
			fx.As(new(commands.PickupReservationRepo)),
		),
		fx.Annotate(
			repository.NewIdempotencyRepository,
			fx.As(new(commands.IdempotencyRepo)),
		),
		fx.Annotate(
			repository.NewCartDraftRepository,
			fx.As(new(commands.CartDraftRepo)),
		),
		fx.Annotate(
			repository.NewAgentRunRepository,
			fx.As(new(commands.AgentRunRepo)),
		),
		fx.Annotate(
			repository.NewApprovalRepository,
			fx.As(new(commands.ApprovalRepo)),
		),
		fx.Annotate(
			repository.NewCheckoutRepository,
			fx.As(new(commands.CheckoutRepo)),
		),
		fx.Annotate(
			merchant.NewGateway,
			fx.As(new(commands.MerchantGateway)),
		),
		fx.Annotate(
			matcher.NewCatalogMatcher,
			fx.As(new(commands.Matcher)),
		),
	),
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewCatalogReadStore,
			fx.As(new(queries.CatalogViewRepo)),
		),
		fx.Annotate(
			readstore.NewPickupReadStore,
			fx.As(new(queries.SlotUsageRepo)),
		),
		fx.Annotate(
			readstore.NewAgentRunReadStore,
			fx.As(new(queries.AgentRunViewRepo)),
		),
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderViewRepo)),
		),
		fx.Annotate(
			readstore.NewCartDraftReadStore,
			fx.As(new(queries.CartDraftViewRepo)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
