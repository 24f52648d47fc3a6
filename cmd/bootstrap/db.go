package bootstrap

import (
	"context"

	"github.com/Fresh-Industries/pantrypal/internal/infra/db"
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
	fx.Invoke(prepareSchema),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}

// prepareSchema migrates on boot and seeds the demo catalog. Both are
// idempotent, so restarting against a populated database is safe.
func prepareSchema(pool *pgxpool.Pool) error {
	ctx := context.Background()
	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	return db.SeedCatalog(ctx, pool)
}
