package bootstrap

import (
	"github.com/Fresh-Industries/pantrypal/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.PickupConfig { return cfg.Pickup },
		func(cfg config.Config) config.HealerConfig { return cfg.Healer },
		func(cfg config.Config) config.SimulationConfig { return cfg.Simulation },
	),
)
