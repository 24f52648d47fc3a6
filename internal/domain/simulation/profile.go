package simulation

// Stage names the point in the checkout flow a decision is drawn for.
// Rates differ between quoting a cart and picking a confirmed order.
type Stage string

const (
	StageCart Stage = "cart"
	StagePick Stage = "pick"
)

const (
	lowStockThreshold = 5
	lowStockBoost     = 0.25
	maxOOSRate        = 0.95
)

type DriftConfig struct {
	Rate     float64
	MaxCents int
}

// Config is the fully resolved simulation parameter set for one request.
// It is always threaded explicitly into simulator and negotiator calls,
// never read from ambient state.
type Config struct {
	CartOOSRate    float64
	PickOOSRate    float64
	SlotExpiryRate float64
	Drift          DriftConfig
	MaxFallbacks   int
}

func (c Config) OOSRate(stage Stage) float64 {
	if stage == StagePick {
		return c.PickOOSRate
	}
	return c.CartOOSRate
}

// Profile is the enumerated form a request carries. Unrecognized values
// fall back to the named defaults rather than failing the request.
type Profile struct {
	Volatility     string
	DriftMagnitude string
	Aggressiveness string
}

func (p Profile) Resolve(defaults Profile) Config {
	cfg := Config{}

	switch pick(p.Volatility, defaults.Volatility) {
	case "low":
		cfg.CartOOSRate, cfg.PickOOSRate, cfg.SlotExpiryRate = 0.05, 0.03, 0.05
	case "high":
		cfg.CartOOSRate, cfg.PickOOSRate, cfg.SlotExpiryRate = 0.35, 0.20, 0.25
	default: // medium
		cfg.CartOOSRate, cfg.PickOOSRate, cfg.SlotExpiryRate = 0.15, 0.08, 0.10
	}

	switch pick(p.DriftMagnitude, defaults.DriftMagnitude) {
	case "low":
		cfg.Drift = DriftConfig{Rate: 0.05, MaxCents: 50}
	case "high":
		cfg.Drift = DriftConfig{Rate: 0.40, MaxCents: 400}
	default: // medium
		cfg.Drift = DriftConfig{Rate: 0.20, MaxCents: 150}
	}

	switch pick(p.Aggressiveness, defaults.Aggressiveness) {
	case "conservative":
		cfg.MaxFallbacks = 1
	case "aggressive":
		cfg.MaxFallbacks = 5
	default: // balanced
		cfg.MaxFallbacks = 3
	}

	return cfg
}

func pick(v, fallback string) string {
	switch v {
	case "low", "medium", "high", "conservative", "balanced", "aggressive":
		return v
	}
	return fallback
}
