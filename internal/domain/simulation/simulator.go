// Package simulation perturbs price, availability, and slot expiry with
// decisions that are pure functions of a caller-supplied seed. Retries
// within one logical run therefore see the same world: repeated calls
// with identical arguments always return the identical decision.
package simulation

import "math"

// PriceDrift returns the possibly perturbed price for one product at one
// stage. An empty seed disables perturbation. The result stays within
// [basePrice-MaxCents, basePrice+MaxCents] and never goes negative.
func PriceDrift(seed string, stage Stage, productID string, basePriceCents int, cfg DriftConfig) int {
	if seed == "" || cfg.Rate <= 0 || cfg.MaxCents <= 0 {
		return basePriceCents
	}

	s := NewStream(seed, string(stage), productID, "price")
	if s.Next() > cfg.Rate {
		return basePriceCents
	}

	magnitude := int(math.Floor(s.Next() * float64(cfg.MaxCents)))
	if s.Next() < 0.5 {
		magnitude = -magnitude
	}

	drifted := basePriceCents + magnitude
	if drifted < 0 {
		return 0
	}
	return drifted
}

// OutOfStock decides whether a product reads as unavailable. A product
// with no real stock is always out of stock; otherwise the seeded rate
// applies, boosted when stock is low and clamped to maxOOSRate.
func OutOfStock(seed string, stage Stage, productID string, available int, cfg Config) bool {
	if available <= 0 {
		return true
	}
	if seed == "" {
		return false
	}

	rate := cfg.OOSRate(stage)
	if available <= lowStockThreshold {
		rate += lowStockBoost
	}
	if rate > maxOOSRate {
		rate = maxOOSRate
	}
	if rate <= 0 {
		return false
	}

	return NewStream(seed, string(stage), productID, "oos").Next() < rate
}

// SlotExpires models losing the capacity race between reserving a pickup
// slot and confirming it. Checked only at confirmation time.
func SlotExpires(seed, slotID string, rate float64) bool {
	if seed == "" || rate <= 0 {
		return false
	}
	return NewStream(seed, "slot_expiry", slotID).Next() < rate
}
