/*
tiers.go - Tier selection and threshold proration

PURPOSE:
  Two of the engine's core mechanisms live here:

  1. Discount gating (EligibleTiers): a tier is eligible iff ALL of its
     discount conditions pass against the line's discount. If at least one
     tier in the block declares a discount condition and none are eligible,
     the discount is below the contractual floor and the line earns no
     royalty; the empty result is explicit, not a silent default. If no
     tier declares a discount condition, filtering is a no-op.

  2. Threshold proration (ProrateUnits): contractual step-ups ("10% on the
     first 5,000 copies, 12.5% thereafter") must be applied against the
     CUMULATIVE lifetime count, even when a single reporting period
     straddles the threshold. The supported pattern is exactly two
     unit-gated tiers: a low tier (comparator < or <=) defining the
     threshold and low rate, and a high tier (> or >=) defining the high
     rate. Schedules with three or more unit steps are not generalized.

SEE ALSO:
  - line.go: consumes both mechanisms to build line fragments
*/
package royalty

import "github.com/shopspring/decimal"

// =============================================================================
// DISCOUNT GATING
// =============================================================================

// EligibleTiers returns the tiers of the block applicable to the given
// discount percent. Units conditions are ignored at this stage; they are
// resolved later against lifetime counters.
//
// Returns an empty slice when discount conditions exist and none pass:
// "discount below contractual floor" means no royalty for the line.
func EligibleTiers(tiers []Tier, discountPercent decimal.Decimal) []Tier {
	anyDiscount := false
	for _, t := range tiers {
		if t.HasKind(DiscountThreshold) {
			anyDiscount = true
			break
		}
	}

	var chosen []Tier
	for _, t := range tiers {
		ok := true
		for _, c := range t.Conditions {
			if c.Kind != DiscountThreshold {
				continue
			}
			if !c.Matches(discountPercent) {
				ok = false
				break
			}
		}
		if ok {
			chosen = append(chosen, t)
		}
	}

	if len(chosen) == 0 && anyDiscount {
		return nil
	}
	if len(chosen) == 0 {
		return tiers
	}
	return chosen
}

// unitTiers filters to tiers carrying at least one units condition.
func unitTiers(tiers []Tier) []Tier {
	var out []Tier
	for _, t := range tiers {
		if t.HasKind(UnitsThreshold) {
			out = append(out, t)
		}
	}
	return out
}

// =============================================================================
// THRESHOLD PRORATION
// =============================================================================

// stepSchedule is the resolved two-tier step-up: rate below the threshold,
// rate at/after it. Either rate may be zero when the schedule omits a side.
type stepSchedule struct {
	threshold   decimal.Decimal
	hasThreshold bool
	lowRate     decimal.Decimal
	highRate    decimal.Decimal
}

// resolveSteps extracts the low/high rates and the unit threshold from the
// unit-gated tiers. The low tier (comparator < or <=) defines the threshold.
func resolveSteps(tiers []Tier) stepSchedule {
	var s stepSchedule
	for _, t := range tiers {
		for _, c := range t.Conditions {
			if c.Kind != UnitsThreshold {
				continue
			}
			switch c.Cmp {
			case LT, LE:
				s.threshold = c.Value
				s.hasThreshold = true
				s.lowRate = t.RatePercent
			case GT, GE:
				s.highRate = t.RatePercent
			}
		}
	}
	return s
}

// ProrateUnits splits a period's net units across a lifetime-unit threshold.
//
// If the lifetime count already reached the threshold before this period,
// everything is high. Otherwise the low bucket takes the lesser of the
// period's units and the remaining headroom under the threshold; the rest is
// high. Negative period units land in the low bucket; the line calculator
// drops non-positive fragments, so a straddling period never goes negative.
func ProrateUnits(lifetimeBefore, netUnits, threshold int64) (low, high int64) {
	if lifetimeBefore >= threshold {
		return 0, netUnits
	}
	remaining := threshold - lifetimeBefore
	low = netUnits
	if low > remaining {
		low = remaining
	}
	high = netUnits - low
	if high < 0 {
		high = 0
	}
	return low, high
}
