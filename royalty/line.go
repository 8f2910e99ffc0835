/*
line.go - Per-category line computation

PURPOSE:
  Computes the value/royalty fragments for one sales category against one
  rights block. A line yields one fragment in the common case, and two when
  the period straddles a lifetime-unit threshold. The same unit price
  applies to every fragment; there is no blended pricing.

FRAGMENT MATH:
  valueAmount   = unitPrice * units
  royaltyAmount = valueAmount * ratePercent / 100

DEGRADED PATHS (repair and continue, never abort the line):
  - Flat pricing: one fragment at the flat rate (zero when unset).
  - Tiers survive discount gating but none carry a units condition: one
    fragment at the first surviving tier's rate.
  - Discount gating eliminated every tier: one fragment at rate zero, so
    the gross value is still reported.
  - Unit tiers exist but no resolvable threshold (malformed schedule): one
    fragment applying the first unit tier's rate to the whole line.
*/
package royalty

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Fragment is one slice of a line: a unit count priced at a single rate.
type Fragment struct {
	Units         int64
	RatePercent   decimal.Decimal
	ValueAmount   decimal.Decimal
	RoyaltyAmount decimal.Decimal
}

func newFragment(units int64, unitPrice, ratePercent decimal.Decimal) Fragment {
	value := unitPrice.Mul(decimal.NewFromInt(units))
	return Fragment{
		Units:         units,
		RatePercent:   ratePercent,
		ValueAmount:   value,
		RoyaltyAmount: value.Mul(ratePercent).Div(hundred),
	}
}

// ComputeLine produces the fragments for one sales category.
//
// lifetimeBefore is the cumulative net unit count for the category BEFORE
// this period; netUnits is this period's units minus returns (may be
// negative). discountPercent gates tier eligibility.
func ComputeLine(
	block *RightsBlock,
	lifetimeBefore int64,
	netUnits int64,
	unitPrice decimal.Decimal,
	discountPercent decimal.Decimal,
) []Fragment {
	var tiers []Tier
	switch p := block.Pricing.(type) {
	case FlatPricing:
		return []Fragment{newFragment(netUnits, unitPrice, p.RatePercent)}
	case TieredPricing:
		tiers = p.Tiers
	}

	if len(tiers) == 0 {
		// Tiered block authored with no tiers; treat as 0% flat.
		return []Fragment{newFragment(netUnits, unitPrice, decimal.Zero)}
	}

	eligible := EligibleTiers(tiers, discountPercent)
	if len(eligible) == 0 {
		// Discount below contractual floor: the gross value is still
		// reported, the line just earns nothing.
		return []Fragment{newFragment(netUnits, unitPrice, decimal.Zero)}
	}

	stepped := unitTiers(eligible)
	if len(stepped) == 0 {
		// No units gating: first surviving tier's rate covers the line.
		return []Fragment{newFragment(netUnits, unitPrice, eligible[0].RatePercent)}
	}

	steps := resolveSteps(stepped)
	if !steps.hasThreshold {
		// Malformed: unit conditions without a resolvable threshold.
		// Best effort: first unit tier's rate on the whole line.
		return []Fragment{newFragment(netUnits, unitPrice, stepped[0].RatePercent)}
	}

	low, high := ProrateUnits(lifetimeBefore, netUnits, steps.threshold.IntPart())

	// Fragments are emitted only for positive unit counts.
	var out []Fragment
	if low > 0 {
		out = append(out, newFragment(low, unitPrice, steps.lowRate))
	}
	if high > 0 {
		out = append(out, newFragment(high, unitPrice, steps.highRate))
	}
	return out
}
