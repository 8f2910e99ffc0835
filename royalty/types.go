/*
Package royalty provides the core royalty computation engine.

PURPOSE:
  This package contains the pure calculation logic for producing royalty
  statements: given a party's royalty schedule, a period's sales lines, and
  the lifetime counters carried over from prior periods, it produces
  per-category calculation rows and a financial summary (advance, balance,
  payable), applying rate tiers gated by discount and by cumulative
  lifetime-unit thresholds.

KEY CONCEPTS IN THIS FILE (types.go):
  - Condition/Tier/Pricing/RightsBlock: the royalty schedule for one format
  - Schedule: all rights blocks plus subsidiary rights for one party
  - SalesLine: one category's sales figures for the period
  - Counters: cumulative lifetime quantities and returns per category

DESIGN PRINCIPLES:
  1. Purity: no I/O, no retained state; identical inputs give identical output
  2. Precision: all money and rate math uses decimal.Decimal, never float64
  3. Repair and continue: a malformed schedule degrades one line, never the
     whole statement
  4. Explicit unions: pricing is Flat OR Tiered, never "empty tiers means flat"

USAGE:
  sched := royalty.Schedule{Blocks: []royalty.RightsBlock{{
      Format:  "Hardcover",
      Base:    royalty.BaseListPrice,
      Pricing: royalty.TieredPricing{Tiers: tiers},
  }}}
  calc := royalty.Calculator{}
  stmt := calc.Calculate(req)

SEE ALSO:
  - condition.go: comparator enum and condition evaluation
  - tiers.go: discount gating and threshold proration
  - line.go: per-category fragment computation
  - statement.go: per-party orchestration and balance carry-forward
  - subrights.go: subsidiary-rights clause resolution
*/
package royalty

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ROYALTY BASE - What the rate applies to (informational)
// =============================================================================

type Base string

const (
	BaseListPrice   Base = "list_price"
	BaseNetReceipts Base = "net_receipts"
)

// =============================================================================
// CONDITIONS AND TIERS
// =============================================================================

// ConditionKind identifies what quantity a threshold condition gates on.
type ConditionKind int

const (
	// UnitsThreshold gates on cumulative lifetime net units for the category.
	UnitsThreshold ConditionKind = iota
	// DiscountThreshold gates on the sales line's discount percent.
	DiscountThreshold
)

func (k ConditionKind) String() string {
	switch k {
	case UnitsThreshold:
		return "units"
	case DiscountThreshold:
		return "discount"
	default:
		return "unknown"
	}
}

// Condition is a single threshold test. Conditions within a tier are AND-ed.
type Condition struct {
	Kind  ConditionKind
	Cmp   Comparator
	Value decimal.Decimal
}

// Tier is one rate bracket within a rights block, gated by its conditions.
type Tier struct {
	RatePercent decimal.Decimal
	Conditions  []Condition
}

// HasKind reports whether any condition of the tier has the given kind.
func (t Tier) HasKind(kind ConditionKind) bool {
	for _, c := range t.Conditions {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// =============================================================================
// PRICING - Tagged union: flat rate OR tiered
// =============================================================================

// Pricing is the pricing mode of a rights block. Exactly two implementations
// exist: FlatPricing and TieredPricing. Callers dispatch with a type switch.
type Pricing interface {
	pricingMode() string
}

// FlatPricing applies a single rate to every unit.
type FlatPricing struct {
	RatePercent decimal.Decimal
}

func (FlatPricing) pricingMode() string { return "flat" }

// TieredPricing selects among tiers by discount and lifetime-unit conditions.
type TieredPricing struct {
	Tiers []Tier
}

func (TieredPricing) pricingMode() string { return "tiered" }

// =============================================================================
// RIGHTS BLOCK AND SCHEDULE
// =============================================================================

// RightsBlock holds the royalty terms for one canonical format under one
// party's first-rights grant. A schedule carries at most one block per format.
type RightsBlock struct {
	Format  string
	Base    Base
	Pricing Pricing
}

// Subright is a subsidiary/ancillary right (book club, serial, audio,
// territory) with either a flat percent or per-variant percents.
type Subright struct {
	Name     string
	Percent  *decimal.Decimal
	Variants map[string]decimal.Decimal
}

// Schedule is one party's complete royalty terms.
type Schedule struct {
	Blocks    []RightsBlock
	Subrights []Subright
}

// BlockForFormat returns the rights block matching the canonical format,
// case-insensitively, or nil when the format is not covered.
func (s *Schedule) BlockForFormat(format string) *RightsBlock {
	if s == nil {
		return nil
	}
	for i := range s.Blocks {
		if equalFold(s.Blocks[i].Format, format) {
			return &s.Blocks[i]
		}
	}
	return nil
}

// =============================================================================
// SALES INPUT
// =============================================================================

// SalesLine is one category's sales figures for the reporting period.
type SalesLine struct {
	Category string
	Units    int64
	Returns  int64

	// UnitPriceOrNetRevenue is the list price per unit, or, when NetRevenue
	// is set, the net receipts figure for the whole line.
	UnitPriceOrNetRevenue decimal.Decimal
	DiscountPercent       decimal.Decimal
	NetRevenue            bool
}

// NetUnits is units minus returns. Deliberately unclamped: a period where
// returns exceed sales carries negative units (contractual clawback).
func (l SalesLine) NetUnits() int64 {
	return l.Units - l.Returns
}

// =============================================================================
// LIFETIME COUNTERS - The only cross-call state, owned by the caller
// =============================================================================

// Counters tracks cumulative lifetime net units and returns per category.
// The engine reads them, computes with the values as they stood BEFORE the
// period, and returns updated copies. Persisting them (and serializing
// concurrent calculations per book) is the caller's responsibility.
type Counters struct {
	LifetimeQuantity map[string]int64
	ReturnsToDate    map[string]int64
}

// NewCounters returns empty counters.
func NewCounters() Counters {
	return Counters{
		LifetimeQuantity: make(map[string]int64),
		ReturnsToDate:    make(map[string]int64),
	}
}

// Clone returns a deep copy so the calculator never mutates caller state.
func (c Counters) Clone() Counters {
	out := NewCounters()
	for k, v := range c.LifetimeQuantity {
		out.LifetimeQuantity[k] = v
	}
	for k, v := range c.ReturnsToDate {
		out.ReturnsToDate[k] = v
	}
	return out
}

// equalFold is strings.EqualFold over trimmed input; kept local so the type
// files stay import-light.
func equalFold(a, b string) bool {
	return normalizeKey(a) == normalizeKey(b)
}
