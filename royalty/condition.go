/*
condition.go - Comparator enum and condition evaluation

PURPOSE:
  Evaluates a single threshold condition (units or discount) against an
  input number. Stateless, no side effects.

COMPARATORS:
  An explicit enum {LT, LE, GT, GE, EQ} dispatched through a switch. The
  string forms ("<", "<=", ">", ">=", "==") exist only at parse boundaries
  (factory, persistence); the engine never consults a string map.

SEE ALSO:
  - tiers.go: applies conditions during tier selection
  - factory/schedule.go: parses comparator strings from stored schedules
*/
package royalty

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Comparator is the relational operator of a threshold condition.
type Comparator int

const (
	LT Comparator = iota // <
	LE                   // <=
	GT                   // >
	GE                   // >=
	EQ                   // ==
)

func (c Comparator) String() string {
	switch c {
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	case EQ:
		return "=="
	default:
		return "?"
	}
}

// ParseComparator converts the wire/storage form to the enum.
// Returns ErrUnknownComparator for anything unrecognized.
func ParseComparator(s string) (Comparator, error) {
	switch s {
	case "<":
		return LT, nil
	case "<=":
		return LE, nil
	case ">":
		return GT, nil
	case ">=":
		return GE, nil
	case "==", "=":
		return EQ, nil
	default:
		return LT, fmt.Errorf("%w: %q", ErrUnknownComparator, s)
	}
}

// ParseConditionKind converts the wire/storage form ("units", "discount")
// to the enum.
func ParseConditionKind(s string) (ConditionKind, error) {
	switch s {
	case "units":
		return UnitsThreshold, nil
	case "discount":
		return DiscountThreshold, nil
	default:
		return UnitsThreshold, fmt.Errorf("%w: %q", ErrUnknownConditionKind, s)
	}
}

// Eval applies the comparator to (input, bound).
func (c Comparator) Eval(input, bound decimal.Decimal) bool {
	switch c {
	case LT:
		return input.LessThan(bound)
	case LE:
		return input.LessThanOrEqual(bound)
	case GT:
		return input.GreaterThan(bound)
	case GE:
		return input.GreaterThanOrEqual(bound)
	case EQ:
		return input.Equal(bound)
	default:
		return false
	}
}

// Matches evaluates the condition against an input quantity.
func (cond Condition) Matches(input decimal.Decimal) bool {
	return cond.Cmp.Eval(input, cond.Value)
}
