/*
history.go - Deriving calculation inputs from statement history

PURPOSE:
  The engine takes lifetime counters and a last-period balance as inputs;
  this file derives both from a book's saved statements. The statement being
  recalculated (same period bounds) is excluded so re-running a period
  never double-counts its own units.
*/
package catalog

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/marblepress/royalty-engine/royalty"
)

// CountersFromHistory accumulates lifetime quantities and returns-to-date
// from prior statements, skipping any statement for the given period bounds.
func CountersFromHistory(history []StatementRecord, periodStart, periodEnd string) royalty.Counters {
	counters := royalty.NewCounters()
	for _, stmt := range history {
		if stmt.PeriodStart == periodStart && stmt.PeriodEnd == periodEnd {
			continue
		}
		for _, row := range stmt.Rows {
			counters.LifetimeQuantity[row.Category] += row.NetUnits
			counters.ReturnsToDate[row.Category] += row.Returns
		}
	}
	return counters
}

// LastBalance returns the closing balance of the most recent statement
// (by period end), or the negated advance when no history exists.
func LastBalance(history []StatementRecord, advance decimal.Decimal) decimal.Decimal {
	if len(history) == 0 {
		return advance.Abs().Neg()
	}
	sorted := make([]StatementRecord, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PeriodEnd > sorted[j].PeriodEnd
	})
	return sorted[0].Summary.Balance
}
