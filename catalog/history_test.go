package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/marblepress/royalty-engine/catalog"
	"github.com/marblepress/royalty-engine/royalty"
)

func stmt(periodStart, periodEnd string, balance float64, rows ...royalty.CalculationRow) catalog.StatementRecord {
	return catalog.StatementRecord{
		BookUID:     "bk-1",
		Party:       royalty.PartyAuthor,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Rows:        rows,
		Summary:     royalty.PartySummary{Balance: decimal.NewFromFloat(balance)},
	}
}

func row(category string, netUnits, returns int64) royalty.CalculationRow {
	return royalty.CalculationRow{Category: category, NetUnits: netUnits, Returns: returns}
}

func TestCountersFromHistory_Accumulates(t *testing.T) {
	history := []catalog.StatementRecord{
		stmt("2024-01-01", "2024-06-30", 0, row("Hardcover", 400, 10), row("Paperback", 900, 0)),
		stmt("2024-07-01", "2024-12-31", 0, row("Hardcover", 500, 15)),
	}

	c := catalog.CountersFromHistory(history, "2025-01-01", "2025-06-30")

	assert.Equal(t, int64(900), c.LifetimeQuantity["Hardcover"])
	assert.Equal(t, int64(25), c.ReturnsToDate["Hardcover"])
	assert.Equal(t, int64(900), c.LifetimeQuantity["Paperback"])
}

func TestCountersFromHistory_SkipsPeriodBeingRecalculated(t *testing.T) {
	// Re-running a period must not count that period's own saved units.
	history := []catalog.StatementRecord{
		stmt("2024-01-01", "2024-06-30", 0, row("Hardcover", 400, 0)),
		stmt("2024-07-01", "2024-12-31", 0, row("Hardcover", 300, 0)),
	}

	c := catalog.CountersFromHistory(history, "2024-07-01", "2024-12-31")

	assert.Equal(t, int64(400), c.LifetimeQuantity["Hardcover"])
}

func TestLastBalance_NoHistory_NegatedAdvance(t *testing.T) {
	got := catalog.LastBalance(nil, decimal.NewFromInt(5000))
	assert.True(t, got.Equal(decimal.NewFromInt(-5000)))
}

func TestLastBalance_NoHistoryNoAdvance_Zero(t *testing.T) {
	got := catalog.LastBalance(nil, decimal.Zero)
	assert.True(t, got.IsZero())
}

func TestLastBalance_LatestPeriodWins(t *testing.T) {
	history := []catalog.StatementRecord{
		stmt("2024-07-01", "2024-12-31", -1000),
		stmt("2024-01-01", "2024-06-30", -3000),
	}

	got := catalog.LastBalance(history, decimal.NewFromInt(5000))
	assert.True(t, got.Equal(decimal.NewFromInt(-1000)), "got %s", got)
}
