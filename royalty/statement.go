/*
statement.go - Statement calculation and balance carry-forward

PURPOSE:
  Orchestrates the whole computation for one (book, period) request: for each
  party (author, illustrator), walks the sales lines, resolves each category
  against the party's schedule, sums line fragments, tracks lifetime
  counters, and closes with the financial summary.

PER-LINE RESOLUTION (three paths):
  1. Rich schedule, format covered: line.go fragments, effective rate derived
     from the summed amounts.
  2. Rich schedule, format NOT covered: gross value is still reported
     (visibility over correctness-by-omission) but the royalty is zero.
  3. No rich schedule (legacy mode): a flat category->percent map drives the
     royalty.

BALANCE CARRY:
  lastBalance defaults to -advance when the caller supplies zero and an
  advance exists, so the first statement nets the advance before anything is
  payable. balance = lastBalance + royaltyForPeriod. amountPayable is the
  non-negative portion: an unrecouped advance persists to the next period but
  never produces negative pay.

COUNTERS:
  Both parties are computed against the counters as they stood BEFORE the
  period; updated counters are emitted once on the statement. Within one
  party's pass a category appearing on multiple lines accumulates, so a
  threshold crossed by an earlier line is respected by a later one.

ERROR PHILOSOPHY:
  Repair and continue. No single bad line aborts the statement; degraded
  paths are documented in line.go.
*/
package royalty

import "github.com/shopspring/decimal"

// Party identifies whose terms a calculation applies.
type Party string

const (
	PartyAuthor      Party = "author"
	PartyIllustrator Party = "illustrator"
)

// ebookNetReceiptsFee is the platform-fee carve-out applied to E-book net
// receipts in legacy mode before the rate is applied.
var ebookNetReceiptsFee = decimal.NewFromFloat(0.12)

// =============================================================================
// REQUEST / RESPONSE
// =============================================================================

// PartyTerms carries one party's contractual inputs for the period.
type PartyTerms struct {
	// Schedule is the rich tiered schedule; nil switches the party to
	// legacy mode.
	Schedule *Schedule

	// LegacyRates maps raw category -> flat percent, used only when
	// Schedule is nil.
	LegacyRates map[string]decimal.Decimal

	Advance decimal.Decimal

	// LastBalance is the closing balance of the previous statement. Zero
	// with a non-zero advance means "first statement": it is initialized to
	// the negated advance.
	LastBalance decimal.Decimal
}

// Request is one complete calculation input. The engine does not fetch
// schedules or sales and does not persist anything; collaborators own both
// sides.
type Request struct {
	BookUID     string
	PeriodStart string
	PeriodEnd   string

	Sales []SalesLine

	Author      PartyTerms
	Illustrator PartyTerms

	// Counters as persisted before this period.
	Counters Counters
}

// CalculationRow is one category's computed line for one party.
type CalculationRow struct {
	Category string
	Units    int64
	Returns  int64
	NetUnits int64

	// Counter values BEFORE this period, for display alongside the period
	// movement.
	LifetimeQuantity int64
	ReturnsToDate    int64

	UnitPrice            decimal.Decimal
	EffectiveRatePercent decimal.Decimal
	DiscountPercent      decimal.Decimal
	NetRevenue           bool
	ValueAmount          decimal.Decimal
	RoyaltyAmount        decimal.Decimal
}

// PartySummary is the financial close for one party.
type PartySummary struct {
	AdvancePaid       decimal.Decimal
	RoyaltyForPeriod  decimal.Decimal
	LastPeriodBalance decimal.Decimal
	Balance           decimal.Decimal
	AmountPayable     decimal.Decimal
}

// PartyStatement is one party's rows plus summary.
type PartyStatement struct {
	Rows    []CalculationRow
	Summary PartySummary
}

// HasPositiveRate reports whether any row carries a royalty rate above zero.
// The document layer uses this to gate illustrator statements.
func (p PartyStatement) HasPositiveRate() bool {
	for _, r := range p.Rows {
		if r.EffectiveRatePercent.IsPositive() {
			return true
		}
	}
	return false
}

// Statement is the full result for one (book, period) request.
type Statement struct {
	BookUID     string
	PeriodStart string
	PeriodEnd   string

	Sales []SalesLine

	Author      PartyStatement
	Illustrator PartyStatement

	// Counters updated with this period's movement; the caller persists
	// them (serialized per book to avoid lost updates).
	Counters Counters
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator computes royalty statements. It is stateless and safe for
// concurrent use across requests.
type Calculator struct{}

// Calculate produces the statement for both parties.
func (Calculator) Calculate(req Request) Statement {
	author, updated := calcParty(req.Author, req.Sales, req.Counters.Clone())
	illustrator, _ := calcParty(req.Illustrator, req.Sales, req.Counters.Clone())

	return Statement{
		BookUID:     req.BookUID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Sales:       req.Sales,
		Author:      author,
		Illustrator: illustrator,
		Counters:    updated,
	}
}

func calcParty(terms PartyTerms, sales []SalesLine, counters Counters) (PartyStatement, Counters) {
	totalRoyalty := decimal.Zero
	rows := make([]CalculationRow, 0, len(sales))

	for _, line := range sales {
		netUnits := line.NetUnits()
		lifetimeBefore := counters.LifetimeQuantity[line.Category]
		returnsBefore := counters.ReturnsToDate[line.Category]

		var value, amount, effRate decimal.Decimal

		switch {
		case terms.Schedule != nil:
			format := CanonicalFormat(line.Category)
			block := terms.Schedule.BlockForFormat(format)
			if block != nil {
				fragments := ComputeLine(block, lifetimeBefore, netUnits, line.UnitPriceOrNetRevenue, line.DiscountPercent)
				for _, f := range fragments {
					value = value.Add(f.ValueAmount)
					amount = amount.Add(f.RoyaltyAmount)
				}
				effRate = effectiveRate(amount, value)
			} else {
				// Uncovered format: report gross sales, earn nothing.
				value = line.UnitPriceOrNetRevenue.Mul(decimal.NewFromInt(clampNonNegative(netUnits)))
			}

		default:
			// Legacy mode: flat category rate over the line value.
			rate := terms.LegacyRates[line.Category]
			value = legacyLineValue(line, netUnits)
			amount = value.Mul(rate).Div(hundred)
			effRate = rate
		}

		totalRoyalty = totalRoyalty.Add(amount)

		rows = append(rows, CalculationRow{
			Category:             line.Category,
			Units:                line.Units,
			Returns:              line.Returns,
			NetUnits:             netUnits,
			LifetimeQuantity:     lifetimeBefore,
			ReturnsToDate:        returnsBefore,
			UnitPrice:            line.UnitPriceOrNetRevenue,
			EffectiveRatePercent: effRate,
			DiscountPercent:      line.DiscountPercent,
			NetRevenue:           line.NetRevenue,
			ValueAmount:          value,
			RoyaltyAmount:        amount,
		})

		counters.LifetimeQuantity[line.Category] = lifetimeBefore + netUnits
		counters.ReturnsToDate[line.Category] = returnsBefore + line.Returns
	}

	lastBalance := terms.LastBalance
	if lastBalance.IsZero() && !terms.Advance.IsZero() {
		lastBalance = terms.Advance.Abs().Neg()
	}
	balance := lastBalance.Add(totalRoyalty)
	payable := balance
	if payable.IsNegative() {
		payable = decimal.Zero
	}

	return PartyStatement{
		Rows: rows,
		Summary: PartySummary{
			AdvancePaid:       terms.Advance.Abs(),
			RoyaltyForPeriod:  totalRoyalty,
			LastPeriodBalance: lastBalance,
			Balance:           balance,
			AmountPayable:     payable,
		},
	}, counters
}

// legacyLineValue computes the line value in legacy mode. In net-revenue
// mode the supplied figure IS the value (with the E-book platform-fee
// carve-out); otherwise list price times net units, clamped at zero.
func legacyLineValue(line SalesLine, netUnits int64) decimal.Decimal {
	if line.NetRevenue {
		value := line.UnitPriceOrNetRevenue
		if CanonicalFormat(line.Category) == FormatEbook {
			value = value.Mul(decimal.NewFromInt(1).Sub(ebookNetReceiptsFee))
		}
		return value
	}
	return line.UnitPriceOrNetRevenue.Mul(decimal.NewFromInt(clampNonNegative(netUnits)))
}

// effectiveRate guards the divide-by-zero on display: a zero-value line
// shows 0%.
func effectiveRate(royalty, value decimal.Decimal) decimal.Decimal {
	if !value.IsPositive() {
		return decimal.Zero
	}
	return royalty.Div(value).Mul(hundred)
}

func clampNonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
