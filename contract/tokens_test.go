package contract_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marblepress/royalty-engine/contract"
	"github.com/marblepress/royalty-engine/royalty"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tieredBlock(format string, rates ...string) royalty.RightsBlock {
	var tiers []royalty.Tier
	for _, r := range rates {
		tiers = append(tiers, royalty.Tier{RatePercent: dec(r)})
	}
	return royalty.RightsBlock{
		Format:  format,
		Base:    royalty.BaseListPrice,
		Pricing: royalty.TieredPricing{Tiers: tiers},
	}
}

func TestTokens_TierRatesAndCopyLimit(t *testing.T) {
	// GIVEN a hardcover block with two tiers, the first gated at 5000 units
	hc := tieredBlock(royalty.FormatHardcover, "10", "12.5")
	tiers := hc.Pricing.(royalty.TieredPricing).Tiers
	tiers[0].Conditions = []royalty.Condition{
		{Kind: royalty.UnitsThreshold, Cmp: royalty.LT, Value: dec("5000")},
	}
	hc.Pricing = royalty.TieredPricing{Tiers: tiers}
	sched := &royalty.Schedule{Blocks: []royalty.RightsBlock{hc}}

	// WHEN deriving tokens
	set := contract.Tokens(sched)

	// THEN the tier rates and copy limit surface under the Hardcover prefix
	assert.Equal(t, "10", set.Values["Hardcover_1"])
	assert.Equal(t, "12.5", set.Values["Hardcover_2"])
	assert.Equal(t, "5000", set.Values["Hardcover_Copy_Limit_1"])
	assert.NotContains(t, set.Values, "Hardcover_3")
	assert.False(t, set.HasBoardBook)
}

func TestTokens_CapsAtFourTierRates(t *testing.T) {
	sched := &royalty.Schedule{Blocks: []royalty.RightsBlock{
		tieredBlock(royalty.FormatPaperback, "6", "7", "8", "9", "10"),
	}}

	set := contract.Tokens(sched)

	assert.Equal(t, "9", set.Values["Paperback_4"])
	assert.NotContains(t, set.Values, "Paperback_5")
}

func TestTokens_BoardBookFlag(t *testing.T) {
	// GIVEN a schedule with a tiered board-book block
	sched := &royalty.Schedule{Blocks: []royalty.RightsBlock{
		tieredBlock(royalty.FormatBoardBook, "5"),
	}}

	set := contract.Tokens(sched)

	assert.True(t, set.HasBoardBook)
	assert.Equal(t, "5", set.Values["Boardbook_1"])
}

func TestTokens_EbookFlatRate(t *testing.T) {
	sched := &royalty.Schedule{Blocks: []royalty.RightsBlock{{
		Format:  royalty.FormatEbook,
		Base:    royalty.BaseNetReceipts,
		Pricing: royalty.FlatPricing{RatePercent: dec("25")},
	}}}

	set := contract.Tokens(sched)

	assert.Equal(t, "25", set.Values["Ebook"])
}

func TestTokens_FlatBlockYieldsNoTierTokens(t *testing.T) {
	// GIVEN a hardcover block priced flat rather than tiered
	sched := &royalty.Schedule{Blocks: []royalty.RightsBlock{{
		Format:  royalty.FormatHardcover,
		Base:    royalty.BaseListPrice,
		Pricing: royalty.FlatPricing{RatePercent: dec("10")},
	}}}

	set := contract.Tokens(sched)

	assert.NotContains(t, set.Values, "Hardcover_1")
}

func TestTokens_SubrightsAndForcedClauses(t *testing.T) {
	half := dec("50")
	sched := &royalty.Schedule{Subrights: []royalty.Subright{
		{Name: "Book club publication", Percent: &half},
		{Name: "First serial", Variants: map[string]decimal.Decimal{
			royalty.VariantTextOnly:   dec("90"),
			royalty.VariantTextAndArt: dec("45"),
		}},
	}}

	set := contract.Tokens(sched)

	assert.Equal(t, "50", set.Values["Sub_BookClub"])
	assert.Equal(t, "90", set.Values["Sub_FirstSerial_Text"])
	assert.Equal(t, "45", set.Values["Sub_FirstSerial_Illustrated"])
	assert.Equal(t, "2/3", set.Values["Sub_Canada"])
	assert.Equal(t, "2/3", set.Values["Sub_Export"])
	// Absent clauses are omitted so their paragraphs can be struck.
	assert.NotContains(t, set.Values, "Sub_UK")
}

func TestTokens_NilSchedule(t *testing.T) {
	// GIVEN no royalty terms at all
	set := contract.Tokens(nil)

	// THEN only the forced clauses are present
	require.Len(t, set.Values, 2)
	assert.Equal(t, "2/3", set.Values["Sub_Canada"])
	assert.Equal(t, "2/3", set.Values["Sub_Export"])
	assert.False(t, set.HasBoardBook)
}
