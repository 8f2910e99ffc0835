package factory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marblepress/royalty-engine/factory"
	"github.com/marblepress/royalty-engine/royalty"
)

func TestParseRoyalties_TieredAndFlatBlocks(t *testing.T) {
	// GIVEN a stored document with a tiered hardcover block and a flat e-book block
	data := []byte(`{
		"author": {
			"first_rights": [
				{
					"format": "Hardcover",
					"base": "list_price",
					"tiers": [
						{"rate_percent": 10, "conditions": [
							{"kind": "units", "comparator": "<", "value": 5000}
						]},
						{"rate_percent": 12.5, "conditions": [
							{"kind": "units", "comparator": ">=", "value": 5000}
						]}
					]
				},
				{"format": "E-book", "base": "net_receipts", "flat_rate_percent": 25}
			]
		},
		"illustrator": {}
	}`)

	// WHEN parsing
	author, illustrator, err := factory.ParseRoyalties(data)

	// THEN the author schedule carries both blocks with parsed enums
	require.NoError(t, err)
	require.NotNil(t, author)
	require.Len(t, author.Blocks, 2)

	hc := author.Blocks[0]
	assert.Equal(t, royalty.FormatHardcover, hc.Format)
	assert.Equal(t, royalty.BaseListPrice, hc.Base)
	tiered, ok := hc.Pricing.(royalty.TieredPricing)
	require.True(t, ok)
	require.Len(t, tiered.Tiers, 2)
	require.Len(t, tiered.Tiers[0].Conditions, 1)
	assert.Equal(t, royalty.UnitsThreshold, tiered.Tiers[0].Conditions[0].Kind)
	assert.Equal(t, royalty.LT, tiered.Tiers[0].Conditions[0].Cmp)
	assert.True(t, decimal.NewFromInt(5000).Equal(tiered.Tiers[0].Conditions[0].Value))
	assert.Equal(t, royalty.GE, tiered.Tiers[1].Conditions[0].Cmp)

	eb := author.Blocks[1]
	assert.Equal(t, royalty.FormatEbook, eb.Format)
	assert.Equal(t, royalty.BaseNetReceipts, eb.Base)
	flat, ok := eb.Pricing.(royalty.FlatPricing)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(25).Equal(flat.RatePercent))

	// AND the empty illustrator section yields no schedule (legacy mode)
	assert.Nil(t, illustrator)
}

func TestBuildSchedule_FlatRateDefaultsToZero(t *testing.T) {
	// GIVEN a block with neither tiers nor a flat rate
	pr := factory.PartyRightsJSON{
		FirstRights: []factory.RightsBlockJSON{{Format: "Paperback"}},
	}

	// WHEN building
	sched, err := factory.BuildSchedule("author", pr)

	// THEN the block is flat at 0%
	require.NoError(t, err)
	require.NotNil(t, sched)
	flat, ok := sched.Blocks[0].Pricing.(royalty.FlatPricing)
	require.True(t, ok)
	assert.True(t, flat.RatePercent.IsZero())
}

func TestBuildSchedule_CanonicalizesFormats(t *testing.T) {
	// GIVEN synonym formats authored with shorthand names
	pr := factory.PartyRightsJSON{
		FirstRights: []factory.RightsBlockJSON{
			{Format: "hc"},
			{Format: "ebook"},
		},
	}

	sched, err := factory.BuildSchedule("author", pr)

	require.NoError(t, err)
	assert.Equal(t, royalty.FormatHardcover, sched.Blocks[0].Format)
	assert.Equal(t, royalty.FormatEbook, sched.Blocks[1].Format)
}

func TestBuildSchedule_RejectsDuplicateFormats(t *testing.T) {
	// GIVEN two blocks that canonicalize to the same format
	pr := factory.PartyRightsJSON{
		FirstRights: []factory.RightsBlockJSON{
			{Format: "Hardcover"},
			{Format: "hc"},
		},
	}

	_, err := factory.BuildSchedule("author", pr)

	require.Error(t, err)
	assert.ErrorIs(t, err, royalty.ErrDuplicateFormat)
	var serr *royalty.ScheduleError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "author", serr.Party)
}

func TestBuildSchedule_RejectsUnknownComparator(t *testing.T) {
	pr := factory.PartyRightsJSON{
		FirstRights: []factory.RightsBlockJSON{{
			Format: "Hardcover",
			Tiers: []factory.TierJSON{{
				RatePercent: decimal.NewFromInt(10),
				Conditions: []factory.ConditionJSON{{
					Kind:       "units",
					Comparator: "!=",
					Value:      decimal.NewFromInt(100),
				}},
			}},
		}},
	}

	_, err := factory.BuildSchedule("author", pr)

	assert.ErrorIs(t, err, royalty.ErrUnknownComparator)
}

func TestBuildSchedule_RejectsUnknownConditionKind(t *testing.T) {
	pr := factory.PartyRightsJSON{
		FirstRights: []factory.RightsBlockJSON{{
			Format: "Hardcover",
			Tiers: []factory.TierJSON{{
				RatePercent: decimal.NewFromInt(10),
				Conditions: []factory.ConditionJSON{{
					Kind:       "territory",
					Comparator: "<",
					Value:      decimal.NewFromInt(100),
				}},
			}},
		}},
	}

	_, err := factory.BuildSchedule("author", pr)

	assert.ErrorIs(t, err, royalty.ErrUnknownConditionKind)
}

func TestBuildSchedule_Subrights(t *testing.T) {
	// GIVEN a party with subrights only
	half := decimal.NewFromInt(50)
	pr := factory.PartyRightsJSON{
		Subrights: []factory.SubrightJSON{
			{Name: "Book club", Percent: &half},
			{Name: "First serial", Variants: map[string]decimal.Decimal{
				"text_only":    decimal.NewFromInt(90),
				"text_and_art": decimal.NewFromInt(45),
			}},
		},
	}

	sched, err := factory.BuildSchedule("author", pr)

	require.NoError(t, err)
	require.NotNil(t, sched)
	require.Len(t, sched.Subrights, 2)
	assert.Equal(t, "Book club", sched.Subrights[0].Name)
	require.NotNil(t, sched.Subrights[0].Percent)
	assert.True(t, half.Equal(*sched.Subrights[0].Percent))
	assert.Len(t, sched.Subrights[1].Variants, 2)
}

func TestMarshalRoyalties_RoundTrip(t *testing.T) {
	// GIVEN a parsed document
	data := []byte(`{
		"author": {
			"first_rights": [
				{
					"format": "Hardcover",
					"base": "list_price",
					"tiers": [
						{"rate_percent": 10, "conditions": [
							{"kind": "units", "comparator": "<=", "value": 5000}
						]}
					]
				}
			],
			"subrights": [{"name": "Book club", "percent": 50}]
		},
		"illustrator": {}
	}`)
	author, illustrator, err := factory.ParseRoyalties(data)
	require.NoError(t, err)

	// WHEN marshalling and parsing again
	out, err := factory.MarshalRoyalties(author, illustrator)
	require.NoError(t, err)
	author2, illustrator2, err := factory.ParseRoyalties(out)
	require.NoError(t, err)

	// THEN the round-tripped schedule is equivalent
	require.NotNil(t, author2)
	require.Len(t, author2.Blocks, 1)
	tiered, ok := author2.Blocks[0].Pricing.(royalty.TieredPricing)
	require.True(t, ok)
	assert.Equal(t, royalty.LE, tiered.Tiers[0].Conditions[0].Cmp)
	require.Len(t, author2.Subrights, 1)
	assert.Nil(t, illustrator2)
}
