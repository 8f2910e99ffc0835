package royalty_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/marblepress/royalty-engine/royalty"
)

func pct(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func TestResolveSubrights_CanadaExportAlwaysTwoThirds(t *testing.T) {
	// for ANY stored percent on a Canada or Export subright, the
	// resolved token must literally equal "2/3".

	got := royalty.ResolveSubrights([]royalty.Subright{
		{Name: "Canada", Percent: pct(50)},
		{Name: "Export rights", Percent: pct(80)},
	})

	assert.Equal(t, "2/3", got[royalty.ClauseCanada])
	assert.Equal(t, "2/3", got[royalty.ClauseExport])
}

func TestResolveSubrights_EmptyInput_StillForcesCanadaExport(t *testing.T) {
	got := royalty.ResolveSubrights(nil)

	assert.Equal(t, "2/3", got[royalty.ClauseCanada])
	assert.Equal(t, "2/3", got[royalty.ClauseExport])
	assert.Len(t, got, 2, "nothing else is present without stored subrights")
}

func TestResolveSubrights_FlatPercents(t *testing.T) {
	got := royalty.ResolveSubrights([]royalty.Subright{
		{Name: "Book club publication", Percent: pct(50)},
		{Name: "Hardcover, paperback, and large-type reprint", Percent: pct(25)},
		{Name: "Anthologies and digests", Percent: pct(40)},
		{Name: "UK", Percent: pct(70)},
		{Name: "Foreign translation", Percent: pct(75)},
	})

	assert.Equal(t, "50", got[royalty.ClauseBookClub])
	assert.Equal(t, "25", got[royalty.ClauseReprint])
	assert.Equal(t, "40", got[royalty.ClauseAnthologies])
	assert.Equal(t, "70", got[royalty.ClauseUK])
	assert.Equal(t, "75", got[royalty.ClauseForeignTranslation])
}

func TestResolveSubrights_Variants(t *testing.T) {
	got := royalty.ResolveSubrights([]royalty.Subright{
		{Name: "First serial publication", Variants: map[string]decimal.Decimal{
			royalty.VariantTextOnly:   decimal.NewFromInt(90),
			royalty.VariantTextAndArt: decimal.NewFromInt(45),
		}},
		{Name: "Second serial", Variants: map[string]decimal.Decimal{
			royalty.VariantTextOnly: decimal.NewFromInt(50),
		}},
		{Name: "Audiobooks", Variants: map[string]decimal.Decimal{
			royalty.VariantPhysical: decimal.NewFromInt(10),
			royalty.VariantDigital:  decimal.NewFromInt(25),
		}},
	})

	assert.Equal(t, "90", got[royalty.ClauseFirstSerialText])
	assert.Equal(t, "45", got[royalty.ClauseFirstSerialIllustrated])
	assert.Equal(t, "50", got[royalty.ClauseSecondSerial])
	assert.Equal(t, "10", got[royalty.ClauseAudioPhysical])
	assert.Equal(t, "25", got[royalty.ClauseAudioDigital])
}

func TestResolveSubrights_FuzzyNameMatching(t *testing.T) {
	// Stored names are matched by substring on a normalized form, so
	// punctuation and casing differences still resolve.
	got := royalty.ResolveSubrights([]royalty.Subright{
		{Name: "BOOK-CLUB (domestic)", Percent: pct(55)},
	})

	assert.Equal(t, "55", got[royalty.ClauseBookClub])
}

func TestResolveSubrights_AbsentClausesOmitted(t *testing.T) {
	// Omission signals "remove this clause" to the document generator.
	got := royalty.ResolveSubrights([]royalty.Subright{
		{Name: "Book club", Percent: pct(50)},
	})

	_, hasSerial := got[royalty.ClauseFirstSerialText]
	assert.False(t, hasSerial)
	_, hasAudio := got[royalty.ClauseAudioDigital]
	assert.False(t, hasAudio)
}
