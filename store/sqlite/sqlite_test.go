package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marblepress/royalty-engine/catalog"
	"github.com/marblepress/royalty-engine/royalty"
	"github.com/marblepress/royalty-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleBook() catalog.Book {
	return catalog.Book{
		UID:    "b-1",
		Title:  "The Tide Pool",
		Author: "Jane Marsh",
		Illustrator: &catalog.Illustrator{
			Name: "Sam Reed",
		},
		Formats: []catalog.BookFormat{
			{Format: "Hardcover", ISBN: "978-1-23456-789-0"},
		},
		AuthorRoyalties: catalog.PartyRoyalties{
			Advance: dec("3000"),
			Schedule: &royalty.Schedule{
				Blocks: []royalty.RightsBlock{{
					Format: royalty.FormatHardcover,
					Base:   royalty.BaseListPrice,
					Pricing: royalty.TieredPricing{Tiers: []royalty.Tier{
						{
							RatePercent: dec("10"),
							Conditions: []royalty.Condition{{
								Kind:  royalty.UnitsThreshold,
								Cmp:   royalty.LT,
								Value: dec("5000"),
							}},
						},
						{
							RatePercent: dec("12.5"),
							Conditions: []royalty.Condition{{
								Kind:  royalty.UnitsThreshold,
								Cmp:   royalty.GE,
								Value: dec("5000"),
							}},
						},
					}},
				}},
			},
		},
		IllustratorRoyalties: catalog.PartyRoyalties{
			LegacyRates: []catalog.LegacyRate{
				{Category: "Hardcover", RoyaltyPercent: dec("5")},
			},
		},
	}
}

func sampleStatement(bookUID, period string) catalog.StatementRecord {
	return catalog.StatementRecord{
		ID:          "st-" + bookUID + "-" + period,
		BookUID:     bookUID,
		BookTitle:   "The Tide Pool",
		Party:       royalty.PartyAuthor,
		PersonName:  "Jane Marsh",
		PeriodStart: period + "-01-01",
		PeriodEnd:   period + "-06-30",
		GeneratedAt: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
		Sales: []royalty.SalesLine{{
			Category:              "Hardcover",
			Units:                 1200,
			Returns:               50,
			UnitPriceOrNetRevenue: dec("18.99"),
		}},
		Rows: []royalty.CalculationRow{{
			Category:             "Hardcover",
			Units:                1200,
			Returns:              50,
			NetUnits:             1150,
			UnitPrice:            dec("18.99"),
			EffectiveRatePercent: dec("10"),
			ValueAmount:          dec("21838.50"),
			RoyaltyAmount:        dec("2183.85"),
		}},
		Summary: royalty.PartySummary{
			AdvancePaid:       dec("3000"),
			RoyaltyForPeriod:  dec("2183.85"),
			LastPeriodBalance: dec("-3000"),
			Balance:           dec("-816.15"),
		},
	}
}

func TestSaveAndGetBook_RoundTripsRoyalties(t *testing.T) {
	// GIVEN a book with a tiered author schedule and legacy illustrator rates
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveBook(ctx, sampleBook()))

	// WHEN loading it back
	got, err := s.GetBook(ctx, "b-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	// THEN the structured document survives
	assert.Equal(t, "The Tide Pool", got.Title)
	assert.Equal(t, "Sam Reed", got.Illustrator.Name)
	require.Len(t, got.Formats, 1)

	// AND the schedule round-trips through the storage shape
	require.NotNil(t, got.AuthorRoyalties.Schedule)
	block := got.AuthorRoyalties.Schedule.BlockForFormat(royalty.FormatHardcover)
	require.NotNil(t, block)
	tiered, ok := block.Pricing.(royalty.TieredPricing)
	require.True(t, ok)
	require.Len(t, tiered.Tiers, 2)
	assert.Equal(t, royalty.GE, tiered.Tiers[1].Conditions[0].Cmp)
	assert.True(t, dec("3000").Equal(got.AuthorRoyalties.Advance))

	// AND the legacy-mode illustrator has no schedule
	assert.Nil(t, got.IllustratorRoyalties.Schedule)
	require.Len(t, got.IllustratorRoyalties.LegacyRates, 1)
	assert.True(t, dec("5").Equal(got.IllustratorRoyalties.LegacyRates[0].RoyaltyPercent))
}

func TestGetBook_NotFound(t *testing.T) {
	s := newStore(t)

	got, err := s.GetBook(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveBook_UpsertsByUID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	book := sampleBook()
	require.NoError(t, s.SaveBook(ctx, book))

	// WHEN saving the same UID with a new title
	book.Title = "The Tide Pool, Revised"
	require.NoError(t, s.SaveBook(ctx, book))

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Tide Pool, Revised", books[0].Title)
}

func TestSaveBook_LegacyUpsertByTitleAuthor(t *testing.T) {
	// GIVEN an existing record
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveBook(ctx, sampleBook()))

	// WHEN an edit arrives without a UID but with matching (title, author)
	edit := sampleBook()
	edit.UID = ""
	edit.Description = "updated"
	require.NoError(t, s.SaveBook(ctx, edit))

	// THEN the existing record is updated, not forked
	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "b-1", books[0].UID)
	assert.Equal(t, "updated", books[0].Description)
}

func TestSaveBook_NoUIDNoMatchFails(t *testing.T) {
	s := newStore(t)
	book := sampleBook()
	book.UID = ""

	err := s.SaveBook(context.Background(), book)

	assert.Error(t, err)
}

func TestDeleteBook(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveBook(ctx, sampleBook()))

	deleted, err := s.DeleteBook(ctx, "The Tide Pool", "Jane Marsh")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteBook(ctx, "The Tide Pool", "Jane Marsh")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSaveStatement_ReplacesSamePeriod(t *testing.T) {
	// GIVEN a saved statement for a period
	s := newStore(t)
	ctx := context.Background()
	rec := sampleStatement("b-1", "2026")
	require.NoError(t, s.SaveStatement(ctx, rec))

	// WHEN the period is recalculated and saved again
	rec.ID = "st-recalc"
	rec.Summary.RoyaltyForPeriod = dec("2500")
	require.NoError(t, s.SaveStatement(ctx, rec))

	// THEN only one statement exists for the period, with the new values
	got, err := s.StatementsForBook(ctx, "b-1", royalty.PartyAuthor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "st-recalc", got[0].ID)
	assert.True(t, dec("2500").Equal(got[0].Summary.RoyaltyForPeriod))
}

func TestStatementsForBook_OrderedByPeriodEnd(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveStatement(ctx, sampleStatement("b-1", "2026")))
	require.NoError(t, s.SaveStatement(ctx, sampleStatement("b-1", "2024")))
	require.NoError(t, s.SaveStatement(ctx, sampleStatement("b-1", "2025")))

	got, err := s.StatementsForBook(ctx, "b-1", royalty.PartyAuthor)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-06-30", got[0].PeriodEnd)
	assert.Equal(t, "2025-06-30", got[1].PeriodEnd)
	assert.Equal(t, "2026-06-30", got[2].PeriodEnd)
}

func TestStatementsForBook_FiltersByParty(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	author := sampleStatement("b-1", "2026")
	illus := sampleStatement("b-1", "2026")
	illus.ID = "st-illus"
	illus.Party = royalty.PartyIllustrator
	illus.PersonName = "Sam Reed"
	require.NoError(t, s.SaveStatement(ctx, author))
	require.NoError(t, s.SaveStatement(ctx, illus))

	got, err := s.StatementsForBook(ctx, "b-1", royalty.PartyIllustrator)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sam Reed", got[0].PersonName)
}

func TestStatementsForPerson(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	first := sampleStatement("b-1", "2026")
	second := sampleStatement("b-2", "2026")
	second.ID = "st-other-book"
	require.NoError(t, s.SaveStatement(ctx, first))
	require.NoError(t, s.SaveStatement(ctx, second))

	got, err := s.StatementsForPerson(ctx, royalty.PartyAuthor, "Jane Marsh")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.StatementsForPerson(ctx, royalty.PartyAuthor, "Nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteStatement(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	rec := sampleStatement("b-1", "2026")
	require.NoError(t, s.SaveStatement(ctx, rec))

	deleted, err := s.DeleteStatement(ctx, royalty.PartyAuthor, "Jane Marsh", rec.PeriodStart, rec.PeriodEnd)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteStatement(ctx, royalty.PartyAuthor, "Jane Marsh", rec.PeriodStart, rec.PeriodEnd)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStatement_RoundTripsRowsAndSales(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveStatement(ctx, sampleStatement("b-1", "2026")))

	got, err := s.StatementsForBook(ctx, "b-1", royalty.PartyAuthor)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.Len(t, got[0].Sales, 1)
	assert.True(t, dec("18.99").Equal(got[0].Sales[0].UnitPriceOrNetRevenue))
	require.Len(t, got[0].Rows, 1)
	assert.EqualValues(t, 1150, got[0].Rows[0].NetUnits)
	assert.True(t, dec("2183.85").Equal(got[0].Rows[0].RoyaltyAmount))
	assert.True(t, dec("-816.15").Equal(got[0].Summary.Balance))
}
