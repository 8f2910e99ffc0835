package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marblepress/royalty-engine/catalog"
	"github.com/marblepress/royalty-engine/render"
	"github.com/marblepress/royalty-engine/royalty"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5", "$5.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.891", "$1,234,567.89"},
		{"-1234.5", "$-1,234.50"},
		{"999", "$999.00"},
		{"1000", "$1,000.00"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, render.Money(dec(c.in)), "Money(%s)", c.in)
	}
}

func sampleBook() *catalog.Book {
	return &catalog.Book{
		UID:      "b-1",
		Title:    "The Tide Pool",
		Subtitle: "A Shore Story",
		Author:   "Jane Marsh",
		AuthorAgent: &catalog.Agent{
			Agency: "Marsh Literary",
			Address: catalog.Address{
				Street: "12 Harbor Way",
				City:   "Portland",
				State:  "ME",
				Zip:    "04101",
			},
		},
		Formats: []catalog.BookFormat{
			{Format: "Hardcover", ISBN: "978-1-23456-789-0"},
		},
	}
}

func sampleRecord() catalog.StatementRecord {
	return catalog.StatementRecord{
		BookUID:     "b-1",
		Party:       royalty.PartyAuthor,
		PersonName:  "Jane Marsh",
		PeriodStart: "2026-01-01",
		PeriodEnd:   "2026-06-30",
		Rows: []royalty.CalculationRow{{
			Category:             "Hardcover",
			Units:                1200,
			Returns:              50,
			NetUnits:             1150,
			LifetimeQuantity:     4000,
			ReturnsToDate:        120,
			UnitPrice:            dec("18.99"),
			EffectiveRatePercent: dec("10"),
			DiscountPercent:      dec("45"),
			ValueAmount:          dec("21838.50"),
			RoyaltyAmount:        dec("2183.85"),
		}},
		Summary: royalty.PartySummary{
			AdvancePaid:       dec("3000"),
			RoyaltyForPeriod:  dec("2183.85"),
			LastPeriodBalance: dec("-3000"),
			Balance:           dec("-816.15"),
			AmountPayable:     dec("0"),
		},
	}
}

func TestStatement_RendersDetailAndSummary(t *testing.T) {
	// GIVEN a saved author statement
	var buf bytes.Buffer

	// WHEN rendering for screen
	err := render.Statement(&buf, sampleBook(), sampleRecord(), render.Options{
		Now: time.Date(2026, 7, 15, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	html := buf.String()

	// THEN the document carries the header, party, and detail values
	assert.Contains(t, html, `data-target="screen"`)
	assert.Contains(t, html, "ROYALTY STATEMENT")
	assert.Contains(t, html, "The Tide Pool: A Shore Story")
	assert.Contains(t, html, "Jane Marsh")
	assert.Contains(t, html, "Period: 2026-01-01 to 2026-06-30")
	assert.Contains(t, html, "Marsh Literary")
	assert.Contains(t, html, "12 Harbor Way")
	assert.Contains(t, html, "Hardcover: 978-1-23456-789-0")
	assert.Contains(t, html, "$18.99")
	assert.Contains(t, html, "10.00%")
	assert.Contains(t, html, "$21,838.50")
	assert.Contains(t, html, "$2,183.85")

	// AND the totals row closes the table
	assert.Contains(t, html, ">Total<")

	// AND the financial summary with the carried negative balance
	assert.Contains(t, html, "$3,000.00")
	assert.Contains(t, html, "$-816.15")
	assert.Contains(t, html, "$0.00")
	assert.Contains(t, html, "Generated: July 15, 2026 at 9:30 AM")
}

func TestStatement_BlendedRateRoundsToTwoDecimals(t *testing.T) {
	// GIVEN a row whose effective rate is a repeating decimal (a period
	// straddling a tier threshold blends two rates)
	rec := sampleRecord()
	rec.Rows[0].EffectiveRatePercent = dec("34").Div(dec("3"))

	var buf bytes.Buffer
	require.NoError(t, render.Statement(&buf, sampleBook(), rec, render.Options{}))

	assert.Contains(t, buf.String(), "11.33%")
	assert.NotContains(t, buf.String(), "11.333")
}

func TestStatement_PDFTargetAndLogo(t *testing.T) {
	var buf bytes.Buffer
	err := render.Statement(&buf, sampleBook(), sampleRecord(), render.Options{
		Target:     render.TargetPDF,
		LogoBase64: "aGVsbG8=",
	})
	require.NoError(t, err)
	html := buf.String()

	assert.Contains(t, html, `data-target="pdf"`)
	assert.Contains(t, html, "data:image/png;base64,aGVsbG8=")
}

func TestStatement_NoISBNsShowsNA(t *testing.T) {
	book := sampleBook()
	book.Formats = nil

	var buf bytes.Buffer
	require.NoError(t, render.Statement(&buf, book, sampleRecord(), render.Options{}))

	assert.Contains(t, buf.String(), "N/A")
}

func TestStatement_EscapesBookTitle(t *testing.T) {
	// GIVEN a title carrying markup
	book := sampleBook()
	book.Title = "<script>alert(1)</script>"
	book.Subtitle = ""

	var buf bytes.Buffer
	require.NoError(t, render.Statement(&buf, book, sampleRecord(), render.Options{}))

	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
}

func TestNoStatement(t *testing.T) {
	var buf bytes.Buffer
	err := render.NoStatement(&buf, "The Tide Pool", "This book has no illustrator royalty terms.")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No Statement Available")
	assert.Contains(t, buf.String(), "no illustrator royalty terms")
}
