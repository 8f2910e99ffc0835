/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract: the frontend's
  book document keeps its historical field names (author_royalty,
  illustrator_advance, royalties.first_rights) while the domain model stays
  free to evolve.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY FIELDS:
  All currency and rate fields are decimals, serialized as JSON strings.
  The frontend treats them as opaque exact numbers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: the royalties storage shape embedded here
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/marblepress/royalty-engine/catalog"
	"github.com/marblepress/royalty-engine/factory"
	"github.com/marblepress/royalty-engine/royalty"
)

// =============================================================================
// BOOK DOCUMENT
// =============================================================================

// BookDTO is the book document the frontend reads and writes. Royalty terms
// ride along in their historical positions: legacy flat rates and advances
// as top-level fields, the rich schedules under "royalties".
type BookDTO struct {
	UID      string `json:"uid,omitempty"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`

	Author        string               `json:"author"`
	AuthorEmail   string               `json:"author_email,omitempty"`
	AuthorAddress catalog.Address      `json:"author_address,omitempty"`
	AuthorAgent   *catalog.Agent       `json:"author_agent,omitempty"`
	Illustrator   *catalog.Illustrator `json:"illustrator,omitempty"`

	AuthorRoyalty      []catalog.LegacyRate `json:"author_royalty,omitempty"`
	AuthorAdvance      decimal.Decimal      `json:"author_advance"`
	IllustratorRoyalty []catalog.LegacyRate `json:"illustrator_royalty,omitempty"`
	IllustratorAdvance decimal.Decimal      `json:"illustrator_advance"`

	Royalties *factory.RoyaltiesJSON `json:"royalties,omitempty"`

	PublishingYear int                  `json:"publishing_year,omitempty"`
	Description    string               `json:"description,omitempty"`
	Formats        []catalog.BookFormat `json:"formats,omitempty"`
}

// ToBook converts the wire document into the domain model, parsing the rich
// schedules through the factory.
func (d BookDTO) ToBook() (catalog.Book, error) {
	book := catalog.Book{
		UID:            d.UID,
		Title:          d.Title,
		Subtitle:       d.Subtitle,
		Author:         d.Author,
		AuthorEmail:    d.AuthorEmail,
		AuthorAddress:  d.AuthorAddress,
		AuthorAgent:    d.AuthorAgent,
		Illustrator:    d.Illustrator,
		PublishingYear: d.PublishingYear,
		Description:    d.Description,
		Formats:        d.Formats,
	}

	var authorSched, illusSched *royalty.Schedule
	if d.Royalties != nil {
		var err error
		authorSched, err = factory.BuildSchedule(string(royalty.PartyAuthor), d.Royalties.Author)
		if err != nil {
			return book, err
		}
		illusSched, err = factory.BuildSchedule(string(royalty.PartyIllustrator), d.Royalties.Illustrator)
		if err != nil {
			return book, err
		}
	}

	book.AuthorRoyalties = catalog.PartyRoyalties{
		Schedule:    authorSched,
		LegacyRates: d.AuthorRoyalty,
		Advance:     d.AuthorAdvance,
	}
	book.IllustratorRoyalties = catalog.PartyRoyalties{
		Schedule:    illusSched,
		LegacyRates: d.IllustratorRoyalty,
		Advance:     d.IllustratorAdvance,
	}
	return book, nil
}

// FromBook renders the domain model back into the wire document.
func FromBook(b catalog.Book) BookDTO {
	dto := BookDTO{
		UID:                b.UID,
		Title:              b.Title,
		Subtitle:           b.Subtitle,
		Author:             b.Author,
		AuthorEmail:        b.AuthorEmail,
		AuthorAddress:      b.AuthorAddress,
		AuthorAgent:        b.AuthorAgent,
		Illustrator:        b.Illustrator,
		AuthorRoyalty:      b.AuthorRoyalties.LegacyRates,
		AuthorAdvance:      b.AuthorRoyalties.Advance,
		IllustratorRoyalty: b.IllustratorRoyalties.LegacyRates,
		IllustratorAdvance: b.IllustratorRoyalties.Advance,
		PublishingYear:     b.PublishingYear,
		Description:        b.Description,
		Formats:            b.Formats,
	}

	if b.AuthorRoyalties.Schedule != nil || b.IllustratorRoyalties.Schedule != nil {
		dto.Royalties = &factory.RoyaltiesJSON{
			Author:      factory.PartyJSON(b.AuthorRoyalties.Schedule),
			Illustrator: factory.PartyJSON(b.IllustratorRoyalties.Schedule),
		}
	}
	return dto
}

// =============================================================================
// CALCULATION
// =============================================================================

// SalesLineDTO is one sales row of a calculation request.
type SalesLineDTO struct {
	Category              string          `json:"category"`
	Units                 int64           `json:"units"`
	Returns               int64           `json:"returns"`
	UnitPriceOrNetRevenue decimal.Decimal `json:"unit_price_or_net_revenue"`
	Discount              decimal.Decimal `json:"discount"`
	NetRevenue            bool            `json:"net_revenue"`
}

func (d SalesLineDTO) toLine() royalty.SalesLine {
	return royalty.SalesLine{
		Category:              d.Category,
		Units:                 d.Units,
		Returns:               d.Returns,
		UnitPriceOrNetRevenue: d.UnitPriceOrNetRevenue,
		DiscountPercent:       d.Discount,
		NetRevenue:            d.NetRevenue,
	}
}

func fromLine(l royalty.SalesLine) SalesLineDTO {
	return SalesLineDTO{
		Category:              l.Category,
		Units:                 l.Units,
		Returns:               l.Returns,
		UnitPriceOrNetRevenue: l.UnitPriceOrNetRevenue,
		Discount:              l.DiscountPercent,
		NetRevenue:            l.NetRevenue,
	}
}

// CalculateRequest drives /calculate, /statements, and /render. The legacy
// rate maps and advances override the book's stored values when supplied,
// matching the historical request contract.
type CalculateRequest struct {
	UID         string         `json:"uid"`
	PeriodStart string         `json:"period_start"`
	PeriodEnd   string         `json:"period_end"`
	SalesData   []SalesLineDTO `json:"sales_data"`

	AuthorRates      map[string]decimal.Decimal `json:"author_rates,omitempty"`
	IllustratorRates map[string]decimal.Decimal `json:"illustrator_rates,omitempty"`

	AuthorAdvance      decimal.Decimal `json:"author_advance,omitempty"`
	IllustratorAdvance decimal.Decimal `json:"illustrator_advance,omitempty"`
}

// CalculationRowDTO is one computed category row.
type CalculationRowDTO struct {
	Category           string          `json:"category"`
	Units              int64           `json:"units"`
	Returns            int64           `json:"returns"`
	NetUnits           int64           `json:"net_units"`
	LifetimeQuantity   int64           `json:"lifetime_quantity"`
	ReturnsToDate      int64           `json:"returns_to_date"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	RoyaltyRatePercent decimal.Decimal `json:"royalty_rate_percent"`
	Discount           decimal.Decimal `json:"discount"`
	NetRevenue         string          `json:"net_revenue"`
	Value              decimal.Decimal `json:"value"`
	Royalty            decimal.Decimal `json:"royalty"`
}

func fromRow(r royalty.CalculationRow) CalculationRowDTO {
	net := ""
	if r.NetRevenue {
		net = "Yes"
	}
	return CalculationRowDTO{
		Category:           r.Category,
		Units:              r.Units,
		Returns:            r.Returns,
		NetUnits:           r.NetUnits,
		LifetimeQuantity:   r.LifetimeQuantity,
		ReturnsToDate:      r.ReturnsToDate,
		UnitPrice:          r.UnitPrice,
		RoyaltyRatePercent: r.EffectiveRatePercent.Round(2),
		Discount:           r.DiscountPercent,
		NetRevenue:         net,
		Value:              r.ValueAmount,
		Royalty:            r.RoyaltyAmount,
	}
}

// PartyResultDTO is one party's calculation: the category rows plus the
// financial summary in the flat shape the frontend consumes.
type PartyResultDTO struct {
	Categories   []CalculationRowDTO `json:"categories"`
	Advance      decimal.Decimal     `json:"advance"`
	RoyaltyTotal decimal.Decimal     `json:"royalty_total"`
	LastBalance  decimal.Decimal     `json:"last_balance"`
	Balance      decimal.Decimal     `json:"balance"`
	Payable      decimal.Decimal     `json:"payable"`
}

func fromPartyStatement(ps royalty.PartyStatement) PartyResultDTO {
	out := PartyResultDTO{
		Categories:   make([]CalculationRowDTO, 0, len(ps.Rows)),
		Advance:      ps.Summary.AdvancePaid,
		RoyaltyTotal: ps.Summary.RoyaltyForPeriod,
		LastBalance:  ps.Summary.LastPeriodBalance,
		Balance:      ps.Summary.Balance,
		Payable:      ps.Summary.AmountPayable,
	}
	for _, r := range ps.Rows {
		out.Categories = append(out.Categories, fromRow(r))
	}
	return out
}

// CalculationsDTO bundles both parties.
type CalculationsDTO struct {
	Author      PartyResultDTO `json:"author"`
	Illustrator PartyResultDTO `json:"illustrator"`
}

// CalculateResponse is the /calculate response.
type CalculateResponse struct {
	Message      string          `json:"message"`
	Calculations CalculationsDTO `json:"calculations"`
}

// =============================================================================
// STATEMENTS
// =============================================================================

// SummaryDTO is a saved statement's financial close.
type SummaryDTO struct {
	AdvancePaid       decimal.Decimal `json:"advance_paid"`
	RoyaltyForPeriod  decimal.Decimal `json:"royalty_for_period"`
	LastPeriodBalance decimal.Decimal `json:"last_period_balance"`
	Balance           decimal.Decimal `json:"balance"`
	AmountPayable     decimal.Decimal `json:"amount_payable"`
}

// StatementDTO is one saved statement in history listings.
type StatementDTO struct {
	ID          string              `json:"id"`
	UID         string              `json:"uid"`
	BookTitle   string              `json:"book_title"`
	Party       string              `json:"party"`
	PersonName  string              `json:"person_name"`
	PeriodStart string              `json:"period_start"`
	PeriodEnd   string              `json:"period_end"`
	GeneratedAt string              `json:"generated_at"`
	SalesData   []SalesLineDTO      `json:"sales_data"`
	Categories  []CalculationRowDTO `json:"categories"`
	Summary     SummaryDTO          `json:"summary"`
}

func fromStatementRecord(rec catalog.StatementRecord) StatementDTO {
	dto := StatementDTO{
		ID:          rec.ID,
		UID:         rec.BookUID,
		BookTitle:   rec.BookTitle,
		Party:       string(rec.Party),
		PersonName:  rec.PersonName,
		PeriodStart: rec.PeriodStart,
		PeriodEnd:   rec.PeriodEnd,
		GeneratedAt: rec.GeneratedAt.Format(time.RFC3339),
		Summary: SummaryDTO{
			AdvancePaid:       rec.Summary.AdvancePaid,
			RoyaltyForPeriod:  rec.Summary.RoyaltyForPeriod,
			LastPeriodBalance: rec.Summary.LastPeriodBalance,
			Balance:           rec.Summary.Balance,
			AmountPayable:     rec.Summary.AmountPayable,
		},
	}
	for _, l := range rec.Sales {
		dto.SalesData = append(dto.SalesData, fromLine(l))
	}
	for _, r := range rec.Rows {
		dto.Categories = append(dto.Categories, fromRow(r))
	}
	return dto
}

// =============================================================================
// CONTRACT TOKENS
// =============================================================================

// ContractTokensDTO is the /contract-tokens response.
type ContractTokensDTO struct {
	Values       map[string]string `json:"values"`
	HasBoardBook bool              `json:"has_boardbook"`
}

// =============================================================================
// MISC
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the generic success envelope.
type MessageResponse struct {
	Message string `json:"message"`
}
