// Package catalog holds the book-catalog domain: book records, contributor
// and agency details, per-party royalty terms, and the storage interfaces
// the back office consumes. The royalty engine itself never touches
// storage; this package is the boundary between the pure core and the
// persistence/HTTP layers.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/marblepress/royalty-engine/royalty"
)

// =============================================================================
// CONTRIBUTORS
// =============================================================================

// Agent is a literary agency contact attached to a contributor.
type Agent struct {
	Name    string  `json:"name,omitempty"`
	Agency  string  `json:"agency,omitempty"`
	Address Address `json:"address,omitempty"`
	Email   string  `json:"email,omitempty"`
}

// Address is a mailing address. Legacy records sometimes stored a single
// free-form string; the factory folds those into Street.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// Illustrator is the second royalty party on a book, when present.
type Illustrator struct {
	Name    string  `json:"name,omitempty"`
	Email   string  `json:"email,omitempty"`
	Address Address `json:"address,omitempty"`
	Agent   *Agent  `json:"agent,omitempty"`
}

// =============================================================================
// BOOK
// =============================================================================

// BookFormat is one published edition of a book.
type BookFormat struct {
	Format  string           `json:"format,omitempty"`
	ISBN    string           `json:"isbn,omitempty"`
	PubDate string           `json:"pub_date,omitempty"`
	Price   *decimal.Decimal `json:"price,omitempty"`
	PriceUS *decimal.Decimal `json:"price_us,omitempty"`
	PriceCA *decimal.Decimal `json:"price_can,omitempty"`
}

// LegacyRate is a flat category rate from the pre-tiered schedule era.
type LegacyRate struct {
	Category        string          `json:"category"`
	RoyaltyPercent  decimal.Decimal `json:"royalty_percent"`
	NetRevenueBased bool            `json:"net_revenue_based,omitempty"`
}

// PartyRoyalties is one party's complete terms: the rich tiered schedule
// when authored, otherwise the legacy flat rates.
type PartyRoyalties struct {
	Schedule    *royalty.Schedule
	LegacyRates []LegacyRate
	Advance     decimal.Decimal
}

// Terms converts to the engine's input shape. lastBalance comes from the
// statement history (zero means "let the engine net the advance").
func (p PartyRoyalties) Terms(lastBalance decimal.Decimal) royalty.PartyTerms {
	rates := make(map[string]decimal.Decimal, len(p.LegacyRates))
	for _, r := range p.LegacyRates {
		rates[r.Category] = r.RoyaltyPercent
	}
	return royalty.PartyTerms{
		Schedule:    p.Schedule,
		LegacyRates: rates,
		Advance:     p.Advance,
		LastBalance: lastBalance,
	}
}

// Book is a catalog record. UID is the single source of truth for identity;
// (title, author) is only used for legacy upsert/delete flows.
type Book struct {
	UID      string `json:"uid"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`

	Author        string       `json:"author"`
	AuthorEmail   string       `json:"author_email,omitempty"`
	AuthorAddress Address      `json:"author_address,omitempty"`
	AuthorAgent   *Agent       `json:"author_agent,omitempty"`
	Illustrator   *Illustrator `json:"illustrator,omitempty"`

	AuthorRoyalties      PartyRoyalties `json:"-"`
	IllustratorRoyalties PartyRoyalties `json:"-"`

	PublishingYear int          `json:"publishing_year,omitempty"`
	Description    string       `json:"description,omitempty"`
	Formats        []BookFormat `json:"formats,omitempty"`
}

// PartyName returns the display name for a royalty party.
func (b *Book) PartyName(party royalty.Party) string {
	if party == royalty.PartyIllustrator {
		if b.Illustrator == nil {
			return ""
		}
		return strings.TrimSpace(b.Illustrator.Name)
	}
	return strings.TrimSpace(b.Author)
}

// Royalties returns the terms for a party.
func (b *Book) Royalties(party royalty.Party) PartyRoyalties {
	if party == royalty.PartyIllustrator {
		return b.IllustratorRoyalties
	}
	return b.AuthorRoyalties
}

// ISBNs returns the distinct ISBNs across formats, prefixed by format name.
func (b *Book) ISBNs() []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range b.Formats {
		isbn := strings.TrimSpace(f.ISBN)
		if isbn == "" || seen[isbn] {
			continue
		}
		seen[isbn] = true
		name := f.Format
		if name == "" {
			name = "Unknown"
		}
		out = append(out, name+": "+isbn)
	}
	return out
}
