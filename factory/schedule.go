/*
Package factory converts stored JSON royalty definitions into engine types.

PURPOSE:
  Royalty schedules are authored through the catalog UI and stored as JSON
  on the book record. This package is the single boundary where that JSON
  becomes royalty.Schedule values: comparator and condition-kind strings are
  parsed into enums here, the flat-vs-tiered pricing union is resolved here,
  and authoring mistakes (duplicate formats, unknown comparators) are
  rejected here rather than surfacing mid-calculation.

JSON SCHEMA (stored under the book's "royalties" key):
  {
    "author": {
      "first_rights": [
        {
          "format": "Hardcover",
          "base": "list_price",
          "tiers": [
            {"rate_percent": 10,
             "conditions": [{"kind": "units", "comparator": "<", "value": 5000}]},
            {"rate_percent": 12.5,
             "conditions": [{"kind": "units", "comparator": ">=", "value": 5000}]}
          ]
        },
        {"format": "E-book", "base": "net_receipts", "flat_rate_percent": 25}
      ],
      "subrights": [
        {"name": "Book club", "percent": 50},
        {"name": "First serial", "variants": {"text_only": 90, "text_and_art": 45}}
      ]
    },
    "illustrator": { ... }
  }

PRICING RESOLUTION:
  A block with a non-empty "tiers" list becomes TieredPricing; otherwise it
  becomes FlatPricing at "flat_rate_percent" (zero when unset). The engine
  never sees the implicit "empty tiers means flat" convention.

SEE ALSO:
  - royalty/condition.go: ParseComparator, ParseConditionKind
  - store/sqlite: persists the raw JSON this package parses
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/marblepress/royalty-engine/royalty"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type ConditionJSON struct {
	Kind       string          `json:"kind"`
	Comparator string          `json:"comparator"`
	Value      decimal.Decimal `json:"value"`
}

type TierJSON struct {
	RatePercent decimal.Decimal `json:"rate_percent"`
	Conditions  []ConditionJSON `json:"conditions,omitempty"`
}

type RightsBlockJSON struct {
	Format          string           `json:"format"`
	Base            string           `json:"base,omitempty"`
	Tiers           []TierJSON       `json:"tiers,omitempty"`
	FlatRatePercent *decimal.Decimal `json:"flat_rate_percent,omitempty"`
}

type SubrightJSON struct {
	Name     string                     `json:"name"`
	Percent  *decimal.Decimal           `json:"percent,omitempty"`
	Variants map[string]decimal.Decimal `json:"variants,omitempty"`
}

type PartyRightsJSON struct {
	FirstRights []RightsBlockJSON `json:"first_rights,omitempty"`
	Subrights   []SubrightJSON    `json:"subrights,omitempty"`
}

type RoyaltiesJSON struct {
	Author      PartyRightsJSON `json:"author"`
	Illustrator PartyRightsJSON `json:"illustrator"`
}

// =============================================================================
// FACTORY
// =============================================================================

// ParseRoyalties parses the stored royalties document into per-party
// schedules. A party with no first rights and no subrights yields nil,
// which puts that party in legacy mode.
func ParseRoyalties(data []byte) (author, illustrator *royalty.Schedule, err error) {
	var doc RoyaltiesJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse royalties: %w", err)
	}

	author, err = BuildSchedule(string(royalty.PartyAuthor), doc.Author)
	if err != nil {
		return nil, nil, err
	}
	illustrator, err = BuildSchedule(string(royalty.PartyIllustrator), doc.Illustrator)
	if err != nil {
		return nil, nil, err
	}
	return author, illustrator, nil
}

// BuildSchedule converts one party's JSON rights into a royalty.Schedule.
// Returns nil (no error) when the party has no terms at all.
func BuildSchedule(party string, pr PartyRightsJSON) (*royalty.Schedule, error) {
	if len(pr.FirstRights) == 0 && len(pr.Subrights) == 0 {
		return nil, nil
	}

	sched := &royalty.Schedule{}
	seen := make(map[string]bool)

	for _, rb := range pr.FirstRights {
		format := royalty.CanonicalFormat(rb.Format)
		if seen[format] {
			return nil, &royalty.ScheduleError{Party: party, Format: rb.Format, Err: royalty.ErrDuplicateFormat}
		}
		seen[format] = true

		block, err := buildBlock(rb)
		if err != nil {
			return nil, &royalty.ScheduleError{Party: party, Format: rb.Format, Err: err}
		}
		block.Format = format
		sched.Blocks = append(sched.Blocks, block)
	}

	for _, sr := range pr.Subrights {
		sched.Subrights = append(sched.Subrights, royalty.Subright{
			Name:     sr.Name,
			Percent:  sr.Percent,
			Variants: sr.Variants,
		})
	}

	return sched, nil
}

func buildBlock(rb RightsBlockJSON) (royalty.RightsBlock, error) {
	block := royalty.RightsBlock{Base: parseBase(rb.Base)}

	if len(rb.Tiers) == 0 {
		rate := decimal.Zero
		if rb.FlatRatePercent != nil {
			rate = *rb.FlatRatePercent
		}
		block.Pricing = royalty.FlatPricing{RatePercent: rate}
		return block, nil
	}

	tiers := make([]royalty.Tier, 0, len(rb.Tiers))
	for _, tj := range rb.Tiers {
		tier := royalty.Tier{RatePercent: tj.RatePercent}
		for _, cj := range tj.Conditions {
			kind, err := royalty.ParseConditionKind(cj.Kind)
			if err != nil {
				return block, err
			}
			cmp, err := royalty.ParseComparator(cj.Comparator)
			if err != nil {
				return block, err
			}
			tier.Conditions = append(tier.Conditions, royalty.Condition{
				Kind:  kind,
				Cmp:   cmp,
				Value: cj.Value,
			})
		}
		tiers = append(tiers, tier)
	}
	block.Pricing = royalty.TieredPricing{Tiers: tiers}
	return block, nil
}

func parseBase(s string) royalty.Base {
	if s == string(royalty.BaseNetReceipts) {
		return royalty.BaseNetReceipts
	}
	return royalty.BaseListPrice
}

// =============================================================================
// SERIALIZATION (engine types back to storage JSON)
// =============================================================================

// MarshalRoyalties renders per-party schedules back to the storage format.
// Used when a book edited through the API is persisted.
func MarshalRoyalties(author, illustrator *royalty.Schedule) ([]byte, error) {
	doc := RoyaltiesJSON{
		Author:      PartyJSON(author),
		Illustrator: PartyJSON(illustrator),
	}
	return json.Marshal(doc)
}

// PartyJSON renders one party's schedule in the storage shape. A nil
// schedule yields the zero value.
func PartyJSON(s *royalty.Schedule) PartyRightsJSON {
	var out PartyRightsJSON
	if s == nil {
		return out
	}
	for _, b := range s.Blocks {
		rb := RightsBlockJSON{Format: b.Format, Base: string(b.Base)}
		switch p := b.Pricing.(type) {
		case royalty.FlatPricing:
			rate := p.RatePercent
			rb.FlatRatePercent = &rate
		case royalty.TieredPricing:
			for _, t := range p.Tiers {
				tj := TierJSON{RatePercent: t.RatePercent}
				for _, c := range t.Conditions {
					tj.Conditions = append(tj.Conditions, ConditionJSON{
						Kind:       c.Kind.String(),
						Comparator: c.Cmp.String(),
						Value:      c.Value,
					})
				}
				rb.Tiers = append(rb.Tiers, tj)
			}
		}
		out.FirstRights = append(out.FirstRights, rb)
	}
	for _, sr := range s.Subrights {
		out.Subrights = append(out.Subrights, SubrightJSON{
			Name:     sr.Name,
			Percent:  sr.Percent,
			Variants: sr.Variants,
		})
	}
	return out
}
