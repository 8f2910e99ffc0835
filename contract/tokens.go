/*
Package contract derives the merge tokens used by contract document templates.

PURPOSE:
  Deal memos are turned into contracts by substituting {Token} placeholders
  in a Word template. This package computes the royalty-derived subset of
  those tokens from an author's schedule: the per-format tier rates and copy
  limits, the flat e-book rate, and the Sub_* subsidiary-rights values.

OMISSION SEMANTICS:
  A token absent from the result means its clause does not apply. The
  document assembler deletes any template paragraph whose tokens are all
  missing, so a schedule without an audiobook subright yields a contract
  without an audiobook clause. HasBoardBook drives the same deletion for
  the board-book royalty paragraph.

SEE ALSO:
  - royalty/subrights.go: clause resolution the Sub_* tokens are built from
*/
package contract

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/marblepress/royalty-engine/royalty"
)

// =============================================================================
// TOKEN NAMES
// =============================================================================

// Subsidiary-rights tokens. Every name here may appear in a template
// paragraph that is struck when the token has no value.
const (
	TokenSubReprint                = "Sub_HC_PB_LargeType"
	TokenSubAnthologies            = "Sub_Anthologies"
	TokenSubBookClub               = "Sub_BookClub"
	TokenSubFirstSerialText        = "Sub_FirstSerial_Text"
	TokenSubFirstSerialIllustrated = "Sub_FirstSerial_Illustrated"
	TokenSubSecondSerial           = "Sub_SecondSerial"
	TokenSubAudioPhysical          = "Sub_Audio_Physical"
	TokenSubAudioDigital           = "Sub_Audio_Digital"
	TokenSubUK                     = "Sub_UK"
	TokenSubCanada                 = "Sub_Canada"
	TokenSubExport                 = "Sub_Export"
	TokenSubForeignTranslation     = "Sub_ForeignTranslation"
)

// clauseTokens maps resolved clauses to their template token names.
var clauseTokens = map[royalty.Clause]string{
	royalty.ClauseReprint:                TokenSubReprint,
	royalty.ClauseAnthologies:            TokenSubAnthologies,
	royalty.ClauseBookClub:               TokenSubBookClub,
	royalty.ClauseFirstSerialText:        TokenSubFirstSerialText,
	royalty.ClauseFirstSerialIllustrated: TokenSubFirstSerialIllustrated,
	royalty.ClauseSecondSerial:           TokenSubSecondSerial,
	royalty.ClauseAudioPhysical:          TokenSubAudioPhysical,
	royalty.ClauseAudioDigital:           TokenSubAudioDigital,
	royalty.ClauseUK:                     TokenSubUK,
	royalty.ClauseCanada:                 TokenSubCanada,
	royalty.ClauseExport:                 TokenSubExport,
	royalty.ClauseForeignTranslation:     TokenSubForeignTranslation,
}

// Per-format token prefixes. Tier rates become Prefix_1 through Prefix_4
// and the first tier's units threshold becomes Prefix_Copy_Limit_1.
const (
	prefixHardcover = "Hardcover"
	prefixPaperback = "Paperback"
	prefixBoardBook = "Boardbook"
	tokenEbook      = "Ebook"
)

// maxTierTokens caps how many tier rates a template paragraph can hold.
const maxTierTokens = 4

// =============================================================================
// TOKEN GENERATION
// =============================================================================

// TokenSet is the derived royalty tokens for one author schedule.
type TokenSet struct {
	Values map[string]string
	// HasBoardBook reports whether the schedule carries a board-book
	// rights block. When false the template's board-book paragraph is
	// deleted outright rather than rendered with empty tokens.
	HasBoardBook bool
}

// Tokens derives the royalty and subsidiary-rights tokens from the author
// schedule. A nil schedule yields only the forced Sub_Canada and Sub_Export
// tokens.
func Tokens(sched *royalty.Schedule) TokenSet {
	set := TokenSet{Values: make(map[string]string)}

	var subrights []royalty.Subright
	if sched != nil {
		subrights = sched.Subrights

		fillFormat(set.Values, prefixHardcover, sched.BlockForFormat(royalty.FormatHardcover))
		fillFormat(set.Values, prefixPaperback, sched.BlockForFormat(royalty.FormatPaperback))
		if fillFormat(set.Values, prefixBoardBook, sched.BlockForFormat(royalty.FormatBoardBook)) {
			set.HasBoardBook = true
		}

		if eb := sched.BlockForFormat(royalty.FormatEbook); eb != nil {
			if flat, ok := eb.Pricing.(royalty.FlatPricing); ok {
				set.Values[tokenEbook] = flat.RatePercent.String()
			}
		}
	}

	for clause, value := range royalty.ResolveSubrights(subrights) {
		if token, ok := clauseTokens[clause]; ok {
			set.Values[token] = value
		}
	}

	return set
}

// fillFormat writes the tier tokens for one format block. Returns whether
// the block exists and is tiered.
func fillFormat(values map[string]string, prefix string, block *royalty.RightsBlock) bool {
	if block == nil {
		return false
	}
	tiered, ok := block.Pricing.(royalty.TieredPricing)
	if !ok || len(tiered.Tiers) == 0 {
		return false
	}

	for i, tier := range tiered.Tiers {
		if i >= maxTierTokens {
			break
		}
		values[fmt.Sprintf("%s_%d", prefix, i+1)] = tier.RatePercent.String()
	}

	if limit, ok := copyLimit(tiered.Tiers[0]); ok {
		values[prefix+"_Copy_Limit_1"] = limit.String()
	}
	return true
}

// copyLimit extracts the first units threshold of a tier, if any.
func copyLimit(tier royalty.Tier) (decimal.Decimal, bool) {
	for _, c := range tier.Conditions {
		if c.Kind == royalty.UnitsThreshold {
			return c.Value, true
		}
	}
	return decimal.Decimal{}, false
}
