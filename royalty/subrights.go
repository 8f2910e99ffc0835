/*
subrights.go - Subsidiary-rights clause resolution

PURPOSE:
  Maps a schedule's stored subsidiary rights onto the fixed set of canonical
  contract clauses. Stored names are messy ("First serial publication",
  "first-serial", ...) so matching is a substring test against a normalized
  form of the name.

FORCED CLAUSES:
  Canada and Export ALWAYS resolve to the literal token "2/3" (two-thirds of
  the prevailing U.S. rate), regardless of any stored percent. This is a
  standing contractual convention, not a lookup miss.

OMISSION:
  A clause that is absent and not forced is simply left out of the result.
  Downstream, omission means "strike this clause from the document".
*/
package royalty

import "strings"

// Clause is a canonical subsidiary-rights contract clause.
type Clause string

const (
	ClauseReprint                Clause = "hc_pb_large_type"
	ClauseAnthologies            Clause = "anthologies"
	ClauseBookClub               Clause = "book_club"
	ClauseFirstSerialText        Clause = "first_serial_text"
	ClauseFirstSerialIllustrated Clause = "first_serial_illustrated"
	ClauseSecondSerial           Clause = "second_serial"
	ClauseAudioPhysical          Clause = "audio_physical"
	ClauseAudioDigital           Clause = "audio_digital"
	ClauseUK                     Clause = "uk"
	ClauseCanada                 Clause = "canada"
	ClauseExport                 Clause = "export"
	ClauseForeignTranslation     Clause = "foreign_translation"
)

// Variant keys used by serial and audio subrights.
const (
	VariantTextOnly   = "text_only"
	VariantTextAndArt = "text_and_art"
	VariantPhysical   = "physical"
	VariantDigital    = "digital"
)

// twoThirds is the forced Canada/Export token.
const twoThirds = "2/3"

// ResolvedSubrights maps each present clause to its resolved value: a
// percent rendered as a plain number, or a contractual token like "2/3".
type ResolvedSubrights map[Clause]string

// ResolveSubrights resolves the stored subrights against the canonical
// clause set. Canada and Export are always present and always "2/3".
func ResolveSubrights(subrights []Subright) ResolvedSubrights {
	out := ResolvedSubrights{
		ClauseCanada: twoThirds,
		ClauseExport: twoThirds,
	}
	if len(subrights) == 0 {
		return out
	}

	find := func(fragment string) *Subright {
		for i := range subrights {
			if strings.Contains(normalizeClauseName(subrights[i].Name), fragment) {
				return &subrights[i]
			}
		}
		return nil
	}

	setPercent := func(clause Clause, sr *Subright) {
		if sr == nil || sr.Percent == nil {
			return
		}
		out[clause] = sr.Percent.String()
	}
	setVariant := func(clause Clause, sr *Subright, variant string) {
		if sr == nil {
			return
		}
		if v, ok := sr.Variants[variant]; ok {
			out[clause] = v.String()
		}
	}

	// a. Hardcover, paperback, and large-type reprint editions
	setPercent(ClauseReprint, find("hardcover paperback"))

	// b. Anthologies / textbooks / digests
	setPercent(ClauseAnthologies, find("anthologies"))

	// c. Book club publication
	setPercent(ClauseBookClub, find("book club"))

	// d. First serial publication: text-only / text-and-art
	firstSerial := find("first serial")
	setVariant(ClauseFirstSerialText, firstSerial, VariantTextOnly)
	setVariant(ClauseFirstSerialIllustrated, firstSerial, VariantTextAndArt)

	// e. Second serial publication: the text-only variant stands for the
	// single contract percent.
	setVariant(ClauseSecondSerial, find("second serial"), VariantTextOnly)

	// f. Audiobooks: physical / digital
	audio := find("audiobook")
	setVariant(ClauseAudioPhysical, audio, VariantPhysical)
	setVariant(ClauseAudioDigital, audio, VariantDigital)

	// g. UK
	setPercent(ClauseUK, find("uk"))

	// j. Foreign translation
	setPercent(ClauseForeignTranslation, find("foreign translation"))

	return out
}

// normalizeClauseName lowercases and collapses every non-alphanumeric run to
// a single space, so "First-Serial (publication)" matches "first serial".
func normalizeClauseName(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		} else {
			space = true
		}
	}
	return b.String()
}
