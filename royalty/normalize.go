/*
normalize.go - Sales category to canonical format mapping

PURPOSE:
  Category labels vary across legacy spreadsheets and new intake formats
  ("HC", "Canada-PB", "e-book", ...). Rights blocks are keyed by canonical
  format names, so tier lookup must be format-agnostic. This file maps a raw
  category string to its canonical format.

RULES (in order):
  1. Substring rules: "hc"+"can" -> Hardcover, "pb"+"can" -> Paperback,
     a "canada-" prefix dispatches on its tail.
  2. Exact synonym table: hardcover/hc, paperback/pb, board book/boardbook.
  3. E-book: any category containing "ebook", or exactly "e-book".
  4. Anything else passes through unchanged; the rights-block lookup then
     fails per the uncovered-format rule (gross value, zero royalty).
*/
package royalty

import "strings"

// Canonical format names used by rights blocks.
const (
	FormatHardcover = "Hardcover"
	FormatPaperback = "Paperback"
	FormatBoardBook = "Board Book"
	FormatEbook     = "E-book"
)

// CanonicalFormat maps a raw sales-category string to a canonical format
// name. Unknown categories are returned unchanged.
func CanonicalFormat(category string) string {
	c := normalizeKey(category)

	if strings.Contains(c, "hc") && strings.Contains(c, "can") {
		return FormatHardcover
	}
	if strings.Contains(c, "pb") && strings.Contains(c, "can") {
		return FormatPaperback
	}
	if tail, ok := strings.CutPrefix(c, "canada-"); ok {
		if strings.HasPrefix(tail, "hc") {
			return FormatHardcover
		}
		return FormatPaperback
	}

	switch c {
	case "hardcover", "hc":
		return FormatHardcover
	case "paperback", "pb":
		return FormatPaperback
	case "board book", "boardbook":
		return FormatBoardBook
	}

	if strings.Contains(c, "ebook") || c == "e-book" {
		return FormatEbook
	}

	return category
}

// normalizeKey lowercases and trims for case-insensitive matching.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
