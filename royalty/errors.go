/*
errors.go - Centralized error types for the royalty engine

PURPOSE:
  All engine error types in one place. The statement calculator follows a
  repair-and-continue philosophy: a malformed tier or missing rights block
  degrades that single line (best-effort rate, or zero royalty with full
  gross value) and the statement is always produced. These errors therefore
  surface mostly at schedule-authoring boundaries (factory, API validation),
  not mid-calculation.

USAGE:
  if errors.Is(err, royalty.ErrUnknownComparator) { ... }

SEE ALSO:
  - factory/schedule.go: wraps these when parsing stored schedules
  - statement.go: degrades instead of returning errors per line
*/
package royalty

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownComparator is returned when a stored comparator string is not
	// one of <, <=, >, >=, ==.
	ErrUnknownComparator = errors.New("unknown comparator")

	// ErrUnknownConditionKind is returned when a stored condition kind is not
	// "units" or "discount".
	ErrUnknownConditionKind = errors.New("unknown condition kind")

	// ErrDuplicateFormat is returned when a schedule carries two rights
	// blocks for the same canonical format.
	ErrDuplicateFormat = errors.New("duplicate rights block for format")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ScheduleError reports where in a stored schedule parsing failed.
type ScheduleError struct {
	Party  string
	Format string
	Err    error
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("schedule %s/%s: %v", e.Party, e.Format, e.Err)
}

func (e *ScheduleError) Unwrap() error { return e.Err }
