/*
store.go - Storage interfaces consumed by the back office

PURPOSE:
  Defines the persistence contracts. Implementations:
  - catalog/store: in-memory, for tests and development
  - store/sqlite:  SQLite-backed, for the server

DESIGN:
  Interfaces live with the domain (this package); implementations live
  elsewhere and are injected. The statement store owns the cross-period
  state the engine itself refuses to hold: statement history, and with it
  the derived lifetime counters and last-period balances.

CONCURRENCY CONTRACT:
  Lifetime counters are read-modify-written per calculation. Callers MUST
  serialize calculations per book UID or risk lost updates; the API layer
  does this with a per-book lock. The stores themselves only guarantee
  atomicity of single operations.
*/
package catalog

import (
	"context"
	"time"

	"github.com/marblepress/royalty-engine/royalty"
)

// =============================================================================
// STATEMENT RECORD
// =============================================================================

// StatementRecord is one party's saved statement for one (book, period).
type StatementRecord struct {
	ID          string
	BookUID     string
	BookTitle   string
	Party       royalty.Party
	PersonName  string
	PeriodStart string
	PeriodEnd   string
	GeneratedAt time.Time

	Sales   []royalty.SalesLine
	Rows    []royalty.CalculationRow
	Summary royalty.PartySummary
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// CatalogStore persists book records.
type CatalogStore interface {
	ListBooks(ctx context.Context) ([]Book, error)
	GetBook(ctx context.Context, uid string) (*Book, error)

	// SaveBook upserts by UID when set, else by (title, author).
	SaveBook(ctx context.Context, book Book) error

	// DeleteBook removes by (title, author); reports whether anything matched.
	DeleteBook(ctx context.Context, title, author string) (bool, error)
}

// StatementStore persists statement history. Saving a statement for a
// (book, party, period) replaces any earlier statement for the same key.
type StatementStore interface {
	SaveStatement(ctx context.Context, rec StatementRecord) error

	// StatementsForBook returns a party's statements for one book, ordered
	// by period end ascending.
	StatementsForBook(ctx context.Context, bookUID string, party royalty.Party) ([]StatementRecord, error)

	// StatementsForPerson returns all statements filed under a person's name
	// for the given party kind.
	StatementsForPerson(ctx context.Context, party royalty.Party, personName string) ([]StatementRecord, error)

	// DeleteStatement removes a person's statement for a period; reports
	// whether anything matched.
	DeleteStatement(ctx context.Context, party royalty.Party, personName, periodStart, periodEnd string) (bool, error)
}

// Stores bundles both interfaces for injection.
type Stores interface {
	CatalogStore
	StatementStore
}
