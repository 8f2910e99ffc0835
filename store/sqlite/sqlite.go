/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements catalog.CatalogStore and catalog.StatementStore using SQLite.
  In production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  books:      Catalog records. The structured document (contributors,
              formats, advances, legacy rates) lives in doc_json; the
              royalty schedules live separately in royalties_json so the
              schedule factory's storage shape stays the single parse
              boundary.
  statements: Saved statement history, one row per (book, party, period).
              Recalculating a period replaces the row in place via the
              unique index.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The per-book serialization of
  calculations is the API layer's job; this store only guarantees
  atomicity of single operations.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/royalty.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - catalog/store.go: Interface definitions
  - catalog/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/marblepress/royalty-engine/catalog"
	"github.com/marblepress/royalty-engine/factory"
	"github.com/marblepress/royalty-engine/royalty"
)

// Store implements catalog.Stores using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ catalog.Stores = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Catalog records
	CREATE TABLE IF NOT EXISTS books (
		uid TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		doc_json TEXT NOT NULL,
		royalties_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Legacy upsert/delete flows address books by (title, author)
	CREATE INDEX IF NOT EXISTS idx_books_title_author
		ON books(title, author);

	-- Statement history
	CREATE TABLE IF NOT EXISTS statements (
		id TEXT PRIMARY KEY,
		book_uid TEXT NOT NULL,
		book_title TEXT NOT NULL,
		party TEXT NOT NULL,
		person_name TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		sales_json TEXT NOT NULL,
		rows_json TEXT NOT NULL,
		summary_json TEXT NOT NULL
	);

	-- Recalculating a period replaces the earlier statement
	CREATE UNIQUE INDEX IF NOT EXISTS idx_statements_book_party_period
		ON statements(book_uid, party, period_start, period_end);

	-- Per-person statement listing (hot path for the statements UI)
	CREATE INDEX IF NOT EXISTS idx_statements_person
		ON statements(party, person_name);

	-- Lifetime counter derivation walks a book's history in period order
	CREATE INDEX IF NOT EXISTS idx_statements_book_period
		ON statements(book_uid, party, period_end);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STORAGE DOCUMENTS
// =============================================================================

// partyTermsDoc is one party's stored terms: the schedule in the factory's
// storage shape plus the fields the engine needs alongside it.
type partyTermsDoc struct {
	Rights      factory.PartyRightsJSON `json:"rights"`
	LegacyRates []catalog.LegacyRate    `json:"legacy_rates,omitempty"`
	Advance     decimal.Decimal         `json:"advance"`
}

type royaltiesDoc struct {
	Author      partyTermsDoc `json:"author"`
	Illustrator partyTermsDoc `json:"illustrator"`
}

func marshalRoyalties(b catalog.Book) ([]byte, error) {
	doc := royaltiesDoc{
		Author: partyTermsDoc{
			Rights:      factory.PartyJSON(b.AuthorRoyalties.Schedule),
			LegacyRates: b.AuthorRoyalties.LegacyRates,
			Advance:     b.AuthorRoyalties.Advance,
		},
		Illustrator: partyTermsDoc{
			Rights:      factory.PartyJSON(b.IllustratorRoyalties.Schedule),
			LegacyRates: b.IllustratorRoyalties.LegacyRates,
			Advance:     b.IllustratorRoyalties.Advance,
		},
	}
	return json.Marshal(doc)
}

func unmarshalRoyalties(data []byte, b *catalog.Book) error {
	var doc royaltiesDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse stored royalties: %w", err)
	}

	authorSched, err := factory.BuildSchedule(string(royalty.PartyAuthor), doc.Author.Rights)
	if err != nil {
		return err
	}
	illusSched, err := factory.BuildSchedule(string(royalty.PartyIllustrator), doc.Illustrator.Rights)
	if err != nil {
		return err
	}

	b.AuthorRoyalties = catalog.PartyRoyalties{
		Schedule:    authorSched,
		LegacyRates: doc.Author.LegacyRates,
		Advance:     doc.Author.Advance,
	}
	b.IllustratorRoyalties = catalog.PartyRoyalties{
		Schedule:    illusSched,
		LegacyRates: doc.Illustrator.LegacyRates,
		Advance:     doc.Illustrator.Advance,
	}
	return nil
}

// =============================================================================
// CATALOG STORE (catalog.CatalogStore interface)
// =============================================================================

// ListBooks returns all books ordered by title.
func (s *Store) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT doc_json, royalties_json FROM books ORDER BY title, author",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		var docJSON, royaltiesJSON string
		if err := rows.Scan(&docJSON, &royaltiesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		book, err := decodeBook(docJSON, royaltiesJSON)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// GetBook retrieves a book by UID. Returns nil when not found.
func (s *Store) GetBook(ctx context.Context, uid string) (*catalog.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docJSON, royaltiesJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT doc_json, royalties_json FROM books WHERE uid = ?", uid,
	).Scan(&docJSON, &royaltiesJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	book, err := decodeBook(docJSON, royaltiesJSON)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// SaveBook upserts by UID when set, else by (title, author).
func (s *Store) SaveBook(ctx context.Context, book catalog.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if book.UID == "" {
		// Legacy flow: locate an existing record by (title, author) so an
		// edit does not fork the book.
		var uid string
		err := s.db.QueryRowContext(ctx,
			"SELECT uid FROM books WHERE TRIM(title) = ? AND TRIM(author) = ?",
			strings.TrimSpace(book.Title), strings.TrimSpace(book.Author),
		).Scan(&uid)
		switch {
		case err == sql.ErrNoRows:
			return fmt.Errorf("save book: no uid and no existing (title, author) match")
		case err != nil:
			return err
		}
		book.UID = uid
	}

	docJSON, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("encode book: %w", err)
	}
	royaltiesJSON, err := marshalRoyalties(book)
	if err != nil {
		return fmt.Errorf("encode royalties: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO books (uid, title, author, doc_json, royalties_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			doc_json = excluded.doc_json,
			royalties_json = excluded.royalties_json,
			updated_at = excluded.updated_at
	`,
		book.UID, book.Title, book.Author,
		string(docJSON), string(royaltiesJSON), now, now,
	)
	return err
}

// DeleteBook removes by (title, author); reports whether anything matched.
func (s *Store) DeleteBook(ctx context.Context, title, author string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM books WHERE TRIM(title) = ? AND TRIM(author) = ?",
		strings.TrimSpace(title), strings.TrimSpace(author),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func decodeBook(docJSON, royaltiesJSON string) (catalog.Book, error) {
	var book catalog.Book
	if err := json.Unmarshal([]byte(docJSON), &book); err != nil {
		return book, fmt.Errorf("parse stored book: %w", err)
	}
	if err := unmarshalRoyalties([]byte(royaltiesJSON), &book); err != nil {
		return book, err
	}
	return book, nil
}

// =============================================================================
// STATEMENT STORE (catalog.StatementStore interface)
// =============================================================================

// SaveStatement saves a statement, replacing any earlier statement for the
// same (book, party, period).
func (s *Store) SaveStatement(ctx context.Context, rec catalog.StatementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	salesJSON, err := json.Marshal(rec.Sales)
	if err != nil {
		return fmt.Errorf("encode sales: %w", err)
	}
	rowsJSON, err := json.Marshal(rec.Rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO statements
		(id, book_uid, book_title, party, person_name, period_start, period_end,
		 generated_at, sales_json, rows_json, summary_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(book_uid, party, period_start, period_end) DO UPDATE SET
			id = excluded.id,
			book_title = excluded.book_title,
			person_name = excluded.person_name,
			generated_at = excluded.generated_at,
			sales_json = excluded.sales_json,
			rows_json = excluded.rows_json,
			summary_json = excluded.summary_json
	`,
		rec.ID, rec.BookUID, rec.BookTitle, string(rec.Party), rec.PersonName,
		rec.PeriodStart, rec.PeriodEnd,
		rec.GeneratedAt.UTC().Format(time.RFC3339),
		string(salesJSON), string(rowsJSON), string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save statement: %w", err)
	}
	return nil
}

// StatementsForBook returns a party's statements for one book, ordered by
// period end ascending.
func (s *Store) StatementsForBook(ctx context.Context, bookUID string, party royalty.Party) ([]catalog.StatementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, book_uid, book_title, party, person_name, period_start, period_end,
		       generated_at, sales_json, rows_json, summary_json
		FROM statements
		WHERE book_uid = ? AND party = ?
		ORDER BY period_end ASC
	`
	return s.queryStatements(ctx, query, bookUID, string(party))
}

// StatementsForPerson returns all statements filed under a person's name.
func (s *Store) StatementsForPerson(ctx context.Context, party royalty.Party, personName string) ([]catalog.StatementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, book_uid, book_title, party, person_name, period_start, period_end,
		       generated_at, sales_json, rows_json, summary_json
		FROM statements
		WHERE party = ? AND person_name = ?
		ORDER BY period_end ASC
	`
	return s.queryStatements(ctx, query, string(party), personName)
}

// DeleteStatement removes a person's statement for a period.
func (s *Store) DeleteStatement(ctx context.Context, party royalty.Party, personName, periodStart, periodEnd string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM statements
		WHERE party = ? AND person_name = ? AND period_start = ? AND period_end = ?
	`, string(party), personName, periodStart, periodEnd)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) queryStatements(ctx context.Context, query string, args ...any) ([]catalog.StatementRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer rows.Close()

	var records []catalog.StatementRecord
	for rows.Next() {
		rec, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanStatement(rows *sql.Rows) (catalog.StatementRecord, error) {
	var (
		rec         catalog.StatementRecord
		party       string
		generatedAt string
		salesJSON   string
		rowsJSON    string
		summaryJSON string
	)

	err := rows.Scan(
		&rec.ID, &rec.BookUID, &rec.BookTitle, &party, &rec.PersonName,
		&rec.PeriodStart, &rec.PeriodEnd, &generatedAt,
		&salesJSON, &rowsJSON, &summaryJSON,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan statement: %w", err)
	}

	rec.Party = royalty.Party(party)
	rec.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)

	if err := json.Unmarshal([]byte(salesJSON), &rec.Sales); err != nil {
		return rec, fmt.Errorf("parse stored sales: %w", err)
	}
	if err := json.Unmarshal([]byte(rowsJSON), &rec.Rows); err != nil {
		return rec, fmt.Errorf("parse stored rows: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &rec.Summary); err != nil {
		return rec, fmt.Errorf("parse stored summary: %w", err)
	}
	return rec, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"statements", "books"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
