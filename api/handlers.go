/*
handlers.go - HTTP API handlers for the royalty back office

PURPOSE:
  Exposes the royalty engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Books:
    GET    /api/royalty/books                     List all books
    POST   /api/royalty/books                     Save (upsert) a book
    DELETE /api/royalty/books?title=&author=      Delete a book

  Calculation:
    POST   /api/royalty/calculate                 Compute both parties,
                                                  nothing persisted
    POST   /api/royalty/statements                Compute and save per-party
                                                  statements
    POST   /api/royalty/render?party=&format=     Compute, save, and return
                                                  the statement document

  History:
    GET    /api/royalty/statements/{party}/{name}   A person's statements
    DELETE /api/royalty/statements/{party}/{name}?period_start=&period_end=

  Reference data:
    GET    /api/royalty/categories                Sales categories
    GET    /api/royalty/format-types              Book format names
    GET    /api/royalty/contract-tokens/{uid}     Contract merge tokens

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Stores:     catalog + statement persistence (interface, sqlite or memory)
  - Calculator: the pure royalty engine
  - per-book locks for calculation serialization

CONCURRENCY:
  Lifetime counters are derived from saved history and written back on save,
  a read-modify-write across two store calls. Every calculation for a book
  runs under that book's lock so concurrent recalculations cannot interleave
  and drop counter updates.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Book or statement not found
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marblepress/royalty-engine/catalog"
	"github.com/marblepress/royalty-engine/contract"
	"github.com/marblepress/royalty-engine/render"
	"github.com/marblepress/royalty-engine/royalty"
)

// salesCategories is the reference list the frontend's sales grid offers.
var salesCategories = []string{
	"Hardcover", "Paperback", "Board Book", "E-book", "Export", "Foreign Rights",
	"Canada-HC", "Canada-PB", "UK", "Large-type reprint",
	"Selections/Condensations", "Book club", "First serial",
	"Second serial", "Physical Audiobook",
}

// formatTypes is the reference list for book editions.
var formatTypes = []string{
	"Hardcover", "Paperback", "Board Book", "E-book", "Audiobook", "Other",
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Stores catalog.Stores
	Calc   royalty.Calculator

	// logoBase64 is embedded into rendered statements; empty means no logo.
	logoBase64 string

	// Per-book calculation locks, see the concurrency note above.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewHandler creates a new handler with the given stores.
func NewHandler(stores catalog.Stores) *Handler {
	return &Handler{
		Stores: stores,
		locks:  make(map[string]*sync.Mutex),
	}
}

// LoadLogo reads the statement logo PNG. Missing logo is not fatal; the
// statements just render without it.
func (h *Handler) LoadLogo(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load logo: %w", err)
	}
	h.logoBase64 = base64.StdEncoding.EncodeToString(data)
	return nil
}

func (h *Handler) bookLock(uid string) *sync.Mutex {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	l, ok := h.locks[uid]
	if !ok {
		l = &sync.Mutex{}
		h.locks[uid] = l
	}
	return l
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

// =============================================================================
// INFO
// =============================================================================

// Info describes the API surface.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	books, err := h.Stores.ListBooks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list books: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Royalty Calculator API",
		"endpoints": map[string]string{
			"books":            "/api/royalty/books",
			"save_book":        "/api/royalty/books (POST)",
			"delete_book":      "/api/royalty/books (DELETE)",
			"calculate":        "/api/royalty/calculate (POST)",
			"statements":       "/api/royalty/statements (POST)",
			"render":           "/api/royalty/render (POST)",
			"get_statements":   "/api/royalty/statements/{party}/{name}",
			"delete_statement": "/api/royalty/statements/{party}/{name} (DELETE)",
			"contract_tokens":  "/api/royalty/contract-tokens/{uid}",
			"categories":       "/api/royalty/categories",
			"format_types":     "/api/royalty/format-types",
		},
		"total_books": len(books),
	})
}

// =============================================================================
// BOOKS
// =============================================================================

// ListBooks returns the full catalog as a JSON array.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.Stores.ListBooks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list books: %v", err)
		return
	}
	out := make([]BookDTO, 0, len(books))
	for _, b := range books {
		out = append(out, FromBook(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// SaveBook upserts a book. A document without a uid adopts the existing
// record's uid when (title, author) matches, else a new uid is minted.
func (h *Handler) SaveBook(w http.ResponseWriter, r *http.Request) {
	var dto BookDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid book document: %v", err)
		return
	}
	if strings.TrimSpace(dto.Title) == "" || strings.TrimSpace(dto.Author) == "" {
		writeError(w, http.StatusBadRequest, "title and author are required")
		return
	}

	book, err := dto.ToBook()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid royalty schedule: %v", err)
		return
	}

	ctx := r.Context()
	if book.UID == "" {
		existing, err := h.Stores.ListBooks(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "list books: %v", err)
			return
		}
		for _, e := range existing {
			if strings.TrimSpace(e.Title) == strings.TrimSpace(book.Title) &&
				strings.TrimSpace(e.Author) == strings.TrimSpace(book.Author) {
				book.UID = e.UID
				break
			}
		}
		if book.UID == "" {
			book.UID = uuid.NewString()
		}
	}

	if err := h.Stores.SaveBook(ctx, book); err != nil {
		writeError(w, http.StatusInternalServerError, "save book: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Book saved successfully",
		"book":    FromBook(book),
	})
}

// DeleteBook removes a book by (title, author) query parameters.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	author := r.URL.Query().Get("author")
	if title == "" || author == "" {
		writeError(w, http.StatusBadRequest, "title and author query parameters are required")
		return
	}

	deleted, err := h.Stores.DeleteBook(r.Context(), title, author)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete book: %v", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Book deleted successfully"})
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calculate computes both parties' statements without persisting anything.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCalculateRequest(w, r)
	if !ok {
		return
	}

	lock := h.bookLock(req.UID)
	lock.Lock()
	defer lock.Unlock()

	stmt, _, err := h.compute(r, req)
	if err != nil {
		writeComputeError(w, err)
		return
	}

	calculationsTotal.WithLabelValues("calculate").Inc()
	writeJSON(w, http.StatusOK, CalculateResponse{
		Message: "OK",
		Calculations: CalculationsDTO{
			Author:      fromPartyStatement(stmt.Author),
			Illustrator: fromPartyStatement(stmt.Illustrator),
		},
	})
}

// SaveStatements computes both parties and saves statements conditionally:
// the author's whenever rows exist, the illustrator's only when at least
// one row carries a positive royalty rate.
func (h *Handler) SaveStatements(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCalculateRequest(w, r)
	if !ok {
		return
	}

	lock := h.bookLock(req.UID)
	lock.Lock()
	defer lock.Unlock()

	stmt, book, err := h.compute(r, req)
	if err != nil {
		writeComputeError(w, err)
		return
	}

	ctx := r.Context()
	var saved []string

	if len(stmt.Author.Rows) > 0 {
		if err := h.saveStatement(ctx, book, req, royalty.PartyAuthor, stmt.Author); err != nil {
			writeError(w, http.StatusInternalServerError, "save author statement: %v", err)
			return
		}
		saved = append(saved, string(royalty.PartyAuthor))
	}
	if illustratorApplicable(stmt.Illustrator) {
		if err := h.saveStatement(ctx, book, req, royalty.PartyIllustrator, stmt.Illustrator); err != nil {
			writeError(w, http.StatusInternalServerError, "save illustrator statement: %v", err)
			return
		}
		saved = append(saved, string(royalty.PartyIllustrator))
	}

	calculationsTotal.WithLabelValues("statements").Inc()
	if len(saved) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "No statements saved (author/illustrator conditions not met).",
			"saved":   []string{},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Saved", "saved": saved})
}

// RenderStatement computes, saves, and returns the statement document for
// one party. An illustrator with no positive rate gets a 200 placeholder
// page instead of an error, flagged via X-Statement-Available.
func (h *Handler) RenderStatement(w http.ResponseWriter, r *http.Request) {
	if format := r.URL.Query().Get("format"); format != "" && format != "html" {
		writeError(w, http.StatusNotImplemented, "format %q not supported, use html", format)
		return
	}
	party := royalty.Party(r.URL.Query().Get("party"))
	if party == "" {
		party = royalty.PartyAuthor
	}
	if party != royalty.PartyAuthor && party != royalty.PartyIllustrator {
		writeError(w, http.StatusBadRequest, "party must be 'author' or 'illustrator'")
		return
	}

	req, ok := decodeCalculateRequest(w, r)
	if !ok {
		return
	}

	lock := h.bookLock(req.UID)
	lock.Lock()
	defer lock.Unlock()

	stmt, book, err := h.compute(r, req)
	if err != nil {
		writeComputeError(w, err)
		return
	}

	partyStmt := stmt.Author
	if party == royalty.PartyIllustrator {
		partyStmt = stmt.Illustrator
	}

	if party == royalty.PartyIllustrator && !illustratorApplicable(partyStmt) {
		w.Header().Set("X-Statement-Available", "false")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		render.NoStatement(w, book.Title, "There are no illustrator royalties to report (royalty rate is 0%).")
		return
	}
	if len(partyStmt.Rows) == 0 {
		writeError(w, http.StatusBadRequest, "no %s data in calculations", party)
		return
	}

	rec, err := h.statementRecord(book, req, party, partyStmt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "build statement: %v", err)
		return
	}
	if err := h.Stores.SaveStatement(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "save statement: %v", err)
		return
	}

	calculationsTotal.WithLabelValues("render").Inc()
	w.Header().Set("X-Statement-Available", "true")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	render.Statement(w, book, rec, render.Options{
		Target:     render.TargetScreen,
		LogoBase64: h.logoBase64,
	})
}

// =============================================================================
// STATEMENT HISTORY
// =============================================================================

// ListPersonStatements returns all statements filed under a person's name.
func (h *Handler) ListPersonStatements(w http.ResponseWriter, r *http.Request) {
	party, ok := partyParam(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")

	records, err := h.Stores.StatementsForPerson(r.Context(), party, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list statements: %v", err)
		return
	}
	out := make([]StatementDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, fromStatementRecord(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"statements": out})
}

// DeleteStatement removes a person's statement for a period.
func (h *Handler) DeleteStatement(w http.ResponseWriter, r *http.Request) {
	party, ok := partyParam(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	periodStart := r.URL.Query().Get("period_start")
	periodEnd := r.URL.Query().Get("period_end")
	if periodStart == "" || periodEnd == "" {
		writeError(w, http.StatusBadRequest, "period_start and period_end query parameters are required")
		return
	}

	deleted, err := h.Stores.DeleteStatement(r.Context(), party, name, periodStart, periodEnd)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete statement: %v", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "statement not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Statement deleted"})
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": salesCategories})
}

func (h *Handler) ListFormatTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"formats": formatTypes})
}

// ContractTokens derives the contract merge tokens from a book's author
// schedule.
func (h *Handler) ContractTokens(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	book, err := h.Stores.GetBook(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "get book: %v", err)
		return
	}
	if book == nil {
		writeError(w, http.StatusNotFound, "book not found for uid: %s", uid)
		return
	}

	set := contract.Tokens(book.AuthorRoyalties.Schedule)
	writeJSON(w, http.StatusOK, ContractTokensDTO{
		Values:       set.Values,
		HasBoardBook: set.HasBoardBook,
	})
}

// =============================================================================
// CALCULATION PLUMBING
// =============================================================================

// notFoundError marks a missing book so handlers can map it to 404.
type notFoundError struct{ uid string }

func (e *notFoundError) Error() string {
	return fmt.Sprintf("book not found for uid: %s", e.uid)
}

func decodeCalculateRequest(w http.ResponseWriter, r *http.Request) (CalculateRequest, bool) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: %v", err)
		return req, false
	}
	if req.UID == "" {
		writeError(w, http.StatusBadRequest, "uid is required")
		return req, false
	}
	if req.PeriodStart == "" || req.PeriodEnd == "" {
		writeError(w, http.StatusBadRequest, "period_start and period_end are required")
		return req, false
	}
	return req, true
}

func writeComputeError(w http.ResponseWriter, err error) {
	if _, ok := err.(*notFoundError); ok {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "%v", err)
}

// compute loads the book, derives cross-period state from saved history,
// and runs the engine. Callers must hold the book's lock.
func (h *Handler) compute(r *http.Request, req CalculateRequest) (royalty.Statement, *catalog.Book, error) {
	ctx := r.Context()

	book, err := h.Stores.GetBook(ctx, req.UID)
	if err != nil {
		return royalty.Statement{}, nil, fmt.Errorf("get book: %w", err)
	}
	if book == nil {
		return royalty.Statement{}, nil, &notFoundError{uid: req.UID}
	}

	authorHistory, err := h.Stores.StatementsForBook(ctx, req.UID, royalty.PartyAuthor)
	if err != nil {
		return royalty.Statement{}, nil, fmt.Errorf("author history: %w", err)
	}
	illusHistory, err := h.Stores.StatementsForBook(ctx, req.UID, royalty.PartyIllustrator)
	if err != nil {
		return royalty.Statement{}, nil, fmt.Errorf("illustrator history: %w", err)
	}

	// Recalculating an already-saved period must not count that period's
	// own statement into the carried balance or the lifetime counters.
	authorPrior := excludePeriod(authorHistory, req.PeriodStart, req.PeriodEnd)
	illusPrior := excludePeriod(illusHistory, req.PeriodStart, req.PeriodEnd)

	authorTerms := partyTerms(book.AuthorRoyalties, req.AuthorRates, req.AuthorAdvance, authorPrior)
	illusTerms := partyTerms(book.IllustratorRoyalties, req.IllustratorRates, req.IllustratorAdvance, illusPrior)

	engineReq := royalty.Request{
		BookUID:     req.UID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Author:      authorTerms,
		Illustrator: illusTerms,
		Counters:    catalog.CountersFromHistory(authorHistory, req.PeriodStart, req.PeriodEnd),
	}
	for _, l := range req.SalesData {
		engineReq.Sales = append(engineReq.Sales, l.toLine())
	}

	return h.Calc.Calculate(engineReq), book, nil
}

// partyTerms folds the book's stored terms with the request's overrides and
// the carried balance from prior statements.
func partyTerms(pr catalog.PartyRoyalties, rateOverride map[string]decimal.Decimal, advanceOverride decimal.Decimal, prior []catalog.StatementRecord) royalty.PartyTerms {
	advance := pr.Advance
	if !advanceOverride.IsZero() {
		advance = advanceOverride
	}

	terms := pr.Terms(catalog.LastBalance(prior, advance))
	terms.Advance = advance
	if len(rateOverride) > 0 && terms.Schedule == nil {
		terms.LegacyRates = rateOverride
	}
	return terms
}

func excludePeriod(history []catalog.StatementRecord, periodStart, periodEnd string) []catalog.StatementRecord {
	out := make([]catalog.StatementRecord, 0, len(history))
	for _, rec := range history {
		if rec.PeriodStart == periodStart && rec.PeriodEnd == periodEnd {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// illustratorApplicable is the gating rule: rows exist and at least one
// carries a positive royalty rate.
func illustratorApplicable(ps royalty.PartyStatement) bool {
	return len(ps.Rows) > 0 && ps.HasPositiveRate()
}

func (h *Handler) statementRecord(book *catalog.Book, req CalculateRequest, party royalty.Party, ps royalty.PartyStatement) (catalog.StatementRecord, error) {
	name := book.PartyName(party)
	if name == "" {
		return catalog.StatementRecord{}, fmt.Errorf("book has no %s name", party)
	}

	rec := catalog.StatementRecord{
		ID:          uuid.NewString(),
		BookUID:     book.UID,
		BookTitle:   book.Title,
		Party:       party,
		PersonName:  name,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		GeneratedAt: time.Now().UTC(),
		Rows:        ps.Rows,
		Summary:     ps.Summary,
	}
	for _, l := range req.SalesData {
		rec.Sales = append(rec.Sales, l.toLine())
	}
	return rec, nil
}

func (h *Handler) saveStatement(ctx context.Context, book *catalog.Book, req CalculateRequest, party royalty.Party, ps royalty.PartyStatement) error {
	rec, err := h.statementRecord(book, req, party, ps)
	if err != nil {
		return err
	}
	return h.Stores.SaveStatement(ctx, rec)
}

func partyParam(w http.ResponseWriter, r *http.Request) (royalty.Party, bool) {
	party := royalty.Party(chi.URLParam(r, "party"))
	if party != royalty.PartyAuthor && party != royalty.PartyIllustrator {
		writeError(w, http.StatusBadRequest, "party must be 'author' or 'illustrator'")
		return party, false
	}
	return party, true
}
