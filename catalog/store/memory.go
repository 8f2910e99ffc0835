// Package store provides an in-memory implementation of the catalog and
// statement stores, used by tests and the dev server.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/marblepress/royalty-engine/catalog"
	"github.com/marblepress/royalty-engine/royalty"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	books      []catalog.Book
	statements []catalog.StatementRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

var _ catalog.Stores = (*Memory)(nil)

// -----------------------------------------------------------------------------
// CatalogStore
// -----------------------------------------------------------------------------

func (m *Memory) ListBooks(_ context.Context) ([]catalog.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]catalog.Book, len(m.books))
	copy(out, m.books)
	return out, nil
}

func (m *Memory) GetBook(_ context.Context, uid string) (*catalog.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.books {
		if m.books[i].UID == uid {
			b := m.books[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (m *Memory) SaveBook(_ context.Context, book catalog.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.books {
		if sameBook(m.books[i], book) {
			m.books[i] = book
			return nil
		}
	}
	m.books = append(m.books, book)
	return nil
}

func (m *Memory) DeleteBook(_ context.Context, title, author string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.books)
	kept := m.books[:0]
	for _, b := range m.books {
		if strings.TrimSpace(b.Title) == strings.TrimSpace(title) &&
			strings.TrimSpace(b.Author) == strings.TrimSpace(author) {
			continue
		}
		kept = append(kept, b)
	}
	m.books = kept
	return len(m.books) < before, nil
}

func sameBook(a, b catalog.Book) bool {
	if b.UID != "" && a.UID == b.UID {
		return true
	}
	return strings.TrimSpace(a.Title) == strings.TrimSpace(b.Title) &&
		strings.TrimSpace(a.Author) == strings.TrimSpace(b.Author)
}

// -----------------------------------------------------------------------------
// StatementStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveStatement(_ context.Context, rec catalog.StatementRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Replace any earlier statement for the same (book, party, period).
	kept := m.statements[:0]
	for _, s := range m.statements {
		if s.BookUID == rec.BookUID && s.Party == rec.Party &&
			s.PeriodStart == rec.PeriodStart && s.PeriodEnd == rec.PeriodEnd {
			continue
		}
		kept = append(kept, s)
	}
	m.statements = append(kept, rec)
	return nil
}

func (m *Memory) StatementsForBook(_ context.Context, bookUID string, party royalty.Party) ([]catalog.StatementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []catalog.StatementRecord
	for _, s := range m.statements {
		if s.BookUID == bookUID && s.Party == party {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd < out[j].PeriodEnd })
	return out, nil
}

func (m *Memory) StatementsForPerson(_ context.Context, party royalty.Party, personName string) ([]catalog.StatementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []catalog.StatementRecord
	for _, s := range m.statements {
		if s.Party == party && s.PersonName == personName {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodEnd < out[j].PeriodEnd })
	return out, nil
}

func (m *Memory) DeleteStatement(_ context.Context, party royalty.Party, personName, periodStart, periodEnd string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.statements)
	kept := m.statements[:0]
	for _, s := range m.statements {
		if s.Party == party && s.PersonName == personName &&
			s.PeriodStart == periodStart && s.PeriodEnd == periodEnd {
			continue
		}
		kept = append(kept, s)
	}
	m.statements = kept
	return len(m.statements) < before, nil
}
