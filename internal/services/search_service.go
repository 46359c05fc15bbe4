package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrlokans/booknotes/internal/database/notes"
	"github.com/mrlokans/booknotes/internal/entities"
)

// LibraryEntry is one book of a user's library with the user's notes and
// quotes on it.
type LibraryEntry struct {
	Book   entities.Book
	Notes  []entities.Note
	Quotes []entities.Quote
}

// QuoteQuery filters a quote search. Empty fields are not applied.
type QuoteQuery struct {
	Contains string
	Speaker  string
}

// SearchService answers read-only queries over a user's notes and quotes.
type SearchService struct {
	notes   NoteStore
	library LibraryStore
}

// NewSearchService creates a search service.
func NewSearchService(notes NoteStore, library LibraryStore) *SearchService {
	return &SearchService{
		notes:   notes,
		library: library,
	}
}

// ListLibrary returns every book in the user's library with the user's
// notes and quotes for it.
func (s *SearchService) ListLibrary(ctx context.Context, id Identity) ([]LibraryEntry, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	books, err := s.library.GetLibraryBooks(id.UserID)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}

	entries := make([]LibraryEntry, 0, len(books))
	for _, book := range books {
		bookNotes, err := s.notes.GetNotesForBook(id.UserID, book.ID)
		if err != nil {
			return nil, fmt.Errorf("load notes for book %d: %w", book.ID, err)
		}

		var quotes []entities.Quote
		for _, note := range bookNotes {
			quotes = append(quotes, note.Quotes...)
		}

		entries = append(entries, LibraryEntry{
			Book:   book,
			Notes:  bookNotes,
			Quotes: quotes,
		})
	}
	return entries, nil
}

// SearchQuotes filters the user's quotes. With both filters the text must
// contain Contains and the speaker must equal Speaker exactly. With only a
// speaker, the speaker is title-cased before the exact match.
func (s *SearchService) SearchQuotes(ctx context.Context, id Identity, query QuoteQuery) ([]entities.Quote, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	filter := notes.QuoteFilter{
		Contains: strings.TrimSpace(query.Contains),
		Speaker:  strings.TrimSpace(query.Speaker),
	}
	if filter.Contains == "" && filter.Speaker != "" {
		filter.Speaker = titleCase(filter.Speaker)
	}

	quotes, err := s.notes.SearchQuotes(id.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("search quotes: %w", err)
	}
	return quotes, nil
}

// SearchNotes returns the user's notes whose body contains the text.
func (s *SearchService) SearchNotes(ctx context.Context, id Identity, contains string) ([]entities.Note, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	found, err := s.notes.SearchNotes(id.UserID, strings.TrimSpace(contains))
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return found, nil
}

// titleCase capitalises each word and the letter after an apostrophe, so
// "o'brien" becomes "O'Brien". Casers keep state, so one is built per call.
func titleCase(s string) string {
	caser := cases.Title(language.English)
	parts := strings.Split(s, "'")
	for i, part := range parts {
		parts[i] = caser.String(part)
	}
	return strings.Join(parts, "'")
}
