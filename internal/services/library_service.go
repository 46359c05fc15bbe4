package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mrlokans/booknotes/internal/catalog"
	"github.com/mrlokans/booknotes/internal/entities"
)

// AddResult describes the outcome of adding a book to a library.
type AddResult struct {
	Book             *entities.Book
	BookCreated      bool
	AlreadyInLibrary bool
}

// LibraryService maintains the books each user has added.
type LibraryService struct {
	books   LibraryStore
	catalog CatalogSearcher
	covers  CoverEnqueuer
	events  ActivityRecorder
}

// NewLibraryService creates a library service. covers and events may be nil.
func NewLibraryService(books LibraryStore, catalog CatalogSearcher, covers CoverEnqueuer, events ActivityRecorder) *LibraryService {
	return &LibraryService{
		books:   books,
		catalog: catalog,
		covers:  covers,
		events:  events,
	}
}

// SearchCatalog returns catalog candidates for a title, optionally narrowed
// by author.
func (s *LibraryService) SearchCatalog(ctx context.Context, id Identity, title, author string) ([]catalog.Candidate, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	candidates, err := s.catalog.Search(ctx, title, strings.TrimSpace(author))
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return candidates, nil
}

// AddToLibrary finds or creates the book with this exact title and author
// and adds it to the user's library. Adding a book twice changes nothing.
func (s *LibraryService) AddToLibrary(ctx context.Context, id Identity, title, author, coverURL string) (*AddResult, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, ErrTitleRequired
	}
	if author == "" {
		return nil, ErrAuthorRequired
	}

	book, created, err := s.books.FindOrCreateBook(title, author, coverURL)
	if err != nil {
		return nil, fmt.Errorf("find or create book: %w", err)
	}

	coverAdded := created
	if !created && book.CoverURL == "" && coverURL != "" {
		if err := s.books.SetCoverURL(book.ID, coverURL); err != nil {
			return nil, fmt.Errorf("set cover: %w", err)
		}
		book.CoverURL = coverURL
		coverAdded = true
	}
	if coverAdded {
		s.enqueueCover(ctx, book)
	}

	exists, err := s.books.HasMembership(id.UserID, book.ID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if exists {
		return &AddResult{Book: book, AlreadyInLibrary: true}, nil
	}

	if err := s.books.AddMembership(id.UserID, book.ID); err != nil {
		// A concurrent add of the same book by the same user.
		if again, checkErr := s.books.HasMembership(id.UserID, book.ID); checkErr == nil && again {
			return &AddResult{Book: book, AlreadyInLibrary: true}, nil
		}
		return nil, fmt.Errorf("add membership: %w", err)
	}

	if s.events != nil {
		s.events.LogLibraryAdd(id.UserID, book.ID, book.Title)
	}
	log.Ctx(ctx).Info().
		Uint("user_id", id.UserID).
		Uint("book_id", book.ID).
		Msg("Book added to library")

	return &AddResult{Book: book, BookCreated: created}, nil
}

// LibraryBooks returns the user's books ordered by title.
func (s *LibraryService) LibraryBooks(ctx context.Context, id Identity) ([]entities.Book, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return s.books.GetLibraryBooks(id.UserID)
}

// ResolveLibraryBook returns the user's book with this exact title.
func (s *LibraryService) ResolveLibraryBook(ctx context.Context, id Identity, title string) (*entities.Book, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	book, err := s.books.GetLibraryBookByTitle(id.UserID, title)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotInLibrary
		}
		return nil, err
	}
	return book, nil
}

// Book returns any book by ID. Covers are public, so no identity is needed.
func (s *LibraryService) Book(ctx context.Context, bookID uint) (*entities.Book, error) {
	book, err := s.books.GetBookByID(bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *LibraryService) enqueueCover(ctx context.Context, book *entities.Book) {
	if s.covers == nil || book.CoverURL == "" {
		return
	}
	if err := s.covers.EnqueueCoverCache(ctx, book.ID, book.CoverURL); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint("book_id", book.ID).Msg("Failed to enqueue cover download")
	}
}
