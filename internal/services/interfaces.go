package services

import (
	"context"

	"github.com/mrlokans/booknotes/internal/catalog"
	"github.com/mrlokans/booknotes/internal/database/notes"
	"github.com/mrlokans/booknotes/internal/entities"
)

// LibraryStore provides access to shared books and library memberships.
// Implemented by library.Repository.
type LibraryStore interface {
	FindOrCreateBook(title, author, coverURL string) (*entities.Book, bool, error)
	GetBookByID(id uint) (*entities.Book, error)
	SetCoverURL(bookID uint, coverURL string) error
	HasMembership(userID, bookID uint) (bool, error)
	AddMembership(userID, bookID uint) error
	GetLibraryBooks(userID uint) ([]entities.Book, error)
	GetLibraryBookByID(userID, bookID uint) (*entities.Book, error)
	GetLibraryBookByTitle(userID uint, title string) (*entities.Book, error)
}

// NoteStore persists notes and their quotes. Implemented by notes.Repository.
type NoteStore interface {
	CreateNote(note *entities.Note, quotes []entities.Quote) error
	GetNoteByID(id uint) (*entities.Note, error)
	UpdateNote(noteID, bookID uint, chapter, body string) error
	DeleteNote(noteID uint) error
	GetNotesForBook(userID, bookID uint) ([]entities.Note, error)
	SearchQuotes(userID uint, filter notes.QuoteFilter) ([]entities.Quote, error)
	SearchNotes(userID uint, contains string) ([]entities.Note, error)
}

// UserLookup resolves note owners for public links. Implemented by users.Repository.
type UserLookup interface {
	GetUserByUsername(username string) (*entities.User, error)
}

// CatalogSearcher looks up candidate books. Implemented by catalog.Client.
type CatalogSearcher interface {
	Search(ctx context.Context, title, author string) ([]catalog.Candidate, error)
}

// CoverEnqueuer schedules a cover download. Implemented by tasks.Client.
type CoverEnqueuer interface {
	EnqueueCoverCache(ctx context.Context, bookID uint, coverURL string) error
}

// ActivityRecorder receives library and note events. Implemented by audit.Service.
type ActivityRecorder interface {
	LogLibraryAdd(userID, bookID uint, title string)
	LogNoteDelete(userID, noteID uint, chapter string)
}
