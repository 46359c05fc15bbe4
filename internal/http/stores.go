package http

import (
	"context"

	"github.com/mrlokans/booknotes/internal/catalog"
	"github.com/mrlokans/booknotes/internal/entities"
	"github.com/mrlokans/booknotes/internal/services"
)

// This file collects the service interfaces the controllers depend on.
// The implementations live in internal/services, internal/covers and
// internal/audit.

// LibraryUseCases is the part of services.LibraryService the book pages need.
type LibraryUseCases interface {
	SearchCatalog(ctx context.Context, id services.Identity, title, author string) ([]catalog.Candidate, error)
	AddToLibrary(ctx context.Context, id services.Identity, title, author, coverURL string) (*services.AddResult, error)
	LibraryBooks(ctx context.Context, id services.Identity) ([]entities.Book, error)
	ResolveLibraryBook(ctx context.Context, id services.Identity, title string) (*entities.Book, error)
	Book(ctx context.Context, bookID uint) (*entities.Book, error)
}

// NotesUseCases is implemented by services.NotesService.
type NotesUseCases interface {
	CreateNote(ctx context.Context, id services.Identity, input services.NoteInput) (*entities.Note, error)
	GetNoteForEdit(ctx context.Context, id services.Identity, noteID uint) (*entities.Note, error)
	EditNote(ctx context.Context, id services.Identity, noteID uint, input services.NoteInput) error
	DeleteNote(ctx context.Context, id services.Identity, noteID uint) error
	ViewNote(ctx context.Context, ownerUsername, bookTitle string, noteID uint) (*services.NoteView, error)
	BookNotes(ctx context.Context, id services.Identity, bookTitle string) (*entities.Book, []entities.Note, error)
}

// SearchUseCases is implemented by services.SearchService.
type SearchUseCases interface {
	ListLibrary(ctx context.Context, id services.Identity) ([]services.LibraryEntry, error)
	SearchQuotes(ctx context.Context, id services.Identity, query services.QuoteQuery) ([]entities.Quote, error)
	SearchNotes(ctx context.Context, id services.Identity, contains string) ([]entities.Note, error)
}

// CoverLookup finds a cover in the local cache. Implemented by covers.Cache.
type CoverLookup interface {
	Lookup(bookID uint, coverURL string) (string, bool)
}

// ActivityLog provides the audit trail. Implemented by audit.Service.
type ActivityLog interface {
	GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	LogExport(userID uint, title string, err error)
}
