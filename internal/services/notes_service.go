package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mrlokans/booknotes/internal/entities"
)

// MaxQuotesPerNote is the number of quote slots a note form offers.
const MaxQuotesPerNote = 5

// QuoteInput is one quote slot of a note form. A slot with blank text is
// skipped.
type QuoteInput struct {
	Text    string
	Speaker string `validate:"max=50"`
	Page    *int   `validate:"omitempty,min=1"`
}

// NoteInput carries a note form. Quotes are positional slots, at most five.
type NoteInput struct {
	BookID  uint
	Chapter string       `validate:"required,max=150"`
	Body    string       `validate:"required"`
	Quotes  []QuoteInput `validate:"max=5,dive"`
}

// NoteView is a note reached through a public link.
type NoteView struct {
	Owner *entities.User
	Book  *entities.Book
	Note  *entities.Note
}

// NotesService creates, edits and deletes notes and their quotes.
type NotesService struct {
	notes    NoteStore
	library  LibraryStore
	users    UserLookup
	events   ActivityRecorder
	validate *validator.Validate
}

// NewNotesService creates a notes service. events may be nil.
func NewNotesService(notes NoteStore, library LibraryStore, users UserLookup, events ActivityRecorder) *NotesService {
	return &NotesService{
		notes:    notes,
		library:  library,
		users:    users,
		events:   events,
		validate: validator.New(),
	}
}

// CreateNote stores a note on a book in the user's library together with
// the quotes from its non-blank slots, in slot order.
func (s *NotesService) CreateNote(ctx context.Context, id Identity, input NoteInput) (*entities.Note, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	input = normalizeNoteInput(input)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	if err := s.requireLibraryBook(id, input.BookID); err != nil {
		return nil, err
	}

	note := &entities.Note{
		UserID:  id.UserID,
		BookID:  input.BookID,
		Chapter: input.Chapter,
		Body:    input.Body,
	}

	quotes := make([]entities.Quote, 0, len(input.Quotes))
	for _, slot := range input.Quotes {
		if slot.Text == "" {
			continue
		}
		quotes = append(quotes, entities.Quote{
			Text:    slot.Text,
			Speaker: slot.Speaker,
			Page:    slot.Page,
		})
	}

	if err := s.notes.CreateNote(note, quotes); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	log.Ctx(ctx).Info().
		Uint("user_id", id.UserID).
		Uint("note_id", note.ID).
		Int("quotes", len(quotes)).
		Msg("Note created")

	return note, nil
}

// GetNoteForEdit returns one of the user's notes with its book and quotes.
func (s *NotesService) GetNoteForEdit(ctx context.Context, id Identity, noteID uint) (*entities.Note, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return s.ownedNote(id, noteID)
}

// EditNote changes a note's chapter, body and book. Quote slots in input
// are ignored; existing quotes follow the note to its new book.
func (s *NotesService) EditNote(ctx context.Context, id Identity, noteID uint, input NoteInput) error {
	if err := requireIdentity(id); err != nil {
		return err
	}

	input = normalizeNoteInput(input)
	input.Quotes = nil
	if err := s.validateInput(input); err != nil {
		return err
	}

	if _, err := s.ownedNote(id, noteID); err != nil {
		return err
	}
	if err := s.requireLibraryBook(id, input.BookID); err != nil {
		return err
	}

	if err := s.notes.UpdateNote(noteID, input.BookID, input.Chapter, input.Body); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// DeleteNote removes one of the user's notes and all its quotes atomically.
func (s *NotesService) DeleteNote(ctx context.Context, id Identity, noteID uint) error {
	if err := requireIdentity(id); err != nil {
		return err
	}

	note, err := s.ownedNote(id, noteID)
	if err != nil {
		return err
	}

	if err := s.notes.DeleteNote(note.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}

	if s.events != nil {
		s.events.LogNoteDelete(id.UserID, note.ID, note.Chapter)
	}
	log.Ctx(ctx).Info().
		Uint("user_id", id.UserID).
		Uint("note_id", note.ID).
		Int("quotes", len(note.Quotes)).
		Msg("Note deleted")

	return nil
}

// ViewNote resolves a shared link. The note is returned only when it is
// the owner's note, its book carries the linked title and that book is in
// the owner's library. Every mismatch is ErrNoteNotFound.
func (s *NotesService) ViewNote(ctx context.Context, ownerUsername, bookTitle string, noteID uint) (*NoteView, error) {
	owner, err := s.users.GetUserByUsername(ownerUsername)
	if err != nil {
		return nil, notFound(err)
	}

	note, err := s.notes.GetNoteByID(noteID)
	if err != nil {
		return nil, notFound(err)
	}
	if note.UserID != owner.ID || note.Book.Title != bookTitle {
		return nil, ErrNoteNotFound
	}

	// Looked up by id: the owner may hold several books with this title.
	book, err := s.library.GetLibraryBookByID(owner.ID, note.BookID)
	if err != nil {
		return nil, notFound(err)
	}

	return &NoteView{Owner: owner, Book: book, Note: note}, nil
}

// BookNotes returns the user's book with this title and the user's notes
// on it, each with its quotes.
func (s *NotesService) BookNotes(ctx context.Context, id Identity, bookTitle string) (*entities.Book, []entities.Note, error) {
	if err := requireIdentity(id); err != nil {
		return nil, nil, err
	}

	book, err := s.library.GetLibraryBookByTitle(id.UserID, bookTitle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrBookNotInLibrary
		}
		return nil, nil, err
	}

	notes, err := s.notes.GetNotesForBook(id.UserID, book.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load notes: %w", err)
	}
	return book, notes, nil
}

func (s *NotesService) ownedNote(id Identity, noteID uint) (*entities.Note, error) {
	note, err := s.notes.GetNoteByID(noteID)
	if err != nil {
		return nil, notFound(err)
	}
	if note.UserID != id.UserID {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (s *NotesService) requireLibraryBook(id Identity, bookID uint) error {
	if bookID == 0 {
		return ErrBookNotInLibrary
	}
	ok, err := s.library.HasMembership(id.UserID, bookID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return ErrBookNotInLibrary
	}
	return nil
}

func (s *NotesService) validateInput(input NoteInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Chapter":
		if fe.Tag() == "max" {
			return ErrChapterTooLong
		}
		return ErrChapterRequired
	case "Body":
		return ErrBodyRequired
	case "Quotes":
		return ErrTooManyQuotes
	case "Speaker":
		return ErrSpeakerTooLong
	case "Page":
		return ErrInvalidPage
	}
	return err
}

func normalizeNoteInput(input NoteInput) NoteInput {
	input.Chapter = strings.TrimSpace(input.Chapter)
	if strings.TrimSpace(input.Body) == "" {
		input.Body = ""
	}

	quotes := make([]QuoteInput, len(input.Quotes))
	for i, q := range input.Quotes {
		quotes[i] = QuoteInput{
			Text:    strings.TrimSpace(q.Text),
			Speaker: strings.TrimSpace(q.Speaker),
			Page:    q.Page,
		}
	}
	input.Quotes = quotes
	return input
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoteNotFound
	}
	return err
}
