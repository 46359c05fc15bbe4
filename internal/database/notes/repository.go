// Package notes provides database operations for notes and their quotes.
//
// Every write that touches a note and its quotes runs in one transaction,
// and quotes always mirror their note's user and book.
package notes

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/booknotes/internal/entities"
)

// QuoteFilter narrows a quote search. Empty fields are not applied.
type QuoteFilter struct {
	Contains string // substring of the quote text
	Speaker  string // exact speaker
}

// Repository handles note and quote database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new notes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateNote stores the note and its quotes atomically. Quotes inherit the
// note's user and book and are inserted in slice order.
func (r *Repository) CreateNote(note *entities.Note, quotes []entities.Quote) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(note).Error; err != nil {
			return fmt.Errorf("create note: %w", err)
		}

		for i := range quotes {
			quotes[i].NoteID = note.ID
			quotes[i].UserID = note.UserID
			quotes[i].BookID = note.BookID
			if err := tx.Omit(clause.Associations).Create(&quotes[i]).Error; err != nil {
				return fmt.Errorf("create quote %d: %w", i+1, err)
			}
		}
		note.Quotes = quotes
		return nil
	})
}

// GetNoteByID loads a note with its book and quotes (oldest first).
func (r *Repository) GetNoteByID(id uint) (*entities.Note, error) {
	var note entities.Note
	err := r.db.Preload("Book").
		Preload("Quotes", func(db *gorm.DB) *gorm.DB {
			return db.Order("quotes.id ASC")
		}).
		First(&note, id).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote rewrites chapter, body and book, and moves the note's quotes
// to the new book in the same transaction.
func (r *Repository) UpdateNote(noteID, bookID uint, chapter, body string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Note{}).Where("id = ?", noteID).Updates(map[string]interface{}{
			"chapter": chapter,
			"body":    body,
			"book_id": bookID,
		})
		if result.Error != nil {
			return fmt.Errorf("update note: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		err := tx.Model(&entities.Quote{}).Where("note_id = ?", noteID).Update("book_id", bookID).Error
		if err != nil {
			return fmt.Errorf("update quotes: %w", err)
		}
		return nil
	})
}

// DeleteNote removes the note's quotes and then the note. Either both go or
// neither does.
func (r *Repository) DeleteNote(noteID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", noteID).Delete(&entities.Quote{}).Error; err != nil {
			return fmt.Errorf("delete quotes: %w", err)
		}

		result := tx.Delete(&entities.Note{}, noteID)
		if result.Error != nil {
			return fmt.Errorf("delete note: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetNotesForUser returns all of the user's notes, oldest first.
func (r *Repository) GetNotesForUser(userID uint) ([]entities.Note, error) {
	var notes []entities.Note
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&notes).Error
	return notes, err
}

// GetNotesForBook returns the user's notes on one book with their quotes.
func (r *Repository) GetNotesForBook(userID, bookID uint) ([]entities.Note, error) {
	var notes []entities.Note
	err := r.db.Preload("Quotes", func(db *gorm.DB) *gorm.DB {
		return db.Order("quotes.id ASC")
	}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("id ASC").
		Find(&notes).Error
	return notes, err
}

// GetQuotesForUser returns all of the user's quotes, oldest first.
func (r *Repository) GetQuotesForUser(userID uint) ([]entities.Quote, error) {
	return r.SearchQuotes(userID, QuoteFilter{})
}

// SearchQuotes returns the user's quotes matching every non-empty filter,
// each with its book.
func (r *Repository) SearchQuotes(userID uint, filter QuoteFilter) ([]entities.Quote, error) {
	query := r.db.Preload("Book").Where("user_id = ?", userID)
	if filter.Contains != "" {
		query = query.Where(`text LIKE ? ESCAPE '\'`, containsPattern(filter.Contains))
	}
	if filter.Speaker != "" {
		query = query.Where("speaker = ?", filter.Speaker)
	}

	var quotes []entities.Quote
	err := query.Order("id ASC").Find(&quotes).Error
	return quotes, err
}

// SearchNotes returns the user's notes whose body contains the substring,
// each with its book.
func (r *Repository) SearchNotes(userID uint, contains string) ([]entities.Note, error) {
	query := r.db.Preload("Book").Where("user_id = ?", userID)
	if contains != "" {
		query = query.Where(`body LIKE ? ESCAPE '\'`, containsPattern(contains))
	}

	var notes []entities.Note
	err := query.Order("id ASC").Find(&notes).Error
	return notes, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
