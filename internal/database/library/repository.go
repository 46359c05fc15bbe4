// Package library provides database operations for shared books and the
// memberships that place them in a user's library.
package library

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/booknotes/internal/entities"
)

// Repository handles book and membership database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new library repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOrCreateBook returns the book with exactly this title and author,
// creating it when absent. A concurrent insert that wins the unique index
// is resolved by reading the winner back.
func (r *Repository) FindOrCreateBook(title, author, coverURL string) (*entities.Book, bool, error) {
	book, err := r.GetBookByTitleAndAuthor(title, author)
	if err == nil {
		return book, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	book = &entities.Book{Title: title, Author: author, CoverURL: coverURL}
	if createErr := r.db.Create(book).Error; createErr != nil {
		existing, lookupErr := r.GetBookByTitleAndAuthor(title, author)
		if lookupErr != nil {
			return nil, false, fmt.Errorf("create book: %w", createErr)
		}
		return existing, false, nil
	}
	return book, true, nil
}

// GetBookByTitleAndAuthor matches both fields exactly.
func (r *Repository) GetBookByTitleAndAuthor(title, author string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("title = ? AND author = ?", title, author).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByID retrieves a book regardless of who holds it.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// SetCoverURL fills in a cover for a book that has none yet.
func (r *Repository) SetCoverURL(bookID uint, coverURL string) error {
	return r.db.Model(&entities.Book{}).
		Where("id = ? AND (cover_url IS NULL OR cover_url = '')", bookID).
		Update("cover_url", coverURL).Error
}

// HasMembership reports whether the book is in the user's library.
func (r *Repository) HasMembership(userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Membership{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// AddMembership links the book to the user's library.
func (r *Repository) AddMembership(userID, bookID uint) error {
	return r.db.Create(&entities.Membership{UserID: userID, BookID: bookID}).Error
}

// GetLibraryBooks returns the user's books ordered by title.
func (r *Repository) GetLibraryBooks(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.libraryScope(userID).Order("books.title ASC, books.id ASC").Find(&books).Error
	return books, err
}

// GetLibraryBookByID returns the book only if it is in the user's library.
func (r *Repository) GetLibraryBookByID(userID, bookID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.libraryScope(userID).Where("books.id = ?", bookID).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetLibraryBookByTitle returns the user's book with this exact title.
// When several authors share the title the earliest added wins.
func (r *Repository) GetLibraryBookByTitle(userID uint, title string) (*entities.Book, error) {
	var book entities.Book
	err := r.libraryScope(userID).
		Where("books.title = ?", title).
		Order("memberships.created_at ASC, books.id ASC").
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *Repository) libraryScope(userID uint) *gorm.DB {
	return r.db.Model(&entities.Book{}).
		Joins("JOIN memberships ON memberships.book_id = books.id").
		Where("memberships.user_id = ?", userID)
}
