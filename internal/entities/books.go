package entities

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;not null" json:"username"`      // As typed at registration
	UsernameKey  string    `gorm:"uniqueIndex;size:50;not null" json:"-"` // Lower-cased lookup key
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeSave keeps UsernameKey in step with Username.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.UsernameKey = UsernameKey(u.Username)
	return nil
}

// UsernameKey returns the case-insensitive form used for uniqueness and lookups.
func UsernameKey(username string) string {
	return strings.ToLower(username)
}

// Book is shared by every user who adds it to their library.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:250;not null;uniqueIndex:idx_books_title_author" json:"title"`
	Author    string    `gorm:"size:100;not null;uniqueIndex:idx_books_title_author" json:"author"`
	CoverURL  string    `gorm:"size:2048" json:"cover_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership places a book in a user's library.
type Membership struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	BookID    uint      `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Membership) TableName() string {
	return "memberships"
}

type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	BookID    uint      `gorm:"index;not null" json:"book_id"`
	Chapter   string    `gorm:"size:150;not null" json:"chapter"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Book      Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Quotes    []Quote   `gorm:"foreignKey:NoteID;constraint:OnDelete:CASCADE" json:"quotes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Quote always carries the same UserID and BookID as its parent note.
type Quote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NoteID    uint      `gorm:"index;not null" json:"note_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	BookID    uint      `gorm:"index;not null" json:"book_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Speaker   string    `gorm:"size:50;index" json:"speaker,omitempty"`
	Page      *int      `json:"page,omitempty"`
	Book      Book      `gorm:"foreignKey:BookID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
