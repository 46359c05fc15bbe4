// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (SQLite or PostgreSQL), migrations
//	├── users/           # Account storage and case-insensitive lookups
//	├── library/         # Shared books and per-user memberships
//	├── notes/           # Notes, quotes and the search queries over them
//	└── audit/           # Audit trail storage
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./book_notes.db")
//
//	usersRepo := users.NewRepository(db.DB)
//	libraryRepo := library.NewRepository(db.DB)
//	notesRepo := notes.NewRepository(db.DB)
//
//	book, created, err := libraryRepo.FindOrCreateBook("Dune", "Frank Herbert", "")
//
// Multi-row writes (a note and its quotes, a note delete) run inside
// db.Transaction so a failure leaves nothing half-written.
package database
