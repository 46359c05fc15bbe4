package config

const (
	// DefaultDatabaseURL is the SQLite file used when DATABASE_URL is unset.
	DefaultDatabaseURL = "./book_notes.db"

	// DefaultDataDir holds the cover cache and the task queue database.
	DefaultDataDir = "./data"

	// DefaultCatalogBaseURL is the Google Books API root.
	DefaultCatalogBaseURL = "https://www.googleapis.com/books/v1"

	DefaultPlausibleScriptURL = "https://plausible.io/js/script.js"
)
