package http

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booknotes/internal/catalog"
	"github.com/mrlokans/booknotes/internal/entities"
)

func TestBooksController_SearchCatalog(t *testing.T) {
	t.Run("renders candidates with add links", func(t *testing.T) {
		env := setupTestEnv(t)
		cookie := env.login(t, "reader")
		env.catalog.candidates = []catalog.Candidate{
			{Title: "Either/Or", Author: "Søren Kierkegaard", CoverURL: "https://books.google.com/c.jpg"},
		}

		w := env.postForm("/add_book", url.Values{"title": {"Either/Or"}, "author": {"Kierkegaard"}}, cookie)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/book_clicked/Either%2FOr/")
		assert.Contains(t, w.Body.String(), "Søren Kierkegaard")
	})

	t.Run("title is required", func(t *testing.T) {
		env := setupTestEnv(t)
		cookie := env.login(t, "reader")

		w := env.postForm("/add_book", url.Values{"title": {"  "}}, cookie)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Title is required")
	})

	t.Run("no results", func(t *testing.T) {
		env := setupTestEnv(t)
		cookie := env.login(t, "reader")

		w := env.postForm("/add_book", url.Values{"title": {"Nothing"}}, cookie)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "No books matched")
	})

	t.Run("catalog failure renders 502", func(t *testing.T) {
		env := setupTestEnv(t)
		cookie := env.login(t, "reader")
		env.catalog.err = errors.New("catalog down")

		w := env.postForm("/add_book", url.Values{"title": {"Dune"}}, cookie)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "could not be reached")
	})
}

func TestBooksController_BookClicked(t *testing.T) {
	t.Run("adds the book and opens the note form", func(t *testing.T) {
		env := setupTestEnv(t)
		cookie := env.login(t, "reader")

		w := env.get("/book_clicked/Either%2FOr/Kierkegaard?cover="+url.QueryEscape("https://books.google.com/c.jpg"), cookie)

		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/add_notes?book=Either%2FOr", w.Header().Get("Location"))

		var book entities.Book
		require.NoError(t, env.db.DB.First(&book).Error)
		assert.Equal(t, "Either/Or", book.Title)
		assert.Equal(t, "Kierkegaard", book.Author)
		assert.Equal(t, "https://books.google.com/c.jpg", book.CoverURL)
		assert.Equal(t, []string{"https://books.google.com/c.jpg"}, env.covers.urls)

		w = env.get(w.Header().Get("Location"), cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `selected`)
		assert.NotContains(t, w.Body.String(), "already in your booklist")
	})

	t.Run("second add flashes already in booklist", func(t *testing.T) {
		env := setupTestEnv(t)
		cookie := env.login(t, "reader")

		env.get("/book_clicked/Dune/Frank%20Herbert", cookie)
		w := env.get("/book_clicked/Dune/Frank%20Herbert", cookie)

		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/add_notes?book=Dune", w.Header().Get("Location"))
		assert.Equal(t, int64(1), env.count(t, &entities.Membership{}))

		w = env.get("/add_notes?book=Dune", cookie)
		assert.Contains(t, w.Body.String(), "This book is already in your booklist.")

		w = env.get("/add_notes?book=Dune", cookie)
		assert.NotContains(t, w.Body.String(), "This book is already in your booklist.")
	})

	t.Run("two users share one book", func(t *testing.T) {
		env := setupTestEnv(t)
		alice := env.login(t, "alice1")
		bobby := env.login(t, "bobby1")

		env.get("/book_clicked/Dune/Frank%20Herbert", alice)
		env.get("/book_clicked/Dune/Frank%20Herbert", bobby)

		assert.Equal(t, int64(1), env.count(t, &entities.Book{}))
		assert.Equal(t, int64(2), env.count(t, &entities.Membership{}))
	})

	t.Run("covers from other hosts are dropped", func(t *testing.T) {
		env := setupTestEnv(t)
		cookie := env.login(t, "reader")

		env.get("/book_clicked/Dune/Frank%20Herbert?cover="+url.QueryEscape("http://169.254.169.254/latest"), cookie)

		var book entities.Book
		require.NoError(t, env.db.DB.First(&book).Error)
		assert.Empty(t, book.CoverURL)
		assert.Empty(t, env.covers.urls)
	})
}

func TestBooksController_BookList(t *testing.T) {
	env := setupTestEnv(t)
	cookie := env.login(t, "reader")
	book := env.addBook(t, "reader", "Hamlet", "William Shakespeare")
	env.createNote(t, "reader", book.ID, "Act III")

	w := env.get("/booklist", cookie)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Hamlet")
	assert.Contains(t, body, "Act III")
	assert.Contains(t, body, "/show_notes/reader/Hamlet/")
	assert.Contains(t, body, "/export/Hamlet")
}

func TestSafeCoverURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"https://books.google.com/books/content?id=1", "https://books.google.com/books/content?id=1"},
		{"https://lh3.googleusercontent.com/x.jpg", "https://lh3.googleusercontent.com/x.jpg"},
		{"http://books.google.com/x.jpg", ""},
		{"https://books.google.com.evil.test/x.jpg", ""},
		{"https://user@books.google.com/x.jpg", ""},
		{"file:///etc/passwd", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, safeCoverURL(tt.input), tt.input)
	}
}
