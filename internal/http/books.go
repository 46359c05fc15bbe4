package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/booknotes/internal/services"
)

// Hosts the catalog serves thumbnails from. Other cover URLs are dropped
// so the cover cache never fetches arbitrary addresses.
var coverHosts = []string{
	"books.google.com",
	"googleusercontent.com",
	"googleapis.com",
}

// BooksController serves the catalog search, library add and booklist pages.
type BooksController struct {
	pages
	library LibraryUseCases
	search  SearchUseCases
}

func NewBooksController(library LibraryUseCases, search SearchUseCases, p pages) *BooksController {
	return &BooksController{
		pages:   p,
		library: library,
		search:  search,
	}
}

// AddBookPage renders the catalog search form.
// GET /add_book
func (bc *BooksController) AddBookPage(c *gin.Context) {
	bc.render(c, http.StatusOK, "add_book", gin.H{"Title": "Add a Book"})
}

// SearchCatalog looks the submitted title up in the catalog.
// POST /add_book
func (bc *BooksController) SearchCatalog(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	author := strings.TrimSpace(c.PostForm("author"))
	data := gin.H{
		"Title":       "Add a Book",
		"SearchTitle": title,
		"Author":      author,
	}

	candidates, err := bc.library.SearchCatalog(c.Request.Context(), identity(c), title, author)
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		data["Error"] = "Title is required"
		bc.render(c, http.StatusOK, "add_book", data)
		return
	case err != nil:
		log.Ctx(c.Request.Context()).Error().Err(err).Str("title", title).Msg("Catalog search failed")
		_ = c.Error(err)
		bc.render(c, http.StatusBadGateway, "error", gin.H{
			"Title":   "Catalog unavailable",
			"Message": "The book catalog could not be reached. Please try again later.",
		})
		return
	}

	data["Results"] = candidates
	data["Searched"] = true
	bc.render(c, http.StatusOK, "add_book", data)
}

// BookClicked adds a search result to the user's library.
// GET /book_clicked/:title/:author
func (bc *BooksController) BookClicked(c *gin.Context) {
	title := c.Param("title")
	author := c.Param("author")
	coverURL := safeCoverURL(c.Query("cover"))

	result, err := bc.library.AddToLibrary(c.Request.Context(), identity(c), title, author, coverURL)
	switch {
	case errors.Is(err, services.ErrTitleRequired), errors.Is(err, services.ErrAuthorRequired):
		bc.flash(c, "Pick a book with both a title and an author.")
		c.Redirect(http.StatusFound, "/add_book")
		return
	case err != nil:
		bc.internalError(c, err, "add to library")
		return
	}

	if result.AlreadyInLibrary {
		bc.flash(c, "This book is already in your booklist.")
	}
	c.Redirect(http.StatusFound, addNotesURL(result.Book.Title))
}

// BookList shows every library book with the user's notes and quotes.
// GET /booklist
func (bc *BooksController) BookList(c *gin.Context) {
	entries, err := bc.search.ListLibrary(c.Request.Context(), identity(c))
	if err != nil {
		bc.internalError(c, err, "list library")
		return
	}

	bc.render(c, http.StatusOK, "booklist", gin.H{
		"Title":   "My Books",
		"Entries": entries,
	})
}

// safeCoverURL keeps only https URLs on the catalog's image hosts.
func safeCoverURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.User != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range coverHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return u.String()
		}
	}
	return ""
}
