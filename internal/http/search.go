package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booknotes/internal/services"
)

// SearchController serves the quote and note search pages.
type SearchController struct {
	pages
	search SearchUseCases
}

func NewSearchController(search SearchUseCases, p pages) *SearchController {
	return &SearchController{pages: p, search: search}
}

// Quotes lists the user's quotes. A submitted form narrows the list by
// text and speaker.
// GET|POST /quotes
func (sc *SearchController) Quotes(c *gin.Context) {
	query := services.QuoteQuery{
		Contains: strings.TrimSpace(c.PostForm("quote_contains")),
		Speaker:  strings.TrimSpace(c.PostForm("speaker")),
	}

	quotes, err := sc.search.SearchQuotes(c.Request.Context(), identity(c), query)
	if err != nil {
		sc.internalError(c, err, "search quotes")
		return
	}

	sc.render(c, http.StatusOK, "quotes", gin.H{
		"Title":    "Quotes",
		"Contains": query.Contains,
		"Speaker":  query.Speaker,
		"Quotes":   quotes,
	})
}

// NoteSearchPage renders the empty note search form.
// GET /note_search
func (sc *SearchController) NoteSearchPage(c *gin.Context) {
	sc.render(c, http.StatusOK, "note_search", gin.H{"Title": "Search Notes"})
}

// NoteSearch finds the user's notes whose text contains the query.
// POST /note_search
func (sc *SearchController) NoteSearch(c *gin.Context) {
	contains := strings.TrimSpace(c.PostForm("note_contains"))

	results, err := sc.search.SearchNotes(c.Request.Context(), identity(c), contains)
	if err != nil {
		sc.internalError(c, err, "search notes")
		return
	}

	sc.render(c, http.StatusOK, "note_search", gin.H{
		"Title":    "Search Notes",
		"Contains": contains,
		"Results":  results,
		"Searched": true,
	})
}
