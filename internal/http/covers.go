package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booknotes/internal/services"
)

// CoversController serves book cover images.
type CoversController struct {
	cache   CoverLookup
	library LibraryUseCases
}

// NewCoversController creates a new CoversController. cache may be nil.
func NewCoversController(cache CoverLookup, library LibraryUseCases) *CoversController {
	return &CoversController{
		cache:   cache,
		library: library,
	}
}

// GetCover serves a cached book cover, or redirects to the catalog's copy
// until the background download has finished.
// GET /covers/:id
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	book, err := cc.library.Book(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if book.CoverURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	if cc.cache != nil {
		if path, found := cc.cache.Lookup(book.ID, book.CoverURL); found {
			c.Header("Cache-Control", "public, max-age=86400")
			c.File(path)
			return
		}
	}

	c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
}
