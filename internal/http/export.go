package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booknotes/internal/exporters"
	"github.com/mrlokans/booknotes/internal/services"
)

// ExportController downloads a library book's notes.
type ExportController struct {
	pages
	notes    NotesUseCases
	exporter exporters.BookExporter
	auditor  ActivityLog
}

// NewExportController creates an export controller. auditor may be nil.
func NewExportController(notes NotesUseCases, exporter exporters.BookExporter, auditor ActivityLog, p pages) *ExportController {
	return &ExportController{
		pages:    p,
		notes:    notes,
		exporter: exporter,
		auditor:  auditor,
	}
}

// Export renders the book and the user's notes on it as a file download.
// GET /export/:book_title
func (ec *ExportController) Export(c *gin.Context) {
	id := identity(c)
	title := c.Param("book_title")

	book, notes, err := ec.notes.BookNotes(c.Request.Context(), id, title)
	switch {
	case errors.Is(err, services.ErrBookNotInLibrary):
		redirectHome(c)
		return
	case err != nil:
		ec.internalError(c, err, "load book notes")
		return
	}

	var buf bytes.Buffer
	_, err = ec.exporter.Export(&buf, *book, notes)
	if ec.auditor != nil {
		ec.auditor.LogExport(id.UserID, book.Title, err)
	}
	if err != nil {
		ec.internalError(c, err, "export book")
		return
	}

	filename := ec.exporter.Filename(*book)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename)))
	c.Data(http.StatusOK, ec.exporter.ContentType(), buf.Bytes())
}
