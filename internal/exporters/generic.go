package exporters

import (
	"io"

	"github.com/mrlokans/booknotes/internal/entities"
)

// BookExporter writes one library book with its notes to w.
type BookExporter interface {
	Export(w io.Writer, book entities.Book, notes []entities.Note) (ExportResult, error)
	ContentType() string
	Filename(book entities.Book) string
}

type ExportResult struct {
	NotesProcessed  int `json:"notes_processed"`
	QuotesProcessed int `json:"quotes_processed"`
}
