package exporters

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mrlokans/booknotes/internal/entities"
	"github.com/mrlokans/booknotes/internal/utils"
)

type MarkdownExporter struct {
	now func() time.Time
}

func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{now: time.Now}
}

func (exporter *MarkdownExporter) ContentType() string {
	return "text/markdown; charset=utf-8"
}

func (exporter *MarkdownExporter) Filename(book entities.Book) string {
	return utils.SanitizeFilename(book.Title) + ".md"
}

func (exporter *MarkdownExporter) Export(w io.Writer, book entities.Book, notes []entities.Note) (ExportResult, error) {
	result := ExportResult{NotesProcessed: len(notes)}
	for _, note := range notes {
		result.QuotesProcessed += len(note.Quotes)
	}

	if _, err := io.WriteString(w, GenerateMarkdown(book, notes, exporter.now())); err != nil {
		return ExportResult{}, fmt.Errorf("failed to write markdown: %w", err)
	}
	return result, nil
}

// GenerateMarkdown renders front matter followed by one section per note.
func GenerateMarkdown(book entities.Book, notes []entities.Note, exportedAt time.Time) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: book_notes\n")
	fmt.Fprintf(&builder, "exported_at: %s\n", exportedAt.Format("2006-01-02"))
	fmt.Fprintf(&builder, "title: %s\n", quoteYAML(book.Title))
	fmt.Fprintf(&builder, "author: %s\n", quoteYAML(book.Author))
	if book.CoverURL != "" {
		fmt.Fprintf(&builder, "cover: %s\n", quoteYAML(book.CoverURL))
	}
	fmt.Fprintf(&builder, "tags: notes, books\n")
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "# %s\n\n", book.Title)

	if len(notes) == 0 {
		fmt.Fprintf(&builder, "_No notes yet._\n")
		return builder.String()
	}

	for _, note := range notes {
		fmt.Fprintf(&builder, "## %s\n\n", note.Chapter)
		fmt.Fprintf(&builder, "%s\n\n", strings.TrimSpace(note.Body))

		if len(note.Quotes) == 0 {
			continue
		}
		fmt.Fprintf(&builder, "### Quotes\n\n")
		for _, quote := range note.Quotes {
			fmt.Fprintf(&builder, "> %s\n", strings.ReplaceAll(quote.Text, "\n", "\n> "))
			if attribution := attribution(quote); attribution != "" {
				fmt.Fprintf(&builder, ">\n> %s\n", attribution)
			}
			fmt.Fprintf(&builder, "\n")
		}
	}

	return builder.String()
}

func attribution(quote entities.Quote) string {
	switch {
	case quote.Speaker != "" && quote.Page != nil:
		return fmt.Sprintf("_%s, p. %d_", quote.Speaker, *quote.Page)
	case quote.Speaker != "":
		return "_" + quote.Speaker + "_"
	case quote.Page != nil:
		return fmt.Sprintf("_p. %d_", *quote.Page)
	}
	return ""
}

func quoteYAML(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
