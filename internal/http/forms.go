package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booknotes/internal/entities"
	"github.com/mrlokans/booknotes/internal/services"
)

var errInvalidPageNumber = errors.New("page is not a number")

// quoteSlot is one of the positional quote fields of the note form.
type quoteSlot struct {
	Number  int
	Text    string
	Speaker string
	Page    string
}

// noteForm holds the submitted note form so it can be re-rendered.
type noteForm struct {
	BookID  uint
	Chapter string
	Body    string
	Quotes  []quoteSlot
}

func emptyQuoteSlots() []quoteSlot {
	slots := make([]quoteSlot, services.MaxQuotesPerNote)
	for i := range slots {
		slots[i].Number = i + 1
	}
	return slots
}

// bindNoteForm reads the note form. Quote fields are named quote1..quote5,
// quote1_speaker.. and quote1_page..
func bindNoteForm(c *gin.Context) noteForm {
	form := noteForm{
		Chapter: c.PostForm("chapter"),
		Body:    c.PostForm("notes"),
		Quotes:  emptyQuoteSlots(),
	}
	if id, err := strconv.ParseUint(c.PostForm("book"), 10, 32); err == nil {
		form.BookID = uint(id)
	}
	for i := range form.Quotes {
		prefix := fmt.Sprintf("quote%d", i+1)
		form.Quotes[i].Text = c.PostForm(prefix)
		form.Quotes[i].Speaker = c.PostForm(prefix + "_speaker")
		form.Quotes[i].Page = c.PostForm(prefix + "_page")
	}
	return form
}

// input converts the form for the notes service. Slots keep their
// positions; the service skips the blank ones.
func (f noteForm) input() (services.NoteInput, error) {
	input := services.NoteInput{
		BookID:  f.BookID,
		Chapter: f.Chapter,
		Body:    f.Body,
	}
	for _, slot := range f.Quotes {
		quote := services.QuoteInput{Text: slot.Text, Speaker: slot.Speaker}
		if page := strings.TrimSpace(slot.Page); page != "" && strings.TrimSpace(slot.Text) != "" {
			n, err := strconv.Atoi(page)
			if err != nil {
				return services.NoteInput{}, fmt.Errorf("quote %d: %w", slot.Number, errInvalidPageNumber)
			}
			quote.Page = &n
		}
		input.Quotes = append(input.Quotes, quote)
	}
	return input, nil
}

// noteFormFrom fills the form from a stored note for the edit page.
func noteFormFrom(note *entities.Note) noteForm {
	form := noteForm{
		BookID:  note.BookID,
		Chapter: note.Chapter,
		Body:    note.Body,
		Quotes:  emptyQuoteSlots(),
	}
	for i, quote := range note.Quotes {
		if i >= len(form.Quotes) {
			break
		}
		form.Quotes[i].Text = quote.Text
		form.Quotes[i].Speaker = quote.Speaker
		if quote.Page != nil {
			form.Quotes[i].Page = strconv.Itoa(*quote.Page)
		}
	}
	return form
}
