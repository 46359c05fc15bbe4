package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/booknotes/internal/entities"
	"github.com/mrlokans/booknotes/internal/services"
)

// NotesController serves the note create, view, edit and delete pages.
type NotesController struct {
	pages
	notes   NotesUseCases
	library LibraryUseCases
}

func NewNotesController(notes NotesUseCases, library LibraryUseCases, p pages) *NotesController {
	return &NotesController{
		pages:   p,
		notes:   notes,
		library: library,
	}
}

// AddNotesPage renders an empty note form. ?book=<title> pre-selects one
// of the user's books.
// GET /add_notes
func (nc *NotesController) AddNotesPage(c *gin.Context) {
	form := noteForm{Quotes: emptyQuoteSlots()}

	if title := c.Query("book"); title != "" {
		book, err := nc.library.ResolveLibraryBook(c.Request.Context(), identity(c), title)
		switch {
		case err == nil:
			form.BookID = book.ID
		case !errors.Is(err, services.ErrBookNotInLibrary):
			nc.internalError(c, err, "resolve library book")
			return
		}
	}

	nc.renderNoteForm(c, "add_notes", form, gin.H{"Title": "Add Notes"})
}

// AddNotes stores the submitted note and its quotes.
// POST /add_notes
func (nc *NotesController) AddNotes(c *gin.Context) {
	form := bindNoteForm(c)

	input, err := form.input()
	if err == nil {
		_, err = nc.notes.CreateNote(c.Request.Context(), identity(c), input)
	}
	if err != nil {
		if message, ok := formErrorMessage(err); ok {
			nc.renderNoteForm(c, "add_notes", form, gin.H{"Title": "Add Notes", "Error": message})
			return
		}
		nc.internalError(c, err, "create note")
		return
	}

	nc.flash(c, "Note saved.")
	c.Redirect(http.StatusFound, "/")
}

// ShowNote is the public view of a shared note.
// GET /show_notes/:username/:book_title/:id
func (nc *NotesController) ShowNote(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		redirectHome(c)
		return
	}

	view, err := nc.notes.ViewNote(c.Request.Context(), c.Param("username"), c.Param("book_title"), noteID)
	if err != nil {
		if !errors.Is(err, services.ErrNoteNotFound) {
			log.Ctx(c.Request.Context()).Error().Err(err).Uint("note_id", noteID).Msg("Failed to load shared note")
		}
		redirectHome(c)
		return
	}

	nc.render(c, http.StatusOK, "show_note", gin.H{
		"Title":   view.Note.Chapter,
		"Owner":   view.Owner,
		"Book":    view.Book,
		"Note":    view.Note,
		"IsOwner": view.Owner.ID == identity(c).UserID,
	})
}

// EditPage renders the edit form. Existing quotes are shown read-only.
// GET /edit/:note_id
func (nc *NotesController) EditPage(c *gin.Context) {
	note, ok := nc.ownedNote(c)
	if !ok {
		return
	}
	nc.renderEditForm(c, note, noteFormFrom(note), "")
}

// Edit updates the chapter, text and book of a note.
// POST /edit/:note_id
func (nc *NotesController) Edit(c *gin.Context) {
	note, ok := nc.ownedNote(c)
	if !ok {
		return
	}

	form := bindNoteForm(c)
	input := services.NoteInput{BookID: form.BookID, Chapter: form.Chapter, Body: form.Body}

	err := nc.notes.EditNote(c.Request.Context(), identity(c), note.ID, input)
	switch {
	case errors.Is(err, services.ErrNoteNotFound):
		redirectHome(c)
		return
	case err != nil:
		if message, ok := formErrorMessage(err); ok {
			form.Quotes = noteFormFrom(note).Quotes
			nc.renderEditForm(c, note, form, message)
			return
		}
		nc.internalError(c, err, "edit note")
		return
	}

	nc.flash(c, "Note updated.")
	c.Redirect(http.StatusFound, "/booklist")
}

// DeletePage asks for confirmation before deleting a note.
// GET /delete/:note_id
func (nc *NotesController) DeletePage(c *gin.Context) {
	note, ok := nc.ownedNote(c)
	if !ok {
		return
	}
	nc.render(c, http.StatusOK, "delete_note", gin.H{
		"Title": "Delete Note",
		"Note":  note,
	})
}

// Delete removes a note and all of its quotes.
// POST /delete/:note_id
func (nc *NotesController) Delete(c *gin.Context) {
	noteID, ok := parseIDParam(c, "note_id")
	if !ok {
		redirectHome(c)
		return
	}

	err := nc.notes.DeleteNote(c.Request.Context(), identity(c), noteID)
	switch {
	case errors.Is(err, services.ErrNoteNotFound):
		redirectHome(c)
		return
	case err != nil:
		nc.internalError(c, err, "delete note")
		return
	}

	nc.flash(c, "Note deleted.")
	c.Redirect(http.StatusFound, "/booklist")
}

// ownedNote loads the note named in the path. Anything but the caller's
// own note redirects home.
func (nc *NotesController) ownedNote(c *gin.Context) (*entities.Note, bool) {
	noteID, ok := parseIDParam(c, "note_id")
	if !ok {
		redirectHome(c)
		return nil, false
	}

	note, err := nc.notes.GetNoteForEdit(c.Request.Context(), identity(c), noteID)
	switch {
	case errors.Is(err, services.ErrNoteNotFound):
		redirectHome(c)
		return nil, false
	case err != nil:
		nc.internalError(c, err, "load note")
		return nil, false
	}
	return note, true
}

func (nc *NotesController) renderEditForm(c *gin.Context, note *entities.Note, form noteForm, message string) {
	data := gin.H{
		"Title":  "Edit Note",
		"NoteID": note.ID,
	}
	if message != "" {
		data["Error"] = message
	}
	nc.renderNoteForm(c, "edit_note", form, data)
}

func (nc *NotesController) renderNoteForm(c *gin.Context, name string, form noteForm, data gin.H) {
	books, err := nc.library.LibraryBooks(c.Request.Context(), identity(c))
	if err != nil {
		nc.internalError(c, err, "load library books")
		return
	}
	data["Books"] = books
	data["Form"] = form
	nc.render(c, http.StatusOK, name, data)
}
