package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/booknotes/internal/auth"
	"github.com/mrlokans/booknotes/internal/services"
)

// pages renders templates with the values every layout needs.
type pages struct {
	sessions *auth.SessionManager
}

func (p pages) render(c *gin.Context, status int, name string, data gin.H) {
	c.HTML(status, name, auth.TemplateData(c, p.sessions, data))
}

// flash queues a message for the next rendered page.
func (p pages) flash(c *gin.Context, message string) {
	if p.sessions != nil {
		p.sessions.AddFlash(c.Request.Context(), message)
	}
}

// internalError logs the error and renders a generic 500 page.
// The actual error is logged but not exposed to the client.
func (p pages) internalError(c *gin.Context, err error, context string) {
	log.Ctx(c.Request.Context()).Error().Err(err).Str("context", context).Msg("Internal error")
	_ = c.Error(err)
	p.render(c, http.StatusInternalServerError, "error", gin.H{
		"Title":   "Error",
		"Message": "Something went wrong. Please try again.",
	})
}

// redirectHome treats the request as not found. Lookups that fail an
// ownership check end up here too.
func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}

// identity returns the caller as set by the auth middleware.
func identity(c *gin.Context) services.Identity {
	return services.Identity{
		UserID:   auth.GetUserID(c),
		Username: auth.GetUsername(c),
	}
}

// parseIDParam extracts an unsigned integer ID from URL parameters.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// addNotesURL points the note form at a book of the user's library.
func addNotesURL(title string) string {
	return "/add_notes?book=" + url.QueryEscape(title)
}

// showNoteURL is the public link to a note.
func showNoteURL(username, title string, noteID uint) string {
	return "/show_notes/" + url.PathEscape(username) + "/" + url.PathEscape(title) + "/" + strconv.FormatUint(uint64(noteID), 10)
}

// formErrorMessage returns the text shown above a note form for a
// validation failure, or false when err is not a validation failure.
func formErrorMessage(err error) (string, bool) {
	for _, known := range []struct {
		err     error
		message string
	}{
		{services.ErrChapterRequired, "Chapter is required"},
		{services.ErrChapterTooLong, "Chapter must be at most 150 characters long"},
		{services.ErrBodyRequired, "Notes are required"},
		{services.ErrTooManyQuotes, "A note can have at most 5 quotes"},
		{services.ErrSpeakerTooLong, "Speaker must be at most 50 characters long"},
		{services.ErrInvalidPage, "Page must be a positive number"},
		{services.ErrBookNotInLibrary, "Please choose a book from your booklist"},
		{errInvalidPageNumber, "Page must be a positive number"},
	} {
		if errors.Is(err, known.err) {
			return known.message, true
		}
	}
	return "", false
}
