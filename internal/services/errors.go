package services

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrTitleRequired  = errors.New("title is required")
	ErrAuthorRequired = errors.New("author is required")
	ErrBookNotFound   = errors.New("book not found")

	ErrBookNotInLibrary = errors.New("book is not in your library")
	ErrNoteNotFound     = errors.New("note not found")
	ErrChapterRequired  = errors.New("chapter is required")
	ErrChapterTooLong   = errors.New("chapter must be at most 150 characters long")
	ErrBodyRequired     = errors.New("note text is required")
	ErrTooManyQuotes    = errors.New("a note can have at most 5 quotes")
	ErrSpeakerTooLong   = errors.New("speaker must be at most 50 characters long")
	ErrInvalidPage      = errors.New("page must be a positive number")
)
