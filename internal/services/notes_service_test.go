package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/booknotes/internal/entities"
)

func TestCreateNoteSkipsBlankSlots(t *testing.T) {
	env := setupTestEnv(t)
	reader := env.createUser(t, "reader")
	book := env.addBook(t, reader, "Hamlet", "William Shakespeare")

	note, err := env.notesService.CreateNote(context.Background(), reader, NoteInput{
		BookID:  book.ID,
		Chapter: "Act III",
		Body:    "The soliloquy.",
		Quotes: []QuoteInput{
			{Text: "To be or not to be", Speaker: "Hamlet", Page: intPtr(64)},
			{Text: "   "},
			{Text: "Get thee to a nunnery", Speaker: "Hamlet"},
			{},
			{Text: ""},
		},
	})
	require.NoError(t, err)

	stored, err := env.notes.GetNoteByID(note.ID)
	require.NoError(t, err)
	require.Len(t, stored.Quotes, 2, "only filled slots become quotes")

	type quoteRow struct {
		Text    string
		Speaker string
		UserID  uint
		BookID  uint
	}
	var got []quoteRow
	for _, q := range stored.Quotes {
		got = append(got, quoteRow{q.Text, q.Speaker, q.UserID, q.BookID})
	}
	want := []quoteRow{
		{"To be or not to be", "Hamlet", reader.UserID, book.ID},
		{"Get thee to a nunnery", "Hamlet", reader.UserID, book.ID},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("quotes mismatch (-want +got):\n%s", diff)
	}
	assert.Less(t, stored.Quotes[0].ID, stored.Quotes[1].ID)
	require.NotNil(t, stored.Quotes[0].Page)
	assert.Equal(t, 64, *stored.Quotes[0].Page)
	assert.Nil(t, stored.Quotes[1].Page)
}

func TestCreateNoteWithoutQuotes(t *testing.T) {
	env := setupTestEnv(t)
	reader := env.createUser(t, "reader")
	book := env.addBook(t, reader, "Dune", "Frank Herbert")

	note := env.createNote(t, reader, book.ID, "Chapter 1")
	assert.NotZero(t, note.ID)
	assert.Zero(t, env.count(t, &entities.Quote{}))
}

func TestCreateNoteRequiresLibraryBook(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice")
	bobby := env.createUser(t, "bobby")
	book := env.addBook(t, alice, "Dune", "Frank Herbert")
	ctx := context.Background()

	_, err := env.notesService.CreateNote(ctx, bobby, NoteInput{BookID: book.ID, Chapter: "One", Body: "Text"})
	assert.ErrorIs(t, err, ErrBookNotInLibrary)

	_, err = env.notesService.CreateNote(ctx, alice, NoteInput{BookID: 0, Chapter: "One", Body: "Text"})
	assert.ErrorIs(t, err, ErrBookNotInLibrary)

	assert.Zero(t, env.count(t, &entities.Note{}))
}

func TestCreateNoteValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   NoteInput
		wantErr error
	}{
		{"missing chapter", NoteInput{Chapter: "  ", Body: "Text"}, ErrChapterRequired},
		{"long chapter", NoteInput{Chapter: strings.Repeat("c", 151), Body: "Text"}, ErrChapterTooLong},
		{"missing body", NoteInput{Chapter: "One", Body: " \n "}, ErrBodyRequired},
		{"six slots", NoteInput{Chapter: "One", Body: "Text", Quotes: make([]QuoteInput, 6)}, ErrTooManyQuotes},
		{"long speaker", NoteInput{Chapter: "One", Body: "Text", Quotes: []QuoteInput{{Text: "q", Speaker: strings.Repeat("s", 51)}}}, ErrSpeakerTooLong},
		{"zero page", NoteInput{Chapter: "One", Body: "Text", Quotes: []QuoteInput{{Text: "q", Page: intPtr(0)}}}, ErrInvalidPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)
			reader := env.createUser(t, "reader")
			book := env.addBook(t, reader, "Dune", "Frank Herbert")

			tt.input.BookID = book.ID
			_, err := env.notesService.CreateNote(context.Background(), reader, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, env.count(t, &entities.Note{}))
			assert.Zero(t, env.count(t, &entities.Quote{}))
		})
	}
}

func TestEditNoteMovesQuotesWithBook(t *testing.T) {
	env := setupTestEnv(t)
	reader := env.createUser(t, "reader")
	dune := env.addBook(t, reader, "Dune", "Frank Herbert")
	messiah := env.addBook(t, reader, "Dune Messiah", "Frank Herbert")
	note := env.createNote(t, reader, dune.ID, "One", QuoteInput{Text: "Fear is the mind-killer."})

	err := env.notesService.EditNote(context.Background(), reader, note.ID, NoteInput{
		BookID:  messiah.ID,
		Chapter: "Two",
		Body:    "Revised",
		Quotes:  []QuoteInput{{Text: "ignored"}},
	})
	require.NoError(t, err)

	stored, err := env.notes.GetNoteByID(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Two", stored.Chapter)
	assert.Equal(t, "Revised", stored.Body)
	assert.Equal(t, messiah.ID, stored.BookID)
	require.Len(t, stored.Quotes, 1, "quote slots are not editable")
	assert.Equal(t, "Fear is the mind-killer.", stored.Quotes[0].Text)
	assert.Equal(t, messiah.ID, stored.Quotes[0].BookID)
}

func TestEditNoteOwnership(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice")
	bobby := env.createUser(t, "bobby")
	aliceBook := env.addBook(t, alice, "Dune", "Frank Herbert")
	bobbyBook := env.addBook(t, bobby, "Emma", "Jane Austen")
	note := env.createNote(t, alice, aliceBook.ID, "One")
	ctx := context.Background()

	err := env.notesService.EditNote(ctx, bobby, note.ID, NoteInput{BookID: bobbyBook.ID, Chapter: "X", Body: "Y"})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	err = env.notesService.EditNote(ctx, alice, note.ID, NoteInput{BookID: bobbyBook.ID, Chapter: "X", Body: "Y"})
	assert.ErrorIs(t, err, ErrBookNotInLibrary)

	err = env.notesService.EditNote(ctx, alice, note.ID+100, NoteInput{BookID: aliceBook.ID, Chapter: "X", Body: "Y"})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	stored, err := env.notes.GetNoteByID(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "One", stored.Chapter)
}

func TestGetNoteForEdit(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice")
	bobby := env.createUser(t, "bobby")
	book := env.addBook(t, alice, "Dune", "Frank Herbert")
	note := env.createNote(t, alice, book.ID, "One", QuoteInput{Text: "q1"}, QuoteInput{Text: "q2"})
	ctx := context.Background()

	loaded, err := env.notesService.GetNoteForEdit(ctx, alice, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", loaded.Book.Title)
	assert.Len(t, loaded.Quotes, 2)

	_, err = env.notesService.GetNoteForEdit(ctx, bobby, note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestDeleteNoteRemovesQuotes(t *testing.T) {
	env := setupTestEnv(t)
	reader := env.createUser(t, "reader")
	book := env.addBook(t, reader, "Dune", "Frank Herbert")
	note := env.createNote(t, reader, book.ID, "One",
		QuoteInput{Text: "q1"}, QuoteInput{Text: "q2"}, QuoteInput{Text: "q3"})
	keep := env.createNote(t, reader, book.ID, "Two", QuoteInput{Text: "kept"})

	require.NoError(t, env.notesService.DeleteNote(context.Background(), reader, note.ID))

	assert.Equal(t, int64(1), env.count(t, &entities.Note{}))
	assert.Equal(t, int64(1), env.count(t, &entities.Quote{}))
	_, err := env.notes.GetNoteByID(keep.ID)
	assert.NoError(t, err)
	assert.Equal(t, []uint{note.ID}, env.events.noteDeletes)
}

func TestDeleteNoteOwnership(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice")
	bobby := env.createUser(t, "bobby")
	book := env.addBook(t, alice, "Dune", "Frank Herbert")
	note := env.createNote(t, alice, book.ID, "One", QuoteInput{Text: "q1"})

	err := env.notesService.DeleteNote(context.Background(), bobby, note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.Equal(t, int64(1), env.count(t, &entities.Note{}))
	assert.Equal(t, int64(1), env.count(t, &entities.Quote{}))
	assert.Empty(t, env.events.noteDeletes)
}

func TestViewNote(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "Alice")
	bobby := env.createUser(t, "bobby")
	dune := env.addBook(t, alice, "Dune", "Frank Herbert")
	env.addBook(t, bobby, "Emma", "Jane Austen")
	note := env.createNote(t, alice, dune.ID, "One", QuoteInput{Text: "q1"})
	bobbyNote := env.createNote(t, bobby, env.addBook(t, bobby, "Dune", "Frank Herbert").ID, "Bob's")
	ctx := context.Background()

	view, err := env.notesService.ViewNote(ctx, "alice", "Dune", note.ID)
	require.NoError(t, err, "owner lookup ignores case")
	assert.Equal(t, "Alice", view.Owner.Username)
	assert.Equal(t, dune.ID, view.Book.ID)
	assert.Equal(t, "One", view.Note.Chapter)
	assert.Len(t, view.Note.Quotes, 1)

	tests := []struct {
		name   string
		owner  string
		title  string
		noteID uint
	}{
		{"book not in owner's library", "Alice", "Emma", note.ID},
		{"note of another user", "Alice", "Dune", bobbyNote.ID},
		{"unknown owner", "nobody", "Dune", note.ID},
		{"unknown note", "Alice", "Dune", note.ID + 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := env.notesService.ViewNote(ctx, tt.owner, tt.title, tt.noteID)
			assert.ErrorIs(t, err, ErrNoteNotFound)
			assert.Nil(t, view)
		})
	}
}

func TestViewNoteBookOutsideOwnerLibrary(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice")
	bobby := env.createUser(t, "bobby")

	// Both read "Dune"; the note lives on it, but the link names a title
	// only bobby holds.
	dune := env.addBook(t, alice, "Dune", "Frank Herbert")
	env.addBook(t, bobby, "Walden", "Henry David Thoreau")
	note := env.createNote(t, alice, dune.ID, "One")

	_, err := env.notesService.ViewNote(context.Background(), "alice", "Walden", note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestViewNoteSameTitleDifferentAuthors(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice")
	austen := env.addBook(t, alice, "Persuasion", "Jane Austen")
	cialdini := env.addBook(t, alice, "Persuasion", "Robert Cialdini")
	first := env.createNote(t, alice, austen.ID, "Chapter 1")
	second := env.createNote(t, alice, cialdini.ID, "Reciprocity")
	ctx := context.Background()

	view, err := env.notesService.ViewNote(ctx, "alice", "Persuasion", second.ID)
	require.NoError(t, err)
	assert.Equal(t, cialdini.ID, view.Book.ID)
	assert.Equal(t, "Reciprocity", view.Note.Chapter)

	view, err = env.notesService.ViewNote(ctx, "alice", "Persuasion", first.ID)
	require.NoError(t, err)
	assert.Equal(t, austen.ID, view.Book.ID)
}

func TestViewNoteRequiresOwnerMembership(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice")
	dune := env.addBook(t, alice, "Dune", "Frank Herbert")
	note := env.createNote(t, alice, dune.ID, "One")

	require.NoError(t, env.db.Where("user_id = ? AND book_id = ?", alice.UserID, dune.ID).
		Delete(&entities.Membership{}).Error)

	_, err := env.notesService.ViewNote(context.Background(), "alice", "Dune", note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestBookNotes(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.createUser(t, "alice")
	bobby := env.createUser(t, "bobby")
	dune := env.addBook(t, alice, "Dune", "Frank Herbert")
	env.addBook(t, bobby, "Dune", "Frank Herbert")
	env.createNote(t, alice, dune.ID, "One", QuoteInput{Text: "q1"})
	env.createNote(t, alice, dune.ID, "Two")
	env.createNote(t, bobby, dune.ID, "Bob's")

	book, notes, err := env.notesService.BookNotes(context.Background(), alice, "Dune")
	require.NoError(t, err)
	assert.Equal(t, dune.ID, book.ID)
	require.Len(t, notes, 2)
	assert.Equal(t, "One", notes[0].Chapter)
	assert.Len(t, notes[0].Quotes, 1)

	_, _, err = env.notesService.BookNotes(context.Background(), alice, "Emma")
	assert.ErrorIs(t, err, ErrBookNotInLibrary)
}
