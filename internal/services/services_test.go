package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/booknotes/internal/catalog"
	"github.com/mrlokans/booknotes/internal/database/library"
	"github.com/mrlokans/booknotes/internal/database/notes"
	"github.com/mrlokans/booknotes/internal/database/users"
	"github.com/mrlokans/booknotes/internal/entities"
)

type testEnv struct {
	db      *gorm.DB
	library *library.Repository
	notes   *notes.Repository
	users   *users.Repository
	catalog *fakeCatalog
	covers  *fakeCovers
	events  *fakeEvents

	libraryService *LibraryService
	notesService   *NotesService
	searchService  *SearchService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "services.db")
	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{}, &entities.Book{}, &entities.Membership{}, &entities.Note{}, &entities.Quote{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	env := &testEnv{
		db:      db,
		library: library.NewRepository(db),
		notes:   notes.NewRepository(db),
		users:   users.NewRepository(db),
		catalog: &fakeCatalog{},
		covers:  &fakeCovers{},
		events:  &fakeEvents{},
	}
	env.libraryService = NewLibraryService(env.library, env.catalog, env.covers, env.events)
	env.notesService = NewNotesService(env.notes, env.library, env.users, env.events)
	env.searchService = NewSearchService(env.notes, env.library)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string) Identity {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entities.User{Username: username, PasswordHash: string(hash)}
	require.NoError(t, e.users.CreateUser(user))
	return Identity{UserID: user.ID, Username: user.Username}
}

func (e *testEnv) addBook(t *testing.T, id Identity, title, author string) *entities.Book {
	t.Helper()
	result, err := e.libraryService.AddToLibrary(context.Background(), id, title, author, "")
	require.NoError(t, err)
	return result.Book
}

func (e *testEnv) createNote(t *testing.T, id Identity, bookID uint, chapter string, quotes ...QuoteInput) *entities.Note {
	t.Helper()
	note, err := e.notesService.CreateNote(context.Background(), id, NoteInput{
		BookID:  bookID,
		Chapter: chapter,
		Body:    "Thoughts on " + chapter,
		Quotes:  quotes,
	})
	require.NoError(t, err)
	return note
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

type fakeCatalog struct {
	candidates []catalog.Candidate
	err        error
	calls      []string
}

func (f *fakeCatalog) Search(ctx context.Context, title, author string) ([]catalog.Candidate, error) {
	f.calls = append(f.calls, title+"|"+author)
	return f.candidates, f.err
}

type coverJob struct {
	bookID uint
	url    string
}

type fakeCovers struct {
	jobs []coverJob
	err  error
}

func (f *fakeCovers) EnqueueCoverCache(ctx context.Context, bookID uint, coverURL string) error {
	f.jobs = append(f.jobs, coverJob{bookID: bookID, url: coverURL})
	return f.err
}

type fakeEvents struct {
	mu          sync.Mutex
	libraryAdds []uint
	noteDeletes []uint
}

func (f *fakeEvents) LogLibraryAdd(userID, bookID uint, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.libraryAdds = append(f.libraryAdds, bookID)
}

func (f *fakeEvents) LogNoteDelete(userID, noteID uint, chapter string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noteDeletes = append(f.noteDeletes, noteID)
}

func intPtr(v int) *int {
	return &v
}
