package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/booknotes/internal/audit"
	"github.com/mrlokans/booknotes/internal/auth"
	"github.com/mrlokans/booknotes/internal/catalog"
	"github.com/mrlokans/booknotes/internal/config"
	"github.com/mrlokans/booknotes/internal/database"
	auditrepo "github.com/mrlokans/booknotes/internal/database/audit"
	"github.com/mrlokans/booknotes/internal/database/library"
	"github.com/mrlokans/booknotes/internal/database/notes"
	"github.com/mrlokans/booknotes/internal/database/users"
	"github.com/mrlokans/booknotes/internal/entities"
	"github.com/mrlokans/booknotes/internal/services"
)

const testPassword = "secret1"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db      *database.Database
	router  *gin.Engine
	catalog *fakeCatalog
	covers  *fakeCovers
	auditor *audit.Service
	auth    *auth.Service
	library *services.LibraryService
	notes   *services.NotesService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return setupTestEnvWith(t, nil)
}

// setupTestEnvWith lets a test adjust the router configuration.
func setupTestEnvWith(t *testing.T, configure func(*RouterConfig)) *testEnv {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	store, err := auth.NewSessionStore(sqlDB, db.Dialect)
	require.NoError(t, err)

	authCfg := config.Auth{BcryptCost: bcrypt.MinCost}
	usersRepo := users.NewRepository(db.DB)
	libraryRepo := library.NewRepository(db.DB)
	notesRepo := notes.NewRepository(db.DB)

	env := &testEnv{
		db:      db,
		catalog: &fakeCatalog{},
		covers:  &fakeCovers{},
		auditor: audit.NewService(auditrepo.NewRepository(db.DB)),
		auth:    auth.NewService(usersRepo, authCfg),
	}
	t.Cleanup(env.auditor.Wait)

	env.library = services.NewLibraryService(libraryRepo, env.catalog, env.covers, env.auditor)
	env.notes = services.NewNotesService(notesRepo, libraryRepo, usersRepo, env.auditor)

	routerCfg := RouterConfig{
		Library:     env.library,
		Notes:       env.notes,
		Search:      services.NewSearchService(notesRepo, libraryRepo),
		AuthService: env.auth,
		Sessions:    auth.NewSessionManager(store, authCfg),
		Auditor:     env.auditor,
		AuthEvents:  env.auditor,
		Database:    db,
		Version:     "test",
	}
	if configure != nil {
		configure(&routerCfg)
	}

	router, err := NewRouter(routerCfg)
	require.NoError(t, err)
	env.router = router

	return env
}

// login registers the user and returns the session cookie of a fresh login.
func (e *testEnv) login(t *testing.T, username string) *http.Cookie {
	t.Helper()

	_, err := e.auth.Register(username, testPassword, testPassword)
	require.NoError(t, err)

	w := e.postForm("/login", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, w.Code)

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	return cookie
}

func (e *testEnv) identity(t *testing.T, username string) services.Identity {
	t.Helper()
	user, err := users.NewRepository(e.db.DB).GetUserByUsername(username)
	require.NoError(t, err)
	return services.Identity{UserID: user.ID, Username: user.Username}
}

func (e *testEnv) addBook(t *testing.T, username, title, author string) *entities.Book {
	t.Helper()
	result, err := e.library.AddToLibrary(context.Background(), e.identity(t, username), title, author, "")
	require.NoError(t, err)
	return result.Book
}

func (e *testEnv) createNote(t *testing.T, username string, bookID uint, chapter string, quotes ...services.QuoteInput) *entities.Note {
	t.Helper()
	note, err := e.notes.CreateNote(context.Background(), e.identity(t, username), services.NoteInput{
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
	require.NoError(t, e.db.DB.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	return nil
}

func intPtr(i int) *int { return &i }

type fakeCatalog struct {
	candidates []catalog.Candidate
	err        error
}

func (f *fakeCatalog) Search(ctx context.Context, title, author string) ([]catalog.Candidate, error) {
	return f.candidates, f.err
}

type fakeCovers struct {
	urls []string
}

func (f *fakeCovers) EnqueueCoverCache(ctx context.Context, bookID uint, url string) error {
	f.urls = append(f.urls, url)
	return nil
}

type fakeCoverLookup struct {
	path string
}

func (f fakeCoverLookup) Lookup(bookID uint, coverURL string) (string, bool) {
	return f.path, f.path != ""
}

type failingPinger struct{}

func (failingPinger) Ping() error {
	return errors.New("connection refused")
}

func itoa(id uint) string {
	return fmt.Sprint(id)
}
