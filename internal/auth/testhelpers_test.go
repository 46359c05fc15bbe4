package auth

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/booknotes/internal/config"
	"github.com/mrlokans/booknotes/internal/database"
	"github.com/mrlokans/booknotes/internal/database/users"
	"github.com/mrlokans/booknotes/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db       *gorm.DB
	service  *Service
	sessions *SessionManager
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "auth.db")
	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	store, err := NewSessionStore(sqlDB, database.DialectSQLite)
	require.NoError(t, err)

	cfg := config.Auth{BcryptCost: bcrypt.MinCost}
	return &testEnv{
		db:       db,
		service:  NewService(users.NewRepository(db), cfg),
		sessions: NewSessionManager(store, cfg),
	}
}

func (e *testEnv) mustRegister(t *testing.T, username, password string) *entities.User {
	t.Helper()
	user, err := e.service.Register(username, password, password)
	require.NoError(t, err)
	return user
}

const testTemplates = `
{{define "login"}}login|{{.Error}}|{{.Next}}|{{.CurrentUser}}{{end}}
{{define "register"}}register|{{.Error}}{{end}}
{{define "error"}}error|{{.Message}}{{end}}
`

// newRouter builds the same middleware chain the server uses, minus CSRF.
func (e *testEnv) newRouter(limiter *LoginLimiter, events EventRecorder) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("pages").Parse(testTemplates)))
	router.Use(e.sessions.SessionLoadSave())
	router.Use(NewMiddleware(e.service, e.sessions).Handler())

	NewAuthController(e.service, e.sessions, limiter, events).RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "home|"+GetUsername(c))
	})
	router.GET("/add_book", func(c *gin.Context) {
		c.String(http.StatusOK, "add_book|"+GetUsername(c))
	})
	return router
}

func postForm(router http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
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

type authEvent struct {
	userID  uint
	action  string
	success bool
}

type recordingEvents struct {
	events []authEvent
}

func (r *recordingEvents) LogAuth(userID uint, action, _, _ string, success bool) {
	r.events = append(r.events, authEvent{userID: userID, action: action, success: success})
}
