package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/booknotes/internal/config"
	"github.com/mrlokans/booknotes/internal/database"
	"github.com/mrlokans/booknotes/internal/entities"
)

// Session data keys
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
	SessionKeyLoginAt  = "login_at"
	SessionKeyFlashes  = "flashes"
)

const (
	sqliteSessionsTable = `CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

	postgresSessionsTable = `CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BYTEA NOT NULL,
		expiry TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions (expiry);`
)

func init() {
	gob.Register(time.Time{})
	gob.Register([]string{})
}

// NewSessionStore creates the sessions table if needed and returns the scs
// store matching the database dialect.
func NewSessionStore(sqlDB *sql.DB, dialect database.Dialect) (scs.Store, error) {
	switch dialect {
	case database.DialectPostgres:
		if _, err := sqlDB.Exec(postgresSessionsTable); err != nil {
			return nil, fmt.Errorf("failed to create sessions table: %w", err)
		}
		return postgresstore.New(sqlDB), nil
	default:
		if _, err := sqlDB.Exec(sqliteSessionsTable); err != nil {
			return nil, fmt.Errorf("failed to create sessions table: %w", err)
		}
		return sqlite3store.New(sqlDB), nil
	}
}

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager backed by store.
func NewSessionManager(store scs.Store, cfg config.Auth) *SessionManager {
	sm := scs.New()
	sm.Store = store

	sm.Lifetime = cfg.SessionLifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}
}

// CreateSession logs the user in. The token is renewed first to prevent
// session fixation.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	sm.Put(r.Context(), SessionKeyUserID, int(user.ID))
	sm.Put(r.Context(), SessionKeyUsername, user.Username)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())

	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUserID retrieves the user ID from the session.
// Returns 0 if not authenticated.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyUserID))
}

// GetUsername retrieves the username from the session.
func (sm *SessionManager) GetUsername(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUsername)
}

// IsAuthenticated returns true if the request has a logged-in session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetUserID(r) != 0
}

// AddFlash queues a one-time message shown on the next rendered page.
func (sm *SessionManager) AddFlash(ctx context.Context, message string) {
	flashes, _ := sm.Get(ctx, SessionKeyFlashes).([]string)
	sm.Put(ctx, SessionKeyFlashes, append(flashes, message))
}

// PopFlashes returns and clears queued messages.
func (sm *SessionManager) PopFlashes(ctx context.Context) []string {
	flashes, _ := sm.Pop(ctx, SessionKeyFlashes).([]string)
	return flashes
}
