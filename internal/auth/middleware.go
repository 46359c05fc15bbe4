package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
)

// Middleware resolves the logged-in user from the session and guards
// every non-public route.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	publicPaths    map[string]bool
	publicPrefixes []string
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		publicPaths: map[string]bool{
			"/":            true,
			"/login":       true,
			"/register":    true,
			"/health":      true,
			"/favicon.ico": true,
		},
		publicPrefixes: []string{
			"/show_notes/",
			"/static/",
			"/covers/",
		},
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
// Public paths still get the user attached when a session exists so pages
// can show who is logged in.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticated := m.trySessionAuth(c)

		if !authenticated && !m.isPublicPath(c.Request.URL.Path) {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *Middleware) trySessionAuth(c *gin.Context) bool {
	if m.sessionManager == nil {
		return false
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return false
	}

	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return false
	}

	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	return true
}

// isPublicPath checks if a path should be accessible without authentication.
func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	for _, prefix := range m.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// IsAuthenticated returns true if the request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != 0
}
