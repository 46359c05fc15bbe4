// Package readonly implements the maintenance mode that blocks writes.
package readonly

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Message is returned for every blocked request.
const Message = "Book Notes is in read-only mode. Changes are disabled for now."

// ContextKeyReadOnly marks requests served while read-only mode is on.
const ContextKeyReadOnly = "read_only"

// readPaths accept POST without changing data: login and logout keep
// sessions working, the others are search forms.
var readPaths = []string{
	"/login",
	"/logout",
	"/add_book",
	"/quotes",
	"/note_search",
}

// writePaths change data on GET and are blocked for every method.
var writePaths = []string{
	"/book_clicked",
}

// Middleware blocks write operations while read-only mode is enabled.
// GET, HEAD and OPTIONS pass unless the path is in writePaths.
type Middleware struct {
	enabled bool
}

// NewMiddleware creates a read-only mode middleware.
func NewMiddleware(enabled bool) *Middleware {
	return &Middleware{enabled: enabled}
}

// IsEnabled returns whether read-only mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyReadOnly, m.enabled)

		if !m.enabled {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if matchesPath(path, writePaths) {
			m.respondBlocked(c)
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if matchesPath(path, readPaths) {
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

func matchesPath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// respondBlocked sends a 403, as JSON when the client asks for it.
func (m *Middleware) respondBlocked(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     Message,
			"read_only": true,
		})
		return
	}

	c.String(http.StatusForbidden, Message)
	c.Abort()
}
