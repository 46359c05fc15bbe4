package http

import (
	"github.com/mrlokans/booknotes/internal/analytics"
	"github.com/mrlokans/booknotes/internal/auth"
	"github.com/mrlokans/booknotes/internal/exporters"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Domain services
	Library LibraryUseCases
	Notes   NotesUseCases
	Search  SearchUseCases

	// Authentication
	AuthService  *auth.Service
	Sessions     *auth.SessionManager
	LoginLimiter *auth.LoginLimiter

	// Optional collaborators
	Auditor    ActivityLog // nil disables /activity and export auditing
	AuthEvents auth.EventRecorder
	CoverCache CoverLookup // nil means /covers always redirects
	Exporter   exporters.BookExporter
	Database   Pinger

	// Security
	CSRFSecret    []byte // empty disables CSRF protection (tests only)
	SecureCookies bool

	// UI paths; empty means the embedded assets are served
	TemplatesPath string
	StaticPath    string

	ReadOnly  bool                 // blocks writes, see internal/readonly
	Analytics *analytics.Plausible // nil renders no analytics script

	// Application info
	Version string
}
