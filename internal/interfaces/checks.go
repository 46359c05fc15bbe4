package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/booknotes/internal/audit"
	"github.com/mrlokans/booknotes/internal/auth"
	"github.com/mrlokans/booknotes/internal/catalog"
	"github.com/mrlokans/booknotes/internal/covers"
	"github.com/mrlokans/booknotes/internal/database"
	"github.com/mrlokans/booknotes/internal/database/library"
	"github.com/mrlokans/booknotes/internal/database/notes"
	"github.com/mrlokans/booknotes/internal/database/users"
	"github.com/mrlokans/booknotes/internal/exporters"
	"github.com/mrlokans/booknotes/internal/http"
	"github.com/mrlokans/booknotes/internal/scheduler"
	"github.com/mrlokans/booknotes/internal/services"
	"github.com/mrlokans/booknotes/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.LibraryStore = (*library.Repository)(nil)
var _ services.NoteStore = (*notes.Repository)(nil)
var _ services.UserLookup = (*users.Repository)(nil)
var _ auth.UserStore = (*users.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

var _ services.CatalogSearcher = (*catalog.Client)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ services.CoverEnqueuer = (*tasks.Client)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)
var _ scheduler.AuditCleanupEnqueuer = scheduler.CleanupFunc(nil)
var _ tasks.CoverFetcher = (*covers.Cache)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ services.ActivityRecorder = (*audit.Service)(nil)
var _ auth.EventRecorder = (*audit.Service)(nil)
var _ http.ActivityLog = (*audit.Service)(nil)

// =============================================================================
// Presentation
// =============================================================================

var _ http.LibraryUseCases = (*services.LibraryService)(nil)
var _ http.NotesUseCases = (*services.NotesService)(nil)
var _ http.SearchUseCases = (*services.SearchService)(nil)
var _ http.CoverLookup = (*covers.Cache)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ exporters.BookExporter = (*exporters.MarkdownExporter)(nil)
