// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and see which concrete type fills each one.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - LibraryStore: Books and memberships (internal/services/interfaces.go)
//   - NoteStore: Notes and their quotes (internal/services/interfaces.go)
//   - UserLookup: Users by name (internal/services/interfaces.go)
//   - UserStore: Registration and login lookups (internal/auth/service.go)
//
// ## External Service Interfaces
//
//   - CatalogSearcher: Book candidates from Google Books (internal/services/interfaces.go)
//
// ## Background Work Interfaces
//
//   - CoverEnqueuer: Queue a cover download (internal/services/interfaces.go)
//   - CoverFetcher: Download a cover into the cache (internal/tasks/cache_cover.go)
//   - AuditCleanupEnqueuer: Queue an audit cleanup run (internal/scheduler/audit_cleanup.go)
//   - AuditEventCleaner: Delete expired audit events (internal/tasks/cleanup_audit.go)
//
// ## Presentation Interfaces
//
//   - LibraryUseCases, NotesUseCases, SearchUseCases: Service surface used by
//     controllers (internal/http/stores.go)
//   - CoverLookup, ActivityLog, Pinger: Optional collaborators of the router
//   - BookExporter: Render a book's notes for download (internal/exporters/generic.go)
//
// # Adding a New Export Format
//
//  1. Implement BookExporter in internal/exporters/
//
//     type JSONExporter struct{}
//
//     func (e *JSONExporter) Export(w io.Writer, book entities.Book, notes []entities.Note) (ExportResult, error)
//     func (e *JSONExporter) ContentType() string
//     func (e *JSONExporter) Filename(book entities.Book) string
//
//  2. Pass it as RouterConfig.Exporter in entrypoint.go
//
// # Adding a New Background Task
//
//  1. Define the task type and its processor in internal/tasks/
//
//  2. Register the queue on the tasks.Client in entrypoint.go
//
//  3. Add an Enqueue helper on tasks.Client and a consumer-side interface
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
