package http

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booknotes/internal/analytics"
	"github.com/mrlokans/booknotes/internal/auth"
	"github.com/mrlokans/booknotes/internal/exporters"
	"github.com/mrlokans/booknotes/internal/readonly"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// templateFuncs are available to every page template.
var templateFuncs = template.FuncMap{
	"pathEscape":  url.PathEscape,
	"queryEscape": url.QueryEscape,
	"showNoteURL": showNoteURL,
	"addNotesURL": addNotesURL,
	"exportURL": func(title string) string {
		return "/export/" + url.PathEscape(title)
	},
	"bookClickedURL": func(title, author, cover string) string {
		link := "/book_clicked/" + url.PathEscape(title) + "/" + url.PathEscape(author)
		if cover != "" {
			link += "?cover=" + url.QueryEscape(cover)
		}
		return link
	},
	"page": func(p *int) string {
		if p == nil {
			return ""
		}
		return fmt.Sprint(*p)
	},
	"add":      func(a, b int) int { return a + b },
	"subtract": func(a, b int) int { return a - b },
}

// siteFuncs adds the per-site helpers used by the layout.
func siteFuncs(plausible *analytics.Plausible, readOnly bool) template.FuncMap {
	funcs := template.FuncMap{
		"analyticsScript": plausible.ScriptTag,
		"readOnly":        func() bool { return readOnly },
	}
	for name, fn := range templateFuncs {
		funcs[name] = fn
	}
	return funcs
}

// loadTemplates parses the page templates from dir, or the embedded set
// when dir is empty.
func loadTemplates(dir string, funcs template.FuncMap) (*template.Template, error) {
	tmpl := template.New("").Funcs(funcs)
	if dir != "" {
		return tmpl.ParseGlob(dir + "/*.html")
	}
	return tmpl.ParseFS(templateFS, "templates/*.html")
}

// enabledFeatures names the optional parts of cfg that are switched on.
func enabledFeatures(cfg RouterConfig) []string {
	var features []string
	if cfg.CoverCache != nil {
		features = append(features, "cover-cache")
	}
	if cfg.Auditor != nil {
		features = append(features, "activity")
	}
	if cfg.ReadOnly {
		features = append(features, "read-only")
	}
	if cfg.Analytics.Enabled() {
		features = append(features, "analytics")
	}
	if len(cfg.CSRFSecret) > 0 {
		features = append(features, "csrf")
	}
	return features
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	router := gin.New()

	// Titles may contain '/', so routes match on the escaped path.
	router.UseRawPath = true
	router.UnescapePathValues = true

	router.Use(RequestLogger())
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware(cfg.Analytics.Origin()))
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}
	router.Use(readonly.NewMiddleware(cfg.ReadOnly).Handler())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.SessionLoadSave())
	}
	router.Use(auth.NewMiddleware(cfg.AuthService, cfg.Sessions).Handler())

	tmpl, err := loadTemplates(cfg.TemplatesPath, siteFuncs(cfg.Analytics, cfg.ReadOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	} else {
		static, err := fs.Sub(staticFS, "static")
		if err != nil {
			return nil, fmt.Errorf("failed to load static files: %w", err)
		}
		router.StaticFS("/static", http.FS(static))
	}

	p := pages{sessions: cfg.Sessions}

	auth.NewAuthController(cfg.AuthService, cfg.Sessions, cfg.LoginLimiter, cfg.AuthEvents).RegisterRoutes(router)

	home := NewHomeController(p)
	health := NewHealthController(cfg.Database, cfg.Version, enabledFeatures(cfg)...)
	books := NewBooksController(cfg.Library, cfg.Search, p)
	notes := NewNotesController(cfg.Notes, cfg.Library, p)
	search := NewSearchController(cfg.Search, p)
	covers := NewCoversController(cfg.CoverCache, cfg.Library)
	exporter := cfg.Exporter
	if exporter == nil {
		exporter = exporters.NewMarkdownExporter()
	}
	export := NewExportController(cfg.Notes, exporter, cfg.Auditor, p)

	router.GET("/", home.Home)
	router.GET("/health", health.Status)
	router.NoRoute(home.NotFound)

	// Library
	router.GET("/add_book", books.AddBookPage)
	router.POST("/add_book", books.SearchCatalog)
	router.GET("/book_clicked/:title/:author", books.BookClicked)
	router.GET("/booklist", books.BookList)
	router.GET("/covers/:id", covers.GetCover)
	router.GET("/export/:book_title", export.Export)

	// Notes
	router.GET("/add_notes", notes.AddNotesPage)
	router.POST("/add_notes", notes.AddNotes)
	router.GET("/show_notes/:username/:book_title/:id", notes.ShowNote)
	router.GET("/edit/:note_id", notes.EditPage)
	router.POST("/edit/:note_id", notes.Edit)
	router.GET("/delete/:note_id", notes.DeletePage)
	router.POST("/delete/:note_id", notes.Delete)

	// Search
	router.GET("/quotes", search.Quotes)
	router.POST("/quotes", search.Quotes)
	router.GET("/note_search", search.NoteSearchPage)
	router.POST("/note_search", search.NoteSearch)

	if cfg.Auditor != nil {
		activity := NewActivityController(cfg.Auditor, p)
		router.GET("/activity", activity.ActivityPage)
	}

	return router, nil
}
