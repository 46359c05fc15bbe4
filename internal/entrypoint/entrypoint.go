package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/booknotes/internal/analytics"
	"github.com/mrlokans/booknotes/internal/audit"
	"github.com/mrlokans/booknotes/internal/auth"
	"github.com/mrlokans/booknotes/internal/catalog"
	"github.com/mrlokans/booknotes/internal/config"
	"github.com/mrlokans/booknotes/internal/covers"
	"github.com/mrlokans/booknotes/internal/database"
	auditrepo "github.com/mrlokans/booknotes/internal/database/audit"
	"github.com/mrlokans/booknotes/internal/database/library"
	"github.com/mrlokans/booknotes/internal/database/notes"
	"github.com/mrlokans/booknotes/internal/database/users"
	http_controllers "github.com/mrlokans/booknotes/internal/http"
	"github.com/mrlokans/booknotes/internal/logging"
	"github.com/mrlokans/booknotes/internal/scheduler"
	"github.com/mrlokans/booknotes/internal/services"
	"github.com/mrlokans/booknotes/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve listens until SIGINT or SIGTERM, then shuts the server down within
// the configured timeout. onShutdown runs after in-flight requests drain.
func Serve(ctx context.Context, router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	return serve(ctx, srv, ln, timeout, onShutdown)
}

func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, onShutdown ShutdownFunc) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("Starting server")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", timeout).Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown: %w", shutdownErr)
	}

	log.Info().Msg("Server exiting")
	return nil
}

// Run wires the application from cfg and serves it until interrupted.
func Run(cfg *config.Config, version string) error {
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", version).Msg("Starting Book Notes")
	if cfg.UI.ReadOnly {
		log.Warn().Msg("Read-only mode enabled; writes are blocked")
	}

	if err := os.MkdirAll(cfg.Global.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := database.NewDatabase(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	sqlDB, err := db.SQLDB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionStore, err := auth.NewSessionStore(sqlDB, db.Dialect)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	sessionManager := auth.NewSessionManager(sessionStore, cfg.Auth)

	csrfSecret, err := sessionSecret(cfg.Auth.SessionSecret)
	if err != nil {
		return err
	}

	usersRepo := users.NewRepository(db.DB)
	libraryRepo := library.NewRepository(db.DB)
	notesRepo := notes.NewRepository(db.DB)

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	defer auditService.Wait()

	coverCacheDir := filepath.Join(cfg.Global.DataDir, "covers")
	coverCache, err := covers.NewCache(coverCacheDir)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize cover cache; covers will be redirected")
	} else {
		log.Info().Str("dir", coverCacheDir).Msg("Cover cache initialized")
	}

	var (
		coverEnqueuer services.CoverEnqueuer
		cleanupQueue  scheduler.AuditCleanupEnqueuer
		taskClient    *tasks.Client
		taskCtxCancel context.CancelFunc
		coverLookup   http_controllers.CoverLookup
	)
	if coverCache != nil {
		coverLookup = coverCache
	}

	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(filepath.Join(cfg.Global.DataDir, "tasks.db"), tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing task client")
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))
		if coverCache != nil {
			taskClient.Register(tasks.NewCacheCoverQueue(coverCache))
			coverEnqueuer = taskClient
		}
		cleanupQueue = taskClient

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else {
		log.Info().Msg("Task queue disabled; covers are not cached and audit cleanup runs inline")
		cleanupQueue = scheduler.CleanupFunc(func(ctx context.Context, retentionDays int) error {
			deleted, err := auditService.DeleteOldEvents(time.Duration(retentionDays) * 24 * time.Hour)
			if err != nil {
				return err
			}
			log.Ctx(ctx).Info().Int64("deleted", deleted).Msg("Audit cleanup finished")
			return nil
		})
	}

	cleanupScheduler := scheduler.NewAuditCleanupScheduler(cleanupQueue, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
	if err := cleanupScheduler.Start(context.Background()); err != nil {
		return err
	}
	defer cleanupScheduler.Stop()

	loginLimiter := auth.NewLoginLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst)
	defer loginLimiter.Stop()

	libraryService := services.NewLibraryService(libraryRepo, catalog.NewClient(cfg.Catalog), coverEnqueuer, auditService)
	notesService := services.NewNotesService(notesRepo, libraryRepo, usersRepo, auditService)
	searchService := services.NewSearchService(notesRepo, libraryRepo)

	router, err := http_controllers.NewRouter(http_controllers.RouterConfig{
		Library:       libraryService,
		Notes:         notesService,
		Search:        searchService,
		AuthService:   auth.NewService(usersRepo, cfg.Auth),
		Sessions:      sessionManager,
		LoginLimiter:  loginLimiter,
		Auditor:       auditService,
		AuthEvents:    auditService,
		CoverCache:    coverLookup,
		Database:      db,
		CSRFSecret:    csrfSecret,
		SecureCookies: cfg.Auth.SecureCookies,
		TemplatesPath: cfg.UI.TemplatesPath,
		StaticPath:    cfg.UI.StaticPath,
		ReadOnly:      cfg.UI.ReadOnly,
		Analytics:     analytics.NewPlausible(cfg.Plausible),
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		loginLimiter.Stop()
	}

	return Serve(context.Background(), router, cfg, onShutdown)
}

// sessionSecret decodes SECRET_KEY, generating a throwaway key when unset.
func sessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		return auth.DecodeSecret(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	log.Warn().Msg("Generated session secret (set SECRET_KEY to keep sessions across restarts)")
	return auth.DecodeSecret(secret), nil
}
