package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Auth
		Catalog
		Tasks
		Audit
		Log
		Plausible
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		DataDir                  string // Cover cache and task queue database live here
	}
	Database struct {
		URL string // SQLite path or postgres:// URL
	}
	UI struct {
		TemplatesPath string // Empty means the embedded templates are used
		StaticPath    string
		ReadOnly      bool // Blocks every write except login and logout
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		LoginRatePerMinute int
		LoginBurst         int
	}
	Catalog struct {
		APIKey            string
		BaseURL           string
		Timeout           time.Duration
		RequestsPerSecond float64
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Audit struct {
		RetentionDays   int
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Log struct {
		Level  string
		Format string // "console" or "json"
	}
	Plausible struct {
		Domain     string // Empty disables the analytics script
		ScriptURL  string
		Extensions string // Comma-separated, e.g. "outbound-links,file-downloads"
	}
)

// IsPostgres reports whether the database URL points at a PostgreSQL server.
func (d Database) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("database_url", DefaultDatabaseURL)
	v.SetDefault("templates_path", "")
	v.SetDefault("static_path", "")
	v.SetDefault("read_only", false)

	v.SetDefault("secret_key", "") // Auto-generated if empty
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("secure_cookies", false)
	v.SetDefault("login_rate_per_minute", 10)
	v.SetDefault("login_burst", 5)

	v.SetDefault("books_api_key", "")
	v.SetDefault("catalog_base_url", DefaultCatalogBaseURL)
	v.SetDefault("catalog_timeout", "10s")
	v.SetDefault("catalog_requests_per_second", 5)

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetDefault("plausible_domain", "")
	v.SetDefault("plausible_script_url", DefaultPlausibleScriptURL)
	v.SetDefault("plausible_extensions", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			DataDir:                  v.GetString("DATA_DIR"),
		},
		Database: Database{
			URL: v.GetString("DATABASE_URL"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
			ReadOnly:      v.GetBool("READ_ONLY"),
		},
		Auth: Auth{
			SessionSecret:      v.GetString("SECRET_KEY"),
			SessionLifetime:    v.GetDuration("SESSION_LIFETIME"),
			BcryptCost:         v.GetInt("BCRYPT_COST"),
			SecureCookies:      v.GetBool("SECURE_COOKIES"),
			LoginRatePerMinute: v.GetInt("LOGIN_RATE_PER_MINUTE"),
			LoginBurst:         v.GetInt("LOGIN_BURST"),
		},
		Catalog: Catalog{
			APIKey:            v.GetString("BOOKS_API_KEY"),
			BaseURL:           v.GetString("CATALOG_BASE_URL"),
			Timeout:           v.GetDuration("CATALOG_TIMEOUT"),
			RequestsPerSecond: v.GetFloat64("CATALOG_REQUESTS_PER_SECOND"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Plausible: Plausible{
			Domain:     v.GetString("PLAUSIBLE_DOMAIN"),
			ScriptURL:  v.GetString("PLAUSIBLE_SCRIPT_URL"),
			Extensions: v.GetString("PLAUSIBLE_EXTENSIONS"),
		},
	}
}
