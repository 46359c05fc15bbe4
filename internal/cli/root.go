// Package cli implements the booknotes command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/booknotes/internal/config"
	"github.com/mrlokans/booknotes/internal/logging"
)

var (
	cfg     *config.Config
	version = "dev"

	databaseURL string
	logLevel    string
)

// rootCmd serves the web application when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "booknotes",
	Short: "Book Notes - chapter notes and quotes for your library",
	Long: `Book Notes is a small web application for keeping chapter notes
and quotes for the books in your library.

Configuration is read from the environment (DATABASE_URL, SECRET_KEY,
BOOKS_API_KEY, PORT, ...). Flags override the matching variables.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.NewConfig()
		if databaseURL != "" {
			cfg.Database.URL = databaseURL
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logging.Setup(cfg.Log.Level, cfg.Log.Format)
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "SQLite path or postgres:// URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(cleanupAuditCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. v is reported by `version` and the server.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}
