package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mrlokans/booknotes/internal/audit"
	"github.com/mrlokans/booknotes/internal/database"
	auditrepo "github.com/mrlokans/booknotes/internal/database/audit"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewDatabase(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		defer db.Close()

		log.Info().Str("dialect", string(db.Dialect)).Msg("Database schema is up to date")
		return nil
	},
}

var retentionDays int

var cleanupAuditCmd = &cobra.Command{
	Use:   "cleanup-audit",
	Short: "Delete audit events older than the retention period",
	Long: `Delete audit events older than the retention period once and exit.
The server runs the same cleanup on AUDIT_CLEANUP_SCHEDULE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := cfg.Audit.RetentionDays
		if cmd.Flags().Changed("days") {
			days = retentionDays
		}
		if days <= 0 {
			return fmt.Errorf("retention must be at least one day, got %d", days)
		}

		db, err := database.NewDatabase(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("cleanup-audit: %w", err)
		}
		defer db.Close()

		deleted, err := audit.NewService(auditrepo.NewRepository(db.DB)).
			DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup-audit: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d audit events older than %d days\n", deleted, days)
		return nil
	},
}

func init() {
	cleanupAuditCmd.Flags().IntVar(&retentionDays, "days", 0, "Retention in days (overrides AUDIT_RETENTION_DAYS)")
}
