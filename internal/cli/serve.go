package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/booknotes/internal/entrypoint"
)

var (
	servePort int32
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. The database schema is migrated on startup and
background workers for cover caching and audit cleanup are started when
TASKS_ENABLED is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int32Var(&servePort, "port", 0, "Listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen address (overrides HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != 0 {
		cfg.HTTP.Port = servePort
	}
	if serveHost != "" {
		cfg.HTTP.Host = serveHost
	}

	if err := entrypoint.Run(cfg, version); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}
