// =============================================================================
// Invoice Combination Finder - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   finder serve [--addr :8080]
//
// The server stops gracefully on SIGINT or SIGTERM.
//
// =============================================================================

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/server"
)

// serveAddr overrides server.address from the configuration.
var serveAddr string

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API used by the web front end.

Routes:
  GET  /api/health
  POST /api/combinations          JSON request
  POST /api/combinations/upload   multipart spreadsheet upload
  POST /api/combinations/export   JSON request, CSV or XLSX download`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			mainConfig.Server.Address = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(mainConfig, logger, Version).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.address)")
}
