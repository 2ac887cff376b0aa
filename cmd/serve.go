package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tickchart/app"
	"tickchart/utils/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the interactive chart sessions",
	Long: `Serve static chart renders and exports over HTTP, and interactive charts over
websockets. Open the websocket address in a browser for the demo page.

Example:
  tickchart serve --config tickchart.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tc, err := app.NewTickChart(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := tc.Preload(ctx); err != nil {
		log.Warnf("preload incomplete: %v", err)
	}
	tc.Start(ctx)

	// returns once a signal arrives or either server fails
	return tc.Wait()
}
