package cmd

import (
	"github.com/spf13/cobra"

	"tickchart/config"
	"tickchart/utils/log"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "tickchart",
	Short: "Interactive time-series charts rendered on the server",
	Long: `tickchart renders line and candlestick charts with zoom, tooltips and brush
selection.

It provides:
  - render:  draw a chart from a JSON file to SVG, PNG or HTML
  - serve:   run the HTTP API and the interactive websocket sessions
  - export:  download history from the source API to CSV or JSON
  - config:  generate or validate configuration files`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logLevel != "" {
			return log.SetLevel(logLevel)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// loadConfig reads --config and the TICKCHART_* environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}
