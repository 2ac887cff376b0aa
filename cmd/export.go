package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tickchart/datasource"
	"tickchart/export"
	"tickchart/feed"
	"tickchart/model"
	"tickchart/utils/resty"
)

var exportCmd = &cobra.Command{
	Use:   "export SYMBOL",
	Short: "Download price history to CSV or JSON",
	Long: `Fetch the history of SYMBOL from the configured source API and write it out.

Example:
  tickchart export AAPL --kind candle --from 2024-01-01 --format csv --out aapl.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportKind     string
	exportFormat   string
	exportOut      string
	exportFrom     string
	exportTo       string
	exportInterval string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportKind, "kind", "line", "series kind: line or candle")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "start date, ISO-8601")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "end date, ISO-8601")
	exportCmd.Flags().StringVar(&exportInterval, "interval", "", "sample interval passed to the source, e.g. 1d")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	kind, err := feed.ParseKind(exportKind)
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	q, err := exportQuery()
	if err != nil {
		return err
	}

	timeout, _ := cfg.Source.TimeoutDuration()
	client := datasource.NewClient(cfg.Source.BaseURL,
		resty.NewDefaultRestyClient(resty.Options{RetryCount: cfg.Source.RetryCount, Timeout: timeout}))
	doc := export.Document{Symbol: args[0], ExportedAt: time.Now().UTC()}
	if kind == feed.Candle {
		doc.Candles, err = client.CandleHistory(cmd.Context(), args[0], q)
	} else {
		doc.Line, err = client.LineHistory(cmd.Context(), args[0], q)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		out = f
	}
	return export.Write(out, format, doc)
}

func exportQuery() (datasource.Query, error) {
	q := datasource.Query{Interval: exportInterval}
	var err error
	if exportFrom != "" {
		if q.From, err = parseFlagDate("from", exportFrom); err != nil {
			return q, err
		}
	}
	if exportTo != "" {
		if q.To, err = parseFlagDate("to", exportTo); err != nil {
			return q, err
		}
	}
	return q, nil
}

func parseFlagDate(name, s string) (time.Time, error) {
	t, err := model.ParseDateString(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}
