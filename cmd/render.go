package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/spf13/cobra"

	"tickchart/api"
	"tickchart/chartview"
	"tickchart/feed"
	"tickchart/model"
	"tickchart/render"
	"tickchart/surface"
	"tickchart/utils/pointer"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a chart from a JSON file",
	Long: `Render line samples or candles to an image or an interactive HTML page.

The input is a JSON array of samples, or an object with a "points" array.
Line samples look like {"date": "2024-01-02", "value": 10.5}; candles carry
open, high, low, close and an optional volume. Dates are ISO-8601 strings or
unix milliseconds. The output format follows the extension: .svg, .png or .html.

Example:
  tickchart render --kind candlestick --in aapl.json --out aapl.svg --overlays sma:20`,
	RunE: runRender,
}

var (
	renderKind     string
	renderIn       string
	renderOut      string
	renderTitle    string
	renderWidth    float64
	renderHeight   float64
	renderOverlays string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderKind, "kind", "line", "chart kind: line or candlestick")
	renderCmd.Flags().StringVar(&renderIn, "in", "", "input JSON file, - for stdin (required)")
	renderCmd.Flags().StringVar(&renderOut, "out", "chart.svg", "output file (.svg, .png or .html)")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "page title for .html output")
	renderCmd.Flags().Float64Var(&renderWidth, "width", 0, "chart width in pixels")
	renderCmd.Flags().Float64Var(&renderHeight, "height", 0, "chart height in pixels")
	renderCmd.Flags().StringVar(&renderOverlays, "overlays", "", "moving averages, e.g. sma:20,ema:50")
	_ = renderCmd.MarkFlagRequired("in")
}

func runRender(cmd *cobra.Command, args []string) error {
	kind, err := feed.ParseKind(renderKind)
	if err != nil {
		return err
	}
	cfg, err := renderConfig()
	if err != nil {
		return err
	}
	data, err := readInput(cmd.InOrStdin(), renderIn)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	ext := strings.ToLower(filepath.Ext(renderOut))
	switch kind {
	case feed.Candle:
		var points []model.OHLCPoint
		if err := decodeSamples(data, &points); err != nil {
			return err
		}
		err = renderTo(&buf, ext, api.RenderCandles(points, cfg), func() (components.Charter, error) {
			return chartview.KlineChart(renderTitle, points, cfg)
		})
	default:
		var points []model.TimeValuePoint
		if err := decodeSamples(data, &points); err != nil {
			return err
		}
		err = renderTo(&buf, ext, api.RenderLine(points, cfg), func() (components.Charter, error) {
			return chartview.LineChart(renderTitle, points, cfg)
		})
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(renderOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", renderOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", renderOut, buf.Len())
	return nil
}

func renderConfig() (render.Config, error) {
	base, err := loadConfig()
	if err != nil {
		return render.Config{}, err
	}
	cfg := base.Chart
	if renderWidth > 0 {
		cfg.Width = pointer.Of(renderWidth)
	}
	if renderHeight > 0 {
		cfg.Height = pointer.Of(renderHeight)
	}
	if renderOverlays != "" {
		overlays, err := api.ParseOverlays(renderOverlays)
		if err != nil {
			return cfg, err
		}
		cfg.Overlays = overlays
	}
	return cfg, cfg.Validate()
}

func renderTo(w io.Writer, ext string, surf *surface.Surface, page func() (components.Charter, error)) error {
	switch ext {
	case ".svg":
		return surf.WriteSVG(w)
	case ".png":
		return surf.WritePNG(w)
	case ".html":
		chart, err := page()
		if err != nil {
			return err
		}
		return chartview.WriteHTML(w, renderTitle, chart)
	}
	return fmt.Errorf("unsupported output extension %q", ext)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// decodeSamples accepts a bare array or an object with a "points" array.
func decodeSamples(data []byte, dst interface{}) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Points json.RawMessage `json:"points"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return fmt.Errorf("decode input: %w", err)
		}
		trimmed = wrapper.Points
	}
	if len(trimmed) == 0 {
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}
