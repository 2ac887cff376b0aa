package chartview

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"tickchart/indicator"
	"tickchart/model"
	"tickchart/render"
)

var ErrNoData = errors.New("no drawable samples")

// missing is how ECharts marks a gap in a series.
const missing = "-"

const axisLayout = "2006-01-02 15:04"

func axisLabel(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(axisLayout)
}

func globalOptions(title string, cfg render.Config) []charts.GlobalOpts {
	width, height := render.DefaultWidth, render.DefaultHeight
	if cfg.Width != nil {
		width = *cfg.Width
	}
	if cfg.Height != nil {
		height = *cfg.Height
	}
	zoom := cfg.EnableZoom == nil || *cfg.EnableZoom
	options := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     px(width),
			Height:    px(height),
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(cfg.EnableTooltip == nil || *cfg.EnableTooltip), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	}
	if zoom {
		options = append(options,
			charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", Start: 0, End: 100}),
			charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		)
	}
	return options
}

// KlineChart builds the ECharts candlestick view of points. Samples with a missing price
// are dropped.
func KlineChart(title string, points []model.OHLCPoint, cfg render.Config) (*charts.Kline, error) {
	finite := model.FiniteCandles(points)
	if len(finite) == 0 {
		return nil, ErrNoData
	}
	x := make([]string, len(finite))
	values := make([]opts.KlineData, len(finite))
	for i, p := range finite {
		x[i] = axisLabel(p.Date)
		// ECharts orders a candle as open, close, low, high
		values[i] = opts.KlineData{Value: [4]float64{p.Open, p.Close, p.Low, p.High}}
	}

	up, down := render.DefaultUpColor, render.DefaultDownColor
	if cfg.UpColor != nil {
		up = *cfg.UpColor
	}
	if cfg.DownColor != nil {
		down = *cfg.DownColor
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(globalOptions(title, cfg)...)
	kline.SetXAxis(x).
		AddSeries(title, values).
		SetSeriesOptions(charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        up,
			Color0:       down,
			BorderColor:  up,
			BorderColor0: down,
		}))
	return kline, nil
}

// LineChart builds the ECharts line view of points with the configured overlays.
func LineChart(title string, points []model.TimeValuePoint, cfg render.Config) (*charts.Line, error) {
	finite := model.FinitePoints(points)
	if len(finite) == 0 {
		return nil, ErrNoData
	}
	x := make([]string, len(finite))
	for i, p := range finite {
		x[i] = axisLabel(p.Date)
	}

	color := render.DefaultLineColor
	if cfg.LineColor != nil {
		color = *cfg.LineColor
	}
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(title, cfg)...)
	line.SetXAxis(x).
		AddSeries(title, lineData(model.Values(finite)),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))

	for _, ov := range cfg.Overlays {
		kind, err := indicator.ParseKind(ov.Kind)
		if err != nil {
			return nil, err
		}
		metric, err := indicator.Overlay(kind, ov.Period, ov.Color, finite)
		if err != nil {
			return nil, err
		}
		var style []charts.SeriesOpts
		if ov.Color != "" {
			style = append(style, charts.WithLineStyleOpts(opts.LineStyle{Color: ov.Color}))
		}
		line.AddSeries(metric.Name, lineData(metric.Values), style...)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line, nil
}

func lineData(values model.Series[float64]) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		if !model.IsFinite(v) {
			out[i] = opts.LineData{Value: missing}
			continue
		}
		out[i] = opts.LineData{Value: v}
	}
	return out
}

// WriteHTML renders the charts as one standalone ECharts page.
func WriteHTML(w io.Writer, title string, chart ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(chart...)
	return page.Render(w)
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
