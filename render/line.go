package render

import (
	"sort"
	"time"

	"tickchart/brush"
	"tickchart/geometry"
	"tickchart/host"
	"tickchart/indicator"
	"tickchart/model"
	"tickchart/scale"
	"tickchart/surface"
	"tickchart/tooltip"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

var overlayPalette = []string{"#f59e0b", "#8b5cf6", "#10b981", "#ec4899"}

type overlayLine struct {
	metric indicator.Metric
	points []model.TimeValuePoint
}

// LineChart draws a value series as a single path over a continuous time axis.
type LineChart struct {
	*chart

	points []model.TimeValuePoint
	finite []model.TimeValuePoint
	index  []int // finite position to input position
	dates  []time.Time

	x0, x    *scale.Time
	y0, y    *scale.Linear
	overlays []overlayLine
}

// NewLineChart renders an empty line chart into surf. target and clock may be nil for a
// static chart that is only resized through Resize.
func NewLineChart(target *host.Target, surf *surface.Surface, clock host.Clock, cfg Config) *LineChart {
	lc := &LineChart{}
	lc.chart = newChart("line-chart", target, surf, clock, cfg, lc)
	lc.render()
	return lc
}

// SetData replaces the series and re-renders. Samples with a zero date or a non-finite
// value are left out of the path, the scales and the tooltip.
func (lc *LineChart) SetData(points []model.TimeValuePoint) {
	lc.points = append([]model.TimeValuePoint(nil), points...)
	lc.finite, lc.index = nil, nil
	for i, p := range lc.points {
		if p.Finite() {
			lc.finite = append(lc.finite, p)
			lc.index = append(lc.index, i)
		}
	}
	lc.dates = model.Dates(lc.finite)
	if !sort.SliceIsSorted(lc.dates, func(i, j int) bool { return lc.dates[i].Before(lc.dates[j]) }) {
		lc.log.Warn("line series dates are not ascending, tooltip lookup may pick the wrong sample")
	}
	if dropped := len(lc.points) - len(lc.finite); dropped > 0 {
		lc.log.Debugf("skipping %d invalid samples", dropped)
	}
	lc.render()
}

func (lc *LineChart) Data() []model.TimeValuePoint { return lc.points }

// Overlays returns the moving averages computed in the current pass.
func (lc *LineChart) Overlays() []indicator.Metric {
	out := make([]indicator.Metric, len(lc.overlays))
	for i, ov := range lc.overlays {
		out[i] = ov.metric
	}
	return out
}

// XScale returns the live x-scale, or nil before the first drawn pass.
func (lc *LineChart) XScale() *scale.Time { return lc.x }

func (lc *LineChart) YScale() *scale.Linear { return lc.y }

func (lc *LineChart) drawable() int     { return len(lc.finite) }
func (lc *LineChart) tooltipLines() int { return 2 }

func (lc *LineChart) timeInverter() brush.TimeInverter {
	if lc.x == nil {
		return nil
	}
	return lc.x
}

func (lc *LineChart) build(p *pass) {
	first, last, _ := model.TimeExtent(lc.dates)
	low, high, _ := model.Values(lc.finite).Extent()
	lc.x0 = scale.NewTime(first, last, 0, p.plot.W)
	lc.y0 = scale.NewLinear(low, high, p.plot.H, 0)
	lc.overlays = lc.computeOverlays()
	lc.redraw(p)
}

func (lc *LineChart) computeOverlays() []overlayLine {
	var out []overlayLine
	for i, ov := range lc.opts.Overlays {
		kind, err := indicator.ParseKind(ov.Kind)
		if err != nil {
			lc.log.WithError(err).Warn("skipping overlay")
			continue
		}
		color := ov.Color
		if color == "" {
			color = overlayPalette[i%len(overlayPalette)]
		}
		metric, err := indicator.Overlay(kind, ov.Period, color, lc.finite)
		if err != nil {
			lc.log.WithError(err).Warnf("skipping overlay %s", kind)
			continue
		}
		out = append(out, overlayLine{metric: metric, points: metric.Points(lc.finite)})
	}
	return out
}

func (lc *LineChart) redraw(p *pass) {
	t := p.transform
	lc.x = lc.x0.RescaleTime(t.InvertX)
	lc.y = lc.y0.RescaleLinear(t.InvertY)

	lc.surf.RemoveLayer(LayerSeries)
	lc.surf.RemoveLayer(LayerIndicator)

	style := surface.Style{Stroke: lc.opts.LineColor, StrokeWidth: lc.opts.StrokeWidth}
	path := geometry.LinePath(lc.finite, lc.x, lc.y)
	if len(path.Points) == 1 {
		pt := path.Points[0]
		lc.addPlot(p, surface.CircleNode(LayerSeries, pt.X, pt.Y, lc.opts.StrokeWidth+1,
			surface.Style{Fill: lc.opts.LineColor}), true)
	} else {
		lc.addPlot(p, surface.PathNode(LayerSeries, path.Points, style), true)
	}
	for _, ov := range lc.overlays {
		path := geometry.LinePath(ov.points, lc.x, lc.y)
		lc.addPlot(p, surface.PathNode(LayerIndicator, path.Points,
			surface.Style{Stroke: ov.metric.Color, StrokeWidth: 1.5}), true)
	}

	labels := geometry.LabelStyle{Count: p.rules.TickCount, Rotation: p.rules.LabelRotation, Anchor: p.rules.LabelAnchor}
	lc.drawAxes(p, geometry.TimeAxis(lc.x, labels), geometry.ValueAxis(lc.y, p.rules.TickCount))
}

func (lc *LineChart) locate(_ *pass, lx, _ float64) (tooltip.State, bool) {
	i, ok := tooltip.Locate(lc.dates, lc.x.InvertTime(lx))
	if !ok {
		return tooltip.Hidden, false
	}
	pt := lc.finite[i]
	return tooltip.State{
		Index:   lc.index[i],
		Date:    pt.Date,
		Value:   pt.Value,
		ScreenX: lc.x.MapTime(pt.Date),
		ScreenY: lc.y.Map(pt.Value),
		Lines:   []string{formatDate(pt.Date), "Value: " + scale.FormatValue(pt.Value, 2)},
	}, true
}

func formatDate(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}
