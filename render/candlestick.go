package render

import (
	"time"

	"tickchart/brush"
	"tickchart/geometry"
	"tickchart/host"
	"tickchart/model"
	"tickchart/scale"
	"tickchart/surface"
	"tickchart/tooltip"
)

// CandlestickChart draws OHLC samples as wick and body glyphs on a band x-axis, with
// volume bars along the bottom of the plot when the samples carry volume.
type CandlestickChart struct {
	*chart

	points []model.OHLCPoint
	finite []model.OHLCPoint
	index  []int

	x0, x   *scale.BandScale
	y0, y   *scale.Linear
	candles []geometry.Candle
	regions []geometry.HitRegion
}

func NewCandlestickChart(target *host.Target, surf *surface.Surface, clock host.Clock, cfg Config) *CandlestickChart {
	cc := &CandlestickChart{}
	cc.chart = newChart("candlestick-chart", target, surf, clock, cfg, cc)
	cc.render()
	return cc
}

// SetData replaces the samples and re-renders. Samples with a zero date or a missing
// price are dropped and take no band slot.
func (cc *CandlestickChart) SetData(points []model.OHLCPoint) {
	cc.points = append([]model.OHLCPoint(nil), points...)
	cc.finite, cc.index = nil, nil
	for i, p := range cc.points {
		if p.Finite() {
			cc.finite = append(cc.finite, p)
			cc.index = append(cc.index, i)
		}
	}
	if dropped := len(cc.points) - len(cc.finite); dropped > 0 {
		cc.log.Debugf("skipping %d invalid candles", dropped)
	}
	cc.render()
}

func (cc *CandlestickChart) Data() []model.OHLCPoint { return cc.points }

// Candles returns the glyphs of the current pass in plot pixels.
func (cc *CandlestickChart) Candles() []geometry.Candle { return cc.candles }

func (cc *CandlestickChart) HitRegions() []geometry.HitRegion { return cc.regions }

func (cc *CandlestickChart) XScale() *scale.BandScale { return cc.x }

func (cc *CandlestickChart) YScale() *scale.Linear { return cc.y }

func (cc *CandlestickChart) drawable() int     { return len(cc.finite) }
func (cc *CandlestickChart) tooltipLines() int { return 6 }

func (cc *CandlestickChart) timeInverter() brush.TimeInverter {
	if cc.x == nil {
		return nil
	}
	return cc.x
}

func (cc *CandlestickChart) build(p *pass) {
	low, high, _ := model.PriceExtent(cc.finite)
	cc.x0 = scale.NewTimeBand(model.CandleDates(cc.finite), 0, p.plot.W, scale.DefaultBandPadding)
	cc.y0 = scale.NewLinear(low, high, p.plot.H, 0)
	cc.redraw(p)
}

func (cc *CandlestickChart) redraw(p *pass) {
	t := p.transform
	cc.x = cc.x0.RescaleBand(t.ApplyX)
	cc.y = cc.y0.RescaleLinear(t.InvertY)

	cc.surf.RemoveLayer(LayerVolume)
	cc.surf.RemoveLayer(LayerCandles)
	cc.surf.RemoveLayer(LayerHit)

	opts := geometry.CandleOptions{
		UpColor:    cc.opts.UpColor,
		DownColor:  cc.opts.DownColor,
		HitRegions: cc.opts.EnableTooltip,
		PlotHeight: p.plot.H,
	}
	for _, bar := range geometry.VolumeBars(cc.finite, cc.x, p.plot.H, opts) {
		if !visible(bar.Rect, p.plot.W) {
			continue
		}
		cc.addPlot(p, surface.RectNode(LayerVolume, bar.Rect, surface.Style{Fill: withAlpha(bar.Color, "66")}), true)
	}

	cc.candles, cc.regions = geometry.Candles(cc.finite, cc.x, cc.y, opts)
	for _, c := range cc.candles {
		if !visible(c.Body, p.plot.W) {
			continue
		}
		cc.addPlot(p, surface.LineNode(LayerCandles, c.Wick, surface.Style{Stroke: c.Color, StrokeWidth: 1}), true)
		cc.addPlot(p, surface.RectNode(LayerCandles, c.Body, surface.Style{Fill: c.Color, Stroke: c.Color, StrokeWidth: 1}), true)
	}
	for _, r := range cc.regions {
		if !visible(r.Rect, p.plot.W) {
			continue
		}
		n := surface.RectNode(LayerHit, r.Rect, surface.Style{})
		n.Invisible = true
		cc.addPlot(p, n, true)
	}

	labels := geometry.LabelStyle{Count: p.rules.TickCount, Rotation: p.rules.LabelRotation, Anchor: p.rules.LabelAnchor}
	xAxis := geometry.BandAxis(cc.x, labels, bandLayout(cc.x.Keys()), [2]float64{0, p.plot.W})
	cc.drawAxes(p, xAxis, geometry.ValueAxis(cc.y, p.rules.TickCount))
}

func (cc *CandlestickChart) locate(_ *pass, lx, _ float64) (tooltip.State, bool) {
	r, ok := tooltip.LocateRegion(cc.regions, lx)
	if !ok {
		return tooltip.Hidden, false
	}
	pt := cc.finite[r.Index]
	lines := []string{
		formatDate(pt.Date),
		"O: " + scale.FormatValue(pt.Open, 2),
		"H: " + scale.FormatValue(pt.High, 2),
		"L: " + scale.FormatValue(pt.Low, 2),
		"C: " + scale.FormatValue(pt.Close, 2),
	}
	if v, ok := pt.VolumeValue(); ok {
		lines = append(lines, "V: "+scale.FormatValue(v, 0))
	}
	return tooltip.State{
		Index:   cc.index[r.Index],
		Date:    pt.Date,
		Value:   pt.Close,
		ScreenX: cc.x.Center(r.Index),
		ScreenY: cc.y.Map(pt.Close),
		Lines:   lines,
	}, true
}

// visible reports whether r overlaps the horizontal extent of the plot.
func visible(r geometry.Rect, width float64) bool {
	return r.X+r.W >= 0 && r.X <= width
}

// bandLayout picks a label layout for candle keys: dates when every key is a midnight,
// otherwise day and time.
func bandLayout(keys []time.Time) string {
	for _, k := range keys {
		k = k.UTC()
		if k.Hour() != 0 || k.Minute() != 0 {
			return "01-02 15:04"
		}
	}
	return "Jan 02"
}
