package geometry

import (
	"math"
	"time"

	"tickchart/model"
	"tickchart/scale"
)

const (
	// BodyWidthRatio is the candle body width as a fraction of the bandwidth.
	BodyWidthRatio = 0.6
	MinBodyHeight  = 1.0
	// VolumeShare is the fraction of the plot height given to volume bars.
	VolumeShare = 0.2
)

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px < r.X+r.W && py >= r.Y && py < r.Y+r.H
}

type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Candle is the drawable form of one OHLC sample.
type Candle struct {
	Index  int
	Date   time.Time
	Wick   Segment
	Body   Rect
	Top    float64 // y(max(open, close))
	Bottom float64 // y(min(open, close))
	Up     bool
	Color  string
}

// HitRegion is an invisible full-height target covering one band slot.
type HitRegion struct {
	Index int
	Rect  Rect
}

type CandleOptions struct {
	UpColor    string
	DownColor  string
	HitRegions bool
	// PlotHeight sizes the hit regions.
	PlotHeight float64
}

// Candles builds wick and body geometry for every drawable sample. Slot i of the band
// scale belongs to points[i]; samples with a missing price keep their slot but draw
// nothing.
func Candles(points []model.OHLCPoint, x *scale.BandScale, y scale.Scale, opts CandleOptions) ([]Candle, []HitRegion) {
	candles := make([]Candle, 0, len(points))
	var regions []HitRegion
	bodyWidth := BodyWidthRatio * x.Bandwidth()

	for i, p := range points {
		if opts.HitRegions && i < x.Len() {
			regions = append(regions, HitRegion{
				Index: i,
				Rect:  Rect{X: x.SlotStart(i), Y: 0, W: x.Step(), H: opts.PlotHeight},
			})
		}
		if !p.Finite() || i >= x.Len() {
			continue
		}
		center := x.Center(i)
		top := y.Map(math.Max(p.Open, p.Close))
		bottom := y.Map(math.Min(p.Open, p.Close))
		color := opts.DownColor
		if p.Up() {
			color = opts.UpColor
		}
		candles = append(candles, Candle{
			Index: i,
			Date:  p.Date,
			Wick:  Segment{X1: center, Y1: y.Map(p.High), X2: center, Y2: y.Map(p.Low)},
			Body: Rect{
				X: center - bodyWidth/2,
				Y: top,
				W: bodyWidth,
				H: math.Max(bottom-top, MinBodyHeight),
			},
			Top:    top,
			Bottom: bottom,
			Up:     p.Up(),
			Color:  color,
		})
	}
	return candles, regions
}

// VolumeBar is a volume column anchored to the bottom of the plot.
type VolumeBar struct {
	Index int
	Rect  Rect
	Color string
}

// VolumeBars scales the sample volumes into the bottom VolumeShare of the plot. It
// returns nil when no sample carries a volume.
func VolumeBars(points []model.OHLCPoint, x *scale.BandScale, plotHeight float64, opts CandleOptions) []VolumeBar {
	maxVolume := 0.0
	for _, p := range points {
		if v, ok := p.VolumeValue(); ok && v > maxVolume {
			maxVolume = v
		}
	}
	if maxVolume <= 0 {
		return nil
	}

	laneHeight := plotHeight * VolumeShare
	vs := scale.NewLinear(0, maxVolume, plotHeight, plotHeight-laneHeight)
	width := x.Bandwidth()
	var bars []VolumeBar
	for i, p := range points {
		v, ok := p.VolumeValue()
		if !ok || v < 0 || i >= x.Len() {
			continue
		}
		top := vs.Map(v)
		color := opts.DownColor
		if p.Up() {
			color = opts.UpColor
		}
		bars = append(bars, VolumeBar{
			Index: i,
			Rect:  Rect{X: x.Map(float64(i)), Y: top, W: width, H: plotHeight - top},
			Color: color,
		})
	}
	return bars
}
