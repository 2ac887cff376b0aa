package geometry

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickchart/model"
	"tickchart/scale"
	"tickchart/utils/pointer"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestLinePath_TwoSamples(t *testing.T) {
	points := []model.TimeValuePoint{{Date: day(1), Value: 100}, {Date: day(2), Value: 110}}
	x := scale.NewTime(day(1), day(2), 0, 710)
	y := scale.NewLinear(100, 110, 340, 0)

	path := LinePath(points, x, y)
	require.Len(t, path.Points, 2)
	assert.Equal(t, Point{X: 0, Y: 340}, path.Points[0])
	assert.Equal(t, Point{X: 710, Y: 0}, path.Points[1])
	assert.Equal(t, "M0,340L710,0", path.D())
}

func TestLinePath_SkipsMissingSamples(t *testing.T) {
	points := []model.TimeValuePoint{
		{Date: day(1), Value: 1},
		{Date: day(2), Value: math.NaN()},
		{Date: time.Time{}, Value: 4},
		{Date: day(3), Value: math.Inf(1)},
		{Date: day(4), Value: 2},
	}
	x := scale.NewTime(day(1), day(4), 0, 300)
	y := scale.NewLinear(1, 2, 100, 0)

	path := LinePath(points, x, y)
	require.Len(t, path.Points, 2)
	assert.Equal(t, 300.0, path.Points[1].X)
	assert.True(t, LinePath(nil, x, y).Empty())
	assert.Equal(t, "", LinePath(nil, x, y).D())
}

func TestCandles_UpCandle(t *testing.T) {
	points := []model.OHLCPoint{{Date: day(1), Open: 100, High: 110, Low: 95, Close: 105}}
	x := scale.NewTimeBand(model.CandleDates(points), 0, 100, scale.DefaultBandPadding)
	y := scale.NewLinear(95, 110, 300, 0)

	candles, regions := Candles(points, x, y, CandleOptions{UpColor: "up", DownColor: "down"})
	require.Len(t, candles, 1)
	assert.Empty(t, regions)

	c := candles[0]
	assert.Equal(t, y.Map(105), c.Top)
	assert.Equal(t, y.Map(100), c.Bottom)
	assert.Equal(t, y.Map(110), c.Wick.Y1)
	assert.Equal(t, y.Map(95), c.Wick.Y2)
	assert.Equal(t, x.Center(0), c.Wick.X1)
	assert.True(t, c.Up)
	assert.Equal(t, "up", c.Color)
	assert.InDelta(t, 0.6*x.Bandwidth(), c.Body.W, 1e-9)
	assert.InDelta(t, c.Bottom-c.Top, c.Body.H, 1e-9)
}

func TestCandles_FlatBodyAndDownColor(t *testing.T) {
	points := []model.OHLCPoint{
		{Date: day(1), Open: 100, High: 101, Low: 99, Close: 100},
		{Date: day(2), Open: 100, High: 101, Low: 95, Close: 96},
	}
	x := scale.NewTimeBand(model.CandleDates(points), 0, 200, scale.DefaultBandPadding)
	y := scale.NewLinear(95, 101, 300, 0)

	candles, _ := Candles(points, x, y, CandleOptions{UpColor: "up", DownColor: "down"})
	require.Len(t, candles, 2)
	assert.Equal(t, MinBodyHeight, candles[0].Body.H)
	assert.Equal(t, "up", candles[0].Color)
	assert.Equal(t, "down", candles[1].Color)
	assert.False(t, candles[1].Up)
}

func TestCandles_BodyBoundsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	points := make([]model.OHLCPoint, 200)
	for i := range points {
		open, c := 50+rng.Float64()*50, 50+rng.Float64()*50
		points[i] = model.OHLCPoint{
			Date:  day(1).Add(time.Duration(i) * time.Hour),
			Open:  open,
			Close: c,
			High:  math.Max(open, c) + rng.Float64()*5,
			Low:   math.Min(open, c) - rng.Float64()*5,
		}
	}
	low, high, _ := model.PriceExtent(points)
	x := scale.NewTimeBand(model.CandleDates(points), 0, 800, scale.DefaultBandPadding)
	y := scale.NewLinear(low, high, 400, 0)

	candles, _ := Candles(points, x, y, CandleOptions{})
	require.Len(t, candles, len(points))
	for _, c := range candles {
		p := points[c.Index]
		require.Equal(t, y.Map(math.Max(p.Open, p.Close)), c.Top)
		require.Equal(t, y.Map(math.Min(p.Open, p.Close)), c.Bottom)
		require.GreaterOrEqual(t, c.Body.H, MinBodyHeight)
		require.Equal(t, c.Top, c.Body.Y)
	}
}

func TestCandles_HitRegionsCoverSlots(t *testing.T) {
	points := []model.OHLCPoint{
		{Date: day(1), Open: 1, High: 2, Low: 0.5, Close: 1.5},
		{Date: day(2), Open: math.NaN(), High: 2, Low: 0.5, Close: 1.5},
		{Date: day(3), Open: 1, High: 2, Low: 0.5, Close: 1.5},
	}
	x := scale.NewTimeBand(model.CandleDates(points), 0, 300, scale.DefaultBandPadding)
	y := scale.NewLinear(0.5, 2, 200, 0)

	candles, regions := Candles(points, x, y, CandleOptions{HitRegions: true, PlotHeight: 200})
	assert.Len(t, candles, 2)
	require.Len(t, regions, 3)
	for i, r := range regions {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, float64(i)*100, r.Rect.X)
		assert.Equal(t, 100.0, r.Rect.W)
		assert.Equal(t, 200.0, r.Rect.H)
	}
	assert.True(t, regions[1].Rect.Contains(150, 10))
	assert.False(t, regions[1].Rect.Contains(200, 10))
}

func TestVolumeBars(t *testing.T) {
	points := []model.OHLCPoint{
		{Date: day(1), Open: 1, High: 2, Low: 0, Close: 2, Volume: pointer.Of(50.0)},
		{Date: day(2), Open: 2, High: 2, Low: 0, Close: 1, Volume: pointer.Of(100.0)},
		{Date: day(3), Open: 1, High: 2, Low: 0, Close: 1},
	}
	x := scale.NewTimeBand(model.CandleDates(points), 0, 300, scale.DefaultBandPadding)

	bars := VolumeBars(points, x, 500, CandleOptions{UpColor: "up", DownColor: "down"})
	require.Len(t, bars, 2)
	assert.InDelta(t, 50, bars[0].Rect.H, 1e-9)
	assert.InDelta(t, 100, bars[1].Rect.H, 1e-9)
	assert.InDelta(t, 400, bars[1].Rect.Y, 1e-9)
	assert.Equal(t, "up", bars[0].Color)
	assert.Equal(t, "down", bars[1].Color)

	assert.Nil(t, VolumeBars(points[2:], x, 500, CandleOptions{}))
}

func TestValueAxis(t *testing.T) {
	axis := ValueAxis(scale.NewLinear(0, 100, 340, 0), 5)
	require.Len(t, axis.Ticks, 6)
	assert.Equal(t, Tick{Pos: 340, Label: "0"}, axis.Ticks[0])
	assert.Equal(t, Tick{Pos: 0, Label: "100"}, axis.Ticks[5])
	assert.Equal(t, Left, axis.Orient)
}

func TestTimeAxis(t *testing.T) {
	s := scale.NewTime(day(1), day(31), 0, 800)
	axis := TimeAxis(s, LabelStyle{Count: 8, Rotation: -45, Anchor: "end"})
	require.NotEmpty(t, axis.Ticks)
	assert.Equal(t, "Jan 01", axis.Ticks[0].Label)
	assert.Equal(t, 0.0, axis.Ticks[0].Pos)
	assert.Equal(t, -45.0, axis.Rotation)
	assert.Equal(t, "end", axis.Anchor)
}

func TestBandAxis(t *testing.T) {
	keys := make([]time.Time, 20)
	for i := range keys {
		keys[i] = day(i + 1)
	}
	s := scale.NewTimeBand(keys, 0, 200, scale.DefaultBandPadding)

	axis := BandAxis(s, LabelStyle{Count: 4}, "Jan 02", [2]float64{0, 200})
	require.Len(t, axis.Ticks, 4)
	assert.Equal(t, "Jan 01", axis.Ticks[0].Label)
	assert.Equal(t, "Jan 06", axis.Ticks[1].Label)

	zoomed := BandAxis(s, LabelStyle{Count: 4}, "Jan 02", [2]float64{100, 200})
	require.NotEmpty(t, zoomed.Ticks)
	assert.Equal(t, "Jan 11", zoomed.Ticks[0].Label)

	assert.Empty(t, BandAxis(scale.NewBand(3, 0, 30, 0.2), LabelStyle{Count: 4}, "Jan 02", [2]float64{0, 30}).Ticks)
}
