package chartview

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickchart/model"
	"tickchart/render"
	"tickchart/utils/pointer"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestWriteHTML_Kline(t *testing.T) {
	kline, err := KlineChart("BTC", []model.OHLCPoint{
		{Date: day(1), Open: 1, High: 3, Low: 0.5, Close: 2},
		{Date: day(2), Open: math.NaN(), High: 3, Low: 0.5, Close: 2},
	}, render.Config{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "BTC", kline))
	out := buf.String()
	assert.Contains(t, out, "echarts")
	assert.Contains(t, out, "2024-01-01")
	assert.NotContains(t, out, "2024-01-02")
	assert.Contains(t, out, "dataZoom")
}

func TestWriteHTML_LineWithOverlay(t *testing.T) {
	cfg := render.Config{
		EnableZoom: pointer.Of(false),
		Overlays:   []render.Overlay{{Kind: "ema", Period: 2}},
	}
	line, err := LineChart("AAPL", []model.TimeValuePoint{
		{Date: day(1), Value: 1},
		{Date: day(2), Value: 2},
		{Date: day(3), Value: 3},
	}, cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "AAPL", line))
	assert.Contains(t, buf.String(), "EMA(2)")
	assert.NotContains(t, buf.String(), "NaN")
}

func TestCharts_NoData(t *testing.T) {
	_, err := LineChart("x", nil, render.Config{})
	assert.ErrorIs(t, err, ErrNoData)
	_, err = KlineChart("x", []model.OHLCPoint{{Open: 1, High: 1, Low: 1, Close: 1}}, render.Config{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLineChart_BadOverlay(t *testing.T) {
	_, err := LineChart("x", []model.TimeValuePoint{{Date: day(1), Value: 1}}, render.Config{
		Overlays: []render.Overlay{{Kind: "wma", Period: 3}},
	})
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	s := NewStore()
	now := day(10)
	s.PutLine(" aapl ", []model.TimeValuePoint{{Date: day(2), Value: 2}, {Date: day(1), Value: 1}}, now)
	s.PutCandles("btc", []model.OHLCPoint{{Date: day(1), Close: 1}}, now)

	ds, ok := s.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, "AAPL", ds.Symbol)
	assert.Equal(t, day(1), ds.Line[0].Date)

	ds.Line[0].Value = 99
	again, _ := s.Get("aapl")
	assert.Equal(t, 1.0, again.Line[0].Value)

	assert.True(t, s.Fresh("aapl", LineSeries, now.Add(time.Minute), time.Hour))
	assert.False(t, s.Fresh("aapl", LineSeries, now.Add(2*time.Hour), time.Hour))
	assert.False(t, s.Fresh("aapl", CandleSeries, now, time.Hour))
	assert.False(t, s.Fresh("eth", LineSeries, now, time.Hour))
	assert.Equal(t, []string{"AAPL", "BTC"}, s.Symbols())
}

func TestStore_FreshnessIsPerSeries(t *testing.T) {
	s := NewStore()
	t0 := day(10)
	s.PutLine("btc", []model.TimeValuePoint{{Date: day(1), Value: 1}}, t0)
	s.PutCandles("btc", []model.OHLCPoint{{Date: day(1), Close: 1}}, t0.Add(55*time.Second))

	at := t0.Add(100 * time.Second)
	assert.False(t, s.Fresh("btc", LineSeries, at, time.Minute))
	assert.True(t, s.Fresh("btc", CandleSeries, at, time.Minute))
}
