package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickchart/model"
)

func assertSeries(t *testing.T, want []float64, got model.Series[float64]) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

func TestCompute_SMA(t *testing.T) {
	got, err := Compute(SMA, 3, []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	nan := math.NaN()
	assertSeries(t, []float64{nan, nan, 2, 3, 4}, got)
}

func TestCompute_EMA(t *testing.T) {
	got, err := Compute(EMA, 2, []float64{5, 5, 5, 5})
	require.NoError(t, err)
	nan := math.NaN()
	assertSeries(t, []float64{nan, 5, 5, 5}, got)
}

func TestCompute_GapRestartsWarmup(t *testing.T) {
	nan := math.NaN()
	got, err := Compute(SMA, 2, []float64{1, 2, nan, 4, 5, 6})
	require.NoError(t, err)
	assertSeries(t, []float64{nan, 1.5, nan, nan, 4.5, 5.5}, got)
}

func TestCompute_ShortInputAndErrors(t *testing.T) {
	got, err := Compute(EMA, 10, []float64{1, 2})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got[0]) && math.IsNaN(got[1]))

	_, err = Compute(SMA, 0, []float64{1})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = Compute("wma", 3, []float64{1})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" EMA ")
	require.NoError(t, err)
	assert.Equal(t, EMA, k)
	_, err = ParseKind("rsi")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestOverlay_Points(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var points []model.TimeValuePoint
	for i := 0; i < 4; i++ {
		points = append(points, model.TimeValuePoint{Date: start.AddDate(0, 0, i), Value: float64(i + 1)})
	}
	m, err := Overlay(SMA, 2, "#f59e0b", points)
	require.NoError(t, err)
	assert.Equal(t, "SMA(2)", m.Name)
	assert.Equal(t, 1, m.Warmup)

	out := m.Points(points)
	require.Len(t, out, 4)
	assert.False(t, out[0].Finite())
	assert.Equal(t, points[3].Date, out[3].Date)
	assert.InDelta(t, 3.5, out[3].Value, 1e-9)
}
