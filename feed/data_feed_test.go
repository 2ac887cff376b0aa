package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickchart/chartview"
	"tickchart/datasource"
	"tickchart/mocks"
	"tickchart/model"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestFeed_CachesWhileFresh(t *testing.T) {
	src := mocks.NewMockSource()
	src.SetLine("AAPL", []model.TimeValuePoint{{Date: day(2), Value: 2}, {Date: day(1), Value: 1}})
	f := New(src, nil, time.Minute)
	now := day(10)
	f.SetClock(func() time.Time { return now })

	ds, err := f.Load(context.Background(), "aapl", Line)
	require.NoError(t, err)
	require.Len(t, ds.Line, 2)
	assert.Equal(t, day(1), ds.Line[0].Date)

	_, err = f.Load(context.Background(), "AAPL", Line)
	require.NoError(t, err)
	lines, candles := src.Calls()
	assert.Equal(t, 1, lines)
	assert.Zero(t, candles)

	now = now.Add(2 * time.Minute)
	_, err = f.Load(context.Background(), "AAPL", Line)
	require.NoError(t, err)
	lines, _ = src.Calls()
	assert.Equal(t, 2, lines)
}

func TestFeed_CandleWriteDoesNotRefreshLine(t *testing.T) {
	src := mocks.NewMockSource()
	src.SetLine("BTC", []model.TimeValuePoint{{Date: day(1), Value: 1}})
	src.SetCandles("BTC", []model.OHLCPoint{{Date: day(1), Close: 1}})
	f := New(src, nil, time.Minute)
	t0 := day(10)
	now := t0
	f.SetClock(func() time.Time { return now })

	_, err := f.Load(context.Background(), "BTC", Line)
	require.NoError(t, err)
	now = t0.Add(55 * time.Second)
	_, err = f.Load(context.Background(), "BTC", Candle)
	require.NoError(t, err)

	now = t0.Add(100 * time.Second)
	_, err = f.Load(context.Background(), "BTC", Line)
	require.NoError(t, err)
	_, err = f.Load(context.Background(), "BTC", Candle)
	require.NoError(t, err)

	lines, candles := src.Calls()
	assert.Equal(t, 2, lines)
	assert.Equal(t, 1, candles)
}

func TestFeed_EmptyHistoryIsCached(t *testing.T) {
	src := mocks.NewMockSource()
	f := New(src, chartview.NewStore(), time.Minute)

	for i := 0; i < 3; i++ {
		ds, err := f.Load(context.Background(), "EMPTY", Candle)
		require.NoError(t, err)
		assert.Empty(t, ds.Candles)
	}
	_, candles := src.Calls()
	assert.Equal(t, 1, candles)
}

func TestFeed_SubscribeAndRefresh(t *testing.T) {
	src := mocks.NewMockSource()
	src.SetCandles("BTC", []model.OHLCPoint{{Date: day(1), Open: 1, High: 2, Low: 0, Close: 1}})
	f := New(src, nil, time.Hour)

	var got []chartview.Dataset
	cancel := f.Subscribe("btc", func(ds chartview.Dataset) { got = append(got, ds) })

	_, err := f.Load(context.Background(), "BTC", Candle)
	require.NoError(t, err)
	require.NoError(t, f.Refresh(context.Background()))
	require.Len(t, got, 2)
	assert.Equal(t, "BTC", got[1].Symbol)

	cancel()
	require.NoError(t, f.Refresh(context.Background()))
	assert.Len(t, got, 2)
}

func TestFeed_Errors(t *testing.T) {
	src := mocks.NewMockSource()
	f := New(src, nil, time.Hour)

	_, err := f.Load(context.Background(), " ", Line)
	assert.ErrorIs(t, err, datasource.ErrEmptySymbol)

	_, err = f.Load(context.Background(), "X", Kind("bars"))
	assert.ErrorIs(t, err, ErrUnknownKind)

	boom := errors.New("backend down")
	src.Err = boom
	_, err = f.Load(context.Background(), "AAPL", Line)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, f.Refresh(context.Background()), boom)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"line": Line, "candlestick": Candle, "OHLC": Candle} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseKind("area")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
