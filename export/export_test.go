package export

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickchart/model"
	"tickchart/utils/pointer"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestWriteLineCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLineCSV(&buf, []model.TimeValuePoint{
		{Date: day(1), Value: 100.5},
		{Date: day(2), Value: math.NaN()},
	}))
	assert.Equal(t, "date,value\n2024-01-01T00:00:00Z,100.5\n2024-01-02T00:00:00Z,\n", buf.String())
}

func TestWriteCandleCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCandleCSV(&buf, []model.OHLCPoint{
		{Date: day(1), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: pointer.Of(300.0)},
		{Date: day(2), Open: 1.5, High: 2, Low: 1, Close: 1},
	}))
	assert.Equal(t, "date,open,high,low,close,volume\n"+
		"2024-01-01T00:00:00Z,1,2,0.5,1.5,300\n"+
		"2024-01-02T00:00:00Z,1.5,2,1,1,\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	doc := Document{Symbol: "AAPL", ExportedAt: day(5), Line: []model.TimeValuePoint{{Date: day(1), Value: math.NaN()}}}
	require.NoError(t, Write(&buf, JSON, doc))

	var back Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "AAPL", back.Symbol)
	require.Len(t, back.Line, 1)
	assert.True(t, math.IsNaN(back.Line[0].Value))
	assert.Nil(t, back.Candles)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", f.ContentType())

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorIs(t, Write(&bytes.Buffer{}, Format("xml"), Document{}), ErrUnknownFormat)
}
