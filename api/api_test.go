package api

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickchart/chartview"
	"tickchart/feed"
	"tickchart/mocks"
	"tickchart/model"
	"tickchart/render"
	"tickchart/utils/fiberhelper/response"
	jsonutil "tickchart/utils/json"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func newServer(t *testing.T) (*Server, *mocks.MockSource) {
	t.Helper()
	source := mocks.NewMockSource()
	source.SetLine("AAPL", []model.TimeValuePoint{
		{Date: day(1), Value: 10},
		{Date: day(2), Value: 20},
		{Date: day(3), Value: 15},
	})
	vol := 1200.0
	source.SetCandles("AAPL", []model.OHLCPoint{
		{Date: day(1), Open: 10, High: 12, Low: 9, Close: 11, Volume: &vol},
		{Date: day(2), Open: 11, High: 13, Low: 10, Close: 10},
	})
	s := New(feed.New(source, chartview.NewStore(), time.Minute), render.Config{})
	s.now = func() time.Time { return day(10) }
	return s, source
}

func do(t *testing.T, s *Server, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
}

func TestChart_SVG(t *testing.T) {
	s, _ := newServer(t)
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/charts/line/aapl.svg?width=640&height=320", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, `viewBox="0 0 640 300"`)
}

func TestChart_CandlestickPNG(t *testing.T) {
	s, _ := newServer(t)
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/charts/candlestick/AAPL.png", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))
}

func TestChart_BadRequests(t *testing.T) {
	s, _ := newServer(t)
	for _, path := range []string{
		"/api/charts/pie/AAPL.svg",
		"/api/charts/line/AAPL.gif",
		"/api/charts/line/AAPL.svg?overlays=sma",
		"/api/charts/line/AAPL.svg?overlays=wma:3",
		"/api/charts/line/AAPL.svg?width=10000",
	} {
		resp, body := do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		errResp, err := jsonutil.Decode[response.ErrorResponse]([]byte(body))
		require.NoError(t, err, path)
		assert.Equal(t, "400", errResp.Code, path)
	}
}

func TestChart_UpstreamFailure(t *testing.T) {
	s, source := newServer(t)
	source.Err = errors.New("boom")
	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/charts/line/MSFT.svg", nil))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, response.InternalError)
	assert.NotContains(t, body, "boom")
}

func TestRender_PostedPoints(t *testing.T) {
	s, source := newServer(t)
	body := `{"config":{"lineColor":"#ff0000"},"points":[{"date":"2024-01-01","value":1},{"date":1704153600000,"value":null},{"date":"2024-01-03","value":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/render/line", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, out := do(t, s, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, out)
	assert.Contains(t, out, "rgba(255,0,0,")
	line, candle := source.Calls()
	assert.Zero(t, line+candle)
}

func TestRender_EmptyPointsDrawsPlaceholder(t *testing.T) {
	s, _ := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/render/candle", strings.NewReader(`{"points":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, out := do(t, s, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, out)
	assert.Contains(t, out, render.PlaceholderText)
}

func TestRender_InvalidBody(t *testing.T) {
	s, _ := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/render/line", strings.NewReader(`{"points":[{"date":"someday"}]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/render/line", strings.NewReader(`{"points":[],"config":{"width":-1}}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRender_ZeroPlotIsUnprocessable(t *testing.T) {
	s, _ := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/render/line",
		strings.NewReader(`{"config":{"width":0},"points":[{"date":"2024-01-01","value":1}]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := do(t, s, req)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExport(t *testing.T) {
	s, _ := newServer(t)

	resp, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/export/AAPL.csv", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="aapl.csv"`)
	assert.True(t, strings.HasPrefix(body, "date,value\n2024-01-01T00:00:00Z,10\n"))

	resp, body = do(t, s, httptest.NewRequest(http.MethodGet, "/api/export/AAPL.json?kind=ohlc", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"exportedAt": "2024-01-10T00:00:00Z"`)
	assert.Contains(t, body, `"volume": 1200`)

	resp, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/export/AAPL.xml", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseOverlays(t *testing.T) {
	got, err := ParseOverlays("SMA:20, ema:50,")
	require.NoError(t, err)
	assert.Equal(t, []render.Overlay{{Kind: "sma", Period: 20}, {Kind: "ema", Period: 50}}, got)

	_, err = ParseOverlays("sma:x")
	assert.Error(t, err)
}
