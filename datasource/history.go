package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tickchart/model"
	"tickchart/utils/log"
	"tickchart/utils/resty"
)

var (
	ErrEmptySymbol = errors.New("symbol is empty")
	ErrUpstream    = errors.New("history backend error")
)

const (
	DefaultRetryCount = 2
	DefaultTimeout    = 10 * time.Second
)

// Query narrows a history request. Zero fields are left out of the query string.
type Query struct {
	From     time.Time
	To       time.Time
	Interval string
}

func (q Query) params() []resty.QueryParam {
	var params []resty.QueryParam
	if !q.From.IsZero() {
		params = append(params, resty.QueryParam{Key: "from", Value: q.From.UTC().Format(time.RFC3339)})
	}
	if !q.To.IsZero() {
		params = append(params, resty.QueryParam{Key: "to", Value: q.To.UTC().Format(time.RFC3339)})
	}
	if q.Interval != "" {
		params = append(params, resty.QueryParam{Key: "interval", Value: q.Interval})
	}
	return params
}

type lineResponse struct {
	Symbol string                 `json:"symbol"`
	Points []model.TimeValuePoint `json:"points"`
}

type candleResponse struct {
	Symbol string            `json:"symbol"`
	Points []model.OHLCPoint `json:"points"`
}

// Client reads price history from the dashboard backend:
//
//	GET {base}/history/{symbol}?kind=line|ohlc
type Client struct {
	baseURL string
	resty   resty.RestyClient
	log     *logrus.Entry
}

// NewClient uses rc when given, otherwise a network client that retries 5xx answers.
func NewClient(baseURL string, rc resty.RestyClient) *Client {
	if rc == nil {
		rc = resty.NewDefaultRestyClient(resty.Options{RetryCount: DefaultRetryCount, Timeout: DefaultTimeout})
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		resty:   rc,
		log:     log.Component("datasource"),
	}
}

// HistoryURL returns the request path for symbol, without the query string.
func (c *Client) HistoryURL(symbol string) string {
	return c.baseURL + "/history/" + url.PathEscape(symbol)
}

func (c *Client) LineHistory(ctx context.Context, symbol string, q Query) ([]model.TimeValuePoint, error) {
	var resp lineResponse
	if err := c.fetch(ctx, symbol, "line", q, &resp); err != nil {
		return nil, err
	}
	return resp.Points, nil
}

func (c *Client) CandleHistory(ctx context.Context, symbol string, q Query) ([]model.OHLCPoint, error) {
	var resp candleResponse
	if err := c.fetch(ctx, symbol, "ohlc", q, &resp); err != nil {
		return nil, err
	}
	return resp.Points, nil
}

func (c *Client) fetch(ctx context.Context, symbol, kind string, q Query, out any) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return ErrEmptySymbol
	}
	params := append([]resty.QueryParam{{Key: "kind", Value: kind}}, q.params()...)
	full := c.HistoryURL(symbol)

	resp, err := c.resty.MakeRequest(ctx, nil, nil).Get(full, params...)
	if err != nil {
		return fmt.Errorf("fetch %s history: %w", symbol, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: %d %s", ErrUpstream, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s history: %w", symbol, err)
	}
	c.log.WithFields(logrus.Fields{"symbol": symbol, "kind": kind}).Debug("history fetched")
	return nil
}
