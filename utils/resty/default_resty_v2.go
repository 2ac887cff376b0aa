package resty

import (
	"context"
	"fmt"
	"net"
	"net/http"
	urlTool "net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultRetryWait    = 500 * time.Millisecond
	defaultRetryMaxWait = 5 * time.Second
)

type defaultRestyClient struct {
	restyClient *resty.Client
}

func (client *defaultRestyClient) MakeRequest(ctx context.Context, body any, header map[string]string) ReadyRestyReq {
	request := client.restyClient.R().SetContext(ctx)
	if body != nil {
		request.SetBody(body)
	}
	request.SetHeader("Content-Type", "application/json")
	request.SetHeader("Accept", "application/json")
	if header != nil {
		request.SetHeaders(header)
	}
	return &defaultReadyRestyReq{request: request}
}

func (client *defaultRestyClient) setupClient(opts Options) {
	restyClient := resty.New()
	restyClient.SetRetryCount(opts.RetryCount)
	restyClient.SetTimeout(defaultTimeout)
	if opts.Timeout > 0 {
		restyClient.SetTimeout(opts.Timeout)
	}
	restyClient.SetRetryWaitTime(defaultRetryWait)
	if opts.RetryWait > 0 {
		restyClient.SetRetryWaitTime(opts.RetryWait)
	}
	restyClient.SetRetryMaxWaitTime(defaultRetryMaxWait)
	restyClient.AddRetryCondition(func(response *resty.Response, err error) bool {
		return err != nil || response.StatusCode() >= http.StatusInternalServerError
	})

	transport := &http.Transport{
		DialContext:         (&net.Dialer{}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
	}
	restyClient.SetTransport(transport)
	if opts.Trace {
		restyClient.EnableTrace()
	}
	client.restyClient = restyClient
}

type defaultReadyRestyReq struct {
	request *resty.Request
}

func makeURL(url string, queryParams ...QueryParam) string {
	if len(queryParams) == 0 {
		return url
	}
	values := urlTool.Values{}
	for _, query := range queryParams {
		values.Add(query.Key, fmt.Sprintf("%v", query.Value))
	}
	return url + "?" + values.Encode()
}

func (req *defaultReadyRestyReq) Get(url string, queryParams ...QueryParam) (*resty.Response, error) {
	return req.request.Get(makeURL(url, queryParams...))
}

func (req *defaultReadyRestyReq) Post(url string, queryParams ...QueryParam) (*resty.Response, error) {
	return req.request.Post(makeURL(url, queryParams...))
}
