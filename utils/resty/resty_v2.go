package resty

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient builds requests against a configured client. The mock variant answers
// from registered handlers instead of the network.
type RestyClient interface {
	MakeRequest(ctx context.Context, body any, header map[string]string) ReadyRestyReq
}

type ReadyRestyReq interface {
	Get(url string, queryParams ...QueryParam) (*resty.Response, error)
	Post(url string, queryParams ...QueryParam) (*resty.Response, error)
}

type QueryParam struct {
	Key   string
	Value any
}

// Options tune the network client. Zero values take the defaults.
type Options struct {
	Trace      bool
	RetryCount int
	Timeout    time.Duration
	RetryWait  time.Duration
}

func NewDefaultRestyClient(opts Options) RestyClient {
	client := &defaultRestyClient{}
	client.setupClient(opts)
	return client
}

func NewMockRestyClient(mockFuncs []MockFunc) RestyClient {
	mocks := make(map[string]map[string]MockFunc)
	for _, mockFunc := range mockFuncs {
		if _, ok := mocks[mockFunc.Method]; !ok {
			mocks[mockFunc.Method] = make(map[string]MockFunc)
		}
		mocks[mockFunc.Method][mockFunc.Path] = mockFunc
	}
	return &mockRestyClient{mocks: mocks}
}
