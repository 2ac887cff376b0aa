package resty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

var ErrMockNotFound = errors.New("mock not found for the requested method and url")

type MockFuncResponse struct {
	StatusCode int
	Header     http.Header
	// Body is marshalled to JSON unless it is already a []byte.
	Body any
}

type MockFunc struct {
	Method     string
	Path       string
	ResultBody func(header map[string]string, requestBody any, param ...QueryParam) (MockFuncResponse, error)
}

type mockRestyClient struct {
	mocks map[string]map[string]MockFunc
}

type mockReadyRestyReq struct {
	mocks  map[string]map[string]MockFunc
	body   any
	header map[string]string
}

func (client *mockRestyClient) MakeRequest(_ context.Context, body any, header map[string]string) ReadyRestyReq {
	return &mockReadyRestyReq{mocks: client.mocks, header: header, body: body}
}

func (m *mockReadyRestyReq) Get(url string, queryParams ...QueryParam) (*resty.Response, error) {
	return m.serve(http.MethodGet, url, queryParams)
}

func (m *mockReadyRestyReq) Post(url string, queryParams ...QueryParam) (*resty.Response, error) {
	return m.serve(http.MethodPost, url, queryParams)
}

func (m *mockReadyRestyReq) serve(method, url string, queryParams []QueryParam) (*resty.Response, error) {
	mockFunc, ok := m.mocks[method][url]
	if !ok {
		return nil, ErrMockNotFound
	}
	result, givenErr := mockFunc.ResultBody(m.header, m.body, queryParams...)
	resp, err := CreateMockResponse(result, givenErr)
	if err != nil {
		return nil, err
	}
	return resp, givenErr
}

func CreateMockResponse(given MockFuncResponse, givenErr error) (*resty.Response, error) {
	var body []byte
	switch b := given.Body.(type) {
	case []byte:
		body = b
	case nil:
	default:
		var err error
		if body, err = json.Marshal(b); err != nil {
			return nil, err
		}
	}

	status := given.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	request := &resty.Request{Error: givenErr}
	resp := &resty.Response{
		Request: request,
		RawResponse: &http.Response{
			Status:     http.StatusText(status),
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewReader(body)),
			Header:     given.Header,
		},
	}
	resp.SetBody(body)
	return resp, nil
}
