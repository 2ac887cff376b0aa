package mocks

import (
	"context"
	"strings"
	"sync"

	"tickchart/datasource"
	"tickchart/model"
)

// MockSource serves history from memory and records how often it was asked.
type MockSource struct {
	mu      sync.Mutex
	Lines   map[string][]model.TimeValuePoint
	Candles map[string][]model.OHLCPoint
	// Err, when set, is returned by every call.
	Err error

	LineCalls   int
	CandleCalls int
}

func NewMockSource() *MockSource {
	return &MockSource{
		Lines:   make(map[string][]model.TimeValuePoint),
		Candles: make(map[string][]model.OHLCPoint),
	}
}

func (m *MockSource) SetLine(symbol string, points []model.TimeValuePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lines[strings.ToUpper(symbol)] = points
}

func (m *MockSource) SetCandles(symbol string, points []model.OHLCPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Candles[strings.ToUpper(symbol)] = points
}

func (m *MockSource) LineHistory(_ context.Context, symbol string, _ datasource.Query) ([]model.TimeValuePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LineCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if strings.TrimSpace(symbol) == "" {
		return nil, datasource.ErrEmptySymbol
	}
	return append([]model.TimeValuePoint(nil), m.Lines[strings.ToUpper(symbol)]...), nil
}

func (m *MockSource) CandleHistory(_ context.Context, symbol string, _ datasource.Query) ([]model.OHLCPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandleCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if strings.TrimSpace(symbol) == "" {
		return nil, datasource.ErrEmptySymbol
	}
	return append([]model.OHLCPoint(nil), m.Candles[strings.ToUpper(symbol)]...), nil
}

func (m *MockSource) Calls() (line, candle int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LineCalls, m.CandleCalls
}
