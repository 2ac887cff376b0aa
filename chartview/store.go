package chartview

import (
	"sort"
	"strings"
	"sync"
	"time"

	"tickchart/model"
)

// Dataset is the cached history of one symbol.
type Dataset struct {
	Symbol    string
	Line      []model.TimeValuePoint
	Candles   []model.OHLCPoint
	LineAt    time.Time
	CandlesAt time.Time
}

// Series names one of the two histories a Dataset holds.
type Series string

const (
	LineSeries   Series = "line"
	CandleSeries Series = "candle"
)

// Store caches datasets by symbol. It is safe for concurrent use; the servers share one.
type Store struct {
	mu   sync.RWMutex
	sets map[string]Dataset
}

func NewStore() *Store {
	return &Store{sets: make(map[string]Dataset)}
}

func key(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// PutLine replaces the line series of symbol, sorted by date.
func (s *Store) PutLine(symbol string, points []model.TimeValuePoint, at time.Time) {
	out := make([]model.TimeValuePoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	s.mu.Lock()
	defer s.mu.Unlock()
	ds := s.sets[key(symbol)]
	ds.Symbol, ds.Line, ds.LineAt = key(symbol), out, at
	s.sets[key(symbol)] = ds
}

func (s *Store) PutCandles(symbol string, points []model.OHLCPoint, at time.Time) {
	out := make([]model.OHLCPoint, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	s.mu.Lock()
	defer s.mu.Unlock()
	ds := s.sets[key(symbol)]
	ds.Symbol, ds.Candles, ds.CandlesAt = key(symbol), out, at
	s.sets[key(symbol)] = ds
}

// Get returns a copy of the dataset of symbol. A kind that was never stored is nil.
func (s *Store) Get(symbol string) (Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.sets[key(symbol)]
	if !ok {
		return Dataset{}, false
	}
	if ds.Line != nil {
		ds.Line = append(make([]model.TimeValuePoint, 0, len(ds.Line)), ds.Line...)
	}
	if ds.Candles != nil {
		ds.Candles = append(make([]model.OHLCPoint, 0, len(ds.Candles)), ds.Candles...)
	}
	return ds, true
}

// Fresh reports whether the given series of symbol was stored within ttl of now.
// A series that was never stored is not fresh.
func (s *Store) Fresh(symbol string, series Series, now time.Time, ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.sets[key(symbol)]
	if !ok {
		return false
	}
	at := ds.LineAt
	if series == CandleSeries {
		at = ds.CandlesAt
	}
	return !at.IsZero() && now.Sub(at) < ttl
}

func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sets))
	for k := range s.sets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
