package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/StudioSol/set"

	"tickchart/chartview"
	"tickchart/datasource"
	"tickchart/interfaces"
	"tickchart/utils/log"
)

type Kind string

const (
	Line   Kind = "line"
	Candle Kind = "candle"
)

var ErrUnknownKind = errors.New("unknown series kind")

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "line":
		return Line, nil
	case "candle", "candlestick", "ohlc":
		return Candle, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

const DefaultTTL = time.Minute

// Consumer receives the dataset of a symbol after every successful load.
type Consumer func(chartview.Dataset)

type subscription struct {
	id       uint64
	consumer Consumer
}

// Feed loads history through a source into the shared store, serving cached datasets
// while they are fresh. Every (symbol, kind) ever loaded is tracked so Refresh can
// reload it.
type Feed struct {
	source interfaces.HistorySource
	store  *chartview.Store
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	feeds  *set.LinkedHashSetString // symbol--kind
	subs   map[string][]subscription
	nextID uint64
}

func New(source interfaces.HistorySource, store *chartview.Store, ttl time.Duration) *Feed {
	if store == nil {
		store = chartview.NewStore()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Feed{
		source: source,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		feeds:  set.NewLinkedHashSetString(),
		subs:   make(map[string][]subscription),
	}
}

// SetClock replaces the time source used for freshness checks.
func (f *Feed) SetClock(now func() time.Time) { f.now = now }

func (f *Feed) Store() *chartview.Store { return f.store }

func makeFeedKey(symbol string, kind Kind) string {
	return fmt.Sprintf("%s--%s", strings.ToUpper(strings.TrimSpace(symbol)), kind)
}

func splitFeedKey(key string) (string, Kind) {
	parts := strings.SplitN(key, "--", 2)
	if len(parts) != 2 {
		return key, Line
	}
	return parts[0], Kind(parts[1])
}

// Load returns the dataset of symbol with the kind populated, fetching it when the
// cached copy is missing or stale.
func (f *Feed) Load(ctx context.Context, symbol string, kind Kind) (chartview.Dataset, error) {
	if strings.TrimSpace(symbol) == "" {
		return chartview.Dataset{}, datasource.ErrEmptySymbol
	}
	f.mu.Lock()
	f.feeds.Add(makeFeedKey(symbol, kind))
	f.mu.Unlock()

	if ds, ok := f.store.Get(symbol); ok && f.store.Fresh(symbol, chartview.Series(kind), f.now(), f.ttl) && has(ds, kind) {
		return ds, nil
	}
	return f.fetch(ctx, symbol, kind)
}

func has(ds chartview.Dataset, kind Kind) bool {
	if kind == Candle {
		return ds.Candles != nil
	}
	return ds.Line != nil
}

func (f *Feed) fetch(ctx context.Context, symbol string, kind Kind) (chartview.Dataset, error) {
	switch kind {
	case Line:
		points, err := f.source.LineHistory(ctx, symbol, datasource.Query{})
		if err != nil {
			return chartview.Dataset{}, err
		}
		f.store.PutLine(symbol, points, f.now())
	case Candle:
		points, err := f.source.CandleHistory(ctx, symbol, datasource.Query{})
		if err != nil {
			return chartview.Dataset{}, err
		}
		f.store.PutCandles(symbol, points, f.now())
	default:
		return chartview.Dataset{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	ds, _ := f.store.Get(symbol)
	log.Debugf("[feed] loaded %s %s: %d line, %d candle samples", ds.Symbol, kind, len(ds.Line), len(ds.Candles))
	f.publish(ds)
	return ds, nil
}

// Subscribe registers a consumer for symbol and returns its cancel func.
func (f *Feed) Subscribe(symbol string, consumer Consumer) (cancel func()) {
	key := strings.ToUpper(strings.TrimSpace(symbol))
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs[key] = append(f.subs[key], subscription{id: id, consumer: consumer})
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subs[key]
		for i, s := range subs {
			if s.id == id {
				f.subs[key] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(f.subs[key]) == 0 {
			delete(f.subs, key)
		}
	}
}

func (f *Feed) publish(ds chartview.Dataset) {
	f.mu.Lock()
	subs := append([]subscription(nil), f.subs[ds.Symbol]...)
	f.mu.Unlock()
	for _, s := range subs {
		s.consumer(ds)
	}
}

// Refresh reloads every tracked feed. Failures are logged and joined; the rest still load.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	var keys []string
	for key := range f.feeds.Iter() {
		keys = append(keys, key)
	}
	f.mu.Unlock()

	var errs []error
	for _, key := range keys {
		symbol, kind := splitFeedKey(key)
		if _, err := f.fetch(ctx, symbol, kind); err != nil {
			log.Warnf("[feed] refresh %s failed: %v", key, err)
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Start refreshes every interval until ctx is done.
func (f *Feed) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = f.Refresh(ctx)
			}
		}
	}()
}
