package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"tickchart/api"
	"tickchart/chartview"
	"tickchart/config"
	"tickchart/datasource"
	"tickchart/feed"
	"tickchart/interfaces"
	fiberhelpers "tickchart/utils/fiberhelper"
	"tickchart/utils/log"
	"tickchart/utils/resty"
	"tickchart/webserver"
)

// TickChart wires the history feed to the HTTP API and the websocket sessions.
type TickChart struct {
	cfg  *config.Config
	feed *feed.Feed
	api  *api.Server
	ws   *webserver.WebServer

	cancel context.CancelFunc
	wg     sync.WaitGroup
	errMu  sync.Mutex
	errs   []error
}

// NewTickChart builds the services from cfg. source may be nil, in which case a
// datasource.Client for cfg.Source is used.
func NewTickChart(cfg *config.Config, source interfaces.HistorySource) (*TickChart, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := log.SetLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	ttl, _ := cfg.Source.CacheDuration()
	if ttl == 0 {
		ttl = feed.DefaultTTL
	}
	if source == nil {
		timeout, _ := cfg.Source.TimeoutDuration()
		rc := resty.NewDefaultRestyClient(resty.Options{RetryCount: cfg.Source.RetryCount, Timeout: timeout})
		source = datasource.NewClient(cfg.Source.BaseURL, rc)
	}

	f := feed.New(source, chartview.NewStore(), ttl)
	return &TickChart{
		cfg:  cfg,
		feed: f,
		api:  api.New(f, cfg.Chart),
		ws:   webserver.NewWebServer(f, cfg.Chart),
	}, nil
}

func (t *TickChart) Feed() *feed.Feed { return t.feed }

// Preload fetches the configured symbols so the first requests hit the cache.
func (t *TickChart) Preload(ctx context.Context) error {
	var errs []error
	for _, entry := range t.cfg.Source.Preload {
		symbol, kindName, _ := strings.Cut(entry, ":")
		kind := feed.Line
		if kindName != "" {
			k, err := feed.ParseKind(kindName)
			if err != nil {
				errs = append(errs, fmt.Errorf("preload %q: %w", entry, err))
				continue
			}
			kind = k
		}
		ds, err := t.feed.Load(ctx, symbol, kind)
		if err != nil {
			log.Warnf("[Preload] %s failed: %v", entry, err)
			errs = append(errs, fmt.Errorf("preload %q: %w", entry, err))
			continue
		}
		log.Infof("[Preload] loaded %s %s", ds.Symbol, kind)
	}
	return errors.Join(errs...)
}

// Start launches the refresh loop and both servers.
func (t *TickChart) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	log.Infof("tickchart starting...")

	if interval, _ := t.cfg.Source.RefreshDuration(); interval > 0 {
		t.feed.Start(ctx, interval)
	}

	t.run(func() error {
		return fiberhelpers.ListenWithGracefulShutdown(ctx, t.api.App(), t.cfg.Server.Addr)
	})
	t.run(func() error {
		return t.ws.Run(ctx, t.cfg.Server.WSAddr)
	})
	log.Infof("tickchart started. api on %s, sessions on %s", t.cfg.Server.Addr, t.cfg.Server.WSAddr)
}

func (t *TickChart) run(fn func() error) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := fn(); err != nil {
			log.Errorf("server stopped: %v", err)
			t.errMu.Lock()
			t.errs = append(t.errs, err)
			t.errMu.Unlock()
			t.cancel()
		}
	}()
}

// Wait blocks until both servers have stopped and returns their errors.
func (t *TickChart) Wait() error {
	t.wg.Wait()
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return errors.Join(t.errs...)
}

// Stop shuts everything down and waits for it.
func (t *TickChart) Stop() error {
	log.Infof("tickchart stopping...")
	if t.cancel != nil {
		t.cancel()
	}
	err := t.Wait()
	log.Infof("tickchart stopped.")
	return err
}
