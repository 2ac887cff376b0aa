package webserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"tickchart/brush"
	"tickchart/chartview"
	"tickchart/feed"
	"tickchart/host"
	"tickchart/interfaces"
	"tickchart/render"
	"tickchart/surface"
	"tickchart/tooltip"
	jsonutil "tickchart/utils/json"
	"tickchart/utils/log"
	"tickchart/utils/pointer"
)

const (
	pingInterval = 30 * time.Second
	readTimeout  = 75 * time.Second
	pollInterval = 100 * time.Millisecond
	outBuffer    = 64
)

var ErrNotOpen = errors.New("no chart is open in this session")

// ClientMessage is what the browser sends.
type ClientMessage struct {
	Type   string         `json:"type"` // open | event | config | reset
	Kind   string         `json:"kind,omitempty"`
	Symbol string         `json:"symbol,omitempty"`
	Width  float64        `json:"width,omitempty"`
	Height float64        `json:"height,omitempty"`
	Config *render.Config `json:"config,omitempty"`
	Event  *host.Event    `json:"event,omitempty"`
}

// ServerMessage is what the session pushes.
type ServerMessage struct {
	Type    string         `json:"type"` // ready | frame | tooltip | brush | error
	Session string         `json:"session,omitempty"`
	Chart   string         `json:"chart,omitempty"`
	SVG     string         `json:"svg,omitempty"`
	Tooltip *tooltip.State `json:"tooltip,omitempty"`
	Range   *brush.Range   `json:"range,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Session drives one chart for one websocket. All chart access happens on loop.
type Session struct {
	id   string
	conn *websocket.Conn
	feed *feed.Feed
	base render.Config
	log  *logrus.Entry

	loop   *host.Loop
	clock  *host.LoopClock
	target *host.Target
	out    chan ServerMessage
	done   chan struct{}
	once   sync.Once

	// loop-owned
	chart       interfaces.Chart
	kind        feed.Kind
	symbol      string
	unsubscribe func()
	lastSVG     string
	lastPasses  int
	lastTip     tooltip.State
}

func newSession(conn *websocket.Conn, f *feed.Feed, base render.Config) *Session {
	loop := host.NewLoop(256)
	s := &Session{
		id:      uuid.NewString(),
		conn:    conn,
		feed:    f,
		base:    base,
		loop:    loop,
		clock:   host.NewLoopClock(loop),
		target:  host.NewTarget(),
		out:     make(chan ServerMessage, outBuffer),
		done:    make(chan struct{}),
		lastTip: tooltip.Hidden,
	}
	s.log = log.Component("webserver").WithField("session", s.id)
	return s
}

func (s *Session) ID() string { return s.id }

// run blocks until the connection drops or ctx ends.
func (s *Session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.loop.Run(ctx)
	go s.writer()
	go s.poll(ctx)

	s.send(ServerMessage{Type: "ready", Session: s.id})
	s.reader(ctx)
	s.close()
}

func (s *Session) reader(ctx context.Context) {
	_ = s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warnf("read failed: %v", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		msg, err := jsonutil.Decode[ClientMessage](data)
		if err != nil {
			s.send(ServerMessage{Type: "error", Message: err.Error()})
			continue
		}
		if err := s.handle(ctx, msg); err != nil {
			s.send(ServerMessage{Type: "error", Message: err.Error()})
		}
	}
}

func (s *Session) writer() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case msg := <-s.out:
			if err := s.conn.WriteMessage(websocket.TextMessage, jsonutil.Encode(msg)); err != nil {
				s.log.Debugf("write failed: %v", err)
				return
			}
		case <-ping.C:
			_ = s.conn.WriteMessage(websocket.PingMessage, nil)
		case <-s.done:
			return
		}
	}
}

// poll pushes frames for passes that ran from timers, such as a debounced resize.
func (s *Session) poll(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.loop.Post(func() {
				if s.chart != nil && s.chart.Passes() != s.lastPasses {
					s.flush()
				}
			})
		}
	}
}

// send queues msg, dropping it when the client is not keeping up.
func (s *Session) send(msg ServerMessage) {
	select {
	case <-s.done:
	case s.out <- msg:
	default:
		s.log.Debugf("dropping %s message", msg.Type)
	}
}

func (s *Session) handle(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case "open":
		return s.open(ctx, msg)
	case "event":
		if msg.Event == nil {
			return errors.New("event message without event")
		}
		e := *msg.Event
		return s.onLoop(func() error {
			if s.chart == nil {
				return ErrNotOpen
			}
			s.target.Dispatch(e)
			s.flush()
			return nil
		})
	case "config":
		if msg.Config == nil {
			return errors.New("config message without config")
		}
		cfg := s.config(*msg.Config)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return s.onLoop(func() error {
			if s.chart == nil {
				return ErrNotOpen
			}
			s.chart.SetConfig(cfg)
			s.flush()
			return nil
		})
	case "reset":
		return s.onLoop(func() error {
			if s.chart == nil {
				return ErrNotOpen
			}
			s.chart.ResetZoom()
			s.flush()
			return nil
		})
	}
	return fmt.Errorf("unknown message type %q", msg.Type)
}

// onLoop runs fn on the session loop and waits for its result.
func (s *Session) onLoop(fn func() error) error {
	var err error
	if callErr := s.loop.Call(func() { err = fn() }); callErr != nil {
		return callErr
	}
	return err
}

// config layers the client options over the server defaults and hooks the brush callback.
func (s *Session) config(client render.Config) render.Config {
	cfg := s.base
	if client.Width != nil {
		cfg.Width = client.Width
	}
	if client.Height != nil {
		cfg.Height = client.Height
	}
	if client.Margins != nil {
		cfg.Margins = client.Margins
	}
	if client.UpColor != nil {
		cfg.UpColor = client.UpColor
	}
	if client.DownColor != nil {
		cfg.DownColor = client.DownColor
	}
	if client.LineColor != nil {
		cfg.LineColor = client.LineColor
	}
	if client.StrokeWidth != nil {
		cfg.StrokeWidth = client.StrokeWidth
	}
	if client.EnableZoom != nil {
		cfg.EnableZoom = client.EnableZoom
	}
	if client.EnableTooltip != nil {
		cfg.EnableTooltip = client.EnableTooltip
	}
	if client.EnableBrush != nil {
		cfg.EnableBrush = client.EnableBrush
	}
	if client.MinScale != nil {
		cfg.MinScale = client.MinScale
	}
	if client.MaxScale != nil {
		cfg.MaxScale = client.MaxScale
	}
	if client.Overlays != nil {
		cfg.Overlays = client.Overlays
	}
	cfg.OnBrushSelection = func(r *brush.Range) {
		s.send(ServerMessage{Type: "brush", Range: r})
	}
	return cfg
}

func (s *Session) open(ctx context.Context, msg ClientMessage) error {
	kind, err := feed.ParseKind(msg.Kind)
	if err != nil {
		return err
	}
	var client render.Config
	if msg.Config != nil {
		client = *msg.Config
	}
	if msg.Width > 0 {
		client.Width = pointer.Of(msg.Width)
	}
	if msg.Height > 0 {
		client.Height = pointer.Of(msg.Height)
	}
	cfg := s.config(client)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// network I/O stays off the loop
	ds, err := s.feed.Load(ctx, msg.Symbol, kind)
	if err != nil {
		return err
	}
	return s.onLoop(func() error {
		s.teardown()
		surf := surface.New(0, 0)
		switch kind {
		case feed.Candle:
			c := render.NewCandlestickChart(s.target, surf, s.clock, cfg)
			c.SetData(ds.Candles)
			s.chart = c
		default:
			c := render.NewLineChart(s.target, surf, s.clock, cfg)
			c.SetData(ds.Line)
			s.chart = c
		}
		s.kind, s.symbol = kind, ds.Symbol
		s.unsubscribe = s.feed.Subscribe(ds.Symbol, func(update chartview.Dataset) {
			s.loop.Post(func() { s.update(update) })
		})
		s.log.Infof("opened %s chart for %s", kind, ds.Symbol)
		s.send(ServerMessage{Type: "ready", Session: s.id, Chart: s.chart.ID()})
		s.flush()
		return nil
	})
}

// update applies refreshed history to the open chart.
func (s *Session) update(ds chartview.Dataset) {
	switch c := s.chart.(type) {
	case *render.LineChart:
		if s.kind == feed.Line && ds.Line != nil {
			c.SetData(ds.Line)
		}
	case *render.CandlestickChart:
		if s.kind == feed.Candle && ds.Candles != nil {
			c.SetData(ds.Candles)
		}
	default:
		return
	}
	s.flush()
}

// flush pushes the tooltip when it changed and the frame when the drawing changed.
func (s *Session) flush() {
	if s.chart == nil {
		return
	}
	tip := s.chart.Tooltip()
	if tip.Visible != s.lastTip.Visible || tip.Index != s.lastTip.Index {
		s.lastTip = tip
		s.send(ServerMessage{Type: "tooltip", Tooltip: &tip})
	}

	s.lastPasses = s.chart.Passes()
	out, err := s.chart.Surface().SVG()
	if err != nil {
		if !errors.Is(err, surface.ErrEmptySurface) {
			s.log.WithError(err).Warn("frame render failed")
		}
		return
	}
	if svg := string(out); svg != s.lastSVG {
		s.lastSVG = svg
		s.send(ServerMessage{Type: "frame", Chart: s.chart.ID(), SVG: svg})
	}
}

func (s *Session) teardown() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.chart != nil {
		s.chart.Close()
		s.chart = nil
	}
	s.lastSVG, s.lastPasses, s.lastTip = "", 0, tooltip.Hidden
}

func (s *Session) close() {
	s.once.Do(func() {
		_ = s.loop.Call(s.teardown)
		s.loop.Stop()
		close(s.done)
		_ = s.conn.Close()
		s.log.Debug("session closed")
	})
}
