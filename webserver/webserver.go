package webserver

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"tickchart/feed"
	"tickchart/render"
	"tickchart/utils/log"
)

// WebServer hosts interactive chart sessions over websockets. Each connection owns one
// chart running on its own loop.
type WebServer struct {
	feed     *feed.Feed
	base     render.Config
	upgrader websocket.Upgrader
	log      *logrus.Entry

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewWebServer(f *feed.Feed, base render.Config) *WebServer {
	return &WebServer{
		feed: f,
		base: base,
		upgrader: websocket.Upgrader{
			CheckOrigin:       func(*http.Request) bool { return true },
			EnableCompression: true,
		},
		log:      log.Component("webserver"),
		sessions: make(map[string]*Session),
	}
}

func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.wsHandler)
	mux.HandleFunc("/", ws.pageHandler)
	return mux
}

// Sessions returns the number of connected sessions.
func (ws *WebServer) Sessions() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.sessions)
}

func (ws *WebServer) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.Warnf("upgrade failed: %v", err)
		return
	}
	s := newSession(conn, ws.feed, ws.base)
	ws.mu.Lock()
	ws.sessions[s.ID()] = s
	ws.mu.Unlock()
	ws.log.WithField("session", s.ID()).Info("session connected")

	s.run(context.Background())

	ws.mu.Lock()
	delete(ws.sessions, s.ID())
	ws.mu.Unlock()
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (ws *WebServer) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: ws.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		ws.log.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ws.mu.Lock()
	for _, s := range ws.sessions {
		go s.close()
	}
	ws.mu.Unlock()
	if err := srv.Shutdown(shutdown); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ws *WebServer) pageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

const page = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <title>tickchart</title>
  <style>body{font-family:sans-serif;margin:16px} #chart{border:1px solid #e5e7eb;display:inline-block}</style>
</head>
<body>
  <form id="open">
    <input name="symbol" value="AAPL" />
    <select name="kind"><option>line</option><option>candlestick</option></select>
    <label><input type="checkbox" name="brush" /> brush</label>
    <button>open</button> <button type="button" id="reset">reset zoom</button>
  </form>
  <div id="chart"></div>
  <pre id="status"></pre>
  <script>
    const chart = document.getElementById('chart');
    const status = document.getElementById('status');
    const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
    const send = (m) => ws.readyState === 1 && ws.send(JSON.stringify(m));
    const local = (ev) => { const r = chart.getBoundingClientRect(); return {x: ev.clientX - r.left, y: ev.clientY - r.top}; };
    const forward = (type, ev, extra) => send({type: 'event', event: Object.assign({type: type}, local(ev), extra || {})});

    ws.onmessage = (ev) => {
      const m = JSON.parse(ev.data);
      if (m.type === 'frame') chart.innerHTML = m.svg;
      if (m.type === 'brush') status.textContent = m.range ? 'selected ' + m.range.start + ' .. ' + m.range.end : 'selection cleared';
      if (m.type === 'error') status.textContent = 'error: ' + m.message;
    };
    document.getElementById('open').onsubmit = (ev) => {
      ev.preventDefault();
      const f = new FormData(ev.target);
      send({type: 'open', symbol: f.get('symbol'), kind: f.get('kind'), width: window.innerWidth - 48, height: 420,
            config: {enableBrush: f.get('brush') === 'on'}});
    };
    document.getElementById('reset').onclick = () => send({type: 'reset'});
    chart.addEventListener('pointerdown', (ev) => forward('pointerdown', ev));
    chart.addEventListener('pointermove', (ev) => forward('pointermove', ev));
    chart.addEventListener('pointerup', (ev) => forward('pointerup', ev));
    chart.addEventListener('pointerleave', (ev) => forward('pointerleave', ev));
    chart.addEventListener('wheel', (ev) => { ev.preventDefault(); forward('wheel', ev, {deltaY: ev.deltaY}); }, {passive: false});
    window.addEventListener('resize', () => send({type: 'event', event: {type: 'resize', width: window.innerWidth - 48, height: 420}}));
  </script>
</body>
</html>
`
