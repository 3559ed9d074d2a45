package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/kanbanforge/kanband/internal/config"
	"github.com/kanbanforge/kanband/internal/eventbus"
)

// Gateway is the http.Handler that upgrades incoming requests to
// WebSocket connections and hands each one to a Conn actor. It tracks
// live connections for graceful shutdown.
type Gateway struct {
	hub      *eventbus.Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader

	authTimeout      time.Duration
	heartbeatPeriod  time.Duration
	heartbeatTimeout time.Duration
	maxConnections   int
	outboundQueue    int

	authenticate func(rawKey string) bool

	mu      sync.Mutex
	conns   map[string]*Conn
	nextID  int
}

// New builds a Gateway bound to hub for event fan-out, using cfg for
// connection limits and timeouts. authenticate is called with the raw key
// presented in a connection's first frame and should return true only for
// a valid, unexpired key.
func New(hub *eventbus.Hub, cfg config.Config, log zerolog.Logger, authenticate func(rawKey string) bool) *Gateway {
	return &Gateway{
		hub: hub,
		log: log.With().Str("component", "ws.gateway").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		authTimeout:      cfg.WebSocketAuthTimeout,
		heartbeatPeriod:  cfg.WebSocketHeartbeatPeriod,
		heartbeatTimeout: cfg.WebSocketHeartbeatTimeout,
		maxConnections:   cfg.WebSocketMaxConnections,
		outboundQueue:    eventbus.DefaultQueueSize,
		authenticate:     authenticate,
		conns:            make(map[string]*Conn),
	}
}

// ServeHTTP upgrades the request and runs the resulting connection until
// it closes, blocking the calling goroutine (the net/http server spawns
// one goroutine per request, matching gorilla/websocket's expected usage).
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	if g.maxConnections > 0 && len(g.conns) >= g.maxConnections {
		g.mu.Unlock()
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	g.nextID++
	id := connID(g.nextID)
	g.mu.Unlock()

	raw, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	conn := NewConn(id, raw, g.hub, g.log, g.outboundQueue)

	g.mu.Lock()
	g.conns[id] = conn
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.conns, id)
		g.mu.Unlock()
	}()

	conn.Run(g.authTimeout, g.heartbeatPeriod, g.heartbeatTimeout, g.authenticate)
}

// Shutdown drains every live connection, waiting up to deadline for each
// to flush pending writes before the server closes the listener.
func (g *Gateway) Shutdown(deadline time.Duration) {
	g.mu.Lock()
	conns := make([]*Conn, 0, len(g.conns))
	for _, c := range g.conns {
		conns = append(conns, c)
	}
	g.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c *Conn) {
			defer wg.Done()
			c.Drain(deadline)
		}(c)
	}
	wg.Wait()
}

func connID(n int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "c0"
	}
	buf := make([]byte, 0, 8)
	for n > 0 {
		buf = append([]byte{alphabet[n%len(alphabet)]}, buf...)
		n /= len(alphabet)
	}
	return "c" + string(buf)
}
