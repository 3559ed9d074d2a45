package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kanbanforge/kanband/internal/eventbus"
)

// State is the connection lifecycle per spec.md §4.F.
type State int

const (
	StateConnecting State = iota
	StateAuthenticating
	StateReady
	StateDraining
	StateClosed
)

const (
	maxSubscriptionsPerConn = 50
	inboundRateLimit        = 100
	inboundRateWindow       = time.Minute
)

// Conn is one authenticated WebSocket connection: a read goroutine, a
// write goroutine draining a bounded outbound queue, and a heartbeat
// ticker, matching gorilla/websocket's single-reader/single-writer
// requirement (the same split the teacher's own watcher observes from the
// client side in internal/coop/watcher.go).
type Conn struct {
	id   string
	raw  *websocket.Conn
	hub  *eventbus.Hub
	log  zerolog.Logger

	outbound chan ServerMessage
	done     chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	state State
	subs  map[string]*eventbus.Subscription

	limiter *tokenBucket

	writeQueueSize int
}

// NewConn wraps an upgraded websocket.Conn in the gateway's connection
// actor. outboundQueueSize bounds the per-connection write queue; a full
// queue at delivery time closes the connection with code 1013.
func NewConn(id string, raw *websocket.Conn, hub *eventbus.Hub, log zerolog.Logger, outboundQueueSize int) *Conn {
	if outboundQueueSize <= 0 {
		outboundQueueSize = eventbus.DefaultQueueSize
	}
	return &Conn{
		id:             id,
		raw:            raw,
		hub:            hub,
		log:            log.With().Str("component", "ws.conn").Str("conn_id", id).Logger(),
		outbound:       make(chan ServerMessage, outboundQueueSize),
		done:           make(chan struct{}),
		state:          StateConnecting,
		subs:           make(map[string]*eventbus.Subscription),
		limiter:        newTokenBucket(inboundRateLimit, inboundRateWindow),
		writeQueueSize: outboundQueueSize,
	}
}

// Run drives the connection until it closes: authenticates within
// authTimeout, then services reads and writes until the socket closes or
// the connection is told to drain. authenticate is supplied by the
// Gateway so this package stays decoupled from internal/auth's storage
// lookups.
func (c *Conn) Run(authTimeout, heartbeatPeriod, heartbeatTimeout time.Duration, authenticate func(rawKey string) bool) {
	c.setState(StateAuthenticating)

	authed := make(chan bool, 1)
	go func() {
		_, msg, err := c.raw.ReadMessage()
		if err != nil {
			authed <- false
			return
		}
		var frame struct {
			Type string `json:"type"`
			Key  string `json:"key"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			authed <- false
			return
		}
		authed <- authenticate(frame.Key)
	}()

	select {
	case ok := <-authed:
		if !ok {
			c.closeWithCode(ClosePolicyViolation, "authentication failed")
			return
		}
	case <-time.After(authTimeout):
		c.closeWithCode(CloseUnauthenticatedTimeout, "authentication timeout")
		return
	}

	c.setState(StateReady)
	var g errgroup.Group
	g.Go(func() error {
		c.writeLoop(heartbeatPeriod, heartbeatTimeout)
		return nil
	})
	c.readLoop()
	_ = g.Wait()
}

func (c *Conn) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) readLoop() {
	defer c.closeWithCode(CloseNormal, "")
	for {
		_, raw, err := c.raw.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow(time.Now()) {
			c.send(errorMessage("RATE_LIMITED", "too many messages"))
			continue
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.send(errorMessage("VALIDATION", "malformed message"))
			continue
		}
		c.handle(msg)
	}
}

func (c *Conn) handle(msg ClientMessage) {
	switch msg.Type {
	case "ping":
		c.send(ServerMessage{Type: "pong"})
	case "subscribe":
		c.subscribe(msg.BoardID)
	case "unsubscribe":
		c.unsubscribe(msg.BoardID)
	default:
		c.send(errorMessage("VALIDATION", "unknown message type"))
	}
}

func (c *Conn) subscribe(boardID string) {
	if boardID == "" {
		boardID = eventbus.AllBoards
	}
	c.mu.Lock()
	if _, exists := c.subs[boardID]; exists {
		c.mu.Unlock()
		return
	}
	if len(c.subs) >= maxSubscriptionsPerConn {
		c.mu.Unlock()
		c.send(errorMessage("SUBSCRIPTION_LIMIT", "maximum subscriptions reached"))
		return
	}
	c.mu.Unlock()

	sub := c.hub.Subscribe(boardID, nil)
	c.mu.Lock()
	c.subs[boardID] = sub
	c.mu.Unlock()

	go c.pump(sub)
}

func (c *Conn) unsubscribe(boardID string) {
	if boardID == "" {
		boardID = eventbus.AllBoards
	}
	c.mu.Lock()
	sub, ok := c.subs[boardID]
	delete(c.subs, boardID)
	c.mu.Unlock()
	if ok {
		sub.Close()
	}
}

// pump relays one subscription's event channel onto the connection's
// shared outbound queue until the subscription closes or the connection
// does.
func (c *Conn) pump(sub *eventbus.Subscription) {
	for {
		select {
		case evt, ok := <-sub.C:
			if !ok {
				return
			}
			c.send(eventToMessage(evt))
		case <-c.done:
			return
		}
	}
}

// send enqueues msg without blocking; a full queue closes the connection
// with code 1013 per spec.md §4.F, never blocking the caller (which may be
// the Event Hub's own publish path via pump).
func (c *Conn) send(msg ServerMessage) {
	select {
	case c.outbound <- msg:
	default:
		c.closeWithCode(CloseBackpressure, "write queue full")
	}
}

func (c *Conn) writeLoop(heartbeatPeriod, heartbeatTimeout time.Duration) {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()
	lastPong := time.Now()

	c.raw.SetPongHandler(func(string) error {
		lastPong = time.Now()
		return nil
	})

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.outbound:
			if err := c.raw.WriteJSON(msg); err != nil {
				c.closeWithCode(CloseNormal, "")
				return
			}
		case <-ticker.C:
			if time.Since(lastPong) > heartbeatTimeout {
				c.closeWithCode(CloseNormal, "heartbeat timeout")
				return
			}
			if err := c.raw.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closeWithCode(CloseNormal, "")
				return
			}
		}
	}
}

// Drain transitions the connection to DRAINING and gives pending writes up
// to deadline to flush before the connection is forced closed.
func (c *Conn) Drain(deadline time.Duration) {
	c.setState(StateDraining)
	select {
	case <-c.done:
	case <-time.After(deadline):
		c.closeWithCode(CloseNormal, "shutdown")
	}
}

func (c *Conn) closeWithCode(code int, reason string) {
	c.closeOnce.Do(func() {
		c.setState(StateClosed)
		c.mu.Lock()
		subs := make([]*eventbus.Subscription, 0, len(c.subs))
		for _, s := range c.subs {
			subs = append(subs, s)
		}
		c.mu.Unlock()
		for _, s := range subs {
			s.Close()
		}
		close(c.done)
		deadline := time.Now().Add(time.Second)
		_ = c.raw.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.raw.Close()
	})
}
