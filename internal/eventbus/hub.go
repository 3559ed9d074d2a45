// Package eventbus is the in-process publish/subscribe component: the
// Service Layer publishes committed domain events here, and the Hub fans
// them out to its subscribers (the WebSocket Gateway's connections).
//
// The Hub owns a per-board monotonic sequence counter and a table of
// subscriptions guarded by a read/write lock: many goroutines publish and
// iterate concurrently, subscribe/unsubscribe are the only writers.
package eventbus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/kanbanforge/kanband/internal/types"
)

// DefaultQueueSize is the bounded per-subscriber channel capacity. A full
// queue causes the oldest queued event to be dropped and the next
// delivered event to carry Lost=true, rather than block the publisher.
const DefaultQueueSize = 256

// AllBoards is the subscription key for a subscriber interested in every
// board's events ("*" in the spec's subscription model).
const AllBoards = "*"

// Subscription is a live registration returned by Subscribe. The caller
// reads events from C until it calls Close, after which C is closed.
type Subscription struct {
	ID      string
	BoardID string
	Types   map[types.EventType]bool // nil/empty means "all types"
	C       chan types.Event

	hub    *Hub
	closed bool
	mu     sync.Mutex
}

// Close unregisters the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.hub.unsubscribe(s)
}

func (s *Subscription) wants(evt types.Event) bool {
	if s.BoardID != AllBoards && s.BoardID != evt.BoardID {
		return false
	}
	if len(s.Types) == 0 {
		return true
	}
	return s.Types[evt.Type]
}

// Hub is the Event Hub component. The zero value is not usable; construct
// with New.
type Hub struct {
	log zerolog.Logger

	mu   sync.RWMutex
	subs map[string]*Subscription

	seqMu sync.Mutex
	seq   map[string]uint64 // per-board sequence counter

	nextSubID int
	idMu      sync.Mutex
}

func New(log zerolog.Logger) *Hub {
	return &Hub{
		log:  log.With().Str("component", "eventbus").Logger(),
		subs: make(map[string]*Subscription),
		seq:  make(map[string]uint64),
	}
}

// Subscribe registers a new subscription for boardID (or AllBoards) and an
// optional set of event types (nil means all types). The caller owns the
// returned Subscription and must Close it to release resources.
func (h *Hub) Subscribe(boardID string, types_ []types.EventType) *Subscription {
	h.idMu.Lock()
	h.nextSubID++
	id := h.nextSubID
	h.idMu.Unlock()

	var mask map[types.EventType]bool
	if len(types_) > 0 {
		mask = make(map[types.EventType]bool, len(types_))
		for _, t := range types_ {
			mask[t] = true
		}
	}

	sub := &Subscription{
		ID:      subID(id),
		BoardID: boardID,
		Types:   mask,
		C:       make(chan types.Event, DefaultQueueSize),
		hub:     h,
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()

	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub.ID)
	h.mu.Unlock()
	close(sub.C)
}

// Publish assigns the next per-board sequence number to evt and fans it
// out to every matching subscriber. Publish never blocks: a subscriber
// whose queue is full has its oldest queued event evicted to make room,
// and the newly delivered event is marked Lost. If the queue is still full
// after the eviction, the event is dropped and a warning is logged.
//
// Publish takes a read lock on the subscriber table only — it MUST NOT be
// called while holding a database transaction's lock, and the caller MUST
// NOT hold the Hub's lock across a database call (see the deadlock
// avoidance rule: acquire the transaction before the publish lock, never
// the reverse).
func (h *Hub) Publish(evt types.Event) types.Event {
	evt.Seq = h.nextSeq(evt.BoardID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.wants(evt) {
			continue
		}
		h.deliver(sub, evt)
	}
	return evt
}

func (h *Hub) deliver(sub *Subscription, evt types.Event) {
	select {
	case sub.C <- evt:
		return
	default:
	}

	// Queue full: drop the oldest queued event and flag the one we're
	// about to enqueue as having a gap before it.
	select {
	case <-sub.C:
	default:
	}
	evt.Lost = true

	select {
	case sub.C <- evt:
	default:
		h.log.Warn().Str("subscription", sub.ID).Str("event", string(evt.Type)).
			Msg("subscriber queue full even after eviction, dropping event")
	}
}

func (h *Hub) nextSeq(boardID string) uint64 {
	h.seqMu.Lock()
	defer h.seqMu.Unlock()
	h.seq[boardID]++
	return h.seq[boardID]
}

func subID(n int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "sub-0"
	}
	buf := make([]byte, 0, 8)
	for n > 0 {
		buf = append(buf, alphabet[n%36])
		n /= 36
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return "sub-" + string(buf)
}
