package ws

import (
	"sync"
	"time"
)

// tokenBucket is a minimal fixed-window inbound message limiter: MaxEvents
// within Window per connection, matching spec.md §4.F's "rate limits apply
// to inbound messages (default 100/min)". No token-bucket/rate-limiting
// library appears anywhere in the example pack, so this is hand-rolled
// rather than borrowed (see DESIGN.md).
type tokenBucket struct {
	mu         sync.Mutex
	max        int
	window     time.Duration
	count      int
	windowOpen time.Time
}

func newTokenBucket(max int, window time.Duration) *tokenBucket {
	return &tokenBucket{max: max, window: window}
}

// Allow reports whether another event may be admitted at now, incrementing
// the window's counter as a side effect when it does.
func (b *tokenBucket) Allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.windowOpen) >= b.window {
		b.windowOpen = now
		b.count = 0
	}
	if b.count >= b.max {
		return false
	}
	b.count++
	return true
}
