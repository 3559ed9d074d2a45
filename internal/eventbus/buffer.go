package eventbus

import "github.com/kanbanforge/kanband/internal/types"

// Buffer implements the commit-buffered event bus: the Service Layer
// appends events to a Buffer while a transaction is open, then Flushes
// them to the Hub only after the transaction commits. A rollback simply
// discards the Buffer, so nothing is ever published for a mutation that
// didn't happen.
type Buffer struct {
	events []types.Event
}

// Append queues evt for publication. It does not touch the Hub.
func (b *Buffer) Append(evt types.Event) {
	b.events = append(b.events, evt)
}

// Len reports how many events are queued.
func (b *Buffer) Len() int { return len(b.events) }

// Flush publishes every buffered event, in append order, to hub and
// clears the buffer. Call this only after the owning transaction commits.
func (b *Buffer) Flush(hub *Hub) []types.Event {
	published := make([]types.Event, 0, len(b.events))
	for _, evt := range b.events {
		published = append(published, hub.Publish(evt))
	}
	b.events = nil
	return published
}

// Discard drops every buffered event without publishing. Call this on
// rollback.
func (b *Buffer) Discard() {
	b.events = nil
}
