// Package ws is the WebSocket Gateway: it accepts connections, authenticates
// them against the single shared credential, manages per-connection
// subscriptions to the Event Hub's board rooms, and translates hub events
// to wire messages.
package ws

import "github.com/kanbanforge/kanband/internal/types"

// Close codes per spec.md §6.
const (
	CloseNormal              = 1000
	ClosePolicyViolation     = 1008
	CloseBackpressure        = 1013
	CloseUnauthenticatedTimeout = 4001
)

// ClientMessage is a frame received from a connected client.
type ClientMessage struct {
	Type    string `json:"type"`
	BoardID string `json:"board_id,omitempty"`
}

// ServerMessage is a frame sent to a connected client: either a domain
// event (Type set to a types.EventType value) or a protocol frame (pong,
// error).
type ServerMessage struct {
	Type      string         `json:"type"`
	BoardID   string         `json:"board_id,omitempty"`
	Seq       uint64         `json:"seq,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Lost      bool           `json:"lost,omitempty"`
	Code      string         `json:"code,omitempty"`
	Message   string         `json:"message,omitempty"`
}

func eventToMessage(evt types.Event) ServerMessage {
	return ServerMessage{
		Type:      string(evt.Type),
		BoardID:   evt.BoardID,
		Seq:       evt.Seq,
		Timestamp: evt.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		Payload:   evt.Payload,
		Lost:      evt.Lost,
	}
}

func errorMessage(code, msg string) ServerMessage {
	return ServerMessage{Type: "error", Code: code, Message: msg}
}
