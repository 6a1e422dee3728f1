package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client. The
// presence channel is push-driven; the only inbound traffic the server
// understands is keepalive pings.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypePing = "ping"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
	OutboundTypePong  = "pong"

	// EventActiveUsers carries the full set of online identities. Sent
	// on every presence change and once right after registration.
	EventActiveUsers = "activeUsers"
)

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// ActiveUsers builds the presence event for a snapshot of online
// identity strings.
func ActiveUsers(ids []string) Outbound {
	return Outbound{
		Type:  OutboundTypeEvent,
		Event: EventActiveUsers,
		Data:  ids,
	}
}
