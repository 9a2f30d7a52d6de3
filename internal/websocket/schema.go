package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing     Action = "ping"
	ActionTyping   Action = "typing"
	ActionMarkRead Action = "mark_read"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventMessage Event = "message"
	EventRead    Event = "read"
	EventTyping  Event = "typing"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// ThreadEventResponse relays a thread event published on Redis. Data is the
// raw event payload so the relay never re-encodes it.
type ThreadEventResponse struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
