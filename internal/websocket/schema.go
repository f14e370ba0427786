package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionFrame          Action = "frame"
	ActionVisibility     Action = "visibility"
	ActionFullscreenExit Action = "fullscreen_exit"
	ActionPing           Action = "ping"
)

// RequestPayload is the single inbound message shape. Fields beyond
// Action are populated depending on the action.
type RequestPayload struct {
	Action Action `json:"action"`

	// ActionFrame: a downscaled camera capture, packed RGB bytes
	// encoded as base64.
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Pixels string `json:"pixels,omitempty"`

	// ActionVisibility: whether the page is currently hidden.
	Hidden bool `json:"hidden,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventPong  Event = "pong"
)

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
