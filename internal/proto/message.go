package proto

import "encoding/json"

// Envelope is the tagged message delivered on the per-room event stream.
// Only Type is guaranteed; the remaining fields are populated per type.
// Unknown types must be tolerated by receivers.
type Envelope struct {
	Type       string          `json:"type"`
	Room       *Room           `json:"room,omitempty"`
	Sender     string          `json:"sender,omitempty"`
	SenderRole string          `json:"sender_role,omitempty"`
	Message    string          `json:"message,omitempty"`
	Event      string          `json:"event,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
}

const (
	// EnvelopeConnected greets a freshly accepted stream connection.
	EnvelopeConnected = "connection_established"
	// EnvelopeInitialState carries the room snapshot sent after connect.
	EnvelopeInitialState = "initial_state"
	// EnvelopeStateUpdate carries a room snapshot after any change.
	EnvelopeStateUpdate = "state_update"
	// EnvelopeChatMessage carries one chat message broadcast.
	EnvelopeChatMessage = "chat_message"
	// EnvelopeGameEvent carries a named game event; Data may embed a room.
	EnvelopeGameEvent = "game_event"
	// EnvelopePong answers a ping action.
	EnvelopePong = "pong"
)

// GameEventData is the payload of a game_event envelope. When Room is
// absent the receiver falls back to a full-state request.
type GameEventData struct {
	Room *Room `json:"room,omitempty"`
}

// Action is the envelope for client-to-authority stream messages.
type Action struct {
	Action  string `json:"action"`
	Sender  string `json:"sender,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	ActionGetState = "get_state"
	ActionPing     = "ping"
	ActionChat     = "chat"
)

// Room is the authority's JSON snapshot of one game room, shared by the
// REST responses and the event stream.
type Room struct {
	ID         string            `json:"id"`
	Board      []string          `json:"board"`
	Players    []string          `json:"players"`
	Spectators []string          `json:"spectators,omitempty"`
	Turn       string            `json:"turn"`
	Names      map[string]string `json:"names,omitempty"`
	Winner     string            `json:"winner,omitempty"`
	Draw       bool              `json:"draw,omitempty"`
}

// CreateRoomResponse is the body of POST /rooms.
type CreateRoomResponse struct {
	RoomID string `json:"room_id"`
}

// JoinRequest is the body sent to POST /rooms/{id}/join.
type JoinRequest struct {
	Name string `json:"name"`
}

// JoinResponse reports the assigned role and seat after joining.
type JoinResponse struct {
	Role string `json:"role"`
	Mark string `json:"mark,omitempty"`
	Room *Room  `json:"room"`
}

// MoveRequest is the body sent to POST /rooms/{id}/move.
type MoveRequest struct {
	Name string `json:"name"`
	Cell int    `json:"cell"`
}

// ChatRequest is the body sent to POST /rooms/{id}/chat.
type ChatRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// LeaveRequest is the body sent to POST /rooms/{id}/leave.
type LeaveRequest struct {
	Name string `json:"name"`
}

// RoomResponse wraps the fresh snapshot returned by move and reset.
type RoomResponse struct {
	Room *Room `json:"room"`
}

// ErrorResponse is the authority's rejection body.
type ErrorResponse struct {
	Error string `json:"error"`
}
