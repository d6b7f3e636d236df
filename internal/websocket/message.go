package websocket

import "encoding/json"

// Client-issued actions.
const (
	EventCreateGame  = "create_game"
	EventJoinGame    = "join_game"
	EventStartGame   = "start_game"
	EventMakeBid     = "make_bid"
	EventPlayCard    = "play_card"
	EventLeaveGame   = "leave_game"
	EventGetGames    = "get_games"
	EventChatMessage = "chat_message"
	EventCloseConns  = "close_previous_connections"
)

// Server-issued broadcasts.
const (
	EventGameCreated = "game_created"
	EventGameUpdate  = "game_update"
	EventGamesUpdate = "games_update"
	EventGameRemoved = "game_removed"
	EventChat        = "chat"
	EventError       = "error"
	EventMatched     = "matched"
)

// OutgoingMessage is the envelope every server push wraps.
type OutgoingMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// IncomingMessage is a decoded client action. From is the authenticated
// identity of the sending connection, never taken from the payload; Conn
// is the physical connection it arrived on.
type IncomingMessage struct {
	From  string          `json:"from"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Conn  *Client         `json:"-"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	Message string `json:"message"`
}
