package matchmaker

import "time"

// JoinRequest asks to be pooled for a quick-match table. The identity
// comes from the authenticated request, not the body.
type JoinRequest struct {
	Pool string `json:"pool" binding:"required"` // e.g. "casual", "ranked"
}

// JoinResponse reports queue state; when a table formed it carries the
// room that the game was created from.
type JoinResponse struct {
	Queued  bool     `json:"queued"`
	RoomID  string   `json:"roomId,omitempty"`
	GameID  string   `json:"gameId,omitempty"`
	Players []string `json:"players,omitempty"`
	Pool    string   `json:"pool"`
}

// Room is four pooled players ready to be seated, in seat order: the
// first popped identity becomes the creator at position 0.
type Room struct {
	ID        string
	Pool      string
	Players   []string
	CreatedAt time.Time
}
