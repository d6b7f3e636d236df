package table

import "errors"

// Every rule violation a caller can trigger. All of these are recoverable
// and surfaced to the offending caller only.
var (
	ErrGameNotFound       = errors.New("game not found")
	ErrGameFull           = errors.New("game is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrAlreadySeated      = errors.New("player already seated")
	ErrPositionTaken      = errors.New("position already taken")
	ErrInvalidPosition    = errors.New("position must be between 0 and 3")
	ErrUnauthorized       = errors.New("only the game creator can do that")
	ErrInvalidGameState   = errors.New("action not valid in current game state")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrInvalidBid         = errors.New("bid must be between 0 and 13")
	ErrCardNotInHand      = errors.New("card not in hand")
	ErrIllegalCard        = errors.New("card is not legal to play")
	ErrPlayerNotFound     = errors.New("player not found in game")

	// ErrInternal is what an unexpected engine fault degrades to; the real
	// cause goes to the log, never to the wire.
	ErrInternal = errors.New("internal server error")
)
