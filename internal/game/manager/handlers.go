package manager

import (
	"context"
	"encoding/json"

	"Spades/internal/game/deck"
	"Spades/internal/game/table"
	"Spades/internal/websocket"
)

// Wire payloads for the client actions that carry one.

type joinPayload struct {
	GameID   string `json:"gameId"`
	Position *int   `json:"position,omitempty"`
	// Seeded test players bring their own profile instead of a directory row.
	Seeded      bool   `json:"seeded,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type gameIDPayload struct {
	GameID string `json:"gameId"`
}

type bidPayload struct {
	GameID string `json:"gameId"`
	Bid    int    `json:"bid"`
}

type playPayload struct {
	GameID string    `json:"gameId"`
	Card   deck.Card `json:"card"`
}

type chatPayload struct {
	GameID string `json:"gameId"`
	Text   string `json:"text"`
}

// HandleMessage is the hub's OnIncoming sink: every client action lands
// here with its authenticated identity already stamped. Errors go back to
// the offender only; accepted mutations broadcast from the ops themselves.
func (m *GameManager) HandleMessage(msg websocket.IncomingMessage) {
	if !m.limiter.Allow(msg.From, msg.Event) {
		return // silently dropped, per the abuse policy
	}

	ctx := context.Background()
	var err error

	switch msg.Event {
	case websocket.EventCreateGame:
		var p joinPayload
		_ = json.Unmarshal(msg.Data, &p)
		_, err = m.CreateGame(ctx, table.PlayerSpec{
			Identity: msg.From, Seeded: p.Seeded, DisplayName: p.DisplayName,
		})

	case websocket.EventJoinGame:
		var p joinPayload
		if err = json.Unmarshal(msg.Data, &p); err == nil {
			_, err = m.JoinGame(ctx, p.GameID, table.PlayerSpec{
				Identity: msg.From, Seeded: p.Seeded, DisplayName: p.DisplayName,
			}, p.Position)
		}

	case websocket.EventStartGame:
		var p gameIDPayload
		if err = json.Unmarshal(msg.Data, &p); err == nil {
			_, err = m.StartGame(p.GameID, msg.From)
		}

	case websocket.EventMakeBid:
		var p bidPayload
		if err = json.Unmarshal(msg.Data, &p); err == nil {
			_, err = m.MakeBid(p.GameID, msg.From, p.Bid)
		}

	case websocket.EventPlayCard:
		var p playPayload
		if err = json.Unmarshal(msg.Data, &p); err == nil {
			_, err = m.PlayCard(p.GameID, msg.From, p.Card)
		}

	case websocket.EventLeaveGame:
		var p gameIDPayload
		if err = json.Unmarshal(msg.Data, &p); err == nil {
			err = m.LeaveGame(p.GameID, msg.From)
		}

	case websocket.EventGetGames:
		m.hub.SendToPlayer(msg.From, websocket.OutgoingMessage{
			Event: websocket.EventGamesUpdate, Data: m.Games(),
		})

	case websocket.EventChatMessage:
		var p chatPayload
		if err = json.Unmarshal(msg.Data, &p); err == nil {
			err = m.relayChat(msg.From, p)
		}

	case websocket.EventCloseConns:
		if msg.Conn != nil {
			m.hub.ClosePrevious(msg.Conn)
		}

	default:
		m.log.Warn("unknown event", "event", msg.Event, "from", msg.From)
		return
	}

	if err != nil {
		m.hub.SendToPlayer(msg.From, websocket.OutgoingMessage{
			Event: websocket.EventError,
			Data:  websocket.ErrorData{Message: err.Error()},
		})
	}
}

// relayChat passes a chat line through to the game's room. Pure
// pass-through: chat never touches game state.
func (m *GameManager) relayChat(from string, p chatPayload) error {
	eng := m.engine(p.GameID)
	if eng == nil {
		return table.ErrGameNotFound
	}
	snap := eng.Snapshot()
	if snap == nil {
		return table.ErrGameNotFound
	}
	displayName := from
	if player := snap.PlayerByIdentity(from); player != nil {
		displayName = player.DisplayName
	}
	m.hub.BroadcastToPlayers(snap.Identities(), websocket.OutgoingMessage{
		Event: websocket.EventChat,
		Data: map[string]string{
			"gameId":      p.GameID,
			"from":        from,
			"displayName": displayName,
			"text":        p.Text,
		},
	})
	return nil
}
