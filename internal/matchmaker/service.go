package matchmaker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"Spades/internal/game/deck"
	"Spades/internal/websocket"
)

// Service pools players until a full spades table (four seats) can be
// popped, then hands the room to the game layer.
type Service struct {
	repo        Repo
	playerTTL   int // seconds a queue entry survives unclaimed
	hub         HubBroadcaster
	OnRoomReady func(*Room) // called once per formed table
}

type HubBroadcaster interface {
	BroadcastToPlayers(identities []string, msg websocket.OutgoingMessage)
}

func NewService(repo Repo, playerTTL int, hub HubBroadcaster) *Service {
	return &Service{repo: repo, playerTTL: playerTTL, hub: hub}
}

// Join enqueues and immediately tries to form a table. Returns the room
// when one formed (the caller is in it), or queued=true.
func (s *Service) Join(ctx context.Context, identity, pool string) (*Room, bool, error) {
	if err := s.repo.Enqueue(ctx, pool, identity, s.playerTTL); err != nil {
		return nil, false, err
	}
	cnt, err := s.repo.Count(ctx, pool)
	if err != nil {
		return nil, false, err
	}
	if int(cnt) < deck.Seats {
		return nil, true, nil
	}

	ids, err := s.repo.PopN(ctx, pool, deck.Seats)
	if err != nil {
		return nil, false, err
	}
	if len(ids) < deck.Seats {
		// Lost the race against a concurrent pop; stay queued.
		return nil, true, nil
	}

	// The pop is random. With more than four pooled, the set may not
	// include the caller, whose own table forms on a later pop.
	member := false
	for _, id := range ids {
		if id == identity {
			member = true
			break
		}
	}

	room := &Room{
		ID:        uuid.NewString(),
		Pool:      pool,
		Players:   ids,
		CreatedAt: time.Now(),
	}

	s.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{
		Event: websocket.EventMatched,
		Data: map[string]any{
			"roomId":  room.ID,
			"pool":    room.Pool,
			"players": room.Players,
		},
	})

	if s.OnRoomReady != nil {
		go s.OnRoomReady(room)
	}
	if !member {
		return nil, true, nil
	}
	return room, false, nil
}

// Cancel drops the identity from the queue; unqueued identities no-op.
func (s *Service) Cancel(ctx context.Context, identity string) error {
	return s.repo.Remove(ctx, identity)
}
