package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"Spades/internal/game/deck"
	"Spades/internal/game/engine"
	"Spades/internal/game/rules"
	"Spades/internal/game/table"
	"Spades/internal/identity"
	"Spades/internal/websocket"
)

// startTimeout bounds how long a start_game dispatch waits before the
// caller is told the request was lost rather than rejected.
const startTimeout = 5 * time.Second

// lookupTimeout bounds the identity directory call done at join time.
const lookupTimeout = 3 * time.Second

// GameManager is the registry of live games and the single entry point
// for player actions coming off the hub. Per-game mutation order is the
// engines' business; the manager only routes, resolves identities, rate
// limits, and broadcasts.
type GameManager struct {
	mu           sync.RWMutex
	log          *log.Logger
	hub          websocket.HubInterface
	directory    identity.Directory
	rules        rules.RuleSet
	limiter      *websocket.Limiter
	engines      map[string]*engine.Engine // gameID -> engine
	playerToGame map[string]string         // identity -> gameID
}

func NewGameManager(hub websocket.HubInterface, dir identity.Directory, rs rules.RuleSet, logger *log.Logger) *GameManager {
	return &GameManager{
		log:          logger,
		hub:          hub,
		directory:    dir,
		rules:        rs,
		limiter:      websocket.NewLimiter(),
		engines:      make(map[string]*engine.Engine),
		playerToGame: make(map[string]string),
	}
}

// resolvePlayer builds the seat for a joining spec. Real identities go
// through the directory once, here, outside any engine's critical
// section; seeded specs carry their own profile.
func (m *GameManager) resolvePlayer(ctx context.Context, spec table.PlayerSpec) (*table.Player, error) {
	p := &table.Player{Identity: spec.Identity, DisplayName: spec.DisplayName, AvatarRef: spec.AvatarRef}
	if spec.Seeded {
		if p.DisplayName == "" {
			p.DisplayName = spec.Identity
		}
		return p, nil
	}
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	profile, err := m.directory.Lookup(ctx, spec.Identity)
	if err != nil {
		// Best effort: guests have no profile row, and directory trouble
		// is not the player's fault. Seat them under their id.
		if !errors.Is(err, identity.ErrNotFound) {
			m.log.Warn("identity lookup failed", "identity", spec.Identity, "err", err)
		}
		p.DisplayName = spec.Identity
		return p, nil
	}
	p.DisplayName = profile.DisplayName
	p.AvatarRef = profile.AvatarRef
	return p, nil
}

// CreateGame makes a new WAITING game seating the creator at position 0.
// A creator already seated somewhere gets that game back instead of a
// duplicate.
func (m *GameManager) CreateGame(ctx context.Context, spec table.PlayerSpec) (*table.Game, error) {
	m.mu.RLock()
	gid, seated := m.playerToGame[spec.Identity]
	eng := m.engines[gid]
	m.mu.RUnlock()
	if seated && eng != nil {
		return eng.Snapshot(), nil
	}

	creator, err := m.resolvePlayer(ctx, spec)
	if err != nil {
		return nil, err
	}

	g := table.New(uuid.NewString(), creator)
	e := engine.New(g, m.rules, time.Now().UnixNano(), m.log)

	m.mu.Lock()
	// Re-check under the write lock; the identity may have raced itself.
	if gid, ok := m.playerToGame[spec.Identity]; ok {
		if prev := m.engines[gid]; prev != nil {
			m.mu.Unlock()
			return prev.Snapshot(), nil
		}
	}
	m.engines[g.ID] = e
	m.playerToGame[spec.Identity] = g.ID
	m.mu.Unlock()

	go e.Run()
	m.log.Info("game created", "game", g.ID, "creator", spec.Identity)

	snap := e.Snapshot()
	m.hub.BroadcastToPlayers(snap.Identities(), websocket.OutgoingMessage{
		Event: websocket.EventGameCreated, Data: snap,
	})
	m.broadcastLobby()
	return snap, nil
}

// CreateMatchedGame seats four quick-match players in popped order; the
// first one is the creator at position 0. The game still waits for the
// creator's explicit start.
func (m *GameManager) CreateMatchedGame(ctx context.Context, specs []table.PlayerSpec) (*table.Game, error) {
	if len(specs) != deck.Seats {
		return nil, fmt.Errorf("matched game needs %d players, got %d", deck.Seats, len(specs))
	}
	g, err := m.CreateGame(ctx, specs[0])
	if err != nil {
		return nil, err
	}
	for _, spec := range specs[1:] {
		if g, err = m.JoinGame(ctx, g.ID, spec, nil); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// JoinGame seats an identity in the named game.
func (m *GameManager) JoinGame(ctx context.Context, gameID string, spec table.PlayerSpec, position *int) (*table.Game, error) {
	m.mu.RLock()
	eng := m.engines[gameID]
	seatedIn, seated := m.playerToGame[spec.Identity]
	m.mu.RUnlock()

	if eng == nil {
		return nil, table.ErrGameNotFound
	}
	if seated && seatedIn != gameID {
		return nil, table.ErrAlreadySeated
	}

	p, err := m.resolvePlayer(ctx, spec)
	if err != nil {
		return nil, err
	}

	res := eng.Join(p, position)
	if res.Err != nil {
		return nil, res.Err
	}

	m.mu.Lock()
	m.playerToGame[spec.Identity] = gameID
	m.mu.Unlock()

	m.broadcastGame(res.Game)
	return res.Game, nil
}

// StartGame deals the first hand; only the creator of a full table may.
func (m *GameManager) StartGame(gameID, identity string) (*table.Game, error) {
	eng := m.engine(gameID)
	if eng == nil {
		return nil, table.ErrGameNotFound
	}

	done := make(chan engine.Result, 1)
	go func() { done <- eng.Start(identity) }()
	select {
	case res := <-done:
		if res.Err != nil {
			return nil, res.Err
		}
		m.broadcastGame(res.Game)
		return res.Game, nil
	case <-time.After(startTimeout):
		return nil, fmt.Errorf("start_game timed out for game %s", gameID)
	}
}

// MakeBid records a bid for the player whose turn it is.
func (m *GameManager) MakeBid(gameID, identity string, bid int) (*table.Game, error) {
	eng := m.engine(gameID)
	if eng == nil {
		return nil, table.ErrGameNotFound
	}
	res := eng.Bid(identity, bid)
	if res.Err != nil {
		return nil, res.Err
	}
	m.broadcastGame(res.Game)
	return res.Game, nil
}

// PlayCard plays a card; trick resolution, scoring, and hand/game
// transitions all happen inside the engine.
func (m *GameManager) PlayCard(gameID, identity string, card deck.Card) (*table.Game, error) {
	eng := m.engine(gameID)
	if eng == nil {
		return nil, table.ErrGameNotFound
	}
	res := eng.Play(identity, card)
	if res.Err != nil {
		return nil, res.Err
	}
	m.broadcastGame(res.Game)
	if res.Finished {
		m.log.Info("game over", "game", gameID, "winner", res.Winner)
		m.removeGame(gameID, res.Game)
	}
	return res.Game, nil
}

// LeaveGame unseats the identity. A leaving creator or last player tears
// the whole game down.
func (m *GameManager) LeaveGame(gameID, identity string) error {
	eng := m.engine(gameID)
	if eng == nil {
		return table.ErrGameNotFound
	}
	res := eng.Leave(identity)
	if res.Err != nil {
		return res.Err
	}

	m.mu.Lock()
	delete(m.playerToGame, identity)
	m.mu.Unlock()

	if res.Removed {
		m.removeGame(gameID, res.Game)
		return nil
	}
	m.broadcastGame(res.Game)
	return nil
}

// Games snapshots every active game, for get_games and lobby pushes.
func (m *GameManager) Games() []*table.Game {
	m.mu.RLock()
	engines := make([]*engine.Engine, 0, len(m.engines))
	for _, e := range m.engines {
		engines = append(engines, e)
	}
	m.mu.RUnlock()

	games := make([]*table.Game, 0, len(engines))
	for _, e := range engines {
		if snap := e.Snapshot(); snap != nil {
			games = append(games, snap)
		}
	}
	return games
}

func (m *GameManager) engine(gameID string) *engine.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engines[gameID]
}

// removeGame drops the game from the registry, stops its engine, and
// tells the room and the lobby it is gone.
func (m *GameManager) removeGame(gameID string, last *table.Game) {
	m.mu.Lock()
	eng := m.engines[gameID]
	delete(m.engines, gameID)
	if last != nil {
		for _, p := range last.Players {
			if m.playerToGame[p.Identity] == gameID {
				delete(m.playerToGame, p.Identity)
			}
		}
	}
	m.mu.Unlock()

	if eng != nil {
		eng.Stop()
	}
	if last != nil {
		m.hub.BroadcastToPlayers(last.Identities(), websocket.OutgoingMessage{
			Event: websocket.EventGameRemoved,
			Data:  map[string]string{"gameId": gameID},
		})
	}
	m.broadcastLobby()
	m.log.Info("game removed", "game", gameID)
}

func (m *GameManager) broadcastGame(g *table.Game) {
	m.hub.BroadcastToPlayers(g.Identities(), websocket.OutgoingMessage{
		Event: websocket.EventGameUpdate, Data: g,
	})
	m.broadcastLobby()
}

func (m *GameManager) broadcastLobby() {
	m.hub.BroadcastToLobby(websocket.OutgoingMessage{
		Event: websocket.EventGamesUpdate, Data: m.Games(),
	})
}
