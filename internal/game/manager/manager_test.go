package manager

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Spades/internal/game/rules"
	"Spades/internal/game/table"
	"Spades/internal/identity"
	"Spades/internal/websocket"
)

// mockHub records everything the manager broadcasts.
type mockHub struct {
	mu       sync.Mutex
	room     []websocket.OutgoingMessage // BroadcastToPlayers
	lobby    []websocket.OutgoingMessage
	direct   map[string][]websocket.OutgoingMessage
	evicted  []*websocket.Client
	roomDest [][]string
}

func newMockHub() *mockHub {
	return &mockHub{direct: make(map[string][]websocket.OutgoingMessage)}
}

func (h *mockHub) BroadcastToPlayers(ids []string, msg websocket.OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.room = append(h.room, msg)
	h.roomDest = append(h.roomDest, ids)
}

func (h *mockHub) BroadcastToLobby(msg websocket.OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lobby = append(h.lobby, msg)
}

func (h *mockHub) SendToPlayer(id string, msg websocket.OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.direct[id] = append(h.direct[id], msg)
}

func (h *mockHub) ClosePrevious(keep *websocket.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.evicted = append(h.evicted, keep)
}

func (h *mockHub) Close() {}

// lastRoomEvent returns the most recent room broadcast's event name.
func (h *mockHub) lastRoomEvent() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.room) == 0 {
		return ""
	}
	return h.room[len(h.room)-1].Event
}

func (h *mockHub) roomEvents() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.room))
	for i, m := range h.room {
		out[i] = m.Event
	}
	return out
}

func (h *mockHub) directTo(id string) []websocket.OutgoingMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]websocket.OutgoingMessage(nil), h.direct[id]...)
}

func testManager(t *testing.T) (*GameManager, *mockHub) {
	t.Helper()
	hub := newMockHub()
	dir := identity.NewStaticDirectory()
	dir.Put(identity.Profile{ID: "alice", DisplayName: "Alice", AvatarRef: "a1"})
	m := NewGameManager(hub, dir, rules.Standard(), log.New(io.Discard))
	return m, hub
}

func seeded(id string) table.PlayerSpec {
	return table.PlayerSpec{Identity: id, Seeded: true, DisplayName: id}
}

func TestCreateGameResolvesProfile(t *testing.T) {
	m, hub := testManager(t)

	g, err := m.CreateGame(context.Background(), table.PlayerSpec{Identity: "alice"})
	require.NoError(t, err)
	require.Len(t, g.Players, 1)
	assert.Equal(t, "Alice", g.Players[0].DisplayName)
	assert.Equal(t, "a1", g.Players[0].AvatarRef)

	assert.Equal(t, websocket.EventGameCreated, hub.lastRoomEvent())
	assert.NotEmpty(t, hub.lobby)
}

func TestCreateGameUnknownIdentitySeatsBestEffort(t *testing.T) {
	m, _ := testManager(t)

	g, err := m.CreateGame(context.Background(), table.PlayerSpec{Identity: "guest-ab12"})
	require.NoError(t, err)
	assert.Equal(t, "guest-ab12", g.Players[0].DisplayName)
}

func TestCreateGameIdempotentPerIdentity(t *testing.T) {
	m, _ := testManager(t)

	g1, err := m.CreateGame(context.Background(), seeded("p0"))
	require.NoError(t, err)
	g2, err := m.CreateGame(context.Background(), seeded("p0"))
	require.NoError(t, err)
	assert.Equal(t, g1.ID, g2.ID)
	assert.Len(t, m.Games(), 1)
}

func TestJoinGameNotFound(t *testing.T) {
	m, _ := testManager(t)
	_, err := m.JoinGame(context.Background(), "missing", seeded("p1"), nil)
	assert.ErrorIs(t, err, table.ErrGameNotFound)
}

func TestJoinGameWhileSeatedElsewhere(t *testing.T) {
	m, _ := testManager(t)
	ctx := context.Background()

	g1, err := m.CreateGame(ctx, seeded("p0"))
	require.NoError(t, err)
	g2, err := m.CreateGame(ctx, seeded("q0"))
	require.NoError(t, err)

	_, err = m.JoinGame(ctx, g1.ID, seeded("p1"), nil)
	require.NoError(t, err)
	_, err = m.JoinGame(ctx, g2.ID, seeded("p1"), nil)
	assert.ErrorIs(t, err, table.ErrAlreadySeated)
}

// fullGame creates a game and seats p1..p3 next to creator p0.
func fullGame(t *testing.T, m *GameManager) *table.Game {
	t.Helper()
	ctx := context.Background()
	g, err := m.CreateGame(ctx, seeded("p0"))
	require.NoError(t, err)
	for _, id := range []string{"p1", "p2", "p3"} {
		g, err = m.JoinGame(ctx, g.ID, seeded(id), nil)
		require.NoError(t, err)
	}
	return g
}

func TestStartAndBidFlow(t *testing.T) {
	m, hub := testManager(t)
	g := fullGame(t, m)

	_, err := m.StartGame(g.ID, "p1")
	assert.ErrorIs(t, err, table.ErrUnauthorized)

	g, err = m.StartGame(g.ID, "p0")
	require.NoError(t, err)
	assert.Equal(t, table.StatusBidding, g.Status)
	assert.Equal(t, websocket.EventGameUpdate, hub.lastRoomEvent())

	for i := 0; i < 4; i++ {
		g, err = m.MakeBid(g.ID, g.CurrentPlayer, 3)
		require.NoError(t, err)
	}
	assert.Equal(t, table.StatusPlaying, g.Status)
}

func TestLeaveGameByCreatorTearsDown(t *testing.T) {
	m, hub := testManager(t)
	g := fullGame(t, m)

	require.NoError(t, m.LeaveGame(g.ID, "p0"))
	assert.Empty(t, m.Games())
	assert.Contains(t, hub.roomEvents(), websocket.EventGameRemoved)

	// Everyone's seat mapping is gone; all four can create fresh games.
	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		_, err := m.CreateGame(context.Background(), seeded(id))
		require.NoError(t, err)
	}
	assert.Len(t, m.Games(), 4)
}

func TestLeaveGameByOtherKeepsGame(t *testing.T) {
	m, _ := testManager(t)
	g := fullGame(t, m)

	require.NoError(t, m.LeaveGame(g.ID, "p2"))
	games := m.Games()
	require.Len(t, games, 1)
	assert.Len(t, games[0].Players, 3)

	// p2 is free to sit down elsewhere.
	_, err := m.CreateGame(context.Background(), seeded("p2"))
	require.NoError(t, err)
}

func TestCreateMatchedGameSeatsAllFour(t *testing.T) {
	m, _ := testManager(t)

	specs := []table.PlayerSpec{seeded("m0"), seeded("m1"), seeded("m2"), seeded("m3")}
	g, err := m.CreateMatchedGame(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, g.Players, 4)
	assert.Equal(t, "m0", g.Creator().Identity)
	assert.Equal(t, table.StatusWaiting, g.Status)

	_, err = m.CreateMatchedGame(context.Background(), specs[:2])
	assert.Error(t, err)
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandleMessageCreateJoinStart(t *testing.T) {
	m, hub := testManager(t)

	m.HandleMessage(websocket.IncomingMessage{
		From: "p0", Event: websocket.EventCreateGame,
		Data: raw(t, joinPayload{Seeded: true, DisplayName: "p0"}),
	})
	games := m.Games()
	require.Len(t, games, 1)
	gid := games[0].ID

	for _, id := range []string{"p1", "p2", "p3"} {
		m.HandleMessage(websocket.IncomingMessage{
			From: id, Event: websocket.EventJoinGame,
			Data: raw(t, joinPayload{GameID: gid, Seeded: true, DisplayName: id}),
		})
	}
	m.HandleMessage(websocket.IncomingMessage{
		From: "p0", Event: websocket.EventStartGame,
		Data: raw(t, gameIDPayload{GameID: gid}),
	})

	require.Len(t, m.Games(), 1)
	assert.Equal(t, table.StatusBidding, m.Games()[0].Status)
	assert.Empty(t, hub.directTo("p0"), "no error should have been sent")
}

func TestHandleMessageErrorGoesToOffenderOnly(t *testing.T) {
	m, hub := testManager(t)

	m.HandleMessage(websocket.IncomingMessage{
		From: "p9", Event: websocket.EventJoinGame,
		Data: raw(t, joinPayload{GameID: "missing", Seeded: true}),
	})

	direct := hub.directTo("p9")
	require.Len(t, direct, 1)
	assert.Equal(t, websocket.EventError, direct[0].Event)
	assert.Empty(t, hub.directTo("p0"))
}

func TestHandleMessageGetGames(t *testing.T) {
	m, hub := testManager(t)
	fullGame(t, m)

	m.HandleMessage(websocket.IncomingMessage{From: "watcher", Event: websocket.EventGetGames})

	direct := hub.directTo("watcher")
	require.Len(t, direct, 1)
	assert.Equal(t, websocket.EventGamesUpdate, direct[0].Event)
}

func TestHandleMessageChatRelaysToRoom(t *testing.T) {
	m, hub := testManager(t)
	g := fullGame(t, m)

	m.HandleMessage(websocket.IncomingMessage{
		From: "p1", Event: websocket.EventChatMessage,
		Data: raw(t, chatPayload{GameID: g.ID, Text: "nice lead"}),
	})

	assert.Equal(t, websocket.EventChat, hub.lastRoomEvent())

	// A second chat inside the rate window is dropped silently, so the bad
	// game id never even produces an error.
	m.HandleMessage(websocket.IncomingMessage{
		From: "p1", Event: websocket.EventChatMessage,
		Data: raw(t, chatPayload{GameID: "missing", Text: "hello?"}),
	})
	assert.Empty(t, hub.directTo("p1"))
}

func TestHandleMessageUnknownEventIgnored(t *testing.T) {
	m, hub := testManager(t)
	m.HandleMessage(websocket.IncomingMessage{From: "p0", Event: "warp_cards"})
	assert.Empty(t, hub.directTo("p0"))
	assert.Empty(t, hub.roomEvents())
}
