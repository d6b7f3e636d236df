package websocket

import (
	"sync"

	"github.com/charmbracelet/log"
)

// HubInterface is the slice of hub behavior the game layer depends on.
type HubInterface interface {
	BroadcastToPlayers(identities []string, msg OutgoingMessage)
	BroadcastToLobby(msg OutgoingMessage)
	SendToPlayer(identity string, msg OutgoingMessage)
	ClosePrevious(keep *Client)
	Close()
}

// Hub routes messages between connections. A logical identity may hold
// several live connections at once (new tab, flaky reconnect); every one
// of them gets the identity's messages until evicted.
type Hub struct {
	log        *log.Logger
	clients    map[string]map[*Client]struct{} // identity -> live connections
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastReq
	lobbycast  chan OutgoingMessage
	sendOne    chan sendReq
	evict      chan *Client
	incoming   chan IncomingMessage
	OnIncoming func(IncomingMessage)
	quit       chan struct{}
	mu         sync.RWMutex
}

type broadcastReq struct {
	Identities []string
	Message    OutgoingMessage
}

type sendReq struct {
	Identity string
	Message  OutgoingMessage
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		log:        logger,
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastReq),
		lobbycast:  make(chan OutgoingMessage),
		sendOne:    make(chan sendReq),
		evict:      make(chan *Client),
		incoming:   make(chan IncomingMessage),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	h.log.Info("hub started")
	go h.dispatch()

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[c.Identity]; !ok {
				h.clients[c.Identity] = make(map[*Client]struct{})
			}
			h.clients[c.Identity][c] = struct{}{}
			h.mu.Unlock()
			h.log.Info("connection registered", "identity", c.Identity, "conns", h.ConnCount(c.Identity))

		case c := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[c.Identity]; ok {
				if _, live := conns[c]; live {
					delete(conns, c)
					close(c.Send)
					if len(conns) == 0 {
						delete(h.clients, c.Identity)
					}
				}
			}
			h.mu.Unlock()
			h.log.Info("connection unregistered", "identity", c.Identity)

		case req := <-h.broadcast:
			for _, id := range req.Identities {
				h.deliver(id, req.Message)
			}

		case msg := <-h.lobbycast:
			h.mu.RLock()
			ids := make([]string, 0, len(h.clients))
			for id := range h.clients {
				ids = append(ids, id)
			}
			h.mu.RUnlock()
			for _, id := range ids {
				h.deliver(id, msg)
			}

		case req := <-h.sendOne:
			h.deliver(req.Identity, req.Message)

		case keep := <-h.evict:
			h.mu.Lock()
			if conns, ok := h.clients[keep.Identity]; ok {
				for c := range conns {
					if c == keep {
						continue
					}
					delete(conns, c)
					close(c.Send)
				}
			}
			h.mu.Unlock()
			h.log.Info("stale connections closed", "identity", keep.Identity)

		case <-h.quit:
			h.mu.Lock()
			for _, conns := range h.clients {
				for c := range conns {
					close(c.Send)
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			h.mu.Unlock()
			return
		}
	}
}

// dispatch drains incoming client actions on its own goroutine. The sink
// sends back into the hub's channels (broadcasts, error unicasts), so it
// must never run on the goroutine that services them.
func (h *Hub) dispatch() {
	for {
		select {
		case req := <-h.incoming:
			if h.OnIncoming != nil {
				h.OnIncoming(req)
			}
		case <-h.quit:
			return
		}
	}
}

// deliver fans one message out to every connection of an identity. A full
// send buffer means a stalled consumer; the message is dropped for that
// connection rather than blocking the hub.
func (h *Hub) deliver(identity string, msg OutgoingMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[identity] {
		select {
		case c.Send <- msg:
		default:
		}
	}
}

// Register adds a live connection for its identity.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Receive hands a decoded client action to the incoming sink.
func (h *Hub) Receive(msg IncomingMessage) {
	h.incoming <- msg
}

// BroadcastToPlayers sends to every connection of each listed identity.
func (h *Hub) BroadcastToPlayers(identities []string, msg OutgoingMessage) {
	h.broadcast <- broadcastReq{Identities: identities, Message: msg}
}

// BroadcastToLobby sends to every registered connection; anyone connected
// is a lobby viewer.
func (h *Hub) BroadcastToLobby(msg OutgoingMessage) {
	h.lobbycast <- msg
}

// SendToPlayer sends to a single identity (all of its connections).
func (h *Hub) SendToPlayer(identity string, msg OutgoingMessage) {
	h.sendOne <- sendReq{Identity: identity, Message: msg}
}

// ClosePrevious evicts every other connection the identity holds. The
// requesting connection is never touched; repeating the call is harmless.
func (h *Hub) ClosePrevious(keep *Client) {
	h.evict <- keep
}

// ConnCount reports the live connection count for an identity.
func (h *Hub) ConnCount(identity string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[identity])
}

func (h *Hub) Close() {
	close(h.quit)
}
