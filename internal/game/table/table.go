package table

import (
	"time"

	"Spades/internal/game/deck"
)

// Status of a game. WAITING games are joinable; everything else requires
// exactly four seated players.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusBidding  Status = "BIDDING"
	StatusPlaying  Status = "PLAYING"
	StatusFinished Status = "FINISHED"
)

// PlayerSpec is how a seat request describes the person sitting down.
// Real players are resolved against the identity directory at join time;
// seeded players carry their own profile (used by tests and bots).
type PlayerSpec struct {
	Identity    string
	Seeded      bool
	DisplayName string
	AvatarRef   string
}

// Player is one occupied seat. Team is derived from Position and never
// stored on its own; Position is assigned once and immutable after that.
type Player struct {
	Identity    string      `json:"identity"`
	DisplayName string      `json:"displayName"`
	AvatarRef   string      `json:"avatarRef,omitempty"`
	Position    int         `json:"position"`
	Hand        []deck.Card `json:"hand"`
	TricksWon   int         `json:"tricksWon"`
	Bid         *int        `json:"bid"`
	IsDealer    bool        `json:"isDealer"`
}

// TeamOf maps a seat position to its partnership: 0/2 are team 1, 1/3 team 2.
func TeamOf(position int) int {
	if position%2 == 0 {
		return 1
	}
	return 2
}

// Team of this player, derived from position.
func (p *Player) Team() int { return TeamOf(p.Position) }

// HasSuit reports whether the hand holds at least one card of the suit.
func (p *Player) HasSuit(s deck.Suit) bool {
	for _, c := range p.Hand {
		if c.Suit == s {
			return true
		}
	}
	return false
}

// HasCard reports whether the exact card is in the hand.
func (p *Player) HasCard(card deck.Card) bool {
	for _, c := range p.Hand {
		if c == card {
			return true
		}
	}
	return false
}

// RemoveCard takes the card out of the hand. Returns false if absent.
func (p *Player) RemoveCard(card deck.Card) bool {
	for i, c := range p.Hand {
		if c == card {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// PlayedCard is a card on the table plus who put it there. Trick
// attribution always goes through PlayedBy*, never through array order.
type PlayedCard struct {
	deck.Card
	PlayedBy         string `json:"playedBy"`
	PlayedByPosition int    `json:"playedByPosition"`
}

// CompletedTrick keeps a resolved trick and its winner.
type CompletedTrick struct {
	Cards  []PlayedCard `json:"cards"`
	Winner string       `json:"winner"`
}

// Game is the aggregate for one table. All mutation happens on the owning
// engine goroutine; everything handed outside is a Clone.
type Game struct {
	ID              string           `json:"id"`
	Status          Status           `json:"status"`
	Players         []*Player        `json:"players"`
	CurrentPlayer   string           `json:"currentPlayer"`
	CurrentTrick    []PlayedCard     `json:"currentTrick"`
	CompletedTricks []CompletedTrick `json:"completedTricks"`
	SpadesBroken    bool             `json:"spadesBroken"`
	DealerPosition  int              `json:"dealerPosition"`
	Team1Score      int              `json:"team1Score"`
	Team2Score      int              `json:"team2Score"`
	Team1Bags       int              `json:"team1Bags"`
	Team2Bags       int              `json:"team2Bags"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// New creates a WAITING game with the creator seated at position 0.
func New(id string, creator *Player) *Game {
	creator.Position = 0
	return &Game{
		ID:        id,
		Status:    StatusWaiting,
		Players:   []*Player{creator},
		CreatedAt: time.Now(),
	}
}

// PlayerByIdentity returns the seat held by the identity, or nil.
func (g *Game) PlayerByIdentity(identity string) *Player {
	for _, p := range g.Players {
		if p.Identity == identity {
			return p
		}
	}
	return nil
}

// PlayerByPosition returns the occupant of the position, or nil.
func (g *Game) PlayerByPosition(position int) *Player {
	for _, p := range g.Players {
		if p.Position == position {
			return p
		}
	}
	return nil
}

// Creator is the occupant of position 0, or nil if that seat is empty.
func (g *Game) Creator() *Player { return g.PlayerByPosition(0) }

// Identities of every seated player, in seat order.
func (g *Game) Identities() []string {
	ids := make([]string, 0, len(g.Players))
	for pos := 0; pos < deck.Seats; pos++ {
		if p := g.PlayerByPosition(pos); p != nil {
			ids = append(ids, p.Identity)
		}
	}
	return ids
}

// AssignPosition picks the seat for a joining player. An explicit request
// outside [0,3] is ErrInvalidPosition, an occupied request ErrPositionTaken;
// with no request the lowest unused position is allocated.
func (g *Game) AssignPosition(requested *int) (int, error) {
	if requested != nil {
		if *requested < 0 || *requested >= deck.Seats {
			return 0, ErrInvalidPosition
		}
		if g.PlayerByPosition(*requested) != nil {
			return 0, ErrPositionTaken
		}
		return *requested, nil
	}
	for pos := 0; pos < deck.Seats; pos++ {
		if g.PlayerByPosition(pos) == nil {
			return pos, nil
		}
	}
	return 0, ErrGameFull
}

// Seat adds a player at the given, already validated, position.
func (g *Game) Seat(p *Player, position int) {
	p.Position = position
	g.Players = append(g.Players, p)
}

// Unseat removes the identity's seat. The freed position becomes
// claimable by the next join.
func (g *Game) Unseat(identity string) bool {
	for i, p := range g.Players {
		if p.Identity == identity {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			return true
		}
	}
	return false
}

// BidsComplete reports whether all four seats have bid this hand.
func (g *Game) BidsComplete() bool {
	if len(g.Players) != deck.Seats {
		return false
	}
	for _, p := range g.Players {
		if p.Bid == nil {
			return false
		}
	}
	return true
}

// HandsEmpty reports whether every hand has been played out.
func (g *Game) HandsEmpty() bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// TeamScore returns the running score for team 1 or 2.
func (g *Game) TeamScore(team int) int {
	if team == 1 {
		return g.Team1Score
	}
	return g.Team2Score
}

// Clone makes a deep copy safe to hand to broadcast readers while the
// engine goroutine keeps mutating the original.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		pc := *p
		pc.Hand = append([]deck.Card(nil), p.Hand...)
		if p.Bid != nil {
			b := *p.Bid
			pc.Bid = &b
		}
		cp.Players[i] = &pc
	}
	cp.CurrentTrick = append([]PlayedCard(nil), g.CurrentTrick...)
	cp.CompletedTricks = make([]CompletedTrick, len(g.CompletedTricks))
	for i, t := range g.CompletedTricks {
		cp.CompletedTricks[i] = CompletedTrick{
			Cards:  append([]PlayedCard(nil), t.Cards...),
			Winner: t.Winner,
		}
	}
	return &cp
}
