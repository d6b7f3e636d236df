package engine

import (
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"

	"Spades/internal/game/deck"
	"Spades/internal/game/rules"
	"Spades/internal/game/table"
)

type actionKind int

const (
	actJoin actionKind = iota
	actStart
	actBid
	actPlay
	actLeave
	actSnapshot
)

type action struct {
	kind     actionKind
	identity string
	player   *table.Player // join
	position *int          // join
	bid      int
	card     deck.Card
	resp     chan Result
}

// Result is what an action hands back to the dispatcher. Game is always a
// deep copy; the engine goroutine keeps sole ownership of the live aggregate.
type Result struct {
	Game     *table.Game
	Removed  bool // game must be dropped from the registry
	Finished bool
	Winner   int // 1 or 2 when Finished
	Err      error
}

// Engine owns one Game aggregate and serializes every mutation through a
// single goroutine, so bid/play/join/leave/start never interleave on the
// same table. One engine crashing is one game lost, not the process.
type Engine struct {
	log      *log.Logger
	rules    rules.RuleSet
	rng      *rand.Rand
	game     *table.Game
	actions  chan action
	done     chan struct{}
	stopOnce sync.Once
}

// New builds an engine around a freshly created game. The rng seeds the
// shuffle and the dealer draw; tests pass a fixed seed.
func New(g *table.Game, rs rules.RuleSet, seed int64, logger *log.Logger) *Engine {
	return &Engine{
		log:     logger,
		rules:   rs,
		rng:     rand.New(rand.NewSource(seed)),
		game:    g,
		actions: make(chan action, 32),
		done:    make(chan struct{}),
	}
}

// Run consumes actions until Stop. Meant for `go eng.Run()`.
func (e *Engine) Run() {
	for {
		select {
		case a := <-e.actions:
			a.resp <- e.apply(a)
		case <-e.done:
			return
		}
	}
}

// Stop shuts the action loop down. Safe to call more than once; the
// manager removes the engine from the registry before stopping it.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.done) })
}

func (e *Engine) dispatch(a action) Result {
	a.resp = make(chan Result, 1)
	select {
	case e.actions <- a:
	case <-e.done:
		return Result{Err: table.ErrGameNotFound}
	}
	select {
	case res := <-a.resp:
		return res
	case <-e.done:
		return Result{Err: table.ErrGameNotFound}
	}
}

// Join seats an already-profiled player, idempotently for a re-join.
func (e *Engine) Join(p *table.Player, requestedPos *int) Result {
	return e.dispatch(action{kind: actJoin, identity: p.Identity, player: p, position: requestedPos})
}

// Start deals the first hand; only the position-0 occupant of a full
// WAITING table may issue it.
func (e *Engine) Start(identity string) Result {
	return e.dispatch(action{kind: actStart, identity: identity})
}

// Bid records a bid (0 = nil) for the player whose turn it is.
func (e *Engine) Bid(identity string, value int) Result {
	return e.dispatch(action{kind: actBid, identity: identity, bid: value})
}

// Play plays a card for the player whose turn it is.
func (e *Engine) Play(identity string, card deck.Card) Result {
	return e.dispatch(action{kind: actPlay, identity: identity, card: card})
}

// Leave unseats the identity; creator or last player tears the game down.
func (e *Engine) Leave(identity string) Result {
	return e.dispatch(action{kind: actLeave, identity: identity})
}

// Snapshot returns a consistent deep copy of the game.
func (e *Engine) Snapshot() *table.Game {
	return e.dispatch(action{kind: actSnapshot}).Game
}

// apply runs on the engine goroutine. A panic anywhere below is this
// game's fault alone: recover, log, answer ErrInternal.
func (e *Engine) apply(a action) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("engine fault", "game", e.game.ID, "panic", r)
			res = Result{Err: table.ErrInternal}
		}
	}()

	var err error
	switch a.kind {
	case actJoin:
		err = e.join(a.player, a.position)
	case actStart:
		err = e.start(a.identity)
	case actBid:
		err = e.placeBid(a.identity, a.bid)
	case actPlay:
		res, err = e.playCard(a.identity, a.card)
	case actLeave:
		res, err = e.leave(a.identity)
	case actSnapshot:
	}
	res.Err = err
	res.Game = e.game.Clone()
	return res
}

func (e *Engine) join(p *table.Player, requestedPos *int) error {
	g := e.game
	if existing := g.PlayerByIdentity(p.Identity); existing != nil {
		// Client retry or reconnect: current state, no error.
		return nil
	}
	if g.Status != table.StatusWaiting {
		return table.ErrGameAlreadyStarted
	}
	if len(g.Players) >= deck.Seats {
		return table.ErrGameFull
	}
	pos, err := g.AssignPosition(requestedPos)
	if err != nil {
		return err
	}
	g.Seat(p, pos)
	e.log.Info("player joined", "game", g.ID, "identity", p.Identity, "position", pos)
	return nil
}

func (e *Engine) start(identity string) error {
	g := e.game
	if g.Status != table.StatusWaiting {
		return table.ErrInvalidGameState
	}
	if len(g.Players) != deck.Seats {
		return table.ErrInvalidGameState
	}
	creator := g.Creator()
	if creator == nil || creator.Identity != identity {
		return table.ErrUnauthorized
	}
	g.DealerPosition = e.rng.Intn(deck.Seats)
	e.startHand()
	e.log.Info("game started", "game", g.ID, "dealer", g.DealerPosition)
	return nil
}

// startHand deals a fresh hand and opens the bidding left of the dealer.
func (e *Engine) startHand() {
	g := e.game
	hands, err := deck.Deal(deck.NewShuffled(e.rng))
	if err != nil {
		panic(err) // a 52-card deck that doesn't split 4x13 is corrupt state
	}
	for pos := 0; pos < deck.Seats; pos++ {
		p := g.PlayerByPosition(pos)
		p.Hand = hands[pos]
		p.Bid = nil
		p.TricksWon = 0
		p.IsDealer = pos == g.DealerPosition
	}
	g.CurrentTrick = nil
	g.CompletedTricks = nil
	g.SpadesBroken = false
	g.Status = table.StatusBidding
	g.CurrentPlayer = g.PlayerByPosition((g.DealerPosition + 1) % deck.Seats).Identity
}

func (e *Engine) placeBid(identity string, value int) error {
	g := e.game
	if g.Status != table.StatusBidding {
		return table.ErrInvalidGameState
	}
	p := g.PlayerByIdentity(identity)
	if p == nil {
		return table.ErrPlayerNotFound
	}
	if g.CurrentPlayer != identity {
		return table.ErrNotYourTurn
	}
	if value < 0 || value > deck.HandSize {
		return table.ErrInvalidBid
	}
	bid := value
	p.Bid = &bid
	if g.BidsComplete() {
		g.Status = table.StatusPlaying
		// The seat that opened the bidding also leads the first trick.
		g.CurrentPlayer = g.PlayerByPosition((g.DealerPosition + 1) % deck.Seats).Identity
	} else {
		g.CurrentPlayer = g.PlayerByPosition((p.Position + 1) % deck.Seats).Identity
	}
	return nil
}

func (e *Engine) playCard(identity string, card deck.Card) (Result, error) {
	g := e.game
	if g.Status != table.StatusPlaying {
		return Result{}, table.ErrInvalidGameState
	}
	p := g.PlayerByIdentity(identity)
	if p == nil {
		return Result{}, table.ErrPlayerNotFound
	}
	if g.CurrentPlayer != identity {
		return Result{}, table.ErrNotYourTurn
	}
	if !card.Valid() || !p.HasCard(card) {
		return Result{}, table.ErrCardNotInHand
	}
	if err := rules.CheckPlay(p, g.CurrentTrick, card, g.SpadesBroken); err != nil {
		return Result{}, err
	}

	p.RemoveCard(card)
	g.CurrentTrick = append(g.CurrentTrick, table.PlayedCard{
		Card:             card,
		PlayedBy:         identity,
		PlayedByPosition: p.Position,
	})
	if card.Suit == deck.Spades {
		g.SpadesBroken = true
	}

	if len(g.CurrentTrick) < deck.Seats {
		g.CurrentPlayer = g.PlayerByPosition((p.Position + 1) % deck.Seats).Identity
		return Result{}, nil
	}

	// Fourth card: resolve the trick, winner leads the next one.
	winIdx := rules.ResolveTrick(g.CurrentTrick)
	winner := g.PlayerByPosition(g.CurrentTrick[winIdx].PlayedByPosition)
	winner.TricksWon++
	g.CompletedTricks = append(g.CompletedTricks, table.CompletedTrick{
		Cards:  g.CurrentTrick,
		Winner: winner.Identity,
	})
	g.CurrentTrick = nil
	g.CurrentPlayer = winner.Identity

	if !g.HandsEmpty() {
		return Result{}, nil
	}
	return e.settleHand(), nil
}

// settleHand scores the finished hand and either ends the game or rotates
// the dealer into a fresh hand.
func (e *Engine) settleHand() Result {
	g := e.game
	hr := rules.ScoreHand(g.Players, g.Team1Bags, g.Team2Bags, e.rules)
	g.Team1Score += hr.Team1.Delta
	g.Team2Score += hr.Team2.Delta
	g.Team1Bags = hr.Team1.NewBags
	g.Team2Bags = hr.Team2.NewBags
	e.log.Info("hand scored", "game", g.ID,
		"team1", g.Team1Score, "team2", g.Team2Score,
		"bags1", g.Team1Bags, "bags2", g.Team2Bags)

	over, winner := rules.GameOver(g.Team1Score, g.Team2Score, e.rules)
	if over {
		g.Status = table.StatusFinished
		g.CurrentPlayer = ""
		e.log.Info("game finished", "game", g.ID, "winner", winner)
		return Result{Finished: true, Winner: winner}
	}
	g.DealerPosition = (g.DealerPosition + 1) % deck.Seats
	e.startHand()
	return Result{}
}

func (e *Engine) leave(identity string) (Result, error) {
	g := e.game
	p := g.PlayerByIdentity(identity)
	if p == nil {
		return Result{}, table.ErrPlayerNotFound
	}
	if p.Position == 0 || len(g.Players) == 1 {
		e.log.Info("game removed", "game", g.ID, "by", identity)
		return Result{Removed: true}, nil
	}
	g.Unseat(identity)
	if g.Status != table.StatusWaiting && g.Status != table.StatusFinished {
		// A seat emptied mid-hand: abandon the hand, keep the scores, and
		// wait for a replacement. Start re-validates the 4-seat precondition.
		for _, q := range g.Players {
			q.Hand = nil
			q.Bid = nil
			q.TricksWon = 0
		}
		g.CurrentTrick = nil
		g.CompletedTricks = nil
		g.SpadesBroken = false
		g.CurrentPlayer = ""
		g.Status = table.StatusWaiting
	}
	e.log.Info("player left", "game", g.ID, "identity", identity)
	return Result{}, nil
}
