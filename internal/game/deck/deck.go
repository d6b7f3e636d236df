package deck

import (
	"fmt"
	"math/rand"
)

// Suit of a card. Single-letter values so they round-trip cleanly over JSON.
type Suit string

const (
	Spades   Suit = "S"
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
)

var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Card rank runs 2..14 with 11=J, 12=Q, 13=K, 14=A.
const (
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
	RankAce   = 14

	MinRank = 2
	MaxRank = 14
)

// Card is an immutable value; nothing owns a Card beyond the hand or
// trick collection currently holding it.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// Valid reports whether the card is one of the 52 real cards.
func (c Card) Valid() bool {
	switch c.Suit {
	case Spades, Hearts, Diamonds, Clubs:
	default:
		return false
	}
	return c.Rank >= MinRank && c.Rank <= MaxRank
}

var rankNames = map[int]string{
	RankJack:  "J",
	RankQueen: "Q",
	RankKing:  "K",
	RankAce:   "A",
}

var suitGlyphs = map[Suit]string{
	Spades:   "♠",
	Hearts:   "♥",
	Diamonds: "♦",
	Clubs:    "♣",
}

func (c Card) String() string {
	r, ok := rankNames[c.Rank]
	if !ok {
		r = fmt.Sprintf("%d", c.Rank)
	}
	g, ok := suitGlyphs[c.Suit]
	if !ok {
		g = "?"
	}
	return r + g
}

// HandSize is the number of cards each seat receives.
const HandSize = 13

// Seats at a spades table.
const Seats = 4

// New returns the full 52-card deck in suit/rank order.
func New() []Card {
	cards := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := MinRank; r <= MaxRank; r++ {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	return cards
}

// NewShuffled returns a freshly built deck in a uniformly random order.
func NewShuffled(rng *rand.Rand) []Card {
	cards := New()
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}

// Deal partitions a 52-card deck into four 13-card hands, index = seat
// position. The input slice is not retained.
func Deal(cards []Card) ([Seats][]Card, error) {
	var hands [Seats][]Card
	if len(cards) != Seats*HandSize {
		return hands, fmt.Errorf("deal: expected %d cards, got %d", Seats*HandSize, len(cards))
	}
	for pos := 0; pos < Seats; pos++ {
		hand := make([]Card, HandSize)
		copy(hand, cards[pos*HandSize:(pos+1)*HandSize])
		hands[pos] = hand
	}
	return hands, nil
}
