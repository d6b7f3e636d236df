package rules

import (
	"Spades/internal/game/deck"
	"Spades/internal/game/table"
)

// ResolveTrick returns the index of the winning card in a completed
// four-card trick. Spades trump everything once played: if any spade is
// present the highest spade wins, otherwise the highest card of the lead
// suit. Pure function; ties are impossible in a single deck.
func ResolveTrick(trick []table.PlayedCard) int {
	lead := trick[0].Suit
	winner := 0
	for i := 1; i < len(trick); i++ {
		if beats(trick[i].Card, trick[winner].Card, lead) {
			winner = i
		}
	}
	return winner
}

// beats reports whether a ranks above b given the lead suit.
func beats(a, b deck.Card, lead deck.Suit) bool {
	if a.Suit == b.Suit {
		return a.Rank > b.Rank
	}
	if a.Suit == deck.Spades {
		return true
	}
	if b.Suit == deck.Spades {
		return false
	}
	// Off-suit, non-spade cards never beat the lead suit.
	return a.Suit == lead && b.Suit != lead
}

// CheckPlay validates a card against the lead/follow rules.
//
// Leading: spades may be led only once broken, or when the hand holds
// nothing but spades. Following: the lead suit must be followed when the
// hand holds it; otherwise any card goes.
func CheckPlay(p *table.Player, trick []table.PlayedCard, card deck.Card, spadesBroken bool) error {
	if len(trick) == 0 {
		if card.Suit == deck.Spades && !spadesBroken && !allSpades(p.Hand) {
			return table.ErrIllegalCard
		}
		return nil
	}
	lead := trick[0].Suit
	if card.Suit != lead && p.HasSuit(lead) {
		return table.ErrIllegalCard
	}
	return nil
}

func allSpades(hand []deck.Card) bool {
	for _, c := range hand {
		if c.Suit != deck.Spades {
			return false
		}
	}
	return true
}
