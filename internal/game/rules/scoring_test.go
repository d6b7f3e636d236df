package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"Spades/internal/game/table"
)

func seat(position, bid, tricks int) *table.Player {
	b := bid
	return &table.Player{
		Identity:  string(rune('a' + position)),
		Position:  position,
		Bid:       &b,
		TricksWon: tricks,
	}
}

func TestScoreHandMadeBidWithBags(t *testing.T) {
	// Team 1 bids 5 combined, takes 7; team 2 bids 6, takes 6.
	players := []*table.Player{
		seat(0, 3, 4), seat(1, 4, 3), seat(2, 2, 3), seat(3, 2, 3),
	}
	hr := ScoreHand(players, 0, 0, Standard())

	assert.Equal(t, 7, hr.Team1.Tricks)
	assert.Equal(t, 5, hr.Team1.Bid)
	assert.Equal(t, 52, hr.Team1.Delta) // 5*10 + 2 bags
	assert.Equal(t, 2, hr.Team1.NewBags)

	assert.Equal(t, 6, hr.Team2.Tricks)
	assert.Equal(t, 60, hr.Team2.Delta)
	assert.Equal(t, 0, hr.Team2.NewBags)
}

func TestScoreHandFailedBid(t *testing.T) {
	players := []*table.Player{
		seat(0, 5, 2), seat(1, 3, 5), seat(2, 3, 1), seat(3, 2, 5),
	}
	hr := ScoreHand(players, 0, 0, Standard())

	// Team 1 bid 8, took 3: -80, and no bag credit for the shortfall.
	assert.Equal(t, -80, hr.Team1.Delta)
	assert.Equal(t, 0, hr.Team1.NewBags)

	// Team 2 bid 5, took 10: 50 + 5 bags.
	assert.Equal(t, 55, hr.Team2.Delta)
	assert.Equal(t, 5, hr.Team2.NewBags)
}

func TestScoreHandNilSuccess(t *testing.T) {
	// Position 0 makes a nil; partner at 2 carries the team bid.
	players := []*table.Player{
		seat(0, 0, 0), seat(1, 4, 5), seat(2, 5, 6), seat(3, 3, 2),
	}
	hr := ScoreHand(players, 0, 0, Standard())

	// +100 nil, +50 for the made 5-bid, +1 bag.
	assert.Equal(t, 151, hr.Team1.Delta)
	assert.Equal(t, 1, hr.Team1.MadeNils)
	assert.Equal(t, 1, hr.Team1.NilBids)
}

func TestScoreHandNilFailureIndependentOfPartner(t *testing.T) {
	players := []*table.Player{
		seat(0, 0, 1), seat(1, 4, 4), seat(2, 5, 6), seat(3, 3, 2),
	}
	hr := ScoreHand(players, 0, 0, Standard())

	// -100 failed nil, +50 made bid, +2 bags (7 team tricks vs 5 bid).
	assert.Equal(t, -48, hr.Team1.Delta)
	assert.Equal(t, 0, hr.Team1.MadeNils)
	assert.Equal(t, 2, hr.Team1.NewBags)
}

func TestScoreHandBagOverflow(t *testing.T) {
	// Nine bags banked, three more this hand: one -100, counter keeps 2.
	players := []*table.Player{
		seat(0, 2, 4), seat(1, 4, 4), seat(2, 2, 3), seat(3, 2, 2),
	}
	hr := ScoreHand(players, 9, 0, Standard())

	// 4*10 + 3 bags - 100 penalty.
	assert.Equal(t, -57, hr.Team1.Delta)
	assert.Equal(t, 2, hr.Team1.NewBags)
}

func TestScoreHandPure(t *testing.T) {
	players := []*table.Player{
		seat(0, 3, 4), seat(1, 4, 3), seat(2, 2, 3), seat(3, 2, 3),
	}
	first := ScoreHand(players, 4, 2, Standard())
	second := ScoreHand(players, 4, 2, Standard())
	assert.Equal(t, first, second)
}

func TestGameOver(t *testing.T) {
	rs := Standard()

	over, _ := GameOver(340, 120, rs)
	assert.False(t, over)

	over, winner := GameOver(510, 120, rs)
	assert.True(t, over)
	assert.Equal(t, 1, winner)

	over, winner = GameOver(480, 530, rs)
	assert.True(t, over)
	assert.Equal(t, 2, winner)

	// Both past the target but tied: play continues.
	over, _ = GameOver(520, 520, rs)
	assert.False(t, over)

	over, winner = GameOver(520, 540, rs)
	assert.True(t, over)
	assert.Equal(t, 2, winner)
}
