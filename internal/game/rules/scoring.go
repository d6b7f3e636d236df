package rules

import "Spades/internal/game/table"

// RuleSet holds the scoring constants. The standard values are the ones
// everyone knows; they are process-wide configurable, not per game.
type RuleSet struct {
	WinTarget  int // cumulative score that ends the game
	BidPoints  int // points per bid trick when the bid is made
	BagPoints  int // points per overtrick
	NilBonus   int // bonus for a made nil, penalty for a failed one
	BagLimit   int // bags that trigger the penalty
	BagPenalty int // points lost when the bag limit is reached
}

// Standard returns the usual 500-point ruleset.
func Standard() RuleSet {
	return RuleSet{
		WinTarget:  500,
		BidPoints:  10,
		BagPoints:  1,
		NilBonus:   100,
		BagLimit:   10,
		BagPenalty: 100,
	}
}

// TeamResult is one team's outcome for a single completed hand.
type TeamResult struct {
	Tricks   int `json:"tricks"`
	Bid      int `json:"bid"` // sum of non-nil bids
	NilBids  int `json:"nilBids"`
	MadeNils int `json:"madeNils"`
	Delta    int `json:"delta"`   // score change, bag penalty included
	NewBags  int `json:"newBags"` // running bag counter after this hand
}

// HandResult pairs both teams' outcomes.
type HandResult struct {
	Team1 TeamResult `json:"team1"`
	Team2 TeamResult `json:"team2"`
}

// ScoreHand computes both teams' score deltas for a completed hand. Pure:
// it reads the players' final bids/trick counts and each team's running
// bag counter, and returns the deltas plus the new bag counters without
// touching any of its inputs.
func ScoreHand(players []*table.Player, team1Bags, team2Bags int, rs RuleSet) HandResult {
	return HandResult{
		Team1: scoreTeam(players, 1, team1Bags, rs),
		Team2: scoreTeam(players, 2, team2Bags, rs),
	}
}

func scoreTeam(players []*table.Player, team, bags int, rs RuleSet) TeamResult {
	res := TeamResult{NewBags: bags}
	for _, p := range players {
		if p.Team() != team {
			continue
		}
		res.Tricks += p.TricksWon
		if p.Bid == nil {
			continue
		}
		if *p.Bid == 0 {
			res.NilBids++
			if p.TricksWon == 0 {
				res.MadeNils++
				res.Delta += rs.NilBonus
			} else {
				res.Delta -= rs.NilBonus
			}
			continue
		}
		res.Bid += *p.Bid
	}

	if res.Bid > 0 {
		if res.Tricks >= res.Bid {
			overtricks := res.Tricks - res.Bid
			res.Delta += rs.BidPoints*res.Bid + rs.BagPoints*overtricks
			res.NewBags += overtricks
		} else {
			res.Delta -= rs.BidPoints * res.Bid
		}
	}

	// Bag overflow: each full limit costs the penalty once. Not reachable
	// twice in a 13-trick hand, but the loop keeps the counter honest.
	for res.NewBags >= rs.BagLimit {
		res.Delta -= rs.BagPenalty
		res.NewBags -= rs.BagLimit
	}
	return res
}

// GameOver decides whether the game ends on these cumulative scores. A
// team wins at the target unless both teams are at or past it with equal
// scores, in which case play continues to break the tie.
func GameOver(team1Score, team2Score int, rs RuleSet) (over bool, winner int) {
	if team1Score < rs.WinTarget && team2Score < rs.WinTarget {
		return false, 0
	}
	if team1Score == team2Score {
		// Both past the target and tied: play on.
		return false, 0
	}
	if team1Score > team2Score {
		return true, 1
	}
	return true, 2
}
