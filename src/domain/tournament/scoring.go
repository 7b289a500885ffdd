package tournament

import (
	"math"
	"sort"
	"strconv"

	"github.com/chainplay/arenabot/src/domain/shared"
)

// Scores are kept in fixed-point hundredths so ranking never compares
// fractional values. The multiplier and flooring rule are part of the
// deterministic-ranking contract.
const scoreScale = 100

// PrizePrecision is the number of decimal places in rendered prize amounts.
const PrizePrecision = 4

// prizeShares is the fixed payout split over the current pool: rank 1 takes
// 50%, rank 2 takes 30% with two or more entrants, rank 3 takes 20% with three
// or more. A single-entrant tournament pays 50% and leaves the rest
// unallocated; that is current policy, not an accident.
var prizeShares = []float64{0.50, 0.30, 0.20}

// Outcome is one best-effort game result pushed by an external game collaborator.
type Outcome struct {
	TournamentID shared.TournamentID
	Participant  shared.PlayerID
	Game         GameType
	Win          bool
	BetAmount    float64
	PayoutAmount float64
}

// LeaderboardEntry is one derived row of the ranked standings.
type LeaderboardEntry struct {
	Rank   int
	Player shared.PlayerID
	Score  int64
	Prize  string
}

// ScoreDelta converts a game outcome into a score contribution. Losses score
// zero. Wins score floor(payout * 100), with the payout defaulting to twice
// the wager when the feed omits it.
func ScoreDelta(o Outcome) int64 {
	if !o.Win {
		return 0
	}
	payout := o.PayoutAmount
	if payout <= 0 {
		payout = 2 * o.BetAmount
	}
	return int64(math.Floor(payout * scoreScale))
}

// PrizeFor returns the absolute prize for a 1-based rank given the entrant
// count and the current pool. Percentages always apply to the pool as it
// stands now, so late joiners raise every prize until the tournament ends.
func PrizeFor(rank, entrants int, pool float64) float64 {
	if rank < 1 || rank > len(prizeShares) || rank > entrants {
		return 0
	}
	return pool * prizeShares[rank-1]
}

// FormatPrize renders a prize amount at fixed precision.
func FormatPrize(amount float64) string {
	return strconv.FormatFloat(amount, 'f', PrizePrecision, 64)
}

// rank orders participants by descending score. The sort is stable over
// enrollment order, so on an exact score tie the earlier joiner ranks higher.
// This gives every caller the same deterministic total order.
func rank(participants []shared.PlayerID, scores map[shared.PlayerID]int64) []shared.PlayerID {
	ranked := append([]shared.PlayerID(nil), participants...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})
	return ranked
}
