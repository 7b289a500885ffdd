package tournament

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gosimple/slug"

	"github.com/chainplay/arenabot/src/domain/shared"
)

// GameType tags which games feed a tournament's scoring.
type GameType string

const (
	GameDice     GameType = "dice"
	GameCoinflip GameType = "coinflip"
	GameMixed    GameType = "mixed"
)

// ParseGameType normalizes a user-supplied game tag.
func ParseGameType(s string) (GameType, error) {
	switch GameType(s) {
	case GameDice, GameCoinflip, GameMixed:
		return GameType(s), nil
	}
	return "", fmt.Errorf("unknown game type %q (want dice, coinflip or mixed)", s)
}

// State represents the lifecycle state. Transitions are monotonic:
// upcoming -> active -> ended, with no reverse edges.
type State string

const (
	StateUpcoming State = "upcoming"
	StateActive   State = "active"
	StateEnded    State = "ended"
)

// Enrollment bounds for MaxParticipants.
const (
	MinEntrants = 2
	MaxEntrants = 100
)

// Tournament aggregate represents a time-boxed competitive event with a shared
// prize pool. All mutation goes through its methods; the store serializes those
// calls per tournament.
type Tournament struct {
	ID              shared.TournamentID
	Name            string
	Game            GameType
	EntryFee        float64
	MaxParticipants int
	StartTime       time.Time
	EndTime         time.Time
	State           State
	Participants    []shared.PlayerID
	Scores          map[shared.PlayerID]int64
	PrizePool       float64
	Winner          shared.PlayerID
	CreatedBy       shared.PlayerID
	Rules           string
	Channel         shared.ChannelID
	CreatedAt       time.Time
}

// NewTournament validates creation parameters and builds an upcoming tournament.
// The ID is derived from the slugified name plus the creation instant, so two
// tournaments with the same name still get distinct IDs. The channel is where
// lifecycle announcements go; it may be empty for tournaments created outside
// chat.
func NewTournament(
	name string,
	game GameType,
	entryFee float64,
	maxParticipants int,
	createdBy shared.PlayerID,
	rules string,
	channel shared.ChannelID,
	startTime time.Time,
	duration time.Duration,
	now time.Time,
) (*Tournament, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if _, err := ParseGameType(string(game)); err != nil {
		return nil, err
	}
	if entryFee <= 0 {
		return nil, errors.New("entry fee must be positive")
	}
	if maxParticipants < MinEntrants || maxParticipants > MaxEntrants {
		return nil, fmt.Errorf("max participants must be between %d and %d", MinEntrants, MaxEntrants)
	}
	if err := createdBy.Validate(); err != nil {
		return nil, err
	}
	if startTime.IsZero() {
		return nil, errors.New("start time is required")
	}
	if duration <= 0 {
		return nil, errors.New("duration must be positive")
	}

	id := shared.TournamentID(slug.Make(name) + "-" + strconv.FormatInt(now.UnixNano(), 10))
	return &Tournament{
		ID:              id,
		Name:            name,
		Game:            game,
		EntryFee:        entryFee,
		MaxParticipants: maxParticipants,
		StartTime:       startTime,
		EndTime:         startTime.Add(duration),
		State:           StateUpcoming,
		Participants:    []shared.PlayerID{},
		Scores:          make(map[shared.PlayerID]int64),
		CreatedBy:       createdBy,
		Rules:           rules,
		Channel:         channel,
		CreatedAt:       now,
	}, nil
}

// Join enrolls a participant. It fails without mutating state when the
// tournament is not upcoming, the participant is already enrolled, or the
// tournament is at capacity. On success the entry fee is added to the pool.
func (t *Tournament) Join(player shared.PlayerID) error {
	if err := player.Validate(); err != nil {
		return err
	}
	if t.State != StateUpcoming {
		return ErrTournamentNotOpen
	}
	if _, enrolled := t.Scores[player]; enrolled {
		return ErrParticipantAlreadyJoined
	}
	if len(t.Participants) >= t.MaxParticipants {
		return ErrTournamentFull
	}
	t.Participants = append(t.Participants, player)
	t.Scores[player] = 0
	t.PrizePool += t.EntryFee
	return nil
}

// AddScore accumulates a score delta for an enrolled participant. It reports
// false instead of erroring when the tournament is not active or the
// participant is unknown: outcome notifications are best effort and may race
// the lifecycle sweep.
func (t *Tournament) AddScore(player shared.PlayerID, delta int64) bool {
	if t.State != StateActive {
		return false
	}
	if _, enrolled := t.Scores[player]; !enrolled {
		return false
	}
	t.Scores[player] += delta
	return true
}

// Advance applies time-gated transitions. A single call moves the tournament
// as far as the clock allows, so a tournament whose start and end are both in
// the past goes straight from upcoming to ended. Finalization happens at most
// once; advancing an ended tournament is a no-op.
func (t *Tournament) Advance(now time.Time) (from, to State) {
	from = t.State
	if t.State == StateUpcoming && !now.Before(t.StartTime) {
		t.State = StateActive
	}
	if t.State == StateActive && !now.Before(t.EndTime) {
		t.finalize()
	}
	return from, t.State
}

// finalize closes out the tournament. Winner is set only when at least one
// participant enrolled.
func (t *Tournament) finalize() {
	t.State = StateEnded
	if ranked := rank(t.Participants, t.Scores); len(ranked) > 0 {
		t.Winner = ranked[0]
	}
}

// Leaderboard recomputes the ranked standings against current scores and the
// current prize pool. It is derived, never cached.
func (t *Tournament) Leaderboard() []LeaderboardEntry {
	ranked := rank(t.Participants, t.Scores)
	entries := make([]LeaderboardEntry, len(ranked))
	for i, player := range ranked {
		entries[i] = LeaderboardEntry{
			Rank:   i + 1,
			Player: player,
			Score:  t.Scores[player],
			Prize:  FormatPrize(PrizeFor(i+1, len(ranked), t.PrizePool)),
		}
	}
	return entries
}

// Snapshot returns a defensive copy safe to read outside the store's locks.
func (t *Tournament) Snapshot() Tournament {
	copied := *t
	copied.Participants = append([]shared.PlayerID(nil), t.Participants...)
	copied.Scores = make(map[shared.PlayerID]int64, len(t.Scores))
	for player, score := range t.Scores {
		copied.Scores[player] = score
	}
	return copied
}
