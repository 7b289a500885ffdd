package tournament

import (
	"context"
	"time"

	"github.com/chainplay/arenabot/src/domain/shared"
)

// Transition records one lifecycle state change applied by a sweep. Channel is
// where the tournament was created, for announcing the change.
type Transition struct {
	ID      shared.TournamentID
	From    State
	To      State
	Winner  shared.PlayerID
	Channel shared.ChannelID
}

// Store owns all live tournament aggregates plus the participant index. Every
// mutating operation on a single tournament is serialized by the
// implementation, so the capacity check-then-append and the one-shot
// finalization are each atomic.
type Store interface {
	// Add registers a newly created tournament.
	Add(ctx context.Context, t *Tournament) error
	// Get returns a snapshot of one tournament.
	Get(ctx context.Context, id shared.TournamentID) (Tournament, error)
	// Join enrolls a participant and returns the post-join snapshot.
	Join(ctx context.Context, id shared.TournamentID, player shared.PlayerID) (Tournament, error)
	// AddScore applies a score delta, reporting false when the outcome is
	// ignored (unknown tournament, inactive state, or unknown participant).
	AddScore(ctx context.Context, id shared.TournamentID, player shared.PlayerID, delta int64) bool
	// Advance sweeps every tournament once against the given instant and
	// returns the transitions that occurred. Scan order is unspecified.
	Advance(ctx context.Context, now time.Time) []Transition
	// List returns snapshots of all tournaments.
	List(ctx context.Context) ([]Tournament, error)
	// ListByParticipant returns snapshots of the tournaments a player joined.
	ListByParticipant(ctx context.Context, player shared.PlayerID) ([]Tournament, error)
}
