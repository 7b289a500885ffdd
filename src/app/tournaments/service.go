package tournaments

import (
	"context"
	"sort"
	"time"

	"github.com/chainplay/arenabot/src/domain/shared"
	"github.com/chainplay/arenabot/src/domain/tournament"
)

// DefaultJoinLead is how far in the future a new tournament's start time is
// scheduled, leaving an enrollment window before activation.
const DefaultJoinLead = 5 * time.Minute

// Service coordinates tournament operations over the store. All methods are
// in-memory and fast; callers own timeout and cancellation policy.
type Service struct {
	Store    tournament.Store
	Clock    func() time.Time
	JoinLead time.Duration
}

// NewService creates a tournament service with production defaults.
func NewService(store tournament.Store) *Service {
	return &Service{
		Store:    store,
		Clock:    func() time.Time { return time.Now().UTC() },
		JoinLead: DefaultJoinLead,
	}
}

// CreateCommand contains parameters for creating a tournament.
type CreateCommand struct {
	Name            string
	Game            string
	EntryFee        float64
	MaxParticipants int
	DurationHours   float64
	CreatedBy       shared.PlayerID
	Rules           string
	Channel         shared.ChannelID
}

// Create validates the request and registers a new upcoming tournament whose
// start time is the current time plus the join lead.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (tournament.Tournament, error) {
	game, err := tournament.ParseGameType(cmd.Game)
	if err != nil {
		return tournament.Tournament{}, err
	}

	now := s.Clock()
	t, err := tournament.NewTournament(
		cmd.Name,
		game,
		cmd.EntryFee,
		cmd.MaxParticipants,
		cmd.CreatedBy,
		cmd.Rules,
		cmd.Channel,
		now.Add(s.JoinLead),
		time.Duration(cmd.DurationHours*float64(time.Hour)),
		now,
	)
	if err != nil {
		return tournament.Tournament{}, err
	}
	// Snapshot before publishing: once Add returns, concurrent joins and
	// sweeps may reach the aggregate.
	snap := t.Snapshot()
	if err := s.Store.Add(ctx, t); err != nil {
		return tournament.Tournament{}, err
	}
	return snap, nil
}

// Join enrolls a participant in an upcoming tournament.
func (s *Service) Join(ctx context.Context, id shared.TournamentID, player shared.PlayerID) (tournament.Tournament, error) {
	if err := id.Validate(); err != nil {
		return tournament.Tournament{}, err
	}
	if err := player.Validate(); err != nil {
		return tournament.Tournament{}, err
	}
	return s.Store.Join(ctx, id, player)
}

// RecordOutcome converts a pushed game result into a score delta and applies
// it. The return value reports accepted or ignored; late or misaddressed
// outcomes are dropped silently because the feed is best effort and may race
// the lifecycle sweep.
func (s *Service) RecordOutcome(ctx context.Context, o tournament.Outcome) bool {
	if o.TournamentID.Validate() != nil || o.Participant.Validate() != nil {
		return false
	}
	return s.Store.AddScore(ctx, o.TournamentID, o.Participant, tournament.ScoreDelta(o))
}

// Get returns a snapshot of one tournament.
func (s *Service) Get(ctx context.Context, id shared.TournamentID) (tournament.Tournament, error) {
	if err := id.Validate(); err != nil {
		return tournament.Tournament{}, err
	}
	return s.Store.Get(ctx, id)
}

// ListActive returns upcoming and active tournaments sorted by start time.
func (s *Service) ListActive(ctx context.Context) ([]tournament.Tournament, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, t := range all {
		if t.State == tournament.StateUpcoming || t.State == tournament.StateActive {
			active = append(active, t)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].StartTime.Before(active[j].StartTime) })
	return active, nil
}

// Leaderboard recomputes the ranked standings for one tournament.
func (s *Service) Leaderboard(ctx context.Context, id shared.TournamentID) ([]tournament.LeaderboardEntry, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Leaderboard(), nil
}

// ListFor returns the tournaments a player has joined.
func (s *Service) ListFor(ctx context.Context, player shared.PlayerID) ([]tournament.Tournament, error) {
	if err := player.Validate(); err != nil {
		return nil, err
	}
	return s.Store.ListByParticipant(ctx, player)
}

// Sweep advances every tournament against the current clock and returns the
// transitions that occurred. It is driven by the recurring lifecycle job.
func (s *Service) Sweep(ctx context.Context) []tournament.Transition {
	return s.Store.Advance(ctx, s.Clock())
}
