package tournament

import (
	"context"
	"sync"
	"time"

	"github.com/chainplay/arenabot/src/domain/shared"
	"github.com/chainplay/arenabot/src/domain/tournament"
)

// record pairs an aggregate with the mutex that serializes its mutations.
// Lock order: the store map lock is never held while a record lock is held.
type record struct {
	mu sync.Mutex
	t  *tournament.Tournament
}

// MemoryStore implements tournament.Store with in-process storage. The map
// lock guards the two maps only; each tournament carries its own mutex so that
// join capacity checks and the one-shot finalization stay atomic without
// serializing unrelated tournaments.
type MemoryStore struct {
	mu          sync.RWMutex
	tournaments map[shared.TournamentID]*record
	byPlayer    map[shared.PlayerID][]shared.TournamentID
}

// NewMemoryStore creates an empty in-memory tournament store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tournaments: make(map[shared.TournamentID]*record),
		byPlayer:    make(map[shared.PlayerID][]shared.TournamentID),
	}
}

// Add registers a newly created tournament.
func (s *MemoryStore) Add(ctx context.Context, t *tournament.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tournaments[t.ID]; exists {
		return shared.ErrConflict
	}
	s.tournaments[t.ID] = &record{t: t}
	return nil
}

// Get returns a snapshot of one tournament.
func (s *MemoryStore) Get(ctx context.Context, id shared.TournamentID) (tournament.Tournament, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return tournament.Tournament{}, tournament.ErrTournamentNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.t.Snapshot(), nil
}

// Join enrolls a participant and keeps the participant index in lockstep. The
// index is an accelerator only; the aggregate's participant list stays the
// source of truth.
func (s *MemoryStore) Join(ctx context.Context, id shared.TournamentID, player shared.PlayerID) (tournament.Tournament, error) {
	rec, ok := s.lookup(id)
	if !ok {
		return tournament.Tournament{}, tournament.ErrTournamentNotFound
	}

	rec.mu.Lock()
	err := rec.t.Join(player)
	snap := rec.t.Snapshot()
	rec.mu.Unlock()
	if err != nil {
		return tournament.Tournament{}, err
	}

	s.mu.Lock()
	s.byPlayer[player] = append(s.byPlayer[player], id)
	s.mu.Unlock()
	return snap, nil
}

// AddScore applies a score delta, reporting false when the outcome is ignored.
func (s *MemoryStore) AddScore(ctx context.Context, id shared.TournamentID, player shared.PlayerID, delta int64) bool {
	rec, ok := s.lookup(id)
	if !ok {
		return false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.t.AddScore(player, delta)
}

// Advance sweeps every tournament once against the given instant. Transitions
// are independent per tournament; scan order is unspecified.
func (s *MemoryStore) Advance(ctx context.Context, now time.Time) []tournament.Transition {
	var transitions []tournament.Transition
	for _, rec := range s.records() {
		rec.mu.Lock()
		from, to := rec.t.Advance(now)
		if from != to {
			transitions = append(transitions, tournament.Transition{
				ID:      rec.t.ID,
				From:    from,
				To:      to,
				Winner:  rec.t.Winner,
				Channel: rec.t.Channel,
			})
		}
		rec.mu.Unlock()
	}
	return transitions
}

// List returns snapshots of all tournaments.
func (s *MemoryStore) List(ctx context.Context) ([]tournament.Tournament, error) {
	recs := s.records()
	out := make([]tournament.Tournament, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, rec.t.Snapshot())
		rec.mu.Unlock()
	}
	return out, nil
}

// ListByParticipant returns snapshots of the tournaments a player joined.
func (s *MemoryStore) ListByParticipant(ctx context.Context, player shared.PlayerID) ([]tournament.Tournament, error) {
	s.mu.RLock()
	ids := append([]shared.TournamentID(nil), s.byPlayer[player]...)
	s.mu.RUnlock()

	out := make([]tournament.Tournament, 0, len(ids))
	for _, id := range ids {
		if snap, err := s.Get(ctx, id); err == nil {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *MemoryStore) lookup(id shared.TournamentID) (*record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tournaments[id]
	return rec, ok
}

func (s *MemoryStore) records() []*record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]*record, 0, len(s.tournaments))
	for _, rec := range s.tournaments {
		recs = append(recs, rec)
	}
	return recs
}
