package tournaments_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chainplay/arenabot/src/app/tournaments"
	"github.com/chainplay/arenabot/src/domain/shared"
	"github.com/chainplay/arenabot/src/domain/tournament"
	memstore "github.com/chainplay/arenabot/src/infra/tournament"
)

// Mock store with overridable behavior per test.
type mockStore struct {
	addFunc               func(ctx context.Context, t *tournament.Tournament) error
	getFunc               func(ctx context.Context, id shared.TournamentID) (tournament.Tournament, error)
	joinFunc              func(ctx context.Context, id shared.TournamentID, player shared.PlayerID) (tournament.Tournament, error)
	addScoreFunc          func(ctx context.Context, id shared.TournamentID, player shared.PlayerID, delta int64) bool
	advanceFunc           func(ctx context.Context, now time.Time) []tournament.Transition
	listFunc              func(ctx context.Context) ([]tournament.Tournament, error)
	listByParticipantFunc func(ctx context.Context, player shared.PlayerID) ([]tournament.Tournament, error)
}

func (m *mockStore) Add(ctx context.Context, t *tournament.Tournament) error {
	if m.addFunc != nil {
		return m.addFunc(ctx, t)
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, id shared.TournamentID) (tournament.Tournament, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return tournament.Tournament{}, tournament.ErrTournamentNotFound
}

func (m *mockStore) Join(ctx context.Context, id shared.TournamentID, player shared.PlayerID) (tournament.Tournament, error) {
	if m.joinFunc != nil {
		return m.joinFunc(ctx, id, player)
	}
	return tournament.Tournament{}, tournament.ErrTournamentNotFound
}

func (m *mockStore) AddScore(ctx context.Context, id shared.TournamentID, player shared.PlayerID, delta int64) bool {
	if m.addScoreFunc != nil {
		return m.addScoreFunc(ctx, id, player, delta)
	}
	return false
}

func (m *mockStore) Advance(ctx context.Context, now time.Time) []tournament.Transition {
	if m.advanceFunc != nil {
		return m.advanceFunc(ctx, now)
	}
	return nil
}

func (m *mockStore) List(ctx context.Context) ([]tournament.Tournament, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) ListByParticipant(ctx context.Context, player shared.PlayerID) ([]tournament.Tournament, error) {
	if m.listByParticipantFunc != nil {
		return m.listByParticipantFunc(ctx, player)
	}
	return nil, nil
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cmd     tournaments.CreateCommand
		wantErr bool
	}{
		{
			name: "valid creation",
			cmd: tournaments.CreateCommand{
				Name: "Friday Cup", Game: "dice", EntryFee: 0.01,
				MaxParticipants: 10, DurationHours: 2, CreatedBy: "0xcreator",
			},
		},
		{
			name: "unknown game",
			cmd: tournaments.CreateCommand{
				Name: "Friday Cup", Game: "poker", EntryFee: 0.01,
				MaxParticipants: 10, DurationHours: 2, CreatedBy: "0xcreator",
			},
			wantErr: true,
		},
		{
			name: "non-positive fee",
			cmd: tournaments.CreateCommand{
				Name: "Friday Cup", Game: "dice", EntryFee: -1,
				MaxParticipants: 10, DurationHours: 2, CreatedBy: "0xcreator",
			},
			wantErr: true,
		},
		{
			name: "zero duration",
			cmd: tournaments.CreateCommand{
				Name: "Friday Cup", Game: "dice", EntryFee: 0.01,
				MaxParticipants: 10, DurationHours: 0, CreatedBy: "0xcreator",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := tournaments.NewService(&mockStore{})
			snap, err := svc.Create(ctx, tt.cmd)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if snap.State != tournament.StateUpcoming {
				t.Errorf("state = %v, want upcoming", snap.State)
			}
			if !snap.StartTime.Equal(snap.CreatedAt.Add(svc.JoinLead)) {
				t.Errorf("start time %v is not created time plus lead", snap.StartTime)
			}
			if !snap.EndTime.Equal(snap.StartTime.Add(2 * time.Hour)) {
				t.Errorf("end time %v is not start plus duration", snap.EndTime)
			}
		})
	}
}

// Create must return a snapshot detached before the aggregate is published:
// once the store holds it, concurrent joins and sweeps may reach the new ID
// through List, and the returned value must not be read from under them.
func TestServiceCreateSnapshotDetachedFromConcurrentJoins(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewMemoryStore()
	svc := tournaments.NewService(store)

	const rounds = 20
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			snap, err := svc.Create(ctx, tournaments.CreateCommand{
				Name: fmt.Sprintf("Race Cup %d", i), Game: "dice", EntryFee: 0.01,
				MaxParticipants: 10, DurationHours: 1, CreatedBy: "0xcreator",
			})
			if err != nil {
				t.Errorf("create %d: %v", i, err)
				return
			}
			if len(snap.Participants) != 0 || snap.PrizePool != 0 {
				t.Errorf("create %d returned a post-join view: %+v", i, snap)
			}
		}(i)
		go func() {
			defer wg.Done()
			all, err := store.List(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			for _, tour := range all {
				_, _ = store.Join(ctx, tour.ID, "0xjoiner")
			}
		}()
	}
	wg.Wait()
}

func TestServiceListActive(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UTC()

	store := &mockStore{
		listFunc: func(ctx context.Context) ([]tournament.Tournament, error) {
			return []tournament.Tournament{
				{ID: "later", State: tournament.StateUpcoming, StartTime: base.Add(2 * time.Hour)},
				{ID: "done", State: tournament.StateEnded, StartTime: base.Add(-3 * time.Hour)},
				{ID: "running", State: tournament.StateActive, StartTime: base.Add(-time.Hour)},
				{ID: "soon", State: tournament.StateUpcoming, StartTime: base.Add(time.Hour)},
			}, nil
		},
	}
	svc := tournaments.NewService(store)

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []shared.TournamentID{"running", "soon", "later"}
	if len(active) != len(want) {
		t.Fatalf("got %d tournaments, want %d", len(active), len(want))
	}
	for i, id := range want {
		if active[i].ID != id {
			t.Errorf("active[%d] = %q, want %q", i, active[i].ID, id)
		}
	}
}

func TestServiceRecordOutcomeValidation(t *testing.T) {
	called := false
	store := &mockStore{
		addScoreFunc: func(ctx context.Context, id shared.TournamentID, player shared.PlayerID, delta int64) bool {
			called = true
			return true
		},
	}
	svc := tournaments.NewService(store)

	if svc.RecordOutcome(context.Background(), tournament.Outcome{Participant: "0xaaa"}) {
		t.Error("outcome without tournament id accepted")
	}
	if svc.RecordOutcome(context.Background(), tournament.Outcome{TournamentID: "cup-1"}) {
		t.Error("outcome without participant accepted")
	}
	if called {
		t.Error("store reached with invalid outcome")
	}
}

// Full lifecycle against the real in-memory store: create, enroll three
// players, report two identical wins, sweep past the deadline, and check the
// final standings and prize.
func TestServiceLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewMemoryStore()
	svc := tournaments.NewService(store)

	current := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.Clock = func() time.Time { return current }

	snap, err := svc.Create(ctx, tournaments.CreateCommand{
		Name: "Cup", Game: "dice", EntryFee: 0.01,
		MaxParticipants: 3, DurationHours: 1, CreatedBy: "0xcreator",
	})
	if err != nil {
		t.Fatal(err)
	}

	players := []shared.PlayerID{"0xfirst", "0xsecond", "0xthird"}
	for _, p := range players {
		if _, err := svc.Join(ctx, snap.ID, p); err != nil {
			t.Fatalf("join %s: %v", p, err)
		}
	}

	// No transitions yet; the enrollment window is still open.
	if trs := svc.Sweep(ctx); len(trs) != 0 {
		t.Fatalf("premature transitions: %v", trs)
	}

	// One sweep tick past the start time activates.
	current = snap.StartTime
	trs := svc.Sweep(ctx)
	if len(trs) != 1 || trs[0].To != tournament.StateActive {
		t.Fatalf("activation transitions = %v", trs)
	}

	// The second joiner reports first; enrollment order must still win the tie.
	for _, p := range []shared.PlayerID{"0xsecond", "0xfirst"} {
		accepted := svc.RecordOutcome(ctx, tournament.Outcome{
			TournamentID: snap.ID,
			Participant:  p,
			Game:         tournament.GameDice,
			Win:          true,
			BetAmount:    0.01,
		})
		if !accepted {
			t.Fatalf("outcome for %s ignored", p)
		}
	}

	current = snap.EndTime
	trs = svc.Sweep(ctx)
	if len(trs) != 1 || trs[0].To != tournament.StateEnded {
		t.Fatalf("finalization transitions = %v", trs)
	}
	if trs[0].Winner != "0xfirst" {
		t.Errorf("winner = %q, want the earlier joiner 0xfirst", trs[0].Winner)
	}

	board, err := svc.Leaderboard(ctx, snap.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 3 {
		t.Fatalf("leaderboard rows = %d, want 3", len(board))
	}
	if board[0].Player != "0xfirst" || board[1].Player != "0xsecond" {
		t.Errorf("top ranks = %q, %q; want 0xfirst, 0xsecond", board[0].Player, board[1].Player)
	}
	if board[0].Score != board[1].Score {
		t.Errorf("tied winners diverged: %d vs %d", board[0].Score, board[1].Score)
	}
	// Pool is 3 x 0.01; rank 1 takes half.
	if board[0].Prize != "0.0150" {
		t.Errorf("rank 1 prize = %q, want 0.0150", board[0].Prize)
	}

	// A third sweep finds nothing left to do.
	current = snap.EndTime.Add(time.Hour)
	if trs := svc.Sweep(ctx); len(trs) != 0 {
		t.Errorf("re-sweep produced transitions: %v", trs)
	}

	mine, err := svc.ListFor(ctx, "0xfirst")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != snap.ID {
		t.Errorf("ListFor = %v", mine)
	}

	// Late outcome after the end is ignored, not an error.
	if svc.RecordOutcome(ctx, tournament.Outcome{
		TournamentID: snap.ID, Participant: "0xthird", Win: true, BetAmount: 0.01,
	}) {
		t.Error("outcome accepted after tournament ended")
	}
}
