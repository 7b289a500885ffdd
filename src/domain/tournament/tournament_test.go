package tournament_test

import (
	"errors"
	"testing"
	"time"

	"github.com/chainplay/arenabot/src/domain/shared"
	"github.com/chainplay/arenabot/src/domain/tournament"
)

func TestSentinelsCarryErrorClass(t *testing.T) {
	classes := map[error]error{
		tournament.ErrTournamentNotFound:       shared.ErrNotFound,
		tournament.ErrTournamentNotOpen:        shared.ErrInvalidState,
		tournament.ErrTournamentFull:           shared.ErrConflict,
		tournament.ErrParticipantAlreadyJoined: shared.ErrConflict,
	}
	for sentinel, class := range classes {
		if !errors.Is(sentinel, class) {
			t.Errorf("%v does not match class %v", sentinel, class)
		}
	}
}

func newUpcoming(t *testing.T, maxParticipants int) *tournament.Tournament {
	t.Helper()
	now := time.Now().UTC()
	tour, err := tournament.NewTournament(
		"Test Cup",
		tournament.GameDice,
		0.01,
		maxParticipants,
		"0xcreator",
		"",
		"lobby",
		now.Add(5*time.Minute),
		time.Hour,
		now,
	)
	if err != nil {
		t.Fatalf("NewTournament() failed: %v", err)
	}
	return tour
}

func TestNewTournament(t *testing.T) {
	now := time.Now().UTC()
	startTime := now.Add(5 * time.Minute)

	tests := []struct {
		name            string
		title           string
		game            tournament.GameType
		entryFee        float64
		maxParticipants int
		startTime       time.Time
		duration        time.Duration
		wantErr         bool
	}{
		{
			name:            "valid tournament",
			title:           "Friday Cup",
			game:            tournament.GameDice,
			entryFee:        0.01,
			maxParticipants: 10,
			startTime:       startTime,
			duration:        time.Hour,
		},
		{
			name:            "empty name",
			title:           "",
			game:            tournament.GameDice,
			entryFee:        0.01,
			maxParticipants: 10,
			startTime:       startTime,
			duration:        time.Hour,
			wantErr:         true,
		},
		{
			name:            "unknown game type",
			title:           "Friday Cup",
			game:            "roulette",
			entryFee:        0.01,
			maxParticipants: 10,
			startTime:       startTime,
			duration:        time.Hour,
			wantErr:         true,
		},
		{
			name:            "zero entry fee",
			title:           "Friday Cup",
			game:            tournament.GameCoinflip,
			entryFee:        0,
			maxParticipants: 10,
			startTime:       startTime,
			duration:        time.Hour,
			wantErr:         true,
		},
		{
			name:            "max participants below minimum",
			title:           "Friday Cup",
			game:            tournament.GameMixed,
			entryFee:        0.01,
			maxParticipants: 1,
			startTime:       startTime,
			duration:        time.Hour,
			wantErr:         true,
		},
		{
			name:            "max participants above limit",
			title:           "Friday Cup",
			game:            tournament.GameMixed,
			entryFee:        0.01,
			maxParticipants: 101,
			startTime:       startTime,
			duration:        time.Hour,
			wantErr:         true,
		},
		{
			name:            "zero duration",
			title:           "Friday Cup",
			game:            tournament.GameDice,
			entryFee:        0.01,
			maxParticipants: 10,
			startTime:       startTime,
			duration:        0,
			wantErr:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour, err := tournament.NewTournament(
				tt.title, tt.game, tt.entryFee, tt.maxParticipants,
				"0xcreator", "", "lobby", tt.startTime, tt.duration, now,
			)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTournament() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tour.State != tournament.StateUpcoming {
				t.Errorf("state = %v, want %v", tour.State, tournament.StateUpcoming)
			}
			if len(tour.Participants) != 0 {
				t.Errorf("participants = %d, want 0", len(tour.Participants))
			}
			if tour.PrizePool != 0 {
				t.Errorf("prize pool = %v, want 0", tour.PrizePool)
			}
			if !tour.EndTime.Equal(tt.startTime.Add(tt.duration)) {
				t.Errorf("end time = %v, want %v", tour.EndTime, tt.startTime.Add(tt.duration))
			}
		})
	}
}

func TestNewTournamentIDUniqueForSameName(t *testing.T) {
	base := time.Now().UTC()
	first, err := tournament.NewTournament("Cup", tournament.GameDice, 0.01, 5, "0xcreator", "", "lobby", base.Add(time.Minute), time.Hour, base)
	if err != nil {
		t.Fatal(err)
	}
	second, err := tournament.NewTournament("Cup", tournament.GameDice, 0.01, 5, "0xcreator", "", "lobby", base.Add(time.Minute), time.Hour, base.Add(time.Nanosecond))
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Fatalf("identically named tournaments share ID %q", first.ID)
	}
}

func TestJoin(t *testing.T) {
	tour := newUpcoming(t, 2)

	if err := tour.Join("0xaaa"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if tour.PrizePool != tour.EntryFee {
		t.Errorf("prize pool = %v, want %v", tour.PrizePool, tour.EntryFee)
	}
	if score, ok := tour.Scores["0xaaa"]; !ok || score != 0 {
		t.Errorf("score initialized to %v, %v; want 0, true", score, ok)
	}

	if err := tour.Join("0xaaa"); !errors.Is(err, tournament.ErrParticipantAlreadyJoined) {
		t.Errorf("duplicate join error = %v, want ErrParticipantAlreadyJoined", err)
	}

	if err := tour.Join("0xbbb"); err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	if tour.PrizePool != tour.EntryFee*2 {
		t.Errorf("prize pool = %v, want %v", tour.PrizePool, tour.EntryFee*2)
	}

	err := tour.Join("0xccc")
	if !errors.Is(err, tournament.ErrTournamentFull) {
		t.Errorf("overflow join error = %v, want ErrTournamentFull", err)
	}
	if len(tour.Participants) != 2 || tour.PrizePool != tour.EntryFee*2 {
		t.Error("failed join mutated state")
	}
}

func TestJoinClosedStates(t *testing.T) {
	tour := newUpcoming(t, 5)
	tour.Advance(tour.StartTime)
	if tour.State != tournament.StateActive {
		t.Fatalf("state = %v, want active", tour.State)
	}
	if err := tour.Join("0xaaa"); !errors.Is(err, tournament.ErrTournamentNotOpen) {
		t.Errorf("join on active tournament error = %v, want ErrTournamentNotOpen", err)
	}

	tour.Advance(tour.EndTime)
	if err := tour.Join("0xaaa"); !errors.Is(err, tournament.ErrTournamentNotOpen) {
		t.Errorf("join on ended tournament error = %v, want ErrTournamentNotOpen", err)
	}
}

func TestAddScore(t *testing.T) {
	tour := newUpcoming(t, 5)
	if err := tour.Join("0xaaa"); err != nil {
		t.Fatal(err)
	}

	if tour.AddScore("0xaaa", 100) {
		t.Error("score accepted while upcoming")
	}

	tour.Advance(tour.StartTime)
	if !tour.AddScore("0xaaa", 100) {
		t.Error("score rejected while active")
	}
	if !tour.AddScore("0xaaa", 50) {
		t.Error("second score rejected")
	}
	if tour.Scores["0xaaa"] != 150 {
		t.Errorf("score = %d, want 150", tour.Scores["0xaaa"])
	}

	if tour.AddScore("0xzzz", 100) {
		t.Error("score accepted for unknown participant")
	}

	tour.Advance(tour.EndTime)
	if tour.AddScore("0xaaa", 100) {
		t.Error("score accepted after tournament ended")
	}
	if tour.Scores["0xaaa"] != 150 {
		t.Errorf("score changed after end: %d", tour.Scores["0xaaa"])
	}
}

func TestAdvance(t *testing.T) {
	t.Run("upcoming stays put before start", func(t *testing.T) {
		tour := newUpcoming(t, 5)
		from, to := tour.Advance(tour.StartTime.Add(-time.Second))
		if from != tournament.StateUpcoming || to != tournament.StateUpcoming {
			t.Errorf("transition %v -> %v, want upcoming -> upcoming", from, to)
		}
	})

	t.Run("upcoming activates at start time", func(t *testing.T) {
		tour := newUpcoming(t, 5)
		from, to := tour.Advance(tour.StartTime)
		if from != tournament.StateUpcoming || to != tournament.StateActive {
			t.Errorf("transition %v -> %v, want upcoming -> active", from, to)
		}
	})

	t.Run("straight to ended when both deadlines passed", func(t *testing.T) {
		tour := newUpcoming(t, 5)
		if err := tour.Join("0xaaa"); err != nil {
			t.Fatal(err)
		}
		from, to := tour.Advance(tour.EndTime)
		if from != tournament.StateUpcoming || to != tournament.StateEnded {
			t.Errorf("transition %v -> %v, want upcoming -> ended", from, to)
		}
		if tour.Winner != "0xaaa" {
			t.Errorf("winner = %q, want 0xaaa", tour.Winner)
		}
	})

	t.Run("zero participants still activates and ends without winner", func(t *testing.T) {
		tour := newUpcoming(t, 5)
		tour.Advance(tour.StartTime)
		tour.Advance(tour.EndTime)
		if tour.State != tournament.StateEnded {
			t.Fatalf("state = %v, want ended", tour.State)
		}
		if tour.Winner != "" {
			t.Errorf("winner = %q, want empty", tour.Winner)
		}
	})

	t.Run("finalization is idempotent", func(t *testing.T) {
		tour := newUpcoming(t, 5)
		if err := tour.Join("0xaaa"); err != nil {
			t.Fatal(err)
		}
		if err := tour.Join("0xbbb"); err != nil {
			t.Fatal(err)
		}
		tour.Advance(tour.StartTime)
		tour.AddScore("0xbbb", 500)
		tour.Advance(tour.EndTime)

		winner, pool := tour.Winner, tour.PrizePool
		from, to := tour.Advance(tour.EndTime.Add(time.Hour))
		if from != tournament.StateEnded || to != tournament.StateEnded {
			t.Errorf("re-sweep transition %v -> %v, want ended -> ended", from, to)
		}
		if tour.Winner != winner || tour.PrizePool != pool {
			t.Error("re-sweep changed winner or pool")
		}
	})
}

func TestSnapshotIsDetached(t *testing.T) {
	tour := newUpcoming(t, 5)
	if err := tour.Join("0xaaa"); err != nil {
		t.Fatal(err)
	}
	snap := tour.Snapshot()

	tour.Advance(tour.StartTime)
	tour.AddScore("0xaaa", 100)

	if snap.Scores["0xaaa"] != 0 {
		t.Errorf("snapshot score mutated: %d", snap.Scores["0xaaa"])
	}
	if snap.State != tournament.StateUpcoming {
		t.Errorf("snapshot state mutated: %v", snap.State)
	}
}
