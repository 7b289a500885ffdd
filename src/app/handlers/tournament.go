package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chainplay/arenabot/src/app/dispatch"
	"github.com/chainplay/arenabot/src/app/tournaments"
	"github.com/chainplay/arenabot/src/domain/command"
	"github.com/chainplay/arenabot/src/domain/shared"
	"github.com/chainplay/arenabot/src/domain/tournament"
)

const startTimeLayout = "Jan 2 15:04 MST"

// TournamentGroup binds the tournament commands to the service.
func TournamentGroup(svc *tournaments.Service) []dispatch.Handler {
	return []dispatch.Handler{
		&descriptor{
			name:        "tournament_create",
			description: "Create a new tournament",
			usage:       "!tournament_create <name> <dice|coinflip|mixed> <entryFee> <maxPlayers> <hours> [rules...]",
			spec:        command.AtLeast(5),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				entryFee, err := strconv.ParseFloat(cmd.Args[2], 64)
				if err != nil {
					return fmt.Sprintf("⚠️ %q is not a valid entry fee.", cmd.Args[2]), nil
				}
				maxPlayers, err := strconv.Atoi(cmd.Args[3])
				if err != nil {
					return fmt.Sprintf("⚠️ %q is not a valid player count.", cmd.Args[3]), nil
				}
				hours, err := strconv.ParseFloat(cmd.Args[4], 64)
				if err != nil {
					return fmt.Sprintf("⚠️ %q is not a valid duration in hours.", cmd.Args[4]), nil
				}

				snap, err := svc.Create(ctx, tournaments.CreateCommand{
					Name:            cmd.Args[0],
					Game:            strings.ToLower(cmd.Args[1]),
					EntryFee:        entryFee,
					MaxParticipants: maxPlayers,
					DurationHours:   hours,
					CreatedBy:       cmd.Sender,
					Rules:           strings.Join(cmd.Args[5:], " "),
					Channel:         cmd.Channel,
				})
				if err != nil {
					return "⚠️ Could not create tournament: " + err.Error(), nil
				}
				return fmt.Sprintf(
					"🏆 Tournament %s created!\nID: %s\nGame: %s | Entry: %s | Max players: %d\nStarts %s, runs until %s.\nJoin with !tournament_join %s",
					snap.Name, snap.ID, snap.Game, tournament.FormatPrize(snap.EntryFee),
					snap.MaxParticipants,
					snap.StartTime.Format(startTimeLayout), snap.EndTime.Format(startTimeLayout),
					snap.ID,
				), nil
			},
		},
		&descriptor{
			name:        "tournament_join",
			description: "Join an upcoming tournament",
			usage:       "!tournament_join <tournamentId>",
			spec:        command.Exactly(1),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				snap, err := svc.Join(ctx, shared.TournamentID(cmd.Args[0]), cmd.Sender)
				switch {
				case err == nil:
					return fmt.Sprintf(
						"✅ You're in! %s now has %d/%d players and a %s prize pool.",
						snap.Name, len(snap.Participants), snap.MaxParticipants,
						tournament.FormatPrize(snap.PrizePool),
					), nil
				case errors.Is(err, tournament.ErrTournamentNotFound):
					return fmt.Sprintf("⚠️ No tournament with ID %s.", cmd.Args[0]), nil
				case errors.Is(err, tournament.ErrTournamentNotOpen):
					return "⚠️ Enrollment is closed for that tournament.", nil
				case errors.Is(err, tournament.ErrTournamentFull):
					return "⚠️ That tournament is already full.", nil
				case errors.Is(err, tournament.ErrParticipantAlreadyJoined):
					return "⚠️ You already joined that tournament.", nil
				}
				return "", err
			},
		},
		&descriptor{
			name:        "tournaments",
			description: "List upcoming and active tournaments",
			usage:       "!tournaments",
			spec:        command.Exactly(0),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				active, err := svc.ListActive(ctx)
				if err != nil {
					return "", err
				}
				if len(active) == 0 {
					return "No tournaments right now. Start one with !tournament_create.", nil
				}
				var b strings.Builder
				b.WriteString("🏆 Tournaments:\n")
				for _, t := range active {
					fmt.Fprintf(&b, "• %s [%s] %s — starts %s, %d/%d players, pool %s\n",
						t.ID, t.State, t.Game,
						t.StartTime.Format(startTimeLayout),
						len(t.Participants), t.MaxParticipants,
						tournament.FormatPrize(t.PrizePool),
					)
				}
				return strings.TrimRight(b.String(), "\n"), nil
			},
		},
		&descriptor{
			name:        "tournament_info",
			description: "Show one tournament's details",
			usage:       "!tournament_info <tournamentId>",
			spec:        command.Exactly(1),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				snap, err := svc.Get(ctx, shared.TournamentID(cmd.Args[0]))
				if errors.Is(err, tournament.ErrTournamentNotFound) {
					return fmt.Sprintf("⚠️ No tournament with ID %s.", cmd.Args[0]), nil
				}
				if err != nil {
					return "", err
				}
				info := fmt.Sprintf(
					"🏆 %s [%s]\nGame: %s | Entry: %s | Players: %d/%d | Pool: %s\nStarts %s, ends %s.",
					snap.Name, snap.State, snap.Game,
					tournament.FormatPrize(snap.EntryFee),
					len(snap.Participants), snap.MaxParticipants,
					tournament.FormatPrize(snap.PrizePool),
					snap.StartTime.Format(startTimeLayout), snap.EndTime.Format(startTimeLayout),
				)
				if snap.Rules != "" {
					info += "\nRules: " + snap.Rules
				}
				if snap.State == tournament.StateEnded && snap.Winner != "" {
					info += "\n👑 Winner: " + string(snap.Winner)
				}
				return info, nil
			},
		},
		&descriptor{
			name:        "leaderboard",
			description: "Show a tournament's current standings",
			usage:       "!leaderboard <tournamentId>",
			spec:        command.Exactly(1),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				board, err := svc.Leaderboard(ctx, shared.TournamentID(cmd.Args[0]))
				if errors.Is(err, tournament.ErrTournamentNotFound) {
					return fmt.Sprintf("⚠️ No tournament with ID %s.", cmd.Args[0]), nil
				}
				if err != nil {
					return "", err
				}
				if len(board) == 0 {
					return "Nobody has joined yet.", nil
				}
				var b strings.Builder
				b.WriteString("📊 Leaderboard:\n")
				for _, row := range board {
					fmt.Fprintf(&b, "%d. %s — %d pts — prize %s\n", row.Rank, row.Player, row.Score, row.Prize)
				}
				return strings.TrimRight(b.String(), "\n"), nil
			},
		},
		&descriptor{
			name:        "mytournaments",
			description: "List the tournaments you joined",
			usage:       "!mytournaments",
			spec:        command.Exactly(0),
			run: func(ctx context.Context, cmd command.Command) (string, error) {
				mine, err := svc.ListFor(ctx, cmd.Sender)
				if err != nil {
					return "", err
				}
				if len(mine) == 0 {
					return "You haven't joined any tournaments yet.", nil
				}
				var b strings.Builder
				b.WriteString("🎟 Your tournaments:\n")
				for _, t := range mine {
					fmt.Fprintf(&b, "• %s [%s] — score %d\n", t.ID, t.State, t.Scores[cmd.Sender])
				}
				return strings.TrimRight(b.String(), "\n"), nil
			},
		},
	}
}
