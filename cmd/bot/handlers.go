package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/chainplay/arenabot/src/domain/command"
	"github.com/chainplay/arenabot/src/domain/shared"
	"github.com/chainplay/arenabot/src/domain/tournament"
)

type CommandRequest struct {
	Sender  string `json:"sender"`
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type CommandResponse struct {
	Handled bool   `json:"handled"`
	Outcome string `json:"outcome,omitempty"`
	Reply   string `json:"reply,omitempty"`
}

// handleCommand is the HTTP bridge into the dispatcher. Plain prose is
// acknowledged but not dispatched.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	cmd, ok := command.Parse(req.Text, shared.PlayerID(req.Sender), shared.ChannelID(req.Channel), s.cfg.CommandPrefix, time.Now().UTC())
	if !ok {
		s.writeJSON(w, http.StatusOK, CommandResponse{Handled: false})
		return
	}
	out := s.cfg.Dispatcher.Dispatch(r.Context(), cmd)
	s.dispatchCounter.WithLabelValues(string(out.Kind)).Inc()
	s.writeJSON(w, http.StatusOK, CommandResponse{Handled: true, Outcome: string(out.Kind), Reply: out.Reply})
}

type OutcomeRequest struct {
	TournamentID string  `json:"tournament_id"`
	Participant  string  `json:"participant"`
	GameType     string  `json:"game_type"`
	IsWin        bool    `json:"is_win"`
	BetAmount    float64 `json:"bet_amount"`
	PayoutAmount float64 `json:"payout_amount"`
}

type OutcomeResponse struct {
	Accepted bool `json:"accepted"`
}

// handleOutcome receives best-effort game results from the game collaborator.
func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	var req OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	accepted := s.cfg.TournamentService.RecordOutcome(r.Context(), tournament.Outcome{
		TournamentID: shared.TournamentID(req.TournamentID),
		Participant:  shared.PlayerID(req.Participant),
		Game:         tournament.GameType(req.GameType),
		Win:          req.IsWin,
		BetAmount:    req.BetAmount,
		PayoutAmount: req.PayoutAmount,
	})
	s.writeJSON(w, http.StatusOK, OutcomeResponse{Accepted: accepted})
}

type TournamentResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Game         string   `json:"game"`
	State        string   `json:"state"`
	EntryFee     float64  `json:"entry_fee"`
	MaxPlayers   int      `json:"max_players"`
	Participants []string `json:"participants"`
	PrizePool    float64  `json:"prize_pool"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Winner       string   `json:"winner,omitempty"`
}

func toTournamentResponse(t tournament.Tournament) TournamentResponse {
	participants := make([]string, len(t.Participants))
	for i, p := range t.Participants {
		participants[i] = string(p)
	}
	return TournamentResponse{
		ID:           string(t.ID),
		Name:         t.Name,
		Game:         string(t.Game),
		State:        string(t.State),
		EntryFee:     t.EntryFee,
		MaxPlayers:   t.MaxParticipants,
		Participants: participants,
		PrizePool:    t.PrizePool,
		StartTime:    t.StartTime.Format(time.RFC3339),
		EndTime:      t.EndTime.Format(time.RFC3339),
		Winner:       string(t.Winner),
	}
}

func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	active, err := s.cfg.TournamentService.ListActive(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]TournamentResponse, len(active))
	for i, t := range active {
		out[i] = toTournamentResponse(t)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	id := shared.TournamentID(mux.Vars(r)["id"])
	snap, err := s.cfg.TournamentService.Get(r.Context(), id)
	if errors.Is(err, tournament.ErrTournamentNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTournamentResponse(snap))
}

type LeaderboardRowResponse struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	Score  int64  `json:"score"`
	Prize  string `json:"prize"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := shared.TournamentID(mux.Vars(r)["id"])
	board, err := s.cfg.TournamentService.Leaderboard(r.Context(), id)
	if errors.Is(err, tournament.ErrTournamentNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	out := make([]LeaderboardRowResponse, len(board))
	for i, row := range board {
		out[i] = LeaderboardRowResponse{Rank: row.Rank, Player: string(row.Player), Score: row.Score, Prize: row.Prize}
	}
	s.writeJSON(w, http.StatusOK, out)
}
