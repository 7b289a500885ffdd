package tournament

import (
	"fmt"

	"github.com/chainplay/arenabot/src/domain/shared"
)

var (
	ErrTournamentNotFound       = fmt.Errorf("tournament %w", shared.ErrNotFound)
	ErrTournamentNotOpen        = fmt.Errorf("enrollment closed: %w", shared.ErrInvalidState)
	ErrTournamentFull           = fmt.Errorf("tournament is full: %w", shared.ErrConflict)
	ErrParticipantAlreadyJoined = fmt.Errorf("participant already joined: %w", shared.ErrConflict)
)
