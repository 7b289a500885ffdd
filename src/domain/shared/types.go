package shared

import (
	"errors"
	"strings"
)

// ID types keep domain entities distinct while remaining simple strings at runtime.
type (
	PlayerID     string
	TournamentID string
	ChannelID    string
)

// Validate ensures IDs are not blank.
func (id PlayerID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return errors.New("player id is required")
	}
	return nil
}

func (id TournamentID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return errors.New("tournament id is required")
	}
	return nil
}

func (id ChannelID) Validate() error {
	if strings.TrimSpace(string(id)) == "" {
		return errors.New("channel id is required")
	}
	return nil
}
