package command

import (
	"strings"
	"time"

	"github.com/chainplay/arenabot/src/domain/shared"
)

// DefaultPrefix marks a chat message as a directive rather than prose.
const DefaultPrefix = "!"

// Command is a parsed directive extracted from a chat message. It is immutable
// after creation and owned by the dispatch call stack.
type Command struct {
	Name       string
	Args       []string
	Sender     shared.PlayerID
	Channel    shared.ChannelID
	ReceivedAt time.Time
}

// Parse splits a raw chat line into a Command. The second return value reports
// whether the line was a command at all; false means the caller should treat the
// text as plain conversation, not a failure.
//
// The first whitespace-delimited token after the prefix is lowercased as the
// command name; everything after it becomes the argument list. Quoting is not
// supported: handlers that accept free text rejoin trailing arguments themselves.
func Parse(raw string, sender shared.PlayerID, channel shared.ChannelID, prefix string, now time.Time) (Command, bool) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, prefix) {
		return Command{}, false
	}
	fields := strings.Fields(trimmed[len(prefix):])
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{
		Name:       strings.ToLower(fields[0]),
		Args:       fields[1:],
		Sender:     sender,
		Channel:    channel,
		ReceivedAt: now,
	}, true
}
