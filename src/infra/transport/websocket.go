package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chainplay/arenabot/src/app/dispatch"
	"github.com/chainplay/arenabot/src/domain/command"
	"github.com/chainplay/arenabot/src/domain/shared"
)

// Inbound is one chat frame from a connected client.
type Inbound struct {
	Sender  string `json:"sender"`
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// Outbound is one reply frame addressed to a channel.
type Outbound struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// conn serializes writes to a single websocket connection.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) write(msg Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(msg)
}

// ChatGateway bridges websocket chat sessions to the command dispatcher.
// Frames that do not carry the command prefix are plain conversation and are
// ignored. It also acts as the response sender for a channel: replies and
// external notifications are pushed to every connection subscribed to it.
type ChatGateway struct {
	dispatcher *dispatch.Dispatcher
	prefix     string
	logger     *zap.Logger
	clock      func() time.Time
	upgrader   websocket.Upgrader

	mu   sync.RWMutex
	subs map[shared.ChannelID]map[*conn]struct{}
}

// NewChatGateway creates a gateway over the dispatcher.
func NewChatGateway(dispatcher *dispatch.Dispatcher, prefix string, logger *zap.Logger) *ChatGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatGateway{
		dispatcher: dispatcher,
		prefix:     prefix,
		logger:     logger,
		clock:      func() time.Time { return time.Now().UTC() },
		upgrader:   websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		subs:       make(map[shared.ChannelID]map[*conn]struct{}),
	}
}

// Handler upgrades an HTTP request to a chat session and pumps frames until
// the peer disconnects.
func (g *ChatGateway) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := g.upgrader.Upgrade(w, r, nil)
		if err != nil {
			g.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		session := &conn{ws: ws}
		defer g.drop(session)
		defer ws.Close()

		for {
			var in Inbound
			if err := ws.ReadJSON(&in); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					g.logger.Warn("websocket read failed", zap.Error(err))
				}
				return
			}
			channel := shared.ChannelID(in.Channel)
			g.subscribe(channel, session)

			cmd, ok := command.Parse(in.Text, shared.PlayerID(in.Sender), channel, g.prefix, g.clock())
			if !ok {
				continue
			}
			out := g.dispatcher.Dispatch(r.Context(), cmd)
			if err := session.write(Outbound{Channel: in.Channel, Text: out.Reply}); err != nil {
				g.logger.Warn("websocket write failed", zap.Error(err))
				return
			}
		}
	})
}

// Send pushes text to every connection subscribed to a channel. Delivery is
// best effort; dead connections are dropped.
func (g *ChatGateway) Send(ctx context.Context, channel shared.ChannelID, text string) error {
	g.mu.RLock()
	sessions := make([]*conn, 0, len(g.subs[channel]))
	for session := range g.subs[channel] {
		sessions = append(sessions, session)
	}
	g.mu.RUnlock()

	for _, session := range sessions {
		if err := session.write(Outbound{Channel: string(channel), Text: text}); err != nil {
			g.drop(session)
		}
	}
	return nil
}

func (g *ChatGateway) subscribe(channel shared.ChannelID, session *conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.subs[channel] == nil {
		g.subs[channel] = make(map[*conn]struct{})
	}
	g.subs[channel][session] = struct{}{}
}

func (g *ChatGateway) drop(session *conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for channel, sessions := range g.subs {
		delete(sessions, session)
		if len(sessions) == 0 {
			delete(g.subs, channel)
		}
	}
}
