// internal/chatbot/wschat/hub.go
//
// WebSocket chat transport for the hangman bot.
//
// Responsibilities:
//   - Upgrade GET /chat/ws?user=<name>&channel=<name> to a websocket.
//   - Track connected clients per channel and per user.
//   - Feed every incoming message to the bot and route its replies:
//     channel replies are broadcast, private replies go to one user.
//   - Relay ordinary chat between users of the same channel.

package wschat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/chatbot"
)

// BotName is the sender name used for bot messages.
const BotName = "hangman"

// DefaultChannel is used when the client does not pick one.
const DefaultChannel = "lobby"

const writeWait = 10 * time.Second

// Inbound is a message sent by a client.
type Inbound struct {
	Text    string `json:"text"`
	Private bool   `json:"private,omitempty"`
}

// Outbound is a message delivered to a client.
type Outbound struct {
	Channel string `json:"channel,omitempty"`
	From    string `json:"from"`
	Text    string `json:"text"`
	Private bool   `json:"private,omitempty"`
}

type client struct {
	conn    *websocket.Conn
	user    string
	channel string
	wmu     sync.Mutex // gorilla allows one concurrent writer
}

func (c *client) send(msg Outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub connects websocket clients to a bot.
type Hub struct {
	bot      *chatbot.Bot
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub returns a hub for bot. An empty origin accepts any Origin header.
func NewHub(bot *chatbot.Bot, origin string) *Hub {
	return &Hub{
		bot: bot,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				o := r.Header.Get("Origin")
				return origin == "" || o == "" || o == origin
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and runs the client's read loop.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" || user == BotName || strings.ContainsAny(user, " @") {
		http.Error(w, "invalid user", http.StatusBadRequest)
		return
	}
	channel := strings.TrimSpace(r.URL.Query().Get("channel"))
	if channel == "" {
		channel = DefaultChannel
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("wschat: upgrade")
		return
	}
	c := &client{conn: conn, user: user, channel: channel}
	h.register(c)
	defer h.unregister(c)

	ctx := r.Context()
	for {
		var in Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("user", user).Msg("wschat: read")
			}
			return
		}
		h.handle(ctx, c, in)
	}
}

func (h *Hub) handle(ctx context.Context, c *client, in Inbound) {
	msg := chatbot.Message{User: c.user, Channel: c.channel, Text: in.Text, Private: in.Private}
	replies := h.bot.Handle(ctx, msg)
	if len(replies) == 0 && !in.Private && strings.TrimSpace(in.Text) != "" {
		h.broadcast(c.channel, Outbound{Channel: c.channel, From: c.user, Text: in.Text})
		return
	}
	for _, r := range replies {
		if r.To != "" {
			h.direct(r.To, Outbound{From: BotName, Text: r.Text, Private: true})
			continue
		}
		h.broadcast(r.Channel, Outbound{Channel: r.Channel, From: BotName, Text: r.Text})
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Info().Str("user", c.user).Str("channel", c.channel).Msg("wschat: connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
	log.Info().Str("user", c.user).Str("channel", c.channel).Msg("wschat: disconnected")
}

// targets snapshots the clients matching keep.
func (h *Hub) targets(keep func(*client) bool) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*client
	for c := range h.clients {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (h *Hub) broadcast(channel string, msg Outbound) {
	h.deliver(h.targets(func(c *client) bool { return c.channel == channel }), msg)
}

func (h *Hub) direct(user string, msg Outbound) {
	h.deliver(h.targets(func(c *client) bool { return c.user == user }), msg)
}

func (h *Hub) deliver(to []*client, msg Outbound) {
	for _, c := range to {
		if err := c.send(msg); err != nil {
			log.Warn().Err(err).Str("user", c.user).Msg("wschat: write, closing connection")
			c.conn.Close()
		}
	}
}

// Connected reports how many clients are connected.
func (h *Hub) Connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
