package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// ChatStore persists chat traffic flowing through the hub. Satisfied
// by *service.ChatService.
type ChatStore interface {
	SaveIncoming(ctx context.Context, senderID int64, data json.RawMessage) error
}

// Hub fans realtime events out to every connected client. An inbound
// frame named "<prefix>:<eventType>" is re-broadcast to all other
// clients on the bare "<prefix>" channel, wrapped in an Envelope so
// receivers can recover the event type. Chat frames are persisted
// before re-broadcast.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	chat    ChatStore
	log     *slog.Logger
}

type client struct {
	conn    *websocket.Conn
	userID  int64
	writeMu sync.Mutex
}

// NewHub creates an empty hub. chat may be nil to disable persistence;
// logger may be nil.
func NewHub(chat ChatStore, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		chat:    chat,
		log:     logger,
	}
}

// Serve registers conn and pumps its frames until the connection
// drops. It blocks, so upgrade handlers call it directly. The
// connection is closed and unregistered on return.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, userID int64) {
	c := &client{conn: conn, userID: userID}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log.Info("hub: client connected", "user_id", userID, "clients", total)

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		conn.Close()
		h.log.Info("hub: client disconnected", "user_id", userID)
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			h.log.Warn("hub: dropping malformed frame", "user_id", userID, "error", err)
			continue
		}

		prefix, eventType := SplitEvent(frame.Event)
		if prefix == "" {
			continue
		}

		if prefix == "chat" && h.chat != nil {
			if err := h.chat.SaveIncoming(ctx, userID, frame.Data); err != nil {
				h.log.Error("hub: save chat message", "user_id", userID, "error", err)
			}
		}

		h.send(prefix, eventType, frame.Data, c)
	}
}

// Broadcast pushes a server-originated event to every connected
// client.
func (h *Hub) Broadcast(prefix, eventType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.Error("hub: marshal broadcast payload", "event", prefix+":"+eventType, "error", err)
		return
	}
	h.send(prefix, eventType, raw, nil)
}

// send delivers an enveloped frame on the bare prefix channel to every
// client except the originator.
func (h *Hub) send(prefix, eventType string, data json.RawMessage, exclude *client) {
	env, err := json.Marshal(Envelope{EventType: eventType, Data: data})
	if err != nil {
		h.log.Error("hub: marshal envelope", "error", err)
		return
	}
	frame, err := json.Marshal(Frame{Event: prefix, Data: env})
	if err != nil {
		h.log.Error("hub: marshal frame", "error", err)
		return
	}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		if c != exclude {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.writeMu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, frame)
		c.writeMu.Unlock()
		if err != nil {
			h.log.Warn("hub: write failed", "user_id", c.userID, "error", err)
		}
	}
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
