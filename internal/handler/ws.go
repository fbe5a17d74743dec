package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/okonek/traintrack/internal/realtime"
	"github.com/okonek/traintrack/internal/service"
)

// WSHandler upgrades authenticated requests into hub connections.
type WSHandler struct {
	hub      *realtime.Hub
	limiter  *service.TokenBucket
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *realtime.Hub, limiter *service.TokenBucket) *WSHandler {
	return &WSHandler{
		hub:     hub,
		limiter: limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleConnect upgrades the request and serves it until the client
// disconnects. Upgrades are rate-limited per user.
func (h *WSHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if h.limiter != nil && !h.limiter.Allow(strconv.FormatInt(user.ID, 10)) {
		writeError(w, http.StatusTooManyRequests, "too many connection attempts")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		slog.Warn("websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	h.hub.Serve(r.Context(), conn, user.ID)
}
