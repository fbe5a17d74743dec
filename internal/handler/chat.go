package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/okonek/traintrack/internal/domain"
	"github.com/okonek/traintrack/internal/service"
)

// ChatHandler serves chat history. Live traffic flows over the
// websocket hub.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// HandleHistory returns the conversation between the authenticated
// user and the peer in the path, oldest first.
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	peerID, err := strconv.ParseInt(r.PathValue("peer"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid peer id")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	messages, err := h.chat.History(r.Context(), user.ID, peerID, limit)
	if err != nil {
		slog.Error("chat history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	writeData(w, http.StatusOK, messages)
}
