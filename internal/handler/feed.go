package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/okonek/traintrack/internal/domain"
	"github.com/okonek/traintrack/internal/service"
)

// FeedHandler serves the community feed.
type FeedHandler struct {
	feed *service.FeedService
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feed *service.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// HandleList returns recent posts, newest first. The feed is readable
// without authentication.
func (h *FeedHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	posts, err := h.feed.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("list feed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	writeData(w, http.StatusOK, posts)
}

type createPostRequest struct {
	Body string `json:"body"`
}

// HandleCreate publishes a post for the authenticated user.
func (h *FeedHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req createPostRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.feed.CreatePost(r.Context(), user.ID, req.Body)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("create post", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeData(w, http.StatusCreated, post)
}
