package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/okonek/traintrack/internal/domain"
	"github.com/okonek/traintrack/internal/service"
)

// CountdownHandler manages the per-user workout countdown anchor.
type CountdownHandler struct {
	countdown *service.CountdownService
}

// NewCountdownHandler creates a new CountdownHandler.
func NewCountdownHandler(countdown *service.CountdownService) *CountdownHandler {
	return &CountdownHandler{countdown: countdown}
}

type startCountdownRequest struct {
	DurationSeconds int `json:"duration_seconds"`
}

// HandleStart anchors a new countdown for the authenticated user.
func (h *CountdownHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req startCountdownRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.countdown.Start(r.Context(), user.ID, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("start countdown", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeMessage(w, http.StatusCreated, "countdown started")
}

// HandleRemaining returns the seconds left on the user's countdown,
// recomputed from the persisted anchor.
func (h *CountdownHandler) HandleRemaining(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	remaining, err := h.countdown.Remaining(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no countdown running")
			return
		}
		slog.Error("countdown remaining", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeData(w, http.StatusOK, map[string]int{
		"remaining_seconds": int(remaining / time.Second),
	})
}

// HandleClear removes the user's countdown.
func (h *CountdownHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.countdown.Clear(r.Context(), user.ID); err != nil {
		slog.Error("clear countdown", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeMessage(w, http.StatusOK, "countdown cleared")
}
