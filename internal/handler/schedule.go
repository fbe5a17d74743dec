package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/okonek/traintrack/internal/domain"
	"github.com/okonek/traintrack/internal/service"
)

// ScheduleHandler handles workout schedule CRUD.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// scheduleRequest is the submission payload for schedule creation and
// update. Goal fields inside sessions may arrive as numbers or
// strings; decoding coerces them.
type scheduleRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Days        []domain.DailySchedule `json:"days"`
}

// HandleCreate stores a new schedule for the authenticated user.
func (h *ScheduleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req scheduleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	schedule := &domain.Schedule{
		Title:       req.Title,
		Description: req.Description,
		UserID:      &user.ID,
		Days:        req.Days,
	}
	if err := h.schedules.Create(r.Context(), schedule); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("create schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeData(w, http.StatusCreated, schedule)
}

// HandleList returns the authenticated user's schedules.
func (h *ScheduleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	schedules, err := h.schedules.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list schedules", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if schedules == nil {
		schedules = []domain.Schedule{}
	}
	writeData(w, http.StatusOK, schedules)
}

// HandleGet returns one schedule by ID.
func (h *ScheduleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid schedule id")
		return
	}

	schedule, err := h.schedules.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule not found")
			return
		}
		slog.Error("get schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeData(w, http.StatusOK, schedule)
}

// HandleUpdate replaces a schedule the user owns.
func (h *ScheduleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid schedule id")
		return
	}

	var req scheduleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	schedule := &domain.Schedule{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Days:        req.Days,
	}
	if err := h.schedules.Update(r.Context(), user.ID, schedule); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusNotFound, "schedule not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("update schedule", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	writeData(w, http.StatusOK, schedule)
}

// HandleDelete removes a schedule the user owns.
func (h *ScheduleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid schedule id")
		return
	}

	if err := h.schedules.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusNotFound, "schedule not found")
			return
		}
		slog.Error("delete schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeMessage(w, http.StatusOK, "schedule deleted")
}
