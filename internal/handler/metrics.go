package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/okonek/traintrack/internal/domain"
	"github.com/okonek/traintrack/internal/service"
)

// MetricsHandler ingests device health samples and serves daily
// summaries.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

type ingestRequest struct {
	Samples []domain.MetricSample `json:"samples"`
}

// HandleIngest stores a batch of samples for the authenticated user.
func (h *MetricsHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req ingestRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Samples) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no samples submitted")
		return
	}

	if err := h.metrics.Ingest(r.Context(), user.ID, req.Samples); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("ingest metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeMessage(w, http.StatusCreated, "samples stored")
}

// HandleDaily returns the authenticated user's summary for the date in
// the query string.
func (h *MetricsHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	date := r.URL.Query().Get("date")
	summary, err := h.metrics.DailySummary(r.Context(), user.ID, date)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("daily metric summary", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeData(w, http.StatusOK, summary)
}
