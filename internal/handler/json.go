package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// apiResponse is the envelope every JSON endpoint returns.
type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeData sends a success envelope with the given payload.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiResponse{Status: "ok", Data: data})
}

// writeMessage sends a success envelope carrying only a message.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Status: "ok", Message: message})
}

// writeError sends an error envelope with the given message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Status: "error", Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// readJSON decodes the request body into the given destination.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
