package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the uniform envelope returned by every JSON endpoint:
// {"success": bool, "data": any|null, "error": string|null}.
type Response struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

// RespondWithData writes a success envelope with HTTP 200.
func RespondWithData(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, r, http.StatusOK, Response{Success: true, Data: data})
}

// RespondWithBusinessError writes a failure envelope for an expected,
// user-facing error. Business failures deliberately keep HTTP 200; the
// envelope's success flag carries the outcome.
func RespondWithBusinessError(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, r, http.StatusOK, Response{Success: false, Error: &message})
}

// RespondWithSystemError writes a failure envelope with HTTP 500 for an
// unexpected error, logging the cause with the request's trace ID.
func RespondWithSystemError(w http.ResponseWriter, r *http.Request, err error) {
	message := err.Error()

	slog.Error("unexpected error handling request",
		"error", message,
		"trace_id", GetTraceID(r.Context()),
		"path", r.URL.Path,
		"method", r.Method)

	writeJSON(w, r, http.StatusInternalServerError, Response{Success: false, Error: &message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode JSON response",
			"error", err,
			"trace_id", GetTraceID(r.Context()))
	}
}
