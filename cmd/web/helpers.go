package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mkarvone/repsmith/internal/contexthelpers"
	"github.com/mkarvone/repsmith/internal/errors"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, errorBody(r, http.StatusText(http.StatusInternalServerError)))
}

// clientError reports a request problem back to the caller. The message is
// shown to users, so it must not leak internals.
func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelInfo, "client error",
		slog.Int("status", status), slog.String("message", message))
	app.writeJSON(w, r, status, errorBody(r, message))
}

// errorBody carries the request trace id alongside the message so a caller
// can quote it when reporting a problem and we can find the matching logs.
func errorBody(r *http.Request, message string) map[string]string {
	body := map[string]string{"error": message}
	if traceID := contexthelpers.TraceID(r.Context()); traceID != "" {
		body["traceId"] = traceID
	}
	return body
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// decodeJSON decodes the request body into dst, rejecting unknown fields so
// client typos surface instead of silently defaulting.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// parseExerciseIDParam parses the "exerciseID" path parameter. On failure it
// sends a 404 and returns false.
func (app *application) parseExerciseIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	exerciseID, err := strconv.Atoi(r.PathValue("exerciseID"))
	if err != nil || exerciseID <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return exerciseID, true
}
