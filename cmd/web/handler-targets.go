package main

import (
	"net/http"
	"time"

	"github.com/mkarvone/repsmith/internal/contexthelpers"
)

type targetPayload struct {
	ExerciseID int                    `json:"exerciseId"`
	CurrentMax float64                `json:"currentMax"`
	History    []targetHistoryPayload `json:"history"`
}

type targetHistoryPayload struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Source string  `json:"source"`
}

// targetsGET returns the authenticated user's strength records with their
// full dated history.
func (app *application) targetsGET(w http.ResponseWriter, r *http.Request) {
	userID, ok := contexthelpers.AuthenticatedUserID(r.Context())
	if !ok {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	targets, err := app.importService.Targets(r.Context(), userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	payload := make([]targetPayload, 0, len(targets))
	for _, target := range targets {
		entry := targetPayload{
			ExerciseID: target.ExerciseID,
			CurrentMax: target.CurrentMax,
			History:    make([]targetHistoryPayload, 0, len(target.History)),
		}
		for _, point := range target.History {
			entry.History = append(entry.History, targetHistoryPayload{
				Date:   point.Date.Format(time.DateOnly),
				Value:  point.Value,
				Source: point.Source,
			})
		}
		payload = append(payload, entry)
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"targets": payload})
}
