package main

import (
	"net/http"

	"github.com/mkarvone/repsmith/internal/contexthelpers"
	"github.com/mkarvone/repsmith/internal/errors"
	"github.com/mkarvone/repsmith/internal/importer"
)

type importRequest struct {
	Document                 string   `json:"document"`
	CreateHistoricalSessions bool     `json:"createHistoricalSessions,omitempty"`
	Bodyweight               *float64 `json:"bodyweight,omitempty"`
}

type importResponse struct {
	RunID              string              `json:"runId"`
	SessionsImported   int                 `json:"sessionsImported"`
	ExercisesMatched   int                 `json:"exercisesMatched"`
	ExercisesUnmatched []string            `json:"exercisesUnmatched"`
	TargetsCreated     int                 `json:"targetsCreated"`
	SessionsCreated    int                 `json:"sessionsCreated"`
	Intelligence       intelligencePayload `json:"intelligence"`
}

type intelligencePayload struct {
	Experience              string             `json:"experience"`
	Style                   string             `json:"style"`
	TopMuscleGroups         []string           `json:"topMuscleGroups"`
	Split                   *string            `json:"split,omitempty"`
	EstimatedSessionMinutes int                `json:"estimatedSessionMinutes"`
	Confidence              float64            `json:"confidence"`
	Indicators              map[string]float64 `json:"indicators"`
}

// importPOST ingests one pre-extracted training history document for the
// authenticated user. Unmatched exercise names are data, not errors; only a
// document with no resolvable rows fails.
func (app *application) importPOST(w http.ResponseWriter, r *http.Request) {
	userID, ok := contexthelpers.AuthenticatedUserID(r.Context())
	if !ok {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Document == "" {
		app.clientError(w, r, http.StatusBadRequest, "document is required")
		return
	}

	result, err := app.importService.Import(r.Context(), userID, importer.Request{
		Document:                 req.Document,
		CreateHistoricalSessions: req.CreateHistoricalSessions,
		Bodyweight:               req.Bodyweight,
	})
	if err != nil {
		if errors.Is(err, importer.ErrNoRows) {
			app.clientError(w, r, http.StatusUnprocessableEntity, "no training rows found in document")
			return
		}
		if errors.Is(err, importer.ErrMalformedDocument) {
			app.clientError(w, r, http.StatusUnprocessableEntity, "document could not be parsed")
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, importResponse{
		RunID:              result.RunID,
		SessionsImported:   result.SessionsImported,
		ExercisesMatched:   result.ExercisesMatched,
		ExercisesUnmatched: append([]string{}, result.ExercisesUnmatched...),
		TargetsCreated:     result.TargetsCreated,
		SessionsCreated:    result.SessionsCreated,
		Intelligence:       intelligenceToPayload(result.Intelligence),
	})
}

func intelligenceToPayload(report importer.Report) intelligencePayload {
	payload := intelligencePayload{
		Experience:              string(report.Experience),
		Style:                   string(report.Style),
		TopMuscleGroups:         report.TopMuscleGroups,
		EstimatedSessionMinutes: report.EstimatedSessionMinutes,
		Confidence:              report.Confidence,
		Indicators: map[string]float64{
			"strength": report.Indicators.Strength,
			"history":  report.Indicators.History,
			"volume":   report.Indicators.Volume,
			"variety":  report.Indicators.Variety,
		},
	}
	if report.Split != nil {
		split := string(*report.Split)
		payload.Split = &split
	}
	return payload
}
