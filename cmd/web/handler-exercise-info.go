package main

import (
	"bytes"
	"net/http"

	"github.com/mkarvone/repsmith/internal/catalog"
	"github.com/yuin/goldmark"
)

type exercisePayload struct {
	ID           int      `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Equipment    string   `json:"equipment"`
	Level        string   `json:"level"`
	Pattern      string   `json:"pattern"`
	MuscleGroups []string `json:"muscleGroups"`
	Type         string   `json:"type"`
}

type exerciseInfoResponse struct {
	exercisePayload
	Aliases         []string `json:"aliases"`
	DescriptionHTML string   `json:"descriptionHtml"`
}

// exercisesGET lists the exercise catalog.
func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	snapshot, err := app.catalogRepo.Snapshot(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	exercises := make([]exercisePayload, 0, snapshot.Len())
	for _, entry := range snapshot.Entries() {
		exercises = append(exercises, entryToPayload(entry))
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"exercises": exercises})
}

// exerciseInfoGET returns one catalog entry with its description rendered
// from markdown to HTML.
func (app *application) exerciseInfoGET(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := app.parseExerciseIDParam(w, r)
	if !ok {
		return
	}

	snapshot, err := app.catalogRepo.Snapshot(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	entry, ok := snapshot.Get(exerciseID)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var description bytes.Buffer
	if entry.DescriptionMarkdown != "" {
		if err = goldmark.Convert([]byte(entry.DescriptionMarkdown), &description); err != nil {
			app.serverError(w, r, err)
			return
		}
	}

	app.writeJSON(w, r, http.StatusOK, exerciseInfoResponse{
		exercisePayload: entryToPayload(entry),
		Aliases:         append([]string{}, entry.Aliases...),
		DescriptionHTML: description.String(),
	})
}

func entryToPayload(entry catalog.Entry) exercisePayload {
	return exercisePayload{
		ID:           entry.ID,
		Slug:         entry.Slug,
		Name:         entry.Name,
		Equipment:    string(entry.Equipment),
		Level:        string(entry.Level),
		Pattern:      string(entry.Pattern),
		MuscleGroups: append([]string{}, entry.MuscleGroups...),
		Type:         string(entry.Type),
	}
}
