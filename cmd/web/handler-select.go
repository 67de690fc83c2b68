package main

import (
	"net/http"

	"github.com/mkarvone/repsmith/internal/catalog"
	"github.com/mkarvone/repsmith/internal/contexthelpers"
	"github.com/mkarvone/repsmith/internal/errors"
	"github.com/mkarvone/repsmith/internal/selection"
)

type selectRequest struct {
	SplitDay          string   `json:"splitDay"`
	TargetMuscles     []string `json:"targetMuscles,omitempty"`
	EmphasizedMuscles []string `json:"emphasizedMuscles,omitempty"`
	CompoundCount     int      `json:"compoundCount"`
	IsolationCount    int      `json:"isolationCount"`
	Equipment         []string `json:"equipment,omitempty"`
	ExcludedIDs       []int    `json:"excludedIds,omitempty"`
	Experience        string   `json:"experience,omitempty"`
	PreferBodyweight  bool     `json:"preferBodyweight,omitempty"`
}

type selectResponse struct {
	ExerciseIDs  []int `json:"exerciseIds"`
	FromLibrary  []int `json:"fromLibrary"`
	Introduced   []int `json:"introduced"`
	UsedFallback bool  `json:"usedFallback"`
}

// workoutSelectPOST picks a workout's exercises for the authenticated user.
// The user's library is read from their stored records; everything else
// comes from the request.
func (app *application) workoutSelectPOST(w http.ResponseWriter, r *http.Request) {
	userID, ok := contexthelpers.AuthenticatedUserID(r.Context())
	if !ok {
		app.clientError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.CompoundCount < 0 || req.IsolationCount < 0 {
		app.clientError(w, r, http.StatusBadRequest, "exercise counts must not be negative")
		return
	}
	if req.CompoundCount+req.IsolationCount == 0 {
		app.clientError(w, r, http.StatusBadRequest, "request at least one exercise")
		return
	}

	snapshot, err := app.catalogRepo.Snapshot(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	libraryIDs, err := app.importService.LibraryExerciseIDs(r.Context(), userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	equipment := make([]catalog.Equipment, 0, len(req.Equipment))
	for _, e := range req.Equipment {
		equipment = append(equipment, catalog.Equipment(e))
	}

	result, err := selection.Select(snapshot, selection.Request{
		SplitDay:          selection.SplitDay(req.SplitDay),
		TargetMuscles:     req.TargetMuscles,
		EmphasizedMuscles: req.EmphasizedMuscles,
		CompoundCount:     req.CompoundCount,
		IsolationCount:    req.IsolationCount,
		Equipment:         equipment,
		ExcludedIDs:       req.ExcludedIDs,
		Experience:        catalog.Level(req.Experience),
		LibraryIDs:        libraryIDs,
		PreferBodyweight:  req.PreferBodyweight,
	})
	if err != nil {
		if errors.Is(err, selection.ErrEmptyPool) {
			app.clientError(w, r, http.StatusUnprocessableEntity, "no exercises satisfy the requested constraints")
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, selectResponse{
		ExerciseIDs:  append([]int{}, result.ExerciseIDs...),
		FromLibrary:  append([]int{}, result.FromLibrary...),
		Introduced:   append([]int{}, result.Introduced...),
		UsedFallback: result.UsedFallback,
	})
}
