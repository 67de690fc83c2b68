package main

import (
	"net/http"
	"time"

	"github.com/mkarvone/repsmith/internal/errors"
	"github.com/mkarvone/repsmith/internal/estimation"
)

// estimateRequest accepts three input shapes: a single set, a list of sets,
// or dated session estimates for recency-weighted aggregation. The shapes
// are checked in that order of increasing generality, first present wins.
type estimateRequest struct {
	Weight *float64 `json:"weight,omitempty"`
	Reps   *int     `json:"reps,omitempty"`

	Sets []setPayload `json:"sets,omitempty"`

	Sessions     []sessionEstimatePayload `json:"sessions,omitempty"`
	HalfLifeDays float64                  `json:"halfLifeDays,omitempty"`
}

type setPayload struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

type sessionEstimatePayload struct {
	Date    string  `json:"date"`
	Best1RM float64 `json:"best1RM"`
}

type estimateResponse struct {
	Estimate float64 `json:"estimate"`
}

func (app *application) estimatePOST(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	switch {
	case len(req.Sessions) > 0:
		points := make([]estimation.Point, 0, len(req.Sessions))
		for _, session := range req.Sessions {
			date, err := time.Parse(time.DateOnly, session.Date)
			if err != nil {
				app.clientError(w, r, http.StatusBadRequest, "session dates must be YYYY-MM-DD")
				return
			}
			points = append(points, estimation.Point{Date: date, Value: session.Best1RM})
		}
		estimate, err := estimation.RecencyWeightedAverage(points, req.HalfLifeDays, time.Now())
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		app.writeJSON(w, r, http.StatusOK, estimateResponse{Estimate: estimate})

	case len(req.Sets) > 0:
		sets := make([]estimation.Set, 0, len(req.Sets))
		for _, set := range req.Sets {
			sets = append(sets, estimation.Set{Weight: set.Weight, Reps: set.Reps})
		}
		estimate, err := estimation.BestEstimate(sets)
		if err != nil {
			if errors.Is(err, estimation.ErrNoData) {
				app.clientError(w, r, http.StatusBadRequest, "no usable sets")
				return
			}
			app.serverError(w, r, err)
			return
		}
		app.writeJSON(w, r, http.StatusOK, estimateResponse{Estimate: estimate})

	case req.Weight != nil && req.Reps != nil:
		if *req.Weight <= 0 || *req.Reps <= 0 {
			app.clientError(w, r, http.StatusBadRequest, "weight and reps must be positive")
			return
		}
		app.writeJSON(w, r, http.StatusOK, estimateResponse{Estimate: estimation.OneRepMax(*req.Weight, *req.Reps)})

	default:
		app.clientError(w, r, http.StatusBadRequest, "provide weight/reps, sets, or sessions")
	}
}
