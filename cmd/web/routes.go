package main

import (
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		public = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(secureHeaders(
				app.crossOriginProtection(app.timeout(next)))))
		}
		authenticated = func(next http.Handler) http.Handler {
			return public(app.authenticate(app.mustAuthenticate(next)))
		}
	)

	mux.Handle("POST /api/estimate", public(http.HandlerFunc(app.estimatePOST)))
	mux.Handle("GET /api/exercises", public(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /api/exercises/{exerciseID}/info", public(http.HandlerFunc(app.exerciseInfoGET)))

	mux.Handle("POST /api/import", authenticated(http.HandlerFunc(app.importPOST)))
	mux.Handle("GET /api/targets", authenticated(http.HandlerFunc(app.targetsGET)))
	mux.Handle("POST /api/workouts/select", authenticated(http.HandlerFunc(app.workoutSelectPOST)))

	mux.Handle("GET /api/healthy", public(http.HandlerFunc(app.healthy)))

	return mux
}
