// Package contexthelpers carries request-scoped values through context.
package contexthelpers

import (
	"context"
	"net/http"
)

// AuthenticateContext marks the request as belonging to the given user. The
// user id comes from the upstream gateway that handled authentication.
func AuthenticateContext(r *http.Request, userID int) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	ctx = context.WithValue(ctx, AuthenticatedUserIDContextKey, userID)
	return r.WithContext(ctx)
}

// SetTraceID stores the request trace id in the context.
func SetTraceID(r *http.Request, traceID string) *http.Request {
	ctx := context.WithValue(r.Context(), TraceIDContextKey, traceID)
	return r.WithContext(ctx)
}
