package contexthelpers

import "context"

// AuthenticatedUserID returns the authenticated user id stored in ctx. The
// second return value reports whether a user id was present.
func AuthenticatedUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(AuthenticatedUserIDContextKey).(int)
	return userID, ok
}

// IsAuthenticated reports whether the request has an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	authenticated, ok := ctx.Value(IsAuthenticatedContextKey).(bool)
	return ok && authenticated
}

// TraceID returns the request trace id or the empty string.
func TraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
