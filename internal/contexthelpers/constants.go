package contexthelpers

type contextKey string

const AuthenticatedUserIDContextKey = contextKey("authenticatedUserID")
const IsAuthenticatedContextKey = contextKey("isAuthenticated")
const TraceIDContextKey = contextKey("traceID")
