package middleware

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	RequestFileLoggerKey   ContextKey = "requestFileLogger"
	RequestSQLiteLoggerKey ContextKey = "requestSQLiteLogger"
	RequestIDKey           ContextKey = "requestID"

	RequestIDHeader = "X-Request-ID"

	// Header values replaced before a request is recorded.
	maskedHeaderValue = "*** HIDDEN ***"
	streamBodyMarker  = "[stream body]"
)

var sensitiveHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
	"Set-Cookie":    true,
}
