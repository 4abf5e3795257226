package logger

import "context"

// Logger defines the interface for structured logging throughout the service.
// All log methods accept a message string followed by key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With creates a child logger with additional key-value pairs that will
	// be included in all subsequent log entries.
	With(args ...any) Logger

	// WithContext creates a child logger that carries the request id found
	// in the context, if any.
	WithContext(ctx context.Context) Logger
}

type contextKey string

const requestIDKey contextKey = "request_id"

// ContextWithRequestID stores a request id for later extraction by
// Logger.WithContext.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request id from the context.
// Returns empty string if none was stored.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
