// CLAUDE:SUMMARY HTTP middleware stack for the domfill API — headers, body limit, request ID, HEAD handling, rate limit.
// Package shield provides reusable HTTP middleware for the domfill API:
// security headers, JSON body limits, request IDs with a per-request
// structured logger, HEAD handling, and an in-memory rate limiter.
//
// Usage:
//
//	r := chi.NewRouter()
//	for _, mw := range shield.APIStack(1 << 20) {
//	    r.Use(mw)
//	}
//
// Or piecemeal:
//
//	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
//	r.Use(shield.MaxJSONBody(1 << 20))
//	r.Use(shield.RequestID)
package shield

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// GetLogger retrieves the per-request logger from the context.
// Returns slog.Default() if no logger was set.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// APIStack returns the standard middleware stack for the domfill API,
// ordered: HeadToGet → SecurityHeaders → MaxJSONBody → RequestID.
func APIStack(maxBody int64) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		MaxJSONBody(maxBody),
		RequestID,
	}
}

// HeadToGet converts HEAD requests to GET so that route handlers registered
// with r.Get() respond with 200 instead of 405 (Method Not Allowed).
// Go's net/http automatically strips the body for HEAD responses.
func HeadToGet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			r.Method = http.MethodGet
		}
		next.ServeHTTP(w, r)
	})
}
