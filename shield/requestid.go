// CLAUDE:SUMMARY Request ID middleware — short ID into context, response header, and a per-request logger.
package shield

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hazyhaar/domfill/idgen"
	"github.com/hazyhaar/domfill/kit"
)

// newRequestID generates the per-request identifier. Short NanoIDs, not
// UUIDs: the ID exists to correlate log lines, not to be globally unique
// forever.
var newRequestID = idgen.Prefixed("req_", idgen.NanoID(8))

// RequestID assigns each request an ID and injects it into the context
// (under kit.RequestIDKey), the X-Request-ID response header, and a
// per-request structured logger stored under LoggerKey. An incoming
// X-Request-ID header is honored so callers can thread their own IDs
// through.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = newRequestID()
		}

		ctx := kit.WithRequestID(r.Context(), id)
		ctx = kit.WithTransport(ctx, "http")
		w.Header().Set("X-Request-ID", id)

		logger := slog.Default().With(
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		ctx = context.WithValue(ctx, LoggerKey, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
