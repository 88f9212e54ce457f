package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a handler panic into a 500 when nothing has been sent yet.
// Once the status line is on the wire (a relay mid-stream) the response is
// aborted instead, so the client sees a truncated body rather than an error
// page appended to it. http.ErrAbortHandler is re-raised untouched.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracked := wrapResponseWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.Any("panic", rec),
					slog.Bool("headers_sent", tracked.wroteHeader),
					slog.Int64("bytes_sent", tracked.bytes),
					slog.String("stack", string(debug.Stack())),
				)

				if tracked.wroteHeader {
					panic(http.ErrAbortHandler)
				}
				writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
			}()

			next.ServeHTTP(tracked, r)
		})
	}
}
