package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestIDKey is the context key for the request ID.
type requestIDKey struct{}

// RequestIDFrom returns the request ID assigned by the audit middleware.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// auditLoggingMiddleware logs every request with a correlation ID and puts a
// request-scoped logger into the context for downstream handlers.
func auditLoggingMiddleware(log logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set(requestIDHeader, requestID)

			reqLog := log.WithName("audit").WithValues(
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.Header.Get("User-Agent"),
			)

			ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
			ctx = logr.NewContext(ctx, reqLog)

			ww := newStatusResponseWriter(w)
			reqLog.V(1).Info("Request started")
			next.ServeHTTP(ww, r.WithContext(ctx))

			duration := time.Since(start)
			reqLog.Info("Request completed",
				"status", ww.status,
				"result", categorizeResult(ww.status),
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// categorizeResult returns a human-readable result category for the status code
func categorizeResult(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "success"
	case status >= 300 && status < 400:
		return "redirect"
	case status >= 400 && status < 500:
		return "client_error"
	case status >= 500:
		return "server_error"
	default:
		return "unknown"
	}
}

var _ http.Flusher = &statusResponseWriter{}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{w, http.StatusOK}
}

func (w *statusResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
