package middleware

import (
	"log/slog"
	"net/http"
	"time"

	appcontext "geodados/ms_municipios/internal/infrastructure/context"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// responseWriter captures the status code and body size written by the
// handler chain.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.bytesWritten += n
	return n, err
}

// RequestLogger logs every request with method, path, status and latency.
// It assigns a correlation ID (reusing chi's request ID when present) and
// propagates it through the context and the X-Correlation-Id header.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := middleware.GetReqID(r.Context())
			if correlationID == "" {
				correlationID = uuid.New().String()
			}

			ctx := appcontext.WithCorrelationID(r.Context(), correlationID)
			w.Header().Set("X-Correlation-Id", correlationID)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(ctx))

			log.Info("http request",
				"correlation_id", correlationID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"bytes", rw.bytesWritten,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}
