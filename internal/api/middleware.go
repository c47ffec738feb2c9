package api

import (
	"net/http"
	"time"
	"transport-simulator/internal/platform/obs"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// loggingMiddleware logs end-to-end request duration and response size for basic observability.
func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := middleware.GetReqID(r.Context())
			r = r.WithContext(obs.WithRequestID(r.Context(), reqID))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			// Handlers that write without calling WriteHeader imply 200.
			if status == 0 {
				status = http.StatusOK
			}

			logger.Info("http request",
				zap.String("req_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.RequestURI()),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("dur", time.Since(start)),
			)
		})
	}
}
