package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/DioGolang/GoTrack/pkg/logger"
)

// RequestLogger writes one line per request: errors for 5xx, warnings for 4xx.
func RequestLogger(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("route", routePattern(r)),
				logger.String("path", r.URL.Path),
				logger.String("request_id", middleware.GetReqID(r.Context())),
				logger.Int("status", status),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("latency", time.Since(start)),
			}
			switch {
			case status >= http.StatusInternalServerError:
				log.Error(r.Context(), "http request failed", fields...)
			case status >= http.StatusBadRequest:
				log.Warn(r.Context(), "http request rejected", fields...)
			default:
				log.Info(r.Context(), "http request processed", fields...)
			}
		})
	}
}
