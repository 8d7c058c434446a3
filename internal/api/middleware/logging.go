package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Logging логирует метод, маршрут, код ответа и длительность
// 5xx пишутся как Error, 4xx как Warn
func Logging(logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			switch {
			case rec.status >= http.StatusInternalServerError:
				logger.Error("HTTP %s %s - status=%d duration=%s", r.Method, r.URL.Path, rec.status, duration)
			case rec.status >= http.StatusBadRequest:
				logger.Warn("HTTP %s %s - status=%d duration=%s", r.Method, r.URL.Path, rec.status, duration)
			default:
				logger.Info("HTTP %s %s - status=%d duration=%s", r.Method, r.URL.Path, rec.status, duration)
			}
		})
	}
}
